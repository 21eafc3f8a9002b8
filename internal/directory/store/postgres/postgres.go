// Package postgres implements the directory Source over PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"huntboard/internal/directory/models"
)

// Store reads raw directory data from PostgreSQL.
type Store struct {
	db *sql.DB
}

// New constructs a PostgreSQL-backed source.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectUsers = `
SELECT id, email, display_name, created_at, last_sign_in_at,
       user_agent, authenticated, is_admin, session_count, avg_session_ms
FROM users
ORDER BY created_at`

const selectApplications = `
SELECT id, user_id, company, role, status, created_at
FROM applications
ORDER BY created_at`

// FetchUsers returns every raw user row. Optional columns map onto the raw
// record's pointer fields so enrichment can distinguish absent from zero.
func (s *Store) FetchUsers(ctx context.Context) ([]models.RawUser, error) {
	rows, err := s.db.QueryContext(ctx, selectUsers)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var users []models.RawUser
	for rows.Next() {
		var (
			raw          models.RawUser
			email        sql.NullString
			displayName  sql.NullString
			lastSignIn   sql.NullTime
			userAgent    sql.NullString
			sessionCount sql.NullInt64
			avgSessionMS sql.NullInt64
		)
		if err := rows.Scan(&raw.ID, &email, &displayName, &raw.CreatedAt, &lastSignIn,
			&userAgent, &raw.Authenticated, &raw.Admin, &sessionCount, &avgSessionMS); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		if email.Valid {
			raw.Email = &email.String
		}
		if displayName.Valid {
			raw.DisplayName = &displayName.String
		}
		if lastSignIn.Valid {
			t := lastSignIn.Time
			raw.LastSignInAt = &t
		}
		if userAgent.Valid {
			raw.UserAgent = userAgent.String
		}
		if sessionCount.Valid {
			n := int(sessionCount.Int64)
			raw.SessionCount = &n
		}
		if avgSessionMS.Valid {
			ms := avgSessionMS.Int64
			raw.AvgSessionMS = &ms
		}
		users = append(users, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return users, nil
}

// FetchApplications returns every raw application row.
func (s *Store) FetchApplications(ctx context.Context) ([]models.RawApplication, error) {
	rows, err := s.db.QueryContext(ctx, selectApplications)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var apps []models.RawApplication
	for rows.Next() {
		var (
			app       models.RawApplication
			company   sql.NullString
			role      sql.NullString
			status    sql.NullString
			createdAt time.Time
		)
		if err := rows.Scan(&app.ID, &app.UserID, &company, &role, &status, &createdAt); err != nil {
			return nil, fmt.Errorf("scan application row: %w", err)
		}
		app.Company = company.String
		app.Role = role.String
		app.Status = status.String
		app.CreatedAt = createdAt
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate application rows: %w", err)
	}
	return apps, nil
}
