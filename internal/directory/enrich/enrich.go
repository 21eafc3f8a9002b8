// Package enrich turns untrusted raw source records into well-typed
// UserRecords. Validation happens once here; downstream components never see
// the raw shape.
package enrich

import (
	"log/slog"
	"time"

	"huntboard/internal/directory/classifier"
	"huntboard/internal/directory/models"
	dErrors "huntboard/pkg/domain-errors"
	"huntboard/pkg/validation"
)

// Enricher builds enriched user records from raw source data.
type Enricher struct {
	logger *slog.Logger
	onDrop func()
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithLogger sets the logger used for per-record drop warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Enricher) { e.logger = logger }
}

// WithDropCounter registers a callback invoked once per dropped record.
func WithDropCounter(onDrop func()) Option {
	return func(e *Enricher) { e.onDrop = onDrop }
}

// New constructs an Enricher.
func New(opts ...Option) *Enricher {
	e := &Enricher{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Build validates one raw user and derives its enriched record.
// Application counts and the recent-activity signal come from the user's
// slice of the application collection.
func (e *Enricher) Build(raw models.RawUser, apps []models.RawApplication, now time.Time) (models.UserRecord, error) {
	if err := validation.Validate(raw); err != nil {
		return models.UserRecord{}, dErrors.Wrap(err, dErrors.CodeValidation, "invalid user record")
	}

	var lastSignIn time.Time
	if raw.LastSignInAt != nil {
		lastSignIn = *raw.LastSignInAt
	}

	var latestApp time.Time
	recentApp := false
	for _, app := range apps {
		if app.CreatedAt.After(latestApp) {
			latestApp = app.CreatedAt
		}
		if !app.CreatedAt.IsZero() && !app.CreatedAt.After(now) &&
			now.Sub(app.CreatedAt) <= classifier.ActivityWindow {
			recentApp = true
		}
	}

	lastActive := lastSignIn
	if latestApp.After(lastActive) {
		lastActive = latestApp
	}

	record := models.UserRecord{
		ID:                raw.ID,
		JoinedAt:          raw.CreatedAt,
		LastSignInAt:      lastSignIn,
		LastActiveAt:      lastActive,
		TotalApplications: len(apps),
		Device:            classifier.ClassifyDevice(raw.UserAgent),
		DeviceLabel:       classifier.DisplayDevice(raw.UserAgent),
		Status:            classifier.DetermineStatus(raw.CreatedAt, lastSignIn, recentApp, now),
		AuthMode:          models.AuthModeLocal,
		Admin:             raw.Admin,
		Metadata:          raw.Metadata,
	}
	if raw.Authenticated {
		record.AuthMode = models.AuthModeAuthenticated
	}
	if raw.Email != nil {
		record.Email = *raw.Email
	}
	if raw.DisplayName != nil {
		record.DisplayName = *raw.DisplayName
	}
	// Session instrumentation is optional; absent means unknown, never a
	// fabricated placeholder.
	if raw.SessionCount != nil {
		record.SessionCount = *raw.SessionCount
	}
	if raw.AvgSessionMS != nil {
		record.AvgSessionDuration = time.Duration(*raw.AvgSessionMS) * time.Millisecond
	}

	return record, nil
}

// BuildAll enriches a whole load. Records that fail validation are dropped
// with a logged warning; a bad record never aborts the load.
func (e *Enricher) BuildAll(raws []models.RawUser, apps []models.RawApplication, now time.Time) []models.UserRecord {
	byUser := make(map[string][]models.RawApplication, len(raws))
	for _, app := range apps {
		byUser[app.UserID] = append(byUser[app.UserID], app)
	}

	records := make([]models.UserRecord, 0, len(raws))
	for _, raw := range raws {
		record, err := e.Build(raw, byUser[raw.ID], now)
		if err != nil {
			e.logger.Warn("dropping user record",
				"user_id", raw.ID,
				"error", err,
			)
			if e.onDrop != nil {
				e.onDrop()
			}
			continue
		}
		records = append(records, record)
	}
	return records
}
