// Package memory provides an in-memory Source used as the local fallback
// when no database is configured, and as a convenient double in tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"huntboard/internal/directory/models"
)

// Store is a Source backed by in-memory slices. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	users []models.RawUser
	apps  []models.RawApplication
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{}
}

// NewSeeded constructs a store pre-populated with a deterministic demo
// dataset relative to the given reference time. IDs are name-based UUIDs so
// repeated runs produce identical data.
func NewSeeded(now time.Time) *Store {
	s := New()

	seedUsers := []struct {
		name      string
		email     string
		joinedAgo time.Duration
		signInAgo time.Duration // 0 = never signed in
		userAgent string
		auth      bool
		admin     bool
		apps      []time.Duration // application ages
	}{
		{
			name: "Avery Chen", email: "avery@example.com",
			joinedAgo: 90 * 24 * time.Hour, signInAgo: 26 * time.Hour,
			userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			auth:      true, admin: true,
			apps: []time.Duration{2 * 24 * time.Hour, 5 * 24 * time.Hour, 20 * 24 * time.Hour},
		},
		{
			name: "Jordan Patel", email: "jordan@example.com",
			joinedAgo: 45 * 24 * time.Hour, signInAgo: 3 * 24 * time.Hour,
			userAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			auth:      true,
			apps:      []time.Duration{24 * time.Hour, 4 * 24 * time.Hour},
		},
		{
			name: "Sam Okafor", email: "sam@example.com",
			joinedAgo: 200 * 24 * time.Hour, signInAgo: 30 * 24 * time.Hour,
			userAgent: "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1",
			apps:      []time.Duration{60 * 24 * time.Hour},
		},
		{
			name: "Riley Novak", email: "riley@example.com",
			joinedAgo: 3 * time.Hour,
			userAgent: "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
		},
	}

	for i, u := range seedUsers {
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("huntboard-demo-user-%d", i))).String()
		email := u.email
		name := u.name
		raw := models.RawUser{
			ID:            id,
			Email:         &email,
			DisplayName:   &name,
			CreatedAt:     now.Add(-u.joinedAgo),
			UserAgent:     u.userAgent,
			Authenticated: u.auth,
			Admin:         u.admin,
			Metadata:      map[string]string{"seed": "demo"},
		}
		if u.signInAgo > 0 {
			signIn := now.Add(-u.signInAgo)
			raw.LastSignInAt = &signIn
		}
		s.users = append(s.users, raw)

		for j, age := range u.apps {
			appID := uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("huntboard-demo-app-%d-%d", i, j))).String()
			s.apps = append(s.apps, models.RawApplication{
				ID:        appID,
				UserID:    id,
				Company:   fmt.Sprintf("Company %d-%d", i, j),
				Role:      "Software Engineer",
				Status:    "applied",
				CreatedAt: now.Add(-age),
			})
		}
	}
	return s
}

// FetchUsers returns a copy of the raw user collection.
func (s *Store) FetchUsers(_ context.Context) ([]models.RawUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.RawUser, len(s.users))
	copy(out, s.users)
	return out, nil
}

// FetchApplications returns a copy of the raw application collection.
func (s *Store) FetchApplications(_ context.Context) ([]models.RawApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.RawApplication, len(s.apps))
	copy(out, s.apps)
	return out, nil
}

// AddUser appends a raw user. Intended for tests.
func (s *Store) AddUser(u models.RawUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, u)
}

// AddApplication appends a raw application. Intended for tests.
func (s *Store) AddApplication(a models.RawApplication) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps = append(s.apps, a)
}
