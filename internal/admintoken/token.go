// Package admintoken issues and validates the bearer tokens used by the
// admin console.
package admintoken

import (
	"crypto/rand"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"huntboard/internal/platform/middleware"
	dErrors "huntboard/pkg/domain-errors"
)

const issuer = "huntboard-admin"

// Claims are the JWT claims carried by admin tokens.
type Claims struct {
	jwt.RegisteredClaims
}

// Service handles admin token creation and validation.
type Service struct {
	signingKey []byte
	tokenTTL   time.Duration
	clock      func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithClock overrides the time source. Intended for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// New constructs a token service. TTL defaults to 15 minutes.
// An empty signing key is replaced with a random per-instance key: tokens
// then survive only for this process's lifetime, but nobody can mint one
// against a known empty secret.
func New(signingKey string, tokenTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		signingKey: []byte(signingKey),
		tokenTTL:   tokenTTL,
		clock:      time.Now,
	}
	if len(s.signingKey) == 0 {
		key := make([]byte, 32)
		rand.Read(key) //nolint:errcheck // never fails per crypto/rand docs
		s.signingKey = key
	}
	if s.tokenTTL <= 0 {
		s.tokenTTL = 15 * time.Minute
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate creates a signed token for the given admin subject.
func (s *Service) Generate(subject string) (string, error) {
	now := s.clock()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return signed, nil
}

// ValidateToken parses and verifies a token string, returning middleware
// claims on success.
func (s *Service) ValidateToken(tokenString string) (*middleware.AdminClaims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "unexpected signing method")
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.clock),
	)
	if err != nil || !token.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token")
	}
	return &middleware.AdminClaims{Subject: claims.Subject, JTI: claims.ID}, nil
}

// TTL reports the configured token lifetime.
func (s *Service) TTL() time.Duration {
	return s.tokenTTL
}
