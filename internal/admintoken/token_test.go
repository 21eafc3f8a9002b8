package admintoken

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	dErrors "huntboard/pkg/domain-errors"
)

type TokenSuite struct {
	suite.Suite
	svc *Service
	now time.Time
}

func TestTokenSuite(t *testing.T) {
	suite.Run(t, new(TokenSuite))
}

func (s *TokenSuite) SetupTest() {
	s.now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	s.svc = New("test-signing-key", 15*time.Minute, WithClock(func() time.Time { return s.now }))
}

func (s *TokenSuite) TestGenerateAndValidate() {
	token, err := s.svc.Generate("admin@huntboard.dev")
	s.Require().NoError(err)
	s.Require().NotEmpty(token)

	claims, err := s.svc.ValidateToken(token)
	s.Require().NoError(err)
	s.Equal("admin@huntboard.dev", claims.Subject)
	s.NotEmpty(claims.JTI)
}

func (s *TokenSuite) TestExpiredTokenRejected() {
	token, err := s.svc.Generate("admin@huntboard.dev")
	s.Require().NoError(err)

	s.now = s.now.Add(16 * time.Minute)
	_, err = s.svc.ValidateToken(token)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *TokenSuite) TestWrongKeyRejected() {
	token, err := s.svc.Generate("admin@huntboard.dev")
	s.Require().NoError(err)

	other := New("different-key", 15*time.Minute, WithClock(func() time.Time { return s.now }))
	_, err = other.ValidateToken(token)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *TokenSuite) TestGarbageTokenRejected() {
	_, err := s.svc.ValidateToken("not-a-token")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *TokenSuite) TestEmptySigningKeyIsNotForgeable() {
	svc := New("", 15*time.Minute, WithClock(func() time.Time { return s.now }))

	// A token minted against the known empty secret must not validate.
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "intruder@example.com",
			IssuedAt:  jwt.NewNumericDate(s.now),
			ExpiresAt: jwt.NewNumericDate(s.now.Add(15 * time.Minute)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(""))
	s.Require().NoError(err)

	_, err = svc.ValidateToken(forged)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	// The substituted per-instance key still round-trips its own tokens.
	token, err := svc.Generate("admin@huntboard.dev")
	s.Require().NoError(err)
	got, err := svc.ValidateToken(token)
	s.Require().NoError(err)
	s.Equal("admin@huntboard.dev", got.Subject)
}

func (s *TokenSuite) TestDefaultTTL() {
	svc := New("key", 0)
	s.Equal(15*time.Minute, svc.TTL())
}
