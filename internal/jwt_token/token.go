// Package jwttoken issues and verifies the HS256 bearer tokens the API accepts.
// The subject claim carries the user id.
package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"kycore/pkg/domain"
	dErrors "kycore/pkg/domain-errors"
)

type Claims struct {
	jwt.RegisteredClaims
}

// UserID parses the subject.
func (c *Claims) UserID() (domain.ID, error) {
	id, err := domain.ParseID(c.Subject)
	if err != nil {
		return domain.ID{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token subject")
	}
	return id, nil
}

type Service struct {
	key      []byte
	issuer   string
	audience string
	now      func() time.Time
}

func New(signingKey, issuer, audience string) *Service {
	return &Service{key: []byte(signingKey), issuer: issuer, audience: audience, now: time.Now}
}

// Issue signs a token for userID valid for ttl.
func (s *Service) Issue(userID domain.ID, ttl time.Duration) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    s.issuer,
		Audience:  jwt.ClaimStrings{s.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}})
	return token.SignedString(s.key)
}

// Verify checks signature, issuer, audience and expiry. Every failure is
// CodeUnauthorized.
func (s *Service) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
	case err != nil:
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return claims, nil
}

func (s *Service) keyFunc(*jwt.Token) (any, error) {
	return s.key, nil
}
