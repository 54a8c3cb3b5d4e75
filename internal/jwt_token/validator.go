package jwttoken

import (
	"kycore/pkg/platform/middleware/auth"
)

// Validator lets the auth middleware verify tokens issued by a Service.
type Validator struct {
	service *Service
}

func (s *Service) Validator() Validator {
	return Validator{service: s}
}

func (v Validator) ValidateToken(raw string) (*auth.JWTClaims, error) {
	claims, err := v.service.Verify(raw)
	if err != nil {
		return nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}
	return &auth.JWTClaims{UserID: userID.String(), JTI: claims.ID}, nil
}
