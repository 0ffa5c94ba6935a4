package jwttoken

import (
	"medledger/pkg/platform/middleware/auth"
)

// MiddlewareAdapter adapts JWTService to the auth middleware's TokenValidator
// interface so the middleware package stays free of JWT specifics.
type MiddlewareAdapter struct {
	service *JWTService
}

func NewMiddlewareAdapter(service *JWTService) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*auth.Claims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &auth.Claims{Identity: claims.Identity}, nil
}
