package jwttoken

import (
	"proofregistry/pkg/domain"
	dErrors "proofregistry/pkg/domain-errors"
)

// PrincipalValidator adapts JWTService to the auth middleware: a valid token
// resolves to the principal in its subject.
type PrincipalValidator struct {
	service *JWTService
}

func NewPrincipalValidator(service *JWTService) *PrincipalValidator {
	return &PrincipalValidator{service: service}
}

func (a *PrincipalValidator) ValidateToken(tokenString string) (domain.Principal, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}
	principal, err := domain.ParsePrincipal(claims.Subject)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token subject")
	}
	return principal, nil
}
