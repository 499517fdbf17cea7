package repository

import (
	"context"

	"deptsite/internal/auth/domain/model"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService defines the interface for session token operations.
type TokenService interface {
	GenerateToken(ctx context.Context, userID, email string, role model.Role) (string, error)
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the identity and role claim carried by a session token.
type Claims struct {
	UserID string     `json:"userID"`
	Email  string     `json:"email"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Session converts token claims into a request-scoped session.
func (c *Claims) Session() *model.Session {
	return &model.Session{
		UserID: c.UserID,
		Email:  c.Email,
		Role:   c.Role,
	}
}
