package adapter

import (
	"github.com/google/uuid"
)

// TokenService defines the interface for session token operations.
type TokenService interface {
	// GenerateToken issues a signed session token for the user.
	GenerateToken(userID uuid.UUID) (string, error)

	// ValidateToken verifies a token and returns the authenticated user's ID.
	ValidateToken(token string) (uuid.UUID, error)
}
