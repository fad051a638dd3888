// Package entity defines the core business entities for the domain layer.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a registered cashbook account.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// NewUser creates a new User. The username is normalized so that lookups
// are case-insensitive.
func NewUser(username, passwordHash string) *User {
	return &User{
		ID:           uuid.New(),
		Username:     NormalizeUsername(username),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
}

// NormalizeUsername lowercases and trims a username. All credential
// lookups go through the normalized form.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
