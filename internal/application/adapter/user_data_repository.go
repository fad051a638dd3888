package adapter

import (
	"context"

	"github.com/cashbook/cashbook/internal/domain/entity"
)

// UserDataRepository defines the interface for the per-user aggregate document
// store. One document exists per user; writes replace the whole document.
type UserDataRepository interface {
	// Find retrieves the aggregate for a user. Returns
	// domainerror.ErrDataNotFound when no document exists yet.
	Find(ctx context.Context, userID string) (*entity.UserData, error)

	// Create persists a new aggregate document.
	Create(ctx context.Context, data *entity.UserData) error

	// Upsert replaces the user's document in a single atomic statement,
	// creating it when absent. No field-level merge happens; last writer wins.
	Upsert(ctx context.Context, data *entity.UserData) error
}
