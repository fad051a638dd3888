// Package data contains use cases for the per-user aggregate document.
package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/cashbook/cashbook/internal/application/adapter"
	"github.com/cashbook/cashbook/internal/domain/entity"
	domainerror "github.com/cashbook/cashbook/internal/domain/error"
)

// GetDataUseCase returns a user's aggregate, creating the seeded default
// document on first access.
type GetDataUseCase struct {
	dataRepo adapter.UserDataRepository
}

// NewGetDataUseCase creates a new GetDataUseCase instance.
func NewGetDataUseCase(dataRepo adapter.UserDataRepository) *GetDataUseCase {
	return &GetDataUseCase{dataRepo: dataRepo}
}

// Execute fetches the aggregate for the user. A missing document is created
// with seed defaults and persisted before being returned.
func (uc *GetDataUseCase) Execute(ctx context.Context, userID string) (*entity.UserData, error) {
	data, err := uc.dataRepo.Find(ctx, userID)
	if err == nil {
		data.Normalize()
		return data, nil
	}
	if !errors.Is(err, domainerror.ErrDataNotFound) {
		return nil, fmt.Errorf("failed to fetch user data: %w", err)
	}

	data = entity.NewUserData(userID)
	if err := uc.dataRepo.Create(ctx, data); err != nil {
		return nil, fmt.Errorf("failed to create default user data: %w", err)
	}
	return data, nil
}
