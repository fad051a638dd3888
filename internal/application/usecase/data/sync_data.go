package data

import (
	"context"
	"fmt"
	"time"

	"github.com/cashbook/cashbook/internal/application/adapter"
	"github.com/cashbook/cashbook/internal/domain/entity"
)

// SyncDataUseCase replaces a user's aggregate document with the submitted
// snapshot. Concurrent sessions race with last-write-wins semantics; each
// write is a single atomic upsert so no torn document can be observed.
type SyncDataUseCase struct {
	dataRepo adapter.UserDataRepository
}

// NewSyncDataUseCase creates a new SyncDataUseCase instance.
func NewSyncDataUseCase(dataRepo adapter.UserDataRepository) *SyncDataUseCase {
	return &SyncDataUseCase{dataRepo: dataRepo}
}

// Execute performs the whole-document upsert for the user.
func (uc *SyncDataUseCase) Execute(ctx context.Context, userID string, data *entity.UserData) error {
	data.UserID = userID
	data.UpdatedAt = time.Now().UTC()
	data.Normalize()

	if err := uc.dataRepo.Upsert(ctx, data); err != nil {
		return fmt.Errorf("failed to sync user data: %w", err)
	}
	return nil
}
