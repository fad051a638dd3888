package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cashbook/cashbook/internal/application/adapter"
	"github.com/cashbook/cashbook/internal/domain/entity"
	domainerror "github.com/cashbook/cashbook/internal/domain/error"
	"github.com/cashbook/cashbook/internal/integration/persistence/model"
)

// userDataRepository implements the adapter.UserDataRepository interface.
type userDataRepository struct {
	db *gorm.DB
}

// NewUserDataRepository creates a new user data repository instance.
func NewUserDataRepository(db *gorm.DB) adapter.UserDataRepository {
	return &userDataRepository{
		db: db,
	}
}

// Find retrieves the aggregate document for a user.
func (r *userDataRepository) Find(ctx context.Context, userID string) (*entity.UserData, error) {
	var dataModel model.UserDataModel
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&dataModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrDataNotFound
		}
		return nil, result.Error
	}
	return dataModel.ToEntity()
}

// Create persists a new aggregate document.
func (r *userDataRepository) Create(ctx context.Context, data *entity.UserData) error {
	dataModel, err := model.FromUserData(data)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Create(dataModel)
	if result.Error != nil {
		return fmt.Errorf("failed to create user data: %w", result.Error)
	}
	return nil
}

// Upsert replaces the user's document, creating it when absent. The write is
// a single INSERT ... ON CONFLICT DO UPDATE statement, so concurrent sessions
// racing a sync can never leave a torn document; the last writer wins whole.
func (r *userDataRepository) Upsert(ctx context.Context, data *entity.UserData) error {
	dataModel, err := model.FromUserData(data)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(dataModel)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert user data: %w", result.Error)
	}
	return nil
}
