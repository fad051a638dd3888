package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/cashbook/cashbook/internal/domain/entity"
)

// UserDataModel represents the user_data table: one aggregate document per
// user. The nested collections are stored as JSON columns because the store
// only ever reads and replaces the document wholesale.
type UserDataModel struct {
	UserID          string         `gorm:"type:varchar(64);primaryKey"`
	Books           datatypes.JSON `gorm:"not null"`
	Businesses      datatypes.JSON `gorm:"not null"`
	Categories      datatypes.JSON `gorm:"not null"`
	CategoryBudgets datatypes.JSON `gorm:"not null"`
	CurrentBusiness string         `gorm:"type:varchar(255)"`
	Profile         datatypes.JSON `gorm:"not null"`
	UpdatedAt       time.Time      `gorm:"not null"`
}

// TableName returns the table name for the UserDataModel.
func (UserDataModel) TableName() string {
	return "user_data"
}

// FromUserData serializes a domain aggregate into its row form.
func FromUserData(data *entity.UserData) (*UserDataModel, error) {
	books, err := json.Marshal(data.Books)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal books: %w", err)
	}
	businesses, err := json.Marshal(data.Businesses)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal businesses: %w", err)
	}
	categories, err := json.Marshal(data.Categories)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal categories: %w", err)
	}
	budgets, err := json.Marshal(data.CategoryBudgets)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal category budgets: %w", err)
	}
	profile, err := json.Marshal(data.Profile)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile: %w", err)
	}

	return &UserDataModel{
		UserID:          data.UserID,
		Books:           books,
		Businesses:      businesses,
		Categories:      categories,
		CategoryBudgets: budgets,
		CurrentBusiness: data.CurrentBusiness,
		Profile:         profile,
		UpdatedAt:       data.UpdatedAt,
	}, nil
}

// ToEntity deserializes a row back into the domain aggregate.
func (m *UserDataModel) ToEntity() (*entity.UserData, error) {
	data := &entity.UserData{
		UserID:          m.UserID,
		CurrentBusiness: m.CurrentBusiness,
		UpdatedAt:       m.UpdatedAt,
	}

	if len(m.Books) > 0 {
		if err := json.Unmarshal(m.Books, &data.Books); err != nil {
			return nil, fmt.Errorf("failed to unmarshal books: %w", err)
		}
	}
	if len(m.Businesses) > 0 {
		if err := json.Unmarshal(m.Businesses, &data.Businesses); err != nil {
			return nil, fmt.Errorf("failed to unmarshal businesses: %w", err)
		}
	}
	if len(m.Categories) > 0 {
		if err := json.Unmarshal(m.Categories, &data.Categories); err != nil {
			return nil, fmt.Errorf("failed to unmarshal categories: %w", err)
		}
	}
	if len(m.CategoryBudgets) > 0 {
		budgets := map[string]decimal.Decimal{}
		if err := json.Unmarshal(m.CategoryBudgets, &budgets); err != nil {
			return nil, fmt.Errorf("failed to unmarshal category budgets: %w", err)
		}
		data.CategoryBudgets = budgets
	}
	if len(m.Profile) > 0 {
		if err := json.Unmarshal(m.Profile, &data.Profile); err != nil {
			return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
		}
	}

	data.Normalize()
	return data, nil
}
