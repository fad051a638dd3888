package dto

import (
	"github.com/shopspring/decimal"

	"github.com/cashbook/cashbook/internal/domain/entity"
)

// SyncRequest carries the client's full snapshot. Top-level fields the client
// omits default to their zero values; the caller normalizes them to empty
// collections before the whole-document write.
type SyncRequest struct {
	Books           []entity.Book              `json:"books"`
	Businesses      []string                   `json:"businesses"`
	Categories      []string                   `json:"categories"`
	CategoryBudgets map[string]decimal.Decimal `json:"categoryBudgets"`
	CurrentBusiness string                     `json:"currentBusiness"`
	Profile         entity.Profile             `json:"profile"`
}

// ToUserData converts the request into the domain aggregate.
func (r *SyncRequest) ToUserData() *entity.UserData {
	data := &entity.UserData{
		Books:           r.Books,
		Businesses:      r.Businesses,
		Categories:      r.Categories,
		CategoryBudgets: r.CategoryBudgets,
		CurrentBusiness: r.CurrentBusiness,
		Profile:         r.Profile,
	}
	data.Normalize()
	return data
}

// SyncResponse represents the response for a successful sync.
type SyncResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
