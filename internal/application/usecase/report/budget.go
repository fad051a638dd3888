package report

import (
	"sort"

	"github.com/shopspring/decimal"
)

// BudgetStatus describes how far a category's spending has progressed against
// its budget.
type BudgetStatus struct {
	Category   string
	Budget     decimal.Decimal
	Spent      decimal.Decimal
	Percent    float64
	OverBudget bool
}

// BudgetProgress computes the progress for every budgeted category. Percent
// is capped at 100; OverBudget flags spending past the budget. Rows are
// sorted by category name for stable rendering.
func BudgetProgress(budgets, spending map[string]decimal.Decimal) []BudgetStatus {
	statuses := make([]BudgetStatus, 0, len(budgets))
	for category, budget := range budgets {
		if !budget.IsPositive() {
			continue
		}
		spent := spending[category]
		percent, _ := spent.Div(budget).Mul(decimal.NewFromInt(100)).Float64()
		if percent > 100 {
			percent = 100
		}
		statuses = append(statuses, BudgetStatus{
			Category:   category,
			Budget:     budget,
			Spent:      spent,
			Percent:    percent,
			OverBudget: spent.GreaterThan(budget),
		})
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Category < statuses[j].Category
	})
	return statuses
}
