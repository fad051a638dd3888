package report

import (
	"github.com/shopspring/decimal"

	"github.com/cashbook/cashbook/internal/domain/entity"
)

// BucketTotal is one row of an aggregate report: the income and expense sums
// for a bucket key (a category or a display date). Both sums are positive.
type BucketTotal struct {
	Key string
	In  decimal.Decimal
	Out decimal.Decimal
}

// Net returns In - Out.
func (b BucketTotal) Net() decimal.Decimal {
	return b.In.Sub(b.Out)
}

// AggregateByCategory sums income and expenses per category, falling back to
// the "Others" category for untagged entries. Rows appear in first-seen order
// so exporters render them the way the list was traversed.
func AggregateByCategory(txs []entity.Transaction) []BucketTotal {
	return aggregate(txs, func(tx entity.Transaction) string {
		return tx.DisplayCategory()
	})
}

// AggregateByDay sums income and expenses per display date, in first-seen
// order.
func AggregateByDay(txs []entity.Transaction) []BucketTotal {
	return aggregate(txs, func(tx entity.Transaction) string {
		if tx.Date == "" {
			return "Unknown Date"
		}
		return tx.Date
	})
}

func aggregate(txs []entity.Transaction, key func(entity.Transaction) string) []BucketTotal {
	var rows []BucketTotal
	index := map[string]int{}
	for _, tx := range txs {
		k := key(tx)
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, BucketTotal{Key: k, In: decimal.Zero, Out: decimal.Zero})
		}
		if tx.Amount.IsPositive() {
			rows[i].In = rows[i].In.Add(tx.Amount)
		} else {
			rows[i].Out = rows[i].Out.Add(tx.Amount.Neg())
		}
	}
	return rows
}

// CategorySpending returns the expense total per display category. Income
// does not count against budgets.
func CategorySpending(txs []entity.Transaction) map[string]decimal.Decimal {
	spending := map[string]decimal.Decimal{}
	for _, tx := range txs {
		if !tx.Amount.IsNegative() {
			continue
		}
		cat := tx.DisplayCategory()
		spending[cat] = spending[cat].Add(tx.Amount.Neg())
	}
	return spending
}
