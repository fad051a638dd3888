// Package report contains the pure derived-view functions computed over the
// user data snapshot: balances, filtered listings, groupings, aggregates and
// budget progress. Nothing in this package holds state or touches I/O.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cashbook/cashbook/internal/domain/entity"
)

// Balance returns the signed sum of a book's transaction amounts.
func Balance(book *entity.Book) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range book.Transactions {
		total = total.Add(tx.Amount)
	}
	return total
}

// Totals returns the income and expense sums of a book, both as positive
// numbers.
func Totals(book *entity.Book) (in, out decimal.Decimal) {
	in, out = decimal.Zero, decimal.Zero
	for _, tx := range book.Transactions {
		if tx.Amount.IsPositive() {
			in = in.Add(tx.Amount)
		} else {
			out = out.Add(tx.Amount.Neg())
		}
	}
	return in, out
}

// RunningBalances computes the prefix sum over ALL of a book's transactions
// ordered ascending by timestamp, keyed by transaction id. It is independent
// of any active display filter. The sort is stable, so timestamp ties keep
// their insertion order.
func RunningBalances(book *entity.Book) map[int64]decimal.Decimal {
	ordered := make([]entity.Transaction, len(book.Transactions))
	copy(ordered, book.Transactions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp < ordered[j].Timestamp
	})

	balances := make(map[int64]decimal.Decimal, len(ordered))
	running := decimal.Zero
	for _, tx := range ordered {
		running = running.Add(tx.Amount)
		balances[tx.ID] = running
	}
	return balances
}
