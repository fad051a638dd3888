package report

import (
	"sort"

	"github.com/cashbook/cashbook/internal/domain/entity"
)

// DateGroup is one display-date section of the transaction list.
type DateGroup struct {
	Date         string
	Transactions []entity.Transaction
}

// SortedDesc returns a copy of the transactions sorted newest first. The sort
// is stable so equal timestamps keep their relative order.
func SortedDesc(txs []entity.Transaction) []entity.Transaction {
	sorted := make([]entity.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp > sorted[j].Timestamp
	})
	return sorted
}

// GroupByDate groups an already-sorted sequence by its display date string,
// preserving first-seen date order.
func GroupByDate(txs []entity.Transaction) []DateGroup {
	var groups []DateGroup
	index := map[string]int{}
	for _, tx := range txs {
		date := tx.Date
		if date == "" {
			date = "Unknown Date"
		}
		i, ok := index[date]
		if !ok {
			i = len(groups)
			index[date] = i
			groups = append(groups, DateGroup{Date: date})
		}
		groups[i].Transactions = append(groups[i].Transactions, tx)
	}
	return groups
}
