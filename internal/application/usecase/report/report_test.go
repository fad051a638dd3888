package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cashbook/cashbook/internal/domain/entity"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func tx(id int64, text, category string, amt string, at time.Time) entity.Transaction {
	return entity.Transaction{
		ID:          id,
		Text:        text,
		Amount:      amount(amt),
		Category:    category,
		PaymentMode: "Cash",
		Date:        at.Format("2 January 2006"),
		Time:        at.Format("3:04 PM"),
		Timestamp:   at.UnixMilli(),
	}
}

func TestBalanceAndTotals(t *testing.T) {
	now := time.Now()
	book := &entity.Book{Transactions: []entity.Transaction{
		tx(1, "Salary", "Others", "100", now),
		tx(2, "Lunch", "Food", "-30", now),
		tx(3, "Refund", "Shopping", "20", now),
	}}

	assert.True(t, Balance(book).Equal(amount("90")))

	in, out := Totals(book)
	assert.True(t, in.Equal(amount("120")))
	assert.True(t, out.Equal(amount("30")))
}

func TestBalance_EmptyBook(t *testing.T) {
	book := &entity.Book{}
	assert.True(t, Balance(book).IsZero())
}

func TestRunningBalances(t *testing.T) {
	base := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	book := &entity.Book{Transactions: []entity.Transaction{
		// Inserted out of timestamp order on purpose.
		tx(3, "Dinner", "Food", "-25", base.Add(2*time.Hour)),
		tx(1, "Salary", "Others", "100", base),
		tx(2, "Bus", "Travel", "-5", base.Add(time.Hour)),
	}}

	balances := RunningBalances(book)
	require.Len(t, balances, 3)
	assert.True(t, balances[1].Equal(amount("100")))
	assert.True(t, balances[2].Equal(amount("95")))
	assert.True(t, balances[3].Equal(amount("70")))

	// The newest transaction's running balance is the book balance.
	assert.True(t, balances[3].Equal(Balance(book)))
}

func TestRunningBalances_TimestampTieKeepsInsertionOrder(t *testing.T) {
	at := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	book := &entity.Book{Transactions: []entity.Transaction{
		tx(1, "First", "Others", "10", at),
		tx(2, "Second", "Others", "-4", at),
	}}

	balances := RunningBalances(book)
	assert.True(t, balances[1].Equal(amount("10")))
	assert.True(t, balances[2].Equal(amount("6")))
}

func TestFilter_TypeAndQuery(t *testing.T) {
	now := time.Now()
	book := &entity.Book{Transactions: []entity.Transaction{
		tx(1, "Monthly Salary", "Others", "1200", now),
		tx(2, "Grocery run", "Food", "-80", now),
		tx(3, "Grocery refund", "Food", "15", now),
	}}

	t.Run("expense only", func(t *testing.T) {
		got := FilterTransactions(book, Filter{Type: EntryTypeExpense}, now)
		require.Len(t, got, 1)
		assert.Equal(t, int64(2), got[0].ID)
	})

	t.Run("income only", func(t *testing.T) {
		got := FilterTransactions(book, Filter{Type: EntryTypeIncome}, now)
		require.Len(t, got, 2)
	})

	t.Run("query is case-insensitive substring", func(t *testing.T) {
		got := FilterTransactions(book, Filter{Query: "GROCERY"}, now)
		require.Len(t, got, 2)
	})

	t.Run("filters AND-compose", func(t *testing.T) {
		got := FilterTransactions(book, Filter{Query: "grocery", Type: EntryTypeExpense}, now)
		require.Len(t, got, 1)
		assert.Equal(t, int64(2), got[0].ID)
	})

	t.Run("zero filter passes everything", func(t *testing.T) {
		got := FilterTransactions(book, Filter{}, now)
		assert.Len(t, got, 3)
	})
}

func TestDateRange_Bounds(t *testing.T) {
	// A Wednesday.
	now := time.Date(2024, time.June, 12, 15, 30, 0, 0, time.UTC)

	t.Run("today", func(t *testing.T) {
		start, end, bounded := DateRange{Bucket: RangeToday}.Bounds(now)
		require.True(t, bounded)
		assert.Equal(t, time.Date(2024, time.June, 12, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2024, time.June, 12, 23, 59, 59, int(999*time.Millisecond), time.UTC), end)
	})

	t.Run("yesterday", func(t *testing.T) {
		start, end, bounded := DateRange{Bucket: RangeYesterday}.Bounds(now)
		require.True(t, bounded)
		assert.Equal(t, 11, start.Day())
		assert.Equal(t, 11, end.Day())
	})

	t.Run("this week starts on Sunday", func(t *testing.T) {
		start, end, bounded := DateRange{Bucket: RangeThisWeek}.Bounds(now)
		require.True(t, bounded)
		assert.Equal(t, time.Sunday, start.Weekday())
		assert.Equal(t, 9, start.Day())
		assert.Equal(t, time.Saturday, end.Weekday())
		assert.Equal(t, 15, end.Day())
	})

	t.Run("last week is the previous Sunday through Saturday", func(t *testing.T) {
		start, end, bounded := DateRange{Bucket: RangeLastWeek}.Bounds(now)
		require.True(t, bounded)
		assert.Equal(t, 2, start.Day())
		assert.Equal(t, 8, end.Day())
	})

	t.Run("this month", func(t *testing.T) {
		start, end, bounded := DateRange{Bucket: RangeThisMonth}.Bounds(now)
		require.True(t, bounded)
		assert.Equal(t, 1, start.Day())
		assert.Equal(t, 30, end.Day())
		assert.Equal(t, time.June, end.Month())
	})

	t.Run("last month", func(t *testing.T) {
		start, end, bounded := DateRange{Bucket: RangeLastMonth}.Bounds(now)
		require.True(t, bounded)
		assert.Equal(t, time.May, start.Month())
		assert.Equal(t, 31, end.Day())
	})

	t.Run("custom spans whole days inclusive", func(t *testing.T) {
		r := DateRange{
			Bucket: RangeCustom,
			Start:  time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC),
			End:    time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC),
		}
		start, end, bounded := r.Bounds(now)
		require.True(t, bounded)
		assert.Equal(t, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2024, time.June, 3, 23, 59, 59, int(999*time.Millisecond), time.UTC), end)
	})

	t.Run("all does not bound", func(t *testing.T) {
		_, _, bounded := DateRange{Bucket: RangeAll}.Bounds(now)
		assert.False(t, bounded)
		_, _, bounded = DateRange{}.Bounds(now)
		assert.False(t, bounded)
	})
}

func TestFilter_RangeMatching(t *testing.T) {
	now := time.Date(2024, time.June, 12, 15, 30, 0, 0, time.UTC)
	book := &entity.Book{Transactions: []entity.Transaction{
		tx(1, "Today", "Food", "-10", now.Add(-2*time.Hour)),
		tx(2, "Yesterday", "Food", "-20", now.AddDate(0, 0, -1)),
		tx(3, "Last month", "Food", "-30", now.AddDate(0, -1, 0)),
	}}

	t.Run("today bucket", func(t *testing.T) {
		got := FilterTransactions(book, Filter{Range: DateRange{Bucket: RangeToday}}, now)
		require.Len(t, got, 1)
		assert.Equal(t, int64(1), got[0].ID)
	})

	t.Run("this month bucket", func(t *testing.T) {
		got := FilterTransactions(book, Filter{Range: DateRange{Bucket: RangeThisMonth}}, now)
		assert.Len(t, got, 2)
	})

	t.Run("last month bucket", func(t *testing.T) {
		got := FilterTransactions(book, Filter{Range: DateRange{Bucket: RangeLastMonth}}, now)
		require.Len(t, got, 1)
		assert.Equal(t, int64(3), got[0].ID)
	})
}

func TestSortedDescAndGroupByDate(t *testing.T) {
	day1 := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, time.June, 11, 9, 0, 0, 0, time.UTC)
	txs := []entity.Transaction{
		tx(1, "Old", "Food", "-10", day1),
		tx(2, "Newer", "Food", "-20", day2),
		tx(3, "Newest", "Food", "-30", day2.Add(time.Hour)),
	}

	sorted := SortedDesc(txs)
	require.Len(t, sorted, 3)
	assert.Equal(t, int64(3), sorted[0].ID)
	assert.Equal(t, int64(1), sorted[2].ID)
	// Input untouched.
	assert.Equal(t, int64(1), txs[0].ID)

	groups := GroupByDate(sorted)
	require.Len(t, groups, 2)
	assert.Equal(t, "11 June 2024", groups[0].Date)
	assert.Len(t, groups[0].Transactions, 2)
	assert.Equal(t, "10 June 2024", groups[1].Date)
}

func TestGroupByDate_UnknownDateFallback(t *testing.T) {
	groups := GroupByDate([]entity.Transaction{{ID: 1, Amount: amount("-5")}})
	require.Len(t, groups, 1)
	assert.Equal(t, "Unknown Date", groups[0].Date)
}

func TestAggregateByCategory(t *testing.T) {
	now := time.Now()
	txs := []entity.Transaction{
		tx(1, "Lunch", "Food", "-20", now),
		tx(2, "Dinner", "Food", "-30", now),
		tx(3, "Salary", "", "100", now),
	}

	rows := AggregateByCategory(txs)
	require.Len(t, rows, 2)

	assert.Equal(t, "Food", rows[0].Key)
	assert.True(t, rows[0].Out.Equal(amount("50")))
	assert.True(t, rows[0].In.IsZero())
	assert.True(t, rows[0].Net().Equal(amount("-50")))

	// Untagged income lands in the fallback category.
	assert.Equal(t, entity.FallbackCategory, rows[1].Key)
	assert.True(t, rows[1].In.Equal(amount("100")))
}

func TestAggregateByDay(t *testing.T) {
	day1 := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, time.June, 11, 9, 0, 0, 0, time.UTC)
	rows := AggregateByDay([]entity.Transaction{
		tx(1, "A", "Food", "-10", day1),
		tx(2, "B", "Food", "40", day1),
		tx(3, "C", "Food", "-5", day2),
	})

	require.Len(t, rows, 2)
	assert.Equal(t, "10 June 2024", rows[0].Key)
	assert.True(t, rows[0].Net().Equal(amount("30")))
	assert.Equal(t, "11 June 2024", rows[1].Key)
	assert.True(t, rows[1].Out.Equal(amount("5")))
}

func TestCategorySpending(t *testing.T) {
	now := time.Now()
	spending := CategorySpending([]entity.Transaction{
		tx(1, "Lunch", "Food", "-20", now),
		tx(2, "Snack", "Food", "-5", now),
		tx(3, "Salary", "Food", "100", now), // income never counts
		tx(4, "Untagged", "", "-7", now),
	})

	require.Len(t, spending, 2)
	assert.True(t, spending["Food"].Equal(amount("25")))
	assert.True(t, spending[entity.FallbackCategory].Equal(amount("7")))
}

func TestBudgetProgress(t *testing.T) {
	budgets := map[string]decimal.Decimal{
		"Travel": amount("100"),
		"Food":   amount("200"),
		"Bogus":  amount("0"), // non-positive budgets are skipped
	}
	spending := map[string]decimal.Decimal{
		"Food":   amount("50"),
		"Travel": amount("150"),
	}

	statuses := BudgetProgress(budgets, spending)
	require.Len(t, statuses, 2)

	// Sorted by category name.
	assert.Equal(t, "Food", statuses[0].Category)
	assert.InDelta(t, 25.0, statuses[0].Percent, 0.001)
	assert.False(t, statuses[0].OverBudget)

	assert.Equal(t, "Travel", statuses[1].Category)
	assert.InDelta(t, 100.0, statuses[1].Percent, 0.001) // capped
	assert.True(t, statuses[1].OverBudget)
}

func TestFilterBooks(t *testing.T) {
	books := []entity.Book{
		{ID: 1, Name: "Household", Business: "October"},
		{ID: 2, Name: "Side Project", Business: "Personal"},
		{ID: 3, Name: "Dangling"}, // empty business falls back to October
	}

	t.Run("business filter with dangling fallback", func(t *testing.T) {
		got := FilterBooks(books, "October", "")
		require.Len(t, got, 2)
		assert.Equal(t, int64(1), got[0].ID)
		assert.Equal(t, int64(3), got[1].ID)
	})

	t.Run("name search composes with business", func(t *testing.T) {
		got := FilterBooks(books, "October", "house")
		require.Len(t, got, 1)
		assert.Equal(t, int64(1), got[0].ID)
	})

	t.Run("no matches", func(t *testing.T) {
		assert.Empty(t, FilterBooks(books, "September", ""))
	})
}
