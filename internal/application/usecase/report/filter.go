package report

import (
	"strings"
	"time"

	"github.com/cashbook/cashbook/internal/domain/entity"
)

// EntryType selects transactions by sign.
type EntryType string

const (
	EntryTypeAll     EntryType = "all"
	EntryTypeIncome  EntryType = "income"
	EntryTypeExpense EntryType = "expense"
)

// RangeBucket is a named date-range predicate.
type RangeBucket string

const (
	RangeAll       RangeBucket = "all"
	RangeToday     RangeBucket = "today"
	RangeYesterday RangeBucket = "yesterday"
	RangeThisWeek  RangeBucket = "this_week"
	RangeLastWeek  RangeBucket = "last_week"
	RangeThisMonth RangeBucket = "this_month"
	RangeLastMonth RangeBucket = "last_month"
	RangeCustom    RangeBucket = "custom"
)

// DateRange narrows transactions to a time window. Start and End are only
// consulted for RangeCustom; every other bucket is resolved against the
// caller-supplied reference time.
type DateRange struct {
	Bucket RangeBucket
	Start  time.Time
	End    time.Time
}

// Filter composes the active transaction filters. All active parts apply
// with logical AND. Query is a case-insensitive substring match on the
// description.
type Filter struct {
	Query string
	Type  EntryType
	Range DateRange
}

// Bounds resolves the range to an inclusive [start, end] window relative to
// now. Weeks start on Sunday. Custom ranges span the start day's 00:00:00
// through the end day's 23:59:59. bounded is false when the range does not
// constrain (RangeAll or zero value).
func (r DateRange) Bounds(now time.Time) (start, end time.Time, bounded bool) {
	today := startOfDay(now)

	switch r.Bucket {
	case RangeToday:
		return today, endOfDay(today), true
	case RangeYesterday:
		y := today.AddDate(0, 0, -1)
		return y, endOfDay(y), true
	case RangeThisWeek:
		weekStart := today.AddDate(0, 0, -int(today.Weekday()))
		return weekStart, endOfDay(weekStart.AddDate(0, 0, 6)), true
	case RangeLastWeek:
		weekStart := today.AddDate(0, 0, -int(today.Weekday())-7)
		return weekStart, endOfDay(weekStart.AddDate(0, 0, 6)), true
	case RangeThisMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return monthStart, endOfDay(monthStart.AddDate(0, 1, -1)), true
	case RangeLastMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
		return monthStart, endOfDay(monthStart.AddDate(0, 1, -1)), true
	case RangeCustom:
		if r.Start.IsZero() && r.End.IsZero() {
			return time.Time{}, time.Time{}, false
		}
		start = startOfDay(r.Start)
		end = endOfDay(startOfDay(r.End))
		return start, end, true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// Matches reports whether a single transaction passes the filter.
func (f Filter) Matches(tx entity.Transaction, now time.Time) bool {
	if q := strings.TrimSpace(f.Query); q != "" {
		if !strings.Contains(strings.ToLower(tx.Text), strings.ToLower(q)) {
			return false
		}
	}

	switch f.Type {
	case EntryTypeIncome:
		if !tx.Amount.IsPositive() {
			return false
		}
	case EntryTypeExpense:
		if !tx.Amount.IsNegative() {
			return false
		}
	}

	if start, end, bounded := f.Range.Bounds(now); bounded {
		at := time.UnixMilli(tx.Timestamp).In(now.Location())
		if at.Before(start) || at.After(end) {
			return false
		}
	}

	return true
}

// FilterTransactions returns the book's transactions passing the filter, in
// their original relative order.
func FilterTransactions(book *entity.Book, f Filter, now time.Time) []entity.Transaction {
	matched := make([]entity.Transaction, 0, len(book.Transactions))
	for _, tx := range book.Transactions {
		if f.Matches(tx, now) {
			matched = append(matched, tx)
		}
	}
	return matched
}

// FilterBooks narrows the home-screen book list to the active business plus a
// case-insensitive name search. Books whose business reference dangles fall
// back to the default business.
func FilterBooks(books []entity.Book, business, query string) []entity.Book {
	query = strings.ToLower(strings.TrimSpace(query))
	matched := make([]entity.Book, 0, len(books))
	for _, b := range books {
		if b.EffectiveBusiness() != business {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(b.Name), query) {
			continue
		}
		matched = append(matched, b)
	}
	return matched
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(dayStart time.Time) time.Time {
	return dayStart.AddDate(0, 0, 1).Add(-time.Millisecond)
}
