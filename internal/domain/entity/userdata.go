package entity

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as plain JSON numbers on the wire.
	decimal.MarshalJSONWithoutQuotes = true
}

// Well-known fallback values. Categories and businesses are denormalized
// string references, so display code falls back instead of failing.
const (
	DefaultBusiness    = "October"
	FallbackCategory   = "Others"
	DefaultPaymentMode = "Cash"
	DefaultProfileName = "Guest User"
)

// Seed values for a freshly created aggregate.
func defaultBusinesses() []string {
	return []string{"October", "September", "Personal"}
}

func defaultCategories() []string {
	return []string{"Food", "Travel", "Shopping", "Bills", "Others"}
}

// Profile holds the user's display profile.
type Profile struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
	Email  string `json:"email"`
}

// Transaction is a single signed cash entry. Positive amounts are income,
// negative amounts are expenses. Date and Time are display strings; Timestamp
// (epoch milliseconds) is the ordering key.
type Transaction struct {
	ID          int64           `json:"id"`
	Text        string          `json:"text"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	PaymentMode string          `json:"paymentMode"`
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	Timestamp   int64           `json:"timestamp"`
}

// NewTransaction creates a transaction stamped with the given time. IDs are
// drawn from the full 63-bit space so running-balance lookups keyed by id do
// not collide in practice.
func NewTransaction(text string, amount decimal.Decimal, category, paymentMode string, now time.Time) Transaction {
	if paymentMode == "" {
		paymentMode = DefaultPaymentMode
	}
	return Transaction{
		ID:          rand.Int64(),
		Text:        text,
		Amount:      amount,
		Category:    category,
		PaymentMode: paymentMode,
		Date:        now.Format("2 January 2006"),
		Time:        now.Format("3:04 PM"),
		Timestamp:   now.UnixMilli(),
	}
}

// DisplayCategory returns the category with the "Others" fallback applied.
func (t Transaction) DisplayCategory() string {
	if t.Category == "" {
		return FallbackCategory
	}
	return t.Category
}

// Book is an ordered collection of transactions belonging to one business.
type Book struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	Business     string        `json:"business"`
	Transactions []Transaction `json:"transactions"`
	Created      time.Time     `json:"created"`
	Updated      time.Time     `json:"updated"`
}

// EffectiveBusiness returns the book's business, defaulting when the
// reference was never set.
func (b *Book) EffectiveBusiness() string {
	if b.Business == "" {
		return DefaultBusiness
	}
	return b.Business
}

// AddTransaction appends a transaction and bumps the updated timestamp.
func (b *Book) AddTransaction(tx Transaction, now time.Time) {
	b.Transactions = append(b.Transactions, tx)
	b.Updated = now
}

// UpdateTransaction replaces the transaction with the same id. Returns false
// when no such transaction exists.
func (b *Book) UpdateTransaction(tx Transaction, now time.Time) bool {
	for i := range b.Transactions {
		if b.Transactions[i].ID == tx.ID {
			b.Transactions[i] = tx
			b.Updated = now
			return true
		}
	}
	return false
}

// RemoveTransaction deletes a transaction by id. Returns false when no such
// transaction exists.
func (b *Book) RemoveTransaction(id int64, now time.Time) bool {
	for i := range b.Transactions {
		if b.Transactions[i].ID == id {
			b.Transactions = append(b.Transactions[:i], b.Transactions[i+1:]...)
			b.Updated = now
			return true
		}
	}
	return false
}

// UserData is the per-user aggregate document. It is mutated in memory by the
// sync engine and persisted wholesale; the store never merges fields.
type UserData struct {
	UserID          string                     `json:"userId"`
	Books           []Book                     `json:"books"`
	Businesses      []string                   `json:"businesses"`
	Categories      []string                   `json:"categories"`
	CategoryBudgets map[string]decimal.Decimal `json:"categoryBudgets"`
	CurrentBusiness string                     `json:"currentBusiness"`
	Profile         Profile                    `json:"profile"`
	UpdatedAt       time.Time                  `json:"updatedAt"`
}

// NewUserData creates a seeded aggregate for a user that has none yet.
func NewUserData(userID string) *UserData {
	return &UserData{
		UserID:          userID,
		Books:           []Book{},
		Businesses:      defaultBusinesses(),
		Categories:      defaultCategories(),
		CategoryBudgets: map[string]decimal.Decimal{},
		CurrentBusiness: DefaultBusiness,
		Profile:         Profile{Name: DefaultProfileName},
		UpdatedAt:       time.Now().UTC(),
	}
}

// Normalize fills zero values so that a partially populated payload (the
// store does no field-level merge) always round-trips as a complete document.
func (d *UserData) Normalize() {
	if d.Books == nil {
		d.Books = []Book{}
	}
	if d.Businesses == nil {
		d.Businesses = []string{}
	}
	if d.Categories == nil {
		d.Categories = []string{}
	}
	if d.CategoryBudgets == nil {
		d.CategoryBudgets = map[string]decimal.Decimal{}
	}
}

// FindBook returns the book with the given id, or nil.
func (d *UserData) FindBook(id int64) *Book {
	for i := range d.Books {
		if d.Books[i].ID == id {
			return &d.Books[i]
		}
	}
	return nil
}

// AddBook creates a book under the current business. Book ids are
// time-derived, matching how the books were numbered historically.
func (d *UserData) AddBook(name string, now time.Time) *Book {
	book := Book{
		ID:           now.UnixMilli(),
		Name:         strings.TrimSpace(name),
		Business:     d.CurrentBusiness,
		Transactions: []Transaction{},
		Created:      now,
		Updated:      now,
	}
	d.Books = append(d.Books, book)
	return &d.Books[len(d.Books)-1]
}

// DeleteBook removes a book by id. Returns false when no such book exists.
func (d *UserData) DeleteBook(id int64) bool {
	for i := range d.Books {
		if d.Books[i].ID == id {
			d.Books = append(d.Books[:i], d.Books[i+1:]...)
			return true
		}
	}
	return false
}

// HasBusiness reports whether a business with the given name exists.
func (d *UserData) HasBusiness(name string) bool {
	for _, b := range d.Businesses {
		if b == name {
			return true
		}
	}
	return false
}

// AddBusiness appends a business name. Names are unique within a user;
// duplicates are rejected.
func (d *UserData) AddBusiness(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || d.HasBusiness(name) {
		return false
	}
	d.Businesses = append(d.Businesses, name)
	return true
}

// RenameBusiness renames a business and cascades the new name to every book
// referencing the old one, and to the current business selection.
func (d *UserData) RenameBusiness(oldName, newName string) bool {
	newName = strings.TrimSpace(newName)
	if newName == "" || newName == oldName {
		return false
	}
	renamed := false
	for i, b := range d.Businesses {
		if b == oldName {
			d.Businesses[i] = newName
			renamed = true
			break
		}
	}
	if !renamed {
		return false
	}
	for i := range d.Books {
		if d.Books[i].Business == oldName {
			d.Books[i].Business = newName
		}
	}
	if d.CurrentBusiness == oldName {
		d.CurrentBusiness = newName
	}
	return true
}

// DeleteBusiness removes a business name. Books referencing it are kept with
// a dangling reference (they disappear from that business's filtered view but
// are not deleted). The current selection falls back to the first remaining
// business.
func (d *UserData) DeleteBusiness(name string) bool {
	kept := d.Businesses[:0]
	found := false
	for _, b := range d.Businesses {
		if b == name {
			found = true
			continue
		}
		kept = append(kept, b)
	}
	if !found {
		return false
	}
	d.Businesses = kept
	if d.CurrentBusiness == name {
		if len(d.Businesses) > 0 {
			d.CurrentBusiness = d.Businesses[0]
		} else {
			d.CurrentBusiness = "Default"
		}
	}
	return true
}

// SetCurrentBusiness switches the active business.
func (d *UserData) SetCurrentBusiness(name string) bool {
	if !d.HasBusiness(name) {
		return false
	}
	d.CurrentBusiness = name
	return true
}

// HasCategory reports whether a category with the given name exists.
func (d *UserData) HasCategory(name string) bool {
	for _, c := range d.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// AddCategory appends a category name, rejecting duplicates.
func (d *UserData) AddCategory(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || d.HasCategory(name) {
		return false
	}
	d.Categories = append(d.Categories, name)
	return true
}

// RenameCategory renames a category and cascades to every transaction across
// all books and to the budget keyed by the old name. Category is a
// denormalized string, not a foreign key; this is the one place the cascade
// lives.
func (d *UserData) RenameCategory(oldName, newName string) bool {
	newName = strings.TrimSpace(newName)
	if newName == "" || newName == oldName || d.HasCategory(newName) {
		return false
	}
	renamed := false
	for i, c := range d.Categories {
		if c == oldName {
			d.Categories[i] = newName
			renamed = true
			break
		}
	}
	if !renamed {
		return false
	}
	for bi := range d.Books {
		for ti := range d.Books[bi].Transactions {
			if d.Books[bi].Transactions[ti].Category == oldName {
				d.Books[bi].Transactions[ti].Category = newName
			}
		}
	}
	if budget, ok := d.CategoryBudgets[oldName]; ok {
		delete(d.CategoryBudgets, oldName)
		d.CategoryBudgets[newName] = budget
	}
	return true
}

// DeleteCategory removes a category, reassigns its transactions to the
// fallback category, and drops its budget entry.
func (d *UserData) DeleteCategory(name string) bool {
	kept := d.Categories[:0]
	found := false
	for _, c := range d.Categories {
		if c == name {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return false
	}
	d.Categories = kept
	for bi := range d.Books {
		for ti := range d.Books[bi].Transactions {
			if d.Books[bi].Transactions[ti].Category == name {
				d.Books[bi].Transactions[ti].Category = FallbackCategory
			}
		}
	}
	delete(d.CategoryBudgets, name)
	return true
}

// SetBudget sets a monthly spending budget for a category. Budgets must be
// positive.
func (d *UserData) SetBudget(category string, amount decimal.Decimal) bool {
	if !d.HasCategory(category) || !amount.IsPositive() {
		return false
	}
	if d.CategoryBudgets == nil {
		d.CategoryBudgets = map[string]decimal.Decimal{}
	}
	d.CategoryBudgets[category] = amount
	return true
}

// RemoveBudget drops the budget for a category.
func (d *UserData) RemoveBudget(category string) {
	delete(d.CategoryBudgets, category)
}

// UpdateProfile replaces the profile.
func (d *UserData) UpdateProfile(p Profile) {
	d.Profile = p
}
