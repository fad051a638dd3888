package localstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cashbook/cashbook/internal/domain/entity"
)

func TestStore_SnapshotRoundTrip(t *testing.T) {
	store := New(t.TempDir())

	data := entity.NewUserData("user-1")
	book := data.AddBook("Household", time.Now())
	book.AddTransaction(entity.NewTransaction("Salary", decimal.NewFromInt(100), "Others", "Bank", time.Now()), time.Now())

	require.NoError(t, store.SaveSnapshot(data))

	got, err := store.LoadSnapshot()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "user-1", got.UserID)
	require.Len(t, got.Books, 1)
	require.Len(t, got.Books[0].Transactions, 1)
	assert.True(t, got.Books[0].Transactions[0].Amount.Equal(decimal.NewFromInt(100)))
}

func TestStore_LoadSnapshot_MissingIsNotAnError(t *testing.T) {
	store := New(t.TempDir())
	got, err := store.LoadSnapshot()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_LoadSnapshot_CorruptCacheErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cashbook_data.json"), []byte("{not json"), 0o600))

	store := New(dir)
	_, err := store.LoadSnapshot()
	assert.Error(t, err)
}

func TestStore_TokenRoundTrip(t *testing.T) {
	store := New(t.TempDir())

	token, err := store.LoadToken()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.SaveToken("jwt-value"))

	token, err = store.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "jwt-value", token)

	require.NoError(t, store.DeleteToken())
	token, err = store.LoadToken()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestStore_CreatesDirectoryOnFirstWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cashbook")
	store := New(dir)

	require.NoError(t, store.SaveToken("jwt-value"))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStore_Clear(t *testing.T) {
	store := New(t.TempDir())

	require.NoError(t, store.SaveSnapshot(entity.NewUserData("user-1")))
	require.NoError(t, store.SaveToken("jwt-value"))

	require.NoError(t, store.Clear())

	snapshot, err := store.LoadSnapshot()
	require.NoError(t, err)
	assert.Nil(t, snapshot)

	token, err := store.LoadToken()
	require.NoError(t, err)
	assert.Empty(t, token)

	// Clearing an already-empty store is fine.
	require.NoError(t, store.Clear())
}

func TestStore_SaveSnapshot_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)

	require.NoError(t, store.SaveSnapshot(entity.NewUserData("user-1")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cashbook_data.json", entries[0].Name())
}
