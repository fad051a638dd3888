package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cashbook/cashbook/internal/client/api"
	"github.com/cashbook/cashbook/internal/client/localstore"
	"github.com/cashbook/cashbook/internal/domain/entity"
)

// fakeServer is a minimal in-memory rendition of the server API: one user,
// one document, token-checked data routes.
type fakeServer struct {
	token     string
	data      *entity.UserData
	syncCount atomic.Int64
	srv       *httptest.Server
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{token: "session-token", data: entity.NewUserData("user-1")}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/register", fs.handleAuth)
	mux.HandleFunc("POST /api/login", fs.handleAuth)
	mux.HandleFunc("GET /api/data", func(w http.ResponseWriter, r *http.Request) {
		if !fs.authorized(w, r) {
			return
		}
		_ = json.NewEncoder(w).Encode(fs.data)
	})
	mux.HandleFunc("POST /api/sync", func(w http.ResponseWriter, r *http.Request) {
		if !fs.authorized(w, r) {
			return
		}
		var payload entity.UserData
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		payload.UserID = "user-1"
		payload.Normalize()
		fs.data = &payload
		fs.syncCount.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "Data synced successfully"})
	})

	fs.srv = httptest.NewServer(mux)
	t.Cleanup(fs.srv.Close)
	return fs
}

func (fs *fakeServer) handleAuth(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(map[string]string{"token": fs.token})
}

func (fs *fakeServer) authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != fs.token {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"msg": "Token is not valid"})
		return false
	}
	return true
}

func newSession(t *testing.T, dir, url string) *Session {
	t.Helper()
	store := localstore.New(dir)
	client := api.NewClient(url, 2*time.Second)
	sess, err := New(store, client)
	require.NoError(t, err)
	return sess
}

func TestSession_LoginLoadsServerSnapshot(t *testing.T) {
	fs := newFakeServer(t)
	dir := t.TempDir()
	sess := newSession(t, dir, fs.srv.URL)

	require.False(t, sess.Authenticated())
	require.NoError(t, sess.Login(context.Background(), "alice", "secret"))
	require.True(t, sess.Authenticated())

	snapshot := sess.Snapshot()
	require.NotNil(t, snapshot)
	assert.Equal(t, entity.DefaultBusiness, snapshot.CurrentBusiness)

	// Token and cache are persisted for the next process.
	restored := newSession(t, dir, fs.srv.URL)
	assert.True(t, restored.Authenticated())
}

func TestSession_MutatePushesToServer(t *testing.T) {
	fs := newFakeServer(t)
	sess := newSession(t, t.TempDir(), fs.srv.URL)
	require.NoError(t, sess.Login(context.Background(), "alice", "secret"))

	err := sess.Mutate(context.Background(), func(d *entity.UserData) {
		book := d.AddBook("Household", time.Now())
		book.AddTransaction(entity.NewTransaction("Salary", decimal.NewFromInt(100), "Others", "Bank", time.Now()), time.Now())
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), fs.syncCount.Load())
	require.Len(t, fs.data.Books, 1)
	assert.Equal(t, "Household", fs.data.Books[0].Name)
}

func TestSession_LoadPrefersServerOverCache(t *testing.T) {
	fs := newFakeServer(t)
	dir := t.TempDir()
	sess := newSession(t, dir, fs.srv.URL)
	require.NoError(t, sess.Login(context.Background(), "alice", "secret"))

	// Server state moves on (another device synced).
	fs.data.CurrentBusiness = "Personal"

	fresh := newSession(t, dir, fs.srv.URL)
	require.NoError(t, fresh.Load(context.Background()))
	assert.Equal(t, "Personal", fresh.Snapshot().CurrentBusiness)
}

func TestSession_OfflineLoadFallsBackToCache(t *testing.T) {
	fs := newFakeServer(t)
	dir := t.TempDir()
	sess := newSession(t, dir, fs.srv.URL)
	require.NoError(t, sess.Login(context.Background(), "alice", "secret"))

	fs.srv.Close()

	offline := newSession(t, dir, fs.srv.URL)
	require.NoError(t, offline.Load(context.Background()))
	require.NotNil(t, offline.Snapshot())
	assert.Equal(t, entity.DefaultBusiness, offline.Snapshot().CurrentBusiness)
}

func TestSession_OfflineLoadWithoutCacheErrors(t *testing.T) {
	fs := newFakeServer(t)
	dir := t.TempDir()
	sess := newSession(t, dir, fs.srv.URL)
	require.NoError(t, sess.Login(context.Background(), "alice", "secret"))
	require.NoError(t, sess.store.DeleteSnapshot())

	fs.srv.Close()

	cold := newSession(t, dir, fs.srv.URL)
	assert.Error(t, cold.Load(context.Background()))
}

func TestSession_OfflineMutateKeepsLocalState(t *testing.T) {
	fs := newFakeServer(t)
	dir := t.TempDir()
	sess := newSession(t, dir, fs.srv.URL)
	require.NoError(t, sess.Login(context.Background(), "alice", "secret"))

	fs.srv.Close()

	// The push fails but the local mutation survives.
	err := sess.Mutate(context.Background(), func(d *entity.UserData) {
		d.AddBook("Offline Book", time.Now())
	})
	require.NoError(t, err)

	cached, err := localstore.New(dir).LoadSnapshot()
	require.NoError(t, err)
	require.NotNil(t, cached)
	require.Len(t, cached.Books, 1)
	assert.Equal(t, "Offline Book", cached.Books[0].Name)
}

func TestSession_RejectedTokenForcesLogout(t *testing.T) {
	fs := newFakeServer(t)
	dir := t.TempDir()
	sess := newSession(t, dir, fs.srv.URL)
	require.NoError(t, sess.Login(context.Background(), "alice", "secret"))

	// Server rotates the secret; the stored token no longer validates.
	fs.token = "rotated"

	stale := newSession(t, dir, fs.srv.URL)
	err := stale.Load(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.False(t, stale.Authenticated())

	// Token and cache are gone.
	token, err := localstore.New(dir).LoadToken()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestSession_LoadWithoutTokenErrors(t *testing.T) {
	fs := newFakeServer(t)
	sess := newSession(t, t.TempDir(), fs.srv.URL)
	assert.ErrorIs(t, sess.Load(context.Background()), ErrNotAuthenticated)
}

func TestSession_MutateBeforeLoadErrors(t *testing.T) {
	fs := newFakeServer(t)
	sess := newSession(t, t.TempDir(), fs.srv.URL)
	err := sess.Mutate(context.Background(), func(*entity.UserData) {})
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestSession_Logout(t *testing.T) {
	fs := newFakeServer(t)
	dir := t.TempDir()
	sess := newSession(t, dir, fs.srv.URL)
	require.NoError(t, sess.Login(context.Background(), "alice", "secret"))

	require.NoError(t, sess.Logout())
	assert.False(t, sess.Authenticated())
	assert.Nil(t, sess.Snapshot())

	snapshot, err := localstore.New(dir).LoadSnapshot()
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}
