// Package session implements the client's sync engine: it owns the in-memory
// snapshot for the active session, keeps it durable in the local cache, and
// reconciles it with the server.
//
// Precedence rules: server truth wins over stale cache on load; local state
// wins between saves. A failed remote push never rolls back a local mutation;
// the next successful save reconciles the server.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cashbook/cashbook/internal/client/api"
	"github.com/cashbook/cashbook/internal/client/localstore"
	"github.com/cashbook/cashbook/internal/domain/entity"
)

var (
	// ErrSessionExpired is returned when the server rejects the session
	// token. The local session is cleared before it is returned.
	ErrSessionExpired = errors.New("session expired, please log in again")

	// ErrNotAuthenticated is returned when an operation requires a session
	// token and none is stored.
	ErrNotAuthenticated = errors.New("not logged in")

	// ErrNotLoaded is returned when a mutation is attempted before Load.
	ErrNotLoaded = errors.New("no snapshot loaded")
)

// Session is the sync engine for one authenticated user.
type Session struct {
	store    *localstore.Store
	client   *api.Client
	token    string
	snapshot *entity.UserData
}

// New creates a session, restoring any stored token.
func New(store *localstore.Store, client *api.Client) (*Session, error) {
	token, err := store.LoadToken()
	if err != nil {
		return nil, err
	}
	return &Session{
		store:  store,
		client: client,
		token:  token,
	}, nil
}

// Authenticated reports whether a session token is present.
func (s *Session) Authenticated() bool {
	return s.token != ""
}

// Snapshot returns the in-memory snapshot, or nil before Load.
func (s *Session) Snapshot() *entity.UserData {
	return s.snapshot
}

// Register creates an account, stores the session token and loads the
// (seeded) snapshot.
func (s *Session) Register(ctx context.Context, username, password string) error {
	token, err := s.client.Register(ctx, username, password)
	if err != nil {
		return err
	}
	return s.startSession(ctx, token)
}

// Login authenticates, stores the session token and loads the snapshot.
func (s *Session) Login(ctx context.Context, username, password string) error {
	token, err := s.client.Login(ctx, username, password)
	if err != nil {
		return err
	}
	return s.startSession(ctx, token)
}

func (s *Session) startSession(ctx context.Context, token string) error {
	s.token = token
	if err := s.store.SaveToken(token); err != nil {
		return fmt.Errorf("failed to persist session token: %w", err)
	}
	return s.Load(ctx)
}

// Logout evicts the session token and the snapshot cache.
func (s *Session) Logout() error {
	s.token = ""
	s.snapshot = nil
	return s.store.Clear()
}

// Load makes the snapshot available. The cached copy (when present) is
// applied first without waiting on the network, then the authoritative
// snapshot is fetched: on success it overwrites both cache and memory. An
// auth rejection clears the session. A network failure keeps cached data and
// only errors when no cache existed.
func (s *Session) Load(ctx context.Context) error {
	if !s.Authenticated() {
		return ErrNotAuthenticated
	}

	cached, err := s.store.LoadSnapshot()
	if err != nil {
		// A corrupt cache is not fatal; the server copy replaces it.
		slog.Warn("Ignoring unreadable snapshot cache", "error", err)
	}
	if cached != nil {
		s.snapshot = cached
	}

	fresh, err := s.client.FetchData(ctx, s.token)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.clear()
			return ErrSessionExpired
		}
		if cached == nil {
			return fmt.Errorf("failed to load data: %w", err)
		}
		slog.Warn("Server unreachable, using cached data", "error", err)
		return nil
	}

	s.snapshot = fresh
	if err := s.store.SaveSnapshot(fresh); err != nil {
		return fmt.Errorf("failed to cache snapshot: %w", err)
	}
	return nil
}

// Mutate applies a state-changing action to the snapshot and saves.
func (s *Session) Mutate(ctx context.Context, fn func(*entity.UserData)) error {
	if s.snapshot == nil {
		return ErrNotLoaded
	}
	fn(s.snapshot)
	return s.Save(ctx)
}

// Save persists the snapshot: the local cache write is synchronous and must
// succeed; the remote push is best-effort. A push failure is logged and the
// local mutation stands — except for an auth rejection, which ends the
// session.
func (s *Session) Save(ctx context.Context) error {
	if s.snapshot == nil {
		return ErrNotLoaded
	}

	if err := s.store.SaveSnapshot(s.snapshot); err != nil {
		return err
	}

	if err := s.client.SyncData(ctx, s.token, s.snapshot); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.clear()
			return ErrSessionExpired
		}
		slog.Warn("Sync to server failed, local data kept", "error", err)
	}
	return nil
}

func (s *Session) clear() {
	s.token = ""
	s.snapshot = nil
	if err := s.store.Clear(); err != nil {
		slog.Warn("Failed to clear local session state", "error", err)
	}
}
