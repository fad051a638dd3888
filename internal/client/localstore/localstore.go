// Package localstore persists the client's snapshot cache and session token
// on disk. Both live under one directory with fixed well-known names and are
// evicted together on logout.
package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cashbook/cashbook/internal/domain/entity"
)

const (
	dataFileName  = "cashbook_data.json"
	tokenFileName = "auth_token"
)

// Store is a directory-backed local cache.
type Store struct {
	dir string
}

// New creates a store rooted at dir. The directory is created lazily on the
// first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// LoadSnapshot reads the cached snapshot. Returns (nil, nil) when no cache
// exists yet.
func (s *Store) LoadSnapshot() (*entity.UserData, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, dataFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot cache: %w", err)
	}

	var data entity.UserData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot cache: %w", err)
	}
	data.Normalize()
	return &data, nil
}

// SaveSnapshot writes the snapshot cache. The write goes through a temp file
// and rename so a crash mid-write cannot corrupt the cache.
func (s *Store) SaveSnapshot(data *entity.UserData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}
	return s.writeFile(dataFileName, raw)
}

// DeleteSnapshot removes the snapshot cache.
func (s *Store) DeleteSnapshot() error {
	return removeIfExists(filepath.Join(s.dir, dataFileName))
}

// LoadToken reads the stored session token. Returns "" when none is stored.
func (s *Store) LoadToken() (string, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, tokenFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read session token: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// SaveToken stores the session token.
func (s *Store) SaveToken(token string) error {
	return s.writeFile(tokenFileName, []byte(token))
}

// DeleteToken removes the stored session token.
func (s *Store) DeleteToken() error {
	return removeIfExists(filepath.Join(s.dir, tokenFileName))
}

// Clear evicts both the snapshot cache and the session token.
func (s *Store) Clear() error {
	if err := s.DeleteSnapshot(); err != nil {
		return err
	}
	return s.DeleteToken()
}

func (s *Store) writeFile(name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
