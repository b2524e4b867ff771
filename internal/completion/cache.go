// Package completion provides tab completion support for the tasknest CLI.
// It keeps a small file cache of the user's groups so shell completions
// stay fast and work offline.
package completion

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// CachedGroup holds group data for tab completion.
type CachedGroup struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Personal bool   `json:"personal,omitempty"`
}

// Cache stores completion data with metadata for staleness detection.
type Cache struct {
	Groups          []CachedGroup `json:"groups,omitempty"`
	GroupsUpdatedAt time.Time     `json:"groups_updated_at,omitempty"`
	Version         int           `json:"version"`
}

const (
	// CacheVersion is the current cache schema version.
	CacheVersion = 1

	// DefaultMaxAge is the default cache staleness threshold.
	DefaultMaxAge = time.Hour

	// CacheFileName is the cache file name inside the state directory.
	CacheFileName = "completion.json"
)

// Store handles reading and writing the completion cache.
type Store struct {
	dir string
	mu  sync.RWMutex
	now func() time.Time
}

// NewStore creates a cache store in dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Dir returns the cache directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the full path to the cache file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, CacheFileName)
}

// Load reads the cache from disk. A missing or corrupted file yields an
// empty cache.
func (s *Store) Load() (*Cache, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadUnsafe()
}

func (s *Store) loadUnsafe() (*Cache, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return &Cache{Version: CacheVersion}, nil
		}
		return nil, err
	}

	var cache Cache
	if err := json.Unmarshal(data, &cache); err != nil {
		return &Cache{Version: CacheVersion}, nil //nolint:nilerr // corrupted cache is treated as empty
	}
	return &cache, nil
}

// saveUnsafe writes the cache atomically via a temp file.
func (s *Store) saveUnsafe(cache *Cache) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	cache.Version = CacheVersion

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := s.Path() + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.Path())
}

// UpdateGroups replaces the cached groups and stamps them.
func (s *Store) UpdateGroups(groups []CachedGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cache, err := s.loadUnsafe()
	if err != nil {
		cache = &Cache{}
	}
	cache.Groups = groups
	cache.GroupsUpdatedAt = s.now()
	return s.saveUnsafe(cache)
}

// IsStale reports whether the groups are missing or older than maxAge.
func (s *Store) IsStale(maxAge time.Duration) bool {
	cache, err := s.Load()
	if err != nil || cache.GroupsUpdatedAt.IsZero() {
		return true
	}
	return s.now().Sub(cache.GroupsUpdatedAt) > maxAge
}

// Clear removes the cache file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.Path())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Groups returns cached groups, or nil if the cache is empty or missing.
func (s *Store) Groups() []CachedGroup {
	cache, err := s.Load()
	if err != nil {
		return nil
	}
	return cache.Groups
}
