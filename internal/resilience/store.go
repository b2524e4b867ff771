// Package resilience keeps tasknest from hammering a backend that is down
// or rate limiting it. State lives in one JSON file under the state
// directory so concurrent tasknest processes (a TUI plus scripts) share it.
package resilience

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	// DirName is the subdirectory of the state directory holding the state.
	DirName = "resilience"

	stateFile = "state.json"
	lockFile  = ".lock"
)

// LockTimeout bounds how long an update waits for another process. Past
// it the update proceeds unlocked: a lost update only lets a few extra
// requests through, while a hung CLI is worse.
const LockTimeout = 100 * time.Millisecond

// Store reads and writes State under a file lock.
type Store struct {
	dir string
}

// NewStore creates a store in dir, usually <state_dir>/resilience.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the state file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, stateFile)
}

func (s *Store) lock() (*flock.Flock, error) {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, err
	}
	fl := flock.New(filepath.Join(s.dir, lockFile))

	ctx, cancel := context.WithTimeout(context.Background(), LockTimeout)
	defer cancel()
	locked, err := fl.TryLockContext(ctx, 10*time.Millisecond)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, nil
		}
		return nil, err
	}
	if !locked {
		return nil, nil
	}
	return fl, nil
}

// Load returns the current state. A missing or corrupt file is a fresh
// state.
func (s *Store) Load() (*State, error) {
	fl, err := s.lock()
	if err != nil {
		return nil, err
	}
	if fl != nil {
		defer func() { _ = fl.Unlock() }()
	}
	return s.read()
}

// Update runs fn on the current state and saves the result, holding the
// lock for the whole read-modify-write.
func (s *Store) Update(fn func(*State) error) error {
	fl, err := s.lock()
	if err != nil {
		return err
	}
	if fl != nil {
		defer func() { _ = fl.Unlock() }()
	}

	state, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(state); err != nil {
		return err
	}
	return s.write(state)
}

// Clear removes the state file.
func (s *Store) Clear() error {
	err := os.Remove(s.Path())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *Store) read() (*State, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil || state.Version != StateVersion {
		return NewState(), nil //nolint:nilerr // corrupt or foreign state starts over
	}
	return &state, nil
}

// write goes through a per-process temp file so an unlocked writer never
// clobbers another's half-written file.
func (s *Store) write(state *State) error {
	state.Version = StateVersion
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	tmp := fmt.Sprintf("%s.%d.tmp", s.Path(), os.Getpid())
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.Path()); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
