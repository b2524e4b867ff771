package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/peterbourgon/diskv/v3"
)

// LockTimeout is the maximum time to wait for the session lock. If exceeded,
// writes proceed without the lock so a stuck process never hangs the CLI.
const LockTimeout = 100 * time.Millisecond

// DiskKV stores each key as a file under dir. Writes from concurrent
// tasknest processes are serialized with a lock file.
type DiskKV struct {
	dir string
	d   *diskv.Diskv
}

// NewDiskKV opens (creating if needed) a disk store rooted at dir.
func NewDiskKV(dir string) (*DiskKV, error) {
	if err := os.MkdirAll(filepath.Join(dir, "session"), 0o700); err != nil {
		return nil, err
	}
	// CacheSizeMax stays zero: another process may rewrite a key at any time.
	d := diskv.New(diskv.Options{
		BasePath:          filepath.Join(dir, "session"),
		TempDir:           filepath.Join(dir, "tmp"),
		AdvancedTransform: flatTransform,
		InverseTransform:  flatInverse,
		FilePerm:          0o600,
		PathPerm:          0o700,
	})
	return &DiskKV{dir: dir, d: d}, nil
}

// Dir returns the store's root directory.
func (s *DiskKV) Dir() string {
	return s.dir
}

// SessionPath returns the directory holding the key files, for watchers.
func (s *DiskKV) SessionPath() string {
	return s.d.BasePath
}

// Get implements KV.
func (s *DiskKV) Get(key string) (string, bool) {
	if !s.d.Has(key) {
		return "", false
	}
	b, err := s.d.Read(key)
	if err != nil {
		return "", false
	}
	return string(b), true
}

// Set implements KV.
func (s *DiskKV) Set(key, value string) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()
	return s.d.Write(key, []byte(value))
}

// Delete implements KV.
func (s *DiskKV) Delete(key string) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()
	if err := s.d.Erase(key); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func flatTransform(key string) *diskv.PathKey {
	return &diskv.PathKey{Path: []string{}, FileName: key}
}

func flatInverse(pk *diskv.PathKey) string {
	return pk.FileName
}

// lock takes the cross-process lock, failing open on timeout.
func (s *DiskKV) lock() (func(), error) {
	fl := flock.New(filepath.Join(s.dir, ".lock"))

	ctx, cancel := context.WithTimeout(context.Background(), LockTimeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, 10*time.Millisecond)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return func() {}, nil
		}
		return nil, err
	}
	if !locked {
		return func() {}, nil
	}
	return func() { _ = fl.Unlock() }, nil
}
