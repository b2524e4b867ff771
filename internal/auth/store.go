package auth

import (
	"strconv"
	"sync"

	"github.com/tasknest/tasknest-cli/internal/models"
)

// Store is the persisted session: access token plus the default group,
// selected group and current user id. It is safe for concurrent use.
type Store struct {
	mu sync.Mutex
	kv KV
}

// NewStore creates a session store over kv.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Token returns the persisted token or "". It satisfies api.TokenSource.
func (s *Store) Token() string {
	v, _ := s.kv.Get(KeyAccessToken)
	return v
}

// SetToken persists a non-empty token. An empty token is ignored; use
// ClearToken to sign out.
func (s *Store) SetToken(token string) error {
	if token == "" {
		return nil
	}
	return s.kv.Set(KeyAccessToken, token)
}

// ClearToken removes the persisted token.
func (s *Store) ClearToken() error {
	return s.kv.Delete(KeyAccessToken)
}

// DefaultGroupID returns the stored default group, or 1 when none is stored.
func (s *Store) DefaultGroupID() int64 {
	if id := s.readID(KeyDefaultGroupID); id > 0 {
		return id
	}
	return 1
}

// HasDefaultGroupID reports whether a default group is stored.
func (s *Store) HasDefaultGroupID() bool {
	return s.readID(KeyDefaultGroupID) > 0
}

// SetDefaultGroupID stores id unless a default is already stored, or
// unconditionally when force is set. A zero id is ignored.
func (s *Store) SetDefaultGroupID(id int64, force bool) error {
	if id <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.kv.Get(KeyDefaultGroupID); ok && current != "" && !force {
		return nil
	}
	return s.kv.Set(KeyDefaultGroupID, strconv.FormatInt(id, 10))
}

// SelectedGroupID returns the last selected shared group, or 0.
func (s *Store) SelectedGroupID() int64 {
	return s.readID(KeySelectedGroupID)
}

// SetSelectedGroupID persists the selected shared group.
func (s *Store) SetSelectedGroupID(id int64) error {
	if id <= 0 {
		return s.kv.Delete(KeySelectedGroupID)
	}
	return s.kv.Set(KeySelectedGroupID, strconv.FormatInt(id, 10))
}

// UserID returns the id of the user the session belongs to, or 0.
func (s *Store) UserID() int64 {
	return s.readID(KeyUserID)
}

// SyncUserContext records user as the session owner. When the stored owner
// differs, the stored default group is discarded because it belonged to
// another identity. A nil user or a zero id is ignored.
func (s *Store) SyncUserContext(user *models.User) error {
	if user == nil || user.ID == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := strconv.FormatInt(user.ID, 10)
	if stored, _ := s.kv.Get(KeyUserID); stored == id {
		return nil
	}
	if err := s.kv.Set(KeyUserID, id); err != nil {
		return err
	}
	return s.kv.Delete(KeyDefaultGroupID)
}

func (s *Store) readID(key string) int64 {
	v, ok := s.kv.Get(key)
	if !ok {
		return 0
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}
