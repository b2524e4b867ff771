package auth

import (
	"errors"
	"os"

	"github.com/zalando/go-keyring"
)

const serviceName = "tasknest"

// KeyringKV keeps the access token in the system keyring and every other key
// in the fallback store. When the keyring is unavailable (headless hosts,
// TASKNEST_NO_KEYRING set) the token goes to the fallback as well.
type KeyringKV struct {
	fallback   KV
	useKeyring bool
	account    string
}

// NewKeyringKV wraps fallback. account scopes the keyring entry, normally the
// API origin, so sessions against different backends do not collide.
func NewKeyringKV(fallback KV, account string, disableKeyring bool) *KeyringKV {
	s := &KeyringKV{fallback: fallback, account: account}
	if disableKeyring || os.Getenv("TASKNEST_NO_KEYRING") != "" {
		return s
	}

	// Check the keyring once; many CI and SSH sessions have none.
	check := serviceName + "::check"
	if err := keyring.Set(serviceName, check, "check"); err == nil {
		_ = keyring.Delete(serviceName, check)
		s.useKeyring = true
	}
	return s
}

// UsingKeyring reports whether the token is held by the system keyring.
func (s *KeyringKV) UsingKeyring() bool {
	return s.useKeyring
}

func (s *KeyringKV) secret(key string) bool {
	return s.useKeyring && key == KeyAccessToken
}

func (s *KeyringKV) keyringUser() string {
	return serviceName + "::" + s.account
}

// Get implements KV.
func (s *KeyringKV) Get(key string) (string, bool) {
	if !s.secret(key) {
		return s.fallback.Get(key)
	}
	v, err := keyring.Get(serviceName, s.keyringUser())
	if err != nil {
		return "", false
	}
	return v, true
}

// Set implements KV.
func (s *KeyringKV) Set(key, value string) error {
	if !s.secret(key) {
		return s.fallback.Set(key, value)
	}
	if err := keyring.Set(serviceName, s.keyringUser(), value); err != nil {
		return err
	}
	// A token left over from a keyring-less run must not shadow this one.
	return s.fallback.Delete(key)
}

// Delete implements KV.
func (s *KeyringKV) Delete(key string) error {
	if !s.secret(key) {
		return s.fallback.Delete(key)
	}
	if err := keyring.Delete(serviceName, s.keyringUser()); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return s.fallback.Delete(key)
}
