package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/tasknest-cli/internal/models"
)

func TestStoreToken(t *testing.T) {
	s := NewStore(NewMemoryKV())
	assert.Equal(t, "", s.Token())

	require.NoError(t, s.SetToken(""))
	assert.Equal(t, "", s.Token(), "empty token is ignored")

	require.NoError(t, s.SetToken("abc"))
	assert.Equal(t, "abc", s.Token())

	require.NoError(t, s.SetToken(""))
	assert.Equal(t, "abc", s.Token(), "empty token does not clear")

	require.NoError(t, s.ClearToken())
	assert.Equal(t, "", s.Token())
}

func TestStoreDefaultGroup(t *testing.T) {
	s := NewStore(NewMemoryKV())
	assert.Equal(t, int64(1), s.DefaultGroupID())
	assert.False(t, s.HasDefaultGroupID())

	require.NoError(t, s.SetDefaultGroupID(0, true))
	assert.False(t, s.HasDefaultGroupID())

	require.NoError(t, s.SetDefaultGroupID(4, false))
	assert.Equal(t, int64(4), s.DefaultGroupID())

	require.NoError(t, s.SetDefaultGroupID(9, false))
	assert.Equal(t, int64(4), s.DefaultGroupID(), "existing default is sticky")

	require.NoError(t, s.SetDefaultGroupID(9, true))
	assert.Equal(t, int64(9), s.DefaultGroupID())
}

func TestStoreDefaultGroupIgnoresGarbage(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(KeyDefaultGroupID, "nope"))
	assert.Equal(t, int64(1), NewStore(kv).DefaultGroupID())
}

func TestStoreSyncUserContextSwitchesIdentity(t *testing.T) {
	s := NewStore(NewMemoryKV())

	require.NoError(t, s.SyncUserContext(&models.User{ID: 1}))
	require.NoError(t, s.SetDefaultGroupID(5, false))
	assert.Equal(t, int64(5), s.DefaultGroupID())

	// Same user again keeps the default.
	require.NoError(t, s.SyncUserContext(&models.User{ID: 1}))
	assert.True(t, s.HasDefaultGroupID())

	// A different user drops it.
	require.NoError(t, s.SyncUserContext(&models.User{ID: 2}))
	assert.Equal(t, int64(2), s.UserID())
	assert.False(t, s.HasDefaultGroupID())

	require.NoError(t, s.SetDefaultGroupID(8, false))
	require.NoError(t, s.SyncUserContext(&models.User{ID: 2}))
	assert.Equal(t, int64(8), s.DefaultGroupID())
}

func TestStoreSyncUserContextIgnoresEmpty(t *testing.T) {
	s := NewStore(NewMemoryKV())
	require.NoError(t, s.SetDefaultGroupID(3, false))

	require.NoError(t, s.SyncUserContext(nil))
	require.NoError(t, s.SyncUserContext(&models.User{}))

	assert.Equal(t, int64(0), s.UserID())
	assert.Equal(t, int64(3), s.DefaultGroupID())
}

func TestStoreSelectedGroup(t *testing.T) {
	s := NewStore(NewMemoryKV())
	assert.Equal(t, int64(0), s.SelectedGroupID())

	require.NoError(t, s.SetSelectedGroupID(7))
	assert.Equal(t, int64(7), s.SelectedGroupID())

	require.NoError(t, s.SetSelectedGroupID(0))
	assert.Equal(t, int64(0), s.SelectedGroupID())
}

func TestDiskKVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewDiskKV(dir)
	require.NoError(t, err)

	_, ok := kv.Get(KeyAccessToken)
	assert.False(t, ok)

	require.NoError(t, kv.Set(KeyAccessToken, "tok"))
	v, ok := kv.Get(KeyAccessToken)
	require.True(t, ok)
	assert.Equal(t, "tok", v)

	info, err := os.Stat(filepath.Join(kv.SessionPath(), KeyAccessToken))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// A second handle on the same directory sees the write.
	other, err := NewDiskKV(dir)
	require.NoError(t, err)
	v, ok = other.Get(KeyAccessToken)
	require.True(t, ok)
	assert.Equal(t, "tok", v)

	require.NoError(t, kv.Delete(KeyAccessToken))
	_, ok = other.Get(KeyAccessToken)
	assert.False(t, ok)

	require.NoError(t, kv.Delete("missing"), "deleting a missing key is not an error")
}

func TestKeyringKVDisabledUsesFallback(t *testing.T) {
	fallback := NewMemoryKV()
	kv := NewKeyringKV(fallback, "http://localhost", true)
	assert.False(t, kv.UsingKeyring())

	require.NoError(t, kv.Set(KeyAccessToken, "tok"))
	v, ok := fallback.Get(KeyAccessToken)
	require.True(t, ok)
	assert.Equal(t, "tok", v)

	require.NoError(t, kv.Set(KeyUserID, "1"))
	v, _ = kv.Get(KeyUserID)
	assert.Equal(t, "1", v)

	require.NoError(t, kv.Delete(KeyAccessToken))
	_, ok = kv.Get(KeyAccessToken)
	assert.False(t, ok)
}

func TestKeyringKVRespectsEnv(t *testing.T) {
	t.Setenv("TASKNEST_NO_KEYRING", "1")
	kv := NewKeyringKV(NewMemoryKV(), "http://localhost", false)
	assert.False(t, kv.UsingKeyring())
}
