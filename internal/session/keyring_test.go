// ABOUTME: Tests for the TOML file keyring
// ABOUTME: Covers roundtrip, per-kind independence, and missing files

package session

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKeyring(t *testing.T) *FileKeyring {
	t.Helper()
	return NewFileKeyring(filepath.Join(t.TempDir(), "registrar", "credentials.toml"))
}

func TestFileKeyring_RoundTrip(t *testing.T) {
	k := newTestKeyring(t)

	_, err := k.Load(KindInstitution)
	assert.ErrorIs(t, err, ErrNoCredential)

	require.NoError(t, k.Store(KindInstitution, "tok-inst"))

	got, err := k.Load(KindInstitution)
	require.NoError(t, err)
	assert.Equal(t, "tok-inst", got)
}

func TestFileKeyring_KindsAreIndependent(t *testing.T) {
	k := newTestKeyring(t)

	require.NoError(t, k.Store(KindInstitution, "tok-inst"))
	require.NoError(t, k.Store(KindUser, "tok-user"))

	require.NoError(t, k.Delete(KindInstitution))

	_, err := k.Load(KindInstitution)
	assert.ErrorIs(t, err, ErrNoCredential)

	got, err := k.Load(KindUser)
	require.NoError(t, err)
	assert.Equal(t, "tok-user", got)
}

func TestFileKeyring_OverwriteKeepsOtherEntry(t *testing.T) {
	k := newTestKeyring(t)

	require.NoError(t, k.Store(KindUser, "old"))
	require.NoError(t, k.Store(KindInstitution, "tok-inst"))
	require.NoError(t, k.Store(KindUser, "new"))

	got, err := k.Load(KindUser)
	require.NoError(t, err)
	assert.Equal(t, "new", got)

	got, err = k.Load(KindInstitution)
	require.NoError(t, err)
	assert.Equal(t, "tok-inst", got)
}

func TestFileKeyring_FilePermissions(t *testing.T) {
	k := newTestKeyring(t)
	require.NoError(t, k.Store(KindUser, "secret"))

	info, err := os.Stat(k.path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileKeyring_DeleteOnMissingFile(t *testing.T) {
	k := newTestKeyring(t)
	assert.NoError(t, k.Delete(KindUser))
}

// Both slots mutate the keyring concurrently during bootstrap. One kind's
// Store racing the other kind's Delete must never resurrect the deleted entry.
func TestFileKeyring_ConcurrentKindsStayIndependent(t *testing.T) {
	k := newTestKeyring(t)
	require.NoError(t, k.Store(KindUser, "tok-stale"))

	for i := 0; i < 50; i++ {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			require.NoError(t, k.Store(KindInstitution, "tok-inst"))
		}()
		go func() {
			defer wg.Done()
			require.NoError(t, k.Delete(KindUser))
		}()
		wg.Wait()

		_, err := k.Load(KindUser)
		assert.ErrorIs(t, err, ErrNoCredential)
		got, err := k.Load(KindInstitution)
		require.NoError(t, err)
		assert.Equal(t, "tok-inst", got)

		require.NoError(t, k.Store(KindUser, "tok-stale"))
	}
}

func TestMemoryKeyring_ConcurrentAccess(t *testing.T) {
	k := NewMemoryKeyring()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			require.NoError(t, k.Store(KindInstitution, "tok-inst"))
			_, _ = k.Load(KindInstitution)
		}()
		go func() {
			defer wg.Done()
			require.NoError(t, k.Store(KindUser, "tok-user"))
			require.NoError(t, k.Delete(KindUser))
		}()
	}
	wg.Wait()

	got, err := k.Load(KindInstitution)
	require.NoError(t, err)
	assert.Equal(t, "tok-inst", got)
}
