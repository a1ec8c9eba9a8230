package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/apex-activities-cli/internal/domain"
)

func TestStoreRejectsInvalidKeys(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	testCases := []struct {
		name    string
		key     string
		wantErr string
	}{
		{name: "empty", key: "", wantErr: "secret key is empty"},
		{name: "whitespace", key: "   ", wantErr: "secret key is empty"},
		{name: "absolute", key: "/etc/apx", wantErr: "invalid secret key"},
		{name: "traversal", key: "../escape", wantErr: "invalid secret key"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := store.Put(context.Background(), tc.key, "value")
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestStorePutGetRoundTripAndPermissions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)
	key := domain.PasswordSecretRef("jdoe")

	require.NoError(t, store.Put(context.Background(), key, "hunter2"))
	require.NoError(t, store.Put(context.Background(), key, "hunter3"))

	got, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "hunter3", got)

	info, err := os.Stat(filepath.Join(root, "apx", "jdoe", "password.secret"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(secretFileMod), info.Mode().Perm())

	leftovers, err := filepath.Glob(filepath.Join(root, "apx", "jdoe", ".secret-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestStoreGetMissingIsSecretNotFound(t *testing.T) {
	t.Parallel()

	_, err := NewStore(t.TempDir()).Get(context.Background(), "apx/nobody/password")
	require.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestStoreDeleteIsIdempotentWhenSecretMissing(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	key := domain.PasswordSecretRef("jdoe")

	require.NoError(t, store.Put(context.Background(), key, "hunter2"))
	require.NoError(t, store.Delete(context.Background(), key))
	require.NoError(t, store.Delete(context.Background(), key))

	_, err := store.Get(context.Background(), key)
	require.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestStoreGetRejectsLoosePermissions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)
	key := domain.PasswordSecretRef("jdoe")
	require.NoError(t, store.Put(context.Background(), key, "hunter2"))

	path := filepath.Join(root, "apx", "jdoe", "password.secret")
	require.NoError(t, os.Chmod(path, 0o644))

	_, err := store.Get(context.Background(), key)
	require.ErrorIs(t, err, ErrInsecurePermissions)
}
