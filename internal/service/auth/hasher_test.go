package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_BcryptHasher(t *testing.T) {
	t.Parallel()

	hasher := BcryptHasher{}

	t.Run("hash and compare ok", func(t *testing.T) {
		hash, err := hasher.Hash("password123")

		require.NoError(t, err)
		require.NotEqual(t, "password123", hash)
		require.NoError(t, hasher.Compare(hash, "password123"))
	})

	t.Run("compare wrong password fails", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)

		require.Error(t, hasher.Compare(hash, "password124"))
	})

	t.Run("same password hashes differently", func(t *testing.T) {
		first, err := hasher.Hash("password123")
		require.NoError(t, err)
		second, err := hasher.Hash("password123")
		require.NoError(t, err)

		require.NotEqual(t, first, second, "bcrypt salts every hash")
	})

	t.Run("long passwords supported", func(t *testing.T) {
		// Plain bcrypt ignores everything after 72 bytes, the sha256
		// prehash must not
		long := strings.Repeat("a", 100)
		hash, err := hasher.Hash(long)
		require.NoError(t, err)

		require.NoError(t, hasher.Compare(hash, long))
		require.Error(t, hasher.Compare(hash, long+"b"))
	})
}
