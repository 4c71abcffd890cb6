package postgres

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/tokend/internal/apperrors"
	"github.com/nkiryanov/tokend/internal/testutil"
)

func Test_UserRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create user ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}

			user, err := repo.CreateUser(t.Context(), "u@x.com", "hashed-password")

			require.NoError(t, err)
			require.NotEqual(t, uuid.Nil, user.ID)
			require.Equal(t, "u@x.com", user.Email)
			require.Equal(t, "hashed-password", user.HashedPassword)
			require.True(t, user.IsActive, "new users must be active")
			require.False(t, user.CreatedAt.IsZero(), "created_at must be set by the db")
		})
	})

	t.Run("create duplicate email fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}
			_, err := repo.CreateUser(t.Context(), "u@x.com", "hashed-password")
			require.NoError(t, err)

			_, err = repo.CreateUser(t.Context(), "u@x.com", "other-hash")

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		})
	})

	t.Run("email is case sensitive", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}
			_, err := repo.CreateUser(t.Context(), "u@x.com", "hashed-password")
			require.NoError(t, err)

			// Different case is a different user, no normalization is done
			_, err = repo.CreateUser(t.Context(), "U@x.com", "hashed-password")
			require.NoError(t, err)

			_, err = repo.GetUserByEmail(t.Context(), "u@X.com")
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("get user by email", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}
			created, err := repo.CreateUser(t.Context(), "u@x.com", "hashed-password")
			require.NoError(t, err)

			got, err := repo.GetUserByEmail(t.Context(), "u@x.com")

			require.NoError(t, err)
			require.Equal(t, created.ID, got.ID)
			require.Equal(t, created.Email, got.Email)
			require.Equal(t, created.HashedPassword, got.HashedPassword)
		})
	})

	t.Run("get user by id", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}
			created, err := repo.CreateUser(t.Context(), "u@x.com", "hashed-password")
			require.NoError(t, err)

			got, err := repo.GetUserByID(t.Context(), created.ID)

			require.NoError(t, err)
			require.Equal(t, created.Email, got.Email)
		})
	})

	t.Run("get missing user", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}

			_, err := repo.GetUserByEmail(t.Context(), "nobody@x.com")
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)

			_, err = repo.GetUserByID(t.Context(), uuid.New())
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("concurrent registration, exactly one wins", func(t *testing.T) {
		// Runs over the pool, not a tx: the constraint race needs two
		// independent connections
		repo := UserRepo{DB: pg.Pool}

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := range errs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = repo.CreateUser(t.Context(), "race@x.com", "hashed-password")
			}()
		}
		wg.Wait()

		switch {
		case errs[0] == nil:
			require.ErrorIs(t, errs[1], apperrors.ErrUserAlreadyExists)
		default:
			require.NoError(t, errs[1], "one of two concurrent registrations must succeed")
			require.ErrorIs(t, errs[0], apperrors.ErrUserAlreadyExists)
		}
	})
}
