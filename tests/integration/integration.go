package integration

import (
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/tokend/internal/handlers"
	"github.com/nkiryanov/tokend/internal/logger"
	"github.com/nkiryanov/tokend/internal/repository"
	"github.com/nkiryanov/tokend/internal/repository/postgres"
	"github.com/nkiryanov/tokend/internal/service/auth"
	"github.com/nkiryanov/tokend/internal/testutil"
)

type Services struct {
	AuthService *auth.AuthService
	Storage     repository.Storage
}

// Create db transaction and run a server over that single connection
// Everything the test writes is rolled back when the inner func returns
func RunTx(dbpool *pgxpool.Pool, t *testing.T, fn func(srvURL string, s Services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		storage := postgres.NewStorage(tx)

		codec, err := auth.NewCodec(auth.CodecConfig{SecretKey: "test-secret-key"})
		require.NoError(t, err, "token codec should be created without errors")

		service, err := auth.NewService(auth.Config{}, codec, storage)
		require.NoError(t, err, "auth service starting error")

		router := handlers.NewRouter(service, logger.NewNoOpLogger())

		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(srv.URL, Services{
			AuthService: service,
			Storage:     storage,
		})
	})
}
