package auth

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/tokend/internal/testutil"
	"github.com/nkiryanov/tokend/tests/integration"
)

func Test_LogoutAll(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	login := func(t *testing.T, srvURL string) tokenPair {
		t.Helper()

		resp, body := postJSON(t, srvURL+LoginURL, `{"email": "nk@example.com", "password": "StrongEnoughPassword"}`)
		require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

		var pair tokenPair
		require.NoError(t, json.Unmarshal([]byte(body), &pair))
		return pair
	}

	t.Run("revokes every session", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, s integration.Services) {
			_, err := s.AuthService.Register(t.Context(), "nk@example.com", "StrongEnoughPassword")
			require.NoError(t, err)

			// Two independent sessions of the same user
			first := login(t, srvURL)
			second := login(t, srvURL)
			require.NotEqual(t, first.RefreshToken, second.RefreshToken)

			resp, body := doBearer(t, http.MethodPost, srvURL+LogoutAllURL, first.AccessToken)
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"message": "Successfully logged out from all devices",
					"revoked": 2
				}`, body)

			// Both refresh tokens are dead now
			for _, refresh := range []string{first.RefreshToken, second.RefreshToken} {
				resp, body := postJSON(t, srvURL+RefreshURL, `{"refresh_token": "`+refresh+`"}`)
				require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
			}

			// The access token still works: it expires on its own schedule
			resp, body = doBearer(t, http.MethodGet, srvURL+MeURL, first.AccessToken)
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
		})
	})

	t.Run("nothing to revoke is still ok", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, s integration.Services) {
			_, err := s.AuthService.Register(t.Context(), "nk@example.com", "StrongEnoughPassword")
			require.NoError(t, err)
			pair := login(t, srvURL)

			resp, body := doBearer(t, http.MethodPost, srvURL+LogoutAllURL, pair.AccessToken)
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			resp, body = doBearer(t, http.MethodPost, srvURL+LogoutAllURL, pair.AccessToken)
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"message": "Successfully logged out from all devices",
					"revoked": 0
				}`, body)
		})
	})

	t.Run("requires authentication", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, _ integration.Services) {
			resp, err := http.Post(srvURL+LogoutAllURL, "application/json", nil)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			require.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
		})
	})
}
