package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/nkiryanov/tokend/internal/handlers/render"
	"github.com/nkiryanov/tokend/internal/handlers/userctx"
	"github.com/nkiryanov/tokend/internal/models"
)

const bearerScheme = "Bearer"

type authService interface {
	// Resolve access token to user
	Authenticate(ctx context.Context, access string) (models.User, error)
}

// AuthMiddleware requires 'Authorization: Bearer <access token>'
// Missing, malformed, expired or otherwise invalid tokens get 401 with a
// WWW-Authenticate challenge, the reason is not detailed to the caller
func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}

			user, err := as.Authenticate(r.Context(), token)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := userctx.New(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) || token == "" {
		return "", false
	}

	return token, true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", bearerScheme)
	render.ServiceError(w, "Could not validate credentials", http.StatusUnauthorized)
}
