package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/tokend/internal/handlers/middleware"
	"github.com/nkiryanov/tokend/internal/logger"
	"github.com/nkiryanov/tokend/internal/models"
)

type authService interface {
	// Register user with email and password
	// Has to return apperrors.ErrUserAlreadyExists if the email is taken
	Register(ctx context.Context, email string, password string) (models.User, error)

	// Login user with email and password
	// Unknown email and wrong password both return apperrors.ErrInvalidCredentials,
	// disabled account returns apperrors.ErrAccountDisabled
	Login(ctx context.Context, email string, password string) (models.TokenPair, error)

	// Issue a new access token for a valid refresh token
	// Returns the same refresh token alongside
	Refresh(ctx context.Context, refresh string) (models.TokenPair, error)

	// Revoke a single refresh token
	// Has to return apperrors.ErrRefreshTokenNotFound if no ledger row matched
	Logout(ctx context.Context, refresh string) error

	// Revoke every refresh token of the user, return the revoked count
	LogoutAll(ctx context.Context, userID uuid.UUID) (int64, error)

	// Resolve bearer access token to the user
	Authenticate(ctx context.Context, access string) (models.User, error)
}

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(service authService, l logger.Logger) http.Handler {
	auth := NewAuth(service, l)
	withAuth := middleware.AuthMiddleware(service)

	mux := http.NewServeMux()
	mux.Handle("GET /ping", handlePing())

	mux.HandleFunc("POST /register", auth.register)
	mux.HandleFunc("POST /login", auth.login)
	mux.HandleFunc("POST /refresh", auth.refresh)
	mux.HandleFunc("POST /logout", auth.logout)
	mux.Handle("POST /logout-all", withAuth(http.HandlerFunc(auth.logoutAll)))

	mux.Handle("GET /users/me", withAuth(handleUserMe()))

	return chain(mux,
		middleware.LoggerMiddleware(l),
	)
}
