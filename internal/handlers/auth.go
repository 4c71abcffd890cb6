package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/tokend/internal/apperrors"
	"github.com/nkiryanov/tokend/internal/handlers/render"
	"github.com/nkiryanov/tokend/internal/handlers/userctx"
	"github.com/nkiryanov/tokend/internal/logger"
)

const tokenTypeBearer = "bearer"

// Token pair as it goes over the wire
type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type AuthHandler struct {
	service authService
	logger  logger.Logger
}

func NewAuth(service authService, l logger.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: l}
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	type registerRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8,max=100"`
	}

	data, err := render.BindAndValidate[registerRequest](w, r)
	if err != nil {
		return
	}

	user, err := h.service.Register(r.Context(), data.Email, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "Email already registered", http.StatusConflict)
		default:
			h.logger.Error("register failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSONWithStatus(w, userResponse{ID: user.ID, Email: user.Email, IsActive: user.IsActive}, http.StatusCreated)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	type loginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	data, err := render.BindAndValidate[loginRequest](w, r)
	if err != nil {
		return
	}

	pair, err := h.service.Login(r.Context(), data.Email, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			w.Header().Set("WWW-Authenticate", "Bearer")
			render.ServiceError(w, "Incorrect email or password", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrAccountDisabled):
			render.ServiceError(w, "Account is disabled", http.StatusForbidden)
		default:
			h.logger.Error("login failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, tokenPairResponse{
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
		TokenType:    tokenTypeBearer,
	})
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	type refreshRequest struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	data, err := render.BindAndValidate[refreshRequest](w, r)
	if err != nil {
		return
	}

	pair, err := h.service.Refresh(r.Context(), data.RefreshToken)
	if err != nil {
		// Invalid, expired, revoked and user-gone all collapse to 401:
		// the caller learns only that the token won't fly anymore
		switch {
		case errors.Is(err, apperrors.ErrTokenInvalid):
			render.ServiceError(w, "Invalid refresh token", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrRefreshTokenExpired):
			render.ServiceError(w, "Refresh token expired", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrRefreshTokenNotFound):
			render.ServiceError(w, "Refresh token revoked", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrAccountDisabled):
			render.ServiceError(w, "Account is disabled", http.StatusForbidden)
		default:
			h.logger.Error("refresh failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, tokenPairResponse{
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
		TokenType:    tokenTypeBearer,
	})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	type logoutRequest struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	type logoutResponse struct {
		Message string `json:"message"`
	}

	data, err := render.BindAndValidate[logoutRequest](w, r)
	if err != nil {
		return
	}

	err = h.service.Logout(r.Context(), data.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrRefreshTokenNotFound):
			render.ServiceError(w, "Refresh token not found", http.StatusNotFound)
		default:
			h.logger.Error("logout failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, logoutResponse{Message: "Successfully logged out"})
}

func (h *AuthHandler) logoutAll(w http.ResponseWriter, r *http.Request) {
	type logoutAllResponse struct {
		Message string `json:"message"`
		Revoked int64  `json:"revoked"`
	}

	// Middleware guarantees the user is set
	user, _ := userctx.FromContext(r.Context())

	count, err := h.service.LogoutAll(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("logout all failed", "error", err.Error(), "user_id", user.ID)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, logoutAllResponse{Message: "Successfully logged out from all devices", Revoked: count})
}
