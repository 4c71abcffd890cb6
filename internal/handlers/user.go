package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/tokend/internal/handlers/render"
	"github.com/nkiryanov/tokend/internal/handlers/userctx"
)

type userResponse struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	IsActive bool      `json:"is_active"`
}

func handleUserMe() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userctx.FromContext(r.Context())
		render.JSON(w, userResponse{ID: user.ID, Email: user.Email, IsActive: user.IsActive})
	})
}
