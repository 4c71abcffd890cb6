package handlers

import (
	"net/http"

	"github.com/nkiryanov/tokend/internal/handlers/render"
)

func handlePing() http.Handler {
	type response struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, response{Status: "ok", Message: "pong"})
	})
}
