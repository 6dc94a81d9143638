package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func CoreRoutes(r chi.Router) {
	r.Get("/health", handleHealth)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, 200, map[string]string{
		"status": "ok",
		"bot":    "running",
		"api":    "running",
	})
}
