package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/cors"

	"github.com/snatchbot/snatch/internal/config"
)

// LoadCORS allows everything unless CORS_ORIGINS narrows it down.
func LoadCORS() func(http.Handler) http.Handler {
	if config.CORSOrigins != "" {
		var origins []string
		for _, o := range strings.Split(config.CORSOrigins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		log.Printf("[CORS] restricting to %d origins", len(origins))
		return cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
			MaxAge:           86400,
		})
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           86400,
	})
}
