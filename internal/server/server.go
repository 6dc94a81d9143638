package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/snatchbot/snatch/internal/config"
	"github.com/snatchbot/snatch/internal/downloader"
	"github.com/snatchbot/snatch/internal/metrics"
	"github.com/snatchbot/snatch/internal/middleware"
	"github.com/snatchbot/snatch/internal/routes"
	"github.com/snatchbot/snatch/internal/storage"
)

func New(orc *downloader.Orchestrator, reaper *storage.Reaper) *http.Server {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(securityHeaders)
	r.Use(middleware.LoadCORS())
	r.Use(middleware.RateLimit)

	routes.CoreRoutes(r)

	dl := &routes.DownloadHandler{
		Orc:       orc,
		Reaper:    reaper,
		Policy:    downloader.WebPolicy,
		Retention: config.FileRetention,
	}
	dl.Routes(r)

	r.Method("GET", "/metrics", metrics.Handler())

	mountStatic(r, config.StaticDir)

	return &http.Server{
		Addr:              config.Host + ":" + config.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       0,
		WriteTimeout:      0,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

func mountStatic(r chi.Router, staticDir string) {
	if info, err := os.Stat(staticDir); err != nil || !info.IsDir() {
		return
	}

	fileServer := http.FileServer(http.Dir(staticDir))
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, filepath.Join(staticDir, "index.html"))
	})
	r.Get("/static/*", func(w http.ResponseWriter, req *http.Request) {
		cleaned := filepath.Clean(filepath.Join(staticDir, strings.TrimPrefix(req.URL.Path, "/static/")))
		if !strings.HasPrefix(cleaned, filepath.Clean(staticDir)) {
			http.NotFound(w, req)
			return
		}
		http.StripPrefix("/static/", fileServer).ServeHTTP(w, req)
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

func PrintBanner() {
	fmt.Printf(`
  ┌──────────────────────────────────┐
  │         snatch %s          │
  │   dual-channel video downloader  │
  └──────────────────────────────────┘
`, padVersion(config.Version))
}

func padVersion(v string) string {
	for len(v) < 10 {
		v += " "
	}
	return v
}
