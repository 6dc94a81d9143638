package config

import (
	"log"
	"os"
	"time"
)

var Version = "dev"

var (
	Host      string
	Port      string
	PublicURL string

	BotToken string

	ArtifactDir string
	StaticDir   string

	CORSOrigins string
)

const (
	// Channel size ceilings. The chat channel is capped by what the bot
	// transport will accept as an upload; the web channel serves the file
	// itself and can go much larger.
	BotMaxFileSize = 50 * 1024 * 1024
	WebMaxFileSize = 2 * 1024 * 1024 * 1024

	// How long a web-channel artifact stays on disk after a successful
	// download before the deferred delete fires.
	FileRetention = 15 * time.Minute

	// Orphan sweep threshold. Must stay above FileRetention so the sweep
	// never races a live web artifact.
	OrphanMaxAge = 20 * time.Minute

	MaxURLLength = 2048

	RateLimitWindow = 60 * time.Second
	RateLimitMax    = 60
)

func Load() {
	Host = envOrDefault("HOST", "0.0.0.0")
	Port = envOrDefault("PORT", "8000")
	PublicURL = envOrDefault("PUBLIC_URL", "http://localhost:"+Port)

	BotToken = os.Getenv("BOT_TOKEN")
	if BotToken == "" {
		log.Fatal("BOT_TOKEN is required")
	}

	ArtifactDir = envOrDefault("ARTIFACT_DIR", "/var/tmp/snatch/downloads")
	StaticDir = envOrDefault("STATIC_DIR", "web/static")

	CORSOrigins = os.Getenv("CORS_ORIGINS")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
