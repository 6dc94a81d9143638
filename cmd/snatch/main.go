package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/snatchbot/snatch/internal/bot"
	"github.com/snatchbot/snatch/internal/config"
	"github.com/snatchbot/snatch/internal/downloader"
	"github.com/snatchbot/snatch/internal/middleware"
	"github.com/snatchbot/snatch/internal/server"
	"github.com/snatchbot/snatch/internal/storage"
)

func main() {
	godotenv.Load()
	config.Load()

	server.PrintBanner()

	storage.EnsureArtifactDir()

	engine := downloader.NewYtdlp()
	if err := engine.CheckInstalled(); err != nil {
		log.Fatalf("Missing dependency: %v", err)
	}

	orc := &downloader.Orchestrator{
		Engine: engine,
		Dir:    config.ArtifactDir,
	}

	reaper := storage.NewReaper()

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	storage.StartSweeper(sweepCtx)
	middleware.StartRateLimitCleanup()

	b, err := bot.New(bot.Config{
		Token:     config.BotToken,
		PublicURL: config.PublicURL,
	}, orc)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}
	if err := b.Start(); err != nil {
		log.Fatalf("Failed to start bot: %v", err)
	}

	srv := server.New(orc, reaper)
	go func() {
		log.Printf("[API] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)

	// Ends the gateway receive loop; in-flight extractions are abandoned
	// and their leftovers belong to the orphan sweeper on next start.
	b.Stop()

	stopSweep()
	reaper.Shutdown()

	log.Println("Stopped.")
}
