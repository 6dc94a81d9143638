package storage

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/snatchbot/snatch/internal/config"
)

// EnsureArtifactDir creates the artifact directory and clears out
// anything left over from a previous run.
func EnsureArtifactDir() {
	dir := config.ArtifactDir
	entries, err := os.ReadDir(dir)
	if err != nil {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("[Cleanup] cannot create artifact dir %s: %v", dir, err)
		}
		return
	}
	for _, e := range entries {
		os.RemoveAll(filepath.Join(dir, e.Name()))
	}
	log.Printf("[Cleanup] cleared artifact dir %s", dir)
}

// SweepOrphans removes artifacts older than config.OrphanMaxAge. These
// are files whose owning job was abandoned (shutdown mid-extraction,
// crashed adapter). The threshold sits above the web retention window so
// a live artifact is never swept from under its deferred-delete timer.
func SweepOrphans() {
	entries, err := os.ReadDir(config.ArtifactDir)
	if err != nil {
		return
	}
	now := time.Now()
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) > config.OrphanMaxAge {
			p := filepath.Join(config.ArtifactDir, e.Name())
			if err := os.Remove(p); err == nil {
				log.Printf("[Cleanup] swept orphan %s", e.Name())
			}
		}
	}
}

// StartSweeper runs SweepOrphans every 5 minutes until ctx is cancelled.
func StartSweeper(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				SweepOrphans()
			case <-ctx.Done():
				return
			}
		}
	}()
}
