package routes

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/snatchbot/snatch/internal/downloader"
	"github.com/snatchbot/snatch/internal/metrics"
	"github.com/snatchbot/snatch/internal/storage"
	"github.com/snatchbot/snatch/internal/util"
)

// DownloadHandler is the web delivery adapter: large ceiling, artifact
// handed back as a retrieval handle instead of inline bytes, cleanup on
// a deferred timer regardless of whether the file is ever fetched.
type DownloadHandler struct {
	Orc       *downloader.Orchestrator
	Reaper    *storage.Reaper
	Policy    downloader.Policy
	Retention time.Duration
}

func (h *DownloadHandler) Routes(r chi.Router) {
	r.Post("/api/download", h.handleDownload)
	r.Get("/api/file/{fileId}", h.handleFile)
}

type downloadRequest struct {
	URL string `json:"url"`
}

func (h *DownloadHandler) handleDownload(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, 400, map[string]string{"error": "Invalid request body"})
		return
	}

	check := util.ValidateURL(req.URL)
	if !check.Valid {
		respondJSON(w, 400, map[string]string{"error": check.Error})
		return
	}

	fileID, name := downloader.WebArtifactName()

	// Deliberately not r.Context(): a download keeps going if the client
	// disconnects, and the retention timer cleans up after it.
	res, fail := h.Orc.Run(context.Background(), req.URL, name, h.Policy)
	if fail != nil {
		metrics.RecordJob(h.Policy.Channel, fail.Kind.String())
		respondJSON(w, failureStatus(fail.Kind), map[string]string{"error": failureMessage(fail)})
		return
	}
	metrics.RecordJob(h.Policy.Channel, "success")

	// Ownership of the artifact passes to the deferred-delete timer.
	// Fetches race that timer by design; losers get a 404.
	h.Reaper.ScheduleDelete(res.Path, h.Retention)
	log.Printf("[API] downloaded %q (%d bytes) as %s", res.Title, res.Size, fileID)

	respondJSON(w, 200, map[string]interface{}{
		"success": true,
		"file_id": fileID,
		"title":   res.Title,
		"size":    res.Size,
	})
}

func (h *DownloadHandler) handleFile(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileId")

	// Handles are always UUIDs; anything else is not a file we made.
	if _, err := uuid.Parse(fileID); err != nil {
		respondJSON(w, 404, map[string]string{"error": "File not found"})
		return
	}

	path := filepath.Join(h.Orc.Dir, fileID+".mp4")
	if _, err := os.Stat(path); err != nil {
		respondJSON(w, 404, map[string]string{"error": "File not found"})
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", `attachment; filename="video.mp4"`)
	http.ServeFile(w, r, path)
}

func failureStatus(kind downloader.FailureKind) int {
	switch kind {
	case downloader.KindNotFound, downloader.KindOversize:
		return 400
	default:
		return 500
	}
}

func failureMessage(fail *downloader.Failure) string {
	switch fail.Kind {
	case downloader.KindNotFound:
		return "Could not download the video"
	case downloader.KindOversize:
		return "Video is too large (over 2 GB)"
	default:
		if fail.Message != "" {
			return fail.Message
		}
		return "Download failed"
	}
}
