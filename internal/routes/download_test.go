package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snatchbot/snatch/internal/downloader"
	"github.com/snatchbot/snatch/internal/storage"
)

func newTestRouter(t *testing.T, engine downloader.Engine, maxBytes int64, retention time.Duration) (*chi.Mux, string) {
	t.Helper()

	dir := t.TempDir()
	reaper := storage.NewReaper()
	t.Cleanup(reaper.Shutdown)

	r := chi.NewRouter()
	CoreRoutes(r)
	h := &DownloadHandler{
		Orc:       &downloader.Orchestrator{Engine: engine, Dir: dir},
		Reaper:    reaper,
		Policy:    downloader.Policy{Channel: "web", MaxBytes: maxBytes},
		Retention: retention,
	}
	h.Routes(r)
	return r, dir
}

func postDownload(t *testing.T, r http.Handler, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/download", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func sampleEngine(payload []byte) downloader.EngineFunc {
	return func(ctx context.Context, url, outputPath string, maxBytes int64) (string, error) {
		return "Sample", os.WriteFile(outputPath, payload, 0644)
	}
}

// Positive-path tests use a public IP literal so URL validation never
// needs a resolver; hostname lookups fail closed and would 400 these
// requests on machines without DNS.

func TestDownloadAndFetch(t *testing.T) {
	payload := bytes.Repeat([]byte("v"), 2048)
	r, _ := newTestRouter(t, sampleEngine(payload), 1<<20, time.Hour)

	rec, resp := postDownload(t, r, `{"url":"http://93.184.216.34/watch?v=1"}`)
	require.Equal(t, 200, rec.Code)

	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Sample", resp["title"])
	assert.Equal(t, float64(2048), resp["size"])

	fileID, ok := resp["file_id"].(string)
	require.True(t, ok)
	_, err := uuid.Parse(fileID)
	require.NoError(t, err, "file_id must be a UUID handle")

	req := httptest.NewRequest("GET", "/api/file/"+fileID, nil)
	fetch := httptest.NewRecorder()
	r.ServeHTTP(fetch, req)

	require.Equal(t, 200, fetch.Code)
	assert.Equal(t, "video/mp4", fetch.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="video.mp4"`, fetch.Header().Get("Content-Disposition"))
	assert.Equal(t, payload, fetch.Body.Bytes())
}

func TestFetchAfterRetentionExpires(t *testing.T) {
	r, dir := newTestRouter(t, sampleEngine([]byte("tiny")), 1<<20, 20*time.Millisecond)

	rec, resp := postDownload(t, r, `{"url":"http://93.184.216.34/v"}`)
	require.Equal(t, 200, rec.Code)
	fileID := resp["file_id"].(string)

	assert.Eventually(t, func() bool {
		entries, err := os.ReadDir(dir)
		return err == nil && len(entries) == 0
	}, 2*time.Second, 10*time.Millisecond, "retention timer should remove the artifact")

	req := httptest.NewRequest("GET", "/api/file/"+fileID, nil)
	fetch := httptest.NewRecorder()
	r.ServeHTTP(fetch, req)
	assert.Equal(t, 404, fetch.Code)
}

func TestDownloadRejectsBadInput(t *testing.T) {
	engineCalled := false
	engine := downloader.EngineFunc(func(ctx context.Context, url, outputPath string, maxBytes int64) (string, error) {
		engineCalled = true
		return "", nil
	})
	r, _ := newTestRouter(t, engine, 1<<20, time.Hour)

	for _, body := range []string{
		`{"url":"not a url"}`,
		`{"url":"ftp://example.com/v"}`,
		`{"url":"http://127.0.0.1/v"}`,
		`{"url":""}`,
		`{broken`,
	} {
		rec, resp := postDownload(t, r, body)
		assert.Equal(t, 400, rec.Code, "body %s", body)
		assert.NotEmpty(t, resp["error"])
	}
	assert.False(t, engineCalled, "invalid input must never reach the orchestrator")
}

func TestDownloadOversize(t *testing.T) {
	r, dir := newTestRouter(t, sampleEngine(bytes.Repeat([]byte("v"), 512)), 100, time.Hour)

	rec, resp := postDownload(t, r, `{"url":"http://93.184.216.34/v"}`)
	assert.Equal(t, 400, rec.Code)
	assert.NotEmpty(t, resp["error"])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "oversize artifact must not remain on disk")
}

func TestDownloadEngineError(t *testing.T) {
	engine := downloader.EngineFunc(func(ctx context.Context, url, outputPath string, maxBytes int64) (string, error) {
		return "", &downloader.EngineFault{Msg: "Unsupported URL"}
	})
	r, dir := newTestRouter(t, engine, 1<<20, time.Hour)

	rec, resp := postDownload(t, r, `{"url":"http://93.184.216.34/v"}`)
	assert.Equal(t, 500, rec.Code)
	assert.NotEmpty(t, resp["error"])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFetchRejectsNonUUIDHandles(t *testing.T) {
	r, _ := newTestRouter(t, sampleEngine([]byte("x")), 1<<20, time.Hour)

	for _, id := range []string{"zzz", "..%2f..%2fetc%2fpasswd", "123"} {
		req := httptest.NewRequest("GET", "/api/file/"+id, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, 404, rec.Code, "handle %q", id)
	}
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t, sampleEngine([]byte("x")), 1<<20, time.Hour)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "running", resp["bot"])
	assert.Equal(t, "running", resp["api"])
}
