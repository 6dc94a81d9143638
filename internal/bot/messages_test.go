package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/snatchbot/snatch/internal/downloader"
)

func TestMatchesURL(t *testing.T) {
	assert.True(t, MatchesURL("https://example.com/watch?v=abc"))
	assert.True(t, MatchesURL("http://example.com/v"))

	// Everything else goes to the fallback prompt and never spawns a job.
	assert.False(t, MatchesURL("!start"))
	assert.False(t, MatchesURL("hello"))
	assert.False(t, MatchesURL("ftp://example.com/v"))
	assert.False(t, MatchesURL("see https://example.com later"))
}

func TestWelcomeMessageLinksWebSurface(t *testing.T) {
	msg := welcomeMessage("https://snatch.example")
	assert.Contains(t, msg, "https://snatch.example")
	assert.Contains(t, msg, "2 GB")
	assert.Contains(t, msg, "50 MB")
}

func TestFailureMessages(t *testing.T) {
	oversize := failureMessage(&downloader.Failure{Kind: downloader.KindOversize}, "https://snatch.example")
	assert.Contains(t, oversize, "50 MB")
	assert.Contains(t, oversize, "https://snatch.example", "oversize must point at the web surface")

	notFound := failureMessage(&downloader.Failure{Kind: downloader.KindNotFound}, "https://snatch.example")
	assert.Contains(t, notFound, "Check the link")

	engine := failureMessage(&downloader.Failure{Kind: downloader.KindEngineError, Message: "Unsupported URL"}, "")
	assert.Contains(t, engine, "Download error")

	unknown := failureMessage(&downloader.Failure{Kind: downloader.KindUnknown, Message: "boom"}, "")
	assert.Contains(t, unknown, "boom")
}
