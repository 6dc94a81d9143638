package downloader

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYtdlpArgs(t *testing.T) {
	args := ytdlpArgs("https://example.com/v", "/tmp/out.mp4", 100)

	assert.Contains(t, args, "--no-playlist")
	assert.Contains(t, args, "--max-filesize")
	assert.Contains(t, args, "100")
	assert.Equal(t, "https://example.com/v", args[len(args)-1], "URL must come last so it can't be read as a flag value")

	// Ceiling hint is omitted entirely when there is none.
	args = ytdlpArgs("https://example.com/v", "/tmp/out.mp4", 0)
	assert.NotContains(t, args, "--max-filesize")
}

// stubEngine writes a shell script standing in for the yt-dlp binary.
func stubEngine(t *testing.T, script string) *Ytdlp {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts need a POSIX shell")
	}
	bin := filepath.Join(t.TempDir(), "fake-ytdlp")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"+script), 0755))
	return &Ytdlp{Bin: bin}
}

func TestYtdlpExtract(t *testing.T) {
	// Finds the -o value, writes the file, prints the title on stdout.
	y := stubEngine(t, `
out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-o" ]; then out="$a"; fi
  prev="$a"
done
printf 'videobytes' > "$out"
echo "Stub Title"
`)

	out := filepath.Join(t.TempDir(), "v.mp4")
	title, err := y.Extract(context.Background(), "https://example.com/v", out, 0)
	require.NoError(t, err)
	assert.Equal(t, "Stub Title", title)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "videobytes", string(data))
}

func TestYtdlpExtractFault(t *testing.T) {
	y := stubEngine(t, `
echo "ERROR: Unsupported URL: https://example.com/nope" >&2
exit 1
`)

	out := filepath.Join(t.TempDir(), "v.mp4")
	_, err := y.Extract(context.Background(), "https://example.com/nope", out, 0)
	require.Error(t, err)

	fault, ok := err.(*EngineFault)
	require.True(t, ok, "yt-dlp exit failures must surface as EngineFault")
	assert.Equal(t, "Unsupported URL: https://example.com/nope", fault.Msg)
}

func TestYtdlpExtractMissingBinary(t *testing.T) {
	y := &Ytdlp{Bin: "definitely-not-a-real-binary-xyz"}
	require.Error(t, y.CheckInstalled())

	_, err := y.Extract(context.Background(), "https://example.com/v", filepath.Join(t.TempDir(), "v.mp4"), 0)
	require.Error(t, err)
	_, ok := err.(*EngineFault)
	assert.False(t, ok, "a missing binary is not an engine fault")
}
