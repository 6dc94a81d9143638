package downloader

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

var ytdlpErrorRe = regexp.MustCompile(`(?i)ERROR[:\s]+(.+?)(?:\n|$)`)

// Engine is the opaque extraction capability: given a URL it produces a
// media file at outputPath, or fails. maxBytes is an advisory ceiling the
// engine may ignore (merged audio/video streams routinely overshoot it),
// so callers must re-check the on-disk size themselves.
type Engine interface {
	Extract(ctx context.Context, url, outputPath string, maxBytes int64) (title string, err error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, url, outputPath string, maxBytes int64) (string, error)

func (f EngineFunc) Extract(ctx context.Context, url, outputPath string, maxBytes int64) (string, error) {
	return f(ctx, url, outputPath, maxBytes)
}

// EngineFault is a failure raised by the extraction engine itself, with
// the engine's own diagnostic message preserved. Anything else coming out
// of an Engine is treated as an unclassified fault.
type EngineFault struct {
	Msg string
}

func (e *EngineFault) Error() string {
	return e.Msg
}

// Ytdlp runs the yt-dlp binary as a subprocess.
type Ytdlp struct {
	// Bin overrides the binary name, mainly for tests.
	Bin string
}

func NewYtdlp() *Ytdlp {
	return &Ytdlp{Bin: "yt-dlp"}
}

// CheckInstalled reports whether the yt-dlp binary is on PATH.
func (y *Ytdlp) CheckInstalled() error {
	if _, err := exec.LookPath(y.Bin); err != nil {
		return fmt.Errorf("yt-dlp not found in PATH: %w", err)
	}
	return nil
}

func ytdlpArgs(url, outputPath string, maxBytes int64) []string {
	args := []string{
		"--no-playlist",
		"--quiet",
		"--no-warnings",
		"-f", "b[ext=mp4]/b",
		"-o", outputPath,
		"--no-simulate",
		"--print", "after_move:title",
	}
	if maxBytes > 0 {
		args = append(args, "--max-filesize", strconv.FormatInt(maxBytes, 10))
	}
	return append(args, url)
}

func (y *Ytdlp) Extract(ctx context.Context, url, outputPath string, maxBytes int64) (string, error) {
	cmd := exec.CommandContext(ctx, y.Bin, ytdlpArgs(url, outputPath, maxBytes)...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start %s: %w", y.Bin, err)
	}

	if err := cmd.Wait(); err != nil {
		errMsg := "download failed"
		if m := ytdlpErrorRe.FindStringSubmatch(stderr.String()); len(m) > 1 {
			errMsg = strings.TrimSpace(m[1])
		}
		return "", &EngineFault{Msg: errMsg}
	}

	title := strings.TrimSpace(stdout.String())
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = strings.TrimSpace(title[:i])
	}
	if title == "" {
		title = "video"
	}
	return title, nil
}
