package downloader

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/snatchbot/snatch/internal/config"
	"github.com/snatchbot/snatch/internal/storage"
)

// Policy is a channel's delivery policy: how many bytes the channel will
// accept. Immutable once a job starts.
type Policy struct {
	Channel  string
	MaxBytes int64
}

var (
	BotPolicy = Policy{Channel: "bot", MaxBytes: config.BotMaxFileSize}
	WebPolicy = Policy{Channel: "web", MaxBytes: config.WebMaxFileSize}
)

type FailureKind int

const (
	// KindNotFound: the engine ran but produced nothing (bad or
	// unsupported URL).
	KindNotFound FailureKind = iota
	// KindOversize: a file was produced but exceeds the channel ceiling.
	// The file is already deleted by the time the caller sees this.
	KindOversize
	// KindEngineError: the engine raised an internal fault.
	KindEngineError
	// KindUnknown: anything else.
	KindUnknown
)

func (k FailureKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindOversize:
		return "oversize"
	case KindEngineError:
		return "engine_error"
	default:
		return "unknown"
	}
}

// Failure is the classified outcome of a job that produced no artifact.
// Adapters switch on Kind; Message carries engine diagnostics where they
// exist.
type Failure struct {
	Kind    FailureKind
	Message string
}

func (f *Failure) Error() string {
	if f.Message == "" {
		return f.Kind.String()
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Result is a successfully downloaded artifact. Ownership of the file at
// Path passes to the caller, which must dispose of it exactly once:
// either storage.DeleteNow or a deferred delete via the reaper.
type Result struct {
	Title string
	Path  string
	Size  int64
}

// Orchestrator drives one download job end to end: reserve a path, run
// the engine, verify the artifact exists, enforce the channel ceiling.
type Orchestrator struct {
	Engine Engine
	Dir    string
}

// WebArtifactName returns a fresh collision-free artifact stem for the
// web channel along with the handle used to fetch it later.
func WebArtifactName() (fileID, name string) {
	fileID = uuid.New().String()
	return fileID, fileID
}

// BotArtifactName derives an artifact stem from the chat message identity,
// which is unique per (channel, message) pair.
func BotArtifactName(channelID, messageID string) string {
	return fmt.Sprintf("video_%s_%s", channelID, messageID)
}

// Run executes one job. name must be unique per job; the artifact is
// written to Dir/<name>.mp4. Exactly one of the returns is non-nil.
//
// On any failure the artifact path is already cleaned up; on success the
// caller takes ownership of Result.Path.
func (o *Orchestrator) Run(ctx context.Context, url, name string, pol Policy) (*Result, *Failure) {
	path := filepath.Join(o.Dir, name+".mp4")

	title, err := o.Engine.Extract(ctx, url, path, pol.MaxBytes)
	if err != nil {
		// The engine may have left a partial file behind.
		storage.DeleteNow(path)

		var fault *EngineFault
		if errors.As(err, &fault) {
			return nil, &Failure{Kind: KindEngineError, Message: fault.Msg}
		}
		return nil, &Failure{Kind: KindUnknown, Message: err.Error()}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &Failure{Kind: KindNotFound, Message: "no file was produced"}
	}

	// The ceiling passed to the engine is advisory only; the on-disk
	// size is what counts.
	size := info.Size()
	if size > pol.MaxBytes {
		storage.DeleteNow(path)
		log.Printf("[Orchestrator] rejected oversize artifact (%d > %d bytes) for %s channel", size, pol.MaxBytes, pol.Channel)
		return nil, &Failure{Kind: KindOversize, Message: fmt.Sprintf("file is %d bytes, channel limit is %d", size, pol.MaxBytes)}
	}

	return &Result{Title: title, Path: path, Size: size}, nil
}
