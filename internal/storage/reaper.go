package storage

import (
	"context"
	"log"
	"os"
	"sync"
	"time"
)

// DeleteNow removes the file at path, best effort. A missing file is not
// an error and deletion faults are logged and swallowed: cleanup must
// never override the job's own outcome.
func DeleteNow(path string) {
	err := os.Remove(path)
	if err == nil {
		log.Printf("[Cleanup] removed %s", path)
		return
	}
	if !os.IsNotExist(err) {
		log.Printf("[Cleanup] failed to remove %s: %v", path, err)
	}
}

// Reaper owns every deferred-deletion timer in the process. Each
// ScheduleDelete spawns a supervised task; Shutdown cancels and joins all
// of them, deleting their files early rather than leaking them.
type Reaper struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewReaper() *Reaper {
	ctx, cancel := context.WithCancel(context.Background())
	return &Reaper{ctx: ctx, cancel: cancel}
}

// ScheduleDelete registers exactly one deferred deletion for path. There
// is no cancellation once scheduled: the delete eventually fires even if
// the file was already consumed and removed by another path (double
// delete is a no-op).
//
// A job that outlives Shutdown (the HTTP drain can time out with a
// handler still running) gets its file deleted immediately instead of
// racing the WaitGroup.
func (r *Reaper) ScheduleDelete(path string, delay time.Duration) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		log.Printf("[Cleanup] reaper stopped, deleting %s now", path)
		DeleteNow(path)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-r.ctx.Done():
			log.Printf("[Cleanup] shutdown, deleting %s early", path)
		}
		DeleteNow(path)
	}()
}

// Shutdown cancels all outstanding deletion timers and waits for them to
// finish their final delete. Safe to call more than once.
func (r *Reaper) Shutdown() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
}
