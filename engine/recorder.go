/*
recorder.go - Asynchronous backend confirmation

PURPOSE:
  The engine mutates its in-memory ledger immediately so the scoring
  screen feels instant, then hands the write to the Recorder, which
  persists it in the background. Fire-and-forget with reconciliation:
  a failed backend write is logged and surfaced, never rolled back -
  scoring must not silently lose a ball that actually happened.

RETRY SEMANTICS:
  At-least-once with exponential backoff. The store is idempotent per
  (innings, sequence number), so a retry that lands twice is harmless:
  ErrDuplicateBall counts as success. This is safe because the ledger
  never reissues a sequence number, not even after an undo, so two
  appends with the same seq are always the same ball. Jobs that exhaust
  their attempts are parked on the failure list for manual
  reconciliation.

DESIGN:
  - Single background goroutine draining a job channel
  - Stop() drains queued jobs before returning
  - Failures() exposes parked jobs to the operator (toast/log)
*/
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// Recorder persists ledger mutations in the background.
type Recorder struct {
	Store       Store
	MaxAttempts int
	BaseBackoff time.Duration

	jobs chan syncJob
	stop chan struct{}
	wg   sync.WaitGroup

	mu       sync.Mutex
	failures []SyncFailure
	started  bool
}

// SyncFailure is a backend write that exhausted its retries.
type SyncFailure struct {
	InningsID InningsID
	Seq       int
	Desc      string
	Err       error
	At        time.Time
}

type syncJobKind int

const (
	jobAppendBall syncJobKind = iota
	jobVoidBall
	jobAssignment
)

type syncJob struct {
	kind       syncJobKind
	inningsID  InningsID
	ball       BallRecord
	seq        int
	assignment Assignment
}

func (j syncJob) desc() string {
	switch j.kind {
	case jobAppendBall:
		return fmt.Sprintf("append ball %d", j.ball.Seq)
	case jobVoidBall:
		return fmt.Sprintf("void ball %d", j.seq)
	default:
		return "save assignment"
	}
}

// NewRecorder creates a recorder with default retry settings.
func NewRecorder(store Store) *Recorder {
	return &Recorder{
		Store:       store,
		MaxAttempts: 5,
		BaseBackoff: 100 * time.Millisecond,
		jobs:        make(chan syncJob, 256),
		stop:        make(chan struct{}),
	}
}

// Start begins the background worker.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true
	r.wg.Add(1)
	go r.run()
	log.Printf("[Recorder] Started (max attempts: %d)", r.MaxAttempts)
}

// Stop drains queued jobs and stops the worker.
func (r *Recorder) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.started = false
	r.mu.Unlock()

	close(r.stop)
	r.wg.Wait()
	log.Println("[Recorder] Stopped")
}

// BallAppended queues persistence of a newly recorded ball.
func (r *Recorder) BallAppended(inningsID InningsID, b BallRecord) {
	r.enqueue(syncJob{kind: jobAppendBall, inningsID: inningsID, ball: b})
}

// BallVoided queues the void marker for an undone ball.
func (r *Recorder) BallVoided(inningsID InningsID, seq int) {
	r.enqueue(syncJob{kind: jobVoidBall, inningsID: inningsID, seq: seq})
}

// AssignmentChanged queues the current crease/bowler assignment.
func (r *Recorder) AssignmentChanged(inningsID InningsID, a Assignment) {
	r.enqueue(syncJob{kind: jobAssignment, inningsID: inningsID, assignment: a})
}

func (r *Recorder) enqueue(j syncJob) {
	r.jobs <- j
}

// Failures returns the jobs that exhausted their retries.
func (r *Recorder) Failures() []SyncFailure {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SyncFailure, len(r.failures))
	copy(out, r.failures)
	return out
}

func (r *Recorder) run() {
	defer r.wg.Done()
	for {
		select {
		case j := <-r.jobs:
			r.process(j)
		case <-r.stop:
			// Drain whatever is still queued before exiting.
			for {
				select {
				case j := <-r.jobs:
					r.process(j)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) process(j syncJob) {
	ctx := context.Background()
	backoff := r.BaseBackoff

	var err error
	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		err = r.apply(ctx, j)
		if err == nil || errors.Is(err, ErrDuplicateBall) {
			return
		}
		log.Printf("[Recorder] %s/%s failed (attempt %d/%d): %v",
			j.inningsID, j.desc(), attempt, r.MaxAttempts, err)
		if attempt < r.MaxAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}

	failure := SyncFailure{
		InningsID: j.inningsID,
		Seq:       j.seqNumber(),
		Desc:      j.desc(),
		Err:       err,
		At:        time.Now().UTC(),
	}
	r.mu.Lock()
	r.failures = append(r.failures, failure)
	r.mu.Unlock()
	log.Printf("[Recorder] %s/%s parked for manual reconciliation: %v", j.inningsID, j.desc(), err)
}

func (j syncJob) seqNumber() int {
	if j.kind == jobAppendBall {
		return j.ball.Seq
	}
	return j.seq
}

func (r *Recorder) apply(ctx context.Context, j syncJob) error {
	switch j.kind {
	case jobAppendBall:
		return r.Store.AppendBall(ctx, j.inningsID, j.ball)
	case jobVoidBall:
		return r.Store.VoidBall(ctx, j.inningsID, j.seq)
	default:
		return r.Store.SaveAssignment(ctx, j.inningsID, j.assignment)
	}
}
