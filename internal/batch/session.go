package batch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sergss/geomark/internal/models"
)

// Session holds the live state of one batch run. It is created when a run
// starts, mutated only by the runner goroutine as each job resolves, and
// read concurrently by the HTTP layer through Snapshot. Cancellation is
// cooperative: Cancel takes effect synchronously, but an in-flight job
// finishes resolving (its context is torn down) before the loop stops.
type Session struct {
	mu         sync.Mutex
	jobs       []models.AddressJob
	startedAt  time.Time
	foundCount int
	notFound   []string
	placemarks []models.Placemark

	cancelled atomic.Bool
	authError atomic.Bool
	ctx       context.Context
	cancelFn  context.CancelFunc
	done      chan struct{}
}

// Summary is a point-in-time copy of the session counters.
type Summary struct {
	Total      int      `json:"total"`
	FoundCount int      `json:"found_count"`
	NotFound   []string `json:"not_found"`
	Cancelled  bool     `json:"cancelled"`
	AuthError  bool     `json:"auth_error"`
	Done       bool     `json:"done"`
}

func newSession(ctx context.Context, jobs []models.AddressJob) *Session {
	runCtx, cancel := context.WithCancel(ctx)
	return &Session{
		jobs:      jobs,
		startedAt: time.Now(),
		ctx:       runCtx,
		cancelFn:  cancel,
		done:      make(chan struct{}),
	}
}

// Total returns the number of jobs in the run.
func (s *Session) Total() int {
	return len(s.jobs)
}

// Cancel stops the run. It takes effect synchronously: no further job is
// started, pending backoff and inter-job waits are interrupted, and the
// in-flight remote call is torn down.
func (s *Session) Cancel() {
	s.cancelled.Store(true)
	s.cancelFn()
}

// Cancelled reports whether the run was cancelled.
func (s *Session) Cancelled() bool {
	return s.cancelled.Load()
}

// Done reports whether the run has finished processing.
func (s *Session) Done() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the run has finished processing.
func (s *Session) Wait() {
	<-s.done
}

// Snapshot returns a copy of the current counters, safe for concurrent use.
func (s *Session) Snapshot() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summary{
		Total:      len(s.jobs),
		FoundCount: s.foundCount,
		NotFound:   append([]string(nil), s.notFound...),
		Cancelled:  s.cancelled.Load(),
		AuthError:  s.authError.Load(),
		Done:       s.Done(),
	}
}

func (s *Session) addFound(mark models.Placemark) (foundCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.foundCount++
	s.placemarks = append(s.placemarks, mark)
	return s.foundCount
}

func (s *Session) addNotFound(address string) (notFound []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notFound = append(s.notFound, address)
	return append([]string(nil), s.notFound...)
}

func (s *Session) record(finishedAt time.Time) (models.SessionRecord, []models.Placemark) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.SessionRecord{
		StartedAt:  s.startedAt,
		FinishedAt: finishedAt,
		Total:      len(s.jobs),
		FoundCount: s.foundCount,
		NotFound:   append([]string(nil), s.notFound...),
		Cancelled:  s.cancelled.Load(),
	}, append([]models.Placemark(nil), s.placemarks...)
}
