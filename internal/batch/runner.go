package batch

import (
	"context"
	"log/slog"
	"time"

	"github.com/sergss/geomark/internal/metrics"
	"github.com/sergss/geomark/internal/models"
	"github.com/sergss/geomark/internal/presenter"
	"github.com/sergss/geomark/internal/repository"
	"github.com/sergss/geomark/internal/resolver"
)

// Resolver resolves a single address to an outcome. It is implemented by
// resolver.Resolver; the runner depends on the interface so tests can drive
// the loop with a stub.
type Resolver interface {
	Resolve(ctx context.Context, address string, bias *models.Bounds) resolver.Outcome
}

// Runner turns raw user input into an ordered job queue and drives the
// resolver over it strictly sequentially. Jobs are never processed
// concurrently: the provider rate budget is shared, and placemark numbering
// and not-found ordering must match input order.
type Runner struct {
	log       *slog.Logger         // Logger for run diagnostics
	presenter presenter.Presenter  // Surface receiving incremental updates
	history   repository.Interface // History store for completed runs
	metrics   *metrics.Metrics     // Metrics for tracking run outcomes
	jobDelay  time.Duration        // Fixed pause between jobs, to respect provider rate limits
	fitMargin float64              // Margin fraction for the final fit-to-bounds request
}

// NewRunner creates a batch runner. jobDelay is the fixed inter-job pause and
// fitMargin the padding fraction used when fitting the view to the results.
func NewRunner(
	log *slog.Logger,
	surface presenter.Presenter,
	history repository.Interface,
	appMetrics *metrics.Metrics,
	jobDelay time.Duration,
	fitMargin float64,
) *Runner {
	return &Runner{
		log:       log,
		presenter: surface,
		history:   history,
		metrics:   appMetrics,
		jobDelay:  jobDelay,
		fitMargin: fitMargin,
	}
}

// Start begins a run in the background and returns its live session
// immediately. The session is updated incrementally as jobs resolve.
func (r *Runner) Start(ctx context.Context, rawInput string, res Resolver, bias *models.Bounds) *Session {
	session := r.begin(ctx, rawInput)
	go r.drive(session, res, bias)
	return session
}

// Run executes a run to completion and returns the finished session.
func (r *Runner) Run(ctx context.Context, rawInput string, res Resolver, bias *models.Bounds) *Session {
	session := r.begin(ctx, rawInput)
	r.drive(session, res, bias)
	return session
}

// begin parses the input into jobs, resets the presentation surface, and
// publishes the job total. Blank lines never produce jobs.
func (r *Runner) begin(ctx context.Context, rawInput string) *Session {
	jobs := models.ParseJobs(rawInput)
	session := newSession(ctx, jobs)

	r.presenter.Clear()
	r.presenter.SetTotal(len(jobs))

	return session
}

// drive processes the session's jobs in order, one at a time. Per-job
// failures are folded into the not-found list and never abort the batch;
// only a rejected credential cancels the whole session.
func (r *Runner) drive(session *Session, res Resolver, bias *models.Bounds) {
	defer close(session.done)
	defer session.cancelFn()

	r.metrics.ActiveSearches.Inc()
	defer r.metrics.ActiveSearches.Dec()

	r.log.InfoContext(session.ctx, "Batch run started", "jobs", len(session.jobs))

	placemarkCount := 0
	for i, job := range session.jobs {
		// Cancellation halts before the next job starts; remaining jobs are
		// left unprocessed, not marked as not found.
		if session.Cancelled() || session.ctx.Err() != nil {
			break
		}

		outcome := res.Resolve(session.ctx, job.RawText, bias)
		r.metrics.JobsProcessed.WithLabelValues(outcome.Status.String()).Inc()

		switch outcome.Status {
		case resolver.StatusFound:
			mark := models.Placemark{
				Coordinates: outcome.Match.Coordinates,
				Index:       job.Index,
				Original:    job.RawText,
				Found:       outcome.Match.AddressLine,
			}
			foundCount := session.addFound(mark)
			placemarkCount++
			r.presenter.AddPlacemark(mark)
			r.presenter.SetFoundCount(foundCount)

		case resolver.StatusNotFound, resolver.StatusFailed, resolver.StatusCancelled:
			r.presenter.SetNotFound(session.addNotFound(job.RawText))
			if outcome.Status == resolver.StatusFailed {
				r.log.ErrorContext(session.ctx, "Failed to geocode",
					"job", job.Index, "address", job.RawText, "error", outcome.Err)
			}

		case resolver.StatusAuthFailed:
			r.presenter.SetNotFound(session.addNotFound(job.RawText))
			session.authError.Store(true)
			session.Cancel()
			r.presenter.ReportMapError("geocoding provider rejected the API key; update the key in settings")
			r.log.ErrorContext(session.ctx, "Provider rejected credentials, cancelling run",
				"job", job.Index, "error", outcome.Err)
		}

		// Fixed pause between jobs keeps us under the provider rate limit.
		// Cancellation interrupts the pause.
		if i < len(session.jobs)-1 && !session.Cancelled() {
			select {
			case <-session.ctx.Done():
			case <-time.After(r.jobDelay):
			}
		}
	}

	if placemarkCount > 0 {
		r.presenter.FitToBounds(r.fitMargin)
	}

	r.finish(session)
}

// finish records the completed session to history and logs the summary.
func (r *Runner) finish(session *Session) {
	record, marks := session.record(time.Now())

	// The run context may already be cancelled; history is written regardless.
	ctx := context.WithoutCancel(session.ctx)
	if _, err := r.history.SaveSession(ctx, record, marks); err != nil {
		r.log.ErrorContext(ctx, "Failed to record session history", "error", err)
	}

	r.log.InfoContext(ctx, "Batch run finished",
		"total", record.Total,
		"found", record.FoundCount,
		"not_found", len(record.NotFound),
		"cancelled", record.Cancelled,
	)
}
