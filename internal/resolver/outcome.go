package resolver

import "github.com/sergss/geomark/internal/models"

// Status classifies how a single address lookup ended.
type Status int

const (
	// StatusFound means the provider returned a match.
	StatusFound Status = iota
	// StatusNotFound means the provider legitimately found zero results.
	// This is terminal for the job and is never retried.
	StatusNotFound
	// StatusFailed means every attempt failed with a transient error.
	StatusFailed
	// StatusAuthFailed means the provider rejected the credential. This is
	// fatal to the whole session, not just the job.
	StatusAuthFailed
	// StatusCancelled means the run was cancelled before or during the lookup.
	StatusCancelled
)

// String returns the metric label for the status.
func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not_found"
	case StatusFailed:
		return "failed"
	case StatusAuthFailed:
		return "auth_failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome is the result of resolving one address job. Match is set only for
// StatusFound; Err is set for StatusFailed and StatusAuthFailed.
type Outcome struct {
	Status Status
	Match  *models.Match
	Err    error
}
