package resolver

import (
	"errors"
	"time"
)

// RetryPolicy bounds how often a single address lookup is retried after a
// transient failure, and how long to back off between attempts. A policy is
// immutable for the duration of a search run; it is loaded from the settings
// store when the run starts.
type RetryPolicy struct {
	MaxAttempts int             // MaxAttempts is the total number of attempts per address, at least 1.
	Delays      []time.Duration // Delays holds the backoff before retry k; the last entry repeats.
}

// Policy validation errors.
var (
	ErrNoAttempts = errors.New("retry policy must allow at least one attempt")
	ErrNoDelays   = errors.New("retry policy must define at least one backoff delay")
	ErrBadDelay   = errors.New("retry policy backoff delays must be positive")
)

// Validate rejects policies that could never drive a lookup or would busy-loop.
// A run is refused before it starts rather than failing on its first retry.
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return ErrNoAttempts
	}
	if len(p.Delays) == 0 {
		return ErrNoDelays
	}
	for _, d := range p.Delays {
		if d <= 0 {
			return ErrBadDelay
		}
	}
	return nil
}

// backoff returns the delay to wait after failed attempt number attempt
// (0-indexed). Attempts past the end of the sequence reuse the last delay.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	if attempt >= len(p.Delays) {
		return p.Delays[len(p.Delays)-1]
	}
	return p.Delays[attempt]
}
