// Package backoff implements the executor retry policy described in spec
// §4.3: exponential backoff with jitter, a max attempt count, and an
// idempotency flag. The attempt loop itself is grounded in the teacher's
// executeWithRetry (agent/builder_execution.go); the policy's shape adds
// the jitter/initial/max-delay fields the teacher's simpler fixed/exp
// toggle didn't need.
package backoff

import (
	"math/rand"
	"time"
)

// Policy configures retry behavior for one executor.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	// Zero or one means "no retries".
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the computed delay regardless of attempt count.
	MaxDelay time.Duration

	// Multiplier scales the delay on each subsequent attempt
	// (delay = InitialDelay * Multiplier^attempt). A zero value disables
	// exponential growth (fixed delay == InitialDelay).
	Multiplier float64

	// Jitter, when true, applies up to +/-25% random jitter to the
	// computed delay to avoid thundering-herd retries.
	Jitter bool

	// Idempotent marks whether the wrapped operation is safe to retry
	// without side effects. The Executor's retry loop does not read it:
	// retries there depend only on error classification and ShouldRetry.
	Idempotent bool
}

// DefaultPolicy returns a conservative policy: 3 attempts, 500ms initial
// delay, 2x multiplier, 10s cap, jitter enabled.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2,
		Jitter:       true,
		Idempotent:   true,
	}
}

// Delay returns the delay to wait before retry attempt number `attempt`
// (0-based: the delay before the second overall try is Delay(0)).
func (p Policy) Delay(attempt int) time.Duration {
	base := p.InitialDelay
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	mult := p.Multiplier
	if mult <= 0 {
		mult = 1
	}
	delay := float64(base)
	for i := 0; i < attempt; i++ {
		delay *= mult
	}
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	if p.Jitter {
		// +/- 25%
		factor := 0.75 + rand.Float64()*0.5
		delay *= factor
	}
	return time.Duration(delay)
}

// ShouldRetry reports whether a further attempt is allowed given the
// number of attempts already made.
func (p Policy) ShouldRetry(attemptsMade int) bool {
	if p.MaxAttempts <= 0 {
		return false
	}
	return attemptsMade < p.MaxAttempts
}
