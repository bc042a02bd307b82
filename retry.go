package jobq

import (
	"math"
	"math/rand/v2"
	"time"
)

// BackoffConfig holds the tunables read from the store's config table
// (backoff-base, backoff-initial-delay) plus an optional bounded jitter
// factor. RandomizationFactor is not part of the store's config schema;
// it exists so a caller may add jitter without affecting the average
// delay.
type BackoffConfig struct {
	Base                int
	InitialDelay        int
	RandomizationFactor float64
}

// Outcome is the result of DecideAfterFailure: either a scheduled retry
// or permanent death to the DLQ.
type Outcome uint8

const (
	// Retry means the job should return to Pending with NextRetryAt set.
	Retry Outcome = iota
	// Dead means the job has exhausted its retry budget.
	Dead
)

// Decision is the outcome of applying the retry policy to a failed
// attempt.
type Decision struct {
	Outcome     Outcome
	Attempts    uint32
	NextRetryAt time.Time
}

// DecideAfterFailure maps (attempts before this failure, max retries,
// now, config) to the next state.
//
// Let a = attemptsBefore + 1 (attempts after this failure). If
// a >= maxRetries, the job dies. Otherwise it is scheduled for retry
// after initialDelay * base^a seconds. A non-positive Base or
// InitialDelay is replaced by 2 or 1 respectively.
//
// This boundary treats maxRetries as a cap on total attempts, not a
// cap on retries beyond the first.
func DecideAfterFailure(attemptsBefore, maxRetries uint32, now time.Time, cfg BackoffConfig) Decision {
	a := attemptsBefore + 1
	if a >= maxRetries {
		return Decision{Outcome: Dead, Attempts: a}
	}
	delay := delaySeconds(a, cfg)
	return Decision{
		Outcome:     Retry,
		Attempts:    a,
		NextRetryAt: now.Add(delay),
	}
}

func delaySeconds(attempt uint32, cfg BackoffConfig) time.Duration {
	base := cfg.Base
	if base <= 0 {
		base = 2
	}
	initial := cfg.InitialDelay
	if initial <= 0 {
		initial = 1
	}
	exp := float64(initial) * math.Pow(float64(base), float64(attempt))
	if cfg.RandomizationFactor > 0 {
		delta := cfg.RandomizationFactor * exp
		minExp := exp - delta
		maxExp := exp + delta
		exp = minExp + rand.Float64()*(maxExp-minExp)
		if exp < 0 {
			exp = 0
		}
	}
	return time.Duration(exp * float64(time.Second))
}
