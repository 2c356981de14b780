package imodels

import (
	"math"
	"time"
)

// MaxRetriesHardLimit bounds the retries of a single request whatever the
// policy says.
const MaxRetriesHardLimit = 10

// RetryAttempt describes a failed attempt. StatusCode is zero when no
// response was received.
type RetryAttempt struct {
	RetriesInvoked int
	StatusCode     int
	Err            error
}

// RetryPolicy decides whether and when a failed request is retried.
type RetryPolicy interface {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries() int
	// ShouldRetry reports whether the failed attempt should be retried.
	ShouldRetry(attempt RetryAttempt) bool
	// SleepDuration is the delay before the retry following retriesInvoked retries.
	SleepDuration(retriesInvoked int) time.Duration
}

// ExponentialBackoffPolicy retries transport errors and 5xx responses, never
// 4xx, sleeping BaseDelay * Factor^retriesInvoked between attempts.
type ExponentialBackoffPolicy struct {
	Retries   int
	BaseDelay time.Duration
	Factor    float64
}

// DefaultRetryPolicy returns the policy installed when none is configured.
func DefaultRetryPolicy() *ExponentialBackoffPolicy {
	return &ExponentialBackoffPolicy{
		Retries:   3,
		BaseDelay: 300 * time.Millisecond,
		Factor:    3,
	}
}

// MaxRetries implements RetryPolicy.
func (p *ExponentialBackoffPolicy) MaxRetries() int {
	return p.Retries
}

// ShouldRetry implements RetryPolicy.
func (p *ExponentialBackoffPolicy) ShouldRetry(attempt RetryAttempt) bool {
	if attempt.StatusCode == 0 {
		return attempt.Err != nil
	}

	return attempt.StatusCode >= 500
}

// SleepDuration implements RetryPolicy.
func (p *ExponentialBackoffPolicy) SleepDuration(retriesInvoked int) time.Duration {
	factor := p.Factor
	if factor <= 0 {
		factor = 1
	}

	return time.Duration(float64(p.BaseDelay) * math.Pow(factor, float64(retriesInvoked)))
}

// EffectiveMaxRetries returns the retry bound of a policy after applying
// MaxRetriesHardLimit. A nil policy allows no retries.
func EffectiveMaxRetries(policy RetryPolicy) int {
	if policy == nil {
		return 0
	}

	return max(0, min(policy.MaxRetries(), MaxRetriesHardLimit))
}
