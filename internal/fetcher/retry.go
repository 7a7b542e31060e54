package fetcher

import (
	"context"
	"errors"
	"net"
	"time"
)

// RetryPolicy defines retry behavior with exponential backoff. Backoff is
// deliberately jitter-free so delays are non-decreasing across attempts.
type RetryPolicy struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// NewRetryPolicy creates a default retry policy
func NewRetryPolicy(maxAttempts int) *RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryPolicy{
		MaxAttempts:       maxAttempts,
		InitialBackoff:    time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// Backoff calculates the wait before the next attempt. attempt is zero-based:
// Backoff(0) is the wait after the first failure. The result never decreases
// as attempt grows and is capped at MaxBackoff.
func (p *RetryPolicy) Backoff(attempt int) time.Duration {
	backoff := float64(p.InitialBackoff)
	for i := 0; i < attempt; i++ {
		backoff *= p.BackoffMultiplier
		if backoff >= float64(p.MaxBackoff) {
			return p.MaxBackoff
		}
	}
	return time.Duration(backoff)
}

// RetryableStatus reports whether an HTTP status code warrants a retry.
// Server errors and throttling retry; other client errors are terminal.
func RetryableStatus(statusCode int) bool {
	if statusCode >= 500 {
		return true
	}
	switch statusCode {
	case 408, 429:
		return true
	}
	return false
}

// TerminalStatus reports whether a status code should fail immediately
// without consuming the remaining retry budget. Any non-success status that
// is not retryable is terminal, including unexpected 1xx/3xx responses:
// retrying them cannot change the outcome.
func TerminalStatus(statusCode int) bool {
	if statusCode >= 200 && statusCode < 300 {
		return false
	}
	return !RetryableStatus(statusCode)
}

// retryableError reports whether a transport-level error is worth retrying
func retryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
