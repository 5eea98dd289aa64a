// Package resilience provides the extraction engine's error taxonomy and
// the centralized retry/backoff policy for external calls.
package resilience

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/rotisserie/eris"
)

// Kind categorizes an extraction error for retry and reporting decisions.
type Kind string

const (
	// KindValidation marks malformed or empty input. Never retried.
	KindValidation Kind = "validation"
	// KindProvider marks an AI provider HTTP/network failure. Retryable.
	KindProvider Kind = "provider"
	// KindCostLimit marks a budget denial. Not retryable until the next period.
	KindCostLimit Kind = "cost_limit"
	// KindTimeout marks a deadline expiry. Retryable.
	KindTimeout Kind = "timeout"
	// KindUnknown is returned by KindOf for errors outside the taxonomy.
	KindUnknown Kind = "unknown"
)

// Error carries a category and a human-readable reason to the caller.
type Error struct {
	Kind        Kind
	RateLimited bool // set on provider errors when the provider signaled throttling
	Err         error
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidation builds a validation error from a reason string.
func NewValidation(reason string) *Error {
	return &Error{Kind: KindValidation, Err: eris.New(reason)}
}

// NewProvider wraps a provider failure, flagging rate limiting when the
// provider signaled throttling.
func NewProvider(err error, rateLimited bool) *Error {
	return &Error{Kind: KindProvider, RateLimited: rateLimited, Err: err}
}

// NewCostLimit builds a budget-denial error from the governor's reason.
func NewCostLimit(reason string) *Error {
	return &Error{Kind: KindCostLimit, Err: eris.New(reason)}
}

// NewTimeout wraps a deadline expiry.
func NewTimeout(err error) *Error {
	return &Error{Kind: KindTimeout, Err: err}
}

// KindOf classifies an arbitrary error. Explicit taxonomy errors win;
// otherwise network timeouts and context deadline expiry map to
// KindTimeout, and everything else to KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	return KindUnknown
}

// IsRateLimited reports whether err is a provider error flagged as throttled.
func IsRateLimited(err error) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind == KindProvider && te.RateLimited
	}
	return false
}

// Retryable reports whether the error category permits a retry.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindProvider, KindTimeout:
		return true
	default:
		return false
	}
}

// rateLimitPatterns are string heuristics for throttling signals from
// HTTP clients that don't surface a typed status code.
var rateLimitPatterns = []string{
	"429",
	"rate limit",
	"rate_limit",
	"too many requests",
	"overloaded",
}

// LooksRateLimited reports whether an untyped provider error message
// suggests throttling.
func LooksRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range rateLimitPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
