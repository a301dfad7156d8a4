package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Sentinel errors for the model invoker. Only ErrProviderExhausted may
// reach the turn boundary; everything else is absorbed or degraded by
// the callers.
var (
	ErrProviderExhausted = errors.New("all model providers exhausted")
	ErrInvalidRequest    = errors.New("invalid model request")
)

// TagTransient marks an error as retryable (rate limit or server-side
// failure). Fake providers in tests use it directly; real provider
// errors are classified heuristically by message.
var TagTransient = goerr.NewTag("transient")

// Transient wraps an error as retryable
func Transient(err error) error {
	return goerr.Wrap(err, "transient provider error", goerr.T(TagTransient))
}

var transientMarkers = []string{
	"429",
	"rate limit",
	"quota",
	"overloaded",
	"resource exhausted",
	"500",
	"502",
	"503",
	"504",
	"internal server",
	"unavailable",
}

// isTransient reports whether the error should be retried with backoff.
// Context cancellation is never transient: retrying a dead turn only
// burns the deadline.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if goerr.HasTag(err, TagTransient) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
