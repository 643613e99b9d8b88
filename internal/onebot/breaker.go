package onebot

import (
	"errors"
	"log/slog"
	"time"

	"mutevote/internal/metrics"
	"mutevote/internal/platform/retry"

	"github.com/sony/gobreaker"
)

// newBreaker creates the circuit breaker shared by all backend calls.
// It opens after sustained failures and probes again after 30 seconds, so a
// dead backend fails fast instead of eating the full per-call timeout on
// every resolution.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && counts.TotalFailures*10 >= counts.Requests*6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed",
				"component", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.CircuitBreakerStateChanges.WithLabelValues(name, to.String()).Inc()
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// classifyBackendError decides whether a failed backend call is worth
// retrying. Backend rejections and an open breaker are permanent; transport
// errors are transient.
func classifyBackendError(err error) retry.Action {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return retry.Stop
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return retry.Stop
	}
	return retry.Retry
}
