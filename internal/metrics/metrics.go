// Package metrics defines the Prometheus collectors for the bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Vote lifecycle metrics
var (
	// VoteProposalsTotal tracks proposal attempts by admission result
	VoteProposalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vote_proposals_total",
			Help: "Vote proposal attempts by admission result",
		},
		[]string{"result"},
	)

	// VotesResolvedTotal tracks resolved votes by verdict
	VotesResolvedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "votes_resolved_total",
			Help: "Resolved votes by verdict",
		},
		[]string{"verdict"},
	)

	// ActiveVotes tracks the number of votes currently awaiting resolution
	ActiveVotes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_votes",
			Help: "Number of votes currently awaiting resolution",
		},
	)

	// TallyErrorsTotal tracks failed reaction tally queries by reaction kind
	TallyErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tally_errors_total",
			Help: "Failed reaction tally queries by reaction kind",
		},
		[]string{"kind"},
	)

	// MuteEnforcementsTotal tracks mute enforcement attempts by status
	MuteEnforcementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mute_enforcements_total",
			Help: "Mute enforcement attempts by status",
		},
		[]string{"status"},
	)
)

// Backend (OneBot API) metrics
var (
	// BackendRequestsTotal tracks backend API calls by operation and status
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_requests_total",
			Help: "OneBot backend API calls by operation and status",
		},
		[]string{"operation", "status"},
	)

	// BackendRequestDuration tracks backend API call latency in seconds
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "OneBot backend API call duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	// CircuitBreakerState tracks current circuit breaker state (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)

	// CircuitBreakerStateChanges tracks circuit breaker state transitions
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)
)
