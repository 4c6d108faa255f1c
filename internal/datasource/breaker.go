// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package datasource

import (
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/skyintel/skyintel/internal/logging"
	"github.com/skyintel/skyintel/internal/metrics"
)

// newBreaker returns a circuit breaker for the named upstream with the
// shared trip policy: at least 10 observed requests and a 60% failure
// ratio open the circuit, which retries after two minutes.
func newBreaker[T any](source string) *gobreaker.CircuitBreaker[T] {
	settings := gobreaker.Settings{
		Name:        source,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.With("breaker").Warn().
				Str("source", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
			metrics.BreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.BreakerTransitions.WithLabelValues(name, to.String()).Inc()
		},
	}
	return gobreaker.NewCircuitBreaker[T](settings)
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}
