// Package resilience wraps every backend adapter call in a circuit breaker,
// one breaker per backend name, so a failing backend degrades to fast
// rejection instead of piling up latency on every caller.
package resilience

import (
	"time"

	"github.com/sony/gobreaker"
)

const (
	minRequests      = 3
	failureThreshold = 0.6
)

// NewBreaker builds a breaker tuned the same way for every backend: trip
// once at least minRequests have run and failureThreshold of them failed.
func NewBreaker[T any](name string) *gobreaker.CircuitBreaker[T] {
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= failureThreshold
		},
	})
}
