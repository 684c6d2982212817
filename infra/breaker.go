package infra

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sony/gobreaker"
	"github.com/tnqbao/gau-travel-service/utils"
)

// ErrProviderUnavailable is returned while a provider's circuit is open.
var ErrProviderUnavailable = errors.New("provider temporarily unavailable")

// newProviderBreaker trips after 60% of at least 5 calls in a 30s window fail
// and probes again after a minute. Rejections of the caller's input do not
// count as provider failures.
func newProviderBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrNoSpeech) ||
				errors.Is(err, ErrUnsupportedAudioFormat) ||
				errors.Is(err, utils.ErrValidation)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("circuit breaker %s: %s -> %s", name, from, to)
		},
	})
}

// callProvider runs fn through breaker. A nil breaker calls fn directly.
func callProvider[T any](breaker *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	var zero T
	if breaker == nil {
		return fn()
	}

	out, err := breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return zero, fmt.Errorf("%w: %s: %w", ErrProviderUnavailable, breaker.Name(), err)
	}
	if err != nil {
		return zero, err
	}
	result, _ := out.(T)
	return result, nil
}
