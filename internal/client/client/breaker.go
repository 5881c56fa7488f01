package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerSettings returns the default circuit breaker configuration: five
// consecutive transport failures open the circuit for five seconds.
func BreakerSettings() gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "foldershare-api",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
}

// breakerTransport runs each round trip through a circuit breaker. Only
// transport errors count as failures; any HTTP response, including 5xx, is a
// success because the server did answer.
type breakerTransport struct {
	base http.RoundTripper
	cb   *gobreaker.CircuitBreaker
}

func newBreakerTransport(base http.RoundTripper, st gobreaker.Settings) *breakerTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &breakerTransport{base: base, cb: gobreaker.NewCircuitBreaker(st)}
}

func (t *breakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	res, err := t.cb.Execute(func() (interface{}, error) {
		return t.base.RoundTrip(req)
	})
	if err != nil {
		return nil, err
	}
	return res.(*http.Response), nil
}

func (t *breakerTransport) State() gobreaker.State {
	return t.cb.State()
}

func (t *breakerTransport) CloseIdleConnections() {
	type closeIdler interface{ CloseIdleConnections() }
	if ci, ok := t.base.(closeIdler); ok {
		ci.CloseIdleConnections()
	}
}
