package translation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned once too many consecutive requests failed
var ErrCircuitOpen = errors.New("circuit breaker open")

// DefaultBreakerFailures is the consecutive failure count that opens the breaker
const DefaultBreakerFailures = 5

// BreakerTranslator fails fast after a run of consecutive failures. It
// never retries a request.
type BreakerTranslator struct {
	next Translator
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerTranslator wraps next. failures <= 0 uses DefaultBreakerFailures.
func NewBreakerTranslator(next Translator, failures int) *BreakerTranslator {
	if failures <= 0 {
		failures = DefaultBreakerFailures
	}
	threshold := uint32(failures)

	settings := gobreaker.Settings{
		Name:    "completion",
		Timeout: time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// a cancelled run says nothing about the remote side
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnw("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}

	return &BreakerTranslator{
		next: next,
		cb:   gobreaker.NewCircuitBreaker(settings),
	}
}

// Translate delegates to the wrapped translator unless the breaker is open
func (b *BreakerTranslator) Translate(ctx context.Context, text string) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Translate(ctx, text)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w (%w): %w", ErrRequestFailed, ErrCircuitOpen, err)
	}
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// State returns the breaker state name
func (b *BreakerTranslator) State() string {
	return b.cb.State().String()
}
