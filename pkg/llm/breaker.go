package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-jobassist-be/internal/pkg/logger"

	"github.com/sony/gobreaker/v2"
)

type BreakerSettings struct {
	Name        string
	MaxFailures uint32
	OpenTimeout time.Duration
}

// BreakerProvider stops calling a failing backend for OpenTimeout after
// MaxFailures consecutive errors. Calls made while open fail with ErrUnavailable.
type BreakerProvider struct {
	next    LLMProvider
	breaker *gobreaker.CircuitBreaker[string]
}

var _ LLMProvider = &BreakerProvider{}

func NewBreakerProvider(next LLMProvider, settings BreakerSettings, log logger.ILogger) *BreakerProvider {
	if settings.MaxFailures == 0 {
		settings.MaxFailures = 5
	}
	if settings.OpenTimeout <= 0 {
		settings.OpenTimeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.MaxFailures
		},
		// A caller giving up is not a backend failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("LLM", "Circuit breaker state changed", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})

	return &BreakerProvider{next: next, breaker: cb}
}

func (b *BreakerProvider) Chat(ctx context.Context, history []Message, opts ...Option) (string, error) {
	out, err := b.breaker.Execute(func() (string, error) {
		return b.next.Chat(ctx, history, opts...)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return out, err
}

func (b *BreakerProvider) Generate(ctx context.Context, prompt string, opts ...Option) (string, error) {
	return b.Chat(ctx, []Message{{Role: "user", Content: prompt}}, opts...)
}
