package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/metrics"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit open")

// Config holds the retry and breaker settings of one outbound client.
type Config struct {
	Name            string
	MaxAttempts     int
	InitialBackoff  time.Duration
	BreakerFailures int
	OpenTimeout     time.Duration
	// Transient reports whether a failed call may be retried. Nil retries every error.
	Transient func(error) bool
	Logger    *zap.Logger
}

// Guard runs outbound calls with bounded exponential retries behind a circuit breaker.
// Only transient failures are retried and only transient failures count towards tripping.
type Guard struct {
	name        string
	cb          *gobreaker.CircuitBreaker[any]
	maxAttempts int
	initial     time.Duration
	transient   func(error) bool
	logger      *zap.Logger
}

// New creates a Guard.
func New(cfg Config) *Guard {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.BreakerFailures <= 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.Transient == nil {
		cfg.Transient = func(error) bool { return true }
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	g := &Guard{
		name:        cfg.Name,
		maxAttempts: cfg.MaxAttempts,
		initial:     cfg.InitialBackoff,
		transient:   cfg.Transient,
		logger:      cfg.Logger,
	}

	metrics.BreakerState.WithLabelValues(cfg.Name).Set(0)

	failures := uint32(cfg.BreakerFailures) //nolint:gosec // validated positive above
	g.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !cfg.Transient(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(stateValue(to))
			g.logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return g
}

// Do runs op until it succeeds, fails permanently, exhausts its attempts or ctx ends.
// A nil Guard runs op once.
func (g *Guard) Do(ctx context.Context, op func(ctx context.Context) error) error {
	if g == nil {
		return op(ctx)
	}

	attempt := func() error {
		_, err := g.cb.Execute(func() (any, error) {
			return nil, op(ctx)
		})
		switch {
		case err == nil:
			return nil
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return backoff.Permanent(fmt.Errorf("%s: %w", g.name, ErrCircuitOpen))
		case !g.transient(err):
			return backoff.Permanent(err)
		default:
			return err
		}
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = g.initial
	exp.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(g.maxAttempts-1)), ctx) //nolint:gosec // positive

	return backoff.RetryNotify(attempt, policy, func(err error, wait time.Duration) {
		metrics.OutboundRetriesTotal.WithLabelValues(g.name).Inc()
		g.logger.Warn("retrying outbound call",
			zap.String("client", g.name),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	})
}

// State returns the current breaker state.
func (g *Guard) State() gobreaker.State {
	return g.cb.State()
}

// Call is Do for operations that produce a value.
func Call[T any](ctx context.Context, g *Guard, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := g.Do(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// TransientStatus reports whether an HTTP status is worth retrying: 429 and 5xx.
func TransientStatus(code int) bool {
	return code == 429 || code >= 500
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
