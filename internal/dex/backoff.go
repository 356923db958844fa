package dex

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// BackoffConfig holds the configuration for exponential backoff redials.
type BackoffConfig struct {
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
	JitterPercent     float64 // 0.2 = 20%
}

// Backoff retries an operation with exponential backoff and jitter.
type Backoff struct {
	config         BackoffConfig
	logger         *zap.Logger
	currentBackoff time.Duration
	mu             sync.Mutex
}

// NewBackoff creates a backoff helper, filling zero fields with defaults.
func NewBackoff(cfg BackoffConfig, logger *zap.Logger) *Backoff {
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = time.Second
	}
	if cfg.MaxDelay < cfg.InitialDelay {
		cfg.MaxDelay = cfg.InitialDelay
	}
	if cfg.BackoffMultiplier < 1.0 {
		cfg.BackoffMultiplier = 2.0
	}

	return &Backoff{
		config:         cfg,
		logger:         logger,
		currentBackoff: cfg.InitialDelay,
	}
}

// Retry calls fn until it succeeds, ctx is done, or maxAttempts is reached (0 = unlimited).
// The first attempt runs immediately.
func (b *Backoff) Retry(ctx context.Context, maxAttempts int, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			b.Reset()
			return nil
		}
		lastErr = err

		ConnectFailuresTotal.Inc()
		b.logger.Warn("rpc-connect-failed",
			zap.Int("attempt", attempt),
			zap.Error(err))

		if maxAttempts > 0 && attempt >= maxAttempts {
			return fmt.Errorf("connect after %d attempts: %w", attempt, lastErr)
		}

		backoff := b.nextBackoff()
		ConnectRetriesTotal.Inc()
		b.logger.Info("rpc-connect-retrying", zap.Duration("backoff", backoff))

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return fmt.Errorf("connect cancelled: %w", ctx.Err())
		}

		b.incrementBackoff()
	}
}

// Reset resets the backoff to the initial delay.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.currentBackoff = b.config.InitialDelay
}

// nextBackoff returns the current backoff duration with jitter applied.
func (b *Backoff) nextBackoff() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	jitter := rand.Float64() * b.config.JitterPercent
	return time.Duration(float64(b.currentBackoff) * (1.0 + jitter))
}

// incrementBackoff increases the backoff duration by the multiplier, capped at MaxDelay.
func (b *Backoff) incrementBackoff() {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := time.Duration(float64(b.currentBackoff) * b.config.BackoffMultiplier)
	if next > b.config.MaxDelay {
		next = b.config.MaxDelay
	}
	b.currentBackoff = next
}
