package quote

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/mselser95/triarb-tracker/internal/circuitbreaker"
	"github.com/mselser95/triarb-tracker/internal/dex"
	"github.com/mselser95/triarb-tracker/pkg/types"
	"go.uber.org/zap"
)

// Guarded wraps a Provider with a per-call timeout and a circuit breaker.
// Only transport errors and timeouts count as breaker failures. Reverts and
// plain "quote unavailable" answers mean the node answered and the path has no liquidity.
type Guarded struct {
	next    Provider
	breaker *circuitbreaker.QuoteBreaker
	timeout time.Duration
	logger  *zap.Logger
}

// GuardedConfig holds guarded provider configuration.
type GuardedConfig struct {
	Next    Provider
	Breaker *circuitbreaker.QuoteBreaker // optional
	Timeout time.Duration                // 0 = no per-call timeout
	Logger  *zap.Logger
}

// NewGuarded creates a guarded provider.
func NewGuarded(cfg GuardedConfig) (*Guarded, error) {
	if cfg.Next == nil {
		return nil, errors.New("next provider cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Guarded{
		next:    cfg.Next,
		breaker: cfg.Breaker,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}, nil
}

// Quote implements Provider.
func (g *Guarded) Quote(ctx context.Context, amountIn *big.Int, path []types.Token) ([]*big.Int, error) {
	var permit circuitbreaker.Permit
	if g.breaker != nil {
		var ok bool
		permit, ok = g.breaker.Admit()
		if !ok {
			QuotesTotal.WithLabelValues(types.ReasonBreakerOpen).Inc()
			return nil, types.NewQuoteError(path, types.ReasonBreakerOpen, nil)
		}
	}

	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	amounts, err := g.next.Quote(callCtx, amountIn, path)
	QuoteDurationSeconds.Observe(time.Since(start).Seconds())

	if err == nil {
		QuotesTotal.WithLabelValues("ok").Inc()
		g.recordSuccess()
		return amounts, nil
	}

	reason := reasonOf(err)
	QuotesTotal.WithLabelValues(reason).Inc()

	switch {
	case ctx.Err() != nil:
		// Caller gave up; says nothing about endpoint health.
		g.release(permit)
	case reason == types.ReasonRPCError || reason == types.ReasonTimeout:
		g.recordFailure()
	default:
		g.recordSuccess()
	}

	g.logger.Debug("quote-failed",
		zap.Strings("path", types.ToStrings(path)),
		zap.String("reason", reason),
		zap.Error(err))

	var qe *types.QuoteError
	if !errors.As(err, &qe) {
		err = types.NewQuoteError(path, reason, err)
	}

	return nil, err
}

func (g *Guarded) recordSuccess() {
	if g.breaker != nil {
		g.breaker.RecordSuccess()
	}
}

func (g *Guarded) recordFailure() {
	if g.breaker != nil {
		g.breaker.RecordFailure()
	}
}

func (g *Guarded) release(permit circuitbreaker.Permit) {
	if g.breaker != nil {
		g.breaker.Release(permit)
	}
}

// classify maps a router error to a QuoteError reason.
func classify(ctx context.Context, err error) string {
	switch {
	case dex.IsRevert(err):
		return types.ReasonReverted
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return types.ReasonTimeout
	default:
		return types.ReasonRPCError
	}
}

func reasonOf(err error) string {
	var qe *types.QuoteError
	switch {
	case errors.As(err, &qe):
		return qe.Reason
	case errors.Is(err, context.DeadlineExceeded):
		return types.ReasonTimeout
	case errors.Is(err, types.ErrQuoteUnavailable):
		return types.ReasonUnavailable
	default:
		return types.ReasonRPCError
	}
}
