package arbitrage

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/mselser95/triarb-tracker/internal/triangle"
	"github.com/mselser95/triarb-tracker/pkg/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// QuoteProvider prices a swap path. It returns one amount per path element.
type QuoteProvider interface {
	Quote(ctx context.Context, amountIn *big.Int, path []types.Token) ([]*big.Int, error)
}

// Outcome classifies a single path simulation.
type Outcome int

const (
	// OutcomeUnavailable means the provider could not price the path.
	OutcomeUnavailable Outcome = iota
	// OutcomeUnprofitable means the cycle returned no more than it started with.
	OutcomeUnprofitable
	// OutcomeProfitable means the cycle returned more than it started with.
	OutcomeProfitable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnavailable:
		return "unavailable"
	case OutcomeUnprofitable:
		return "unprofitable"
	case OutcomeProfitable:
		return "profitable"
	default:
		return "unknown"
	}
}

// Attempt is the result of simulating one directed cycle.
type Attempt struct {
	Path      types.SwapPath
	Outcome   Outcome
	AmountOut *big.Int // nil when unavailable
	Profit    *big.Int // nil when unavailable
	Err       error
}

// Candidate is the most profitable cycle found for a triangle.
type Candidate struct {
	Path      types.SwapPath
	AmountIn  *big.Int
	AmountOut *big.Int
	Profit    *big.Int
}

// Simulator quotes every directed cycle of a triangle and picks the best one.
type Simulator struct {
	provider    QuoteProvider
	amountIn    *big.Int
	concurrency int
	logger      *zap.Logger
}

// SimulatorConfig holds simulator configuration.
type SimulatorConfig struct {
	Provider        QuoteProvider
	ReferenceAmount *big.Int
	Concurrency     int // max in-flight quotes per triangle, <= 0 means 1
	Logger          *zap.Logger
}

// NewSimulator creates a new path simulator.
func NewSimulator(cfg SimulatorConfig) (*Simulator, error) {
	if cfg.Provider == nil {
		return nil, errors.New("provider cannot be nil")
	}
	if cfg.ReferenceAmount == nil || cfg.ReferenceAmount.Sign() <= 0 {
		return nil, errors.New("reference amount must be positive")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	return &Simulator{
		provider:    cfg.Provider,
		amountIn:    new(big.Int).Set(cfg.ReferenceAmount),
		concurrency: concurrency,
		logger:      cfg.Logger,
	}, nil
}

// ReferenceAmount returns a copy of the input amount used for every quote.
func (s *Simulator) ReferenceAmount() *big.Int {
	return new(big.Int).Set(s.amountIn)
}

// Permutations returns the six directed cycles of a triangle in a fixed order:
// (0,1,2) (0,2,1) (1,0,2) (1,2,0) (2,0,1) (2,1,0).
func Permutations(tri triangle.Triangle) []types.SwapPath {
	a, b, c := tri[0], tri[1], tri[2]
	return []types.SwapPath{
		types.NewCycle(a, b, c),
		types.NewCycle(a, c, b),
		types.NewCycle(b, a, c),
		types.NewCycle(b, c, a),
		types.NewCycle(c, a, b),
		types.NewCycle(c, b, a),
	}
}

// Evaluate simulates all six cycles of tri. Attempts are returned in
// permutation order regardless of completion order.
func (s *Simulator) Evaluate(ctx context.Context, tri triangle.Triangle) []Attempt {
	paths := Permutations(tri)
	attempts := make([]Attempt, len(paths))

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			attempts[i] = s.simulate(ctx, path)
			return nil
		})
	}
	_ = g.Wait() // simulate never returns an error

	return attempts
}

// Best returns the most profitable cycle for tri, or false when no cycle is profitable.
func (s *Simulator) Best(ctx context.Context, tri triangle.Triangle) (*Candidate, bool) {
	candidate, ok := SelectBest(s.Evaluate(ctx, tri), s.amountIn)
	if ok {
		CandidatesFoundTotal.Inc()
	}
	return candidate, ok
}

// SelectBest folds attempts in order, keeping the strictly greatest positive profit.
// Ties keep the earlier attempt.
func SelectBest(attempts []Attempt, amountIn *big.Int) (*Candidate, bool) {
	var best *Attempt
	for i := range attempts {
		attempt := &attempts[i]
		if attempt.Outcome != OutcomeProfitable {
			continue
		}
		if best == nil || attempt.Profit.Cmp(best.Profit) > 0 {
			best = attempt
		}
	}

	if best == nil {
		return nil, false
	}

	return &Candidate{
		Path:      best.Path,
		AmountIn:  new(big.Int).Set(amountIn),
		AmountOut: new(big.Int).Set(best.AmountOut),
		Profit:    new(big.Int).Set(best.Profit),
	}, true
}

func (s *Simulator) simulate(ctx context.Context, path types.SwapPath) Attempt {
	tokens := path.Tokens()

	if err := ctx.Err(); err != nil {
		SimulationsTotal.WithLabelValues(OutcomeUnavailable.String()).Inc()
		return Attempt{
			Path:    path,
			Outcome: OutcomeUnavailable,
			Err:     types.NewQuoteError(tokens, types.ReasonCanceled, err),
		}
	}

	start := time.Now()
	amounts, err := s.provider.Quote(ctx, new(big.Int).Set(s.amountIn), tokens)
	SimulationDurationSeconds.Observe(time.Since(start).Seconds())

	if err == nil {
		switch {
		case len(amounts) != len(tokens):
			err = types.NewQuoteError(tokens, types.ReasonBadLength,
				fmt.Errorf("got %d amounts for %d tokens", len(amounts), len(tokens)))
		case amounts[len(amounts)-1] == nil:
			err = types.NewQuoteError(tokens, types.ReasonDecode, errors.New("nil final amount"))
		}
	}

	if err != nil {
		SimulationsTotal.WithLabelValues(OutcomeUnavailable.String()).Inc()
		s.logger.Debug("path-unavailable",
			zap.String("path", path.String()),
			zap.Error(err))
		return Attempt{Path: path, Outcome: OutcomeUnavailable, Err: err}
	}

	out := new(big.Int).Set(amounts[len(amounts)-1])
	profit := new(big.Int).Sub(out, s.amountIn)

	outcome := OutcomeUnprofitable
	if profit.Sign() > 0 {
		outcome = OutcomeProfitable
	}
	SimulationsTotal.WithLabelValues(outcome.String()).Inc()

	return Attempt{Path: path, Outcome: outcome, AmountOut: out, Profit: profit}
}
