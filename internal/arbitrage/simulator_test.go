package arbitrage

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mselser95/triarb-tracker/internal/triangle"
	"github.com/mselser95/triarb-tracker/pkg/types"
	"go.uber.org/zap/zaptest"
)

// pathQuoter answers each path with amountIn * num / den, where the ratio is
// looked up by the "A→B→C→A" key. Unknown paths use the default ratio.
type pathQuoter struct {
	ratios    map[string][2]int64
	fallback  [2]int64
	failPaths map[string]bool
	mu        sync.Mutex
	seen      []string
	inFlight  atomic.Int32
	maxFlight atomic.Int32
	delay     time.Duration
}

func (q *pathQuoter) Quote(ctx context.Context, amountIn *big.Int, path []types.Token) ([]*big.Int, error) {
	n := q.inFlight.Add(1)
	defer q.inFlight.Add(-1)
	for {
		m := q.maxFlight.Load()
		if n <= m || q.maxFlight.CompareAndSwap(m, n) {
			break
		}
	}
	if q.delay > 0 {
		time.Sleep(q.delay)
	}

	key := strings.Join(types.ToStrings(path), "→")
	q.mu.Lock()
	q.seen = append(q.seen, key)
	q.mu.Unlock()

	if q.failPaths[key] {
		return nil, types.NewQuoteError(path, types.ReasonRPCError, nil)
	}

	ratio, ok := q.ratios[key]
	if !ok {
		ratio = q.fallback
	}

	out := make([]*big.Int, len(path))
	for i := range out {
		out[i] = new(big.Int).Set(amountIn)
	}
	last := new(big.Int).Mul(amountIn, big.NewInt(ratio[0]))
	out[len(out)-1] = last.Quo(last, big.NewInt(ratio[1]))

	return out, nil
}

func newTestSimulator(t *testing.T, provider QuoteProvider, concurrency int) *Simulator {
	t.Helper()

	sim, err := NewSimulator(SimulatorConfig{
		Provider:        provider,
		ReferenceAmount: big.NewInt(1_000_000),
		Concurrency:     concurrency,
		Logger:          zaptest.NewLogger(t),
	})
	if err != nil {
		t.Fatalf("NewSimulator failed: %v", err)
	}

	return sim
}

func TestNewSimulator_Validation(t *testing.T) {
	provider := &pathQuoter{fallback: [2]int64{1, 1}}
	logger := zaptest.NewLogger(t)

	tests := []struct {
		name string
		cfg  SimulatorConfig
	}{
		{name: "nil-provider", cfg: SimulatorConfig{ReferenceAmount: big.NewInt(1), Logger: logger}},
		{name: "nil-amount", cfg: SimulatorConfig{Provider: provider, Logger: logger}},
		{name: "zero-amount", cfg: SimulatorConfig{Provider: provider, ReferenceAmount: big.NewInt(0), Logger: logger}},
		{name: "negative-amount", cfg: SimulatorConfig{Provider: provider, ReferenceAmount: big.NewInt(-5), Logger: logger}},
		{name: "nil-logger", cfg: SimulatorConfig{Provider: provider, ReferenceAmount: big.NewInt(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSimulator(tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestPermutations_SixValidClosedPaths(t *testing.T) {
	paths := Permutations(triangle.Triangle{"A", "B", "C"})

	if len(paths) != 6 {
		t.Fatalf("expected 6 paths, got %d", len(paths))
	}

	want := []string{
		"A→B→C→A",
		"A→C→B→A",
		"B→A→C→B",
		"B→C→A→B",
		"C→A→B→C",
		"C→B→A→C",
	}

	for i, p := range paths {
		if err := p.Validate(); err != nil {
			t.Errorf("path %d invalid: %v", i, err)
		}
		if p.Len() != types.CycleLength {
			t.Errorf("path %d: expected length %d, got %d", i, types.CycleLength, p.Len())
		}
		if p.String() != want[i] {
			t.Errorf("path %d: expected %s, got %s", i, want[i], p.String())
		}
	}
}

func TestSimulator_QuotesAllSixPaths(t *testing.T) {
	q := &pathQuoter{fallback: [2]int64{1, 1}}
	sim := newTestSimulator(t, q, 6)

	attempts := sim.Evaluate(context.Background(), triangle.Triangle{"A", "B", "C"})

	if len(attempts) != 6 {
		t.Fatalf("expected 6 attempts, got %d", len(attempts))
	}
	if len(q.seen) != 6 {
		t.Errorf("expected 6 quote calls, got %d", len(q.seen))
	}

	for i, p := range Permutations(triangle.Triangle{"A", "B", "C"}) {
		if !attempts[i].Path.Equal(p) {
			t.Errorf("attempt %d out of order: %s", i, attempts[i].Path)
		}
		if attempts[i].Outcome != OutcomeUnprofitable {
			t.Errorf("attempt %d: expected unprofitable, got %s", i, attempts[i].Outcome)
		}
	}
}

func TestSimulator_Best(t *testing.T) {
	tests := []struct {
		name       string
		quoter     *pathQuoter
		wantOK     bool
		wantPath   string
		wantProfit int64
	}{
		{
			name:   "profit-free-provider",
			quoter: &pathQuoter{fallback: [2]int64{1, 1}},
			wantOK: false,
		},
		{
			name:   "all-paths-lose",
			quoter: &pathQuoter{fallback: [2]int64{99, 100}},
			wantOK: false,
		},
		{
			name: "all-paths-fail",
			quoter: &pathQuoter{
				fallback: [2]int64{2, 1},
				failPaths: map[string]bool{
					"A→B→C→A": true, "A→C→B→A": true, "B→A→C→B": true,
					"B→C→A→B": true, "C→A→B→C": true, "C→B→A→C": true,
				},
			},
			wantOK: false,
		},
		{
			name: "single-profitable-permutation",
			quoter: &pathQuoter{
				fallback: [2]int64{1, 1},
				ratios:   map[string][2]int64{"B→C→A→B": {102, 100}},
			},
			wantOK:     true,
			wantPath:   "B→C→A→B",
			wantProfit: 20_000,
		},
		{
			name: "greater-profit-wins",
			quoter: &pathQuoter{
				fallback: [2]int64{1, 1},
				ratios: map[string][2]int64{
					"A→B→C→A": {101, 100},
					"C→B→A→C": {103, 100},
				},
			},
			wantOK:     true,
			wantPath:   "C→B→A→C",
			wantProfit: 30_000,
		},
		{
			name: "tie-keeps-first-enumerated",
			quoter: &pathQuoter{
				fallback: [2]int64{1, 1},
				ratios: map[string][2]int64{
					"A→C→B→A": {101, 100},
					"C→A→B→C": {101, 100},
				},
			},
			wantOK:     true,
			wantPath:   "A→C→B→A",
			wantProfit: 10_000,
		},
		{
			name: "failures-skipped",
			quoter: &pathQuoter{
				fallback:  [2]int64{1, 1},
				ratios:    map[string][2]int64{"A→B→C→A": {150, 100}, "B→A→C→B": {110, 100}},
				failPaths: map[string]bool{"A→B→C→A": true},
			},
			wantOK:     true,
			wantPath:   "B→A→C→B",
			wantProfit: 100_000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := newTestSimulator(t, tt.quoter, 3)

			c, ok := sim.Best(context.Background(), triangle.Triangle{"A", "B", "C"})
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if !ok {
				if c != nil {
					t.Error("expected nil candidate")
				}
				return
			}

			if c.Path.String() != tt.wantPath {
				t.Errorf("expected path %s, got %s", tt.wantPath, c.Path)
			}
			if c.Profit.Int64() != tt.wantProfit {
				t.Errorf("expected profit %d, got %s", tt.wantProfit, c.Profit)
			}
			if c.AmountIn.Int64() != 1_000_000 {
				t.Errorf("expected amount in 1000000, got %s", c.AmountIn)
			}
			if new(big.Int).Sub(c.AmountOut, c.AmountIn).Cmp(c.Profit) != 0 {
				t.Error("profit must equal amount out minus amount in")
			}
		})
	}
}

func TestSimulator_ConcurrencyMatchesSequential(t *testing.T) {
	ratios := map[string][2]int64{
		"A→B→C→A": {101, 100},
		"B→C→A→B": {101, 100},
		"C→B→A→C": {100, 101},
	}

	for _, concurrency := range []int{1, 2, 6} {
		q := &pathQuoter{fallback: [2]int64{1, 1}, ratios: ratios, delay: time.Millisecond}
		sim := newTestSimulator(t, q, concurrency)

		c, ok := sim.Best(context.Background(), triangle.Triangle{"A", "B", "C"})
		if !ok {
			t.Fatalf("concurrency %d: expected candidate", concurrency)
		}
		if c.Path.String() != "A→B→C→A" {
			t.Errorf("concurrency %d: expected A→B→C→A, got %s", concurrency, c.Path)
		}
		if got := q.maxFlight.Load(); int(got) > concurrency {
			t.Errorf("concurrency %d: observed %d in-flight quotes", concurrency, got)
		}
	}
}

func TestSimulator_BadResultsAreUnavailable(t *testing.T) {
	tests := []struct {
		name   string
		result []*big.Int
	}{
		{name: "short", result: []*big.Int{big.NewInt(1), big.NewInt(2)}},
		{name: "long", result: []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3), big.NewInt(4), big.NewInt(5)}},
		{name: "nil-final", result: []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3), nil}},
		{name: "empty", result: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := quoteFunc(func(context.Context, *big.Int, []types.Token) ([]*big.Int, error) {
				return tt.result, nil
			})
			sim := newTestSimulator(t, provider, 6)

			for i, a := range sim.Evaluate(context.Background(), triangle.Triangle{"A", "B", "C"}) {
				if a.Outcome != OutcomeUnavailable {
					t.Errorf("attempt %d: expected unavailable, got %s", i, a.Outcome)
				}
				if a.Err == nil {
					t.Errorf("attempt %d: expected error", i)
				}
			}
		})
	}
}

func TestSimulator_ProviderCannotMutateReferenceAmount(t *testing.T) {
	provider := quoteFunc(func(_ context.Context, amountIn *big.Int, path []types.Token) ([]*big.Int, error) {
		amountIn.SetInt64(0)
		return make([]*big.Int, len(path)), nil
	})
	sim := newTestSimulator(t, provider, 2)

	sim.Evaluate(context.Background(), triangle.Triangle{"A", "B", "C"})

	if sim.ReferenceAmount().Int64() != 1_000_000 {
		t.Errorf("reference amount mutated: %s", sim.ReferenceAmount())
	}
}

func TestSelectBest_Empty(t *testing.T) {
	if _, ok := SelectBest(nil, big.NewInt(1)); ok {
		t.Error("expected no candidate for empty attempts")
	}
}

func TestOutcome_String(t *testing.T) {
	tests := map[Outcome]string{
		OutcomeUnavailable:  "unavailable",
		OutcomeUnprofitable: "unprofitable",
		OutcomeProfitable:   "profitable",
		Outcome(42):         "unknown",
	}
	for o, want := range tests {
		if o.String() != want {
			t.Errorf("expected %s, got %s", want, o.String())
		}
	}
}

type quoteFunc func(ctx context.Context, amountIn *big.Int, path []types.Token) ([]*big.Int, error)

func (f quoteFunc) Quote(ctx context.Context, amountIn *big.Int, path []types.Token) ([]*big.Int, error) {
	return f(ctx, amountIn, path)
}

func TestSimulator_EvaluateCancelledSkipsQuotes(t *testing.T) {
	q := &pathQuoter{fallback: [2]int64{105, 100}}
	sim := newTestSimulator(t, q, 6)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := sim.Evaluate(ctx, triangle.Triangle{"A", "B", "C"})

	if len(attempts) != 6 {
		t.Fatalf("expected 6 attempts, got %d", len(attempts))
	}
	for i, a := range attempts {
		if a.Outcome != OutcomeUnavailable {
			t.Errorf("attempt %d: expected unavailable, got %s", i, a.Outcome)
		}
		var qe *types.QuoteError
		if !errors.As(a.Err, &qe) || qe.Reason != types.ReasonCanceled {
			t.Errorf("attempt %d: expected %s quote error, got %v", i, types.ReasonCanceled, a.Err)
		}
	}
	if len(q.seen) != 0 {
		t.Errorf("expected no provider calls after cancellation, got %d", len(q.seen))
	}

	if _, ok := sim.Best(ctx, triangle.Triangle{"A", "B", "C"}); ok {
		t.Error("expected no candidate from a cancelled evaluation")
	}
}

func TestSimulator_EvaluateStopsMidTriangle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	provider := quoteFunc(func(_ context.Context, amountIn *big.Int, path []types.Token) ([]*big.Int, error) {
		calls.Add(1)
		cancel()
		out := make([]*big.Int, len(path))
		for i := range out {
			out[i] = new(big.Int).Set(amountIn)
		}
		return out, nil
	})

	sim := newTestSimulator(t, provider, 1)
	attempts := sim.Evaluate(ctx, triangle.Triangle{"A", "B", "C"})

	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 provider call before the stop signal took effect, got %d", got)
	}
	if attempts[0].Outcome != OutcomeUnprofitable {
		t.Errorf("expected first attempt quoted, got %s", attempts[0].Outcome)
	}
	for i := 1; i < len(attempts); i++ {
		if attempts[i].Outcome != OutcomeUnavailable {
			t.Errorf("attempt %d: expected unavailable after cancel, got %s", i, attempts[i].Outcome)
		}
	}
}
