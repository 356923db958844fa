// Package scanner runs the periodic triangle scan.
package scanner

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mselser95/triarb-tracker/internal/arbitrage"
	"github.com/mselser95/triarb-tracker/internal/triangle"
	"github.com/mselser95/triarb-tracker/pkg/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// State is the scanner state.
type State int32

const (
	// StateScanning means a cycle is in progress.
	StateScanning State = iota
	// StateIdle means the scanner is waiting for the next cycle.
	StateIdle
)

func (s State) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// CycleResult summarizes one scan over every triangle.
type CycleResult struct {
	Cycle         uint64        `json:"cycle"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration"`
	Triangles     int           `json:"triangles"`
	Evaluated     int           `json:"evaluated"`
	Candidates    int           `json:"candidates"`
	Opportunities int           `json:"opportunities"`
	Interrupted   bool          `json:"interrupted"`
}

// Status is a snapshot of the scanner for HTTP endpoints.
type Status struct {
	State     string       `json:"state"`
	Tokens    int          `json:"tokens"`
	Triangles int          `json:"triangles"`
	LastCycle *CycleResult `json:"last_cycle,omitempty"`
}

// Scanner enumerates triangles and reports profitable cycles every PollInterval.
type Scanner struct {
	tokens       []types.Token
	triangles    []triangle.Triangle
	pollInterval time.Duration
	simulator    *arbitrage.Simulator
	filter       *arbitrage.Filter
	storage      arbitrage.Storage
	labeler      func(ctx context.Context, token types.Token) string
	onCycle      func(CycleResult)
	logger       *zap.Logger

	state atomic.Int32
	cycle atomic.Uint64

	mu   sync.RWMutex
	last *CycleResult
}

// Config holds scanner configuration.
type Config struct {
	Tokens            []types.Token
	MinProfit         decimal.Decimal
	PollInterval      time.Duration
	ReferenceAmount   *big.Int
	ValuationRate     decimal.Decimal
	ValuationDecimals int32
	QuoteConcurrency  int
	Provider          arbitrage.QuoteProvider
	Storage           arbitrage.Storage
	Labeler           func(ctx context.Context, token types.Token) string // optional
	OnCycle           func(CycleResult)                                   // optional
	Logger            *zap.Logger
}

// Validate checks the configuration. Errors are *types.ConfigError.
func (c *Config) Validate() error {
	if len(c.Tokens) < 3 {
		return &types.ConfigError{Field: "tokens", Message: fmt.Sprintf("need at least 3 tokens, got %d", len(c.Tokens))}
	}

	seen := make(map[types.Token]struct{}, len(c.Tokens))
	for _, token := range c.Tokens {
		if token == "" {
			return &types.ConfigError{Field: "tokens", Message: "empty token"}
		}
		if _, dup := seen[token]; dup {
			return &types.ConfigError{Field: "tokens", Message: fmt.Sprintf("duplicate token %s", token)}
		}
		seen[token] = struct{}{}
	}

	if !c.MinProfit.IsPositive() {
		return &types.ConfigError{Field: "min-profit", Message: "must be positive"}
	}
	if c.PollInterval <= 0 {
		return &types.ConfigError{Field: "poll-interval", Message: "must be positive"}
	}
	if c.ReferenceAmount == nil || c.ReferenceAmount.Sign() <= 0 {
		return &types.ConfigError{Field: "reference-amount", Message: "must be positive"}
	}
	if !c.ValuationRate.IsPositive() {
		return &types.ConfigError{Field: "valuation-rate", Message: "must be positive"}
	}
	if c.ValuationDecimals < 0 {
		return &types.ConfigError{Field: "valuation-decimals", Message: "cannot be negative"}
	}
	if c.Provider == nil {
		return &types.ConfigError{Field: "provider", Message: "cannot be nil"}
	}
	if c.Storage == nil {
		return &types.ConfigError{Field: "storage", Message: "cannot be nil"}
	}
	if c.Logger == nil {
		return &types.ConfigError{Field: "logger", Message: "cannot be nil"}
	}

	return nil
}

// New creates a new scanner.
func New(cfg *Config) (*Scanner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	simulator, err := arbitrage.NewSimulator(arbitrage.SimulatorConfig{
		Provider:        cfg.Provider,
		ReferenceAmount: cfg.ReferenceAmount,
		Concurrency:     cfg.QuoteConcurrency,
		Logger:          cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create simulator: %w", err)
	}

	filter, err := arbitrage.NewFilter(arbitrage.FilterConfig{
		MinProfit:         cfg.MinProfit,
		ValuationRate:     cfg.ValuationRate,
		ValuationDecimals: cfg.ValuationDecimals,
		Logger:            cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create filter: %w", err)
	}

	tokens := make([]types.Token, len(cfg.Tokens))
	copy(tokens, cfg.Tokens)

	s := &Scanner{
		tokens:       tokens,
		triangles:    triangle.Enumerate(tokens),
		pollInterval: cfg.PollInterval,
		simulator:    simulator,
		filter:       filter,
		storage:      cfg.Storage,
		labeler:      cfg.Labeler,
		onCycle:      cfg.OnCycle,
		logger:       cfg.Logger,
	}
	s.setState(StateScanning)

	return s, nil
}

// Run scans, waits PollInterval, and repeats until ctx is cancelled.
func (s *Scanner) Run(ctx context.Context) error {
	s.logger.Info("scanner-starting",
		zap.Int("tokens", len(s.tokens)),
		zap.Int("triangles", len(s.triangles)),
		zap.Duration("poll-interval", s.pollInterval),
		zap.String("min-profit", s.filter.MinProfit().String()),
		zap.String("reference-amount", s.simulator.ReferenceAmount().String()))

	for {
		s.ScanOnce(ctx)

		if ctx.Err() != nil {
			s.logger.Info("scanner-stopping")
			return ctx.Err()
		}

		s.setState(StateIdle)
		timer := time.NewTimer(s.pollInterval)

		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("scanner-stopping")
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// ScanOnce runs a single cycle over every triangle.
func (s *Scanner) ScanOnce(ctx context.Context) CycleResult {
	s.setState(StateScanning)

	result := CycleResult{
		Cycle:     s.cycle.Add(1),
		StartedAt: time.Now(),
		Triangles: len(s.triangles),
	}

	for _, tri := range s.triangles {
		if ctx.Err() != nil {
			result.Interrupted = true
			break
		}

		candidate, ok := s.simulator.Best(ctx, tri)
		result.Evaluated++
		TrianglesEvaluatedTotal.Inc()
		if !ok {
			continue
		}
		result.Candidates++

		opp, ok := s.filter.Evaluate(candidate)
		if !ok {
			continue
		}

		opp.Cycle = result.Cycle
		opp.PathLabel = s.label(ctx, opp.Path)
		result.Opportunities++

		s.logger.Info("arbitrage-opportunity-detected",
			zap.String("opportunity-id", opp.ID),
			zap.String("path", opp.PathLabel),
			zap.String("profit", opp.Profit.String()),
			zap.String("profit-value", opp.ProfitValue.String()),
			zap.Int64("profit-bps", opp.ProfitBPS()))

		err := s.storage.StoreOpportunity(ctx, opp)
		if err != nil {
			StorageErrorsTotal.Inc()
			s.logger.Error("failed-to-store-opportunity",
				zap.String("opportunity-id", opp.ID),
				zap.Error(err))
		}
	}

	result.Duration = time.Since(result.StartedAt)
	s.record(result)

	return result
}

// State returns the current scanner state.
func (s *Scanner) State() State {
	return State(s.state.Load())
}

// Triangles returns the enumerated triangles.
func (s *Scanner) Triangles() []triangle.Triangle {
	out := make([]triangle.Triangle, len(s.triangles))
	copy(out, s.triangles)
	return out
}

// LastCycle returns the most recent completed cycle, if any.
func (s *Scanner) LastCycle() (CycleResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.last == nil {
		return CycleResult{}, false
	}
	return *s.last, true
}

// Status returns a snapshot for HTTP endpoints.
func (s *Scanner) Status() Status {
	status := Status{
		State:     s.State().String(),
		Tokens:    len(s.tokens),
		Triangles: len(s.triangles),
	}
	if last, ok := s.LastCycle(); ok {
		status.LastCycle = &last
	}
	return status
}

// Simulator exposes the path simulator for single-triangle diagnostics.
func (s *Scanner) Simulator() *arbitrage.Simulator {
	return s.simulator
}

// Filter exposes the opportunity filter.
func (s *Scanner) Filter() *arbitrage.Filter {
	return s.filter
}

func (s *Scanner) label(ctx context.Context, path types.SwapPath) string {
	if s.labeler == nil {
		return path.Format(types.Token.Short)
	}
	return path.Format(func(t types.Token) string { return s.labeler(ctx, t) })
}

func (s *Scanner) record(result CycleResult) {
	CyclesTotal.Inc()
	CycleDurationSeconds.Observe(result.Duration.Seconds())
	OpportunitiesPerCycle.Observe(float64(result.Opportunities))
	if result.Interrupted {
		CyclesInterruptedTotal.Inc()
	}

	s.mu.Lock()
	s.last = &result
	s.mu.Unlock()

	s.logger.Info("scan-cycle-complete",
		zap.Uint64("cycle", result.Cycle),
		zap.Int("triangles", result.Triangles),
		zap.Int("evaluated", result.Evaluated),
		zap.Int("candidates", result.Candidates),
		zap.Int("opportunities", result.Opportunities),
		zap.Bool("interrupted", result.Interrupted),
		zap.Duration("duration", result.Duration))

	if s.onCycle != nil {
		s.onCycle(result)
	}
}

func (s *Scanner) setState(state State) {
	s.state.Store(int32(state))
	ScannerState.Set(float64(state))
}

// Run builds a scanner from cfg and runs it until ctx is cancelled.
func Run(ctx context.Context, cfg *Config) error {
	s, err := New(cfg)
	if err != nil {
		return err
	}
	return s.Run(ctx)
}
