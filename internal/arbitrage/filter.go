package arbitrage

import (
	"errors"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Filter converts candidate profits into valuation units and applies the
// minimum profit threshold.
type Filter struct {
	minProfit         decimal.Decimal
	valuationRate     decimal.Decimal
	valuationDecimals int32
	now               func() time.Time
	logger            *zap.Logger
}

// FilterConfig holds filter configuration.
type FilterConfig struct {
	MinProfit         decimal.Decimal
	ValuationRate     decimal.Decimal // valuation units per whole start token
	ValuationDecimals int32           // base-unit scale of the start token
	Logger            *zap.Logger
	Now               func() time.Time // optional, for tests
}

// NewFilter creates a new opportunity filter.
func NewFilter(cfg FilterConfig) (*Filter, error) {
	if !cfg.MinProfit.IsPositive() {
		return nil, errors.New("min profit must be positive")
	}
	if !cfg.ValuationRate.IsPositive() {
		return nil, errors.New("valuation rate must be positive")
	}
	if cfg.ValuationDecimals < 0 {
		return nil, errors.New("valuation decimals cannot be negative")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Filter{
		minProfit:         cfg.MinProfit,
		valuationRate:     cfg.ValuationRate,
		valuationDecimals: cfg.ValuationDecimals,
		now:               now,
		logger:            cfg.Logger,
	}, nil
}

// MinProfit returns the reporting threshold.
func (f *Filter) MinProfit() decimal.Decimal {
	return f.minProfit
}

// Value converts a base-unit profit into valuation units.
func (f *Filter) Value(profit *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(profit, -f.valuationDecimals).Mul(f.valuationRate)
}

// Evaluate returns an Opportunity when the candidate's value reaches the threshold.
func (f *Filter) Evaluate(c *Candidate) (*Opportunity, bool) {
	if c == nil || c.Profit == nil {
		return nil, false
	}

	value := f.Value(c.Profit)
	ProfitValue.Observe(value.InexactFloat64())

	if value.LessThan(f.minProfit) {
		OpportunitiesSuppressedTotal.Inc()
		f.logger.Debug("opportunity-below-threshold",
			zap.String("path", c.Path.String()),
			zap.String("profit-value", value.String()),
			zap.String("min-profit", f.minProfit.String()))
		return nil, false
	}

	OpportunitiesReportedTotal.Inc()

	return &Opportunity{
		ID:            uuid.New().String(),
		Path:          c.Path,
		PathLabel:     c.Path.String(),
		AmountIn:      new(big.Int).Set(c.AmountIn),
		AmountOut:     new(big.Int).Set(c.AmountOut),
		Profit:        new(big.Int).Set(c.Profit),
		ProfitValue:   value,
		MinProfit:     f.minProfit,
		ValuationRate: f.valuationRate,
		DetectedAt:    f.now(),
	}, true
}
