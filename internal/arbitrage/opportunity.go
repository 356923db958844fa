package arbitrage

import (
	"fmt"
	"math/big"
	"time"

	"github.com/mselser95/triarb-tracker/pkg/types"
	"github.com/shopspring/decimal"
)

// Opportunity is a profitable cycle that cleared the reporting threshold.
type Opportunity struct {
	ID            string
	Cycle         uint64 // poll cycle that found it
	Path          types.SwapPath
	PathLabel     string // human-readable path, symbols when known
	AmountIn      *big.Int
	AmountOut     *big.Int
	Profit        *big.Int        // base units of the start token
	ProfitValue   decimal.Decimal // valuation units
	MinProfit     decimal.Decimal
	ValuationRate decimal.Decimal
	DetectedAt    time.Time
}

// ProfitBPS returns profit relative to the input in basis points.
func (o *Opportunity) ProfitBPS() int64 {
	if o.AmountIn == nil || o.AmountIn.Sign() == 0 || o.Profit == nil {
		return 0
	}

	bps := new(big.Int).Mul(o.Profit, big.NewInt(10000))
	return bps.Quo(bps, o.AmountIn).Int64()
}

// String returns a human-readable representation of the opportunity.
func (o *Opportunity) String() string {
	id := o.ID
	if len(id) > 8 {
		id = id[:8]
	}

	return fmt.Sprintf(
		"Opportunity[%s] Path=%s In=%s Out=%s Profit=%s (%dbps) Value=%s",
		id,
		o.PathLabel,
		o.AmountIn,
		o.AmountOut,
		o.Profit,
		o.ProfitBPS(),
		o.ProfitValue.StringFixed(2),
	)
}
