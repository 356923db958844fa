package arbitrage

import (
	"math/big"
	"time"

	"github.com/mselser95/triarb-tracker/pkg/types"
	"github.com/shopspring/decimal"
)

// CreateTestOpportunity creates a test opportunity for the cycle a→b→c→a
// with 1e18 in and 1.01e18 out, valued at a rate of 2000.
func CreateTestOpportunity(a, b, c types.Token) *Opportunity {
	amountIn, _ := new(big.Int).SetString("1000000000000000000", 10)
	amountOut, _ := new(big.Int).SetString("1010000000000000000", 10)
	path := types.NewCycle(a, b, c)

	return &Opportunity{
		ID:            "test-opp-" + string(a),
		Cycle:         1,
		Path:          path,
		PathLabel:     path.String(),
		AmountIn:      amountIn,
		AmountOut:     amountOut,
		Profit:        new(big.Int).Sub(amountOut, amountIn),
		ProfitValue:   decimal.NewFromInt(20),
		MinProfit:     decimal.NewFromInt(10),
		ValuationRate: decimal.NewFromInt(2000),
		DetectedAt:    time.Now(),
	}
}
