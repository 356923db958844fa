// Package quote provides swap-path quote providers backed by an on-chain router.
package quote

import (
	"context"
	"math/big"

	"github.com/mselser95/triarb-tracker/pkg/types"
)

// Provider prices a swap path: it returns one output amount per path element,
// or an error matching types.ErrQuoteUnavailable.
type Provider interface {
	Quote(ctx context.Context, amountIn *big.Int, path []types.Token) ([]*big.Int, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, amountIn *big.Int, path []types.Token) ([]*big.Int, error)

// Quote calls f.
func (f ProviderFunc) Quote(ctx context.Context, amountIn *big.Int, path []types.Token) ([]*big.Int, error) {
	return f(ctx, amountIn, path)
}
