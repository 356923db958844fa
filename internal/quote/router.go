package quote

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mselser95/triarb-tracker/pkg/types"
)

// AmountsOuter is the router capability the provider needs. *dex.Router implements it.
type AmountsOuter interface {
	GetAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error)
}

// RouterProvider quotes paths with the router's getAmountsOut.
type RouterProvider struct {
	router AmountsOuter
}

// NewRouterProvider creates a provider backed by the given router.
func NewRouterProvider(router AmountsOuter) *RouterProvider {
	return &RouterProvider{router: router}
}

// Quote implements Provider. Every failure is reported as a *types.QuoteError.
func (p *RouterProvider) Quote(ctx context.Context, amountIn *big.Int, path []types.Token) ([]*big.Int, error) {
	addrs, err := toAddresses(path)
	if err != nil {
		return nil, types.NewQuoteError(path, types.ReasonBadPath, err)
	}

	amounts, err := p.router.GetAmountsOut(ctx, amountIn, addrs)
	if err != nil {
		return nil, types.NewQuoteError(path, classify(ctx, err), err)
	}

	if len(amounts) != len(path) {
		return nil, types.NewQuoteError(path, types.ReasonBadLength,
			fmt.Errorf("got %d amounts for %d tokens", len(amounts), len(path)))
	}

	return amounts, nil
}

func toAddresses(path []types.Token) ([]common.Address, error) {
	if len(path) < 2 {
		return nil, fmt.Errorf("path needs at least 2 tokens, got %d", len(path))
	}

	addrs := make([]common.Address, len(path))
	for i, token := range path {
		if !common.IsHexAddress(string(token)) {
			return nil, fmt.Errorf("token %d is not an address: %q", i, token)
		}
		addrs[i] = common.HexToAddress(string(token))
	}

	return addrs, nil
}
