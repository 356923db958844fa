package dex

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const routerABI = `[{"name":"getAmountsOut","outputs":[{"type":"uint256[]","name":"amounts"}],"inputs":[{"type":"uint256","name":"amountIn"},{"type":"address[]","name":"path"}],"constant":true,"stateMutability":"view","type":"function"}]`

//nolint:gochecknoglobals // parsed once, read-only
var parsedRouterABI = mustParseABI(routerABI)

// Router is a read-only client for a UniswapV2Router02-compatible contract.
type Router struct {
	address common.Address
	caller  Caller
	abi     abi.ABI
}

// NewRouter creates a router client bound to the given contract address.
func NewRouter(caller Caller, address common.Address) (*Router, error) {
	if caller == nil {
		return nil, errors.New("caller cannot be nil")
	}
	if address == (common.Address{}) {
		return nil, errors.New("router address cannot be zero")
	}

	return &Router{
		address: address,
		caller:  caller,
		abi:     parsedRouterABI,
	}, nil
}

// Address returns the router contract address.
func (r *Router) Address() common.Address {
	return r.address
}

// GetAmountsOut calls getAmountsOut(amountIn, path) and returns one amount per path element.
func (r *Router) GetAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) (amounts []*big.Int, err error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, errors.New("amount in must be positive")
	}
	if len(path) < 2 {
		return nil, fmt.Errorf("path needs at least 2 tokens, got %d", len(path))
	}

	out, err := call(ctx, r.caller, r.address, r.abi, "getAmountsOut", amountIn, path)
	if err != nil {
		return nil, err
	}

	if len(out) != 1 {
		return nil, fmt.Errorf("unexpected getAmountsOut outputs: %d", len(out))
	}

	amounts, ok := out[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected getAmountsOut output type %T", out[0])
	}

	return amounts, nil
}
