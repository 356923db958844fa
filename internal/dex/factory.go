package dex

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const factoryABI = `[
{"constant":true,"inputs":[],"name":"allPairsLength","outputs":[{"type":"uint256","name":""}],"type":"function"},
{"constant":true,"inputs":[{"name":"","type":"uint256"}],"name":"allPairs","outputs":[{"name":"","type":"address"}],"type":"function"},
{"constant":true,"inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"}],"name":"getPair","outputs":[{"name":"pair","type":"address"}],"type":"function"}
]`

//nolint:gochecknoglobals // parsed once, read-only
var parsedFactoryABI = mustParseABI(factoryABI)

// Factory is a read-only client for a UniswapV2Factory-compatible contract.
type Factory struct {
	address common.Address
	caller  Caller
	abi     abi.ABI
}

// NewFactory creates a factory client bound to the given contract address.
func NewFactory(caller Caller, address common.Address) (*Factory, error) {
	if caller == nil {
		return nil, errors.New("caller cannot be nil")
	}
	if address == (common.Address{}) {
		return nil, errors.New("factory address cannot be zero")
	}

	return &Factory{
		address: address,
		caller:  caller,
		abi:     parsedFactoryABI,
	}, nil
}

// GetPair returns the pair address for two tokens, or the zero address when no pair exists.
func (f *Factory) GetPair(ctx context.Context, tokenA, tokenB common.Address) (common.Address, error) {
	out, err := call(ctx, f.caller, f.address, f.abi, "getPair", tokenA, tokenB)
	if err != nil {
		return common.Address{}, err
	}

	pair, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected getPair output type %T", out[0])
	}

	return pair, nil
}

// AllPairsLength returns the number of pairs created by the factory.
func (f *Factory) AllPairsLength(ctx context.Context) (*big.Int, error) {
	out, err := call(ctx, f.caller, f.address, f.abi, "allPairsLength")
	if err != nil {
		return nil, err
	}

	n, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected allPairsLength output type %T", out[0])
	}

	return n, nil
}
