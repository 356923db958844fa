package dex

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const erc20ABI = `[
{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"type":"function"},
{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"}
]`

//nolint:gochecknoglobals // parsed once, read-only
var parsedERC20ABI = mustParseABI(erc20ABI)

// ERC20 reads token metadata from ERC20 contracts.
type ERC20 struct {
	caller Caller
	abi    abi.ABI
}

// NewERC20 creates an ERC20 metadata reader.
func NewERC20(caller Caller) (*ERC20, error) {
	if caller == nil {
		return nil, errors.New("caller cannot be nil")
	}

	return &ERC20{
		caller: caller,
		abi:    parsedERC20ABI,
	}, nil
}

// Symbol returns the token symbol.
func (e *ERC20) Symbol(ctx context.Context, token common.Address) (string, error) {
	out, err := call(ctx, e.caller, token, e.abi, "symbol")
	if err != nil {
		return "", err
	}

	symbol, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("unexpected symbol output type %T", out[0])
	}

	return symbol, nil
}

// Decimals returns the token decimals.
func (e *ERC20) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	out, err := call(ctx, e.caller, token, e.abi, "decimals")
	if err != nil {
		return 0, err
	}

	decimals, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected decimals output type %T", out[0])
	}

	return decimals, nil
}
