// Package dex talks to UniswapV2-compatible contracts over JSON-RPC.
package dex

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// Caller executes read-only contract calls. *ethclient.Client implements it.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ConnectConfig holds dial settings for the JSON-RPC endpoint.
type ConnectConfig struct {
	RPCURL      string
	MaxAttempts int // 0 = retry until ctx is done
	Backoff     BackoffConfig
	Logger      *zap.Logger
}

// Connect dials the RPC endpoint, retrying with exponential backoff and
// verifying the connection with an eth_chainId round trip.
func Connect(ctx context.Context, cfg ConnectConfig) (*ethclient.Client, error) {
	if cfg.RPCURL == "" {
		return nil, errors.New("rpc url cannot be empty")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	backoff := NewBackoff(cfg.Backoff, cfg.Logger)

	var client *ethclient.Client
	dial := func(ctx context.Context) error {
		dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		c, err := ethclient.DialContext(dialCtx, cfg.RPCURL)
		if err != nil {
			return fmt.Errorf("dial RPC: %w", err)
		}

		chainID, err := c.ChainID(dialCtx)
		if err != nil {
			c.Close()
			return fmt.Errorf("get chain id: %w", err)
		}

		cfg.Logger.Info("rpc-connected",
			zap.String("chain-id", chainID.String()))
		client = c
		return nil
	}

	err := backoff.Retry(ctx, cfg.MaxAttempts, dial)
	if err != nil {
		return nil, err
	}

	return client, nil
}

// IsRevert reports whether err is an EVM execution revert rather than a transport failure.
// A revert means the node is healthy but the call itself has no answer (e.g. missing pair).
func IsRevert(err error) bool {
	if err == nil {
		return false
	}

	var dataErr interface{ ErrorData() interface{} }
	if errors.As(err, &dataErr) {
		return true
	}

	return strings.Contains(err.Error(), "execution reverted")
}

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("parse ABI: %v", err))
	}
	return parsed
}

func call(ctx context.Context, caller Caller, contract common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	msg := ethereum.CallMsg{
		To:   &contract,
		Data: data,
	}

	start := time.Now()
	result, err := caller.CallContract(ctx, msg, nil)
	ContractCallDurationSeconds.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		if IsRevert(err) {
			ContractCallsTotal.WithLabelValues(method, "reverted").Inc()
		} else {
			ContractCallsTotal.WithLabelValues(method, "error").Inc()
		}
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	out, err := parsed.Unpack(method, result)
	if err != nil {
		ContractCallsTotal.WithLabelValues(method, "decode_error").Inc()
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}

	ContractCallsTotal.WithLabelValues(method, "ok").Inc()
	return out, nil
}
