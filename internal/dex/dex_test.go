package dex

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap/zaptest"
)

var (
	routerAddr  = common.HexToAddress("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D")
	factoryAddr = common.HexToAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f")
	weth        = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	usdc        = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	dai         = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
)

// fakeCaller decodes calldata against a parsed ABI and answers with a handler.
type fakeCaller struct {
	abi     abi.ABI
	handler func(to common.Address, method string, args []interface{}) ([]interface{}, error)
	calls   int
}

func (f *fakeCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	f.calls++

	method, err := f.abi.MethodById(msg.Data[:4])
	if err != nil {
		return nil, fmt.Errorf("unknown method: %w", err)
	}

	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, fmt.Errorf("unpack inputs: %w", err)
	}

	out, err := f.handler(*msg.To, method.Name, args)
	if err != nil {
		return nil, err
	}

	return method.Outputs.Pack(out...)
}

type revertError struct{}

func (revertError) Error() string          { return "execution reverted" }
func (revertError) ErrorData() interface{} { return "0x" }

func TestRouter_GetAmountsOut(t *testing.T) {
	caller := &fakeCaller{
		abi: parsedRouterABI,
		handler: func(to common.Address, method string, args []interface{}) ([]interface{}, error) {
			if to != routerAddr {
				return nil, fmt.Errorf("unexpected contract %s", to.Hex())
			}
			if method != "getAmountsOut" {
				return nil, fmt.Errorf("unexpected method %s", method)
			}

			amountIn := args[0].(*big.Int)
			path := args[1].([]common.Address)

			amounts := make([]*big.Int, len(path))
			amounts[0] = new(big.Int).Set(amountIn)
			for i := 1; i < len(path); i++ {
				// +1% per hop
				amounts[i] = new(big.Int).Div(new(big.Int).Mul(amounts[i-1], big.NewInt(101)), big.NewInt(100))
			}
			return []interface{}{amounts}, nil
		},
	}

	router, err := NewRouter(caller, routerAddr)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	amounts, err := router.GetAmountsOut(context.Background(), big.NewInt(1_000_000), []common.Address{weth, usdc, dai, weth})
	if err != nil {
		t.Fatalf("GetAmountsOut: %v", err)
	}

	if len(amounts) != 4 {
		t.Fatalf("expected 4 amounts, got %d", len(amounts))
	}

	if amounts[3].Cmp(big.NewInt(1_030_301)) != 0 {
		t.Errorf("expected final amount 1030301, got %s", amounts[3])
	}
}

func TestRouter_GetAmountsOut_Errors(t *testing.T) {
	tests := []struct {
		name       string
		amountIn   *big.Int
		path       []common.Address
		handlerErr error
		wantRevert bool
	}{
		{name: "nil-amount", amountIn: nil, path: []common.Address{weth, usdc}},
		{name: "zero-amount", amountIn: big.NewInt(0), path: []common.Address{weth, usdc}},
		{name: "short-path", amountIn: big.NewInt(1), path: []common.Address{weth}},
		{name: "rpc-error", amountIn: big.NewInt(1), path: []common.Address{weth, usdc}, handlerErr: errors.New("connection refused")},
		{name: "reverted", amountIn: big.NewInt(1), path: []common.Address{weth, usdc}, handlerErr: revertError{}, wantRevert: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := &fakeCaller{
				abi: parsedRouterABI,
				handler: func(common.Address, string, []interface{}) ([]interface{}, error) {
					return nil, tt.handlerErr
				},
			}
			router, err := NewRouter(caller, routerAddr)
			if err != nil {
				t.Fatalf("NewRouter: %v", err)
			}

			_, err = router.GetAmountsOut(context.Background(), tt.amountIn, tt.path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			if IsRevert(err) != tt.wantRevert {
				t.Errorf("IsRevert(%v) = %v, want %v", err, IsRevert(err), tt.wantRevert)
			}
		})
	}
}

func TestNewRouter_Validation(t *testing.T) {
	if _, err := NewRouter(nil, routerAddr); err == nil {
		t.Error("expected error for nil caller")
	}
	if _, err := NewRouter(&fakeCaller{}, common.Address{}); err == nil {
		t.Error("expected error for zero address")
	}
}

func TestFactory_GetPairAndLength(t *testing.T) {
	pairAddr := common.HexToAddress("0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc")

	caller := &fakeCaller{
		abi: parsedFactoryABI,
		handler: func(to common.Address, method string, args []interface{}) ([]interface{}, error) {
			switch method {
			case "getPair":
				a := args[0].(common.Address)
				b := args[1].(common.Address)
				if (a == weth && b == usdc) || (a == usdc && b == weth) {
					return []interface{}{pairAddr}, nil
				}
				return []interface{}{common.Address{}}, nil
			case "allPairsLength":
				return []interface{}{big.NewInt(42)}, nil
			}
			return nil, fmt.Errorf("unexpected method %s", method)
		},
	}

	factory, err := NewFactory(caller, factoryAddr)
	if err != nil {
		t.Fatalf("NewFactory: %v", err)
	}

	ctx := context.Background()

	got, err := factory.GetPair(ctx, weth, usdc)
	if err != nil {
		t.Fatalf("GetPair: %v", err)
	}
	if got != pairAddr {
		t.Errorf("expected pair %s, got %s", pairAddr.Hex(), got.Hex())
	}

	missing, err := factory.GetPair(ctx, weth, dai)
	if err != nil {
		t.Fatalf("GetPair: %v", err)
	}
	if missing != (common.Address{}) {
		t.Errorf("expected zero address for missing pair, got %s", missing.Hex())
	}

	n, err := factory.AllPairsLength(ctx)
	if err != nil {
		t.Fatalf("AllPairsLength: %v", err)
	}
	if n.Int64() != 42 {
		t.Errorf("expected 42 pairs, got %s", n)
	}
}

func TestERC20_SymbolAndDecimals(t *testing.T) {
	caller := &fakeCaller{
		abi: parsedERC20ABI,
		handler: func(to common.Address, method string, args []interface{}) ([]interface{}, error) {
			switch method {
			case "symbol":
				if to == usdc {
					return []interface{}{"USDC"}, nil
				}
				return []interface{}{"WETH"}, nil
			case "decimals":
				if to == usdc {
					return []interface{}{uint8(6)}, nil
				}
				return []interface{}{uint8(18)}, nil
			}
			return nil, fmt.Errorf("unexpected method %s", method)
		},
	}

	erc20, err := NewERC20(caller)
	if err != nil {
		t.Fatalf("NewERC20: %v", err)
	}

	ctx := context.Background()

	symbol, err := erc20.Symbol(ctx, usdc)
	if err != nil {
		t.Fatalf("Symbol: %v", err)
	}
	if symbol != "USDC" {
		t.Errorf("expected USDC, got %s", symbol)
	}

	decimals, err := erc20.Decimals(ctx, usdc)
	if err != nil {
		t.Fatalf("Decimals: %v", err)
	}
	if decimals != 6 {
		t.Errorf("expected 6 decimals, got %d", decimals)
	}
}

func TestIsRevert(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "data-error", err: fmt.Errorf("call: %w", revertError{}), want: true},
		{name: "message-only", err: errors.New("execution reverted: UniswapV2Library: INSUFFICIENT_LIQUIDITY"), want: true},
		{name: "transport", err: errors.New("dial tcp: connection refused"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRevert(tt.err); got != tt.want {
				t.Errorf("IsRevert() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBackoff_RetryStopsAtMaxAttempts(t *testing.T) {
	logger := zaptest.NewLogger(t)
	b := NewBackoff(BackoffConfig{
		InitialDelay:      time.Millisecond,
		MaxDelay:          2 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}, logger)

	attempts := 0
	err := b.Retry(context.Background(), 3, func(context.Context) error {
		attempts++
		return errors.New("boom")
	})

	if err == nil {
		t.Fatal("expected error after max attempts")
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestBackoff_RetrySucceeds(t *testing.T) {
	logger := zaptest.NewLogger(t)
	b := NewBackoff(BackoffConfig{InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}, logger)

	attempts := 0
	err := b.Retry(context.Background(), 0, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestBackoff_RetryHonoursContext(t *testing.T) {
	logger := zaptest.NewLogger(t)
	b := NewBackoff(BackoffConfig{InitialDelay: time.Hour, MaxDelay: time.Hour}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Retry(ctx, 0, func(context.Context) error {
		return errors.New("down")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBackoff_IncrementCapped(t *testing.T) {
	logger := zaptest.NewLogger(t)
	b := NewBackoff(BackoffConfig{
		InitialDelay:      time.Second,
		MaxDelay:          3 * time.Second,
		BackoffMultiplier: 2.0,
	}, logger)

	b.incrementBackoff()
	b.incrementBackoff()
	b.incrementBackoff()

	if b.currentBackoff != 3*time.Second {
		t.Errorf("expected backoff capped at 3s, got %v", b.currentBackoff)
	}

	b.Reset()
	if b.currentBackoff != time.Second {
		t.Errorf("expected reset to 1s, got %v", b.currentBackoff)
	}
}

func TestConnect_Validation(t *testing.T) {
	logger := zaptest.NewLogger(t)

	if _, err := Connect(context.Background(), ConnectConfig{Logger: logger}); err == nil {
		t.Error("expected error for empty rpc url")
	}
	if _, err := Connect(context.Background(), ConnectConfig{RPCURL: "http://localhost:8545"}); err == nil {
		t.Error("expected error for nil logger")
	}
}

func TestMustParseABI_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for invalid ABI")
		}
	}()
	_ = mustParseABI("not json")
}
