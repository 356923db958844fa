package cmd

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mselser95/triarb-tracker/internal/app"
	"github.com/mselser95/triarb-tracker/pkg/types"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var quoteCmd = &cobra.Command{
	Use:   "quote <token> <token> [token...]",
	Short: "Quote a single swap path through the router",
	Long: `Calls getAmountsOut on the router for the given path and prints the
amount after every hop. Pass the start token again at the end to quote a cycle.

Example:
  triarb-tracker quote 0xC02a... 0xA0b8... 0x6B17... 0xC02a...`,
	Args: cobra.MinimumNArgs(2),
	RunE: runQuote,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(quoteCmd)
	quoteCmd.Flags().StringP("amount", "a", "", "Input amount in base units (default REFERENCE_INPUT_AMOUNT)")
}

func runQuote(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	path, err := parsePath(args)
	if err != nil {
		return err
	}

	amountIn := new(big.Int).Set(cfg.ReferenceAmount)
	amountStr, _ := cmd.Flags().GetString("amount")
	if amountStr != "" {
		var ok bool
		amountIn, ok = new(big.Int).SetString(amountStr, 10)
		if !ok || amountIn.Sign() <= 0 {
			return fmt.Errorf("invalid amount: %q", amountStr)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	chain, err := app.ConnectChain(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer chain.Close()

	amounts, err := chain.Provider.Quote(ctx, amountIn, path)
	if err != nil {
		return fmt.Errorf("quote path: %w", err)
	}

	for i, token := range path {
		fmt.Printf("%d. %-10s %s\n", i, chain.Label(ctx, token), amounts[i].String())
	}

	if path[0] == path[len(path)-1] {
		profit := new(big.Int).Sub(amounts[len(amounts)-1], amountIn)
		fmt.Printf("\nProfit: %s base units\n", profit.String())
	}

	return nil
}

// parsePath validates and checksums the token arguments.
func parsePath(args []string) ([]types.Token, error) {
	path := make([]types.Token, len(args))
	for i, arg := range args {
		if !common.IsHexAddress(arg) {
			return nil, fmt.Errorf("argument %d is not a token address: %q", i+1, arg)
		}
		path[i] = types.Token(common.HexToAddress(arg).Hex())
	}
	return path, nil
}
