package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mselser95/triarb-tracker/internal/app"
	"github.com/mselser95/triarb-tracker/internal/dex"
	"github.com/mselser95/triarb-tracker/pkg/types"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var pairsCmd = &cobra.Command{
	Use:   "pairs",
	Short: "Check which token pairs have a pool on the factory",
	Long: `Calls getPair on FACTORY_ADDRESS for every pair of TOKEN_LIST tokens.
A triangle can only be quoted when all three of its edges have a pool.`,
	RunE: runPairs,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(pairsCmd)
}

// tokenPair is one edge between two tokens.
type tokenPair struct {
	A, B types.Token
}

func runPairs(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	if cfg.FactoryAddress == "" {
		return fmt.Errorf("FACTORY_ADDRESS must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	chain, err := app.ConnectChain(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer chain.Close()

	factory, err := dex.NewFactory(chain.Client, common.HexToAddress(cfg.FactoryAddress))
	if err != nil {
		return fmt.Errorf("create factory: %w", err)
	}

	total, err := factory.AllPairsLength(ctx)
	if err != nil {
		return fmt.Errorf("get pair count: %w", err)
	}
	fmt.Printf("Factory %s has %s pairs\n\n", cfg.FactoryAddress, total.String())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TOKEN A\tTOKEN B\tPAIR\n")
	fmt.Fprintf(w, "-------\t-------\t----\n")

	missing := 0
	for _, p := range allPairs(cfg.Tokens) {
		pair, err := factory.GetPair(ctx, common.HexToAddress(p.A.String()), common.HexToAddress(p.B.String()))

		status := pair.Hex()
		switch {
		case err != nil:
			status = "error: " + err.Error()
			missing++
		case pair == (common.Address{}):
			status = "none"
			missing++
		}

		fmt.Fprintf(w, "%s\t%s\t%s\n", chain.Label(ctx, p.A), chain.Label(ctx, p.B), status)
	}

	err = w.Flush()
	if err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	if missing > 0 {
		fmt.Printf("\n%d pairs have no pool; triangles using them will be skipped.\n", missing)
	}

	return nil
}

// allPairs returns every unordered pair of tokens in input order.
func allPairs(tokens []types.Token) []tokenPair {
	var pairs []tokenPair
	for i := 0; i < len(tokens); i++ {
		for j := i + 1; j < len(tokens); j++ {
			pairs = append(pairs, tokenPair{A: tokens[i], B: tokens[j]})
		}
	}
	return pairs
}
