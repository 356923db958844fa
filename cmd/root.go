package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/mselser95/triarb-tracker/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "triarb-tracker",
	Short: "Triangular arbitrage opportunity tracker",
	Long: `Triangular arbitrage opportunity tracker for UniswapV2-compatible routers.

Every poll interval the tracker enumerates each 3-token subset of TOKEN_LIST,
quotes all six closed swap paths (A→B→C→A and its permutations) through the
router's getAmountsOut, and reports the most profitable path of each triangle
when its profit, valued at VALUATION_RATE, reaches MIN_PROFIT_USD.

Nothing is ever traded: opportunities are only reported.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().String("env-file", ".env", "Environment file to load before reading configuration")
}

// loadConfig loads the env file (a missing file is ignored), then the
// configuration and a logger at the configured level.
func loadConfig(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	envFile, _ := cmd.Flags().GetString("env-file")

	err := godotenv.Load(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("load env file: %w", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLoggerWithLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}

	return cfg, logger, nil
}
