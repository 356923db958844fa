package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/mselser95/triarb-tracker/internal/app"
	"github.com/mselser95/triarb-tracker/internal/arbitrage"
	"github.com/mselser95/triarb-tracker/internal/scanner"
	"github.com/mselser95/triarb-tracker/internal/storage"
	"github.com/mselser95/triarb-tracker/pkg/types"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a single scan cycle and exit",
	Long: `Runs one scan cycle over every triangle of TOKEN_LIST and prints the
opportunities that reach MIN_PROFIT_USD.

Use --verbose to print all six quoted paths of each triangle instead,
including unavailable and unprofitable ones.`,
	RunE: runScan,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolP("verbose", "v", false, "Show every path attempt of every triangle")
	scanCmd.Flags().Bool("json", false, "Print the cycle summary as JSON")
	scanCmd.Flags().Duration("timeout", 5*time.Minute, "Maximum time for the whole cycle")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	verbose, _ := cmd.Flags().GetBool("verbose")
	asJSON, _ := cmd.Flags().GetBool("json")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	chain, err := app.ConnectChain(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer chain.Close()

	sink := storage.NewConsoleStorage(logger)
	defer func() {
		_ = sink.Close()
	}()

	s, err := scanner.New(&scanner.Config{
		Tokens:            cfg.Tokens,
		MinProfit:         cfg.MinProfit,
		PollInterval:      cfg.PollInterval,
		ReferenceAmount:   cfg.ReferenceAmount,
		ValuationRate:     cfg.ValuationRate,
		ValuationDecimals: cfg.ValuationDecimals,
		QuoteConcurrency:  cfg.QuoteConcurrency,
		Provider:          chain.Provider,
		Storage:           sink,
		Labeler:           chain.Label,
		Logger:            logger,
	})
	if err != nil {
		return fmt.Errorf("create scanner: %w", err)
	}

	if verbose {
		return printAttempts(ctx, os.Stdout, s, chain)
	}

	result := s.ScanOnce(ctx)

	if asJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal cycle result: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("\nCycle %d: %d/%d triangles evaluated, %d candidates, %d opportunities in %s\n",
		result.Cycle, result.Evaluated, result.Triangles, result.Candidates, result.Opportunities,
		result.Duration.Round(time.Millisecond))
	if result.Interrupted {
		fmt.Println("Cycle was interrupted before every triangle was evaluated.")
	}

	return nil
}

// printAttempts quotes every path of every triangle and prints the outcome of each.
func printAttempts(ctx context.Context, out io.Writer, s *scanner.Scanner, chain *app.Chain) error {
	simulator := s.Simulator()
	filter := s.Filter()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "PATH\tOUTCOME\tAMOUNT OUT\tPROFIT\tVALUE\n")
	fmt.Fprintf(w, "----\t-------\t----------\t------\t-----\n")

	reported := 0
	for _, tri := range s.Triangles() {
		if ctx.Err() != nil {
			break
		}

		attempts := simulator.Evaluate(ctx, tri)
		for _, attempt := range attempts {
			writeAttempt(w, attempt, attempt.Path.Format(func(t types.Token) string {
				return chain.Label(ctx, t)
			}), filter)
		}

		best, ok := arbitrage.SelectBest(attempts, simulator.ReferenceAmount())
		if ok && filter.Value(best.Profit).GreaterThanOrEqual(filter.MinProfit()) {
			reported++
		}
		fmt.Fprintf(w, "\t\t\t\t\n")
	}

	err := w.Flush()
	if err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	fmt.Fprintf(out, "\nTriangles: %d, reportable opportunities: %d (threshold %s)\n",
		len(s.Triangles()), reported, filter.MinProfit().String())

	return ctx.Err()
}

func writeAttempt(w io.Writer, attempt arbitrage.Attempt, label string, filter *arbitrage.Filter) {
	switch attempt.Outcome {
	case arbitrage.OutcomeUnavailable:
		reason := attempt.Outcome.String()
		var qe *types.QuoteError
		if errors.As(attempt.Err, &qe) {
			reason += " (" + qe.Reason + ")"
		}
		fmt.Fprintf(w, "%s\t%s\t-\t-\t-\n", label, reason)
	default:
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			label,
			attempt.Outcome.String(),
			attempt.AmountOut.String(),
			attempt.Profit.String(),
			filter.Value(attempt.Profit).StringFixed(4))
	}
}
