package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mselser95/triarb-tracker/internal/app"
	"github.com/mselser95/triarb-tracker/internal/triangle"
	"github.com/mselser95/triarb-tracker/pkg/types"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var trianglesCmd = &cobra.Command{
	Use:   "triangles",
	Short: "List the token triangles a scan cycle evaluates",
	Long: `Lists every 3-token subset of TOKEN_LIST in the order a scan cycle visits them.

Use --symbols to resolve ERC20 symbols over ETH_RPC_URL.`,
	RunE: runTriangles,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(trianglesCmd)
	trianglesCmd.Flags().BoolP("symbols", "s", false, "Resolve token symbols over RPC")
}

func runTriangles(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	symbols, _ := cmd.Flags().GetBool("symbols")

	label := types.Token.String
	if symbols {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		chain, err := app.ConnectChain(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer chain.Close()

		chain.Registry.Warm(ctx, cfg.Tokens)
		label = func(t types.Token) string {
			return chain.Label(ctx, t)
		}
	}

	return printTriangles(os.Stdout, triangle.Enumerate(cfg.Tokens), label)
}

func printTriangles(out io.Writer, triangles []triangle.Triangle, label func(types.Token) string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "#\tTOKENS\n")
	fmt.Fprintf(w, "-\t------\n")

	for i, tri := range triangles {
		labels := make([]string, len(tri))
		for j, t := range tri {
			labels[j] = label(t)
		}
		fmt.Fprintf(w, "%d\t%s\n", i+1, strings.Join(labels, ", "))
	}

	err := w.Flush()
	if err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	fmt.Fprintf(out, "\nTotal: %d triangles, %d paths per cycle\n", len(triangles), len(triangles)*6)

	return nil
}
