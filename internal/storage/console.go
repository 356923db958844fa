package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mselser95/triarb-tracker/internal/arbitrage"
	"go.uber.org/zap"
)

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// ConsoleStorage implements Storage by pretty-printing to console.
type ConsoleStorage struct {
	out    io.Writer
	logger *zap.Logger
}

// NewConsoleStorage creates a new console storage writing to stdout.
func NewConsoleStorage(logger *zap.Logger) *ConsoleStorage {
	return NewConsoleStorageWriter(os.Stdout, logger)
}

// NewConsoleStorageWriter creates a console storage writing to out.
func NewConsoleStorageWriter(out io.Writer, logger *zap.Logger) *ConsoleStorage {
	logger.Info("console-storage-initialized")
	return &ConsoleStorage{
		out:    out,
		logger: logger,
	}
}

// StoreOpportunity pretty-prints an arbitrage opportunity.
func (c *ConsoleStorage) StoreOpportunity(ctx context.Context, opp *arbitrage.Opportunity) error {
	id := opp.ID
	if len(id) > 8 {
		id = id[:8]
	}

	var b strings.Builder
	fmt.Fprintln(&b, "\n"+rule)
	fmt.Fprintf(&b, "🎯 TRIANGULAR ARBITRAGE OPPORTUNITY\n")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "ID:       %s\n", id)
	fmt.Fprintf(&b, "Cycle:    %d\n", opp.Cycle)
	fmt.Fprintf(&b, "Path:     %s\n", opp.PathLabel)
	fmt.Fprintf(&b, "Time:     %s\n", opp.DetectedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "📊 SIMULATION\n")
	fmt.Fprintf(&b, "  Amount In:   %s\n", opp.AmountIn)
	fmt.Fprintf(&b, "  Amount Out:  %s\n", opp.AmountOut)
	fmt.Fprintf(&b, "  Profit:      %s (%d bps)\n", opp.Profit, opp.ProfitBPS())
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "💰 VALUE\n")
	fmt.Fprintf(&b, "  Profit:      $%s (rate %s)\n", opp.ProfitValue.StringFixed(2), opp.ValuationRate)
	fmt.Fprintf(&b, "  Threshold:   $%s\n", opp.MinProfit.StringFixed(2))
	fmt.Fprintln(&b, rule)

	_, err := io.WriteString(c.out, b.String())
	if err != nil {
		return fmt.Errorf("write opportunity: %w", err)
	}

	return nil
}

// Close is a no-op for console storage.
func (c *ConsoleStorage) Close() error {
	c.logger.Info("closing-console-storage")
	return nil
}
