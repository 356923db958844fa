// Package storage provides sinks for reported arbitrage opportunities.
package storage

import (
	"context"

	"github.com/mselser95/triarb-tracker/internal/arbitrage"
)

// Storage is the interface for storing arbitrage opportunities.
type Storage interface {
	// StoreOpportunity stores an arbitrage opportunity.
	StoreOpportunity(ctx context.Context, opp *arbitrage.Opportunity) error

	// Close closes the storage connection.
	Close() error
}

var (
	_ arbitrage.Storage = (*ConsoleStorage)(nil)
	_ arbitrage.Storage = (*PostgresStorage)(nil)
	_ arbitrage.Storage = (*BroadcastStorage)(nil)
	_ arbitrage.Storage = (*MultiStorage)(nil)
)
