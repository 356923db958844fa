package arbitrage

import "context"

// Storage is the interface for reporting opportunities.
type Storage interface {
	StoreOpportunity(ctx context.Context, opp *Opportunity) error
	Close() error
}
