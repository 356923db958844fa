package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/mselser95/triarb-tracker/internal/arbitrage"
	"github.com/mselser95/triarb-tracker/pkg/types"
	"go.uber.org/zap"
)

// Broadcaster pushes a message to every connected client and returns how many got it.
// *websocket.Hub implements it.
type Broadcaster interface {
	Broadcast(msg []byte) int
}

// OpportunityMessage is the JSON form of an opportunity.
type OpportunityMessage struct {
	Type          string    `json:"type"`
	ID            string    `json:"id"`
	Cycle         uint64    `json:"cycle"`
	Path          []string  `json:"path"`
	PathLabel     string    `json:"path_label"`
	AmountIn      string    `json:"amount_in"`
	AmountOut     string    `json:"amount_out"`
	Profit        string    `json:"profit"`
	ProfitBPS     int64     `json:"profit_bps"`
	ProfitValue   string    `json:"profit_value"`
	MinProfit     string    `json:"min_profit"`
	ValuationRate string    `json:"valuation_rate"`
	DetectedAt    time.Time `json:"detected_at"`
}

// NewOpportunityMessage converts an opportunity to its wire form.
func NewOpportunityMessage(opp *arbitrage.Opportunity) OpportunityMessage {
	return OpportunityMessage{
		Type:          "opportunity",
		ID:            opp.ID,
		Cycle:         opp.Cycle,
		Path:          types.ToStrings(opp.Path.Tokens()),
		PathLabel:     opp.PathLabel,
		AmountIn:      opp.AmountIn.String(),
		AmountOut:     opp.AmountOut.String(),
		Profit:        opp.Profit.String(),
		ProfitBPS:     opp.ProfitBPS(),
		ProfitValue:   opp.ProfitValue.String(),
		MinProfit:     opp.MinProfit.String(),
		ValuationRate: opp.ValuationRate.String(),
		DetectedAt:    opp.DetectedAt,
	}
}

// BroadcastStorage implements Storage by publishing opportunities as JSON.
type BroadcastStorage struct {
	broadcaster Broadcaster
	logger      *zap.Logger
}

// NewBroadcastStorage creates a new broadcast storage.
func NewBroadcastStorage(broadcaster Broadcaster, logger *zap.Logger) *BroadcastStorage {
	return &BroadcastStorage{
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// StoreOpportunity encodes and broadcasts an opportunity.
func (b *BroadcastStorage) StoreOpportunity(ctx context.Context, opp *arbitrage.Opportunity) error {
	payload, err := json.Marshal(NewOpportunityMessage(opp))
	if err != nil {
		return fmt.Errorf("marshal opportunity: %w", err)
	}

	delivered := b.broadcaster.Broadcast(payload)
	b.logger.Debug("opportunity-broadcast",
		zap.String("opportunity-id", opp.ID),
		zap.Int("clients", delivered))

	return nil
}

// Close is a no-op; the broadcaster is owned by the caller.
func (b *BroadcastStorage) Close() error {
	return nil
}
