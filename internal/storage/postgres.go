package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/mselser95/triarb-tracker/internal/arbitrage"
	"github.com/mselser95/triarb-tracker/pkg/types"
	"go.uber.org/zap"
)

const createTableQuery = `
	CREATE TABLE IF NOT EXISTS triarb_opportunities (
		id             UUID PRIMARY KEY,
		cycle          BIGINT NOT NULL,
		path           TEXT[] NOT NULL,
		path_label     TEXT NOT NULL,
		amount_in      NUMERIC(78, 0) NOT NULL,
		amount_out     NUMERIC(78, 0) NOT NULL,
		profit         NUMERIC(78, 0) NOT NULL,
		profit_value   NUMERIC NOT NULL,
		profit_bps     BIGINT NOT NULL,
		min_profit     NUMERIC NOT NULL,
		valuation_rate NUMERIC NOT NULL,
		detected_at    TIMESTAMPTZ NOT NULL
	)
`

const insertOpportunityQuery = `
	INSERT INTO triarb_opportunities (
		id, cycle, path, path_label, amount_in, amount_out, profit,
		profit_value, profit_bps, min_profit, valuation_rate, detected_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
	)
`

// PostgresStorage implements Storage using PostgreSQL.
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresStorage creates a new PostgreSQL storage and ensures the table exists.
func NewPostgresStorage(ctx context.Context, cfg *PostgresConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	p := NewPostgresStorageFromDB(db, cfg.Logger)

	err = p.CreateSchema(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	cfg.Logger.Info("postgres-storage-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return p, nil
}

// NewPostgresStorageFromDB wraps an existing connection.
func NewPostgresStorageFromDB(db *sql.DB, logger *zap.Logger) *PostgresStorage {
	return &PostgresStorage{
		db:     db,
		logger: logger,
	}
}

// CreateSchema creates the opportunities table if missing.
func (p *PostgresStorage) CreateSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, createTableQuery)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// StoreOpportunity stores an arbitrage opportunity in PostgreSQL.
// Amounts are passed as decimal strings so NUMERIC keeps full uint256 precision.
func (p *PostgresStorage) StoreOpportunity(ctx context.Context, opp *arbitrage.Opportunity) error {
	_, err := p.db.ExecContext(ctx, insertOpportunityQuery,
		opp.ID,
		int64(opp.Cycle),
		pq.Array(types.ToStrings(opp.Path.Tokens())),
		opp.PathLabel,
		opp.AmountIn.String(),
		opp.AmountOut.String(),
		opp.Profit.String(),
		opp.ProfitValue.String(),
		opp.ProfitBPS(),
		opp.MinProfit.String(),
		opp.ValuationRate.String(),
		opp.DetectedAt,
	)
	if err != nil {
		return fmt.Errorf("insert opportunity: %w", err)
	}

	p.logger.Debug("opportunity-stored",
		zap.String("opportunity-id", opp.ID),
		zap.String("path", opp.PathLabel))

	return nil
}

// Close closes the database connection.
func (p *PostgresStorage) Close() error {
	p.logger.Info("closing-postgres-storage")
	return p.db.Close()
}
