// Package tokens resolves ERC20 symbols and decimals for display.
package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mselser95/triarb-tracker/pkg/cache"
	"github.com/mselser95/triarb-tracker/pkg/types"
	"go.uber.org/zap"
)

// Fetcher reads ERC20 metadata. *dex.ERC20 implements it.
type Fetcher interface {
	Symbol(ctx context.Context, token common.Address) (string, error)
	Decimals(ctx context.Context, token common.Address) (uint8, error)
}

// Metadata holds cached metadata for a token.
type Metadata struct {
	Token     types.Token `json:"token"`
	Symbol    string      `json:"symbol"`
	Decimals  uint8       `json:"decimals"`
	FetchedAt time.Time   `json:"fetched_at"`
}

// Registry wraps a Fetcher with caching. Metadata never changes on-chain,
// so entries only expire to bound memory.
type Registry struct {
	fetcher Fetcher
	cache   cache.Cache
	ttl     time.Duration
	timeout time.Duration
	logger  *zap.Logger
}

// Config holds registry configuration.
type Config struct {
	Fetcher Fetcher
	Cache   cache.Cache   // optional
	TTL     time.Duration // default 24h
	Timeout time.Duration // per-lookup timeout, default 5s
	Logger  *zap.Logger
}

// NewRegistry creates a new token registry.
func NewRegistry(cfg *Config) (*Registry, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Fetcher == nil {
		return nil, errors.New("fetcher cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Registry{
		fetcher: cfg.Fetcher,
		cache:   cfg.Cache,
		ttl:     ttl,
		timeout: timeout,
		logger:  cfg.Logger,
	}, nil
}

// Lookup returns metadata for token, from cache when possible.
func (r *Registry) Lookup(ctx context.Context, token types.Token) (*Metadata, error) {
	if !common.IsHexAddress(string(token)) {
		return nil, fmt.Errorf("token %q is not an address", token)
	}

	cacheKey := fmt.Sprintf("token:%s", token)
	if r.cache != nil {
		if cached, ok := r.cache.Get(cacheKey); ok {
			if meta, ok := cached.(*Metadata); ok {
				return meta, nil
			}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	addr := common.HexToAddress(string(token))

	symbol, err := r.fetcher.Symbol(ctx, addr)
	if err != nil {
		LookupErrorsTotal.Inc()
		return nil, fmt.Errorf("fetch symbol for %s: %w", token, err)
	}

	decimals, err := r.fetcher.Decimals(ctx, addr)
	if err != nil {
		LookupErrorsTotal.Inc()
		return nil, fmt.Errorf("fetch decimals for %s: %w", token, err)
	}

	meta := &Metadata{
		Token:     token,
		Symbol:    symbol,
		Decimals:  decimals,
		FetchedAt: time.Now(),
	}

	if r.cache != nil {
		r.cache.Set(cacheKey, meta, r.ttl)
	}

	return meta, nil
}

// Label returns the token symbol, or the 8-character prefix when unknown.
func (r *Registry) Label(ctx context.Context, token types.Token) string {
	meta, err := r.Lookup(ctx, token)
	if err != nil || meta.Symbol == "" {
		if err != nil {
			r.logger.Debug("token-label-fallback",
				zap.String("token", token.String()),
				zap.Error(err))
		}
		return token.Short()
	}
	return meta.Symbol
}

// Warm resolves every token up front and logs the ones that fail.
func (r *Registry) Warm(ctx context.Context, tokens []types.Token) []*Metadata {
	out := make([]*Metadata, 0, len(tokens))
	for _, token := range tokens {
		meta, err := r.Lookup(ctx, token)
		if err != nil {
			r.logger.Warn("token-metadata-unavailable",
				zap.String("token", token.String()),
				zap.Error(err))
			continue
		}
		out = append(out, meta)
	}
	return out
}
