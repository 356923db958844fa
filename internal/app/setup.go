package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/mselser95/triarb-tracker/internal/arbitrage"
	"github.com/mselser95/triarb-tracker/internal/circuitbreaker"
	"github.com/mselser95/triarb-tracker/internal/dex"
	"github.com/mselser95/triarb-tracker/internal/quote"
	"github.com/mselser95/triarb-tracker/internal/scanner"
	"github.com/mselser95/triarb-tracker/internal/storage"
	"github.com/mselser95/triarb-tracker/internal/tokens"
	"github.com/mselser95/triarb-tracker/pkg/cache"
	"github.com/mselser95/triarb-tracker/pkg/config"
	"github.com/mselser95/triarb-tracker/pkg/healthprobe"
	"github.com/mselser95/triarb-tracker/pkg/httpserver"
	"github.com/mselser95/triarb-tracker/pkg/types"
	"github.com/mselser95/triarb-tracker/pkg/websocket"
	"go.uber.org/zap"
)

// Chain bundles the RPC connection and everything built on it.
type Chain struct {
	Client   *ethclient.Client
	Router   *dex.Router
	Breaker  *circuitbreaker.QuoteBreaker
	Provider *quote.Guarded
	Registry *tokens.Registry
	cache    *cache.RistrettoCache
}

// ConnectChain dials the RPC endpoint and builds the guarded router provider
// and the token metadata registry.
func ConnectChain(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Chain, error) {
	err := cfg.ValidateChain()
	if err != nil {
		return nil, fmt.Errorf("validate chain config: %w", err)
	}

	client, err := dex.Connect(ctx, dex.ConnectConfig{
		RPCURL:      cfg.EthRPCURL,
		MaxAttempts: cfg.RPCConnectAttempts,
		Backoff: dex.BackoffConfig{
			InitialDelay:      cfg.RPCReconnectInitialDelay,
			MaxDelay:          cfg.RPCReconnectMaxDelay,
			BackoffMultiplier: cfg.RPCReconnectBackoffMult,
			JitterPercent:     0.2,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}

	chain := &Chain{Client: client}

	chain.Router, err = dex.NewRouter(client, common.HexToAddress(cfg.RouterAddress))
	if err != nil {
		chain.Close()
		return nil, fmt.Errorf("create router: %w", err)
	}

	chain.Breaker, err = setupBreaker(cfg, logger)
	if err != nil {
		chain.Close()
		return nil, err
	}

	chain.Provider, err = quote.NewGuarded(quote.GuardedConfig{
		Next:    quote.NewRouterProvider(chain.Router),
		Breaker: chain.Breaker,
		Timeout: cfg.QuoteTimeout,
		Logger:  logger,
	})
	if err != nil {
		chain.Close()
		return nil, fmt.Errorf("create quote provider: %w", err)
	}

	chain.Registry, chain.cache, err = setupRegistry(cfg, logger, client)
	if err != nil {
		chain.Close()
		return nil, err
	}

	return chain, nil
}

// Label renders a token with its ERC20 symbol.
func (c *Chain) Label(ctx context.Context, token types.Token) string {
	return c.Registry.Label(ctx, token)
}

// Close releases the metadata cache and the RPC connection.
func (c *Chain) Close() {
	if c.cache != nil {
		c.cache.Close()
	}
	if c.Client != nil {
		c.Client.Close()
	}
}

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger, opts *Options) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if opts == nil {
		opts = &Options{}
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthprobe.New(cfg.StaleAfter()),
		ctx:           ctx,
		cancel:        cancel,
	}

	var (
		provider arbitrage.QuoteProvider
		labeler  func(context.Context, types.Token) string
	)

	if opts.Provider != nil {
		provider, err = setupInjectedProvider(cfg, logger, opts.Provider)
		if err != nil {
			cancel()
			return nil, err
		}
	} else {
		a.chain, err = ConnectChain(ctx, cfg, logger)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("setup chain: %w", err)
		}
		provider = a.chain.Provider
		labeler = a.chain.Label
	}

	if !opts.DisableHTTP {
		a.hub = websocket.NewHub(websocket.Config{Logger: logger})
	}

	a.storage, err = setupStorage(ctx, cfg, logger, opts.Storage, a.hub)
	if err != nil {
		a.release()
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	a.scanner, err = scanner.New(&scanner.Config{
		Tokens:            cfg.Tokens,
		MinProfit:         cfg.MinProfit,
		PollInterval:      cfg.PollInterval,
		ReferenceAmount:   cfg.ReferenceAmount,
		ValuationRate:     cfg.ValuationRate,
		ValuationDecimals: cfg.ValuationDecimals,
		QuoteConcurrency:  cfg.QuoteConcurrency,
		Provider:          provider,
		Storage:           a.storage,
		Labeler:           labeler,
		OnCycle:           a.onCycle,
		Logger:            logger,
	})
	if err != nil {
		_ = a.storage.Close()
		a.release()
		return nil, fmt.Errorf("setup scanner: %w", err)
	}

	if !opts.DisableHTTP {
		a.httpServer = setupHTTPServer(cfg, logger, a.healthChecker, a.scanner, a.chain, a.hub)
	}

	return a, nil
}

// release frees what New acquired before a later step failed.
func (a *App) release() {
	a.cancel()
	if a.hub != nil {
		a.hub.Close()
	}
	if a.chain != nil {
		a.chain.Close()
	}
}

func (a *App) onCycle(result scanner.CycleResult) {
	if result.Interrupted {
		return
	}
	a.healthChecker.MarkCycle(result.StartedAt.Add(result.Duration))
}

func setupBreaker(cfg *config.Config, logger *zap.Logger) (*circuitbreaker.QuoteBreaker, error) {
	breaker, err := circuitbreaker.New(&circuitbreaker.Config{
		FailureThreshold: cfg.BreakerFailureThreshold,
		Cooldown:         cfg.BreakerCooldown,
		Logger:           logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create circuit breaker: %w", err)
	}

	return breaker, nil
}

// setupInjectedProvider applies the same timeout and breaker policy to an injected provider.
func setupInjectedProvider(cfg *config.Config, logger *zap.Logger, next arbitrage.QuoteProvider) (*quote.Guarded, error) {
	breaker, err := setupBreaker(cfg, logger)
	if err != nil {
		return nil, err
	}

	guarded, err := quote.NewGuarded(quote.GuardedConfig{
		Next:    next,
		Breaker: breaker,
		Timeout: cfg.QuoteTimeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create quote provider: %w", err)
	}

	return guarded, nil
}

func setupRegistry(cfg *config.Config, logger *zap.Logger, client *ethclient.Client) (*tokens.Registry, *cache.RistrettoCache, error) {
	erc20, err := dex.NewERC20(client)
	if err != nil {
		return nil, nil, fmt.Errorf("create erc20 binding: %w", err)
	}

	metadataCache, err := cache.NewRistrettoCache(cache.DefaultRistrettoConfig("token-metadata", logger))
	if err != nil {
		return nil, nil, fmt.Errorf("setup cache: %w", err)
	}

	registry, err := tokens.NewRegistry(&tokens.Config{
		Fetcher: erc20,
		Cache:   metadataCache,
		TTL:     cfg.TokenMetadataTTL,
		Logger:  logger,
	})
	if err != nil {
		metadataCache.Close()
		return nil, nil, fmt.Errorf("create token registry: %w", err)
	}

	return registry, metadataCache, nil
}

func setupStorage(
	ctx context.Context,
	cfg *config.Config,
	logger *zap.Logger,
	override arbitrage.Storage,
	hub *websocket.Hub,
) (arbitrage.Storage, error) {
	primary := override
	if primary == nil {
		var err error
		primary, err = setupPrimaryStorage(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
	}

	sinks := []arbitrage.Storage{primary}
	if hub != nil {
		sinks = append(sinks, storage.NewBroadcastStorage(hub, logger))
	}

	return storage.NewMultiStorage(sinks...), nil
}

func setupPrimaryStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (arbitrage.Storage, error) {
	if cfg.StorageMode == "postgres" {
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		pgStorage, err := storage.NewPostgresStorage(connectCtx, &storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres storage: %w", err)
		}
		return pgStorage, nil
	}

	return storage.NewConsoleStorage(logger), nil
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
	scan *scanner.Scanner,
	chain *Chain,
	hub *websocket.Hub,
) *httpserver.Server {
	serverCfg := &httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Scanner:       scan,
		Opportunities: hub,
	}
	if chain != nil {
		serverCfg.Labeler = chain
	}

	return httpserver.New(serverCfg)
}
