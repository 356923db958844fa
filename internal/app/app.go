// Package app wires the scanner, its quote provider, sinks and HTTP surface into one process.
package app

import (
	"context"
	"sync"

	"github.com/mselser95/triarb-tracker/internal/arbitrage"
	"github.com/mselser95/triarb-tracker/internal/scanner"
	"github.com/mselser95/triarb-tracker/pkg/config"
	"github.com/mselser95/triarb-tracker/pkg/healthprobe"
	"github.com/mselser95/triarb-tracker/pkg/httpserver"
	"github.com/mselser95/triarb-tracker/pkg/websocket"
	"go.uber.org/zap"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	hub           *websocket.Hub
	chain         *Chain // nil when the provider is injected
	scanner       *scanner.Scanner
	storage       arbitrage.Storage
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	shutdownOnce  sync.Once
	shutdownErr   error
}

// Options holds application options.
type Options struct {
	Provider    arbitrage.QuoteProvider // replaces the router provider; no RPC connection is made
	Storage     arbitrage.Storage       // replaces the STORAGE_MODE sink
	DisableHTTP bool                    // skip the HTTP server and websocket hub
}

// Scanner returns the underlying scanner.
func (a *App) Scanner() *scanner.Scanner {
	return a.scanner
}

// Stop cancels the application context, which makes Run shut down.
func (a *App) Stop() {
	a.cancel()
}
