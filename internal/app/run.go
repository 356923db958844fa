package app

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mselser95/triarb-tracker/internal/triangle"
	"go.uber.org/zap"
)

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.String("log-level", a.cfg.LogLevel),
		zap.String("storage-mode", a.cfg.StorageMode),
		zap.Bool("http-enabled", a.httpServer != nil))

	a.logger.Info("tracking-tokens",
		zap.Int("tokens", len(a.cfg.Tokens)),
		zap.Int("triangles", triangle.Count(len(a.cfg.Tokens))),
		zap.String("min-profit", a.cfg.MinProfit.String()),
		zap.Duration("poll-interval", a.cfg.PollInterval))

	a.startComponents()

	if a.httpServer != nil {
		a.logger.Info("application-ready",
			zap.String("http-addr", ":"+a.cfg.HTTPPort))
	}

	// Wait for shutdown signal
	return a.waitForShutdown()
}

func (a *App) startComponents() {
	if a.httpServer != nil {
		a.wg.Add(1)
		go a.runHTTPServer()

		// Give HTTP server a moment to start
		time.Sleep(100 * time.Millisecond)
	}

	a.wg.Add(1)
	go a.runScanner()
}

func (a *App) runHTTPServer() {
	defer a.wg.Done()
	err := a.httpServer.Start()
	if err != nil {
		a.logger.Error("http-server-error", zap.Error(err))
	}
}

func (a *App) runScanner() {
	defer a.wg.Done()

	if a.chain != nil {
		a.chain.Registry.Warm(a.ctx, a.cfg.Tokens)
	}

	err := a.scanner.Run(a.ctx)
	if err != nil && !errors.Is(err, a.ctx.Err()) {
		a.logger.Error("scanner-error", zap.Error(err))
	}
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}
