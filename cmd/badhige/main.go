package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"badhige/internal/config"
	"badhige/internal/gateway"
	apphttp "badhige/internal/http"
	"badhige/internal/ledger"
	applog "badhige/internal/log"
	"badhige/internal/storage"
)

func main() {
	// A missing .env is fine; everything has defaults.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		applog.New(applog.DefaultConfig()).Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)

	cache, err := storage.NewSQLiteCache(cfg.SQLiteDBPath)
	if err != nil {
		// The cache only softens gateway outages; run without it.
		logger.Warn("Snapshot cache unavailable, continuing without it", "error", err, "path", cfg.SQLiteDBPath)
		cache = nil
	} else {
		defer cache.Close()
	}

	gw := gateway.New(cfg.GatewayURL, cfg.GatewayTimeout)
	store := ledger.New(gw, cacheOrNil(cache), ledger.Options{
		InsertSettle: cfg.InsertSettle,
		DeleteSettle: cfg.DeleteSettle,
	})

	// Initial load. A failure is not fatal: the store may have served
	// cached snapshots, and /api/refresh can retry.
	loadCtx, loadCancel := context.WithTimeout(context.Background(), cfg.GatewayTimeout)
	if err := store.Load(loadCtx); err != nil {
		logger.Warn("Initial load failed", "error", err)
	}
	loadCancel()

	srv := apphttp.NewServer(":"+cfg.Port, store, logger.WithComponent(applog.ComponentHTTP))
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting badhige server", "port", cfg.Port, "gateway", cfg.GatewayURL)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

// cacheOrNil avoids handing the store a typed nil interface.
func cacheOrNil(cache *storage.SQLiteCache) ledger.SnapshotCache {
	if cache == nil {
		return nil
	}
	return cache
}
