// Command catalog-server runs the product catalog HTTP service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/oranba/product-catalog/internal/cache"
	"github.com/oranba/product-catalog/internal/catalog"
	"github.com/oranba/product-catalog/internal/category"
	"github.com/oranba/product-catalog/internal/config"
	"github.com/oranba/product-catalog/internal/httpapi"
	"github.com/oranba/product-catalog/internal/inventory"
	"github.com/oranba/product-catalog/internal/order"
	"github.com/oranba/product-catalog/internal/product"
	"github.com/oranba/product-catalog/internal/store"
	"github.com/oranba/product-catalog/internal/telemetry"
	"github.com/oranba/product-catalog/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.New(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewJSONLogger(logger.ParseLevel(cfg.Logging.Level)).
		With(logger.Fields{"service": cfg.Name})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsEndpoint := cfg.Telemetry.Endpoint
	if !cfg.Telemetry.Enabled {
		metricsEndpoint = ""
	}
	shutdownMetrics, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: cfg.Name,
		Endpoint:    metricsEndpoint,
		Interval:    cfg.Telemetry.Interval,
		Insecure:    cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return err
	}
	defer shutdownMetrics(context.Background())
	metrics := telemetry.NewInstruments(cfg.Name)

	stores, closeStores, err := openStores(cfg, log)
	if err != nil {
		return err
	}
	defer closeStores()

	queryCache, closeCache, err := openCache(cfg, log)
	if err != nil {
		return err
	}
	defer closeCache()

	ledger := inventory.NewLedger(log, metrics)
	server := httpapi.NewServer(httpapi.Options{
		Products:          product.NewService(stores, ledger, queryCache, cfg.Cache.TTL, log, metrics),
		Categories:        category.NewService(stores, queryCache, cfg.Cache.TTL, log, metrics),
		Orders:            order.NewService(stores, ledger, log, metrics),
		Stores:            stores,
		Cache:             queryCache,
		Logger:            log,
		LowStockThreshold: cfg.Inventory.LowStockThreshold,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      server.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", logger.Fields{"addr": httpServer.Addr})
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown incomplete: %w", err)
	}
	return nil
}

func openStores(cfg *config.Config, log logger.Logger) (catalog.Stores, func(), error) {
	switch cfg.Database.Driver {
	case "memory":
		log.Warn("Using the in-memory store; data is not persisted", nil)
		return store.NewMemory(nil), func() {}, nil
	case "postgres":
		g, err := store.Open(store.Options{
			DSN:             cfg.Database.DSN,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			Logger:          log,
		})
		if err != nil {
			return nil, nil, err
		}
		return g, func() { g.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func openCache(cfg *config.Config, log logger.Logger) (cache.Store, func(), error) {
	switch cfg.Cache.Backend {
	case "none":
		return nil, func() {}, nil
	case "memory":
		return cache.NewMemory(log), func() {}, nil
	case "redis":
		r, err := cache.NewRedis(cache.RedisOptions{
			URL:       cfg.Cache.RedisURL,
			Namespace: cfg.Cache.Namespace,
			Logger:    log,
		})
		if err != nil {
			return nil, nil, err
		}
		return r, func() { r.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
