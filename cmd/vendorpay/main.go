package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"vendorpay/internal/config"
	apphttp "vendorpay/internal/http"
	"vendorpay/internal/kv"
	kvfile "vendorpay/internal/kv/file"
	kvmem "vendorpay/internal/kv/memory"
	kvpg "vendorpay/internal/kv/postgres"
	kvsqlite "vendorpay/internal/kv/sqlite"
	applog "vendorpay/internal/log"
	"vendorpay/internal/ledger"
	"vendorpay/internal/notify"
	"vendorpay/internal/service"
	"vendorpay/internal/sheets"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	root := applog.New(applog.DefaultConfig())
	applog.SetDefault(root)
	logger := root.WithComponent(applog.ComponentApp)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", applog.FieldError, err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	store, closeStore, err := openBackend(cfg)
	if err != nil {
		logger.Error("Failed to initialize persistence backend",
			applog.FieldBackend, cfg.Backend, applog.FieldError, err)
		os.Exit(1)
	}
	if closeStore != nil {
		defer closeStore()
	}
	logger.Info("Persistence backend initialized", applog.FieldBackend, cfg.Backend)

	payments := ledger.NewStore(store)
	if err := payments.Load(context.Background()); err != nil {
		logger.Error("Failed to load ledger snapshot", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Ledger loaded", applog.FieldCount, payments.Len())

	var notifier service.Notifier
	if cfg.AMQPURL != "" {
		client, err := notify.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		notifier = client
		logger.Info("AMQP notifications enabled")
	} else {
		logger.Info("AMQP notifications disabled - no AMQP_URL provided")
	}

	var mirror service.Mirror
	if os.Getenv("SHEETS_SPREADSHEET_ID") != "" {
		m, err := sheets.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets mirror", applog.FieldError, err)
			os.Exit(1)
		}
		mirror = m
		logger.Info("Google Sheets mirror enabled")
	} else {
		logger.Info("Google Sheets mirror disabled - no SHEETS_SPREADSHEET_ID provided")
	}

	svc := service.New(payments, notifier, mirror)
	srv := apphttp.NewServer(":"+cfg.Port, svc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting vendorpay server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

// openBackend picks the snapshot store named by the configuration. The
// returned closer is nil for backends without resources to release.
func openBackend(cfg *config.Config) (kv.Store, func(), error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		store, err := kvsqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case config.BackendPostgres:
		store, err := kvpg.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case config.BackendFile:
		store, err := kvfile.New(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		return kvmem.New(), nil, nil
	}
}
