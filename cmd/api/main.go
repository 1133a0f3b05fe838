package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"family-store/internal/blessing"
	"family-store/internal/catalog"
	"family-store/internal/checkout"
	"family-store/internal/config"
	"family-store/internal/database"
	"family-store/internal/handler"
	"family-store/internal/metrics"
	"family-store/internal/receipt"
	"family-store/internal/repository"
	"family-store/internal/router"
	"family-store/internal/service"
	"family-store/internal/session"
	"family-store/internal/storage"
	"family-store/internal/view"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().
		Str("checkout_mode", cfg.Store.CheckoutMode).
		Str("view_layout", cfg.Store.ViewLayout).
		Str("storage_driver", cfg.Storage.Driver).
		Msg("starting family-store API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loc, err := cfg.Store.Location()
	if err != nil {
		return fmt.Errorf("failed to load timezone: %w", err)
	}
	mode, err := checkout.ParseMode(cfg.Store.CheckoutMode)
	if err != nil {
		return err
	}
	layout, err := view.ParseLayout(cfg.Store.ViewLayout)
	if err != nil {
		return err
	}

	m := metrics.New()

	// Initialize cart snapshot storage
	store, closeStore, err := newSnapshotStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var s3Client *s3.Client
	if cfg.S3.Enabled {
		s3Client, err = newS3Client(ctx, cfg.S3, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 client, falling back to local file system only")
		}
	}

	// Initialize checkout collaborators
	checkoutOpts := []checkout.Option{
		checkout.WithBlessings(newBlessingSelector(ctx, cfg, s3Client, m, logger)),
		checkout.WithFormSubmitter(checkout.NewHTTPFormSubmitter(cfg.Form.Endpoint, nil, logger)),
	}

	if mode == checkout.ModeReceipt {
		renderer, err := receipt.NewRenderer(receipt.Options{FontPath: cfg.Receipt.FontPath, Location: loc}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize receipt renderer: %w", err)
		}
		checkoutOpts = append(checkoutOpts, checkout.WithRenderer(renderer))

		exporter, err := newExporter(cfg, s3Client, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize receipt exporter: %w", err)
		}
		if exporter != nil {
			checkoutOpts = append(checkoutOpts, checkout.WithExporter(exporter))
		}
	}

	// Initialize sessions
	sessions := session.NewManager(store, session.Config{
		Layout:          layout,
		NotificationTTL: cfg.Store.NotificationTTL,
		Checkout: checkout.Config{
			Mode:        mode,
			Location:    loc,
			RenderDelay: cfg.Receipt.RenderDelay,
		},
	}, logger, session.WithMetrics(m), session.WithCheckoutOptions(checkoutOpts...))
	defer sessions.CloseAll()

	products := catalog.New(catalog.SeedProducts(), logger, catalog.WithCustomProducts(cfg.Store.CustomProducts))

	// Initialize services
	catalogService := service.NewCatalogService(products, logger)
	cartService := service.NewCartService(sessions, products, logger)
	checkoutService := service.NewCheckoutService(sessions, logger)
	viewService := service.NewViewService(sessions, logger)
	sessionService := service.NewSessionService(sessions, logger)

	// Initialize HTTP handlers and router
	mux := router.New(router.Handlers{
		Catalog:  handler.NewCatalogHandler(catalogService, logger),
		Cart:     handler.NewCartHandler(cartService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, logger),
		View:     handler.NewViewHandler(viewService, sessionService, logger),
	}, cfg.Auth.APIKey, m.Handler(), logger)

	// Create HTTP server. The write timeout leaves room for the form POST and
	// the receipt render delay.
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newSnapshotStore opens the configured cart storage driver. The returned
// func releases its connections.
func newSnapshotStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (storage.SnapshotStore, func(), error) {
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := repository.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repository.NewCartRepository(pool, logger), pool.Close, nil

	case "redis":
		client, err := storage.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		closeClient := func() {
			if err := client.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close redis client")
			}
		}
		return storage.NewRedisStore(client, logger), closeClient, nil

	default:
		store, err := storage.NewFileStore(cfg.Storage.DataDir, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize file store: %w", err)
		}
		return store, func() {}, nil
	}
}

func newS3Client(ctx context.Context, cfg config.S3Config, logger zerolog.Logger) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", cfg.Bucket).
		Str("region", cfg.Region).
		Msg("S3 client initialised")

	return s3.NewFromConfig(awsCfg), nil
}

// newBlessingSelector loads the blessing lists and wraps them with Gemini.
// Lists are read from S3 when available, falling back to local files.
func newBlessingSelector(ctx context.Context, cfg *config.Config, client *s3.Client, m *metrics.Metrics, logger zerolog.Logger) blessing.Selector {
	var remote blessing.Loader
	if client != nil {
		remote = blessing.NewS3Loader(client, cfg.S3.Bucket, logger)
	}
	loader := blessing.NewFallbackLoader(remote, blessing.NewFileLoader(logger), cfg.S3.Prefix, logger)

	list := blessing.LoadAll(ctx, loader, cfg.Blessing.Files, logger)
	random := blessing.NewRandomSelector(list, nil)

	return blessing.NewGeminiSelector(blessing.GeminiConfig{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
	}, random, m, logger)
}

// newExporter returns nil when receipts are only served over HTTP.
func newExporter(cfg *config.Config, client *s3.Client, logger zerolog.Logger) (receipt.Exporter, error) {
	var dir receipt.Exporter
	if cfg.Receipt.Dir != "" {
		d, err := receipt.NewDirExporter(cfg.Receipt.Dir, logger)
		if err != nil {
			return nil, err
		}
		dir = d
	}

	if client == nil {
		return dir, nil
	}

	remote := receipt.NewS3Exporter(client, cfg.S3.Bucket, cfg.S3.Prefix+"receipts/", logger)
	if dir == nil {
		return remote, nil
	}
	return receipt.NewFallbackExporter(remote, dir, logger), nil
}
