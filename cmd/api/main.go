package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tiendita/internal/config"
	"tiendita/internal/database"
	"tiendita/internal/handler"
	"tiendita/internal/imagestore"
	"tiendita/internal/repository"
	"tiendita/internal/router"
	"tiendita/internal/service"

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
	logger.Info().Msg("starting tiendita API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		return fmt.Errorf("failed to ensure database schema: %w", err)
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	sessionRepo := repository.NewSessionRepository(pool, logger)

	// Initialize image store with S3 and local fallback
	var images imagestore.Store
	if cfg.Images.S3Enabled {
		images, err = imagestore.NewS3Store(ctx, cfg.Images.S3Bucket, cfg.Images.S3Region, cfg.Images.S3Prefix, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 image store, falling back to local file system")
			images, err = imagestore.NewFileStore(cfg.Images.Dir, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize image store: %w", err)
			}
		}
	} else {
		images, err = imagestore.NewFileStore(cfg.Images.Dir, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize image store: %w", err)
		}
		logger.Info().Str("dir", cfg.Images.Dir).Msg("using local file system for images (S3 disabled)")
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, sessionRepo, images, cfg.Session.TTL, logger)
	productService := service.NewProductService(productRepo, images, logger)
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	checkoutService := service.NewCheckoutService(orderRepo, productRepo, cartRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, logger)
	userService := service.NewUserService(userRepo, logger)

	// Expired sessions are swept in the background for the life of the server.
	go sweepSessions(ctx, sessionRepo, cfg.Session.TTL, logger)

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Auth:     handler.NewAuthHandler(authService, cfg.Session.CookieName, cfg.Session.CookieSecure, logger),
		Product:  handler.NewProductHandler(productService, logger),
		Cart:     handler.NewCartHandler(cartService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, logger),
		Order:    handler.NewOrderHandler(orderService, logger),
		User:     handler.NewUserHandler(userService, logger),
	}

	// Initialize router
	mux := router.New(handlers, authService, cfg.Session.CookieName, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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

// sweepSessions deletes expired sessions roughly once per TTL, at least
// every hour, until ctx is cancelled.
func sweepSessions(ctx context.Context, sessions repository.SessionRepository, ttl time.Duration, logger zerolog.Logger) {
	interval := ttl
	if interval > time.Hour {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.DeleteExpired(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("session sweep failed")
				continue
			}
			if n > 0 {
				logger.Info().Int64("deleted", n).Msg("expired sessions swept")
			}
		}
	}
}
