package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/01moynul/storefront-api/internal/auth"
	"github.com/01moynul/storefront-api/internal/cart"
	"github.com/01moynul/storefront-api/internal/checkout"
	"github.com/01moynul/storefront-api/internal/config"
	"github.com/01moynul/storefront-api/internal/database"
	"github.com/01moynul/storefront-api/internal/handlers"
	"github.com/01moynul/storefront-api/internal/inventory"
	"github.com/01moynul/storefront-api/internal/logger"
	"github.com/01moynul/storefront-api/internal/orders"
	"github.com/01moynul/storefront-api/internal/routes"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logg, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logg.Sync()

	if err := run(cfg, logg); err != nil {
		logg.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logg *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. --- Database Connection ---
	db, err := database.Open(ctx, cfg.DBDriver, cfg.DBDSN, database.Options{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
	}, logg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	// --- Application Setup ---
	// Every dependency is built here and injected into the Handlers struct.
	app := &handlers.Handlers{
		DB:        db,
		Carts:     cart.NewService(db, logg, cfg.MaxPerLine),
		Checkouts: checkout.NewService(db, logg),
		Orders:    orders.NewReader(db),
		Inventory: inventory.NewService(db, logg),
		Log:       logg,
	}

	// --- Router Setup ---
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.SetupRouter(app, auth.NewManager(cfg.JWTSecret), cfg.CORSOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Start Server ---
	errCh := make(chan error, 1)
	go func() {
		logg.Info("starting storefront API", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// --- Graceful Shutdown ---
	logg.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
