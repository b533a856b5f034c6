package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"

	"storefront/internal/auth"
	"storefront/internal/config"
	httpapi "storefront/internal/http"
	"storefront/internal/logging"
	"storefront/internal/metrics"
	"storefront/internal/repository"
	"storefront/internal/seed"
	"storefront/internal/service"

	_ "storefront/docs"
)

// @title Storefront API
// @version 1.0
// @description Catalog, cart, checkout and accounts.
// @host localhost:9091
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	log := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(log)
	gin.SetMode(cfg.GinMode)

	code, err := run(cfg, log)
	if err != nil {
		log.Error("startup failed", slog.String(logging.Error, err.Error()))
		os.Exit(1)
	}
	os.Exit(code)
}

// run блокируется до остановки и возвращает код выхода процесса
func run(cfg *config.Config, log *slog.Logger) (int, error) {
	db, err := repository.Open(cfg.DBDriver, cfg.DatabaseURL, cfg.DBDebug)
	if err != nil {
		return 0, err
	}
	if err := repository.Migrate(db); err != nil {
		_ = repository.Close(db)
		return 0, err
	}

	products := repository.NewProducts()
	carts := repository.NewCarts()
	tx := repository.NewGormTx(db)
	tokens := auth.NewTokens(auth.Config{
		Secret:     cfg.JWTSecret,
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	})

	productsSvc := service.NewProductService(db, products, carts, tx)
	cartsSvc := service.NewCartService(db, products, carts, tx)
	ordersSvc := service.NewOrderService(db, products, carts, repository.NewOrders(), tx)
	usersSvc := service.NewUserService(db, repository.NewUsers(), tokens, auth.NewPasswords(auth.DefaultCost))

	ctx := context.Background()
	if cfg.InsecureSecret() {
		log.Warn("JWT_SECRET is not set, using the development secret")
	}
	if cfg.AdminEmail != "" {
		if _, err := usersSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			_ = repository.Close(db)
			return 0, fmt.Errorf("failed to ensure admin account: %w", err)
		}
	}
	if cfg.SeedDemo {
		if err := seed.Run(ctx, productsSvc, log); err != nil {
			_ = repository.Close(db)
			return 0, fmt.Errorf("failed to seed catalog: %w", err)
		}
	}

	srv := httpapi.NewServer(httpapi.Deps{
		Products:      productsSvc,
		Carts:         cartsSvc,
		Orders:        ordersSvc,
		Users:         usersSvc,
		Logger:        log,
		Metrics:       metrics.NewServerMetrics(),
		Health:        func(ctx context.Context) error { return repository.Ping(ctx, db) },
		SessionCookie: cfg.SessionCookie,
		CookieSecure:  cfg.CookieSecure,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", slog.String("addr", httpServer.Addr), slog.String("db", cfg.DBDriver))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", slog.String(logging.Error, err.Error()))
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(ctx, cfg.ShutdownTimeout, map[string]gfshutdown.Operation{
		"http": func(ctx context.Context) error {
			log.Info("shutting down HTTP server")
			if err := httpServer.Shutdown(ctx); err != nil {
				return err
			}
			return repository.Close(db)
		},
	})
	code := <-wait
	log.Info("exited", slog.Int("code", code))
	return code, nil
}
