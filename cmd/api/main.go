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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/adegtyareva/marketpoint-backend/api/routes"
	"github.com/adegtyareva/marketpoint-backend/internal/buyers"
	"github.com/adegtyareva/marketpoint-backend/internal/cart"
	"github.com/adegtyareva/marketpoint-backend/internal/categories"
	checkoutsvc "github.com/adegtyareva/marketpoint-backend/internal/checkout"
	"github.com/adegtyareva/marketpoint-backend/internal/orders"
	"github.com/adegtyareva/marketpoint-backend/internal/pickuppoints"
	"github.com/adegtyareva/marketpoint-backend/internal/products"
	"github.com/adegtyareva/marketpoint-backend/internal/suppliers"
	"github.com/adegtyareva/marketpoint-backend/pkg/config"
	"github.com/adegtyareva/marketpoint-backend/pkg/db"
	"github.com/adegtyareva/marketpoint-backend/pkg/logger"
	"github.com/adegtyareva/marketpoint-backend/pkg/metrics"
	"github.com/adegtyareva/marketpoint-backend/pkg/migrate"
	"github.com/adegtyareva/marketpoint-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	svcs, registry, err := buildServices(cfg, dbClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, svcs, registry),
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
	closeErr = multierr.Append(closeErr, redisClient.Close())
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if closeErr != nil {
		logg.Error(ctx, "errors during shutdown", closeErr)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

func buildServices(cfg *config.Config, dbClient *db.Client, redisClient *redis.Client) (routes.Services, *prometheus.Registry, error) {
	conn := dbClient.DB()

	buyersRepo := buyers.NewRepository(conn)
	suppliersRepo := suppliers.NewRepository(conn)
	categoriesRepo := categories.NewRepository(conn)
	pickupPointsRepo := pickuppoints.NewRepository(conn)
	productsRepo := products.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)

	buyersSvc, err := buyers.NewService(buyersRepo)
	if err != nil {
		return routes.Services{}, nil, err
	}
	suppliersSvc, err := suppliers.NewService(suppliersRepo)
	if err != nil {
		return routes.Services{}, nil, err
	}
	categoriesSvc, err := categories.NewService(categoriesRepo)
	if err != nil {
		return routes.Services{}, nil, err
	}
	pickupPointsSvc, err := pickuppoints.NewService(pickupPointsRepo)
	if err != nil {
		return routes.Services{}, nil, err
	}
	productsSvc, err := products.NewService(productsRepo)
	if err != nil {
		return routes.Services{}, nil, err
	}
	cartSvc, err := cart.NewService(cartRepo, dbClient, buyersRepo, productsRepo)
	if err != nil {
		return routes.Services{}, nil, err
	}
	ordersSvc, err := orders.NewService(ordersRepo)
	if err != nil {
		return routes.Services{}, nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	checkoutSvc, err := checkoutsvc.NewService(
		dbClient,
		cartRepo,
		ordersRepo,
		productsRepo,
		pickupPointsRepo,
		redisClient,
		checkoutsvc.Options{
			LockTTL:     cfg.Checkout.LockTTL,
			RepoTimeout: cfg.Checkout.RepoTimeout,
		},
		checkoutMetrics,
	)
	if err != nil {
		return routes.Services{}, nil, err
	}

	return routes.Services{
		Buyers:       buyersSvc,
		Suppliers:    suppliersSvc,
		Categories:   categoriesSvc,
		PickupPoints: pickupPointsSvc,
		Products:     productsSvc,
		Cart:         cartSvc,
		Checkout:     checkoutSvc,
		Orders:       ordersSvc,
	}, registry, nil
}
