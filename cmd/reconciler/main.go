package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Tsaitung/Orderly-sub008/internal/organizations"
	"github.com/Tsaitung/Orderly-sub008/internal/recon"
	"github.com/Tsaitung/Orderly-sub008/pkg/config"
	"github.com/Tsaitung/Orderly-sub008/pkg/db"
	"github.com/Tsaitung/Orderly-sub008/pkg/logger"
	"github.com/Tsaitung/Orderly-sub008/pkg/metrics"
	"github.com/Tsaitung/Orderly-sub008/pkg/migrate"
	"github.com/Tsaitung/Orderly-sub008/pkg/redis"
)

const dateLayout = "2006-01-02"

func main() {
	logg := logger.New(logger.Options{ServiceName: "reconciler"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	restaurantFlag := flag.String("restaurant", "", "restaurant organization id")
	supplierFlag := flag.String("supplier", "", "supplier organization id")
	fromFlag := flag.String("from", "", "period start (YYYY-MM-DD)")
	toFlag := flag.String("to", "", "period end (YYYY-MM-DD)")
	flag.Parse()

	input, err := parseInput(*restaurantFlag, *supplierFlag, *fromFlag, *toFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "reconciler"

	logg = logger.New(logger.Options{
		ServiceName: "reconciler",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	locker, err := recon.NewRedisLocker(redisClient, cfg.Recon.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create run locker", err)
		os.Exit(1)
	}

	service, err := recon.NewService(recon.ServiceParams{
		Organizations: organizations.NewRepository(dbClient.DB()),
		Lines:         recon.NewLineRepository(dbClient.DB()),
		Repo:          recon.NewRepository(dbClient.DB()),
		Tx:            dbClient,
		Locker:        locker,
		Config:        cfg.Recon,
		Logger:        logg,
		Metrics:       metrics.NewReconMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reconciliation service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting reconciliation run")

	result, err := service.Process(ctx, input)
	if err != nil {
		logg.Error(ctx, "reconciliation run failed", err)
		os.Exit(1)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		logg.Error(ctx, "failed to encode result", err)
		os.Exit(1)
	}
}

func parseInput(restaurant, supplier, from, to string) (recon.ProcessInput, error) {
	var input recon.ProcessInput

	restaurantID, err := uuid.Parse(restaurant)
	if err != nil {
		return input, fmt.Errorf("invalid -restaurant value %q: %w", restaurant, err)
	}
	supplierID, err := uuid.Parse(supplier)
	if err != nil {
		return input, fmt.Errorf("invalid -supplier value %q: %w", supplier, err)
	}
	periodStart, err := time.Parse(dateLayout, from)
	if err != nil {
		return input, fmt.Errorf("invalid -from value %q: %w", from, err)
	}
	periodEnd, err := time.Parse(dateLayout, to)
	if err != nil {
		return input, fmt.Errorf("invalid -to value %q: %w", to, err)
	}

	return recon.ProcessInput{
		RestaurantOrgID: restaurantID,
		SupplierOrgID:   supplierID,
		PeriodStart:     periodStart,
		PeriodEnd:       periodEnd,
	}, nil
}
