package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/Renal37/cardledger/internal/backend"
	"github.com/Renal37/cardledger/internal/cache"
	"github.com/Renal37/cardledger/internal/database"
	router "github.com/Renal37/cardledger/internal/http"
	"github.com/Renal37/cardledger/internal/logger"
	"github.com/Renal37/cardledger/internal/middlewares"
	"github.com/Renal37/cardledger/internal/services"
	"github.com/Renal37/cardledger/internal/utils"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("WARNING: .env file wasn't loaded due to %s", err)
	}

	config, err := NewConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("Config wasn't loaded due to %s", err)
	}

	if err := logger.Initialize(config.logLevel, config.env); err != nil {
		log.Fatalf("Logger wasn't initialized due to %s", err)
	}
	defer logger.Log.Sync()

	if err := run(config); err != nil {
		logger.Log.Fatal("cardledger stopped with error", zap.Error(err))
	}
}

func run(config Config) error {
	decimal.MarshalJSONWithoutQuotes = true

	ctx := utils.HandleTerminationProcess(context.Background())

	var journal services.ActionJournal
	if config.dsn != "" {
		db, err := database.New(ctx, config.dsn)
		if err != nil {
			return fmt.Errorf("database wasn't initialized: %w", err)
		}
		defer db.Close()

		if err := db.RunMigrations(); err != nil {
			return fmt.Errorf("migrations weren't run: %w", err)
		}
		journal = db
	} else {
		logger.Log.Warn("DATABASE_URI is empty, card action journal is disabled")
	}

	var quoteCache services.QuoteCache
	if config.redisAddress != "" {
		client, err := cache.Connect(ctx, config.redisAddress)
		if err != nil {
			return err
		}
		defer client.Close()

		quoteCache = cache.NewRedisCache(client, config.quoteTTL)
	} else {
		memoryCache := cache.NewMemoryCache(config.quoteTTL)
		go memoryCache.RunPurge(ctx, config.quoteTTL)

		quoteCache = memoryCache
	}

	client := backend.New(config.backendEndpoint, config.backendTimeout)

	jobQueueService := services.NewJobQueueService(ctx, 100, 4)
	defer jobQueueService.Shutdown()

	feeResolver := services.NewFeeResolver(client, quoteCache, config.feeDebounce)

	return router.New(
		router.Config{
			Endpoint:       config.endpoint,
			AllowedOrigins: config.allowedOrigins,
		},
		middlewares.Services{
			JWT:      services.NewJWTService(config.authSecretKey),
			Balance:  services.NewBalanceService(client),
			Fees:     services.NewFeeService(feeResolver, services.DefaultTierSchedule()),
			Cards:    services.NewCardService(client, feeResolver, journal),
			Feed:     services.NewFeedService(client),
			Deposits: services.NewDepositPoller(client, jobQueueService, config.pollInterval),
		},
	).Run(ctx)
}
