package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/pricelens/backend/config"
	httpDelivery "github.com/pricelens/backend/internal/delivery/http"
	"github.com/pricelens/backend/internal/infrastructure/cache"
	"github.com/pricelens/backend/internal/infrastructure/feed"
	"github.com/pricelens/backend/internal/infrastructure/storage"
	"github.com/pricelens/backend/internal/usecase"
)

func main() {
	// Load .env if present; real environments set variables directly
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}

	if cfg.Server.Environment == "development" {
		logger.SetLevel(logrus.DebugLevel)
	}

	logger.WithFields(logrus.Fields{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"cache_ttl":   cfg.Cache.TTL,
	}).Info("starting PriceLens backend v1.0.0")

	// Build per-market pipeline specs from configuration
	specs := make([]usecase.MarketSpec, 0, len(cfg.Markets))
	feedURLs := make(map[string]string, len(cfg.Markets))
	for name, market := range cfg.Markets {
		spec := usecase.MarketSpec{
			Name:     name,
			Strategy: market.Strategy,
			Fields: usecase.FieldMap{
				ProductName:  market.Fields.ProductName,
				CurrentPrice: market.Fields.CurrentPrice,
				RegularPrice: market.Fields.RegularPrice,
				Description:  market.Fields.Description,
				PricePerUnit: market.Fields.PricePerUnit,
				Availability: market.Fields.Availability,
				StoreName:    market.Fields.StoreName,
			},
		}

		if market.MarketMapPath != "" {
			marketMap, err := storage.LoadMarketMap(market.MarketMapPath)
			if err != nil {
				logger.WithError(err).WithField("market", name).Fatal("failed to load market map")
			}
			spec.VeroMarketMap = marketMap
		}

		specs = append(specs, spec)
		feedURLs[name] = market.FeedURL
	}

	pipeline, err := usecase.NewPipelineService(specs, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to build pipeline")
	}

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache()
	feedClient := feed.NewClient(feedURLs, logger)

	store, err := storage.NewSQLiteStore(cfg.Outputs.SQLitePath)
	if err != nil {
		logger.WithError(err).Fatal("failed to open dataset store")
	}
	defer store.Close()

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(
		pipeline,
		feedClient,
		memoryCache,
		store,
		cfg.Outputs.Dir,
		cfg.Outputs.ReportsDir,
		cfg.Cache.TTL,
		logger,
	)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.WithField("addr", addr).Info("server listening")

	if err := router.Run(addr); err != nil {
		logger.WithError(err).Fatal("failed to start server")
	}
}
