package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/finsightlab/market-analysis-service/internal/api"
	"github.com/finsightlab/market-analysis-service/internal/config"
	"github.com/finsightlab/market-analysis-service/internal/database"
	"github.com/finsightlab/market-analysis-service/internal/fetch"
	"github.com/finsightlab/market-analysis-service/internal/kafka"
	"github.com/finsightlab/market-analysis-service/internal/orchestrator"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database ready", zap.String("name", cfg.Database.DBName))

	var cache *fetch.ResponseCache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cache = fetch.NewResponseCache(client, cfg.Redis.TTL)
		logger.Info("provider response cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	var producer *kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		logger.Info("event publishing enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic))
	}

	priceProviders := []fetch.PriceProvider{fetch.NewYahooClient(cache, logger)}
	newsProviders := []fetch.NewsProvider{}
	if cfg.Providers.AlphaVantageKey != "" {
		av := fetch.NewAlphaVantageClient(cfg.Providers.AlphaVantageKey, cache, logger)
		priceProviders = append(priceProviders, av)
		newsProviders = append(newsProviders, av)
	}
	newsProviders = append(newsProviders, fetch.NewGoogleNewsClient(cache, logger))
	prices := fetch.NewPriceChain(logger, priceProviders...)

	orch := orchestrator.New(db, prices, newsProviders, producer, logger)
	router := api.SetupRoutes(api.NewHandler(orch, logger))

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
