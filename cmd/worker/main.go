package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/recipebox/recipebox/internal/config"
	"github.com/recipebox/recipebox/internal/repository"
	"github.com/recipebox/recipebox/internal/workers"
	"github.com/recipebox/recipebox/pkg/cache"
	"github.com/recipebox/recipebox/pkg/logger"
	"github.com/recipebox/recipebox/pkg/queue"
)

func main() {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	logger := logger.NewLogger("info")
	logger.Info("Starting cache worker...")

	// 初始化数据库
	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// 初始化Redis缓存
	redisClient := cache.NewRedisClient(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
		cfg.Redis.MinIdleConns,
	)
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	basketRepo := repository.NewBasketRepository(db.DB)

	// 每个topic一个消费者
	recipeEventsConsumer := queue.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.RecipeEvents, "cache-worker-group")
	relationEventsConsumer := queue.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.RelationEvents, "cache-worker-group")

	recipeWorker := workers.NewCacheWorker(recipeEventsConsumer, redisClient, basketRepo, logger)
	relationWorker := workers.NewCacheWorker(relationEventsConsumer, redisClient, basketRepo, logger)

	go func() {
		if err := recipeWorker.Start(ctx); err != nil && err != context.Canceled {
			logger.WithError(err).Error("Recipe events worker stopped with error")
		}
	}()
	go func() {
		if err := relationWorker.Start(ctx); err != nil && err != context.Canceled {
			logger.WithError(err).Error("Relation events worker stopped with error")
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")

	if err := recipeWorker.Stop(); err != nil {
		logger.WithError(err).Error("Failed to stop recipe events worker")
	}
	if err := relationWorker.Stop(); err != nil {
		logger.WithError(err).Error("Failed to stop relation events worker")
	}

	logger.Info("Worker exited")
}
