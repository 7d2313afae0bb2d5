package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/graymont/rent-reminder/internal/config"
	"github.com/graymont/rent-reminder/internal/message"
	"github.com/graymont/rent-reminder/internal/pkg/logger"
	"github.com/graymont/rent-reminder/internal/store"
	"github.com/graymont/rent-reminder/internal/twilio"
	"github.com/graymont/rent-reminder/internal/worker"
)

func main() {
	configPath := "config/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err.Error())
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		logger.Error("failed to open database", "error", err.Error())
		os.Exit(1)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.PingContext(ctx); err != nil {
		cancel()
		logger.Error("failed to ping database", "error", err.Error())
		os.Exit(1)
	}
	cancel()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("redis unreachable, progress counters disabled", "error", err.Error())
		redisClient = nil
	}

	sender := twilio.NewClient(cfg.Twilio)

	pool := worker.NewSendWorkerPool(
		store.NewQueueStore(db),
		sender,
		message.NewRenderer(),
		cfg.Message.Template,
		cfg.Worker.NumWorkers,
		cfg.Worker.BatchSize,
		cfg.Worker.PollInterval(),
	)
	if redisClient != nil {
		pool.SetRedisClient(redisClient)
	}
	pool.Start()

	logger.Info("send worker running",
		"workers", cfg.Worker.NumWorkers,
		"batch_size", cfg.Worker.BatchSize)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker")
	pool.Stop()
}
