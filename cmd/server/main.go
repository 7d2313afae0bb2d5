package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/graymont/rent-reminder/internal/api"
	"github.com/graymont/rent-reminder/internal/config"
	"github.com/graymont/rent-reminder/internal/pkg/logger"
	"github.com/graymont/rent-reminder/internal/recipients"
	"github.com/graymont/rent-reminder/internal/schedule"
	"github.com/graymont/rent-reminder/internal/store"
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

	db, err := openDatabase(cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err.Error())
		os.Exit(1)
	}
	defer db.Close()

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

	recipientStore := store.NewRecipientStore(db)
	queueStore := store.NewQueueStore(db)

	if err := bootstrapRecipients(context.Background(), recipientStore, cfg.Recipients.DefaultCSV); err != nil {
		logger.Warn("default recipient bootstrap failed", "error", err.Error())
	}

	enqueuer := worker.NewRunEnqueuer(recipientStore, queueStore, redisClient)
	scheduleMgr := schedule.NewManager(cfg.Schedule)

	handlers := api.NewHandlers(recipientStore, queueStore, enqueuer, scheduleMgr, cfg.Twilio, cfg.Message.Template)
	server := api.NewServer(cfg.Server, handlers)

	scheduler := worker.NewReminderScheduler(enqueuer, scheduleMgr.Current, redisClient, db, cfg.Worker.SendHour)
	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err.Error())
		os.Exit(1)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	go func() {
		logger.Info("rent reminder server listening", "addr", addr)
		if err := server.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err.Error())
	}
	logger.Info("server stopped")
}

func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// bootstrapRecipients seeds the store from the configured CSV when the
// table is empty. A missing file is not an error; the list starts empty.
func bootstrapRecipients(ctx context.Context, rs *store.RecipientStore, path string) error {
	if path == "" {
		return nil
	}
	n, err := rs.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		logger.Info("default recipient file not found, starting empty", "path", path)
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	raw, err := recipients.ParseCSV(f)
	if err != nil {
		return err
	}
	records, flagDefaulted, err := recipients.Normalize(raw)
	if err != nil {
		return err
	}
	if err := rs.ReplaceAll(ctx, records); err != nil {
		return err
	}

	logger.Info("recipient list seeded from default file",
		"path", path,
		"rows", len(records),
		"flag_defaulted", flagDefaulted)
	return nil
}
