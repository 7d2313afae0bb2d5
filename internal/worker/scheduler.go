package worker

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/graymont/rent-reminder/internal/pkg/distlock"
	"github.com/graymont/rent-reminder/internal/pkg/logger"
	"github.com/graymont/rent-reminder/internal/schedule"
	"github.com/graymont/rent-reminder/internal/store"
)

const schedulerLockKey = "rentreminder:scheduler:enqueue"

// ScheduleSource returns the schedule currently in effect. The API can
// update the schedule at runtime, so the scheduler re-reads it on every
// tick instead of caching it.
type ScheduleSource func() schedule.Schedule

// ReminderScheduler fires once a day at the configured send hour and
// enqueues a run when the schedule matches today. A distributed lock keeps
// multiple instances from enqueuing the same day twice.
type ReminderScheduler struct {
	cron        *cron.Cron
	enqueuer    *RunEnqueuer
	source      ScheduleSource
	redisClient *redis.Client
	db          *sql.DB
	sendHour    int
}

// NewReminderScheduler creates a scheduler that evaluates the schedule
// daily at sendHour local time.
func NewReminderScheduler(enqueuer *RunEnqueuer, source ScheduleSource, redisClient *redis.Client, db *sql.DB, sendHour int) *ReminderScheduler {
	if sendHour < 0 || sendHour > 23 {
		sendHour = 9
	}
	return &ReminderScheduler{
		cron:        cron.New(),
		enqueuer:    enqueuer,
		source:      source,
		redisClient: redisClient,
		db:          db,
		sendHour:    sendHour,
	}
}

// Start registers the daily tick and starts the cron runner.
func (s *ReminderScheduler) Start() error {
	spec := fmt.Sprintf("0 %d * * *", s.sendHour)
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return fmt.Errorf("register schedule tick: %w", err)
	}
	s.cron.Start()
	logger.Info("reminder scheduler started", "cron", spec)
	return nil
}

// Stop stops the cron runner and waits for a running tick to finish.
func (s *ReminderScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("reminder scheduler stopped")
}

func (s *ReminderScheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	s.evaluate(ctx, time.Now())
}

// evaluate enqueues a run if the schedule matches now. Split from tick so
// tests can drive it with a fixed clock.
func (s *ReminderScheduler) evaluate(ctx context.Context, now time.Time) {
	sched := s.source()
	if !sched.Matches(now) {
		logger.Debug("schedule did not match, skipping",
			"type", string(sched.Type),
			"days_until_end", schedule.DaysUntilEndOfMonth(now))
		return
	}

	// Lock TTL spans the rest of the day so a second instance cannot
	// re-enqueue after the first one releases.
	lock := distlock.NewLock(s.redisClient, s.db, schedulerLockKey+":"+now.Format("2006-01-02"), 23*time.Hour)
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		logger.Error("scheduler lock error", "error", err.Error())
		return
	}
	if !acquired {
		logger.Info("another instance already enqueued today's run")
		return
	}

	run, err := s.enqueuer.Enqueue(ctx, store.TriggerScheduled)
	if err != nil {
		logger.Error("scheduled enqueue failed", "error", err.Error())
		// Release so a retry on another instance can still run today.
		if relErr := lock.Release(ctx); relErr != nil {
			logger.Warn("scheduler lock release failed", "error", relErr.Error())
		}
		return
	}

	logger.Info("scheduled reminder run created",
		"run_id", run.ID.String(),
		"total", run.Total)
}
