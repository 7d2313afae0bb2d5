// Package worker contains the background machinery of the reminder service:
// the run enqueuer, the SMS send worker pool and the monthly scheduler.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/graymont/rent-reminder/internal/pkg/logger"
	"github.com/graymont/rent-reminder/internal/store"
)

const progressTTL = 7 * 24 * time.Hour

// RunEnqueuer snapshots the sendable recipients into a new run. Both the
// manual trigger endpoint and the scheduler go through it, so a run always
// means the same thing regardless of who started it.
type RunEnqueuer struct {
	recipients  *store.RecipientStore
	queue       *store.QueueStore
	redisClient *redis.Client // optional; progress counters are skipped when nil
}

// NewRunEnqueuer creates a run enqueuer.
func NewRunEnqueuer(recipients *store.RecipientStore, queue *store.QueueStore, redisClient *redis.Client) *RunEnqueuer {
	return &RunEnqueuer{recipients: recipients, queue: queue, redisClient: redisClient}
}

// Enqueue creates a run from the current sendable recipients.
// Returns the run even when nothing is sendable (total 0), so callers can
// report an empty run instead of an error.
func (e *RunEnqueuer) Enqueue(ctx context.Context, triggeredBy string) (*store.Run, error) {
	recs, err := e.recipients.ListSendable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sendable: %w", err)
	}

	run, err := e.queue.CreateRun(ctx, triggeredBy, recs)
	if err != nil {
		return nil, err
	}

	if e.redisClient != nil {
		key := progressKey(run.ID.String())
		if err := e.redisClient.HSet(ctx, key, "total", run.Total, "sent", 0, "failed", 0).Err(); err != nil {
			logger.Warn("failed to init run progress counters", "run_id", run.ID.String(), "error", err.Error())
		} else {
			e.redisClient.Expire(ctx, key, progressTTL)
		}
	}

	logger.Info("reminder run enqueued",
		"run_id", run.ID.String(),
		"triggered_by", triggeredBy,
		"total", run.Total)
	return run, nil
}

func progressKey(runID string) string {
	return "rentreminder:run:" + runID + ":progress"
}
