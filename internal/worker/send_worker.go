package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/graymont/rent-reminder/internal/message"
	"github.com/graymont/rent-reminder/internal/pkg/logger"
	"github.com/graymont/rent-reminder/internal/recipients"
	"github.com/graymont/rent-reminder/internal/store"
	"github.com/graymont/rent-reminder/internal/twilio"
)

// SMSSender sends one message and reports the provider's result.
type SMSSender interface {
	SendMessage(ctx context.Context, to, body string) (*twilio.MessageResult, error)
}

// SendWorkerPool drains the reminder queue with a pool of workers. Each
// worker claims a batch, renders the message for every item and hands it
// to the SMS provider. Items fail independently of their siblings.
type SendWorkerPool struct {
	queue       *store.QueueStore
	sender      SMSSender
	renderer    *message.Renderer
	template    string
	redisClient *redis.Client // optional; progress counters are skipped when nil

	workerID     string
	numWorkers   int
	batchSize    int
	pollInterval time.Duration

	// Stats
	totalSent    int64
	totalFailed  int64
	totalSkipped int64

	// Control
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.RWMutex
}

// NewSendWorkerPool creates a worker pool.
func NewSendWorkerPool(queue *store.QueueStore, sender SMSSender, renderer *message.Renderer, template string, numWorkers, batchSize int, pollInterval time.Duration) *SendWorkerPool {
	if numWorkers <= 0 {
		numWorkers = 4
	}
	if batchSize <= 0 {
		batchSize = 25
	}
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &SendWorkerPool{
		queue:        queue,
		sender:       sender,
		renderer:     renderer,
		template:     template,
		workerID:     fmt.Sprintf("sender-%s-%d", hostname(), os.Getpid()),
		numWorkers:   numWorkers,
		batchSize:    batchSize,
		pollInterval: pollInterval,
	}
}

// SetRedisClient enables per-run progress counters in Redis.
func (p *SendWorkerPool) SetRedisClient(client *redis.Client) {
	p.redisClient = client
}

// Start launches the workers. Safe to call once; later calls are no-ops
// while the pool is running.
func (p *SendWorkerPool) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.mu.Unlock()

	logger.Info("send worker pool starting",
		"workers", p.numWorkers,
		"batch_size", p.batchSize,
		"worker_id", p.workerID)

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop cancels the workers and waits for in-flight sends to finish.
func (p *SendWorkerPool) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.cancel()
	p.mu.Unlock()

	p.wg.Wait()

	logger.Info("send worker pool stopped",
		"total_sent", atomic.LoadInt64(&p.totalSent),
		"total_failed", atomic.LoadInt64(&p.totalFailed),
		"total_skipped", atomic.LoadInt64(&p.totalSkipped))
}

// Stats returns cumulative counters since the pool started.
func (p *SendWorkerPool) Stats() map[string]int64 {
	return map[string]int64{
		"total_sent":    atomic.LoadInt64(&p.totalSent),
		"total_failed":  atomic.LoadInt64(&p.totalFailed),
		"total_skipped": atomic.LoadInt64(&p.totalSkipped),
	}
}

func (p *SendWorkerPool) worker(workerNum int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		items, err := p.claimBatch()
		if err != nil {
			logger.Error("failed to claim batch", "worker", workerNum, "error", err.Error())
			p.sleep(time.Second)
			continue
		}

		if len(items) == 0 {
			p.sleep(p.pollInterval)
			continue
		}

		for _, item := range items {
			if err := p.processItem(item); err != nil {
				logger.Error("failed to process queue item",
					"worker", workerNum,
					"item_id", item.ID.String(),
					"error", err.Error())
			}
		}
	}
}

func (p *SendWorkerPool) claimBatch() ([]store.QueueItem, error) {
	ctx, cancel := context.WithTimeout(p.ctx, 5*time.Second)
	defer cancel()
	return p.queue.ClaimBatch(ctx, p.workerID, p.batchSize)
}

// processItem renders and sends one reminder, then records the outcome.
func (p *SendWorkerPool) processItem(item store.QueueItem) error {
	ctx, cancel := context.WithTimeout(p.ctx, 60*time.Second)
	defer cancel()

	rec := recipients.Record{Name: item.Name, PhoneNumber: item.PhoneNumber, SendFlag: true}
	body, err := p.renderer.Render(p.template, message.Bindings(rec, rentDueDate(time.Now())))
	if err != nil {
		atomic.AddInt64(&p.totalFailed, 1)
		p.bumpProgress(ctx, item.RunID.String(), "failed")
		return p.queue.MarkFailed(ctx, item.ID, "render: "+err.Error())
	}

	result, err := p.sender.SendMessage(ctx, item.PhoneNumber, body)
	if err != nil {
		if errors.Is(err, twilio.ErrEmptyPhoneNumber) {
			atomic.AddInt64(&p.totalSkipped, 1)
		} else {
			atomic.AddInt64(&p.totalFailed, 1)
		}
		p.bumpProgress(ctx, item.RunID.String(), "failed")
		if markErr := p.queue.MarkFailed(ctx, item.ID, err.Error()); markErr != nil {
			return markErr
		}
		logger.Warn("reminder send failed",
			"item_id", item.ID.String(),
			"to", item.PhoneNumber,
			"error", err.Error())
		return nil
	}

	atomic.AddInt64(&p.totalSent, 1)
	p.bumpProgress(ctx, item.RunID.String(), "sent")
	if err := p.queue.MarkSent(ctx, item.ID, result.SID); err != nil {
		return err
	}

	logger.Info("reminder sent",
		"item_id", item.ID.String(),
		"to", item.PhoneNumber,
		"message_sid", result.SID,
		"status", result.Status)
	return nil
}

func (p *SendWorkerPool) bumpProgress(ctx context.Context, runID, field string) {
	if p.redisClient == nil {
		return
	}
	if err := p.redisClient.HIncrBy(ctx, progressKey(runID), field, 1).Err(); err != nil {
		logger.Debug("progress counter update failed", "run_id", runID, "error", err.Error())
	}
}

// sleep waits for d or until the pool is stopped, whichever comes first.
func (p *SendWorkerPool) sleep(d time.Duration) {
	select {
	case <-p.ctx.Done():
	case <-time.After(d):
	}
}

// rentDueDate is the first day of the month after now. Reminders go out
// in the closing days of a month for rent due on the next first.
func rentDueDate(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
