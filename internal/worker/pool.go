package worker

import (
	"context"
	"encoding/json"
	"time"

	"gestionstock/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReceipt = "jobs:receipt"
	QueueEmail   = "jobs:email"

	jobReceipt = "receipt"
	jobEmail   = "email"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// HandleSaleEvent makes the dispatcher a service.SaleHook: every committed,
// returned or reprinted sale becomes a receipt job.
func (d *Dispatcher) HandleSaleEvent(ctx context.Context, ev service.SaleEvent) {
	if err := d.EnqueueReceipt(ctx, ev); err != nil {
		log.Error().Err(err).Str("sale_id", ev.Sale.ID.String()).Str("type", string(ev.Type)).Msg("dispatcher: failed to enqueue receipt")
	}
}

// EnqueueReceipt pushes a receipt job to Redis.
func (d *Dispatcher) EnqueueReceipt(ctx context.Context, ev service.SaleEvent) error {
	return d.enqueue(ctx, QueueReceipt, jobReceipt, ev)
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, jobEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// JobHandler processes the payload of one job.
type JobHandler interface {
	Process(ctx context.Context, raw json.RawMessage)
}

// WorkerHandlers maps every job type to its handler. A nil handler drops the
// job with a warning.
type WorkerHandlers struct {
	Receipt JobHandler
	Email   JobHandler
}

// StartWorkerPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers WorkerHandlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers WorkerHandlers, id int) {
	queues := []string{QueueReceipt, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, handlers WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	var h JobHandler
	switch job.Type {
	case jobReceipt:
		h = handlers.Receipt
	case jobEmail:
		h = handlers.Email
	}
	if h == nil {
		log.Warn().Str("type", job.Type).Str("queue", queue).Msg("no handler for job, dropping")
		return
	}
	log.Debug().Str("type", job.Type).Str("queue", queue).Msg("processing job")
	h.Process(ctx, job.Payload)
}

// withRetry calls fn up to maxAttempts times with exponential backoff
// (immediate, then retryBase, 2*retryBase, ...). Returns nil if any attempt
// succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * retryBase
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

var retryBase = time.Second
