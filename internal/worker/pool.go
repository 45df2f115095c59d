package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"retailpos/internal/infra"
	"retailpos/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEvents = "jobs:events"
	QueueAlerts = "jobs:alerts"

	// JobLowStockAlert carries a dto.LowStockAlert to the email worker.
	JobLowStockAlert = "low_stock_alert"

	// MaxAttempts is how many times a job runs before it goes to the DLQ.
	MaxAttempts = 3
)

// Job is the envelope stored in every queue.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts,omitempty"`
}

// Handler processes one job payload. A returned error schedules a retry.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Dispatcher enqueues jobs into Redis lists; the pool pops them with BRPOP.
// It satisfies service.EventPublisher.
type Dispatcher struct {
	rdb *redis.Client
	cb  *infra.CircuitBreaker
}

func NewDispatcher(rdb *redis.Client, cb *infra.CircuitBreaker) *Dispatcher {
	if cb == nil {
		cb = infra.NewCircuitBreaker(infra.DefaultCBConfig("redis-dispatcher"))
	}
	return &Dispatcher{rdb: rdb, cb: cb}
}

// Publish enqueues a domain event; the topic becomes the job type.
func (d *Dispatcher) Publish(ctx context.Context, topic string, payload any) error {
	return d.enqueue(ctx, QueueEvents, topic, payload)
}

// EnqueueAlert pushes a low-stock alert for the email worker.
func (d *Dispatcher) EnqueueAlert(ctx context.Context, payload any) error {
	return d.enqueue(ctx, QueueAlerts, JobLowStockAlert, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.cb.Execute(func() error {
		return d.rdb.LPush(ctx, queue, encoded).Err()
	})
}

// Pool consumes QueueEvents and QueueAlerts with a fixed number of workers.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]Handler
	wg       sync.WaitGroup
}

func NewPool(rdb *redis.Client) *Pool {
	return &Pool{rdb: rdb, handlers: make(map[string]Handler)}
}

// Handle registers h for jobs of the given type. Not safe after Start.
func (p *Pool) Handle(jobType string, h Handler) {
	p.handlers[jobType] = h
}

// Start launches numWorkers goroutines. Each blocks on BRPOP, so idle
// workers cost nothing.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

// Wait blocks until every worker has returned after ctx is cancelled.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	queues := []string{QueueEvents, QueueAlerts}
	for {
		if ctx.Err() != nil {
			log.Info().Msgf("worker %d shutting down", id)
			return
		}
		// Blocks up to 5s, then loops to re-check ctx.
		result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				log.Error().Err(err).Int("worker", id).Msg("brpop failed")
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}
		p.process(ctx, result[0], result[1])
	}
}

// process runs one job. Failures are re-queued until MaxAttempts, then the
// job lands in the DLQ. Unknown job types go to the DLQ straight away.
func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		quoted, _ := json.Marshal(raw)
		SendToDLQ(ctx, p.rdb, queue, "", quoted, "malformed job: "+err.Error(), 0)
		metrics.JobsProcessed.WithLabelValues("unknown", "malformed").Inc()
		return
	}

	h, ok := p.handlers[job.Type]
	if !ok {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, "no handler for job type", job.Attempts)
		metrics.JobsProcessed.WithLabelValues(job.Type, "unhandled").Inc()
		return
	}

	job.Attempts++
	log.Debug().Str("type", job.Type).Str("queue", queue).Int("attempt", job.Attempts).Msg("processing job")
	err := h(ctx, job.Payload)
	if err == nil {
		metrics.JobsProcessed.WithLabelValues(job.Type, "ok").Inc()
		return
	}

	if job.Attempts >= MaxAttempts {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		metrics.JobsProcessed.WithLabelValues(job.Type, "dead").Inc()
		return
	}

	log.Warn().Err(err).Str("type", job.Type).Int("attempt", job.Attempts).Msg("job failed, re-queueing")
	metrics.JobsProcessed.WithLabelValues(job.Type, "retry").Inc()
	encoded, mErr := json.Marshal(job)
	if mErr != nil {
		log.Error().Err(mErr).Str("type", job.Type).Msg("failed to re-encode job")
		return
	}
	if pErr := p.rdb.LPush(ctx, queue, encoded).Err(); pErr != nil {
		log.Error().Err(pErr).Str("queue", queue).Msg("failed to re-queue job")
	}
}
