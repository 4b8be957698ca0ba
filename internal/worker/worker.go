package worker

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"airmon/internal/logger"
	"airmon/internal/metrics"
	"airmon/internal/models"
)

// Publisher defines the interface for publishing reading events
type Publisher interface {
	Publish(ctx context.Context, event *models.ReadingEvent) error
	PublishBatch(ctx context.Context, events []*models.ReadingEvent) error
}

// Fanout publishes to every sink; a batch fails if any sink fails.
type Fanout []Publisher

// Publish sends the event to every sink
func (f Fanout) Publish(ctx context.Context, event *models.ReadingEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublishBatch sends the batch to every sink
func (f Fanout) PublishBatch(ctx context.Context, events []*models.ReadingEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.PublishBatch(ctx, events); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Pool manages a pool of workers that drain reading events and publish them in batches
type Pool struct {
	publisher    Publisher
	eventChan    chan *models.ReadingEvent
	workers      int
	batchSize    int
	batchTimeout time.Duration

	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once

	processed atomic.Uint64
	failed    atomic.Uint64
}

// Config holds worker pool configuration
type Config struct {
	Publisher    Publisher
	EventChan    chan *models.ReadingEvent
	Workers      int
	BatchSize    int
	BatchTimeout time.Duration
}

// NewPool creates a new worker pool
func NewPool(cfg Config) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		publisher:    cfg.Publisher,
		eventChan:    cfg.EventChan,
		workers:      cfg.Workers,
		batchSize:    cfg.BatchSize,
		batchTimeout: cfg.BatchTimeout,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start begins processing events
func (p *Pool) Start() {
	log := logger.WithComponent("worker_pool")
	log.Info().
		Int("workers", p.workers).
		Int("batch_size", p.batchSize).
		Dur("batch_timeout", p.batchTimeout).
		Msg("starting worker pool")

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop stops all workers, flushing what each has batched. Safe to call twice.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		log := logger.WithComponent("worker_pool")
		log.Info().Msg("stopping worker pool")
		p.cancel()
		p.wg.Wait()
		log.Info().Msg("worker pool stopped")
	})
}

// Wait blocks until every worker has exited. Workers exit once the event
// channel is closed and drained, or after Stop.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// worker drains events from the channel
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	log := logger.WithComponent("worker").With().Int("worker_id", id).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("worker panic recovered")
			metrics.PanicsRecovered.WithLabelValues("worker").Inc()
		}
	}()

	log.Debug().Msg("worker started")
	defer log.Debug().Msg("worker stopped")

	batch := make([]*models.ReadingEvent, 0, p.batchSize)
	timer := time.NewTimer(p.batchTimeout)
	defer timer.Stop()

	for {
		select {
		case <-p.ctx.Done():
			p.publishBatch(batch)
			return

		case event, ok := <-p.eventChan:
			if !ok {
				p.publishBatch(batch)
				return
			}

			batch = append(batch, event)
			if len(batch) >= p.batchSize {
				p.publishBatch(batch)
				batch = batch[:0]
				timer.Reset(p.batchTimeout)
			}

		case <-timer.C:
			if len(batch) > 0 {
				p.publishBatch(batch)
				batch = batch[:0]
			}
			timer.Reset(p.batchTimeout)
		}
	}
}

// publishBatch publishes a batch, falling back to one-by-one on failure
func (p *Pool) publishBatch(batch []*models.ReadingEvent) {
	if len(batch) == 0 {
		return
	}

	log := logger.WithComponent("worker")
	start := time.Now()

	// Detached from p.ctx so the final flush during Stop still gets a chance
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := p.publisher.PublishBatch(ctx, batch)
	duration := time.Since(start)
	metrics.WorkerBatchPublishDuration.Observe(duration.Seconds())

	if err == nil {
		log.Debug().
			Int("batch_size", len(batch)).
			Dur("duration", duration).
			Msg("batch published")
		p.processed.Add(uint64(len(batch)))
		metrics.WorkerProcessedTotal.Add(float64(len(batch)))
		return
	}

	log.Error().
		Err(err).
		Int("batch_size", len(batch)).
		Dur("duration", duration).
		Msg("failed to publish batch")
	p.publishIndividually(batch)
}

// publishIndividually retries each event separately
func (p *Pool) publishIndividually(batch []*models.ReadingEvent) {
	log := logger.WithComponent("worker")
	log.Warn().Int("count", len(batch)).Msg("attempting individual publish for failed batch")

	for _, event := range batch {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := p.publisher.Publish(ctx, event)
		cancel()

		if err != nil {
			log.Error().
				Err(err).
				Str("event_id", event.ID).
				Msg("failed to publish reading event")
			p.failed.Add(1)
			metrics.WorkerFailedTotal.Inc()
			continue
		}
		p.processed.Add(1)
		metrics.WorkerProcessedTotal.Inc()
	}
}

// Stats returns worker pool statistics
func (p *Pool) Stats() Stats {
	return Stats{
		Processed: p.processed.Load(),
		Failed:    p.failed.Load(),
	}
}

// Stats holds worker pool metrics
type Stats struct {
	Processed uint64 `json:"processed"`
	Failed    uint64 `json:"failed"`
}
