package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"

	"airmon/internal/config"
	"airmon/internal/logger"
	"airmon/internal/metrics"
	"airmon/internal/models"
)

// Producer errors
var (
	ErrProducerClosed  = errors.New("producer is closed")
	ErrSerializeFailed = errors.New("failed to serialize message")
	ErrNoBroker        = errors.New("no kafka broker reachable")
)

// Producer publishes reading events to Kafka. Writers are pooled so the
// fan-out workers can publish concurrently; retries happen here, not in
// the writers.
type Producer struct {
	brokers []string
	topic   string
	cfg     config.ProducerConfig
	writers []*kafka.Writer
	pool    chan *kafka.Writer
	closed  atomic.Bool

	sent   atomic.Uint64
	failed atomic.Uint64
	bytes  atomic.Uint64
}

// NewProducer creates a producer for topic on the given brokers
func NewProducer(brokers []string, topic string, cfg config.ProducerConfig) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("at least one broker is required")
	}
	if topic == "" {
		return nil, errors.New("topic is required")
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	p := &Producer{
		brokers: brokers,
		topic:   topic,
		cfg:     cfg,
		writers: make([]*kafka.Writer, cfg.PoolSize),
		pool:    make(chan *kafka.Writer, cfg.PoolSize),
	}
	for i := range p.writers {
		w := newWriter(brokers, topic, cfg)
		p.writers[i] = w
		p.pool <- w
	}
	return p, nil
}

// newWriter builds a synchronous writer that makes a single attempt per call
func newWriter(brokers []string, topic string, cfg config.ProducerConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:  getCompression(cfg.Compression),
		MaxAttempts:  1,
	}
}

// getCompression maps a codec name to kafka-go's codec, None when unknown
func getCompression(name string) compress.Compression {
	switch name {
	case "gzip":
		return compress.Gzip
	case "snappy":
		return compress.Snappy
	case "lz4":
		return compress.Lz4
	case "zstd":
		return compress.Zstd
	default:
		return compress.None
	}
}

// toMessage serializes a reading event, keyed by source so one source stays on one partition
func toMessage(event *models.ReadingEvent) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("%w: %v", ErrSerializeFailed, err)
	}

	return kafka.Message{
		Key:   []byte(event.PartitionKey),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "source", Value: []byte(event.Source)},
			{Key: "trigger", Value: []byte(event.Trigger)},
			{Key: "alert_count", Value: []byte(strconv.Itoa(len(event.Alerts)))},
		},
		Time: event.ProducedAt,
	}, nil
}

// Publish sends one reading event
func (p *Producer) Publish(ctx context.Context, event *models.ReadingEvent) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}

	msg, err := toMessage(event)
	if err != nil {
		p.failed.Add(1)
		metrics.KafkaPublishTotal.WithLabelValues("failed").Inc()
		return err
	}
	return p.send(ctx, []kafka.Message{msg})
}

// PublishBatch sends events in one write. Events that fail to serialize are
// logged and skipped.
func (p *Producer) PublishBatch(ctx context.Context, events []*models.ReadingEvent) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		msg, err := toMessage(event)
		if err != nil {
			log := logger.WithComponent("kafka_producer")
			log.Error().Err(err).Str("event_id", event.ID).Msg("dropping unserializable reading event")
			p.failed.Add(1)
			metrics.KafkaPublishTotal.WithLabelValues("failed").Inc()
			continue
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return nil
	}
	return p.send(ctx, msgs)
}

// send borrows a writer and writes msgs, retrying with exponential backoff
// up to cfg.MaxRetries times. Counters and metrics are updated once per call.
func (p *Producer) send(ctx context.Context, msgs []kafka.Message) error {
	var w *kafka.Writer
	select {
	case w = <-p.pool:
		defer func() { p.pool <- w }()
	case <-ctx.Done():
		p.fail(len(msgs))
		return ctx.Err()
	}

	log := logger.WithComponent("kafka_producer")
	start := time.Now()
	err := p.writeWithRetry(ctx, w, msgs)
	took := time.Since(start)
	metrics.KafkaPublishDuration.Observe(took.Seconds())

	if err != nil {
		log.Error().
			Err(err).
			Int("messages", len(msgs)).
			Dur("duration", took).
			Msg("kafka publish failed")
		p.fail(len(msgs))
		return err
	}

	var n uint64
	for _, m := range msgs {
		n += uint64(len(m.Value))
	}
	p.sent.Add(uint64(len(msgs)))
	p.bytes.Add(n)
	metrics.KafkaPublishTotal.WithLabelValues("success").Add(float64(len(msgs)))
	metrics.KafkaBytesWritten.Add(float64(n))

	log.Debug().Int("messages", len(msgs)).Dur("duration", took).Msg("published to kafka")
	return nil
}

func (p *Producer) writeWithRetry(ctx context.Context, w *kafka.Writer, msgs []kafka.Message) error {
	backoff := p.cfg.RetryBackoff
	attempts := p.cfg.MaxRetries + 1

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = w.WriteMessages(ctx, msgs...); err == nil {
			return nil
		}
		if ctx.Err() != nil || attempt == attempts {
			break
		}

		log := logger.WithComponent("kafka_producer")
		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Msg("kafka write failed, retrying")
		metrics.KafkaPublishRetries.Inc()

		t := time.NewTimer(backoff)
		select {
		case <-t.C:
			backoff *= 2
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}
	}
	return fmt.Errorf("kafka write failed after %d attempts: %w", attempts, err)
}

func (p *Producer) fail(n int) {
	p.failed.Add(uint64(n))
	metrics.KafkaPublishTotal.WithLabelValues("failed").Add(float64(n))
}

// HealthCheck dials the brokers in turn and reads the topic's partitions.
// It succeeds on the first broker that answers within ctx.
func (p *Producer) HealthCheck(ctx context.Context) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}

	var errs []error
	for _, broker := range p.brokers {
		err := p.checkBroker(ctx, broker)
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", broker, err))
		if ctx.Err() != nil {
			break
		}
	}
	return fmt.Errorf("%w: %w", ErrNoBroker, errors.Join(errs...))
}

func (p *Producer) checkBroker(ctx context.Context, broker string) error {
	conn, err := kafka.DialContext(ctx, "tcp", broker)
	if err != nil {
		return err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return err
		}
	}
	partitions, err := conn.ReadPartitions(p.topic)
	if err != nil {
		return err
	}
	if len(partitions) == 0 {
		return fmt.Errorf("topic %q has no partitions", p.topic)
	}
	return nil
}

// Close closes every pooled writer. It is safe to call more than once.
func (p *Producer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}

	var errs []error
	for _, w := range p.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ProducerStats holds producer counters
type ProducerStats struct {
	MessagesSent   uint64 `json:"messages_sent"`
	MessagesFailed uint64 `json:"messages_failed"`
	BytesWritten   uint64 `json:"bytes_written"`
}

// Stats returns producer counters
func (p *Producer) Stats() ProducerStats {
	return ProducerStats{
		MessagesSent:   p.sent.Load(),
		MessagesFailed: p.failed.Load(),
		BytesWritten:   p.bytes.Load(),
	}
}
