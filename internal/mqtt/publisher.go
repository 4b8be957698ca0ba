package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	paho "github.com/eclipse/paho.mqtt.golang"

	"airmon/internal/config"
	"airmon/internal/logger"
	"airmon/internal/metrics"
	"airmon/internal/models"
)

// Publisher errors
var (
	ErrNotConnected   = errors.New("mqtt client not connected")
	ErrConnectTimeout = errors.New("mqtt connect timeout")
	ErrClosed         = errors.New("mqtt publisher is closed")
)

// Client is the subset of the paho client the publisher needs
type Client interface {
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// Publisher sends reading events to an MQTT topic as JSON.
type Publisher struct {
	client Client
	topic  string
	qos    byte
	closed atomic.Bool

	published atomic.Uint64
	failed    atomic.Uint64
}

// Connect dials the broker and returns a ready publisher
func Connect(cfg config.MQTTConfig) (*Publisher, error) {
	log := logger.WithComponent("mqtt")

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warn().Err(err).Msg("mqtt connection lost")
		}).
		SetOnConnectHandler(func(_ paho.Client) {
			log.Info().Str("broker", cfg.Broker).Msg("mqtt connected")
		})

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Broker, ErrConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Broker, err)
	}

	return NewPublisher(client, cfg.Topic, cfg.QoS), nil
}

// NewPublisher wraps an already connected client
func NewPublisher(client Client, topic string, qos byte) *Publisher {
	return &Publisher{client: client, topic: topic, qos: qos}
}

// Publish sends one event and waits for the broker acknowledgement or ctx
func (p *Publisher) Publish(ctx context.Context, event *models.ReadingEvent) error {
	if p.closed.Load() {
		return ErrClosed
	}
	if !p.client.IsConnected() {
		p.fail()
		return ErrNotConnected
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.fail()
		return fmt.Errorf("marshal reading event: %w", err)
	}

	token := p.client.Publish(p.topic, p.qos, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		p.fail()
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		p.fail()
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}

	p.published.Add(1)
	metrics.MQTTPublishTotal.WithLabelValues("success").Inc()
	return nil
}

// PublishBatch publishes events one by one; MQTT has no batch frame
func (p *Publisher) PublishBatch(ctx context.Context, events []*models.ReadingEvent) error {
	var errs []error
	for _, event := range events {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Publisher) fail() {
	p.failed.Add(1)
	metrics.MQTTPublishTotal.WithLabelValues("failed").Inc()
}

// Connected reports whether the publisher is open and the client connected
func (p *Publisher) Connected() bool {
	return !p.closed.Load() && p.client.IsConnected()
}

// Stats returns published and failed counts
func (p *Publisher) Stats() (published, failed uint64) {
	return p.published.Load(), p.failed.Load()
}

// Close disconnects from the broker, allowing in-flight work 250ms
func (p *Publisher) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	p.client.Disconnect(250)
	return nil
}
