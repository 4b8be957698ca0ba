package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the monitor.
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	HTTP      HTTPConfig
	Simulator SimulatorConfig
	Kafka     KafkaConfig
	MQTT      MQTTConfig
	Fanout    FanoutConfig

	// Number of readings kept in the in-memory history ring buffer
	HistorySize int `split_words:"true" default:"720"`

	// Simulated device connect latency
	ConnectDelay time.Duration `split_words:"true" default:"2s"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr           string        `default:":8080"`
	ReadTimeout    time.Duration `split_words:"true" default:"10s"`
	WriteTimeout   time.Duration `split_words:"true" default:"10s"`
	IdleTimeout    time.Duration `split_words:"true" default:"60s"`
	AllowedOrigins []string      `split_words:"true" default:"*"`
}

// SimulatorConfig configures the reading simulator.
type SimulatorConfig struct {
	Interval time.Duration `default:"5s"`
	Source   string        `default:"breathe-easy-sim"`
	// Zero means seed from the clock
	Seed uint64
}

// KafkaConfig configures the optional reading event producer.
type KafkaConfig struct {
	Enabled  bool
	Brokers  []string `default:"localhost:9092"`
	Topic    string   `default:"airmon.readings"`
	Producer ProducerConfig
}

// ProducerConfig tunes the kafka writer pool.
type ProducerConfig struct {
	PoolSize     int           `split_words:"true" default:"2"`
	BatchSize    int           `split_words:"true" default:"50"`
	BatchTimeout time.Duration `split_words:"true" default:"100ms"`
	WriteTimeout time.Duration `split_words:"true" default:"10s"`
	RequiredAcks int           `split_words:"true" default:"1"`
	Compression  string        `default:"snappy"`
	MaxRetries   int           `split_words:"true" default:"3"`
	RetryBackoff time.Duration `split_words:"true" default:"100ms"`
}

// MQTTConfig configures the optional MQTT publisher.
type MQTTConfig struct {
	Enabled        bool
	Broker         string        `default:"tcp://localhost:1883"`
	ClientID       string        `split_words:"true" default:"airmon"`
	Topic          string        `default:"airmon/readings"`
	QoS            byte          `default:"0"`
	ConnectTimeout time.Duration `split_words:"true" default:"5s"`
}

// FanoutConfig configures the worker pool between the simulator and the sinks.
type FanoutConfig struct {
	QueueSize    int           `split_words:"true" default:"256"`
	Workers      int           `default:"2"`
	BatchSize    int           `split_words:"true" default:"10"`
	BatchTimeout time.Duration `split_words:"true" default:"1s"`
}

// Default returns a sensible default config for local dev.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		HTTP: HTTPConfig{
			Addr:           ":8080",
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    60 * time.Second,
			AllowedOrigins: []string{"*"},
		},
		Simulator: SimulatorConfig{
			Interval: 5 * time.Second,
			Source:   "breathe-easy-sim",
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topic:   "airmon.readings",
			Producer: ProducerConfig{
				PoolSize:     2,
				BatchSize:    50,
				BatchTimeout: 100 * time.Millisecond,
				WriteTimeout: 10 * time.Second,
				RequiredAcks: 1,
				Compression:  "snappy",
				MaxRetries:   3,
				RetryBackoff: 100 * time.Millisecond,
			},
		},
		MQTT: MQTTConfig{
			Broker:         "tcp://localhost:1883",
			ClientID:       "airmon",
			Topic:          "airmon/readings",
			ConnectTimeout: 5 * time.Second,
		},
		Fanout: FanoutConfig{
			QueueSize:    256,
			Workers:      2,
			BatchSize:    10,
			BatchTimeout: time.Second,
		},
		HistorySize:  720,
		ConnectDelay: 2 * time.Second,
	}
}

// Load reads configuration from AIRMON_* environment variables on top of the defaults.
func Load() (*Config, error) {
	cfg := Default()
	if err := envconfig.Process("AIRMON", cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Simulator.Interval <= 0 {
		return nil, fmt.Errorf("config: simulator interval must be positive, got %s", cfg.Simulator.Interval)
	}
	return cfg, nil
}
