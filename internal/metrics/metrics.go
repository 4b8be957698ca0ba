package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airmon_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "airmon_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route", "status"},
	)

	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "airmon_http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 6),
		},
		[]string{"method", "route"},
	)

	// Sensor metrics
	SensorValue = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "airmon_sensor_value",
			Help: "Latest simulated sensor value",
		},
		[]string{"field"}, // temperature, humidity, gas_level, dust_level, aqi
	)

	SimulatorTicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airmon_simulator_ticks_total",
			Help: "Total number of simulated readings produced",
		},
		[]string{"trigger"}, // trigger: timer, refresh
	)

	// Alert metrics
	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airmon_alerts_total",
			Help: "Total number of threshold alerts raised",
		},
		[]string{"field"},
	)

	AlertsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "airmon_alerts_active",
			Help: "Number of alerts on the notification board",
		},
	)

	// Device connect stub
	DeviceConnectTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airmon_device_connect_total",
			Help: "Total number of simulated device connect attempts",
		},
		[]string{"status"}, // status: success, error, cancelled
	)

	// Fan-out metrics
	FanoutQueueSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "airmon_fanout_queue_size",
			Help: "Current size of the fan-out queue",
		},
	)

	FanoutQueueCapacity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "airmon_fanout_queue_capacity",
			Help: "Capacity of the fan-out queue",
		},
	)

	FanoutDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "airmon_fanout_dropped_total",
			Help: "Total number of reading events dropped because the queue was full",
		},
	)

	WorkerProcessedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "airmon_worker_processed_total",
			Help: "Total number of events processed by workers",
		},
	)

	WorkerFailedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "airmon_worker_failed_total",
			Help: "Total number of events failed in workers",
		},
	)

	WorkerBatchPublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "airmon_worker_batch_publish_duration_seconds",
			Help:    "Time taken to publish a batch to all sinks",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// Kafka producer metrics
	KafkaPublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airmon_kafka_publish_total",
			Help: "Total number of messages published to Kafka",
		},
		[]string{"status"}, // status: success, failed
	)

	KafkaPublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "airmon_kafka_publish_duration_seconds",
			Help:    "Time taken to publish to Kafka",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	KafkaPublishRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "airmon_kafka_publish_retries_total",
			Help: "Total number of Kafka publish retries",
		},
	)

	KafkaBytesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "airmon_kafka_bytes_written_total",
			Help: "Total bytes written to Kafka",
		},
	)

	// MQTT publisher metrics
	MQTTPublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airmon_mqtt_publish_total",
			Help: "Total number of messages published to MQTT",
		},
		[]string{"status"},
	)

	// Panic recovery
	PanicsRecovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airmon_panics_recovered_total",
			Help: "Total number of panics recovered",
		},
		[]string{"component"},
	)
)
