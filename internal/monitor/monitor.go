package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	ghandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"airmon/internal/alerts"
	"airmon/internal/config"
	"airmon/internal/device"
	"airmon/internal/handlers"
	"airmon/internal/history"
	"airmon/internal/kafka"
	"airmon/internal/logger"
	"airmon/internal/metrics"
	"airmon/internal/middleware"
	"airmon/internal/models"
	"airmon/internal/mqtt"
	"airmon/internal/settings"
	"airmon/internal/simulator"
	"airmon/internal/worker"
)

const triggerInitial = "initial"

// Monitor is the high-level coordinator: it drives the simulator, evaluates
// alerts, records history, fans readings out to sinks and serves the API.
type Monitor struct {
	cfg *config.Config

	sim       *simulator.Simulator
	evaluator *alerts.Evaluator
	board     *alerts.Board
	history   *history.Store
	settings  *settings.Store
	device    *device.Connector
	api       *handlers.API

	producer   *kafka.Producer
	mqtt       *mqtt.Publisher
	sinks      []worker.Publisher
	workerPool *worker.Pool
	eventChan  chan *models.ReadingEvent

	httpServer *http.Server
	listener   net.Listener
	ready      chan struct{}

	loops sync.WaitGroup // simulator and consume loop
	wg    sync.WaitGroup // HTTP server and stats reporter
}

// Option customises a Monitor
type Option func(*Monitor)

// WithSink adds a publisher that receives every reading event alongside the configured brokers
func WithSink(p worker.Publisher) Option {
	return func(m *Monitor) {
		m.sinks = append(m.sinks, p)
	}
}

// New constructs a Monitor with given config.
func New(cfg *config.Config, opts ...Option) (*Monitor, error) {
	sim, err := simulator.New(simulator.Config{
		Initial:  models.InitialReading(),
		Deltas:   simulator.DefaultDeltas(),
		Interval: cfg.Simulator.Interval,
		Seed:     cfg.Simulator.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create simulator: %w", err)
	}

	m := &Monitor{
		cfg:       cfg,
		sim:       sim,
		evaluator: alerts.NewEvaluator(alerts.DefaultThresholds()),
		board:     alerts.NewBoard(),
		history:   history.NewStore(cfg.HistorySize),
		settings:  settings.NewStore(settings.Defaults().WithRefreshEvery(cfg.Simulator.Interval)),
		device:    device.NewConnector(cfg.ConnectDelay),
		ready:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.api = handlers.New(handlers.Config{
		Source:    cfg.Simulator.Source,
		Simulator: m.sim,
		Evaluator: m.evaluator,
		Board:     m.board,
		History:   m.history,
		Settings:  m.settings,
		Device:    m.device,
		Seed:      cfg.Simulator.Seed,
	})
	return m, nil
}

// Ready is closed once the HTTP listener is bound
func (m *Monitor) Ready() <-chan struct{} {
	return m.ready
}

// Addr returns the bound HTTP address, empty before Ready
func (m *Monitor) Addr() string {
	if m.listener == nil {
		return ""
	}
	return m.listener.Addr().String()
}

// Run starts background goroutines and blocks until context cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	log := logger.WithComponent("monitor")
	log.Info().
		Str("source", m.cfg.Simulator.Source).
		Dur("interval", m.sim.Interval()).
		Msg("monitor starting")

	if err := m.initSinks(); err != nil {
		log.Error().Err(err).Msg("failed to initialize sinks")
		m.closeSinks()
		return fmt.Errorf("failed to initialize sinks: %w", err)
	}
	if m.workerPool != nil {
		m.workerPool.Start()
	}

	if err := m.initHTTPServer(); err != nil {
		log.Error().Err(err).Msg("failed to initialize HTTP server")
		m.stopPool()
		m.closeSinks()
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		log.Info().Str("addr", m.Addr()).Msg("starting HTTP server")
		if err := m.httpServer.Serve(m.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()
	close(m.ready)

	// The first reading is on screen before the first tick
	reading, at := m.sim.Latest()
	m.handleUpdate(ctx, simulator.Update{Reading: reading, Trigger: triggerInitial, At: at})

	updates := m.sim.Subscribe(16)
	m.loops.Add(2)
	go func() {
		defer m.loops.Done()
		m.sim.Run(ctx)
	}()
	go func() {
		defer m.loops.Done()
		m.consume(ctx, updates)
	}()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.reportStats(ctx)
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	return m.shutdown()
}

// initSinks connects the enabled brokers and starts the fan-out pool
func (m *Monitor) initSinks() error {
	log := logger.WithComponent("monitor")

	if m.cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(m.cfg.Kafka.Brokers, m.cfg.Kafka.Topic, m.cfg.Kafka.Producer)
		if err != nil {
			return err
		}
		m.producer = producer
		m.sinks = append(m.sinks, producer)
		log.Info().
			Strs("brokers", m.cfg.Kafka.Brokers).
			Str("topic", m.cfg.Kafka.Topic).
			Msg("kafka producer initialized")
	}

	if m.cfg.MQTT.Enabled {
		pub, err := mqtt.Connect(m.cfg.MQTT)
		if err != nil {
			return err
		}
		m.mqtt = pub
		m.sinks = append(m.sinks, pub)
		log.Info().
			Str("broker", m.cfg.MQTT.Broker).
			Str("topic", m.cfg.MQTT.Topic).
			Msg("mqtt publisher initialized")
	}

	if len(m.sinks) == 0 {
		log.Info().Msg("no sinks configured, readings stay local")
		return nil
	}

	m.eventChan = make(chan *models.ReadingEvent, m.cfg.Fanout.QueueSize)
	metrics.FanoutQueueCapacity.Set(float64(cap(m.eventChan)))

	m.workerPool = worker.NewPool(worker.Config{
		Publisher:    worker.Fanout(m.sinks),
		EventChan:    m.eventChan,
		Workers:      m.cfg.Fanout.Workers,
		BatchSize:    m.cfg.Fanout.BatchSize,
		BatchTimeout: m.cfg.Fanout.BatchTimeout,
	})
	log.Info().Int("sinks", len(m.sinks)).Int("workers", m.cfg.Fanout.Workers).Msg("worker pool initialized")
	return nil
}

// initHTTPServer binds the listener and builds the router
func (m *Monitor) initHTTPServer() error {
	router := mux.NewRouter()
	router.Use(middleware.Recovery, middleware.Logging)

	m.api.Register(router)
	router.HandleFunc("/health", m.healthHandler).Methods(http.MethodGet)
	router.HandleFunc("/stats", m.statsHandler).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler())

	cors := ghandlers.CORS(
		ghandlers.AllowedOrigins(m.cfg.HTTP.AllowedOrigins),
		ghandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		ghandlers.AllowedHeaders([]string{"Content-Type", middleware.RequestIDHeader}),
		ghandlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
	)

	ln, err := net.Listen("tcp", m.cfg.HTTP.Addr)
	if err != nil {
		return err
	}
	m.listener = ln

	m.httpServer = &http.Server{
		Handler:      cors(router),
		ReadTimeout:  m.cfg.HTTP.ReadTimeout,
		WriteTimeout: m.cfg.HTTP.WriteTimeout,
		IdleTimeout:  m.cfg.HTTP.IdleTimeout,
	}
	return nil
}

// consume handles every simulator update until ctx is cancelled
func (m *Monitor) consume(ctx context.Context, updates <-chan simulator.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case u := <-updates:
			m.handleUpdate(ctx, u)
		}
	}
}

// handleUpdate evaluates a reading, updates the board and history, and queues it for the sinks
func (m *Monitor) handleUpdate(ctx context.Context, u simulator.Update) {
	log := logger.WithComponent("monitor")

	fired, err := m.evaluator.Evaluate(ctx, u.Reading)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("alert evaluation failed")
		}
		return
	}
	m.board.Update(fired)
	m.history.Record(u.Reading, u.At)

	if m.eventChan == nil {
		return
	}
	event := models.NewReadingEvent(m.cfg.Simulator.Source, u.Reading, fired, u.At).WithTrigger(u.Trigger)
	select {
	case m.eventChan <- event:
	default:
		metrics.FanoutDroppedTotal.Inc()
		log.Warn().Str("event_id", event.ID).Msg("fan-out queue full, dropping reading event")
	}
}

// shutdown performs graceful shutdown
func (m *Monitor) shutdown() error {
	log := logger.WithComponent("monitor")
	log.Info().Msg("initiating graceful shutdown")

	// 1. Stop accepting new HTTP requests
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info().Msg("stopping HTTP server")
	if err := m.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Wait for the producers of the event channel
	m.loops.Wait()

	// 3. Close the event channel and let the workers drain it (with timeout)
	if m.workerPool != nil {
		log.Info().Msg("closing event channel")
		close(m.eventChan)

		done := make(chan struct{})
		go func() {
			m.workerPool.Wait()
			close(done)
		}()

		select {
		case <-done:
			log.Info().Msg("workers drained gracefully")
		case <-time.After(15 * time.Second):
			log.Warn().Msg("worker drain timeout - forcing stop")
		}
		m.stopPool()
	}

	// 4. Close sinks
	m.closeSinks()
	if err := m.evaluator.Close(); err != nil {
		log.Error().Err(err).Msg("alert engine close error")
	}

	// 5. Wait for all goroutines
	m.wg.Wait()

	log.Info().Msg("monitor stopped gracefully")
	return nil
}

func (m *Monitor) stopPool() {
	if m.workerPool != nil {
		m.workerPool.Stop()
	}
}

func (m *Monitor) closeSinks() {
	log := logger.WithComponent("monitor")
	if m.producer != nil {
		log.Info().Msg("closing kafka producer")
		if err := m.producer.Close(); err != nil {
			log.Error().Err(err).Msg("producer close error")
		}
	}
	if m.mqtt != nil {
		log.Info().Msg("closing mqtt publisher")
		if err := m.mqtt.Close(); err != nil {
			log.Error().Err(err).Msg("mqtt close error")
		}
	}
}

// reportStats periodically logs statistics
func (m *Monitor) reportStats(ctx context.Context) {
	log := logger.WithComponent("monitor")
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := m.stats()
			metrics.FanoutQueueSize.Set(float64(s.Queue.Buffered))

			reading, _ := m.sim.Latest()
			ev := log.Info().
				Int("aqi", reading.AirQualityIndex).
				Int("alerts_active", len(m.board.Snapshot().Alerts)).
				Int("queue_size", s.Queue.Buffered)
			if s.Worker != nil {
				ev = ev.Uint64("worker_processed", s.Worker.Processed).Uint64("worker_failed", s.Worker.Failed)
			}
			if s.Kafka != nil {
				ev = ev.Uint64("producer_sent", s.Kafka.MessagesSent).
					Uint64("producer_failed", s.Kafka.MessagesFailed).
					Uint64("producer_bytes", s.Kafka.BytesWritten)
			}
			if s.MQTT != nil {
				ev = ev.Uint64("mqtt_published", s.MQTT.Published).Uint64("mqtt_failed", s.MQTT.Failed)
			}
			ev.Msg("stats")
		}
	}
}

// Stats is the body of the /stats endpoint
type Stats struct {
	Worker *worker.Stats        `json:"worker,omitempty"`
	Kafka  *kafka.ProducerStats `json:"kafka,omitempty"`
	MQTT   *MQTTStats           `json:"mqtt,omitempty"`
	Queue  QueueStats           `json:"queue"`
}

// MQTTStats holds publisher counters
type MQTTStats struct {
	Published uint64 `json:"published"`
	Failed    uint64 `json:"failed"`
}

// QueueStats describes the fan-out channel
type QueueStats struct {
	Buffered int `json:"buffered"`
	Capacity int `json:"capacity"`
}

func (m *Monitor) stats() Stats {
	var s Stats
	if m.workerPool != nil {
		ws := m.workerPool.Stats()
		s.Worker = &ws
	}
	if m.producer != nil {
		ps := m.producer.Stats()
		s.Kafka = &ps
	}
	if m.mqtt != nil {
		pub, failed := m.mqtt.Stats()
		s.MQTT = &MQTTStats{Published: pub, Failed: failed}
	}
	if m.eventChan != nil {
		s.Queue = QueueStats{Buffered: len(m.eventChan), Capacity: cap(m.eventChan)}
	}
	return s
}

// healthHandler handles health check requests
func (m *Monitor) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	sinks := map[string]string{"kafka": "disabled", "mqtt": "disabled"}
	status, code := "healthy", http.StatusOK

	if m.producer != nil {
		sinks["kafka"] = "ok"
		if err := m.producer.HealthCheck(ctx); err != nil {
			sinks["kafka"] = err.Error()
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
	}
	if m.mqtt != nil {
		sinks["mqtt"] = "ok"
		if !m.mqtt.Connected() {
			sinks["mqtt"] = mqtt.ErrNotConnected.Error()
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"sinks":     sinks,
	})
}

// statsHandler returns current statistics
func (m *Monitor) statsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(m.stats())
}
