package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"airmon/internal/config"
	"airmon/internal/handlers"
	"airmon/internal/models"
)

// recordingSink collects every event it is handed
type recordingSink struct {
	mu     sync.Mutex
	events []*models.ReadingEvent
}

func (s *recordingSink) Publish(ctx context.Context, event *models.ReadingEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) PublishBatch(ctx context.Context, events []*models.ReadingEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	return nil
}

func (s *recordingSink) snapshot() []*models.ReadingEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.ReadingEvent(nil), s.events...)
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.HTTP.Addr = "127.0.0.1:0"
	cfg.Simulator.Interval = 20 * time.Millisecond
	cfg.Simulator.Seed = 1
	cfg.Fanout.BatchSize = 2
	cfg.Fanout.BatchTimeout = 20 * time.Millisecond
	cfg.ConnectDelay = 10 * time.Millisecond
	return cfg
}

func start(t *testing.T, m *Monitor) (cancel func() error) {
	t.Helper()

	ctx, stop := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- m.Run(ctx) }()

	select {
	case <-m.Ready():
	case err := <-errCh:
		stop()
		t.Fatalf("Run exited early: %v", err)
	case <-time.After(2 * time.Second):
		stop()
		t.Fatal("monitor did not become ready")
	}

	return func() error {
		stop()
		select {
		case err := <-errCh:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("monitor did not shut down")
			return nil
		}
	}
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestNewRejectsBadInterval(t *testing.T) {
	cfg := testConfig()
	cfg.Simulator.Interval = 0
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for zero interval")
	}
}

func TestSettingsSeededFromInterval(t *testing.T) {
	cfg := testConfig()
	cfg.Simulator.Interval = 10 * time.Second
	m, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rec := httptest.NewRecorder()
	handlers.NewRouter(m.api).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("settings status = %d", rec.Code)
	}
	var resp handlers.SettingsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := resp.Settings.Notifications.RefreshInterval; got != 10 {
		t.Errorf("refreshInterval = %d, want 10", got)
	}
	if m.sim.Interval() != 10*time.Second {
		t.Errorf("simulator interval = %v", m.sim.Interval())
	}
}

func TestMonitorRun(t *testing.T) {
	m, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	stop := start(t, m)
	base := "http://" + m.Addr()

	var health map[string]any
	if code := getJSON(t, base+"/health", &health); code != http.StatusOK || health["status"] != "healthy" {
		t.Errorf("health = %d %v", code, health)
	}

	var reading handlers.ReadingResponse
	if code := getJSON(t, base+"/api/reading", &reading); code != http.StatusOK {
		t.Fatalf("reading status = %d", code)
	}

	time.Sleep(150 * time.Millisecond)

	var recent handlers.RecentResponse
	getJSON(t, base+"/api/history/recent?metric=gas&n=100", &recent)
	// Initial reading plus several ticks
	if recent.Stats.Count < 3 {
		t.Errorf("expected history to grow with ticks, got %d points", recent.Stats.Count)
	}

	resp, err := http.Get(base + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics status = %d", resp.StatusCode)
	}

	if err := stop(); err != nil {
		t.Errorf("Run returned error: %v", err)
	}
}

func TestMonitorFansOutReadings(t *testing.T) {
	sink := &recordingSink{}
	m, err := New(testConfig(), WithSink(sink))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	stop := start(t, m)

	time.Sleep(150 * time.Millisecond)
	if err := stop(); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	events := sink.snapshot()
	if len(events) < 3 {
		t.Fatalf("expected readings to reach the sink, got %d", len(events))
	}
	initial := 0
	for _, e := range events {
		if e.Trigger == triggerInitial {
			initial++
		}
		if e.Source != "breathe-easy-sim" || e.ID == "" || e.Alerts == nil {
			t.Errorf("malformed event: %+v", e)
		}
	}
	if initial != 1 {
		t.Errorf("expected exactly one initial reading, got %d", initial)
	}

	stats := m.stats()
	if stats.Worker == nil || stats.Worker.Processed != uint64(len(events)) {
		t.Errorf("worker stats = %+v, sink saw %d", stats.Worker, len(events))
	}
}

func TestMonitorAddrInUse(t *testing.T) {
	first, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	stop := start(t, first)
	defer stop()

	cfg := testConfig()
	cfg.HTTP.Addr = first.Addr()
	second, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := second.Run(context.Background()); err == nil {
		t.Error("expected error binding an address in use")
	}
}
