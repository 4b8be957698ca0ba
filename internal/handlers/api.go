package handlers

import (
	"math/rand/v2"
	"time"

	"airmon/internal/alerts"
	"airmon/internal/device"
	"airmon/internal/history"
	"airmon/internal/models"
	"airmon/internal/settings"
	"airmon/internal/simulator"
)

// API serves the dashboard state over JSON
type API struct {
	source string

	sim       *simulator.Simulator
	evaluator *alerts.Evaluator
	board     *alerts.Board
	history   *history.Store
	settings  *settings.Store
	device    *device.Connector

	// Synthetic series are generated once, like a page load
	series map[models.Field]history.Series
	trend  []history.HourlyPoint

	maxBodySize int64
}

// Config holds the collaborators of the API
type Config struct {
	Source      string
	Simulator   *simulator.Simulator
	Evaluator   *alerts.Evaluator
	Board       *alerts.Board
	History     *history.Store
	Settings    *settings.Store
	Device      *device.Connector
	Seed        uint64
	Now         time.Time
	MaxBodySize int64
}

// New builds the API and generates the synthetic history
func New(cfg Config) *API {
	maxBodySize := cfg.MaxBodySize
	if maxBodySize == 0 {
		maxBodySize = 64 * 1024
	}
	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(now.UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, ^seed))

	series := make(map[models.Field]history.Series, len(models.Fields))
	for _, f := range models.Fields {
		series[f] = history.Daily(f, history.SeriesDays, now, rng)
	}

	return &API{
		source:      cfg.Source,
		sim:         cfg.Simulator,
		evaluator:   cfg.Evaluator,
		board:       cfg.Board,
		history:     cfg.History,
		settings:    cfg.Settings,
		device:      cfg.Device,
		series:      series,
		trend:       history.TemperatureTrend(now, rng),
		maxBodySize: maxBodySize,
	}
}

// applySettings pushes saved thresholds and the refresh interval to the live components
func (a *API) applySettings(s settings.Settings) error {
	a.evaluator.SetThresholds(s.Thresholds)
	return a.sim.SetInterval(s.RefreshEvery())
}
