// Package simulator produces synthetic air-quality readings by applying a
// small bounded random delta to the previous reading on a fixed timer.
package simulator

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"airmon/internal/logger"
	"airmon/internal/metrics"
	"airmon/internal/models"
)

// Triggers recorded on each Update
const (
	TriggerTimer   = "timer"
	TriggerRefresh = "refresh"
)

// ErrInvalidInterval is returned for non-positive tick intervals
var ErrInvalidInterval = errors.New("simulator interval must be positive")

// Range is a half-open interval [Min, Max) a delta is drawn from.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Bound is the largest absolute delta the range can produce
func (r Range) Bound() float64 {
	return math.Max(math.Abs(r.Min), math.Abs(r.Max))
}

func (r Range) draw(rng *rand.Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// Deltas holds the per-field delta ranges.
type Deltas struct {
	Temperature     Range `json:"temperature"`
	Humidity        Range `json:"humidity"`
	GasLevel        Range `json:"gasLevel"`
	DustLevel       Range `json:"dustLevel"`
	AirQualityIndex Range `json:"airQualityIndex"`
}

// DefaultDeltas mirrors the drift of the dashboard's simulated sensors.
func DefaultDeltas() Deltas {
	return Deltas{
		Temperature:     Range{Min: -1, Max: 1},
		Humidity:        Range{Min: -2, Max: 3},
		GasLevel:        Range{Min: -25, Max: 25},
		DustLevel:       Range{Min: -2, Max: 3},
		AirQualityIndex: Range{Min: -5, Max: 5},
	}
}

// For returns the range of a field
func (d Deltas) For(f models.Field) Range {
	switch f {
	case models.FieldTemperature:
		return d.Temperature
	case models.FieldHumidity:
		return d.Humidity
	case models.FieldGas:
		return d.GasLevel
	case models.FieldDust:
		return d.DustLevel
	default:
		return d.AirQualityIndex
	}
}

// Next returns r with every field moved by a uniform draw from its range.
// Float fields are rounded to one decimal, gas and AQI to integers. No clamping.
func Next(r models.SensorReading, d Deltas, rng *rand.Rand) models.SensorReading {
	return models.SensorReading{
		Temperature:     round1(r.Temperature + d.Temperature.draw(rng)),
		Humidity:        round1(r.Humidity + d.Humidity.draw(rng)),
		GasLevel:        int(math.Round(float64(r.GasLevel) + d.GasLevel.draw(rng))),
		DustLevel:       round1(r.DustLevel + d.DustLevel.draw(rng)),
		AirQualityIndex: int(math.Round(float64(r.AirQualityIndex) + d.AirQualityIndex.draw(rng))),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Update is one produced reading
type Update struct {
	Reading models.SensorReading
	Trigger string
	At      time.Time
}

// Config holds simulator configuration
type Config struct {
	Initial  models.SensorReading
	Deltas   Deltas
	Interval time.Duration
	// Seed of the random source; zero seeds from the clock
	Seed uint64
}

// Simulator owns the current reading and advances it on a ticker.
type Simulator struct {
	mu        sync.Mutex
	reading   models.SensorReading
	updatedAt time.Time
	deltas    Deltas
	interval  time.Duration
	rng       *rand.Rand
	subs      []chan Update

	intervalCh chan struct{}
	now        func() time.Time
}

// New creates a simulator starting from cfg.Initial
func New(cfg Config) (*Simulator, error) {
	if cfg.Interval <= 0 {
		return nil, ErrInvalidInterval
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return &Simulator{
		reading:    cfg.Initial,
		updatedAt:  time.Now(),
		deltas:     cfg.Deltas,
		interval:   cfg.Interval,
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		intervalCh: make(chan struct{}, 1),
		now:        time.Now,
	}, nil
}

// Latest returns the current reading and when it was produced
func (s *Simulator) Latest() (models.SensorReading, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reading, s.updatedAt
}

// Interval returns the current tick period
func (s *Simulator) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// SetInterval changes the tick period; a running loop picks it up immediately.
func (s *Simulator) SetInterval(d time.Duration) error {
	if d <= 0 {
		return ErrInvalidInterval
	}
	s.mu.Lock()
	s.interval = d
	s.mu.Unlock()

	select {
	case s.intervalCh <- struct{}{}:
	default:
	}
	return nil
}

// Subscribe returns a channel receiving every produced Update.
// Slow subscribers miss updates rather than stall the simulator.
// The channel is never closed; stop reading when your context ends.
func (s *Simulator) Subscribe(buffer int) <-chan Update {
	ch := make(chan Update, buffer)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// Refresh produces one reading immediately and returns the update it
// handed to subscribers.
func (s *Simulator) Refresh() Update {
	return s.step(TriggerRefresh)
}

func (s *Simulator) step(trigger string) Update {
	s.mu.Lock()
	s.reading = Next(s.reading, s.deltas, s.rng)
	s.updatedAt = s.now()
	u := Update{Reading: s.reading, Trigger: trigger, At: s.updatedAt}
	subs := s.subs
	s.mu.Unlock()

	metrics.SimulatorTicksTotal.WithLabelValues(trigger).Inc()
	for _, f := range models.Fields {
		metrics.SensorValue.WithLabelValues(string(f)).Set(u.Reading.Value(f))
	}

	for _, ch := range subs {
		select {
		case ch <- u:
		default:
			log := logger.WithComponent("simulator")
			log.Warn().Str("trigger", trigger).Msg("subscriber full, dropping update")
		}
	}
	return u
}

// Run advances the reading every interval until ctx is cancelled.
func (s *Simulator) Run(ctx context.Context) error {
	log := logger.WithComponent("simulator")

	interval := s.Interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("simulator started")
	defer log.Info().Msg("simulator stopped")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.intervalCh:
			d := s.Interval()
			ticker.Reset(d)
			log.Info().Dur("interval", d).Msg("simulator interval changed")
		case <-ticker.C:
			r := s.step(TriggerTimer).Reading
			log.Debug().
				Float64("temperature", r.Temperature).
				Float64("humidity", r.Humidity).
				Int("gas_level", r.GasLevel).
				Float64("dust_level", r.DustLevel).
				Int("aqi", r.AirQualityIndex).
				Msg("reading updated")
		}
	}
}
