package alerts

import (
	"context"
	"sync"

	"airmon/internal/logger"
	"airmon/internal/metrics"
	"airmon/internal/models"
)

// Evaluate returns the message of every rule whose field strictly exceeds its
// threshold, in rule order. It never returns nil.
func Evaluate(r models.SensorReading, t Thresholds) []string {
	out := make([]string, 0, 4)
	for _, rule := range t.Rules() {
		if r.Value(rule.Field) > rule.Threshold {
			out = append(out, rule.Message)
		}
	}
	return out
}

// Evaluator applies the current thresholds through an AlertEngine.
// Thresholds can be swapped at runtime when settings are saved.
type Evaluator struct {
	engine AlertEngine

	mu         sync.RWMutex
	thresholds Thresholds
}

// NewEvaluator creates an evaluator using the default threshold engine
func NewEvaluator(t Thresholds) *Evaluator {
	return &Evaluator{
		engine:     NewThresholdEngine(),
		thresholds: t,
	}
}

// Thresholds returns the thresholds currently in force
func (e *Evaluator) Thresholds() Thresholds {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.thresholds
}

// SetThresholds replaces the thresholds used by later evaluations
func (e *Evaluator) SetThresholds(t Thresholds) {
	e.mu.Lock()
	e.thresholds = t
	e.mu.Unlock()
}

// Evaluate checks the reading against every rule and returns the raised messages.
func (e *Evaluator) Evaluate(ctx context.Context, r models.SensorReading) ([]string, error) {
	rules := e.Thresholds().Rules()
	out := make([]string, 0, len(rules))
	for _, rule := range rules {
		fired, err := e.engine.Evaluate(ctx, rule, r.Value(rule.Field))
		if err != nil {
			return nil, err
		}
		if fired {
			out = append(out, rule.Message)
			metrics.AlertsTotal.WithLabelValues(string(rule.Field)).Inc()
		}
	}

	if len(out) > 0 {
		log := logger.WithComponent("alerts")
		log.Warn().
			Strs("alerts", out).
			Float64("temperature", r.Temperature).
			Float64("humidity", r.Humidity).
			Int("gas_level", r.GasLevel).
			Float64("dust_level", r.DustLevel).
			Msg("thresholds exceeded")
	}
	return out, nil
}

// Close releases the underlying engine
func (e *Evaluator) Close() error {
	return e.engine.Close()
}
