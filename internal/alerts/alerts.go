package alerts

import (
	"context"

	"airmon/internal/models"
)

// Rule defines a simple threshold-based alert rule.
type Rule struct {
	Name      string
	Field     models.Field
	Threshold float64
	Message   string
}

// AlertEngine is responsible for evaluating rules and emitting alerts.
type AlertEngine interface {
	Evaluate(ctx context.Context, rule Rule, value float64) (bool, error)
	Close() error
}

type thresholdEngine struct{}

// NewThresholdEngine returns an engine that fires when a value strictly exceeds the rule threshold.
func NewThresholdEngine() AlertEngine { return &thresholdEngine{} }

func (n *thresholdEngine) Evaluate(ctx context.Context, rule Rule, value float64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return value > rule.Threshold, nil
}
func (n *thresholdEngine) Close() error { return nil }

// Alert messages, one per watched field
const (
	MsgHighTemperature = "High Temperature Alert!"
	MsgHighHumidity    = "High Humidity Alert!"
	MsgDangerousGas    = "Dangerous Gas Level Detected!"
	MsgHighDust        = "High Dust Levels Detected!"
)

// Thresholds are the upper limits above which a field raises an alert.
type Thresholds struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	GasLevel    float64 `json:"gasLevel"`
	DustLevel   float64 `json:"dustLevel"`
}

// DefaultThresholds returns the stock limits: 35 °C, 70 %, 700 ppm, 50 µg/m³.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Temperature: 35,
		Humidity:    70,
		GasLevel:    700,
		DustLevel:   50,
	}
}

// Rules expands the thresholds into rules in evaluation order
func (t Thresholds) Rules() []Rule {
	return []Rule{
		{Name: "high_temperature", Field: models.FieldTemperature, Threshold: t.Temperature, Message: MsgHighTemperature},
		{Name: "high_humidity", Field: models.FieldHumidity, Threshold: t.Humidity, Message: MsgHighHumidity},
		{Name: "dangerous_gas", Field: models.FieldGas, Threshold: t.GasLevel, Message: MsgDangerousGas},
		{Name: "high_dust", Field: models.FieldDust, Threshold: t.DustLevel, Message: MsgHighDust},
	}
}
