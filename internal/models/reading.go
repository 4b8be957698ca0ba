package models

import (
	"errors"
	"strings"
)

// Field identifies one measured quantity of a SensorReading
type Field string

const (
	FieldTemperature Field = "temperature"
	FieldHumidity    Field = "humidity"
	FieldGas         Field = "gas"
	FieldDust        Field = "dust"
	FieldAQI         Field = "aqi"
)

// Fields lists every field in display order
var Fields = []Field{FieldTemperature, FieldHumidity, FieldGas, FieldDust, FieldAQI}

// ErrUnknownField is returned when a metric name does not match any Field
var ErrUnknownField = errors.New("unknown sensor field")

// ParseField resolves a metric name (case-insensitive) to a Field
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "temperature", "temp":
		return FieldTemperature, nil
	case "humidity":
		return FieldHumidity, nil
	case "gas", "gaslevel":
		return FieldGas, nil
	case "dust", "dustlevel":
		return FieldDust, nil
	case "aqi", "airqualityindex":
		return FieldAQI, nil
	default:
		return "", ErrUnknownField
	}
}

// Unit returns the display unit of the field
func (f Field) Unit() string {
	switch f {
	case FieldTemperature:
		return "°C"
	case FieldHumidity:
		return "%"
	case FieldGas:
		return "ppm"
	case FieldDust:
		return "µg/m³"
	default:
		return ""
	}
}

// SensorReading is one snapshot of all simulated sensors.
type SensorReading struct {
	// Temperature in °C
	Temperature float64 `json:"temperature"`

	// Relative humidity in %
	Humidity float64 `json:"humidity"`

	// Gas concentration in ppm
	GasLevel int `json:"gasLevel"`

	// Particulate matter in µg/m³
	DustLevel float64 `json:"dustLevel"`

	// Unitless composite pollution score
	AirQualityIndex int `json:"airQualityIndex"`
}

// InitialReading is the reading the simulator starts from
func InitialReading() SensorReading {
	return SensorReading{
		Temperature:     28.5,
		Humidity:        65,
		GasLevel:        450,
		DustLevel:       25.7,
		AirQualityIndex: 75,
	}
}

// Value returns the field as a float64
func (r SensorReading) Value(f Field) float64 {
	switch f {
	case FieldTemperature:
		return r.Temperature
	case FieldHumidity:
		return r.Humidity
	case FieldGas:
		return float64(r.GasLevel)
	case FieldDust:
		return r.DustLevel
	case FieldAQI:
		return float64(r.AirQualityIndex)
	default:
		return 0
	}
}
