package models

// Level is a coarse traffic-light rating for a field value
type Level string

const (
	LevelNormal   Level = "normal"
	LevelElevated Level = "elevated"
	LevelHigh     Level = "high"
	LevelLow      Level = "low"
)

// FieldStatus is the dashboard summary for one field
type FieldStatus struct {
	Field   Field   `json:"field"`
	Value   float64 `json:"value"`
	Unit    string  `json:"unit"`
	Level   Level   `json:"level"`
	Message string  `json:"message"`
}

// Status rates every field of the reading, in Fields order
func (r SensorReading) Status() []FieldStatus {
	out := make([]FieldStatus, 0, len(Fields))
	for _, f := range Fields {
		level, msg := rate(f, r)
		out = append(out, FieldStatus{
			Field:   f,
			Value:   r.Value(f),
			Unit:    f.Unit(),
			Level:   level,
			Message: msg,
		})
	}
	return out
}

func rate(f Field, r SensorReading) (Level, string) {
	switch f {
	case FieldTemperature:
		switch {
		case r.Temperature > 30:
			return LevelHigh, "Temperature is high"
		case r.Temperature < 18:
			return LevelLow, "Temperature is low"
		}
		return LevelNormal, "Temperature is optimal"
	case FieldHumidity:
		switch {
		case r.Humidity > 70:
			return LevelHigh, "Humidity is high"
		case r.Humidity < 30:
			return LevelLow, "Humidity is low"
		}
		return LevelNormal, "Humidity is optimal"
	case FieldGas:
		switch {
		case r.GasLevel > 700:
			return LevelHigh, "Gas levels are dangerous"
		case r.GasLevel > 500:
			return LevelElevated, "Elevated gas levels"
		}
		return LevelNormal, "Gas levels are normal"
	case FieldDust:
		switch {
		case r.DustLevel > 50:
			return LevelHigh, "Dust levels are high"
		case r.DustLevel > 25:
			return LevelElevated, "Elevated dust levels"
		}
		return LevelNormal, "Dust levels are normal"
	case FieldAQI:
		switch {
		case r.AirQualityIndex <= 50:
			return LevelNormal, "Air quality is satisfactory"
		case r.AirQualityIndex <= 100:
			return LevelElevated, "Acceptable air quality"
		}
		return LevelHigh, "Air quality needs attention"
	}
	return LevelNormal, ""
}
