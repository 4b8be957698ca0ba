package history

import (
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"airmon/internal/models"
)

// SeriesDays is how many days of daily values are generated
const SeriesDays = 30

// ErrInvalidRange is returned for day ranges other than 7, 14 or 30
var ErrInvalidRange = errors.New("days must be one of 7, 14, 30")

// DailyPoint is one day's synthetic value
type DailyPoint struct {
	Date  string  `json:"date"` // e.g. "Mar 14"
	Value float64 `json:"value"`
}

// Series is a labelled synthetic series for one field
type Series struct {
	Field  models.Field `json:"field"`
	Name   string       `json:"name"`
	Points []DailyPoint `json:"points"`
}

type profile struct {
	base      float64
	variation float64
	name      string
}

var profiles = map[models.Field]profile{
	models.FieldTemperature: {25, 8, "Temperature (°C)"},
	models.FieldHumidity:    {60, 20, "Humidity (%)"},
	models.FieldGas:         {450, 250, "Gas (ppm)"},
	models.FieldDust:        {25, 20, "Dust (µg/m³)"},
	models.FieldAQI:         {50, 30, "AQI"},
}

// Daily generates days values ending today: a weekly sine trend plus noise,
// never below zero, one decimal.
func Daily(f models.Field, days int, now time.Time, rng *rand.Rand) Series {
	p, ok := profiles[f]
	if !ok {
		p = profiles[models.FieldAQI]
	}

	s := Series{Field: f, Name: p.name, Points: make([]DailyPoint, 0, days)}
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i)
		trend := math.Sin(float64(i)/7*math.Pi) * (p.variation * 0.3)
		noise := (rng.Float64() - 0.5) * p.variation
		v := math.Max(0, p.base+trend+noise)
		s.Points = append(s.Points, DailyPoint{
			Date:  date.Format("Jan 2"),
			Value: round1(v),
		})
	}
	return s
}

// Window keeps the last days points of a series
func (s Series) Window(days int) (Series, error) {
	switch days {
	case 7, 14, 30:
	default:
		return Series{}, ErrInvalidRange
	}
	if days < len(s.Points) {
		s.Points = s.Points[len(s.Points)-days:]
	}
	return s, nil
}

// HourlyPoint is one hour of the temperature trend
type HourlyPoint struct {
	Time        string  `json:"time"` // "15:00"
	Temperature float64 `json:"temperature"`
}

// TemperatureTrend generates 24 hourly temperatures ending at now's hour:
// cool nights, warming mornings, warm afternoons, cooling evenings.
func TemperatureTrend(now time.Time, rng *rand.Rand) []HourlyPoint {
	base := 22 + rng.Float64()*6
	out := make([]HourlyPoint, 0, 24)
	for i := 23; i >= 0; i-- {
		at := now.Add(-time.Duration(i) * time.Hour)
		h := at.Hour()

		var variation float64
		switch {
		case h < 6:
			variation = -2 - rng.Float64()*2
		case h < 12:
			variation = -1 + float64(h-6)*0.5
		case h < 18:
			variation = 2 + rng.Float64()*2
		default:
			variation = 2 - float64(h-18)*0.5
		}

		noise := rng.Float64()*1.5 - 0.75
		out = append(out, HourlyPoint{
			Time:        at.Format("15:04"),
			Temperature: round1(base + variation + noise),
		})
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
