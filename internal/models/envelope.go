package models

import (
	"time"

	"github.com/google/uuid"
)

// ReadingEvent wraps a SensorReading with the alerts it raised for fan-out to sinks
type ReadingEvent struct {
	ID          string        `json:"id"`
	Source      string        `json:"source"`
	Reading     SensorReading `json:"reading"`
	Alerts      []string      `json:"alerts"`
	AQICategory string        `json:"aqiCategory"`
	ProducedAt  time.Time     `json:"producedAt"`

	// Internal processing metadata
	Trigger      string `json:"trigger"`
	RetryCount   int    `json:"retry_count"`
	PartitionKey string `json:"-"`
}

// NewReadingEvent creates a new event for a reading produced at t
func NewReadingEvent(source string, r SensorReading, alerts []string, t time.Time) *ReadingEvent {
	if alerts == nil {
		alerts = []string{}
	}
	return &ReadingEvent{
		ID:           uuid.New().String(),
		Source:       source,
		Reading:      r,
		Alerts:       alerts,
		AQICategory:  ClassifyAQI(r.AirQualityIndex).Label,
		ProducedAt:   t.UTC(),
		PartitionKey: source, // one source keeps its readings ordered
	}
}

// WithTrigger records what caused the reading (timer or refresh)
func (e *ReadingEvent) WithTrigger(trigger string) *ReadingEvent {
	e.Trigger = trigger
	return e
}
