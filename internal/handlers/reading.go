package handlers

import (
	"net/http"
	"time"

	"airmon/internal/alerts"
	"airmon/internal/models"
)

// ReadingResponse is the current-readings view
type ReadingResponse struct {
	Source      string               `json:"source"`
	Reading     models.SensorReading `json:"reading"`
	Status      []models.FieldStatus `json:"status"`
	AQICategory models.AQICategory   `json:"aqiCategory"`
	Alerts      []string             `json:"alerts"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

func (a *API) readingResponse(r models.SensorReading, at time.Time) ReadingResponse {
	return ReadingResponse{
		Source:      a.source,
		Reading:     r,
		Status:      r.Status(),
		AQICategory: models.ClassifyAQI(r.AirQualityIndex),
		Alerts:      alerts.Evaluate(r, a.evaluator.Thresholds()),
		UpdatedAt:   at.UTC(),
	}
}

func (a *API) getReading(w http.ResponseWriter, r *http.Request) {
	reading, at := a.sim.Latest()
	writeJSON(w, http.StatusOK, a.readingResponse(reading, at))
}

// refreshReading advances the simulator once; the monitor loop picks the update up
// for the board, history and sinks like any timer tick.
func (a *API) refreshReading(w http.ResponseWriter, r *http.Request) {
	u := a.sim.Refresh()
	writeJSON(w, http.StatusOK, a.readingResponse(u.Reading, u.At))
}

func (a *API) getAlerts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.board.Snapshot())
}

func (a *API) dismissAlerts(w http.ResponseWriter, r *http.Request) {
	a.board.Dismiss()
	writeJSON(w, http.StatusOK, a.board.Snapshot())
}
