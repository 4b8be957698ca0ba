package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"airmon/internal/history"
	"airmon/internal/models"
)

const (
	defaultHistoryDays = 7
	defaultRecentN     = 20
)

// RecentResponse carries ring-buffer points and their statistics
type RecentResponse struct {
	Points []history.Point `json:"points"`
	Stats  history.Stats   `json:"stats"`
}

func metricParam(r *http.Request) (models.Field, error) {
	m := r.URL.Query().Get("metric")
	if m == "" {
		return models.FieldTemperature, nil
	}
	return models.ParseField(m)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return n, nil
}

func (a *API) getHistory(w http.ResponseWriter, r *http.Request) {
	field, err := metricParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	days, err := intParam(r, "days", defaultHistoryDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	series, err := a.series[field].Window(days)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (a *API) getRecent(w http.ResponseWriter, r *http.Request) {
	field, err := metricParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := intParam(r, "n", defaultRecentN)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if n <= 0 {
		writeError(w, http.StatusBadRequest, "n must be positive")
		return
	}

	points := a.history.Recent(field, n)
	if points == nil {
		points = []history.Point{}
	}
	writeJSON(w, http.StatusOK, RecentResponse{
		Points: points,
		Stats:  a.history.Stats(field),
	})
}

func (a *API) getTemperatureTrend(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.trend)
}

func (a *API) getAQILevels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.AQICategories)
}
