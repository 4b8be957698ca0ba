package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Register mounts the API routes on r. Routes sit on r itself so a known
// path with the wrong method answers 405.
func (a *API) Register(r *mux.Router) {
	r.HandleFunc("/api/reading", a.getReading).Methods(http.MethodGet)
	r.HandleFunc("/api/reading/refresh", a.refreshReading).Methods(http.MethodPost)

	r.HandleFunc("/api/alerts", a.getAlerts).Methods(http.MethodGet)
	r.HandleFunc("/api/alerts/dismiss", a.dismissAlerts).Methods(http.MethodPost)

	r.HandleFunc("/api/history", a.getHistory).Methods(http.MethodGet)
	r.HandleFunc("/api/history/recent", a.getRecent).Methods(http.MethodGet)
	r.HandleFunc("/api/trend/temperature", a.getTemperatureTrend).Methods(http.MethodGet)
	r.HandleFunc("/api/aqi/levels", a.getAQILevels).Methods(http.MethodGet)

	r.HandleFunc("/api/settings", a.getSettings).Methods(http.MethodGet)
	r.HandleFunc("/api/settings", a.putSettings).Methods(http.MethodPut)
	r.HandleFunc("/api/settings/reset", a.resetSettings).Methods(http.MethodPost)
	r.HandleFunc("/api/settings/mute", a.mute).Methods(http.MethodPost)
	r.HandleFunc("/api/settings/mute", a.unmute).Methods(http.MethodDelete)

	r.HandleFunc("/api/device", a.getDevice).Methods(http.MethodGet)
	r.HandleFunc("/api/device/connect", a.connectDevice).Methods(http.MethodPost)

	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method "+r.Method+" not allowed")
}

// NewRouter returns a router with only the API routes mounted
func NewRouter(a *API) *mux.Router {
	r := mux.NewRouter()
	a.Register(r)
	return r
}
