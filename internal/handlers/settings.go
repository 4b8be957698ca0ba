package handlers

import (
	"net/http"
	"time"

	"airmon/internal/alerts"
	"airmon/internal/logger"
	"airmon/internal/settings"
)

// SettingsResponse wraps the settings with the time they were last saved
type SettingsResponse struct {
	Settings settings.Settings `json:"settings"`
	SavedAt  *time.Time        `json:"savedAt,omitempty"`
}

// MuteResponse reports the notification mute state
type MuteResponse struct {
	Success bool            `json:"success"`
	Board   alerts.Snapshot `json:"board"`
}

func (a *API) settingsResponse(s settings.Settings) SettingsResponse {
	resp := SettingsResponse{Settings: s}
	if at := a.settings.SavedAt(); !at.IsZero() {
		resp.SavedAt = &at
	}
	return resp
}

func (a *API) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.settingsResponse(a.settings.Get()))
}

// putSettings merges the body over the current settings, so partial documents are accepted
func (a *API) putSettings(w http.ResponseWriter, r *http.Request) {
	next := a.settings.Get()
	if status, err := a.decodeBody(w, r, &next); err != nil {
		writeError(w, status, err.Error())
		return
	}

	saved, err := a.settings.Save(next)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := a.applySettings(saved); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log := logger.WithComponent("api")
	log.Info().
		Float64("temperature_threshold", saved.Thresholds.Temperature).
		Float64("humidity_threshold", saved.Thresholds.Humidity).
		Float64("gas_threshold", saved.Thresholds.GasLevel).
		Float64("dust_threshold", saved.Thresholds.DustLevel).
		Int("refresh_interval_s", saved.Notifications.RefreshInterval).
		Msg("settings saved")

	writeJSON(w, http.StatusOK, a.settingsResponse(saved))
}

func (a *API) resetSettings(w http.ResponseWriter, r *http.Request) {
	s := a.settings.Reset()
	if err := a.applySettings(s); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, a.settingsResponse(s))
}

func (a *API) mute(w http.ResponseWriter, r *http.Request) {
	until := a.board.Mute(settings.MuteDuration)
	log := logger.WithComponent("api")
	log.Info().Time("until", until).Msg("notifications muted")
	writeJSON(w, http.StatusOK, MuteResponse{Success: true, Board: a.board.Snapshot()})
}

func (a *API) unmute(w http.ResponseWriter, r *http.Request) {
	a.board.Unmute()
	writeJSON(w, http.StatusOK, MuteResponse{Success: true, Board: a.board.Snapshot()})
}
