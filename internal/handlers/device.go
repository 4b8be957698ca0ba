package handlers

import (
	"errors"
	"net/http"

	"airmon/internal/device"
)

var errNoDeviceIP = errors.New("no device IP configured")

// ConnectRequest is the body of a device connect call. IP falls back to the saved device IP.
type ConnectRequest struct {
	IP *string `json:"ip"`
}

// ConnectResponse reports the outcome of a connect attempt
type ConnectResponse struct {
	Success bool         `json:"success"`
	Error   string       `json:"error,omitempty"`
	Device  device.State `json:"device"`
}

func (a *API) getDevice(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.device.State())
}

func (a *API) connectDevice(w http.ResponseWriter, r *http.Request) {
	var req ConnectRequest
	if status, err := a.decodeBody(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, status, err.Error())
		return
	}

	ip := a.settings.Get().Connection.DeviceIP
	if req.IP != nil {
		ip = *req.IP
	}
	if ip == "" && req.IP == nil {
		writeError(w, http.StatusBadRequest, errNoDeviceIP.Error())
		return
	}

	state, err := a.device.Connect(r.Context(), ip)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, ConnectResponse{Success: true, Device: state})
	case errors.Is(err, device.ErrInvalidIP):
		writeJSON(w, http.StatusUnprocessableEntity, ConnectResponse{Error: err.Error(), Device: state})
	case errors.Is(err, device.ErrBusy):
		writeJSON(w, http.StatusConflict, ConnectResponse{Error: err.Error(), Device: state})
	default:
		// Client went away mid-attempt
		writeError(w, http.StatusServiceUnavailable, err.Error())
	}
}
