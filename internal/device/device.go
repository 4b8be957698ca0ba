// Package device simulates connecting to the ESP32 sensor board.
// No network traffic is generated; a connect waits a fixed delay and then
// checks that the address looks like a dotted-quad IPv4 address.
package device

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"airmon/internal/logger"
	"airmon/internal/metrics"
)

// Status of the most recent connect attempt
type Status string

const (
	StatusIdle       Status = "idle"
	StatusConnecting Status = "connecting"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// DefaultIP is the address pre-filled in the connect form
const DefaultIP = "192.168.1.100"

var ipPattern = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

// Errors
var (
	ErrInvalidIP = errors.New("Invalid IP address format. Please use format: 192.168.1.x")
	ErrBusy      = errors.New("connection attempt already in progress")
)

// ValidIP reports whether s has the dotted-quad shape. Octet values are not range checked.
func ValidIP(s string) bool {
	return ipPattern.MatchString(s)
}

// State is a snapshot of the connector
type State struct {
	IP          string     `json:"ip"`
	Status      Status     `json:"status"`
	Error       string     `json:"error,omitempty"`
	ConnectedAt *time.Time `json:"connectedAt,omitempty"`
}

// Connector tracks the simulated device connection.
type Connector struct {
	delay time.Duration

	mu    sync.Mutex
	state State
}

// NewConnector creates an idle connector; delay is the simulated connect latency
func NewConnector(delay time.Duration) *Connector {
	return &Connector{
		delay: delay,
		state: State{IP: DefaultIP, Status: StatusIdle},
	}
}

// State returns the current connection state
func (c *Connector) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect waits for the configured delay, then validates ip.
// A cancelled context aborts the attempt and returns the connector to idle.
func (c *Connector) Connect(ctx context.Context, ip string) (State, error) {
	ip = strings.TrimSpace(ip)
	log := logger.WithComponent("device").With().Str("ip", ip).Logger()

	c.mu.Lock()
	if c.state.Status == StatusConnecting {
		c.mu.Unlock()
		return c.State(), ErrBusy
	}
	c.state = State{IP: ip, Status: StatusConnecting}
	c.mu.Unlock()

	log.Info().Dur("delay", c.delay).Msg("connecting to device")

	timer := time.NewTimer(c.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		c.mu.Lock()
		c.state = State{IP: ip, Status: StatusIdle}
		c.mu.Unlock()
		metrics.DeviceConnectTotal.WithLabelValues("cancelled").Inc()
		log.Warn().Err(ctx.Err()).Msg("device connect cancelled")
		return c.State(), ctx.Err()
	case <-timer.C:
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ip == "" || !ValidIP(ip) {
		c.state = State{IP: ip, Status: StatusError, Error: ErrInvalidIP.Error()}
		metrics.DeviceConnectTotal.WithLabelValues("error").Inc()
		log.Warn().Msg("device connect rejected: invalid address")
		return c.state, ErrInvalidIP
	}

	now := time.Now().UTC()
	c.state = State{IP: ip, Status: StatusSuccess, ConnectedAt: &now}
	metrics.DeviceConnectTotal.WithLabelValues("success").Inc()
	log.Info().Msg("device connected")
	return c.state, nil
}
