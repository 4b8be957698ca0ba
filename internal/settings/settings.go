package settings

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"airmon/internal/alerts"
	"airmon/internal/device"
)

// MuteDuration is how long "mute all notifications" lasts
const MuteDuration = time.Hour

// Validation errors
var (
	ErrTemperatureThreshold = errors.New("temperature threshold must be between 20 and 50 °C")
	ErrHumidityThreshold    = errors.New("humidity threshold must be between 30 and 95 %")
	ErrGasThreshold         = errors.New("gas threshold must be between 200 and 1000 ppm in steps of 10")
	ErrDustThreshold        = errors.New("dust threshold must be between 10 and 100 µg/m³")
	ErrRefreshInterval      = errors.New("refresh interval must be between 1 and 60 seconds")
	ErrEmailAddress         = errors.New("a valid email address is required for email notifications")
	ErrSSIDTooLong          = errors.New("wifi SSID cannot exceed 32 characters")
)

// Notifications controls how alerts are delivered
type Notifications struct {
	Email           bool   `json:"email"`
	EmailAddress    string `json:"emailAddress"`
	Push            bool   `json:"push"`
	Sound           bool   `json:"sound"`
	RefreshInterval int    `json:"refreshInterval"` // seconds
}

// Connection holds the device and integration settings
type Connection struct {
	WiFiSSID string `json:"wifiSsid"`
	DeviceIP string `json:"deviceIp"`
	APIKey   string `json:"apiKey,omitempty"`
}

// Settings is the full settings panel
type Settings struct {
	Thresholds    alerts.Thresholds `json:"thresholds"`
	Notifications Notifications     `json:"notifications"`
	Connection    Connection        `json:"connection"`
}

// Defaults returns the factory settings
func Defaults() Settings {
	return Settings{
		Thresholds: alerts.DefaultThresholds(),
		Notifications: Notifications{
			Email:           true,
			EmailAddress:    "user@example.com",
			Push:            true,
			Sound:           false,
			RefreshInterval: 5,
		},
		Connection: Connection{
			WiFiSSID: "AIR_MONITOR",
			DeviceIP: device.DefaultIP,
		},
	}
}

// RefreshEvery returns the refresh interval as a duration
func (s Settings) RefreshEvery() time.Duration {
	return time.Duration(s.Notifications.RefreshInterval) * time.Second
}

// WithRefreshEvery returns s with the refresh interval set to d, rounded to
// whole seconds and clamped to the 1-60s the panel allows.
func (s Settings) WithRefreshEvery(d time.Duration) Settings {
	secs := int(d.Round(time.Second) / time.Second)
	s.Notifications.RefreshInterval = min(max(secs, 1), 60)
	return s
}

// Normalize trims free-text fields
func (s *Settings) Normalize() {
	s.Notifications.EmailAddress = strings.TrimSpace(s.Notifications.EmailAddress)
	s.Connection.WiFiSSID = strings.TrimSpace(s.Connection.WiFiSSID)
	s.Connection.DeviceIP = strings.TrimSpace(s.Connection.DeviceIP)
	s.Connection.APIKey = strings.TrimSpace(s.Connection.APIKey)
}

// Validate checks every value against the ranges the settings panel allows
func (s Settings) Validate() error {
	t := s.Thresholds
	if t.Temperature < 20 || t.Temperature > 50 {
		return ErrTemperatureThreshold
	}
	if t.Humidity < 30 || t.Humidity > 95 {
		return ErrHumidityThreshold
	}
	if t.GasLevel < 200 || t.GasLevel > 1000 || int(t.GasLevel)%10 != 0 || t.GasLevel != float64(int(t.GasLevel)) {
		return ErrGasThreshold
	}
	if t.DustLevel < 10 || t.DustLevel > 100 {
		return ErrDustThreshold
	}

	n := s.Notifications
	if n.RefreshInterval < 1 || n.RefreshInterval > 60 {
		return ErrRefreshInterval
	}
	if n.Email {
		if _, err := mail.ParseAddress(n.EmailAddress); err != nil {
			return fmt.Errorf("%w: %v", ErrEmailAddress, err)
		}
	}

	if len(s.Connection.WiFiSSID) > 32 {
		return ErrSSIDTooLong
	}
	if !device.ValidIP(s.Connection.DeviceIP) {
		return device.ErrInvalidIP
	}
	return nil
}

// Store keeps the settings in memory. Nothing is persisted.
type Store struct {
	mu       sync.RWMutex
	current  Settings
	defaults Settings
	savedAt  time.Time
}

// NewStore creates a store holding base. Reset returns to base.
func NewStore(base Settings) *Store {
	base.Normalize()
	return &Store{current: base, defaults: base}
}

// Get returns the current settings
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SavedAt returns when settings were last saved, zero if never
func (s *Store) SavedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.savedAt
}

// Save normalizes and validates next, then replaces the current settings
func (s *Store) Save(next Settings) (Settings, error) {
	next.Normalize()
	if err := next.Validate(); err != nil {
		return s.Get(), err
	}
	s.mu.Lock()
	s.current = next
	s.savedAt = time.Now().UTC()
	s.mu.Unlock()
	return next, nil
}

// Reset restores thresholds and notification settings to the store's base.
// Connection settings are kept.
func (s *Store) Reset() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Thresholds = s.defaults.Thresholds
	s.current.Notifications = s.defaults.Notifications
	return s.current
}
