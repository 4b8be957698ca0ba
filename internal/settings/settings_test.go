package settings

import (
	"errors"
	"testing"
	"time"

	"airmon/internal/device"
)

func TestDefaultsAreValid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if got := Defaults().RefreshEvery(); got != 5*time.Second {
		t.Errorf("RefreshEvery() = %v, want 5s", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr error
	}{
		{"temperature too low", func(s *Settings) { s.Thresholds.Temperature = 19 }, ErrTemperatureThreshold},
		{"temperature max", func(s *Settings) { s.Thresholds.Temperature = 50 }, nil},
		{"humidity too high", func(s *Settings) { s.Thresholds.Humidity = 96 }, ErrHumidityThreshold},
		{"gas off step", func(s *Settings) { s.Thresholds.GasLevel = 705 }, ErrGasThreshold},
		{"gas fractional", func(s *Settings) { s.Thresholds.GasLevel = 700.5 }, ErrGasThreshold},
		{"gas min", func(s *Settings) { s.Thresholds.GasLevel = 200 }, nil},
		{"dust too low", func(s *Settings) { s.Thresholds.DustLevel = 9 }, ErrDustThreshold},
		{"refresh zero", func(s *Settings) { s.Notifications.RefreshInterval = 0 }, ErrRefreshInterval},
		{"refresh too long", func(s *Settings) { s.Notifications.RefreshInterval = 61 }, ErrRefreshInterval},
		{"bad email", func(s *Settings) { s.Notifications.EmailAddress = "nope" }, ErrEmailAddress},
		{"bad email ignored when disabled", func(s *Settings) {
			s.Notifications.Email = false
			s.Notifications.EmailAddress = ""
		}, nil},
		{"long ssid", func(s *Settings) { s.Connection.WiFiSSID = "0123456789012345678901234567890123" }, ErrSSIDTooLong},
		{"bad device ip", func(s *Settings) { s.Connection.DeviceIP = "192.168.1.x" }, device.ErrInvalidIP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStoreSaveAndReset(t *testing.T) {
	st := NewStore(Defaults())
	if !st.SavedAt().IsZero() {
		t.Fatal("new store should never have been saved")
	}

	next := Defaults()
	next.Thresholds.Temperature = 30
	next.Notifications.RefreshInterval = 10
	next.Connection.DeviceIP = "  10.0.0.7 "

	saved, err := st.Save(next)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Connection.DeviceIP != "10.0.0.7" {
		t.Errorf("device IP not trimmed: %q", saved.Connection.DeviceIP)
	}
	if st.Get().Thresholds.Temperature != 30 || st.SavedAt().IsZero() {
		t.Errorf("save not applied: %+v", st.Get())
	}

	bad := st.Get()
	bad.Thresholds.Humidity = 10
	if _, err := st.Save(bad); !errors.Is(err, ErrHumidityThreshold) {
		t.Fatalf("expected ErrHumidityThreshold, got %v", err)
	}
	if st.Get().Thresholds.Humidity != 70 {
		t.Error("rejected save must not change the settings")
	}

	reset := st.Reset()
	if reset.Thresholds != Defaults().Thresholds || reset.Notifications != Defaults().Notifications {
		t.Errorf("reset did not restore defaults: %+v", reset)
	}
	if reset.Connection.DeviceIP != "10.0.0.7" {
		t.Errorf("reset should keep connection settings, got %q", reset.Connection.DeviceIP)
	}
}

func TestWithRefreshEvery(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int
	}{
		{5 * time.Second, 5},
		{10 * time.Second, 10},
		{2400 * time.Millisecond, 2},
		{20 * time.Millisecond, 1},
		{0, 1},
		{5 * time.Minute, 60},
	}
	for _, tt := range tests {
		if got := Defaults().WithRefreshEvery(tt.in).Notifications.RefreshInterval; got != tt.want {
			t.Errorf("WithRefreshEvery(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestStoreSeededInterval(t *testing.T) {
	st := NewStore(Defaults().WithRefreshEvery(12 * time.Second))
	if got := st.Get().RefreshEvery(); got != 12*time.Second {
		t.Fatalf("seeded interval = %v, want 12s", got)
	}

	next := st.Get()
	next.Notifications.RefreshInterval = 30
	if _, err := st.Save(next); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := st.Reset().Notifications.RefreshInterval; got != 12 {
		t.Errorf("reset interval = %d, want the seeded 12", got)
	}
}
