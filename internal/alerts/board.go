package alerts

import (
	"sync"
	"time"

	"airmon/internal/metrics"
)

// Board holds the notifications currently shown on the dashboard.
//
// A non-empty evaluation replaces the list and makes it visible again; an empty
// one leaves the previous list alone, so the banner stays until dismissed.
type Board struct {
	mu         sync.Mutex
	alerts     []string
	visible    bool
	updatedAt  time.Time
	mutedUntil time.Time
	now        func() time.Time
}

// Snapshot is a read-only copy of the board state.
type Snapshot struct {
	Alerts     []string   `json:"alerts"`
	Visible    bool       `json:"visible"`
	Muted      bool       `json:"muted"`
	MutedUntil *time.Time `json:"mutedUntil,omitempty"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// NewBoard creates an empty, hidden board
func NewBoard() *Board {
	return &Board{now: time.Now}
}

// Update records the result of an evaluation
func (b *Board) Update(alerts []string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(alerts) > 0 {
		b.alerts = append([]string(nil), alerts...)
		b.visible = true
		b.updatedAt = b.now()
	}
	b.syncGauge()
}

// Dismiss hides the banner until the next non-empty evaluation
func (b *Board) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.visible = false
	b.syncGauge()
}

// Mute hides the banner for d regardless of new alerts
func (b *Board) Mute(d time.Duration) time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mutedUntil = b.now().Add(d)
	b.syncGauge()
	return b.mutedUntil
}

// Unmute lifts a mute early
func (b *Board) Unmute() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mutedUntil = time.Time{}
	b.syncGauge()
}

// syncGauge publishes how many alerts are on screen. Caller holds b.mu.
func (b *Board) syncGauge() {
	shown := 0
	if b.visible && !b.now().Before(b.mutedUntil) {
		shown = len(b.alerts)
	}
	metrics.AlertsActive.Set(float64(shown))
}

// Snapshot returns the current state
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := Snapshot{
		Alerts:  append([]string{}, b.alerts...),
		Visible: b.visible,
	}
	if now := b.now(); now.Before(b.mutedUntil) {
		until := b.mutedUntil
		s.Muted = true
		s.MutedUntil = &until
		s.Visible = false
	}
	if !b.updatedAt.IsZero() {
		at := b.updatedAt
		s.UpdatedAt = &at
	}
	return s
}
