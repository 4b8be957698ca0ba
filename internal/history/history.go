// Package history keeps a ring buffer of recent readings with per-field
// min/peak/avg statistics, and generates the synthetic series the dashboard
// charts fall back to.
package history

import (
	"math"
	"sync"
	"time"

	"airmon/internal/models"
)

// Point is a single data point in a field's history.
type Point struct {
	Value float64   `json:"value"`
	Time  time.Time `json:"time"`
}

// Buffer stores a ring buffer of values for one field.
type Buffer struct {
	Points []Point
	Max    int // capacity
}

// NewBuffer creates a new history ring buffer with the given capacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &Buffer{
		Points: make([]Point, 0, capacity),
		Max:    capacity,
	}
}

// Push adds a new value to the history, evicting the oldest when full.
func (b *Buffer) Push(v float64, t time.Time) {
	p := Point{Value: v, Time: t}
	if len(b.Points) >= b.Max {
		copy(b.Points, b.Points[1:])
		b.Points[len(b.Points)-1] = p
	} else {
		b.Points = append(b.Points, p)
	}
}

// Min returns the smallest value still held, or 0 if empty.
func (b *Buffer) Min() float64 {
	if len(b.Points) == 0 {
		return 0
	}
	m := math.Inf(1)
	for _, p := range b.Points {
		m = math.Min(m, p.Value)
	}
	return m
}

// Peak returns the largest value still held, or 0 if empty.
func (b *Buffer) Peak() float64 {
	if len(b.Points) == 0 {
		return 0
	}
	m := math.Inf(-1)
	for _, p := range b.Points {
		m = math.Max(m, p.Value)
	}
	return m
}

// Last returns the most recent value, or 0 if empty.
func (b *Buffer) Last() float64 {
	if len(b.Points) == 0 {
		return 0
	}
	return b.Points[len(b.Points)-1].Value
}

// Avg returns the average across all stored points.
func (b *Buffer) Avg() float64 {
	if len(b.Points) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range b.Points {
		sum += p.Value
	}
	return sum / float64(len(b.Points))
}

// LastNPoints returns a copy of the last n Points.
func (b *Buffer) LastNPoints(n int) []Point {
	if n <= 0 || len(b.Points) == 0 {
		return nil
	}
	start := len(b.Points) - n
	if start < 0 {
		start = 0
	}
	out := make([]Point, len(b.Points[start:]))
	copy(out, b.Points[start:])
	return out
}

// Stats summarises the points a field's buffer currently holds
type Stats struct {
	Field models.Field `json:"field"`
	Count int          `json:"count"`
	Last  float64      `json:"last"`
	Avg   float64      `json:"avg"`
	Min   float64      `json:"min"`
	Peak  float64      `json:"peak"`
}

// Store keeps one buffer per field. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	data     map[models.Field]*Buffer
	capacity int
}

// NewStore creates a new store with the given per-field capacity.
func NewStore(capacity int) *Store {
	s := &Store{
		data:     make(map[models.Field]*Buffer, len(models.Fields)),
		capacity: capacity,
	}
	for _, f := range models.Fields {
		s.data[f] = NewBuffer(capacity)
	}
	return s
}

// Record adds every field of the reading at time t.
func (s *Store) Record(r models.SensorReading, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range models.Fields {
		s.data[f].Push(r.Value(f), t)
	}
}

// Recent returns up to n of the latest points for a field
func (s *Store) Recent(f models.Field, n int) []Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.data[f]
	if !ok {
		return nil
	}
	return b.LastNPoints(n)
}

// Stats returns the statistics of a field, zeroed when nothing is recorded
func (s *Store) Stats(f models.Field) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{Field: f}
	b, ok := s.data[f]
	if !ok || len(b.Points) == 0 {
		return st
	}
	st.Count = len(b.Points)
	st.Last = b.Last()
	st.Avg = b.Avg()
	st.Min = b.Min()
	st.Peak = b.Peak()
	return st
}
