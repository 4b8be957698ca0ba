package history

import (
	"math/rand/v2"
	"testing"
	"time"

	"airmon/internal/models"
)

func TestHistory(t *testing.T) {
	h := NewBuffer(5)

	now := time.Now()
	for i := 0; i < 7; i++ {
		h.Push(float64(30+i), now.Add(time.Duration(i)*time.Second))
	}

	if len(h.Points) != 5 {
		t.Errorf("expected 5 points, got %d", len(h.Points))
	}

	if h.Last() != 36.0 {
		t.Errorf("Last(): got %f, want 36.0", h.Last())
	}

	// 30 and 31 were evicted
	if h.Min() != 32.0 {
		t.Errorf("Min(): got %f, want 32.0", h.Min())
	}

	if h.Peak() != 36.0 {
		t.Errorf("Peak(): got %f, want 36.0", h.Peak())
	}

	if avg := h.Avg(); avg != 34.0 {
		t.Errorf("Avg(): got %f, want 34.0", avg)
	}
}

func TestLastNPoints(t *testing.T) {
	h := NewBuffer(100)
	base := time.Date(2026, 2, 21, 14, 0, 0, 0, time.Local)

	for i := 0; i < 120; i++ {
		h.Push(float64(30+i%10), base.Add(time.Duration(i)*time.Second))
	}

	pts := h.LastNPoints(5)
	if len(pts) != 5 {
		t.Fatalf("LastNPoints(5): got %d, want 5", len(pts))
	}

	last := pts[len(pts)-1]
	if last.Time != base.Add(119*time.Second) {
		t.Errorf("last point time: got %v, want %v", last.Time, base.Add(119*time.Second))
	}

	if got := h.LastNPoints(500); len(got) != 100 {
		t.Errorf("LastNPoints(500): got %d, want 100", len(got))
	}
}

func TestStatsFollowEviction(t *testing.T) {
	s := NewStore(2)
	base := time.Date(2026, 2, 21, 14, 0, 0, 0, time.UTC)

	r := models.InitialReading()
	for i, v := range []float64{100, 20, 21} {
		r.Temperature = v
		s.Record(r, base.Add(time.Duration(i)*time.Second))
	}

	st := s.Stats(models.FieldTemperature)
	pts := s.Recent(models.FieldTemperature, 10)
	if len(pts) != 2 || pts[0].Value != 20 || pts[1].Value != 21 {
		t.Fatalf("unexpected points: %+v", pts)
	}
	if st.Peak != 21 || st.Min != 20 || st.Avg != 20.5 {
		t.Errorf("stats should cover only held points: %+v", st)
	}

	// Evicting the low leaves the minimum at the next smallest value
	r.Temperature = 25
	s.Record(r, base.Add(3*time.Second))
	if st := s.Stats(models.FieldTemperature); st.Min != 21 || st.Peak != 25 {
		t.Errorf("after eviction: %+v", st)
	}
}

func TestStoreRecord(t *testing.T) {
	s := NewStore(3)
	base := time.Date(2026, 2, 21, 14, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		r := models.InitialReading()
		r.GasLevel += i * 10
		s.Record(r, base.Add(time.Duration(i)*5*time.Second))
	}

	pts := s.Recent(models.FieldGas, 10)
	if len(pts) != 3 {
		t.Fatalf("expected 3 gas points, got %d", len(pts))
	}
	if pts[0].Value != 460 || pts[2].Value != 480 {
		t.Errorf("unexpected gas points: %+v", pts)
	}

	st := s.Stats(models.FieldGas)
	if st.Count != 3 || st.Last != 480 || st.Peak != 480 || st.Min != 460 {
		t.Errorf("unexpected stats: %+v", st)
	}

	if st := NewStore(3).Stats(models.FieldDust); st.Count != 0 || st.Min != 0 {
		t.Errorf("empty store stats should be zero: %+v", st)
	}
}

func TestDailySeries(t *testing.T) {
	now := time.Date(2026, 3, 30, 9, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewPCG(11, 12))

	for _, f := range models.Fields {
		s := Daily(f, SeriesDays, now, rng)
		if len(s.Points) != SeriesDays {
			t.Fatalf("%s: expected %d points, got %d", f, SeriesDays, len(s.Points))
		}
		if s.Points[len(s.Points)-1].Date != "Mar 30" {
			t.Errorf("%s: series should end today, got %q", f, s.Points[len(s.Points)-1].Date)
		}
		if s.Points[0].Date != "Mar 1" {
			t.Errorf("%s: series should start 29 days ago, got %q", f, s.Points[0].Date)
		}
		for _, p := range s.Points {
			if p.Value < 0 {
				t.Errorf("%s: negative value %v", f, p.Value)
			}
		}
	}
}

func TestSeriesWindow(t *testing.T) {
	s := Daily(models.FieldAQI, SeriesDays, time.Now(), rand.New(rand.NewPCG(1, 1)))

	for _, days := range []int{7, 14, 30} {
		w, err := s.Window(days)
		if err != nil {
			t.Fatalf("Window(%d): %v", days, err)
		}
		if len(w.Points) != days {
			t.Errorf("Window(%d): got %d points", days, len(w.Points))
		}
		if w.Points[len(w.Points)-1] != s.Points[len(s.Points)-1] {
			t.Errorf("Window(%d) should keep the latest point", days)
		}
	}

	if _, err := s.Window(10); err != ErrInvalidRange {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
}

func TestTemperatureTrend(t *testing.T) {
	now := time.Date(2026, 3, 30, 15, 20, 0, 0, time.UTC)
	pts := TemperatureTrend(now, rand.New(rand.NewPCG(5, 6)))

	if len(pts) != 24 {
		t.Fatalf("expected 24 points, got %d", len(pts))
	}
	if pts[23].Time != "15:20" {
		t.Errorf("last point should be now, got %q", pts[23].Time)
	}
	for _, p := range pts {
		// base 22..28, variation -4..+4, noise ±0.75
		if p.Temperature < 17.2 || p.Temperature > 32.8 {
			t.Errorf("temperature out of plausible band at %s: %v", p.Time, p.Temperature)
		}
	}
}
