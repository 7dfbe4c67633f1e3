package globe

import (
	gomath "math"
	"testing"
)

func TestReliefBounds(t *testing.T) {
	const amplitude = 4000
	for lat := -90.0; lat <= 90; lat += 7.5 {
		for lon := -180.0; lon <= 180; lon += 7.5 {
			if h := Relief(lat, lon, amplitude); gomath.Abs(h) > amplitude {
				t.Fatalf("Relief(%v, %v) = %v, outside ±%v", lat, lon, h, amplitude)
			}
		}
	}
	if h := Relief(90, 45, amplitude); !near(h, 0, 1e-6) {
		t.Errorf("Relief at the pole = %v, want 0", h)
	}
	if a, b := Relief(10, -180, amplitude), Relief(10, 180, amplitude); !near(a, b, 1e-6) {
		t.Errorf("Relief at the antimeridian differs: %v vs %v", a, b)
	}
}

func TestNewReliefModel(t *testing.T) {
	m, err := NewReliefModel(37, 73, 3000)
	if err != nil {
		t.Fatalf("NewReliefModel() error = %v", err)
	}
	if m.MinElevation() >= 0 || m.MaxElevation() <= 0 {
		t.Errorf("extremes = %v, %v, want both signs", m.MinElevation(), m.MaxElevation())
	}
	// Samples sit every 5°, so the model reproduces Relief there exactly.
	if got, want := m.Elevation(20, 35), Relief(20, 35, 3000); !near(got, want, 1e-6) {
		t.Errorf("Elevation(20, 35) = %v, want %v", got, want)
	}

	if _, err := NewReliefModel(1, 10, 1); err == nil {
		t.Error("NewReliefModel(1, 10) error = nil")
	}
}
