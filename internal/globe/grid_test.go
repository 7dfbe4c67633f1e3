package globe

import (
	"sync"
	"testing"

	"github.com/Faultbox/midgard-globe/pkg/geo"
)

// ramp is a 3x3 grid over 0..2° where elevation = 100*row + 10*col.
func ramp(t *testing.T) *GridElevationModel {
	t.Helper()
	m, err := NewGridElevationModel(geo.NewSector(0, 2, 0, 2), 3, 3, []float64{
		0, 10, 20,
		100, 110, 120,
		200, 210, 220,
	})
	if err != nil {
		t.Fatalf("NewGridElevationModel() error = %v", err)
	}
	return m
}

func TestGridElevationBilinear(t *testing.T) {
	m := ramp(t)

	tests := []struct {
		lat, lon float64
		want     float64
	}{
		{0, 0, 0},
		{2, 2, 220},
		{1, 1, 110},
		{0.5, 0.5, 55},
		{1.5, 0.25, 152.5},
		{5, 5, 0}, // outside the grid
	}
	for _, tt := range tests {
		if got := m.Elevation(tt.lat, tt.lon); !near(got, tt.want, 1e-9) {
			t.Errorf("Elevation(%v, %v) = %v, want %v", tt.lat, tt.lon, got, tt.want)
		}
	}
}

func TestGridMinAndMax(t *testing.T) {
	m := ramp(t)

	if m.MinElevation() != 0 || m.MaxElevation() != 220 {
		t.Errorf("Min/MaxElevation() = %v/%v, want 0/220", m.MinElevation(), m.MaxElevation())
	}
	lo, hi := m.MinAndMaxElevations(geo.NewSector(1, 2, 1, 2))
	if lo != 110 || hi != 220 {
		t.Errorf("MinAndMaxElevations(NE cell) = %v/%v, want 110/220", lo, hi)
	}
	lo, hi = m.MinAndMaxElevations(geo.NewSector(10, 20, 10, 20))
	if lo != 0 || hi != 0 {
		t.Errorf("MinAndMaxElevations(outside) = %v/%v, want 0/0", lo, hi)
	}
}

func TestGridSetElevationsNotifies(t *testing.T) {
	m := ramp(t)

	var mu sync.Mutex
	var changes []Change
	m.AddListener(func(c Change) {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, c)
	})

	before := m.Timestamp()
	m.SetElevations(geo.NewSector(0.9, 1.1, 0.9, 1.1), func(lat, lon float64) float64 { return -500 })

	if got := m.Elevation(1, 1); got != -500 {
		t.Errorf("Elevation(1, 1) = %v after update, want -500", got)
	}
	if got := m.Elevation(0, 0); got != 0 {
		t.Errorf("Elevation(0, 0) = %v, should be untouched", got)
	}
	if m.Timestamp() != before+1 {
		t.Errorf("Timestamp() = %d, want %d", m.Timestamp(), before+1)
	}
	if m.MinElevation() != -500 {
		t.Errorf("MinElevation() = %v, want -500", m.MinElevation())
	}

	mu.Lock()
	defer mu.Unlock()
	if len(changes) != 1 || changes[0].All {
		t.Fatalf("changes = %+v, want one sector change", changes)
	}
	// The center sample influences every cell around it.
	if want := geo.NewSector(0, 2, 0, 2); changes[0].Sector != want {
		t.Errorf("changed sector = %v, want %v", changes[0].Sector, want)
	}
}

func TestGridReset(t *testing.T) {
	m := ramp(t)
	var all bool
	m.AddListener(func(c Change) { all = c.All })

	if err := m.Reset(make([]float64, 4)); err == nil {
		t.Error("Reset() with the wrong sample count should fail")
	}
	if err := m.Reset(make([]float64, 9)); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if !all || m.MaxElevation() != 0 {
		t.Errorf("Reset() all=%v max=%v, want true and 0", all, m.MaxElevation())
	}
}

func TestCompoundElevationModelPrefersFinest(t *testing.T) {
	coarse, _ := NewGridElevationModel(geo.NewSector(-10, 10, -10, 10), 3, 3, []float64{
		1, 1, 1, 1, 1, 1, 1, 1, 1,
	})
	fine, _ := NewGridElevationModel(geo.NewSector(0, 1, 0, 1), 11, 11, nil)
	fine.SetElevations(fine.Sector(), func(lat, lon float64) float64 { return 7 })

	c := NewCompoundElevationModel(coarse, fine)

	if got := c.Elevation(0.5, 0.5); got != 7 {
		t.Errorf("Elevation() inside fine model = %v, want 7", got)
	}
	if got := c.Elevation(-5, -5); got != 1 {
		t.Errorf("Elevation() inside coarse model only = %v, want 1", got)
	}
	if got := c.Elevation(50, 50); got != 0 {
		t.Errorf("Elevation() outside all models = %v, want 0", got)
	}
	if got, want := c.BestResolution(geo.NewSector(0, 1, 0, 1)), fine.BestResolution(fine.Sector()); got != want {
		t.Errorf("BestResolution() = %v, want %v", got, want)
	}

	before := c.Timestamp()
	fine.SetElevations(fine.Sector(), func(lat, lon float64) float64 { return 8 })
	if c.Timestamp() == before {
		t.Error("compound timestamp should follow member changes")
	}
}
