package globe

import (
	gomath "math"

	"github.com/Faultbox/midgard-globe/pkg/geo"
)

// Relief returns a smooth procedural elevation in [-amplitude, amplitude]
// meters. It is periodic in longitude and flattens toward the poles.
func Relief(lat, lon, amplitude float64) float64 {
	phi := lat * gomath.Pi / 180
	lam := lon * gomath.Pi / 180
	v := 0.55*gomath.Sin(3*lam)*gomath.Cos(2*phi) +
		0.30*gomath.Sin(7*lam+1.3)*gomath.Sin(5*phi+0.4) +
		0.15*gomath.Cos(17*lam-0.6)*gomath.Cos(11*phi)
	return amplitude * v * gomath.Cos(phi)
}

// NewReliefModel returns a full-sphere grid of numLat by numLon samples
// of Relief.
func NewReliefModel(numLat, numLon int, amplitude float64) (*GridElevationModel, error) {
	m, err := NewGridElevationModel(geo.FullSphere(), numLat, numLon, nil)
	if err != nil {
		return nil, err
	}
	for r := range numLat {
		lat := m.rowLat(r)
		for c := range numLon {
			m.samples[r*numLon+c] = Relief(lat, m.colLon(c), amplitude)
		}
	}
	m.updateExtremes()
	return m, nil
}
