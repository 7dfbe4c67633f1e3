// Package geo provides geographic primitives: locations, positions and
// lat/lon sectors, all in degrees.
package geo

import "math"

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// ClampLatitude limits a latitude to [-90, 90].
func ClampLatitude(lat float64) float64 {
	return math.Max(-90, math.Min(90, lat))
}

// NormalizeLongitude wraps a longitude into [-180, 180].
func NormalizeLongitude(lon float64) float64 {
	if lon >= -180 && lon <= 180 {
		return lon
	}
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

// Location is a latitude/longitude pair in degrees.
type Location struct {
	Lat, Lon float64
}

// Position is a location with an elevation in meters.
type Position struct {
	Lat, Lon  float64
	Elevation float64
}

// Location drops the elevation.
func (p Position) Location() Location {
	return Location{Lat: p.Lat, Lon: p.Lon}
}
