package astro

import "math"

// Normalize maps any angle in degrees onto [0,360). Values already in range
// are returned unchanged.
func Normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// -tiny + 360 rounds up to 360
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// SignedDelta is the shortest signed arc from a to b, in (-180,180].
func SignedDelta(a, b float64) float64 {
	d := Normalize(b - a)
	if d > 180 {
		d -= 360
	}
	return d
}

// Separation is the unsigned angular distance between two longitudes,
// in [0,180].
func Separation(a, b float64) float64 {
	diff := math.Abs(a - b)
	if diff > 180 {
		return 360 - diff
	}
	return diff
}
