package astro

import (
	"fmt"
	"math"

	"NatalChart/internal/domain/models"
)

const (
	gmstAtJ2000       = 280.46
	siderealDailyRate = 360.98564736629
	latitudeShift     = 0.1
	houseWidth        = 30.0
	cuspSumTolerance  = 1e-6
)

// LocalSiderealTime in degrees for an east-positive longitude.
func LocalSiderealTime(jd, longitude float64) float64 {
	return Normalize(gmstAtJ2000 + siderealDailyRate*DaysSinceJ2000(jd) + longitude)
}

// CuspsFor computes equal-house cusps from the local sidereal time, each
// shifted by a tenth of the latitude.
func CuspsFor(jd, latitude, longitude float64) models.HouseCusps {
	lst := LocalSiderealTime(jd, longitude)
	var cusps models.HouseCusps
	for i := range cusps {
		cusps[i] = Normalize(lst + houseWidth*float64(i) + latitudeShift*latitude)
	}
	return cusps
}

// HouseArc is the span of one house. A wrapping arc crosses 0 degrees.
type HouseArc struct {
	Start float64
	End   float64
	Wraps bool
}

// Contains reports whether the normalised longitude l lies in [Start, End).
func (a HouseArc) Contains(l float64) bool {
	if a.Wraps {
		return l >= a.Start || l < a.End
	}
	return l >= a.Start && l < a.End
}

// Width is the forward extent of the arc in degrees.
func (a HouseArc) Width() float64 {
	if a.Wraps {
		return 360 - a.Start + a.End
	}
	return a.End - a.Start
}

// HouseArcs partitions the circle into twelve houses. Build with NewHouseArcs.
type HouseArcs [12]HouseArc

// ValidateCusps checks that every cusp lies in [0,360) and that the cusps
// run forward around the circle exactly once.
func ValidateCusps(cusps models.HouseCusps) error {
	sum := 0.0
	for i, c := range cusps {
		if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 || c >= 360 {
			return fmt.Errorf("%w: cusp %d = %v out of [0,360)", ErrInvalidCusps, i+1, c)
		}
		next := cusps[(i+1)%len(cusps)]
		w := Normalize(next - c)
		if w == 0 {
			return fmt.Errorf("%w: cusps %d and %d coincide", ErrInvalidCusps, i+1, (i+1)%len(cusps)+1)
		}
		sum += w
	}
	if math.Abs(sum-360) > cuspSumTolerance {
		return fmt.Errorf("%w: cusps are not in circular order (arcs sum to %.6f)", ErrInvalidCusps, sum)
	}
	return nil
}

// NewHouseArcs validates cusps and derives the explicit arcs.
func NewHouseArcs(cusps models.HouseCusps) (HouseArcs, error) {
	var arcs HouseArcs
	if err := ValidateCusps(cusps); err != nil {
		return arcs, err
	}
	for i := range cusps {
		start, end := cusps[i], cusps[(i+1)%len(cusps)]
		arcs[i] = HouseArc{Start: start, End: end, Wraps: end < start}
	}
	return arcs, nil
}

// HouseOf returns the 1-based house containing longitude.
func (a HouseArcs) HouseOf(longitude float64) (int, error) {
	l := Normalize(longitude)
	for i, arc := range a {
		if arc.Contains(l) {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: %v", ErrHouseNotFound, longitude)
}

// HouseOf is a convenience over NewHouseArcs for a single lookup.
func HouseOf(longitude float64, cusps models.HouseCusps) (int, error) {
	arcs, err := NewHouseArcs(cusps)
	if err != nil {
		return 0, err
	}
	return arcs.HouseOf(longitude)
}
