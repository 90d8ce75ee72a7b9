package astro

import (
	"math"

	"NatalChart/internal/domain/models"
)

// SignOf maps a longitude to its zodiac sign. Ranges are half-open, so a
// longitude of exactly 30 is Taurus.
func SignOf(longitude float64) models.Sign {
	idx := int(math.Floor(Normalize(longitude) / models.SignDegree))
	if idx >= models.SignCount {
		idx = models.SignCount - 1
	}
	return models.Sign(idx)
}

// DegreeInSign is the offset of longitude from the start of its sign.
func DegreeInSign(longitude float64) float64 {
	l := Normalize(longitude)
	return l - SignOf(l).Start()
}
