package service

import "NatalChart/internal/domain/models"

// OrbitalModel returns the ecliptic longitude of a body at a Julian Day.
// Results are normalised to [0,360).
type OrbitalModel interface {
	Name() string
	Longitude(body models.Body, jd float64) float64
}

// ChartCalculator assembles a complete chart for a birth moment.
type ChartCalculator interface {
	Compute(m models.BirthMoment) (models.ChartResult, error)
}

// AspectFinder detects aspects among chart positions.
type AspectFinder interface {
	Detect(positions []models.BodyPosition) []models.Aspect
	Table() []models.AspectDefinition
}
