package astro

import (
	"fmt"
	"math"

	"NatalChart/internal/domain/models"
	domsvc "NatalChart/internal/domain/service"
)

// DefaultAspectTable returns the standard table in match order.
func DefaultAspectTable() []models.AspectDefinition {
	return []models.AspectDefinition{
		{Type: models.Conjunction, Angle: 0, Orb: 8},
		{Type: models.Sextile, Angle: 60, Orb: 6},
		{Type: models.Square, Angle: 90, Orb: 8},
		{Type: models.Trine, Angle: 120, Orb: 8},
		{Type: models.Opposition, Angle: 180, Orb: 8},
	}
}

// AspectDetector checks every pair of positions against an ordered table;
// the first matching row wins.
type AspectDetector struct {
	table []models.AspectDefinition
}

// NewAspectDetector copies table. An empty table selects the default.
func NewAspectDetector(table ...models.AspectDefinition) (*AspectDetector, error) {
	if len(table) == 0 {
		table = DefaultAspectTable()
	}
	for _, def := range table {
		if !def.Type.Valid() {
			return nil, fmt.Errorf("aspect table: invalid type %d", int(def.Type))
		}
		if def.Angle < 0 || def.Angle > 180 {
			return nil, fmt.Errorf("aspect table: %s angle %v out of [0,180]", def.Type, def.Angle)
		}
		if def.Orb < 0 {
			return nil, fmt.Errorf("aspect table: %s orb %v is negative", def.Type, def.Orb)
		}
	}
	return &AspectDetector{table: append([]models.AspectDefinition(nil), table...)}, nil
}

// Table returns a copy of the detector's definitions.
func (d *AspectDetector) Table() []models.AspectDefinition {
	return append([]models.AspectDefinition(nil), d.table...)
}

// Match classifies a single separation.
func (d *AspectDetector) Match(separation float64) (models.AspectDefinition, float64, bool) {
	for _, def := range d.table {
		orb := math.Abs(separation - def.Angle)
		if orb <= def.Orb {
			return def, orb, true
		}
	}
	return models.AspectDefinition{}, 0, false
}

// Detect returns at most one aspect per unordered pair, in pair order.
func (d *AspectDetector) Detect(positions []models.BodyPosition) []models.Aspect {
	var out []models.Aspect
	for i := 0; i < len(positions); i++ {
		for j := i + 1; j < len(positions); j++ {
			a, b := positions[i], positions[j]
			sep := Separation(a.Longitude, b.Longitude)
			def, orb, ok := d.Match(sep)
			if !ok {
				continue
			}
			out = append(out, models.Aspect{
				BodyA:      a.Body,
				BodyB:      b.Body,
				Type:       def.Type,
				ExactAngle: def.Angle,
				Separation: sep,
				Orb:        orb,
			})
		}
	}
	return out
}

var _ domsvc.AspectFinder = (*AspectDetector)(nil)

// DefaultAspectDetector uses DefaultAspectTable.
func DefaultAspectDetector() *AspectDetector {
	return &AspectDetector{table: DefaultAspectTable()}
}
