package astro

import (
	"fmt"
	"strings"

	"NatalChart/internal/domain/models"
	domsvc "NatalChart/internal/domain/service"
)

// DefaultRetrogradeStep is the half-window, in days, used to sample motion.
const DefaultRetrogradeStep = 0.5

// CalculatorOption configures Calculator.
type CalculatorOption func(*Calculator)

// WithModel swaps the orbital model.
func WithModel(m domsvc.OrbitalModel) CalculatorOption {
	return func(c *Calculator) {
		c.model = m
	}
}

// WithAspects sets the aspect finder.
func WithAspects(d domsvc.AspectFinder) CalculatorOption {
	return func(c *Calculator) {
		c.aspects = d
	}
}

// WithRetrogradeStep sets the sampling half-window in days. Non-positive
// values are ignored.
func WithRetrogradeStep(days float64) CalculatorOption {
	return func(c *Calculator) {
		if days > 0 {
			c.step = days
		}
	}
}

// Calculator assembles charts. It holds only immutable configuration.
type Calculator struct {
	model   domsvc.OrbitalModel
	aspects domsvc.AspectFinder
	step    float64
}

func NewCalculator(opts ...CalculatorOption) *Calculator {
	c := &Calculator{
		model:   NewPeriodicModel(),
		aspects: DefaultAspectDetector(),
		step:    DefaultRetrogradeStep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the orbital model in use.
func (c *Calculator) Model() domsvc.OrbitalModel { return c.model }

// Aspects returns the aspect finder in use.
func (c *Calculator) Aspects() domsvc.AspectFinder { return c.aspects }

// Fingerprint names everything other than the birth moment that shapes a
// chart: model parameters, retrograde step and aspect table.
func (c *Calculator) Fingerprint() string {
	model := c.model.Name()
	if fp, ok := c.model.(interface{ Fingerprint() string }); ok {
		model = fp.Fingerprint()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s|step=%s|aspects=", model, ftoa(c.step))
	for i, def := range c.aspects.Table() {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s/%s/%s", def.Type, ftoa(def.Angle), ftoa(def.Orb))
	}
	return b.String()
}

// Compute builds the chart for m. Invalid input is rejected with an
// *InputError before any computation.
func (c *Calculator) Compute(m models.BirthMoment) (models.ChartResult, error) {
	if err := ValidateMoment(m); err != nil {
		return models.ChartResult{}, err
	}

	jd := JulianDayOf(m)
	cusps := CuspsFor(jd, m.Latitude, m.Longitude)
	arcs, err := NewHouseArcs(cusps)
	if err != nil {
		return models.ChartResult{}, fmt.Errorf("houses for jd %.6f: %w", jd, err)
	}

	res := models.ChartResult{
		Input:     m,
		JulianDay: jd,
		Houses:    cusps,
		Ascendant: cusps.Ascendant(),
		Midheaven: cusps.Midheaven(),
	}

	north, south := MeanNodes(jd)
	for _, body := range models.Bodies() {
		var lon float64
		switch body {
		case models.NorthNode:
			lon = north
		case models.SouthNode:
			lon = south
		default:
			lon = c.model.Longitude(body, jd)
		}
		pos, err := c.place(body, lon, jd, arcs)
		if err != nil {
			return models.ChartResult{}, err
		}
		res.Positions[body] = pos
	}

	res.Aspects = c.aspects.Detect(res.Positions[:])
	return res, nil
}

func (c *Calculator) place(body models.Body, lon, jd float64, arcs HouseArcs) (models.BodyPosition, error) {
	house, err := arcs.HouseOf(lon)
	if err != nil {
		return models.BodyPosition{}, fmt.Errorf("place %s: %w", body, err)
	}
	speed := c.Speed(body, jd)
	return models.BodyPosition{
		Body:       body,
		Longitude:  lon,
		Sign:       SignOf(lon),
		SignDegree: DegreeInSign(lon),
		House:      house,
		Retrograde: speed < 0,
		Speed:      speed,
	}, nil
}

// Speed is the apparent motion of body around jd in degrees per day,
// sampled across jd-step and jd+step.
func (c *Calculator) Speed(body models.Body, jd float64) float64 {
	before := c.longitudeAt(body, jd-c.step)
	after := c.longitudeAt(body, jd+c.step)
	return SignedDelta(before, after) / (2 * c.step)
}

func (c *Calculator) longitudeAt(body models.Body, jd float64) float64 {
	switch body {
	case models.NorthNode:
		return NorthNode(jd)
	case models.SouthNode:
		return SouthNode(jd)
	}
	return c.model.Longitude(body, jd)
}

var _ domsvc.ChartCalculator = (*Calculator)(nil)
