package astro

import (
	"fmt"
	"hash/fnv"
	"math"
	"strconv"

	"NatalChart/internal/domain/models"
	domsvc "NatalChart/internal/domain/service"
)

// OrbitElement describes one body for the periodic model.
type OrbitElement struct {
	Period       float64 // sidereal period, days
	RefLongitude float64 // mean longitude at J2000, degrees
}

// DefaultElements are indexed by models.Body, Sun through Pluto.
var DefaultElements = [models.PrimaryBodyCount]OrbitElement{
	{Period: 365.256, RefLongitude: 280.46646},
	{Period: 27.321661, RefLongitude: 218.3165},
	{Period: 87.969, RefLongitude: 252.25166724},
	{Period: 224.701, RefLongitude: 181.97970850},
	{Period: 686.98, RefLongitude: 355.44656795},
	{Period: 4332.59, RefLongitude: 34.39644051},
	{Period: 10759.22, RefLongitude: 49.95424423},
	{Period: 30685.4, RefLongitude: 313.23810451},
	{Period: 60189.0, RefLongitude: 304.87997031},
	{Period: 90560.0, RefLongitude: 238.92881780},
}

const (
	DefaultPerturbation     = 5.0
	DefaultPerturbationRate = 0.01
	periodicModelName       = "periodic"
	meanMotionModelName     = "mean-motion"
)

// ModelOption configures PeriodicModel.
type ModelOption func(*ModelConfig)

// ModelConfig holds PeriodicModel parameters.
type ModelConfig struct {
	Elements         [models.PrimaryBodyCount]OrbitElement
	Perturbation     float64 // amplitude, degrees
	PerturbationRate float64 // radians per day
}

// WithPerturbation sets the sinusoidal amplitude. Zero gives plain mean motion.
func WithPerturbation(amplitude float64) ModelOption {
	return func(c *ModelConfig) {
		c.Perturbation = amplitude
	}
}

// WithPerturbationRate sets the angular rate of the perturbation term.
func WithPerturbationRate(rate float64) ModelOption {
	return func(c *ModelConfig) {
		c.PerturbationRate = rate
	}
}

// WithElements replaces the orbital table.
func WithElements(el [models.PrimaryBodyCount]OrbitElement) ModelOption {
	return func(c *ModelConfig) {
		c.Elements = el
	}
}

// PeriodicModel is mean motion plus a per-body sinusoidal term:
//
//	L = ref + 360/period * d + A * sin(rate*d + index)
//
// where d is days since J2000. The table is copied at construction and
// never mutated, so one model may serve any number of goroutines.
type PeriodicModel struct {
	cfg ModelConfig
}

func NewPeriodicModel(opts ...ModelOption) *PeriodicModel {
	cfg := ModelConfig{
		Elements:         DefaultElements,
		Perturbation:     DefaultPerturbation,
		PerturbationRate: DefaultPerturbationRate,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &PeriodicModel{cfg: cfg}
}

func (m *PeriodicModel) Name() string {
	if m.cfg.Perturbation == 0 {
		return meanMotionModelName
	}
	return periodicModelName
}

// Longitude returns the ecliptic longitude of body at jd. The lunar nodes
// are delegated to the mean node formula.
func (m *PeriodicModel) Longitude(body models.Body, jd float64) float64 {
	switch body {
	case models.NorthNode:
		return NorthNode(jd)
	case models.SouthNode:
		return SouthNode(jd)
	}
	if body < models.Sun || int(body) >= models.PrimaryBodyCount {
		return math.NaN()
	}

	el := m.cfg.Elements[body]
	d := DaysSinceJ2000(jd)
	raw := el.RefLongitude + (360/el.Period)*d + m.cfg.Perturbation*math.Sin(m.cfg.PerturbationRate*d+float64(body))
	return Normalize(raw)
}

// Fingerprint identifies the model parameters. Two models with equal
// fingerprints return equal longitudes.
func (m *PeriodicModel) Fingerprint() string {
	h := fnv.New64a()
	for _, el := range m.cfg.Elements {
		fmt.Fprintf(h, "%s/%s;", ftoa(el.Period), ftoa(el.RefLongitude))
	}
	return fmt.Sprintf("%s(a=%s,w=%s,el=%016x)",
		m.Name(), ftoa(m.cfg.Perturbation), ftoa(m.cfg.PerturbationRate), h.Sum64())
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// Config returns a copy of the model parameters.
func (m *PeriodicModel) Config() ModelConfig { return m.cfg }

var _ domsvc.OrbitalModel = (*PeriodicModel)(nil)
