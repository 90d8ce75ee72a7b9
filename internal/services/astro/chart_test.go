package astro

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"NatalChart/internal/domain/models"
)

var j2000Moment = models.BirthMoment{Year: 2000, Month: 1, Day: 1, Hour: 12, Minute: 0}

func TestComputeJ2000(t *testing.T) {
	c := NewCalculator()
	res, err := c.Compute(j2000Moment)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.JulianDay != J2000 {
		t.Fatalf("jd = %v", res.JulianDay)
	}
	for i, el := range DefaultElements {
		p := res.Positions[i]
		want := el.RefLongitude + 5*math.Sin(float64(i))
		if p.Body != models.Body(i) || p.Longitude != want {
			t.Errorf("%s: got %v, want %v", p.Body, p.Longitude, want)
		}
		if p.Sign != SignOf(want) {
			t.Errorf("%s: sign %s, want %s", p.Body, p.Sign, SignOf(want))
		}
	}
	if res.Positions[models.Sun].Sign != models.Capricorn {
		t.Fatalf("sun sign = %s", res.Positions[models.Sun].Sign)
	}
	if res.Ascendant != res.Houses[0] || res.Midheaven != res.Houses[9] {
		t.Fatalf("angles do not match cusps")
	}
}

func TestComputeInvariants(t *testing.T) {
	c := NewCalculator()
	moments := []models.BirthMoment{
		j2000Moment,
		{Year: 1987, Month: 4, Day: 10, Hour: 19, Minute: 21, Latitude: 51.5, Longitude: -0.12},
		{Year: 1850, Month: 12, Day: 31, Hour: 23, Minute: 59, Latitude: -89.9, Longitude: 180},
		{Year: 2048, Month: 2, Day: 29, Hour: 0, Minute: 0, Latitude: 90, Longitude: -180},
	}
	for _, m := range moments {
		res, err := c.Compute(m)
		if err != nil {
			t.Fatalf("%s: %v", m.Key(), err)
		}
		for _, p := range res.Positions {
			if p.Longitude < 0 || p.Longitude >= 360 {
				t.Fatalf("%s %s longitude %v", m.Key(), p.Body, p.Longitude)
			}
			if p.House < 1 || p.House > 12 {
				t.Fatalf("%s %s house %d", m.Key(), p.Body, p.House)
			}
			if p.SignDegree < 0 || p.SignDegree >= 30 {
				t.Fatalf("%s %s sign degree %v", m.Key(), p.Body, p.SignDegree)
			}
		}
		north, south := res.Positions[models.NorthNode], res.Positions[models.SouthNode]
		if math.Abs(Separation(north.Longitude, south.Longitude)-180) > 1e-9 {
			t.Fatalf("%s: nodes not opposite", m.Key())
		}
		if !north.Retrograde || !south.Retrograde {
			t.Fatalf("%s: mean nodes must be retrograde", m.Key())
		}
		if res.Positions[models.Sun].Retrograde || res.Positions[models.Moon].Retrograde {
			t.Fatalf("%s: luminaries never retrograde", m.Key())
		}
		seen := map[[2]models.Body]bool{}
		for _, a := range res.Aspects {
			k := [2]models.Body{a.BodyA, a.BodyB}
			if seen[k] {
				t.Fatalf("duplicate aspect for %v", k)
			}
			seen[k] = true
		}
	}
}

func TestComputeIdempotent(t *testing.T) {
	c := NewCalculator()
	m := models.BirthMoment{Year: 1969, Month: 7, Day: 20, Hour: 20, Minute: 17, Latitude: 28.5, Longitude: -80.6}
	a, err := c.Compute(m)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	b, _ := c.Compute(m)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("charts differ:\n%+v\n%+v", a, b)
	}
	for i := range a.Positions {
		if math.Float64bits(a.Positions[i].Longitude) != math.Float64bits(b.Positions[i].Longitude) {
			t.Fatalf("longitude bits differ for %s", a.Positions[i].Body)
		}
	}
}

func TestRetrogradeFromMotion(t *testing.T) {
	c := NewCalculator()
	// the perturbation phase for Saturn reaches 3*pi about 342 days after J2000
	if s := c.Speed(models.Saturn, J2000+342.48); s >= 0 {
		t.Fatalf("saturn speed %v, expected retrograde", s)
	}
	if s := c.Speed(models.Saturn, J2000); s <= 0 {
		t.Fatalf("saturn speed %v at J2000, expected direct", s)
	}
	res, err := c.Compute(models.BirthMoment{Year: 2000, Month: 12, Day: 8, Hour: 12})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !res.Positions[models.Saturn].Retrograde {
		t.Fatalf("expected Saturn retrograde, speed %v", res.Positions[models.Saturn].Speed)
	}
	if res.Positions[models.Jupiter].Retrograde {
		t.Fatalf("Jupiter mean motion exceeds the perturbation rate and never reverses")
	}
}

func TestMeanMotionNeverRetrograde(t *testing.T) {
	c := NewCalculator(WithModel(NewPeriodicModel(WithPerturbation(0))), WithRetrogradeStep(1))
	res, err := c.Compute(models.BirthMoment{Year: 2000, Month: 12, Day: 8, Hour: 12})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for _, b := range models.PrimaryBodies() {
		if res.Positions[b].Retrograde {
			t.Fatalf("%s retrograde under mean motion", b)
		}
	}
}

func TestComputeRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name  string
		m     models.BirthMoment
		field string
	}{
		{"feb 30", models.BirthMoment{Year: 2001, Month: 2, Day: 30}, "date"},
		{"hour 24", models.BirthMoment{Year: 2001, Month: 2, Day: 3, Hour: 24}, "time"},
		{"lat", models.BirthMoment{Year: 2001, Month: 2, Day: 3, Latitude: 91}, "latitude"},
		{"lon", models.BirthMoment{Year: 2001, Month: 2, Day: 3, Longitude: -180.5}, "longitude"},
	}
	c := NewCalculator()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Compute(tc.m)
			var ie *InputError
			if !errors.As(err, &ie) {
				t.Fatalf("expected InputError, got %v", err)
			}
			if ie.Field != tc.field {
				t.Fatalf("field = %q, want %q", ie.Field, tc.field)
			}
		})
	}
}

type oppositionsOnly struct{ calls int }

func (f *oppositionsOnly) Detect(positions []models.BodyPosition) []models.Aspect {
	f.calls++
	return []models.Aspect{{BodyA: models.NorthNode, BodyB: models.SouthNode, Type: models.Opposition, ExactAngle: 180, Separation: 180}}
}

func (f *oppositionsOnly) Table() []models.AspectDefinition {
	return []models.AspectDefinition{{Type: models.Opposition, Angle: 180, Orb: 0}}
}

func TestCalculatorUsesAspectFinder(t *testing.T) {
	finder := &oppositionsOnly{}
	res, err := NewCalculator(WithAspects(finder)).Compute(j2000Moment)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if finder.calls != 1 || len(res.Aspects) != 1 || res.Aspects[0].Type != models.Opposition {
		t.Fatalf("calls=%d aspects=%+v", finder.calls, res.Aspects)
	}
}

func TestFingerprintTracksParameters(t *testing.T) {
	base := NewCalculator().Fingerprint()
	if base != NewCalculator().Fingerprint() {
		t.Fatal("equal configurations must share a fingerprint")
	}
	variants := map[string]*Calculator{
		"amplitude": NewCalculator(WithModel(NewPeriodicModel(WithPerturbation(3)))),
		"rate":      NewCalculator(WithModel(NewPeriodicModel(WithPerturbationRate(0.02)))),
		"step":      NewCalculator(WithRetrogradeStep(1)),
		"aspects":   NewCalculator(WithAspects(&oppositionsOnly{})),
	}
	el := DefaultElements
	el[models.Mars].Period = 687
	variants["elements"] = NewCalculator(WithModel(NewPeriodicModel(WithElements(el))))

	for name, c := range variants {
		if c.Fingerprint() == base {
			t.Errorf("%s: fingerprint unchanged", name)
		}
	}
}
