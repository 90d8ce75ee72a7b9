package astro

import (
	"math"
	"testing"
	"time"
)

func TestToJulianDayKnownDates(t *testing.T) {
	cases := []struct {
		name            string
		y, mo, d, h, mi int
		want            float64
	}{
		{"j2000", 2000, 1, 1, 12, 0, 2451545.0},
		{"meeus 1987-01-27", 1987, 1, 27, 0, 0, 2446822.5},
		{"1999 new year", 1999, 1, 1, 0, 0, 2451179.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ToJulianDay(tc.y, tc.mo, tc.d, tc.h, tc.mi)
			if got != tc.want {
				t.Fatalf("ToJulianDay = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestToJulianDayMonotonic(t *testing.T) {
	start := time.Date(1999, 12, 31, 20, 0, 0, 0, time.UTC)
	end := time.Date(2000, 3, 2, 4, 0, 0, 0, time.UTC)
	prev := math.Inf(-1)
	for ts := start; ts.Before(end); ts = ts.Add(7 * time.Minute) {
		jd := JulianDayOf(MomentAt(ts, 0, 0))
		if jd <= prev {
			t.Fatalf("jd not increasing at %s: %v <= %v", ts, jd, prev)
		}
		prev = jd
	}
}

func TestToJulianDayHourStep(t *testing.T) {
	a := ToJulianDay(2024, 2, 29, 23, 0)
	b := ToJulianDay(2024, 3, 1, 0, 0)
	if math.Abs((b-a)-1.0/24) > 1e-9 {
		t.Fatalf("expected one hour across month boundary, got %v days", b-a)
	}
}

func TestMomentAtUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	m := MomentAt(time.Date(2000, 1, 1, 15, 0, 0, 0, loc), 10, 20)
	if m.Hour != 12 || m.Day != 1 || m.Latitude != 10 || m.Longitude != 20 {
		t.Fatalf("unexpected moment %+v", m)
	}
	if JulianDayOf(m) != J2000 {
		t.Fatalf("expected J2000, got %v", JulianDayOf(m))
	}
}
