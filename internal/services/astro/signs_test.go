package astro

import (
	"testing"

	"NatalChart/internal/domain/models"
)

func TestSignOfBoundaries(t *testing.T) {
	cases := []struct {
		l    float64
		want models.Sign
	}{
		{0, models.Aries},
		{29.999, models.Aries},
		{30, models.Taurus},
		{180, models.Libra},
		{359.99, models.Pisces},
		{360, models.Aries},
		{-0.5, models.Pisces},
		{765, models.Taurus},
	}
	for _, tc := range cases {
		if got := SignOf(tc.l); got != tc.want {
			t.Errorf("SignOf(%v) = %s, want %s", tc.l, got, tc.want)
		}
	}
}

func TestSignOfPeriodic(t *testing.T) {
	for i := -2880; i <= 2880; i++ {
		l := float64(i) * 0.125
		if SignOf(l) != SignOf(l+360) {
			t.Fatalf("SignOf not periodic at %v", l)
		}
	}
}

func TestSignsPartitionCircle(t *testing.T) {
	for i := 0; i < 360*8; i++ {
		l := float64(i) * 0.125
		owners := 0
		for _, s := range models.Signs() {
			if l >= s.Start() && l < s.End() {
				owners++
				if SignOf(l) != s {
					t.Fatalf("SignOf(%v) = %s, range says %s", l, SignOf(l), s)
				}
			}
		}
		if owners != 1 {
			t.Fatalf("longitude %v owned by %d signs", l, owners)
		}
	}
}

func TestDegreeInSign(t *testing.T) {
	if d := DegreeInSign(45.5); d != 15.5 {
		t.Fatalf("DegreeInSign(45.5) = %v", d)
	}
	if d := DegreeInSign(-1); d != 29 {
		t.Fatalf("DegreeInSign(-1) = %v", d)
	}
}
