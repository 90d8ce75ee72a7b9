package astro

import "testing"

func TestParseClock(t *testing.T) {
	cases := []struct {
		in     string
		h, m   int
		wantOK bool
	}{
		{"00:00", 0, 0, true},
		{"09:05", 9, 5, true},
		{"23:59", 23, 59, true},
		{"24:00", 0, 0, false},
		{"7:30", 0, 0, false},
		{"12:60", 0, 0, false},
		{"ab:cd", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tc := range cases {
		h, m, err := ParseClock(tc.in)
		if tc.wantOK != (err == nil) {
			t.Errorf("ParseClock(%q) err = %v", tc.in, err)
			continue
		}
		if tc.wantOK && (h != tc.h || m != tc.m) {
			t.Errorf("ParseClock(%q) = %d:%d", tc.in, h, m)
		}
	}
}

func TestParseDate(t *testing.T) {
	if _, _, _, err := ParseDate("2000-02-29"); err != nil {
		t.Fatalf("leap day rejected: %v", err)
	}
	for _, bad := range []string{"2001-02-29", "2000-13-01", "2000-1-1", "01/01/2000"} {
		_, _, _, err := ParseDate(bad)
		ie, ok := AsInputError(err)
		if !ok || ie.Field != "date" {
			t.Errorf("ParseDate(%q) err = %v", bad, err)
		}
	}
}

func TestParseBirthMoment(t *testing.T) {
	m, err := ParseBirthMoment("2000-01-01", "12:00", 0, 0)
	if err != nil {
		t.Fatalf("ParseBirthMoment: %v", err)
	}
	if JulianDayOf(m) != J2000 {
		t.Fatalf("jd = %v", JulianDayOf(m))
	}
	_, err = ParseBirthMoment("2000-01-01", "12:00", -90.5, 0)
	if ie, ok := AsInputError(err); !ok || ie.Field != "latitude" {
		t.Fatalf("expected latitude error, got %v", err)
	}
	_, err = ParseBirthMoment("2000-01-01", "25:00", 0, 0)
	if ie, ok := AsInputError(err); !ok || ie.Field != "time" {
		t.Fatalf("expected time error, got %v", err)
	}
}
