package astro

import (
	"math"
	"time"

	"NatalChart/internal/domain/models"
)

// J2000 is the Julian Day of 2000-01-01 12:00.
const J2000 = 2451545.0

// ToJulianDay converts a Gregorian civil date and time to a Julian Day.
// The clock is used as given; callers convert timezones beforehand.
func ToJulianDay(year, month, day, hour, minute int) float64 {
	y := float64(year)
	m := float64(month)
	if month <= 2 {
		y--
		m += 12
	}

	a := math.Floor(y / 100)
	b := 2 - a + math.Floor(a/4)
	dayFraction := (float64(hour) + float64(minute)/60) / 24

	return math.Floor(365.25*(y+4716)) + math.Floor(30.6001*(m+1)) + float64(day) + dayFraction + b - 1524.5
}

// JulianDayOf converts a birth moment.
func JulianDayOf(m models.BirthMoment) float64 {
	return ToJulianDay(m.Year, m.Month, m.Day, m.Hour, m.Minute)
}

// DaysSinceJ2000 returns jd - J2000.
func DaysSinceJ2000(jd float64) float64 { return jd - J2000 }

// MomentAt builds a BirthMoment from the UTC wall clock of t, truncated to
// the minute.
func MomentAt(t time.Time, lat, lon float64) models.BirthMoment {
	t = t.UTC()
	return models.BirthMoment{
		Year:      t.Year(),
		Month:     int(t.Month()),
		Day:       t.Day(),
		Hour:      t.Hour(),
		Minute:    t.Minute(),
		Latitude:  lat,
		Longitude: lon,
	}
}
