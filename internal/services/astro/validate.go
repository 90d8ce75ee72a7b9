package astro

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"

	"NatalChart/internal/domain/models"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date. Impossible dates such as
// 2001-02-29 are rejected.
func ParseDate(s string) (year, month, day int, err error) {
	t, perr := time.Parse(dateLayout, s)
	if perr != nil {
		return 0, 0, 0, inputErr("date", s, "expected a valid YYYY-MM-DD calendar date")
	}
	return t.Year(), int(t.Month()), t.Day(), nil
}

// ParseClock parses a 24-hour "HH:MM" time of day.
func ParseClock(s string) (hour, minute int, err error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, inputErr("time", s, "expected HH:MM in 24-hour format")
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	return hour, minute, nil
}

// ParseBirthMoment parses and validates the textual form of a birth moment.
func ParseBirthMoment(date, clock string, lat, lon float64) (models.BirthMoment, error) {
	y, mo, d, err := ParseDate(date)
	if err != nil {
		return models.BirthMoment{}, err
	}
	h, mi, err := ParseClock(clock)
	if err != nil {
		return models.BirthMoment{}, err
	}
	m := models.BirthMoment{Year: y, Month: mo, Day: d, Hour: h, Minute: mi, Latitude: lat, Longitude: lon}
	if err := ValidateMoment(m); err != nil {
		return models.BirthMoment{}, err
	}
	return m, nil
}

// ValidateMoment checks every field of m and returns the first failure.
func ValidateMoment(m models.BirthMoment) error {
	if m.Year < 1 || m.Year > 9999 {
		return inputErr("date", strconv.Itoa(m.Year), "year must be within 1..9999")
	}
	if m.Month < 1 || m.Month > 12 {
		return inputErr("date", strconv.Itoa(m.Month), "month must be within 1..12")
	}
	t := time.Date(m.Year, time.Month(m.Month), m.Day, 0, 0, 0, 0, time.UTC)
	if m.Day < 1 || t.Day() != m.Day {
		return inputErr("date", fmt.Sprintf("%04d-%02d-%02d", m.Year, m.Month, m.Day), "day does not exist in month")
	}
	if m.Hour < 0 || m.Hour > 23 || m.Minute < 0 || m.Minute > 59 {
		return inputErr("time", fmt.Sprintf("%02d:%02d", m.Hour, m.Minute), "expected HH:MM in 24-hour format")
	}
	if math.IsNaN(m.Latitude) || m.Latitude < -90 || m.Latitude > 90 {
		return inputErr("latitude", strconv.FormatFloat(m.Latitude, 'f', -1, 64), "must be within [-90, 90]")
	}
	if math.IsNaN(m.Longitude) || m.Longitude < -180 || m.Longitude > 180 {
		return inputErr("longitude", strconv.FormatFloat(m.Longitude, 'f', -1, 64), "must be within [-180, 180]")
	}
	return nil
}
