package models

import (
	"fmt"
	"strconv"
)

// BirthMoment is the engine input: a civil date and time with a geographic
// location. Hour and Minute are taken as given, no timezone is applied.
type BirthMoment struct {
	Year      int     `json:"year"`
	Month     int     `json:"month"`
	Day       int     `json:"day"`
	Hour      int     `json:"hour"`
	Minute    int     `json:"minute"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Key identifies the moment for caching and event keys. Coordinates are
// written in their shortest exact form, so distinct moments never share a
// key.
func (m BirthMoment) Key() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d@%s,%s",
		m.Year, m.Month, m.Day, m.Hour, m.Minute, exactCoord(m.Latitude), exactCoord(m.Longitude))
}

func exactCoord(v float64) string {
	if v == 0 {
		v = 0 // fold -0 into 0
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// BodyPosition places one chart point on the ecliptic.
type BodyPosition struct {
	Body       Body    `json:"body"`
	Longitude  float64 `json:"longitude"`
	Sign       Sign    `json:"sign"`
	SignDegree float64 `json:"sign_degree"`
	House      int     `json:"house"`
	Retrograde bool    `json:"retrograde"`
	Speed      float64 `json:"speed"` // degrees per day
}

// HouseCusps holds the twelve cusp longitudes. Cusp i opens house i+1.
type HouseCusps [12]float64

func (h HouseCusps) Ascendant() float64 { return h[0] }
func (h HouseCusps) Midheaven() float64 { return h[9] }

// ChartResult is a complete natal chart. Positions are indexed by Body.
type ChartResult struct {
	Input     BirthMoment             `json:"input"`
	JulianDay float64                 `json:"julian_day"`
	Positions [BodyCount]BodyPosition `json:"positions"`
	Houses    HouseCusps              `json:"houses"`
	Ascendant float64                 `json:"ascendant"`
	Midheaven float64                 `json:"midheaven"`
	Aspects   []Aspect                `json:"aspects"`
}

// Position returns the placement of b.
func (c *ChartResult) Position(b Body) BodyPosition { return c.Positions[b] }
