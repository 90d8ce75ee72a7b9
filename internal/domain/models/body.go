package models

import (
	"fmt"
	"strings"
)

// Body identifies a chart point. The order is fixed: it indexes the orbital
// tables and the perturbation phase.
type Body int

const (
	Sun Body = iota
	Moon
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Pluto
	NorthNode
	SouthNode
)

// BodyCount is the number of points in every chart.
const BodyCount = 12

// PrimaryBodyCount is the number of bodies driven by the orbital model.
const PrimaryBodyCount = 10

var bodyNames = [BodyCount]string{
	"Sun", "Moon", "Mercury", "Venus", "Mars",
	"Jupiter", "Saturn", "Uranus", "Neptune", "Pluto",
	"NorthNode", "SouthNode",
}

// Bodies returns all chart points in canonical order.
func Bodies() []Body {
	out := make([]Body, BodyCount)
	for i := range out {
		out[i] = Body(i)
	}
	return out
}

// PrimaryBodies returns Sun through Pluto.
func PrimaryBodies() []Body {
	out := make([]Body, PrimaryBodyCount)
	for i := range out {
		out[i] = Body(i)
	}
	return out
}

func (b Body) Valid() bool { return b >= Sun && b <= SouthNode }

// IsNode reports whether b is one of the lunar nodes.
func (b Body) IsNode() bool { return b == NorthNode || b == SouthNode }

func (b Body) String() string {
	if !b.Valid() {
		return fmt.Sprintf("Body(%d)", int(b))
	}
	return bodyNames[b]
}

func (b Body) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("invalid body %d", int(b))
	}
	return []byte(bodyNames[b]), nil
}

func (b *Body) UnmarshalText(text []byte) error {
	v, err := ParseBody(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// ParseBody resolves a body by name, case-insensitively.
func ParseBody(s string) (Body, error) {
	for i, name := range bodyNames {
		if strings.EqualFold(name, s) {
			return Body(i), nil
		}
	}
	return 0, fmt.Errorf("unknown body %q", s)
}
