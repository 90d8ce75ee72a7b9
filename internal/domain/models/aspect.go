package models

import (
	"fmt"
	"strings"
)

// AspectType names an angular relationship between two bodies.
type AspectType int

const (
	Conjunction AspectType = iota
	Sextile
	Square
	Trine
	Opposition
)

var aspectNames = [...]string{"Conjunction", "Sextile", "Square", "Trine", "Opposition"}

func (a AspectType) Valid() bool { return a >= Conjunction && a <= Opposition }

func (a AspectType) String() string {
	if !a.Valid() {
		return fmt.Sprintf("AspectType(%d)", int(a))
	}
	return aspectNames[a]
}

func (a AspectType) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid aspect %d", int(a))
	}
	return []byte(aspectNames[a]), nil
}

func (a *AspectType) UnmarshalText(text []byte) error {
	for i, n := range aspectNames {
		if strings.EqualFold(n, string(text)) {
			*a = AspectType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown aspect %q", string(text))
}

// AspectDefinition is one row of the aspect table.
type AspectDefinition struct {
	Type  AspectType `json:"aspect"`
	Angle float64    `json:"angle"`
	Orb   float64    `json:"orb"`
}

// Aspect is a detected relationship between two chart points.
// Orb is the absolute deviation of Separation from ExactAngle.
type Aspect struct {
	BodyA      Body       `json:"body_a"`
	BodyB      Body       `json:"body_b"`
	Type       AspectType `json:"aspect"`
	ExactAngle float64    `json:"exact_angle"`
	Separation float64    `json:"separation"`
	Orb        float64    `json:"orb"`
}
