package astro

import (
	"errors"
	"fmt"
)

var (
	ErrHouseNotFound = errors.New("astro: longitude not covered by any house arc")
	ErrInvalidCusps  = errors.New("astro: invalid house cusps")
)

// InputError reports a rejected BirthMoment field.
type InputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func inputErr(field, value, reason string) error {
	return &InputError{Field: field, Value: value, Reason: reason}
}

// AsInputError extracts an *InputError from err's chain.
func AsInputError(err error) (*InputError, bool) {
	var ie *InputError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
