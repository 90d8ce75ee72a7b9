package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"NatalChart/internal/domain/models"
	"NatalChart/internal/services/astro"
	xhttp "NatalChart/pkg/http"
)

// ValidateRequest applies the request's tag rules, reporting the first
// failure.
func ValidateRequest(ctx context.Context, req *models.ChartRequest) error {
	if errs := xhttp.ValidateStruct(ctx, req); len(errs) > 0 {
		return fmt.Errorf("invalid chart request: %s: %s", errs[0].Field, errs[0].Message)
	}
	return nil
}

// MomentFromRequest converts a request to an engine BirthMoment. A non-UTC
// IANA timezone shifts the local civil time to UTC first; the engine itself
// never applies timezones. Missing fields are rejected, never filled in.
func MomentFromRequest(req *models.ChartRequest) (models.BirthMoment, error) {
	switch {
	case req.Date == "":
		return models.BirthMoment{}, missing("date")
	case req.Time == "":
		return models.BirthMoment{}, missing("time")
	case req.Latitude == nil:
		return models.BirthMoment{}, missing("latitude")
	case req.Longitude == nil:
		return models.BirthMoment{}, missing("longitude")
	}
	clock, lat, lon := req.Time, *req.Latitude, *req.Longitude

	tz := strings.TrimSpace(req.Timezone)
	if tz == "" || tz == "UTC" {
		return astro.ParseBirthMoment(req.Date, clock, lat, lon)
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return models.BirthMoment{}, &astro.InputError{Field: "timezone", Value: tz, Reason: "unknown IANA timezone"}
	}
	y, mo, d, err := astro.ParseDate(req.Date)
	if err != nil {
		return models.BirthMoment{}, err
	}
	h, mi, err := astro.ParseClock(clock)
	if err != nil {
		return models.BirthMoment{}, err
	}

	local := time.Date(y, time.Month(mo), d, h, mi, 0, 0, loc)
	m := astro.MomentAt(local, lat, lon)
	if err := astro.ValidateMoment(m); err != nil {
		return models.BirthMoment{}, err
	}
	return m, nil
}

func missing(field string) *astro.InputError {
	return &astro.InputError{Field: field, Reason: "is required"}
}
