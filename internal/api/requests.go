package api

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/lox/fairwayforecast/internal/playability"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("query"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// LocationQuery holds the parameters shared by the forecast endpoints.
type LocationQuery struct {
	Lat     float64 `query:"lat" validate:"gte=-90,lte=90"`
	Lon     float64 `query:"lon" validate:"gte=-180,lte=180"`
	Country string  `query:"country" validate:"omitempty,alpha,max=7"`
	Units   string  `query:"units" validate:"omitempty,oneof=metric imperial"`
}

type teeTimeQuery struct {
	LocationQuery
	Tee   string `query:"tee" validate:"required"`
	Round string `query:"round" validate:"omitempty,oneof=9 18 society"`
}

type coursesQuery struct {
	Q       string `query:"q" validate:"max=100"`
	Country string `query:"country" validate:"omitempty,alpha,len=2"`
	Limit   int    `query:"limit" validate:"gte=0,lte=100"`
}

func parseLocation(q url.Values) (LocationQuery, error) {
	var lq LocationQuery
	var err error
	if lq.Lat, err = requiredFloat(q, "lat"); err != nil {
		return lq, err
	}
	if lq.Lon, err = requiredFloat(q, "lon"); err != nil {
		return lq, err
	}
	lq.Country = strings.TrimSpace(q.Get("country"))
	lq.Units = strings.ToLower(strings.TrimSpace(q.Get("units")))
	return lq, nil
}

func parseTeeTime(q url.Values) (teeTimeQuery, error) {
	loc, err := parseLocation(q)
	if err != nil {
		return teeTimeQuery{}, err
	}
	return teeTimeQuery{
		LocationQuery: loc,
		Tee:           strings.TrimSpace(q.Get("tee")),
		Round:         strings.ToLower(strings.TrimSpace(q.Get("round"))),
	}, nil
}

func parseCourses(q url.Values) (coursesQuery, error) {
	cq := coursesQuery{Q: q.Get("q"), Country: q.Get("country")}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return cq, fmt.Errorf("limit: not an integer")
		}
		cq.Limit = n
	}
	return cq, nil
}

func requiredFloat(q url.Values, name string) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%s: required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: not a number", name)
	}
	return v, nil
}

// parseTee accepts unix seconds or RFC 3339.
func parseTee(s string) (time.Time, error) {
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("tee: want unix seconds or RFC 3339")
	}
	return t, nil
}

func (lq LocationQuery) unitSystem() playability.UnitSystem {
	units, _ := playability.ParseUnitSystem(lq.Units)
	return units
}

// validationDetails flattens validator errors into "field: rule" strings.
func validationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			details = append(details, fmt.Sprintf("%s: failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			details = append(details, fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag()))
		}
	}
	return details
}
