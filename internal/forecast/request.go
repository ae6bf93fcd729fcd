package forecast

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/couchcryptid/sunrise-forecast/internal/domain"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Request asks for one forecast. Timezone and Place fall back to the
// service defaults when empty.
type Request struct {
	Lat      float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon      float64 `json:"lon" validate:"gte=-180,lte=180"`
	Date     string  `json:"date" validate:"required,datetime=2006-01-02"`
	Event    string  `json:"event" validate:"required,oneof=sunrise sunset"`
	Timezone string  `json:"tz,omitempty" validate:"omitempty,timezone"`
	Place    string  `json:"place,omitempty" validate:"max=120"`
}

// ValidationError reports a request that failed validation.
type ValidationError struct {
	Fields []string
	Err    error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("invalid forecast request: %v", e.Err)
	}
	return "invalid forecast request: " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate checks field ranges and formats.
func (r Request) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Err: err}
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return &ValidationError{Fields: fields, Err: err}
}

// resolved is a validated request with parsed values.
type resolved struct {
	origin domain.Geo
	date   time.Time
	kind   domain.EventKind
	loc    *time.Location
	place  string
}

func (r Request) resolve(defaultTZ, defaultPlace string) (resolved, error) {
	if err := r.Validate(); err != nil {
		return resolved{}, err
	}
	tz := r.Timezone
	if tz == "" {
		tz = defaultTZ
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return resolved{}, &ValidationError{Fields: []string{"tz failed timezone"}, Err: err}
	}
	date, err := time.ParseInLocation(time.DateOnly, r.Date, loc)
	if err != nil {
		return resolved{}, &ValidationError{Fields: []string{"date failed datetime"}, Err: err}
	}
	kind, err := domain.ParseEventKind(r.Event)
	if err != nil {
		return resolved{}, &ValidationError{Fields: []string{"event failed oneof"}, Err: err}
	}
	place := r.Place
	if place == "" {
		place = defaultPlace
	}
	return resolved{
		origin: domain.Geo{Lat: r.Lat, Lon: r.Lon},
		date:   date,
		kind:   kind,
		loc:    loc,
		place:  place,
	}, nil
}
