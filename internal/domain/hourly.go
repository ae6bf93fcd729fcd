package domain

import (
	"math"
	"time"
)

// Hourly field names as published by the gridded forecast provider.
const (
	FieldLowCloud      = "cloudcover_low"
	FieldMidCloud      = "cloudcover_mid"
	FieldHighCloud     = "cloudcover_high"
	FieldVisibility    = "visibility"
	FieldTemperature   = "temperature_2m"
	FieldDewpoint      = "dewpoint_2m"
	FieldWindSpeed     = "windspeed_10m"
	FieldPrecipitation = "precipitation"
)

// HourlyFields lists every field requested from the gridded provider.
var HourlyFields = []string{
	FieldLowCloud,
	FieldMidCloud,
	FieldHighCloud,
	FieldVisibility,
	FieldTemperature,
	FieldDewpoint,
	FieldWindSpeed,
	FieldPrecipitation,
}

// HourKeyLayout formats local wall-clock hours the way the gridded provider
// keys its time axis, e.g. "2024-06-01T05:00".
const HourKeyLayout = "2006-01-02T15:04"

// HourlySeries is a gridded forecast: per-field value slices aligned with a
// shared sequence of local time keys. A series is immutable once fetched.
type HourlySeries struct {
	Location *time.Location
	Times    []string
	Values   map[string][]*float64
}

// Len returns the number of forecast hours.
func (s *HourlySeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Times)
}

// Value returns field at idx, or nil when the field or the index is absent.
func (s *HourlySeries) Value(field string, idx int) *float64 {
	series, ok := s.Values[field]
	if !ok || idx < 0 || idx >= len(series) {
		return nil
	}
	return series[idx]
}

// Observation extracts the forecast hour at idx.
func (s *HourlySeries) Observation(idx int) HourlyObservationPoint {
	obs := HourlyObservationPoint{
		LowCloudPct:     s.Value(FieldLowCloud, idx),
		MidCloudPct:     s.Value(FieldMidCloud, idx),
		HighCloudPct:    s.Value(FieldHighCloud, idx),
		VisibilityM:     s.Value(FieldVisibility, idx),
		TemperatureC:    s.Value(FieldTemperature, idx),
		DewpointC:       s.Value(FieldDewpoint, idx),
		WindSpeedMS:     s.Value(FieldWindSpeed, idx),
		PrecipitationMM: s.Value(FieldPrecipitation, idx),
	}
	if idx >= 0 && idx < len(s.Times) {
		obs.SourceTimestamp = s.Times[idx]
	}
	return obs
}

// NearestIndex selects the forecast hour for target. An exact key match wins;
// otherwise the hour with the smallest absolute time difference is chosen,
// with ties going to the earliest entry. Returns false for an empty series or
// one whose time keys cannot be parsed.
func (s *HourlySeries) NearestIndex(target time.Time) (int, bool) {
	if s.Len() == 0 {
		return 0, false
	}
	loc := s.location()
	key := target.In(loc).Format(HourKeyLayout)
	for i, t := range s.Times {
		if t == key {
			return i, true
		}
	}

	best, found := 0, false
	var bestDelta time.Duration
	for i, t := range s.Times {
		ts, err := time.ParseInLocation(HourKeyLayout, t, loc)
		if err != nil {
			continue
		}
		delta := ts.Sub(target)
		if delta < 0 {
			delta = -delta
		}
		if !found || delta < bestDelta {
			best, bestDelta, found = i, delta, true
		}
	}
	return best, found
}

func (s *HourlySeries) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// EventHour floors t to the start of its local wall-clock hour.
func EventHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// maxHorizonDays is the longest forecast the gridded provider serves.
const maxHorizonDays = 16

// HorizonDays returns how many forecast days must be requested so that target
// is covered, never fewer than minDays and never more than the provider limit.
func HorizonDays(target time.Time, minDays int) int {
	now := clock.Now().In(target.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	day := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, target.Location())

	days := minDays
	if ahead := int(math.Round(day.Sub(today).Hours()/24)) + 1; ahead > days {
		days = ahead
	}
	if days > maxHorizonDays {
		days = maxHorizonDays
	}
	if days < 1 {
		days = 1
	}
	return days
}
