package domain

import (
	"context"
	"time"
)

// SolarEventProvider resolves the local time of a sunrise or sunset.
type SolarEventProvider interface {
	EventTime(ctx context.Context, at Geo, date time.Time, kind EventKind, loc *time.Location) (time.Time, error)
}

// GriddedForecastProvider returns an hourly model forecast for a location.
// Any malformed or failed response is an error; partial data is never returned.
type GriddedForecastProvider interface {
	HourlyForecast(ctx context.Context, at Geo, loc *time.Location, days int) (*HourlySeries, error)
}

// PointForecast is a premium provider's reading for a single hour.
type PointForecast struct {
	LowCloudPct *float64
	CloudBaseM  *float64
}

// PremiumPointProvider returns a high-resolution reading for the exact target
// hour. The boolean is false when the provider has no value for that hour.
type PremiumPointProvider interface {
	PointForecast(ctx context.Context, at Geo, hour time.Time) (PointForecast, bool, error)
}

// RawReportProvider returns the latest raw surface report for a station.
type RawReportProvider interface {
	LatestReport(ctx context.Context, station string) (string, error)
}
