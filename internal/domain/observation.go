package domain

// HourlyObservationPoint is one forecast hour at one location. Any field may
// be nil when the provider omitted it.
type HourlyObservationPoint struct {
	LowCloudPct     *float64 `json:"low_cloud_pct"`
	MidCloudPct     *float64 `json:"mid_cloud_pct"`
	HighCloudPct    *float64 `json:"high_cloud_pct"`
	VisibilityM     *float64 `json:"visibility_m"`
	TemperatureC    *float64 `json:"temperature_c"`
	DewpointC       *float64 `json:"dewpoint_c"`
	WindSpeedMS     *float64 `json:"wind_speed_ms"`
	PrecipitationMM *float64 `json:"precipitation_mm"`
	SourceTimestamp string   `json:"source_timestamp"`
}

// DewpointSpread returns temperature minus dew point, or nil unless both are present.
func (o HourlyObservationPoint) DewpointSpread() *float64 {
	return spread(o.TemperatureC, o.DewpointC)
}

// MidHighCloudPct returns the larger of mid and high cloud cover. A single
// present band is used on its own; nil when both are missing.
func (o HourlyObservationPoint) MidHighCloudPct() *float64 {
	switch {
	case o.MidCloudPct == nil && o.HighCloudPct == nil:
		return nil
	case o.MidCloudPct == nil:
		return Float(*o.HighCloudPct)
	case o.HighCloudPct == nil:
		return Float(*o.MidCloudPct)
	default:
		return Float(max(*o.MidCloudPct, *o.HighCloudPct))
	}
}

// VisibilityKm converts visibility to kilometres.
func (o HourlyObservationPoint) VisibilityKm() *float64 {
	if o.VisibilityM == nil {
		return nil
	}
	return Float(*o.VisibilityM / 1000.0)
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

func spread(t, td *float64) *float64 {
	if t == nil || td == nil {
		return nil
	}
	return Float(*t - *td)
}
