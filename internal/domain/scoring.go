package domain

import "math"

// Factor names in evaluation order. The narrative generator and downstream
// consumers depend on this order.
const (
	FactorLowCloud       = "low_cloud_pct"
	FactorMidHighCloud   = "mid_high_cloud_pct"
	FactorCloudBase      = "cloud_base_m"
	FactorVisibility     = "visibility_km"
	FactorWind           = "wind_ms"
	FactorDewpointSpread = "dewpoint_spread_c"
	FactorPrecipitation  = "precip_mm"
)

// FactorCount is the number of scored factors.
const FactorCount = 7

// MaxRawTotal is the highest attainable raw total (two points per factor).
const MaxRawTotal = 2 * FactorCount

// unknownCloudBase is the display value recorded when no cloud base resolved.
const unknownCloudBase = -1.0

// Thresholds holds the per-factor scoring bounds.
//
//   - LowCloud is a sweet spot [low, mid, high]: inside [low, mid] scores 2,
//     (mid, high] or [0, low) scores 1, anything else 0.
//   - MidHighCloud, VisibilityKm and DewpointSpread are [low, high]: ≥ high
//     scores 2, ≥ low scores 1.
//   - CloudBaseM is [low, high]: > high scores 2, > low scores 1.
//   - WindMS is [lo1, lo2, hi2, hi3]: inside [lo2, hi2] scores 2, inside
//     [lo1, lo2) or (hi2, hi3] scores 1.
//   - PrecipMM is inverted [low, high]: < low scores 2, < high scores 1.
type Thresholds struct {
	LowCloud       [3]float64 `json:"low_cloud"`
	MidHighCloud   [2]float64 `json:"mid_high_cloud"`
	CloudBaseM     [2]float64 `json:"cloud_base_m"`
	VisibilityKm   [2]float64 `json:"visibility_km"`
	WindMS         [4]float64 `json:"wind_ms"`
	DewpointSpread [2]float64 `json:"dewpoint_diff"`
	PrecipMM       [2]float64 `json:"precip_mm"`
}

// DefaultThresholds returns bounds aligned with the narrative tiers.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LowCloud:       [3]float64{0, 20, 50},
		MidHighCloud:   [2]float64{10, 30},
		CloudBaseM:     [2]float64{500, 1000},
		VisibilityKm:   [2]float64{8, 15},
		WindMS:         [4]float64{1, 2, 5, 8},
		DewpointSpread: [2]float64{1, 3},
		PrecipMM:       [2]float64{0.1, 1},
	}
}

// ScoreFactor is one scored factor. Value is nil when the input was missing.
type ScoreFactor struct {
	Name   string   `json:"name"`
	Value  *float64 `json:"value"`
	Points int      `json:"points"`
}

// ScoreDetail lists scored factors in evaluation order.
type ScoreDetail []ScoreFactor

// Value returns the recorded value of the named factor.
func (d ScoreDetail) Value(name string) *float64 {
	for _, f := range d {
		if f.Name == name {
			return f.Value
		}
	}
	return nil
}

// Total sums the points of every factor.
func (d ScoreDetail) Total() int {
	total := 0
	for _, f := range d {
		total += f.Points
	}
	return total
}

// Score evaluates all seven factors unconditionally and returns the raw total
// together with the per-factor detail. Missing inputs score 1.
func Score(obs HourlyObservationPoint, cloudBase CloudBaseEstimate, th Thresholds) (int, ScoreDetail) {
	detail := make(ScoreDetail, 0, FactorCount)
	add := func(name string, value *float64, points int) {
		detail = append(detail, ScoreFactor{Name: name, Value: value, Points: points})
	}

	add(FactorLowCloud, obs.LowCloudPct, scoreSweetSpot(obs.LowCloudPct, th.LowCloud))

	midHigh := obs.MidHighCloudPct()
	add(FactorMidHighCloud, midHigh, scoreAtLeast(midHigh, th.MidHighCloud))

	baseValue, basePoints := scoreCloudBase(cloudBase, th.CloudBaseM)
	add(FactorCloudBase, baseValue, basePoints)

	vis := obs.VisibilityKm()
	add(FactorVisibility, vis, scoreAtLeast(vis, th.VisibilityKm))

	add(FactorWind, obs.WindSpeedMS, scoreWind(obs.WindSpeedMS, th.WindMS))

	dp := obs.DewpointSpread()
	add(FactorDewpointSpread, dp, scoreAtLeast(dp, th.DewpointSpread))

	add(FactorPrecipitation, obs.PrecipitationMM, scoreBelow(obs.PrecipitationMM, th.PrecipMM))

	return detail.Total(), detail
}

// Normalize rescales a raw total to 0–5 with one decimal place. The
// denominator is 3 × factorCount, not 2 × factorCount.
func Normalize(rawTotal, factorCount int) float64 {
	if factorCount <= 0 {
		return 0
	}
	v := float64(rawTotal) / float64(3*factorCount) * 5
	return math.Round(v*10) / 10
}

func scoreSweetSpot(v *float64, b [3]float64) int {
	if v == nil {
		return 1
	}
	lo, mid, hi := b[0], b[1], b[2]
	switch {
	case lo <= *v && *v <= mid:
		return 2
	case (mid < *v && *v <= hi) || (0 <= *v && *v < lo):
		return 1
	default:
		return 0
	}
}

func scoreAtLeast(v *float64, b [2]float64) int {
	if v == nil {
		return 1
	}
	switch {
	case *v >= b[1]:
		return 2
	case *v >= b[0]:
		return 1
	default:
		return 0
	}
}

func scoreBelow(v *float64, b [2]float64) int {
	if v == nil {
		return 1
	}
	switch {
	case *v < b[0]:
		return 2
	case *v < b[1]:
		return 1
	default:
		return 0
	}
}

func scoreWind(v *float64, b [4]float64) int {
	if v == nil {
		return 1
	}
	lo1, lo2, hi2, hi3 := b[0], b[1], b[2], b[3]
	switch {
	case lo2 <= *v && *v <= hi2:
		return 2
	case (lo1 <= *v && *v < lo2) || (hi2 < *v && *v <= hi3):
		return 1
	default:
		return 0
	}
}

func scoreCloudBase(cb CloudBaseEstimate, b [2]float64) (*float64, int) {
	if cb.HeightM == nil {
		return Float(unknownCloudBase), 1
	}
	h := *cb.HeightM
	switch {
	case h > b[1]:
		return Float(h), 2
	case h > b[0]:
		return Float(h), 1
	default:
		return Float(h), 0
	}
}
