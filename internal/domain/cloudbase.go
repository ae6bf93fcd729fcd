package domain

import (
	"regexp"
	"strconv"
)

// DefaultLapseRate is the cloud-base estimate in metres per °C of dew-point spread.
const DefaultLapseRate = 125.0

const feetToMeters = 0.3048

// ceilingLayerRe matches a broken or overcast METAR layer, e.g. "BKN012" or
// "OVC008", where the digits are hundreds of feet.
var ceilingLayerRe = regexp.MustCompile(`(BKN|OVC)(\d{3})`)

// CloudBaseSource records where a cloud-base height came from.
type CloudBaseSource string

const (
	CloudBaseObserved  CloudBaseSource = "observed"
	CloudBaseEstimated CloudBaseSource = "estimated"
	CloudBaseUnknown   CloudBaseSource = "unknown"
)

// CloudBaseEstimate is the resolved cloud-base height for a forecast run.
type CloudBaseEstimate struct {
	HeightM *float64        `json:"height_m"`
	Source  CloudBaseSource `json:"source"`
}

// ParseCeiling extracts the first broken/overcast layer height in metres from
// a raw METAR line.
func ParseCeiling(report string) (float64, bool) {
	m := ceilingLayerRe.FindStringSubmatch(report)
	if len(m) != 3 {
		return 0, false
	}
	hundreds, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	return float64(hundreds*100) * feetToMeters, true
}

// EstimateCloudBase derives a cloud-base height from the dew-point spread.
// Returns nil unless both temperatures are present.
func EstimateCloudBase(temperatureC, dewpointC *float64, lapseRate float64) *float64 {
	dp := spread(temperatureC, dewpointC)
	if dp == nil {
		return nil
	}
	return Float(*dp * lapseRate)
}

// ResolveCloudBase prefers an observed ceiling from the raw report, then the
// dew-point estimate, then unknown.
func ResolveCloudBase(report string, temperatureC, dewpointC *float64, lapseRate float64) CloudBaseEstimate {
	if h, ok := ParseCeiling(report); ok {
		return CloudBaseEstimate{HeightM: Float(h), Source: CloudBaseObserved}
	}
	if h := EstimateCloudBase(temperatureC, dewpointC, lapseRate); h != nil {
		return CloudBaseEstimate{HeightM: h, Source: CloudBaseEstimated}
	}
	return CloudBaseEstimate{Source: CloudBaseUnknown}
}
