package domain

import "fmt"

// RiskLevel grades the chance of a low-cloud wall blocking the horizon.
type RiskLevel int

const (
	RiskNormal RiskLevel = iota
	RiskWatch
	RiskHigh
)

var riskNames = map[RiskLevel]string{
	RiskNormal: "normal",
	RiskWatch:  "watch",
	RiskHigh:   "high",
}

func (r RiskLevel) String() string {
	if s, ok := riskNames[r]; ok {
		return s
	}
	return fmt.Sprintf("RiskLevel(%d)", int(r))
}

// MarshalText encodes the level by name.
func (r RiskLevel) MarshalText() ([]byte, error) {
	s, ok := riskNames[r]
	if !ok {
		return nil, fmt.Errorf("invalid risk level %d", int(r))
	}
	return []byte(s), nil
}

// UnmarshalText decodes a level name.
func (r *RiskLevel) UnmarshalText(b []byte) error {
	for lvl, name := range riskNames {
		if name == string(b) {
			*r = lvl
			return nil
		}
	}
	return fmt.Errorf("invalid risk level %q", string(b))
}

// ClassifySimple grades low-cloud wall risk from the target-hour observation
// at the origin. A missing low cloud value yields RiskWatch; a missing spread
// never satisfies the humidity condition. Wind is currently not considered.
func ClassifySimple(lowCloudPct, dewpointSpread, windMS *float64) RiskLevel {
	_ = windMS
	if lowCloudPct == nil {
		return RiskWatch
	}
	if *lowCloudPct >= 50 && dewpointSpread != nil && *dewpointSpread < 2 {
		return RiskHigh
	}
	if *lowCloudPct >= 30 {
		return RiskWatch
	}
	return RiskNormal
}

// SimpleText renders the single-point verdict line.
func SimpleText(level RiskLevel) string {
	return level.String() + " (model 12h)"
}
