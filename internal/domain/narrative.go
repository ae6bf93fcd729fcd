package domain

import (
	"fmt"
	"strings"
	"time"
)

// tier pairs a short band label with its descriptive sentence.
type tier struct {
	level string
	text  string
}

// Describe renders the scene narrative from the normalized score and the
// scored factor values. Missing values read as zero; an unknown cloud base
// reads as -1.
func Describe(score5 float64, detail ScoreDetail, eventTime time.Time, kind EventKind) string {
	lc := valueOr(detail.Value(FactorLowCloud), 0)
	mh := valueOr(detail.Value(FactorMidHighCloud), 0)
	cb := valueOr(detail.Value(FactorCloudBase), unknownCloudBase)
	vis := valueOr(detail.Value(FactorVisibility), 0)
	wind := valueOr(detail.Value(FactorWind), 0)
	dp := valueOr(detail.Value(FactorDewpointSpread), 0)
	rp := valueOr(detail.Value(FactorPrecipitation), 0)

	low := lowCloudTier(lc)
	fire := midHighCloudTier(mh)
	base := cloudBaseTier(cb)
	visT := visibilityTier(vis)
	windT := windTier(wind)
	rain := precipitationTier(rp)
	dew := dewpointSpreadTier(dp)

	baseShow := "unknown"
	if cb >= 0 {
		baseShow = fmt.Sprintf("%.0fm", cb)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[At a glance] Score: %.1f/5 - %s\n", score5, Recommendation(score5))
	fmt.Fprintf(&b, "%s: %s\n", kind.Label(), eventTime.Format("15:04"))
	fmt.Fprintf(&b, "- Low cloud: %.0f%% (%s) - %s\n", lc, low.level, low.text)
	fmt.Fprintf(&b, "- Mid/high cloud: %.0f%% (%s) - %s\n", mh, fire.level, fire.text)
	fmt.Fprintf(&b, "- Cloud base: %s (%s) - %s\n", baseShow, base.level, base.text)
	fmt.Fprintf(&b, "- Visibility: %.1f km (%s) - %s\n", vis, visT.level, visT.text)
	fmt.Fprintf(&b, "- Wind: %.1f m/s (%s) - %s\n", wind, windT.level, windT.text)
	fmt.Fprintf(&b, "- Precipitation: %.1f mm (%s) - %s\n", rp, rain.level, rain.text)
	fmt.Fprintf(&b, "- Dew-point spread: %.1f °C (%s) - %s", dp, dew.level, dew.text)
	return b.String()
}

// DescribeDetail renders the factor-by-factor breakdown.
func DescribeDetail(rawTotal int, detail ScoreDetail, eventTime time.Time, place string, kind EventKind) string {
	lines := []string{
		fmt.Sprintf("Shooting index: %d/%d", rawTotal, MaxRawTotal),
		"Place: " + place,
		fmt.Sprintf("%s: %s", kind.Label(), eventTime.Format("15:04")),
		"",
	}
	for _, f := range detail {
		val := "n/a"
		if f.Value != nil {
			val = fmt.Sprintf("%.1f", *f.Value)
		}
		lines = append(lines, fmt.Sprintf("- %s: %s → %d pts", f.Name, val, f.Points))
	}
	return strings.Join(lines, "\n")
}

// Recommendation grades the normalized score.
func Recommendation(score5 float64) string {
	switch {
	case score5 >= 4.0:
		return "Go for it (good odds)"
	case score5 >= 3.0:
		return "Worth a gamble (unstable)"
	case score5 >= 2.0:
		return "Average chance (depends on mood or distance)"
	case score5 >= 1.0:
		return "Slim chance (only if you are nearby)"
	default:
		return "Stay in bed (very unlikely)"
	}
}

func lowCloudTier(v float64) tier {
	switch {
	case v < 20:
		return tier{"low", "horizon mostly clear, the sun should pop right out"}
	case v < 40:
		return tier{"moderate", "a grey band may sit on the horizon, the sun may break through gaps"}
	case v < 60:
		return tier{"elevated", "plenty of low cloud, first light may be partly blocked"}
	default:
		return tier{"high", "a low cloud wall, first light will most likely be hidden"}
	}
}

func midHighCloudTier(v float64) tier {
	switch {
	case v >= 20 && v <= 60:
		return tier{"ideal", "a stage for catching light, pink and orange tones likely with a small chance of a fiery sky"}
	case v < 20:
		return tier{"too little", "sky too clean, only a simple gradient"}
	case v <= 80:
		return tier{"heavy", "thick cloud, colours may look muted"}
	default:
		return tier{"overcast", "thick cloud overhead, probably gloomy"}
	}
}

func cloudBaseTier(v float64) tier {
	switch {
	case v < 0:
		return tier{"unknown", "cloud base data missing, check early observations or the model"}
	case v > 1000:
		return tier{">1000m", "high base, mostly acts as a ceiling"}
	case v > 500:
		return tier{"500~1000m", "may form a shelf over the horizon"}
	default:
		return tier{"<500m", "ground-hugging cloud or fog, like a drawn curtain"}
	}
}

func visibilityTier(v float64) tier {
	switch {
	case v >= 15:
		return tier{">15km", "clear air, crisp distant detail and bright golden reflections"}
	case v >= 8:
		return tier{"8~15km", "moderate clarity, distant scenery slightly grey"}
	default:
		return tier{"<8km", "hazy background with little depth"}
	}
}

func windTier(v float64) tier {
	switch {
	case v >= 2 && v <= 5:
		return tier{"2~5m/s", "light ripples on water give good reflections and the tripod stays steady"}
	case v < 2:
		return tier{"<2m/s", "almost calm, watch for condensation on the lens"}
	case v <= 8:
		return tier{"5~8m/s", "breezy, keep an eye on tripod stability"}
	default:
		return tier{">8m/s", "strong wind, rough shooting conditions so protect your gear"}
	}
}

func dewpointSpreadTier(v float64) tier {
	switch {
	case v >= 3:
		return tier{"≥3°C", "fog unlikely"}
	case v >= 1:
		return tier{"1~3°C", "a bit humid, lens may fog"}
	default:
		return tier{"<1°C", "fog very likely, watch for sea fog and lens condensation"}
	}
}

func precipitationTier(v float64) tier {
	switch {
	case v < 0.1:
		return tier{"<0.1mm", "rain very unlikely"}
	case v < 1:
		return tier{"0.1~1mm", "scattered showers or drizzle possible"}
	default:
		return tier{"≥1mm", "rain likely, bring waterproofing"}
	}
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
