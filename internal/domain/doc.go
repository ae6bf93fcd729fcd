// Package domain models sunrise/sunset photographic viability forecasts.
//
// # Inputs
//
// Hourly gridded forecasts (Open-Meteo field names) supply cloud cover at three
// altitude bands, visibility, 2 m temperature and dew point, 10 m wind and
// precipitation. A raw aviation weather report (METAR) may supply an observed
// ceiling; otherwise the cloud base is estimated from the dew-point spread:
//
//	cloud_base_m = (temperature_c - dewpoint_c) * lapse_rate   (default 125 m/°C)
//
// # Scoring
//
// Seven factors are scored 0, 1 or 2 points in a fixed order:
//
//	low cloud %, mid/high cloud %, cloud base m, visibility km,
//	wind m/s, dew-point spread °C, precipitation mm
//
// The raw total is rescaled to 0–5 as round(raw / (3 × factors) × 5, 1). The
// denominator uses 3 rather than the per-factor maximum of 2, so the best
// attainable score is 3.3; the narrative recommendation breakpoints
// (4.0/3.0/2.0/1.0) are calibrated against that scale.
//
// # Low-cloud wall
//
// A band of low cloud sitting on the horizon can hide first or last light even
// under a clear zenith. The multi-point model samples points along the
// sunrise/sunset bearing (default 20, 50, 80 and 120 km), resolves each point
// from the premium point provider when it has the exact hour, otherwise from
// the gridded forecast with an estimated cloud base, and reduces the samples
// to normal/watch/high:
//
//	high  if any sample has low ≥ 50% and (base unknown or < 600 m),
//	      or at least half the samples have low ≥ 30% or base < 800 m
//	watch if any sample has low ≥ 30% or base < 800 m, or nothing resolved
//	normal otherwise
package domain
