package domain

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// SampleSource records which provider resolved a cloud-wall sample.
type SampleSource string

const (
	SamplePrimary           SampleSource = "primary"
	SampleEstimatedFallback SampleSource = "estimated_fallback"
	SampleNoData            SampleSource = "no_data"
)

// Tag is the abbreviation used in sample traces.
func (s SampleSource) Tag() string {
	switch s {
	case SamplePrimary:
		return "mb"
	case SampleEstimatedFallback:
		return "om"
	default:
		return "none"
	}
}

// RiskSample is the low cloud reading at one point along the solar bearing.
type RiskSample struct {
	DistanceKm  float64      `json:"distance_km"`
	LowCloudPct *float64     `json:"low_cloud_pct"`
	CloudBaseM  *float64     `json:"cloud_base_m"`
	Source      SampleSource `json:"source"`
}

// PointReading is a resolver's answer for one sample point.
type PointReading struct {
	LowCloudPct *float64
	CloudBaseM  *float64
	Source      SampleSource
}

// PointResolver resolves one sample point. The boolean is false when the
// resolver has nothing for the point, which passes it to the next resolver.
type PointResolver interface {
	Resolve(ctx context.Context, at Geo, hour time.Time) (PointReading, bool)
}

// DefaultSampleKm are the distances sampled along the bearing.
var DefaultSampleKm = []float64{20, 50, 80, 120}

// CloudWallConfig parameterises the multi-point model.
type CloudWallConfig struct {
	SampleKm    []float64
	LapseRate   float64
	Concurrency int
}

// CloudWallModel samples low cloud at increasing distances along the solar
// bearing and reduces the samples to a single verdict.
type CloudWallModel struct {
	cfg       CloudWallConfig
	resolvers []PointResolver
	logger    *slog.Logger
}

// NewCloudWallModel builds a model that tries resolvers in the given order.
func NewCloudWallModel(cfg CloudWallConfig, logger *slog.Logger, resolvers ...PointResolver) *CloudWallModel {
	if cfg.SampleKm == nil {
		cfg.SampleKm = DefaultSampleKm
	}
	if cfg.LapseRate <= 0 {
		cfg.LapseRate = DefaultLapseRate
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &CloudWallModel{cfg: cfg, resolvers: resolvers, logger: logger}
}

// Assess projects one point per configured distance, resolves each through
// the resolver chain and returns the verdict with samples ordered by
// ascending distance. A point no resolver can serve is recorded as no data.
func (m *CloudWallModel) Assess(ctx context.Context, origin Geo, bearingDeg float64, hour time.Time) (RiskLevel, []RiskSample) {
	samples := make([]RiskSample, len(m.cfg.SampleKm))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.Concurrency)
	for i, d := range m.cfg.SampleKm {
		g.Go(func() error {
			samples[i] = m.resolve(gctx, Project(origin, bearingDeg, d), d, hour)
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(samples, func(a, b int) bool {
		return samples[a].DistanceKm < samples[b].DistanceKm
	})
	return ReduceSamples(samples), samples
}

func (m *CloudWallModel) resolve(ctx context.Context, at Geo, distanceKm float64, hour time.Time) RiskSample {
	for _, r := range m.resolvers {
		reading, ok := r.Resolve(ctx, at, hour)
		if !ok {
			continue
		}
		return RiskSample{
			DistanceKm:  distanceKm,
			LowCloudPct: reading.LowCloudPct,
			CloudBaseM:  reading.CloudBaseM,
			Source:      reading.Source,
		}
	}
	m.logger.Warn("no provider resolved cloud wall sample",
		"distance_km", distanceKm, "lat", at.Lat, "lon", at.Lon)
	return RiskSample{DistanceKm: distanceKm, Source: SampleNoData}
}

// ReduceSamples applies the quorum rule over the full sample set:
//
//   - a sample is high when low cloud ≥ 50% and the base is missing or below 600 m
//   - a sample is mid when low cloud ≥ 30% or a known base is below 800 m
//   - any high sample, or mid samples making up at least half the set, is RiskHigh
//   - otherwise any mid sample is RiskWatch, else RiskNormal
//
// A set without a single resolved sample is RiskWatch.
func ReduceSamples(samples []RiskSample) RiskLevel {
	resolved := 0
	high, mid := 0, 0
	for _, s := range samples {
		if s.Source != SampleNoData {
			resolved++
		}
		low, base := s.LowCloudPct, s.CloudBaseM
		if low != nil && *low >= 50 && (base == nil || *base < 600) {
			high++
		}
		if (low != nil && *low >= 30) || (base != nil && *base < 800) {
			mid++
		}
	}
	if resolved == 0 {
		return RiskWatch
	}
	if high >= 1 || float64(mid) >= float64(len(samples))*0.5 {
		return RiskHigh
	}
	if mid >= 1 {
		return RiskWatch
	}
	return RiskNormal
}

var traceLabels = map[RiskLevel]string{
	RiskNormal: "normal (model)",
	RiskWatch:  "watch (model)",
	RiskHigh:   "warning (model)",
}

// FormatTrace renders the verdict and every sample in order, e.g.
//
//	watch (model)(samples: 20km:35% / 900m[om] | 50km:NA% / NA m[none])
func FormatTrace(level RiskLevel, samples []RiskSample) string {
	label, ok := traceLabels[level]
	if !ok {
		label = "?"
	}
	parts := make([]string, 0, len(samples))
	for _, s := range samples {
		low := "NA%"
		if s.LowCloudPct != nil {
			low = fmt.Sprintf("%.0f%%", *s.LowCloudPct)
		}
		base := "NA m"
		if s.CloudBaseM != nil {
			base = fmt.Sprintf("%dm", int(*s.CloudBaseM))
		}
		parts = append(parts, fmt.Sprintf("%skm:%s / %s[%s]", formatKm(s.DistanceKm), low, base, s.Source.Tag()))
	}
	return label + "(samples: " + strings.Join(parts, " | ") + ")"
}

func formatKm(d float64) string {
	if d == math.Trunc(d) {
		return fmt.Sprintf("%d", int(d))
	}
	return fmt.Sprintf("%g", d)
}

// PremiumResolver answers from a premium point provider. Provider errors and
// hours it does not cover fall through to the next resolver.
type PremiumResolver struct {
	Provider PremiumPointProvider
	Logger   *slog.Logger
}

func (r PremiumResolver) Resolve(ctx context.Context, at Geo, hour time.Time) (PointReading, bool) {
	pf, ok, err := r.Provider.PointForecast(ctx, at, hour)
	if err != nil {
		r.Logger.Warn("premium point forecast failed", "error", err, "lat", at.Lat, "lon", at.Lon)
		return PointReading{}, false
	}
	if !ok {
		return PointReading{}, false
	}
	return PointReading{LowCloudPct: pf.LowCloudPct, CloudBaseM: pf.CloudBaseM, Source: SamplePrimary}, true
}

// GriddedResolver answers from the gridded forecast at the hour nearest the
// target and estimates the cloud base from the dew-point spread.
type GriddedResolver struct {
	Provider  GriddedForecastProvider
	LapseRate float64
	Days      int
	Logger    *slog.Logger
}

func (r GriddedResolver) Resolve(ctx context.Context, at Geo, hour time.Time) (PointReading, bool) {
	series, err := r.Provider.HourlyForecast(ctx, at, hour.Location(), HorizonDays(hour, r.Days))
	if err != nil {
		r.Logger.Warn("gridded point forecast failed", "error", err, "lat", at.Lat, "lon", at.Lon)
		return PointReading{}, false
	}
	idx, ok := series.NearestIndex(hour)
	if !ok {
		return PointReading{}, false
	}
	obs := series.Observation(idx)
	return PointReading{
		LowCloudPct: obs.LowCloudPct,
		CloudBaseM:  EstimateCloudBase(obs.TemperatureC, obs.DewpointC, r.LapseRate),
		Source:      SampleEstimatedFallback,
	}, true
}
