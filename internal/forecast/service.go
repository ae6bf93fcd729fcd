package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/sunrise-forecast/internal/domain"
	"github.com/couchcryptid/sunrise-forecast/internal/observability"
)

// ErrForecastUnavailable is returned when the gridded forecast for the origin
// cannot be fetched. No partial result accompanies it.
var ErrForecastUnavailable = errors.New("forecast unavailable")

// Providers are the external collaborators of a forecast run. Premium and
// Reports may be nil.
type Providers struct {
	Solar   domain.SolarEventProvider
	Gridded domain.GriddedForecastProvider
	Premium domain.PremiumPointProvider
	Reports domain.RawReportProvider
}

// Options configure the scoring and sampling models.
type Options struct {
	Thresholds     domain.Thresholds
	LapseRate      float64
	SampleKm       []float64
	SunriseBearing float64
	SunsetBearing  float64
	Concurrency    int
	ForecastDays   int
	MetarStation   string
	Timezone       string
	Place          string
}

// Service runs forecasts: event time, gridded forecast, cloud base, scoring,
// both risk models and the narrative.
type Service struct {
	providers Providers
	opts      Options
	cloudWall *domain.CloudWallModel
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewService wires the cloud wall resolver chain from the configured providers.
func NewService(p Providers, opts Options, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if opts.LapseRate <= 0 {
		opts.LapseRate = domain.DefaultLapseRate
	}

	var resolvers []domain.PointResolver
	if p.Premium != nil {
		resolvers = append(resolvers, domain.PremiumResolver{Provider: p.Premium, Logger: logger})
	}
	resolvers = append(resolvers, domain.GriddedResolver{
		Provider:  p.Gridded,
		LapseRate: opts.LapseRate,
		Days:      opts.ForecastDays,
		Logger:    logger,
	})

	model := domain.NewCloudWallModel(domain.CloudWallConfig{
		SampleKm:    opts.SampleKm,
		LapseRate:   opts.LapseRate,
		Concurrency: opts.Concurrency,
	}, logger, resolvers...)

	return &Service{
		providers: p,
		opts:      opts,
		cloudWall: model,
		metrics:   metrics,
		logger:    logger,
	}
}

// Run produces a complete result or an error. Validation failures are
// *ValidationError; a failed gridded fetch wraps ErrForecastUnavailable.
// Every other missing input degrades to a default.
func (s *Service) Run(ctx context.Context, req Request) (*domain.ForecastResult, error) {
	start := time.Now()
	r, err := req.resolve(s.opts.Timezone, s.opts.Place)
	if err != nil {
		return nil, err
	}

	result, err := s.run(ctx, r)
	s.metrics.ForecastDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.ForecastRuns.WithLabelValues(string(r.kind), "failed").Inc()
		return nil, err
	}
	s.metrics.ForecastRuns.WithLabelValues(string(r.kind), "success").Inc()
	return result, nil
}

func (s *Service) run(ctx context.Context, r resolved) (*domain.ForecastResult, error) {
	log := s.logger.With("lat", r.origin.Lat, "lon", r.origin.Lon, "event", r.kind, "date", r.date.Format(time.DateOnly))

	eventTime := s.eventTime(ctx, r, log)
	eventHour := domain.EventHour(eventTime)

	series, err := s.providers.Gridded.HourlyForecast(ctx, r.origin, r.loc, domain.HorizonDays(eventHour, s.opts.ForecastDays))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrForecastUnavailable, err)
	}
	idx, ok := series.NearestIndex(eventHour)
	if !ok {
		return nil, fmt.Errorf("%w: no usable forecast hours", ErrForecastUnavailable)
	}
	obs := series.Observation(idx)

	cloudBase := domain.ResolveCloudBase(s.latestReport(ctx, log), obs.TemperatureC, obs.DewpointC, s.opts.LapseRate)
	if cloudBase.Source != domain.CloudBaseObserved {
		s.metrics.Fallbacks.WithLabelValues("cloud_base").Inc()
	}

	rawTotal, detail := domain.Score(obs, cloudBase, s.opts.Thresholds)
	score5 := domain.Normalize(rawTotal, len(detail))

	simple := domain.ClassifySimple(obs.LowCloudPct, obs.DewpointSpread(), obs.WindSpeedMS)
	multi, samples := s.cloudWall.Assess(ctx, r.origin, s.bearing(r.kind), eventHour)
	for _, smp := range samples {
		s.metrics.SampleSources.WithLabelValues(string(smp.Source)).Inc()
	}

	simpleText := domain.SimpleText(simple)
	multiText := domain.FormatTrace(multi, samples)
	scene := domain.Describe(score5, detail, eventTime, r.kind) +
		"\n- Cloud base source: " + cloudBaseLabel(cloudBase.Source) +
		"\n- Low cloud wall risk (model 12h): " + simpleText +
		"\n- Low cloud wall warning (multi-point): " + multiText

	log.Info("forecast complete",
		"score5", score5,
		"raw_total", rawTotal,
		"risk_simple", simple,
		"risk_multi", multi,
		"cloud_base_source", cloudBase.Source,
	)

	return &domain.ForecastResult{
		Meta: domain.ResultMeta{
			RunID:          uuid.NewString(),
			Lat:            r.origin.Lat,
			Lon:            r.origin.Lon,
			Place:          r.place,
			Date:           r.date.Format(time.DateOnly),
			Event:          r.kind,
			EventTimeLocal: eventTime,
			TZ:             r.loc.String(),
			GeneratedAt:    domain.Now().In(r.loc),
		},
		Inputs: domain.ResultInputs{
			ForecastIndexTime: obs.SourceTimestamp,
			CloudBaseSource:   cloudBase.Source,
			LapseRate:         s.opts.LapseRate,
		},
		Observation: obs,
		CloudBase:   cloudBase,
		Scores: domain.ResultScores{
			RawTotal: rawTotal,
			MaxTotal: domain.MaxRawTotal,
			Score5:   score5,
			Details:  detail,
		},
		Risk: domain.ResultRisk{
			Simple:      simple,
			SimpleScore: int(simple),
			SimpleText:  simpleText,
			Multi:       multi,
			MultiScore:  int(multi),
			MultiText:   multiText,
			Samples:     samples,
		},
		Text: domain.ResultText{
			Scene:  scene,
			Detail: domain.DescribeDetail(rawTotal, detail, eventTime, r.place, r.kind),
		},
	}, nil
}

// eventTime falls back to the event's default local hour when the solar
// provider fails.
func (s *Service) eventTime(ctx context.Context, r resolved, log *slog.Logger) time.Time {
	t, err := s.providers.Solar.EventTime(ctx, r.origin, r.date, r.kind, r.loc)
	if err == nil {
		return t.In(r.loc)
	}
	log.Warn("solar event lookup failed, using default time", "error", err, "default_hour", r.kind.DefaultHour())
	s.metrics.Fallbacks.WithLabelValues("solar_event").Inc()
	y, m, d := r.date.Date()
	return time.Date(y, m, d, r.kind.DefaultHour(), 0, 0, 0, r.loc)
}

func (s *Service) latestReport(ctx context.Context, log *slog.Logger) string {
	if s.providers.Reports == nil || s.opts.MetarStation == "" {
		return ""
	}
	report, err := s.providers.Reports.LatestReport(ctx, s.opts.MetarStation)
	if err != nil {
		log.Warn("raw report unavailable", "error", err, "station", s.opts.MetarStation)
		s.metrics.Fallbacks.WithLabelValues("raw_report").Inc()
		return ""
	}
	return report
}

func (s *Service) bearing(kind domain.EventKind) float64 {
	if kind == domain.Sunset {
		return s.opts.SunsetBearing
	}
	return s.opts.SunriseBearing
}

func cloudBaseLabel(src domain.CloudBaseSource) string {
	switch src {
	case domain.CloudBaseObserved:
		return "METAR"
	case domain.CloudBaseEstimated:
		return "estimated"
	default:
		return "unknown"
	}
}
