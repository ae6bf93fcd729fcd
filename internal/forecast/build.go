package forecast

import (
	"log/slog"
	"time"

	"github.com/couchcryptid/sunrise-forecast/internal/adapter/metar"
	"github.com/couchcryptid/sunrise-forecast/internal/adapter/meteoblue"
	"github.com/couchcryptid/sunrise-forecast/internal/adapter/openmeteo"
	"github.com/couchcryptid/sunrise-forecast/internal/adapter/sunrisesunset"
	"github.com/couchcryptid/sunrise-forecast/internal/config"
	"github.com/couchcryptid/sunrise-forecast/internal/observability"
)

// forecastCacheTTL bounds how stale a cached gridded forecast may be. The
// upstream model refreshes hourly.
const forecastCacheTTL = 30 * time.Minute

// OptionsFromConfig maps service configuration onto model options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Thresholds:     cfg.Scoring,
		LapseRate:      cfg.CloudWall.LapseRate,
		SampleKm:       cfg.CloudWall.SampleKm,
		SunriseBearing: cfg.CloudWall.SunriseBearing,
		SunsetBearing:  cfg.CloudWall.SunsetBearing,
		Concurrency:    cfg.CloudWall.Concurrency,
		ForecastDays:   cfg.ForecastDays,
		MetarStation:   cfg.MetarStation,
		Timezone:       cfg.Timezone,
		Place:          cfg.Place,
	}
}

// NewFromConfig builds a Service backed by the HTTP providers. The premium
// point provider is only wired when enabled.
func NewFromConfig(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Service {
	gridded := openmeteo.NewCachedProvider(
		openmeteo.NewClient(cfg.ForecastTimeout, metrics, logger),
		cfg.ForecastCacheSize,
		forecastCacheTTL,
		metrics,
	)

	p := Providers{
		Solar:   sunrisesunset.NewClient(cfg.SolarTimeout, metrics, logger),
		Gridded: gridded,
		Reports: metar.NewClient(cfg.MetarTimeout, metrics, logger),
	}
	if cfg.PremiumEnabled {
		p.Premium = meteoblue.NewClient(cfg.PremiumAPIKey, cfg.PremiumTimeout, metrics, logger)
		metrics.PremiumEnabled.Set(1)
		logger.Info("premium point provider enabled", "timeout", cfg.PremiumTimeout)
	} else {
		metrics.PremiumEnabled.Set(0)
		logger.Info("premium point provider disabled")
	}

	return NewService(p, OptionsFromConfig(cfg), metrics, logger)
}
