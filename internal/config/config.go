package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/sunrise-forecast/internal/domain"
)

// Config holds all service settings, populated from environment variables
// and an optional scoring file.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Defaults applied when a request omits them.
	Lat          float64
	Lon          float64
	Place        string
	Timezone     string
	MetarStation string

	// Upstream provider configuration.
	SolarTimeout      time.Duration
	ForecastTimeout   time.Duration
	MetarTimeout      time.Duration
	PremiumTimeout    time.Duration
	PremiumAPIKey     string
	PremiumEnabled    bool
	ForecastDays      int
	ForecastCacheSize int

	// Model parameters.
	ScoringConfigPath string
	Scoring           domain.Thresholds
	CloudWall         CloudWall
}

// CloudWall configures the multi-point low-cloud wall model.
type CloudWall struct {
	SampleKm       []float64
	LapseRate      float64
	SunriseBearing float64
	SunsetBearing  float64
	Concurrency    int
}

// Load reads configuration from environment variables, applying defaults
// where unset. Model parameters come from SCORING_CONFIG first and are then
// overridden by their individual variables.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "forecast-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "forecast-results"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "sunrise-forecast"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		Place:             sharedcfg.EnvOrDefault("FORECAST_PLACE", "Shenzhen Bay"),
		Timezone:          sharedcfg.EnvOrDefault("TIMEZONE", "Asia/Shanghai"),
		MetarStation:      sharedcfg.EnvOrDefault("METAR_STATION", "ZGSZ"),
		PremiumAPIKey:     os.Getenv("MB_API_KEY"),
		ScoringConfigPath: os.Getenv("SCORING_CONFIG"),
		Scoring:           domain.DefaultThresholds(),
		CloudWall: CloudWall{
			SampleKm:       append([]float64(nil), domain.DefaultSampleKm...),
			LapseRate:      domain.DefaultLapseRate,
			SunriseBearing: 90,
			SunsetBearing:  270,
			Concurrency:    4,
		},
	}

	if cfg.Lat, err = parseFloat("FORECAST_LAT", 22.52); err != nil {
		return nil, err
	}
	if cfg.Lon, err = parseFloat("FORECAST_LON", 113.94); err != nil {
		return nil, err
	}
	if cfg.SolarTimeout, err = parseDuration("SOLAR_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ForecastTimeout, err = parseDuration("FORECAST_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.MetarTimeout, err = parseDuration("METAR_TIMEOUT", 20*time.Second); err != nil {
		return nil, err
	}
	if cfg.PremiumTimeout, err = parseDuration("MB_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ForecastDays, err = parseInt("FORECAST_DAYS", 2, 1, 16); err != nil {
		return nil, err
	}
	if cfg.ForecastCacheSize, err = parseInt("FORECAST_CACHE_SIZE", 256, 1, 1<<20); err != nil {
		return nil, err
	}

	cfg.PremiumEnabled = cfg.PremiumAPIKey != ""
	if v := os.Getenv("MB_ENABLED"); v != "" {
		cfg.PremiumEnabled = v == "true"
	}

	if cfg.ScoringConfigPath != "" {
		if err := loadModelFile(cfg.ScoringConfigPath, cfg); err != nil {
			return nil, err
		}
	}
	if err := applyModelEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyModelEnv(cfg *Config) error {
	var err error
	cw := &cfg.CloudWall
	if cw.LapseRate, err = parseFloat("CLOUDBASE_LAPSE_M_PER_C", cw.LapseRate); err != nil {
		return err
	}
	if cw.SunriseBearing, err = parseFloat("SUNRISE_BEARING", cw.SunriseBearing); err != nil {
		return err
	}
	if cw.SunsetBearing, err = parseFloat("SUNSET_BEARING", cw.SunsetBearing); err != nil {
		return err
	}
	if cw.Concurrency, err = parseInt("SAMPLE_CONCURRENCY", cw.Concurrency, 1, 64); err != nil {
		return err
	}
	if s := os.Getenv("CLOUDWALL_SAMPLE_KM"); s != "" {
		km, err := parseFloatList(s)
		if err != nil {
			return fmt.Errorf("invalid CLOUDWALL_SAMPLE_KM: %w", err)
		}
		cw.SampleKm = km
	}
	return nil
}

func (c *Config) validate() error {
	if len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}
	if c.KafkaSourceTopic == "" {
		return errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if c.KafkaSinkTopic == "" {
		return errors.New("KAFKA_SINK_TOPIC is required")
	}
	if c.PremiumEnabled && c.PremiumAPIKey == "" {
		return errors.New("MB_ENABLED is true but MB_API_KEY is not set")
	}
	if c.Lat < -90 || c.Lat > 90 {
		return errors.New("FORECAST_LAT must be within [-90, 90]")
	}
	if c.Lon < -180 || c.Lon > 180 {
		return errors.New("FORECAST_LON must be within [-180, 180]")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	if c.CloudWall.LapseRate <= 0 {
		return errors.New("CLOUDBASE_LAPSE_M_PER_C must be positive")
	}
	if c.CloudWall.Concurrency < 1 {
		return errors.New("SAMPLE_CONCURRENCY must be at least 1")
	}
	for _, d := range c.CloudWall.SampleKm {
		if d <= 0 {
			return errors.New("CLOUDWALL_SAMPLE_KM distances must be positive")
		}
	}
	return validateThresholds(c.Scoring)
}

func validateThresholds(th domain.Thresholds) error {
	if !ascending(th.LowCloud[:]) {
		return errors.New("scoring.low_cloud must be ascending")
	}
	if !ascending(th.WindMS[:]) {
		return errors.New("scoring.wind_ms must be ascending")
	}
	pairs := map[string][2]float64{
		"mid_high_cloud": th.MidHighCloud,
		"cloud_base_m":   th.CloudBaseM,
		"visibility_km":  th.VisibilityKm,
		"dewpoint_diff":  th.DewpointSpread,
		"precip_mm":      th.PrecipMM,
	}
	for name, p := range pairs {
		if p[0] > p[1] {
			return fmt.Errorf("scoring.%s must be ascending", name)
		}
	}
	return nil
}

func ascending(v []float64) bool {
	for i := 1; i < len(v); i++ {
		if v[i] < v[i-1] {
			return false
		}
	}
	return true
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, def, minimum, maximum int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < minimum || n > maximum {
		return 0, fmt.Errorf("invalid %s: must be an integer in [%d, %d]", key, minimum, maximum)
	}
	return n, nil
}

func parseFloatList(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
