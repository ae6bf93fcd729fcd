package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/sunrise-forecast/internal/domain"
)

const (
	defaultBroker = "localhost:9092"
	testMBKey     = "mb-test-key"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "forecast-requests", cfg.KafkaSourceTopic)
	assert.Equal(t, "forecast-results", cfg.KafkaSinkTopic)
	assert.Equal(t, "sunrise-forecast", cfg.KafkaGroupID)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)

	assert.Equal(t, "Asia/Shanghai", cfg.Timezone)
	assert.Equal(t, "ZGSZ", cfg.MetarStation)
	assert.Equal(t, 30*time.Second, cfg.SolarTimeout)
	assert.Equal(t, 30*time.Second, cfg.ForecastTimeout)
	assert.Equal(t, 20*time.Second, cfg.MetarTimeout)
	assert.Equal(t, 30*time.Second, cfg.PremiumTimeout)
	assert.Equal(t, 2, cfg.ForecastDays)
	assert.Equal(t, 256, cfg.ForecastCacheSize)
	assert.False(t, cfg.PremiumEnabled)
	assert.Empty(t, cfg.PremiumAPIKey)

	assert.Equal(t, domain.DefaultThresholds(), cfg.Scoring)
	assert.Equal(t, []float64{20, 50, 80, 120}, cfg.CloudWall.SampleKm)
	assert.Equal(t, 125.0, cfg.CloudWall.LapseRate)
	assert.Equal(t, 90.0, cfg.CloudWall.SunriseBearing)
	assert.Equal(t, 270.0, cfg.CloudWall.SunsetBearing)
	assert.Equal(t, 4, cfg.CloudWall.Concurrency)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SOURCE_TOPIC", "custom-source")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")
	t.Setenv("FORECAST_LAT", "31.23")
	t.Setenv("FORECAST_LON", "121.47")
	t.Setenv("FORECAST_PLACE", "The Bund")
	t.Setenv("TIMEZONE", "Europe/Lisbon")
	t.Setenv("METAR_STATION", "ZSSS")
	t.Setenv("MB_API_KEY", testMBKey)
	t.Setenv("MB_TIMEOUT", "10s")
	t.Setenv("FORECAST_DAYS", "3")
	t.Setenv("FORECAST_CACHE_SIZE", "500")
	t.Setenv("CLOUDBASE_LAPSE_M_PER_C", "120")
	t.Setenv("CLOUDWALL_SAMPLE_KM", "10, 30,60")
	t.Setenv("SUNRISE_BEARING", "75")
	t.Setenv("SUNSET_BEARING", "285")
	t.Setenv("SAMPLE_CONCURRENCY", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-source", cfg.KafkaSourceTopic)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)
	assert.Equal(t, 31.23, cfg.Lat)
	assert.Equal(t, 121.47, cfg.Lon)
	assert.Equal(t, "The Bund", cfg.Place)
	assert.Equal(t, "Europe/Lisbon", cfg.Timezone)
	assert.Equal(t, "ZSSS", cfg.MetarStation)
	assert.True(t, cfg.PremiumEnabled)
	assert.Equal(t, testMBKey, cfg.PremiumAPIKey)
	assert.Equal(t, 10*time.Second, cfg.PremiumTimeout)
	assert.Equal(t, 3, cfg.ForecastDays)
	assert.Equal(t, 500, cfg.ForecastCacheSize)
	assert.Equal(t, 120.0, cfg.CloudWall.LapseRate)
	assert.Equal(t, []float64{10, 30, 60}, cfg.CloudWall.SampleKm)
	assert.Equal(t, 75.0, cfg.CloudWall.SunriseBearing)
	assert.Equal(t, 285.0, cfg.CloudWall.SunsetBearing)
	assert.Equal(t, 2, cfg.CloudWall.Concurrency)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_BatchSizeTooLarge(t *testing.T) {
	t.Setenv("BATCH_SIZE", "9999")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_InvalidBatchFlushInterval(t *testing.T) {
	t.Setenv("BATCH_FLUSH_INTERVAL", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_FLUSH_INTERVAL")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"FORECAST_LAT", "north"},
		{"FORECAST_LAT", "91"},
		{"FORECAST_LON", "-181"},
		{"TIMEZONE", "Mars/Olympus"},
		{"SOLAR_TIMEOUT", "bad"},
		{"FORECAST_TIMEOUT", "0s"},
		{"METAR_TIMEOUT", "-3s"},
		{"MB_TIMEOUT", "soon"},
		{"FORECAST_DAYS", "17"},
		{"FORECAST_CACHE_SIZE", "0"},
		{"CLOUDBASE_LAPSE_M_PER_C", "-5"},
		{"CLOUDWALL_SAMPLE_KM", "20,far"},
		{"CLOUDWALL_SAMPLE_KM", "20,-5"},
		{"SAMPLE_CONCURRENCY", "0"},
		{"SUNSET_BEARING", "west"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_PremiumEnabledWithoutKey(t *testing.T) {
	t.Setenv("MB_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MB_API_KEY")
}

func TestLoad_PremiumExplicitlyDisabled(t *testing.T) {
	t.Setenv("MB_API_KEY", testMBKey)
	t.Setenv("MB_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.PremiumEnabled)
}

func writeScoringFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scoring.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_ScoringFile(t *testing.T) {
	path := writeScoringFile(t, `
scoring:
  low_cloud: [5, 25, 60]
  wind_ms: [0.5, 1.5, 6, 9]
  precip_mm: [0.2, 2]
cloudwall:
  sunrise_azimuth: 100
  sample_km: [15, 45]
  cb_lapse_m_per_degC: 110
`)
	t.Setenv("SCORING_CONFIG", path)
	t.Setenv("SUNSET_BEARING", "250")

	cfg, err := Load()
	require.NoError(t, err)

	want := domain.DefaultThresholds()
	want.LowCloud = [3]float64{5, 25, 60}
	want.WindMS = [4]float64{0.5, 1.5, 6, 9}
	want.PrecipMM = [2]float64{0.2, 2}
	assert.Equal(t, want, cfg.Scoring)
	assert.Equal(t, 100.0, cfg.CloudWall.SunriseBearing)
	assert.Equal(t, 250.0, cfg.CloudWall.SunsetBearing)
	assert.Equal(t, []float64{15, 45}, cfg.CloudWall.SampleKm)
	assert.Equal(t, 110.0, cfg.CloudWall.LapseRate)
}

func TestLoad_EnvOverridesScoringFile(t *testing.T) {
	path := writeScoringFile(t, "cloudwall:\n  cb_lapse_m_per_degC: 110\n  concurrency: 8\n")
	t.Setenv("SCORING_CONFIG", path)
	t.Setenv("CLOUDBASE_LAPSE_M_PER_C", "130")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 130.0, cfg.CloudWall.LapseRate)
	assert.Equal(t, 8, cfg.CloudWall.Concurrency)
}

func TestLoad_ScoringFileErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"wrong arity", "scoring:\n  low_cloud: [0, 20]\n", "scoring.low_cloud"},
		{"not ascending", "scoring:\n  wind_ms: [1, 5, 2, 8]\n", "scoring.wind_ms"},
		{"pair not ascending", "scoring:\n  visibility_km: [15, 8]\n", "scoring.visibility_km"},
		{"malformed yaml", "scoring: [\n", "SCORING_CONFIG"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SCORING_CONFIG", writeScoringFile(t, tt.body))
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		t.Setenv("SCORING_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SCORING_CONFIG")
	})
}
