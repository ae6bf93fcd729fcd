package openmeteo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/sunrise-forecast/internal/domain"
	"github.com/couchcryptid/sunrise-forecast/internal/observability"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func shanghai(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)
	return loc
}

const validBody = `{
  "latitude": 22.5, "longitude": 113.9,
  "hourly": {
    "time": ["2026-10-16T05:00", "2026-10-16T06:00"],
    "cloudcover_low": [12, 35],
    "cloudcover_mid": [40, null],
    "cloudcover_high": [5, 10],
    "visibility": [24140, 18000],
    "temperature_2m": [24.1, 23.8],
    "dewpoint_2m": [19.0, 20.2],
    "windspeed_10m": [3.2, 2.9],
    "precipitation": [0, 0.2]
  }
}`

func TestClient_HourlyForecast_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "22.5200", q.Get("latitude"))
		assert.Equal(t, "113.9400", q.Get("longitude"))
		assert.Equal(t, "ms", q.Get("windspeed_unit"))
		assert.Equal(t, "3", q.Get("forecast_days"))
		assert.Equal(t, "Asia/Shanghai", q.Get("timezone"))
		assert.Contains(t, q.Get("hourly"), "cloudcover_low")
		assert.Contains(t, q.Get("hourly"), "precipitation")

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(validBody))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	series, err := c.HourlyForecast(context.Background(), domain.Geo{Lat: 22.52, Lon: 113.94}, shanghai(t), 3)
	require.NoError(t, err)

	assert.Equal(t, 2, series.Len())
	assert.Equal(t, "Asia/Shanghai", series.Location.String())

	obs := series.Observation(1)
	assert.Equal(t, 35.0, *obs.LowCloudPct)
	assert.Nil(t, obs.MidCloudPct)
	assert.Equal(t, 10.0, *obs.MidHighCloudPct())
	assert.Equal(t, 0.2, *obs.PrecipitationMM)
	assert.Equal(t, "2026-10-16T06:00", obs.SourceTimestamp)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.ProviderRequests.WithLabelValues(providerName, "success")))
}

func TestClient_HourlyForecast_MissingFieldIsNeutral(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"hourly":{"time":["2026-10-16T06:00"],"cloudcover_low":[20]}}`))
	}))
	defer srv.Close()

	series, err := testClient(srv.URL).HourlyForecast(context.Background(), domain.Geo{}, time.UTC, 1)
	require.NoError(t, err)
	assert.Nil(t, series.Observation(0).VisibilityM)
	assert.Equal(t, 20.0, *series.Observation(0).LowCloudPct)
}

func TestClient_HourlyForecast_Unavailable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		errMsg string
	}{
		{"server error", http.StatusInternalServerError, `{"error":true}`, "status 500"},
		{"bad request", http.StatusBadRequest, `{"reason":"invalid timezone"}`, "invalid timezone"},
		{"malformed json", http.StatusOK, `{hourly`, "decode response"},
		{"missing hourly", http.StatusOK, `{"latitude":1}`, "hourly.time"},
		{"empty time axis", http.StatusOK, `{"hourly":{"time":[]}}`, "empty time axis"},
		{"length mismatch", http.StatusOK, `{"hourly":{"time":["2026-10-16T06:00","2026-10-16T07:00"],"visibility":[1000]}}`, "hourly.visibility"},
		{"non-numeric field", http.StatusOK, `{"hourly":{"time":["2026-10-16T06:00"],"visibility":["far"]}}`, "hourly.visibility"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := testClient(srv.URL)
			series, err := c.HourlyForecast(context.Background(), domain.Geo{}, time.UTC, 2)
			require.Error(t, err)
			assert.Nil(t, series)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.ProviderRequests.WithLabelValues(providerName, "error")))
		})
	}
}

func TestClient_HourlyForecast_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(validBody))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(srv.URL).HourlyForecast(ctx, domain.Geo{}, time.UTC, 2)
	require.Error(t, err)
}
