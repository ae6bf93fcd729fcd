package sunrisesunset

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/sunrise-forecast/internal/domain"
	"github.com/couchcryptid/sunrise-forecast/internal/observability"
)

func testClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

const okBody = `{"results":{
  "sunrise":"2026-10-15T22:18:31+00:00",
  "sunset":"2026-10-16T09:52:10+00:00"
},"status":"OK"}`

func TestClient_EventTime(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)
	date := time.Date(2026, 10, 16, 0, 0, 0, 0, loc)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "22.52", q.Get("lat"))
		assert.Equal(t, "113.94", q.Get("lng"))
		assert.Equal(t, "2026-10-16", q.Get("date"))
		assert.Equal(t, "0", q.Get("formatted"))
		_, _ = w.Write([]byte(okBody))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	at := domain.Geo{Lat: 22.52, Lon: 113.94}

	t.Run("sunrise", func(t *testing.T) {
		got, err := c.EventTime(context.Background(), at, date, domain.Sunrise, loc)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 10, 16, 6, 18, 31, 0, loc), got)
		assert.Equal(t, loc, got.Location())
	})

	t.Run("sunset", func(t *testing.T) {
		got, err := c.EventTime(context.Background(), at, date, domain.Sunset, loc)
		require.NoError(t, err)
		assert.Equal(t, 17, got.Hour())
		assert.Equal(t, 52, got.Minute())
	})
}

func TestClient_EventTime_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		errMsg string
	}{
		{"server error", http.StatusBadGateway, "", "status 502"},
		{"invalid request", http.StatusOK, `{"results":"","status":"INVALID_REQUEST"}`, "decode response"},
		{"status not ok", http.StatusOK, `{"results":{},"status":"INVALID_DATE"}`, "INVALID_DATE"},
		{"bad timestamp", http.StatusOK, `{"results":{"sunrise":"dawn"},"status":"OK"}`, "parse sunrise"},
		{"polar night", http.StatusOK, `{"results":{"sunrise":"1970-01-01T00:00:01+00:00"},"status":"OK"}`, "no sunrise"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := testClient(srv.URL).EventTime(context.Background(), domain.Geo{}, time.Now(), domain.Sunrise, time.UTC)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
