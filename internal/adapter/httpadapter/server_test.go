package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/sunrise-forecast/internal/adapter/httpadapter"
	"github.com/couchcryptid/sunrise-forecast/internal/domain"
	"github.com/couchcryptid/sunrise-forecast/internal/forecast"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockForecaster struct {
	got    forecast.Request
	result *domain.ForecastResult
	err    error
}

func (m *mockForecaster) Run(_ context.Context, req forecast.Request) (*domain.ForecastResult, error) {
	m.got = req
	return m.result, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(readyErr error, f httpadapter.Forecaster) *httpadapter.Server {
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, f, discardLogger())
}

func get(srv *httpadapter.Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(newTestServer(nil, nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(newTestServer(nil, nil), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(newTestServer(fmt.Errorf("not ready yet"), nil), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(newTestServer(nil, nil), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestForecastNotRegisteredWithoutForecaster(t *testing.T) {
	rec := get(newTestServer(nil, nil), "/forecast?lat=1&lon=2")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestForecastReturnsResult(t *testing.T) {
	f := &mockForecaster{result: &domain.ForecastResult{
		Meta:   domain.ResultMeta{RunID: "run-1", Event: domain.Sunset},
		Scores: domain.ResultScores{RawTotal: 9, MaxTotal: domain.MaxRawTotal, Score5: 2.1},
	}}
	rec := get(newTestServer(nil, f),
		"/forecast?lat=22.52&lon=113.94&date=2026-10-16&event=sunset&tz=Asia/Shanghai&place=Pier")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, forecast.Request{
		Lat: 22.52, Lon: 113.94, Date: "2026-10-16", Event: "sunset",
		Timezone: "Asia/Shanghai", Place: "Pier",
	}, f.got)

	var body domain.ForecastResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body.Meta.RunID)
	assert.InDelta(t, 2.1, body.Scores.Score5, 1e-9)
}

func TestForecastBadQuery(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"missing lat", "/forecast?lon=1&date=2026-10-16&event=sunrise"},
		{"non-numeric lon", "/forecast?lat=1&lon=east&date=2026-10-16&event=sunrise"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &mockForecaster{}
			rec := get(newTestServer(nil, f), tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, f.got.Date, "forecaster must not be called")
		})
	}
}

func TestForecastErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation", &forecast.ValidationError{Fields: []string{"event failed oneof"}}, http.StatusBadRequest},
		{"unavailable", fmt.Errorf("%w: status 502", forecast.ErrForecastUnavailable), http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(newTestServer(nil, &mockForecaster{err: tt.err}),
				"/forecast?lat=1&lon=2&date=2026-10-16&event=sunrise")
			assert.Equal(t, tt.code, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}
