package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/sunrise-forecast/internal/domain"
	"github.com/couchcryptid/sunrise-forecast/internal/forecast"
)

// forecastTimeout caps a single on-demand forecast. Each upstream provider
// has its own shorter timeout.
const forecastTimeout = 60 * time.Second

// Forecaster runs a single forecast.
type Forecaster interface {
	Run(ctx context.Context, req forecast.Request) (*domain.ForecastResult, error)
}

// Server exposes health, readiness, metrics and on-demand forecast endpoints.
type Server struct {
	httpServer *http.Server
	forecaster Forecaster
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz and /metrics routes.
// GET /forecast is registered when forecaster is non-nil.
func NewServer(addr string, ready sharedobs.ReadinessChecker, forecaster Forecaster, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: forecastTimeout + 10*time.Second,
			IdleTimeout:  60 * time.Second,
		},
		forecaster: forecaster,
		logger:     logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	if forecaster != nil {
		mux.HandleFunc("GET /forecast", s.handleForecast)
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	req, err := parseForecastQuery(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), forecastTimeout)
	defer cancel()

	res, err := s.forecaster.Run(ctx, req)
	if err != nil {
		var verr *forecast.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request", "fields": verr.Fields})
		case errors.Is(err, forecast.ErrForecastUnavailable):
			s.logger.Warn("forecast unavailable", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		default:
			s.logger.Error("forecast failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// parseForecastQuery reads lat, lon, date, event, tz and place. Only numeric
// parsing is checked here; ranges and formats are left to Request.Validate.
func parseForecastQuery(q url.Values) (forecast.Request, error) {
	lat, err := requiredFloat(q, "lat")
	if err != nil {
		return forecast.Request{}, err
	}
	lon, err := requiredFloat(q, "lon")
	if err != nil {
		return forecast.Request{}, err
	}
	return forecast.Request{
		Lat:      lat,
		Lon:      lon,
		Date:     q.Get("date"),
		Event:    q.Get("event"),
		Timezone: q.Get("tz"),
		Place:    q.Get("place"),
	}, nil
}

func requiredFloat(q url.Values, key string) (float64, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, errors.New("missing query parameter " + key)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New("invalid query parameter " + key + ": " + raw)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
