package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/sunrise-forecast/internal/domain"
	"github.com/couchcryptid/sunrise-forecast/internal/observability"
)

const providerName = "open_meteo"

// Client implements domain.GriddedForecastProvider using the Open-Meteo
// forecast API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo forecast client.
func NewClient(timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.open-meteo.com/v1/forecast",
		metrics: metrics,
		logger:  logger,
	}
}

// HourlyForecast fetches every scored field for the next days forecast days
// with time keys in loc. A response without a time axis, or with a field whose
// length differs from it, is rejected.
func (c *Client) HourlyForecast(ctx context.Context, at domain.Geo, loc *time.Location, days int) (*domain.HourlySeries, error) {
	if loc == nil {
		loc = time.UTC
	}
	params := url.Values{
		"latitude":       {strconv.FormatFloat(at.Lat, 'f', 4, 64)},
		"longitude":      {strconv.FormatFloat(at.Lon, 'f', 4, 64)},
		"hourly":         {strings.Join(domain.HourlyFields, ",")},
		"windspeed_unit": {"ms"},
		"forecast_days":  {strconv.Itoa(days)},
		"timezone":       {loc.String()},
	}

	start := time.Now()
	series, err := c.fetch(ctx, c.baseURL+"?"+params.Encode(), loc)
	c.metrics.ProviderDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ProviderRequests.WithLabelValues(providerName, "error").Inc()
		return nil, err
	}
	c.metrics.ProviderRequests.WithLabelValues(providerName, "success").Inc()
	c.logger.Debug("gridded forecast fetched", "lat", at.Lat, "lon", at.Lon, "hours", series.Len())
	return series, nil
}

func (c *Client) fetch(ctx context.Context, fullURL string, loc *time.Location) (*domain.HourlySeries, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open-meteo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, body)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return payload.series(loc)
}

// Open-Meteo API response types.

type response struct {
	Hourly map[string]json.RawMessage `json:"hourly"`
}

func (r response) series(loc *time.Location) (*domain.HourlySeries, error) {
	rawTimes, ok := r.Hourly["time"]
	if !ok {
		return nil, errors.New("open-meteo response missing hourly.time")
	}
	var times []string
	if err := json.Unmarshal(rawTimes, &times); err != nil {
		return nil, fmt.Errorf("decode hourly.time: %w", err)
	}
	if len(times) == 0 {
		return nil, errors.New("open-meteo response has an empty time axis")
	}

	values := make(map[string][]*float64, len(domain.HourlyFields))
	for _, field := range domain.HourlyFields {
		raw, ok := r.Hourly[field]
		if !ok {
			continue
		}
		var col []*float64
		if err := json.Unmarshal(raw, &col); err != nil {
			return nil, fmt.Errorf("decode hourly.%s: %w", field, err)
		}
		if len(col) != len(times) {
			return nil, fmt.Errorf("hourly.%s has %d values for %d hours", field, len(col), len(times))
		}
		values[field] = col
	}

	return &domain.HourlySeries{Location: loc, Times: times, Values: values}, nil
}
