package sunrisesunset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/sunrise-forecast/internal/domain"
	"github.com/couchcryptid/sunrise-forecast/internal/observability"
)

const providerName = "sunrise_sunset"

// Client implements domain.SolarEventProvider using api.sunrise-sunset.org.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a solar event client.
func NewClient(timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.sunrise-sunset.org/json",
		metrics: metrics,
		logger:  logger,
	}
}

// EventTime returns the sunrise or sunset on date at the given point,
// converted to loc.
func (c *Client) EventTime(ctx context.Context, at domain.Geo, date time.Time, kind domain.EventKind, loc *time.Location) (time.Time, error) {
	params := url.Values{
		"lat":       {strconv.FormatFloat(at.Lat, 'f', -1, 64)},
		"lng":       {strconv.FormatFloat(at.Lon, 'f', -1, 64)},
		"date":      {date.Format(time.DateOnly)},
		"formatted": {"0"},
	}

	start := time.Now()
	t, err := c.fetch(ctx, c.baseURL+"?"+params.Encode(), kind)
	c.metrics.ProviderDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ProviderRequests.WithLabelValues(providerName, "error").Inc()
		return time.Time{}, err
	}
	c.metrics.ProviderRequests.WithLabelValues(providerName, "success").Inc()
	if loc != nil {
		t = t.In(loc)
	}
	return t, nil
}

func (c *Client) fetch(ctx context.Context, fullURL string, kind domain.EventKind) (time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("sunrise-sunset request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return time.Time{}, fmt.Errorf("sunrise-sunset API error: status %d: %s", resp.StatusCode, body)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return time.Time{}, fmt.Errorf("decode response: %w", err)
	}
	if payload.Status != "OK" {
		return time.Time{}, fmt.Errorf("sunrise-sunset status %q", payload.Status)
	}

	raw := payload.Results.Sunrise
	if kind == domain.Sunset {
		raw = payload.Results.Sunset
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s time: %w", kind, err)
	}
	// Polar day and night are reported as the Unix epoch.
	if t.Year() <= 1970 {
		return time.Time{}, fmt.Errorf("no %s on this date", kind)
	}
	return t, nil
}

// sunrise-sunset.org response types.

type response struct {
	Results struct {
		Sunrise string `json:"sunrise"`
		Sunset  string `json:"sunset"`
	} `json:"results"`
	Status string `json:"status"`
}
