package meteoblue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/couchcryptid/sunrise-forecast/internal/domain"
	"github.com/couchcryptid/sunrise-forecast/internal/observability"
)

const providerName = "meteoblue"

// hourKeyLayout is how the basic-1h package keys its hourly axis.
const hourKeyLayout = "2006-01-02 15:00"

var (
	dataKeys      = []string{"data_1h", "data_hourly"}
	timeKeys      = []string{"time", "time_local", "time_iso8601"}
	lowCloudKeys  = []string{"low_clouds", "low_cloud_cover", "cloudcover_low"}
	cloudBaseKeys = []string{"cloud_base", "cloudbase", "cloud_base_height"}
)

// Client implements domain.PremiumPointProvider using the meteoblue package
// API. Calls pass through a circuit breaker so a failing endpoint stops being
// queried for the remaining sample points.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker[*dataset]
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a meteoblue point forecast client.
func NewClient(apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://my.meteoblue.com/packages/basic-1h_basic-day",
		breaker: newBreaker(logger),
		metrics: metrics,
		logger:  logger,
	}
}

func newBreaker(logger *slog.Logger) *gobreaker.CircuitBreaker[*dataset] {
	return gobreaker.NewCircuitBreaker[*dataset](gobreaker.Settings{
		Name:        providerName,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 2
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// PointForecast returns low cloud and cloud base for the exact target hour.
// The boolean is false when the response does not cover that hour.
func (c *Client) PointForecast(ctx context.Context, at domain.Geo, hour time.Time) (domain.PointForecast, bool, error) {
	params := url.Values{
		"apikey": {c.apiKey},
		"lat":    {strconv.FormatFloat(at.Lat, 'f', 4, 64)},
		"lon":    {strconv.FormatFloat(at.Lon, 'f', 4, 64)},
		"format": {"json"},
		"tz":     {hour.Location().String()},
	}

	start := time.Now()
	ds, err := c.breaker.Execute(func() (*dataset, error) {
		return c.fetch(ctx, c.baseURL+"?"+params.Encode())
	})
	c.metrics.ProviderDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ProviderRequests.WithLabelValues(providerName, "error").Inc()
		return domain.PointForecast{}, false, err
	}

	pf, ok := ds.at(hour.Format(hourKeyLayout))
	if !ok {
		c.metrics.ProviderRequests.WithLabelValues(providerName, "empty").Inc()
		return domain.PointForecast{}, false, nil
	}
	c.metrics.ProviderRequests.WithLabelValues(providerName, "success").Inc()
	return pf, true, nil
}

func (c *Client) fetch(ctx context.Context, fullURL string) (*dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("meteoblue request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("meteoblue API error: status %d: %s", resp.StatusCode, body)
	}

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return parseDataset(payload)
}

// dataset is the hourly block of a package response.
type dataset struct {
	times     []string
	lowCloud  []*float64
	cloudBase []*float64
}

func parseDataset(payload map[string]json.RawMessage) (*dataset, error) {
	var data map[string]json.RawMessage
	for _, k := range dataKeys {
		if raw, ok := payload[k]; ok {
			if err := json.Unmarshal(raw, &data); err != nil {
				return nil, fmt.Errorf("decode %s: %w", k, err)
			}
			break
		}
	}
	if data == nil {
		return nil, errors.New("meteoblue response has no hourly data")
	}

	ds := &dataset{}
	for _, k := range timeKeys {
		if raw, ok := data[k]; ok {
			if err := json.Unmarshal(raw, &ds.times); err != nil {
				return nil, fmt.Errorf("decode %s: %w", k, err)
			}
			break
		}
	}
	var err error
	if ds.lowCloud, err = pickColumn(data, lowCloudKeys); err != nil {
		return nil, err
	}
	if ds.cloudBase, err = pickColumn(data, cloudBaseKeys); err != nil {
		return nil, err
	}
	return ds, nil
}

func pickColumn(data map[string]json.RawMessage, keys []string) ([]*float64, error) {
	for _, k := range keys {
		raw, ok := data[k]
		if !ok {
			continue
		}
		var col []*float64
		if err := json.Unmarshal(raw, &col); err != nil {
			return nil, fmt.Errorf("decode %s: %w", k, err)
		}
		return col, nil
	}
	return nil, nil
}

func (d *dataset) at(key string) (domain.PointForecast, bool) {
	idx := slices.Index(d.times, key)
	if idx < 0 {
		return domain.PointForecast{}, false
	}
	return domain.PointForecast{
		LowCloudPct: valueAt(d.lowCloud, idx),
		CloudBaseM:  valueAt(d.cloudBase, idx),
	}, true
}

func valueAt(col []*float64, idx int) *float64 {
	if idx >= len(col) {
		return nil
	}
	return col[idx]
}
