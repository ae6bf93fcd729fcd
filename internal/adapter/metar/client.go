package metar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/sunrise-forecast/internal/observability"
)

const providerName = "metar"

// maxReportBytes bounds the station file read; real files are two short lines.
const maxReportBytes = 64 << 10

// Client implements domain.RawReportProvider using the NOAA station text files.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a METAR text client.
func NewClient(timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://tgftp.nws.noaa.gov/data/observations/metar/stations",
		metrics: metrics,
		logger:  logger,
	}
}

// LatestReport returns the last line of the station's report file. The first
// line of the file is the observation timestamp.
func (c *Client) LatestReport(ctx context.Context, station string) (string, error) {
	if station == "" {
		return "", errors.New("no METAR station configured")
	}
	fullURL := fmt.Sprintf("%s/%s.TXT", c.baseURL, url.PathEscape(strings.ToUpper(station)))

	start := time.Now()
	report, err := c.fetch(ctx, fullURL)
	c.metrics.ProviderDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ProviderRequests.WithLabelValues(providerName, "error").Inc()
		return "", err
	}
	outcome := "success"
	if report == "" {
		outcome = "empty"
	}
	c.metrics.ProviderRequests.WithLabelValues(providerName, outcome).Inc()
	return report, nil
}

func (c *Client) fetch(ctx context.Context, fullURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("metar request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("metar error: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReportBytes))
	if err != nil {
		return "", fmt.Errorf("read report: %w", err)
	}
	return lastLine(string(body)), nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
