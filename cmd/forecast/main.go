// Command forecast runs a single sunrise or sunset forecast and prints the
// result as JSON. Location and provider settings default to the environment
// (optionally loaded from .env) and may be overridden with flags.
//
// Usage:
//
//	go run ./cmd/forecast -event sunset -date 2026-10-16 -out result.json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/sunrise-forecast/internal/config"
	"github.com/couchcryptid/sunrise-forecast/internal/domain"
	"github.com/couchcryptid/sunrise-forecast/internal/forecast"
	"github.com/couchcryptid/sunrise-forecast/internal/observability"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	lat := flag.Float64("lat", cfg.Lat, "latitude of the shooting spot")
	lon := flag.Float64("lon", cfg.Lon, "longitude of the shooting spot")
	date := flag.String("date", "", "local date YYYY-MM-DD (default: tomorrow)")
	event := flag.String("event", string(domain.Sunrise), "sunrise or sunset")
	tz := flag.String("tz", cfg.Timezone, "IANA time zone")
	name := flag.String("name", cfg.Place, "place name shown in the narrative")
	station := flag.String("station", cfg.MetarStation, "METAR station for the observed cloud base")
	out := flag.String("out", "", "write the JSON result to this file instead of stdout")
	flag.Parse()

	cfg.MetarStation = *station
	logger := observability.NewLoggerTo(os.Stderr, cfg)

	if *date == "" {
		*date = tomorrow(*tz)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := forecast.NewFromConfig(cfg, observability.NewMetrics(), logger)
	res, err := svc.Run(ctx, forecast.Request{
		Lat:      *lat,
		Lon:      *lon,
		Date:     *date,
		Event:    *event,
		Timezone: *tz,
		Place:    *name,
	})
	if err != nil {
		var verr *forecast.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintln(os.Stderr, err)
			flag.Usage()
			os.Exit(2)
		}
		logger.Error("forecast failed", "error", err)
		os.Exit(1)
	}

	if err := writeResult(*out, res); err != nil {
		logger.Error("write result", "error", err, "path", *out)
		os.Exit(1)
	}
	if *out != "" {
		fmt.Println(res.Text.Scene)
		logger.Info("result written", "path", *out, "run_id", res.Meta.RunID)
	}
}

// tomorrow returns the next local date in tz, falling back to UTC when the
// zone is unknown. Validation reports the bad zone later.
func tomorrow(tz string) string {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	return domain.Now().In(loc).AddDate(0, 0, 1).Format(time.DateOnly)
}

func writeResult(path string, res *domain.ForecastResult) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(res)
}
