// Command validate checks saved forecast result files for internal
// consistency: factor order and points, the normalized score, cloud-base
// provenance, sample ordering and the risk verdicts recomputed from the
// recorded samples.
//
// Usage:
//
//	go run ./cmd/validate results/2026-10-16-sunrise.json results/2026-10-16-sunset.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/sunrise-forecast/internal/domain"
)

// factorOrder is the evaluation order every result must preserve.
var factorOrder = []string{
	domain.FactorLowCloud,
	domain.FactorMidHighCloud,
	domain.FactorCloudBase,
	domain.FactorVisibility,
	domain.FactorWind,
	domain.FactorDewpointSpread,
	domain.FactorPrecipitation,
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: validate RESULT.json [RESULT.json ...]")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(flag.Args()); code != 0 {
		os.Exit(code)
	}
}

func run(paths []string) int {
	fmt.Println("=== Forecast Result Validation ===")

	allPassed := true
	for _, path := range paths {
		fmt.Printf("\n%s\n", path)
		res, err := loadResult(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  FATAL: %v\n", err)
			allPassed = false
			continue
		}

		phases := validateResult(res)
		for _, p := range phases {
			status := "\033[32mPASS\033[0m"
			if !p.passed() {
				status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
				allPassed = false
			}
			fmt.Printf("  %-30s %s\n", p.name, status)
		}
		for _, p := range phases {
			for i, e := range p.errors {
				fmt.Printf("    [%s %d] %s\n", p.name, i+1, e)
			}
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadResult(path string) (*domain.ForecastResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var res domain.ForecastResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &res, nil
}

func validateResult(res *domain.ForecastResult) []*phase {
	return []*phase{
		validateMeta(res),
		validateScores(res),
		validateCloudBase(res),
		validateRisk(res),
		validateText(res),
	}
}

func validateMeta(res *domain.ForecastResult) *phase {
	p := &phase{name: "Meta"}
	m := res.Meta
	if m.RunID == "" {
		p.errorf("run_id is empty")
	}
	if _, err := domain.ParseEventKind(string(m.Event)); err != nil {
		p.errorf("event: %v", err)
	}
	if _, err := time.Parse(time.DateOnly, m.Date); err != nil {
		p.errorf("date %q is not YYYY-MM-DD", m.Date)
	}
	if _, err := time.LoadLocation(m.TZ); err != nil {
		p.errorf("tz %q: %v", m.TZ, err)
	}
	if m.Lat < -90 || m.Lat > 90 || m.Lon < -180 || m.Lon > 180 {
		p.errorf("coordinates out of range: %v,%v", m.Lat, m.Lon)
	}
	if m.GeneratedAt.IsZero() {
		p.errorf("generated_at is missing")
	}
	if m.EventTimeLocal.IsZero() {
		p.errorf("event_time_local is missing")
	} else if got := m.EventTimeLocal.Format(time.DateOnly); got != m.Date {
		p.errorf("event_time_local date %s differs from date %s", got, m.Date)
	}
	return p
}

func validateScores(res *domain.ForecastResult) *phase {
	p := &phase{name: "Scores"}
	s := res.Scores

	names := make([]string, 0, len(s.Details))
	for _, f := range s.Details {
		names = append(names, f.Name)
		if f.Points < 0 || f.Points > 2 {
			p.errorf("%s: points %d outside 0..2", f.Name, f.Points)
		}
	}
	if !slices.Equal(names, factorOrder) {
		p.errorf("factor order %v, want %v", names, factorOrder)
	}
	if total := s.Details.Total(); total != s.RawTotal {
		p.errorf("raw_total %d, factors sum to %d", s.RawTotal, total)
	}
	if s.MaxTotal != domain.MaxRawTotal {
		p.errorf("max_total %d, want %d", s.MaxTotal, domain.MaxRawTotal)
	}
	if want := domain.Normalize(s.RawTotal, domain.FactorCount); math.Abs(want-s.Score5) > 1e-9 {
		p.errorf("score5 %.1f, want %.1f", s.Score5, want)
	}
	return p
}

func validateCloudBase(res *domain.ForecastResult) *phase {
	p := &phase{name: "Cloud base"}
	cb := res.CloudBase
	switch cb.Source {
	case domain.CloudBaseObserved, domain.CloudBaseEstimated:
		if cb.HeightM == nil {
			p.errorf("source %s without a height", cb.Source)
		}
	case domain.CloudBaseUnknown:
		if cb.HeightM != nil {
			p.errorf("unknown source with height %.0f", *cb.HeightM)
		}
	default:
		p.errorf("unrecognized source %q", cb.Source)
	}
	if res.Inputs.CloudBaseSource != cb.Source {
		p.errorf("inputs.cloud_base_source %q differs from cloud_base.source %q", res.Inputs.CloudBaseSource, cb.Source)
	}

	scored := res.Scores.Details.Value(domain.FactorCloudBase)
	switch {
	case cb.HeightM == nil && (scored == nil || *scored != -1):
		p.errorf("unknown cloud base must be scored with display value -1")
	case cb.HeightM != nil && (scored == nil || math.Abs(*scored-*cb.HeightM) > 1e-6):
		p.errorf("scored cloud base differs from resolved height")
	}
	return p
}

func validateRisk(res *domain.ForecastResult) *phase {
	p := &phase{name: "Risk"}
	r := res.Risk

	if r.SimpleScore != int(r.Simple) {
		p.errorf("simple_score %d does not match %s", r.SimpleScore, r.Simple)
	}
	if r.MultiScore != int(r.Multi) {
		p.errorf("multi_score %d does not match %s", r.MultiScore, r.Multi)
	}
	if want := domain.SimpleText(r.Simple); r.SimpleText != want {
		p.errorf("simple_text %q, want %q", r.SimpleText, want)
	}

	for i, s := range r.Samples {
		if i > 0 && s.DistanceKm < r.Samples[i-1].DistanceKm {
			p.errorf("samples not in ascending distance at index %d", i)
		}
		switch s.Source {
		case domain.SamplePrimary, domain.SampleEstimatedFallback:
		case domain.SampleNoData:
			if s.LowCloudPct != nil || s.CloudBaseM != nil {
				p.errorf("no_data sample at %.0f km carries values", s.DistanceKm)
			}
		default:
			p.errorf("sample at %.0f km has unrecognized source %q", s.DistanceKm, s.Source)
		}
	}

	if want := domain.ReduceSamples(r.Samples); r.Multi != want {
		p.errorf("multi %s, samples reduce to %s", r.Multi, want)
	}
	if want := domain.FormatTrace(r.Multi, r.Samples); r.MultiText != want {
		p.errorf("multi_text %q, want %q", r.MultiText, want)
	}
	return p
}

func validateText(res *domain.ForecastResult) *phase {
	p := &phase{name: "Narrative"}
	header := fmt.Sprintf("Shooting index: %d/%d", res.Scores.RawTotal, domain.MaxRawTotal)
	if !strings.HasPrefix(res.Text.Detail, header) {
		p.errorf("detail does not start with %q", header)
	}
	if rec := domain.Recommendation(res.Scores.Score5); !strings.Contains(res.Text.Scene, rec) {
		p.errorf("scene lacks recommendation %q", rec)
	}
	if !strings.Contains(res.Text.Scene, res.Risk.SimpleText) || !strings.Contains(res.Text.Scene, res.Risk.MultiText) {
		p.errorf("scene lacks the risk verdicts")
	}
	return p
}
