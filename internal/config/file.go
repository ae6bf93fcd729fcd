package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// modelFile mirrors the scoring file layout:
//
//	scoring:
//	  low_cloud: [0, 20, 50]
//	  wind_ms: [1, 2, 5, 8]
//	cloudwall:
//	  sample_km: [20, 50, 80, 120]
//	  cb_lapse_m_per_degC: 125
//
// Omitted keys keep their defaults.
type modelFile struct {
	Scoring struct {
		LowCloud       []float64 `yaml:"low_cloud"`
		MidHighCloud   []float64 `yaml:"mid_high_cloud"`
		CloudBaseM     []float64 `yaml:"cloud_base_m"`
		VisibilityKm   []float64 `yaml:"visibility_km"`
		WindMS         []float64 `yaml:"wind_ms"`
		DewpointSpread []float64 `yaml:"dewpoint_diff"`
		PrecipMM       []float64 `yaml:"precip_mm"`
	} `yaml:"scoring"`
	CloudWall struct {
		SunriseAzimuth *float64  `yaml:"sunrise_azimuth"`
		SunsetAzimuth  *float64  `yaml:"sunset_azimuth"`
		SampleKm       []float64 `yaml:"sample_km"`
		LapseRate      *float64  `yaml:"cb_lapse_m_per_degC"`
		Concurrency    *int      `yaml:"concurrency"`
	} `yaml:"cloudwall"`
}

func loadModelFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read SCORING_CONFIG: %w", err)
	}
	var f modelFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("parse SCORING_CONFIG: %w", err)
	}

	th := &cfg.Scoring
	bounds := []struct {
		name string
		src  []float64
		dst  []float64
	}{
		{"low_cloud", f.Scoring.LowCloud, th.LowCloud[:]},
		{"mid_high_cloud", f.Scoring.MidHighCloud, th.MidHighCloud[:]},
		{"cloud_base_m", f.Scoring.CloudBaseM, th.CloudBaseM[:]},
		{"visibility_km", f.Scoring.VisibilityKm, th.VisibilityKm[:]},
		{"wind_ms", f.Scoring.WindMS, th.WindMS[:]},
		{"dewpoint_diff", f.Scoring.DewpointSpread, th.DewpointSpread[:]},
		{"precip_mm", f.Scoring.PrecipMM, th.PrecipMM[:]},
	}
	for _, b := range bounds {
		if b.src == nil {
			continue
		}
		if len(b.src) != len(b.dst) {
			return fmt.Errorf("SCORING_CONFIG scoring.%s: want %d values, got %d", b.name, len(b.dst), len(b.src))
		}
		copy(b.dst, b.src)
	}

	cw := &cfg.CloudWall
	if f.CloudWall.SunriseAzimuth != nil {
		cw.SunriseBearing = *f.CloudWall.SunriseAzimuth
	}
	if f.CloudWall.SunsetAzimuth != nil {
		cw.SunsetBearing = *f.CloudWall.SunsetAzimuth
	}
	if f.CloudWall.SampleKm != nil {
		cw.SampleKm = f.CloudWall.SampleKm
	}
	if f.CloudWall.LapseRate != nil {
		cw.LapseRate = *f.CloudWall.LapseRate
	}
	if f.CloudWall.Concurrency != nil {
		cw.Concurrency = *f.CloudWall.Concurrency
	}
	return nil
}
