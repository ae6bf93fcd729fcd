package domain

import "time"

// ForecastResult is the complete record of one forecast run.
type ForecastResult struct {
	Meta        ResultMeta             `json:"meta"`
	Inputs      ResultInputs           `json:"inputs"`
	Observation HourlyObservationPoint `json:"observation"`
	CloudBase   CloudBaseEstimate      `json:"cloud_base"`
	Scores      ResultScores           `json:"scores"`
	Risk        ResultRisk             `json:"risk"`
	Text        ResultText             `json:"text"`
}

// ResultMeta identifies the run.
type ResultMeta struct {
	RunID          string    `json:"run_id"`
	Lat            float64   `json:"lat"`
	Lon            float64   `json:"lon"`
	Place          string    `json:"place"`
	Date           string    `json:"date"`
	Event          EventKind `json:"event"`
	EventTimeLocal time.Time `json:"event_time_local"`
	TZ             string    `json:"tz"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// ResultInputs records how the observation was selected.
type ResultInputs struct {
	ForecastIndexTime string          `json:"forecast_index_time"`
	CloudBaseSource   CloudBaseSource `json:"cloud_base_source"`
	LapseRate         float64         `json:"lapse_rate"`
}

type ResultScores struct {
	RawTotal int         `json:"raw_total"`
	MaxTotal int         `json:"max_total"`
	Score5   float64     `json:"score5"`
	Details  ScoreDetail `json:"details"`
}

type ResultRisk struct {
	Simple      RiskLevel    `json:"simple"`
	SimpleScore int          `json:"simple_score"`
	SimpleText  string       `json:"simple_text"`
	Multi       RiskLevel    `json:"multi"`
	MultiScore  int          `json:"multi_score"`
	MultiText   string       `json:"multi_text"`
	Samples     []RiskSample `json:"samples"`
}

type ResultText struct {
	Scene  string `json:"scene"`
	Detail string `json:"detail"`
}
