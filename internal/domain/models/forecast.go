package models

import "time"

// ForecastPoint is one forecast value at an absolute UTC timestamp.
type ForecastPoint struct {
	Timestamp time.Time
	Value     float64
}

// ForecastSeries carries the forecast points for one series; its length
// equals the challenge's resolved step count.
type ForecastSeries struct {
	Name   string
	Points []ForecastPoint
}

// UploadPayload is one upload for a (challenge, model) pair.
type UploadPayload struct {
	ChallengeID int64
	ModelName   string
	Series      []ForecastSeries
}

// PredictionResult is a provider's answer for a single series. Quantiles may
// be empty; levels are keyed by their string form ("0.1", ..., "0.9").
type PredictionResult struct {
	Values    []float64
	Quantiles map[string][]float64
}

// UploadRecord is the journal entry written after each upload attempt.
// Quantile forecasts are recorded here; the arena upload wire shape only
// carries point values.
type UploadRecord struct {
	ChallengeID   int64            `json:"challenge_id"`
	ChallengeName string           `json:"challenge_name"`
	ModelName     string           `json:"model_name"`
	Outcome       string           `json:"outcome"` // full, partial, failed
	Steps         int              `json:"steps"`
	Frequency     string           `json:"frequency"`
	Horizon       string           `json:"horizon"`
	UploadedAt    time.Time        `json:"uploaded_at"`
	Series        []RecordedSeries `json:"series"`
	FailedSeries  []string         `json:"failed_series,omitempty"`
	Error         string           `json:"error,omitempty"`
}

// RecordedSeries is one uploaded series as written to the journal.
type RecordedSeries struct {
	Name      string               `json:"name"`
	Values    []float64            `json:"values"`
	Quantiles map[string][]float64 `json:"quantiles,omitempty"`
}
