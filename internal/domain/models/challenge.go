package models

import "time"

// Challenge is a time-bounded forecasting task exposed by the arena API.
// Listings are re-fetched every poll cycle; a Challenge is immutable within
// one cycle.
type Challenge struct {
	ID                int64
	Name              string
	RegistrationStart time.Time
	RegistrationEnd   time.Time
	Frequency         string // natural-language descriptor, e.g. "15 minutes"
	Horizon           string // ISO-8601 duration, e.g. "PT1H"
}

// EligibleAt reports whether forecasts may be submitted at the given instant.
// The registration window is closed on both ends.
func (c *Challenge) EligibleAt(now time.Time) bool {
	return !now.Before(c.RegistrationStart) && !now.After(c.RegistrationEnd)
}

// ChallengeDetail is the full challenge record including its series names.
type ChallengeDetail struct {
	Challenge
	Series []string
}

// Observation is one (timestamp, value) history point.
type Observation struct {
	Timestamp time.Time `json:"ts"`
	Value     float64   `json:"value"`
}

// ContextSeries is the history known for one series as of "now", strictly
// increasing by timestamp. Owned transiently by a single processing pass.
type ContextSeries struct {
	Name         string
	Observations []Observation
}

// LastTimestamp returns the newest observation timestamp, the anchor for the
// forecast sequence. ok is false for an empty series.
func (s *ContextSeries) LastTimestamp() (time.Time, bool) {
	if len(s.Observations) == 0 {
		return time.Time{}, false
	}
	return s.Observations[len(s.Observations)-1].Timestamp, true
}
