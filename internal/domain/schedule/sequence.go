package schedule

import (
	"time"

	"ArenaPull/internal/domain/models"
)

// Sequence produces the n future timestamps for a forecast series:
// out[0] = anchor + delta, each following point one delta later. All UTC.
// Deterministic for a given anchor, so a retried cycle reproduces the same
// sequence.
func Sequence(anchor time.Time, delta time.Duration, n int) []time.Time {
	out := make([]time.Time, n)
	t := anchor.UTC()
	for i := range out {
		t = t.Add(delta)
		out[i] = t
	}
	return out
}

// Anchor returns the sequencing anchor for a context series: its newest
// observation timestamp. An empty series is a per-series resolution failure;
// the rest of the challenge proceeds.
func Anchor(series *models.ContextSeries) (time.Time, error) {
	last, ok := series.LastTimestamp()
	if !ok {
		return time.Time{}, &ResolutionError{Reason: ReasonEmptyContext, Detail: series.Name}
	}
	return last, nil
}
