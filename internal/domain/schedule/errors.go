package schedule

import (
	"errors"
	"fmt"
)

// Reason classifies why frequency/horizon resolution failed for a challenge
// or series.
type Reason string

const (
	ReasonUnknownFrequency Reason = "unknown_frequency"
	ReasonInvalidHorizon   Reason = "invalid_horizon"
	ReasonNonIntegralSteps Reason = "non_integral_steps"
	ReasonEmptyContext     Reason = "empty_context"
)

// ResolutionError scopes a timing failure to the input that caused it. It is
// always per-challenge or per-series, never fatal to the loop.
type ResolutionError struct {
	Reason Reason
	Detail string
}

func (e *ResolutionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("resolution failed: %s", e.Reason)
	}
	return fmt.Sprintf("resolution failed: %s: %s", e.Reason, e.Detail)
}

// IsReason reports whether err is a ResolutionError with the given reason.
func IsReason(err error, r Reason) bool {
	var re *ResolutionError
	return errors.As(err, &re) && re.Reason == r
}
