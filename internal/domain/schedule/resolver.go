package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Challenge frequencies arrive as a small closed vocabulary of unit words
// ("15 minutes", "hourly") plus the compact pandas-style aliases providers
// use ("15min", "15T", "h", "d"). Calendar units (months, years) have no
// fixed duration and are rejected.
var unitDurations = map[string]time.Duration{
	"second": time.Second,
	"sec":    time.Second,
	"s":      time.Second,

	"minute": time.Minute,
	"min":    time.Minute,
	"t":      time.Minute,

	"hour":   time.Hour,
	"hourly": time.Hour,
	"hr":     time.Hour,
	"h":      time.Hour,

	"day":   24 * time.Hour,
	"daily": 24 * time.Hour,
	"d":     24 * time.Hour,

	"week":   7 * 24 * time.Hour,
	"weekly": 7 * 24 * time.Hour,
	"w":      7 * 24 * time.Hour,
}

// ParseFrequency converts a natural-language frequency descriptor into a
// step duration. An optional leading integer multiplies the unit:
// "15 minutes" -> 15m, "hourly" -> 1h.
func ParseFrequency(text string) (time.Duration, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return 0, &ResolutionError{Reason: ReasonUnknownFrequency, Detail: "empty frequency"}
	}

	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	count := 1
	if i > 0 {
		n, err := strconv.Atoi(s[:i])
		if err != nil || n <= 0 {
			return 0, &ResolutionError{Reason: ReasonUnknownFrequency, Detail: text}
		}
		count = n
	}

	word := strings.TrimSpace(s[i:])
	if len(word) > 1 {
		word = strings.TrimSuffix(word, "s") // minutes -> minute
	}
	d, ok := unitDurations[word]
	if !ok {
		return 0, &ResolutionError{Reason: ReasonUnknownFrequency, Detail: text}
	}
	return time.Duration(count) * d, nil
}

// ParseHorizon parses the ISO-8601 duration subset the arena uses:
// P[nW][nD][T[nH][nM][nS]]. Calendar designators (Y, month M) are rejected.
func ParseHorizon(text string) (time.Duration, error) {
	s := strings.ToUpper(strings.TrimSpace(text))
	if len(s) < 2 || s[0] != 'P' {
		return 0, &ResolutionError{Reason: ReasonInvalidHorizon, Detail: text}
	}

	var total time.Duration
	inTime := false
	seen := false
	i := 1
	for i < len(s) {
		if s[i] == 'T' {
			if inTime {
				return 0, &ResolutionError{Reason: ReasonInvalidHorizon, Detail: text}
			}
			inTime = true
			i++
			continue
		}

		j := i
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j == i || j >= len(s) {
			return 0, &ResolutionError{Reason: ReasonInvalidHorizon, Detail: text}
		}
		n, err := strconv.Atoi(s[i:j])
		if err != nil {
			return 0, &ResolutionError{Reason: ReasonInvalidHorizon, Detail: text}
		}

		var d time.Duration
		switch {
		case !inTime && s[j] == 'W':
			d = 7 * 24 * time.Hour
		case !inTime && s[j] == 'D':
			d = 24 * time.Hour
		case inTime && s[j] == 'H':
			d = time.Hour
		case inTime && s[j] == 'M':
			d = time.Minute
		case inTime && s[j] == 'S':
			d = time.Second
		default:
			return 0, &ResolutionError{
				Reason: ReasonInvalidHorizon,
				Detail: fmt.Sprintf("%s: designator %q not supported", text, s[j]),
			}
		}
		total += time.Duration(n) * d
		seen = true
		i = j + 1
	}

	if !seen {
		return 0, &ResolutionError{Reason: ReasonInvalidHorizon, Detail: text}
	}
	return total, nil
}

// Compact renders a step delta in the compact pandas-style form the
// prediction providers expect: "30s", "15min", "2h", "1d", "1w".
func Compact(delta time.Duration) string {
	week := 7 * 24 * time.Hour
	day := 24 * time.Hour
	switch {
	case delta%week == 0:
		return fmt.Sprintf("%dw", delta/week)
	case delta%day == 0:
		return fmt.Sprintf("%dd", delta/day)
	case delta%time.Hour == 0:
		return fmt.Sprintf("%dh", delta/time.Hour)
	case delta%time.Minute == 0:
		return fmt.Sprintf("%dmin", delta/time.Minute)
	default:
		return fmt.Sprintf("%ds", delta/time.Second)
	}
}

// Resolve converts a challenge's frequency and horizon into the step delta
// and the number of forecast points required. The horizon must be an exact
// multiple of the frequency; there is no rounding because the step count is
// contractual.
func Resolve(frequencyText, horizonText string) (time.Duration, int, error) {
	step, err := ParseFrequency(frequencyText)
	if err != nil {
		return 0, 0, err
	}
	horizon, err := ParseHorizon(horizonText)
	if err != nil {
		return 0, 0, err
	}

	if horizon%step != 0 {
		return 0, 0, &ResolutionError{
			Reason: ReasonNonIntegralSteps,
			Detail: fmt.Sprintf("frequency %q does not divide horizon %q", frequencyText, horizonText),
		}
	}
	steps := int(horizon / step)
	if steps < 1 {
		return 0, 0, &ResolutionError{
			Reason: ReasonNonIntegralSteps,
			Detail: fmt.Sprintf("horizon %q yields no forecast steps", horizonText),
		}
	}
	return step, steps, nil
}
