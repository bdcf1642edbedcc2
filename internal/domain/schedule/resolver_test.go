package schedule

import (
	"testing"
	"time"
)

func TestResolveFifteenMinutesOverOneHour(t *testing.T) {
	step, steps, err := Resolve("15 minutes", "PT1H")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if step != 15*time.Minute {
		t.Fatalf("unexpected step %v", step)
	}
	if steps != 4 {
		t.Fatalf("unexpected steps %d", steps)
	}
}

func TestResolveTable(t *testing.T) {
	cases := []struct {
		freq    string
		horizon string
		step    time.Duration
		steps   int
	}{
		{"15 minutes", "PT1H", 15 * time.Minute, 4},
		{"30min", "PT3H", 30 * time.Minute, 6},
		{"hourly", "P1D", time.Hour, 24},
		{"h", "PT12H", time.Hour, 12},
		{"1 hour", "P1DT12H", time.Hour, 36},
		{"daily", "P1W", 24 * time.Hour, 7},
		{"15T", "PT1H", 15 * time.Minute, 4},
		{"2 days", "P2W", 48 * time.Hour, 7},
	}
	for _, tc := range cases {
		step, steps, err := Resolve(tc.freq, tc.horizon)
		if err != nil {
			t.Fatalf("%s/%s: %v", tc.freq, tc.horizon, err)
		}
		if step != tc.step || steps != tc.steps {
			t.Fatalf("%s/%s: got (%v, %d), want (%v, %d)", tc.freq, tc.horizon, step, steps, tc.step, tc.steps)
		}
	}
}

func TestResolveNonIntegralSteps(t *testing.T) {
	_, _, err := Resolve("7 minutes", "PT1H")
	if !IsReason(err, ReasonNonIntegralSteps) {
		t.Fatalf("expected non-integral steps, got %v", err)
	}
	_, _, err = Resolve("2 hours", "PT2H")
	if err != nil {
		t.Fatalf("exact single step should resolve: %v", err)
	}
	// A frequency longer than the horizon cannot yield a whole step.
	_, _, err = Resolve("1 hour", "PT30M")
	if !IsReason(err, ReasonNonIntegralSteps) {
		t.Fatalf("expected non-integral steps, got %v", err)
	}
}

func TestParseFrequencyUnknown(t *testing.T) {
	for _, freq := range []string{"", "fortnightly", "monthly", "1 month", "every so often", "15"} {
		if _, err := ParseFrequency(freq); !IsReason(err, ReasonUnknownFrequency) {
			t.Fatalf("%q: expected unknown frequency, got %v", freq, err)
		}
	}
}

func TestParseHorizonInvalid(t *testing.T) {
	for _, h := range []string{"", "1H", "P", "PT", "PTH", "P1Y", "P1M", "PT1H2", "an hour"} {
		if _, err := ParseHorizon(h); !IsReason(err, ReasonInvalidHorizon) {
			t.Fatalf("%q: expected invalid horizon, got %v", h, err)
		}
	}
}

func TestParseHorizonSubset(t *testing.T) {
	cases := map[string]time.Duration{
		"PT1H":    time.Hour,
		"PT15M":   15 * time.Minute,
		"PT90S":   90 * time.Second,
		"P1D":     24 * time.Hour,
		"P1W":     7 * 24 * time.Hour,
		"P1DT6H":  30 * time.Hour,
		"pt1h30m": 90 * time.Minute,
	}
	for in, want := range cases {
		got, err := ParseHorizon(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got != want {
			t.Fatalf("%q: got %v, want %v", in, got, want)
		}
	}
}
