package arena

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ArenaPull/internal/domain/models"
)

func TestListChallengesParsesWire(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		if r.URL.Path != "/challenges" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{
			"id": 42,
			"name": "electricity",
			"registration_start": "2026-02-01T00:00:00Z",
			"registration_end": "2026-02-28T23:59:59Z",
			"frequency": "15 minutes",
			"horizon": "PT1H"
		}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", 5*time.Second)
	challenges, err := c.ListChallenges(context.Background())
	if err != nil {
		t.Fatalf("ListChallenges: %v", err)
	}
	if gotKey != "secret" {
		t.Fatalf("X-API-Key not sent, got %q", gotKey)
	}
	if len(challenges) != 1 {
		t.Fatalf("expected 1 challenge, got %d", len(challenges))
	}
	ch := challenges[0]
	if ch.ID != 42 || ch.Frequency != "15 minutes" || ch.Horizon != "PT1H" {
		t.Fatalf("challenge fields wrong: %+v", ch)
	}
	if !ch.RegistrationStart.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("registration_start parsed wrong: %v", ch.RegistrationStart)
	}
}

func TestListChallengesRejectsBadTimestamp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": 1, "registration_start": "next tuesday", "registration_end": "2026-02-28T00:00:00Z"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "k", 5*time.Second)
	if _, err := c.ListChallenges(context.Background()); err == nil {
		t.Fatalf("expected error for unparseable timestamp")
	}
}

func TestUnauthorizedMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, "wrong", 5*time.Second)
	_, err := c.ListChallenges(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestUploadForecastWireShape(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecasts/upload" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "k", 5*time.Second)
	err := c.UploadForecast(context.Background(), &models.UploadPayload{
		ChallengeID: 42,
		ModelName:   "naive",
		Series: []models.ForecastSeries{{
			Name: "alpha",
			Points: []models.ForecastPoint{
				{Timestamp: time.Date(2026, 2, 2, 10, 15, 0, 0, time.UTC), Value: 1.5},
			},
		}},
	})
	if err != nil {
		t.Fatalf("UploadForecast: %v", err)
	}

	if body["challenge_id"].(float64) != 42 || body["model_name"] != "naive" {
		t.Fatalf("payload identity wrong: %v", body)
	}
	forecasts := body["forecasts"].([]interface{})
	series := forecasts[0].(map[string]interface{})
	if series["series_name"] != "alpha" {
		t.Fatalf("series_name wrong: %v", series)
	}
	point := series["forecasts"].([]interface{})[0].(map[string]interface{})
	if point["ts"] != "2026-02-02T10:15:00Z" {
		t.Fatalf("timestamp not RFC3339 UTC: %v", point["ts"])
	}
	if point["value"].(float64) != 1.5 {
		t.Fatalf("value wrong: %v", point["value"])
	}
}

func TestUploadForecastServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, "k", 5*time.Second)
	err := c.UploadForecast(context.Background(), &models.UploadPayload{ChallengeID: 1, ModelName: "m"})
	if err == nil {
		t.Fatalf("expected error on 502")
	}
}

func TestGetContextData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/challenges/7/context-data" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{
			"series_name": "alpha",
			"observations": [
				{"ts": "2026-02-02T09:45:00Z", "value": 1.1},
				{"ts": "2026-02-02T10:00:00Z", "value": 1.2}
			]
		}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "k", 5*time.Second)
	series, err := c.GetContextData(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetContextData: %v", err)
	}
	if len(series) != 1 || series[0].Name != "alpha" || len(series[0].Observations) != 2 {
		t.Fatalf("unexpected series %+v", series)
	}
	last := series[0].Observations[1]
	if !last.Timestamp.Equal(time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)) || last.Value != 1.2 {
		t.Fatalf("last observation wrong: %+v", last)
	}
}
