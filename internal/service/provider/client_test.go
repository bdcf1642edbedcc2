package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ArenaPull/internal/domain/models"
)

func TestPredictRoundTrip(t *testing.T) {
	var req map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"forecasts": [1.2, 1.3, 1.4, 1.5],
			"quantiles": {"0.5": [1.2, 1.3, 1.4, 1.5]}
		}`))
	}))
	defer srv.Close()

	c := New("naive", "naive-v1", srv.URL, 5*time.Second)
	history := []models.Observation{
		{Timestamp: time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC), Value: 1.1},
	}
	result, err := c.Predict(context.Background(), history, 4, "15min", []float64{0.5})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	if req["horizon"].(float64) != 4 || req["freq"] != "15min" {
		t.Fatalf("request shape wrong: %v", req)
	}
	point := req["history"].([]interface{})[0].(map[string]interface{})
	if point["ts"] != "2026-02-02T10:00:00Z" || point["value"].(float64) != 1.1 {
		t.Fatalf("history point wrong: %v", point)
	}
	levels := req["quantile_levels"].([]interface{})
	if len(levels) != 1 || levels[0].(float64) != 0.5 {
		t.Fatalf("quantile levels wrong: %v", levels)
	}

	if len(result.Values) != 4 || result.Values[0] != 1.2 {
		t.Fatalf("values wrong: %v", result.Values)
	}
	if len(result.Quantiles["0.5"]) != 4 {
		t.Fatalf("quantiles wrong: %v", result.Quantiles)
	}
}

func TestPredictErrorCarriesProviderName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New("chronos", "chronos-bolt", srv.URL, 5*time.Second)
	_, err := c.Predict(context.Background(), nil, 1, "1h", nil)
	if err == nil {
		t.Fatalf("expected error on 500")
	}
	if !strings.Contains(err.Error(), "chronos") {
		t.Fatalf("error must name the provider: %v", err)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New("naive", "naive-v1", srv.URL, 5*time.Second)
	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
}
