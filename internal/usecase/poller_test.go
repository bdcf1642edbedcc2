package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"ArenaPull/internal/domain/models"
	drepo "ArenaPull/internal/domain/repository"
	"ArenaPull/internal/service/ratelimit"
	"ArenaPull/pkg/queue"
)

type fakeAPI struct {
	challenges []models.Challenge
	details    map[int64]*models.ChallengeDetail
	contexts   map[int64][]models.ContextSeries
	uploads    []*models.UploadPayload
	listErr    error
	uploadErr  error

	contextGets int
	known       []models.RegisteredModel
	registered  []models.ModelRegistration
}

func (f *fakeAPI) Health(ctx context.Context) error { return nil }

func (f *fakeAPI) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	return f.challenges, f.listErr
}

func (f *fakeAPI) GetChallenge(ctx context.Context, id int64) (*models.ChallengeDetail, error) {
	d, ok := f.details[id]
	if !ok {
		return nil, fmt.Errorf("no challenge %d", id)
	}
	return d, nil
}

func (f *fakeAPI) GetContextData(ctx context.Context, id int64) ([]models.ContextSeries, error) {
	f.contextGets++
	return f.contexts[id], nil
}

func (f *fakeAPI) UploadForecast(ctx context.Context, p *models.UploadPayload) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads = append(f.uploads, p)
	return nil
}

func (f *fakeAPI) ListModels(ctx context.Context) ([]models.RegisteredModel, error) {
	return f.known, nil
}

func (f *fakeAPI) RegisterModel(ctx context.Context, reg models.ModelRegistration) (*models.RegisteredModel, error) {
	f.registered = append(f.registered, reg)
	return &models.RegisteredModel{Name: reg.Name, ReadableID: "rid-" + reg.Name}, nil
}

type fakeForecaster struct {
	name    string
	predict func(history []models.Observation, horizon int) (*models.PredictionResult, error)
}

func (f *fakeForecaster) Name() string      { return f.name }
func (f *fakeForecaster) ModelName() string { return f.name }

func (f *fakeForecaster) Predict(ctx context.Context, history []models.Observation, horizon int, freq string, levels []float64) (*models.PredictionResult, error) {
	return f.predict(history, horizon)
}

func (f *fakeForecaster) Health(ctx context.Context) error { return nil }

type fakeJournal struct{ records []*models.UploadRecord }

func (j *fakeJournal) Record(ctx context.Context, rec *models.UploadRecord) error {
	j.records = append(j.records, rec)
	return nil
}

func (j *fakeJournal) Recent(ctx context.Context, limit int) ([]*models.UploadRecord, error) {
	return j.records, nil
}

func (j *fakeJournal) Close() error { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordCycle(float64)             {}
func (nopMetrics) RecordChallenges(int, int)       {}
func (nopMetrics) RecordUpload(string, string)     {}
func (nopMetrics) RecordSeriesFailure(string)      {}
func (nopMetrics) RecordError(string)              {}
func (nopMetrics) RecordLatency(string, float64)   {}

func obs(ts time.Time, v float64) models.Observation {
	return models.Observation{Timestamp: ts, Value: v}
}

func TestPollerAdditivePartialUploads(t *testing.T) {
	now := time.Now().UTC()
	anchor := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)

	api := &fakeAPI{
		challenges: []models.Challenge{{
			ID:                42,
			Name:              "electricity",
			RegistrationStart: now.Add(-time.Hour),
			RegistrationEnd:   now.Add(time.Hour),
			Frequency:         "15 minutes",
			Horizon:           "PT1H",
		}},
		details: map[int64]*models.ChallengeDetail{
			42: {Series: []string{"alpha", "beta"}},
		},
		contexts: map[int64][]models.ContextSeries{
			42: {
				{Name: "alpha", Observations: []models.Observation{obs(anchor, 1.1)}},
				{Name: "beta", Observations: []models.Observation{obs(anchor, 2.1)}},
			},
		},
	}

	// beta (first value 2.1) fails during the first cycle only.
	failBeta := true
	forecaster := &fakeForecaster{
		name: "naive",
		predict: func(history []models.Observation, horizon int) (*models.PredictionResult, error) {
			if failBeta && history[0].Value > 2 {
				return nil, errors.New("provider 500")
			}
			vals := make([]float64, horizon)
			for i := range vals {
				vals[i] = history[0].Value + float64(i)
			}
			return &models.PredictionResult{Values: vals}, nil
		},
	}
	journal := &fakeJournal{}

	lgr := testLogger(t)
	pool := queue.NewPool(lgr, queue.WithWorkers(2))
	if err := pool.Start(); err != nil {
		t.Fatalf("pool start: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = pool.Stop(ctx)
	}()

	requester := NewForecastRequester(lgr, pool, ratelimit.New(), nopMetrics{}, 1000, time.Second, nil)
	poller := NewChallengePoller(lgr, api, []drepo.Forecaster{forecaster}, NewProcessedRegistry(),
		requester, NewForecastFormatter(lgr), journal, nil, nopMetrics{}, time.Minute)

	ctx := context.Background()

	// Cycle 1: alpha uploads, beta fails -> partial.
	poller.Cycle(ctx)
	if len(api.uploads) != 1 {
		t.Fatalf("expected 1 upload, got %d", len(api.uploads))
	}
	up := api.uploads[0]
	if up.ChallengeID != 42 || up.ModelName != "naive" {
		t.Fatalf("unexpected payload identity %d %s", up.ChallengeID, up.ModelName)
	}
	if len(up.Series) != 1 || up.Series[0].Name != "alpha" {
		t.Fatalf("expected only alpha in first upload")
	}
	if len(up.Series[0].Points) != 4 {
		t.Fatalf("15min over PT1H must yield 4 points, got %d", len(up.Series[0].Points))
	}
	first := up.Series[0].Points[0].Timestamp
	last := up.Series[0].Points[3].Timestamp
	if !first.Equal(time.Date(2026, 2, 2, 10, 15, 0, 0, time.UTC)) ||
		!last.Equal(time.Date(2026, 2, 2, 11, 0, 0, 0, time.UTC)) {
		t.Fatalf("sequence wrong: %v .. %v", first, last)
	}
	if journal.records[0].Outcome != "partial" {
		t.Fatalf("expected partial outcome, got %s", journal.records[0].Outcome)
	}

	// Cycle 2: only beta is retried; pair becomes full.
	failBeta = false
	poller.Cycle(ctx)
	if len(api.uploads) != 2 {
		t.Fatalf("expected 2 uploads, got %d", len(api.uploads))
	}
	if len(api.uploads[1].Series) != 1 || api.uploads[1].Series[0].Name != "beta" {
		t.Fatalf("second upload must carry only beta")
	}
	if journal.records[1].Outcome != "full" {
		t.Fatalf("expected full outcome, got %s", journal.records[1].Outcome)
	}

	// Cycle 3: nothing left to do.
	poller.Cycle(ctx)
	if len(api.uploads) != 2 {
		t.Fatalf("fully uploaded pair must not upload again")
	}
}

func TestPollerSkipsClosedWindow(t *testing.T) {
	now := time.Now().UTC()
	api := &fakeAPI{
		challenges: []models.Challenge{{
			ID:                7,
			Name:              "closed",
			RegistrationStart: now.Add(-2 * time.Hour),
			RegistrationEnd:   now.Add(-time.Hour),
			Frequency:         "15 minutes",
			Horizon:           "PT1H",
		}},
	}
	forecaster := &fakeForecaster{name: "naive", predict: func([]models.Observation, int) (*models.PredictionResult, error) {
		t.Fatalf("closed challenge must not reach the provider")
		return nil, nil
	}}
	journal := &fakeJournal{}

	lgr := testLogger(t)
	pool := queue.NewPool(lgr, queue.WithWorkers(1))
	if err := pool.Start(); err != nil {
		t.Fatalf("pool start: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = pool.Stop(ctx)
	}()

	requester := NewForecastRequester(lgr, pool, ratelimit.New(), nopMetrics{}, 1000, time.Second, nil)
	registry := NewProcessedRegistry()
	poller := NewChallengePoller(lgr, api, []drepo.Forecaster{forecaster}, registry,
		requester, NewForecastFormatter(lgr), journal, nil, nopMetrics{}, time.Minute)

	poller.Cycle(context.Background())
	if len(api.uploads) != 0 {
		t.Fatalf("no upload expected for a closed window")
	}
	if registry.ShouldProcess(7, "naive") {
		t.Fatalf("closed-at-first-sight pair must be terminal")
	}
}

func TestPollerWaitsForWindowToOpen(t *testing.T) {
	now := time.Now().UTC()
	anchor := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)

	// Listed an hour before its window opens.
	api := &fakeAPI{
		challenges: []models.Challenge{{
			ID:                11,
			Name:              "early",
			RegistrationStart: now.Add(time.Hour),
			RegistrationEnd:   now.Add(2 * time.Hour),
			Frequency:         "15 minutes",
			Horizon:           "PT1H",
		}},
		details: map[int64]*models.ChallengeDetail{
			11: {Series: []string{"alpha"}},
		},
		contexts: map[int64][]models.ContextSeries{
			11: {{Name: "alpha", Observations: []models.Observation{obs(anchor, 1.1)}}},
		},
	}
	forecaster := &fakeForecaster{
		name: "naive",
		predict: func(history []models.Observation, horizon int) (*models.PredictionResult, error) {
			vals := make([]float64, horizon)
			for i := range vals {
				vals[i] = history[0].Value
			}
			return &models.PredictionResult{Values: vals}, nil
		},
	}
	journal := &fakeJournal{}

	lgr := testLogger(t)
	pool := queue.NewPool(lgr, queue.WithWorkers(1))
	if err := pool.Start(); err != nil {
		t.Fatalf("pool start: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = pool.Stop(ctx)
	}()

	requester := NewForecastRequester(lgr, pool, ratelimit.New(), nopMetrics{}, 1000, time.Second, nil)
	registry := NewProcessedRegistry()
	poller := NewChallengePoller(lgr, api, []drepo.Forecaster{forecaster}, registry,
		requester, NewForecastFormatter(lgr), journal, nil, nopMetrics{}, time.Minute)

	ctx := context.Background()

	// Cycle 1: window not open yet. Nothing uploads and the pair must not
	// be written off.
	poller.Cycle(ctx)
	if len(api.uploads) != 0 {
		t.Fatalf("no upload expected before the window opens")
	}
	if !registry.ShouldProcess(11, "naive") {
		t.Fatalf("pair seen before its window opened must stay processable")
	}

	// The window opens before cycle 2.
	api.challenges[0].RegistrationStart = now.Add(-time.Minute)
	poller.Cycle(ctx)
	if len(api.uploads) != 1 {
		t.Fatalf("expected 1 upload after the window opened, got %d", len(api.uploads))
	}
	if journal.records[0].Outcome != "full" {
		t.Fatalf("expected full outcome, got %s", journal.records[0].Outcome)
	}
}

func TestPollerUnresolvableScheduleFailsPair(t *testing.T) {
	now := time.Now().UTC()
	api := &fakeAPI{
		challenges: []models.Challenge{{
			ID:                9,
			Name:              "odd",
			RegistrationStart: now.Add(-time.Hour),
			RegistrationEnd:   now.Add(time.Hour),
			Frequency:         "7 minutes",
			Horizon:           "PT1H",
		}},
		details:  map[int64]*models.ChallengeDetail{9: {}},
		contexts: map[int64][]models.ContextSeries{9: {}},
	}
	forecaster := &fakeForecaster{name: "naive"}
	journal := &fakeJournal{}

	lgr := testLogger(t)
	pool := queue.NewPool(lgr, queue.WithWorkers(1))
	if err := pool.Start(); err != nil {
		t.Fatalf("pool start: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = pool.Stop(ctx)
	}()

	requester := NewForecastRequester(lgr, pool, ratelimit.New(), nopMetrics{}, 1000, time.Second, nil)
	registry := NewProcessedRegistry()
	poller := NewChallengePoller(lgr, api, []drepo.Forecaster{forecaster}, registry,
		requester, NewForecastFormatter(lgr), journal, nil, nopMetrics{}, time.Minute)

	poller.Cycle(context.Background())
	poller.Cycle(context.Background())

	if registry.ShouldProcess(9, "naive") {
		t.Fatalf("non-integral steps must fail the pair permanently")
	}
	if api.contextGets != 0 {
		t.Fatalf("unresolvable challenge must not fetch context data")
	}
}
