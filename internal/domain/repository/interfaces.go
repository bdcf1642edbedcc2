package repository

import (
	"context"
	"errors"

	"ArenaPull/internal/domain/models"
)

// ErrQueryUnsupported is returned by journal sinks that cannot read back
// what they wrote (kafka, none).
var ErrQueryUnsupported = errors.New("journal: query not supported by this sink")

// ChallengeAPI is the arena backend consumed by the poller and registrar.
type ChallengeAPI interface {
	Health(ctx context.Context) error
	ListChallenges(ctx context.Context) ([]models.Challenge, error)
	GetChallenge(ctx context.Context, id int64) (*models.ChallengeDetail, error)
	GetContextData(ctx context.Context, id int64) ([]models.ContextSeries, error)
	UploadForecast(ctx context.Context, payload *models.UploadPayload) error
	ListModels(ctx context.Context) ([]models.RegisteredModel, error)
	RegisterModel(ctx context.Context, reg models.ModelRegistration) (*models.RegisteredModel, error)
}

// Forecaster is one prediction provider bound to a registered arena model.
type Forecaster interface {
	// Name is the local provider name from config.
	Name() string
	// ModelName is the registered arena model name used in uploads.
	ModelName() string
	Predict(ctx context.Context, history []models.Observation, horizon int, freq string, quantileLevels []float64) (*models.PredictionResult, error)
	Health(ctx context.Context) error
}

// Journal records upload outcomes for audit. Sinks that cannot be queried
// return ErrQueryUnsupported from Recent.
type Journal interface {
	Record(ctx context.Context, rec *models.UploadRecord) error
	Recent(ctx context.Context, limit int) ([]*models.UploadRecord, error)
	Close() error
}

// ContextCache shares one context-data fetch across the models processing
// the same challenge within a cycle.
type ContextCache interface {
	GetContext(ctx context.Context, challengeID int64) ([]models.ContextSeries, bool)
	SetContext(ctx context.Context, challengeID int64, series []models.ContextSeries)
}

// Metrics abstracts the Prometheus recorder for the polling loop.
type Metrics interface {
	RecordCycle(seconds float64)
	RecordChallenges(listed, eligible int)
	RecordUpload(model, outcome string)
	RecordSeriesFailure(stage string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
