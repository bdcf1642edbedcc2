package usecase

import (
	"context"
	"time"

	"ArenaPull/internal/domain/models"
	drepo "ArenaPull/internal/domain/repository"
	"ArenaPull/internal/domain/schedule"
	"ArenaPull/internal/service/ratelimit"
	"ArenaPull/pkg/logger"
	"ArenaPull/pkg/queue"
)

// SeriesResult is the outcome of one per-series prediction attempt.
type SeriesResult struct {
	Name       string
	Timestamps []time.Time
	Prediction *models.PredictionResult
	Err        error
	Stage      string // anchor, predict
}

// ForecastRequester fans per-series predict calls out over the worker pool,
// capped by a per-provider token bucket. A failing series never aborts its
// siblings, and there is no retry within a cycle: the next cycle picks up
// whatever is still missing.
type ForecastRequester struct {
	logger         *logger.Logger
	pool           *queue.Pool
	limiter        *ratelimit.Limiter
	metrics        drepo.Metrics
	maxRPS         float64
	timeout        time.Duration
	quantileLevels []float64
}

// NewForecastRequester creates a new ForecastRequester instance.
func NewForecastRequester(
	lgr *logger.Logger,
	pool *queue.Pool,
	limiter *ratelimit.Limiter,
	metrics drepo.Metrics,
	maxRPS float64,
	timeout time.Duration,
	quantileLevels []float64,
) *ForecastRequester {
	return &ForecastRequester{
		logger:         lgr,
		pool:           pool,
		limiter:        limiter,
		metrics:        metrics,
		maxRPS:         maxRPS,
		timeout:        timeout,
		quantileLevels: quantileLevels,
	}
}

// Request predicts every series against the forecaster. Results come back in
// input order; each failed series carries its error and failure stage.
func (r *ForecastRequester) Request(
	ctx context.Context,
	f drepo.Forecaster,
	series []models.ContextSeries,
	delta time.Duration,
	steps int,
) []SeriesResult {
	results := make([]SeriesResult, len(series))
	freq := schedule.Compact(delta)
	batch := r.pool.NewBatch()

	for i := range series {
		i := i
		s := series[i]
		results[i].Name = s.Name

		anchor, err := schedule.Anchor(&s)
		if err != nil {
			results[i].Err = err
			results[i].Stage = "anchor"
			r.metrics.RecordSeriesFailure("anchor")
			continue
		}
		results[i].Timestamps = schedule.Sequence(anchor, delta, steps)

		task := func(taskCtx context.Context) error {
			if err := r.limiter.Wait(taskCtx, f.Name(), r.maxRPS, r.maxRPS); err != nil {
				return err
			}
			callCtx, cancel := context.WithTimeout(taskCtx, r.timeout)
			defer cancel()

			start := time.Now()
			pred, err := f.Predict(callCtx, s.Observations, steps, freq, r.quantileLevels)
			r.metrics.RecordLatency("predict", time.Since(start).Seconds())
			if err != nil {
				return err
			}
			results[i].Prediction = pred
			return nil
		}

		err = batch.Submit(ctx, task, func(err error) {
			if err != nil {
				results[i].Err = err
				results[i].Stage = "predict"
				r.metrics.RecordSeriesFailure("predict")
				r.logger.Warn("series prediction failed",
					logger.String("provider", f.Name()),
					logger.String("series", s.Name),
					logger.Error(err))
			}
		})
		if err != nil {
			results[i].Err = err
			results[i].Stage = "predict"
			r.metrics.RecordSeriesFailure("predict")
		}
	}

	batch.Wait()
	return results
}
