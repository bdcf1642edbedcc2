package usecase

import (
	"fmt"

	"ArenaPull/internal/domain/models"
	"ArenaPull/pkg/logger"
)

// FormatResult is one assembled upload plus the audit trail around it.
type FormatResult struct {
	Payload *models.UploadPayload
	// Recorded mirrors Payload.Series with quantiles attached, for the journal.
	Recorded []models.RecordedSeries
	// Failed lists series dropped for any reason, with the reason.
	Failed map[string]string
}

// ForecastFormatter zips predicted values with their timestamp sequences into
// one upload payload per (challenge, model) pair. Series order follows the
// input, so identical input produces a byte-identical payload.
type ForecastFormatter struct {
	logger *logger.Logger
}

// NewForecastFormatter creates a new ForecastFormatter instance.
func NewForecastFormatter(lgr *logger.Logger) *ForecastFormatter {
	return &ForecastFormatter{logger: lgr}
}

// Format assembles the upload payload from per-series results. Series whose
// prediction failed, whose value count does not match the timestamp sequence,
// or which carry zero points are dropped; dropping is per-series and never
// aborts the payload.
func (f *ForecastFormatter) Format(challengeID int64, modelName string, results []SeriesResult) *FormatResult {
	out := &FormatResult{
		Payload: &models.UploadPayload{
			ChallengeID: challengeID,
			ModelName:   modelName,
		},
		Failed: make(map[string]string),
	}

	for _, res := range results {
		if res.Err != nil {
			out.Failed[res.Name] = fmt.Sprintf("%s: %v", res.Stage, res.Err)
			continue
		}
		if res.Prediction == nil || len(res.Prediction.Values) == 0 {
			out.Failed[res.Name] = "empty prediction"
			continue
		}
		if len(res.Prediction.Values) != len(res.Timestamps) {
			out.Failed[res.Name] = fmt.Sprintf("shape mismatch: %d values for %d steps",
				len(res.Prediction.Values), len(res.Timestamps))
			f.logger.Warn("dropping series with mismatched shape",
				logger.String("series", res.Name),
				logger.Int("values", len(res.Prediction.Values)),
				logger.Int("steps", len(res.Timestamps)))
			continue
		}

		points := make([]models.ForecastPoint, len(res.Timestamps))
		for i, ts := range res.Timestamps {
			points[i] = models.ForecastPoint{Timestamp: ts, Value: res.Prediction.Values[i]}
		}
		out.Payload.Series = append(out.Payload.Series, models.ForecastSeries{
			Name:   res.Name,
			Points: points,
		})
		out.Recorded = append(out.Recorded, models.RecordedSeries{
			Name:      res.Name,
			Values:    res.Prediction.Values,
			Quantiles: res.Prediction.Quantiles,
		})
	}

	return out
}

// FailedNames returns the dropped series names in input order.
func (r *FormatResult) FailedNames(results []SeriesResult) []string {
	if len(r.Failed) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.Failed))
	for _, res := range results {
		if _, ok := r.Failed[res.Name]; ok {
			names = append(names, res.Name)
		}
	}
	return names
}
