package usecase

import (
	"context"
	"fmt"

	"ArenaPull/internal/domain/models"
	drepo "ArenaPull/internal/domain/repository"
	"ArenaPull/pkg/config"
	"ArenaPull/pkg/logger"
)

// ModelRegistrar keeps the configured models registered with the arena and
// runs the startup health preflight.
type ModelRegistrar struct {
	logger      *logger.Logger
	api         drepo.ChallengeAPI
	forecasters []drepo.Forecaster
	models      []config.ModelConfig
}

// NewModelRegistrar creates a new ModelRegistrar instance.
func NewModelRegistrar(lgr *logger.Logger, api drepo.ChallengeAPI, forecasters []drepo.Forecaster, modelCfgs []config.ModelConfig) *ModelRegistrar {
	return &ModelRegistrar{logger: lgr, api: api, forecasters: forecasters, models: modelCfgs}
}

// EnsureRegistered registers every configured model the arena does not know
// yet. With force, all models are re-registered regardless.
func (r *ModelRegistrar) EnsureRegistered(ctx context.Context, force bool) error {
	known := make(map[string]struct{})
	if !force {
		existing, err := r.api.ListModels(ctx)
		if err != nil {
			return fmt.Errorf("list registered models: %w", err)
		}
		for _, m := range existing {
			known[m.Name] = struct{}{}
		}
	}

	for _, m := range r.models {
		if _, ok := known[m.ModelName]; ok {
			r.logger.Info("model already registered", logger.String("model", m.ModelName))
			continue
		}
		reg := models.ModelRegistration{
			Name:            m.ModelName,
			ModelType:       m.ModelType,
			ModelFamily:     m.ModelFamily,
			ModelSize:       m.ModelSize,
			Hosting:         m.Hosting,
			Architecture:    m.Architecture,
			PretrainingData: m.PretrainingData,
			PublishingDate:  m.PublishingDate,
			Parameters:      m.Parameters,
		}
		created, err := r.api.RegisterModel(ctx, reg)
		if err != nil {
			return fmt.Errorf("register %s: %w", m.ModelName, err)
		}
		r.logger.Info("model registered",
			logger.String("model", created.Name),
			logger.String("readable_id", created.ReadableID))
	}
	return nil
}

// List returns the models registered under the configured API key.
func (r *ModelRegistrar) List(ctx context.Context) ([]models.RegisteredModel, error) {
	return r.api.ListModels(ctx)
}

// Preflight checks the arena API and every provider before the poll loop
// starts. Provider failures are reported but not fatal: a provider that is
// down at startup may come back, and per-series isolation handles it.
func (r *ModelRegistrar) Preflight(ctx context.Context) error {
	if err := r.api.Health(ctx); err != nil {
		return fmt.Errorf("arena unreachable: %w", err)
	}
	for _, f := range r.forecasters {
		if err := f.Health(ctx); err != nil {
			r.logger.Warn("provider unhealthy at startup",
				logger.String("provider", f.Name()),
				logger.Error(err))
		} else {
			r.logger.Info("provider healthy", logger.String("provider", f.Name()))
		}
	}
	return nil
}
