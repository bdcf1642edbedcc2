package usecase

import (
	"context"
	"time"

	"ArenaPull/internal/domain/models"
	drepo "ArenaPull/internal/domain/repository"
	"ArenaPull/internal/domain/schedule"
	"ArenaPull/pkg/logger"
)

// ChallengePoller drives the fixed-interval cycle: list challenges, filter by
// registration window, fetch context, predict, format, upload, journal.
type ChallengePoller struct {
	logger      *logger.Logger
	api         drepo.ChallengeAPI
	forecasters []drepo.Forecaster
	registry    *ProcessedRegistry
	requester   *ForecastRequester
	formatter   *ForecastFormatter
	journal     drepo.Journal
	cache       drepo.ContextCache // nil when disabled
	metrics     drepo.Metrics
	interval    time.Duration
}

// NewChallengePoller creates a new ChallengePoller instance.
func NewChallengePoller(
	lgr *logger.Logger,
	api drepo.ChallengeAPI,
	forecasters []drepo.Forecaster,
	registry *ProcessedRegistry,
	requester *ForecastRequester,
	formatter *ForecastFormatter,
	journal drepo.Journal,
	cache drepo.ContextCache,
	metrics drepo.Metrics,
	interval time.Duration,
) *ChallengePoller {
	return &ChallengePoller{
		logger:      lgr,
		api:         api,
		forecasters: forecasters,
		registry:    registry,
		requester:   requester,
		formatter:   formatter,
		journal:     journal,
		cache:       cache,
		metrics:     metrics,
		interval:    interval,
	}
}

// Registry exposes the registry for the status API.
func (p *ChallengePoller) Registry() *ProcessedRegistry { return p.registry }

// Run executes cycles at the configured interval until the context is done.
// The first cycle starts immediately.
func (p *ChallengePoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return
		case <-ticker.C:
			p.Cycle(ctx)
		}
	}
}

// Cycle runs one complete pass. Eligibility is sampled once at cycle start:
// a window that closes mid-cycle still gets its best-effort upload.
func (p *ChallengePoller) Cycle(ctx context.Context) {
	start := time.Now()
	now := start.UTC()

	challenges, err := p.api.ListChallenges(ctx)
	if err != nil {
		p.metrics.RecordError("list")
		p.logger.Error("challenge listing failed", logger.Error(err))
		return
	}

	live := make(map[int64]struct{}, len(challenges))
	for _, ch := range challenges {
		live[ch.ID] = struct{}{}
	}
	if removed := p.registry.Prune(live); removed > 0 {
		p.logger.Info("pruned stale registry pairs", logger.Int("removed", removed))
	}

	eligible := make([]models.Challenge, 0, len(challenges))
	for _, ch := range challenges {
		ch := ch
		if ch.EligibleAt(now) {
			eligible = append(eligible, ch)
			continue
		}
		if now.Before(ch.RegistrationStart) {
			// Not open yet: leave untracked so a later cycle picks the
			// challenge up once its window starts.
			continue
		}
		for _, f := range p.forecasters {
			p.registry.MarkIneligible(ch.ID, ch.Name, f.ModelName())
		}
	}
	p.metrics.RecordChallenges(len(challenges), len(eligible))
	p.logger.Info("cycle listing",
		logger.Int("challenges", len(challenges)),
		logger.Int("eligible", len(eligible)))

	for _, ch := range eligible {
		select {
		case <-ctx.Done():
			return
		default:
		}
		p.processChallenge(ctx, ch)
	}

	p.metrics.RecordCycle(time.Since(start).Seconds())
}

func (p *ChallengePoller) processChallenge(ctx context.Context, ch models.Challenge) {
	pending := make([]drepo.Forecaster, 0, len(p.forecasters))
	for _, f := range p.forecasters {
		p.registry.MarkEligible(ch.ID, ch.Name, f.ModelName())
		if p.registry.ShouldProcess(ch.ID, f.ModelName()) {
			pending = append(pending, f)
		}
	}
	if len(pending) == 0 {
		return
	}

	delta, steps, err := schedule.Resolve(ch.Frequency, ch.Horizon)
	if err != nil {
		// Frequency and horizon are fixed for the life of a challenge, so
		// this cannot heal: fail the pairs instead of retrying forever.
		p.metrics.RecordError("resolve")
		p.logger.Error("schedule resolution failed",
			logger.Int("challenge_id", int(ch.ID)),
			logger.String("frequency", ch.Frequency),
			logger.String("horizon", ch.Horizon),
			logger.Error(err))
		for _, f := range pending {
			p.registry.MarkFailed(ch.ID, ch.Name, f.ModelName(), err.Error())
		}
		return
	}

	detail, err := p.api.GetChallenge(ctx, ch.ID)
	if err != nil {
		p.metrics.RecordError("detail")
		p.logger.Error("challenge detail fetch failed",
			logger.Int("challenge_id", int(ch.ID)),
			logger.Error(err))
		return
	}

	contextData, err := p.fetchContext(ctx, ch.ID)
	if err != nil {
		p.metrics.RecordError("context")
		p.logger.Error("context data fetch failed",
			logger.Int("challenge_id", int(ch.ID)),
			logger.Error(err))
		return
	}

	allSeries := seriesNames(detail, contextData)

	for _, f := range pending {
		p.processModel(ctx, ch, f, contextData, allSeries, delta, steps)
	}
}

func (p *ChallengePoller) fetchContext(ctx context.Context, id int64) ([]models.ContextSeries, error) {
	if p.cache != nil {
		if series, ok := p.cache.GetContext(ctx, id); ok {
			return series, nil
		}
	}
	series, err := p.api.GetContextData(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.cache != nil {
		p.cache.SetContext(ctx, id, series)
	}
	return series, nil
}

func (p *ChallengePoller) processModel(
	ctx context.Context,
	ch models.Challenge,
	f drepo.Forecaster,
	contextData []models.ContextSeries,
	allSeries map[string]struct{},
	delta time.Duration,
	steps int,
) {
	model := f.ModelName()

	// Series uploaded in an earlier cycle stay uploaded; only the remainder
	// is attempted, so partial success is additive across cycles.
	done := p.registry.UploadedSeries(ch.ID, model)
	remaining := make([]models.ContextSeries, 0, len(contextData))
	for _, s := range contextData {
		if _, ok := done[s.Name]; !ok {
			remaining = append(remaining, s)
		}
	}
	if len(remaining) == 0 {
		return
	}

	results := p.requester.Request(ctx, f, remaining, delta, steps)
	formatted := p.formatter.Format(ch.ID, model, results)

	rec := &models.UploadRecord{
		ChallengeID:   ch.ID,
		ChallengeName: ch.Name,
		ModelName:     model,
		Steps:         steps,
		Frequency:     ch.Frequency,
		Horizon:       ch.Horizon,
		UploadedAt:    time.Now().UTC(),
		Series:        formatted.Recorded,
		FailedSeries:  formatted.FailedNames(results),
	}

	if len(formatted.Payload.Series) == 0 {
		p.metrics.RecordUpload(model, "failed")
		p.registry.MarkAttemptFailed(ch.ID, ch.Name, model, "no series produced a forecast")
		rec.Outcome = "failed"
		rec.Error = "no series produced a forecast"
		p.record(ctx, rec)
		p.logger.Warn("nothing to upload",
			logger.Int("challenge_id", int(ch.ID)),
			logger.String("model", model),
			logger.Strings("failed_series", rec.FailedSeries))
		return
	}

	if err := p.api.UploadForecast(ctx, formatted.Payload); err != nil {
		p.metrics.RecordUpload(model, "failed")
		p.registry.MarkAttemptFailed(ch.ID, ch.Name, model, err.Error())
		rec.Outcome = "failed"
		rec.Error = err.Error()
		p.record(ctx, rec)
		p.logger.Error("forecast upload failed",
			logger.Int("challenge_id", int(ch.ID)),
			logger.String("model", model),
			logger.Error(err))
		return
	}

	uploaded := make([]string, 0, len(formatted.Payload.Series))
	for _, s := range formatted.Payload.Series {
		uploaded = append(uploaded, s.Name)
	}
	full := coversAll(done, uploaded, allSeries)
	p.registry.MarkUploaded(ch.ID, ch.Name, model, uploaded, full)

	outcome := "partial"
	if full {
		outcome = "full"
	}
	p.metrics.RecordUpload(model, outcome)
	rec.Outcome = outcome
	p.record(ctx, rec)

	p.logger.Info("forecast uploaded",
		logger.Int("challenge_id", int(ch.ID)),
		logger.String("model", model),
		logger.String("outcome", outcome),
		logger.Int("series", len(uploaded)),
		logger.Int("steps", steps))
}

func (p *ChallengePoller) record(ctx context.Context, rec *models.UploadRecord) {
	if err := p.journal.Record(ctx, rec); err != nil {
		p.metrics.RecordError("journal")
		p.logger.Warn("journal record failed", logger.Error(err))
	}
}

// seriesNames is the authoritative series set for a challenge: the detail
// listing when present, otherwise the context data.
func seriesNames(detail *models.ChallengeDetail, contextData []models.ContextSeries) map[string]struct{} {
	out := make(map[string]struct{})
	for _, n := range detail.Series {
		out[n] = struct{}{}
	}
	if len(out) == 0 {
		for _, s := range contextData {
			out[s.Name] = struct{}{}
		}
	}
	return out
}

func coversAll(done map[string]struct{}, uploaded []string, all map[string]struct{}) bool {
	covered := make(map[string]struct{}, len(done)+len(uploaded))
	for n := range done {
		covered[n] = struct{}{}
	}
	for _, n := range uploaded {
		covered[n] = struct{}{}
	}
	for n := range all {
		if _, ok := covered[n]; !ok {
			return false
		}
	}
	return len(all) > 0
}
