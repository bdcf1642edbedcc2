package usecase

import (
	"sync"
	"time"
)

// PairState tracks how far a (challenge, model) pair has progressed this run.
type PairState string

const (
	StateDiscovered        PairState = "discovered"
	StateEligible          PairState = "eligible"
	StateIneligible        PairState = "ineligible"
	StatePartiallyUploaded PairState = "partially_uploaded"
	StateFullyUploaded     PairState = "fully_uploaded"
	StateFailed            PairState = "failed"
)

type pairKey struct {
	ChallengeID int64
	Model       string
}

// PairRecord is the registry entry for one (challenge, model) pair.
type PairRecord struct {
	ChallengeID    int64               `json:"challenge_id"`
	ChallengeName  string              `json:"challenge_name"`
	Model          string              `json:"model"`
	State          PairState           `json:"state"`
	UploadedSeries map[string]struct{} `json:"-"`
	LastOutcome    string              `json:"last_outcome,omitempty"`
	LastError      string              `json:"last_error,omitempty"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// ProcessedRegistry remembers which (challenge, model) pairs this process has
// handled. It lives only in memory: a restart reprocesses everything, and the
// arena deduplicates on its side. Written by the poller goroutine, read
// concurrently by the status API.
type ProcessedRegistry struct {
	mu    sync.RWMutex
	pairs map[pairKey]*PairRecord
}

// NewProcessedRegistry creates an empty registry.
func NewProcessedRegistry() *ProcessedRegistry {
	return &ProcessedRegistry{pairs: make(map[pairKey]*PairRecord)}
}

func (r *ProcessedRegistry) record(id int64, name, model string) *PairRecord {
	k := pairKey{ChallengeID: id, Model: model}
	rec, ok := r.pairs[k]
	if !ok {
		rec = &PairRecord{
			ChallengeID:    id,
			ChallengeName:  name,
			Model:          model,
			State:          StateDiscovered,
			UploadedSeries: make(map[string]struct{}),
		}
		r.pairs[k] = rec
	}
	rec.UpdatedAt = time.Now()
	return rec
}

// ShouldProcess reports whether the pair still needs work this run. Fully
// uploaded, ineligible, and permanently failed pairs are skipped.
func (r *ProcessedRegistry) ShouldProcess(id int64, model string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.pairs[pairKey{ChallengeID: id, Model: model}]
	if !ok {
		return true
	}
	switch rec.State {
	case StateFullyUploaded, StateIneligible, StateFailed:
		return false
	default:
		return true
	}
}

// UploadedSeries returns the series already uploaded for the pair this run.
func (r *ProcessedRegistry) UploadedSeries(id int64, model string) map[string]struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.pairs[pairKey{ChallengeID: id, Model: model}]
	if !ok {
		return nil
	}
	out := make(map[string]struct{}, len(rec.UploadedSeries))
	for n := range rec.UploadedSeries {
		out[n] = struct{}{}
	}
	return out
}

// MarkEligible notes the pair was inside its registration window this cycle.
// Pairs that already made upload progress keep their state.
func (r *ProcessedRegistry) MarkEligible(id int64, name, model string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.record(id, name, model)
	if rec.State == StateDiscovered {
		rec.State = StateEligible
	}
}

// MarkIneligible marks a pair whose window had already closed at first
// sight. Terminal: the pair is never processed this run.
func (r *ProcessedRegistry) MarkIneligible(id int64, name, model string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.record(id, name, model)
	if rec.State == StateDiscovered {
		rec.State = StateIneligible
	}
}

// MarkFailed marks a pair permanently failed, e.g. an unresolvable
// frequency/horizon that cannot change within the run.
func (r *ProcessedRegistry) MarkFailed(id int64, name, model, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.record(id, name, model)
	rec.State = StateFailed
	rec.LastOutcome = "failed"
	rec.LastError = reason
}

// MarkUploaded adds the uploaded series to the pair. full reports whether the
// accumulated set now covers every series of the challenge.
func (r *ProcessedRegistry) MarkUploaded(id int64, name, model string, series []string, full bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.record(id, name, model)
	for _, s := range series {
		rec.UploadedSeries[s] = struct{}{}
	}
	if full {
		rec.State = StateFullyUploaded
		rec.LastOutcome = "full"
	} else {
		rec.State = StatePartiallyUploaded
		rec.LastOutcome = "partial"
	}
	rec.LastError = ""
}

// MarkAttemptFailed records a transient failure (upload error, all series
// failed). The pair stays processable so the next cycle retries.
func (r *ProcessedRegistry) MarkAttemptFailed(id int64, name, model, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.record(id, name, model)
	rec.LastOutcome = "failed"
	rec.LastError = reason
}

// Prune drops pairs whose challenge id is absent from the current listing,
// so a challenge that disappears and later reappears is processed fresh.
func (r *ProcessedRegistry) Prune(live map[int64]struct{}) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for k := range r.pairs {
		if _, ok := live[k.ChallengeID]; !ok {
			delete(r.pairs, k)
			removed++
		}
	}
	return removed
}

// Snapshot returns a copy of all pair records for the status API.
func (r *ProcessedRegistry) Snapshot() []PairRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]PairRecord, 0, len(r.pairs))
	for _, rec := range r.pairs {
		cp := *rec
		cp.UploadedSeries = nil
		out = append(out, cp)
	}
	return out
}

// Len returns the number of tracked pairs.
func (r *ProcessedRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pairs)
}
