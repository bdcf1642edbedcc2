package usecase

import "testing"

func TestRegistryUploadProgress(t *testing.T) {
	r := NewProcessedRegistry()

	if !r.ShouldProcess(1, "m") {
		t.Fatalf("unknown pair should be processable")
	}

	r.MarkEligible(1, "ch", "m")
	r.MarkUploaded(1, "ch", "m", []string{"a", "b"}, false)
	if !r.ShouldProcess(1, "m") {
		t.Fatalf("partially uploaded pair should stay processable")
	}
	done := r.UploadedSeries(1, "m")
	if len(done) != 2 {
		t.Fatalf("expected 2 uploaded series, got %d", len(done))
	}

	r.MarkUploaded(1, "ch", "m", []string{"c"}, true)
	if r.ShouldProcess(1, "m") {
		t.Fatalf("fully uploaded pair must not be reprocessed")
	}
	if len(r.UploadedSeries(1, "m")) != 3 {
		t.Fatalf("uploaded series must accumulate")
	}
}

func TestRegistryTerminalStates(t *testing.T) {
	r := NewProcessedRegistry()

	r.MarkIneligible(2, "ch", "m")
	if r.ShouldProcess(2, "m") {
		t.Fatalf("ineligible pair must never be processed")
	}

	r.MarkFailed(3, "ch", "m", "bad horizon")
	if r.ShouldProcess(3, "m") {
		t.Fatalf("failed pair must never be processed")
	}

	// A transient failure keeps the pair alive.
	r.MarkEligible(4, "ch", "m")
	r.MarkAttemptFailed(4, "ch", "m", "upload 503")
	if !r.ShouldProcess(4, "m") {
		t.Fatalf("transient failure must not be terminal")
	}
}

func TestRegistryIneligibleDoesNotDemote(t *testing.T) {
	r := NewProcessedRegistry()
	r.MarkEligible(1, "ch", "m")
	r.MarkUploaded(1, "ch", "m", []string{"a"}, false)
	r.MarkIneligible(1, "ch", "m")
	if r.ShouldProcess(1, "m") != true {
		t.Fatalf("pair with upload progress must keep its state")
	}
}

func TestRegistryPrune(t *testing.T) {
	r := NewProcessedRegistry()
	r.MarkEligible(1, "ch1", "m")
	r.MarkEligible(2, "ch2", "m")
	r.MarkUploaded(2, "ch2", "m", []string{"a"}, true)

	removed := r.Prune(map[int64]struct{}{1: {}})
	if removed != 1 {
		t.Fatalf("expected 1 pruned pair, got %d", removed)
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 remaining pair, got %d", r.Len())
	}

	// Challenge 2 reappears: it must be processed fresh.
	if !r.ShouldProcess(2, "m") {
		t.Fatalf("reappearing challenge must be reprocessed")
	}
}

func TestRegistrySnapshot(t *testing.T) {
	r := NewProcessedRegistry()
	r.MarkEligible(1, "ch", "m1")
	r.MarkEligible(1, "ch", "m2")

	snap := r.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 records, got %d", len(snap))
	}
	for _, rec := range snap {
		if rec.State != StateEligible {
			t.Fatalf("unexpected state %s", rec.State)
		}
	}
}
