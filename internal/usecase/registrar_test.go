package usecase

import (
	"context"
	"testing"

	"ArenaPull/internal/domain/models"
	"ArenaPull/pkg/config"
)

func TestEnsureRegisteredSkipsKnown(t *testing.T) {
	api := &fakeAPI{known: []models.RegisteredModel{{Name: "chronos"}}}
	reg := NewModelRegistrar(testLogger(t), api, nil, []config.ModelConfig{
		{Name: "chronos", ModelName: "chronos", ModelType: "pretrained"},
		{Name: "naive", ModelName: "naive", ModelType: "statistical"},
	})

	if err := reg.EnsureRegistered(context.Background(), false); err != nil {
		t.Fatalf("EnsureRegistered: %v", err)
	}
	if len(api.registered) != 1 || api.registered[0].Name != "naive" {
		t.Fatalf("expected only the missing model to register, got %v", api.registered)
	}
}

func TestEnsureRegisteredForce(t *testing.T) {
	api := &fakeAPI{known: []models.RegisteredModel{{Name: "chronos"}}}
	reg := NewModelRegistrar(testLogger(t), api, nil, []config.ModelConfig{
		{Name: "chronos", ModelName: "chronos", ModelType: "pretrained"},
	})

	if err := reg.EnsureRegistered(context.Background(), true); err != nil {
		t.Fatalf("EnsureRegistered: %v", err)
	}
	if len(api.registered) != 1 {
		t.Fatalf("force must re-register known models, got %d registrations", len(api.registered))
	}
}
