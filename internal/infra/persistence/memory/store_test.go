package memory

import (
	"context"
	"testing"
	"time"

	"bioforge/pkg/domain"
)

func TestStoreLoadEmpty(t *testing.T) {
	s := NewStore()
	if _, ok, err := s.Load(context.Background()); ok || err != nil {
		t.Fatalf("expected no state, ok=%v err=%v", ok, err)
	}
}

func TestStoreIsolatesSavedState(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	state := domain.NewState(domain.NewDefaultPlan(time.Unix(0, 0)))
	state.RecentCommandSearches = []string{"kpv"}
	if err := s.Save(ctx, state); err != nil {
		t.Fatalf("save: %v", err)
	}
	state.RecentCommandSearches[0] = "mutated"
	state.CurrentPlan.Name = "mutated"

	got, ok, err := s.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.RecentCommandSearches[0] != "kpv" || got.CurrentPlan.Name != "My Protocol" {
		t.Fatalf("saved state aliased caller data: %+v", got)
	}
	got.CurrentPlan.Phases[0].Name = "changed"
	again, _, _ := s.Load(ctx)
	if again.CurrentPlan.Phases[0].Name != "Phase 1" {
		t.Fatalf("loaded state aliased store data")
	}
	if s.Saves() != 1 {
		t.Fatalf("expected one save, got %d", s.Saves())
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
