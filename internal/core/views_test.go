package core

import (
	"context"
	"testing"

	"bioforge/pkg/domain"

	"github.com/google/go-cmp/cmp"
)

func TestFocusedPlanUsesStoredMode(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	svc.AddBlockToPhase(ctx, 0, 0, draft("b1", "kpv", "KPV"))
	svc.AddBlockToPhase(ctx, 1, 0, domain.BlockDraft{ID: "b2", Type: domain.BlockTest, RefID: "test-HbA1c", Label: "HbA1c"})

	if got := svc.FocusedPlan(); got.BlockCount() != 2 {
		t.Fatalf("full mode should show everything, got %d", got.BlockCount())
	}

	svc.SetFocusMode(ctx, domain.FocusPeptidesOnly, "")
	got := svc.FocusedPlan()
	if len(got.Phases) != 3 || got.BlockCount() != 1 || got.Phases[0].Blocks[0].ID != "b1" {
		t.Fatalf("unexpected peptides-only view %+v", got.Phases)
	}

	mod := svc.AddSavedModule(ctx, "Tests", []string{"test-HbA1c"})
	svc.SetFocusMode(ctx, domain.FocusCompendiumCustom, mod)
	got = svc.FocusedPlan()
	if diff := cmp.Diff([]string{"b2"}, blockIDs(got.Phases[1])); diff != "" || got.BlockCount() != 1 {
		t.Fatalf("unexpected module view (-want +got):\n%s", diff)
	}
	if svc.CurrentPlan().BlockCount() != 2 {
		t.Fatalf("focus must not alter the stored plan")
	}
}

func TestProtocolAndSynergyViews(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	if svc.SynergyGraph() != nil {
		t.Fatalf("an empty plan has no graph")
	}
	svc.AddBlockToPhase(ctx, 0, 0, draft("u", "urolithin-a", "Urolithin A (Mitopure)"))
	svc.AddBlockToPhase(ctx, 0, 0, draft("s", "ss31", "SS-31 / Elamipretide (Forzinity)"))

	p := svc.Protocol()
	if p == nil || p.PlanName != "My Protocol" || len(p.Phases) != 3 || len(p.DoctorScripts) != 2 {
		t.Fatalf("unexpected protocol %+v", p)
	}
	g := svc.SynergyGraph()
	if g == nil || len(g.Nodes) != 2 || len(g.Edges) != 2 {
		t.Fatalf("expected mutual synergy edges, got %+v", g)
	}
}
