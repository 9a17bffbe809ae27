package focus

import (
	"testing"
	"time"

	"bioforge/pkg/domain"

	"github.com/google/go-cmp/cmp"
)

func samplePlan() *domain.UserPlan {
	plan := domain.NewDefaultPlan(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	plan.Phases[0].Blocks = []domain.PlanBlock{
		{ID: "b1", Type: domain.BlockPeptide, RefID: "urolithin-a", Label: "Urolithin A"},
		{ID: "b2", Type: domain.BlockFiveR, RefID: "gut-repair-remove", Label: "Remove"},
		{ID: "b3", Type: domain.BlockDiet, RefID: "diet-1", Label: "Fertility diet", Notes: "Preconception window"},
	}
	plan.Phases[1].Blocks = []domain.PlanBlock{
		{ID: "b4", Type: domain.BlockPeptide, RefID: "kpv", Label: "KPV", Notes: "Gut Repair support"},
		{ID: "b5", Type: domain.BlockTest, RefID: "test-HbA1c", Label: "HbA1c"},
	}
	return &plan
}

func blockIDs(phases []domain.Phase) [][]string {
	out := make([][]string, len(phases))
	for i, ph := range phases {
		out[i] = []string{}
		for _, b := range ph.Blocks {
			out[i] = append(out[i], b.ID)
		}
	}
	return out
}

func TestFilteredPhasesByMode(t *testing.T) {
	lookup := func(moduleID string) []string {
		if moduleID == "mod-1" {
			return []string{"kpv", "b5"}
		}
		return nil
	}
	cases := []struct {
		name     string
		mode     domain.FocusMode
		moduleID string
		want     [][]string
	}{
		{"full", domain.FocusFull, "", [][]string{{"b1", "b2", "b3"}, {"b4", "b5"}, {}}},
		{"peptides", domain.FocusPeptidesOnly, "", [][]string{{"b1"}, {"b4"}, {}}},
		{"preconception", domain.FocusPreconception, "", [][]string{{"b3"}, {}, {}}},
		{"gut repair", domain.FocusGutRepair, "", [][]string{{"b2"}, {"b4"}, {}}},
		{"custom module", domain.FocusCompendiumCustom, "mod-1", [][]string{{}, {"b4", "b5"}, {}}},
		{"custom without module", domain.FocusCompendiumCustom, "", [][]string{{}, {}, {}}},
		{"unknown mode", domain.FocusMode("bogus"), "", [][]string{{"b1", "b2", "b3"}, {"b4", "b5"}, {}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilteredPhases(samplePlan(), tc.mode, tc.moduleID, lookup)
			if diff := cmp.Diff(tc.want, blockIDs(got)); diff != "" {
				t.Fatalf("visible blocks mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilteredPhasesPreservesStructure(t *testing.T) {
	plan := samplePlan()
	got := FilteredPhases(plan, domain.FocusPeptidesOnly, "", nil)
	if len(got) != len(plan.Phases) {
		t.Fatalf("expected %d phases, got %d", len(plan.Phases), len(got))
	}
	for i := range got {
		if got[i].ID != plan.Phases[i].ID || got[i].WeekStart != plan.Phases[i].WeekStart {
			t.Fatalf("phase %d metadata changed: %+v", i, got[i])
		}
	}
	if plan.BlockCount() != 5 {
		t.Fatalf("input plan mutated: %d blocks", plan.BlockCount())
	}
}

func TestFilteredPhasesFullIsIndependentCopy(t *testing.T) {
	plan := samplePlan()
	got := FilteredPhases(plan, domain.FocusFull, "", nil)
	got[0].Blocks[0].Label = "changed"
	if plan.Phases[0].Blocks[0].Label != "Urolithin A" {
		t.Fatalf("filtered phases alias the input plan")
	}
}

func TestFilteredPlanNil(t *testing.T) {
	if got := FilteredPhases(nil, domain.FocusFull, "", nil); got != nil {
		t.Fatalf("expected nil phases, got %+v", got)
	}
	if got := FilteredPlan(nil, domain.FocusGutRepair, "", nil); got != nil {
		t.Fatalf("expected nil plan, got %+v", got)
	}
}

func TestFilteredPlanKeepsPlanFields(t *testing.T) {
	plan := samplePlan()
	got := FilteredPlan(plan, domain.FocusPreconception, "", nil)
	if got.ID != plan.ID || got.Name != plan.Name || got.UpdatedAt != plan.UpdatedAt {
		t.Fatalf("plan fields changed: %+v", got)
	}
	if got.BlockCount() != 1 {
		t.Fatalf("expected one preconception block, got %d", got.BlockCount())
	}
}

func TestFilterBlockRefIDMatchIsCaseSensitive(t *testing.T) {
	block := domain.PlanBlock{ID: "x", RefID: "PRECONCEPTION-pack", Label: "Pack"}
	if FilterBlock(block, domain.FocusPreconception, nil) {
		t.Fatalf("refId comparison should be case sensitive")
	}
	block.Label = "PreConception pack"
	if !FilterBlock(block, domain.FocusPreconception, nil) {
		t.Fatalf("label comparison should ignore case")
	}
}
