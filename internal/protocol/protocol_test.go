package protocol

import (
	"strings"
	"testing"
	"time"

	"bioforge/pkg/domain"

	"github.com/google/go-cmp/cmp"
)

func planWithBlocks() *domain.UserPlan {
	plan := domain.NewDefaultPlan(time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC))
	plan.Phases[0].Blocks = []domain.PlanBlock{
		{ID: "b1", Type: domain.BlockPeptide, RefID: "urolithin-a", Label: "Urolithin A"},
		{ID: "b2", Type: domain.BlockPeptide, RefID: "bpc157", Label: "BPC-157", Notes: "short course"},
		{ID: "b3", Type: domain.BlockPeptide, RefID: "urolithin-a", Label: "Urolithin A again"},
		{ID: "b4", Type: domain.BlockDiet, RefID: "custom-diet", Label: "Low FODMAP"},
	}
	plan.Phases[1].Blocks = []domain.PlanBlock{
		{ID: "b5", Type: domain.BlockPeptide, RefID: "epitalon", Label: "Epitalon"},
	}
	return &plan
}

func TestGenerateNilPlan(t *testing.T) {
	if got := Generate(nil, nil); got != nil {
		t.Fatalf("expected nil protocol, got %+v", got)
	}
}

func TestGeneratePhaseDetails(t *testing.T) {
	got := Generate(planWithBlocks(), nil)
	if got.PlanName != "My Protocol" || got.UpdatedAt != "2026-02-01T08:00:00.000Z" {
		t.Fatalf("unexpected header %q %q", got.PlanName, got.UpdatedAt)
	}
	if len(got.Phases) != 3 {
		t.Fatalf("expected 3 phases, got %d", len(got.Phases))
	}

	first := got.Phases[0]
	want := Phase{
		Name:      "Phase 1",
		WeekRange: "Week 1-4",
		Blocks: []Block{
			{Label: "Urolithin A", Type: domain.BlockPeptide, Form: "Pill 500-1000mg"},
			{Label: "BPC-157", Type: domain.BlockPeptide, Form: "Oral or injection", Notes: "short course"},
			{Label: "Urolithin A again", Type: domain.BlockPeptide, Form: "Pill 500-1000mg"},
			{Label: "Low FODMAP", Type: domain.BlockDiet},
		},
		Doses: []string{"Urolithin A (Mitopure): Pill 500-1000mg", "BPC-157: Oral or injection"},
		Evidence: []string{
			"Gut-made mitophagy activator. 2025 Nature Aging RCT: improved immune cells, muscle endurance, energy.",
			"Legendary gut/tissue repair (gray area)",
		},
		Risks:     []string{"FDA compounding ban - research sources only"},
		Synergies: []string{"Urolithin A (Mitopure) + pomegranate diet", "Urolithin A (Mitopure) + SS-31"},
	}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Fatalf("phase mismatch (-want +got):\n%s", diff)
	}

	empty := got.Phases[2]
	if empty.WeekRange != "Week 9-12" || len(empty.Blocks) != 0 || empty.Doses == nil {
		t.Fatalf("unexpected empty phase %+v", empty)
	}
}

func TestGenerateDoctorScriptsAndGates(t *testing.T) {
	got := Generate(planWithBlocks(), nil)
	wantScripts := []string{
		"Request: Urolithin A (Mitopure) for [indication]. Form: Pill 500-1000mg.",
		"Request: BPC-157 for [indication]. Form: Oral or injection.",
		"Request: Epitalon for [indication]. Form: per protocol.",
	}
	if diff := cmp.Diff(wantScripts, got.DoctorScripts); diff != "" {
		t.Fatalf("doctor scripts mismatch (-want +got):\n%s", diff)
	}

	// 8 tracked biomarkers across 3 phases with distinct midpoints.
	if len(got.BiomarkerGates) != 24 {
		t.Fatalf("expected 24 gates, got %d", len(got.BiomarkerGates))
	}
	for _, want := range []string{"Re-test HbA1c at week 2", "Re-test I-FABP at week 6", "Re-test Homocysteine at week 10"} {
		found := false
		for _, g := range got.BiomarkerGates {
			if g == want {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("missing gate %q in %v", want, got.BiomarkerGates)
		}
	}
}

func TestGenerateGatesDeduplicateSharedMidpoints(t *testing.T) {
	plan := &domain.UserPlan{
		Name: "Two short phases",
		Phases: []domain.Phase{
			{ID: "a", Name: "A", WeekStart: 3, WeekEnd: 4},
			{ID: "b", Name: "B", WeekStart: 3, WeekEnd: 3},
		},
	}
	got := Generate(plan, nil)
	if len(got.BiomarkerGates) != 8 {
		t.Fatalf("expected shared midpoint gates to collapse to 8, got %d", len(got.BiomarkerGates))
	}
}

func TestDoctorScript(t *testing.T) {
	got := DoctorScript(nil, "kpv")
	want := "Request: KPV for [indication]. Form: Oral capsule. Mechanism: Ultra-fast gut inflammation calmer"
	if got != want {
		t.Fatalf("unexpected script %q", got)
	}
	if got := DoctorScript(nil, "missing"); got != "" {
		t.Fatalf("expected empty script for unknown id, got %q", got)
	}
}

func TestEmpty(t *testing.T) {
	if !Empty(nil) {
		t.Fatalf("nil plan should be empty")
	}
	plan := domain.NewDefaultPlan(time.Now())
	if !Empty(&plan) {
		t.Fatalf("plan without blocks should be empty")
	}
	if Empty(planWithBlocks()) {
		t.Fatalf("plan with blocks should not be empty")
	}
}

func TestRenderMarkdown(t *testing.T) {
	md := string(RenderMarkdown(Generate(planWithBlocks(), nil)))
	for _, want := range []string{
		"# My Protocol\n",
		"## Phase 1 (Week 1-4)",
		"- **BPC-157** (peptide), Oral or injection: short course",
		"### Risks",
		"## Phase 3 (Week 9-12)\n\nNo blocks scheduled.",
		"## Doctor scripts",
		"- Re-test HbA1c at week 2",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
	if len(RenderMarkdown(nil)) != 0 {
		t.Fatalf("nil protocol should render nothing")
	}
}

func TestRenderHTML(t *testing.T) {
	out, err := RenderHTML(Generate(planWithBlocks(), nil))
	if err != nil {
		t.Fatalf("render html: %v", err)
	}
	page := string(out)
	for _, want := range []string{"<title>My Protocol</title>", "<h1>My Protocol</h1>", "<strong>Urolithin A</strong>"} {
		if !strings.Contains(page, want) {
			t.Fatalf("html missing %q:\n%s", want, page)
		}
	}
}

func TestRenderHTMLEscapesPlanName(t *testing.T) {
	plan := planWithBlocks()
	plan.Name = "<script>alert(1)</script>"
	out, err := RenderHTML(Generate(plan, nil))
	if err != nil {
		t.Fatalf("render html: %v", err)
	}
	if strings.Contains(string(out), "<script>") {
		t.Fatalf("raw html leaked into output:\n%s", out)
	}
}

func TestRenderHTMLOmitsRawHTMLInLabels(t *testing.T) {
	plan := planWithBlocks()
	plan.Phases[0].Blocks[3].Label = "<img src=x onerror=alert(1)>"
	out, err := RenderHTML(Generate(plan, nil))
	if err != nil {
		t.Fatalf("render html: %v", err)
	}
	page := string(out)
	if strings.Contains(page, "<img") {
		t.Fatalf("raw html leaked into output:\n%s", page)
	}
	if !strings.Contains(page, "raw HTML omitted") {
		t.Fatalf("expected goldmark to omit the raw html:\n%s", page)
	}
}
