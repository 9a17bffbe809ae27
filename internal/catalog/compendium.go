package catalog

import (
	"strings"
	"time"

	"bioforge/pkg/domain"
)

var fiveRSteps = []struct{ id, name string }{
	{"5r-remove", "Remove (eliminate)"},
	{"5r-replace", "Replace (digestive support)"},
	{"5r-reinoculate", "Reinoculate (probiotics)"},
	{"5r-repair", "Repair (gut lining)"},
	{"5r-rebalance", "Rebalance (lifestyle)"},
}

var seedDiets = []struct{ id, name string }{
	{"diet-green-med", "Green-Mediterranean diet"},
	{"diet-low-fodmap", "Low FODMAP"},
	{"diet-elimination", "Elimination protocol"},
}

// EvidenceTierOf maps a catalog tier onto the compendium's tier enum,
// defaulting unknown tiers to A.
func EvidenceTierOf(tier domain.EvidenceTier) domain.EvidenceTier {
	switch tier {
	case domain.TierS, domain.TierA, domain.TierFrontier:
		return tier
	default:
		return domain.TierA
	}
}

// TestRefID is the synthetic reference id used for biomarker test entries.
func TestRefID(biomarker string) string { return "test-" + biomarker }

// CompendiumSeed builds the starter compendium: every peptide, the 5R gut
// steps, tier1 and tier2 tests, the seed diets and one goal per mission mode.
func (c *Catalog) CompendiumSeed(now time.Time) []domain.CompendiumItem {
	ts := domain.FormatTimestamp(now)
	var items []domain.CompendiumItem

	for _, p := range c.doc.Peptides {
		var doses []string
		if p.Form != "" {
			doses = []string{p.Form}
		}
		items = append(items, domain.CompendiumItem{
			ID:             "compendium-peptide-" + p.ID,
			Name:           p.Name,
			Type:           domain.BlockPeptide,
			RefID:          p.ID,
			DoseExamples:   doses,
			MoA:            p.MoA,
			EvidenceTier:   EvidenceTierOf(p.Tier),
			Tags:           append([]string{}, p.Synergies...),
			VersionHistory: []domain.VersionNote{{At: ts, Note: "2026 seed – " + p.Status}},
			Links:          []domain.Link{},
		})
	}

	for _, r := range fiveRSteps {
		items = append(items, emptyItem("compendium-"+r.id, r.name, domain.BlockFiveR, ""))
	}

	for _, b := range c.Biomarkers() {
		items = append(items, emptyItem("compendium-test-"+strings.Join(strings.Fields(b), "-"), b, domain.BlockTest, TestRefID(b)))
	}

	for _, d := range seedDiets {
		items = append(items, emptyItem("compendium-"+d.id, d.name, domain.BlockDiet, d.id))
	}

	for _, m := range c.doc.MissionModes {
		item := emptyItem("compendium-goal-"+m.ID, m.Name, domain.BlockGoal, m.ID)
		item.Tags = []string{m.ID}
		items = append(items, item)
	}
	return items
}

func emptyItem(id, name string, typ domain.BlockType, refID string) domain.CompendiumItem {
	return domain.CompendiumItem{
		ID:             id,
		Name:           name,
		Type:           typ,
		RefID:          refID,
		Tags:           []string{},
		VersionHistory: []domain.VersionNote{},
		Links:          []domain.Link{},
	}
}
