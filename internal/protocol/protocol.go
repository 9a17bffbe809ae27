// Package protocol derives the export-ready view of a plan: per-phase doses,
// evidence, risks and potential synergies, doctor-script lines and a blanket
// biomarker re-test schedule.
package protocol

import (
	"fmt"

	"bioforge/internal/catalog"
	"bioforge/pkg/domain"
)

// Block is a plan block as it appears in a generated protocol.
type Block struct {
	Label string           `json:"label"`
	Type  domain.BlockType `json:"type"`
	Form  string           `json:"form,omitempty"`
	Notes string           `json:"notes,omitempty"`
}

// Phase groups the derived text for one plan phase.
type Phase struct {
	Name      string   `json:"name"`
	WeekRange string   `json:"weekRange"`
	Blocks    []Block  `json:"blocks"`
	Doses     []string `json:"doses"`
	Evidence  []string `json:"evidence"`
	Risks     []string `json:"risks"`
	Synergies []string `json:"synergies"`
}

// GeneratedProtocol is the document-ready projection of a plan.
type GeneratedProtocol struct {
	PlanName       string   `json:"planName"`
	Phases         []Phase  `json:"phases"`
	DoctorScripts  []string `json:"doctorScripts"`
	BiomarkerGates []string `json:"biomarkerGates"`
	UpdatedAt      string   `json:"updatedAt"`
}

const formFallback = "per protocol"

// Generate builds the protocol for plan, resolving blocks against c (the
// embedded catalog when nil). Synergies are listed as declared by the catalog,
// whether or not the partner is in the plan. Every phase schedules a re-test of
// each tier 1 and tier 2 biomarker at the midpoint week of its range. Blocks
// without a catalog peptide contribute only their own label and notes.
func Generate(plan *domain.UserPlan, c *catalog.Catalog) *GeneratedProtocol {
	if plan == nil {
		return nil
	}
	if c == nil {
		c = catalog.Default()
	}
	biomarkers := c.Biomarkers()
	scripts := newOrderedSet()
	gates := newOrderedSet()

	phases := make([]Phase, 0, len(plan.Phases))
	for _, ph := range plan.Phases {
		out := Phase{
			Name:      ph.Name,
			WeekRange: fmt.Sprintf("Week %d-%d", ph.WeekStart, ph.WeekEnd),
			Blocks:    make([]Block, 0, len(ph.Blocks)),
		}
		doses, evidence, risks, synergies := newOrderedSet(), newOrderedSet(), newOrderedSet(), newOrderedSet()

		for _, b := range ph.Blocks {
			pep, ok := c.Peptide(b.RefID)
			blk := Block{Label: b.Label, Type: b.Type, Notes: b.Notes}
			if !ok {
				out.Blocks = append(out.Blocks, blk)
				continue
			}
			blk.Form = pep.Form
			out.Blocks = append(out.Blocks, blk)

			if pep.Form != "" {
				doses.add(pep.Name + ": " + pep.Form)
			}
			evidence.add(pep.MoA)
			if pep.Warning != "" {
				risks.add(pep.Warning)
			}
			for _, s := range pep.Synergies {
				synergies.add(pep.Name + " + " + s)
			}
			scripts.add(requestLine(pep))
		}

		week := ph.WeekStart + (ph.WeekEnd-ph.WeekStart)/2
		for _, bm := range biomarkers {
			gates.add(fmt.Sprintf("Re-test %s at week %d", bm, week))
		}

		out.Doses = doses.items()
		out.Evidence = evidence.items()
		out.Risks = risks.items()
		out.Synergies = synergies.items()
		phases = append(phases, out)
	}

	return &GeneratedProtocol{
		PlanName:       plan.Name,
		Phases:         phases,
		DoctorScripts:  scripts.items(),
		BiomarkerGates: gates.items(),
		UpdatedAt:      plan.UpdatedAt,
	}
}

// DoctorScript returns the standalone request line for a catalog peptide,
// including its mechanism, or "" when the id is unknown.
func DoctorScript(c *catalog.Catalog, peptideID string) string {
	if c == nil {
		c = catalog.Default()
	}
	pep, ok := c.Peptide(peptideID)
	if !ok {
		return ""
	}
	return requestLine(pep) + " Mechanism: " + pep.MoA
}

func requestLine(pep domain.CatalogPeptide) string {
	form := pep.Form
	if form == "" {
		form = formFallback
	}
	return fmt.Sprintf("Request: %s for [indication]. Form: %s.", pep.Name, form)
}

// Empty reports whether plan has nothing to print.
func Empty(plan *domain.UserPlan) bool {
	return plan == nil || plan.BlockCount() == 0
}

type orderedSet struct {
	seen  map[string]struct{}
	order []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.order = append(s.order, v)
}

func (s *orderedSet) items() []string {
	if s.order == nil {
		return []string{}
	}
	return s.order
}
