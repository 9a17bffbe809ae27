// Package synergy builds the interaction graph between the blocks of a plan.
package synergy

import (
	"bioforge/internal/catalog"
	"bioforge/pkg/domain"
)

// Node is one plan block. MoA and Tier are set when the block resolves to a
// catalog peptide.
type Node struct {
	ID    string              `json:"id"`
	Label string              `json:"label"`
	Type  domain.BlockType    `json:"type"`
	RefID string              `json:"refId,omitempty"`
	MoA   string              `json:"moa,omitempty"`
	Tier  domain.EvidenceTier `json:"tier,omitempty"`
}

// Edge links a block whose peptide declares a synergy to the block that
// satisfies it.
type Edge struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Label    string  `json:"label"`
	Strength float64 `json:"strength"`
}

// Graph is the node/edge view of a plan.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

const defaultStrength = 0.6

var tierStrength = map[domain.EvidenceTier]float64{
	domain.TierS:        1,
	domain.TierA:        0.7,
	domain.TierFrontier: 0.5,
}

// Strength maps an evidence tier to an edge weight.
func Strength(tier domain.EvidenceTier) float64 {
	if s, ok := tierStrength[tier]; ok {
		return s
	}
	return defaultStrength
}

// Build returns the graph of plan's blocks, or nil when the plan holds fewer
// than two blocks. Only synergies whose partner is present in the plan produce
// an edge; a partner is found with catalog.MatchName against each other block's
// label, resolved peptide name and refId.
func Build(plan *domain.UserPlan, c *catalog.Catalog) *Graph {
	if plan == nil {
		return nil
	}
	blocks := plan.Blocks()
	if len(blocks) < 2 {
		return nil
	}
	if c == nil {
		c = catalog.Default()
	}

	g := &Graph{Nodes: make([]Node, 0, len(blocks)), Edges: []Edge{}}
	for _, b := range blocks {
		n := Node{ID: b.ID, Label: b.Label, Type: b.Type, RefID: b.RefID}
		if pep, ok := c.Peptide(b.RefID); ok {
			n.MoA = pep.MoA
			n.Tier = pep.Tier
		}
		g.Nodes = append(g.Nodes, n)
	}

	for _, a := range blocks {
		pep, ok := c.Peptide(a.RefID)
		if !ok {
			continue
		}
		for _, name := range pep.Synergies {
			target, found := partner(c, blocks, a.ID, name)
			if !found {
				continue
			}
			g.Edges = append(g.Edges, Edge{
				Source:   a.ID,
				Target:   target.ID,
				Label:    pep.Name + " + " + name,
				Strength: Strength(pep.Tier),
			})
		}
	}
	return g
}

func partner(c *catalog.Catalog, blocks []domain.PlanBlock, selfID, synergy string) (domain.PlanBlock, bool) {
	for _, b := range blocks {
		if b.ID == selfID {
			continue
		}
		if catalog.MatchName(synergy, b.Label, b.RefID) {
			return b, true
		}
		if pep, ok := c.Peptide(b.RefID); ok && catalog.MatchName(synergy, pep.Name, b.RefID) {
			return b, true
		}
	}
	return domain.PlanBlock{}, false
}
