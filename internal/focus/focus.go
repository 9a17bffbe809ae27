// Package focus narrows a plan to the blocks relevant to a view mode.
package focus

import (
	"strings"

	"bioforge/pkg/domain"
)

// ModuleLookup resolves a saved module id to its compendium item ids.
type ModuleLookup func(moduleID string) []string

// FilterBlock reports whether block is visible under mode. moduleItems is only
// consulted for the compendium-custom mode. Unknown modes show every block.
func FilterBlock(block domain.PlanBlock, mode domain.FocusMode, moduleItems map[string]struct{}) bool {
	switch mode {
	case domain.FocusFull:
		return true
	case domain.FocusPeptidesOnly:
		return block.Type == domain.BlockPeptide
	case domain.FocusPreconception:
		return mentions(block, "preconception", "preconception")
	case domain.FocusGutRepair:
		return mentions(block, "gut-repair", "gut repair")
	case domain.FocusCompendiumCustom:
		if _, ok := moduleItems[block.RefID]; ok {
			return true
		}
		_, ok := moduleItems[block.ID]
		return ok
	default:
		return true
	}
}

// mentions matches refKey against the raw refId and phrase against the
// lower-cased label and notes.
func mentions(block domain.PlanBlock, refKey, phrase string) bool {
	return strings.Contains(block.RefID, refKey) ||
		strings.Contains(strings.ToLower(block.Label), phrase) ||
		strings.Contains(strings.ToLower(block.Notes), phrase)
}

// FilteredPhases returns copies of the plan's phases holding only the visible
// blocks. Phase structure and block order are preserved. A nil plan yields nil.
func FilteredPhases(plan *domain.UserPlan, mode domain.FocusMode, moduleID string, lookup ModuleLookup) []domain.Phase {
	if plan == nil {
		return nil
	}
	out := make([]domain.Phase, len(plan.Phases))
	if mode == domain.FocusFull {
		for i, ph := range plan.Phases {
			out[i] = ph.Clone()
		}
		return out
	}

	items := make(map[string]struct{})
	if mode == domain.FocusCompendiumCustom && moduleID != "" && lookup != nil {
		for _, id := range lookup(moduleID) {
			items[id] = struct{}{}
		}
	}

	for i, ph := range plan.Phases {
		filtered := ph
		filtered.Blocks = make([]domain.PlanBlock, 0, len(ph.Blocks))
		for _, b := range ph.Blocks {
			if FilterBlock(b, mode, items) {
				filtered.Blocks = append(filtered.Blocks, b.Clone())
			}
		}
		out[i] = filtered
	}
	return out
}

// FilteredPlan is FilteredPhases wrapped in a copy of the plan.
func FilteredPlan(plan *domain.UserPlan, mode domain.FocusMode, moduleID string, lookup ModuleLookup) *domain.UserPlan {
	if plan == nil {
		return nil
	}
	out := *plan
	out.Phases = FilteredPhases(plan, mode, moduleID, lookup)
	return &out
}
