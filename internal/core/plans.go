package core

import (
	"context"
	"time"

	"bioforge/pkg/domain"
)

// DefaultSubsetPlanName names plans built from a block subset without a name.
const DefaultSubsetPlanName = "From subset"

const copySuffix = " (copy)"

// SetCurrentPlan replaces the current plan without validation. A nil plan
// clears it.
func (s *Service) SetCurrentPlan(ctx context.Context, plan *domain.UserPlan) bool {
	return s.mutate(ctx, "set_current_plan", func(st *domain.State, _ time.Time) bool {
		if plan == nil {
			st.CurrentPlan = nil
			return true
		}
		cp := plan.Clone()
		st.CurrentPlan = &cp
		return true
	})
}

// UpdateCurrentPlanPhases swaps the current plan's phases wholesale.
func (s *Service) UpdateCurrentPlanPhases(ctx context.Context, phases []domain.Phase) bool {
	return s.mutate(ctx, "update_current_plan_phases", func(st *domain.State, now time.Time) bool {
		if st.CurrentPlan == nil {
			return false
		}
		st.CurrentPlan.Phases = make([]domain.Phase, len(phases))
		for i, ph := range phases {
			st.CurrentPlan.Phases[i] = ph.Clone()
		}
		touch(st.CurrentPlan, now)
		return true
	})
}

// AddBlockToPhase places draft at the end of the given phase of the current
// plan.
func (s *Service) AddBlockToPhase(ctx context.Context, phaseIndex, weekIndex int, draft domain.BlockDraft) bool {
	return s.mutate(ctx, "add_block", func(st *domain.State, now time.Time) bool {
		return appendBlocks(st.CurrentPlan, phaseIndex, weekIndex, now, draft)
	})
}

// RemoveBlock drops blockID from the given phase only. When the phase holds
// several blocks with that id, only the first is removed. Dose logs
// referencing the block are kept.
func (s *Service) RemoveBlock(ctx context.Context, phaseIndex int, blockID string) bool {
	return s.mutate(ctx, "remove_block", func(st *domain.State, now time.Time) bool {
		_, ok := takeBlock(st.CurrentPlan, phaseIndex, blockID)
		if ok {
			touch(st.CurrentPlan, now)
		}
		return ok
	})
}

// MoveBlock removes blockID from fromPhase and appends it to toPhase at
// toWeek. Nothing changes unless both the block and the destination exist.
func (s *Service) MoveBlock(ctx context.Context, fromPhase int, blockID string, toPhase, toWeek int) bool {
	return s.mutate(ctx, "move_block", func(st *domain.State, now time.Time) bool {
		plan := st.CurrentPlan
		if plan == nil || !validPhase(plan, toPhase) {
			return false
		}
		block, ok := takeBlock(plan, fromPhase, blockID)
		if !ok {
			return false
		}
		return appendBlocks(plan, toPhase, toWeek, now, block.Draft())
	})
}

// SaveCurrentPlan stores the current plan under name, upserting by id. The
// placeholder default id is replaced with a fresh one. Both timestamps are
// reset on every save. It returns the saved plan's id.
func (s *Service) SaveCurrentPlan(ctx context.Context, name string) (string, bool) {
	var id string
	ok := s.mutate(ctx, "save_plan", func(st *domain.State, now time.Time) bool {
		if st.CurrentPlan == nil {
			return false
		}
		plan := st.CurrentPlan.Clone()
		if plan.ID == domain.DefaultPlanID {
			plan.ID = s.newID()
		}
		plan.Name = name
		plan.CreatedAt = domain.FormatTimestamp(now)
		plan.UpdatedAt = plan.CreatedAt
		if i := savedIndex(st, plan.ID); i >= 0 {
			st.SavedPlans[i] = plan
		} else {
			st.SavedPlans = append(st.SavedPlans, plan)
		}
		current := plan.Clone()
		st.CurrentPlan = &current
		id = plan.ID
		return true
	})
	return id, ok
}

// LoadPlan makes the saved plan id current.
func (s *Service) LoadPlan(ctx context.Context, id string) bool {
	return s.mutate(ctx, "load_plan", func(st *domain.State, _ time.Time) bool {
		i := savedIndex(st, id)
		if i < 0 {
			return false
		}
		plan := st.SavedPlans[i].Clone()
		st.CurrentPlan = &plan
		return true
	})
}

// DeletePlan removes a saved plan. When it is also the current plan, the
// current plan is cleared.
func (s *Service) DeletePlan(ctx context.Context, id string) bool {
	return s.mutate(ctx, "delete_plan", func(st *domain.State, _ time.Time) bool {
		i := savedIndex(st, id)
		if i < 0 {
			return false
		}
		st.SavedPlans = append(st.SavedPlans[:i], st.SavedPlans[i+1:]...)
		if st.CurrentPlan != nil && st.CurrentPlan.ID == id {
			st.CurrentPlan = nil
		}
		return true
	})
}

// DuplicatePlan copies a saved plan under a new id and a "(copy)" name, saves
// it and makes it current. Block ids are shared with the original; the
// duplicate_block_id check reports the overlap.
func (s *Service) DuplicatePlan(ctx context.Context, id string) (string, bool) {
	var newID string
	ok := s.mutate(ctx, "duplicate_plan", func(st *domain.State, now time.Time) bool {
		i := savedIndex(st, id)
		if i < 0 {
			return false
		}
		cp := st.SavedPlans[i].Clone()
		cp.ID = s.newID()
		cp.Name += copySuffix
		cp.CreatedAt = domain.FormatTimestamp(now)
		cp.UpdatedAt = cp.CreatedAt
		st.SavedPlans = append(st.SavedPlans, cp)
		current := cp.Clone()
		st.CurrentPlan = &current
		newID = cp.ID
		return true
	})
	return newID, ok
}

// CreatePlanFromBlocks builds a fresh three-phase plan with every block in the
// first phase at week 0, saves it and makes it current. An empty name falls
// back to DefaultSubsetPlanName.
func (s *Service) CreatePlanFromBlocks(ctx context.Context, blocks []domain.BlockDraft, name string) string {
	if name == "" {
		name = DefaultSubsetPlanName
	}
	var id string
	s.mutate(ctx, "create_plan_from_blocks", func(st *domain.State, now time.Time) bool {
		ts := domain.FormatTimestamp(now)
		plan := domain.UserPlan{
			ID:        s.newID(),
			Name:      name,
			CreatedAt: ts,
			UpdatedAt: ts,
			Phases:    domain.DefaultPhases(),
		}
		for _, d := range blocks {
			plan.Phases[0].Blocks = append(plan.Phases[0].Blocks, d.Place(0, 0))
		}
		st.SavedPlans = append(st.SavedPlans, plan)
		current := plan.Clone()
		st.CurrentPlan = &current
		id = plan.ID
		return true
	})
	return id
}

// AppendBlocksToPlan adds blocks at week 0 of a phase of the saved plan
// planID. The current plan is updated too when it has the same id, but the
// saved plan is never activated.
func (s *Service) AppendBlocksToPlan(ctx context.Context, planID string, blocks []domain.BlockDraft, phaseIndex int) bool {
	return s.mutate(ctx, "append_blocks_to_plan", func(st *domain.State, now time.Time) bool {
		i := savedIndex(st, planID)
		if i < 0 {
			return false
		}
		if !appendBlocks(&st.SavedPlans[i], phaseIndex, 0, now, blocks...) {
			return false
		}
		if st.CurrentPlan != nil && st.CurrentPlan.ID == planID {
			current := st.SavedPlans[i].Clone()
			st.CurrentPlan = &current
		}
		return true
	})
}

// UpdateBlockOrganIDs replaces the organ tags of blockID wherever it sits in
// the current plan.
func (s *Service) UpdateBlockOrganIDs(ctx context.Context, blockID string, organIDs []string) bool {
	return s.mutate(ctx, "update_block_organs", func(st *domain.State, now time.Time) bool {
		b := findBlock(st.CurrentPlan, blockID)
		if b == nil {
			return false
		}
		b.OrganIDs = append([]string(nil), organIDs...)
		touch(st.CurrentPlan, now)
		return true
	})
}

// TagBlockOrgan adds a catalog organ to blockID's tags unless already present.
func (s *Service) TagBlockOrgan(ctx context.Context, blockID, organID string) bool {
	if !s.catalog.IsOrgan(organID) {
		s.logger.Warn("unknown organ", "organ_id", organID)
		return false
	}
	return s.mutate(ctx, "tag_block_organ", func(st *domain.State, now time.Time) bool {
		b := findBlock(st.CurrentPlan, blockID)
		if b == nil {
			return false
		}
		for _, id := range b.OrganIDs {
			if id == organID {
				return false
			}
		}
		b.OrganIDs = append(b.OrganIDs, organID)
		touch(st.CurrentPlan, now)
		return true
	})
}

func touch(plan *domain.UserPlan, now time.Time) {
	plan.UpdatedAt = domain.FormatTimestamp(now)
}

func validPhase(plan *domain.UserPlan, i int) bool {
	return plan != nil && i >= 0 && i < len(plan.Phases)
}

func appendBlocks(plan *domain.UserPlan, phaseIndex, weekIndex int, now time.Time, drafts ...domain.BlockDraft) bool {
	if !validPhase(plan, phaseIndex) {
		return false
	}
	ph := &plan.Phases[phaseIndex]
	for _, d := range drafts {
		ph.Blocks = append(ph.Blocks, d.Place(phaseIndex, weekIndex))
	}
	touch(plan, now)
	return true
}

func takeBlock(plan *domain.UserPlan, phaseIndex int, blockID string) (domain.PlanBlock, bool) {
	if !validPhase(plan, phaseIndex) {
		return domain.PlanBlock{}, false
	}
	ph := &plan.Phases[phaseIndex]
	for i, b := range ph.Blocks {
		if b.ID == blockID {
			ph.Blocks = append(ph.Blocks[:i:i], ph.Blocks[i+1:]...)
			return b, true
		}
	}
	return domain.PlanBlock{}, false
}

func findBlock(plan *domain.UserPlan, blockID string) *domain.PlanBlock {
	if plan == nil {
		return nil
	}
	for pi := range plan.Phases {
		for bi := range plan.Phases[pi].Blocks {
			if plan.Phases[pi].Blocks[bi].ID == blockID {
				return &plan.Phases[pi].Blocks[bi]
			}
		}
	}
	return nil
}

func savedIndex(st *domain.State, id string) int {
	for i, p := range st.SavedPlans {
		if p.ID == id {
			return i
		}
	}
	return -1
}
