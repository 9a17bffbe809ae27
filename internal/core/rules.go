package core

import (
	"context"
	"fmt"

	"bioforge/internal/catalog"
	"bioforge/pkg/domain"
)

// PlanView is the read-only input of the plan checks.
type PlanView struct {
	Current *domain.UserPlan
	Saved   []domain.UserPlan
	Catalog *catalog.Catalog
}

// Rule is an advisory check over a plan.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, view PlanView) domain.Result
}

// RuleFunc adapts a function into a named Rule.
type RuleFunc struct {
	RuleName string
	Fn       func(ctx context.Context, view PlanView) domain.Result
}

// Name implements Rule.
func (r RuleFunc) Name() string { return r.RuleName }

// Evaluate implements Rule.
func (r RuleFunc) Evaluate(ctx context.Context, view PlanView) domain.Result {
	return r.Fn(ctx, view)
}

// RulesEngine orchestrates rule evaluation.
type RulesEngine struct {
	rules []Rule
}

// NewRulesEngine constructs an empty engine.
func NewRulesEngine() *RulesEngine {
	return &RulesEngine{}
}

// NewDefaultRulesEngine builds an engine with the built-in plan checks.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(PhaseIndexConsistencyRule())
	engine.Register(PhaseWeekRangeRule())
	engine.Register(DuplicateBlockIDRule())
	engine.Register(CatalogWarningRule())
	return engine
}

// Register appends a rule to the engine.
func (e *RulesEngine) Register(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Evaluate executes all registered rules and aggregates their results.
func (e *RulesEngine) Evaluate(ctx context.Context, view PlanView) domain.Result {
	var combined domain.Result
	if view.Current == nil {
		return combined
	}
	for _, rule := range e.rules {
		combined.Merge(rule.Evaluate(ctx, view))
	}
	return combined
}

// PhaseIndexConsistencyRule flags blocks whose phaseIndex disagrees with the
// phase holding them.
func PhaseIndexConsistencyRule() Rule {
	return RuleFunc{RuleName: "phase_index_consistency", Fn: func(_ context.Context, view PlanView) domain.Result {
		var res domain.Result
		for i, ph := range view.Current.Phases {
			for _, b := range ph.Blocks {
				if b.PhaseIndex == i {
					continue
				}
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "phase_index_consistency",
					Severity: domain.SeverityWarn,
					Message:  fmt.Sprintf("block %q sits in phase %d but records phase %d", b.Label, i, b.PhaseIndex),
					PlanID:   view.Current.ID,
					BlockID:  b.ID,
				})
			}
		}
		return res
	}}
}

// PhaseWeekRangeRule flags phases ending before they start.
func PhaseWeekRangeRule() Rule {
	return RuleFunc{RuleName: "phase_week_range", Fn: func(_ context.Context, view PlanView) domain.Result {
		var res domain.Result
		for _, ph := range view.Current.Phases {
			if ph.WeekEnd >= ph.WeekStart {
				continue
			}
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "phase_week_range",
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("phase %q ends at week %d before it starts at week %d", ph.Name, ph.WeekEnd, ph.WeekStart),
				PlanID:   view.Current.ID,
			})
		}
		return res
	}}
}

// DuplicateBlockIDRule flags block ids repeated inside the current plan
// (warn) and ids shared with other saved plans, as left by DuplicatePlan
// (log). Dose logs are keyed by block id, so shared ids merge histories.
func DuplicateBlockIDRule() Rule {
	return RuleFunc{RuleName: "duplicate_block_id", Fn: func(_ context.Context, view PlanView) domain.Result {
		var res domain.Result
		seen := make(map[string]struct{})
		for _, b := range view.Current.Blocks() {
			if _, dup := seen[b.ID]; dup {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "duplicate_block_id",
					Severity: domain.SeverityWarn,
					Message:  fmt.Sprintf("block id %q appears more than once in the plan", b.ID),
					PlanID:   view.Current.ID,
					BlockID:  b.ID,
				})
			}
			seen[b.ID] = struct{}{}
		}

		reported := make(map[string]struct{})
		for _, other := range view.Saved {
			if other.ID == view.Current.ID {
				continue
			}
			for _, b := range other.Blocks() {
				if _, shared := seen[b.ID]; !shared {
					continue
				}
				if _, done := reported[b.ID]; done {
					continue
				}
				reported[b.ID] = struct{}{}
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "duplicate_block_id",
					Severity: domain.SeverityLog,
					Message:  fmt.Sprintf("block id %q is shared with plan %q; dose logs for it are merged", b.ID, other.Name),
					PlanID:   view.Current.ID,
					BlockID:  b.ID,
				})
			}
		}
		return res
	}}
}

// CatalogWarningRule surfaces the catalog warning of every peptide block.
func CatalogWarningRule() Rule {
	return RuleFunc{RuleName: "catalog_warning", Fn: func(_ context.Context, view PlanView) domain.Result {
		var res domain.Result
		if view.Catalog == nil {
			return res
		}
		for _, b := range view.Current.Blocks() {
			pep, ok := view.Catalog.Peptide(b.RefID)
			if !ok || pep.Warning == "" {
				continue
			}
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "catalog_warning",
				Severity: domain.SeverityLog,
				Message:  fmt.Sprintf("%s: %s", pep.Name, pep.Warning),
				PlanID:   view.Current.ID,
				BlockID:  b.ID,
			})
		}
		return res
	}}
}
