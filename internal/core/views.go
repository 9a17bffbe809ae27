package core

import (
	"context"
	"time"

	"bioforge/internal/focus"
	"bioforge/internal/protocol"
	"bioforge/internal/synergy"
	"bioforge/pkg/domain"
)

// FocusedPlan applies the stored focus mode and module to the current plan.
func (s *Service) FocusedPlan() *domain.UserPlan {
	s.mu.RLock()
	mode := s.state.FocusMode
	moduleID := ""
	if s.state.FocusModuleID != nil {
		moduleID = *s.state.FocusModuleID
	}
	s.mu.RUnlock()
	return focus.FilteredPlan(s.CurrentPlan(), mode, moduleID, s.ModuleItemIDs)
}

// Protocol generates the protocol document for the current plan.
func (s *Service) Protocol() *protocol.GeneratedProtocol {
	return protocol.Generate(s.CurrentPlan(), s.catalog)
}

// SynergyGraph builds the synergy graph of the current plan.
func (s *Service) SynergyGraph() *synergy.Graph {
	return synergy.Build(s.CurrentPlan(), s.catalog)
}

// CheckCurrentPlan runs the plan checks against the current plan and the saved
// plans. Findings are logged and returned; they never block a mutation.
func (s *Service) CheckCurrentPlan(ctx context.Context) domain.Result {
	ctx, span := s.tracer.Start(ctx, "check_plan")
	start := time.Now()
	st := s.State()
	res := s.engine.Evaluate(ctx, PlanView{Current: st.CurrentPlan, Saved: st.SavedPlans, Catalog: s.catalog})
	for _, v := range res.Violations {
		switch v.Severity {
		case domain.SeverityWarn:
			s.logger.Warn("plan check", "rule", v.Rule, "block_id", v.BlockID, "message", v.Message)
		default:
			s.logger.Info("plan check", "rule", v.Rule, "block_id", v.BlockID, "message", v.Message)
		}
	}
	s.metrics.Observe(ctx, "check_plan", true, time.Since(start))
	span.End(nil)
	return res
}
