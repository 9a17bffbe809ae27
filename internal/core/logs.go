package core

import (
	"context"
	"slices"
	"time"

	"bioforge/pkg/domain"
)

// LogDose records entry, replacing any earlier entry for the same date and
// plan block.
func (s *Service) LogDose(ctx context.Context, entry domain.DoseLogEntry) bool {
	return s.mutate(ctx, "log_dose", func(st *domain.State, _ time.Time) bool {
		st.DoseLogs = slices.DeleteFunc(st.DoseLogs, func(e domain.DoseLogEntry) bool {
			return e.Date == entry.Date && e.PlanBlockID == entry.PlanBlockID
		})
		st.DoseLogs = append(st.DoseLogs, entry)
		return true
	})
}

// DosesForDate returns the dose entries logged for date.
func (s *Service) DosesForDate(date string) []domain.DoseLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.DoseLogEntry
	for _, e := range s.state.DoseLogs {
		if e.Date == date {
			out = append(out, e)
		}
	}
	return out
}

// AddBiomarkerLog appends a measurement under a fresh id and returns the id.
// Same-day measurements of one biomarker are all kept.
func (s *Service) AddBiomarkerLog(ctx context.Context, log domain.BiomarkerLog) string {
	log.ID = s.newID()
	s.mutate(ctx, "add_biomarker_log", func(st *domain.State, _ time.Time) bool {
		st.BiomarkerLogs = append(st.BiomarkerLogs, log)
		return true
	})
	return log.ID
}

// SetBiomarkerLogs replaces the biomarker history.
func (s *Service) SetBiomarkerLogs(ctx context.Context, logs []domain.BiomarkerLog) bool {
	return s.mutate(ctx, "set_biomarker_logs", func(st *domain.State, _ time.Time) bool {
		st.BiomarkerLogs = append([]domain.BiomarkerLog{}, logs...)
		return true
	})
}

// AddSymptom appends a dated note and returns its id.
func (s *Service) AddSymptom(ctx context.Context, date, text string) string {
	entry := domain.SymptomEntry{ID: s.newID(), Date: date, Text: text}
	s.mutate(ctx, "add_symptom", func(st *domain.State, _ time.Time) bool {
		st.SymptomEntries = append(st.SymptomEntries, entry)
		return true
	})
	return entry.ID
}

// DeleteSymptom removes a symptom entry.
func (s *Service) DeleteSymptom(ctx context.Context, id string) bool {
	return s.mutate(ctx, "delete_symptom", func(st *domain.State, _ time.Time) bool {
		n := len(st.SymptomEntries)
		st.SymptomEntries = slices.DeleteFunc(st.SymptomEntries, func(e domain.SymptomEntry) bool { return e.ID == id })
		return len(st.SymptomEntries) != n
	})
}

// AddRetestAlert stores an undismissed alert and returns its id.
func (s *Service) AddRetestAlert(ctx context.Context, alert domain.RetestAlert) string {
	alert.ID = s.newID()
	alert.Dismissed = false
	s.mutate(ctx, "add_retest_alert", func(st *domain.State, _ time.Time) bool {
		st.RetestAlerts = append(st.RetestAlerts, alert)
		return true
	})
	return alert.ID
}

// DismissRetestAlert marks an alert dismissed. There is no way back.
func (s *Service) DismissRetestAlert(ctx context.Context, id string) bool {
	return s.mutate(ctx, "dismiss_retest_alert", func(st *domain.State, _ time.Time) bool {
		for i := range st.RetestAlerts {
			if st.RetestAlerts[i].ID == id && !st.RetestAlerts[i].Dismissed {
				st.RetestAlerts[i].Dismissed = true
				return true
			}
		}
		return false
	})
}

// SetRetestAlerts replaces the alert list.
func (s *Service) SetRetestAlerts(ctx context.Context, alerts []domain.RetestAlert) bool {
	return s.mutate(ctx, "set_retest_alerts", func(st *domain.State, _ time.Time) bool {
		st.RetestAlerts = append([]domain.RetestAlert{}, alerts...)
		return true
	})
}

// ActiveRetestAlerts returns the alerts not yet dismissed.
func (s *Service) ActiveRetestAlerts() []domain.RetestAlert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.RetestAlert
	for _, a := range s.state.RetestAlerts {
		if !a.Dismissed {
			out = append(out, a)
		}
	}
	return out
}

// RestoreBundle replaces the current plan and the dose, biomarker and symptom
// histories with those of a backup. Saved plans, alerts and the compendium are
// left alone. A bundle without a plan is ignored.
func (s *Service) RestoreBundle(ctx context.Context, bundle domain.ExportBundle) bool {
	if bundle.Plan == nil {
		return false
	}
	return s.mutate(ctx, "restore_bundle", func(st *domain.State, _ time.Time) bool {
		plan := bundle.Plan.Clone()
		st.CurrentPlan = &plan
		st.DoseLogs = append([]domain.DoseLogEntry{}, bundle.DoseLogs...)
		st.BiomarkerLogs = append([]domain.BiomarkerLog{}, bundle.BiomarkerLogs...)
		st.SymptomEntries = append([]domain.SymptomEntry{}, bundle.SymptomEntries...)
		return true
	})
}
