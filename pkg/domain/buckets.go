package domain

import (
	"encoding/json"
	"fmt"
)

func (s *State) bucketTargets() map[string]any {
	return map[string]any{
		"schemaVersion":         &s.SchemaVersion,
		"currentPlan":           &s.CurrentPlan,
		"savedPlans":            &s.SavedPlans,
		"doseLogs":              &s.DoseLogs,
		"biomarkerLogs":         &s.BiomarkerLogs,
		"symptomEntries":        &s.SymptomEntries,
		"retestAlerts":          &s.RetestAlerts,
		"settings":              &s.Settings,
		"compendiumItems":       &s.CompendiumItems,
		"savedModules":          &s.SavedModules,
		"focusMode":             &s.FocusMode,
		"focusModuleId":         &s.FocusModuleID,
		"recentCommandSearches": &s.RecentCommandSearches,
	}
}

// EncodeBuckets marshals each top-level State field into its own JSON payload,
// keyed by the names in StateBuckets.
func EncodeBuckets(state State) (map[string][]byte, error) {
	targets := state.bucketTargets()
	out := make(map[string][]byte, len(StateBuckets))
	for _, bucket := range StateBuckets {
		data, err := json.Marshal(targets[bucket])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", bucket, err)
		}
		out[bucket] = data
	}
	return out, nil
}

// DecodeBuckets rebuilds a State from bucket payloads. Unknown buckets and
// empty payloads are skipped; missing collections are normalized.
func DecodeBuckets(payloads map[string][]byte) (State, error) {
	var state State
	targets := state.bucketTargets()
	for bucket, payload := range payloads {
		if len(payload) == 0 {
			continue
		}
		target, ok := targets[bucket]
		if !ok {
			continue
		}
		if err := json.Unmarshal(payload, target); err != nil {
			return State{}, fmt.Errorf("decode %s: %w", bucket, err)
		}
	}
	return state.Normalize(), nil
}
