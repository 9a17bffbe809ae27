package domain

import "context"

// StateStore is a durable home for the whole State blob. Implementations
// overwrite the previous blob on every Save; the last writer wins.
type StateStore interface {
	// Load returns the stored state and whether one existed.
	Load(ctx context.Context) (State, bool, error)
	// Save replaces the stored state.
	Save(ctx context.Context, state State) error
	// Close releases backend resources.
	Close() error
}

// StateBuckets names the persisted buckets, one per top-level State field.
// The sqlite and postgres backends store one row per bucket.
var StateBuckets = []string{
	"schemaVersion",
	"currentPlan",
	"savedPlans",
	"doseLogs",
	"biomarkerLogs",
	"symptomEntries",
	"retestAlerts",
	"settings",
	"compendiumItems",
	"savedModules",
	"focusMode",
	"focusModuleId",
	"recentCommandSearches",
}
