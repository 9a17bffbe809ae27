package domain

// SchemaVersion identifies the layout of the persisted State blob.
const SchemaVersion = 1

// MaxRecentSearches caps the remembered command searches.
const MaxRecentSearches = 15

// State is the whole persisted application blob. Backends serialize and
// restore it verbatim.
type State struct {
	SchemaVersion         int              `json:"schemaVersion"`
	CurrentPlan           *UserPlan        `json:"currentPlan"`
	SavedPlans            []UserPlan       `json:"savedPlans"`
	DoseLogs              []DoseLogEntry   `json:"doseLogs"`
	BiomarkerLogs         []BiomarkerLog   `json:"biomarkerLogs"`
	SymptomEntries        []SymptomEntry   `json:"symptomEntries"`
	RetestAlerts          []RetestAlert    `json:"retestAlerts"`
	Settings              Settings         `json:"settings"`
	CompendiumItems       []CompendiumItem `json:"compendiumItems"`
	SavedModules          []SavedModule    `json:"savedModules"`
	FocusMode             FocusMode        `json:"focusMode"`
	FocusModuleID         *string          `json:"focusModuleId"`
	RecentCommandSearches []string         `json:"recentCommandSearches"`
}

// NewState returns the initial state holding an unsaved default plan.
func NewState(plan UserPlan) State {
	return State{
		SchemaVersion:         SchemaVersion,
		CurrentPlan:           &plan,
		SavedPlans:            []UserPlan{},
		DoseLogs:              []DoseLogEntry{},
		BiomarkerLogs:         []BiomarkerLog{},
		SymptomEntries:        []SymptomEntry{},
		RetestAlerts:          []RetestAlert{},
		CompendiumItems:       []CompendiumItem{},
		SavedModules:          []SavedModule{},
		FocusMode:             FocusFull,
		RecentCommandSearches: []string{},
	}
}

// Clone deep-copies the state so callers never share slices with the store.
func (s State) Clone() State {
	cp := s
	if s.CurrentPlan != nil {
		plan := s.CurrentPlan.Clone()
		cp.CurrentPlan = &plan
	}
	cp.SavedPlans = make([]UserPlan, len(s.SavedPlans))
	for i, p := range s.SavedPlans {
		cp.SavedPlans[i] = p.Clone()
	}
	cp.DoseLogs = append([]DoseLogEntry{}, s.DoseLogs...)
	cp.BiomarkerLogs = append([]BiomarkerLog{}, s.BiomarkerLogs...)
	cp.SymptomEntries = append([]SymptomEntry{}, s.SymptomEntries...)
	cp.RetestAlerts = append([]RetestAlert{}, s.RetestAlerts...)
	cp.CompendiumItems = make([]CompendiumItem, len(s.CompendiumItems))
	for i, it := range s.CompendiumItems {
		cp.CompendiumItems[i] = it.Clone()
	}
	cp.SavedModules = make([]SavedModule, len(s.SavedModules))
	for i, m := range s.SavedModules {
		cp.SavedModules[i] = m.Clone()
	}
	if s.FocusModuleID != nil {
		id := *s.FocusModuleID
		cp.FocusModuleID = &id
	}
	cp.RecentCommandSearches = append([]string{}, s.RecentCommandSearches...)
	return cp
}

// Normalize fills nil collections and a missing schema version so a blob
// restored from an older or partial payload behaves like a fresh one.
func (s State) Normalize() State {
	if s.SchemaVersion == 0 {
		s.SchemaVersion = SchemaVersion
	}
	if s.SavedPlans == nil {
		s.SavedPlans = []UserPlan{}
	}
	if s.DoseLogs == nil {
		s.DoseLogs = []DoseLogEntry{}
	}
	if s.BiomarkerLogs == nil {
		s.BiomarkerLogs = []BiomarkerLog{}
	}
	if s.SymptomEntries == nil {
		s.SymptomEntries = []SymptomEntry{}
	}
	if s.RetestAlerts == nil {
		s.RetestAlerts = []RetestAlert{}
	}
	if s.CompendiumItems == nil {
		s.CompendiumItems = []CompendiumItem{}
	}
	if s.SavedModules == nil {
		s.SavedModules = []SavedModule{}
	}
	if s.FocusMode == "" {
		s.FocusMode = FocusFull
	}
	if s.RecentCommandSearches == nil {
		s.RecentCommandSearches = []string{}
	}
	return s
}

// ExportBundle is the flat JSON backup of a plan and its tracking logs.
type ExportBundle struct {
	ExportedAt     string         `json:"exportedAt"`
	Plan           *UserPlan      `json:"plan"`
	DoseLogs       []DoseLogEntry `json:"doseLogs"`
	BiomarkerLogs  []BiomarkerLog `json:"biomarkerLogs"`
	SymptomEntries []SymptomEntry `json:"symptomEntries"`
}
