// Package domain defines the plan, catalog and tracking records shared by the
// store, the derivation functions and the persistence backends.
package domain

import "time"

// BlockType classifies catalog entries and the plan blocks placed from them.
type BlockType string

// Supported block types.
const (
	BlockGoal       BlockType = "goal"
	BlockTest       BlockType = "test"
	BlockFiveR      BlockType = "5r"
	BlockPeptide    BlockType = "peptide"
	BlockDiet       BlockType = "diet"
	BlockMonitoring BlockType = "monitoring"
)

// BlockTypes lists every recognised block type in display order.
func BlockTypes() []BlockType {
	return []BlockType{BlockGoal, BlockTest, BlockFiveR, BlockPeptide, BlockDiet, BlockMonitoring}
}

// ParseBlockType reports whether raw names a recognised block type.
func ParseBlockType(raw string) (BlockType, bool) {
	for _, t := range BlockTypes() {
		if string(t) == raw {
			return t, true
		}
	}
	return "", false
}

// EvidenceTier grades the supporting evidence of a catalog entry.
type EvidenceTier string

// Evidence tiers, strongest first.
const (
	TierS        EvidenceTier = "S"
	TierA        EvidenceTier = "A"
	TierFrontier EvidenceTier = "Frontier"
)

// FocusMode selects which blocks of a plan are visible.
type FocusMode string

// Focus modes understood by the focus filter.
const (
	FocusFull             FocusMode = "full"
	FocusPeptidesOnly     FocusMode = "peptides-only"
	FocusPreconception    FocusMode = "preconception"
	FocusGutRepair        FocusMode = "gut-repair"
	FocusCompendiumCustom FocusMode = "compendium-custom"
)

// FocusModes lists the focus modes in menu order.
func FocusModes() []FocusMode {
	return []FocusMode{FocusFull, FocusPeptidesOnly, FocusPreconception, FocusGutRepair, FocusCompendiumCustom}
}

// ParseFocusMode reports whether raw names a known focus mode.
func ParseFocusMode(raw string) (FocusMode, bool) {
	for _, m := range FocusModes() {
		if string(m) == raw {
			return m, true
		}
	}
	return "", false
}

// CatalogPeptide is an immutable reference entry loaded from the seed catalog.
type CatalogPeptide struct {
	ID        string       `json:"id" yaml:"id"`
	Name      string       `json:"name" yaml:"name"`
	Tier      EvidenceTier `json:"tier" yaml:"tier"`
	MoA       string       `json:"moa" yaml:"moa"`
	Form      string       `json:"form,omitempty" yaml:"form"`
	Status    string       `json:"status,omitempty" yaml:"status"`
	Synergies []string     `json:"synergies,omitempty" yaml:"synergies"`
	Warning   string       `json:"warning,omitempty" yaml:"warning"`
}

// MissionMode is a named goal preset.
type MissionMode struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Icon string `json:"icon" yaml:"icon"`
}

// BiomarkerHierarchy groups biomarkers by testing priority.
type BiomarkerHierarchy struct {
	Tier1 []string `json:"tier1" yaml:"tier1"`
	Tier2 []string `json:"tier2" yaml:"tier2"`
	Tier3 []string `json:"tier3" yaml:"tier3"`
}

// VersionNote is one entry of a compendium item's append-only history.
type VersionNote struct {
	At   string `json:"at"`
	Note string `json:"note"`
}

// Link is an external reference attached to a compendium item.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// CompendiumItem is a user-curated catalog entry.
type CompendiumItem struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Type           BlockType     `json:"type"`
	RefID          string        `json:"refId,omitempty"`
	DoseExamples   []string      `json:"doseExamples,omitempty"`
	MoA            string        `json:"moa,omitempty"`
	EvidenceTier   EvidenceTier  `json:"evidenceTier,omitempty"`
	PersonalNotes  string        `json:"personalNotes,omitempty"`
	Tags           []string      `json:"tags"`
	VersionHistory []VersionNote `json:"versionHistory"`
	Links          []Link        `json:"links"`
}

// CompendiumPatch carries the fields to overwrite on a compendium item; nil
// fields are left untouched.
type CompendiumPatch struct {
	Name           *string
	Type           *BlockType
	RefID          *string
	DoseExamples   *[]string
	MoA            *string
	EvidenceTier   *EvidenceTier
	PersonalNotes  *string
	Tags           *[]string
	VersionHistory *[]VersionNote
	Links          *[]Link
}

// Apply returns a copy of item with the patch applied.
func (p CompendiumPatch) Apply(item CompendiumItem) CompendiumItem {
	out := item.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Type != nil {
		out.Type = *p.Type
	}
	if p.RefID != nil {
		out.RefID = *p.RefID
	}
	if p.DoseExamples != nil {
		out.DoseExamples = append([]string(nil), (*p.DoseExamples)...)
	}
	if p.MoA != nil {
		out.MoA = *p.MoA
	}
	if p.EvidenceTier != nil {
		out.EvidenceTier = *p.EvidenceTier
	}
	if p.PersonalNotes != nil {
		out.PersonalNotes = *p.PersonalNotes
	}
	if p.Tags != nil {
		out.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.VersionHistory != nil {
		out.VersionHistory = append([]VersionNote{}, (*p.VersionHistory)...)
	}
	if p.Links != nil {
		out.Links = append([]Link{}, (*p.Links)...)
	}
	return out
}

// Clone deep-copies the item's slices.
func (c CompendiumItem) Clone() CompendiumItem {
	cp := c
	if c.DoseExamples != nil {
		cp.DoseExamples = append([]string(nil), c.DoseExamples...)
	}
	cp.Tags = append([]string{}, c.Tags...)
	cp.VersionHistory = append([]VersionNote{}, c.VersionHistory...)
	cp.Links = append([]Link{}, c.Links...)
	return cp
}

// SavedModule is a named subset of compendium items.
type SavedModule struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	ItemIDs []string `json:"itemIds"`
}

// Clone deep-copies the module.
func (m SavedModule) Clone() SavedModule {
	cp := m
	cp.ItemIDs = append([]string{}, m.ItemIDs...)
	return cp
}

// BlockDraft is a plan block before it has been positioned in a phase.
type BlockDraft struct {
	ID       string    `json:"id"`
	Type     BlockType `json:"type"`
	RefID    string    `json:"refId"`
	Label    string    `json:"label"`
	Notes    string    `json:"notes,omitempty"`
	OrganIDs []string  `json:"organIds,omitempty"`
}

// Place positions the draft at the given phase and week.
func (d BlockDraft) Place(phaseIndex, weekIndex int) PlanBlock {
	return PlanBlock{
		ID:         d.ID,
		Type:       d.Type,
		RefID:      d.RefID,
		Label:      d.Label,
		PhaseIndex: phaseIndex,
		WeekIndex:  weekIndex,
		Notes:      d.Notes,
		OrganIDs:   cloneStrings(d.OrganIDs),
	}
}

// PlanBlock is a placed catalog or compendium item inside a plan phase.
// PhaseIndex mirrors the slot of the phase holding the block; the store keeps
// them consistent.
type PlanBlock struct {
	ID         string    `json:"id"`
	Type       BlockType `json:"type"`
	RefID      string    `json:"refId"`
	Label      string    `json:"label"`
	PhaseIndex int       `json:"phaseIndex"`
	WeekIndex  int       `json:"weekIndex"`
	Notes      string    `json:"notes,omitempty"`
	OrganIDs   []string  `json:"organIds,omitempty"`
}

// Draft strips the block's position.
func (b PlanBlock) Draft() BlockDraft {
	return BlockDraft{
		ID:       b.ID,
		Type:     b.Type,
		RefID:    b.RefID,
		Label:    b.Label,
		Notes:    b.Notes,
		OrganIDs: cloneStrings(b.OrganIDs),
	}
}

// Clone deep-copies the block.
func (b PlanBlock) Clone() PlanBlock {
	cp := b
	cp.OrganIDs = cloneStrings(b.OrganIDs)
	return cp
}

// Phase is a contiguous, inclusive week range holding ordered blocks.
type Phase struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	WeekStart int         `json:"weekStart"`
	WeekEnd   int         `json:"weekEnd"`
	Blocks    []PlanBlock `json:"blocks"`
}

// Clone deep-copies the phase and its blocks.
func (p Phase) Clone() Phase {
	cp := p
	cp.Blocks = make([]PlanBlock, len(p.Blocks))
	for i, b := range p.Blocks {
		cp.Blocks[i] = b.Clone()
	}
	return cp
}

// DefaultPhases returns the three four-week phases every new plan starts with.
func DefaultPhases() []Phase {
	return []Phase{
		{ID: "p1", Name: "Phase 1", WeekStart: 1, WeekEnd: 4, Blocks: []PlanBlock{}},
		{ID: "p2", Name: "Phase 2", WeekStart: 5, WeekEnd: 8, Blocks: []PlanBlock{}},
		{ID: "p3", Name: "Phase 3", WeekStart: 9, WeekEnd: 12, Blocks: []PlanBlock{}},
	}
}

// DefaultPlanID is the placeholder id of the unsaved seed plan.
const DefaultPlanID = "default"

// UserPlan is a named, phased regimen.
type UserPlan struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
	Phases    []Phase `json:"phases"`
}

// NewDefaultPlan builds the unsaved seed plan.
func NewDefaultPlan(now time.Time) UserPlan {
	ts := FormatTimestamp(now)
	return UserPlan{
		ID:        DefaultPlanID,
		Name:      "My Protocol",
		CreatedAt: ts,
		UpdatedAt: ts,
		Phases:    DefaultPhases(),
	}
}

// Clone deep-copies the plan.
func (p UserPlan) Clone() UserPlan {
	cp := p
	cp.Phases = make([]Phase, len(p.Phases))
	for i, ph := range p.Phases {
		cp.Phases[i] = ph.Clone()
	}
	return cp
}

// Blocks flattens the plan's blocks in phase order.
func (p UserPlan) Blocks() []PlanBlock {
	var out []PlanBlock
	for _, ph := range p.Phases {
		out = append(out, ph.Blocks...)
	}
	return out
}

// BlockCount returns the number of blocks across all phases.
func (p UserPlan) BlockCount() int {
	n := 0
	for _, ph := range p.Phases {
		n += len(ph.Blocks)
	}
	return n
}

// DoseLogEntry records whether a block was taken on a date. At most one entry
// exists per (Date, PlanBlockID).
type DoseLogEntry struct {
	Date        string `json:"date"`
	PlanBlockID string `json:"planBlockId"`
	RefID       string `json:"refId"`
	Label       string `json:"label"`
	Taken       bool   `json:"taken"`
}

// BiomarkerLog is one measured biomarker value.
type BiomarkerLog struct {
	ID            string  `json:"id"`
	Date          string  `json:"date"`
	BiomarkerID   string  `json:"biomarkerId"`
	BiomarkerName string  `json:"biomarkerName"`
	Value         float64 `json:"value"`
	Unit          string  `json:"unit,omitempty"`
}

// SymptomEntry is a dated free-text note.
type SymptomEntry struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Text string `json:"text"`
}

// RetestAlert reminds the user to re-test a biomarker.
type RetestAlert struct {
	ID            string `json:"id"`
	BiomarkerID   string `json:"biomarkerId"`
	BiomarkerName string `json:"biomarkerName"`
	DueDate       string `json:"dueDate"`
	Dismissed     bool   `json:"dismissed"`
}

// Settings holds opaque user toggles persisted with the state.
type Settings struct {
	SupabaseSync bool `json:"supabaseSync"`
	PWAInstalled bool `json:"pwaInstalled"`
}

// SettingsPatch overwrites the non-nil settings.
type SettingsPatch struct {
	SupabaseSync *bool
	PWAInstalled *bool
}

// Apply returns settings with the patch applied.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.SupabaseSync != nil {
		s.SupabaseSync = *p.SupabaseSync
	}
	if p.PWAInstalled != nil {
		s.PWAInstalled = *p.PWAInstalled
	}
	return s
}

// TimestampLayout matches the millisecond ISO-8601 form used in persisted state.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// DateLayout is the calendar-day form used by the tracking logs.
const DateLayout = "2006-01-02"

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
