// Package importer turns pasted text, JSON documents and one-line quick-add
// commands into candidate catalog items. Parsers never fail: malformed input
// yields an empty result.
package importer

import (
	"regexp"
	"strings"
	"time"

	"bioforge/internal/catalog"
	"bioforge/pkg/domain"
)

// ParsedImportItem is a candidate compendium entry extracted from free text or
// JSON. Callers assign ids and persist it.
type ParsedImportItem struct {
	Name          string           `json:"name"`
	Type          domain.BlockType `json:"type"`
	DoseExamples  []string         `json:"doseExamples,omitempty"`
	MoA           string           `json:"moa,omitempty"`
	PersonalNotes string           `json:"personalNotes,omitempty"`
	RefID         string           `json:"refId,omitempty"`
	Tags          []string         `json:"tags,omitempty"`
	OrganIDs      []string         `json:"organIds,omitempty"`
}

// ParsedQuickAdd is one item extracted from a quick-add command.
type ParsedQuickAdd struct {
	Name          string           `json:"name"`
	Type          domain.BlockType `json:"type"`
	DoseExamples  []string         `json:"doseExamples,omitempty"`
	PersonalNotes string           `json:"personalNotes,omitempty"`
	RefID         string           `json:"refId,omitempty"`
}

// Version-history notes recorded on items created by each entry point.
const (
	NoteKnowledgeImport = "Knowledge Import"
	NoteQuickAdd        = "Quick-add"
	NoteCommandPalette  = "Command palette"
)

// Parser resolves extracted names against a catalog.
type Parser struct {
	catalog *catalog.Catalog
}

// New returns a parser over c, or over the embedded catalog when c is nil.
func New(c *catalog.Catalog) *Parser {
	if c == nil {
		c = catalog.Default()
	}
	return &Parser{catalog: c}
}

var (
	mgDose    = regexp.MustCompile(`(?i)\d+\s*mg\s*(?:daily|per day|/day|BID|QD)?`)
	gramDose  = regexp.MustCompile(`(?i)\d+(?:\.\d+)?\s*g\s*(?:daily|per day)?`)
	durations = regexp.MustCompile(`(?i)\d+\s*weeks?|\d+\s*months?`)
)

// ExtractDoses collects milligram, gram and duration phrases from text,
// first occurrence order, without duplicates.
func ExtractDoses(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, re := range []*regexp.Regexp{mgDose, gramDose, durations} {
		for _, m := range re.FindAllString(text, -1) {
			m = strings.TrimSpace(m)
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}

// ToCompendiumItem converts a parsed import into a compendium entry with a
// single version-history note.
func (p ParsedImportItem) ToCompendiumItem(id string, now time.Time, note string) domain.CompendiumItem {
	tags := append([]string{}, p.Tags...)
	return domain.CompendiumItem{
		ID:             id,
		Name:           p.Name,
		Type:           p.Type,
		RefID:          p.RefID,
		DoseExamples:   append([]string(nil), p.DoseExamples...),
		MoA:            p.MoA,
		PersonalNotes:  p.PersonalNotes,
		Tags:           tags,
		VersionHistory: []domain.VersionNote{{At: domain.FormatTimestamp(now), Note: note}},
		Links:          []domain.Link{},
	}
}

// ToCompendiumItem converts a quick-add result into a compendium entry.
func (q ParsedQuickAdd) ToCompendiumItem(id string, now time.Time, note string) domain.CompendiumItem {
	return ParsedImportItem{
		Name:          q.Name,
		Type:          q.Type,
		DoseExamples:  q.DoseExamples,
		PersonalNotes: q.PersonalNotes,
		RefID:         q.RefID,
	}.ToCompendiumItem(id, now, note)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func runeLen(s string) int { return len([]rune(s)) }
