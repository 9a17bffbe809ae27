package importer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"bioforge/internal/catalog"
	"bioforge/pkg/domain"
)

const (
	tagImportedText = "Imported from text"
	fallbackName    = "Imported note"

	snippetBefore   = 20
	snippetAfter    = 80
	noteMinSnippet  = 60
	noteMaxSnippet  = 120
	fallbackNameMax = 120
	fallbackNoteMax = 300
)

var contextTags = []string{"gut repair", "energy", "preconception", "mitochondria", "case study", "RCT", "2025", "2026", "Nature"}

// namePattern builds a case-insensitive pattern for a catalog name that
// tolerates any whitespace between its words.
func namePattern(name string) *regexp.Regexp {
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(words, `\s*`))
}

// ParseText scans free text for catalog peptides and tracked biomarkers. Each
// peptide yields one item carrying a snippet around its first mention, the
// doses and context tags found in that snippet and the inferred body regions.
// Non-empty text with no matches yields exactly one fallback item built from
// the first line.
func (p *Parser) ParseText(raw string) []ParsedImportItem {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}

	var results []ParsedImportItem
	seen := make(map[string]struct{})
	runes := []rune(text)

	for _, pep := range p.catalog.Peptides() {
		loc := namePattern(pep.Name).FindStringIndex(text)
		if loc == nil {
			continue
		}
		if _, dup := seen[pep.ID]; dup {
			continue
		}
		seen[pep.ID] = struct{}{}

		at := utf8.RuneCountInString(text[:loc[0]])
		start := max(0, at-snippetBefore)
		end := min(len(runes), at+snippetAfter)
		snippet := string(runes[start:end])

		item := ParsedImportItem{
			Name:         pep.Name,
			Type:         domain.BlockPeptide,
			RefID:        pep.ID,
			MoA:          pep.MoA,
			DoseExamples: ExtractDoses(snippet),
			Tags:         extractContextTags(snippet),
			OrganIDs:     p.catalog.InferOrgans(snippet + " " + pep.MoA),
		}
		if runeLen(snippet) > noteMinSnippet {
			item.PersonalNotes = strings.TrimSpace(truncateRunes(snippet, noteMaxSnippet)) + "…"
		}
		if len(item.Tags) == 0 {
			item.Tags = []string{tagImportedText}
		}
		results = append(results, item)
	}

	lower := strings.ToLower(text)
	for _, bm := range p.catalog.Biomarkers() {
		key := catalog.TestRefID(bm)
		if _, dup := seen[key]; dup || !strings.Contains(lower, strings.ToLower(bm)) {
			continue
		}
		seen[key] = struct{}{}
		results = append(results, ParsedImportItem{
			Name:     bm,
			Type:     domain.BlockTest,
			RefID:    key,
			Tags:     []string{tagImportedText},
			OrganIDs: p.catalog.InferOrgans(text),
		})
	}

	if len(results) == 0 {
		results = append(results, p.fallbackItem(text))
	}
	return results
}

func (p *Parser) fallbackItem(text string) ParsedImportItem {
	firstLine, _, _ := strings.Cut(text, "\n")
	name := truncateRunes(strings.TrimSpace(firstLine), fallbackNameMax)
	if name == "" {
		name = fallbackName
	}
	notes := text
	if runeLen(text) > noteMaxSnippet {
		notes = strings.TrimSpace(truncateRunes(text, fallbackNoteMax)) + "…"
	}
	return ParsedImportItem{
		Name:          name,
		Type:          domain.BlockPeptide,
		DoseExamples:  ExtractDoses(text),
		PersonalNotes: notes,
		Tags:          []string{tagImportedText},
		OrganIDs:      p.catalog.InferOrgans(text),
	}
}

func extractContextTags(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, t := range contextTags {
		if strings.Contains(lower, strings.ToLower(t)) {
			out = append(out, t)
		}
	}
	return out
}

var (
	reApheresis    = regexp.MustCompile(`\bapheresis\b`)
	reToxin        = regexp.MustCompile(`\btoxin\b`)
	rePFAS         = regexp.MustCompile(`\bpfas\b`)
	reGrowthFactor = regexp.MustCompile(`\b(gdf11|bdnf|growth factor)\b`)
	reGutBlood     = regexp.MustCompile(`\bgut-blood\b`)
	reGut          = regexp.MustCompile(`\bgut\b`)
	reAxis         = regexp.MustCompile(`\baxis\b`)
	reChemical     = regexp.MustCompile(`\bchemical\b`)
)

// SuggestModules proposes saved-module names from the topics a document
// covers.
func SuggestModules(raw string) []string {
	text := strings.ToLower(strings.TrimSpace(raw))
	var out []string
	if reApheresis.MatchString(text) && (reToxin.MatchString(text) || rePFAS.MatchString(text)) {
		out = append(out, "Apheresis Toxin Reduction Stack")
	}
	if reGrowthFactor.MatchString(text) {
		out = append(out, "Growth Factor Optimization")
	}
	if reGutBlood.MatchString(text) || (reGut.MatchString(text) && reAxis.MatchString(text)) {
		out = append(out, "Gut-Blood Axis Protocol")
	}
	if rePFAS.MatchString(text) && reChemical.MatchString(text) {
		out = append(out, "PFAS & Chemical Mixture Mitigation")
	}
	return out
}
