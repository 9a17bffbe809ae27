package catalog

import (
	"regexp"
	"strings"

	"bioforge/pkg/domain"
)

var (
	tokenSplit = regexp.MustCompile(`[\s(/]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// LeadToken returns the lower-cased part of name before the first whitespace,
// "(" or "/". "SS-31 / Elamipretide" yields "ss-31".
func LeadToken(name string) string {
	return strings.ToLower(tokenSplit.Split(name, 2)[0])
}

// Slug lower-cases s and joins whitespace runs with hyphens.
func Slug(s string) string {
	return whitespace.ReplaceAllString(strings.ToLower(s), "-")
}

// MatchName is the single fuzzy rule shared by the parsers and the synergy
// graph. A candidate matches an entry when the entry name contains the
// candidate, when the candidate contains the entry name's lead token, or when
// the slugged candidate equals the entry id. Comparisons ignore case; empty
// candidates and empty lead tokens never match.
func MatchName(candidate, name, id string) bool {
	c := strings.ToLower(candidate)
	if c == "" {
		return false
	}
	if strings.Contains(strings.ToLower(name), c) {
		return true
	}
	if tok := LeadToken(name); tok != "" && strings.Contains(c, tok) {
		return true
	}
	return id != "" && Slug(candidate) == id
}

// FindPeptide returns the first peptide, in catalog order, matching candidate.
func (c *Catalog) FindPeptide(candidate string) (domain.CatalogPeptide, bool) {
	for _, p := range c.doc.Peptides {
		if MatchName(candidate, p.Name, p.ID) {
			return clonePeptide(p), true
		}
	}
	return domain.CatalogPeptide{}, false
}

// InferOrgans returns the organs whose keywords occur in text, in keyword
// table order, without duplicates.
func (c *Catalog) InferOrgans(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	seen := make(map[string]struct{})
	for _, entry := range c.doc.OrganKeywords {
		if _, dup := seen[entry.Organ]; dup {
			continue
		}
		for _, k := range entry.Keywords {
			if strings.Contains(lower, k) {
				seen[entry.Organ] = struct{}{}
				out = append(out, entry.Organ)
				break
			}
		}
	}
	return out
}
