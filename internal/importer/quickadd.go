package importer

import (
	"regexp"
	"strings"

	"bioforge/pkg/domain"
)

var (
	leadingVerb   = regexp.MustCompile(`(?i)^(add|start)\s+`)
	withClause    = regexp.MustCompile(`(?i)\s+with\s+(.+)$`)
	forClause     = regexp.MustCompile(`(?i)\s+for\s+(\d+\s*weeks?|\d+\s*months?|\d+\s*days?)`)
	quickMgDose   = regexp.MustCompile(`(?i)\d+\s*mg\s*(?:daily|per day|/day)?`)
	stackSplitter = regexp.MustCompile(`(?i)\s+and\s+|\s*\+\s*|\s+stack\s+`)
)

type quickClauses struct {
	rest  string
	note  string
	doses []string
}

// splitClauses strips the leading verb and pulls the trailing "with ..." note
// and "for N weeks|months|days" duration out of a quick-add command.
func splitClauses(raw string) quickClauses {
	rest := strings.TrimSpace(leadingVerb.ReplaceAllString(strings.TrimSpace(raw), ""))
	var qc quickClauses
	if m := withClause.FindStringSubmatchIndex(rest); m != nil {
		qc.note = strings.TrimSpace(rest[m[2]:m[3]])
		rest = strings.TrimSpace(rest[:m[0]] + rest[m[1]:])
	}
	if m := forClause.FindStringSubmatchIndex(rest); m != nil {
		qc.doses = append(qc.doses, strings.TrimSpace(rest[m[2]:m[3]]))
		rest = strings.TrimSpace(rest[:m[0]] + rest[m[1]:])
	}
	qc.rest = rest
	return qc
}

func splitStack(rest string) []string {
	var out []string
	for _, part := range stackSplitter.Split(rest, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseQuickAdd reads a command such as
// "Add Urolithin A 500mg daily for 12 weeks with mitophagy note". Only the
// first stacked name is kept; see ParseQuickAddMultiple for stacks. It
// reports false when no name remains after the clauses are stripped.
func (p *Parser) ParseQuickAdd(raw string) (ParsedQuickAdd, bool) {
	if strings.TrimSpace(raw) == "" {
		return ParsedQuickAdd{}, false
	}
	qc := splitClauses(raw)
	rest := qc.rest
	if loc := quickMgDose.FindStringIndex(rest); loc != nil {
		qc.doses = append(qc.doses, strings.TrimSpace(rest[loc[0]:loc[1]]))
		rest = strings.TrimSpace(rest[:loc[0]] + rest[loc[1]:])
	}

	name := ""
	if parts := splitStack(rest); len(parts) > 0 {
		name = parts[0]
	} else {
		name = rest
	}
	if name == "" {
		return ParsedQuickAdd{}, false
	}

	out := ParsedQuickAdd{
		Name:          name,
		Type:          domain.BlockPeptide,
		DoseExamples:  qc.doses,
		PersonalNotes: qc.note,
	}
	if pep, ok := p.catalog.FindPeptide(name); ok {
		out.Name = pep.Name
		out.RefID = pep.ID
	}
	return out, true
}

// ParseQuickAddMultiple splits a stack command such as
// "Urolithin A + SS-31 for 8 weeks" into one item per name. Every item shares
// the command's duration and note.
func (p *Parser) ParseQuickAddMultiple(raw string) []ParsedQuickAdd {
	qc := splitClauses(raw)
	var results []ParsedQuickAdd
	for _, part := range splitStack(qc.rest) {
		item := ParsedQuickAdd{
			Name:          part,
			Type:          domain.BlockPeptide,
			DoseExamples:  append([]string(nil), qc.doses...),
			PersonalNotes: qc.note,
		}
		if pep, ok := p.catalog.FindPeptide(part); ok {
			item.Name = pep.Name
			item.RefID = pep.ID
		}
		results = append(results, item)
	}
	return results
}
