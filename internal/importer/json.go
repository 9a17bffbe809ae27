package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bioforge/pkg/domain"
)

const (
	tagImportedJSON = "Imported from JSON"
	unnamedItem     = "Unnamed"
)

// ParseJSON reads an array of item objects, or a single object, of the form
// {name|label|title, type, dose|doseExamples|duration, moa|description,
// notes|personalNotes|note, tags, refId|id}. Peptide entries are resolved
// against the catalog. Malformed JSON yields an empty result.
func (p *Parser) ParseJSON(raw string) []ParsedImportItem {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err != nil {
		return nil
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil
	}

	elems, ok := data.([]any)
	if !ok {
		elems = []any{data}
	}

	results := make([]ParsedImportItem, 0, len(elems))
	for _, elem := range elems {
		if elem == nil {
			return nil
		}
		obj, _ := elem.(map[string]any)
		results = append(results, p.parseJSONItem(obj))
	}
	return results
}

func (p *Parser) parseJSONItem(obj map[string]any) ParsedImportItem {
	name, ok := firstString(obj, "name", "label", "title")
	if !ok {
		name = unnamedItem
	}

	typ := domain.BlockPeptide
	if raw, ok := obj["type"].(string); ok {
		if t, known := domain.ParseBlockType(raw); known {
			typ = t
		}
	}

	var doses []string
	if v := obj["dose"]; truthy(v) {
		doses = append(doses, scalarString(v))
	}
	if arr, ok := obj["doseExamples"].([]any); ok {
		for _, d := range arr {
			doses = append(doses, scalarString(d))
		}
	}
	if v := obj["duration"]; truthy(v) {
		doses = append(doses, scalarString(v))
	}

	item := ParsedImportItem{
		Name:         name,
		Type:         typ,
		DoseExamples: doses,
	}

	var pep domain.CatalogPeptide
	matched := false
	if typ == domain.BlockPeptide {
		pep, matched = p.catalog.FindPeptide(name)
	}
	if matched {
		item.Name = pep.Name
		item.RefID = pep.ID
	} else if ref, ok := firstPresent(obj, "refId", "id"); ok {
		item.RefID = ref
	}

	if moa, ok := firstPresent(obj, "moa", "description"); ok {
		item.MoA = moa
	} else if matched {
		item.MoA = pep.MoA
	}
	item.PersonalNotes, _ = firstPresent(obj, "notes", "personalNotes", "note")

	switch tags := obj["tags"].(type) {
	case []any:
		item.Tags = make([]string, 0, len(tags))
		for _, t := range tags {
			item.Tags = append(item.Tags, scalarString(t))
		}
	default:
		if truthy(tags) {
			item.Tags = []string{scalarString(tags)}
		} else {
			item.Tags = []string{tagImportedJSON}
		}
	}

	moaText, _ := firstPresent(obj, "moa", "description")
	notesText, _ := firstPresent(obj, "notes")
	item.OrganIDs = p.catalog.InferOrgans(moaText + " " + notesText)
	return item
}

// firstPresent returns the first key holding a non-null value.
func firstPresent(obj map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return scalarString(v), true
		}
	}
	return "", false
}

// firstString returns the first key holding a string. Numbers and other
// scalars are not names.
func firstString(obj map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := obj[k].(string); ok {
			return v, true
		}
	}
	return "", false
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		if f, err := strconv.ParseFloat(t.String(), 64); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = scalarString(e)
		}
		return strings.Join(parts, ",")
	default:
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(t); err != nil {
			return fmt.Sprint(t)
		}
		return strings.TrimSpace(buf.String())
	}
}
