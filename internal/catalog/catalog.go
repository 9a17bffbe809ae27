// Package catalog exposes the read-only reference data (peptides, biomarker
// tiers, mission modes and body regions) that parsers and derivations resolve
// plan content against.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sync"

	"bioforge/pkg/domain"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// Organ is a body region blocks can be tagged with.
type Organ struct {
	ID          string   `yaml:"id" json:"id"`
	Label       string   `yaml:"label" json:"label"`
	Connections []string `yaml:"connections" json:"connections"`
}

// OrganConnection is an undirected edge between two body regions.
type OrganConnection struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
}

type axisLabel struct {
	From  string `yaml:"from"`
	To    string `yaml:"to"`
	Label string `yaml:"label"`
}

type organKeywords struct {
	Organ    string   `yaml:"organ"`
	Keywords []string `yaml:"keywords"`
}

type seedDocument struct {
	Version            string                    `yaml:"version"`
	MissionModes       []domain.MissionMode      `yaml:"missionModes"`
	BiomarkerHierarchy domain.BiomarkerHierarchy `yaml:"biomarkerHierarchy"`
	Peptides           []domain.CatalogPeptide   `yaml:"peptides"`
	CoreFrameworks     []string                  `yaml:"coreFrameworks"`
	StarterProtocol    string                    `yaml:"starterProtocol"`
	Organs             []Organ                   `yaml:"organs"`
	AxisLabels         []axisLabel               `yaml:"axisLabels"`
	OrganKeywords      []organKeywords           `yaml:"organKeywords"`
}

// Catalog is an immutable lookup table over the seed document.
type Catalog struct {
	doc      seedDocument
	byID     map[string]domain.CatalogPeptide
	organSet map[string]struct{}
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog built from the embedded seed. The seed is
// compiled into the binary, so a decode failure is a programming error.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(bytes.NewReader(seedYAML))
		if err != nil {
			panic(fmt.Errorf("catalog: embedded seed: %w", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Load decodes a seed document.
func Load(r io.Reader) (*Catalog, error) {
	var doc seedDocument
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	c := &Catalog{
		doc:      doc,
		byID:     make(map[string]domain.CatalogPeptide, len(doc.Peptides)),
		organSet: make(map[string]struct{}, len(doc.Organs)),
	}
	for _, p := range doc.Peptides {
		if p.ID == "" {
			return nil, fmt.Errorf("peptide %q missing id", p.Name)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate peptide id %q", p.ID)
		}
		c.byID[p.ID] = p
	}
	for _, o := range doc.Organs {
		c.organSet[o.ID] = struct{}{}
	}
	return c, nil
}

// Version returns the seed version string.
func (c *Catalog) Version() string { return c.doc.Version }

// StarterProtocol returns the suggested starting regimen text.
func (c *Catalog) StarterProtocol() string { return c.doc.StarterProtocol }

// CoreFrameworks lists the framework names shown alongside the catalog.
func (c *Catalog) CoreFrameworks() []string {
	return append([]string(nil), c.doc.CoreFrameworks...)
}

// Peptide looks up a peptide by id.
func (c *Catalog) Peptide(id string) (domain.CatalogPeptide, bool) {
	p, ok := c.byID[id]
	if !ok {
		return domain.CatalogPeptide{}, false
	}
	return clonePeptide(p), true
}

// Peptides returns all peptides in catalog order.
func (c *Catalog) Peptides() []domain.CatalogPeptide {
	out := make([]domain.CatalogPeptide, len(c.doc.Peptides))
	for i, p := range c.doc.Peptides {
		out[i] = clonePeptide(p)
	}
	return out
}

// BiomarkerHierarchy returns the full tiered biomarker list.
func (c *Catalog) BiomarkerHierarchy() domain.BiomarkerHierarchy {
	h := c.doc.BiomarkerHierarchy
	return domain.BiomarkerHierarchy{
		Tier1: append([]string(nil), h.Tier1...),
		Tier2: append([]string(nil), h.Tier2...),
		Tier3: append([]string(nil), h.Tier3...),
	}
}

// Biomarkers returns the tier1 then tier2 biomarkers, the set tracked and
// re-tested by default.
func (c *Catalog) Biomarkers() []string {
	h := c.doc.BiomarkerHierarchy
	out := make([]string, 0, len(h.Tier1)+len(h.Tier2))
	out = append(out, h.Tier1...)
	return append(out, h.Tier2...)
}

// MissionModes returns the goal presets.
func (c *Catalog) MissionModes() []domain.MissionMode {
	return append([]domain.MissionMode(nil), c.doc.MissionModes...)
}

// Organs returns the body regions in display order.
func (c *Catalog) Organs() []Organ {
	out := make([]Organ, len(c.doc.Organs))
	for i, o := range c.doc.Organs {
		out[i] = Organ{ID: o.ID, Label: o.Label, Connections: append([]string(nil), o.Connections...)}
	}
	return out
}

// IsOrgan reports whether id names a known body region.
func (c *Catalog) IsOrgan(id string) bool {
	_, ok := c.organSet[id]
	return ok
}

// OrganConnections returns each undirected organ edge once, in declaration
// order, labelled where a named axis exists.
func (c *Catalog) OrganConnections() []OrganConnection {
	labels := make(map[[2]string]string, len(c.doc.AxisLabels))
	for _, a := range c.doc.AxisLabels {
		labels[[2]string{a.From, a.To}] = a.Label
	}
	seen := make(map[[2]string]struct{})
	var out []OrganConnection
	for _, o := range c.doc.Organs {
		for _, to := range o.Connections {
			key := [2]string{o.ID, to}
			if to < o.ID {
				key = [2]string{to, o.ID}
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, OrganConnection{From: o.ID, To: to, Label: labels[[2]string{o.ID, to}]})
		}
	}
	return out
}

func clonePeptide(p domain.CatalogPeptide) domain.CatalogPeptide {
	cp := p
	if p.Synergies != nil {
		cp.Synergies = append([]string(nil), p.Synergies...)
	}
	return cp
}
