package protocol

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// mdRenderer keeps goldmark's safe default: raw HTML in labels and notes is
// omitted from the output, not escaped.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// RenderMarkdown writes the protocol as a Markdown document.
func RenderMarkdown(p *GeneratedProtocol) []byte {
	var b bytes.Buffer
	if p == nil {
		return b.Bytes()
	}
	fmt.Fprintf(&b, "# %s\n\n", p.PlanName)
	if p.UpdatedAt != "" {
		fmt.Fprintf(&b, "_Updated %s_\n\n", p.UpdatedAt)
	}

	for _, ph := range p.Phases {
		fmt.Fprintf(&b, "## %s (%s)\n\n", ph.Name, ph.WeekRange)
		if len(ph.Blocks) == 0 {
			b.WriteString("No blocks scheduled.\n\n")
			continue
		}
		for _, blk := range ph.Blocks {
			fmt.Fprintf(&b, "- **%s** (%s)", blk.Label, blk.Type)
			if blk.Form != "" {
				fmt.Fprintf(&b, ", %s", blk.Form)
			}
			if blk.Notes != "" {
				fmt.Fprintf(&b, ": %s", strings.ReplaceAll(blk.Notes, "\n", " "))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		writeSection(&b, "Doses", ph.Doses)
		writeSection(&b, "Evidence", ph.Evidence)
		writeSection(&b, "Risks", ph.Risks)
		writeSection(&b, "Potential synergies", ph.Synergies)
	}

	if len(p.DoctorScripts) > 0 {
		b.WriteString("## Doctor scripts\n\n")
		writeList(&b, p.DoctorScripts)
	}
	if len(p.BiomarkerGates) > 0 {
		b.WriteString("## Biomarker gates\n\n")
		writeList(&b, p.BiomarkerGates)
	}
	return b.Bytes()
}

func writeSection(b *bytes.Buffer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	writeList(b, items)
}

func writeList(b *bytes.Buffer, items []string) {
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
	b.WriteString("\n")
}

// RenderHTML converts the Markdown rendition into a standalone HTML page.
func RenderHTML(p *GeneratedProtocol) ([]byte, error) {
	var body bytes.Buffer
	if err := mdRenderer.Convert(RenderMarkdown(p), &body); err != nil {
		return nil, fmt.Errorf("render protocol html: %w", err)
	}
	title := "Protocol"
	if p != nil && p.PlanName != "" {
		title = p.PlanName
	}
	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&out, "<title>%s</title>\n", html.EscapeString(title))
	out.WriteString("</head>\n<body>\n")
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")
	return out.Bytes(), nil
}
