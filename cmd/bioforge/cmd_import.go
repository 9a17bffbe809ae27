package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bioforge/internal/importer"
	"bioforge/pkg/domain"
)

func newImportCmd(a *app) *cobra.Command {
	var phase int
	var toPlan bool
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import research notes into the compendium",
	}
	run := func(kind string) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			p := importer.New(a.svc.Catalog())
			var items []importer.ParsedImportItem
			if kind == "json" {
				items = p.ParseJSON(raw)
			} else {
				items = p.ParseText(raw)
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "nothing to import")
				return nil
			}
			ids := make([]string, 0, len(items))
			for _, it := range items {
				id := a.svc.AddCompendiumItem(cmd.Context(), it.ToCompendiumItem("", a.now(), importer.NoteKnowledgeImport))
				ids = append(ids, id)
				fmt.Fprintf(out, "imported %s [%s] id=%s\n", it.Name, it.Type, id)
			}
			if toPlan && !a.svc.AddCompendiumItemsToPlan(cmd.Context(), phase, ids) {
				return fmt.Errorf("phase %d does not exist", phase)
			}
			if kind == "text" {
				for _, s := range importer.SuggestModules(raw) {
					fmt.Fprintf(out, "suggested module: %s\n", s)
				}
			}
			return nil
		}
	}
	textCmd := &cobra.Command{
		Use:   "text <file|->",
		Short: "Extract peptides and biomarkers from free text",
		Args:  cobra.ExactArgs(1),
		RunE:  run("text"),
	}
	jsonCmd := &cobra.Command{
		Use:   "json <file|->",
		Short: "Import an item object or array of items",
		Args:  cobra.ExactArgs(1),
		RunE:  run("json"),
	}
	cmd.PersistentFlags().BoolVar(&toPlan, "to-plan", false, "also place the imported items in the current plan")
	cmd.PersistentFlags().IntVar(&phase, "phase", 0, "phase index used with --to-plan")
	cmd.AddCommand(textCmd, jsonCmd)
	return cmd
}

func newQuickAddCmd(a *app) *cobra.Command {
	var multi bool
	var phase int
	cmd := &cobra.Command{
		Use:   "quick-add <command...>",
		Short: `Add items from a one-line command such as "Add KPV 500mg daily for 8 weeks"`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			line := strings.Join(args, " ")
			a.svc.AddRecentCommandSearch(cmd.Context(), line)
			p := importer.New(a.svc.Catalog())
			var parsed []importer.ParsedQuickAdd
			if multi {
				parsed = p.ParseQuickAddMultiple(line)
			} else if q, ok := p.ParseQuickAdd(line); ok {
				parsed = []importer.ParsedQuickAdd{q}
			}
			if len(parsed) == 0 {
				return fmt.Errorf("could not parse %q", line)
			}
			out := cmd.OutOrStdout()
			for _, q := range parsed {
				item := q.ToCompendiumItem("", a.now(), importer.NoteQuickAdd)
				item.ID = a.svc.AddCompendiumItem(cmd.Context(), item)
				if !a.svc.AddCompendiumItemToPlan(cmd.Context(), phase, item) {
					return fmt.Errorf("phase %d does not exist", phase)
				}
				fmt.Fprintf(out, "added %s to phase %d", q.Name, phase)
				if len(q.DoseExamples) > 0 {
					fmt.Fprintf(out, " (%s)", strings.Join(q.DoseExamples, ", "))
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&multi, "multi", false, "split stacked names joined by +, and, stack")
	cmd.Flags().IntVar(&phase, "phase", 0, "phase index to place the items in")
	return cmd
}

func parseBlockType(raw string) (domain.BlockType, error) {
	t, ok := domain.ParseBlockType(raw)
	if !ok {
		return "", fmt.Errorf("unknown block type %q", raw)
	}
	return t, nil
}
