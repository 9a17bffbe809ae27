package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bioforge/internal/catalog"
	"bioforge/pkg/domain"
)

func newLogCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record and review doses, biomarkers and symptoms",
	}
	cmd.PersistentFlags().StringVar(&date, "date", "", "entry date as YYYY-MM-DD (default today)")
	day := func() string {
		if date != "" {
			return date
		}
		return a.today()
	}

	var skipped bool
	dose := &cobra.Command{
		Use:   "dose <block-id>",
		Short: "Mark a plan block as taken (or skipped) for a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry := domain.DoseLogEntry{Date: day(), PlanBlockID: args[0], Taken: !skipped}
			if plan := a.svc.CurrentPlan(); plan != nil {
				for _, b := range plan.Blocks() {
					if b.ID == args[0] {
						entry.RefID = b.RefID
						entry.Label = b.Label
						break
					}
				}
			}
			a.svc.LogDose(cmd.Context(), entry)
			state := "taken"
			if skipped {
				state = "skipped"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s on %s\n", state, args[0], entry.Date)
			return nil
		},
	}
	dose.Flags().BoolVar(&skipped, "skipped", false, "record the dose as not taken")

	var unit string
	biomarker := &cobra.Command{
		Use:   "biomarker <name> <value>",
		Short: "Record a biomarker measurement",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[1], err)
			}
			name := biomarkerName(a.svc.Catalog(), args[0])
			id := a.svc.AddBiomarkerLog(cmd.Context(), domain.BiomarkerLog{
				Date:          day(),
				BiomarkerID:   catalog.Slug(name),
				BiomarkerName: name,
				Value:         value,
				Unit:          unit,
			})
			fmt.Fprintf(cmd.OutOrStdout(), "logged %s = %s%s id=%s\n", name, args[1], unit, id)
			return nil
		},
	}
	biomarker.Flags().StringVar(&unit, "unit", "", "measurement unit")

	symptom := &cobra.Command{
		Use:   "symptom <text...>",
		Short: "Record a dated symptom note",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := a.svc.AddSymptom(cmd.Context(), day(), strings.Join(args, " "))
			fmt.Fprintf(cmd.OutOrStdout(), "logged symptom %s\n", id)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the doses logged for a day and all measurements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			d := day()
			fmt.Fprintf(out, "doses on %s:\n", d)
			for _, e := range a.svc.DosesForDate(d) {
				fmt.Fprintf(out, "  %s %s taken=%t\n", e.PlanBlockID, e.Label, e.Taken)
			}
			st := a.svc.State()
			fmt.Fprintln(out, "biomarkers:")
			for _, l := range st.BiomarkerLogs {
				fmt.Fprintf(out, "  %s %s %s%s\n", l.Date, l.BiomarkerName, strconv.FormatFloat(l.Value, 'f', -1, 64), l.Unit)
			}
			fmt.Fprintln(out, "symptoms:")
			for _, s := range st.SymptomEntries {
				fmt.Fprintf(out, "  %s %s %s\n", s.ID, s.Date, s.Text)
			}
			return nil
		},
	}

	deleteSymptom := &cobra.Command{
		Use:   "delete-symptom <id>",
		Short: "Delete a symptom note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.svc.DeleteSymptom(cmd.Context(), args[0]) {
				return fmt.Errorf("symptom %s not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted symptom %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(dose, biomarker, symptom, show, deleteSymptom)
	return cmd
}

// biomarkerName returns the catalog spelling of raw when it names a tracked
// biomarker, otherwise raw itself.
func biomarkerName(c *catalog.Catalog, raw string) string {
	for _, b := range c.Biomarkers() {
		if strings.EqualFold(b, raw) {
			return b
		}
	}
	return raw
}

func newAlertsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Manage biomarker re-test reminders",
	}
	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List active re-test alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			alerts := a.svc.ActiveRetestAlerts()
			if all {
				alerts = a.svc.State().RetestAlerts
			}
			if len(alerts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no alerts")
				return nil
			}
			for _, al := range alerts {
				status := "active"
				if al.Dismissed {
					status = "dismissed"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tdue %s\t%s\n", al.ID, al.BiomarkerName, al.DueDate, status)
			}
			return nil
		},
	}
	list.Flags().BoolVar(&all, "all", false, "include dismissed alerts")

	cmd.AddCommand(
		list,
		&cobra.Command{
			Use:   "add <biomarker> <due-date>",
			Short: "Schedule a re-test reminder",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				name := biomarkerName(a.svc.Catalog(), args[0])
				id := a.svc.AddRetestAlert(cmd.Context(), domain.RetestAlert{
					BiomarkerID:   catalog.Slug(name),
					BiomarkerName: name,
					DueDate:       args[1],
				})
				fmt.Fprintf(cmd.OutOrStdout(), "added alert %s\n", id)
				return nil
			},
		},
		&cobra.Command{
			Use:   "dismiss <id>",
			Short: "Dismiss a re-test reminder",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if !a.svc.DismissRetestAlert(cmd.Context(), args[0]) {
					return fmt.Errorf("alert %s not found or already dismissed", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "dismissed alert %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}
