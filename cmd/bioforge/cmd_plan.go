package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"bioforge/pkg/domain"
)

func newPlanCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show and edit the current plan and saved plans",
	}
	cmd.AddCommand(
		newPlanShowCmd(a),
		&cobra.Command{
			Use:   "save <name...>",
			Short: "Save the current plan under a name",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, ok := a.svc.SaveCurrentPlan(cmd.Context(), strings.Join(args, " "))
				if !ok {
					return fmt.Errorf("no current plan to save")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved plan %s\n", id)
				return nil
			},
		},
		&cobra.Command{
			Use:   "load <id>",
			Short: "Make a saved plan current",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if !a.svc.LoadPlan(cmd.Context(), args[0]) {
					return fmt.Errorf("plan %s not found", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "loaded plan %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List saved plans; * marks the current one",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				out := cmd.OutOrStdout()
				current := a.svc.CurrentPlan()
				plans := a.svc.SavedPlans()
				if len(plans) == 0 {
					fmt.Fprintln(out, "no saved plans")
					return nil
				}
				for _, p := range plans {
					mark := " "
					if current != nil && current.ID == p.ID {
						mark = "*"
					}
					fmt.Fprintf(out, "%s %s\t%s\t%d blocks\n", mark, p.ID, p.Name, p.BlockCount())
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a saved plan",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if !a.svc.DeletePlan(cmd.Context(), args[0]) {
					return fmt.Errorf("plan %s not found", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted plan %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "duplicate <id>",
			Short: "Copy a saved plan and make the copy current",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, ok := a.svc.DuplicatePlan(cmd.Context(), args[0])
				if !ok {
					return fmt.Errorf("plan %s not found", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "duplicated plan %s as %s\n", args[0], id)
				return nil
			},
		},
		newPlanAddCmd(a),
		newPlanRemoveCmd(a),
		newPlanMoveCmd(a),
		newPlanTagCmd(a),
	)
	return cmd
}

func newPlanShowCmd(a *app) *cobra.Command {
	var asJSON, focused bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan := a.svc.CurrentPlan()
			if focused {
				plan = a.svc.FocusedPlan()
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), plan)
			}
			printPlan(cmd.OutOrStdout(), plan)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the plan as JSON")
	cmd.Flags().BoolVar(&focused, "focused", false, "apply the current focus mode")
	return cmd
}

func newPlanAddCmd(a *app) *cobra.Command {
	var (
		phase, week            int
		typ, ref, label, notes string
		organs                 []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a block to a phase of the current plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bt, err := parseBlockType(typ)
			if err != nil {
				return err
			}
			if label == "" {
				if pep, ok := a.svc.Catalog().Peptide(ref); ok {
					label = pep.Name
				} else {
					label = ref
				}
			}
			if label == "" {
				return fmt.Errorf("--label or --ref is required")
			}
			id := "block-" + uuid.NewString()
			if a.newID != nil {
				id = "block-" + a.newID()
			}
			draft := domain.BlockDraft{ID: id, Type: bt, RefID: ref, Label: label, Notes: notes, OrganIDs: organs}
			if !a.svc.AddBlockToPhase(cmd.Context(), phase, week, draft) {
				return fmt.Errorf("phase %d does not exist", phase)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added block %s to phase %d\n", id, phase)
			return nil
		},
	}
	cmd.Flags().IntVar(&phase, "phase", 0, "phase index")
	cmd.Flags().IntVar(&week, "week", 0, "week offset inside the phase")
	cmd.Flags().StringVar(&typ, "type", string(domain.BlockPeptide), "block type")
	cmd.Flags().StringVar(&ref, "ref", "", "catalog or compendium reference id")
	cmd.Flags().StringVar(&label, "label", "", "display label (defaults to the catalog name)")
	cmd.Flags().StringVar(&notes, "notes", "", "free-text notes")
	cmd.Flags().StringSliceVar(&organs, "organ", nil, "organ ids to tag")
	return cmd
}

func newPlanRemoveCmd(a *app) *cobra.Command {
	var phase int
	cmd := &cobra.Command{
		Use:   "remove <block-id>",
		Short: "Remove a block from a phase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.svc.RemoveBlock(cmd.Context(), phase, args[0]) {
				return fmt.Errorf("block %s not found in phase %d", args[0], phase)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed block %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().IntVar(&phase, "phase", 0, "phase index holding the block")
	return cmd
}

func newPlanMoveCmd(a *app) *cobra.Command {
	var from, to, week int
	cmd := &cobra.Command{
		Use:   "move <block-id>",
		Short: "Move a block to another phase and week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.svc.MoveBlock(cmd.Context(), from, args[0], to, week) {
				return fmt.Errorf("cannot move block %s from phase %d to phase %d", args[0], from, to)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "moved block %s to phase %d week %d\n", args[0], to, week)
			return nil
		},
	}
	cmd.Flags().IntVar(&from, "from", 0, "source phase index")
	cmd.Flags().IntVar(&to, "to", 0, "destination phase index")
	cmd.Flags().IntVar(&week, "week", 0, "destination week offset")
	return cmd
}

func newPlanTagCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tag <block-id> <organ-id>",
		Short: "Tag a block with a body region",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.svc.TagBlockOrgan(cmd.Context(), args[0], args[1]) {
				return fmt.Errorf("cannot tag block %s with %s", args[0], args[1])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tagged %s with %s\n", args[0], args[1])
			return nil
		},
	}
}
