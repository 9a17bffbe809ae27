package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCompendiumCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "compendium",
		Aliases: []string{"comp"},
		Short:   "Manage the personal compendium and saved modules",
	}
	var phase int
	addToPlan := &cobra.Command{
		Use:   "add-to-plan <item-id...>",
		Short: "Place compendium items in a phase of the current plan",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.svc.AddCompendiumItemsToPlan(cmd.Context(), phase, args) {
				return fmt.Errorf("no matching items or phase %d does not exist", phase)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "placed items in phase %d\n", phase)
			return nil
		},
	}
	addToPlan.Flags().IntVar(&phase, "phase", 0, "phase index")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "seed",
			Short: "Fill an empty compendium from the catalog",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if !a.svc.SeedCompendium(cmd.Context()) {
					fmt.Fprintln(cmd.OutOrStdout(), "compendium already populated")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d items\n", len(a.svc.CompendiumItems()))
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List compendium items",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				for _, it := range a.svc.CompendiumItems() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t[%s]\n", it.ID, it.Name, it.Type)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "search <query...>",
			Short: "Search compendium names, notes and tags",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				q := strings.Join(args, " ")
				a.svc.AddRecentCommandSearch(cmd.Context(), q)
				hits := a.svc.SearchCompendium(q)
				if len(hits) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no matches")
					return nil
				}
				for _, it := range hits {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t[%s]\n", it.ID, it.Name, it.Type)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "recent",
			Short: "Show recent searches, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				for _, q := range a.svc.State().RecentCommandSearches {
					fmt.Fprintln(cmd.OutOrStdout(), q)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <item-id>",
			Short: "Delete an item and drop it from saved modules",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if !a.svc.RemoveCompendiumItem(cmd.Context(), args[0]) {
					return fmt.Errorf("item %s not found", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed item %s\n", args[0])
				return nil
			},
		},
		addToPlan,
		newModuleCmd(a),
	)
	return cmd
}

func newModuleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "module",
		Short: "Manage saved modules (named item subsets)",
	}
	var items []string
	add := &cobra.Command{
		Use:   "add <name...>",
		Short: "Save a module from compendium item ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := a.svc.AddSavedModule(cmd.Context(), strings.Join(args, " "), items)
			fmt.Fprintf(cmd.OutOrStdout(), "saved module %s\n", id)
			return nil
		},
	}
	add.Flags().StringSliceVar(&items, "item", nil, "compendium item ids")
	cmd.AddCommand(
		add,
		&cobra.Command{
			Use:   "list",
			Short: "List saved modules",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				for _, m := range a.svc.SavedModules() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", m.ID, m.Name, strings.Join(m.ItemIDs, ","))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <module-id>",
			Short: "Delete a saved module",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if !a.svc.RemoveSavedModule(cmd.Context(), args[0]) {
					return fmt.Errorf("module %s not found", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed module %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}
