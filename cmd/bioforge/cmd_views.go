package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bioforge/internal/export"
	"bioforge/internal/protocol"
	"bioforge/pkg/domain"
)

func newFocusCmd(a *app) *cobra.Command {
	var module string
	cmd := &cobra.Command{
		Use:   "focus [mode]",
		Short: "Show or set the focus mode",
		Long: `Without an argument, print the focus mode and the focused plan.

Modes: full, peptides-only, preconception, gut-repair, compendium-custom.
compendium-custom shows only blocks from the saved module given by --module.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				mode, ok := domain.ParseFocusMode(args[0])
				if !ok {
					return fmt.Errorf("unknown focus mode %q", args[0])
				}
				a.svc.SetFocusMode(cmd.Context(), mode, module)
			}
			st := a.svc.State()
			fmt.Fprintf(out, "focus: %s", st.FocusMode)
			if st.FocusModuleID != nil {
				fmt.Fprintf(out, " (module %s)", *st.FocusModuleID)
			}
			fmt.Fprintln(out)
			printPlan(out, a.svc.FocusedPlan())
			return nil
		},
	}
	cmd.Flags().StringVar(&module, "module", "", "saved module id for compendium-custom")
	return cmd
}

func newProtocolCmd(a *app) *cobra.Command {
	var format string
	var doExport bool
	cmd := &cobra.Command{
		Use:   "protocol",
		Short: "Render the current plan as a protocol document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if doExport {
				info, err := a.exporter.Protocol(cmd.Context(), a.svc.CurrentPlan(), f)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "exported %s (%d bytes)\n", info.Key, info.Size)
				return nil
			}
			if protocol.Empty(a.svc.CurrentPlan()) {
				fmt.Fprintln(out, "plan is empty")
				return nil
			}
			doc, err := export.Render(a.svc.Protocol(), f)
			if err != nil {
				return err
			}
			_, err = out.Write(doc)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", string(export.FormatMarkdown), "markdown or html")
	cmd.Flags().BoolVar(&doExport, "export", false, "write the document to the blob store")
	return cmd
}

func newGraphCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the synergy graph of the current plan as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), a.svc.SynergyGraph())
		},
	}
}

func newCheckCmd(a *app) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run advisory checks on the current and saved plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := a.svc.CheckCurrentPlan(cmd.Context())
			out := cmd.OutOrStdout()
			if len(res.Violations) == 0 {
				fmt.Fprintln(out, "no findings")
				return nil
			}
			for _, v := range res.Violations {
				fmt.Fprintf(out, "[%s] %s: %s\n", strings.ToUpper(string(v.Severity)), v.Rule, v.Message)
			}
			if strict && res.HasWarnings() {
				return fmt.Errorf("plan checks reported warnings")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any warning is reported")
	return cmd
}
