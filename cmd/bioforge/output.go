package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"

	"bioforge/pkg/domain"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printPlan writes a human-readable outline of plan.
func printPlan(w io.Writer, plan *domain.UserPlan) {
	if plan == nil {
		fmt.Fprintln(w, "no current plan")
		return
	}
	fmt.Fprintf(w, "%s (%s)\n", plan.Name, plan.ID)
	for i, ph := range plan.Phases {
		fmt.Fprintf(w, "  [%d] %s, weeks %d-%d\n", i, ph.Name, ph.WeekStart, ph.WeekEnd)
		if len(ph.Blocks) == 0 {
			fmt.Fprintln(w, "      (empty)")
			continue
		}
		for _, b := range ph.Blocks {
			fmt.Fprintf(w, "      - %s [%s] id=%s week=%d", b.Label, b.Type, b.ID, b.WeekIndex)
			if len(b.OrganIDs) > 0 {
				fmt.Fprintf(w, " organs=%s", strings.Join(b.OrganIDs, ","))
			}
			fmt.Fprintln(w)
		}
	}
}

// readInput reads the named file, or stdin for "-".
func readInput(cmd *cobra.Command, name string) (string, error) {
	if name == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(b), nil
}

// writeMetrics dumps counter and histogram samples in a flat
// name{labels} value form.
func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	if reg == nil {
		return nil
	}
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			name := mf.GetName() + formatLabels(m.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				fmt.Fprintf(w, "%s %s\n", name, strconv.FormatFloat(m.GetCounter().GetValue(), 'f', -1, 64))
			case dto.MetricType_HISTOGRAM:
				fmt.Fprintf(w, "%s_count %d\n", name, m.GetHistogram().GetSampleCount())
			}
		}
	}
	return nil
}

func formatLabels(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}
