// Command bioforge plans, tracks and exports longevity protocols from the
// terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"bioforge/internal/blob"
	"bioforge/internal/config"
	"bioforge/internal/core"
	"bioforge/internal/export"
	"bioforge/internal/logging"
	"bioforge/pkg/domain"
)

// app carries the global flags and the collaborators opened for one command
// invocation. Collaborators set before Execute are used as-is.
type app struct {
	configPath string
	verbose    bool
	trace      bool
	metrics    bool

	cfg      config.Config
	logger   *logging.Logger
	store    domain.StateStore
	blob     blob.Store
	clock    core.Clock
	newID    func() string
	registry *prometheus.Registry
	svc      *core.Service
	exporter *export.Exporter
}

func main() {
	a := &app{}
	err := newRootCmd(a).Execute()
	// PersistentPostRunE is skipped when a command fails.
	if cerr := a.shutdown(context.Background(), os.Stderr); cerr != nil && err == nil {
		fmt.Fprintln(os.Stderr, "Error:", cerr)
		err = cerr
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "bioforge",
		Short: "Plan, track and export longevity protocols",
		Long: `bioforge keeps a phased protocol plan, a personal compendium of
peptides, tests and diets, and dose, biomarker and symptom logs.

State is persisted after every change to the configured store (sqlite by
default). Exports are written to the configured blob store.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a TOML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&a.trace, "trace", false, "write JSON trace spans to stderr")
	root.PersistentFlags().BoolVar(&a.metrics, "metrics", false, "print operation metrics to stderr on exit")

	root.AddCommand(
		newImportCmd(a),
		newQuickAddCmd(a),
		newPlanCmd(a),
		newCompendiumCmd(a),
		newFocusCmd(a),
		newProtocolCmd(a),
		newGraphCmd(a),
		newCheckCmd(a),
		newLogCmd(a),
		newAlertsCmd(a),
		newBackupCmd(a),
	)
	return root
}

func (a *app) open(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Log.Verbose = true
	}
	a.cfg = cfg

	if a.logger == nil {
		if a.logger, err = logging.New(cfg.Log.Verbose); err != nil {
			return err
		}
	}
	if a.store == nil {
		if a.store, err = core.OpenStateStore(ctx, cfg.Storage); err != nil {
			return fmt.Errorf("open state store: %w", err)
		}
	}
	if a.blob == nil {
		if a.blob, err = blob.Open(ctx, cfg.Blob); err != nil {
			return fmt.Errorf("open blob store: %w", err)
		}
	}

	a.registry = prometheus.NewRegistry()
	rec, err := core.NewPrometheusMetricsRecorder(a.registry)
	if err != nil {
		return err
	}
	opts := []core.Option{core.WithLogger(a.logger), core.WithMetricsRecorder(rec)}
	if a.trace {
		opts = append(opts, core.WithTracer(core.NewJSONTracer(cmd.ErrOrStderr())))
	}
	if a.clock != nil {
		opts = append(opts, core.WithClock(a.clock))
	}
	if a.newID != nil {
		opts = append(opts, core.WithIDGenerator(a.newID))
	}
	if a.svc, err = core.Open(ctx, a.store, opts...); err != nil {
		return err
	}

	a.exporter = export.New(a.blob, a.svc.Catalog())
	a.exporter.Clock = a.now
	if a.newID != nil {
		a.exporter.NewID = a.newID
	}
	a.logger.Debug("opened",
		"storage", cfg.Storage.Driver,
		"blob", string(a.blob.Driver()),
		"command", cmd.CommandPath(),
	)
	return nil
}

func (a *app) close(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return a.shutdown(ctx, cmd.ErrOrStderr())
}

// shutdown flushes and releases the state store once; later calls are no-ops.
func (a *app) shutdown(ctx context.Context, errW io.Writer) error {
	if a.svc == nil {
		return nil
	}
	err := a.svc.Close(ctx)
	a.svc = nil
	if a.metrics {
		if merr := writeMetrics(errW, a.registry); merr != nil && err == nil {
			err = merr
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

func (a *app) now() time.Time {
	if a.clock != nil {
		return a.clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (a *app) today() string { return a.now().Format(time.DateOnly) }
