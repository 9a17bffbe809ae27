package integration

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"bioforge/internal/blob"
	"bioforge/internal/config"
	"bioforge/internal/core"
	"bioforge/internal/export"
	"bioforge/pkg/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/prometheus/client_golang/prometheus"
)

var smokeNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// TestIntegrationSmoke drives a plan through every in-process state store and
// blob backend: edit, persist, reopen, back up and restore.
func TestIntegrationSmoke(t *testing.T) {
	ctx := context.Background()

	// Each factory returns a store that sees what earlier ones persisted.
	storeVariants := []struct {
		name string
		open func(t *testing.T) func() domain.StateStore
	}{
		{
			name: "memory-store",
			open: func(t *testing.T) func() domain.StateStore {
				store, err := core.OpenStateStore(ctx, config.Storage{Driver: config.StorageMemory})
				if err != nil {
					t.Fatalf("open memory store: %v", err)
				}
				return func() domain.StateStore { return store }
			},
		},
		{
			name: "sqlite-store",
			open: func(t *testing.T) func() domain.StateStore {
				cfg := config.Storage{Driver: config.StorageSQLite, SQLitePath: filepath.Join(t.TempDir(), "bioforge.db")}
				return func() domain.StateStore {
					store, err := core.OpenStateStore(ctx, cfg)
					if err != nil {
						t.Fatalf("open sqlite store: %v", err)
					}
					return store
				}
			},
		},
	}

	blobVariants := []struct {
		name string
		open func(t *testing.T) blob.Store
	}{
		{
			name: "memory-blob",
			open: func(_ *testing.T) blob.Store { return blob.NewMemory() },
		},
		{
			name: "filesystem-blob",
			open: func(t *testing.T) blob.Store {
				bs, err := blob.Open(ctx, config.Blob{Driver: config.BlobFS, FSRoot: t.TempDir()})
				if err != nil {
					t.Fatalf("open filesystem blob: %v", err)
				}
				return bs
			},
		},
	}

	for _, sv := range storeVariants {
		for _, bv := range blobVariants {
			t.Run(sv.name+"/"+bv.name, func(t *testing.T) {
				storeFor := sv.open(t)
				bs := bv.open(t)
				clock := core.ClockFunc(func() time.Time { return smokeNow })

				reg := prometheus.NewRegistry()
				rec, err := core.NewPrometheusMetricsRecorder(reg)
				if err != nil {
					t.Fatalf("metrics recorder: %v", err)
				}
				var traceBuffer bytes.Buffer
				tracer := core.NewJSONTracer(&traceBuffer)

				svc, err := core.Open(ctx, storeFor(),
					core.WithClock(clock),
					core.WithMetricsRecorder(rec),
					core.WithTracer(tracer),
				)
				if err != nil {
					t.Fatalf("open service: %v", err)
				}
				draft := domain.BlockDraft{ID: "b1", Type: domain.BlockPeptide, RefID: "kpv", Label: "KPV"}
				if !svc.AddBlockToPhase(ctx, 0, 0, draft) {
					t.Fatalf("add block rejected")
				}
				planID, ok := svc.SaveCurrentPlan(ctx, "Smoke")
				if !ok {
					t.Fatalf("save plan rejected")
				}
				svc.LogDose(ctx, domain.DoseLogEntry{Date: "2026-03-01", PlanBlockID: "b1", RefID: "kpv", Label: "KPV", Taken: true})
				if err := svc.Close(ctx); err != nil {
					t.Fatalf("close service: %v", err)
				}

				reopened, err := core.Open(ctx, storeFor(), core.WithClock(clock))
				if err != nil {
					t.Fatalf("reopen service: %v", err)
				}
				defer func() { _ = reopened.Close(ctx) }()
				saved := reopened.SavedPlans()
				if len(saved) != 1 || saved[0].ID != planID || saved[0].BlockCount() != 1 {
					t.Fatalf("expected persisted plan %s, got %+v", planID, saved)
				}
				if got := reopened.DosesForDate("2026-03-01"); len(got) != 1 || !got[0].Taken {
					t.Fatalf("expected persisted dose log, got %+v", got)
				}

				exp := export.New(bs, reopened.Catalog())
				exp.Clock = clock.Now
				info, err := exp.Backup(ctx, reopened.State())
				if err != nil {
					t.Fatalf("backup: %v", err)
				}
				if _, err := exp.Protocol(ctx, reopened.CurrentPlan(), export.FormatMarkdown); err != nil {
					t.Fatalf("protocol export: %v", err)
				}
				artifacts, err := exp.List(ctx, "")
				if err != nil || len(artifacts) != 2 {
					t.Fatalf("expected backup and protocol artifacts, got %+v err=%v", artifacts, err)
				}

				bundle, err := exp.Restore(ctx, info.Key)
				if err != nil {
					t.Fatalf("restore: %v", err)
				}
				fresh := core.NewService(core.WithClock(clock))
				if !fresh.RestoreBundle(ctx, bundle) {
					t.Fatalf("restore bundle rejected")
				}
				want := reopened.State()
				got := fresh.State()
				if diff := cmp.Diff(want.CurrentPlan, got.CurrentPlan, cmpopts.EquateEmpty()); diff != "" {
					t.Fatalf("restored plan mismatch (-want +got):\n%s", diff)
				}
				if diff := cmp.Diff(want.DoseLogs, got.DoseLogs, cmpopts.EquateEmpty()); diff != "" {
					t.Fatalf("restored dose logs mismatch (-want +got):\n%s", diff)
				}

				if traceBuffer.Len() == 0 {
					t.Fatalf("expected trace output")
				}
				var foundSpan bool
				for _, entry := range tracer.Entries() {
					if entry.Operation == "save_plan" && entry.Status == "success" {
						foundSpan = true
						break
					}
				}
				if !foundSpan {
					t.Fatalf("expected save_plan span, entries=%+v", tracer.Entries())
				}
				families, err := reg.Gather()
				if err != nil || len(families) == 0 {
					t.Fatalf("expected gathered metrics, err=%v", err)
				}
			})
		}
	}
}
