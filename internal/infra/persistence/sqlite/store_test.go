package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"bioforge/pkg/domain"

	"github.com/google/go-cmp/cmp"
)

func sampleState() domain.State {
	state := domain.NewState(domain.NewDefaultPlan(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)))
	saved := state.CurrentPlan.Clone()
	saved.ID = "plan-1"
	saved.Phases[0].Blocks = []domain.PlanBlock{{ID: "b1", Type: domain.BlockPeptide, RefID: "kpv", Label: "KPV", OrganIDs: []string{"gut"}}}
	state.SavedPlans = append(state.SavedPlans, saved)
	state.DoseLogs = []domain.DoseLogEntry{{Date: "2026-03-01", PlanBlockID: "b1", RefID: "kpv", Label: "KPV", Taken: true}}
	state.RecentCommandSearches = []string{"kpv"}
	state.FocusMode = domain.FocusGutRepair
	return state
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")
	store, err := NewStore(path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if _, ok, err := store.Load(ctx); err != nil || ok {
		t.Fatalf("expected empty store, ok=%v err=%v", ok, err)
	}
	want := sampleState()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	got, ok, err := reopened.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(want.Normalize(), got); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}

	var rows int
	if err := reopened.DB().QueryRow(`SELECT COUNT(*) FROM state`).Scan(&rows); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if rows != len(domain.StateBuckets) {
		t.Fatalf("expected one row per bucket, got %d", rows)
	}
}

func TestSQLiteStoreDefaultPath(t *testing.T) {
	t.Chdir(t.TempDir())
	store, err := NewStore("")
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if store.Path() != DefaultPath {
		t.Fatalf("expected default path, got %s", store.Path())
	}
}
