package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"bioforge/internal/infra/persistence/postgres/testutil"
	"bioforge/pkg/domain"

	"github.com/google/go-cmp/cmp"
)

func openStub(t *testing.T) (*Store, *testutil.StubConn) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(driverName, dsn string) (*sql.DB, error) {
		if driverName != "pgx" || dsn != DefaultDSN {
			t.Fatalf("unexpected open %s %s", driverName, dsn)
		}
		return db, nil
	})
	t.Cleanup(restore)
	store, err := NewStore(context.Background(), "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store, conn
}

func TestNewStoreEnsuresStateTable(t *testing.T) {
	_, conn := openStub(t)
	if len(conn.Execs) == 0 || !strings.Contains(conn.Execs[0], "CREATE TABLE IF NOT EXISTS state") {
		t.Fatalf("expected state DDL, got %v", conn.Execs)
	}
	if !strings.Contains(conn.Execs[0], "JSONB") {
		t.Fatalf("expected JSONB payload column: %s", conn.Execs[0])
	}
}

func TestStoreSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store, conn := openStub(t)
	if _, ok, err := store.Load(ctx); ok || err != nil {
		t.Fatalf("expected empty store, ok=%v err=%v", ok, err)
	}

	state := domain.NewState(domain.NewDefaultPlan(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	state.SymptomEntries = []domain.SymptomEntry{{ID: "s1", Date: "2026-03-02", Text: "tired"}}
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("save: %v", err)
	}
	state.SymptomEntries[0].Text = "better"
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if got := len(conn.Rows("state")); got != len(domain.StateBuckets) {
		t.Fatalf("expected upserts to keep one row per bucket, got %d", got)
	}

	got, ok, err := store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(state, got); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestNewStoreSurfacesOpenAndPingErrors(t *testing.T) {
	restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) { return nil, errors.New("boom") })
	if _, err := NewStore(context.Background(), "postgres://x"); err == nil || !strings.Contains(err.Error(), "open postgres") {
		t.Fatalf("expected open error, got %v", err)
	}
	restore()

	db, conn := testutil.NewStubDB()
	conn.FailPing = true
	restore = OverrideSQLOpen(func(string, string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore(context.Background(), "postgres://x"); err == nil || !strings.Contains(err.Error(), "ping postgres") {
		t.Fatalf("expected ping error, got %v", err)
	}
}

func TestStoreSaveFailures(t *testing.T) {
	ctx := context.Background()
	state := domain.NewState(domain.NewDefaultPlan(time.Unix(0, 0)))

	store, conn := openStub(t)
	conn.FailBegin = true
	if err := store.Save(ctx, state); err == nil || !strings.Contains(err.Error(), "begin tx") {
		t.Fatalf("expected begin error, got %v", err)
	}
	conn.FailBegin = false
	conn.FailTables = map[string]bool{"state": true}
	if err := store.Save(ctx, state); err == nil || !strings.Contains(err.Error(), "upsert schemaVersion") {
		t.Fatalf("expected upsert error, got %v", err)
	}
	if _, _, err := store.Load(ctx); err == nil {
		t.Fatalf("expected select error")
	}
	conn.FailTables = nil
	conn.FailCommit = true
	if err := store.Save(ctx, state); err == nil || !strings.Contains(err.Error(), "commit") {
		t.Fatalf("expected commit error, got %v", err)
	}
}
