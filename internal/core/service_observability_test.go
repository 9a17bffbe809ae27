package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"bioforge/pkg/domain"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

type logEntry struct {
	level string
	msg   string
	kv    []any
}

type captureLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (c *captureLogger) record(level, msg string, kv []any) {
	c.mu.Lock()
	c.entries = append(c.entries, logEntry{level: level, msg: msg, kv: kv})
	c.mu.Unlock()
}

func (c *captureLogger) Debug(msg string, kv ...any) { c.record("debug", msg, kv) }
func (c *captureLogger) Info(msg string, kv ...any)  { c.record("info", msg, kv) }
func (c *captureLogger) Warn(msg string, kv ...any)  { c.record("warn", msg, kv) }
func (c *captureLogger) Error(msg string, kv ...any) { c.record("error", msg, kv) }

func (c *captureLogger) count(level, msg string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if e.level == level && e.msg == msg {
			n++
		}
	}
	return n
}

type metricsCall struct {
	op      string
	success bool
}

type captureMetricsRecorder struct {
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.calls = append(c.calls, metricsCall{op: op, success: success})
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type spanRecord struct {
	op  string
	err error
}

type captureTracer struct {
	ended []spanRecord
}

func (c *captureTracer) Start(ctx context.Context, op string) (context.Context, TraceSpan) {
	return ctx, &captureSpan{tracer: c, op: op}
}

type captureSpan struct {
	tracer *captureTracer
	op     string
}

func (s *captureSpan) End(err error) {
	s.tracer.ended = append(s.tracer.ended, spanRecord{op: s.op, err: err})
}

func TestMutationsReportMetricsSpansAndLogs(t *testing.T) {
	ctx := context.Background()
	logger := &captureLogger{}
	metrics := &captureMetricsRecorder{}
	tracer := &captureTracer{}
	svc, _ := newTestService(t, WithLogger(logger), WithMetricsRecorder(metrics), WithTracer(tracer))

	svc.AddBlockToPhase(ctx, 0, 0, draft("b1", "kpv", "KPV"))
	svc.AddBlockToPhase(ctx, 9, 0, draft("b2", "kpv", "KPV"))

	if !metrics.has("add_block", true) {
		t.Fatalf("expected add_block metric, got %+v", metrics.calls)
	}
	if len(tracer.ended) != 2 || tracer.ended[0].op != "add_block" || tracer.ended[0].err != nil {
		t.Fatalf("unexpected spans %+v", tracer.ended)
	}
	if logger.count("debug", "mutation applied") != 1 || logger.count("debug", "mutation skipped") != 1 {
		t.Fatalf("unexpected logs %+v", logger.entries)
	}
}

func TestPersistFailureIsReportedAndRetried(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{}
	logger := &captureLogger{}
	metrics := &captureMetricsRecorder{}
	tracer := &captureTracer{}
	svc, err := Open(ctx, store, WithLogger(logger), WithMetricsRecorder(metrics), WithTracer(tracer), WithIDGenerator(seqIDs()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if logger.count("info", "initialised fresh state") != 1 {
		t.Fatalf("expected fresh state log")
	}

	store.setFail(true)
	svc.AddSymptom(ctx, "2026-03-01", "tired")
	if !errors.Is(svc.LastPersistError(), errStoreDown) {
		t.Fatalf("expected persist error, got %v", svc.LastPersistError())
	}
	if len(svc.State().SymptomEntries) != 1 {
		t.Fatalf("in-memory state should keep the mutation")
	}
	if !metrics.has("add_symptom", false) || logger.count("error", "persist state failed") != 1 {
		t.Fatalf("failure should be observed and logged")
	}
	if last := tracer.ended[len(tracer.ended)-1]; last.err == nil {
		t.Fatalf("span should carry the persist error")
	}

	store.setFail(false)
	if err := svc.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if svc.LastPersistError() != nil {
		t.Fatalf("successful flush should clear the error")
	}
	if n := len(store.saved); n != 1 || len(store.saved[0].SymptomEntries) != 1 {
		t.Fatalf("expected flushed state, got %d saves", n)
	}
}

func TestCheckCurrentPlanLogsFindings(t *testing.T) {
	ctx := context.Background()
	logger := &captureLogger{}
	metrics := &captureMetricsRecorder{}
	svc, _ := newTestService(t, WithLogger(logger), WithMetricsRecorder(metrics))
	svc.AddBlockToPhase(ctx, 0, 0, draft("dup", "kpv", "KPV"))
	svc.AddBlockToPhase(ctx, 0, 0, draft("dup", "bpc157", "BPC-157"))

	res := svc.CheckCurrentPlan(ctx)
	if !res.HasWarnings() {
		t.Fatalf("expected duplicate warning, got %+v", res)
	}
	if logger.count("warn", "plan check") != 1 || logger.count("info", "plan check") != 1 {
		t.Fatalf("expected one warn and one info finding, got %+v", logger.entries)
	}
	if !metrics.has("check_plan", true) {
		t.Fatalf("expected check_plan metric")
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelsMatch(m *dto.Metric, want map[string]string) bool {
	got := map[string]string{}
	for _, lp := range m.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	return true
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}

	svc, _ := newTestService(t, WithMetricsRecorder(rec))
	svc.AddBlockToPhase(ctx, 0, 0, draft("b1", "kpv", "KPV"))
	svc.AddBlockToPhase(ctx, 0, 0, draft("b2", "kpv", "KPV"))
	rec.Observe(ctx, "log_dose", false, time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond)

	ops := "bioforge_service_operations_total"
	if got := counterValue(t, reg, ops, map[string]string{"operation": "add_block", "status": "success"}); got != 2 {
		t.Fatalf("expected 2 add_block successes, got %v", got)
	}
	if got := counterValue(t, reg, ops, map[string]string{"operation": "log_dose", "status": "error"}); got != 1 {
		t.Fatalf("expected 1 log_dose error, got %v", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == "bioforge_service_operation_duration_seconds" {
			return
		}
	}
	t.Fatalf("expected duration histogram to be registered")
}

func TestJSONTracerWritesEntries(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)
	svc, _ := newTestService(t, WithTracer(tracer))
	svc.AddBlockToPhase(context.Background(), 0, 0, draft("b1", "kpv", "KPV"))

	_, span := tracer.Start(context.Background(), "export")
	span.End(errors.New("disk full"))

	entries := tracer.Entries()
	if len(entries) != 2 || entries[0].Operation != "add_block" || entries[0].Status != "success" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if entries[1].Status != "error" || entries[1].Error != "disk full" {
		t.Fatalf("unexpected error entry %+v", entries[1])
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two JSON lines, got %q", buf.String())
	}
	var decoded JSONTraceEntry
	if err := json.Unmarshal([]byte(lines[1]), &decoded); err != nil || decoded.Operation != "export" {
		t.Fatalf("decode line: %v %+v", err, decoded)
	}
	if NewJSONTracer(nil).Entries() == nil {
		t.Fatalf("entries should never be nil")
	}
}

func TestOpenRestoresStoredState(t *testing.T) {
	ctx := context.Background()
	store, err := OpenStateStore(ctx, configMemory())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	first, err := Open(ctx, store, WithIDGenerator(seqIDs()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	first.AddBlockToPhase(ctx, 0, 0, draft("b1", "kpv", "KPV"))
	id, _ := first.SaveCurrentPlan(ctx, "Kept")

	second, err := Open(ctx, store)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	saved := second.SavedPlans()
	if len(saved) != 1 || saved[0].ID != id || saved[0].BlockCount() != 1 {
		t.Fatalf("expected restored plan, got %+v", saved)
	}
	if err := second.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestOpenRejectsNilStoreAndLoadErrors(t *testing.T) {
	if _, err := Open(context.Background(), nil); err == nil {
		t.Fatalf("expected nil store error")
	}
	if _, err := Open(context.Background(), brokenStore{}); err == nil || !strings.Contains(err.Error(), "load state") {
		t.Fatalf("expected load error, got %v", err)
	}
}

type brokenStore struct{}

func (brokenStore) Load(context.Context) (domain.State, bool, error) {
	return domain.State{}, false, errors.New("corrupt")
}
func (brokenStore) Save(context.Context, domain.State) error { return nil }
func (brokenStore) Close() error                             { return nil }
