package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerForwardsKeyValues(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := Wrap(zap.New(core))

	l.Debug("mutation applied", "operation", "add_block")
	l.Warn("plan check", "rule", "duplicate_block_id")

	entries := logs.AllUntimed()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Message != "mutation applied" || entries[0].ContextMap()["operation"] != "add_block" {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[1].Level != zapcore.WarnLevel || entries[1].ContextMap()["rule"] != "duplicate_block_id" {
		t.Fatalf("unexpected second entry %+v", entries[1])
	}
}

func TestNewRespectsVerbose(t *testing.T) {
	quiet, err := New(false)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if quiet.Zap().Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug should be disabled without verbose")
	}
	loud, err := New(true)
	if err != nil {
		t.Fatalf("new verbose: %v", err)
	}
	if !loud.Zap().Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug should be enabled with verbose")
	}
}

func TestNilWrapIsSafe(t *testing.T) {
	l := Wrap(nil)
	l.Info("ignored")
	Nop().Error("ignored", "k", "v")
}
