package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/leandrodaf/analogmidi/sdk/contracts"
)

func TestFieldsAreStructured(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithCore(core)

	log.Info("NoteOn",
		log.Field().Uint8("note", 60),
		log.Field().Int("channel", 2),
		log.Field().Error("error", errors.New("boom")),
	)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["note"] != uint8(60) {
		t.Fatalf("note field = %v (%T)", ctx["note"], ctx["note"])
	}
	if ctx["channel"] != int64(2) {
		t.Fatalf("channel field = %v (%T)", ctx["channel"], ctx["channel"])
	}
	if ctx["error"] != "boom" {
		t.Fatalf("error field = %v", ctx["error"])
	}
}

func TestSetLevelFilters(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithCore(core)

	log.SetLevel(contracts.WarnLevel)
	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")
	log.Error("shown")

	if n := logs.Len(); n != 2 {
		t.Fatalf("expected 2 entries at warn level, got %d", n)
	}

	log.SetLevel(contracts.DebugLevel)
	log.Debug("shown")
	if n := logs.Len(); n != 3 {
		t.Fatalf("expected debug entry after lowering the level, got %d entries", n)
	}
}

func TestCallerPointsAtCallSite(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithCore(core)

	log.Info("here")

	entry := logs.All()[0]
	if !entry.Caller.Defined || !strings.HasSuffix(entry.Caller.File, "zap_logger_test.go") {
		t.Fatalf("caller = %+v, want this test file", entry.Caller)
	}
}

func TestSetDestinationFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.log")

	log := NewZapLogger()
	log.SetDestination(contracts.FileLog, path)
	log.Info("written to file", log.Field().String("port", "analog-midi"))
	if z, ok := log.(*ZapLogger); ok {
		_ = z.Sync()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") || !strings.Contains(string(data), "analog-midi") {
		t.Fatalf("log file missing entry: %s", data)
	}
}
