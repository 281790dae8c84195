package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cellmesh/meshgrowth/config"
	"github.com/cellmesh/meshgrowth/engine"
)

func TestNilManagerIsNoop(t *testing.T) {
	var om *OutputManager
	if err := om.WriteFrame(FrameRecord{Frame: 1}); err != nil {
		t.Fatalf("nil manager WriteFrame: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("nil manager Close: %v", err)
	}
	if om.Dir() != "" {
		t.Fatal("nil manager Dir must be empty")
	}
}

func TestNewEmptyDirDisablesOutput(t *testing.T) {
	om, err := New("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if om != nil {
		t.Fatal("expected a nil manager for an empty output dir")
	}
}

func TestWriteFrameHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	om, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := om.WriteFrame(FrameRecord{Frame: i, Population: 10 + i}); err != nil {
			t.Fatalf("WriteFrame %d: %v", i, err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "frame.csv"))
	if err != nil {
		t.Fatalf("reading frame.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines:\n%s", len(lines), data)
	}
	if !strings.Contains(lines[0], "frame") || !strings.Contains(lines[0], "population") {
		t.Fatalf("expected a header row, got %q", lines[0])
	}
	if strings.Contains(lines[1], "frame") {
		t.Fatalf("header repeated in data rows: %q", lines[1])
	}
}

func TestWritePerfEmitsRowPerPhase(t *testing.T) {
	dir := t.TempDir()
	om, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	stats := engine.NewPerfStats()
	stats.Record("collision", 5*time.Millisecond)
	stats.Record("forces", 2*time.Millisecond)

	if err := om.WritePerf(7, stats); err != nil {
		t.Fatalf("WritePerf: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatalf("reading perf.csv: %v", err)
	}
	if !strings.Contains(string(data), "collision") || !strings.Contains(string(data), "forces") {
		t.Fatalf("expected a row per phase, got:\n%s", data)
	}
}

func TestWriteConfigSnapshot(t *testing.T) {
	dir := t.TempDir()
	om, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer om.Close()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Fatalf("expected config.yaml snapshot: %v", err)
	}
}
