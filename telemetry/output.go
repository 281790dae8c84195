// Package telemetry writes the per-run CSV/YAML artifacts a headless
// meshgrowth run leaves behind: one CSV per record stream, headers
// written once via gocsv.Marshal and every subsequent row via
// gocsv.MarshalWithoutHeaders, plus a config.yaml snapshot.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/cellmesh/meshgrowth/config"
	"github.com/cellmesh/meshgrowth/engine"
)

// FrameRecord is one row of frame.csv.
type FrameRecord struct {
	Frame      int `csv:"frame"`
	Population int `csv:"population"`
	Frozen     int `csv:"frozen"`
}

// PerfRecord is one row of perf.csv: the rolling average duration, in
// microseconds, of each named phase as of the frame it was written at.
type PerfRecord struct {
	Frame      int     `csv:"frame"`
	Phase      string  `csv:"phase"`
	AvgMicros  float64 `csv:"avg_micros"`
	PctOfTotal float64 `csv:"pct_of_total"`
}

// OutputManager owns the open file handles for one run's output
// directory. A nil *OutputManager makes every method a no-op, so
// callers can construct it unconditionally and only check the error
// from New.
type OutputManager struct {
	dir string

	frameFile *os.File
	perfFile  *os.File

	frameHeaderWritten bool
	perfHeaderWritten  bool
}

// New creates dir if needed and opens frame.csv and perf.csv inside it.
// Returns (nil, nil) if dir is empty, disabling output entirely.
func New(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "frame.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating frame.csv: %w", err)
	}
	om.frameFile = f

	f, err = os.Create(filepath.Join(dir, "perf.csv"))
	if err != nil {
		om.frameFile.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f

	return om, nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes every open file.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var firstErr error
	for _, f := range []*os.File{om.frameFile, om.perfFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// WriteConfig snapshots cfg as config.yaml in the output directory.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteFrame appends one row to frame.csv.
func (om *OutputManager) WriteFrame(rec FrameRecord) error {
	if om == nil {
		return nil
	}
	return writeRow(&om.frameHeaderWritten, om.frameFile, []FrameRecord{rec})
}

// WritePerf appends one row per recorded phase to perf.csv, as of frame.
func (om *OutputManager) WritePerf(frame int, stats *engine.PerfStats) error {
	if om == nil {
		return nil
	}
	total := stats.Total()
	names := stats.SortedNames()
	recs := make([]PerfRecord, 0, len(names))
	for _, name := range names {
		avg := stats.Avg(name)
		pct := 0.0
		if total > 0 {
			pct = float64(avg) / float64(total) * 100
		}
		recs = append(recs, PerfRecord{
			Frame:      frame,
			Phase:      name,
			AvgMicros:  float64(avg) / float64(time.Microsecond),
			PctOfTotal: pct,
		})
	}
	return writeRow(&om.perfHeaderWritten, om.perfFile, recs)
}

func writeRow[T any](headerWritten *bool, f *os.File, recs []T) error {
	if len(recs) == 0 {
		return nil
	}
	if !*headerWritten {
		if err := gocsv.Marshal(recs, f); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(recs, f)
}
