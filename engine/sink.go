package engine

import "log/slog"

// EventKind names a recoverable condition the frame loop can hit.
// Bootstrap failures are not listed here: they can only occur before a
// Simulation exists, and are returned directly from
// New/geometry.Bootstrap/meshio.Loader.Load instead.
type EventKind int

const (
	// CapacityReached: the population hit its ceiling; growth stops for
	// the rest of the run but every other phase continues normally.
	CapacityReached EventKind = iota
	// DegenerateTopology: a cell's ring failed GoodLoop at a trigger
	// point; the cell is frozen instead of split.
	DegenerateTopology
	// NumericalAnomaly: a computation produced NaN/Inf/a zero-length
	// edge and the offending contribution was silently dropped.
	NumericalAnomaly
)

func (k EventKind) String() string {
	switch k {
	case CapacityReached:
		return "capacity_reached"
	case DegenerateTopology:
		return "degenerate_topology"
	case NumericalAnomaly:
		return "numerical_anomaly"
	default:
		return "unknown"
	}
}

// ProgressSink receives per-frame and per-event diagnostics as the
// engine runs: a single seam a caller can redirect (to a file, to a test
// recorder, to nothing) without touching engine logic.
type ProgressSink interface {
	// Frame is called once per completed frame with the frame number
	// just finished, the resulting population, and the frozen count.
	Frame(frame, population, frozen int)
	// Event is called when the population reaches capacity or a cell is
	// frozen. The engine does not emit NumericalAnomaly: skipped NaN and
	// zero-length contributions produce no Event.
	Event(kind EventKind, frame, detail int)
}

// defaultSink logs via log/slog, at Info for frames and Warn for
// events.
type defaultSink struct{}

func (defaultSink) Frame(frame, population, frozen int) {
	slog.Info("frame complete", "frame", frame, "population", population, "frozen", frozen)
}

func (defaultSink) Event(kind EventKind, frame, detail int) {
	slog.Warn("engine event", "kind", kind.String(), "frame", frame, "detail", detail)
}

// NopSink discards every event, for benchmarks and tests that don't
// want log noise.
type NopSink struct{}

func (NopSink) Frame(frame, population, frozen int) {}
func (NopSink) Event(kind EventKind, frame, detail int) {}
