// Package engine drives the per-frame simulation loop: growth,
// collision, per-cell forces, integration, frame counter, in that fixed
// order, every frame.
package engine

import (
	"math"
	"math/rand"

	"github.com/cellmesh/meshgrowth/cell"
	"github.com/cellmesh/meshgrowth/config"
	"github.com/cellmesh/meshgrowth/geometry"
	"github.com/cellmesh/meshgrowth/kdtree"
)

// MaxPopulation is the hard population ceiling. Once reached, the
// growth phase is skipped for the remainder of the run.
const MaxPopulation = 1 << 20

// Simulation owns the cell population and everything needed to advance
// it one frame at a time.
type Simulation struct {
	Pop cell.Population

	cfg *config.Config
	rng *rand.Rand

	pool *workerPool
	perf *PerfStats
	sink ProgressSink

	maxPop int
	frame  int

	frozenNum int

	tree *kdtree.Tree
}

// Option configures a Simulation at construction time.
type Option func(*Simulation)

// WithProgressSink overrides the default slog-backed ProgressSink.
func WithProgressSink(sink ProgressSink) Option {
	return func(s *Simulation) { s.sink = sink }
}

// WithMaxPopulation overrides MaxPopulation for this run, mainly useful
// in tests that want to exercise the CapacityReached path cheaply.
func WithMaxPopulation(n int) Option {
	return func(s *Simulation) { s.maxPop = n }
}

// WithRand overrides the default rng (a fixed seed of 1).
func WithRand(rng *rand.Rand) Option {
	return func(s *Simulation) { s.rng = rng }
}

// New bootstraps a population from opts via geometry.Bootstrap and
// returns a ready-to-run Simulation. Under the inherit food mode every
// cell is seeded with a random inherited amount; under the tentacle mode
// cell 0 is marked special and every cell's generation is preset to 99,
// so the generation<2 branch of that policy only ever fires for freshly
// split cells.
func New(cfg *config.Config, opts geometry.Options, sinkOpts ...Option) (*Simulation, error) {
	pop, err := geometry.Bootstrap(opts)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		Pop:    pop,
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(1)),
		pool:   newWorkerPool(cfg.Derived.NumWorkers),
		perf:   NewPerfStats(),
		sink:   defaultSink{},
		maxPop: MaxPopulation,
		tree:   kdtree.New(),
	}
	for _, opt := range sinkOpts {
		opt(s)
	}

	switch cfg.FoodMode {
	case config.FoodInherit:
		for _, p := range s.Pop {
			p.Inherited += math.Pow(s.rng.Float64(), 100.0)
		}
	case config.FoodTentacle:
		if len(s.Pop) > 0 {
			s.Pop[0].Special = true
		}
		for _, p := range s.Pop {
			p.Generation = 99
		}
	}

	return s, nil
}

// Population returns the current population size.
func (s *Simulation) Population() int { return len(s.Pop) }

// Frame returns the current frame number.
func (s *Simulation) Frame() int { return s.frame }

// FrozenCount returns how many cells were frozen as of the last
// integration phase.
func (s *Simulation) FrozenCount() int { return s.frozenNum }

// Close stops the worker pool. The Simulation must not be advanced
// after Close returns.
func (s *Simulation) Close() { s.pool.Stop() }
