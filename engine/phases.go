package engine

import (
	"time"

	"github.com/cellmesh/meshgrowth/cell"
	"github.com/cellmesh/meshgrowth/config"
	"github.com/cellmesh/meshgrowth/gridindex"
)

// Advance runs one full frame: growth (unless the population is already
// at capacity), collision, per-cell forces, integration, and finally
// increments the frame counter. Each phase observes the completed
// results of the previous one; the order is not configurable.
func (s *Simulation) Advance() {
	if len(s.Pop) < s.maxPop {
		s.timed("growth", s.growthPhase)
	}

	s.timed("collision", s.collisionPhase)
	s.timed("forces", s.forcesPhase)
	s.timed("integrate", s.integratePhase)

	s.sink.Frame(s.frame, len(s.Pop), s.frozenNum)
	s.frame++
}

func (s *Simulation) timed(name string, fn func()) {
	start := time.Now()
	fn()
	s.perf.Record(name, time.Since(start))
}

// growthPhase accrues food, then splits saturated cells.
func (s *Simulation) growthPhase() {
	s.addFood()
	s.split()
}

// split walks a fixed snapshot of the population (new cells appended
// during this pass are never themselves visited) looking for cells
// whose food or degree crossed a trigger. A population already at
// capacity aborts the remainder of the pass immediately, and a
// triggered cell with a bad ring is frozen instead of split.
func (s *Simulation) split() {
	fixedPop := len(s.Pop)

	for i := 0; i < fixedPop; i++ {
		p := s.Pop[i]
		if p.Frozen || p.Environs {
			continue
		}
		if p.Food <= s.cfg.Growth.Threshold && len(p.Links) <= s.cfg.Growth.MaxDegree {
			continue
		}

		if len(s.Pop) >= s.maxPop {
			s.sink.Event(CapacityReached, s.frame, len(s.Pop))
			return
		}

		if !p.GoodLoop(s.Pop) {
			p.Frozen = true
			s.sink.Event(DegenerateTopology, s.frame, i)
			continue
		}

		mode := cell.SplitZero
		if s.cfg.Growth.SplitMode == config.SplitLong {
			mode = cell.SplitLong
		}
		newIdx := s.Pop.Split(i, mode)
		if s.Pop.At(newIdx).Frozen {
			s.sink.Event(DegenerateTopology, s.frame, newIdx)
		}
	}
}

// collisionPhase builds the configured spatial accelerator once, scans
// it in parallel across the population, then sequentially folds each
// cell's averaged collision target into its Delta.
func (s *Simulation) collisionPhase() {
	n := len(s.Pop)
	if n == 0 {
		return
	}

	radiusSq := s.cfg.Derived.CollisionRadiusSq
	maxNeighbors := s.cfg.Collision.MaxNeighbors
	ageThreshold := s.cfg.Collision.AgeThreshold

	switch s.cfg.Collision.Accelerator {
	case config.AccelGrid:
		s.collisionPhaseGrid(radiusSq, maxNeighbors, ageThreshold)
	default:
		s.collisionPhaseKDTree(radiusSq, maxNeighbors, ageThreshold)
	}

	for _, p := range s.Pop {
		if p.Frozen || p.Collisions == 0 {
			continue
		}
		p.CollisionTarget = p.CollisionTarget.Scale(1.0 / float64(p.Collisions))
		p.CollisionTarget = p.CollisionTarget.Scale(s.cfg.Collision.Factor)
		p.Delta = p.CollisionTarget
	}
}

func (s *Simulation) collisionPhaseKDTree(radiusSq float64, maxNeighbors int, ageThreshold float64) {
	s.tree.Reset()
	for _, p := range s.Pop {
		s.tree.Add([3]float64{p.Position.X, p.Position.Y, p.Position.Z}, p.Index)
	}
	s.tree.Build()

	s.pool.Run(len(s.Pop), func(start, end int) {
		for idx := start; idx < end; idx++ {
			p := s.Pop[idx]
			if ageThreshold > 0 && p.Age > ageThreshold {
				continue
			}
			center := [3]float64{p.Position.X, p.Position.Y, p.Position.Z}
			for _, r := range s.tree.SearchCapacityLimitedBall(center, radiusSq, maxNeighbors) {
				s.accumulateCollision(p, s.Pop.At(r.Payload), radiusSq)
			}
		}
	})
}

func (s *Simulation) collisionPhaseGrid(radiusSq float64, maxNeighbors int, ageThreshold float64) {
	positions := make([][3]float64, len(s.Pop))
	for i, p := range s.Pop {
		positions[i] = [3]float64{p.Position.X, p.Position.Y, p.Position.Z}
	}
	cellSize := s.cfg.Collision.Radius
	min, max := gridindex.Bounds(positions)
	g := gridindex.New(min, max, cellSize)
	for i, pos := range positions {
		g.Insert(pos, i)
	}

	s.pool.Run(len(s.Pop), func(start, end int) {
		var buf []int
		for idx := start; idx < end; idx++ {
			p := s.Pop[idx]
			if ageThreshold > 0 && p.Age > ageThreshold {
				continue
			}
			buf = g.QueryNeighbors(positions[idx], buf[:0])
			seen := 0
			for _, qi := range buf {
				if seen >= maxNeighbors {
					break
				}
				q := s.Pop.At(qi)
				if q == nil || q == p {
					continue
				}
				if p.Position.Sub(q.Position).SquaredNorm() >= radiusSq {
					continue
				}
				s.accumulateCollision(p, q, radiusSq)
				seen++
			}
		}
	})
}

// accumulateCollision folds q's repulsion contribution into p. p and
// its counters are only ever written by the worker that owns p's index
// range, so no synchronization is needed here.
func (s *Simulation) accumulateCollision(p, q *cell.Cell, radiusSq float64) {
	if p == q || q == nil {
		return
	}
	if p.ConnectedTo(q.Index) {
		return
	}
	disp := p.Position.Sub(q.Position)
	distSq := disp.SquaredNorm()
	if distSq >= radiusSq {
		return
	}
	norm := disp.Normalized()
	scaled := norm.Scale((radiusSq - distSq) / radiusSq)
	p.CollisionTarget = p.CollisionTarget.Add(scaled)
	p.Collisions++
}

// forcesPhase runs Cell.Calculate over every eligible cell, partitioned
// across the worker pool, refreshing each cell's area and curvature
// first so next frame's growth phase reads current values. An
// environment shape excludes environs cells from forces entirely;
// frozen cells are always excluded.
func (s *Simulation) forcesPhase() {
	isEnvironment := s.cfg.InitShape == config.ShapeEnvironment
	f := s.cfg.Forces

	s.pool.Run(len(s.Pop), func(start, end int) {
		for idx := start; idx < end; idx++ {
			p := s.Pop[idx]
			if p.Frozen {
				continue
			}
			if isEnvironment && p.Environs {
				continue
			}
			p.CalculateCurvature(s.Pop)
			p.Calculate(s.Pop, f.SpringFactor, f.PlanarFactor, f.BulgeFactor, f.SpringLength)
		}
	})
}

// integratePhase applies each non-frozen cell's Delta sequentially,
// counting frozen cells as it goes.
func (s *Simulation) integratePhase() {
	s.frozenNum = 0
	for _, p := range s.Pop {
		if p.Frozen {
			s.frozenNum++
			continue
		}
		p.Age++
		p.Update(s.cfg.Dampening)
	}
}

// BruteForceCollision runs the O(n^2) reference collision scan, kept as
// a cross-check for the accelerated paths in tests rather than a
// frame-loop path.
func BruteForceCollision(pop cell.Population, radiusSq, factor float64) {
	for i, p := range pop {
		for j, q := range pop {
			if i == j {
				continue
			}
			disp := p.Position.Sub(q.Position)
			distSq := disp.SquaredNorm()
			if distSq >= radiusSq || p.ConnectedTo(q.Index) {
				continue
			}
			norm := disp.Normalized()
			scaled := norm.Scale((radiusSq - distSq) / radiusSq)
			p.CollisionTarget = p.CollisionTarget.Add(scaled)
			p.Collisions++
		}
	}
	for _, p := range pop {
		if p.Collisions == 0 {
			continue
		}
		p.CollisionTarget = p.CollisionTarget.Scale(1.0 / float64(p.Collisions))
		p.CollisionTarget = p.CollisionTarget.Scale(factor)
		p.Delta = p.CollisionTarget
	}
}
