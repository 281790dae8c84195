package engine

import (
	"math"

	"github.com/cellmesh/meshgrowth/cell"
	"github.com/cellmesh/meshgrowth/config"
)

// addFood runs the growth phase's per-cell food accrual, dispatching on
// the configured FoodMode. Environs and frozen cells never accrue food;
// their Food is forced to zero every frame.
func (s *Simulation) addFood() {
	for _, p := range s.Pop {
		if p.Environs || p.Frozen {
			p.Food = 0
			continue
		}
		s.applyFoodPolicy(p)
	}
}

func (s *Simulation) applyFoodPolicy(p *cell.Cell) {
	switch s.cfg.FoodMode {
	case config.FoodRandom:
		p.Food += s.rng.Float64()

	case config.FoodArea:
		p.Food += p.Area

	case config.FoodXCoord:
		p.Food += p.Position.X + 50

	case config.FoodRadial:
		dist := p.Position.Norm()
		if dist < 0.5 {
			dist = 0.5
		}
		dist *= dist
		p.Food += 100.0 / dist

	case config.FoodCollisions:
		if p.Collisions > 0 {
			p.Food += 1.0 / float64(p.Collisions)
		}

	case config.FoodCurvature:
		p.CalculateCurvature(s.Pop)
		amount := p.Curvature
		if !math.IsNaN(amount) && amount > 0 {
			p.Food += math.Pow(amount, s.cfg.Growth.CurvatureFactor)
		}

	case config.FoodInherit:
		p.Food += p.Inherited

	case config.FoodHybrid:
		p.CalculateCurvature(s.Pop)
		amount := p.Curvature
		if !math.IsNaN(amount) && amount > 0 {
			p.Food += amount * p.Area
		}

	case config.FoodShift:
		if s.frame < 250 {
			p.Food += p.Area
		} else {
			p.CalculateCurvature(s.Pop)
			amount := p.Curvature
			if !math.IsNaN(amount) && amount > 0 {
				p.Food += amount
			}
		}

	case config.FoodTentacle:
		if p.Special {
			p.Food += p.Area
			if s.frame%1500 == 1499 {
				p.SpecialBaby = true
			}
		} else if p.Generation < 2 {
			p.Food += p.Area
		}
	}
}
