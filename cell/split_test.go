package cell

import (
	"math"
	"testing"

	"github.com/cellmesh/meshgrowth/vec3"
)

// hexFan builds a hub cell surrounded by a closed ring of n outer
// cells, evenly spaced on a unit circle, each outer cell also linked to
// its two cyclic neighbors. This is a valid closed one-ring fan, the
// precondition Split expects of its parent.
func hexFan(n int) Population {
	pop := make(Population, n+1)
	pop[0] = &Cell{Index: 0, Position: vec3.Zero}
	for i := 1; i <= n; i++ {
		angle := 2 * math.Pi * float64(i-1) / float64(n)
		pop[i] = &Cell{Index: i, Position: vec3.Vec3{X: math.Cos(angle), Y: math.Sin(angle)}}
	}
	for i := 1; i <= n; i++ {
		pop.Connect(0, i)
	}
	for i := 1; i <= n; i++ {
		next := i + 1
		if next > n {
			next = 1
		}
		pop.Connect(i, next)
	}
	// Hub ring order must match the spoke cycle for GoodLoop to hold.
	pop[0].Links = make([]int, n)
	for i := 1; i <= n; i++ {
		pop[0].Links[i-1] = i
	}
	return pop
}

func TestSplitProducesTwoGoodLoops(t *testing.T) {
	pop := hexFan(6)
	if !pop[0].GoodLoop(pop) {
		t.Fatalf("precondition failed: hub ring not good before split: %v", pop[0].Links)
	}

	childIdx := pop.Split(0, SplitZero)

	parent := pop.At(0)
	child := pop.At(childIdx)

	if !parent.GoodLoop(pop) {
		t.Errorf("expected parent ring to remain a good loop after split: %v", parent.Links)
	}
	if child.Frozen {
		t.Errorf("expected child ring to be good, but it was frozen: %v", child.Links)
	}
	if !child.ConnectedTo(0) || !parent.ConnectedTo(childIdx) {
		t.Fatal("expected parent and child to be mutually linked after split")
	}
}

func TestSplitAppendsExactlyOneCell(t *testing.T) {
	pop := hexFan(8)
	before := len(pop)
	pop.Split(0, SplitLong)
	if len(pop) != before+1 {
		t.Fatalf("expected population to grow by exactly one cell, got %d -> %d", before, len(pop))
	}
}

// octahedron builds a closed mesh where every cell has a good loop:
// six vertices at the axis poles, each with an ordered four-cell fan.
func octahedron() Population {
	pop := Population{
		{Index: 0, Position: vec3.Vec3{Z: 1}},  // +z
		{Index: 1, Position: vec3.Vec3{X: 1}},  // +x
		{Index: 2, Position: vec3.Vec3{Y: 1}},  // +y
		{Index: 3, Position: vec3.Vec3{X: -1}}, // -x
		{Index: 4, Position: vec3.Vec3{Y: -1}}, // -y
		{Index: 5, Position: vec3.Vec3{Z: -1}}, // -z
	}
	pop[0].Links = []int{1, 2, 3, 4}
	pop[1].Links = []int{0, 2, 5, 4}
	pop[2].Links = []int{0, 3, 5, 1}
	pop[3].Links = []int{0, 4, 5, 2}
	pop[4].Links = []int{0, 1, 5, 3}
	pop[5].Links = []int{1, 2, 3, 4}
	for _, p := range pop {
		p.Normal = p.Position
	}
	return pop
}

// On a closed mesh, splitting one vertex must leave every cell's ring a
// good loop, in particular the two cut vertices, whose rings gain the
// child next to the parent on the side of the child's arc.
func TestSplitKeepsEveryLoopGoodOnClosedMesh(t *testing.T) {
	pop := octahedron()
	for _, p := range pop {
		if !p.GoodLoop(pop) {
			t.Fatalf("precondition failed: cell %d ring not good: %v", p.Index, p.Links)
		}
	}

	pop.Split(0, SplitZero)

	for _, p := range pop {
		if !p.GoodLoop(pop) {
			t.Errorf("cell %d ring degraded by split: %v", p.Index, p.Links)
		}
		if p.Frozen {
			t.Errorf("cell %d unexpectedly frozen", p.Index)
		}
	}
}

func TestSplitNewCellIndexMatchesSlot(t *testing.T) {
	pop := hexFan(6)
	childIdx := pop.Split(0, SplitZero)
	if pop[childIdx].Index != childIdx {
		t.Fatalf("child index invariant violated: pop[%d].Index = %d", childIdx, pop[childIdx].Index)
	}
}
