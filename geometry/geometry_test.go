package geometry

import "testing"

func TestBuildSphereEveryCellHasGoodLoop(t *testing.T) {
	pop := buildSphere(4, 6, 5.0)
	for _, p := range pop {
		if !p.GoodLoop(pop) {
			t.Fatalf("cell %d has a bad loop: %v", p.Index, p.Links)
		}
	}
}

func TestBuildSphereIndicesMatchSlots(t *testing.T) {
	pop := buildSphere(3, 5, 1.0)
	for i, p := range pop {
		if p.Index != i {
			t.Fatalf("cell at slot %d has Index %d", i, p.Index)
		}
	}
}

func TestBuildSphereSymmetricAdjacency(t *testing.T) {
	pop := buildSphere(3, 5, 1.0)
	for _, p := range pop {
		for _, l := range p.Links {
			if !pop.At(l).ConnectedTo(p.Index) {
				t.Fatalf("asymmetric adjacency: %d -> %d but not back", p.Index, l)
			}
		}
	}
}

func TestBuildPlaneBoundaryCellsAreOpen(t *testing.T) {
	pop := buildPlane(4, 4, 1.0, nil)
	corner := pop[0] // row 0, col 0
	if len(corner.Links) >= 6 {
		t.Fatalf("expected a corner cell to have an incomplete fan, got %d links", len(corner.Links))
	}
}

func TestBuildEnvironmentMarksScaffoldAsEnvirons(t *testing.T) {
	pop := buildEnvironment(Options{Rows: 10, Cols: 10, SeedRows: 2, SeedCols: 2, Spacing: 1.0})
	var liveCount, environsCount int
	for _, p := range pop {
		if p.Environs {
			environsCount++
		} else {
			liveCount++
		}
	}
	if liveCount != 4 {
		t.Fatalf("expected a 2x2 live seed patch (4 cells), got %d", liveCount)
	}
	if environsCount != len(pop)-4 {
		t.Fatalf("expected the rest of the scaffold to be environs, got %d of %d", environsCount, len(pop))
	}
}

func TestBootstrapDispatchesOnShape(t *testing.T) {
	pop, err := Bootstrap(Options{Shape: Sphere, Rings: 2, PerRing: 5, Radius: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pop) != 2*5+2 {
		t.Fatalf("expected rings*perRing+2 cells, got %d", len(pop))
	}
}
