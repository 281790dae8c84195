// Package snapshot derives the dense V/N/F export matrices from the
// current cell population for the rendering/export boundary.
package snapshot

import (
	"gonum.org/v1/gonum/mat"

	"github.com/cellmesh/meshgrowth/cell"
)

// Mesh holds the three matrices handed across the export boundary.
type Mesh struct {
	V *mat.Dense // |cells| x 3 positions, indexed by cell.Index
	N *mat.Dense // |cells| x 3 normals, indexed by cell.Index
	F *mat.Dense // sum(|links|) x 3 face indices, duplicated across shared triangles
}

// Build produces V, N, F for the given population. Faces are emitted as
// (p.Index, links[(i+1)%k].Index, links[i].Index) for every neighbor i of
// every cell p; global duplication across cells sharing a triangle is
// expected, not an error: the snapshot is for rendering, not manifold
// topology.
func Build(pop cell.Population) Mesh {
	n := len(pop)
	v := mat.NewDense(n, 3, nil)
	normals := mat.NewDense(n, 3, nil)

	numFaces := 0
	for _, p := range pop {
		numFaces += len(p.Links)
	}
	f := mat.NewDense(numFaces, 3, nil)

	for _, p := range pop {
		v.SetRow(p.Index, []float64{p.Position.X, p.Position.Y, p.Position.Z})
		normals.SetRow(p.Index, []float64{p.Normal.X, p.Normal.Y, p.Normal.Z})
	}

	row := 0
	for _, p := range pop {
		k := len(p.Links)
		for i := 0; i < k; i++ {
			b := pop.At(p.Links[(i+1)%k]).Index
			c := pop.At(p.Links[i]).Index
			f.SetRow(row, []float64{float64(p.Index), float64(b), float64(c)})
			row++
		}
	}

	return Mesh{V: v, N: normals, F: f}
}
