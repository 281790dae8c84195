// Package gridindex implements a uniform 3D spatial hash: a drop-in
// alternative to the kdtree package for the collision phase, sized to
// the collision radius and bounded by the current cell bounding box.
package gridindex

// Grid is a uniform 3D bucket grid. Create it fresh each frame with New
// and Insert the current cell positions; queries are read-only once every
// Insert has returned.
type Grid struct {
	cellSize         float64
	minX, minY, minZ float64
	nx, ny, nz       int
	buckets          [][]int
}

// New builds a grid covering [min, max] with buckets sized to cellSize.
// Positions outside [min, max] are clamped into the nearest edge bucket.
func New(min, max [3]float64, cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	nx := int((max[0]-min[0])/cellSize) + 1
	ny := int((max[1]-min[1])/cellSize) + 1
	nz := int((max[2]-min[2])/cellSize) + 1
	if nx < 1 {
		nx = 1
	}
	if ny < 1 {
		ny = 1
	}
	if nz < 1 {
		nz = 1
	}
	return &Grid{
		cellSize: cellSize,
		minX:     min[0], minY: min[1], minZ: min[2],
		nx: nx, ny: ny, nz: nz,
		buckets: make([][]int, nx*ny*nz),
	}
}

// Bounds computes the [min, max] box to pass to New for the given points.
func Bounds(positions [][3]float64) (min, max [3]float64) {
	if len(positions) == 0 {
		return
	}
	min, max = positions[0], positions[0]
	for _, p := range positions[1:] {
		for d := 0; d < 3; d++ {
			if p[d] < min[d] {
				min[d] = p[d]
			}
			if p[d] > max[d] {
				max[d] = p[d]
			}
		}
	}
	return
}

func (g *Grid) cellCoord(pos [3]float64) (int, int, int) {
	cx := int((pos[0] - g.minX) / g.cellSize)
	cy := int((pos[1] - g.minY) / g.cellSize)
	cz := int((pos[2] - g.minZ) / g.cellSize)
	cx = clamp(cx, 0, g.nx-1)
	cy = clamp(cy, 0, g.ny-1)
	cz = clamp(cz, 0, g.nz-1)
	return cx, cy, cz
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (g *Grid) index(cx, cy, cz int) int {
	return (cz*g.ny+cy)*g.nx + cx
}

// Insert places payload (typically a cell index) into the bucket for pos.
func (g *Grid) Insert(pos [3]float64, payload int) {
	cx, cy, cz := g.cellCoord(pos)
	idx := g.index(cx, cy, cz)
	g.buckets[idx] = append(g.buckets[idx], payload)
}

// QueryNeighbors returns every payload in pos's bucket and its 26
// neighboring buckets (27 buckets total). Distance filtering against the
// collision radius is left to the caller, matching the kdtree package's
// ball-query contract at the call site.
func (g *Grid) QueryNeighbors(pos [3]float64, dst []int) []int {
	cx, cy, cz := g.cellCoord(pos)
	for dz := -1; dz <= 1; dz++ {
		z := cz + dz
		if z < 0 || z >= g.nz {
			continue
		}
		for dy := -1; dy <= 1; dy++ {
			y := cy + dy
			if y < 0 || y >= g.ny {
				continue
			}
			for dx := -1; dx <= 1; dx++ {
				x := cx + dx
				if x < 0 || x >= g.nx {
					continue
				}
				dst = append(dst, g.buckets[g.index(x, y, z)]...)
			}
		}
	}
	return dst
}
