// Package meshio loads the external polygon format used by the mesh init
// shape: a vertex table whose rows optionally carry a normal in columns
// 4-6, and a triangle face table, turned into cells with symmetric
// adjacency already wired (three Connect calls per face).
//
// The wire format is a deliberately simple whitespace-delimited text
// format (see parse), read with bufio/strconv.
package meshio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cellmesh/meshgrowth/cell"
	"github.com/cellmesh/meshgrowth/vec3"
)

// BootstrapError reports a fatal failure to load or parse a mesh file
// before the frame loop can begin.
type BootstrapError struct {
	Path string
	Err  error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("meshio: loading %q: %v", e.Path, e.Err)
}

func (e *BootstrapError) Unwrap() error { return e.Err }

// Loader reads the text polygon format described above.
type Loader struct{}

// Load opens path and parses it into a population with adjacency wired.
// Any failure to open or parse is returned as a *BootstrapError carrying
// the file path.
func (Loader) Load(path string) (cell.Population, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &BootstrapError{Path: path, Err: err}
	}
	defer f.Close()

	pop, err := parse(f)
	if err != nil {
		return nil, &BootstrapError{Path: path, Err: err}
	}
	return pop, nil
}

// header is the first non-blank line: "<nverts> <nfaces> <hasNormals 0|1>".
func parse(r io.Reader) (cell.Population, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1<<20), 1<<20)

	nextLine := func() (string, bool) {
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			return line, true
		}
		return "", false
	}

	headerLine, ok := nextLine()
	if !ok {
		return nil, fmt.Errorf("empty mesh file")
	}
	fields := strings.Fields(headerLine)
	if len(fields) < 2 {
		return nil, fmt.Errorf("malformed header %q", headerLine)
	}
	nVerts, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("bad vertex count: %w", err)
	}
	nFaces, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("bad face count: %w", err)
	}
	hasNormals := len(fields) >= 3 && fields[2] == "1"

	pop := make(cell.Population, nVerts)
	for i := 0; i < nVerts; i++ {
		line, ok := nextLine()
		if !ok {
			return nil, fmt.Errorf("expected %d vertices, got %d", nVerts, i)
		}
		vals, err := parseFloats(line)
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
		minFields := 3
		if hasNormals {
			minFields = 6
		}
		if len(vals) < minFields {
			return nil, fmt.Errorf("vertex %d: expected %d fields, got %d", i, minFields, len(vals))
		}
		pos := vec3.Vec3{X: vals[0], Y: vals[1], Z: vals[2]}
		var normal vec3.Vec3
		if hasNormals {
			normal = vec3.Vec3{X: vals[3], Y: vals[4], Z: vals[5]}.Normalized()
		} else {
			normal = pos.Normalized()
		}
		pop[i] = &cell.Cell{Index: i, Position: pos, Normal: normal}
	}

	for f := 0; f < nFaces; f++ {
		line, ok := nextLine()
		if !ok {
			return nil, fmt.Errorf("expected %d faces, got %d", nFaces, f)
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("face %d: expected 3 indices, got %d", f, len(fields))
		}
		idx := make([]int, 3)
		for k := 0; k < 3; k++ {
			v, err := strconv.Atoi(fields[k])
			if err != nil {
				return nil, fmt.Errorf("face %d: %w", f, err)
			}
			if v < 0 || v >= nVerts {
				return nil, fmt.Errorf("face %d: vertex index %d out of range", f, v)
			}
			idx[k] = v
		}
		pop.Connect(idx[0], idx[1])
		pop.Connect(idx[0], idx[2])
		pop.Connect(idx[1], idx[2])
	}

	return pop, nil
}

func parseFloats(line string) ([]float64, error) {
	fields := strings.Fields(line)
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}
