package meshinput

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/oxy-go/ladforge/lad"
)

// LoadOBJ reads a minimal Wavefront OBJ stream into a Mesh: vertex
// positions (v) and triangulated faces (f). Normal (vn), texture
// coordinate (vt), material (mtllib/usemtl), group (g/o), and smoothing
// (s) directives are skipped — materials are an explicit non-goal
// (spec.md §1) and grouping has no bearing on the flat input contract.
// Faces with more than 3 vertices are fan-triangulated around the first
// vertex, matching the `triangulate: true` option the original pipeline's
// OBJ loader used (lume-adaptrix/src/bin/convert.rs).
//
// Only the position index of each face vertex is consulted for Indices;
// OBJ's per-corner normal/uv indices are not supported (this loader is
// the minimal, out-of-scope stand-in named by spec.md §6, not a full OBJ
// implementation), so Normals/UVs in the returned Mesh are left empty and
// the vertex welder substitutes the documented defaults.
//
// Returns an error if a face references a vertex index that hasn't been
// declared yet.
func LoadOBJ(r io.Reader) (*Mesh, error) {
	var positions []float32
	var indices []uint32

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, objErr(lineNo, "malformed vertex directive")
			}
			for i := 1; i <= 3; i++ {
				f, err := strconv.ParseFloat(fields[i], 32)
				if err != nil {
					return nil, objErr(lineNo, err.Error())
				}
				positions = append(positions, float32(f))
			}
		case "f":
			if len(fields) < 4 {
				return nil, objErr(lineNo, "face needs at least 3 vertices")
			}
			corners := make([]uint32, 0, len(fields)-1)
			for _, field := range fields[1:] {
				posIdx, err := parseFaceCorner(field)
				if err != nil {
					return nil, objErr(lineNo, err.Error())
				}
				vcount := len(positions) / 3
				resolved, err := resolveOBJIndex(posIdx, vcount)
				if err != nil {
					return nil, objErr(lineNo, err.Error())
				}
				corners = append(corners, uint32(resolved))
			}
			// Fan-triangulate around the first corner.
			for i := 1; i+1 < len(corners); i++ {
				indices = append(indices, corners[0], corners[i], corners[i+1])
			}
		default:
			// mtllib, usemtl, vn, vt, g, o, s, etc. — ignored.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("meshinput: %w", lad.Wrap(lad.ErrIO, -1, -1, -1, err.Error()))
	}

	return &Mesh{Positions: positions, Indices: indices}, nil
}

// objErr wraps a line-numbered OBJ parse failure as a malformed-input error,
// so callers (ultimately cmd/ladforge) can distinguish it from internal
// pipeline failures via errors.Is(err, lad.ErrInputMalformed).
func objErr(lineNo int, msg string) error {
	return fmt.Errorf("meshinput: line %d: %w", lineNo, lad.Wrap(lad.ErrInputMalformed, -1, -1, -1, msg))
}

// parseFaceCorner extracts the position index from an OBJ face corner
// token, which may be "v", "v/vt", "v//vn", or "v/vt/vn".
func parseFaceCorner(token string) (int, error) {
	parts := strings.SplitN(token, "/", 2)
	return strconv.Atoi(parts[0])
}

// resolveOBJIndex converts a 1-based (or negative, relative) OBJ index
// into a 0-based index, validating it against the vertex count declared
// so far.
func resolveOBJIndex(idx, count int) (int, error) {
	switch {
	case idx > 0:
		idx--
	case idx < 0:
		idx = count + idx
	default:
		return 0, fmt.Errorf("face index 0 is invalid in OBJ (1-based)")
	}
	if idx < 0 || idx >= count {
		return 0, fmt.Errorf("face references vertex %d but only %d are declared", idx, count)
	}
	return idx, nil
}
