// Package simplify implements the group-local vertex welder and mesh
// simplifier (spec.md §4.6, component C6 steps 1 and 3): merging a
// group's clusters into one mesh, welding coincident vertices at a
// coarser tolerance than package weld, and reducing the result toward a
// target triangle count while tracking the geometric error introduced.
//
// spec.md names the simplifier as an external library contract (the
// reference pipeline calls meshopt's `simplify`/`simplify_sloppy`, and
// original_source/lume-adaptrix/src/processor/simplifier.rs wraps the same
// pair via the `meshopt` crate). This package is the local stand-in §9
// sanctions: a greedy shortest-edge collapse for the primary path, and a
// coarser grid-clustering pass as the "sloppy" fallback when the primary
// path can't hit 80% of the requested reduction.
package simplify

import (
	"fmt"
	"math"
	"sort"

	"github.com/oxy-go/ladforge/cluster"
	"github.com/oxy-go/ladforge/lad"
)

// quantizeScale is the group-level weld quantization factor: positions are
// truncated to 1/1000th units before keying, coarser than package weld's
// exact-equality dedup because group boundaries can leave near-but-not-
// exactly-coincident seams after independent per-cluster simplification.
const quantizeScale = 1000

// SloppyFallbackRatio is the minimum fraction of the requested triangle
// reduction the primary simplifier must achieve before the sloppy fallback
// takes over (spec.md §4.6 step 3).
const SloppyFallbackRatio = 0.8

// Result is the output of a simplification pass: the reduced vertex/index
// buffers and the geometric error it introduced.
type Result struct {
	Vertices []cluster.Vertex
	Indices  []uint32
	Error    float32
}

// Simplifier reduces a mesh toward a target triangle count. Implementations
// stand in for an external simplification library (spec.md §6).
type Simplifier interface {
	Simplify(vertices []cluster.Vertex, indices []uint32, targetTriangleCount int) (*Result, error)
}

// New returns the default Simplifier: a greedy edge-collapse pass that
// falls back to grid clustering when it can't reach SloppyFallbackRatio of
// the requested reduction.
func New() Simplifier {
	return &simplifierImpl{}
}

type simplifierImpl struct{}

func (s *simplifierImpl) Simplify(vertices []cluster.Vertex, indices []uint32, targetTriangleCount int) (*Result, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("simplify: %w", lad.Wrap(lad.ErrInputMalformed, -1, -1, -1,
			fmt.Sprintf("indices length %d is not a multiple of 3", len(indices))))
	}
	if targetTriangleCount < 0 {
		return nil, fmt.Errorf("simplify: %w", lad.Wrap(lad.ErrLibraryFailure, -1, -1, -1,
			fmt.Sprintf("invalid target triangle count %d", targetTriangleCount)))
	}

	startTriangles := len(indices) / 3
	res := edgeCollapse(vertices, indices, targetTriangleCount)

	achieved := startTriangles - len(res.Indices)/3
	requested := startTriangles - targetTriangleCount
	if requested > 0 && float64(achieved) < SloppyFallbackRatio*float64(requested) {
		res = gridCluster(vertices, indices, targetTriangleCount)
	}

	return res, nil
}

// WeldGroup takes a group's already-merged vertex/index buffer and
// deduplicates vertices whose positions agree after truncating to
// 1/1000th units (spec.md §4.6 step 1). Unlike package weld's exact-
// equality dedup over the original source mesh, this quantized key absorbs
// the tiny numeric drift independent per-cluster simplification can leave
// at shared seams.
func WeldGroup(vertices []cluster.Vertex, indices []uint32) (*Result, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("simplify: %w", lad.Wrap(lad.ErrInputMalformed, -1, -1, -1,
			fmt.Sprintf("indices length %d is not a multiple of 3", len(indices))))
	}
	for i, idx := range indices {
		if int(idx) >= len(vertices) {
			return nil, fmt.Errorf("simplify: %w", lad.Wrap(lad.ErrInputMalformed, -1, -1, -1,
				fmt.Sprintf("index %d (slot %d) >= vertex count %d", idx, i, len(vertices))))
		}
	}

	type quantKey [3]int32
	dedup := make(map[quantKey]uint32, len(vertices))
	welded := make([]cluster.Vertex, 0, len(vertices))
	remap := make([]uint32, len(vertices))

	for i, v := range vertices {
		key := quantKey{
			int32(v.Position[0] * quantizeScale),
			int32(v.Position[1] * quantizeScale),
			int32(v.Position[2] * quantizeScale),
		}
		newIdx, ok := dedup[key]
		if !ok {
			newIdx = uint32(len(welded))
			dedup[key] = newIdx
			welded = append(welded, v)
		}
		remap[i] = newIdx
	}

	outIndices := make([]uint32, 0, len(indices))
	for t := 0; t < len(indices); t += 3 {
		a, b, c := remap[indices[t]], remap[indices[t+1]], remap[indices[t+2]]
		if a == b || b == c || a == c {
			continue // degenerate after welding
		}
		outIndices = append(outIndices, a, b, c)
	}

	return &Result{Vertices: welded, Indices: outIndices}, nil
}

type edge struct {
	a, b  uint32
	length float64
}

// edgeCollapse greedily collapses the shortest remaining edge (merging b
// into a at a's position) until the triangle count reaches target or no
// collapsible edge remains, accumulating the total collapse distance as
// its error estimate.
func edgeCollapse(vertices []cluster.Vertex, indices []uint32, target int) *Result {
	verts := append([]cluster.Vertex(nil), vertices...)
	tris := make([][3]uint32, len(indices)/3)
	for t := range tris {
		tris[t] = [3]uint32{indices[t*3], indices[t*3+1], indices[t*3+2]}
	}
	alive := make([]bool, len(verts))
	for i := range alive {
		alive[i] = true
	}
	remap := make([]uint32, len(verts))
	for i := range remap {
		remap[i] = uint32(i)
	}

	var resolve func(uint32) uint32
	resolve = func(v uint32) uint32 {
		for remap[v] != v {
			v = remap[v]
		}
		return v
	}

	triCount := len(tris)
	var totalError float64

	for triCount > target {
		edges := collectEdges(verts, tris, alive, resolve)
		if len(edges) == 0 {
			break
		}
		sort.Slice(edges, func(i, j int) bool { return edges[i].length < edges[j].length })

		collapsed := false
		for _, e := range edges {
			a, b := resolve(e.a), resolve(e.b)
			if a == b || !alive[a] || !alive[b] {
				continue
			}
			remap[b] = a
			alive[b] = false
			totalError += e.length
			collapsed = true
			break
		}
		if !collapsed {
			break
		}

		tris = filterDegenerate(tris, alive, resolve)
		triCount = len(tris)
	}

	return finalize(verts, tris, alive, resolve, float32(totalError))
}

func collectEdges(verts []cluster.Vertex, tris [][3]uint32, alive []bool, resolve func(uint32) uint32) []edge {
	seen := make(map[[2]uint32]struct{})
	var edges []edge
	for _, tri := range tris {
		for i := 0; i < 3; i++ {
			a, b := resolve(tri[i]), resolve(tri[(i+1)%3])
			if a == b || !alive[a] || !alive[b] {
				continue
			}
			if a > b {
				a, b = b, a
			}
			key := [2]uint32{a, b}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			pa, pb := verts[a].Position, verts[b].Position
			dx := float64(pa[0] - pb[0])
			dy := float64(pa[1] - pb[1])
			dz := float64(pa[2] - pb[2])
			edges = append(edges, edge{a: a, b: b, length: math.Sqrt(dx*dx + dy*dy + dz*dz)})
		}
	}
	return edges
}

func filterDegenerate(tris [][3]uint32, alive []bool, resolve func(uint32) uint32) [][3]uint32 {
	out := tris[:0]
	for _, tri := range tris {
		a, b, c := resolve(tri[0]), resolve(tri[1]), resolve(tri[2])
		if a == b || b == c || a == c {
			continue
		}
		if !alive[a] || !alive[b] || !alive[c] {
			continue
		}
		out = append(out, [3]uint32{a, b, c})
	}
	return out
}

func finalize(verts []cluster.Vertex, tris [][3]uint32, alive []bool, resolve func(uint32) uint32, errEstimate float32) *Result {
	newIndex := make([]uint32, len(verts))
	var outVerts []cluster.Vertex
	for i := range verts {
		if !alive[i] || resolve(uint32(i)) != uint32(i) {
			continue
		}
		newIndex[i] = uint32(len(outVerts))
		outVerts = append(outVerts, verts[i])
	}

	outIndices := make([]uint32, 0, len(tris)*3)
	for _, tri := range tris {
		outIndices = append(outIndices,
			newIndex[resolve(tri[0])],
			newIndex[resolve(tri[1])],
			newIndex[resolve(tri[2])],
		)
	}

	return &Result{Vertices: outVerts, Indices: outIndices, Error: errEstimate}
}

// gridCluster is the sloppy fallback: it snaps every vertex onto a grid
// sized from the mesh's own bounding box and target ratio, merges vertices
// landing in the same cell, and drops degenerate triangles. Coarser and
// faster than edge collapse, at the cost of less predictable error, which
// is why it only runs when edge collapse fails to reach 80% of the
// requested reduction.
func gridCluster(vertices []cluster.Vertex, indices []uint32, target int) *Result {
	if len(vertices) == 0 {
		return &Result{}
	}
	min, max := vertices[0].Position, vertices[0].Position
	for _, v := range vertices[1:] {
		for i := 0; i < 3; i++ {
			if v.Position[i] < min[i] {
				min[i] = v.Position[i]
			}
			if v.Position[i] > max[i] {
				max[i] = v.Position[i]
			}
		}
	}
	var diag float64
	for i := 0; i < 3; i++ {
		d := float64(max[i] - min[i])
		diag += d * d
	}
	diag = math.Sqrt(diag)
	if diag == 0 {
		diag = 1
	}

	startTriangles := len(indices) / 3
	reduction := 1.0
	if startTriangles > 0 && target < startTriangles {
		reduction = float64(startTriangles-target) / float64(startTriangles)
	}
	// More aggressive reduction requests need a coarser grid; 64 cells
	// along the diagonal at reduction=0 down to ~4 at reduction=1.
	cells := 64.0 - 60.0*reduction
	if cells < 4 {
		cells = 4
	}
	cellSize := diag / cells

	type cellKey [3]int32
	cellOf := make(map[cellKey]uint32, len(vertices))
	remap := make([]uint32, len(vertices))
	var welded []cluster.Vertex
	var errAccum float64

	for i, v := range vertices {
		key := cellKey{
			int32(float64(v.Position[0]) / cellSize),
			int32(float64(v.Position[1]) / cellSize),
			int32(float64(v.Position[2]) / cellSize),
		}
		if idx, ok := cellOf[key]; ok {
			remap[i] = idx
			dx := float64(v.Position[0] - welded[idx].Position[0])
			dy := float64(v.Position[1] - welded[idx].Position[1])
			dz := float64(v.Position[2] - welded[idx].Position[2])
			if d := math.Sqrt(dx*dx + dy*dy + dz*dz); d > errAccum {
				errAccum = d
			}
			continue
		}
		idx := uint32(len(welded))
		cellOf[key] = idx
		welded = append(welded, v)
		remap[i] = idx
	}

	outIndices := make([]uint32, 0, len(indices))
	for t := 0; t < len(indices); t += 3 {
		a, b, c := remap[indices[t]], remap[indices[t+1]], remap[indices[t+2]]
		if a == b || b == c || a == c {
			continue
		}
		outIndices = append(outIndices, a, b, c)
	}

	return &Result{Vertices: welded, Indices: outIndices, Error: float32(errAccum)}
}
