// Package weld implements the vertex welder (spec.md §4.1, component C1):
// it deduplicates the raw input mesh by exact position equality and
// normalizes the result into a unit-ish bounding box, producing the clean
// vertex/index buffers the rest of the pipeline builds on.
package weld

import (
	"fmt"

	"github.com/oxy-go/ladforge/cluster"
	"github.com/oxy-go/ladforge/lad"
	"github.com/oxy-go/ladforge/meshinput"
)

// Result is the output of Weld: a deduplicated, normalized vertex buffer
// and the index buffer remapped to it.
type Result struct {
	Vertices []cluster.Vertex
	Indices  []uint32
}

// positionKey is an exact-equality key for deduplication: welding is
// defined on position only (the reference pipeline's choice, spec.md
// §4.1), so two input vertices at the same position collapse to one
// output vertex even if their normal or uv differ.
type positionKey [3]float32

// Weld deduplicates mesh's vertices by exact position equality, fills in
// default normals/uvs where the input omitted them, remaps the index
// buffer to the deduplicated vertex table, and normalizes the result so
// it is centered at the origin with its largest dimension scaled to 2.
//
// Parameters:
//   - mesh: the flat input mesh (spec.md §6)
//
// Returns:
//   - *Result: the welded, normalized vertex/index buffers
//   - error: lad.ErrInputMalformed if indices are out of range or the
//     attribute arrays are inconsistent with the position count
func Weld(mesh *meshinput.Mesh) (*Result, error) {
	if len(mesh.Positions)%3 != 0 {
		return nil, fmt.Errorf("weld: %w", lad.Wrap(lad.ErrInputMalformed, -1, -1, -1,
			fmt.Sprintf("positions length %d is not a multiple of 3", len(mesh.Positions))))
	}
	if len(mesh.Indices)%3 != 0 {
		return nil, fmt.Errorf("weld: %w", lad.Wrap(lad.ErrInputMalformed, -1, -1, -1,
			fmt.Sprintf("indices length %d is not a multiple of 3", len(mesh.Indices))))
	}
	vertexCount := mesh.VertexCount()
	if len(mesh.Normals) != 0 && len(mesh.Normals) != vertexCount*3 {
		return nil, fmt.Errorf("weld: %w", lad.Wrap(lad.ErrInputMalformed, -1, -1, -1,
			"normals length inconsistent with positions"))
	}
	if len(mesh.UVs) != 0 && len(mesh.UVs) != vertexCount*2 {
		return nil, fmt.Errorf("weld: %w", lad.Wrap(lad.ErrInputMalformed, -1, -1, -1,
			"uvs length inconsistent with positions"))
	}
	for i, idx := range mesh.Indices {
		if int(idx) >= vertexCount {
			return nil, fmt.Errorf("weld: %w", lad.Wrap(lad.ErrInputMalformed, -1, -1, -1,
				fmt.Sprintf("index %d (slot %d) >= vertex count %d", idx, i, vertexCount)))
		}
	}

	rawVerts := make([]cluster.Vertex, vertexCount)
	for i := 0; i < vertexCount; i++ {
		v := cluster.Vertex{
			Position: [3]float32{mesh.Positions[i*3], mesh.Positions[i*3+1], mesh.Positions[i*3+2]},
			Normal:   [3]float32{0, 1, 0},
			UV:       [2]float32{0, 0},
		}
		if len(mesh.Normals) != 0 {
			v.Normal = [3]float32{mesh.Normals[i*3], mesh.Normals[i*3+1], mesh.Normals[i*3+2]}
		}
		if len(mesh.UVs) != 0 {
			v.UV = [2]float32{mesh.UVs[i*2], mesh.UVs[i*2+1]}
		}
		rawVerts[i] = v
	}

	dedup := make(map[positionKey]uint32, vertexCount)
	welded := make([]cluster.Vertex, 0, vertexCount)
	remap := make([]uint32, vertexCount)
	for i, v := range rawVerts {
		key := positionKey(v.Position)
		newIdx, ok := dedup[key]
		if !ok {
			newIdx = uint32(len(welded))
			dedup[key] = newIdx
			welded = append(welded, v)
		}
		remap[i] = newIdx
	}

	indices := make([]uint32, len(mesh.Indices))
	for i, idx := range mesh.Indices {
		indices[i] = remap[idx]
	}

	normalize(welded)

	return &Result{Vertices: welded, Indices: indices}, nil
}

// normalize recenters vertices on the origin and scales them so the
// largest bounding-box dimension equals 2. This is a pure affine
// transform with no semantic effect on the cluster graph beyond numerics
// (spec.md §4.1).
func normalize(vertices []cluster.Vertex) {
	if len(vertices) == 0 {
		return
	}
	min := vertices[0].Position
	max := vertices[0].Position
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

	var center [3]float32
	var largest float32
	for i := 0; i < 3; i++ {
		center[i] = (min[i] + max[i]) / 2
		if dim := max[i] - min[i]; dim > largest {
			largest = dim
		}
	}
	if largest == 0 {
		return
	}
	scale := 2 / largest

	for i := range vertices {
		for j := 0; j < 3; j++ {
			vertices[i].Position[j] = (vertices[i].Position[j] - center[j]) * scale
		}
	}
}
