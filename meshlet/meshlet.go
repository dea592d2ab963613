// Package meshlet implements the level-0 meshlet partitioner (spec.md
// §4.2, component C2) and doubles as the "recluster" step performed on
// each group's simplified geometry (§4.6 step 4).
//
// spec.md treats the meshlet builder as a replaceable external library
// (the reference pipeline's original implementation called out to
// meshopt's `meshopt_buildMeshlets`, and the Rust ancestor in
// original_source/lume-adaptrix called the `meshopt` crate directly). This
// package is the "equivalent local implementation" spec.md §9 explicitly
// sanctions: a single-pass greedy packer that closes a meshlet as soon as
// adding the next triangle would exceed MaxVertices or MaxTriangles.
package meshlet

import (
	"fmt"

	"github.com/oxy-go/ladforge/lad"
)

// Meshlet is one partition of triangles produced by BuildMeshlets: a
// local vertex table (indices into the caller's vertex space) and a local
// triangle table (byte triples indexing into Vertices).
type Meshlet struct {
	Vertices []uint32
	Indices  []byte // byte triples, length == 3*TriangleCount
}

// TriangleCount returns the number of triangles packed into the meshlet.
func (m *Meshlet) TriangleCount() int { return len(m.Indices) / 3 }

// BuildMeshlets partitions indices (a flat triangle list into a vertex
// space of size vertexCount) into meshlets, each with at most maxV
// vertices and maxT triangles. Triangles are assigned to exactly one
// meshlet each, in input order; vertices may be duplicated across
// meshlets when a triangle spans a meshlet boundary.
//
// Parameters:
//   - indices: flat triangle list, 3 per triangle, values < vertexCount
//   - vertexCount: size of the vertex space indices refers into
//   - maxV: maximum vertices per meshlet (spec.md MaxVertices = 64)
//   - maxT: maximum triangles per meshlet (spec.md MaxTriangles = 124)
//
// Returns:
//   - []Meshlet: the partitioned meshlets, in input order
//   - error: lad.ErrInputMalformed if indices is malformed, or
//     lad.ErrLibraryFailure if maxV/maxT are non-positive or maxV > 255
func BuildMeshlets(indices []uint32, vertexCount, maxV, maxT int) ([]Meshlet, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("meshlet: %w", lad.Wrap(lad.ErrInputMalformed, -1, -1, -1,
			fmt.Sprintf("indices length %d is not a multiple of 3", len(indices))))
	}
	if maxV <= 0 || maxV > 255 || maxT <= 0 {
		return nil, fmt.Errorf("meshlet: %w", lad.Wrap(lad.ErrLibraryFailure, -1, -1, -1,
			fmt.Sprintf("invalid bounds maxV=%d maxT=%d", maxV, maxT)))
	}
	for i, idx := range indices {
		if int(idx) >= vertexCount {
			return nil, fmt.Errorf("meshlet: %w", lad.Wrap(lad.ErrInputMalformed, -1, -1, -1,
				fmt.Sprintf("index %d (slot %d) >= vertex count %d", idx, i, vertexCount)))
		}
	}

	var meshlets []Meshlet
	triCount := len(indices) / 3
	if triCount == 0 {
		return meshlets, nil
	}

	localOf := make(map[uint32]byte, maxV)
	var curVerts []uint32
	var curTris []byte

	flush := func() {
		if len(curTris) == 0 {
			return
		}
		meshlets = append(meshlets, Meshlet{Vertices: curVerts, Indices: curTris})
		localOf = make(map[uint32]byte, maxV)
		curVerts = nil
		curTris = nil
	}

	for t := 0; t < triCount; t++ {
		a, b, c := indices[t*3], indices[t*3+1], indices[t*3+2]

		newCount := 0
		for _, v := range [3]uint32{a, b, c} {
			if _, ok := localOf[v]; !ok {
				newCount++
			}
		}

		if len(curVerts)+newCount > maxV || len(curTris)/3+1 > maxT {
			flush()
		}

		var tri [3]byte
		for i, v := range [3]uint32{a, b, c} {
			local, ok := localOf[v]
			if !ok {
				local = byte(len(curVerts))
				localOf[v] = local
				curVerts = append(curVerts, v)
			}
			tri[i] = local
		}
		curTris = append(curTris, tri[0], tri[1], tri[2])
	}
	flush()

	return meshlets, nil
}
