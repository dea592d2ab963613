// Package meshinput defines the flat-array input contract the build
// pipeline consumes from its mesh-file loader collaborator (spec.md §6).
// The loader itself — glTF/OBJ/FBX parsing, scene-graph traversal — is an
// out-of-scope external concern; this package only pins down the shape of
// data the pipeline accepts.
package meshinput

// Mesh is the flat, loader-agnostic input to the build pipeline: raw
// positions/normals/uvs and triangle indices, exactly as spec.md §6
// describes. Normals and UVs may be empty, in which case the vertex
// welder substitutes (0,1,0) and (0,0) respectively.
type Mesh struct {
	// Positions holds 3 float32 per vertex.
	Positions []float32
	// Normals holds 3 float32 per vertex, or is empty.
	Normals []float32
	// UVs holds 2 float32 per vertex, or is empty.
	UVs []float32
	// Indices holds 3 uint32 per triangle.
	Indices []uint32
}

// VertexCount returns the number of vertices implied by Positions.
func (m *Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

// TriangleCount returns the number of triangles implied by Indices.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}
