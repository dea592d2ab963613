package cluster

// Vertex is the 32-byte GPU-ready vertex layout shared by every level of
// the cluster graph: position, normal, and a single UV set. The struct's
// in-memory layout is the on-disk layout (see package asset) — no field
// may be reordered or widened without updating the wire format.
//
// Size: 32 bytes (12 + 12 + 8), no implicit padding.
type Vertex struct {
	Position [3]float32 // offset  0: object-space position
	Normal   [3]float32 // offset 12: shading normal
	UV       [2]float32 // offset 24: texture coordinate
}

// VertexSize is the packed byte size of Vertex.
const VertexSize = 32
