package cluster

import "unsafe"

// MaxVertices and MaxTriangles are the hard bounds the meshlet partitioner
// (package meshlet) and every cluster produced afterwards must respect: a
// cluster's vertex/triangle counts are packed into 8 bits each in Counts.
const (
	MaxVertices  = 64
	MaxTriangles = 124
)

// InfiniteError is the sentinel ParentError value for clusters that have
// not yet been grouped into a coarser level. Root (top-level) clusters
// retain this value permanently (invariant I3).
const InfiniteError = float32(1e10)

// ErrorEpsilon is the strictly-positive bump added on top of the
// simplifier's own error estimate when computing a group's parent error,
// so that I1 (lod_error < parent_error, strict) holds even when the
// simplifier reports zero error.
const ErrorEpsilon = 0.001

// Cluster is the packed 48-byte on-disk representation of a single mesh
// cluster (meshlet). Its in-memory layout is the wire format (see package
// asset) — do not reorder, widen, or narrow any field.
//
// Size: 48 bytes (16 + 4 + 4 + 4 + 4 + 4 + 12 padding).
type Cluster struct {
	CenterRadius   [4]float32 // offset  0: bounding sphere, xyz=center w=radius
	VertexOffset   uint32     // offset 16: start index into the global meshlet-vertex-index array
	TriangleOffset uint32     // offset 20: start byte offset into the global primitive-index array
	Counts         uint32     // offset 24: vertex_count in bits [0:8), triangle_count in bits [8:16)
	LODError       float32    // offset 28: this cluster's own simplification error
	ParentError    float32    // offset 32: error at which a coarser parent replaces this cluster
	_padding       [3]uint32  // offset 36: explicit padding to 48 bytes
}

// ClusterSize is the packed byte size of Cluster.
const ClusterSize = 48

var (
	_ [ClusterSize]byte = [unsafe.Sizeof(Cluster{})]byte{}
	_ [VertexSize]byte  = [unsafe.Sizeof(Vertex{})]byte{}
)

// PackCounts combines a vertex count and triangle count into the Counts
// field's bit layout. Both counts must fit in 8 bits (0..255).
func PackCounts(vertexCount, triangleCount int) uint32 {
	return uint32(vertexCount&0xFF) | (uint32(triangleCount&0xFF) << 8)
}

// VertexCount extracts the low-8-bit vertex count from Counts.
func (c *Cluster) VertexCount() int {
	return int(c.Counts & 0xFF)
}

// TriangleCount extracts the next-8-bit triangle count from Counts.
func (c *Cluster) TriangleCount() int {
	return int((c.Counts >> 8) & 0xFF)
}

// IsRoot reports whether this cluster belongs to the coarsest (final) LOD
// level, i.e. it was never folded into a coarser parent (invariant I3).
func (c *Cluster) IsRoot() bool {
	return c.ParentError >= InfiniteError
}
