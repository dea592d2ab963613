package cluster

import (
	"fmt"
	"math"
	"sync"

	"github.com/oxy-go/ladforge/lad"
)

// Store is the append-only global record of every cluster produced across
// every LOD level, plus the two flat index arrays the clusters reference.
// Clusters are created in strictly increasing global index order (level 0
// first, then each coarser level) and are never mutated after creation
// except for ParentError, which is patched exactly once when a coarser
// level folds the cluster into a group (invariant I2/I3).
//
// Every Store method takes the store's mutex, so concurrent calls do not
// corrupt it. Package lod nonetheless calls PushCluster only from its
// single-threaded merge phase, after the worker pool has finished, so that
// global indices are assigned in a deterministic order. PatchParentError must only be called from
// the single merge thread, after every PushCluster call for that level has
// returned (§5 ordering guarantee (iii)).
type Store interface {
	// PushCluster appends a new cluster built from localVerts (indices
	// into the global vertex array) and localTris (byte triples indexing
	// into localVerts), and returns its global index.
	PushCluster(localVerts []uint32, localTris []byte, lodError, parentError float32) (uint32, error)

	// PatchParentError rewrites the ParentError field of an existing
	// cluster. Must be called only from the single-threaded merge phase.
	PatchParentError(globalIndex uint32, parentError float32)

	// Clusters returns the full, in-order slice of clusters built so far.
	Clusters() []Cluster

	// Vertices returns the global vertex array the store was constructed
	// with (never mutated).
	Vertices() []Vertex

	// MeshletVertexIndices returns the global meshlet-vertex-index array.
	MeshletVertexIndices() []uint32

	// MeshletPrimitiveIndices returns the global primitive-index array.
	MeshletPrimitiveIndices() []byte
}

// storeImpl is the implementation of Store.
type storeImpl struct {
	mu sync.Mutex

	vertices  []Vertex
	clusters  []Cluster
	vIndices  []uint32
	pIndices  []byte
}

// StoreOption is a functional option for configuring a Store via NewStore.
type StoreOption func(*storeImpl)

// WithClusterCapacity pre-allocates room for the given number of clusters,
// avoiding reallocation churn during the build.
//
// Parameters:
//   - n: expected total cluster count across all levels
//
// Returns:
//   - StoreOption: a function that applies the capacity hint
func WithClusterCapacity(n int) StoreOption {
	return func(s *storeImpl) {
		s.clusters = make([]Cluster, 0, n)
	}
}

// WithIndexCapacity pre-allocates room for the meshlet-vertex-index and
// meshlet-primitive-index arrays.
//
// Parameters:
//   - vIndexCap: expected total length of the vertex-index array
//   - pIndexCap: expected total length of the primitive-index array (bytes)
//
// Returns:
//   - StoreOption: a function that applies the capacity hints
func WithIndexCapacity(vIndexCap, pIndexCap int) StoreOption {
	return func(s *storeImpl) {
		s.vIndices = make([]uint32, 0, vIndexCap)
		s.pIndices = make([]byte, 0, pIndexCap)
	}
}

// NewStore creates an empty Store over the given global vertex array.
// vertices must already be deduplicated and normalized (the output of
// package weld); the Store never mutates it.
//
// Parameters:
//   - vertices: the global vertex array
//   - options: functional options for initial capacity
//
// Returns:
//   - Store: the newly created, empty store
func NewStore(vertices []Vertex, options ...StoreOption) Store {
	s := &storeImpl{
		vertices: vertices,
		clusters: make([]Cluster, 0, 1024),
		vIndices: make([]uint32, 0, 16384),
		pIndices: make([]byte, 0, 65536),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// PushCluster implements Store.
func (s *storeImpl) PushCluster(localVerts []uint32, localTris []byte, lodError, parentError float32) (uint32, error) {
	if len(localVerts) == 0 || len(localVerts) > 255 {
		return 0, fmt.Errorf("cluster: push_cluster: %w", lad.Wrap(lad.ErrLibraryFailure, -1, -1, -1,
			fmt.Sprintf("local vertex count %d out of range (1..255)", len(localVerts))))
	}
	if len(localTris)%3 != 0 || len(localTris) > 255*3 {
		return 0, fmt.Errorf("cluster: push_cluster: %w", lad.Wrap(lad.ErrLibraryFailure, -1, -1, -1,
			fmt.Sprintf("local triangle byte count %d invalid (must be a multiple of 3, <= 765)", len(localTris))))
	}
	for i, b := range localTris {
		if int(b) >= len(localVerts) {
			return 0, fmt.Errorf("cluster: push_cluster: %w", lad.Wrap(lad.ErrLibraryFailure, -1, -1, -1,
				fmt.Sprintf("primitive byte %d (value %d) >= local vertex count %d", i, b, len(localVerts))))
		}
	}
	for _, v := range localVerts {
		if int(v) >= len(s.vertices) {
			return 0, fmt.Errorf("cluster: push_cluster: %w", lad.Wrap(lad.ErrLibraryFailure, -1, -1, -1,
				fmt.Sprintf("vertex index %d >= global vertex count %d", v, len(s.vertices))))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	vOffset := uint32(len(s.vIndices))
	tOffset := uint32(len(s.pIndices))

	s.vIndices = append(s.vIndices, localVerts...)
	s.pIndices = append(s.pIndices, localTris...)
	for len(s.pIndices)%4 != 0 {
		s.pIndices = append(s.pIndices, 0)
	}

	center, radius := boundingSphere(s.vertices, localVerts)

	c := Cluster{
		CenterRadius:   [4]float32{center[0], center[1], center[2], radius},
		VertexOffset:   vOffset,
		TriangleOffset: tOffset,
		Counts:         PackCounts(len(localVerts), len(localTris)/3),
		LODError:       lodError,
		ParentError:    parentError,
	}

	idx := uint32(len(s.clusters))
	s.clusters = append(s.clusters, c)
	return idx, nil
}

// PatchParentError implements Store.
func (s *storeImpl) PatchParentError(globalIndex uint32, parentError float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clusters[globalIndex].ParentError = parentError
}

// Clusters implements Store.
func (s *storeImpl) Clusters() []Cluster {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clusters
}

// Vertices implements Store.
func (s *storeImpl) Vertices() []Vertex { return s.vertices }

// MeshletVertexIndices implements Store.
func (s *storeImpl) MeshletVertexIndices() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vIndices
}

// MeshletPrimitiveIndices implements Store.
func (s *storeImpl) MeshletPrimitiveIndices() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pIndices
}

// boundingSphere computes a simple, intentionally non-minimal upper-bound
// sphere for a set of vertices: the centroid, then the maximum distance
// from the centroid to any of the vertices.
func boundingSphere(vertices []Vertex, localVerts []uint32) (center [3]float32, radius float32) {
	var cx, cy, cz float64
	for _, vi := range localVerts {
		p := vertices[vi].Position
		cx += float64(p[0])
		cy += float64(p[1])
		cz += float64(p[2])
	}
	n := float64(len(localVerts))
	cx /= n
	cy /= n
	cz /= n
	center = [3]float32{float32(cx), float32(cy), float32(cz)}

	var maxDistSq float64
	for _, vi := range localVerts {
		p := vertices[vi].Position
		dx := float64(p[0]) - cx
		dy := float64(p[1]) - cy
		dz := float64(p[2]) - cz
		d := dx*dx + dy*dy + dz*dz
		if d > maxDistSq {
			maxDistSq = d
		}
	}
	radius = float32(math.Sqrt(maxDistSq))
	return
}
