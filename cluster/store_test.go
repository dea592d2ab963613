package cluster

import "testing"

func unitTriangleVerts() []Vertex {
	return []Vertex{
		{Position: [3]float32{0, 0, 0}},
		{Position: [3]float32{1, 0, 0}},
		{Position: [3]float32{0, 1, 0}},
	}
}

func TestPushClusterComputesBoundingSphere(t *testing.T) {
	store := NewStore(unitTriangleVerts())
	idx, err := store.PushCluster([]uint32{0, 1, 2}, []byte{0, 1, 2}, 0, InfiniteError)
	if err != nil {
		t.Fatalf("PushCluster: %v", err)
	}
	if idx != 0 {
		t.Fatalf("expected first cluster index 0, got %d", idx)
	}
	c := store.Clusters()[0]
	if c.VertexCount() != 3 || c.TriangleCount() != 1 {
		t.Fatalf("unexpected counts: verts=%d tris=%d", c.VertexCount(), c.TriangleCount())
	}
	if c.CenterRadius[3] <= 0 {
		t.Fatalf("expected positive bounding radius, got %f", c.CenterRadius[3])
	}
}

func TestPushClusterRejectsTooManyVertices(t *testing.T) {
	store := NewStore(unitTriangleVerts())
	localVerts := make([]uint32, 256)
	if _, err := store.PushCluster(localVerts, []byte{0, 1, 2}, 0, InfiniteError); err == nil {
		t.Fatal("expected error for local vertex count > 255")
	}
}

func TestPushClusterRejectsOutOfRangeGlobalVertex(t *testing.T) {
	store := NewStore(unitTriangleVerts())
	if _, err := store.PushCluster([]uint32{0, 1, 9}, []byte{0, 1, 2}, 0, InfiniteError); err == nil {
		t.Fatal("expected error for out-of-range global vertex index")
	}
}

func TestPushClusterRejectsOutOfRangeLocalPrimitive(t *testing.T) {
	store := NewStore(unitTriangleVerts())
	if _, err := store.PushCluster([]uint32{0, 1, 2}, []byte{0, 1, 3}, 0, InfiniteError); err == nil {
		t.Fatal("expected error for local primitive index >= local vertex count")
	}
}

func TestPushClusterPadsPrimitiveIndicesToFourByteMultiple(t *testing.T) {
	store := NewStore(unitTriangleVerts())
	if _, err := store.PushCluster([]uint32{0, 1, 2}, []byte{0, 1, 2}, 0, InfiniteError); err != nil {
		t.Fatalf("PushCluster: %v", err)
	}
	if len(store.MeshletPrimitiveIndices())%4 != 0 {
		t.Fatalf("expected primitive index array padded to multiple of 4, got length %d", len(store.MeshletPrimitiveIndices()))
	}
}

func TestPatchParentErrorUpdatesExistingCluster(t *testing.T) {
	store := NewStore(unitTriangleVerts())
	idx, err := store.PushCluster([]uint32{0, 1, 2}, []byte{0, 1, 2}, 0, InfiniteError)
	if err != nil {
		t.Fatalf("PushCluster: %v", err)
	}
	store.PatchParentError(idx, 0.5)
	if store.Clusters()[idx].ParentError != 0.5 {
		t.Fatalf("expected patched parent error 0.5, got %f", store.Clusters()[idx].ParentError)
	}
}
