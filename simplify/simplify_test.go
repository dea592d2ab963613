package simplify

import (
	"testing"

	"github.com/oxy-go/ladforge/cluster"
)

func gridMesh() ([]cluster.Vertex, []uint32) {
	// A 3x3 grid of quads (2 triangles each) = 18 triangles, 16 vertices.
	var verts []cluster.Vertex
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			verts = append(verts, cluster.Vertex{Position: [3]float32{float32(x), float32(y), 0}})
		}
	}
	var indices []uint32
	idx := func(x, y int) uint32 { return uint32(y*4 + x) }
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			a, b, c, d := idx(x, y), idx(x+1, y), idx(x+1, y+1), idx(x, y+1)
			indices = append(indices, a, b, c, a, c, d)
		}
	}
	return verts, indices
}

func TestSimplifyReducesTriangleCount(t *testing.T) {
	verts, indices := gridMesh()
	startTris := len(indices) / 3
	s := New()
	res, err := s.Simplify(verts, indices, startTris/2)
	if err != nil {
		t.Fatalf("Simplify: %v", err)
	}
	if got := len(res.Indices) / 3; got >= startTris {
		t.Fatalf("expected fewer triangles than %d, got %d", startTris, got)
	}
}

func TestSimplifyNoReductionRequestedIsNoOp(t *testing.T) {
	verts, indices := gridMesh()
	s := New()
	res, err := s.Simplify(verts, indices, len(indices)/3)
	if err != nil {
		t.Fatalf("Simplify: %v", err)
	}
	if len(res.Indices) != len(indices) {
		t.Fatalf("expected unchanged triangle count, got %d want %d", len(res.Indices)/3, len(indices)/3)
	}
}

func TestSimplifyRejectsMalformedIndices(t *testing.T) {
	verts, _ := gridMesh()
	s := New()
	if _, err := s.Simplify(verts, []uint32{0, 1}, 0); err == nil {
		t.Fatal("expected error for indices not a multiple of 3")
	}
}

func TestSimplifyRejectsNegativeTarget(t *testing.T) {
	verts, indices := gridMesh()
	s := New()
	if _, err := s.Simplify(verts, indices, -1); err == nil {
		t.Fatal("expected error for negative target triangle count")
	}
}

func TestWeldGroupDeduplicatesQuantizedPositions(t *testing.T) {
	verts := []cluster.Vertex{
		{Position: [3]float32{0, 0, 0}},
		{Position: [3]float32{0.00001, 0, 0}}, // same cell at 1/1000 quantization
		{Position: [3]float32{1, 0, 0}},
	}
	indices := []uint32{0, 1, 2}
	res, err := WeldGroup(verts, indices)
	if err != nil {
		t.Fatalf("WeldGroup: %v", err)
	}
	if len(res.Vertices) != 2 {
		t.Fatalf("expected 2 vertices after quantized weld, got %d", len(res.Vertices))
	}
	// The welded pair (0,1) collapses into one vertex, making the
	// triangle degenerate and dropping it from the index buffer.
	if len(res.Indices) != 0 {
		t.Fatalf("expected degenerate triangle to be dropped, got %d indices", len(res.Indices))
	}
}

func TestWeldGroupRejectsOutOfRangeIndex(t *testing.T) {
	verts := []cluster.Vertex{{Position: [3]float32{0, 0, 0}}}
	if _, err := WeldGroup(verts, []uint32{0, 1, 2}); err == nil {
		t.Fatal("expected error for out-of-range index")
	}
}

func TestSimplifyAggressiveReductionKeepsNonEmptyMesh(t *testing.T) {
	// A dense grid (162 triangles) reduced toward an aggressive target of 5
	// triangles; edge collapse reaches the target here, so the sloppy
	// fallback does not run. The simplified mesh must not be empty.
	var verts []cluster.Vertex
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			verts = append(verts, cluster.Vertex{Position: [3]float32{float32(x), float32(y), 0}})
		}
	}
	idx := func(x, y int) uint32 { return uint32(y*10 + x) }
	var indices []uint32
	for y := 0; y < 9; y++ {
		for x := 0; x < 9; x++ {
			a, b, c, d := idx(x, y), idx(x+1, y), idx(x+1, y+1), idx(x, y+1)
			indices = append(indices, a, b, c, a, c, d)
		}
	}
	s := New()
	res, err := s.Simplify(verts, indices, 5)
	if err != nil {
		t.Fatalf("Simplify: %v", err)
	}
	if len(res.Indices) == 0 {
		t.Fatal("expected a non-empty simplified mesh")
	}
}
