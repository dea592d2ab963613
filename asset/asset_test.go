package asset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oxy-go/ladforge/cluster"
)

func sampleSections() ([]cluster.Vertex, []cluster.Cluster, []uint32, []byte) {
	vertices := []cluster.Vertex{
		{Position: [3]float32{0, 0, 0}, Normal: [3]float32{0, 1, 0}},
		{Position: [3]float32{1, 0, 0}, Normal: [3]float32{0, 1, 0}},
		{Position: [3]float32{0, 1, 0}, Normal: [3]float32{0, 1, 0}},
	}
	clusters := []cluster.Cluster{
		{
			CenterRadius:   [4]float32{0.33, 0.33, 0, 1},
			VertexOffset:   0,
			TriangleOffset: 0,
			Counts:         cluster.PackCounts(3, 1),
			LODError:       0,
			ParentError:    cluster.InfiniteError,
		},
	}
	vIndices := []uint32{0, 1, 2}
	pIndices := []byte{0, 1, 2, 0} // padded to a multiple of 4

	return vertices, clusters, vIndices, pIndices
}

func TestSaveLoadRoundTrip(t *testing.T) {
	vertices, clusters, vIndices, pIndices := sampleSections()
	path := filepath.Join(t.TempDir(), "roundtrip.lad")

	if err := Save(path, vertices, clusters, vIndices, pIndices); err != nil {
		t.Fatalf("Save: %v", err)
	}

	a, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer a.Close()

	if len(a.Vertices) != len(vertices) {
		t.Fatalf("expected %d vertices, got %d", len(vertices), len(a.Vertices))
	}
	for i := range vertices {
		if a.Vertices[i] != vertices[i] {
			t.Fatalf("vertex %d mismatch: got %+v want %+v", i, a.Vertices[i], vertices[i])
		}
	}
	if len(a.Clusters) != 1 || a.Clusters[0].VertexCount() != 3 {
		t.Fatalf("unexpected clusters: %+v", a.Clusters)
	}
	if len(a.VIndices) != 3 || a.VIndices[0] != 0 || a.VIndices[2] != 2 {
		t.Fatalf("unexpected vIndices: %v", a.VIndices)
	}
	if len(a.PIndices) != 4 {
		t.Fatalf("expected 4 pIndices bytes, got %d", len(a.PIndices))
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.lad")
	vertices, clusters, vIndices, pIndices := sampleSections()
	if err := Save(path, vertices, clusters, vIndices, pIndices); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Corrupt the magic bytes in place.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	raw[0] = 'X'
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for corrupted magic")
	}
}

func TestLoadRejectsTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truncated.lad")
	vertices, clusters, vIndices, pIndices := sampleSections()
	if err := Save(path, vertices, clusters, vIndices, pIndices); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if err := os.WriteFile(path, raw[:HeaderSize+4], 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for truncated file")
	}
}
