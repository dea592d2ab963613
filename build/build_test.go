package build

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/oxy-go/ladforge/asset"
)

const cubeOBJ = `
v -1 -1 -1
v  1 -1 -1
v  1  1 -1
v -1  1 -1
v -1 -1  1
v  1 -1  1
v  1  1  1
v -1  1  1
f 1 2 3 4
f 5 8 7 6
f 1 5 6 2
f 2 6 7 3
f 3 7 8 4
f 4 8 5 1
`

func TestRunOBJProducesVerifiableAsset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.lad")
	stats, err := RunOBJ(strings.NewReader(cubeOBJ), path, Options{WorkerCount: 2})
	if err != nil {
		t.Fatalf("RunOBJ: %v", err)
	}
	if stats.InputVertices != 8 {
		t.Fatalf("expected 8 input vertices, got %d", stats.InputVertices)
	}
	if stats.TotalClusters == 0 {
		t.Fatal("expected at least one cluster")
	}
	if stats.RootClusters == 0 {
		t.Fatal("expected at least one root cluster")
	}

	a, err := asset.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer a.Close()
	if len(a.Clusters) != stats.TotalClusters {
		t.Fatalf("loaded %d clusters, expected %d", len(a.Clusters), stats.TotalClusters)
	}
}

func TestRunOBJRejectsNonPositiveWorkerCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.lad")
	if _, err := RunOBJ(strings.NewReader(cubeOBJ), path, Options{WorkerCount: 0}); err == nil {
		t.Fatal("expected error for non-positive worker count")
	}
}

func TestRunOBJRejectsMalformedInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.lad")
	if _, err := RunOBJ(strings.NewReader("not an obj file but also not empty\nf 1 2 3\n"), path, Options{WorkerCount: 1}); err == nil {
		t.Fatal("expected error for a face referencing an undeclared vertex")
	}
}
