package weld

import (
	"math"
	"testing"

	"github.com/oxy-go/ladforge/meshinput"
)

func TestWeldDeduplicatesSharedPositions(t *testing.T) {
	// Two triangles sharing an edge: vertices 0,1 duplicated verbatim.
	mesh := &meshinput.Mesh{
		Positions: []float32{
			0, 0, 0, // 0
			1, 0, 0, // 1
			0, 1, 0, // 2
			0, 0, 0, // 3 (dup of 0)
			1, 0, 0, // 4 (dup of 1)
			1, 1, 0, // 5
		},
		Indices: []uint32{0, 1, 2, 3, 4, 5},
	}

	res, err := Weld(mesh)
	if err != nil {
		t.Fatalf("Weld: %v", err)
	}
	if len(res.Vertices) != 4 {
		t.Fatalf("expected 4 deduplicated vertices, got %d", len(res.Vertices))
	}
	if res.Indices[0] != res.Indices[3] || res.Indices[1] != res.Indices[4] {
		t.Fatalf("expected remapped indices to coincide for duplicated positions: %v", res.Indices)
	}
}

func TestWeldNormalizesToUnitBox(t *testing.T) {
	mesh := &meshinput.Mesh{
		Positions: []float32{
			0, 0, 0,
			10, 0, 0,
			0, 10, 0,
		},
		Indices: []uint32{0, 1, 2},
	}
	res, err := Weld(mesh)
	if err != nil {
		t.Fatalf("Weld: %v", err)
	}
	var min, max [3]float32
	min = res.Vertices[0].Position
	max = res.Vertices[0].Position
	for _, v := range res.Vertices {
		for i := 0; i < 3; i++ {
			if v.Position[i] < min[i] {
				min[i] = v.Position[i]
			}
			if v.Position[i] > max[i] {
				max[i] = v.Position[i]
			}
		}
	}
	var largest float32
	for i := 0; i < 3; i++ {
		if d := max[i] - min[i]; d > largest {
			largest = d
		}
	}
	if math.Abs(float64(largest-2)) > 1e-4 {
		t.Fatalf("expected largest dimension to normalize to 2, got %f", largest)
	}
}

func TestWeldDefaultsMissingNormalsAndUVs(t *testing.T) {
	mesh := &meshinput.Mesh{
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Indices:   []uint32{0, 1, 2},
	}
	res, err := Weld(mesh)
	if err != nil {
		t.Fatalf("Weld: %v", err)
	}
	for _, v := range res.Vertices {
		if v.Normal != [3]float32{0, 1, 0} {
			t.Fatalf("expected default normal (0,1,0), got %v", v.Normal)
		}
		if v.UV != [2]float32{0, 0} {
			t.Fatalf("expected default uv (0,0), got %v", v.UV)
		}
	}
}

func TestWeldRejectsOutOfRangeIndex(t *testing.T) {
	mesh := &meshinput.Mesh{
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Indices:   []uint32{0, 1, 5},
	}
	if _, err := Weld(mesh); err == nil {
		t.Fatal("expected error for out-of-range index")
	}
}
