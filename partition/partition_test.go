package partition

import (
	"testing"

	"github.com/oxy-go/ladforge/adjacency"
)

func assignmentCounts(t *testing.T, n int, groups [][]uint32) map[uint32]int {
	t.Helper()
	counts := make(map[uint32]int)
	for _, g := range groups {
		for _, node := range g {
			counts[node]++
		}
	}
	if len(counts) != n {
		t.Fatalf("expected all %d nodes assigned, got %d distinct", n, len(counts))
	}
	for node, c := range counts {
		if c != 1 {
			t.Fatalf("node %d assigned to %d groups, expected exactly 1", node, c)
		}
	}
	return counts
}

func TestPartitionAssignsEveryNodeExactlyOnce(t *testing.T) {
	// Cluster i occupies vertices i-1 and i+1, so clusters i and i+2 share
	// vertex i+1: two chains, 0-2-4-6 and 1-3-5-7.
	cv := make([][]uint32, 8)
	for i := range cv {
		if i > 0 {
			cv[i] = append(cv[i], uint32(i-1))
		}
		if i < 7 {
			cv[i] = append(cv[i], uint32(i+1))
		}
	}
	g, err := adjacency.Build(cv)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	groups, err := Partition(g, 3)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	assignmentCounts(t, 8, groups)
	for _, grp := range groups {
		if len(grp) > 3 {
			t.Fatalf("group exceeds size cap: %v", grp)
		}
	}
}

func TestPartitionKeepsConnectedNodesTogetherWhenPossible(t *testing.T) {
	// Two disjoint triangles of clusters: {0,1,2} and {3,4,5}.
	cv := [][]uint32{
		{1, 2}, {0, 2}, {0, 1},
		{4, 5}, {3, 5}, {3, 4},
	}
	g, err := adjacency.Build(cv)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	groups, err := Partition(g, 3)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups of 3, got %d", len(groups))
	}
	assignmentCounts(t, 6, groups)
}

func TestPartitionToppsOffUndersizedComponents(t *testing.T) {
	// Three isolated singleton nodes (no edges at all); group size 2 must
	// still assign every node, leaving no group empty.
	cv := [][]uint32{{}, {}, {}}
	g, err := adjacency.Build(cv)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	groups, err := Partition(g, 2)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	assignmentCounts(t, 3, groups)
	for _, grp := range groups {
		if len(grp) == 0 {
			t.Fatal("unexpected empty group")
		}
	}
}

func TestPartitionRejectsNonPositiveGroupSize(t *testing.T) {
	g, err := adjacency.Build([][]uint32{{1}, {0}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := Partition(g, 0); err == nil {
		t.Fatal("expected error for non-positive group size")
	}
}

func TestPartitionDeterministic(t *testing.T) {
	cv := make([][]uint32, 20)
	for i := range cv {
		if i > 0 {
			cv[i] = append(cv[i], uint32(i-1))
		}
		if i < 19 {
			cv[i] = append(cv[i], uint32(i+1))
		}
	}
	g, err := adjacency.Build(cv)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	first, err := Partition(g, 4)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Partition(g, 4)
		if err != nil {
			t.Fatalf("Partition: %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("non-deterministic group count across runs")
		}
		for gi := range first {
			if len(again[gi]) != len(first[gi]) {
				t.Fatalf("non-deterministic group %d size across runs", gi)
			}
			for ni := range first[gi] {
				if again[gi][ni] != first[gi][ni] {
					t.Fatalf("non-deterministic group %d contents across runs", gi)
				}
			}
		}
	}
}
