// Package partition groups a level's clusters into groups of roughly
// groupSize, the unit the simplifier operates on for the next coarser
// level (spec.md §4.5, component C5). Grouping favors connected,
// vertex-adjacent clusters over arbitrary ones so the simplifier sees
// contiguous surface patches.
package partition

import (
	"fmt"

	"github.com/oxy-go/ladforge/adjacency"
	"github.com/oxy-go/ladforge/internal/bitset"
	"github.com/oxy-go/ladforge/lad"
)

// Partition assigns every node [0, g.NumNodes()) to exactly one group of
// at most groupSize nodes, using breadth-first search from adjacency edges
// to keep each group's members mutually connected where possible.
//
// Groups are built in CSR insertion order: the next unvisited node with
// the lowest index seeds a BFS, whose frontier is consumed (in the order
// the adjacency graph stores it) until the group reaches groupSize or the
// frontier is exhausted. If a BFS runs dry before the group is full — the
// seed's component is smaller than groupSize — the group is completed from
// the next unvisited node(s) in index order, so small or isolated
// components still end up grouped rather than left as size-1 groups. This
// makes the partitioning fully deterministic for a given adjacency graph
// and node ordering, independent of map iteration or goroutine scheduling.
//
// Parameters:
//   - g: the adjacency graph to partition (spec.md §4.4 output)
//   - groupSize: target group size; must be positive
//
// Returns:
//   - [][]uint32: groups, each a slice of node indices
//   - error: lad.ErrLibraryFailure if groupSize <= 0
func Partition(g *adjacency.Graph, groupSize int) ([][]uint32, error) {
	if groupSize <= 0 {
		return nil, fmt.Errorf("partition: %w", lad.Wrap(lad.ErrLibraryFailure, -1, -1, -1,
			fmt.Sprintf("invalid group size %d", groupSize)))
	}

	n := g.NumNodes()
	if n == 0 {
		return nil, nil
	}

	assigned := bitset.New(n)
	var groups [][]uint32

	next := 0
	for next < assigned.Len() {
		for next < assigned.Len() && assigned.IsSet(next) {
			next++
		}
		if next >= assigned.Len() {
			break
		}

		group := make([]uint32, 0, groupSize)
		// enqueued is local to this BFS run: it only prevents the same
		// node being queued twice while this group is being filled. A
		// node that gets queued but never dequeued (because the group
		// filled up first) is NOT marked assigned, so it remains
		// available to a later group via the unvisited scan below.
		enqueued := bitset.New(n)
		queue := []uint32{uint32(next)}
		enqueued.Set(next)

		for len(queue) > 0 && len(group) < groupSize {
			node := queue[0]
			queue = queue[1:]
			if assigned.IsSet(int(node)) {
				continue
			}
			assigned.Set(int(node))
			group = append(group, node)

			for _, nb := range g.Neighbors0(int(node)) {
				if !assigned.IsSet(int(nb)) && !enqueued.IsSet(int(nb)) {
					enqueued.Set(int(nb))
					queue = append(queue, nb)
				}
			}
		}

		// BFS frontier exhausted (or never reached other components)
		// before the group filled up: top off from subsequent unassigned
		// nodes in index order rather than leaving an undersized group.
		for scan := next + 1; len(group) < groupSize && scan < assigned.Len(); scan++ {
			if !assigned.IsSet(scan) {
				assigned.Set(scan)
				group = append(group, uint32(scan))
			}
		}

		groups = append(groups, group)
	}

	return groups, nil
}
