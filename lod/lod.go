// Package lod drives the level-by-level build loop (spec.md §4.7,
// component C7): partition each level's clusters into groups, simplify
// and recluster every group in parallel, then serially merge the results
// into the next coarser level, patching the folded-in clusters' parent
// error exactly once each.
//
// The parallel-prep/serial-merge shape mirrors the per-frame animator
// pipeline in the teacher's scene package
// (Carmen-Shannon-oxy-go/engine/scene/scene.go): phase 1 fans CPU-only
// work out across a worker pool behind a sync.WaitGroup barrier, phase 2
// runs single-threaded so output ordering — and therefore every cluster's
// global index — is deterministic regardless of how the pool scheduled
// phase 1.
package lod

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/oxy-go/ladforge/adjacency"
	"github.com/oxy-go/ladforge/buildstats"
	"github.com/oxy-go/ladforge/cluster"
	"github.com/oxy-go/ladforge/group"
	"github.com/oxy-go/ladforge/lad"
	"github.com/oxy-go/ladforge/partition"
	"github.com/oxy-go/ladforge/simplify"
)

// DefaultGroupSize is the number of clusters a group normally targets
// before simplification (spec.md §4.5/§4.6); chosen to keep a group's
// welded triangle count in the low hundreds, comfortably above
// cluster.MaxTriangles so reclustering still yields multiple meshlets.
const DefaultGroupSize = 8

// maxLevels bounds the level loop as a safety net against pathological
// inputs that never converge to a single root cluster.
const maxLevels = 64

// levelCluster tracks one cluster's bookkeeping while it is the current,
// not-yet-grouped frontier of the build.
type levelCluster struct {
	globalIndex uint32
	vertexList  []uint32 // global vertex indices this cluster occupies
	lodError    float32
}

// Build runs the full level loop over the already-pushed level-0 clusters
// in store, grouping and simplifying repeatedly until a single root
// cluster remains or no level makes further progress.
//
// Parameters:
//   - store: a cluster.Store already populated with level-0 meshlets
//     (LODError 0, ParentError cluster.InfiniteError)
//   - simplifier: the reduction strategy each group uses
//   - workerCount: worker pool size for per-level group fan-out
//   - stats: optional per-level progress logger; pass nil to disable
//
// Returns:
//   - error: lad.ErrLibraryFailure if workerCount <= 0, or any error
//     surfaced from package group's per-group simplification
func Build(store cluster.Store, simplifier simplify.Simplifier, workerCount int, stats *buildstats.Stats) error {
	if workerCount <= 0 {
		return fmt.Errorf("lod: %w", lad.Wrap(lad.ErrLibraryFailure, -1, -1, -1,
			fmt.Sprintf("invalid worker count %d", workerCount)))
	}

	current := levelZeroClusters(store)
	if stats != nil {
		stats.LevelComplete(0, len(store.Clusters()), triangleTotal(store, current))
	}

	for level := 1; level <= maxLevels && len(current) > 1; level++ {
		next, err := buildLevel(store, simplifier, workerCount, current)
		if err != nil {
			return fmt.Errorf("lod: level %d: %w", level, err)
		}
		if stats != nil {
			stats.LevelComplete(level, len(store.Clusters()), triangleTotal(store, next))
		}
		if len(next) >= len(current) {
			// No progress: stop rather than loop forever. The clusters of
			// `next` were pushed with ParentError cluster.InfiniteError and
			// stay the roots; `current` keeps the parent error buildLevel
			// patched into it.
			break
		}
		current = next
	}

	return nil
}

// triangleTotal sums the triangle counts of a level's clusters, reading
// them back from the store's packed Counts field.
func triangleTotal(store cluster.Store, level []levelCluster) int {
	clusters := store.Clusters()
	total := 0
	for _, c := range level {
		total += clusters[c.globalIndex].TriangleCount()
	}
	return total
}

// levelZeroClusters reads back the clusters already pushed into store
// (package lod's caller is responsible for pushing level 0 from the
// welded source mesh via package meshlet) and reconstructs their
// bookkeeping.
func levelZeroClusters(store cluster.Store) []levelCluster {
	clusters := store.Clusters()
	vIndices := store.MeshletVertexIndices()
	out := make([]levelCluster, len(clusters))
	for i, c := range clusters {
		vCount := c.VertexCount()
		verts := make([]uint32, vCount)
		copy(verts, vIndices[c.VertexOffset:c.VertexOffset+uint32(vCount)])
		out[i] = levelCluster{globalIndex: uint32(i), vertexList: verts, lodError: c.LODError}
	}
	return out
}

// groupWork is the outcome of phase 1 (parallel) for one group.
type groupWork struct {
	result       *group.Output
	outputToGlob []uint32 // result.Vertices[i] -> global vertex index
	members      []levelCluster
	err          error
}

// buildLevel partitions current into groups, simplifies and reclusters
// each in parallel, then serially commits every group's output into
// store, returning the new (coarser) frontier.
func buildLevel(store cluster.Store, simplifier simplify.Simplifier, workerCount int, current []levelCluster) ([]levelCluster, error) {
	clusterVertexLists := make([][]uint32, len(current))
	for i, c := range current {
		clusterVertexLists[i] = c.vertexList
	}

	graph, err := adjacency.Build(clusterVertexLists)
	if err != nil {
		return nil, err
	}
	groups, err := partition.Partition(graph, DefaultGroupSize)
	if err != nil {
		return nil, err
	}

	results := make([]groupWork, len(groups))

	// Phase 1: parallel — every group's welding, simplification, and
	// reclustering is independent of every other group's.
	pool := worker.NewDynamicWorkerPool(workerCount, len(groups)+1, 30*time.Second)
	var wg sync.WaitGroup
	for gi, members := range groups {
		wg.Add(1)
		groupIdx := gi
		memberIdxs := members
		pool.SubmitTask(worker.Task{
			ID: groupIdx,
			Do: func() (any, error) {
				defer wg.Done()
				results[groupIdx] = computeGroup(store, simplifier, current, memberIdxs)
				return nil, nil
			},
		})
	}
	wg.Wait()

	// Phase 2: serial — commit every group's clusters to the store in
	// group order, so global cluster indices (and therefore the final
	// asset's byte layout) are deterministic regardless of how the pool
	// scheduled phase 1.
	type parentPatch struct {
		globalIndex uint32
		parentError float32
	}
	var next []levelCluster
	var patches []parentPatch
	for gi, r := range results {
		if r.err != nil {
			return nil, fmt.Errorf("group %d: %w", gi, r.err)
		}
		groupError := groupErrorOf(r.result)
		for _, nc := range r.result.NewClusters {
			globalVerts := make([]uint32, len(nc.Meshlet.Vertices))
			for i, lv := range nc.Meshlet.Vertices {
				globalVerts[i] = r.outputToGlob[lv]
			}
			idx, err := store.PushCluster(globalVerts, nc.Meshlet.Indices, nc.Error, cluster.InfiniteError)
			if err != nil {
				return nil, fmt.Errorf("group %d: %w", gi, err)
			}
			next = append(next, levelCluster{globalIndex: idx, vertexList: globalVerts, lodError: nc.Error})
		}
		for _, member := range r.members {
			patches = append(patches, parentPatch{globalIndex: member.globalIndex, parentError: groupError})
		}
	}

	// Children are patched only once every new cluster of this level has
	// been pushed, still in group order.
	for _, p := range patches {
		store.PatchParentError(p.globalIndex, p.parentError)
	}

	return next, nil
}

// groupErrorOf returns the (uniform, per group.Build's contract) error
// every cluster in result carries.
func groupErrorOf(result *group.Output) float32 {
	if len(result.NewClusters) == 0 {
		return cluster.InfiniteError
	}
	return result.NewClusters[0].Error
}

// computeGroup runs phase 1's work for a single group: merge its member
// clusters' geometry into a local vertex/index buffer (deduplicating by
// global vertex index, not position, since every member vertex already
// carries an exact global identity), simplify and recluster it, then
// recover each surviving vertex's global identity.
func computeGroup(store cluster.Store, simplifier simplify.Simplifier, current []levelCluster, memberIdxs []uint32) groupWork {
	members := make([]levelCluster, len(memberIdxs))
	for i, mi := range memberIdxs {
		members[i] = current[mi]
	}

	globalToLocal := make(map[uint32]uint32)
	var localToGlob []uint32
	var localVerts []cluster.Vertex
	globalVerts := store.Vertices()

	localOf := func(g uint32) uint32 {
		if l, ok := globalToLocal[g]; ok {
			return l
		}
		l := uint32(len(localToGlob))
		globalToLocal[g] = l
		localToGlob = append(localToGlob, g)
		localVerts = append(localVerts, globalVerts[g])
		return l
	}

	vIndices := store.MeshletVertexIndices()
	pIndices := store.MeshletPrimitiveIndices()

	var localIndices []uint32
	var maxChildError float32
	clusters := store.Clusters()
	for _, m := range members {
		c := clusters[m.globalIndex]
		vCount := c.VertexCount()
		triCount := c.TriangleCount()
		ownVerts := vIndices[c.VertexOffset : c.VertexOffset+uint32(vCount)]
		ownTris := pIndices[c.TriangleOffset : c.TriangleOffset+uint32(triCount*3)]

		for i := 0; i < triCount; i++ {
			for k := 0; k < 3; k++ {
				localByte := ownTris[i*3+k]
				g := ownVerts[localByte]
				localIndices = append(localIndices, localOf(g))
			}
		}
		if c.LODError > maxChildError {
			maxChildError = c.LODError
		}
	}

	// Stable ordering of the group's member list for PatchParentError,
	// independent of the partitioner's internal BFS order.
	sort.Slice(members, func(i, j int) bool { return members[i].globalIndex < members[j].globalIndex })

	result, err := group.Build(group.Input{
		Vertices:      localVerts,
		Indices:       localIndices,
		MaxChildError: maxChildError,
	}, simplifier)
	if err != nil {
		return groupWork{err: err}
	}

	return groupWork{
		result:       result,
		outputToGlob: matchSubsequence(localVerts, localToGlob, result.Vertices),
		members:      members,
	}
}

// matchSubsequence recovers, for each vertex in output, the global vertex
// index it originated from. Every simplification path in package simplify
// only ever keeps or drops an input vertex verbatim — it never synthesizes
// a new position — so output is guaranteed to be an order-preserving
// subsequence of input (equal by value, not just by position). That
// guarantee makes a single linear two-pointer scan sufficient: no hashing
// or position-quantization ambiguity is needed to recover identity.
func matchSubsequence(input []cluster.Vertex, inputOrigin []uint32, output []cluster.Vertex) []uint32 {
	origin := make([]uint32, len(output))
	j := 0
	for i, v := range output {
		for j < len(input) && input[j] != v {
			j++
		}
		origin[i] = inputOrigin[j]
		j++
	}
	return origin
}
