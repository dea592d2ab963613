// Package group orchestrates one group's simplification into the next
// coarser level's clusters (spec.md §4.6, component C6 steps 2, 4, 5): it
// computes the target triangle count, drives package simplify's reduction,
// reclusters the result via package meshlet, and accounts the resulting
// clusters' error against their children's.
package group

import (
	"fmt"

	"github.com/oxy-go/ladforge/cluster"
	"github.com/oxy-go/ladforge/lad"
	"github.com/oxy-go/ladforge/meshlet"
	"github.com/oxy-go/ladforge/simplify"
)

// DefaultReductionRatio is the fraction of a group's welded triangle count
// the simplifier targets under normal conditions (spec.md §4.6 step 2).
const DefaultReductionRatio = 0.5

// AggressiveReductionRatio is used instead when a group's input is already
// small enough that the default ratio would leave too few triangles to
// usefully recluster (spec.md §4.6 step 2, "small group" case).
const AggressiveReductionRatio = 0.25

// aggressiveThresholdTriangles is the welded triangle count below which
// AggressiveReductionRatio applies instead of DefaultReductionRatio.
const aggressiveThresholdTriangles = 2 * cluster.MaxTriangles

// Input is one group's merged mesh and the bookkeeping needed to compute
// its output clusters' error.
type Input struct {
	// Vertices is the group's merged local vertex buffer: its member
	// clusters' vertices concatenated, not yet welded. Build welds it.
	Vertices []cluster.Vertex
	// Indices is the merged local triangle list into Vertices.
	Indices []uint32
	// MaxChildError is the largest LODError among the clusters that fed
	// this group (0 when every member is a level-0 cluster).
	MaxChildError float32
}

// NewCluster is one reclustered meshlet ready for cluster.Store.PushCluster,
// still addressing Output.Vertices rather than a global vertex buffer — the
// caller (package lod) maps each entry of Meshlet.Vertices back to the
// global vertex index it came from.
type NewCluster struct {
	Meshlet meshlet.Meshlet
	Error   float32
}

// Output is the result of simplifying and reclustering one group.
type Output struct {
	Vertices    []cluster.Vertex
	NewClusters []NewCluster
}

// TargetTriangleCount computes the triangle count a group's simplification
// should aim for, selecting DefaultReductionRatio or AggressiveReductionRatio
// based on the group's current size.
func TargetTriangleCount(currentTriangles int) int {
	ratio := DefaultReductionRatio
	if currentTriangles < aggressiveThresholdTriangles {
		ratio = AggressiveReductionRatio
	}
	target := int(float64(currentTriangles) * ratio)
	if target < 1 {
		target = 1
	}
	return target
}

// Build welds in's merged-but-not-yet-welded mesh (spec.md §4.6 step 1, via
// simplify.WeldGroup's quantized-position dedup), simplifies the welded
// result toward TargetTriangleCount, reclusters the simplified mesh into
// meshlets bounded by cluster.MaxVertices and cluster.MaxTriangles, and
// assigns every resulting cluster the same error: the group's max child
// error, plus the simplifier's own error estimate, plus cluster.ErrorEpsilon
// — guaranteeing strict error monotonicity (spec.md invariant I1) even when
// the simplifier reports zero error.
//
// Parameters:
//   - in: the group's merged mesh (member clusters concatenated, not yet
//     welded) and child-error bookkeeping
//   - simplifier: the reduction strategy (simplify.New() by default)
//
// Returns:
//   - *Output: the simplified vertex buffer and reclustered meshlets, each
//     carrying the group's computed error
//   - error: propagated from simplify.WeldGroup, simplify.Simplify, or
//     meshlet.BuildMeshlets, or lad.ErrInputMalformed if in has no triangles
func Build(in Input, simplifier simplify.Simplifier) (*Output, error) {
	triCount := len(in.Indices) / 3
	if triCount == 0 {
		return nil, fmt.Errorf("group: %w", lad.Wrap(lad.ErrInputMalformed, -1, -1, -1,
			"group has no triangles to simplify"))
	}

	welded, err := simplify.WeldGroup(in.Vertices, in.Indices)
	if err != nil {
		return nil, fmt.Errorf("group: %w", err)
	}
	if len(welded.Indices) == 0 {
		return nil, fmt.Errorf("group: %w", lad.Wrap(lad.ErrInputMalformed, -1, -1, -1,
			"group has no triangles left after welding"))
	}

	target := TargetTriangleCount(len(welded.Indices) / 3)
	simplified, err := simplifier.Simplify(welded.Vertices, welded.Indices, target)
	if err != nil {
		return nil, fmt.Errorf("group: %w", err)
	}

	meshlets, err := meshlet.BuildMeshlets(simplified.Indices, len(simplified.Vertices), cluster.MaxVertices, cluster.MaxTriangles)
	if err != nil {
		return nil, fmt.Errorf("group: %w", err)
	}

	groupError := in.MaxChildError + simplified.Error + cluster.ErrorEpsilon

	newClusters := make([]NewCluster, len(meshlets))
	for i, m := range meshlets {
		newClusters[i] = NewCluster{Meshlet: m, Error: groupError}
	}

	return &Output{Vertices: simplified.Vertices, NewClusters: newClusters}, nil
}
