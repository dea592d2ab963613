// Package build wires the pipeline's stages together (spec.md §6): load a
// flat input mesh, weld it, seed level 0 with meshlets, run the level loop,
// verify the result, and write the asset to disk.
package build

import (
	"fmt"
	"io"

	"github.com/oxy-go/ladforge/asset"
	"github.com/oxy-go/ladforge/buildstats"
	"github.com/oxy-go/ladforge/cluster"
	"github.com/oxy-go/ladforge/common"
	"github.com/oxy-go/ladforge/lad"
	"github.com/oxy-go/ladforge/lod"
	"github.com/oxy-go/ladforge/meshinput"
	"github.com/oxy-go/ladforge/meshlet"
	"github.com/oxy-go/ladforge/simplify"
	"github.com/oxy-go/ladforge/weld"
)

// Options configures a Run.
type Options struct {
	// WorkerCount sizes the per-level group fan-out worker pool.
	WorkerCount int
	// Simplifier overrides the default reduction strategy; nil selects simplify.New().
	Simplifier simplify.Simplifier
	// Stats, if non-nil, receives per-level progress logs.
	Stats *buildstats.Stats
}

// Stats summarizes a completed build for the caller (e.g. the CLI, to
// report a final line after Run returns).
type Stats struct {
	InputVertices   int
	InputTriangles  int
	WeldedVertices  int
	TotalClusters   int
	RootClusters    int
	OutputVertices  int
	OutputVIndices  int
	OutputPIndices  int
}

// Run executes the full pipeline on mesh's flat input, writing the
// resulting asset to outputPath.
//
// Parameters:
//   - mesh: flat mesh input (e.g. the output of meshinput.LoadOBJ)
//   - outputPath: destination asset file path
//   - opts: pipeline configuration
//
// Returns:
//   - Stats: a summary of the completed build
//   - error: lad.ErrInputMalformed for malformed input, lad.ErrIO for
//     filesystem failures, lad.ErrInvariantViolation if the built asset
//     fails cluster.Verify, or lad.ErrLibraryFailure from the pipeline's
//     internal stages
func Run(mesh *meshinput.Mesh, outputPath string, opts Options) (Stats, error) {
	if opts.WorkerCount <= 0 {
		return Stats{}, fmt.Errorf("build: %w", lad.Wrap(lad.ErrLibraryFailure, -1, -1, -1,
			fmt.Sprintf("invalid worker count %d", opts.WorkerCount)))
	}
	simplifier := common.Coalesce(opts.Simplifier, simplify.New())

	welded, err := weld.Weld(mesh)
	if err != nil {
		return Stats{}, fmt.Errorf("build: %w", err)
	}

	store := cluster.NewStore(welded.Vertices,
		cluster.WithClusterCapacity(len(welded.Indices)/3/cluster.MaxTriangles+1))

	meshlets, err := meshlet.BuildMeshlets(welded.Indices, len(welded.Vertices), cluster.MaxVertices, cluster.MaxTriangles)
	if err != nil {
		return Stats{}, fmt.Errorf("build: %w", err)
	}
	for _, m := range meshlets {
		if _, err := store.PushCluster(m.Vertices, m.Indices, 0, cluster.InfiniteError); err != nil {
			return Stats{}, fmt.Errorf("build: %w", err)
		}
	}

	if err := lod.Build(store, simplifier, opts.WorkerCount, opts.Stats); err != nil {
		return Stats{}, fmt.Errorf("build: %w", err)
	}

	clusters := store.Clusters()
	vertices := store.Vertices()
	vIndices := store.MeshletVertexIndices()
	pIndices := store.MeshletPrimitiveIndices()

	if err := cluster.Verify(clusters, len(vertices), vIndices, pIndices); err != nil {
		return Stats{}, fmt.Errorf("build: %w", err)
	}

	if err := asset.Save(outputPath, vertices, clusters, vIndices, pIndices); err != nil {
		return Stats{}, fmt.Errorf("build: %w", err)
	}

	roots := 0
	for _, c := range clusters {
		if c.IsRoot() {
			roots++
		}
	}

	return Stats{
		InputVertices:  mesh.VertexCount(),
		InputTriangles: mesh.TriangleCount(),
		WeldedVertices: len(welded.Vertices),
		TotalClusters:  len(clusters),
		RootClusters:   roots,
		OutputVertices: len(vertices),
		OutputVIndices: len(vIndices),
		OutputPIndices: len(pIndices),
	}, nil
}

// RunOBJ is a convenience wrapper that loads r as Wavefront OBJ before
// calling Run.
func RunOBJ(r io.Reader, outputPath string, opts Options) (Stats, error) {
	mesh, err := meshinput.LoadOBJ(r)
	if err != nil {
		return Stats{}, fmt.Errorf("build: %w", err)
	}
	return Run(mesh, outputPath, opts)
}
