package cluster

import (
	"fmt"

	"github.com/oxy-go/ladforge/lad"
)

// Verify checks the quantified invariants spec.md §8 requires to hold on
// the final asset (P1-P5, I1-I5). It is the single source of truth the
// build pipeline, the asset roundtrip test, and any external consumer can
// call to confirm a built or loaded asset is well-formed.
//
// Parameters:
//   - clusters: the full cluster array
//   - numVertices: length of the global vertex array
//   - vIndices: the global meshlet-vertex-index array
//   - pIndices: the global meshlet-primitive-index array
//
// Returns:
//   - error: nil if every invariant holds, otherwise a lad.BuildError
//     wrapping lad.ErrInvariantViolation identifying the first violation
func Verify(clusters []Cluster, numVertices int, vIndices []uint32, pIndices []byte) error {
	lodErrors := make(map[float32]struct{}, len(clusters))
	for _, c := range clusters {
		lodErrors[c.LODError] = struct{}{}
	}

	for i := range clusters {
		c := &clusters[i]
		vc := c.VertexCount()
		tc := c.TriangleCount()

		// P1: bounds.
		if int(c.VertexOffset)+vc > len(vIndices) {
			return fmt.Errorf("cluster: verify: %w", lad.Wrap(lad.ErrInvariantViolation, -1, -1, i,
				fmt.Sprintf("vertex_offset %d + count %d > len(vIndices) %d", c.VertexOffset, vc, len(vIndices))))
		}
		if int(c.TriangleOffset)+3*tc > len(pIndices) {
			return fmt.Errorf("cluster: verify: %w", lad.Wrap(lad.ErrInvariantViolation, -1, -1, i,
				fmt.Sprintf("triangle_offset %d + 3*count %d > len(pIndices) %d", c.TriangleOffset, tc, len(pIndices))))
		}

		// P2: local indices.
		prims := pIndices[c.TriangleOffset : c.TriangleOffset+uint32(3*tc)]
		for j, b := range prims {
			if int(b) >= vc {
				return fmt.Errorf("cluster: verify: %w", lad.Wrap(lad.ErrInvariantViolation, -1, -1, i,
					fmt.Sprintf("primitive byte %d (value %d) >= vertex_count %d", j, b, vc)))
			}
		}

		// P3: global indices.
		verts := vIndices[c.VertexOffset : c.VertexOffset+uint32(vc)]
		for j, v := range verts {
			if int(v) >= numVertices {
				return fmt.Errorf("cluster: verify: %w", lad.Wrap(lad.ErrInvariantViolation, -1, -1, i,
					fmt.Sprintf("vertex index %d (slot %d) >= num_vertices %d", v, j, numVertices)))
			}
		}

		// P4 / I1: monotone error (strict).
		if !(c.LODError < c.ParentError) {
			return fmt.Errorf("cluster: verify: %w", lad.Wrap(lad.ErrInvariantViolation, -1, -1, i,
				fmt.Sprintf("lod_error %f not strictly less than parent_error %f", c.LODError, c.ParentError)))
		}

		// P5 / I2: error consistency — a non-root cluster's parent_error
		// must equal the lod_error of some cluster produced to replace it.
		if c.ParentError < InfiniteError {
			if _, ok := lodErrors[c.ParentError]; !ok {
				return fmt.Errorf("cluster: verify: %w", lad.Wrap(lad.ErrInvariantViolation, -1, -1, i,
					fmt.Sprintf("parent_error %f matches no cluster's lod_error", c.ParentError)))
			}
		}
	}
	return nil
}
