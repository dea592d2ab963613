// Package lad defines the shared error taxonomy for the build pipeline.
//
// Every stage that can fail wraps one of the sentinel errors below with
// fmt.Errorf's %w verb (the convention used throughout the teacher engine's
// renderer and shader packages), and attaches a BuildError carrying the
// level, group, and cluster context needed to localize the fault.
package lad

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers should use errors.Is against these rather than
// comparing BuildError values directly.
var (
	// ErrInputMalformed covers malformed input geometry: out-of-range
	// indices, attribute arrays whose length isn't a multiple of their
	// stride, zero triangles.
	ErrInputMalformed = errors.New("lad: input geometry malformed")

	// ErrLibraryFailure covers a meshlet-builder or simplifier result that
	// violates its documented contract (e.g. a triangle index >= vertex
	// count, or more output indices than input indices).
	ErrLibraryFailure = errors.New("lad: external library contract violated")

	// ErrInvariantViolation covers a post-build verification failure (see
	// cluster.Verify for the checks this corresponds to).
	ErrInvariantViolation = errors.New("lad: cluster graph invariant violated")

	// ErrIO covers file create/write/read/mmap failures at the process
	// boundary. Never retried.
	ErrIO = errors.New("lad: i/o failure")
)

// BuildError carries the context needed to localize a build failure:
// which level, which group within that level, and which cluster, were
// involved. Any of these may be -1 when not applicable.
type BuildError struct {
	Level   int
	Group   int
	Cluster int
	Counts  string // free-form counts/diagnostic string, e.g. "verts=12 tris=40"
	Err     error
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	return fmt.Sprintf("level=%d group=%d cluster=%d %s: %v", e.Level, e.Group, e.Cluster, e.Counts, e.Err)
}

// Unwrap returns the underlying sentinel error, so errors.Is(err,
// lad.ErrInputMalformed) works through a BuildError.
func (e *BuildError) Unwrap() error {
	return e.Err
}

// Wrap builds a BuildError around sentinel, with -1 used for context fields
// that don't apply at the call site.
func Wrap(sentinel error, level, group, cluster int, counts string) *BuildError {
	return &BuildError{Level: level, Group: group, Cluster: cluster, Counts: counts, Err: sentinel}
}
