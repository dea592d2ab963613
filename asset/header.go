// Package asset implements the on-disk LOD asset format (spec.md §5,
// component C8): a fixed header followed by four flat sections (clusters,
// vertices, meshlet-vertex-indices, meshlet-primitive-indices), laid out so
// every section can be reinterpreted in place with no per-element parsing.
package asset

import "unsafe"

// Magic identifies a LAD v1 asset file.
var Magic = [4]byte{'L', 'L', 'A', 'D'}

// Version is the current on-disk format version.
const Version = uint32(1)

// Header is the 40-byte file header: magic, version, and the element
// count of each of the four sections that follow it in the file, in
// order (clusters, vertices, vertex-indices, primitive-indices).
type Header struct {
	Magic       [4]byte
	Version     uint32
	NumClusters uint64
	NumVertices uint64
	NumVIndices uint64
	NumPIndices uint64
}

// HeaderSize is the packed byte size of Header.
const HeaderSize = 40

var _ [HeaderSize]byte = [unsafe.Sizeof(Header{})]byte{}
