package asset

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/oxy-go/ladforge/cluster"
	"github.com/oxy-go/ladforge/common"
	"github.com/oxy-go/ladforge/lad"
)

// Asset is a loaded LOD asset: the header plus zero-copy views into either
// an mmap'd region or an owned in-memory buffer (see Load).
type Asset struct {
	Header   Header
	Clusters []cluster.Cluster
	Vertices []cluster.Vertex
	VIndices []uint32
	PIndices []byte

	mmapData []byte // non-nil only when backed by an mmap'd region
}

// Close releases the asset's backing memory. It is a no-op for assets
// loaded via the owned-buffer fallback (ordinary Go garbage collection
// reclaims those).
func (a *Asset) Close() error {
	if a.mmapData == nil {
		return nil
	}
	data := a.mmapData
	a.mmapData = nil
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("asset: munmap: %w", lad.Wrap(lad.ErrIO, -1, -1, -1, err.Error()))
	}
	return nil
}

// Save writes vertices, clusters, vIndices, and pIndices to path in the
// on-disk asset format: a Header followed by the four sections back to
// back, in the order clusters, vertices, vIndices, pIndices.
//
// Parameters:
//   - path: destination file path
//   - vertices, clusters, vIndices, pIndices: the built asset's sections
//     (pIndices must already be padded to a multiple of 4 bytes, as
//     cluster.Store.PushCluster guarantees)
//
// Returns:
//   - error: lad.ErrIO wrapping any filesystem failure
func Save(path string, vertices []cluster.Vertex, clusters []cluster.Cluster, vIndices []uint32, pIndices []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("asset: %w", lad.Wrap(lad.ErrIO, -1, -1, -1, err.Error()))
	}
	defer f.Close()

	header := Header{
		Magic:       Magic,
		Version:     Version,
		NumClusters: uint64(len(clusters)),
		NumVertices: uint64(len(vertices)),
		NumVIndices: uint64(len(vIndices)),
		NumPIndices: uint64(len(pIndices)),
	}

	sections := [][]byte{
		common.SliceToBytes([]Header{header}),
		common.SliceToBytes(clusters),
		common.SliceToBytes(vertices),
		common.SliceToBytes(vIndices),
		pIndices,
	}
	for _, section := range sections {
		if len(section) == 0 {
			continue
		}
		if _, err := f.Write(section); err != nil {
			return fmt.Errorf("asset: %w", lad.Wrap(lad.ErrIO, -1, -1, -1, err.Error()))
		}
	}
	return nil
}

// Load opens path and reinterprets its sections in place, without copying,
// via mmap. If the mmap call fails (e.g. the platform refuses the
// mapping), Load falls back to reading the whole file
// into an owned buffer and reinterpreting that instead — semantically
// identical, just not zero-copy against the page cache.
//
// Parameters:
//   - path: asset file path
//
// Returns:
//   - *Asset: the loaded asset; call Close when done with it
//   - error: lad.ErrIO for filesystem failures, lad.ErrInputMalformed if
//     the header's magic/version or section sizes don't fit the file
func Load(path string) (*Asset, error) {
	data, owned, err := mapOrRead(path)
	if err != nil {
		return nil, err
	}

	asset, err := parse(data)
	if err != nil {
		if owned == nil {
			_ = unix.Munmap(data)
		}
		return nil, err
	}
	if owned == nil {
		asset.mmapData = data
	}
	return asset, nil
}

// mapOrRead returns the file's contents either as an mmap'd region (owned
// == nil) or as an owned, independently-allocated buffer.
func mapOrRead(path string) (data []byte, owned []byte, err error) {
	f, openErr := os.Open(path)
	if openErr != nil {
		return nil, nil, fmt.Errorf("asset: %w", lad.Wrap(lad.ErrIO, -1, -1, -1, openErr.Error()))
	}
	defer f.Close()

	info, statErr := f.Stat()
	if statErr != nil {
		return nil, nil, fmt.Errorf("asset: %w", lad.Wrap(lad.ErrIO, -1, -1, -1, statErr.Error()))
	}
	size := info.Size()
	if size < HeaderSize {
		return nil, nil, fmt.Errorf("asset: %w", lad.Wrap(lad.ErrInputMalformed, -1, -1, -1,
			fmt.Sprintf("file too small to hold a header: %d bytes", size)))
	}

	mapped, mmapErr := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if mmapErr == nil {
		return mapped, nil, nil
	}

	buf, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, nil, fmt.Errorf("asset: %w", lad.Wrap(lad.ErrIO, -1, -1, -1, readErr.Error()))
	}
	return buf, buf, nil
}

// parse reinterprets data's sections in place, validating the header
// against data's length before any section is sliced out.
func parse(data []byte) (*Asset, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("asset: %w", lad.Wrap(lad.ErrInputMalformed, -1, -1, -1,
			"buffer too small to hold a header"))
	}
	header := common.BytesToSlice[Header](data, 1)[0]
	if header.Magic != Magic {
		return nil, fmt.Errorf("asset: %w", lad.Wrap(lad.ErrInputMalformed, -1, -1, -1,
			fmt.Sprintf("bad magic %v", header.Magic)))
	}
	if header.Version != Version {
		return nil, fmt.Errorf("asset: %w", lad.Wrap(lad.ErrInputMalformed, -1, -1, -1,
			fmt.Sprintf("unsupported version %d", header.Version)))
	}

	offset := HeaderSize
	clustersLen := int(header.NumClusters) * cluster.ClusterSize
	verticesLen := int(header.NumVertices) * cluster.VertexSize
	vIndicesLen := int(header.NumVIndices) * 4
	pIndicesLen := int(header.NumPIndices)

	need := offset + clustersLen + verticesLen + vIndicesLen + pIndicesLen
	if len(data) < need {
		return nil, fmt.Errorf("asset: %w", lad.Wrap(lad.ErrInputMalformed, -1, -1, -1,
			fmt.Sprintf("file holds %d bytes, header declares %d", len(data), need)))
	}

	asset := &Asset{Header: header}

	asset.Clusters = common.BytesToSlice[cluster.Cluster](data[offset:], int(header.NumClusters))
	offset += clustersLen

	asset.Vertices = common.BytesToSlice[cluster.Vertex](data[offset:], int(header.NumVertices))
	offset += verticesLen

	asset.VIndices = common.BytesToSlice[uint32](data[offset:], int(header.NumVIndices))
	offset += vIndicesLen

	asset.PIndices = data[offset : offset+pIndicesLen]

	return asset, nil
}
