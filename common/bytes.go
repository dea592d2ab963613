// Package common contains small, dependency-free helpers shared across the
// build pipeline's packages.
package common

import "unsafe"

// SliceToBytes reinterprets a slice of fixed-size values as a byte slice,
// without copying. The returned slice shares memory with data: do not
// mutate data while the returned slice is in use, and do not retain the
// returned slice past data's lifetime.
//
// Parameters:
//   - data: source slice of any fixed-size type
//
// Returns:
//   - []byte: byte view of the input data, or nil if data is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(size)*len(data))
}

// BytesToSlice reinterprets a byte slice as a slice of n fixed-size values
// of type T, without copying. It is the inverse of SliceToBytes and is the
// basis of the mmap load path: the returned slice is a re-borrow of buf's
// memory and must not outlive it.
//
// Parameters:
//   - buf: backing bytes, must hold at least n*sizeof(T) bytes
//   - n: number of T values to expose
//
// Returns:
//   - []T: zero-copy view into buf
func BytesToSlice[T any](buf []byte, n int) []T {
	if n == 0 {
		return nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	need := size * n
	if len(buf) < need {
		panic("common: BytesToSlice buffer shorter than requested element count")
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&buf[0])), n)
}
