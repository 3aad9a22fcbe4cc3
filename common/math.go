package common

import (
	"unsafe"
)

// Approach moves current toward target by the fraction (1 - factor), the exponential moving
// average used for pointer smoothing. A factor of 0 returns target exactly.
//
// Parameters:
//   - current: the previous smoothed value
//   - target: the value being tracked
//   - factor: smoothing factor in [0, 1); larger values converge more slowly
//
// Returns:
//   - float32: the next smoothed value
func Approach(current, target, factor float32) float32 {
	if factor <= 0 {
		return target
	}
	return current + (target-current)*(1-factor)
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}
