package cache

import "unsafe"

// unsafeBytes views the size bytes starting at ptr as a byte slice. Used
// to expose RemoteMemory's raw guest-address-space pointers as Go
// slices without copying.
func unsafeBytes(ptr unsafe.Pointer, size int) []byte {
	if ptr == nil || size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(ptr), size)
}
