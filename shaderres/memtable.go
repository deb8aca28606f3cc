package shaderres

import (
	"fmt"

	"github.com/gogpu/gfxcache/addrrange"
	"github.com/gogpu/gfxcache/ident/track"
)

// MemorySlot is one entry of a GPU-visible memory table: the compiled
// shader indexes this array by resource slot to find the device address
// and byte range backing a descriptor it could not resolve to an
// immediate at compile time.
type MemorySlot struct {
	Address       uint64
	Size          uint64
	Flags         uint32
	DeviceAddress uint64
}

// MemoryTable is the GPU-visible array BuildMemoryTable/
// BuildImageMemoryTable populate, one slot per merged access interval.
type MemoryTable []MemorySlot

// SlotAllocator backs a merged access interval with device memory and
// reports the device-visible address and table flags to record for it.
// The cache implements this by acquiring (or creating) a Buffer or
// ImageBuffer entry covering the interval; shaderres stays agnostic of
// how that entry is represented.
type SlotAllocator interface {
	Allocate(address, size uint64) (deviceAddress uint64, flags uint32, err error)
}

// BuildMemoryTable iterates result.BufferMemoryTable's merged intervals
// in address order, asks alloc to back each one, and appends the
// resulting slots to a MemoryTable. It then patches
// result.SlotResources so every resource slot whose address fell inside
// a merged interval points at that interval's table index.
func BuildMemoryTable(result *LoadResult, alloc SlotAllocator) (MemoryTable, error) {
	areas := result.BufferMemoryTable.Areas()
	table := make(MemoryTable, 0, len(areas))

	for _, area := range areas {
		deviceAddress, flags, err := alloc.Allocate(area.Begin, area.Size())
		if err != nil {
			return nil, fmt.Errorf("shaderres: allocate buffer table slot [%#x,%#x): %w", area.Begin, area.End, err)
		}
		table = append(table, MemorySlot{
			Address:       area.Begin,
			Size:          area.Size(),
			Flags:         flags,
			DeviceAddress: deviceAddress,
		})
	}

	for slot, address := range result.ResourceSlotToAddress {
		if idx, ok := bufferAreaIndex(areas, address); ok {
			result.SlotResources[slot] = idx
		}
	}

	return table, nil
}

// BuildImageMemoryTable is BuildMemoryTable's counterpart over
// result.ImageMemoryTable.
func BuildImageMemoryTable(result *LoadResult, alloc SlotAllocator) (MemoryTable, error) {
	areas := result.ImageMemoryTable.Areas()
	table := make(MemoryTable, 0, len(areas))

	for _, area := range areas {
		deviceAddress, flags, err := alloc.Allocate(area.Begin, area.Size())
		if err != nil {
			return nil, fmt.Errorf("shaderres: allocate image table slot [%#x,%#x): %w", area.Begin, area.End, err)
		}
		table = append(table, MemorySlot{
			Address:       area.Begin,
			Size:          area.Size(),
			Flags:         flags,
			DeviceAddress: deviceAddress,
		})
	}

	for slot, address := range result.ResourceSlotToAddress {
		if idx, ok := imageAreaIndex(areas, address); ok {
			result.SlotResources[slot] = idx
		}
	}

	return table, nil
}

func bufferAreaIndex(areas []addrrange.Area[track.Access], address uint64) (int, bool) {
	for i, a := range areas {
		if a.Contains(address) {
			return i, true
		}
	}
	return 0, false
}

func imageAreaIndex(areas []addrrange.Area[ImageAccess], address uint64) (int, bool) {
	for i, a := range areas {
		if a.Contains(address) {
			return i, true
		}
	}
	return 0, false
}
