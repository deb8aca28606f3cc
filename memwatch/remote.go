package memwatch

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// reservationSize is the span of guest address space reserved per VM:
// large enough to cover the guest's entire 40-bit physical address
// space, matching the encoding the emulator's RemoteMemory pointer trick
// relies on (vmId<<40 | address).
const reservationSize = 1 << 40

type vmSpace struct {
	data []byte // the full anonymous reservation; slice keeps it alive.
}

// RemoteMemory maps a guest VM's address space into this process by
// reserving a private anonymous span of virtual memory per VM ID, so a
// guest address can be turned into a local pointer with simple addition
// instead of a page-table walk. Map/Unmap toggle the protection of
// subranges of the reservation as the guest's page tables change,
// mirroring how the emulator backs RemoteMemory with the guest's actual
// physical pages.
type RemoteMemory struct {
	mu     sync.Mutex
	spaces map[int]*vmSpace
}

// NewRemoteMemory creates an empty RemoteMemory mapper.
func NewRemoteMemory() *RemoteMemory {
	return &RemoteMemory{spaces: make(map[int]*vmSpace)}
}

// Reserve carves out this process's private address-space span for
// vmId, if it has not already been reserved. The reservation starts out
// entirely PROT_NONE; Map grants access to backed subranges.
func (r *RemoteMemory) Reserve(vmId int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.spaces[vmId]; ok {
		return nil
	}

	data, err := unix.Mmap(-1, 0, reservationSize, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return fmt.Errorf("memwatch: reserve address space for vm %d: %w", vmId, err)
	}

	r.spaces[vmId] = &vmSpace{data: data}
	return nil
}

// Release unmaps vmId's reserved span entirely. The RemoteMemory no
// longer serves pointers into it afterward.
func (r *RemoteMemory) Release(vmId int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	space, ok := r.spaces[vmId]
	if !ok {
		return nil
	}
	delete(r.spaces, vmId)
	return unix.Munmap(space.data)
}

// Map grants prot access to [address, address+size) of vmId's reserved
// span, mirroring the guest mapping a page table entry with those
// permissions over that range. The span must already be reserved.
func (r *RemoteMemory) Map(vmId int, address, size uint64, prot int) error {
	sub, err := r.subslice(vmId, address, size)
	if err != nil {
		return err
	}
	if err := unix.Mprotect(sub, prot); err != nil {
		return fmt.Errorf("memwatch: map vm %d range [%#x,%#x): %w", vmId, address, address+size, err)
	}
	return nil
}

// Unmap revokes access to [address, address+size) of vmId's reserved
// span, mirroring the guest tearing down a page table entry.
func (r *RemoteMemory) Unmap(vmId int, address, size uint64) error {
	sub, err := r.subslice(vmId, address, size)
	if err != nil {
		return err
	}
	if err := unix.Mprotect(sub, unix.PROT_NONE); err != nil {
		return fmt.Errorf("memwatch: unmap vm %d range [%#x,%#x): %w", vmId, address, address+size, err)
	}
	return nil
}

func (r *RemoteMemory) subslice(vmId int, address, size uint64) ([]byte, error) {
	r.mu.Lock()
	space, ok := r.spaces[vmId]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("memwatch: vm %d has no reserved address space", vmId)
	}
	if address+size > uint64(len(space.data)) {
		return nil, fmt.Errorf("memwatch: range [%#x,%#x) exceeds vm %d's reservation", address, address+size, vmId)
	}
	return space.data[address : address+size], nil
}

// GetPointer returns the local pointer corresponding to a guest address
// in vmId's space, or nil if address is 0 or the space is unreserved.
func (r *RemoteMemory) GetPointer(vmId int, address uint64) unsafe.Pointer {
	if address == 0 {
		return nil
	}

	r.mu.Lock()
	space, ok := r.spaces[vmId]
	r.mu.Unlock()
	if !ok || address >= uint64(len(space.data)) {
		return nil
	}
	return unsafe.Pointer(&space.data[address])
}
