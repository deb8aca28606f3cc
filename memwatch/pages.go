// Package memwatch tracks which pages of a guest virtual-memory space
// have been touched by the CPU since the cache last synchronized with
// them, and maps guest addresses into this process's address space.
//
// It renders the emulator's page-invalidation bookkeeping
// (testHostInvalidations/handleHostInvalidations/markHostInvalidated
// over a per-VM atomic byte array) as a mutex-guarded bitset per guest
// address space, and its RemoteMemory pointer trick (vmId<<40 | address)
// as an explicit reserved mmap region per guest.
package memwatch

import (
	"sync"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sync/errgroup"
)

// PageSize is the granularity host page-protection invalidation
// tracking operates at.
const PageSize = 4096

func pageIndex(address uint64) uint {
	return uint(address / PageSize)
}

func pageCount(address, size uint64) uint {
	first := address / PageSize
	last := (address + size + PageSize - 1) / PageSize
	return uint(last - first)
}

// PageBitmap tracks, per page, whether the CPU has written to that page
// since the cache last observed it. All methods are safe for concurrent
// use.
type PageBitmap struct {
	mu   sync.Mutex
	bits *bitset.BitSet
}

// NewPageBitmap creates a PageBitmap sized to cover pageCount pages.
func NewPageBitmap(pageCount uint) *PageBitmap {
	return &PageBitmap{bits: bitset.New(pageCount)}
}

// Test reports whether any page in [address, address+size) is marked
// invalidated, without clearing it. Mirrors testHostInvalidations.
func (p *PageBitmap) Test(address, size uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	first := pageIndex(address)
	n := pageCount(address, size)
	for page := first; page < first+n; page++ {
		if p.bits.Test(page) {
			return true
		}
	}
	return false
}

// Handle clears every invalidated page in [address, address+size) and
// reports whether any was set. Mirrors handleHostInvalidations: the
// cache calls this when it is about to resynchronize the range, so a
// page it observed invalidated here will not be reported again until
// the guest writes to it anew.
func (p *PageBitmap) Handle(address, size uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	first := pageIndex(address)
	n := pageCount(address, size)
	found := false
	for page := first; page < first+n; page++ {
		if p.bits.Test(page) {
			found = true
			p.bits.Clear(page)
		}
	}
	return found
}

// Mark sets every page in [address, address+size) as invalidated.
// Mirrors markHostInvalidated: called from the guest-write fault
// handler to record that the CPU touched this range since the cache
// last saw it.
func (p *PageBitmap) Mark(address, size uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	first := pageIndex(address)
	n := pageCount(address, size)
	for page := first; page < first+n; page++ {
		p.bits.Set(page)
	}
}

// Registry owns one PageBitmap per guest address space (VM ID), created
// on first use.
type Registry struct {
	mu      sync.Mutex
	perVM   map[int]*PageBitmap
	pages   uint
}

// NewRegistry creates a Registry whose bitmaps each cover pages pages.
func NewRegistry(pages uint) *Registry {
	return &Registry{perVM: make(map[int]*PageBitmap), pages: pages}
}

// Bitmap returns the PageBitmap for vmId, creating it on first access.
func (r *Registry) Bitmap(vmId int) *PageBitmap {
	r.mu.Lock()
	defer r.mu.Unlock()

	pb, ok := r.perVM[vmId]
	if !ok {
		pb = NewPageBitmap(r.pages)
		r.perVM[vmId] = pb
	}
	return pb
}

// Sweep runs fn against every address space's bitmap concurrently,
// one goroutine per VM, and returns the first error any of them
// reports. A multi-process frame (several guest VMs sharing one host)
// would otherwise pay for a full page-invalidation scan of each VM
// serially before the next frame's acquires could begin.
func (r *Registry) Sweep(fn func(vmId int, pb *PageBitmap) error) error {
	r.mu.Lock()
	vmIds := make([]int, 0, len(r.perVM))
	bitmaps := make([]*PageBitmap, 0, len(r.perVM))
	for vmId, pb := range r.perVM {
		vmIds = append(vmIds, vmId)
		bitmaps = append(bitmaps, pb)
	}
	r.mu.Unlock()

	var g errgroup.Group
	for i := range vmIds {
		vmId, pb := vmIds[i], bitmaps[i]
		g.Go(func() error {
			return fn(vmId, pb)
		})
	}
	return g.Wait()
}
