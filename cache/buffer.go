package cache

import (
	"github.com/gogpu/gfxcache/addrrange"
	"github.com/gogpu/gfxcache/devmem"
	"github.com/gogpu/gfxcache/ident"
	"github.com/gogpu/gfxcache/ident/track"
	"github.com/gogpu/gfxcache/memwatch"
	"github.com/gogpu/gfxcache/vkh"
)

// Buffer is the cache entry for a flat guest byte range: V# descriptors,
// the staging backing of an ImageBuffer, and index/vertex data all
// resolve to one of these. It is the bottom of the update chain every
// other resource kind (ImageBuffer, Image) ultimately reads through.
type Buffer struct {
	entryBase

	id       ident.BufferID
	tracking *track.TrackingData
	vkBuffer vkh.Buffer
	memory   *devmem.MemoryBlock

	dirty bool // host copy has writes not yet flushed to guest memory
}

// NewBuffer creates a Buffer entry backed by memory, covering the given
// guest address range.
func NewBuffer(id ident.BufferID, tracking *track.TrackingData, rng addrrange.Range, vkBuffer vkh.Buffer, memory *devmem.MemoryBlock) *Buffer {
	return &Buffer{
		entryBase: newEntryBase(EntryBuffer, rng),
		id:        id,
		tracking:  tracking,
		vkBuffer:  vkBuffer,
		memory:    memory,
	}
}

func (b *Buffer) ID() ident.BufferID    { return b.id }
func (b *Buffer) Handle() vkh.Buffer    { return b.vkBuffer }
func (b *Buffer) MemoryBlock() *devmem.MemoryBlock { return b.memory }

// expensive reports whether reading this buffer's bytes requires a
// direct guest-memory read rather than trusting the host copy: either
// the cache is configured to never trust the GPU-side copy, or the
// guest has written to one of the buffer's backing pages since the host
// copy was last synchronized.
func (b *Buffer) expensive(cfg Config, pages *memwatch.PageBitmap) bool {
	if cfg.DisableGpuCache {
		return true
	}
	return pages.Test(b.addressRange.Begin, b.addressRange.Size())
}

// GetData returns the authoritative bytes for this buffer's range when the
// host-side copy cannot be trusted: a direct read through rm. When the
// host-side copy is known coherent with guest memory it returns nil, nil,
// and the caller keeps its cached bytes. pages is cleared for this range
// as a side effect of taking the guest-memory path, mirroring
// handleHostInvalidations.
func (b *Buffer) GetData(rm *memwatch.RemoteMemory, vmId int, cfg Config, pages *memwatch.PageBitmap) ([]byte, error) {
	addr, size := b.addressRange.Begin, b.addressRange.Size()

	if !b.expensive(cfg, pages) {
		return nil, nil // host copy already authoritative; caller keeps its cached bytes
	}

	ptr := rm.GetPointer(vmId, addr)
	if ptr == nil {
		return nil, NewValidationErrorf("Buffer", "GetData", "guest address %#x is unmapped in vm %d", addr, vmId)
	}
	pages.Handle(addr, size)
	return unsafeBytes(ptr, int(size)), nil
}

// MarkDirty records that the host copy now holds writes not yet visible
// to guest memory, deferring the flush until release per
// hasDelayedFlush.
func (b *Buffer) MarkDirty() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dirty = true
	b.hasDelayedFlush = true
}

// IsDirty reports whether the host copy holds unflushed writes.
func (b *Buffer) IsDirty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dirty
}

// ClearDirty marks the host copy as flushed back to guest memory.
func (b *Buffer) ClearDirty() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dirty = false
	b.hasDelayedFlush = false
}
