package cache

import (
	"sync"

	"github.com/gogpu/gfxcache/addrrange"
	"github.com/gogpu/gfxcache/ident/track"
	"github.com/gogpu/gfxcache/shaderres"
	"github.com/gogpu/gfxcache/vkh"
)

// acquiredEntry pairs an Entry this tag has acquired with the access it
// acquired it under, so Release can hand entryBase.Release the same
// access it was granted rather than guessing Both for everything.
type acquiredEntry struct {
	entry  Entry
	access track.Access
}

// Tag is one pass's worth of resource resolution against a Cache: a
// draw call (GraphicsTag) or a dispatch (ComputeTag). Every entry it
// resolves is pushed onto its acquired stack in resolution order, so
// Release can walk the stack in reverse and submit the inter-level
// copies the coherency engine depends on (Image -> ImageBuffer ->
// Buffer) one kind at a time, with a scheduler submit+wait between each
// kind change, rather than one giant batch where a later kind's read
// could race an earlier kind's still-in-flight write (§4.3, §5).
type Tag struct {
	cache   *Cache
	vmId    int
	readId  TagId
	writeId TagId
	scope   *track.AccessScope

	mu       sync.Mutex
	acquired []acquiredEntry

	descSlot   int
	descSet    vkh.DescriptorSet
	hasDescSet bool

	released bool
}

// tagIdFor returns the id this tag presents to Entry.Acquire for
// access: the write id for anything touching write, the read id
// otherwise, per the even/odd pairing tagIdAllocator hands out.
func (t *Tag) tagIdFor(access track.Access) TagId {
	if access.IsReadOnly() {
		return t.readId
	}
	return t.writeId
}

// acquire performs the common acquire-then-push step every getter below
// shares: grant e the requested access and record it on the tag's
// acquired stack in resolution order.
func (t *Tag) acquire(e Entry, access track.Access) {
	e.Acquire(t.tagIdFor(access), access)

	t.mu.Lock()
	t.acquired = append(t.acquired, acquiredEntry{entry: e, access: access})
	t.mu.Unlock()
}

// GetBuffer resolves the Buffer entry covering [address, address+size):
// an existing entry large enough to cover the request is reused and
// acquired directly; otherwise the cache builds a fresh one through its
// Builder and inserts it into the address-keyed table. access records
// whether the draw intends to read, write, or both, for the
// entry-level acquire wait and for the sync engine's dirty tracking.
func (t *Tag) GetBuffer(address, size uint64, usage vkh.BufferUsageFlags, access track.Access) (*Buffer, error) {
	if t.released {
		return nil, ErrTagClosed
	}
	if size == 0 {
		return nil, NewValidationErrorf("Buffer", "size", "zero-size range at address %#x", address)
	}

	buf, ok := t.cache.tables.LookupBuffer(address)
	if ok && buf.AddressRange().End < address+size {
		// The cached entry ends before the requested range does: the guest
		// has grown the resource since it was last cached. The old entry must be
		// evicted rather than stretched in place, since anything that
		// still holds its old id must keep seeing the old extent.
		t.cache.evictBuffer(buf)
		ok = false
	}

	if !ok {
		vkBuffer, block, err := t.cache.builder.BuildBuffer(size, usage)
		if err != nil {
			return nil, err
		}
		id := t.cache.bufferIds.Alloc()
		tracking := track.NewTrackingData(t.cache.trackers.Buffers)
		rng := addrrange.Range{Begin: address, End: address + size}
		buf = NewBuffer(id, tracking, rng, vkBuffer, block)
		t.cache.tables.InsertBuffer(buf)
		t.cache.sync.MarkClean(buf)
	}

	t.acquire(buf, access)

	// GetData's own expensive() check already tests the host-page-
	// invalidation bitmap for this range, so calling it unconditionally on
	// every read is correct and cheap: a buffer the guest never touched
	// again takes the no-op path and keeps its host copy (§4.3 step 4).
	// Gating this call on SyncDirty instead would miss a guest write that
	// never flowed through MarkDirty, since nothing but the page bitmap
	// observes the guest CPU side of this entry.
	if access.Contains(track.AccessRead) {
		if _, err := buf.GetData(t.cache.remote, t.vmId, t.cache.config, t.cache.pages.Bitmap(t.vmId)); err != nil {
			return nil, err
		}
		t.cache.sync.MarkClean(buf)
	}

	return buf, nil
}

// GetImage resolves the Image entry for key: an entry already cached
// under key is reused directly. On a miss, any incompatible entry
// already occupying key's address is evicted first, then build
// constructs the replacement (the tiled VkImage, its staging
// ImageBuffer, and everything else NewImage needs — building those is
// the caller's job, since it alone knows the guest's current TBuffer
// descriptor). On a read access against a not-yet-Clean entry, the
// image's tiled contents are pulled into its staging buffer before the
// caller is handed the entry, so guest writes the GPU has not yet
// observed become visible (§4.2.3, §4.5).
func (t *Tag) GetImage(key shaderres.ImageKey, access track.Access, build func() (*Image, error)) (*Image, error) {
	if t.released {
		return nil, ErrTagClosed
	}

	img, ok := t.cache.tables.LookupImageByKey(key)
	if !ok {
		if collide, found := t.cache.tables.LookupImageAtAddress(key.Address); found {
			t.cache.evictImage(collide)
		}
		built, err := build()
		if err != nil {
			return nil, err
		}
		t.cache.tables.InsertImage(built)
		// A fresh entry has never been pulled from its tiled contents, so
		// it is not in-sync with its lower level despite being brand new;
		// marking it Dirty (rather than Clean) makes the read guard below
		// detile it on this very first acquisition (§4.2.3, S4). Unlike
		// Buffer, Image has no page-bitmap signal of its own to fall back
		// on, so this SyncState flag is the only thing that can trigger
		// that first pull-in.
		t.cache.sync.MarkDirty(built)
		img = built
	}

	t.acquire(img, access)

	if access.Contains(track.AccessRead) && t.cache.sync.State(img) != SyncClean {
		cmd := t.cache.scheduler.GetCommandBuffer()
		if err := img.Flush(cmd, t.cache.gpuTiler); err != nil {
			return nil, err
		}
		t.cache.sync.MarkClean(img)
	}

	return img, nil
}

// GetImageView resolves the ImageView entry for key, building one
// through the Builder on a miss. An ImageView has no coherency state of
// its own: it is only ever as fresh as the Image entry it views, which
// the caller must already hold acquired.
func (t *Tag) GetImageView(key ImageViewKey, image *Image) (*ImageView, error) {
	if t.released {
		return nil, ErrTagClosed
	}

	v, ok := t.cache.tables.LookupImageView(key)
	if !ok {
		vkView, err := t.cache.builder.BuildImageView(image.Handle(), formatFromDataFormat(key.Format), key)
		if err != nil {
			return nil, err
		}
		id := t.cache.imageViewIds.Alloc()
		tracking := track.NewTrackingData(t.cache.trackers.ImageViews)
		v = NewImageView(id, tracking, image.AddressRange(), key, vkView)
		t.cache.tables.InsertImageView(v)
	}

	t.acquire(v, track.AccessRead)
	return v, nil
}

// GetSampler resolves the deduplicated Sampler entry for key, building
// one through the Builder on a miss. Samplers carry no address range,
// so they are never evicted by a table collision; no other path in the
// cache evicts them either.
func (t *Tag) GetSampler(key SamplerKey) (*Sampler, error) {
	if t.released {
		return nil, ErrTagClosed
	}

	s, ok := t.cache.tables.LookupSampler(key)
	if !ok {
		vkSampler, err := t.cache.builder.BuildSampler(key)
		if err != nil {
			return nil, err
		}
		id := t.cache.samplerIds.Alloc()
		tracking := track.NewTrackingData(t.cache.trackers.Samplers)
		s = NewSampler(id, tracking, key, vkSampler)
		t.cache.tables.InsertSampler(s)
	}

	t.acquire(s, track.AccessRead)
	return s, nil
}

// GetShader resolves the Shader entry for key: a cached entry that
// HitTests true against the freshly-decoded info is reused as-is;
// anything else (a miss, or a stale hit-test) is evicted and build is
// called to compile a replacement. A compile failure is the caller's to
// handle — the caller is expected to substitute NewFallbackShader per
// §7's red-fallback rule and call GetShader again with a key that will
// HitTest true against the fallback.
func (t *Tag) GetShader(key ShaderKey, info ShaderInfo, build func() (*Shader, error)) (*Shader, error) {
	if t.released {
		return nil, ErrTagClosed
	}

	s, ok := t.cache.tables.LookupShader(key)
	if ok && !s.HitTest(key, info) {
		t.cache.evictShader(s)
		ok = false
	}

	if !ok {
		built, err := t.compileShader(key, build)
		if err != nil {
			return nil, err
		}
		s = built
	}

	t.acquire(s, track.AccessRead)
	return s, nil
}

// compileShader runs build through the cache's singleflight group so
// that concurrent tags missing on the same key share one compile and one
// table insert rather than racing duplicate ones in.
func (t *Tag) compileShader(key ShaderKey, build func() (*Shader, error)) (*Shader, error) {
	v, err, _ := t.cache.compiles.Do(key.cacheKey(), func() (any, error) {
		if existing, ok := t.cache.tables.LookupShader(key); ok {
			return existing, nil
		}
		built, err := build()
		if err != nil {
			return nil, err
		}
		t.cache.tables.InsertShader(built)
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Shader), nil
}

// GetIndexBuffer resolves the IndexBuffer entry covering buf's address
// range, building one from already-expanded index bytes on a miss. The
// caller has already run ExpandIndices and written the result into buf.
func (t *Tag) GetIndexBuffer(buf *Buffer, indexType IndexType, count int) (*IndexBuffer, error) {
	if t.released {
		return nil, ErrTagClosed
	}

	ib, ok := t.cache.tables.LookupIndexBuffer(buf.AddressRange().Begin)
	if !ok {
		id := t.cache.indexBufferIds.Alloc()
		tracking := track.NewTrackingData(t.cache.trackers.IndexBuffers)
		ib = NewIndexBuffer(id, tracking, buf.AddressRange(), buf, indexType, count)
		t.cache.tables.InsertIndexBuffer(ib)
	}

	t.acquire(ib, track.AccessRead)
	return ib, nil
}

// BuildDescriptors acquires a descriptor set from the cache's pool for
// the lifetime of this tag. Calling it more than once on the same tag
// returns the same set: a draw only ever needs one.
func (t *Tag) BuildDescriptors() vkh.DescriptorSet {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.hasDescSet {
		t.descSlot, t.descSet = t.cache.descs.Acquire()
		t.hasDescSet = true
	}
	return t.descSet
}

// Release walks the tag's acquired entries in reverse resolution order,
// releasing each one's access and, for an entry with a delayed flush
// pending, recording the flush command and submitting a batch before
// moving on to the next entry kind — an Image must finish flushing into
// its staging buffer before that buffer is handed to anything else, and
// the buffer's bytes must finish landing before a guest-visible readback
// trusts them (§4.3, §5). The tag's descriptor-set slot, if it acquired
// one, is released only after the final submitted batch completes.
func (t *Tag) Release() error {
	t.mu.Lock()
	if t.released {
		t.mu.Unlock()
		return ErrTagClosed
	}
	t.released = true
	acquired := t.acquired
	t.acquired = nil
	descSlot, hasDescSet := t.descSlot, t.hasDescSet
	t.mu.Unlock()

	lastKind := EntryKind(-1)
	for i := len(acquired) - 1; i >= 0; i-- {
		a := acquired[i]

		if lastKind != EntryKind(-1) && a.entry.Kind() != lastKind {
			t.cache.scheduler.Submit()
			t.cache.scheduler.Wait()
		}
		lastKind = a.entry.Kind()

		if a.entry.HasDelayedFlush() {
			if err := t.flushDelayed(a.entry); err != nil {
				return err
			}
		}

		a.entry.Release(a.access)
	}

	t.cache.scheduler.Submit()
	t.cache.scheduler.Wait()

	if hasDescSet {
		if err := t.cache.descs.Release(descSlot); err != nil {
			return err
		}
	}

	return nil
}

// flushDelayed records and performs whatever host-API work a dirty
// entry's HasDelayedFlush flag defers until release, per entry kind.
// ImageBuffer entries have no flush of their own to defer here: an
// Image's Update tiles its staging ImageBuffer's bytes into the image,
// so the Image case below covers both.
func (t *Tag) flushDelayed(e Entry) error {
	switch v := e.(type) {
	case *Buffer:
		v.ClearDirty()
		t.cache.sync.MarkClean(v)
	case *Image:
		cmd := t.cache.scheduler.GetCommandBuffer()
		if err := v.Update(cmd, t.cache.gpuTiler); err != nil {
			return err
		}
		v.SetDelayedFlush(false)
		t.cache.sync.MarkClean(v)
	}
	return nil
}

// GraphicsTag is a Tag scoped to one draw call.
type GraphicsTag struct {
	*Tag
}

// ComputeTag is a Tag scoped to one dispatch call.
type ComputeTag struct {
	*Tag
}
