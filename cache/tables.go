package cache

import (
	"sync"

	"github.com/gogpu/gfxcache/addrrange"
	"github.com/gogpu/gfxcache/ident"
	"github.com/gogpu/gfxcache/shaderres"
)

// Tables owns every address-range map the cache keeps one of per entry
// kind, plus the by-key lookup maps for the kinds that are looked up by
// key rather than by address (ImageView, Shader, Sampler). Table-level access is guarded by a single
// RWMutex shared across all of them: reads (lookups during tag
// acquisition) take the read lock and can run concurrently; structural
// changes (map/unmap on cache fill or eviction) take the write lock
// (§5: "table-level locking").
type Tables struct {
	mu sync.RWMutex

	buffers      *addrrange.Table
	imageBuffers *addrrange.Table
	images       *addrrange.Table
	indexBuffers *addrrange.Table

	bufferEntries      map[ident.BufferID]*Buffer
	imageBufferEntries map[ident.ImageBufferID]*ImageBuffer
	imageEntries       map[ident.ImageID]*Image
	imageViewEntries   map[ImageViewKey]*ImageView
	indexBufferEntries map[ident.IndexBufferID]*IndexBuffer
	shaderEntries      map[ShaderKey]*Shader
	samplerEntries     map[SamplerKey]*Sampler

	imageByKey map[shaderres.ImageKey]ident.ImageID
}

// NewTables creates an empty set of cache tables.
func NewTables() *Tables {
	return &Tables{
		buffers:      addrrange.NewTable(nil),
		imageBuffers: addrrange.NewTable(nil),
		images:       addrrange.NewTable(nil),
		indexBuffers: addrrange.NewTable(nil),

		bufferEntries:      make(map[ident.BufferID]*Buffer),
		imageBufferEntries: make(map[ident.ImageBufferID]*ImageBuffer),
		imageEntries:       make(map[ident.ImageID]*Image),
		imageViewEntries:   make(map[ImageViewKey]*ImageView),
		indexBufferEntries: make(map[ident.IndexBufferID]*IndexBuffer),
		shaderEntries:      make(map[ShaderKey]*Shader),
		samplerEntries:     make(map[SamplerKey]*Sampler),
		imageByKey:         make(map[shaderres.ImageKey]ident.ImageID),
	}
}

// InsertBuffer adds b to the buffer table.
func (t *Tables) InsertBuffer(b *Buffer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buffers.Map(b.addressRange.Begin, b.addressRange.End)
	t.bufferEntries[b.id] = b
}

// LookupBuffer returns the Buffer entry covering address, if any.
func (t *Tables) LookupBuffer(address uint64) (*Buffer, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, b := range t.bufferEntries {
		if b.addressRange.Contains(address) {
			return b, true
		}
	}
	return nil, false
}

// OverlappingBuffers returns every Buffer entry whose range intersects
// rng, for the coherency engine's range-scoped flush (§4.5).
func (t *Tables) OverlappingBuffers(rng addrrange.Range) []*Buffer {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []*Buffer
	for _, b := range t.bufferEntries {
		if b.addressRange.Overlaps(rng) {
			out = append(out, b)
		}
	}
	return out
}

// RemoveBuffer evicts b from the buffer table.
func (t *Tables) RemoveBuffer(b *Buffer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buffers.Unmap(b.addressRange.Begin, b.addressRange.End)
	delete(t.bufferEntries, b.id)
}

// InsertImageBuffer adds ib to the image-buffer table.
func (t *Tables) InsertImageBuffer(ib *ImageBuffer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.imageBuffers.Map(ib.addressRange.Begin, ib.addressRange.End)
	t.imageBufferEntries[ib.id] = ib
}

// RemoveImageBuffer evicts ib from the image-buffer table.
func (t *Tables) RemoveImageBuffer(ib *ImageBuffer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.imageBuffers.Unmap(ib.addressRange.Begin, ib.addressRange.End)
	delete(t.imageBufferEntries, ib.id)
}

// InsertImage adds img to the image table, keyed by its ImageKey for the
// compatibility check a colliding lookup performs (§4.2.3).
func (t *Tables) InsertImage(img *Image) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.images.Map(img.addressRange.Begin, img.addressRange.End)
	t.imageEntries[img.id] = img
	t.imageByKey[img.key] = img.id
}

// LookupImageByKey returns the Image entry for key, if cached.
func (t *Tables) LookupImageByKey(key shaderres.ImageKey) (*Image, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.imageByKey[key]
	if !ok {
		return nil, false
	}
	img, ok := t.imageEntries[id]
	return img, ok
}

// LookupImageAtAddress returns any Image entry whose range contains
// address, regardless of key — used to detect a format/dimension
// collision that requires eviction rather than reuse.
func (t *Tables) LookupImageAtAddress(address uint64) (*Image, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, img := range t.imageEntries {
		if img.addressRange.Contains(address) {
			return img, true
		}
	}
	return nil, false
}

// OverlappingImages returns every Image entry whose range intersects
// rng, for the coherency engine's range-scoped flush (§4.5).
func (t *Tables) OverlappingImages(rng addrrange.Range) []*Image {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []*Image
	for _, img := range t.imageEntries {
		if img.addressRange.Overlaps(rng) {
			out = append(out, img)
		}
	}
	return out
}

// RemoveImage evicts img from the image table.
func (t *Tables) RemoveImage(img *Image) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.images.Unmap(img.addressRange.Begin, img.addressRange.End)
	delete(t.imageEntries, img.id)
	if t.imageByKey[img.key] == img.id {
		delete(t.imageByKey, img.key)
	}
}

// InsertImageView adds v to the image-view table.
func (t *Tables) InsertImageView(v *ImageView) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.imageViewEntries[v.key] = v
}

// LookupImageView returns the ImageView entry for key, if cached.
func (t *Tables) LookupImageView(key ImageViewKey) (*ImageView, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.imageViewEntries[key]
	return v, ok
}

// RemoveImageView evicts v from the image-view table.
func (t *Tables) RemoveImageView(v *ImageView) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.imageViewEntries, v.key)
}

// InsertIndexBuffer adds ib to the index-buffer table.
func (t *Tables) InsertIndexBuffer(ib *IndexBuffer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.indexBuffers.Map(ib.addressRange.Begin, ib.addressRange.End)
	t.indexBufferEntries[ib.id] = ib
}

// LookupIndexBuffer returns the IndexBuffer entry covering address, if
// any.
func (t *Tables) LookupIndexBuffer(address uint64) (*IndexBuffer, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, ib := range t.indexBufferEntries {
		if ib.addressRange.Contains(address) {
			return ib, true
		}
	}
	return nil, false
}

// RemoveIndexBuffer evicts ib from the index-buffer table.
func (t *Tables) RemoveIndexBuffer(ib *IndexBuffer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.indexBuffers.Unmap(ib.addressRange.Begin, ib.addressRange.End)
	delete(t.indexBufferEntries, ib.id)
}

// InsertShader adds s to the shader table.
func (t *Tables) InsertShader(s *Shader) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shaderEntries[s.key] = s
}

// LookupShader returns the Shader entry for key, if cached.
func (t *Tables) LookupShader(key ShaderKey) (*Shader, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.shaderEntries[key]
	return s, ok
}

// RemoveShader evicts s from the shader table.
func (t *Tables) RemoveShader(s *Shader) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.shaderEntries, s.key)
}

// InsertSampler adds s to the sampler table.
func (t *Tables) InsertSampler(s *Sampler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samplerEntries[s.key] = s
}

// LookupSampler returns the Sampler entry for key, if cached.
func (t *Tables) LookupSampler(key SamplerKey) (*Sampler, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.samplerEntries[key]
	return s, ok
}

// RemoveSampler evicts s from the sampler table.
func (t *Tables) RemoveSampler(s *Sampler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.samplerEntries, s.key)
}
