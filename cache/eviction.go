package cache

import "log/slog"

// evictBuffer removes b from the cache entirely: its table entry, its
// sync state, and its tracker index. Called when a lookup finds an
// existing entry that can no longer service the request it collided
// with (§4.2.1: a grown resource, a format change underneath an
// Image). The caller is responsible for waiting out any acquire still
// held by another tag before the memory backing b is reused.
func (c *Cache) evictBuffer(b *Buffer) {
	Logger().Debug("evicting buffer", slog.Uint64("address", b.AddressRange().Begin))
	c.tables.RemoveBuffer(b)
	c.sync.Forget(b)
	b.tracking.Release()
	c.bufferIds.Release(b.id)
}

// evictImageBuffer removes ib from the cache entirely.
func (c *Cache) evictImageBuffer(ib *ImageBuffer) {
	c.tables.RemoveImageBuffer(ib)
	c.sync.Forget(ib)
	ib.tracking.Release()
	c.imageBufferIds.Release(ib.id)
}

// evictImage removes img from the cache entirely, per §4.2.3's
// format/dimension-collision rule: a colliding lookup at the same
// address but a different ImageKey means the guest has repurposed the
// memory, and the old entry (and its staging ImageBuffer) must be
// evicted rather than reused.
func (c *Cache) evictImage(img *Image) {
	Logger().Warn("evicting image on format/dimension collision",
		slog.Uint64("address", img.Key().Address),
		slog.Uint64("format", uint64(img.Key().DataFormat)))
	c.tables.RemoveImage(img)
	c.sync.Forget(img)
	img.tracking.Release()
	c.imageIds.Release(img.id)
	if img.staging != nil {
		c.evictImageBuffer(img.staging)
	}

	var views []*ImageView
	c.tables.mu.RLock()
	for key, v := range c.tables.imageViewEntries {
		if key.Image == img.id {
			views = append(views, v)
		}
	}
	c.tables.mu.RUnlock()
	for _, v := range views {
		c.evictImageView(v)
	}
}

// evictImageView removes v from the cache entirely. Called by evictImage
// for every view built over the image being evicted.
func (c *Cache) evictImageView(v *ImageView) {
	c.tables.RemoveImageView(v)
	v.tracking.Release()
	c.imageViewIds.Release(v.id)
}

// evictIndexBuffer removes ib from the cache entirely.
func (c *Cache) evictIndexBuffer(ib *IndexBuffer) {
	c.tables.RemoveIndexBuffer(ib)
	ib.tracking.Release()
	c.indexBufferIds.Release(ib.id)
}

// evictShader removes s from the cache entirely: called when a cached
// compile's HitTest fails against a freshly-decoded ShaderInfo, meaning
// the guest has overwritten the bytecode at this address without
// changing the guest address itself.
func (c *Cache) evictShader(s *Shader) {
	Logger().Warn("evicting shader on stale hit-test", slog.Uint64("address", s.Key().Address))
	c.tables.RemoveShader(s)
	s.tracking.Release()
	c.shaderIds.Release(s.id)
}

// evictSampler removes s from the cache entirely.
func (c *Cache) evictSampler(s *Sampler) {
	c.tables.RemoveSampler(s)
	s.tracking.Release()
	c.samplerIds.Release(s.id)
}
