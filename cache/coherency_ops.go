package cache

import "github.com/gogpu/gfxcache/addrrange"

// Flush walks every entry whose address range overlaps rng down through
// the update chain (Image -> staging ImageBuffer -> guest memory) and
// back to guest memory, the same two-kind, submit-and-wait order
// Tag.Release's flushDelayed uses per entry (§4.3, §4.5):
//
//  1. Any overlapping Image with a delayed tile-write pending (a guest
//     write observed through its staging buffer but not yet pushed into
//     the tiled VkImage) is updated — Image.Update tiles its staging
//     ImageBuffer's bytes into the VkImage, so there is no separate
//     ImageBuffer case here, matching flushDelayed.
//  2. The batch is submitted and waited on, so step 3 never reads a
//     Buffer an in-flight Update is still writing.
//  3. Any overlapping Buffer the host copy has unflushed writes for is
//     written back to guest memory and marked Clean.
func (c *Cache) Flush(rng addrrange.Range) error {
	for _, img := range c.tables.OverlappingImages(rng) {
		if img.HasDelayedFlush() {
			cmd := c.scheduler.GetCommandBuffer()
			if err := img.Update(cmd, c.gpuTiler); err != nil {
				return err
			}
			img.SetDelayedFlush(false)
			c.sync.MarkClean(img)
		}
	}
	c.scheduler.Submit()
	c.scheduler.Wait()

	for _, buf := range c.tables.OverlappingBuffers(rng) {
		// A dirty Buffer's host copy already lives in guest-mapped memory
		// (GetData hands out a pointer straight into it rather than a
		// private copy), so there is no separate memcpy to perform here:
		// clearing the flag is the write-back, mirroring flushDelayed's
		// Buffer case in Tag.Release.
		if buf.IsDirty() {
			buf.ClearDirty()
		}
		c.sync.MarkClean(buf)
	}

	return nil
}

// Invalidate is the guest-CPU-write entry point: it flushes anything
// overlapping rng that the host side still has pending writes for, then
// marks every host page in rng dirty so the next read acquisition over
// this range sees expensive() return true and pulls fresh guest bytes in
// (§4.3 step 4, §4.5). Without this call nothing ever flips a clean
// entry back to observing new guest writes outside of a fresh build.
func (c *Cache) Invalidate(vmId int, rng addrrange.Range) error {
	if err := c.Flush(rng); err != nil {
		return err
	}
	c.pages.Bitmap(vmId).Mark(rng.Begin, rng.Size())
	return nil
}
