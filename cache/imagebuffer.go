package cache

import (
	"github.com/gogpu/gfxcache/addrrange"
	"github.com/gogpu/gfxcache/ident"
	"github.com/gogpu/gfxcache/ident/track"
	"github.com/gogpu/gfxcache/tiler"
	"github.com/gogpu/gfxcache/vkh"
)

// GpuTiler is the external collaborator that physically tiles and
// detiles pixel data on the GPU: the cache only knows the layout math
// (package tiler), not how to execute the swizzle. An ImageBuffer's
// Update/Write steps record commands against it rather than computing
// the swizzle in this process.
type GpuTiler interface {
	// Detile records commands into cmd that read image in its native
	// tiled layout and write surface's linear bytes into dst.
	Detile(cmd vkh.CommandBuffer, surface tiler.SurfaceInfo, tileMode tiler.TileMode, image vkh.Image, dst vkh.Buffer) error
	// Tile records commands into cmd that read surface's linear bytes
	// from src and write them into image in its native tiled layout.
	Tile(cmd vkh.CommandBuffer, surface tiler.SurfaceInfo, tileMode tiler.TileMode, src vkh.Buffer, image vkh.Image) error
}

// ImageBuffer is the linear staging form of a tiled Image: the cache
// keeps an Image's GENERAL-layout steady state (§4.2.3) in an actual
// VkImage, but any access that needs linear bytes — readback, a
// TextureRes binding with access the host can't service straight off the
// tiled image — goes through one of these instead of re-deriving the
// swizzle per call.
type ImageBuffer struct {
	entryBase

	id       ident.ImageBufferID
	tracking *track.TrackingData
	buffer   *Buffer
	surface  tiler.SurfaceInfo
	tileMode tiler.TileMode
}

// NewImageBuffer creates an ImageBuffer staging entry backed by buffer,
// whose layout is described by surface/tileMode.
func NewImageBuffer(id ident.ImageBufferID, tracking *track.TrackingData, rng addrrange.Range, buffer *Buffer, surface tiler.SurfaceInfo, tileMode tiler.TileMode) *ImageBuffer {
	return &ImageBuffer{
		entryBase: newEntryBase(EntryImageBuffer, rng),
		id:        id,
		tracking:  tracking,
		buffer:    buffer,
		surface:   surface,
		tileMode:  tileMode,
	}
}

func (ib *ImageBuffer) ID() ident.ImageBufferID { return ib.id }
func (ib *ImageBuffer) Buffer() *Buffer         { return ib.buffer }
func (ib *ImageBuffer) Surface() tiler.SurfaceInfo { return ib.surface }

// Update pulls image's current tiled contents into the staging buffer,
// so a subsequent Buffer.GetData reflects what the GPU last wrote into
// the image. Part of the Image <-> ImageBuffer <-> Buffer update chain
// (§4.2).
func (ib *ImageBuffer) Update(cmd vkh.CommandBuffer, gt GpuTiler, image vkh.Image) error {
	if err := gt.Detile(cmd, ib.surface, ib.tileMode, image, ib.buffer.Handle()); err != nil {
		return err
	}
	ib.buffer.ClearDirty()
	return nil
}

// Write pushes the staging buffer's current linear contents into image's
// tiled layout, the inverse of Update. Called when the guest has written
// new texel data that the Image entry must observe.
func (ib *ImageBuffer) Write(cmd vkh.CommandBuffer, gt GpuTiler, image vkh.Image) error {
	return gt.Tile(cmd, ib.surface, ib.tileMode, ib.buffer.Handle(), image)
}
