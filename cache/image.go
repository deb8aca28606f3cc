package cache

import (
	"github.com/gogpu/gfxcache/addrrange"
	"github.com/gogpu/gfxcache/ident"
	"github.com/gogpu/gfxcache/ident/track"
	"github.com/gogpu/gfxcache/shaderres"
	"github.com/gogpu/gfxcache/tiler"
	"github.com/gogpu/gfxcache/vkh"
)

// Image is the cache entry for a sampled/rendered surface. Unlike the
// original implementation's per-access layout transitions, an Image
// entry is kept in VK_IMAGE_LAYOUT_GENERAL for its entire cached
// lifetime (§4.2.3): the host API's GENERAL layout is valid for every
// access this cache performs (sampled read, storage read/write, copy
// src/dst), so there is nothing to transition between draws and one
// class of the original's bugs (a stale layout left over from a
// previous binding) cannot occur here at all.
type Image struct {
	entryBase

	id       ident.ImageID
	tracking *track.TrackingData
	key      shaderres.ImageKey
	vkImage  vkh.Image
	surface  tiler.SurfaceInfo
	tileMode tiler.TileMode
	staging  *ImageBuffer
}

// NewImage creates an Image entry for key, backed by vkImage and staged
// through staging.
func NewImage(id ident.ImageID, tracking *track.TrackingData, rng addrrange.Range, key shaderres.ImageKey, vkImage vkh.Image, surface tiler.SurfaceInfo, tileMode tiler.TileMode, staging *ImageBuffer) *Image {
	return &Image{
		entryBase: newEntryBase(EntryImage, rng),
		id:        id,
		tracking:  tracking,
		key:       key,
		vkImage:   vkImage,
		surface:   surface,
		tileMode:  tileMode,
		staging:   staging,
	}
}

func (img *Image) ID() ident.ImageID      { return img.id }
func (img *Image) Key() shaderres.ImageKey { return img.key }
func (img *Image) Handle() vkh.Image      { return img.vkImage }
func (img *Image) Staging() *ImageBuffer  { return img.staging }

// Compatible reports whether this entry can service a lookup under key
// without eviction: a format or dimension mismatch at the same address
// means the guest has repurposed the memory for a different surface,
// and the cached entry must be evicted and rebuilt rather than reused.
func (img *Image) Compatible(key shaderres.ImageKey) bool {
	return img.key == key
}

// Update makes the image's tiled contents reflect whatever bytes are
// currently in its staging buffer. It does not refresh the staging
// buffer from guest memory first.
func (img *Image) Update(cmd vkh.CommandBuffer, gt GpuTiler) error {
	return img.staging.Write(cmd, gt, img.vkImage)
}

// Flush pulls the image's current tiled contents back into its staging
// buffer so a subsequent guest-visible readback (or a Buffer.GetData on
// the staging buffer) observes whatever the GPU last wrote.
func (img *Image) Flush(cmd vkh.CommandBuffer, gt GpuTiler) error {
	return img.staging.Update(cmd, gt, img.vkImage)
}
