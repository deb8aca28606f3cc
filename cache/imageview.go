package cache

import (
	"github.com/gogpu/gfxcache/addrrange"
	"github.com/gogpu/gfxcache/gnm"
	"github.com/gogpu/gfxcache/ident"
	"github.com/gogpu/gfxcache/ident/track"
	"github.com/gogpu/gfxcache/vkh"
)

// ImageViewKey identifies a distinct view over an Image: the same Image
// entry can be bound with different mip ranges, layer ranges, swizzles,
// or reinterpreted formats, and each distinct combination needs its own
// VkImageView. Unlike Buffer/ImageBuffer/Image, an ImageView has no
// update/write/flush step of its own (§4.2.4) — it is a stateless
// lookup key over an already-synchronized Image.
type ImageViewKey struct {
	Image      ident.ImageID
	Format     gnm.DataFormat
	BaseMip    uint32
	MipCount   uint32
	BaseLayer  uint32
	LayerCount uint32
	Swizzle    [4]uint8
}

// ImageView is the cache entry for one ImageViewKey.
type ImageView struct {
	entryBase

	id       ident.ImageViewID
	tracking *track.TrackingData
	key      ImageViewKey
	vkView   vkh.ImageView
}

// NewImageView creates an ImageView entry for key backed by vkView.
// rng is the key's owning Image's address range: an ImageView is
// invalidated whenever the Image beneath it is.
func NewImageView(id ident.ImageViewID, tracking *track.TrackingData, rng addrrange.Range, key ImageViewKey, vkView vkh.ImageView) *ImageView {
	return &ImageView{
		entryBase: newEntryBase(EntryImageView, rng),
		id:        id,
		tracking:  tracking,
		key:       key,
		vkView:    vkView,
	}
}

func (v *ImageView) ID() ident.ImageViewID { return v.id }
func (v *ImageView) Key() ImageViewKey     { return v.key }
func (v *ImageView) Handle() vkh.ImageView { return v.vkView }
