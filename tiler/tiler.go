package tiler

import "github.com/gogpu/gfxcache/gnm"

// MicroTileThickness returns the micro tile's depth in texels for the
// given array mode: thick modes pack 4 (or 8, for the extra-thick modes)
// depth slices per micro tile, thin and linear modes pack 1.
func MicroTileThickness(mode ArrayMode) uint32 {
	switch mode {
	case ArrayMode1dTiledThick, ArrayMode2dTiledThick, ArrayMode3dTiledThick,
		ArrayModeTiledThickPrt, ArrayMode2dTiledThickPrt, ArrayMode3dTiledThickPrt:
		return 4
	case ArrayMode2dTiledXThick, ArrayMode3dTiledXThick:
		return 8
	default:
		return 1
	}
}

// IsMacroTiled reports whether mode distributes micro tiles across
// memory-channel pipes and banks (true for every 2D/3D tiled mode).
func IsMacroTiled(mode ArrayMode) bool {
	switch mode {
	case ArrayModeLinearGeneral, ArrayModeLinearAligned,
		ArrayMode1dTiledThin, ArrayMode1dTiledThick:
		return false
	default:
		return true
	}
}

// IsPartiallyResident reports whether mode is one of the sparse
// (partially resident texture) tiling variants.
func IsPartiallyResident(mode ArrayMode) bool {
	switch mode {
	case ArrayModeTiledThinPrt, ArrayMode2dTiledThinPrt, ArrayModeTiledThickPrt,
		ArrayMode2dTiledThickPrt, ArrayMode3dTiledThinPrt, ArrayMode3dTiledThickPrt:
		return true
	default:
		return false
	}
}

// SurfaceParams describes the dimensions and format a surface layout is
// computed from.
type SurfaceParams struct {
	Type           gnm.TextureType
	DataFormat     gnm.DataFormat
	Width          uint32
	Height         uint32
	Depth          uint32
	Pitch          uint32
	BaseArrayLayer int
	ArrayCount     int
	BaseMipLevel   int
	MipCount       int
	Pow2Pad        bool
}

// Tiler computes a surface's tiled and linear memory layout from its
// tile mode and dimensions, and the reverse mapping the cache's
// coherency engine needs to stage a tiled Image through a linear
// ImageBuffer. The micro-tile swizzle math itself — and the compute
// kernels that physically tile and detile pixel data on the GPU — are
// owned by the device's tiler implementation; this interface is the
// boundary the cache programs against.
type Tiler interface {
	// ComputeSurfaceInfo derives the per-mip tiled/linear layout of a
	// surface from explicit dimensions and tile mode.
	ComputeSurfaceInfo(tileMode TileMode, params SurfaceParams) (SurfaceInfo, error)

	// ComputeSurfaceInfoFromTBuffer derives the same layout directly from
	// a decoded texture descriptor.
	ComputeSurfaceInfoFromTBuffer(tbuffer gnm.TBuffer, tileMode TileMode) (SurfaceInfo, error)
}

// bitsPerElement returns the bit width of one DataFormat element. Block
// compressed formats report the bits of one compressed block, matching
// the hardware's element-size accounting for tiling purposes.
func bitsPerElement(format gnm.DataFormat) int {
	switch format {
	case gnm.DataFormat8, gnm.DataFormat4_4, gnm.DataFormat1, gnm.DataFormat1Reversed:
		return 8
	case gnm.DataFormat16, gnm.DataFormat8_8, gnm.DataFormat5_6_5,
		gnm.DataFormat1_5_5_5, gnm.DataFormat5_5_5_1, gnm.DataFormat4_4_4_4,
		gnm.DataFormat6_5_5:
		return 16
	case gnm.DataFormat32, gnm.DataFormat16_16, gnm.DataFormat10_11_11,
		gnm.DataFormat11_11_10, gnm.DataFormat10_10_10_2, gnm.DataFormat2_10_10_10,
		gnm.DataFormat8_8_8_8, gnm.DataFormat8_24, gnm.DataFormat24_8,
		gnm.DataFormatGB_GR, gnm.DataFormatBG_RG, gnm.DataFormat5_9_9_9:
		return 32
	case gnm.DataFormat32_32, gnm.DataFormat16_16_16_16, gnm.DataFormatX24_8_32:
		return 64
	case gnm.DataFormat32_32_32:
		return 96
	case gnm.DataFormat32_32_32_32:
		return 128
	case gnm.DataFormatBc1, gnm.DataFormatBc4:
		return 64
	case gnm.DataFormatBc2, gnm.DataFormatBc3, gnm.DataFormatBc5,
		gnm.DataFormatBc6, gnm.DataFormatBc7:
		return 128
	default:
		return 0
	}
}

// LinearTiler implements Tiler for the row-major (non-tiled) array
// modes. It cannot lay out a macro-tiled surface; callers holding a
// tiled TileMode must use the device's hardware-backed Tiler instead.
type LinearTiler struct{}

// ComputeSurfaceInfo implements Tiler using a plain row-major layout.
// It returns an error if tileMode is not one of the linear array modes.
func (LinearTiler) ComputeSurfaceInfo(tileMode TileMode, params SurfaceParams) (SurfaceInfo, error) {
	if !tileMode.ArrayMode().IsLinear() {
		return SurfaceInfo{}, errNotLinear
	}

	bpe := bitsPerElement(params.DataFormat)
	if bpe == 0 {
		return SurfaceInfo{}, errUnknownFormat
	}

	info := SurfaceInfo{
		Width:           params.Width,
		Height:          params.Height,
		Depth:           params.Depth,
		Pitch:           params.Pitch,
		ArrayLayerCount: params.ArrayCount,
		NumFragments:    1,
		BitsPerElement:  bpe,
	}
	if info.Pitch == 0 {
		info.Pitch = params.Width
	}

	var offset uint64
	w, h, d := params.Width, params.Height, params.Depth
	if d == 0 {
		d = 1
	}
	pitch := info.Pitch
	for mip := 0; mip < params.MipCount && mip < MaxSubresources; mip++ {
		rowBytes := (uint64(pitch) * uint64(bpe)) / 8
		sliceSize := rowBytes * uint64(h)
		mipSize := sliceSize * uint64(d)

		info.SetSubresource(mip, SubresourceInfo{
			DataWidth:  w,
			DataHeight: h,
			DataDepth:  d,
			Offset:     offset,
			TiledSize:  mipSize,
			LinearSize: mipSize,
		})
		offset += mipSize

		if w > 1 {
			w /= 2
		}
		if h > 1 {
			h /= 2
		}
		if d > 1 {
			d /= 2
		}
		if pitch > 1 {
			pitch /= 2
		}
	}
	info.TotalSize = offset

	return info, nil
}

// ComputeSurfaceInfoFromTBuffer implements Tiler by decoding the
// dimensions out of tbuffer and delegating to ComputeSurfaceInfo.
func (l LinearTiler) ComputeSurfaceInfoFromTBuffer(tbuffer gnm.TBuffer, tileMode TileMode) (SurfaceInfo, error) {
	return l.ComputeSurfaceInfo(tileMode, SurfaceParams{
		Type:           tbuffer.Type(),
		DataFormat:     tbuffer.DataFormat(),
		Width:          tbuffer.Width() + 1,
		Height:         tbuffer.Height() + 1,
		Depth:          tbuffer.Depth() + 1,
		Pitch:          tbuffer.Pitch() + 1,
		BaseArrayLayer: int(tbuffer.BaseArray()),
		ArrayCount:     int(tbuffer.LastArray()-tbuffer.BaseArray()) + 1,
		BaseMipLevel:   int(tbuffer.BaseLevel()),
		MipCount:       int(tbuffer.LastLevel()-tbuffer.BaseLevel()) + 1,
		Pow2Pad:        tbuffer.Pow2Pad(),
	})
}
