// Package tiler defines the GCN tile-mode record and surface-layout types
// the cache exchanges with the GPU-side tiler: the component that knows
// how to map a linear mip/slice layout onto the hardware's swizzled tile
// layout, and back, is treated as an external collaborator (its detile
// compute kernels run on the GPU, not in this process) — this package
// only carries the types and interface boundary the cache programs
// against.
package tiler

// ArrayMode selects a surface's base tiling scheme.
type ArrayMode uint32

const (
	ArrayModeLinearGeneral  ArrayMode = 0x0
	ArrayModeLinearAligned  ArrayMode = 0x1
	ArrayMode1dTiledThin    ArrayMode = 0x2
	ArrayMode1dTiledThick   ArrayMode = 0x3
	ArrayMode2dTiledThin    ArrayMode = 0x4
	ArrayModeTiledThinPrt   ArrayMode = 0x5
	ArrayMode2dTiledThinPrt ArrayMode = 0x6
	ArrayMode2dTiledThick   ArrayMode = 0x7
	ArrayMode2dTiledXThick  ArrayMode = 0x8
	ArrayModeTiledThickPrt  ArrayMode = 0x9
	ArrayMode2dTiledThickPrt ArrayMode = 0xa
	ArrayMode3dTiledThinPrt  ArrayMode = 0xb
	ArrayMode3dTiledThin     ArrayMode = 0xc
	ArrayMode3dTiledThick    ArrayMode = 0xd
	ArrayMode3dTiledXThick   ArrayMode = 0xe
	ArrayMode3dTiledThickPrt ArrayMode = 0xf
)

// IsLinear reports whether mode addresses memory row-major, with no
// micro- or macro-tile swizzling.
func (m ArrayMode) IsLinear() bool {
	return m == ArrayModeLinearGeneral || m == ArrayModeLinearAligned
}

// MicroTileMode selects the 8x8 micro-tile's internal element ordering.
type MicroTileMode uint32

const (
	MicroTileModeDisplay MicroTileMode = iota
	MicroTileModeThin
	MicroTileModeDepth
	MicroTileModeRotated
	MicroTileModeThick
)

// PipeConfig selects the memory-channel interleave pattern macro tiles
// are distributed across.
type PipeConfig uint32

const (
	PipeConfigP8_32x32_8x16  PipeConfig = 0xa
	PipeConfigP8_32x32_16x16 PipeConfig = 0xc
	PipeConfigP16            PipeConfig = 0x12
)

// PipeCount returns the number of memory-channel pipes p addresses
// across.
func (p PipeConfig) PipeCount() int {
	switch p {
	case PipeConfigP8_32x32_8x16, PipeConfigP8_32x32_16x16:
		return 8
	case PipeConfigP16:
		return 16
	default:
		return 0
	}
}

// TileSplit selects the byte size at which depth/stencil tiles split
// across memory banks.
type TileSplit uint32

const (
	TileSplit64B TileSplit = iota
	TileSplit128B
	TileSplit256B
	TileSplit512B
	TileSplit1KB
	TileSplit2KB
	TileSplit4KB
)

// SampleSplit selects how many MSAA samples share a tile split.
type SampleSplit uint32

const (
	SampleSplit1 SampleSplit = iota
	SampleSplit2
	SampleSplit4
	SampleSplit8
)

// NumBanks selects the macro tile's memory-bank count.
type NumBanks uint32

const (
	NumBanks2 NumBanks = iota
	NumBanks4
	NumBanks8
	NumBanks16
)

// BankWidth selects the macro tile's bank width, in micro tiles.
type BankWidth uint32

const (
	BankWidth1 BankWidth = iota
	BankWidth2
	BankWidth4
	BankWidth8
)

// BankHeight selects the macro tile's bank height, in micro tiles.
type BankHeight uint32

const (
	BankHeight1 BankHeight = iota
	BankHeight2
	BankHeight4
	BankHeight8
)

// MacroTileAspect selects the macro tile's width-to-height ratio.
type MacroTileAspect uint32

const (
	MacroTileAspect1 MacroTileAspect = iota
	MacroTileAspect2
	MacroTileAspect4
	MacroTileAspect8
)

// TileMode is a packed tile-mode record: the array mode, pipe config,
// and related fields that together select how a surface's texels map
// onto physical memory. It mirrors the hardware's 32-bit tile-mode table
// entry format.
type TileMode struct {
	Raw uint32
}

func (t TileMode) ArrayMode() ArrayMode {
	return ArrayMode((t.Raw & 0x0000003c) >> 2)
}

func (t TileMode) PipeConfig() PipeConfig {
	return PipeConfig((t.Raw & 0x000007c0) >> 6)
}

func (t TileMode) TileSplit() TileSplit {
	return TileSplit((t.Raw & 0x00003800) >> 11)
}

func (t TileMode) MicroTileMode() MicroTileMode {
	return MicroTileMode((t.Raw & 0x01c00000) >> 22)
}

func (t TileMode) SampleSplit() SampleSplit {
	return SampleSplit((t.Raw & 0x06000000) >> 25)
}

func (t TileMode) AltPipeConfig() uint32 {
	return (t.Raw & 0xf8000000) >> 27
}

// WithArrayMode returns a copy of t with its array mode field replaced.
func (t TileMode) WithArrayMode(mode ArrayMode) TileMode {
	t.Raw = (t.Raw &^ 0x0000003c) | (uint32(mode)<<2)&0x0000003c
	return t
}

// WithPipeConfig returns a copy of t with its pipe config field replaced.
func (t TileMode) WithPipeConfig(cfg PipeConfig) TileMode {
	t.Raw = (t.Raw &^ 0x000007c0) | (uint32(cfg)<<6)&0x000007c0
	return t
}

// WithTileSplit returns a copy of t with its tile split field replaced.
func (t TileMode) WithTileSplit(split TileSplit) TileMode {
	t.Raw = (t.Raw &^ 0x00003800) | (uint32(split)<<11)&0x00003800
	return t
}

// WithMicroTileMode returns a copy of t with its micro tile mode field
// replaced.
func (t TileMode) WithMicroTileMode(mode MicroTileMode) TileMode {
	t.Raw = (t.Raw &^ 0x01c00000) | (uint32(mode)<<22)&0x01c00000
	return t
}

// WithSampleSplit returns a copy of t with its sample split field
// replaced.
func (t TileMode) WithSampleSplit(split SampleSplit) TileMode {
	t.Raw = (t.Raw &^ 0x06000000) | (uint32(split)<<25)&0x06000000
	return t
}

// MacroTileMode is a packed macro-tile-mode record: bank geometry for
// surfaces using a 2D or 3D tiled array mode.
type MacroTileMode struct {
	Raw uint32
}

func (m MacroTileMode) BankWidth() BankWidth {
	return BankWidth(m.Raw & 0x00000003)
}

func (m MacroTileMode) BankHeight() BankHeight {
	return BankHeight((m.Raw & 0x0000000c) >> 2)
}

func (m MacroTileMode) MacroTileAspect() MacroTileAspect {
	return MacroTileAspect((m.Raw & 0x00000030) >> 4)
}

func (m MacroTileMode) NumBanks() NumBanks {
	return NumBanks((m.Raw & 0x000000c0) >> 6)
}

// SubresourceInfo is the tiled and linear layout of a single mip level
// (or mip/slice pair) of a surface.
type SubresourceInfo struct {
	DataWidth  uint32
	DataHeight uint32
	DataDepth  uint32
	Offset     uint64
	TiledSize  uint64
	LinearSize uint64
}

// MaxSubresources bounds the per-surface subresource table, matching the
// GCN hardware's maximum mip count.
const MaxSubresources = 16

// SurfaceInfo is the precomputed per-mip tiled and linear layout of a
// surface, derived from a TileMode plus its dimensions. The cache uses it
// to translate between a guest's tiled Image access and the linear
// ImageBuffer staging layout the host copy commands operate on.
type SurfaceInfo struct {
	Width           uint32
	Height          uint32
	Depth           uint32
	Pitch           uint32
	ArrayLayerCount int
	NumFragments    int
	BitsPerElement  int
	TotalSize       uint64

	Subresources [MaxSubresources]SubresourceInfo
}

// Subresource returns the layout of the given mip level.
func (s *SurfaceInfo) Subresource(mipLevel int) SubresourceInfo {
	return s.Subresources[mipLevel]
}

// SetSubresource records the layout of the given mip level.
func (s *SurfaceInfo) SetSubresource(mipLevel int, info SubresourceInfo) {
	s.Subresources[mipLevel] = info
}
