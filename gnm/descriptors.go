package gnm

// Descriptor records are packed bitfields exactly as GCN shader hardware
// reads them: a fixed number of 32- or 64-bit words, with fields occupying
// a bit range starting at the least-significant bit of the first word and
// running upward. Go has no native bitfield syntax, so each record stores
// its raw words and exposes fields through accessor methods that extract
// and mask the corresponding bit range.

func bits64(word uint64, offset, width uint) uint64 {
	return (word >> offset) & ((uint64(1) << width) - 1)
}

func bits32(word uint32, offset, width uint) uint32 {
	return (word >> offset) & ((uint32(1) << width) - 1)
}

// VBuffer is a GNM vertex/typed buffer descriptor (V#), a 2-dword-pair
// (128-bit) record describing a linear GPU buffer's base address, stride,
// element count, and component format.
type VBuffer [2]uint64

// Address returns the buffer's base GPU address.
func (v VBuffer) Address() uint64 {
	return bits64(v[0], 0, 44)
}

// MtypeL1 returns the L1 cache policy selector.
func (v VBuffer) MtypeL1() uint32 {
	return uint32(bits64(v[0], 44, 2))
}

// MtypeL2 returns the L2 cache policy selector.
func (v VBuffer) MtypeL2() uint32 {
	return uint32(bits64(v[0], 46, 2))
}

// Stride returns the per-element byte stride. A stride of 0 marks the
// buffer as a raw (unstrided) buffer, in which case Size is num_records
// bytes rather than num_records*stride.
func (v VBuffer) Stride() uint32 {
	return uint32(bits64(v[0], 48, 14))
}

// CacheSwizzle reports whether cache-line swizzling is enabled.
func (v VBuffer) CacheSwizzle() bool {
	return bits64(v[0], 62, 1) != 0
}

// SwizzleEnabled reports whether element swizzling is enabled.
func (v VBuffer) SwizzleEnabled() bool {
	return bits64(v[0], 63, 1) != 0
}

// NumRecords returns the element count (or, for a raw buffer, the byte
// count).
func (v VBuffer) NumRecords() uint32 {
	return uint32(bits64(v[1], 0, 32))
}

// DstSelX returns the component-mapping source for the destination X
// channel. DstSelY, DstSelZ, DstSelW follow the same convention.
func (v VBuffer) DstSelX() Swizzle { return Swizzle(bits64(v[1], 32, 3)) }
func (v VBuffer) DstSelY() Swizzle { return Swizzle(bits64(v[1], 35, 3)) }
func (v VBuffer) DstSelZ() Swizzle { return Swizzle(bits64(v[1], 38, 3)) }
func (v VBuffer) DstSelW() Swizzle { return Swizzle(bits64(v[1], 41, 3)) }

// NumFormat returns the buffer's numeric interpretation.
func (v VBuffer) NumFormat() NumericFormat {
	return NumericFormat(bits64(v[1], 44, 3))
}

// DataFormat returns the buffer's channel layout.
func (v VBuffer) DataFormat() DataFormat {
	return DataFormat(bits64(v[1], 47, 4))
}

// ElementSize returns log2 of the element size in bytes for indexed
// access patterns.
func (v VBuffer) ElementSize() uint32 {
	return uint32(bits64(v[1], 51, 2))
}

// IndexStride returns log2 of the index stride for indexed access
// patterns.
func (v VBuffer) IndexStride() uint32 {
	return uint32(bits64(v[1], 53, 2))
}

// AddTidEnabled reports whether the thread ID is added to the fetch
// address (used for per-lane scratch buffers).
func (v VBuffer) AddTidEnabled() bool {
	return bits64(v[1], 55, 1) != 0
}

// HashEnabled reports whether address hashing is enabled.
func (v VBuffer) HashEnabled() bool {
	return bits64(v[1], 57, 1) != 0
}

// Mtype returns the full cache policy selector.
func (v VBuffer) Mtype() uint32 {
	return uint32(bits64(v[1], 59, 3))
}

// Type returns the descriptor type tag; a V# descriptor always reports 0.
func (v VBuffer) Type() uint32 {
	return uint32(bits64(v[1], 62, 2))
}

// Size returns the buffer's extent in bytes: num_records*stride for a
// strided buffer, or num_records directly for a raw (stride == 0) buffer.
func (v VBuffer) Size() uint64 {
	if v.Stride() == 0 {
		return uint64(v.NumRecords())
	}
	return uint64(v.NumRecords()) * uint64(v.Stride())
}

// TBuffer is a GNM texture descriptor (T#), a 4-dword-pair (256-bit)
// record describing a surface's base address, dimensions, tiling, and
// format.
type TBuffer [4]uint64

// Address returns the surface's base GPU address. The hardware stores
// only the upper bits of a 256-byte-aligned address.
func (t TBuffer) Address() uint64 {
	return uint64(uint32(bits64(t[0], 0, 38))) << 8
}

// MtypeL2 returns the L2 cache policy selector.
func (t TBuffer) MtypeL2() uint32 {
	return uint32(bits64(t[0], 38, 2))
}

// MinLod returns the minimum level of detail, in 1/256th-texel units.
func (t TBuffer) MinLod() uint32 {
	return uint32(bits64(t[0], 40, 12))
}

// DataFormat returns the surface's channel layout.
func (t TBuffer) DataFormat() DataFormat {
	return DataFormat(bits64(t[0], 52, 6))
}

// NumFormat returns the surface's numeric interpretation.
func (t TBuffer) NumFormat() NumericFormat {
	return NumericFormat(bits64(t[0], 58, 4))
}

// Mtype01 returns the low two bits of the cache policy selector.
func (t TBuffer) Mtype01() uint32 {
	return uint32(bits64(t[0], 62, 2))
}

// Width returns the surface width in texels, minus one.
func (t TBuffer) Width() uint32 {
	return uint32(bits64(t[1], 0, 14))
}

// Height returns the surface height in texels, minus one.
func (t TBuffer) Height() uint32 {
	return uint32(bits64(t[1], 14, 14))
}

// PerfModulation returns the texture cache performance-modulation value.
func (t TBuffer) PerfModulation() uint32 {
	return uint32(bits64(t[1], 28, 3))
}

// Interlaced reports whether the surface is interlaced.
func (t TBuffer) Interlaced() bool {
	return bits64(t[1], 31, 1) != 0
}

func (t TBuffer) DstSelX() Swizzle { return Swizzle(bits64(t[1], 32, 3)) }
func (t TBuffer) DstSelY() Swizzle { return Swizzle(bits64(t[1], 35, 3)) }
func (t TBuffer) DstSelZ() Swizzle { return Swizzle(bits64(t[1], 38, 3)) }
func (t TBuffer) DstSelW() Swizzle { return Swizzle(bits64(t[1], 41, 3)) }

// BaseLevel returns the first mip level exposed by this view.
func (t TBuffer) BaseLevel() uint32 {
	return uint32(bits64(t[1], 44, 4))
}

// LastLevel returns the last mip level exposed by this view.
func (t TBuffer) LastLevel() uint32 {
	return uint32(bits64(t[1], 48, 4))
}

// TilingIndex selects the surface's tile mode, an index into the GPU's
// tile-mode table (see package tiler).
func (t TBuffer) TilingIndex() uint32 {
	return uint32(bits64(t[1], 52, 5))
}

// Pow2Pad reports whether the surface is padded to power-of-two
// dimensions.
func (t TBuffer) Pow2Pad() bool {
	return bits64(t[1], 57, 1) != 0
}

// Mtype2 returns the high bit of the cache policy selector.
func (t TBuffer) Mtype2() uint32 {
	return uint32(bits64(t[1], 58, 1))
}

// Type returns the texture's dimensionality and array/MSAA classification.
func (t TBuffer) Type() TextureType {
	return TextureType(bits64(t[1], 60, 4))
}

// Depth returns the surface depth in slices, minus one, for a 3D texture.
func (t TBuffer) Depth() uint32 {
	return uint32(bits64(t[2], 0, 13))
}

// Pitch returns the surface's row pitch in texels, minus one.
func (t TBuffer) Pitch() uint32 {
	return uint32(bits64(t[2], 13, 14))
}

// BaseArray returns the first array slice exposed by this view.
func (t TBuffer) BaseArray() uint32 {
	return uint32(bits64(t[2], 32, 13))
}

// LastArray returns the last array slice exposed by this view.
func (t TBuffer) LastArray() uint32 {
	return uint32(bits64(t[2], 45, 13))
}

// MinLodWarning returns the LOD warning threshold, in 1/256th-texel units.
func (t TBuffer) MinLodWarning() uint32 {
	return uint32(bits64(t[3], 0, 12))
}

// CounterBankID returns the performance-counter bank this surface feeds.
func (t TBuffer) CounterBankID() uint32 {
	return uint32(bits64(t[3], 12, 8))
}

// LodHdwCntEnabled reports whether hardware LOD counting is enabled.
func (t TBuffer) LodHdwCntEnabled() bool {
	return bits64(t[3], 20, 1) != 0
}

// SSampler is a GNM sampler descriptor (S#), a 4-dword (128-bit) record
// describing texture-coordinate wrapping, filtering, and LOD clamping.
type SSampler [4]uint32

func (s SSampler) ClampX() ClampMode { return ClampMode(bits32(s[0], 0, 3)) }
func (s SSampler) ClampY() ClampMode { return ClampMode(bits32(s[0], 3, 3)) }
func (s SSampler) ClampZ() ClampMode { return ClampMode(bits32(s[0], 6, 3)) }

// MaxAnisoRatio returns the maximum anisotropic filtering ratio.
func (s SSampler) MaxAnisoRatio() AnisoRatio {
	return AnisoRatio(bits32(s[0], 9, 3))
}

// DepthCompareFunc returns the depth-compare test function used for
// shadow samplers.
func (s SSampler) DepthCompareFunc() CompareFunc {
	return CompareFunc(bits32(s[0], 12, 3))
}

// ForceUnormCoords reports whether texture coordinates are forced to
// unnormalized (texel) space.
func (s SSampler) ForceUnormCoords() bool {
	return bits32(s[0], 15, 1) != 0
}

// AnisoThreshold returns the anisotropic filtering threshold.
func (s SSampler) AnisoThreshold() uint32 {
	return bits32(s[0], 16, 3)
}

// McCoordTrunc reports whether texture coordinates are truncated before
// filtering.
func (s SSampler) McCoordTrunc() bool {
	return bits32(s[0], 19, 1) != 0
}

// ForceDegamma reports whether sRGB decoding is forced regardless of the
// bound surface's format.
func (s SSampler) ForceDegamma() bool {
	return bits32(s[0], 20, 1) != 0
}

// AnisoBias returns the anisotropic filtering angle bias.
func (s SSampler) AnisoBias() uint32 {
	return bits32(s[0], 21, 6)
}

// TruncCoord reports whether coordinate truncation is enabled.
func (s SSampler) TruncCoord() bool {
	return bits32(s[0], 27, 1) != 0
}

// DisableCubeWrap reports whether cube-map edge wrapping is disabled.
func (s SSampler) DisableCubeWrap() bool {
	return bits32(s[0], 28, 1) != 0
}

// FilterMode returns how min/mag filter taps are combined.
func (s SSampler) FilterMode() FilterMode {
	return FilterMode(bits32(s[0], 29, 2))
}

// MinLod returns the minimum LOD clamp, in 1/256th-level units.
func (s SSampler) MinLod() uint32 {
	return bits32(s[1], 0, 12)
}

// MaxLod returns the maximum LOD clamp, in 1/256th-level units.
func (s SSampler) MaxLod() uint32 {
	return bits32(s[1], 12, 12)
}

// PerfMip returns the mip-selection performance counter value.
func (s SSampler) PerfMip() uint32 {
	return bits32(s[1], 24, 4)
}

// PerfZ returns the Z-filtering performance counter value.
func (s SSampler) PerfZ() uint32 {
	return bits32(s[1], 28, 4)
}

// LodBias returns the LOD bias applied before filtering, in level units.
// The hardware stores this as a 1/256th-level fixed-point value across
// 14 bits; raw divides straight down with no sign-extension.
func (s SSampler) LodBias() float64 {
	raw := bits32(s[2], 0, 14)
	return float64(raw) / 256.0
}

// LodBiasSecondary returns the secondary LOD bias used for anisotropic
// filtering, in level units.
func (s SSampler) LodBiasSecondary() uint32 {
	return bits32(s[2], 14, 6)
}

func (s SSampler) XYMagFilter() Filter { return Filter(bits32(s[2], 20, 2)) }
func (s SSampler) XYMinFilter() Filter { return Filter(bits32(s[2], 22, 2)) }
func (s SSampler) ZFilter() Filter     { return Filter(bits32(s[2], 24, 2)) }

// MipFilter returns the mip-level filtering mode.
func (s SSampler) MipFilter() MipFilter {
	return MipFilter(bits32(s[2], 26, 2))
}

// BorderColorPtr returns the index into the border-color table this
// sampler reads from when a clamp mode samples outside the texture.
func (s SSampler) BorderColorPtr() uint32 {
	return bits32(s[3], 0, 12)
}

// BorderColorType selects which of the fixed border colors, or the
// indexed custom table, this sampler uses.
func (s SSampler) BorderColorType() BorderColor {
	return BorderColor(bits32(s[3], 30, 2))
}
