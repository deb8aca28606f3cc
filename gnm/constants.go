// Package gnm decodes the PS4 GNM descriptor formats the cache evaluates
// shader resource pointers against: vertex/typed buffer descriptors,
// texture (T#) descriptors, and sampler (S#) descriptors.
//
// Descriptors are packed bitfield records exactly as the GPU writes and
// reads them; this package only ever decodes fields out of the raw words,
// it never re-encodes them, since the cache only consumes descriptors the
// guest already built.
package gnm

// DataFormat is the GNM channel-layout component of a resource format.
type DataFormat uint32

const (
	DataFormatInvalid       DataFormat = 0x00
	DataFormat8             DataFormat = 0x01
	DataFormat16            DataFormat = 0x02
	DataFormat8_8           DataFormat = 0x03
	DataFormat32            DataFormat = 0x04
	DataFormat16_16         DataFormat = 0x05
	DataFormat10_11_11      DataFormat = 0x06
	DataFormat11_11_10      DataFormat = 0x07
	DataFormat10_10_10_2    DataFormat = 0x08
	DataFormat2_10_10_10    DataFormat = 0x09
	DataFormat8_8_8_8       DataFormat = 0x0a
	DataFormat32_32         DataFormat = 0x0b
	DataFormat16_16_16_16   DataFormat = 0x0c
	DataFormat32_32_32      DataFormat = 0x0d
	DataFormat32_32_32_32   DataFormat = 0x0e
	DataFormat5_6_5         DataFormat = 0x10
	DataFormat1_5_5_5       DataFormat = 0x11
	DataFormat5_5_5_1       DataFormat = 0x12
	DataFormat4_4_4_4       DataFormat = 0x13
	DataFormat8_24          DataFormat = 0x14
	DataFormat24_8          DataFormat = 0x15
	DataFormatX24_8_32      DataFormat = 0x16
	DataFormatGB_GR         DataFormat = 0x20
	DataFormatBG_RG         DataFormat = 0x21
	DataFormat5_9_9_9       DataFormat = 0x22
	DataFormatBc1           DataFormat = 0x23
	DataFormatBc2           DataFormat = 0x24
	DataFormatBc3           DataFormat = 0x25
	DataFormatBc4           DataFormat = 0x26
	DataFormatBc5           DataFormat = 0x27
	DataFormatBc6           DataFormat = 0x28
	DataFormatBc7           DataFormat = 0x29
	DataFormat4_4           DataFormat = 0x39
	DataFormat6_5_5         DataFormat = 0x3a
	DataFormat1             DataFormat = 0x3b
	DataFormat1Reversed     DataFormat = 0x3c
)

// NumericFormat is the GNM interpretation applied to a DataFormat's
// channel bits (normalized, scaled, integer, float, ...).
type NumericFormat uint32

const (
	NumericFormatUNorm         NumericFormat = 0x00
	NumericFormatSNorm         NumericFormat = 0x01
	NumericFormatUScaled       NumericFormat = 0x02
	NumericFormatSScaled       NumericFormat = 0x03
	NumericFormatUInt          NumericFormat = 0x04
	NumericFormatSInt          NumericFormat = 0x05
	NumericFormatSNormNoZero  NumericFormat = 0x06
	NumericFormatFloat         NumericFormat = 0x07
	NumericFormatSrgb          NumericFormat = 0x09
	NumericFormatUBNorm        NumericFormat = 0x0a
	NumericFormatUBNormNoZero NumericFormat = 0x0b
	NumericFormatUBInt         NumericFormat = 0x0c
	NumericFormatUBScaled      NumericFormat = 0x0d
)

// TextureType selects how a T# descriptor's coordinates are interpreted.
type TextureType uint8

const (
	TextureTypeDim1D TextureType = iota + 8
	TextureTypeDim2D
	TextureTypeDim3D
	TextureTypeCube
	TextureTypeArray1D
	TextureTypeArray2D
	TextureTypeMsaa2D
	TextureTypeMsaaArray2D
)

// IndexType selects the element width of an index buffer.
type IndexType uint8

const (
	IndexTypeInt16 IndexType = iota
	IndexTypeInt32
)

// Swizzle selects the source channel (or constant) a destination channel
// reads from in a buffer or texture descriptor's component mapping.
type Swizzle uint8

const (
	SwizzleZero Swizzle = 0
	SwizzleOne  Swizzle = 1
	SwizzleR    Swizzle = 4
	SwizzleG    Swizzle = 5
	SwizzleB    Swizzle = 6
	SwizzleA    Swizzle = 7
)

// ClampMode is a sampler's texture-coordinate wrap mode.
type ClampMode uint8

const (
	ClampModeWrap ClampMode = iota
	ClampModeMirror
	ClampModeClampLastTexel
	ClampModeMirrorOnceLastTexel
	ClampModeClampHalfBorder
	ClampModeMirrorOnceHalfBorder
	ClampModeClampBorder
	ClampModeMirrorOnceBorder
)

// AnisoRatio is a sampler's maximum anisotropic filtering ratio.
type AnisoRatio uint8

const (
	AnisoRatio1 AnisoRatio = iota
	AnisoRatio2
	AnisoRatio4
	AnisoRatio8
	AnisoRatio16
)

// CompareFunc is a sampler's depth-compare test function.
type CompareFunc uint8

const (
	CompareFuncNever CompareFunc = iota
	CompareFuncLess
	CompareFuncEqual
	CompareFuncLessEqual
	CompareFuncGreater
	CompareFuncNotEqual
	CompareFuncGreaterEqual
	CompareFuncAlways
)

// FilterMode selects how min/mag filter results are combined.
type FilterMode uint8

const (
	FilterModeBlend FilterMode = iota
	FilterModeMin
	FilterModeMax
)

// Filter is a sampler's min/mag filtering mode.
type Filter uint8

const (
	FilterPoint Filter = iota
	FilterBilinear
	FilterAnisoPoint
	FilterAnisoLinear
)

// MipFilter is a sampler's mip-level filtering mode.
type MipFilter uint8

const (
	MipFilterNone MipFilter = iota
	MipFilterPoint
	MipFilterLinear
)

// BorderColor selects a sampler's border color when a clamp mode samples
// outside the texture.
type BorderColor uint8

const (
	BorderColorOpaqueBlack BorderColor = iota
	BorderColorTransparentBlack
	BorderColorWhite
	BorderColorCustom
)
