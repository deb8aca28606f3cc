package gnm

import "testing"

func TestVBuffer_StridedSize(t *testing.T) {
	var v VBuffer
	v[0] = 0x1000 & ((1 << 44) - 1)
	v[0] |= uint64(32) << 48 // stride = 32
	v[1] = 1024              // num_records = 1024

	if got := v.Address(); got != 0x1000 {
		t.Errorf("Address() = %#x, want 0x1000", got)
	}
	if got := v.Stride(); got != 32 {
		t.Errorf("Stride() = %d, want 32", got)
	}
	if got := v.NumRecords(); got != 1024 {
		t.Errorf("NumRecords() = %d, want 1024", got)
	}
	if got := v.Size(); got != 1024*32 {
		t.Errorf("Size() = %d, want %d", got, 1024*32)
	}
}

func TestVBuffer_RawSize(t *testing.T) {
	var v VBuffer
	v[1] = 4096 // num_records = 4096, stride = 0

	if got := v.Size(); got != 4096 {
		t.Errorf("Size() = %d, want 4096 for raw buffer", got)
	}
}

func TestVBuffer_FormatAndSwizzle(t *testing.T) {
	var v VBuffer
	v[1] |= uint64(DataFormat32_32_32_32) << 47
	v[1] |= uint64(NumericFormatFloat) << 44
	v[1] |= uint64(SwizzleR) << 32
	v[1] |= uint64(SwizzleG) << 35
	v[1] |= uint64(SwizzleB) << 38
	v[1] |= uint64(SwizzleA) << 41

	if got := v.DataFormat(); got != DataFormat32_32_32_32 {
		t.Errorf("DataFormat() = %v, want DataFormat32_32_32_32", got)
	}
	if got := v.NumFormat(); got != NumericFormatFloat {
		t.Errorf("NumFormat() = %v, want NumericFormatFloat", got)
	}
	if got := v.DstSelX(); got != SwizzleR {
		t.Errorf("DstSelX() = %v, want SwizzleR", got)
	}
	if got := v.DstSelW(); got != SwizzleA {
		t.Errorf("DstSelW() = %v, want SwizzleA", got)
	}
}

func TestTBuffer_AddressAlignment(t *testing.T) {
	var tb TBuffer
	// baseaddr256 stores address >> 8; a 256-aligned address round-trips
	// exactly.
	const addr = uint64(0x7f0000000) // already 256-aligned
	tb[0] = (addr >> 8) & ((1 << 38) - 1)

	if got := tb.Address(); got != addr {
		t.Errorf("Address() = %#x, want %#x", got, addr)
	}
}

func TestTBuffer_DimensionsAndType(t *testing.T) {
	var tb TBuffer
	tb[1] |= uint64(1919) << 0  // width - 1
	tb[1] |= uint64(1079) << 14 // height - 1
	tb[1] |= uint64(TextureTypeArray2D) << 60

	if got := tb.Width(); got != 1919 {
		t.Errorf("Width() = %d, want 1919", got)
	}
	if got := tb.Height(); got != 1079 {
		t.Errorf("Height() = %d, want 1079", got)
	}
	if got := tb.Type(); got != TextureTypeArray2D {
		t.Errorf("Type() = %v, want TextureTypeArray2D", got)
	}
}

func TestTBuffer_MipAndArrayRange(t *testing.T) {
	var tb TBuffer
	tb[1] |= uint64(2) << 44  // base_level
	tb[1] |= uint64(10) << 48 // last_level
	tb[2] |= uint64(0) << 32  // base_array
	tb[2] |= uint64(5) << 45  // last_array

	if got := tb.BaseLevel(); got != 2 {
		t.Errorf("BaseLevel() = %d, want 2", got)
	}
	if got := tb.LastLevel(); got != 10 {
		t.Errorf("LastLevel() = %d, want 10", got)
	}
	if got := tb.LastArray(); got != 5 {
		t.Errorf("LastArray() = %d, want 5", got)
	}
}

func TestSSampler_ClampAndFilter(t *testing.T) {
	var s SSampler
	s[0] |= uint32(ClampModeClampBorder) << 0
	s[0] |= uint32(ClampModeWrap) << 3
	s[0] |= uint32(AnisoRatio4) << 9
	s[2] |= uint32(FilterBilinear) << 20
	s[2] |= uint32(FilterBilinear) << 22
	s[2] |= uint32(MipFilterLinear) << 26

	if got := s.ClampX(); got != ClampModeClampBorder {
		t.Errorf("ClampX() = %v, want ClampModeClampBorder", got)
	}
	if got := s.ClampY(); got != ClampModeWrap {
		t.Errorf("ClampY() = %v, want ClampModeWrap", got)
	}
	if got := s.MaxAnisoRatio(); got != AnisoRatio4 {
		t.Errorf("MaxAnisoRatio() = %v, want AnisoRatio4", got)
	}
	if got := s.XYMagFilter(); got != FilterBilinear {
		t.Errorf("XYMagFilter() = %v, want FilterBilinear", got)
	}
	if got := s.MipFilter(); got != MipFilterLinear {
		t.Errorf("MipFilter() = %v, want MipFilterLinear", got)
	}
}

func TestSSampler_LodBiasHighRaw(t *testing.T) {
	var s SSampler
	// Raw field divides straight down by 256 with no sign-extension.
	s[2] |= uint32(1<<14 - 256)

	want := float64(1<<14-256) / 256.0
	if got := s.LodBias(); got != want {
		t.Errorf("LodBias() = %v, want %v", got, want)
	}
}

func TestSSampler_LodBiasPositive(t *testing.T) {
	var s SSampler
	s[2] |= 512 // +2.0 levels

	if got := s.LodBias(); got != 2.0 {
		t.Errorf("LodBias() = %v, want 2.0", got)
	}
}

func TestSSampler_BorderColor(t *testing.T) {
	var s SSampler
	s[3] |= 7
	s[3] |= uint32(BorderColorCustom) << 30

	if got := s.BorderColorPtr(); got != 7 {
		t.Errorf("BorderColorPtr() = %d, want 7", got)
	}
	if got := s.BorderColorType(); got != BorderColorCustom {
		t.Errorf("BorderColorType() = %v, want BorderColorCustom", got)
	}
}
