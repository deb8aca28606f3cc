package tiler

import (
	"testing"

	"github.com/gogpu/gfxcache/gnm"
)

func TestTileMode_ArrayModeRoundTrip(t *testing.T) {
	var tm TileMode
	tm = tm.WithArrayMode(ArrayMode2dTiledThin)
	tm = tm.WithPipeConfig(PipeConfigP8_32x32_8x16)
	tm = tm.WithTileSplit(TileSplit256B)

	if got := tm.ArrayMode(); got != ArrayMode2dTiledThin {
		t.Errorf("ArrayMode() = %v, want ArrayMode2dTiledThin", got)
	}
	if got := tm.PipeConfig(); got != PipeConfigP8_32x32_8x16 {
		t.Errorf("PipeConfig() = %v, want PipeConfigP8_32x32_8x16", got)
	}
	if got := tm.TileSplit(); got != TileSplit256B {
		t.Errorf("TileSplit() = %v, want TileSplit256B", got)
	}
}

func TestMicroTileThickness(t *testing.T) {
	cases := []struct {
		mode ArrayMode
		want uint32
	}{
		{ArrayModeLinearGeneral, 1},
		{ArrayMode1dTiledThin, 1},
		{ArrayMode2dTiledThick, 4},
		{ArrayMode3dTiledXThick, 8},
	}
	for _, c := range cases {
		if got := MicroTileThickness(c.mode); got != c.want {
			t.Errorf("MicroTileThickness(%v) = %d, want %d", c.mode, got, c.want)
		}
	}
}

func TestIsMacroTiled(t *testing.T) {
	if IsMacroTiled(ArrayModeLinearGeneral) {
		t.Error("LinearGeneral should not be macro tiled")
	}
	if !IsMacroTiled(ArrayMode2dTiledThin) {
		t.Error("2dTiledThin should be macro tiled")
	}
}

func TestLinearTiler_ComputeSurfaceInfo(t *testing.T) {
	lt := LinearTiler{}
	tm := TileMode{}.WithArrayMode(ArrayModeLinearGeneral)

	info, err := lt.ComputeSurfaceInfo(tm, SurfaceParams{
		DataFormat: gnm.DataFormat8_8_8_8,
		Width:      64,
		Height:     64,
		Depth:      1,
		MipCount:   1,
	})
	if err != nil {
		t.Fatalf("ComputeSurfaceInfo() error = %v", err)
	}

	want := uint64(64 * 64 * 4)
	if info.TotalSize != want {
		t.Errorf("TotalSize = %d, want %d", info.TotalSize, want)
	}
	sub := info.Subresource(0)
	if sub.LinearSize != want {
		t.Errorf("Subresource(0).LinearSize = %d, want %d", sub.LinearSize, want)
	}
}

func TestLinearTiler_MipChainShrinks(t *testing.T) {
	lt := LinearTiler{}
	tm := TileMode{}.WithArrayMode(ArrayModeLinearAligned)

	info, err := lt.ComputeSurfaceInfo(tm, SurfaceParams{
		DataFormat: gnm.DataFormat8,
		Width:      8,
		Height:     8,
		Depth:      1,
		MipCount:   4,
	})
	if err != nil {
		t.Fatalf("ComputeSurfaceInfo() error = %v", err)
	}

	if info.Subresource(0).DataWidth != 8 {
		t.Errorf("mip 0 width = %d, want 8", info.Subresource(0).DataWidth)
	}
	if info.Subresource(3).DataWidth != 1 {
		t.Errorf("mip 3 width = %d, want 1", info.Subresource(3).DataWidth)
	}
	if info.Subresource(1).Offset == 0 {
		t.Error("mip 1 offset should be nonzero after mip 0's data")
	}
}

func TestLinearTiler_RejectsTiledMode(t *testing.T) {
	lt := LinearTiler{}
	tm := TileMode{}.WithArrayMode(ArrayMode2dTiledThin)

	_, err := lt.ComputeSurfaceInfo(tm, SurfaceParams{DataFormat: gnm.DataFormat8_8_8_8, Width: 16, Height: 16, MipCount: 1})
	if err == nil {
		t.Error("expected error for tiled array mode, got nil")
	}
}

func TestLinearTiler_ComputeSurfaceInfoFromTBuffer(t *testing.T) {
	var tb gnm.TBuffer
	tb[0] |= uint64(gnm.DataFormat8_8_8_8) << 52
	tb[1] |= uint64(31) << 0  // width - 1 = 31 -> 32
	tb[1] |= uint64(31) << 14 // height - 1 = 31 -> 32
	tb[1] |= uint64(gnm.TextureTypeDim2D) << 60

	lt := LinearTiler{}
	tm := TileMode{}.WithArrayMode(ArrayModeLinearGeneral)

	info, err := lt.ComputeSurfaceInfoFromTBuffer(tb, tm)
	if err != nil {
		t.Fatalf("ComputeSurfaceInfoFromTBuffer() error = %v", err)
	}
	if info.Width != 32 || info.Height != 32 {
		t.Errorf("dimensions = %dx%d, want 32x32", info.Width, info.Height)
	}
}
