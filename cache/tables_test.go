package cache

import (
	"testing"

	"github.com/gogpu/gfxcache/addrrange"
	"github.com/gogpu/gfxcache/ident"
	"github.com/gogpu/gfxcache/shaderres"
	"github.com/gogpu/gfxcache/tiler"
)

func TestTablesBufferInsertLookupRemove(t *testing.T) {
	tbl := NewTables()
	rng := addrrange.Range{Begin: 0x1000, End: 0x2000}
	buf := NewBuffer(ident.BufferID{}, nil, rng, 0, nil)

	tbl.InsertBuffer(buf)

	got, ok := tbl.LookupBuffer(0x1500)
	if !ok || got != buf {
		t.Fatalf("LookupBuffer(0x1500) = (%v,%v), want (buf,true)", got, ok)
	}

	if _, ok := tbl.LookupBuffer(0x3000); ok {
		t.Error("LookupBuffer outside the range should miss")
	}

	tbl.RemoveBuffer(buf)
	if _, ok := tbl.LookupBuffer(0x1500); ok {
		t.Error("LookupBuffer after RemoveBuffer should miss")
	}
}

func TestTablesImageByKeyAndCollision(t *testing.T) {
	tbl := NewTables()
	rng := addrrange.Range{Begin: 0x4000, End: 0x5000}
	key := shaderres.ImageKey{Address: 0x4000, DataFormat: 1, Width: 64, Height: 64}
	img := NewImage(ident.ImageID{}, nil, rng, key, 0, tiler.SurfaceInfo{}, tiler.TileMode{}, nil)

	tbl.InsertImage(img)

	got, ok := tbl.LookupImageByKey(key)
	if !ok || got != img {
		t.Fatalf("LookupImageByKey() = (%v,%v), want (img,true)", got, ok)
	}

	otherKey := shaderres.ImageKey{Address: 0x4000, DataFormat: 2, Width: 64, Height: 64}
	if _, ok := tbl.LookupImageByKey(otherKey); ok {
		t.Error("LookupImageByKey() with a different format should miss")
	}

	collide, ok := tbl.LookupImageAtAddress(0x4500)
	if !ok || collide != img {
		t.Fatalf("LookupImageAtAddress() = (%v,%v), want (img,true)", collide, ok)
	}

	tbl.RemoveImage(img)
	if _, ok := tbl.LookupImageByKey(key); ok {
		t.Error("LookupImageByKey() after RemoveImage should miss")
	}
}

func TestTablesSamplerDedupByValue(t *testing.T) {
	tbl := NewTables()
	key := SamplerKey{1, 2, 3, 4}
	s := NewSampler(ident.SamplerID{}, nil, key, 0)

	tbl.InsertSampler(s)
	got, ok := tbl.LookupSampler(key)
	if !ok || got != s {
		t.Fatalf("LookupSampler() = (%v,%v), want (s,true)", got, ok)
	}

	tbl.RemoveSampler(s)
	if _, ok := tbl.LookupSampler(key); ok {
		t.Error("LookupSampler() after RemoveSampler should miss")
	}
}

func TestTablesShaderKeyedByValue(t *testing.T) {
	tbl := NewTables()
	key := ShaderKey{Address: 0x8000, Stage: ShaderStageFragment, Environment: 7}
	sh := NewShader(ident.ShaderID{}, nil, addrrange.Range{}, key, ShaderInfo{Magic: 1}, nil, 0)

	tbl.InsertShader(sh)
	got, ok := tbl.LookupShader(key)
	if !ok || got != sh {
		t.Fatalf("LookupShader() = (%v,%v), want (sh,true)", got, ok)
	}

	tbl.RemoveShader(sh)
	if _, ok := tbl.LookupShader(key); ok {
		t.Error("LookupShader() after RemoveShader should miss")
	}
}
