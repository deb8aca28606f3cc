package shaderres

import (
	"errors"
	"testing"

	"github.com/gogpu/gfxcache/gnm"
	"github.com/gogpu/gfxcache/ident/track"
	"github.com/gogpu/gfxcache/shaderir"
)

type stubAllocator struct {
	next uint64
}

func (a *stubAllocator) Allocate(address, size uint64) (uint64, uint32, error) {
	a.next += size
	return a.next, 0, nil
}

type failingAllocator struct{}

func (failingAllocator) Allocate(address, size uint64) (uint64, uint32, error) {
	return 0, 0, errors.New("out of device memory")
}

func TestBuildMemoryTable_OneSlotPerMergedInterval(t *testing.T) {
	res := Resources{
		Buffers: []BufferRes{
			{ResourceSlot: 0, Access: track.AccessRead, Words: rawBufferWords(0x1000, 64)},
			{ResourceSlot: 1, Access: track.AccessRead, Words: rawBufferWords(0x2000, 64)},
		},
	}
	result, err := LoadResources(res, shaderir.Env{})
	if err != nil {
		t.Fatalf("LoadResources() error = %v", err)
	}

	table, err := BuildMemoryTable(result, &stubAllocator{})
	if err != nil {
		t.Fatalf("BuildMemoryTable() error = %v", err)
	}
	if len(table) != 2 {
		t.Fatalf("table has %d slots, want 2", len(table))
	}
	if result.SlotResources[0] != 0 {
		t.Errorf("SlotResources[0] = %d, want 0", result.SlotResources[0])
	}
	if result.SlotResources[1] != 1 {
		t.Errorf("SlotResources[1] = %d, want 1", result.SlotResources[1])
	}
}

func TestBuildMemoryTable_AdjacentBuffersMergeIntoOneSlot(t *testing.T) {
	res := Resources{
		Buffers: []BufferRes{
			{ResourceSlot: 0, Access: track.AccessRead, Words: rawBufferWords(0x1000, 64)},
			{ResourceSlot: 1, Access: track.AccessRead, Words: rawBufferWords(0x1040, 64)},
		},
	}
	result, err := LoadResources(res, shaderir.Env{})
	if err != nil {
		t.Fatalf("LoadResources() error = %v", err)
	}

	table, err := BuildMemoryTable(result, &stubAllocator{})
	if err != nil {
		t.Fatalf("BuildMemoryTable() error = %v", err)
	}
	if len(table) != 1 {
		t.Fatalf("table has %d slots, want 1 (adjacent reads should merge)", len(table))
	}
	if result.SlotResources[0] != result.SlotResources[1] {
		t.Error("expected both resources to resolve to the same merged slot")
	}
}

func TestBuildMemoryTable_PropagatesAllocatorError(t *testing.T) {
	res := Resources{
		Buffers: []BufferRes{
			{ResourceSlot: 0, Access: track.AccessRead, Words: rawBufferWords(0x1000, 64)},
		},
	}
	result, err := LoadResources(res, shaderir.Env{})
	if err != nil {
		t.Fatalf("LoadResources() error = %v", err)
	}
	if _, err := BuildMemoryTable(result, failingAllocator{}); err == nil {
		t.Error("expected error from failing allocator")
	}
}

func TestBuildImageMemoryTable_ResolvesSlotAfterExtend(t *testing.T) {
	res := Resources{
		Textures: []TextureRes{
			{ResourceSlot: 0, Access: track.AccessRead, Words: textureWords(0x4000, gnm.TextureTypeDim2D)},
		},
	}
	result, err := LoadResources(res, shaderir.Env{})
	if err != nil {
		t.Fatalf("LoadResources() error = %v", err)
	}

	key := ImageKey{Address: 0x4000, DataFormat: 0, Width: 1, Height: 1}
	if err := result.ExtendImageInterval(key, track.AccessRead, 4096); err != nil {
		t.Fatalf("ExtendImageInterval() error = %v", err)
	}

	table, err := BuildImageMemoryTable(result, &stubAllocator{})
	if err != nil {
		t.Fatalf("BuildImageMemoryTable() error = %v", err)
	}
	if len(table) != 1 {
		t.Fatalf("table has %d slots, want 1", len(table))
	}
	if result.SlotResources[0] != 0 {
		t.Errorf("SlotResources[0] = %d, want 0", result.SlotResources[0])
	}
	if table[0].Size != 4096 {
		t.Errorf("slot size = %d, want 4096", table[0].Size)
	}
}
