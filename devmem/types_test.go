package devmem

import (
	"testing"

	"github.com/gogpu/gfxcache/vkh"
)

func testProps() DeviceMemoryProperties {
	return DeviceMemoryProperties{
		MemoryTypes: []MemoryType{
			{PropertyFlags: vkh.MemoryPropertyFlags(vkh.MemoryPropertyDeviceLocalBit), HeapIndex: 0},
			{PropertyFlags: vkh.MemoryPropertyFlags(vkh.MemoryPropertyHostVisibleBit | vkh.MemoryPropertyHostCoherentBit), HeapIndex: 1},
			{PropertyFlags: vkh.MemoryPropertyFlags(vkh.MemoryPropertyHostVisibleBit | vkh.MemoryPropertyHostCachedBit), HeapIndex: 1},
		},
		MemoryHeaps: []MemoryHeap{
			{Size: 4 << 30, Flags: 0}, // 4GB device local
			{Size: 8 << 30, Flags: 0}, // 8GB host visible
		},
	}
}

func TestNewMemoryTypeSelector(t *testing.T) {
	selector := NewMemoryTypeSelector(testProps())
	if selector == nil {
		t.Fatal("NewMemoryTypeSelector returned nil")
	}
	if selector.validTypes != 0b111 {
		t.Errorf("validTypes = %b, want %b", selector.validTypes, 0b111)
	}
}

func TestSelectMemoryType(t *testing.T) {
	selector := NewMemoryTypeSelector(testProps())

	tests := []struct {
		name      string
		req       AllocationRequest
		wantIndex uint32
		wantFound bool
	}{
		{
			name:      "fast device access prefers device local",
			req:       AllocationRequest{Size: 1024, Usage: UsageFastDeviceAccess, MemoryTypeBits: 0b111},
			wantIndex: 0,
			wantFound: true,
		},
		{
			name:      "upload prefers host visible + coherent",
			req:       AllocationRequest{Size: 1024, Usage: UsageUpload, MemoryTypeBits: 0b111},
			wantIndex: 1,
			wantFound: true,
		},
		{
			name:      "download prefers host visible + cached",
			req:       AllocationRequest{Size: 1024, Usage: UsageDownload, MemoryTypeBits: 0b111},
			wantIndex: 2,
			wantFound: true,
		},
		{
			name:      "no matching type returns false",
			req:       AllocationRequest{Size: 1024, Usage: UsageHostAccess, MemoryTypeBits: 0b001},
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index, found := selector.SelectMemoryType(tt.req)
			if found != tt.wantFound {
				t.Errorf("SelectMemoryType() found = %v, want %v", found, tt.wantFound)
			}
			if found && index != tt.wantIndex {
				t.Errorf("SelectMemoryType() index = %d, want %d", index, tt.wantIndex)
			}
		})
	}
}

func TestMemoryTypeSelectorHelpers(t *testing.T) {
	selector := NewMemoryTypeSelector(testProps())

	if !selector.IsDeviceLocal(0) || selector.IsDeviceLocal(1) {
		t.Error("IsDeviceLocal disagrees with the device-local memory type")
	}
	if selector.IsHostVisible(0) || !selector.IsHostVisible(1) {
		t.Error("IsHostVisible disagrees with the host-visible memory type")
	}
	if size := selector.GetHeapSize(0); size != 4<<30 {
		t.Errorf("GetHeapSize(0) = %d, want %d", size, 4<<30)
	}
	if _, ok := selector.GetMemoryType(99); ok {
		t.Error("GetMemoryType(99) should return false")
	}
}

func TestMemoryBlockHelpers(t *testing.T) {
	block := &MemoryBlock{Memory: 1234, Size: 4096, memoryTypeIndex: 2, dedicated: true, purpose: PurposeBuffer}

	if !block.IsDedicated() {
		t.Error("IsDedicated() should return true")
	}
	if block.MemoryTypeIndex() != 2 {
		t.Errorf("MemoryTypeIndex() = %d, want 2", block.MemoryTypeIndex())
	}
	if block.Purpose() != PurposeBuffer {
		t.Errorf("Purpose() = %v, want PurposeBuffer", block.Purpose())
	}

	pooledBlock := &MemoryBlock{dedicated: false}
	if pooledBlock.IsDedicated() {
		t.Error("IsDedicated() should return false for pooled block")
	}
}
