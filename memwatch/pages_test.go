package memwatch

import (
	"errors"
	"sync"
	"testing"
)

func TestPageBitmap_MarkThenTest(t *testing.T) {
	pb := NewPageBitmap(16)

	if pb.Test(0, PageSize) {
		t.Error("Test() before Mark() should be false")
	}

	pb.Mark(0, PageSize)
	if !pb.Test(0, PageSize) {
		t.Error("Test() after Mark() should be true")
	}
}

func TestPageBitmap_HandleClears(t *testing.T) {
	pb := NewPageBitmap(16)
	pb.Mark(0, PageSize)

	if !pb.Handle(0, PageSize) {
		t.Error("Handle() should report invalidation was present")
	}
	if pb.Test(0, PageSize) {
		t.Error("Test() after Handle() should be false")
	}
	if pb.Handle(0, PageSize) {
		t.Error("second Handle() should report no invalidation")
	}
}

func TestPageBitmap_SpansMultiplePages(t *testing.T) {
	pb := NewPageBitmap(16)
	pb.Mark(PageSize*2, 1) // touches only page index 2

	if pb.Test(0, PageSize) {
		t.Error("page 0 should not be marked")
	}
	if !pb.Test(PageSize*2, 1) {
		t.Error("page 2 should be marked")
	}
}

func TestRegistry_SweepVisitsEveryVM(t *testing.T) {
	reg := NewRegistry(16)
	reg.Bitmap(0).Mark(0, PageSize)
	reg.Bitmap(1)
	reg.Bitmap(2).Mark(PageSize, PageSize)

	visited := make(map[int]bool)
	var mu sync.Mutex
	err := reg.Sweep(func(vmId int, pb *PageBitmap) error {
		mu.Lock()
		visited[vmId] = true
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	for _, vmId := range []int{0, 1, 2} {
		if !visited[vmId] {
			t.Errorf("Sweep() did not visit vmId %d", vmId)
		}
	}
}

func TestRegistry_SweepPropagatesError(t *testing.T) {
	reg := NewRegistry(16)
	reg.Bitmap(0)
	wantErr := errors.New("boom")

	if err := reg.Sweep(func(vmId int, pb *PageBitmap) error {
		return wantErr
	}); err != wantErr {
		t.Errorf("Sweep() error = %v, want %v", err, wantErr)
	}
}

func TestRegistry_PerVMIsolation(t *testing.T) {
	reg := NewRegistry(16)
	reg.Bitmap(0).Mark(0, PageSize)

	if reg.Bitmap(1).Test(0, PageSize) {
		t.Error("marking vm 0 should not affect vm 1")
	}
	if !reg.Bitmap(0).Test(0, PageSize) {
		t.Error("vm 0's mark should persist across Bitmap() calls")
	}
}
