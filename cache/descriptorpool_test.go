package cache

import (
	"testing"
	"time"

	"github.com/gogpu/gfxcache/vkh"
)

func newTestPool(size int) *DescriptorPool {
	sets := make([]vkh.DescriptorSet, size)
	for i := range sets {
		sets[i] = vkh.DescriptorSet(i + 1)
	}
	return NewDescriptorPool(vkh.DescriptorSetLayout(1), sets)
}

func TestDescriptorPoolAcquireReleaseRoundRobin(t *testing.T) {
	p := newTestPool(2)

	i0, s0 := p.Acquire()
	i1, s1 := p.Acquire()
	if i0 == i1 || s0 == s1 {
		t.Fatalf("expected two distinct slots, got %d/%d", i0, i1)
	}

	if err := p.Release(i0); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	i2, _ := p.Acquire()
	if i2 != i0 {
		t.Errorf("Acquire() after release = %d, want reused slot %d", i2, i0)
	}
}

func TestDescriptorPoolAcquireBlocksWhenExhausted(t *testing.T) {
	p := newTestPool(1)
	idx, _ := p.Acquire()

	done := make(chan struct{})
	go func() {
		p.Acquire()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Acquire() returned before any slot was released")
	case <-time.After(20 * time.Millisecond):
	}

	if err := p.Release(idx); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Acquire() never unblocked after Release()")
	}
}

func TestDescriptorPoolReleaseOutOfRange(t *testing.T) {
	p := newTestPool(1)
	if err := p.Release(5); err == nil {
		t.Fatal("Release() with out-of-range index should error")
	}
}
