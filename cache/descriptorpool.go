package cache

import (
	"fmt"
	"sync"

	"github.com/gogpu/gfxcache/vkh"
)

// descriptorSetLayout is the fixed binding layout every descriptor set
// this pool hands out follows, grounded on shaderres' resource-slot
// model (§4.4): one storage-buffer binding carrying the buffer memory
// table, one binding carrying the image memory table, one sampled-image
// binding per image dimension (1D/2D/3D), and a single sampler binding
// and a single storage-image binding. The layout never varies between
// draws — only which resources are currently written into a set's
// bindings changes. These constants only number the bindings; the
// vkh.DescriptorSetLayout itself is built by the caller and passed to
// NewDescriptorPool, which shares it across every set in the pool.
const (
	bindingMemoryTable = iota
	bindingImageMemoryTable
	bindingSampledImage1D
	bindingSampledImage2D
	bindingSampledImage3D
	bindingSampler
	bindingStorageImage
	descriptorSetBindingCount
)

// DescriptorPool hands out descriptor sets from a fixed-size pool,
// round-robin, tying each set's lifetime to the Tag that acquired it
// (§4.7, §5: "round-robin descriptor-set ... pool slots released at Tag
// release"). A Tag that acquires a set while every slot is in use blocks
// until Release frees one.
type DescriptorPool struct {
	mu        sync.Mutex
	cond      *sync.Cond
	layout    vkh.DescriptorSetLayout
	sets      []vkh.DescriptorSet
	inUse     []bool
	nextSlot  int
}

// NewDescriptorPool creates a pool of len(sets) descriptor sets sharing
// layout, all initially free.
func NewDescriptorPool(layout vkh.DescriptorSetLayout, sets []vkh.DescriptorSet) *DescriptorPool {
	p := &DescriptorPool{
		layout: layout,
		sets:   sets,
		inUse:  make([]bool, len(sets)),
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Acquire blocks until a descriptor set is free, marks it in-use, and
// returns its pool index and handle.
func (p *DescriptorPool) Acquire() (int, vkh.DescriptorSet) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for {
		for i := 0; i < len(p.sets); i++ {
			slot := (p.nextSlot + i) % len(p.sets)
			if !p.inUse[slot] {
				p.inUse[slot] = true
				p.nextSlot = (slot + 1) % len(p.sets)
				return slot, p.sets[slot]
			}
		}
		p.cond.Wait()
	}
}

// Release returns the descriptor set at index to the pool and wakes any
// blocked Acquire.
func (p *DescriptorPool) Release(index int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index < 0 || index >= len(p.sets) {
		return fmt.Errorf("cache: descriptor pool: index %d out of range", index)
	}
	p.inUse[index] = false
	p.cond.Broadcast()
	return nil
}

// Layout returns the descriptor set layout every set in the pool shares.
func (p *DescriptorPool) Layout() vkh.DescriptorSetLayout { return p.layout }
