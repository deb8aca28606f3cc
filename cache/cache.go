package cache

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/gogpu/gfxcache/ident"
	"github.com/gogpu/gfxcache/ident/track"
	"github.com/gogpu/gfxcache/memwatch"
	"github.com/gogpu/gfxcache/sched"
	"github.com/gogpu/gfxcache/shaderir"
	"github.com/gogpu/gfxcache/tiler"
)

// Cache owns every table, identity manager, and piece of ambient state a
// Tag's acquisition and release protocol depends on: the per-kind
// address-range tables (Tables), the coherency state machine
// (SyncTable), the descriptor-set pool, the tag id allocator, and the
// external collaborators (scheduler, tiler, remote memory, shader
// frontend, host-API resource builder) consumed through their narrow
// interfaces (§6). Entries are shared between a table and every Tag that
// currently has them acquired (§3); the Cache never copies an entry's
// contents to hand it to a Tag.
type Cache struct {
	config Config

	tables *Tables
	sync   *SyncTable
	descs  *DescriptorPool
	tagIds *tagIdAllocator

	bufferIds      *ident.BufferIdentityManager
	imageBufferIds *ident.ImageBufferIdentityManager
	imageIds       *ident.ImageIdentityManager
	imageViewIds   *ident.ImageViewIdentityManager
	indexBufferIds *ident.IndexBufferIdentityManager
	shaderIds      *ident.ShaderIdentityManager
	samplerIds     *ident.SamplerIdentityManager

	trackers *track.TrackerIndexAllocators
	entries  *track.EntryTracker

	scheduler *sched.Scheduler
	tiler     tiler.Tiler
	gpuTiler  GpuTiler
	frontend  shaderir.Frontend
	remote    *memwatch.RemoteMemory
	pages     *memwatch.Registry
	builder   Builder

	// compiles coalesces concurrent GetShader misses on the same
	// ShaderKey into one compile: two tags racing to draw with the same
	// never-before-seen shader would otherwise both call the (expensive)
	// build closure and both insert, with the loser's result discarded.
	compiles singleflight.Group
}

// NewCache creates a Cache wired to its external collaborators. cfg
// controls GPU-cache trust (its PageSize and DescriptorSetPoolSize fields
// are not read; the descriptor pool arrives already built as descs);
// every other argument is an
// interface boundary the cache never constructs a default for (§6:
// scheduler, tiling, the shader frontend, and host-API resource creation
// are all owned by the caller).
func NewCache(cfg Config, scheduler *sched.Scheduler, t tiler.Tiler, gt GpuTiler, frontend shaderir.Frontend, remote *memwatch.RemoteMemory, pages *memwatch.Registry, builder Builder, descs *DescriptorPool) *Cache {
	return &Cache{
		config:         cfg,
		tables:         NewTables(),
		sync:           NewSyncTable(),
		descs:          descs,
		tagIds:         newTagIdAllocator(),
		bufferIds:      ident.NewBufferIdentityManager(),
		imageBufferIds: ident.NewImageBufferIdentityManager(),
		imageIds:       ident.NewImageIdentityManager(),
		imageViewIds:   ident.NewImageViewIdentityManager(),
		indexBufferIds: ident.NewIndexBufferIdentityManager(),
		shaderIds:      ident.NewShaderIdentityManager(),
		samplerIds:     ident.NewSamplerIdentityManager(),
		trackers:       track.NewTrackerIndexAllocators(),
		entries:        track.NewEntryTracker(),
		scheduler:      scheduler,
		tiler:          t,
		gpuTiler:       gt,
		frontend:       frontend,
		remote:         remote,
		pages:          pages,
		builder:        builder,
	}
}

// CreateTag starts a new tag's pass over the cache: vmId selects which
// guest address space its resources resolve against.
func (c *Cache) CreateTag(vmId int) *Tag {
	readId, writeId := c.tagIds.Alloc()
	return &Tag{
		cache:   c,
		vmId:    vmId,
		readId:  readId,
		writeId: writeId,
		scope:   track.NewAccessScope(),
	}
}

// CreateGraphicsTag starts a tag for a draw call.
func (c *Cache) CreateGraphicsTag(vmId int) *GraphicsTag {
	return &GraphicsTag{Tag: c.CreateTag(vmId)}
}

// CreateComputeTag starts a tag for a dispatch call.
func (c *Cache) CreateComputeTag(vmId int) *ComputeTag {
	return &ComputeTag{Tag: c.CreateTag(vmId)}
}

// Config returns the cache's configuration.
func (c *Cache) Config() Config { return c.config }

// CheckHostInvalidations reports which guest address spaces have any
// page the CPU has touched since this cache last observed it, scanning
// every address space's bitmap concurrently rather than one at a time —
// a frame that resolves resources against several guest VMs would
// otherwise serialize a full bitmap walk per VM before the first
// GetBuffer/GetImage of the next frame could even start.
func (c *Cache) CheckHostInvalidations(rangesByVM map[int][]addrrangeQuery) ([]int, error) {
	var mu sync.Mutex
	var dirty []int

	err := c.pages.Sweep(func(vmId int, pb *memwatch.PageBitmap) error {
		for _, q := range rangesByVM[vmId] {
			if pb.Test(q.Address, q.Size) {
				mu.Lock()
				dirty = append(dirty, vmId)
				mu.Unlock()
				return nil
			}
		}
		return nil
	})
	return dirty, err
}

// addrrangeQuery names one range to test for host invalidation within a
// CheckHostInvalidations call.
type addrrangeQuery struct {
	Address uint64
	Size    uint64
}
