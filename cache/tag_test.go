package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/gogpu/gfxcache/addrrange"
	"github.com/gogpu/gfxcache/devmem"
	"github.com/gogpu/gfxcache/ident/track"
	"github.com/gogpu/gfxcache/memwatch"
	"github.com/gogpu/gfxcache/sched"
	"github.com/gogpu/gfxcache/shaderres"
	"github.com/gogpu/gfxcache/tiler"
	"github.com/gogpu/gfxcache/vkh"
)

// fakeBuilder satisfies Builder without touching a real device, handing
// out incrementing handle values so distinct calls are distinguishable
// in assertions.
type fakeBuilder struct {
	nextHandle uint64
}

func (b *fakeBuilder) handle() uint64 {
	b.nextHandle++
	return b.nextHandle
}

func (b *fakeBuilder) BuildBuffer(size uint64, usage vkh.BufferUsageFlags) (vkh.Buffer, *devmem.MemoryBlock, error) {
	return vkh.Buffer(b.handle()), &devmem.MemoryBlock{Size: size}, nil
}

func (b *fakeBuilder) BuildImage(format vkh.Format, extent vkh.Extent3D, mipLevels, arrayLayers uint32, usage vkh.ImageUsageFlags) (vkh.Image, *devmem.MemoryBlock, error) {
	return vkh.Image(b.handle()), &devmem.MemoryBlock{}, nil
}

func (b *fakeBuilder) BuildImageView(image vkh.Image, format vkh.Format, key ImageViewKey) (vkh.ImageView, error) {
	return vkh.ImageView(b.handle()), nil
}

func (b *fakeBuilder) BuildSampler(key SamplerKey) (vkh.Sampler, error) {
	return vkh.Sampler(b.handle()), nil
}

func (b *fakeBuilder) BuildShaderModule(spirv []byte) (vkh.ShaderModule, error) {
	return vkh.ShaderModule(b.handle()), nil
}

// fakeGpuTiler satisfies GpuTiler without recording any real commands,
// counting calls so tests can assert whether a detile/tile actually ran.
type fakeGpuTiler struct {
	detiles int
	tiles   int
}

func (g *fakeGpuTiler) Detile(cmd vkh.CommandBuffer, surface tiler.SurfaceInfo, tileMode tiler.TileMode, image vkh.Image, dst vkh.Buffer) error {
	g.detiles++
	return nil
}

func (g *fakeGpuTiler) Tile(cmd vkh.CommandBuffer, surface tiler.SurfaceInfo, tileMode tiler.TileMode, src vkh.Buffer, image vkh.Image) error {
	g.tiles++
	return nil
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	scheduler := sched.New(0, &vkh.Commands{}, 0)
	t.Cleanup(scheduler.Close)

	remote := memwatch.NewRemoteMemory()
	if err := remote.Reserve(0); err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	t.Cleanup(func() { remote.Release(0) })

	pages := memwatch.NewRegistry(1024)

	return NewCache(DefaultConfig(), scheduler, nil, &fakeGpuTiler{}, nil, remote, pages, &fakeBuilder{}, newTestPool(4))
}

// newTestImageWithStaging builds an Image entry backed by a real
// ImageBuffer/Buffer staging chain, so the read-access detile path
// (Tag.GetImage, Cache.Flush) has something non-nil to call into.
func newTestImageWithStaging(c *Cache, rng addrrange.Range, key shaderres.ImageKey, vkImage vkh.Image) *Image {
	bufId := c.bufferIds.Alloc()
	bufTracking := track.NewTrackingData(c.trackers.Buffers)
	buf := NewBuffer(bufId, bufTracking, rng, vkh.Buffer(uint64(vkImage)+1000), &devmem.MemoryBlock{Size: rng.Size()})

	ibId := c.imageBufferIds.Alloc()
	ibTracking := track.NewTrackingData(c.trackers.ImageBuffers)
	staging := NewImageBuffer(ibId, ibTracking, rng, buf, tiler.SurfaceInfo{Width: 1, Height: 1}, tiler.TileMode{})

	id := c.imageIds.Alloc()
	tracking := track.NewTrackingData(c.trackers.Images)
	return NewImage(id, tracking, rng, key, vkImage, tiler.SurfaceInfo{Width: 1, Height: 1}, tiler.TileMode{}, staging)
}

func TestTagGetBufferBuildsOnMiss(t *testing.T) {
	c := newTestCache(t)
	tag := c.CreateTag(0)

	buf, err := tag.GetBuffer(0x1000, 0x100, vkh.BufferUsageFlags(0), track.AccessRead)
	if err != nil {
		t.Fatalf("GetBuffer() error = %v", err)
	}
	if buf.Handle() == 0 {
		t.Fatal("GetBuffer() returned a buffer with a null handle")
	}

	if err := tag.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
}

func TestTagGetBufferReusesExistingEntry(t *testing.T) {
	c := newTestCache(t)

	tag1 := c.CreateTag(0)
	buf1, err := tag1.GetBuffer(0x2000, 0x100, vkh.BufferUsageFlags(0), track.AccessRead)
	if err != nil {
		t.Fatalf("GetBuffer() error = %v", err)
	}
	if err := tag1.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	tag2 := c.CreateTag(0)
	buf2, err := tag2.GetBuffer(0x2000, 0x100, vkh.BufferUsageFlags(0), track.AccessRead)
	if err != nil {
		t.Fatalf("GetBuffer() error = %v", err)
	}
	if buf1 != buf2 {
		t.Error("second GetBuffer() for the same range should reuse the cached entry")
	}
	tag2.Release()
}

func TestTagGetBufferGrowsPastExistingEntry(t *testing.T) {
	c := newTestCache(t)

	tag1 := c.CreateTag(0)
	small, err := tag1.GetBuffer(0x3000, 0x100, vkh.BufferUsageFlags(0), track.AccessRead)
	if err != nil {
		t.Fatalf("GetBuffer() error = %v", err)
	}
	tag1.Release()

	tag2 := c.CreateTag(0)
	big, err := tag2.GetBuffer(0x3000, 0x200, vkh.BufferUsageFlags(0), track.AccessRead)
	if err != nil {
		t.Fatalf("GetBuffer() error = %v", err)
	}
	if big == small {
		t.Error("a request wider than the cached entry must evict and rebuild, not reuse")
	}
	tag2.Release()
}

func TestTagGetSamplerDedupsByValue(t *testing.T) {
	c := newTestCache(t)
	key := SamplerKey{1, 2, 3, 4}

	tag1 := c.CreateTag(0)
	s1, err := tag1.GetSampler(key)
	if err != nil {
		t.Fatalf("GetSampler() error = %v", err)
	}
	tag1.Release()

	tag2 := c.CreateTag(0)
	s2, err := tag2.GetSampler(key)
	if err != nil {
		t.Fatalf("GetSampler() error = %v", err)
	}
	if s1 != s2 {
		t.Error("identical SamplerKey values should dedup to the same entry")
	}
	tag2.Release()
}

func TestTagGetShaderEvictsOnStaleHitTest(t *testing.T) {
	c := newTestCache(t)
	key := ShaderKey{Address: 0x9000, Stage: ShaderStageFragment}

	tag1 := c.CreateTag(0)
	builds := 0
	build := func() (*Shader, error) {
		builds++
		id := c.shaderIds.Alloc()
		tracking := track.NewTrackingData(c.trackers.Shaders)
		rng := addrrange.Range{Begin: key.Address, End: key.Address + 1}
		return NewShader(id, tracking, rng, key, ShaderInfo{Magic: uint64(builds)}, nil, 0), nil
	}

	s1, err := tag1.GetShader(key, ShaderInfo{Magic: 1}, build)
	if err != nil {
		t.Fatalf("GetShader() error = %v", err)
	}
	tag1.Release()

	tag2 := c.CreateTag(0)
	s2, err := tag2.GetShader(key, ShaderInfo{Magic: 2}, build)
	if err != nil {
		t.Fatalf("GetShader() error = %v", err)
	}
	if s1 == s2 {
		t.Error("a changed ShaderInfo should fail HitTest and rebuild, not reuse")
	}
	if builds != 2 {
		t.Errorf("build() called %d times, want 2", builds)
	}
	tag2.Release()
}

func TestTagGetImageBuildsOnMissAndEvictsOnCollision(t *testing.T) {
	c := newTestCache(t)
	key := shaderres.ImageKey{Address: 0x6000, DataFormat: 1, Width: 32, Height: 32}
	builds := 0
	build := func() (*Image, error) {
		builds++
		rng := addrrange.Range{Begin: key.Address, End: key.Address + 1}
		return newTestImageWithStaging(c, rng, key, vkh.Image(builds)), nil
	}

	tag1 := c.CreateTag(0)
	img1, err := tag1.GetImage(key, track.AccessRead, build)
	if err != nil {
		t.Fatalf("GetImage() error = %v", err)
	}
	tag1.Release()

	// A second lookup under the same key must reuse the cached entry
	// without calling build again.
	tag2 := c.CreateTag(0)
	img2, err := tag2.GetImage(key, track.AccessRead, build)
	if err != nil {
		t.Fatalf("GetImage() error = %v", err)
	}
	if img1 != img2 || builds != 1 {
		t.Errorf("second GetImage() with the same key should reuse the cached entry, builds = %d", builds)
	}
	tag2.Release()

	// A different key at the same address collides and must evict the
	// prior entry before building its replacement.
	collidingKey := shaderres.ImageKey{Address: key.Address, DataFormat: 2, Width: 32, Height: 32}
	collidingBuild := func() (*Image, error) {
		builds++
		rng := addrrange.Range{Begin: collidingKey.Address, End: collidingKey.Address + 1}
		return newTestImageWithStaging(c, rng, collidingKey, vkh.Image(builds)), nil
	}

	tag3 := c.CreateTag(0)
	img3, err := tag3.GetImage(collidingKey, track.AccessRead, collidingBuild)
	if err != nil {
		t.Fatalf("GetImage() error = %v", err)
	}
	if img3 == img1 || builds != 2 {
		t.Errorf("a format collision at the same address should evict and rebuild, builds = %d", builds)
	}
	tag3.Release()
}

func TestTagGetImageViewBuildsOnMiss(t *testing.T) {
	c := newTestCache(t)
	key := shaderres.ImageKey{Address: 0x7000, DataFormat: 1, Width: 16, Height: 16}
	id := c.imageIds.Alloc()
	tracking := track.NewTrackingData(c.trackers.Images)
	rng := addrrange.Range{Begin: key.Address, End: key.Address + 1}
	img := NewImage(id, tracking, rng, key, vkh.Image(1), tiler.SurfaceInfo{}, tiler.TileMode{}, nil)

	tag := c.CreateTag(0)
	viewKey := ImageViewKey{Format: 1}
	v, err := tag.GetImageView(viewKey, img)
	if err != nil {
		t.Fatalf("GetImageView() error = %v", err)
	}
	if v.Handle() == 0 {
		t.Fatal("GetImageView() returned a view with a null handle")
	}
	tag.Release()
}

func TestTagGetShaderCoalescesConcurrentMisses(t *testing.T) {
	c := newTestCache(t)
	key := ShaderKey{Address: 0xA000, Stage: ShaderStageVertex}

	var building sync.WaitGroup
	building.Add(1)
	releaseBuild := make(chan struct{})
	builds := 0
	var buildMu sync.Mutex
	build := func() (*Shader, error) {
		buildMu.Lock()
		builds++
		buildMu.Unlock()
		building.Done()
		<-releaseBuild
		id := c.shaderIds.Alloc()
		tracking := track.NewTrackingData(c.trackers.Shaders)
		rng := addrrange.Range{Begin: key.Address, End: key.Address + 1}
		return NewShader(id, tracking, rng, key, ShaderInfo{Magic: 1}, nil, 0), nil
	}

	results := make(chan *Shader, 2)
	go func() {
		tag := c.CreateTag(0)
		s, _ := tag.GetShader(key, ShaderInfo{Magic: 1}, build)
		results <- s
		tag.Release()
	}()
	building.Wait() // first call is inside build(), blocked on releaseBuild

	go func() {
		tag := c.CreateTag(0)
		s, _ := tag.GetShader(key, ShaderInfo{Magic: 1}, build)
		results <- s
		tag.Release()
	}()
	// Give the second goroutine time to reach singleflight.Do and join
	// the in-flight call rather than starting a second build.
	time.Sleep(20 * time.Millisecond)
	close(releaseBuild)

	s1, s2 := <-results, <-results
	if s1 != s2 {
		t.Error("concurrent misses on the same ShaderKey should share one build")
	}
	buildMu.Lock()
	defer buildMu.Unlock()
	if builds != 1 {
		t.Errorf("build() called %d times, want 1", builds)
	}
}

func TestCacheCheckHostInvalidationsSweepsAllVMs(t *testing.T) {
	c := newTestCache(t)
	c.pages.Bitmap(0).Mark(0x1000, 1)
	c.pages.Bitmap(1) // touched but clean

	dirty, err := c.CheckHostInvalidations(map[int][]addrrangeQuery{
		0: {{Address: 0x1000, Size: 1}},
		1: {{Address: 0x1000, Size: 1}},
	})
	if err != nil {
		t.Fatalf("CheckHostInvalidations() error = %v", err)
	}
	if len(dirty) != 1 || dirty[0] != 0 {
		t.Errorf("CheckHostInvalidations() = %v, want [0]", dirty)
	}
}

func TestTagDoubleReleaseErrors(t *testing.T) {
	c := newTestCache(t)
	tag := c.CreateTag(0)
	if err := tag.Release(); err != nil {
		t.Fatalf("first Release() error = %v", err)
	}
	if err := tag.Release(); err != ErrTagClosed {
		t.Errorf("second Release() error = %v, want ErrTagClosed", err)
	}
}

func TestTagOperationAfterReleaseErrors(t *testing.T) {
	c := newTestCache(t)
	tag := c.CreateTag(0)
	tag.Release()

	if _, err := tag.GetBuffer(0x1000, 0x100, vkh.BufferUsageFlags(0), track.AccessRead); err != ErrTagClosed {
		t.Errorf("GetBuffer() after Release() error = %v, want ErrTagClosed", err)
	}
}

// TestTagGetBufferPullsInAfterGuestWrite reproduces S2: a guest write
// lands on a page the cache has never been told is Dirty through
// MarkDirty (e.g. a write this process never recorded through its own
// tracking, only through the host page-invalidation bitmap). A later
// read acquisition must still pull fresh bytes in rather than trusting
// a stale host copy, because GetBuffer's read guard is no longer gated
// on SyncState.
func TestTagGetBufferPullsInAfterGuestWrite(t *testing.T) {
	c := newTestCache(t)

	tag1 := c.CreateTag(0)
	buf1, err := tag1.GetBuffer(0x10000, 0x100, vkh.BufferUsageFlags(0), track.AccessRead)
	if err != nil {
		t.Fatalf("GetBuffer() error = %v", err)
	}
	tag1.Release()

	// SyncTable never told Dirty: only the page bitmap observes this
	// write, exactly like a guest CPU store the cache's own MarkDirty
	// call chain never sees.
	c.pages.Bitmap(0).Mark(0x10000, 0x100)
	if c.sync.State(buf1) == SyncDirty {
		t.Fatal("test setup error: marking the page bitmap must not itself touch SyncTable")
	}

	tag2 := c.CreateTag(0)
	if _, err := tag2.GetBuffer(0x10000, 0x100, vkh.BufferUsageFlags(0), track.AccessRead); err != nil {
		t.Fatalf("GetBuffer() error = %v", err)
	}
	tag2.Release()

	if c.pages.Bitmap(0).Test(0x10000, 0x100) {
		t.Error("a read acquisition over a dirtied range should clear the invalidation bitmap via GetData's Handle call")
	}
}

// TestTagGetImagePullsInOnFirstRead reproduces S4: a freshly built Image
// entry has never had its tiled contents pulled into its staging
// buffer, so its very first read acquisition must detile, even though
// nothing has marked it Dirty through any write path.
func TestTagGetImagePullsInOnFirstRead(t *testing.T) {
	c := newTestCache(t)
	gt := c.gpuTiler.(*fakeGpuTiler)
	key := shaderres.ImageKey{Address: 0x11000, DataFormat: 1, Width: 8, Height: 8}
	rng := addrrange.Range{Begin: key.Address, End: key.Address + 1}
	build := func() (*Image, error) {
		return newTestImageWithStaging(c, rng, key, vkh.Image(1)), nil
	}

	tag := c.CreateTag(0)
	img, err := tag.GetImage(key, track.AccessRead, build)
	if err != nil {
		t.Fatalf("GetImage() error = %v", err)
	}
	tag.Release()

	if gt.detiles != 1 {
		t.Errorf("detiles = %d, want 1: a fresh Image's first read must pull its tiled contents in", gt.detiles)
	}
	if c.sync.State(img) != SyncClean {
		t.Errorf("State(img) = %v, want SyncClean after the pull-in completes", c.sync.State(img))
	}
}
