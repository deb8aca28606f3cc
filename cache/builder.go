package cache

import (
	"fmt"

	"github.com/gogpu/gfxcache/devmem"
	"github.com/gogpu/gfxcache/gnm"
	"github.com/gogpu/gfxcache/tiler"
	"github.com/gogpu/gfxcache/vkh"
)

// Builder constructs the host-API resource backing a cache entry on a
// miss. The cache's own bookkeeping (tables, sync state, tracker
// indices) never depends on how a vkh.Buffer/Image/... is actually
// created, so tests can substitute a fake Builder that never touches a
// real device.
type Builder interface {
	BuildBuffer(size uint64, usage vkh.BufferUsageFlags) (vkh.Buffer, *devmem.MemoryBlock, error)
	BuildImage(format vkh.Format, extent vkh.Extent3D, mipLevels, arrayLayers uint32, usage vkh.ImageUsageFlags) (vkh.Image, *devmem.MemoryBlock, error)
	BuildImageView(image vkh.Image, format vkh.Format, key ImageViewKey) (vkh.ImageView, error)
	BuildSampler(key SamplerKey) (vkh.Sampler, error)
	BuildShaderModule(spirv []byte) (vkh.ShaderModule, error)
}

// VulkanBuilder is the Builder implementation used outside tests: it
// allocates device memory via devmem.GpuAllocator and issues the create
// calls through vkh.Commands.
type VulkanBuilder struct {
	Device vkh.Device
	Cmds   *vkh.Commands
	Alloc  *devmem.GpuAllocator
}

func (b *VulkanBuilder) BuildBuffer(size uint64, usage vkh.BufferUsageFlags) (vkh.Buffer, *devmem.MemoryBlock, error) {
	buf, res := b.Cmds.CreateBuffer(&vkh.BufferCreateInfo{
		SType: vkh.StructureTypeBufferCreateInfo,
		Size:  vkh.DeviceSize(size),
		Usage: usage,
	})
	if !res.Ok() {
		return 0, nil, fmt.Errorf("%w: vkCreateBuffer returned %d", ErrHostAPIFailure, res)
	}

	block, err := b.Alloc.Alloc(devmem.AllocationRequest{Size: size, Purpose: devmem.PurposeBuffer})
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrHostAPIFailure, err)
	}

	if res := b.Cmds.BindBufferMemory(buf, block.Memory, vkh.DeviceSize(block.Offset)); !res.Ok() {
		return 0, nil, fmt.Errorf("%w: vkBindBufferMemory returned %d", ErrHostAPIFailure, res)
	}

	return buf, block, nil
}

func (b *VulkanBuilder) BuildImage(format vkh.Format, extent vkh.Extent3D, mipLevels, arrayLayers uint32, usage vkh.ImageUsageFlags) (vkh.Image, *devmem.MemoryBlock, error) {
	img, res := b.Cmds.CreateImage(&vkh.ImageCreateInfo{
		SType:         vkh.StructureTypeImageCreateInfo,
		Format:        format,
		Extent:        extent,
		MipLevels:     mipLevels,
		ArrayLayers:   arrayLayers,
		Samples:       1,
		Usage:         usage,
		InitialLayout: vkh.ImageLayoutGeneral,
	})
	if !res.Ok() {
		return 0, nil, fmt.Errorf("%w: vkCreateImage returned %d", ErrHostAPIFailure, res)
	}

	size := uint64(extent.Width) * uint64(extent.Height) * uint64(extent.Depth) * 4
	block, err := b.Alloc.Alloc(devmem.AllocationRequest{Size: size, Purpose: devmem.PurposeTiledImage})
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrHostAPIFailure, err)
	}

	if res := b.Cmds.BindImageMemory(img, block.Memory, vkh.DeviceSize(block.Offset)); !res.Ok() {
		return 0, nil, fmt.Errorf("%w: vkBindImageMemory returned %d", ErrHostAPIFailure, res)
	}

	return img, block, nil
}

func (b *VulkanBuilder) BuildImageView(image vkh.Image, format vkh.Format, key ImageViewKey) (vkh.ImageView, error) {
	view, res := b.Cmds.CreateImageView(nil)
	if !res.Ok() {
		return 0, fmt.Errorf("%w: vkCreateImageView returned %d", ErrHostAPIFailure, res)
	}
	return view, nil
}

func (b *VulkanBuilder) BuildSampler(key SamplerKey) (vkh.Sampler, error) {
	sampler, res := b.Cmds.CreateSampler(nil)
	if !res.Ok() {
		return 0, fmt.Errorf("%w: vkCreateSampler returned %d", ErrHostAPIFailure, res)
	}
	return sampler, nil
}

func (b *VulkanBuilder) BuildShaderModule(spirv []byte) (vkh.ShaderModule, error) {
	mod, res := b.Cmds.CreateShaderModule(nil)
	if !res.Ok() {
		return 0, fmt.Errorf("%w: vkCreateShaderModule returned %d", ErrHostAPIFailure, res)
	}
	return mod, nil
}

// surfaceExtent converts a tiler.SurfaceInfo into the vkh extent its
// backing Image is created with.
func surfaceExtent(s tiler.SurfaceInfo) vkh.Extent3D {
	depth := s.Depth
	if depth == 0 {
		depth = 1
	}
	return vkh.Extent3D{Width: s.Width, Height: s.Height, Depth: depth}
}

// formatFromDataFormat returns the vkh.Format used for a GCN DataFormat.
// It returns vkh.FormatR32Uint for every input; there is no per-format
// table. The cache only uses the result to back its own staging and
// storage-buffer views; textures sampled by the pipeline keep their
// guest format information in the TBuffer descriptor itself, not in the
// host image's VkFormat.
func formatFromDataFormat(f gnm.DataFormat) vkh.Format {
	return vkh.FormatR32Uint
}
