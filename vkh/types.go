// Package vkh provides the narrow slice of Vulkan-shaped host-API glue the
// cache needs: opaque handles for buffers/images/views/samplers/shader
// modules, and the copy/barrier/descriptor commands the coherency engine
// and descriptor-set pool issue. It does not attempt to be a complete
// Vulkan binding — device/instance setup, swapchains, and render passes
// belong to the external scheduler/presentation layer this package is
// handed a ready-made Device by.
package vkh

// Handle is the common representation for all opaque Vulkan-style handles:
// a 64-bit non-dispatchable or dispatchable handle value.
type Handle uint64

// IsNull reports whether the handle is VK_NULL_HANDLE.
func (h Handle) IsNull() bool { return h == 0 }

// Instance, Device, and Queue are dispatchable handles obtained from the
// scheduler/presentation layer; this package never creates them itself.
type (
	Instance       Handle
	PhysicalDevice Handle
	Device         Handle
	Queue          Handle
	CommandBuffer  Handle
)

// Resource handles managed directly by this package.
type (
	DeviceMemory  Handle
	Buffer        Handle
	BufferView    Handle
	Image         Handle
	ImageView     Handle
	Sampler       Handle
	ShaderModule  Handle
	DescriptorSetLayout Handle
	DescriptorPool       Handle
	DescriptorSet        Handle
	PipelineLayout       Handle
)

// Result mirrors VkResult; Success is 0, positive values are non-error
// status codes (NotReady, Timeout), and negative values are errors.
type Result int32

const (
	Success       Result = 0
	NotReady      Result = 1
	Timeout       Result = 2
	ErrorOutOfHostMemory   Result = -1
	ErrorOutOfDeviceMemory Result = -2
	ErrorInitializationFailed Result = -3
	ErrorDeviceLost           Result = -4
	ErrorMemoryMapFailed      Result = -5
)

// Ok reports whether the result is Success; positive status codes are
// not Ok.
func (r Result) Ok() bool { return r == Success }

// DeviceSize mirrors VkDeviceSize.
type DeviceSize uint64

// StructureType mirrors VkStructureType for the subset of structs this
// package builds.
type StructureType uint32

const (
	StructureTypeMemoryAllocateInfo      StructureType = 5
	StructureTypeBufferCreateInfo        StructureType = 12
	StructureTypeImageCreateInfo         StructureType = 14
	StructureTypeImageViewCreateInfo     StructureType = 15
	StructureTypeShaderModuleCreateInfo  StructureType = 16
	StructureTypeSamplerCreateInfo       StructureType = 31
	StructureTypeMemoryBarrier           StructureType = 46
	StructureTypeBufferMemoryBarrier     StructureType = 44
	StructureTypeImageMemoryBarrier      StructureType = 45
	StructureTypeWriteDescriptorSet      StructureType = 35
	StructureTypeDescriptorSetAllocateInfo StructureType = 34
	StructureTypeDescriptorPoolCreateInfo  StructureType = 33
	StructureTypeDescriptorSetLayoutCreateInfo StructureType = 32
)

// MemoryPropertyFlags mirrors VkMemoryPropertyFlags.
type MemoryPropertyFlags uint32

const (
	MemoryPropertyDeviceLocalBit     MemoryPropertyFlags = 1 << 0
	MemoryPropertyHostVisibleBit     MemoryPropertyFlags = 1 << 1
	MemoryPropertyHostCoherentBit    MemoryPropertyFlags = 1 << 2
	MemoryPropertyHostCachedBit      MemoryPropertyFlags = 1 << 3
	MemoryPropertyLazilyAllocatedBit MemoryPropertyFlags = 1 << 4
)

// MemoryHeapFlags mirrors VkMemoryHeapFlags.
type MemoryHeapFlags uint32

// BufferUsageFlags mirrors VkBufferUsageFlags.
type BufferUsageFlags uint32

const (
	BufferUsageTransferSrcBit   BufferUsageFlags = 1 << 0
	BufferUsageTransferDstBit   BufferUsageFlags = 1 << 1
	BufferUsageUniformTexelBufferBit BufferUsageFlags = 1 << 2
	BufferUsageStorageTexelBufferBit BufferUsageFlags = 1 << 3
	BufferUsageUniformBufferBit BufferUsageFlags = 1 << 4
	BufferUsageStorageBufferBit BufferUsageFlags = 1 << 5
	BufferUsageIndexBufferBit   BufferUsageFlags = 1 << 6
	BufferUsageVertexBufferBit  BufferUsageFlags = 1 << 7
)

// ImageUsageFlags mirrors VkImageUsageFlags.
type ImageUsageFlags uint32

const (
	ImageUsageTransferSrcBit ImageUsageFlags = 1 << 0
	ImageUsageTransferDstBit ImageUsageFlags = 1 << 1
	ImageUsageSampledBit     ImageUsageFlags = 1 << 2
	ImageUsageStorageBit     ImageUsageFlags = 1 << 3
)

// ImageLayout mirrors VkImageLayout.
type ImageLayout uint32

const (
	ImageLayoutUndefined                    ImageLayout = 0
	ImageLayoutGeneral                      ImageLayout = 1
	ImageLayoutShaderReadOnlyOptimal         ImageLayout = 5
	ImageLayoutTransferSrcOptimal            ImageLayout = 6
	ImageLayoutTransferDstOptimal            ImageLayout = 7
)

// PipelineStageFlags mirrors VkPipelineStageFlags.
type PipelineStageFlags uint32

const (
	PipelineStageTopOfPipeBit    PipelineStageFlags = 1 << 0
	PipelineStageTransferBit     PipelineStageFlags = 1 << 12
	PipelineStageFragmentShaderBit PipelineStageFlags = 1 << 7
	PipelineStageComputeShaderBit  PipelineStageFlags = 1 << 11
	PipelineStageBottomOfPipeBit PipelineStageFlags = 1 << 13
)

// AccessFlags mirrors VkAccessFlags.
type AccessFlags uint32

const (
	AccessTransferReadBit      AccessFlags = 1 << 11
	AccessTransferWriteBit     AccessFlags = 1 << 12
	AccessShaderReadBit        AccessFlags = 1 << 5
	AccessShaderWriteBit       AccessFlags = 1 << 6
)

// DescriptorType mirrors VkDescriptorType.
type DescriptorType uint32

const (
	DescriptorTypeSampler            DescriptorType = 0
	DescriptorTypeSampledImage       DescriptorType = 2
	DescriptorTypeStorageImage       DescriptorType = 3
	DescriptorTypeStorageBuffer      DescriptorType = 7
	DescriptorTypeStorageTexelBuffer DescriptorType = 5
)

// Filter mirrors VkFilter.
type Filter uint32

// SamplerAddressMode mirrors VkSamplerAddressMode.
type SamplerAddressMode uint32

// Format mirrors VkFormat; the cache only needs a handful of entries
// to describe its own storage-buffer-backed views.
type Format uint32

const (
	FormatUndefined Format = 0
	FormatR32Uint   Format = 98
)

// MemoryAllocateInfo mirrors VkMemoryAllocateInfo.
type MemoryAllocateInfo struct {
	SType           StructureType
	PNext           uintptr
	AllocationSize  DeviceSize
	MemoryTypeIndex uint32
}

// BufferCreateInfo mirrors VkBufferCreateInfo.
type BufferCreateInfo struct {
	SType StructureType
	PNext uintptr
	Flags uint32
	Size  DeviceSize
	Usage BufferUsageFlags
	SharingMode           uint32
	QueueFamilyIndexCount uint32
	PQueueFamilyIndices   uintptr
}

// ImageCreateInfo mirrors the subset of VkImageCreateInfo the cache uses
// for its linear-staging and tiled-resident image entries.
type ImageCreateInfo struct {
	SType     StructureType
	PNext     uintptr
	Flags     uint32
	ImageType uint32
	Format    Format
	Extent    Extent3D
	MipLevels uint32
	ArrayLayers uint32
	Samples   uint32
	Tiling    uint32
	Usage     ImageUsageFlags
	SharingMode uint32
	InitialLayout ImageLayout
}

// Extent3D mirrors VkExtent3D.
type Extent3D struct {
	Width, Height, Depth uint32
}

// BufferCopy mirrors VkBufferCopy.
type BufferCopy struct {
	SrcOffset, DstOffset, Size DeviceSize
}

// BufferImageCopy mirrors the subset of VkBufferImageCopy the detile/tile
// paths use.
type BufferImageCopy struct {
	BufferOffset      DeviceSize
	BufferRowLength   uint32
	BufferImageHeight uint32
	ImageSubresource  ImageSubresourceLayers
	ImageOffset       Offset3D
	ImageExtent       Extent3D
}

// ImageSubresourceLayers mirrors VkImageSubresourceLayers.
type ImageSubresourceLayers struct {
	AspectMask     uint32
	MipLevel       uint32
	BaseArrayLayer uint32
	LayerCount     uint32
}

// Offset3D mirrors VkOffset3D.
type Offset3D struct {
	X, Y, Z int32
}

// ImageMemoryBarrier mirrors VkImageMemoryBarrier.
type ImageMemoryBarrier struct {
	SType               StructureType
	PNext               uintptr
	SrcAccessMask       AccessFlags
	DstAccessMask       AccessFlags
	OldLayout           ImageLayout
	NewLayout           ImageLayout
	SrcQueueFamilyIndex uint32
	DstQueueFamilyIndex uint32
	Image               Image
	SubresourceRange    ImageSubresourceRange
}

// ImageSubresourceRange mirrors VkImageSubresourceRange.
type ImageSubresourceRange struct {
	AspectMask     uint32
	BaseMipLevel   uint32
	LevelCount     uint32
	BaseArrayLayer uint32
	LayerCount     uint32
}

// DescriptorBufferInfo mirrors VkDescriptorBufferInfo.
type DescriptorBufferInfo struct {
	Buffer Buffer
	Offset DeviceSize
	Range  DeviceSize
}

// DescriptorImageInfo mirrors VkDescriptorImageInfo.
type DescriptorImageInfo struct {
	Sampler     Sampler
	ImageView   ImageView
	ImageLayout ImageLayout
}

// WriteDescriptorSet mirrors VkWriteDescriptorSet.
type WriteDescriptorSet struct {
	SType           StructureType
	PNext           uintptr
	DstSet          DescriptorSet
	DstBinding      uint32
	DstArrayElement uint32
	DescriptorCount uint32
	DescriptorType  DescriptorType
	PImageInfo      *DescriptorImageInfo
	PBufferInfo     *DescriptorBufferInfo
	PTexelBufferView uintptr
}
