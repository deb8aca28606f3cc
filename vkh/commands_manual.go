package vkh

import "unsafe"

// AllocateMemory wraps vkAllocateMemory.
func (c *Commands) AllocateMemory(info *MemoryAllocateInfo) (DeviceMemory, Result) {
	var memory DeviceMemory
	var result int32
	infoPtr := unsafe.Pointer(info)
	var allocator unsafe.Pointer
	args := [4]unsafe.Pointer{
		unsafe.Pointer(&c.device),
		unsafe.Pointer(&infoPtr),
		unsafe.Pointer(&allocator),
		unsafe.Pointer(&memory),
	}
	if err := callFunction(&sigAllocateMemory, c.allocateMemory, unsafe.Pointer(&result), args[:]); err != nil {
		return 0, ErrorInitializationFailed
	}
	return memory, Result(result)
}

// FreeMemory wraps vkFreeMemory.
func (c *Commands) FreeMemory(memory DeviceMemory) {
	var allocator unsafe.Pointer
	args := [3]unsafe.Pointer{
		unsafe.Pointer(&c.device),
		unsafe.Pointer(&memory),
		unsafe.Pointer(&allocator),
	}
	_ = callFunction(&sigFreeMemory, c.freeMemory, nil, args[:])
}

// CreateBuffer wraps vkCreateBuffer.
func (c *Commands) CreateBuffer(info *BufferCreateInfo) (Buffer, Result) {
	var handle Buffer
	var result int32
	infoPtr := unsafe.Pointer(info)
	var allocator unsafe.Pointer
	args := [4]unsafe.Pointer{
		unsafe.Pointer(&c.device),
		unsafe.Pointer(&infoPtr),
		unsafe.Pointer(&allocator),
		unsafe.Pointer(&handle),
	}
	if err := callFunction(&sigCreate, c.createBuffer, unsafe.Pointer(&result), args[:]); err != nil {
		return 0, ErrorInitializationFailed
	}
	return handle, Result(result)
}

// DestroyBuffer wraps vkDestroyBuffer.
func (c *Commands) DestroyBuffer(buffer Buffer) {
	var allocator unsafe.Pointer
	args := [3]unsafe.Pointer{unsafe.Pointer(&c.device), unsafe.Pointer(&buffer), unsafe.Pointer(&allocator)}
	_ = callFunction(&sigDestroy, c.destroyBuffer, nil, args[:])
}

// BindBufferMemory wraps vkBindBufferMemory.
func (c *Commands) BindBufferMemory(buffer Buffer, memory DeviceMemory, offset DeviceSize) Result {
	var result int32
	args := [4]unsafe.Pointer{
		unsafe.Pointer(&c.device),
		unsafe.Pointer(&buffer),
		unsafe.Pointer(&memory),
		unsafe.Pointer(&offset),
	}
	if err := callFunction(&sigBindBufferMemory, c.bindBufferMemory, unsafe.Pointer(&result), args[:]); err != nil {
		return ErrorInitializationFailed
	}
	return Result(result)
}

// CreateImage wraps vkCreateImage.
func (c *Commands) CreateImage(info *ImageCreateInfo) (Image, Result) {
	var handle Image
	var result int32
	infoPtr := unsafe.Pointer(info)
	var allocator unsafe.Pointer
	args := [4]unsafe.Pointer{
		unsafe.Pointer(&c.device),
		unsafe.Pointer(&infoPtr),
		unsafe.Pointer(&allocator),
		unsafe.Pointer(&handle),
	}
	if err := callFunction(&sigCreate, c.createImage, unsafe.Pointer(&result), args[:]); err != nil {
		return 0, ErrorInitializationFailed
	}
	return handle, Result(result)
}

// DestroyImage wraps vkDestroyImage.
func (c *Commands) DestroyImage(image Image) {
	var allocator unsafe.Pointer
	args := [3]unsafe.Pointer{unsafe.Pointer(&c.device), unsafe.Pointer(&image), unsafe.Pointer(&allocator)}
	_ = callFunction(&sigDestroy, c.destroyImage, nil, args[:])
}

// BindImageMemory wraps vkBindImageMemory.
func (c *Commands) BindImageMemory(image Image, memory DeviceMemory, offset DeviceSize) Result {
	var result int32
	args := [4]unsafe.Pointer{
		unsafe.Pointer(&c.device),
		unsafe.Pointer(&image),
		unsafe.Pointer(&memory),
		unsafe.Pointer(&offset),
	}
	if err := callFunction(&sigBindImageMemory, c.bindImageMemory, unsafe.Pointer(&result), args[:]); err != nil {
		return ErrorInitializationFailed
	}
	return Result(result)
}

// CreateImageView wraps vkCreateImageView.
func (c *Commands) CreateImageView(info unsafe.Pointer) (ImageView, Result) {
	var handle ImageView
	var result int32
	var allocator unsafe.Pointer
	args := [4]unsafe.Pointer{
		unsafe.Pointer(&c.device),
		unsafe.Pointer(&info),
		unsafe.Pointer(&allocator),
		unsafe.Pointer(&handle),
	}
	if err := callFunction(&sigCreate, c.createImageView, unsafe.Pointer(&result), args[:]); err != nil {
		return 0, ErrorInitializationFailed
	}
	return handle, Result(result)
}

// DestroyImageView wraps vkDestroyImageView.
func (c *Commands) DestroyImageView(view ImageView) {
	var allocator unsafe.Pointer
	args := [3]unsafe.Pointer{unsafe.Pointer(&c.device), unsafe.Pointer(&view), unsafe.Pointer(&allocator)}
	_ = callFunction(&sigDestroy, c.destroyImageView, nil, args[:])
}

// CreateSampler wraps vkCreateSampler.
func (c *Commands) CreateSampler(info unsafe.Pointer) (Sampler, Result) {
	var handle Sampler
	var result int32
	var allocator unsafe.Pointer
	args := [4]unsafe.Pointer{
		unsafe.Pointer(&c.device),
		unsafe.Pointer(&info),
		unsafe.Pointer(&allocator),
		unsafe.Pointer(&handle),
	}
	if err := callFunction(&sigCreate, c.createSampler, unsafe.Pointer(&result), args[:]); err != nil {
		return 0, ErrorInitializationFailed
	}
	return handle, Result(result)
}

// DestroySampler wraps vkDestroySampler.
func (c *Commands) DestroySampler(sampler Sampler) {
	var allocator unsafe.Pointer
	args := [3]unsafe.Pointer{unsafe.Pointer(&c.device), unsafe.Pointer(&sampler), unsafe.Pointer(&allocator)}
	_ = callFunction(&sigDestroy, c.destroySampler, nil, args[:])
}

// CreateShaderModule wraps vkCreateShaderModule.
func (c *Commands) CreateShaderModule(info unsafe.Pointer) (ShaderModule, Result) {
	var handle ShaderModule
	var result int32
	var allocator unsafe.Pointer
	args := [4]unsafe.Pointer{
		unsafe.Pointer(&c.device),
		unsafe.Pointer(&info),
		unsafe.Pointer(&allocator),
		unsafe.Pointer(&handle),
	}
	if err := callFunction(&sigCreate, c.createShaderModule, unsafe.Pointer(&result), args[:]); err != nil {
		return 0, ErrorInitializationFailed
	}
	return handle, Result(result)
}

// DestroyShaderModule wraps vkDestroyShaderModule.
func (c *Commands) DestroyShaderModule(module ShaderModule) {
	var allocator unsafe.Pointer
	args := [3]unsafe.Pointer{unsafe.Pointer(&c.device), unsafe.Pointer(&module), unsafe.Pointer(&allocator)}
	_ = callFunction(&sigDestroy, c.destroyShaderModule, nil, args[:])
}

// UpdateDescriptorSets wraps vkUpdateDescriptorSets.
func (c *Commands) UpdateDescriptorSets(writes []WriteDescriptorSet) {
	if len(writes) == 0 {
		return
	}
	writeCount := uint32(len(writes))
	writesPtr := unsafe.Pointer(&writes[0])
	copyCount := uint32(0)
	var copiesPtr unsafe.Pointer
	args := [5]unsafe.Pointer{
		unsafe.Pointer(&c.device),
		unsafe.Pointer(&writeCount),
		unsafe.Pointer(&writesPtr),
		unsafe.Pointer(&copyCount),
		unsafe.Pointer(&copiesPtr),
	}
	_ = callFunction(&sigUpdateDescriptorSets, c.updateDescriptorSets, nil, args[:])
}

// CmdCopyBuffer wraps vkCmdCopyBuffer.
func (c *Commands) CmdCopyBuffer(cmd CommandBuffer, src, dst Buffer, regions []BufferCopy) {
	if len(regions) == 0 {
		return
	}
	count := uint32(len(regions))
	regionsPtr := unsafe.Pointer(&regions[0])
	args := [5]unsafe.Pointer{
		unsafe.Pointer(&cmd),
		unsafe.Pointer(&src),
		unsafe.Pointer(&dst),
		unsafe.Pointer(&count),
		unsafe.Pointer(&regionsPtr),
	}
	_ = callFunction(&sigCmdCopyBuffer, c.cmdCopyBuffer, nil, args[:])
}

// CmdCopyBufferToImage wraps vkCmdCopyBufferToImage.
func (c *Commands) CmdCopyBufferToImage(cmd CommandBuffer, src Buffer, dst Image, layout ImageLayout, regions []BufferImageCopy) {
	if len(regions) == 0 {
		return
	}
	count := uint32(len(regions))
	regionsPtr := unsafe.Pointer(&regions[0])
	args := [6]unsafe.Pointer{
		unsafe.Pointer(&cmd),
		unsafe.Pointer(&src),
		unsafe.Pointer(&dst),
		unsafe.Pointer(&layout),
		unsafe.Pointer(&count),
		unsafe.Pointer(&regionsPtr),
	}
	_ = callFunction(&sigCmdCopyBufferToImage, c.cmdCopyBufferToImage, nil, args[:])
}

// CmdCopyImageToBuffer wraps vkCmdCopyImageToBuffer.
func (c *Commands) CmdCopyImageToBuffer(cmd CommandBuffer, src Image, layout ImageLayout, dst Buffer, regions []BufferImageCopy) {
	if len(regions) == 0 {
		return
	}
	count := uint32(len(regions))
	regionsPtr := unsafe.Pointer(&regions[0])
	args := [6]unsafe.Pointer{
		unsafe.Pointer(&cmd),
		unsafe.Pointer(&src),
		unsafe.Pointer(&layout),
		unsafe.Pointer(&dst),
		unsafe.Pointer(&count),
		unsafe.Pointer(&regionsPtr),
	}
	_ = callFunction(&sigCmdCopyImageToBuffer, c.cmdCopyImageToBuffer, nil, args[:])
}

// CmdPipelineBarrier wraps vkCmdPipelineBarrier, restricted to the image
// barrier form the cache's coherency engine issues around tiled resources.
func (c *Commands) CmdPipelineBarrier(cmd CommandBuffer, srcStage, dstStage PipelineStageFlags, barriers []ImageMemoryBarrier) {
	dependencyFlags := uint32(0)
	memCount := uint32(0)
	var memPtr unsafe.Pointer
	bufCount := uint32(0)
	var bufPtr unsafe.Pointer
	imgCount := uint32(len(barriers))
	var imgPtr unsafe.Pointer
	if imgCount > 0 {
		imgPtr = unsafe.Pointer(&barriers[0])
	}
	args := [10]unsafe.Pointer{
		unsafe.Pointer(&cmd),
		unsafe.Pointer(&srcStage),
		unsafe.Pointer(&dstStage),
		unsafe.Pointer(&dependencyFlags),
		unsafe.Pointer(&memCount),
		unsafe.Pointer(&memPtr),
		unsafe.Pointer(&bufCount),
		unsafe.Pointer(&bufPtr),
		unsafe.Pointer(&imgCount),
		unsafe.Pointer(&imgPtr),
	}
	_ = callFunction(&sigCmdPipelineBarrier, c.cmdPipelineBarrier, nil, args[:])
}

// CmdBindDescriptorSets wraps vkCmdBindDescriptorSets.
func (c *Commands) CmdBindDescriptorSets(cmd CommandBuffer, bindPoint uint32, layout PipelineLayout, firstSet uint32, sets []DescriptorSet) {
	if len(sets) == 0 {
		return
	}
	setCount := uint32(len(sets))
	setsPtr := unsafe.Pointer(&sets[0])
	dynamicOffsetCount := uint32(0)
	var dynamicOffsetsPtr unsafe.Pointer
	args := [8]unsafe.Pointer{
		unsafe.Pointer(&cmd),
		unsafe.Pointer(&bindPoint),
		unsafe.Pointer(&layout),
		unsafe.Pointer(&firstSet),
		unsafe.Pointer(&setCount),
		unsafe.Pointer(&setsPtr),
		unsafe.Pointer(&dynamicOffsetCount),
		unsafe.Pointer(&dynamicOffsetsPtr),
	}
	_ = callFunction(&sigCmdBindDescriptorSets, c.cmdBindDescriptorSets, nil, args[:])
}
