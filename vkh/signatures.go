package vkh

import (
	"github.com/go-webgpu/goffi/ffi"
	"github.com/go-webgpu/goffi/types"
)

// Signature templates for the command subset this package binds. Each is
// prepared once in initSignatures and reused across every function that
// shares its C shape, the same way the Vulkan loader this is grounded on
// amortizes ~30 templates across ~700 entry points.
var (
	// VkResult(device, pCreateInfo, pAllocator, pHandle)
	sigCreate types.CallInterface
	// void(device, handle, pAllocator)
	sigDestroy types.CallInterface
	// VkResult(device, pAllocateInfo, pAllocator, pMemory)
	sigAllocateMemory types.CallInterface
	// void(device, memory, pAllocator)
	sigFreeMemory types.CallInterface
	// VkResult(device, buffer, memory, offset)
	sigBindBufferMemory types.CallInterface
	// VkResult(device, image, memory, offset)
	sigBindImageMemory types.CallInterface
	// void(device, buffer, pRequirements)
	sigGetMemoryRequirements types.CallInterface
	// void(device, descriptorWriteCount, pDescriptorWrites, descriptorCopyCount, pDescriptorCopies)
	sigUpdateDescriptorSets types.CallInterface
	// void(commandBuffer, srcBuffer, dstBuffer, regionCount, pRegions)
	sigCmdCopyBuffer types.CallInterface
	// void(commandBuffer, srcBuffer, dstImage, dstImageLayout, regionCount, pRegions)
	sigCmdCopyBufferToImage types.CallInterface
	// void(commandBuffer, srcImage, srcImageLayout, dstBuffer, regionCount, pRegions)
	sigCmdCopyImageToBuffer types.CallInterface
	// void(commandBuffer, srcStageMask, dstStageMask, dependencyFlags,
	//      memoryBarrierCount, pMemoryBarriers,
	//      bufferMemoryBarrierCount, pBufferMemoryBarriers,
	//      imageMemoryBarrierCount, pImageMemoryBarriers)
	sigCmdPipelineBarrier types.CallInterface
	// void(commandBuffer, pipelineBindPoint, layout, firstSet, descriptorSetCount,
	//      pDescriptorSets, dynamicOffsetCount, pDynamicOffsets)
	sigCmdBindDescriptorSets types.CallInterface
)

func initSignatures() error {
	ptr := types.PointerTypeDescriptor
	u32 := types.UInt32TypeDescriptor
	u64 := types.UInt64TypeDescriptor
	voidRet := types.VoidTypeDescriptor
	resultRet := types.SInt32TypeDescriptor

	sigs := []struct {
		cif    *types.CallInterface
		ret    *types.TypeDescriptor
		params []*types.TypeDescriptor
	}{
		{&sigCreate, resultRet, []*types.TypeDescriptor{u64, ptr, ptr, ptr}},
		{&sigDestroy, voidRet, []*types.TypeDescriptor{u64, u64, ptr}},
		{&sigAllocateMemory, resultRet, []*types.TypeDescriptor{u64, ptr, ptr, ptr}},
		{&sigFreeMemory, voidRet, []*types.TypeDescriptor{u64, u64, ptr}},
		{&sigBindBufferMemory, resultRet, []*types.TypeDescriptor{u64, u64, u64, u64}},
		{&sigBindImageMemory, resultRet, []*types.TypeDescriptor{u64, u64, u64, u64}},
		{&sigGetMemoryRequirements, voidRet, []*types.TypeDescriptor{u64, u64, ptr}},
		{&sigUpdateDescriptorSets, voidRet, []*types.TypeDescriptor{u64, u32, ptr, u32, ptr}},
		{&sigCmdCopyBuffer, voidRet, []*types.TypeDescriptor{u64, u64, u64, u32, ptr}},
		{&sigCmdCopyBufferToImage, voidRet, []*types.TypeDescriptor{u64, u64, u64, u32, u32, ptr}},
		{&sigCmdCopyImageToBuffer, voidRet, []*types.TypeDescriptor{u64, u64, u32, u64, u32, ptr}},
		{&sigCmdPipelineBarrier, voidRet, []*types.TypeDescriptor{u64, u32, u32, u32, u32, ptr, u32, ptr, u32, ptr}},
		{&sigCmdBindDescriptorSets, voidRet, []*types.TypeDescriptor{u64, u32, u64, u32, u32, ptr, u32, ptr}},
	}

	for _, s := range sigs {
		if err := ffi.PrepareCallInterface(s.cif, types.DefaultCall, s.ret, s.params); err != nil {
			return err
		}
	}
	return nil
}
