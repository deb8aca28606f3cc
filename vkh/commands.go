package vkh

import "unsafe"

// Commands holds the device-level function pointers this package resolves
// via vkGetDeviceProcAddr. One instance is loaded per logical device and
// shared by every cache tag that issues copy/barrier/descriptor commands
// against it.
type Commands struct {
	device Device

	createBuffer     unsafe.Pointer
	destroyBuffer    unsafe.Pointer
	createImage      unsafe.Pointer
	destroyImage     unsafe.Pointer
	createImageView  unsafe.Pointer
	destroyImageView unsafe.Pointer
	createSampler    unsafe.Pointer
	destroySampler   unsafe.Pointer
	createShaderModule  unsafe.Pointer
	destroyShaderModule unsafe.Pointer

	allocateMemory unsafe.Pointer
	freeMemory     unsafe.Pointer
	bindBufferMemory unsafe.Pointer
	bindImageMemory  unsafe.Pointer
	getBufferMemoryRequirements unsafe.Pointer
	getImageMemoryRequirements  unsafe.Pointer

	updateDescriptorSets unsafe.Pointer

	cmdCopyBuffer        unsafe.Pointer
	cmdCopyBufferToImage unsafe.Pointer
	cmdCopyImageToBuffer unsafe.Pointer
	cmdPipelineBarrier   unsafe.Pointer
	cmdBindDescriptorSets unsafe.Pointer
}

// deviceFn is the table of (field, Vulkan entry point name) pairs loaded
// in LoadDevice; a nil entry after loading means the driver doesn't
// support that function and callers relying on it will fail fast.
func (c *Commands) deviceFn() []struct {
	field *unsafe.Pointer
	name  string
} {
	return []struct {
		field *unsafe.Pointer
		name  string
	}{
		{&c.createBuffer, "vkCreateBuffer"},
		{&c.destroyBuffer, "vkDestroyBuffer"},
		{&c.createImage, "vkCreateImage"},
		{&c.destroyImage, "vkDestroyImage"},
		{&c.createImageView, "vkCreateImageView"},
		{&c.destroyImageView, "vkDestroyImageView"},
		{&c.createSampler, "vkCreateSampler"},
		{&c.destroySampler, "vkDestroySampler"},
		{&c.createShaderModule, "vkCreateShaderModule"},
		{&c.destroyShaderModule, "vkDestroyShaderModule"},
		{&c.allocateMemory, "vkAllocateMemory"},
		{&c.freeMemory, "vkFreeMemory"},
		{&c.bindBufferMemory, "vkBindBufferMemory"},
		{&c.bindImageMemory, "vkBindImageMemory"},
		{&c.getBufferMemoryRequirements, "vkGetBufferMemoryRequirements"},
		{&c.getImageMemoryRequirements, "vkGetImageMemoryRequirements"},
		{&c.updateDescriptorSets, "vkUpdateDescriptorSets"},
		{&c.cmdCopyBuffer, "vkCmdCopyBuffer"},
		{&c.cmdCopyBufferToImage, "vkCmdCopyBufferToImage"},
		{&c.cmdCopyImageToBuffer, "vkCmdCopyImageToBuffer"},
		{&c.cmdPipelineBarrier, "vkCmdPipelineBarrier"},
		{&c.cmdBindDescriptorSets, "vkCmdBindDescriptorSets"},
	}
}

// NewCommands creates an empty Commands table; call LoadDevice before use.
func NewCommands() *Commands {
	return &Commands{}
}

// LoadDevice resolves every device-level function this package needs via
// vkGetDeviceProcAddr, binding them to device for the lifetime of the
// Commands value.
func (c *Commands) LoadDevice(instance Instance, device Device) error {
	c.device = device
	bindDeviceProcAddr(instance)
	for _, fn := range c.deviceFn() {
		*fn.field = GetDeviceProcAddr(device, fn.name)
	}
	return nil
}
