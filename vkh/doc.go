// Package vkh is the cache's Vulkan host-API glue.
//
// It loads the system Vulkan loader with goffi, the same pure-Go FFI
// approach used throughout this module's device layer, and exposes only
// the entry points the resource cache drives directly: memory allocation,
// buffer/image/view/sampler/shader-module lifetime, descriptor-set
// updates, and the copy/barrier commands the coherency engine records.
//
// Device and instance creation, surface/swapchain management, and
// render-pass/pipeline setup belong to the external scheduler and
// presentation layer; this package is handed an already-created Device
// and Instance and never creates one itself.
package vkh
