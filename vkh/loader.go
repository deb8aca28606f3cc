package vkh

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/go-webgpu/goffi/ffi"
	"github.com/go-webgpu/goffi/types"
)

func libraryName() string {
	switch runtime.GOOS {
	case "windows":
		return "vulkan-1.dll"
	case "darwin":
		return "libvulkan.dylib"
	default:
		return "libvulkan.so.1"
	}
}

var (
	initOnce sync.Once
	initErr  error

	lib                  unsafe.Pointer
	getInstanceProcAddr  unsafe.Pointer
	getDeviceProcAddr    unsafe.Pointer

	instanceProcCif types.CallInterface
	deviceProcCif   types.CallInterface
)

// Init loads the Vulkan loader library and resolves vkGetInstanceProcAddr.
// Safe to call more than once; only the first call does work.
func Init() error {
	initOnce.Do(func() {
		initErr = doInit()
	})
	return initErr
}

func doInit() error {
	var err error
	lib, err = ffi.LoadLibrary(libraryName())
	if err != nil {
		return fmt.Errorf("vkh: load library: %w", err)
	}

	getInstanceProcAddr, err = ffi.GetSymbol(lib, "vkGetInstanceProcAddr")
	if err != nil {
		return fmt.Errorf("vkh: resolve vkGetInstanceProcAddr: %w", err)
	}

	if err := ffi.PrepareCallInterface(
		&instanceProcCif,
		types.DefaultCall,
		types.PointerTypeDescriptor,
		[]*types.TypeDescriptor{types.UInt64TypeDescriptor, types.PointerTypeDescriptor},
	); err != nil {
		return fmt.Errorf("vkh: prepare GetInstanceProcAddr signature: %w", err)
	}

	if err := ffi.PrepareCallInterface(
		&deviceProcCif,
		types.DefaultCall,
		types.PointerTypeDescriptor,
		[]*types.TypeDescriptor{types.UInt64TypeDescriptor, types.PointerTypeDescriptor},
	); err != nil {
		return fmt.Errorf("vkh: prepare GetDeviceProcAddr signature: %w", err)
	}

	if err := initSignatures(); err != nil {
		return fmt.Errorf("vkh: prepare command signatures: %w", err)
	}

	return nil
}

func callFunction(cif *types.CallInterface, fn unsafe.Pointer, result unsafe.Pointer, args []unsafe.Pointer) error {
	return ffi.CallFunction(cif, fn, result, args)
}

func cString(s string) unsafe.Pointer {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return unsafe.Pointer(&b[0])
}

// GetInstanceProcAddr resolves a Vulkan entry point relative to an instance
// (or globally, when instance is zero).
func GetInstanceProcAddr(instance Instance, name string) unsafe.Pointer {
	namePtr := cString(name)
	var result unsafe.Pointer
	args := [2]unsafe.Pointer{unsafe.Pointer(&instance), unsafe.Pointer(&namePtr)}
	if err := ffi.CallFunction(&instanceProcCif, getInstanceProcAddr, unsafe.Pointer(&result), args[:]); err != nil {
		return nil
	}
	return result
}

// GetDeviceProcAddr resolves a Vulkan entry point relative to a device,
// following the recommended vkGetDeviceProcAddr fast-path.
func GetDeviceProcAddr(device Device, name string) unsafe.Pointer {
	namePtr := cString(name)
	var result unsafe.Pointer
	args := [2]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&namePtr)}
	if err := ffi.CallFunction(&deviceProcCif, getDeviceProcAddr, unsafe.Pointer(&result), args[:]); err != nil {
		return nil
	}
	return result
}

// bindDeviceProcAddr resolves vkGetDeviceProcAddr itself off the instance
// loader the first time a Device's Commands are loaded.
func bindDeviceProcAddr(instance Instance) {
	getDeviceProcAddr = GetInstanceProcAddr(instance, "vkGetDeviceProcAddr")
}

// Close releases the loaded Vulkan library. Tests and short-lived tools
// that never call Init can call Close safely; it is a no-op then.
func Close() error {
	if lib == nil {
		return nil
	}
	err := ffi.FreeLibrary(lib)
	lib = nil
	getInstanceProcAddr = nil
	getDeviceProcAddr = nil
	return err
}
