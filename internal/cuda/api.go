// Package cuda binds the CUDA driver API calls used by nvinfo and cudadma.
// libcuda is opened at run time, so the binary starts on machines without
// an NVIDIA driver.
package cuda

import (
	"errors"
	"unsafe"
)

// DefaultLibrary is the soname of the CUDA driver library.
const DefaultLibrary = "libcuda.so.1"

// Device is a CUdevice ordinal handle.
type Device int32

// Opaque driver handles.
type (
	Context uintptr
	Stream  uintptr
)

// DevicePtr is a CUdeviceptr, an address in device memory.
type DevicePtr uint64

var (
	// ErrNotBuilt indicates the binary was built without cgo CUDA support.
	ErrNotBuilt = errors.New("cuda support requires a linux build with cgo enabled")
	// ErrNoDevice is returned when a device ordinal is out of range.
	ErrNoDevice = errors.New("cuda device did not exist")
)

// API is the CUDA driver entry point table. Failed calls return a
// *CallError wrapping the Result.
type API interface {
	ErrorDescriber

	Init() error
	DriverGetVersion() (int, error)
	DeviceGetCount() (int, error)
	DeviceGet(ordinal int) (Device, error)
	DeviceGetName(dev Device) (string, error)
	DeviceTotalMem(dev Device) (uint64, error)
	DeviceGetAttribute(attr DeviceAttribute, dev Device) (int32, error)

	CtxCreate(flags CtxFlags, dev Device) (Context, error)
	CtxSetCurrent(ctx Context) error
	CtxSynchronize() error
	CtxDestroy(ctx Context) error
	StreamCreate(flags StreamFlags) (Stream, error)
	StreamDestroy(stream Stream) error

	MemAlloc(size int) (DevicePtr, error)
	MemFree(ptr DevicePtr) error
	MemAllocHost(size int) (unsafe.Pointer, error)
	MemFreeHost(ptr unsafe.Pointer) error
	MemcpyHtoD(dst DevicePtr, src unsafe.Pointer, size int) error
	MemcpyDtoH(dst unsafe.Pointer, src DevicePtr, size int) error
	MemcpyHtoDAsync(dst DevicePtr, src unsafe.Pointer, size int, stream Stream) error
	MemcpyDtoHAsync(dst unsafe.Pointer, src DevicePtr, size int, stream Stream) error

	Close() error
}
