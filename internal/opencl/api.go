// Package opencl binds the subset of the OpenCL 1.2 host API used by the
// gpudiag tools. The ICD loader is opened at run time, so the binary starts
// on machines without OpenCL installed.
package opencl

import (
	"errors"
	"unsafe"
)

// DefaultLibrary is the soname of the OpenCL ICD loader.
const DefaultLibrary = "libOpenCL.so.1"

// Opaque driver handles.
type (
	PlatformID   uintptr
	DeviceID     uintptr
	Context      uintptr
	CommandQueue uintptr
	Mem          uintptr
	Program      uintptr
	Kernel       uintptr
	Event        uintptr
)

var (
	// ErrNotBuilt indicates the binary was built without cgo OpenCL support.
	ErrNotBuilt = errors.New("opencl support requires a linux build with cgo enabled")
	// ErrNoPlatform is returned when a platform index is out of range.
	ErrNoPlatform = errors.New("opencl platform did not exist")
	// ErrNoDevice is returned when a device index is out of range.
	ErrNoDevice = errors.New("opencl device did not exist")
)

// API is the OpenCL entry point table. Errors returned by its methods wrap a
// Status and are prefixed with the driver call name.
type API interface {
	GetPlatformIDs() ([]PlatformID, error)
	GetPlatformInfo(platform PlatformID, param PlatformParam) ([]byte, error)
	// GetDeviceIDs returns an empty list when the platform has no device of
	// the requested type.
	GetDeviceIDs(platform PlatformID, typ DeviceType) ([]DeviceID, error)
	GetDeviceInfo(device DeviceID, param DeviceParam) ([]byte, error)

	CreateContext(devices []DeviceID) (Context, error)
	ReleaseContext(ctx Context) error
	CreateCommandQueue(ctx Context, device DeviceID, props QueueProperties) (CommandQueue, error)
	ReleaseCommandQueue(queue CommandQueue) error
	Finish(queue CommandQueue) error

	// CreateBuffer allocates a device buffer. host must be nil unless flags
	// include MemUseHostPtr, in which case it must stay valid until the
	// buffer is released.
	CreateBuffer(ctx Context, flags MemFlags, size int, host unsafe.Pointer) (Mem, error)
	ReleaseMemObject(mem Mem) error
	EnqueueWriteBuffer(queue CommandQueue, mem Mem, blocking bool, offset, size int, src unsafe.Pointer, wait []Event) (Event, error)
	EnqueueReadBuffer(queue CommandQueue, mem Mem, blocking bool, offset, size int, dst unsafe.Pointer, wait []Event) (Event, error)

	CreateProgramWithSource(ctx Context, source string) (Program, error)
	BuildProgram(program Program, devices []DeviceID, options string) error
	GetProgramBuildInfo(program Program, device DeviceID, param ProgramBuildParam) ([]byte, error)
	ReleaseProgram(program Program) error

	CreateKernel(program Program, name string) (Kernel, error)
	// SetKernelArg binds a buffer to the kernel argument at index.
	SetKernelArg(kernel Kernel, index int, mem Mem) error
	ReleaseKernel(kernel Kernel) error
	EnqueueNDRangeKernel(queue CommandQueue, kernel Kernel, global, local []int, wait []Event) (Event, error)

	// SetEventCallback arranges for fn to run once the event reaches
	// CL_COMPLETE or fails. fn runs on a driver thread.
	SetEventCallback(event Event, fn func(Status)) error
	GetEventProfilingInfo(event Event, param ProfilingParam) (uint64, error)
	WaitForEvents(events []Event) error
	ReleaseEvent(event Event) error

	Close() error
}
