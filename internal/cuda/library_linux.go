//go:build linux && cgo

package cuda

/*
#cgo LDFLAGS: -Wl,--unresolved-symbols=ignore-in-object-files
#include <stdint.h>
#include <stddef.h>

typedef int                CUresult;
typedef int                CUdevice;
typedef int                CUdevice_attribute;
typedef unsigned long long CUdeviceptr;
typedef uintptr_t          CUcontext;
typedef uintptr_t          CUstream;

CUresult cuInit(unsigned int flags);
CUresult cuDriverGetVersion(int *version);
CUresult cuDeviceGetCount(int *count);
CUresult cuDeviceGet(CUdevice *device, int ordinal);
CUresult cuDeviceGetName(char *name, int len, CUdevice dev);
CUresult cuDeviceTotalMem_v2(size_t *bytes, CUdevice dev);
CUresult cuDeviceGetAttribute(int *value, CUdevice_attribute attr, CUdevice dev);
CUresult cuCtxCreate_v2(CUcontext *ctx, unsigned int flags, CUdevice dev);
CUresult cuCtxSetCurrent(CUcontext ctx);
CUresult cuCtxSynchronize(void);
CUresult cuCtxDestroy_v2(CUcontext ctx);
CUresult cuStreamCreate(CUstream *stream, unsigned int flags);
CUresult cuStreamDestroy_v2(CUstream stream);
CUresult cuMemAlloc_v2(CUdeviceptr *ptr, size_t size);
CUresult cuMemFree_v2(CUdeviceptr ptr);
CUresult cuMemAllocHost_v2(void **ptr, size_t size);
CUresult cuMemFreeHost(void *ptr);
CUresult cuMemcpyHtoD_v2(CUdeviceptr dst, const void *src, size_t size);
CUresult cuMemcpyDtoH_v2(void *dst, CUdeviceptr src, size_t size);
CUresult cuMemcpyHtoDAsync_v2(CUdeviceptr dst, const void *src, size_t size, CUstream stream);
CUresult cuMemcpyDtoHAsync_v2(void *dst, CUdeviceptr src, size_t size, CUstream stream);
CUresult cuGetErrorName(CUresult result, const char **name);
CUresult cuGetErrorString(CUresult result, const char **str);
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/rs/zerolog/log"

	"github.com/cwbudde/gpudiag/internal/dynlib"
)

const deviceNameLen = 256

// Library is the API backed by a dynamically loaded libcuda.
type Library struct {
	lib *dynlib.Library
}

var _ API = (*Library)(nil)

// Open loads the CUDA driver library. Entry points are resolved on first use.
func Open(name string) (*Library, error) {
	lib, err := dynlib.Open(name, dynlib.DefaultFlags)
	if err != nil {
		return nil, fmt.Errorf("could not open CUDA library %s: %w", name, err)
	}
	log.Debug().Str("library", name).Msg("opened CUDA library")
	return &Library{lib: lib}, nil
}

// Close unloads the library.
func (l *Library) Close() error {
	return l.lib.Close()
}

// call resolves symbol, runs fn and converts its result. Errors are
// reported under the unversioned name of the entry point.
func (l *Library) call(name, symbol string, fn func() C.CUresult) error {
	if err := l.lib.Require(symbol); err != nil {
		return err
	}
	return NewCallError(l, name, Result(fn()))
}

func (l *Library) GetErrorName(r Result) (string, error) {
	if err := l.lib.Require("cuGetErrorName"); err != nil {
		return "", err
	}
	var s *C.char
	if rc := Result(C.cuGetErrorName(C.CUresult(r), &s)); rc != Success {
		return "", fmt.Errorf("cuGetErrorName: %w", rc)
	}
	return C.GoString(s), nil
}

func (l *Library) GetErrorString(r Result) (string, error) {
	if err := l.lib.Require("cuGetErrorString"); err != nil {
		return "", err
	}
	var s *C.char
	if rc := Result(C.cuGetErrorString(C.CUresult(r), &s)); rc != Success {
		return "", fmt.Errorf("cuGetErrorString: %w", rc)
	}
	return C.GoString(s), nil
}

func (l *Library) Init() error {
	return l.call("cuInit", "cuInit", func() C.CUresult { return C.cuInit(0) })
}

func (l *Library) DriverGetVersion() (int, error) {
	var v C.int
	err := l.call("cuDriverGetVersion", "cuDriverGetVersion", func() C.CUresult { return C.cuDriverGetVersion(&v) })
	return int(v), err
}

func (l *Library) DeviceGetCount() (int, error) {
	var n C.int
	err := l.call("cuDeviceGetCount", "cuDeviceGetCount", func() C.CUresult { return C.cuDeviceGetCount(&n) })
	return int(n), err
}

func (l *Library) DeviceGet(ordinal int) (Device, error) {
	var dev C.CUdevice
	err := l.call("cuDeviceGet", "cuDeviceGet", func() C.CUresult { return C.cuDeviceGet(&dev, C.int(ordinal)) })
	return Device(dev), err
}

func (l *Library) DeviceGetName(dev Device) (string, error) {
	var buf [deviceNameLen]C.char
	err := l.call("cuDeviceGetName", "cuDeviceGetName", func() C.CUresult {
		return C.cuDeviceGetName(&buf[0], deviceNameLen, C.CUdevice(dev))
	})
	if err != nil {
		return "", err
	}
	return C.GoString(&buf[0]), nil
}

func (l *Library) DeviceTotalMem(dev Device) (uint64, error) {
	var size C.size_t
	err := l.call("cuDeviceTotalMem", "cuDeviceTotalMem_v2", func() C.CUresult {
		return C.cuDeviceTotalMem_v2(&size, C.CUdevice(dev))
	})
	return uint64(size), err
}

func (l *Library) DeviceGetAttribute(attr DeviceAttribute, dev Device) (int32, error) {
	var v C.int
	err := l.call("cuDeviceGetAttribute", "cuDeviceGetAttribute", func() C.CUresult {
		return C.cuDeviceGetAttribute(&v, C.CUdevice_attribute(attr), C.CUdevice(dev))
	})
	return int32(v), err
}

func (l *Library) CtxCreate(flags CtxFlags, dev Device) (Context, error) {
	var ctx C.CUcontext
	err := l.call("cuCtxCreate", "cuCtxCreate_v2", func() C.CUresult {
		return C.cuCtxCreate_v2(&ctx, C.uint(flags), C.CUdevice(dev))
	})
	return Context(ctx), err
}

func (l *Library) CtxSetCurrent(ctx Context) error {
	return l.call("cuCtxSetCurrent", "cuCtxSetCurrent", func() C.CUresult {
		return C.cuCtxSetCurrent(C.CUcontext(ctx))
	})
}

func (l *Library) CtxSynchronize() error {
	return l.call("cuCtxSynchronize", "cuCtxSynchronize", func() C.CUresult { return C.cuCtxSynchronize() })
}

func (l *Library) CtxDestroy(ctx Context) error {
	return l.call("cuCtxDestroy", "cuCtxDestroy_v2", func() C.CUresult {
		return C.cuCtxDestroy_v2(C.CUcontext(ctx))
	})
}

func (l *Library) StreamCreate(flags StreamFlags) (Stream, error) {
	var s C.CUstream
	err := l.call("cuStreamCreate", "cuStreamCreate", func() C.CUresult {
		return C.cuStreamCreate(&s, C.uint(flags))
	})
	return Stream(s), err
}

func (l *Library) StreamDestroy(stream Stream) error {
	return l.call("cuStreamDestroy", "cuStreamDestroy_v2", func() C.CUresult {
		return C.cuStreamDestroy_v2(C.CUstream(stream))
	})
}

func (l *Library) MemAlloc(size int) (DevicePtr, error) {
	var p C.CUdeviceptr
	err := l.call("cuMemAlloc", "cuMemAlloc_v2", func() C.CUresult {
		return C.cuMemAlloc_v2(&p, C.size_t(size))
	})
	return DevicePtr(p), err
}

func (l *Library) MemFree(ptr DevicePtr) error {
	return l.call("cuMemFree", "cuMemFree_v2", func() C.CUresult {
		return C.cuMemFree_v2(C.CUdeviceptr(ptr))
	})
}

func (l *Library) MemAllocHost(size int) (unsafe.Pointer, error) {
	var p unsafe.Pointer
	err := l.call("cuMemAllocHost", "cuMemAllocHost_v2", func() C.CUresult {
		return C.cuMemAllocHost_v2(&p, C.size_t(size))
	})
	return p, err
}

func (l *Library) MemFreeHost(ptr unsafe.Pointer) error {
	return l.call("cuMemFreeHost", "cuMemFreeHost", func() C.CUresult { return C.cuMemFreeHost(ptr) })
}

func (l *Library) MemcpyHtoD(dst DevicePtr, src unsafe.Pointer, size int) error {
	return l.call("cuMemcpyHtoD", "cuMemcpyHtoD_v2", func() C.CUresult {
		return C.cuMemcpyHtoD_v2(C.CUdeviceptr(dst), src, C.size_t(size))
	})
}

func (l *Library) MemcpyDtoH(dst unsafe.Pointer, src DevicePtr, size int) error {
	return l.call("cuMemcpyDtoH", "cuMemcpyDtoH_v2", func() C.CUresult {
		return C.cuMemcpyDtoH_v2(dst, C.CUdeviceptr(src), C.size_t(size))
	})
}

func (l *Library) MemcpyHtoDAsync(dst DevicePtr, src unsafe.Pointer, size int, stream Stream) error {
	return l.call("cuMemcpyHtoDAsync", "cuMemcpyHtoDAsync_v2", func() C.CUresult {
		return C.cuMemcpyHtoDAsync_v2(C.CUdeviceptr(dst), src, C.size_t(size), C.CUstream(stream))
	})
}

func (l *Library) MemcpyDtoHAsync(dst unsafe.Pointer, src DevicePtr, size int, stream Stream) error {
	return l.call("cuMemcpyDtoHAsync", "cuMemcpyDtoHAsync_v2", func() C.CUresult {
		return C.cuMemcpyDtoHAsync_v2(dst, C.CUdeviceptr(src), C.size_t(size), C.CUstream(stream))
	})
}
