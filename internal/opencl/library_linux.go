//go:build linux && cgo

package opencl

/*
#cgo LDFLAGS: -Wl,--unresolved-symbols=ignore-in-object-files
#include <stdint.h>
#include <stdlib.h>

typedef int32_t   cl_int;
typedef uint32_t  cl_uint;
typedef uint64_t  cl_ulong;
typedef uintptr_t cl_platform_id;
typedef uintptr_t cl_device_id;
typedef uintptr_t cl_context;
typedef uintptr_t cl_command_queue;
typedef uintptr_t cl_mem;
typedef uintptr_t cl_program;
typedef uintptr_t cl_kernel;
typedef uintptr_t cl_event;

cl_int clGetPlatformIDs(cl_uint num_entries, cl_platform_id *platforms, cl_uint *num_platforms);
cl_int clGetPlatformInfo(cl_platform_id platform, cl_uint param, size_t size, void *value, size_t *size_ret);
cl_int clGetDeviceIDs(cl_platform_id platform, cl_ulong type, cl_uint num_entries, cl_device_id *devices, cl_uint *num_devices);
cl_int clGetDeviceInfo(cl_device_id device, cl_uint param, size_t size, void *value, size_t *size_ret);
cl_context clCreateContext(const intptr_t *props, cl_uint num_devices, const cl_device_id *devices, void *notify, void *user_data, cl_int *errcode);
cl_int clReleaseContext(cl_context context);
cl_command_queue clCreateCommandQueue(cl_context context, cl_device_id device, cl_ulong props, cl_int *errcode);
cl_int clReleaseCommandQueue(cl_command_queue queue);
cl_int clFinish(cl_command_queue queue);
cl_mem clCreateBuffer(cl_context context, cl_ulong flags, size_t size, void *host_ptr, cl_int *errcode);
cl_int clReleaseMemObject(cl_mem mem);
cl_int clEnqueueWriteBuffer(cl_command_queue queue, cl_mem mem, cl_uint blocking, size_t offset, size_t size, const void *ptr, cl_uint num_wait, const cl_event *wait, cl_event *event);
cl_int clEnqueueReadBuffer(cl_command_queue queue, cl_mem mem, cl_uint blocking, size_t offset, size_t size, void *ptr, cl_uint num_wait, const cl_event *wait, cl_event *event);
cl_program clCreateProgramWithSource(cl_context context, cl_uint count, const char **strings, const size_t *lengths, cl_int *errcode);
cl_int clBuildProgram(cl_program program, cl_uint num_devices, const cl_device_id *devices, const char *options, void *notify, void *user_data);
cl_int clGetProgramBuildInfo(cl_program program, cl_device_id device, cl_uint param, size_t size, void *value, size_t *size_ret);
cl_int clReleaseProgram(cl_program program);
cl_kernel clCreateKernel(cl_program program, const char *name, cl_int *errcode);
cl_int clSetKernelArg(cl_kernel kernel, cl_uint index, size_t size, const void *value);
cl_int clReleaseKernel(cl_kernel kernel);
cl_int clEnqueueNDRangeKernel(cl_command_queue queue, cl_kernel kernel, cl_uint dims, const size_t *offset, const size_t *global, const size_t *local, cl_uint num_wait, const cl_event *wait, cl_event *event);
cl_int clSetEventCallback(cl_event event, cl_int type, void (*fn)(cl_event, cl_int, void *), void *user_data);
cl_int clGetEventProfilingInfo(cl_event event, cl_uint param, size_t size, void *value, size_t *size_ret);
cl_int clWaitForEvents(cl_uint num_events, const cl_event *events);
cl_int clReleaseEvent(cl_event event);

extern void gpudiagEventComplete(uintptr_t event, int32_t status, uintptr_t handle);

static void gpudiag_event_trampoline(cl_event event, cl_int status, void *user_data) {
	gpudiagEventComplete(event, status, (uintptr_t)user_data);
}

static cl_int gpudiag_set_complete_callback(cl_event event, uintptr_t handle) {
	return clSetEventCallback(event, 0, gpudiag_event_trampoline, (void *)handle);
}
*/
import "C"

import (
	"fmt"
	"runtime/cgo"
	"unsafe"

	"github.com/rs/zerolog/log"

	"github.com/cwbudde/gpudiag/internal/dynlib"
)

// Library is the API backed by a dynamically loaded OpenCL ICD loader.
type Library struct {
	lib *dynlib.Library
}

var _ API = (*Library)(nil)

// Open loads the OpenCL ICD loader. Entry points are resolved on first use.
func Open(name string) (*Library, error) {
	lib, err := dynlib.Open(name, dynlib.DefaultFlags)
	if err != nil {
		return nil, fmt.Errorf("could not open OpenCL library %s: %w", name, err)
	}
	log.Debug().Str("library", name).Msg("opened OpenCL library")
	return &Library{lib: lib}, nil
}

// Close unloads the library.
func (l *Library) Close() error {
	return l.lib.Close()
}

func (l *Library) GetPlatformIDs() ([]PlatformID, error) {
	if err := l.lib.Require("clGetPlatformIDs"); err != nil {
		return nil, err
	}
	var count C.cl_uint
	if err := statusError("clGetPlatformIDs", int32(C.clGetPlatformIDs(0, nil, &count))); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	ids := make([]C.cl_platform_id, int(count))
	if err := statusError("clGetPlatformIDs", int32(C.clGetPlatformIDs(count, &ids[0], &count))); err != nil {
		return nil, err
	}
	out := make([]PlatformID, int(count))
	for i := range out {
		out[i] = PlatformID(ids[i])
	}
	return out, nil
}

func (l *Library) GetPlatformInfo(platform PlatformID, param PlatformParam) ([]byte, error) {
	if err := l.lib.Require("clGetPlatformInfo"); err != nil {
		return nil, err
	}
	var size C.size_t
	status := C.clGetPlatformInfo(C.cl_platform_id(platform), C.cl_uint(param), 0, nil, &size)
	if err := statusError("clGetPlatformInfo", int32(status)); err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, nil
	}
	buf := make([]byte, int(size))
	status = C.clGetPlatformInfo(C.cl_platform_id(platform), C.cl_uint(param), size, unsafe.Pointer(&buf[0]), nil)
	if err := statusError("clGetPlatformInfo", int32(status)); err != nil {
		return nil, err
	}
	return buf, nil
}

func (l *Library) GetDeviceIDs(platform PlatformID, typ DeviceType) ([]DeviceID, error) {
	if err := l.lib.Require("clGetDeviceIDs"); err != nil {
		return nil, err
	}
	var count C.cl_uint
	status := C.clGetDeviceIDs(C.cl_platform_id(platform), C.cl_ulong(typ), 0, nil, &count)
	if Status(status) == DeviceNotFound {
		return nil, nil
	}
	if err := statusError("clGetDeviceIDs", int32(status)); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	ids := make([]C.cl_device_id, int(count))
	status = C.clGetDeviceIDs(C.cl_platform_id(platform), C.cl_ulong(typ), count, &ids[0], &count)
	if err := statusError("clGetDeviceIDs", int32(status)); err != nil {
		return nil, err
	}
	out := make([]DeviceID, int(count))
	for i := range out {
		out[i] = DeviceID(ids[i])
	}
	return out, nil
}

func (l *Library) GetDeviceInfo(device DeviceID, param DeviceParam) ([]byte, error) {
	if err := l.lib.Require("clGetDeviceInfo"); err != nil {
		return nil, err
	}
	var size C.size_t
	status := C.clGetDeviceInfo(C.cl_device_id(device), C.cl_uint(param), 0, nil, &size)
	if err := statusError("clGetDeviceInfo", int32(status)); err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, nil
	}
	buf := make([]byte, int(size))
	status = C.clGetDeviceInfo(C.cl_device_id(device), C.cl_uint(param), size, unsafe.Pointer(&buf[0]), nil)
	if err := statusError("clGetDeviceInfo", int32(status)); err != nil {
		return nil, err
	}
	return buf, nil
}

func (l *Library) CreateContext(devices []DeviceID) (Context, error) {
	if err := l.lib.Require("clCreateContext"); err != nil {
		return 0, err
	}
	if len(devices) == 0 {
		return 0, statusError("clCreateContext", int32(InvalidValue))
	}
	ids := make([]C.cl_device_id, len(devices))
	for i, d := range devices {
		ids[i] = C.cl_device_id(d)
	}
	var status C.cl_int
	ctx := C.clCreateContext(nil, C.cl_uint(len(ids)), &ids[0], nil, nil, &status)
	if err := statusError("clCreateContext", int32(status)); err != nil {
		return 0, err
	}
	return Context(ctx), nil
}

func (l *Library) ReleaseContext(ctx Context) error {
	if err := l.lib.Require("clReleaseContext"); err != nil {
		return err
	}
	return statusError("clReleaseContext", int32(C.clReleaseContext(C.cl_context(ctx))))
}

func (l *Library) CreateCommandQueue(ctx Context, device DeviceID, props QueueProperties) (CommandQueue, error) {
	if err := l.lib.Require("clCreateCommandQueue"); err != nil {
		return 0, err
	}
	var status C.cl_int
	q := C.clCreateCommandQueue(C.cl_context(ctx), C.cl_device_id(device), C.cl_ulong(props), &status)
	if err := statusError("clCreateCommandQueue", int32(status)); err != nil {
		return 0, err
	}
	return CommandQueue(q), nil
}

func (l *Library) ReleaseCommandQueue(queue CommandQueue) error {
	if err := l.lib.Require("clReleaseCommandQueue"); err != nil {
		return err
	}
	return statusError("clReleaseCommandQueue", int32(C.clReleaseCommandQueue(C.cl_command_queue(queue))))
}

func (l *Library) Finish(queue CommandQueue) error {
	if err := l.lib.Require("clFinish"); err != nil {
		return err
	}
	return statusError("clFinish", int32(C.clFinish(C.cl_command_queue(queue))))
}

func (l *Library) CreateBuffer(ctx Context, flags MemFlags, size int, host unsafe.Pointer) (Mem, error) {
	if err := l.lib.Require("clCreateBuffer"); err != nil {
		return 0, err
	}
	var status C.cl_int
	m := C.clCreateBuffer(C.cl_context(ctx), C.cl_ulong(flags), C.size_t(size), host, &status)
	if err := statusError("clCreateBuffer", int32(status)); err != nil {
		return 0, err
	}
	return Mem(m), nil
}

func (l *Library) ReleaseMemObject(mem Mem) error {
	if err := l.lib.Require("clReleaseMemObject"); err != nil {
		return err
	}
	return statusError("clReleaseMemObject", int32(C.clReleaseMemObject(C.cl_mem(mem))))
}

func (l *Library) EnqueueWriteBuffer(queue CommandQueue, mem Mem, blocking bool, offset, size int, src unsafe.Pointer, wait []Event) (Event, error) {
	if err := l.lib.Require("clEnqueueWriteBuffer"); err != nil {
		return 0, err
	}
	n, list := eventList(wait)
	var ev C.cl_event
	status := C.clEnqueueWriteBuffer(C.cl_command_queue(queue), C.cl_mem(mem), clBool(blocking),
		C.size_t(offset), C.size_t(size), src, n, list, &ev)
	if err := statusError("clEnqueueWriteBuffer", int32(status)); err != nil {
		return 0, err
	}
	return Event(ev), nil
}

func (l *Library) EnqueueReadBuffer(queue CommandQueue, mem Mem, blocking bool, offset, size int, dst unsafe.Pointer, wait []Event) (Event, error) {
	if err := l.lib.Require("clEnqueueReadBuffer"); err != nil {
		return 0, err
	}
	n, list := eventList(wait)
	var ev C.cl_event
	status := C.clEnqueueReadBuffer(C.cl_command_queue(queue), C.cl_mem(mem), clBool(blocking),
		C.size_t(offset), C.size_t(size), dst, n, list, &ev)
	if err := statusError("clEnqueueReadBuffer", int32(status)); err != nil {
		return 0, err
	}
	return Event(ev), nil
}

func (l *Library) CreateProgramWithSource(ctx Context, source string) (Program, error) {
	if err := l.lib.Require("clCreateProgramWithSource"); err != nil {
		return 0, err
	}
	src := C.CString(source)
	defer C.free(unsafe.Pointer(src))
	length := C.size_t(len(source))

	var status C.cl_int
	p := C.clCreateProgramWithSource(C.cl_context(ctx), 1, &src, &length, &status)
	if err := statusError("clCreateProgramWithSource", int32(status)); err != nil {
		return 0, err
	}
	return Program(p), nil
}

func (l *Library) BuildProgram(program Program, devices []DeviceID, options string) error {
	if err := l.lib.Require("clBuildProgram"); err != nil {
		return err
	}
	ids := make([]C.cl_device_id, len(devices))
	for i, d := range devices {
		ids[i] = C.cl_device_id(d)
	}
	var list *C.cl_device_id
	if len(ids) > 0 {
		list = &ids[0]
	}
	var opts *C.char
	if options != "" {
		opts = C.CString(options)
		defer C.free(unsafe.Pointer(opts))
	}
	status := C.clBuildProgram(C.cl_program(program), C.cl_uint(len(ids)), list, opts, nil, nil)
	return statusError("clBuildProgram", int32(status))
}

func (l *Library) GetProgramBuildInfo(program Program, device DeviceID, param ProgramBuildParam) ([]byte, error) {
	if err := l.lib.Require("clGetProgramBuildInfo"); err != nil {
		return nil, err
	}
	var size C.size_t
	status := C.clGetProgramBuildInfo(C.cl_program(program), C.cl_device_id(device), C.cl_uint(param), 0, nil, &size)
	if err := statusError("clGetProgramBuildInfo", int32(status)); err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, nil
	}
	buf := make([]byte, int(size))
	status = C.clGetProgramBuildInfo(C.cl_program(program), C.cl_device_id(device), C.cl_uint(param), size, unsafe.Pointer(&buf[0]), nil)
	if err := statusError("clGetProgramBuildInfo", int32(status)); err != nil {
		return nil, err
	}
	return buf, nil
}

func (l *Library) ReleaseProgram(program Program) error {
	if err := l.lib.Require("clReleaseProgram"); err != nil {
		return err
	}
	return statusError("clReleaseProgram", int32(C.clReleaseProgram(C.cl_program(program))))
}

func (l *Library) CreateKernel(program Program, name string) (Kernel, error) {
	if err := l.lib.Require("clCreateKernel"); err != nil {
		return 0, err
	}
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	var status C.cl_int
	k := C.clCreateKernel(C.cl_program(program), cname, &status)
	if err := statusError("clCreateKernel", int32(status)); err != nil {
		return 0, err
	}
	return Kernel(k), nil
}

func (l *Library) SetKernelArg(kernel Kernel, index int, mem Mem) error {
	if err := l.lib.Require("clSetKernelArg"); err != nil {
		return err
	}
	m := C.cl_mem(mem)
	status := C.clSetKernelArg(C.cl_kernel(kernel), C.cl_uint(index), C.size_t(unsafe.Sizeof(m)), unsafe.Pointer(&m))
	return statusError("clSetKernelArg", int32(status))
}

func (l *Library) ReleaseKernel(kernel Kernel) error {
	if err := l.lib.Require("clReleaseKernel"); err != nil {
		return err
	}
	return statusError("clReleaseKernel", int32(C.clReleaseKernel(C.cl_kernel(kernel))))
}

func (l *Library) EnqueueNDRangeKernel(queue CommandQueue, kernel Kernel, global, local []int, wait []Event) (Event, error) {
	if err := l.lib.Require("clEnqueueNDRangeKernel"); err != nil {
		return 0, err
	}
	if len(global) == 0 || (local != nil && len(local) != len(global)) {
		return 0, statusError("clEnqueueNDRangeKernel", int32(InvalidWorkDimension))
	}
	gsz := make([]C.size_t, len(global))
	for i, v := range global {
		gsz[i] = C.size_t(v)
	}
	var lptr *C.size_t
	if local != nil {
		lsz := make([]C.size_t, len(local))
		for i, v := range local {
			lsz[i] = C.size_t(v)
		}
		lptr = &lsz[0]
	}
	n, list := eventList(wait)
	var ev C.cl_event
	status := C.clEnqueueNDRangeKernel(C.cl_command_queue(queue), C.cl_kernel(kernel), C.cl_uint(len(gsz)),
		nil, &gsz[0], lptr, n, list, &ev)
	if err := statusError("clEnqueueNDRangeKernel", int32(status)); err != nil {
		return 0, err
	}
	return Event(ev), nil
}

func (l *Library) SetEventCallback(event Event, fn func(Status)) error {
	if err := l.lib.Require("clSetEventCallback"); err != nil {
		return err
	}
	h := cgo.NewHandle(fn)
	status := C.gpudiag_set_complete_callback(C.cl_event(event), C.uintptr_t(h))
	if err := statusError("clSetEventCallback", int32(status)); err != nil {
		h.Delete()
		return err
	}
	return nil
}

func (l *Library) GetEventProfilingInfo(event Event, param ProfilingParam) (uint64, error) {
	if err := l.lib.Require("clGetEventProfilingInfo"); err != nil {
		return 0, err
	}
	var v C.cl_ulong
	status := C.clGetEventProfilingInfo(C.cl_event(event), C.cl_uint(param), C.size_t(unsafe.Sizeof(v)), unsafe.Pointer(&v), nil)
	if err := statusError("clGetEventProfilingInfo", int32(status)); err != nil {
		return 0, err
	}
	return uint64(v), nil
}

func (l *Library) WaitForEvents(events []Event) error {
	if err := l.lib.Require("clWaitForEvents"); err != nil {
		return err
	}
	n, list := eventList(events)
	if n == 0 {
		return nil
	}
	return statusError("clWaitForEvents", int32(C.clWaitForEvents(n, list)))
}

func (l *Library) ReleaseEvent(event Event) error {
	if err := l.lib.Require("clReleaseEvent"); err != nil {
		return err
	}
	return statusError("clReleaseEvent", int32(C.clReleaseEvent(C.cl_event(event))))
}

func eventList(events []Event) (C.cl_uint, *C.cl_event) {
	if len(events) == 0 {
		return 0, nil
	}
	list := make([]C.cl_event, len(events))
	for i, ev := range events {
		list[i] = C.cl_event(ev)
	}
	return C.cl_uint(len(list)), &list[0]
}

func clBool(b bool) C.cl_uint {
	if b {
		return 1
	}
	return 0
}
