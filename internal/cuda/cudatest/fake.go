// Package cudatest provides an in-memory CUDA driver for tests.
package cudatest

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/cwbudde/gpudiag/internal/cuda"
)

// DefaultDriverVersion is reported by DriverGetVersion (12.2).
const DefaultDriverVersion = 12020

// Device is a simulated device. Attributes missing from the map fail with
// CUDA_ERROR_INVALID_VALUE.
type Device struct {
	Name       string
	TotalMem   uint64
	Attributes map[cuda.DeviceAttribute]int32
}

// Copy records one memcpy call.
type Copy struct {
	Call   string
	Device cuda.DevicePtr
	Size   int
	Stream cuda.Stream
}

type allocation struct {
	data []byte
}

// Fake implements cuda.API in memory.
type Fake struct {
	Devices       []*Device
	DriverVersion int

	mu          sync.Mutex
	next        uintptr
	initialized bool
	closed      bool
	current     cuda.Context
	fail        map[string]cuda.Result
	calls       []string
	copies      []Copy
	contexts    map[cuda.Context]bool
	streams     map[cuda.Stream]bool
	device      map[cuda.DevicePtr]*allocation
	pinned      map[uintptr][]byte
}

var _ cuda.API = (*Fake)(nil)

// New returns a fake driver exposing the given devices.
func New(devices ...*Device) *Fake {
	return &Fake{
		Devices:       devices,
		DriverVersion: DefaultDriverVersion,
		next:          0x1000,
		fail:          make(map[string]cuda.Result),
		contexts:      make(map[cuda.Context]bool),
		streams:       make(map[cuda.Stream]bool),
		device:        make(map[cuda.DevicePtr]*allocation),
		pinned:        make(map[uintptr][]byte),
	}
}

// NewDevice returns a device with every catalog attribute set.
func NewDevice(name string) *Device {
	return &Device{
		Name:     name,
		TotalMem: 16 << 30,
		Attributes: map[cuda.DeviceAttribute]int32{
			cuda.AttrMaxThreadsPerBlock:               1024,
			cuda.AttrMaxBlockDimX:                     1024,
			cuda.AttrMaxBlockDimY:                     1024,
			cuda.AttrMaxBlockDimZ:                     64,
			cuda.AttrMaxGridDimX:                      2147483647,
			cuda.AttrMaxGridDimY:                      65535,
			cuda.AttrMaxGridDimZ:                      65535,
			cuda.AttrMaxSharedMemoryPerBlock:          49152,
			cuda.AttrTotalConstantMemory:              65536,
			cuda.AttrWarpSize:                         32,
			cuda.AttrMaxPitch:                         2147483647,
			cuda.AttrMaxRegistersPerBlock:             65536,
			cuda.AttrClockRate:                        1410000,
			cuda.AttrTextureAlignment:                 512,
			cuda.AttrMultiprocessorCount:              108,
			cuda.AttrKernelExecTimeout:                0,
			cuda.AttrIntegrated:                       0,
			cuda.AttrCanMapHostMemory:                 1,
			cuda.AttrComputeMode:                      int32(cuda.ComputeModeExclusiveProcess),
			cuda.AttrSurfaceAlignment:                 512,
			cuda.AttrConcurrentKernels:                1,
			cuda.AttrECCEnabled:                       1,
			cuda.AttrPCIBusID:                         7,
			cuda.AttrPCIDeviceID:                      0,
			cuda.AttrTCCDriver:                        0,
			cuda.AttrMemoryClockRate:                  1215000,
			cuda.AttrGlobalMemoryBusWidth:             5120,
			cuda.AttrL2CacheSize:                      41943040,
			cuda.AttrMaxThreadsPerMultiprocessor:      2048,
			cuda.AttrAsyncEngineCount:                 3,
			cuda.AttrUnifiedAddressing:                1,
			cuda.AttrPCIDomainID:                      0,
			cuda.AttrComputeCapabilityMajor:           8,
			cuda.AttrComputeCapabilityMinor:           0,
			cuda.AttrStreamPrioritiesSupported:        1,
			cuda.AttrGlobalL1CacheSupported:           1,
			cuda.AttrLocalL1CacheSupported:            1,
			cuda.AttrMaxSharedMemoryPerMultiprocessor: 167936,
			cuda.AttrMaxRegistersPerMultiprocessor:    65536,
			cuda.AttrManagedMemory:                    1,
			cuda.AttrMultiGPUBoard:                    0,
			cuda.AttrMultiGPUBoardGroupID:             0,
		},
	}
}

// FailOn makes every later call named call (e.g. "cuMemAlloc") fail with r.
func (f *Fake) FailOn(call string, r cuda.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[call] = r
}

// Calls returns the driver calls made so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Copies returns every memcpy, in order.
func (f *Fake) Copies() []Copy {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Copy(nil), f.copies...)
}

// Live returns the number of unreleased objects per kind.
func (f *Fake) Live() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	live := map[string]int{}
	add := func(kind string, n int) {
		if n > 0 {
			live[kind] = n
		}
	}
	add("context", len(f.contexts))
	add("stream", len(f.streams))
	add("device", len(f.device))
	add("pinned", len(f.pinned))
	return live
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// GetErrorName mirrors the driver, which knows every name in the table.
func (f *Fake) GetErrorName(r cuda.Result) (string, error) {
	return r.Name(), nil
}

func (f *Fake) GetErrorString(r cuda.Result) (string, error) {
	return r.Description(), nil
}

func (f *Fake) enter(call string, needInit bool) error {
	f.calls = append(f.calls, call)
	if f.closed {
		return fmt.Errorf("%s: library closed", call)
	}
	if r, ok := f.fail[call]; ok {
		return cuda.NewCallError(f, call, r)
	}
	if needInit && !f.initialized {
		return cuda.NewCallError(f, call, cuda.ErrorNotInitialized)
	}
	return nil
}

func (f *Fake) needContext(call string) error {
	if err := f.enter(call, true); err != nil {
		return err
	}
	if f.current == 0 {
		return cuda.NewCallError(f, call, cuda.ErrorInvalidContext)
	}
	return nil
}

func (f *Fake) handle() uintptr {
	f.next += 0x10
	return f.next
}

func (f *Fake) Init() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("cuInit", false); err != nil {
		return err
	}
	if len(f.Devices) == 0 {
		return cuda.NewCallError(f, "cuInit", cuda.ErrorNoDevice)
	}
	f.initialized = true
	return nil
}

func (f *Fake) DriverGetVersion() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("cuDriverGetVersion", false); err != nil {
		return 0, err
	}
	return f.DriverVersion, nil
}

func (f *Fake) DeviceGetCount() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("cuDeviceGetCount", true); err != nil {
		return 0, err
	}
	return len(f.Devices), nil
}

func (f *Fake) DeviceGet(ordinal int) (cuda.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("cuDeviceGet", true); err != nil {
		return 0, err
	}
	if ordinal < 0 || ordinal >= len(f.Devices) {
		return 0, cuda.NewCallError(f, "cuDeviceGet", cuda.ErrorInvalidDevice)
	}
	return cuda.Device(ordinal), nil
}

func (f *Fake) lookup(call string, dev cuda.Device) (*Device, error) {
	if err := f.enter(call, true); err != nil {
		return nil, err
	}
	if int(dev) < 0 || int(dev) >= len(f.Devices) {
		return nil, cuda.NewCallError(f, call, cuda.ErrorInvalidDevice)
	}
	return f.Devices[dev], nil
}

func (f *Fake) DeviceGetName(dev cuda.Device) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, err := f.lookup("cuDeviceGetName", dev)
	if err != nil {
		return "", err
	}
	return d.Name, nil
}

func (f *Fake) DeviceTotalMem(dev cuda.Device) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, err := f.lookup("cuDeviceTotalMem", dev)
	if err != nil {
		return 0, err
	}
	return d.TotalMem, nil
}

func (f *Fake) DeviceGetAttribute(attr cuda.DeviceAttribute, dev cuda.Device) (int32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, err := f.lookup("cuDeviceGetAttribute", dev)
	if err != nil {
		return 0, err
	}
	v, ok := d.Attributes[attr]
	if !ok {
		return 0, cuda.NewCallError(f, "cuDeviceGetAttribute", cuda.ErrorInvalidValue)
	}
	return v, nil
}

func (f *Fake) CtxCreate(flags cuda.CtxFlags, dev cuda.Device) (cuda.Context, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.lookup("cuCtxCreate", dev); err != nil {
		return 0, err
	}
	ctx := cuda.Context(f.handle())
	f.contexts[ctx] = true
	f.current = ctx
	return ctx, nil
}

func (f *Fake) CtxSetCurrent(ctx cuda.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("cuCtxSetCurrent", true); err != nil {
		return err
	}
	if ctx != 0 && !f.contexts[ctx] {
		return cuda.NewCallError(f, "cuCtxSetCurrent", cuda.ErrorInvalidContext)
	}
	f.current = ctx
	return nil
}

// Current returns the context current on the simulated calling thread.
func (f *Fake) Current() cuda.Context {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// SwitchThread simulates the caller resuming on an OS thread that has no
// current context.
func (f *Fake) SwitchThread() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = 0
}

func (f *Fake) CtxSynchronize() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.needContext("cuCtxSynchronize")
}

func (f *Fake) CtxDestroy(ctx cuda.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("cuCtxDestroy", true); err != nil {
		return err
	}
	if !f.contexts[ctx] {
		return cuda.NewCallError(f, "cuCtxDestroy", cuda.ErrorInvalidContext)
	}
	delete(f.contexts, ctx)
	if f.current == ctx {
		f.current = 0
	}
	return nil
}

func (f *Fake) StreamCreate(flags cuda.StreamFlags) (cuda.Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.needContext("cuStreamCreate"); err != nil {
		return 0, err
	}
	s := cuda.Stream(f.handle())
	f.streams[s] = true
	return s, nil
}

func (f *Fake) StreamDestroy(stream cuda.Stream) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("cuStreamDestroy", true); err != nil {
		return err
	}
	if !f.streams[stream] {
		return cuda.NewCallError(f, "cuStreamDestroy", cuda.ErrorInvalidHandle)
	}
	delete(f.streams, stream)
	return nil
}

func (f *Fake) MemAlloc(size int) (cuda.DevicePtr, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.needContext("cuMemAlloc"); err != nil {
		return 0, err
	}
	if size <= 0 {
		return 0, cuda.NewCallError(f, "cuMemAlloc", cuda.ErrorInvalidValue)
	}
	p := cuda.DevicePtr(f.handle())
	// keep later handles clear of [p, p+size)
	f.next += uintptr(size)
	f.device[p] = &allocation{data: make([]byte, size)}
	return p, nil
}

func (f *Fake) MemFree(ptr cuda.DevicePtr) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("cuMemFree", true); err != nil {
		return err
	}
	if _, ok := f.device[ptr]; !ok {
		return cuda.NewCallError(f, "cuMemFree", cuda.ErrorInvalidValue)
	}
	delete(f.device, ptr)
	return nil
}

// MemAllocHost hands out Go memory kept alive by the fake until MemFreeHost.
func (f *Fake) MemAllocHost(size int) (unsafe.Pointer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.needContext("cuMemAllocHost"); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, cuda.NewCallError(f, "cuMemAllocHost", cuda.ErrorInvalidValue)
	}
	buf := make([]byte, size)
	p := unsafe.Pointer(&buf[0])
	f.pinned[uintptr(p)] = buf
	return p, nil
}

func (f *Fake) MemFreeHost(ptr unsafe.Pointer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("cuMemFreeHost", true); err != nil {
		return err
	}
	if _, ok := f.pinned[uintptr(ptr)]; !ok {
		return cuda.NewCallError(f, "cuMemFreeHost", cuda.ErrorInvalidValue)
	}
	delete(f.pinned, uintptr(ptr))
	return nil
}

// resolve finds the allocation containing [ptr, ptr+size).
func (f *Fake) resolve(call string, ptr cuda.DevicePtr, size int) ([]byte, error) {
	for base, a := range f.device {
		if ptr >= base && ptr < base+cuda.DevicePtr(len(a.data)) {
			off := int(ptr - base)
			if size <= 0 || off+size > len(a.data) {
				return nil, cuda.NewCallError(f, call, cuda.ErrorInvalidValue)
			}
			return a.data[off : off+size], nil
		}
	}
	return nil, cuda.NewCallError(f, call, cuda.ErrorInvalidValue)
}

func (f *Fake) copyCall(call string, dev cuda.DevicePtr, host unsafe.Pointer, size int, stream cuda.Stream, toDevice bool) error {
	if err := f.needContext(call); err != nil {
		return err
	}
	if stream != 0 && !f.streams[stream] {
		return cuda.NewCallError(f, call, cuda.ErrorInvalidHandle)
	}
	mem, err := f.resolve(call, dev, size)
	if err != nil {
		return err
	}
	if host == nil {
		return cuda.NewCallError(f, call, cuda.ErrorInvalidValue)
	}
	hostBytes := unsafe.Slice((*byte)(host), size)
	if toDevice {
		copy(mem, hostBytes)
	} else {
		copy(hostBytes, mem)
	}
	f.copies = append(f.copies, Copy{Call: call, Device: dev, Size: size, Stream: stream})
	return nil
}

func (f *Fake) MemcpyHtoD(dst cuda.DevicePtr, src unsafe.Pointer, size int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.copyCall("cuMemcpyHtoD", dst, src, size, 0, true)
}

func (f *Fake) MemcpyDtoH(dst unsafe.Pointer, src cuda.DevicePtr, size int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.copyCall("cuMemcpyDtoH", src, dst, size, 0, false)
}

func (f *Fake) MemcpyHtoDAsync(dst cuda.DevicePtr, src unsafe.Pointer, size int, stream cuda.Stream) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.copyCall("cuMemcpyHtoDAsync", dst, src, size, stream, true)
}

func (f *Fake) MemcpyDtoHAsync(dst unsafe.Pointer, src cuda.DevicePtr, size int, stream cuda.Stream) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.copyCall("cuMemcpyDtoHAsync", src, dst, size, stream, false)
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
