// Package opencltest provides an in-memory OpenCL driver so the gpudiag
// tools can be tested without a GPU.
package opencltest

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"github.com/cwbudde/gpudiag/internal/opencl"
)

// DefaultKernelNanos is the simulated kernel run time.
const DefaultKernelNanos = 12_345

// Platform is a simulated platform.
type Platform struct {
	Info    map[opencl.PlatformParam][]byte
	Devices []*Device
}

// Device is a simulated device. Missing Info keys fail with CL_INVALID_VALUE.
type Device struct {
	Info map[opencl.DeviceParam][]byte
}

// Transfer records one enqueued buffer copy.
type Transfer struct {
	Write    bool
	Mem      opencl.Mem
	Blocking bool
	Offset   int
	Size     int
	Wait     []opencl.Event
	Event    opencl.Event
}

// BuildFunc decides the outcome of clBuildProgram.
type BuildFunc func(source, options string) (opencl.BuildStatus, string, opencl.Status)

type buffer struct {
	data []byte
}

type program struct {
	source string
	status opencl.BuildStatus
	log    string
}

type kernel struct {
	program *program
	name    string
	args    map[int]opencl.Mem
}

type event struct {
	profiling  bool
	start, end uint64
}

// Fake implements opencl.API in memory.
type Fake struct {
	Platforms []*Platform
	// Build is consulted by BuildProgram. Nil builds every program.
	Build BuildFunc
	// CallbackStatus is delivered to event callbacks.
	CallbackStatus opencl.Status
	// HoldCallbacks drops event callbacks, as if the device never finished.
	HoldCallbacks bool
	KernelNanos   uint64

	mu        sync.Mutex
	next      uintptr
	clock     uint64
	closed    bool
	fail      map[string]opencl.Status
	calls     []string
	transfers []Transfer

	platformIDs map[*Platform]opencl.PlatformID
	platforms   map[opencl.PlatformID]*Platform
	deviceIDs   map[*Device]opencl.DeviceID
	devices     map[opencl.DeviceID]*Device
	contexts    map[opencl.Context]bool
	queues      map[opencl.CommandQueue]opencl.QueueProperties
	mems        map[opencl.Mem]*buffer
	programs    map[opencl.Program]*program
	kernels     map[opencl.Kernel]*kernel
	events      map[opencl.Event]*event
}

var _ opencl.API = (*Fake)(nil)

// New returns a fake driver exposing the given platforms.
func New(platforms ...*Platform) *Fake {
	return &Fake{
		Platforms:   platforms,
		next:        0x1000,
		fail:        make(map[string]opencl.Status),
		platformIDs: make(map[*Platform]opencl.PlatformID),
		platforms:   make(map[opencl.PlatformID]*Platform),
		deviceIDs:   make(map[*Device]opencl.DeviceID),
		devices:     make(map[opencl.DeviceID]*Device),
		contexts:    make(map[opencl.Context]bool),
		queues:      make(map[opencl.CommandQueue]opencl.QueueProperties),
		mems:        make(map[opencl.Mem]*buffer),
		programs:    make(map[opencl.Program]*program),
		kernels:     make(map[opencl.Kernel]*kernel),
		events:      make(map[opencl.Event]*event),
	}
}

// NewPlatform returns a platform with the given devices.
func NewPlatform(name string, devices ...*Device) *Platform {
	return &Platform{
		Info: map[opencl.PlatformParam][]byte{
			opencl.PlatformProfile:    String("FULL_PROFILE"),
			opencl.PlatformVersion:    String("OpenCL 1.2 " + name),
			opencl.PlatformName:       String(name),
			opencl.PlatformVendor:     String("Fake Vendor"),
			opencl.PlatformExtensions: String("cl_khr_icd"),
		},
		Devices: devices,
	}
}

// NewDevice returns a GPU with a complete attribute set. It advertises
// cl_khr_fp64 but not cl_khr_fp16, and rejects the half FP config query.
func NewDevice(name string) *Device {
	const fp = opencl.FPDenorm | opencl.FPInfNaN | opencl.FPRoundToNearest |
		opencl.FPRoundToZero | opencl.FPRoundToInf | opencl.FPFMA
	return &Device{Info: map[opencl.DeviceParam][]byte{
		opencl.DeviceTypeParam:                  U64(uint64(opencl.DeviceTypeGPU)),
		opencl.DeviceVendorID:                   U32(0x10de),
		opencl.DeviceMaxComputeUnits:            U32(16),
		opencl.DeviceMaxWorkItemDimensions:      U32(3),
		opencl.DeviceMaxWorkGroupSize:           SizeT(1024),
		opencl.DeviceMaxWorkItemSizes:           SizeT(1024, 1024, 64),
		opencl.DevicePreferredVectorWidthChar:   U32(1),
		opencl.DevicePreferredVectorWidthShort:  U32(1),
		opencl.DevicePreferredVectorWidthInt:    U32(1),
		opencl.DevicePreferredVectorWidthLong:   U32(1),
		opencl.DevicePreferredVectorWidthFloat:  U32(1),
		opencl.DevicePreferredVectorWidthDouble: U32(1),
		opencl.DevicePreferredVectorWidthHalf:   U32(0),
		opencl.DeviceMaxClockFrequency:          U32(1500),
		opencl.DeviceAddressBits:                U32(64),
		opencl.DeviceMaxReadImageArgs:           U32(256),
		opencl.DeviceMaxWriteImageArgs:          U32(16),
		opencl.DeviceMaxMemAllocSize:            U64(1 << 30),
		opencl.DeviceImage2DMaxWidth:            SizeT(16384),
		opencl.DeviceImage2DMaxHeight:           SizeT(16384),
		opencl.DeviceImage3DMaxWidth:            SizeT(4096),
		opencl.DeviceImage3DMaxHeight:           SizeT(4096),
		opencl.DeviceImage3DMaxDepth:            SizeT(4096),
		opencl.DeviceImageSupport:               U32(1),
		opencl.DeviceMaxParameterSize:           SizeT(4352),
		opencl.DeviceMaxSamplers:                U32(32),
		opencl.DeviceMemBaseAddrAlign:           U32(4096),
		opencl.DeviceMinDataTypeAlignSize:       U32(128),
		opencl.DeviceSingleFPConfig:             U64(uint64(fp)),
		opencl.DeviceGlobalMemCacheType:         U32(uint32(opencl.CacheReadWrite)),
		opencl.DeviceGlobalMemCachelineSize:     U32(128),
		opencl.DeviceGlobalMemCacheSize:         U64(256 << 10),
		opencl.DeviceGlobalMemSize:              U64(4 << 30),
		opencl.DeviceMaxConstantBufferSize:      U64(64 << 10),
		opencl.DeviceMaxConstantArgs:            U32(9),
		opencl.DeviceLocalMemType:               U32(uint32(opencl.LocalMemLocal)),
		opencl.DeviceLocalMemSize:               U64(48 << 10),
		opencl.DeviceErrorCorrectionSupport:     U32(0),
		opencl.DeviceProfilingTimerResolution:   SizeT(1000),
		opencl.DeviceEndianLittle:               U32(1),
		opencl.DeviceAvailable:                  U32(1),
		opencl.DeviceCompilerAvailable:          U32(1),
		opencl.DeviceExecutionCapabilities:      U64(uint64(opencl.ExecKernel)),
		opencl.DeviceQueueProperties:            U64(uint64(opencl.QueueOutOfOrderExec | opencl.QueueProfiling)),
		opencl.DeviceName:                       String(name),
		opencl.DeviceVendor:                     String("NVIDIA Corporation"),
		opencl.DriverVersion:                    String("535.54.03"),
		opencl.DeviceProfile:                    String("FULL_PROFILE"),
		opencl.DeviceVersion:                    String("OpenCL 3.0 CUDA"),
		opencl.DeviceExtensions:                 String("cl_khr_global_int32_base_atomics cl_khr_fp64"),
		opencl.DeviceDoubleFPConfig:             U64(uint64(fp)),
		opencl.DeviceHostUnifiedMemory:          U32(0),
		opencl.DeviceNativeVectorWidthChar:      U32(1),
		opencl.DeviceNativeVectorWidthShort:     U32(1),
		opencl.DeviceNativeVectorWidthInt:       U32(1),
		opencl.DeviceNativeVectorWidthLong:      U32(1),
		opencl.DeviceNativeVectorWidthFloat:     U32(1),
		opencl.DeviceNativeVectorWidthDouble:    U32(1),
		opencl.DeviceNativeVectorWidthHalf:      U32(0),
		opencl.DeviceOpenCLCVersion:             String("OpenCL C 1.2"),
	}}
}

// String encodes a NUL terminated string value.
func String(s string) []byte { return append([]byte(s), 0) }

// U32 encodes a cl_uint value.
func U32(v uint32) []byte { return binary.NativeEndian.AppendUint32(nil, v) }

// U64 encodes a cl_ulong or bit field value.
func U64(v uint64) []byte { return binary.NativeEndian.AppendUint64(nil, v) }

// SizeT encodes one or more size_t values.
func SizeT(vs ...uint64) []byte {
	var out []byte
	for _, v := range vs {
		if unsafe.Sizeof(uintptr(0)) == 8 {
			out = binary.NativeEndian.AppendUint64(out, v)
		} else {
			out = binary.NativeEndian.AppendUint32(out, uint32(v))
		}
	}
	return out
}

// FailOn makes every later call named call (e.g. "clBuildProgram") fail
// with status.
func (f *Fake) FailOn(call string, status opencl.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[call] = status
}

// Calls returns the driver calls made so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Transfers returns every enqueued buffer copy, in order.
func (f *Fake) Transfers() []Transfer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Transfer(nil), f.transfers...)
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
	add("queue", len(f.queues))
	add("mem", len(f.mems))
	add("program", len(f.programs))
	add("kernel", len(f.kernels))
	add("event", len(f.events))
	return live
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *Fake) enter(call string) error {
	f.calls = append(f.calls, call)
	if f.closed {
		return fmt.Errorf("%s: library closed", call)
	}
	if s, ok := f.fail[call]; ok {
		return fail(call, s)
	}
	return nil
}

func fail(call string, s opencl.Status) error {
	return fmt.Errorf("%s: %w", call, s)
}

func (f *Fake) handle() uintptr {
	f.next += 0x10
	return f.next
}

func (f *Fake) platformID(p *Platform) opencl.PlatformID {
	id, ok := f.platformIDs[p]
	if !ok {
		id = opencl.PlatformID(f.handle())
		f.platformIDs[p] = id
		f.platforms[id] = p
	}
	return id
}

func (f *Fake) deviceID(d *Device) opencl.DeviceID {
	id, ok := f.deviceIDs[d]
	if !ok {
		id = opencl.DeviceID(f.handle())
		f.deviceIDs[d] = id
		f.devices[id] = d
	}
	return id
}

func (f *Fake) GetPlatformIDs() ([]opencl.PlatformID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("clGetPlatformIDs"); err != nil {
		return nil, err
	}
	if len(f.Platforms) == 0 {
		return nil, fail("clGetPlatformIDs", opencl.PlatformNotFoundKHR)
	}
	ids := make([]opencl.PlatformID, len(f.Platforms))
	for i, p := range f.Platforms {
		ids[i] = f.platformID(p)
	}
	return ids, nil
}

func (f *Fake) GetPlatformInfo(platform opencl.PlatformID, param opencl.PlatformParam) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("clGetPlatformInfo"); err != nil {
		return nil, err
	}
	p, ok := f.platforms[platform]
	if !ok {
		return nil, fail("clGetPlatformInfo", opencl.InvalidPlatform)
	}
	v, ok := p.Info[param]
	if !ok {
		return nil, fail("clGetPlatformInfo", opencl.InvalidValue)
	}
	return append([]byte(nil), v...), nil
}

func (f *Fake) GetDeviceIDs(platform opencl.PlatformID, typ opencl.DeviceType) ([]opencl.DeviceID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("clGetDeviceIDs"); err != nil {
		return nil, err
	}
	p, ok := f.platforms[platform]
	if !ok {
		return nil, fail("clGetDeviceIDs", opencl.InvalidPlatform)
	}
	var ids []opencl.DeviceID
	for _, d := range p.Devices {
		devType := opencl.DeviceType(binary.NativeEndian.Uint64(d.Info[opencl.DeviceTypeParam]))
		if devType&typ != 0 {
			ids = append(ids, f.deviceID(d))
		}
	}
	return ids, nil
}

func (f *Fake) GetDeviceInfo(device opencl.DeviceID, param opencl.DeviceParam) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("clGetDeviceInfo"); err != nil {
		return nil, err
	}
	d, ok := f.devices[device]
	if !ok {
		return nil, fail("clGetDeviceInfo", opencl.InvalidDevice)
	}
	v, ok := d.Info[param]
	if !ok {
		return nil, fail("clGetDeviceInfo", opencl.InvalidValue)
	}
	return append([]byte(nil), v...), nil
}

func (f *Fake) CreateContext(devices []opencl.DeviceID) (opencl.Context, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("clCreateContext"); err != nil {
		return 0, err
	}
	if len(devices) == 0 {
		return 0, fail("clCreateContext", opencl.InvalidValue)
	}
	for _, d := range devices {
		if _, ok := f.devices[d]; !ok {
			return 0, fail("clCreateContext", opencl.InvalidDevice)
		}
	}
	ctx := opencl.Context(f.handle())
	f.contexts[ctx] = true
	return ctx, nil
}

func (f *Fake) ReleaseContext(ctx opencl.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("clReleaseContext"); err != nil {
		return err
	}
	if !f.contexts[ctx] {
		return fail("clReleaseContext", opencl.InvalidContext)
	}
	delete(f.contexts, ctx)
	return nil
}

func (f *Fake) CreateCommandQueue(ctx opencl.Context, device opencl.DeviceID, props opencl.QueueProperties) (opencl.CommandQueue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("clCreateCommandQueue"); err != nil {
		return 0, err
	}
	if !f.contexts[ctx] {
		return 0, fail("clCreateCommandQueue", opencl.InvalidContext)
	}
	if _, ok := f.devices[device]; !ok {
		return 0, fail("clCreateCommandQueue", opencl.InvalidDevice)
	}
	q := opencl.CommandQueue(f.handle())
	f.queues[q] = props
	return q, nil
}

func (f *Fake) ReleaseCommandQueue(queue opencl.CommandQueue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("clReleaseCommandQueue"); err != nil {
		return err
	}
	if _, ok := f.queues[queue]; !ok {
		return fail("clReleaseCommandQueue", opencl.InvalidCommandQueue)
	}
	delete(f.queues, queue)
	return nil
}

func (f *Fake) Finish(queue opencl.CommandQueue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("clFinish"); err != nil {
		return err
	}
	if _, ok := f.queues[queue]; !ok {
		return fail("clFinish", opencl.InvalidCommandQueue)
	}
	return nil
}

func (f *Fake) CreateBuffer(ctx opencl.Context, flags opencl.MemFlags, size int, host unsafe.Pointer) (opencl.Mem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("clCreateBuffer"); err != nil {
		return 0, err
	}
	if !f.contexts[ctx] {
		return 0, fail("clCreateBuffer", opencl.InvalidContext)
	}
	if size <= 0 {
		return 0, fail("clCreateBuffer", opencl.InvalidBufferSize)
	}
	useHost := flags&opencl.MemUseHostPtr != 0
	if useHost != (host != nil) {
		return 0, fail("clCreateBuffer", opencl.InvalidHostPtr)
	}
	b := &buffer{}
	if useHost {
		b.data = unsafe.Slice((*byte)(host), size)
	} else {
		b.data = make([]byte, size)
	}
	m := opencl.Mem(f.handle())
	f.mems[m] = b
	return m, nil
}

func (f *Fake) ReleaseMemObject(mem opencl.Mem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("clReleaseMemObject"); err != nil {
		return err
	}
	if _, ok := f.mems[mem]; !ok {
		return fail("clReleaseMemObject", opencl.InvalidMemObject)
	}
	delete(f.mems, mem)
	return nil
}

func (f *Fake) EnqueueWriteBuffer(queue opencl.CommandQueue, mem opencl.Mem, blocking bool, offset, size int, src unsafe.Pointer, wait []opencl.Event) (opencl.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	const call = "clEnqueueWriteBuffer"
	b, err := f.checkTransfer(call, queue, mem, offset, size, src, wait)
	if err != nil {
		return 0, err
	}
	copy(b.data[offset:offset+size], unsafe.Slice((*byte)(src), size))
	ev := f.newEvent(queue, 0)
	f.transfers = append(f.transfers, Transfer{
		Write: true, Mem: mem, Blocking: blocking, Offset: offset, Size: size,
		Wait: append([]opencl.Event(nil), wait...), Event: ev,
	})
	return ev, nil
}

func (f *Fake) EnqueueReadBuffer(queue opencl.CommandQueue, mem opencl.Mem, blocking bool, offset, size int, dst unsafe.Pointer, wait []opencl.Event) (opencl.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	const call = "clEnqueueReadBuffer"
	b, err := f.checkTransfer(call, queue, mem, offset, size, dst, wait)
	if err != nil {
		return 0, err
	}
	copy(unsafe.Slice((*byte)(dst), size), b.data[offset:offset+size])
	ev := f.newEvent(queue, 0)
	f.transfers = append(f.transfers, Transfer{
		Mem: mem, Blocking: blocking, Offset: offset, Size: size,
		Wait: append([]opencl.Event(nil), wait...), Event: ev,
	})
	return ev, nil
}

func (f *Fake) checkTransfer(call string, queue opencl.CommandQueue, mem opencl.Mem, offset, size int, ptr unsafe.Pointer, wait []opencl.Event) (*buffer, error) {
	if err := f.enter(call); err != nil {
		return nil, err
	}
	if _, ok := f.queues[queue]; !ok {
		return nil, fail(call, opencl.InvalidCommandQueue)
	}
	b, ok := f.mems[mem]
	if !ok {
		return nil, fail(call, opencl.InvalidMemObject)
	}
	if ptr == nil || size <= 0 || offset < 0 || offset+size > len(b.data) {
		return nil, fail(call, opencl.InvalidValue)
	}
	if err := f.checkWaitList(call, wait); err != nil {
		return nil, err
	}
	return b, nil
}

func (f *Fake) checkWaitList(call string, wait []opencl.Event) error {
	for _, ev := range wait {
		if _, ok := f.events[ev]; !ok {
			return fail(call, opencl.InvalidEventWaitList)
		}
	}
	return nil
}

func (f *Fake) newEvent(queue opencl.CommandQueue, duration uint64) opencl.Event {
	f.clock += 1000
	ev := opencl.Event(f.handle())
	f.events[ev] = &event{
		profiling: f.queues[queue]&opencl.QueueProfiling != 0,
		start:     f.clock,
		end:       f.clock + duration,
	}
	f.clock += duration
	return ev
}

func (f *Fake) CreateProgramWithSource(ctx opencl.Context, source string) (opencl.Program, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("clCreateProgramWithSource"); err != nil {
		return 0, err
	}
	if !f.contexts[ctx] {
		return 0, fail("clCreateProgramWithSource", opencl.InvalidContext)
	}
	p := opencl.Program(f.handle())
	f.programs[p] = &program{source: source, status: opencl.BuildNone}
	return p, nil
}

func (f *Fake) BuildProgram(prog opencl.Program, devices []opencl.DeviceID, options string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("clBuildProgram"); err != nil {
		if p, ok := f.programs[prog]; ok {
			p.status = opencl.BuildError
		}
		return err
	}
	p, ok := f.programs[prog]
	if !ok {
		return fail("clBuildProgram", opencl.InvalidProgram)
	}
	for _, d := range devices {
		if _, ok := f.devices[d]; !ok {
			return fail("clBuildProgram", opencl.InvalidDevice)
		}
	}
	status, log, code := opencl.BuildSuccess, "", opencl.Success
	if f.Build != nil {
		status, log, code = f.Build(p.source, options)
	}
	p.status, p.log = status, log
	if code != opencl.Success {
		return fail("clBuildProgram", code)
	}
	return nil
}

func (f *Fake) GetProgramBuildInfo(prog opencl.Program, device opencl.DeviceID, param opencl.ProgramBuildParam) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("clGetProgramBuildInfo"); err != nil {
		return nil, err
	}
	p, ok := f.programs[prog]
	if !ok {
		return nil, fail("clGetProgramBuildInfo", opencl.InvalidProgram)
	}
	switch param {
	case opencl.ProgramBuildStatus:
		return U32(uint32(p.status)), nil
	case opencl.ProgramBuildLog:
		return String(p.log), nil
	default:
		return nil, fail("clGetProgramBuildInfo", opencl.InvalidValue)
	}
}

func (f *Fake) ReleaseProgram(prog opencl.Program) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("clReleaseProgram"); err != nil {
		return err
	}
	if _, ok := f.programs[prog]; !ok {
		return fail("clReleaseProgram", opencl.InvalidProgram)
	}
	delete(f.programs, prog)
	return nil
}

func (f *Fake) CreateKernel(prog opencl.Program, name string) (opencl.Kernel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("clCreateKernel"); err != nil {
		return 0, err
	}
	p, ok := f.programs[prog]
	if !ok {
		return 0, fail("clCreateKernel", opencl.InvalidProgram)
	}
	if p.status != opencl.BuildSuccess {
		return 0, fail("clCreateKernel", opencl.InvalidProgramExecutable)
	}
	if !strings.Contains(p.source, name+"(") {
		return 0, fail("clCreateKernel", opencl.InvalidKernelName)
	}
	k := opencl.Kernel(f.handle())
	f.kernels[k] = &kernel{program: p, name: name, args: map[int]opencl.Mem{}}
	return k, nil
}

func (f *Fake) SetKernelArg(k opencl.Kernel, index int, mem opencl.Mem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("clSetKernelArg"); err != nil {
		return err
	}
	kn, ok := f.kernels[k]
	if !ok {
		return fail("clSetKernelArg", opencl.InvalidKernel)
	}
	if _, ok := f.mems[mem]; !ok {
		return fail("clSetKernelArg", opencl.InvalidMemObject)
	}
	kn.args[index] = mem
	return nil
}

func (f *Fake) ReleaseKernel(k opencl.Kernel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("clReleaseKernel"); err != nil {
		return err
	}
	if _, ok := f.kernels[k]; !ok {
		return fail("clReleaseKernel", opencl.InvalidKernel)
	}
	delete(f.kernels, k)
	return nil
}

// EnqueueNDRangeKernel runs kernel_test on the host: every element i of
// argument 0, read as uint32, becomes global_size - i.
func (f *Fake) EnqueueNDRangeKernel(queue opencl.CommandQueue, k opencl.Kernel, global, local []int, wait []opencl.Event) (opencl.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	const call = "clEnqueueNDRangeKernel"
	if err := f.enter(call); err != nil {
		return 0, err
	}
	if _, ok := f.queues[queue]; !ok {
		return 0, fail(call, opencl.InvalidCommandQueue)
	}
	kn, ok := f.kernels[k]
	if !ok {
		return 0, fail(call, opencl.InvalidKernel)
	}
	if len(global) != 1 {
		return 0, fail(call, opencl.InvalidWorkDimension)
	}
	if len(local) == 1 && (local[0] <= 0 || global[0]%local[0] != 0) {
		return 0, fail(call, opencl.InvalidWorkGroupSize)
	}
	mem, ok := kn.args[0]
	if !ok {
		return 0, fail(call, opencl.InvalidKernelArgs)
	}
	if err := f.checkWaitList(call, wait); err != nil {
		return 0, err
	}
	b := f.mems[mem]
	n := global[0]
	if len(b.data) < n*4 {
		return 0, fail(call, opencl.InvalidKernelArgs)
	}
	for i := 0; i < n; i++ {
		binary.NativeEndian.PutUint32(b.data[i*4:], uint32(n-i))
	}
	d := f.KernelNanos
	if d == 0 {
		d = DefaultKernelNanos
	}
	return f.newEvent(queue, d), nil
}

// SetEventCallback invokes fn on a new goroutine, as a driver thread would.
func (f *Fake) SetEventCallback(ev opencl.Event, fn func(opencl.Status)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("clSetEventCallback"); err != nil {
		return err
	}
	if _, ok := f.events[ev]; !ok {
		return fail("clSetEventCallback", opencl.InvalidEvent)
	}
	if !f.HoldCallbacks {
		go fn(f.CallbackStatus)
	}
	return nil
}

func (f *Fake) GetEventProfilingInfo(ev opencl.Event, param opencl.ProfilingParam) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("clGetEventProfilingInfo"); err != nil {
		return 0, err
	}
	e, ok := f.events[ev]
	if !ok {
		return 0, fail("clGetEventProfilingInfo", opencl.InvalidEvent)
	}
	if !e.profiling {
		return 0, fail("clGetEventProfilingInfo", opencl.ProfilingInfoNotAvailable)
	}
	switch param {
	case opencl.ProfilingQueued, opencl.ProfilingSubmit, opencl.ProfilingStart:
		return e.start, nil
	case opencl.ProfilingEnd:
		return e.end, nil
	default:
		return 0, fail("clGetEventProfilingInfo", opencl.InvalidValue)
	}
}

func (f *Fake) WaitForEvents(events []opencl.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("clWaitForEvents"); err != nil {
		return err
	}
	if len(events) == 0 {
		return fail("clWaitForEvents", opencl.InvalidValue)
	}
	for _, ev := range events {
		if _, ok := f.events[ev]; !ok {
			return fail("clWaitForEvents", opencl.InvalidEvent)
		}
	}
	return nil
}

func (f *Fake) ReleaseEvent(ev opencl.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("clReleaseEvent"); err != nil {
		return err
	}
	if _, ok := f.events[ev]; !ok {
		return fail("clReleaseEvent", opencl.InvalidEvent)
	}
	delete(f.events, ev)
	return nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
