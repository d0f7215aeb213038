package cuda

import (
	"fmt"
	"strconv"
)

// Result is a CUresult return code. Every non-zero Result is an error.
type Result int32

const (
	Success                          Result = 0
	ErrorInvalidValue                Result = 1
	ErrorOutOfMemory                 Result = 2
	ErrorNotInitialized              Result = 3
	ErrorDeinitialized               Result = 4
	ErrorProfilerDisabled            Result = 5
	ErrorProfilerNotInitialized      Result = 6
	ErrorProfilerAlreadyStarted      Result = 7
	ErrorProfilerAlreadyStopped      Result = 8
	ErrorStubLibrary                 Result = 34
	ErrorDeviceUnavailable           Result = 46
	ErrorNoDevice                    Result = 100
	ErrorInvalidDevice               Result = 101
	ErrorDeviceNotLicensed           Result = 102
	ErrorInvalidImage                Result = 200
	ErrorInvalidContext              Result = 201
	ErrorContextAlreadyCurrent       Result = 202
	ErrorMapFailed                   Result = 205
	ErrorUnmapFailed                 Result = 206
	ErrorArrayIsMapped               Result = 207
	ErrorAlreadyMapped               Result = 208
	ErrorNoBinaryForGPU              Result = 209
	ErrorAlreadyAcquired             Result = 210
	ErrorNotMapped                   Result = 211
	ErrorNotMappedAsArray            Result = 212
	ErrorNotMappedAsPointer          Result = 213
	ErrorECCUncorrectable            Result = 214
	ErrorUnsupportedLimit            Result = 215
	ErrorContextAlreadyInUse         Result = 216
	ErrorPeerAccessUnsupported       Result = 217
	ErrorInvalidPTX                  Result = 218
	ErrorInvalidGraphicsContext      Result = 219
	ErrorNVLinkUncorrectable         Result = 220
	ErrorJITCompilerNotFound         Result = 221
	ErrorInvalidSource               Result = 300
	ErrorFileNotFound                Result = 301
	ErrorSharedObjectSymbolNotFound  Result = 302
	ErrorSharedObjectInitFailed      Result = 303
	ErrorOperatingSystem             Result = 304
	ErrorInvalidHandle               Result = 400
	ErrorIllegalState                Result = 401
	ErrorNotFound                    Result = 500
	ErrorNotReady                    Result = 600
	ErrorIllegalAddress              Result = 700
	ErrorLaunchOutOfResources        Result = 701
	ErrorLaunchTimeout               Result = 702
	ErrorLaunchIncompatibleTexturing Result = 703
	ErrorPeerAccessAlreadyEnabled    Result = 704
	ErrorPeerAccessNotEnabled        Result = 705
	ErrorPrimaryContextActive        Result = 708
	ErrorContextIsDestroyed          Result = 709
	ErrorAssert                      Result = 710
	ErrorTooManyPeers                Result = 711
	ErrorHostMemoryAlreadyRegistered Result = 712
	ErrorHostMemoryNotRegistered     Result = 713
	ErrorHardwareStackError          Result = 714
	ErrorIllegalInstruction          Result = 715
	ErrorMisalignedAddress           Result = 716
	ErrorInvalidAddressSpace         Result = 717
	ErrorInvalidPC                   Result = 718
	ErrorLaunchFailed                Result = 719
	ErrorCooperativeLaunchTooLarge   Result = 720
	ErrorNotPermitted                Result = 800
	ErrorNotSupported                Result = 801
	ErrorSystemNotReady              Result = 802
	ErrorSystemDriverMismatch        Result = 803
	ErrorUnknown                     Result = 999
)

type resultText struct {
	name, description string
}

var resultTexts = map[Result]resultText{
	Success:                          {"CUDA_SUCCESS", "no error"},
	ErrorInvalidValue:                {"CUDA_ERROR_INVALID_VALUE", "invalid argument"},
	ErrorOutOfMemory:                 {"CUDA_ERROR_OUT_OF_MEMORY", "out of memory"},
	ErrorNotInitialized:              {"CUDA_ERROR_NOT_INITIALIZED", "initialization error"},
	ErrorDeinitialized:               {"CUDA_ERROR_DEINITIALIZED", "driver shutting down"},
	ErrorProfilerDisabled:            {"CUDA_ERROR_PROFILER_DISABLED", "profiler disabled while using an external profiling tool"},
	ErrorProfilerNotInitialized:      {"CUDA_ERROR_PROFILER_NOT_INITIALIZED", "profiler not initialized"},
	ErrorProfilerAlreadyStarted:      {"CUDA_ERROR_PROFILER_ALREADY_STARTED", "profiler already started"},
	ErrorProfilerAlreadyStopped:      {"CUDA_ERROR_PROFILER_ALREADY_STOPPED", "profiler already stopped"},
	ErrorStubLibrary:                 {"CUDA_ERROR_STUB_LIBRARY", "CUDA driver is a stub library"},
	ErrorDeviceUnavailable:           {"CUDA_ERROR_DEVICE_UNAVAILABLE", "CUDA-capable device(s) is/are busy or unavailable"},
	ErrorNoDevice:                    {"CUDA_ERROR_NO_DEVICE", "no CUDA-capable device is detected"},
	ErrorInvalidDevice:               {"CUDA_ERROR_INVALID_DEVICE", "invalid device ordinal"},
	ErrorDeviceNotLicensed:           {"CUDA_ERROR_DEVICE_NOT_LICENSED", "device doesn't have valid Grid license"},
	ErrorInvalidImage:                {"CUDA_ERROR_INVALID_IMAGE", "device kernel image is invalid"},
	ErrorInvalidContext:              {"CUDA_ERROR_INVALID_CONTEXT", "invalid device context"},
	ErrorContextAlreadyCurrent:       {"CUDA_ERROR_CONTEXT_ALREADY_CURRENT", "context already current"},
	ErrorMapFailed:                   {"CUDA_ERROR_MAP_FAILED", "mapping of buffer object failed"},
	ErrorUnmapFailed:                 {"CUDA_ERROR_UNMAP_FAILED", "unmapping of buffer object failed"},
	ErrorArrayIsMapped:               {"CUDA_ERROR_ARRAY_IS_MAPPED", "array is mapped"},
	ErrorAlreadyMapped:               {"CUDA_ERROR_ALREADY_MAPPED", "resource already mapped"},
	ErrorNoBinaryForGPU:              {"CUDA_ERROR_NO_BINARY_FOR_GPU", "no kernel image is available for execution on the device"},
	ErrorAlreadyAcquired:             {"CUDA_ERROR_ALREADY_ACQUIRED", "resource already acquired"},
	ErrorNotMapped:                   {"CUDA_ERROR_NOT_MAPPED", "resource not mapped"},
	ErrorNotMappedAsArray:            {"CUDA_ERROR_NOT_MAPPED_AS_ARRAY", "resource not mapped as array"},
	ErrorNotMappedAsPointer:          {"CUDA_ERROR_NOT_MAPPED_AS_POINTER", "resource not mapped as pointer"},
	ErrorECCUncorrectable:            {"CUDA_ERROR_ECC_UNCORRECTABLE", "uncorrectable ECC error encountered"},
	ErrorUnsupportedLimit:            {"CUDA_ERROR_UNSUPPORTED_LIMIT", "limit is not supported on this architecture"},
	ErrorContextAlreadyInUse:         {"CUDA_ERROR_CONTEXT_ALREADY_IN_USE", "exclusive-thread device already in use by a different thread"},
	ErrorPeerAccessUnsupported:       {"CUDA_ERROR_PEER_ACCESS_UNSUPPORTED", "peer access is not supported between these two devices"},
	ErrorInvalidPTX:                  {"CUDA_ERROR_INVALID_PTX", "a PTX JIT compilation failed"},
	ErrorInvalidGraphicsContext:      {"CUDA_ERROR_INVALID_GRAPHICS_CONTEXT", "invalid OpenGL or DirectX context"},
	ErrorNVLinkUncorrectable:         {"CUDA_ERROR_NVLINK_UNCORRECTABLE", "uncorrectable NVLink error detected during the execution"},
	ErrorJITCompilerNotFound:         {"CUDA_ERROR_JIT_COMPILER_NOT_FOUND", "PTX JIT compiler library not found"},
	ErrorInvalidSource:               {"CUDA_ERROR_INVALID_SOURCE", "device kernel image is invalid"},
	ErrorFileNotFound:                {"CUDA_ERROR_FILE_NOT_FOUND", "file not found"},
	ErrorSharedObjectSymbolNotFound:  {"CUDA_ERROR_SHARED_OBJECT_SYMBOL_NOT_FOUND", "shared object symbol not found"},
	ErrorSharedObjectInitFailed:      {"CUDA_ERROR_SHARED_OBJECT_INIT_FAILED", "shared object initialization failed"},
	ErrorOperatingSystem:             {"CUDA_ERROR_OPERATING_SYSTEM", "OS call failed or operation not supported on this OS"},
	ErrorInvalidHandle:               {"CUDA_ERROR_INVALID_HANDLE", "invalid resource handle"},
	ErrorIllegalState:                {"CUDA_ERROR_ILLEGAL_STATE", "the operation cannot be performed in the present state"},
	ErrorNotFound:                    {"CUDA_ERROR_NOT_FOUND", "named symbol not found"},
	ErrorNotReady:                    {"CUDA_ERROR_NOT_READY", "device not ready"},
	ErrorIllegalAddress:              {"CUDA_ERROR_ILLEGAL_ADDRESS", "an illegal memory access was encountered"},
	ErrorLaunchOutOfResources:        {"CUDA_ERROR_LAUNCH_OUT_OF_RESOURCES", "too many resources requested for launch"},
	ErrorLaunchTimeout:               {"CUDA_ERROR_LAUNCH_TIMEOUT", "the launch timed out and was terminated"},
	ErrorLaunchIncompatibleTexturing: {"CUDA_ERROR_LAUNCH_INCOMPATIBLE_TEXTURING", "launch uses incompatible texturing mode"},
	ErrorPeerAccessAlreadyEnabled:    {"CUDA_ERROR_PEER_ACCESS_ALREADY_ENABLED", "peer access is already enabled"},
	ErrorPeerAccessNotEnabled:        {"CUDA_ERROR_PEER_ACCESS_NOT_ENABLED", "peer access has not been enabled"},
	ErrorPrimaryContextActive:        {"CUDA_ERROR_PRIMARY_CONTEXT_ACTIVE", "cannot set while device is active in this process"},
	ErrorContextIsDestroyed:          {"CUDA_ERROR_CONTEXT_IS_DESTROYED", "context is destroyed"},
	ErrorAssert:                      {"CUDA_ERROR_ASSERT", "device-side assert triggered"},
	ErrorTooManyPeers:                {"CUDA_ERROR_TOO_MANY_PEERS", "peer mapping resources exhausted"},
	ErrorHostMemoryAlreadyRegistered: {"CUDA_ERROR_HOST_MEMORY_ALREADY_REGISTERED", "part or all of the requested memory range is already mapped"},
	ErrorHostMemoryNotRegistered:     {"CUDA_ERROR_HOST_MEMORY_NOT_REGISTERED", "pointer does not correspond to a registered memory region"},
	ErrorHardwareStackError:          {"CUDA_ERROR_HARDWARE_STACK_ERROR", "hardware stack error"},
	ErrorIllegalInstruction:          {"CUDA_ERROR_ILLEGAL_INSTRUCTION", "an illegal instruction was encountered"},
	ErrorMisalignedAddress:           {"CUDA_ERROR_MISALIGNED_ADDRESS", "misaligned address"},
	ErrorInvalidAddressSpace:         {"CUDA_ERROR_INVALID_ADDRESS_SPACE", "operation not supported on global/shared address space"},
	ErrorInvalidPC:                   {"CUDA_ERROR_INVALID_PC", "invalid program counter"},
	ErrorLaunchFailed:                {"CUDA_ERROR_LAUNCH_FAILED", "unspecified launch failure"},
	ErrorCooperativeLaunchTooLarge:   {"CUDA_ERROR_COOPERATIVE_LAUNCH_TOO_LARGE", "too many blocks in cooperative launch"},
	ErrorNotPermitted:                {"CUDA_ERROR_NOT_PERMITTED", "operation not permitted"},
	ErrorNotSupported:                {"CUDA_ERROR_NOT_SUPPORTED", "operation not supported"},
	ErrorSystemNotReady:              {"CUDA_ERROR_SYSTEM_NOT_READY", "system not yet initialized"},
	ErrorSystemDriverMismatch:        {"CUDA_ERROR_SYSTEM_DRIVER_MISMATCH", "system has unsupported display driver / cuda driver combination"},
	ErrorUnknown:                     {"CUDA_ERROR_UNKNOWN", "unknown error"},
}

// Name returns the symbolic name of the result code.
func (r Result) Name() string {
	if t, ok := resultTexts[r]; ok {
		return t.name
	}
	return "CUDA_ERROR_UNKNOWN"
}

// Description returns the driver's message for the result code.
func (r Result) Description() string {
	if t, ok := resultTexts[r]; ok {
		return t.description
	}
	return "cuda error = " + strconv.Itoa(int(r))
}

func (r Result) Error() string {
	return r.Name() + " (" + strconv.Itoa(int(r)) + ")"
}

func (r Result) String() string { return r.Name() }

// ErrorDescriber resolves result codes into the driver's name and message.
type ErrorDescriber interface {
	GetErrorName(r Result) (string, error)
	GetErrorString(r Result) (string, error)
}

// CallError is a failed driver call, carrying the name and message the
// driver reported for its result.
type CallError struct {
	Call   string
	Result Result
	Name   string
	Detail string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("failed on %s (%s:%s)", e.Call, e.Name, e.Detail)
}

func (e *CallError) Unwrap() error { return e.Result }

// NewCallError returns nil for Success. Otherwise it asks d for the name
// and message of r, falling back to the built-in table.
func NewCallError(d ErrorDescriber, call string, r Result) error {
	if r == Success {
		return nil
	}
	e := &CallError{Call: call, Result: r, Name: r.Name(), Detail: r.Description()}
	if d != nil {
		if name, err := d.GetErrorName(r); err == nil && name != "" {
			e.Name = name
		}
		if detail, err := d.GetErrorString(r); err == nil && detail != "" {
			e.Detail = detail
		}
	}
	return e
}
