package cuda

// DeviceAttribute is a CUdevice_attribute.
type DeviceAttribute int32

const (
	AttrMaxThreadsPerBlock               DeviceAttribute = 1
	AttrMaxBlockDimX                     DeviceAttribute = 2
	AttrMaxBlockDimY                     DeviceAttribute = 3
	AttrMaxBlockDimZ                     DeviceAttribute = 4
	AttrMaxGridDimX                      DeviceAttribute = 5
	AttrMaxGridDimY                      DeviceAttribute = 6
	AttrMaxGridDimZ                      DeviceAttribute = 7
	AttrMaxSharedMemoryPerBlock          DeviceAttribute = 8
	AttrTotalConstantMemory              DeviceAttribute = 9
	AttrWarpSize                         DeviceAttribute = 10
	AttrMaxPitch                         DeviceAttribute = 11
	AttrMaxRegistersPerBlock             DeviceAttribute = 12
	AttrClockRate                        DeviceAttribute = 13
	AttrTextureAlignment                 DeviceAttribute = 14
	AttrMultiprocessorCount              DeviceAttribute = 16
	AttrKernelExecTimeout                DeviceAttribute = 17
	AttrIntegrated                       DeviceAttribute = 18
	AttrCanMapHostMemory                 DeviceAttribute = 19
	AttrComputeMode                      DeviceAttribute = 20
	AttrSurfaceAlignment                 DeviceAttribute = 30
	AttrConcurrentKernels                DeviceAttribute = 31
	AttrECCEnabled                       DeviceAttribute = 32
	AttrPCIBusID                         DeviceAttribute = 33
	AttrPCIDeviceID                      DeviceAttribute = 34
	AttrTCCDriver                        DeviceAttribute = 35
	AttrMemoryClockRate                  DeviceAttribute = 36
	AttrGlobalMemoryBusWidth             DeviceAttribute = 37
	AttrL2CacheSize                      DeviceAttribute = 38
	AttrMaxThreadsPerMultiprocessor      DeviceAttribute = 39
	AttrAsyncEngineCount                 DeviceAttribute = 40
	AttrUnifiedAddressing                DeviceAttribute = 41
	AttrPCIDomainID                      DeviceAttribute = 50
	AttrComputeCapabilityMajor           DeviceAttribute = 75
	AttrComputeCapabilityMinor           DeviceAttribute = 76
	AttrStreamPrioritiesSupported        DeviceAttribute = 78
	AttrGlobalL1CacheSupported           DeviceAttribute = 79
	AttrLocalL1CacheSupported            DeviceAttribute = 80
	AttrMaxSharedMemoryPerMultiprocessor DeviceAttribute = 81
	AttrMaxRegistersPerMultiprocessor    DeviceAttribute = 82
	AttrManagedMemory                    DeviceAttribute = 83
	AttrMultiGPUBoard                    DeviceAttribute = 84
	AttrMultiGPUBoardGroupID             DeviceAttribute = 85
)

// ComputeMode is a CUcomputemode.
type ComputeMode int32

const (
	ComputeModeDefault          ComputeMode = 0
	ComputeModeExclusive        ComputeMode = 1
	ComputeModeProhibited       ComputeMode = 2
	ComputeModeExclusiveProcess ComputeMode = 3
)

func (m ComputeMode) String() string {
	switch m {
	case ComputeModeDefault:
		return "default"
	case ComputeModeExclusive:
		return "exclusive"
	case ComputeModeProhibited:
		return "prohibited"
	case ComputeModeExclusiveProcess:
		return "exclusive process"
	default:
		return "unknown"
	}
}

// CtxFlags are cuCtxCreate flags.
type CtxFlags uint32

const (
	CtxSchedAuto         CtxFlags = 0x00
	CtxSchedSpin         CtxFlags = 0x01
	CtxSchedYield        CtxFlags = 0x02
	CtxSchedBlockingSync CtxFlags = 0x04
	CtxMapHost           CtxFlags = 0x08
)

// StreamFlags are cuStreamCreate flags.
type StreamFlags uint32

const (
	StreamDefault     StreamFlags = 0x0
	StreamNonBlocking StreamFlags = 0x1
)
