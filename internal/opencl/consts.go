package opencl

// PlatformParam selects a clGetPlatformInfo attribute.
type PlatformParam uint32

const (
	PlatformProfile    PlatformParam = 0x0900
	PlatformVersion    PlatformParam = 0x0901
	PlatformName       PlatformParam = 0x0902
	PlatformVendor     PlatformParam = 0x0903
	PlatformExtensions PlatformParam = 0x0904
)

// DeviceParam selects a clGetDeviceInfo attribute.
type DeviceParam uint32

const (
	DeviceTypeParam                  DeviceParam = 0x1000
	DeviceVendorID                   DeviceParam = 0x1001
	DeviceMaxComputeUnits            DeviceParam = 0x1002
	DeviceMaxWorkItemDimensions      DeviceParam = 0x1003
	DeviceMaxWorkGroupSize           DeviceParam = 0x1004
	DeviceMaxWorkItemSizes           DeviceParam = 0x1005
	DevicePreferredVectorWidthChar   DeviceParam = 0x1006
	DevicePreferredVectorWidthShort  DeviceParam = 0x1007
	DevicePreferredVectorWidthInt    DeviceParam = 0x1008
	DevicePreferredVectorWidthLong   DeviceParam = 0x1009
	DevicePreferredVectorWidthFloat  DeviceParam = 0x100A
	DevicePreferredVectorWidthDouble DeviceParam = 0x100B
	DeviceMaxClockFrequency          DeviceParam = 0x100C
	DeviceAddressBits                DeviceParam = 0x100D
	DeviceMaxReadImageArgs           DeviceParam = 0x100E
	DeviceMaxWriteImageArgs          DeviceParam = 0x100F
	DeviceMaxMemAllocSize            DeviceParam = 0x1010
	DeviceImage2DMaxWidth            DeviceParam = 0x1011
	DeviceImage2DMaxHeight           DeviceParam = 0x1012
	DeviceImage3DMaxWidth            DeviceParam = 0x1013
	DeviceImage3DMaxHeight           DeviceParam = 0x1014
	DeviceImage3DMaxDepth            DeviceParam = 0x1015
	DeviceImageSupport               DeviceParam = 0x1016
	DeviceMaxParameterSize           DeviceParam = 0x1017
	DeviceMaxSamplers                DeviceParam = 0x1018
	DeviceMemBaseAddrAlign           DeviceParam = 0x1019
	DeviceMinDataTypeAlignSize       DeviceParam = 0x101A
	DeviceSingleFPConfig             DeviceParam = 0x101B
	DeviceGlobalMemCacheType         DeviceParam = 0x101C
	DeviceGlobalMemCachelineSize     DeviceParam = 0x101D
	DeviceGlobalMemCacheSize         DeviceParam = 0x101E
	DeviceGlobalMemSize              DeviceParam = 0x101F
	DeviceMaxConstantBufferSize      DeviceParam = 0x1020
	DeviceMaxConstantArgs            DeviceParam = 0x1021
	DeviceLocalMemType               DeviceParam = 0x1022
	DeviceLocalMemSize               DeviceParam = 0x1023
	DeviceErrorCorrectionSupport     DeviceParam = 0x1024
	DeviceProfilingTimerResolution   DeviceParam = 0x1025
	DeviceEndianLittle               DeviceParam = 0x1026
	DeviceAvailable                  DeviceParam = 0x1027
	DeviceCompilerAvailable          DeviceParam = 0x1028
	DeviceExecutionCapabilities      DeviceParam = 0x1029
	DeviceQueueProperties            DeviceParam = 0x102A
	DeviceName                       DeviceParam = 0x102B
	DeviceVendor                     DeviceParam = 0x102C
	DriverVersion                    DeviceParam = 0x102D
	DeviceProfile                    DeviceParam = 0x102E
	DeviceVersion                    DeviceParam = 0x102F
	DeviceExtensions                 DeviceParam = 0x1030
	DevicePlatform                   DeviceParam = 0x1031
	DeviceDoubleFPConfig             DeviceParam = 0x1032
	DeviceHalfFPConfig               DeviceParam = 0x1033
	DevicePreferredVectorWidthHalf   DeviceParam = 0x1034
	DeviceHostUnifiedMemory          DeviceParam = 0x1035
	DeviceNativeVectorWidthChar      DeviceParam = 0x1036
	DeviceNativeVectorWidthShort     DeviceParam = 0x1037
	DeviceNativeVectorWidthInt       DeviceParam = 0x1038
	DeviceNativeVectorWidthLong      DeviceParam = 0x1039
	DeviceNativeVectorWidthFloat     DeviceParam = 0x103A
	DeviceNativeVectorWidthDouble    DeviceParam = 0x103B
	DeviceNativeVectorWidthHalf      DeviceParam = 0x103C
	DeviceOpenCLCVersion             DeviceParam = 0x103D
)

// DeviceType is the cl_device_type bit set.
type DeviceType uint64

const (
	DeviceTypeDefault     DeviceType = 1 << 0
	DeviceTypeCPU         DeviceType = 1 << 1
	DeviceTypeGPU         DeviceType = 1 << 2
	DeviceTypeAccelerator DeviceType = 1 << 3
	DeviceTypeAll         DeviceType = 0xFFFFFFFF
)

// FPConfig is the cl_device_fp_config bit set.
type FPConfig uint64

const (
	FPDenorm         FPConfig = 1 << 0
	FPInfNaN         FPConfig = 1 << 1
	FPRoundToNearest FPConfig = 1 << 2
	FPRoundToZero    FPConfig = 1 << 3
	FPRoundToInf     FPConfig = 1 << 4
	FPFMA            FPConfig = 1 << 5
)

// ExecCapabilities is the cl_device_exec_capabilities bit set.
type ExecCapabilities uint64

const (
	ExecKernel       ExecCapabilities = 1 << 0
	ExecNativeKernel ExecCapabilities = 1 << 1
)

// MemCacheType is cl_device_mem_cache_type.
type MemCacheType uint32

const (
	CacheNone      MemCacheType = 0
	CacheReadOnly  MemCacheType = 1
	CacheReadWrite MemCacheType = 2
)

// LocalMemType is cl_device_local_mem_type.
type LocalMemType uint32

const (
	LocalMemLocal  LocalMemType = 1
	LocalMemGlobal LocalMemType = 2
)

// QueueProperties is the cl_command_queue_properties bit set.
type QueueProperties uint64

const (
	QueueOutOfOrderExec QueueProperties = 1 << 0
	QueueProfiling      QueueProperties = 1 << 1
)

// MemFlags is the cl_mem_flags bit set.
type MemFlags uint64

const (
	MemReadWrite    MemFlags = 1 << 0
	MemWriteOnly    MemFlags = 1 << 1
	MemReadOnly     MemFlags = 1 << 2
	MemUseHostPtr   MemFlags = 1 << 3
	MemAllocHostPtr MemFlags = 1 << 4
	MemCopyHostPtr  MemFlags = 1 << 5
)

// BuildStatus is cl_build_status.
type BuildStatus int32

const (
	BuildSuccess    BuildStatus = 0
	BuildNone       BuildStatus = -1
	BuildError      BuildStatus = -2
	BuildInProgress BuildStatus = -3
)

func (s BuildStatus) String() string {
	switch s {
	case BuildSuccess:
		return "build success"
	case BuildNone:
		return "build none"
	case BuildError:
		return "build error"
	case BuildInProgress:
		return "build in progress"
	default:
		return "unknown"
	}
}

// ProgramBuildParam selects a clGetProgramBuildInfo attribute.
type ProgramBuildParam uint32

const (
	ProgramBuildStatus ProgramBuildParam = 0x1181
	ProgramBuildLog    ProgramBuildParam = 0x1183
)

// ProfilingParam selects a clGetEventProfilingInfo attribute.
type ProfilingParam uint32

const (
	ProfilingQueued ProfilingParam = 0x1280
	ProfilingSubmit ProfilingParam = 0x1281
	ProfilingStart  ProfilingParam = 0x1282
	ProfilingEnd    ProfilingParam = 0x1283
)

// Complete is the CL_COMPLETE execution status delivered to event callbacks.
const Complete Status = 0
