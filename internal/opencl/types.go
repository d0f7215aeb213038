package opencl

import "strings"

// Platform holds the attributes gpuinfo prints for a platform.
type Platform struct {
	ID         PlatformID
	Index      int // 1-based
	Profile    string
	Version    string
	Name       string
	Vendor     string
	Extensions string
	Devices    []DeviceID
}

// VectorWidths holds per-type vector widths.
type VectorWidths struct {
	Char   uint32
	Short  uint32
	Int    uint32
	Long   uint32
	Float  uint32
	Double uint32
	Half   uint32
}

// Device holds the full attribute catalog of one OpenCL device.
type Device struct {
	ID    DeviceID
	Index int // 1-based

	Type                     DeviceType
	VendorID                 uint32
	Name                     string
	Vendor                   string
	Version                  string
	DriverVersion            string
	OpenCLCVersion           string
	Profile                  string
	Extensions               string
	Available                bool
	CompilerAvailable        bool
	AddressBits              uint32
	EndianLittle             bool
	ErrorCorrectionSupport   bool
	HostUnifiedMemory        bool
	ExecutionCapabilities    ExecCapabilities
	QueueProperties          QueueProperties
	SingleFPConfig           FPConfig
	DoubleFPConfig           FPConfig
	HalfFPConfig             FPConfig
	GlobalMemCacheSize       uint64
	GlobalMemCacheType       MemCacheType
	GlobalMemCachelineSize   uint32
	GlobalMemSize            uint64
	LocalMemSize             uint64
	LocalMemType             LocalMemType
	ImageSupport             bool
	Image2DMaxWidth          uint64
	Image2DMaxHeight         uint64
	Image3DMaxWidth          uint64
	Image3DMaxHeight         uint64
	Image3DMaxDepth          uint64
	MaxClockFrequency        uint32
	MaxComputeUnits          uint32
	MaxConstantArgs          uint32
	MaxConstantBufferSize    uint64
	MaxMemAllocSize          uint64
	MaxParameterSize         uint64
	MaxReadImageArgs         uint32
	MaxWriteImageArgs        uint32
	MaxSamplers              uint32
	MaxWorkGroupSize         uint64
	MaxWorkItemDimensions    uint32
	MaxWorkItemSizes         []uint64
	MemBaseAddrAlign         uint32
	MinDataTypeAlignSize     uint32
	NativeVectorWidth        VectorWidths
	PreferredVectorWidth     VectorWidths
	ProfilingTimerResolution uint64
}

// HasExtension reports whether ext appears in the device extension list.
func (d *Device) HasExtension(ext string) bool {
	return HasExtension(d.Extensions, ext)
}

// HasExtension reports whether ext appears in a space separated extension list.
func HasExtension(list, ext string) bool {
	for _, e := range strings.Fields(list) {
		if e == ext {
			return true
		}
	}
	return false
}

func (t DeviceType) String() string {
	switch t {
	case DeviceTypeCPU:
		return "CPU"
	case DeviceTypeGPU:
		return "GPU"
	case DeviceTypeAccelerator:
		return "Accelerator"
	case DeviceTypeDefault:
		return "Default"
	default:
		return "unknown"
	}
}

func (c FPConfig) String() string {
	return joinFlags(uint64(c), []flagName{
		{uint64(FPDenorm), "Denorm"},
		{uint64(FPInfNaN), "INF/NaN"},
		{uint64(FPRoundToNearest), "R/nearest"},
		{uint64(FPRoundToZero), "R/zero"},
		{uint64(FPRoundToInf), "R/INF"},
		{uint64(FPFMA), "FMA"},
	})
}

func (c ExecCapabilities) String() string {
	switch {
	case c&ExecKernel != 0 && c&ExecNativeKernel != 0:
		return "kernel, native kernel"
	case c&ExecKernel != 0:
		return "kernel"
	case c&ExecNativeKernel != 0:
		return "native kernel"
	default:
		return "none"
	}
}

func (t MemCacheType) String() string {
	switch t {
	case CacheNone:
		return "none"
	case CacheReadOnly:
		return "read-only"
	case CacheReadWrite:
		return "read-write"
	default:
		return "unknown"
	}
}

func (t LocalMemType) String() string {
	switch t {
	case LocalMemLocal:
		return "SRAM"
	case LocalMemGlobal:
		return "DRAM"
	default:
		return "unknown"
	}
}

func (p QueueProperties) String() string {
	return joinFlags(uint64(p), []flagName{
		{uint64(QueueOutOfOrderExec), "out-of-order execution"},
		{uint64(QueueProfiling), "profiling"},
	})
}

type flagName struct {
	bit  uint64
	name string
}

func joinFlags(v uint64, names []flagName) string {
	var parts []string
	for _, f := range names {
		if v&f.bit != 0 {
			parts = append(parts, f.name)
		}
	}
	return strings.Join(parts, ", ")
}
