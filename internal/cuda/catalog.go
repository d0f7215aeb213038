package cuda

import "strconv"

// AttrKind selects how an attribute value is printed.
type AttrKind int

const (
	KindInt AttrKind = iota
	KindBytes
	KindKB
	KindMB
	KindKHz
	KindComputeMode
	KindBool
)

// Format renders v the way nvinfo prints it.
func (k AttrKind) Format(v int32) string {
	n := strconv.Itoa(int(v))
	switch k {
	case KindKB:
		return n + "kB"
	case KindMB:
		return n + "MB"
	case KindKHz:
		return n + "kHZ"
	case KindComputeMode:
		return ComputeMode(v).String()
	case KindBool:
		return strconv.FormatBool(v != 0)
	default:
		return n
	}
}

// CatalogEntry is one attribute reported by nvinfo.
type CatalogEntry struct {
	Attr  DeviceAttribute
	Kind  AttrKind
	Label string
}

// Catalog lists the device attributes in report order.
var Catalog = []CatalogEntry{
	{AttrMaxThreadsPerBlock, KindInt, "Max # of threads per block"},
	{AttrMaxBlockDimX, KindInt, "Max block dimension X"},
	{AttrMaxBlockDimY, KindInt, "Max block dimension Y"},
	{AttrMaxBlockDimZ, KindInt, "Max block dimension Z"},
	{AttrMaxGridDimX, KindInt, "Max grid dimension X"},
	{AttrMaxGridDimY, KindInt, "Max grid dimension Y"},
	{AttrMaxGridDimZ, KindInt, "Max grid dimension Z"},
	{AttrMaxSharedMemoryPerBlock, KindBytes, "Max shared memory per block in bytes"},
	{AttrTotalConstantMemory, KindBytes, "Total constant memory"},
	{AttrWarpSize, KindInt, "Warp size"},
	{AttrMaxPitch, KindInt, "Max pitch"},
	{AttrMaxRegistersPerBlock, KindInt, "Max registers per block"},
	{AttrClockRate, KindKHz, "Clock rate"},
	{AttrTextureAlignment, KindInt, "Texture alignment"},
	{AttrMultiprocessorCount, KindInt, "Number of multiprocessors"},
	{AttrKernelExecTimeout, KindBool, "Has kernel execution timeout"},
	{AttrIntegrated, KindBool, "Host integrated memory"},
	{AttrCanMapHostMemory, KindBool, "Host memory mapping to device"},
	{AttrComputeMode, KindComputeMode, "Compute mode"},
	{AttrSurfaceAlignment, KindInt, "Surface alignment"},
	{AttrConcurrentKernels, KindBool, "Concurrent kernels"},
	{AttrECCEnabled, KindBool, "ECC memory is supported"},
	{AttrPCIBusID, KindInt, "PCI Bus ID"},
	{AttrPCIDeviceID, KindInt, "PCI Device ID"},
	{AttrTCCDriver, KindBool, "TCC driver model"},
	{AttrMemoryClockRate, KindKHz, "Peak memory clock rate"},
	{AttrGlobalMemoryBusWidth, KindInt, "Global memory bus width"},
	{AttrL2CacheSize, KindBytes, "L2 cache size"},
	{AttrMaxThreadsPerMultiprocessor, KindInt, "Max threads per multiprocessor"},
	{AttrAsyncEngineCount, KindInt, "Number of asynchronous engines"},
	{AttrUnifiedAddressing, KindBool, "Unified address space support"},
	{AttrPCIDomainID, KindInt, "PCI domain ID"},
	{AttrComputeCapabilityMajor, KindInt, "Compute Capability Major"},
	{AttrComputeCapabilityMinor, KindInt, "Compute Capability Minor"},
	{AttrStreamPrioritiesSupported, KindBool, "Stream priorities supported"},
	{AttrGlobalL1CacheSupported, KindBool, "L1 cache on global memory"},
	{AttrLocalL1CacheSupported, KindBool, "L1 cache on local memory"},
	{AttrMaxSharedMemoryPerMultiprocessor, KindBytes, "Max shared memory per multiprocessor"},
	{AttrMaxRegistersPerMultiprocessor, KindInt, "Max # of 32bit registers per multiprocessor"},
	{AttrManagedMemory, KindBool, "Can allocate managed memory"},
	{AttrMultiGPUBoard, KindBool, "Device is on a multi-GPU board"},
	{AttrMultiGPUBoardGroupID, KindInt, "Unique id of the device if multi-GPU board"},
}
