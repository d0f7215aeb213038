package opencl

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unsafe"
)

const sizeofSizeT = int(unsafe.Sizeof(uintptr(0)))

// deviceCatalog lists every attribute QueryDevice fetches.
var deviceCatalog = []DeviceParam{
	DeviceAddressBits,
	DeviceAvailable,
	DeviceCompilerAvailable,
	DeviceDoubleFPConfig,
	DeviceEndianLittle,
	DeviceErrorCorrectionSupport,
	DeviceExecutionCapabilities,
	DeviceExtensions,
	DeviceGlobalMemCacheSize,
	DeviceGlobalMemCacheType,
	DeviceGlobalMemCachelineSize,
	DeviceGlobalMemSize,
	DeviceHalfFPConfig,
	DeviceHostUnifiedMemory,
	DeviceImageSupport,
	DeviceImage2DMaxHeight,
	DeviceImage2DMaxWidth,
	DeviceImage3DMaxDepth,
	DeviceImage3DMaxHeight,
	DeviceImage3DMaxWidth,
	DeviceLocalMemSize,
	DeviceLocalMemType,
	DeviceMaxClockFrequency,
	DeviceMaxComputeUnits,
	DeviceMaxConstantArgs,
	DeviceMaxConstantBufferSize,
	DeviceMaxMemAllocSize,
	DeviceMaxParameterSize,
	DeviceMaxReadImageArgs,
	DeviceMaxSamplers,
	DeviceMaxWorkGroupSize,
	DeviceMaxWorkItemDimensions,
	DeviceMaxWorkItemSizes,
	DeviceMaxWriteImageArgs,
	DeviceMemBaseAddrAlign,
	DeviceMinDataTypeAlignSize,
	DeviceName,
	DeviceNativeVectorWidthChar,
	DeviceNativeVectorWidthShort,
	DeviceNativeVectorWidthInt,
	DeviceNativeVectorWidthLong,
	DeviceNativeVectorWidthFloat,
	DeviceNativeVectorWidthDouble,
	DeviceNativeVectorWidthHalf,
	DeviceOpenCLCVersion,
	DevicePreferredVectorWidthChar,
	DevicePreferredVectorWidthShort,
	DevicePreferredVectorWidthInt,
	DevicePreferredVectorWidthLong,
	DevicePreferredVectorWidthFloat,
	DevicePreferredVectorWidthDouble,
	DevicePreferredVectorWidthHalf,
	DeviceProfile,
	DeviceProfilingTimerResolution,
	DeviceQueueProperties,
	DeviceSingleFPConfig,
	DeviceTypeParam,
	DeviceVendor,
	DeviceVendorID,
	DeviceVersion,
	DriverVersion,
}

// Devices without fp64/fp16 support may reject these queries with
// CL_INVALID_VALUE.
func optionalDeviceParam(p DeviceParam) bool {
	return p == DeviceDoubleFPConfig || p == DeviceHalfFPConfig
}

// Platforms enumerates every platform with its attributes and device IDs.
func Platforms(api API) ([]*Platform, error) {
	ids, err := api.GetPlatformIDs()
	if err != nil {
		return nil, err
	}
	platforms := make([]*Platform, 0, len(ids))
	for i, id := range ids {
		p, err := QueryPlatform(api, id)
		if err != nil {
			return nil, err
		}
		p.Index = i + 1
		platforms = append(platforms, p)
	}
	return platforms, nil
}

// QueryPlatform fetches the platform attributes and its device list.
func QueryPlatform(api API, id PlatformID) (*Platform, error) {
	p := &Platform{ID: id}
	fields := []struct {
		param PlatformParam
		dst   *string
	}{
		{PlatformProfile, &p.Profile},
		{PlatformVersion, &p.Version},
		{PlatformName, &p.Name},
		{PlatformVendor, &p.Vendor},
		{PlatformExtensions, &p.Extensions},
	}
	for _, f := range fields {
		b, err := api.GetPlatformInfo(id, f.param)
		if err != nil {
			return nil, err
		}
		*f.dst = cString(b)
	}

	devices, err := api.GetDeviceIDs(id, DeviceTypeAll)
	if err != nil {
		return nil, err
	}
	p.Devices = devices
	return p, nil
}

// QueryDevice fetches the full attribute catalog of a device.
func QueryDevice(api API, id DeviceID) (*Device, error) {
	d := &Device{ID: id}
	for _, param := range deviceCatalog {
		b, err := api.GetDeviceInfo(id, param)
		if err != nil {
			if optionalDeviceParam(param) && errors.Is(err, InvalidValue) {
				continue
			}
			return nil, err
		}
		d.set(param, b)
	}
	return d, nil
}

// DeviceString fetches a single string attribute.
func DeviceString(api API, id DeviceID, param DeviceParam) (string, error) {
	b, err := api.GetDeviceInfo(id, param)
	if err != nil {
		return "", err
	}
	return cString(b), nil
}

// Selection is a platform and one of its devices chosen by 1-based index.
type Selection struct {
	Platform   *Platform
	Device     DeviceID
	DeviceName string
}

// Select resolves 1-based platform and device indices.
func Select(api API, platformIndex, deviceIndex int) (*Selection, error) {
	ids, err := api.GetPlatformIDs()
	if err != nil {
		return nil, err
	}
	if platformIndex < 1 || platformIndex > len(ids) {
		return nil, fmt.Errorf("%w: opencl platform index %d did not exist", ErrNoPlatform, platformIndex)
	}
	p, err := QueryPlatform(api, ids[platformIndex-1])
	if err != nil {
		return nil, err
	}
	p.Index = platformIndex

	if deviceIndex < 1 || deviceIndex > len(p.Devices) {
		return nil, fmt.Errorf("%w: opencl device index %d did not exist", ErrNoDevice, deviceIndex)
	}
	dev := p.Devices[deviceIndex-1]
	name, err := DeviceString(api, dev, DeviceName)
	if err != nil {
		return nil, err
	}
	return &Selection{Platform: p, Device: dev, DeviceName: name}, nil
}

func (d *Device) set(param DeviceParam, b []byte) {
	switch param {
	case DeviceAddressBits:
		d.AddressBits = uint32(decodeUint(b))
	case DeviceAvailable:
		d.Available = decodeUint(b) != 0
	case DeviceCompilerAvailable:
		d.CompilerAvailable = decodeUint(b) != 0
	case DeviceDoubleFPConfig:
		d.DoubleFPConfig = FPConfig(decodeUint(b))
	case DeviceEndianLittle:
		d.EndianLittle = decodeUint(b) != 0
	case DeviceErrorCorrectionSupport:
		d.ErrorCorrectionSupport = decodeUint(b) != 0
	case DeviceExecutionCapabilities:
		d.ExecutionCapabilities = ExecCapabilities(decodeUint(b))
	case DeviceExtensions:
		d.Extensions = cString(b)
	case DeviceGlobalMemCacheSize:
		d.GlobalMemCacheSize = decodeUint(b)
	case DeviceGlobalMemCacheType:
		d.GlobalMemCacheType = MemCacheType(decodeUint(b))
	case DeviceGlobalMemCachelineSize:
		d.GlobalMemCachelineSize = uint32(decodeUint(b))
	case DeviceGlobalMemSize:
		d.GlobalMemSize = decodeUint(b)
	case DeviceHalfFPConfig:
		d.HalfFPConfig = FPConfig(decodeUint(b))
	case DeviceHostUnifiedMemory:
		d.HostUnifiedMemory = decodeUint(b) != 0
	case DeviceImageSupport:
		d.ImageSupport = decodeUint(b) != 0
	case DeviceImage2DMaxHeight:
		d.Image2DMaxHeight = decodeUint(b)
	case DeviceImage2DMaxWidth:
		d.Image2DMaxWidth = decodeUint(b)
	case DeviceImage3DMaxDepth:
		d.Image3DMaxDepth = decodeUint(b)
	case DeviceImage3DMaxHeight:
		d.Image3DMaxHeight = decodeUint(b)
	case DeviceImage3DMaxWidth:
		d.Image3DMaxWidth = decodeUint(b)
	case DeviceLocalMemSize:
		d.LocalMemSize = decodeUint(b)
	case DeviceLocalMemType:
		d.LocalMemType = LocalMemType(decodeUint(b))
	case DeviceMaxClockFrequency:
		d.MaxClockFrequency = uint32(decodeUint(b))
	case DeviceMaxComputeUnits:
		d.MaxComputeUnits = uint32(decodeUint(b))
	case DeviceMaxConstantArgs:
		d.MaxConstantArgs = uint32(decodeUint(b))
	case DeviceMaxConstantBufferSize:
		d.MaxConstantBufferSize = decodeUint(b)
	case DeviceMaxMemAllocSize:
		d.MaxMemAllocSize = decodeUint(b)
	case DeviceMaxParameterSize:
		d.MaxParameterSize = decodeUint(b)
	case DeviceMaxReadImageArgs:
		d.MaxReadImageArgs = uint32(decodeUint(b))
	case DeviceMaxSamplers:
		d.MaxSamplers = uint32(decodeUint(b))
	case DeviceMaxWorkGroupSize:
		d.MaxWorkGroupSize = decodeUint(b)
	case DeviceMaxWorkItemDimensions:
		d.MaxWorkItemDimensions = uint32(decodeUint(b))
	case DeviceMaxWorkItemSizes:
		d.MaxWorkItemSizes = decodeSizes(b)
	case DeviceMaxWriteImageArgs:
		d.MaxWriteImageArgs = uint32(decodeUint(b))
	case DeviceMemBaseAddrAlign:
		d.MemBaseAddrAlign = uint32(decodeUint(b))
	case DeviceMinDataTypeAlignSize:
		d.MinDataTypeAlignSize = uint32(decodeUint(b))
	case DeviceName:
		d.Name = cString(b)
	case DeviceNativeVectorWidthChar:
		d.NativeVectorWidth.Char = uint32(decodeUint(b))
	case DeviceNativeVectorWidthShort:
		d.NativeVectorWidth.Short = uint32(decodeUint(b))
	case DeviceNativeVectorWidthInt:
		d.NativeVectorWidth.Int = uint32(decodeUint(b))
	case DeviceNativeVectorWidthLong:
		d.NativeVectorWidth.Long = uint32(decodeUint(b))
	case DeviceNativeVectorWidthFloat:
		d.NativeVectorWidth.Float = uint32(decodeUint(b))
	case DeviceNativeVectorWidthDouble:
		d.NativeVectorWidth.Double = uint32(decodeUint(b))
	case DeviceNativeVectorWidthHalf:
		d.NativeVectorWidth.Half = uint32(decodeUint(b))
	case DeviceOpenCLCVersion:
		d.OpenCLCVersion = cString(b)
	case DevicePreferredVectorWidthChar:
		d.PreferredVectorWidth.Char = uint32(decodeUint(b))
	case DevicePreferredVectorWidthShort:
		d.PreferredVectorWidth.Short = uint32(decodeUint(b))
	case DevicePreferredVectorWidthInt:
		d.PreferredVectorWidth.Int = uint32(decodeUint(b))
	case DevicePreferredVectorWidthLong:
		d.PreferredVectorWidth.Long = uint32(decodeUint(b))
	case DevicePreferredVectorWidthFloat:
		d.PreferredVectorWidth.Float = uint32(decodeUint(b))
	case DevicePreferredVectorWidthDouble:
		d.PreferredVectorWidth.Double = uint32(decodeUint(b))
	case DevicePreferredVectorWidthHalf:
		d.PreferredVectorWidth.Half = uint32(decodeUint(b))
	case DeviceProfile:
		d.Profile = cString(b)
	case DeviceProfilingTimerResolution:
		d.ProfilingTimerResolution = decodeUint(b)
	case DeviceQueueProperties:
		d.QueueProperties = QueueProperties(decodeUint(b))
	case DeviceSingleFPConfig:
		d.SingleFPConfig = FPConfig(decodeUint(b))
	case DeviceTypeParam:
		d.Type = DeviceType(decodeUint(b))
	case DeviceVendor:
		d.Vendor = cString(b)
	case DeviceVendorID:
		d.VendorID = uint32(decodeUint(b))
	case DeviceVersion:
		d.Version = cString(b)
	case DriverVersion:
		d.DriverVersion = cString(b)
	}
}

// decodeUint reads a native-endian integer of 1, 2, 4 or 8 bytes.
func decodeUint(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.NativeEndian.Uint16(b))
	case 4:
		return uint64(binary.NativeEndian.Uint32(b))
	case 8:
		return binary.NativeEndian.Uint64(b)
	default:
		return 0
	}
}

func decodeSizes(b []byte) []uint64 {
	out := make([]uint64, 0, len(b)/sizeofSizeT)
	for off := 0; off+sizeofSizeT <= len(b); off += sizeofSizeT {
		out = append(out, decodeUint(b[off:off+sizeofSizeT]))
	}
	return out
}

// cString trims the value at its first NUL.
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
