package opencl

import (
	"fmt"
	"io"
)

// DumpOptions filters the gpuinfo dump. Zero indices select everything.
type DumpOptions struct {
	List     bool
	Platform int
	Device   int
}

// Dump prints every selected platform followed by its selected devices.
// Only selected platforms are queried.
func Dump(w io.Writer, api API, opts DumpOptions) error {
	ids, err := api.GetPlatformIDs()
	if err != nil {
		return err
	}
	if opts.Platform > len(ids) || opts.Platform < 0 {
		return fmt.Errorf("%w: opencl platform index %d did not exist", ErrNoPlatform, opts.Platform)
	}
	if opts.Device < 0 {
		return fmt.Errorf("%w: opencl device index %d did not exist", ErrNoDevice, opts.Device)
	}

	deviceSeen := false
	for i, id := range ids {
		if opts.Platform > 0 && i+1 != opts.Platform {
			continue
		}
		p, err := QueryPlatform(api, id)
		if err != nil {
			return err
		}
		p.Index = i + 1
		WritePlatform(w, p, opts.List)
		for j, did := range p.Devices {
			if opts.Device > 0 && j+1 != opts.Device {
				continue
			}
			d, err := QueryDevice(api, did)
			if err != nil {
				return err
			}
			d.Index = j + 1
			deviceSeen = true
			WriteDevice(w, d, opts.List)
		}
		fmt.Fprintln(w)
	}
	if opts.Device != 0 && !deviceSeen {
		return fmt.Errorf("%w: opencl device index %d did not exist", ErrNoDevice, opts.Device)
	}
	return nil
}

// WritePlatform prints the platform header block, or a single line in list mode.
func WritePlatform(w io.Writer, p *Platform, list bool) {
	if list {
		fmt.Fprintf(w, "Platform-%02d: %s / %s - %s\n", p.Index, p.Vendor, p.Name, p.Version)
		return
	}
	field := func(label string, value any) {
		fmt.Fprintf(w, "%-21s%v\n", label+":", value)
	}
	field("platform-index", p.Index)
	field("platform-vendor", p.Vendor)
	field("platform-name", p.Name)
	field("platform-version", p.Version)
	field("platform-profile", p.Profile)
	field("platform-extensions", p.Extensions)
}

// WriteDevice prints the device attribute block, or a single line in list mode.
func WriteDevice(w io.Writer, d *Device, list bool) {
	if list {
		fmt.Fprintf(w, "  Device-%02d: %s / %s - %s\n", d.Index, d.Vendor, d.Name, d.Version)
		return
	}
	field := func(label, format string, args ...any) {
		fmt.Fprintf(w, "  %-33s"+format+"\n", append([]any{label + ":"}, args...)...)
	}
	fp64 := d.HasExtension("cl_khr_fp64")
	fp16 := d.HasExtension("cl_khr_fp16")

	fmt.Fprintf(w, "  Device-%02d\n", d.Index)
	field("Device type", "%s", d.Type)
	field("Vendor", "%s (id: %08x)", d.Vendor, d.VendorID)
	field("Name", "%s", d.Name)
	field("Version", "%s", d.Version)
	field("Driver version", "%s", d.DriverVersion)
	field("OpenCL C version", "%s", d.OpenCLCVersion)
	field("Profile", "%s", d.Profile)
	field("Device available", "%s", yesNo(d.Available))
	field("Address bits", "%d", d.AddressBits)
	field("Compiler available", "%s", yesNo(d.CompilerAvailable))
	if fp64 {
		field("Double FP config", "%s", d.DoubleFPConfig)
	}
	field("Endian", "%s", endian(d.EndianLittle))
	field("Error correction support", "%s", yesNo(d.ErrorCorrectionSupport))
	field("Execution capability", "%s", d.ExecutionCapabilities)
	field("Extensions", "%s", d.Extensions)
	field("Global memory cache size", "%d KB", d.GlobalMemCacheSize/1024)
	field("Global memory cache type", "%s", d.GlobalMemCacheType)
	field("Global memory cacheline size", "%d", d.GlobalMemCachelineSize)
	field("Global memory size", "%d MB", d.GlobalMemSize/(1<<20))
	if fp16 {
		field("Half FP config", "%s", d.HalfFPConfig)
	}
	field("Host unified memory", "%s", yesNo(d.HostUnifiedMemory))
	field("Image support", "%s", yesNo(d.ImageSupport))
	field("Image 2D max size", "%d x %d", d.Image2DMaxWidth, d.Image2DMaxHeight)
	field("Image 3D max size", "%d x %d x %d", d.Image3DMaxWidth, d.Image3DMaxHeight, d.Image3DMaxDepth)
	field("Local memory size", "%d", d.LocalMemSize)
	field("Local memory type", "%s", d.LocalMemType)
	field("Max clock frequency", "%d", d.MaxClockFrequency)
	field("Max compute units", "%d", d.MaxComputeUnits)
	field("Max constant args", "%d", d.MaxConstantArgs)
	field("Max constant buffer size", "%d", d.MaxConstantBufferSize)
	field("Max memory allocation size", "%d MB", d.MaxMemAllocSize/(1<<20))
	field("Max parameter size", "%d", d.MaxParameterSize)
	field("Max read image args", "%d", d.MaxReadImageArgs)
	field("Max samplers", "%d", d.MaxSamplers)
	field("Max work-group size", "%d", d.MaxWorkGroupSize)
	sizes := workItemSizes(d.MaxWorkItemSizes)
	field("Max work-item sizes", "{%d,%d,%d}", sizes[0], sizes[1], sizes[2])
	field("Max write image args", "%d", d.MaxWriteImageArgs)
	field("Memory base address align", "%d", d.MemBaseAddrAlign)
	field("Min data type align size", "%d", d.MinDataTypeAlignSize)
	writeVectorWidths(field, "Native", d.NativeVectorWidth, fp64, fp16)
	writeVectorWidths(field, "Preferred", d.PreferredVectorWidth, fp64, fp16)
	field("Profiling timer resolution", "%d", d.ProfilingTimerResolution)
	field("Queue properties", "%s", d.QueueProperties)
	field("Single FP config", "%s", d.SingleFPConfig)
}

func writeVectorWidths(field func(string, string, ...any), kind string, v VectorWidths, fp64, fp16 bool) {
	label := func(typ string) string { return kind + " vector width - " + typ }
	field(label("char"), "%d", v.Char)
	field(label("short"), "%d", v.Short)
	field(label("int"), "%d", v.Int)
	field(label("long"), "%d", v.Long)
	field(label("float"), "%d", v.Float)
	if fp64 {
		field(label("double"), "%d", v.Double)
	}
	if fp16 {
		field(label("half"), "%d", v.Half)
	}
}

// workItemSizes returns the first three dimensions, zero filled.
func workItemSizes(s []uint64) [3]uint32 {
	var out [3]uint32
	for i := 0; i < len(s) && i < len(out); i++ {
		out[i] = uint32(s[i])
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func endian(little bool) string {
	if little {
		return "little"
	}
	return "big"
}
