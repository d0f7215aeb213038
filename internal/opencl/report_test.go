package opencl_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/gpudiag/internal/opencl"
	"github.com/cwbudde/gpudiag/internal/opencl/opencltest"
)

func newReportFake() *opencltest.Fake {
	return opencltest.New(
		opencltest.NewPlatform("Alpha", opencltest.NewDevice("Fake GPU"), opencltest.NewDevice("Fake GPU 2")),
		opencltest.NewPlatform("Beta", opencltest.NewDevice("Beta GPU")),
	)
}

func TestDumpList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, opencl.Dump(&buf, newReportFake(), opencl.DumpOptions{List: true}))

	want := "Platform-01: Fake Vendor / Alpha - OpenCL 1.2 Alpha\n" +
		"  Device-01: NVIDIA Corporation / Fake GPU - OpenCL 3.0 CUDA\n" +
		"  Device-02: NVIDIA Corporation / Fake GPU 2 - OpenCL 3.0 CUDA\n" +
		"\n" +
		"Platform-02: Fake Vendor / Beta - OpenCL 1.2 Beta\n" +
		"  Device-01: NVIDIA Corporation / Beta GPU - OpenCL 3.0 CUDA\n" +
		"\n"
	assert.Equal(t, want, buf.String())
}

func TestDumpFullDevice(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, opencl.Dump(&buf, newReportFake(), opencl.DumpOptions{Platform: 1, Device: 2}))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "platform-index:      1\n"+
		"platform-vendor:     Fake Vendor\n"+
		"platform-name:       Alpha\n"+
		"platform-version:    OpenCL 1.2 Alpha\n"+
		"platform-profile:    FULL_PROFILE\n"+
		"platform-extensions: cl_khr_icd\n"+
		"  Device-02\n"), out)

	for _, line := range []string{
		"  Device type:                     GPU",
		"  Vendor:                          NVIDIA Corporation (id: 000010de)",
		"  Name:                            Fake GPU 2",
		"  Device available:                yes",
		"  Double FP config:                Denorm, INF/NaN, R/nearest, R/zero, R/INF, FMA",
		"  Endian:                          little",
		"  Error correction support:        no",
		"  Execution capability:            kernel",
		"  Global memory cache size:        256 KB",
		"  Global memory cache type:        read-write",
		"  Global memory size:              4096 MB",
		"  Image 2D max size:               16384 x 16384",
		"  Image 3D max size:               4096 x 4096 x 4096",
		"  Local memory type:               SRAM",
		"  Max memory allocation size:      1024 MB",
		"  Max work-item sizes:             {1024,1024,64}",
		"  Native vector width - double:    1",
		"  Preferred vector width - double: 1",
		"  Queue properties:                out-of-order execution, profiling",
		"  Single FP config:                Denorm, INF/NaN, R/nearest, R/zero, R/INF, FMA",
	} {
		assert.Contains(t, out, line+"\n")
	}
	assert.NotContains(t, out, "Half FP config")
	assert.NotContains(t, out, "vector width - half")
	assert.NotContains(t, out, "Device-01")
	assert.NotContains(t, out, "Beta")
	assert.True(t, strings.HasSuffix(out, "FMA\n\n"))
}

func TestDumpHalfLinesWithFP16(t *testing.T) {
	dev := opencltest.NewDevice("fp16")
	dev.Info[opencl.DeviceExtensions] = opencltest.String("cl_khr_fp16")
	dev.Info[opencl.DeviceHalfFPConfig] = opencltest.U64(uint64(opencl.FPInfNaN | opencl.FPRoundToNearest))
	fake := opencltest.New(opencltest.NewPlatform("P", dev))

	var buf bytes.Buffer
	require.NoError(t, opencl.Dump(&buf, fake, opencl.DumpOptions{}))
	out := buf.String()
	assert.Contains(t, out, "  Half FP config:                  INF/NaN, R/nearest\n")
	assert.Contains(t, out, "  Native vector width - half:      0\n")
	assert.NotContains(t, out, "Double FP config")
}

func TestDumpRejectsMissingIndices(t *testing.T) {
	var buf bytes.Buffer
	err := opencl.Dump(&buf, newReportFake(), opencl.DumpOptions{Platform: 3})
	require.ErrorIs(t, err, opencl.ErrNoPlatform)
	assert.Empty(t, buf.String())

	err = opencl.Dump(&buf, newReportFake(), opencl.DumpOptions{Platform: 2, Device: 2})
	require.ErrorIs(t, err, opencl.ErrNoDevice)
}

func TestDumpRejectsNegativeDevice(t *testing.T) {
	var buf bytes.Buffer
	err := opencl.Dump(&buf, newReportFake(), opencl.DumpOptions{List: true, Device: -1})
	require.ErrorIs(t, err, opencl.ErrNoDevice)
	assert.Contains(t, err.Error(), "opencl device index -1 did not exist")
	assert.Empty(t, buf.String())
}

func TestDumpSkipsUnselectedPlatforms(t *testing.T) {
	fake := newReportFake()
	delete(fake.Platforms[1].Info, opencl.PlatformExtensions)

	var buf bytes.Buffer
	require.NoError(t, opencl.Dump(&buf, fake, opencl.DumpOptions{List: true, Platform: 1}))
	assert.True(t, strings.HasPrefix(buf.String(), "Platform-01: Fake Vendor / Alpha"))
	assert.NotContains(t, buf.String(), "Beta")

	err := opencl.Dump(&buf, fake, opencl.DumpOptions{List: true})
	require.ErrorIs(t, err, opencl.InvalidValue)
}
