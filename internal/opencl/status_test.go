package opencl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusError(t *testing.T) {
	assert.Equal(t, "CL_INVALID_VALUE (-30)", InvalidValue.Error())
	assert.Equal(t, "CL_PLATFORM_NOT_FOUND_KHR (-1001)", PlatformNotFoundKHR.Error())
	assert.Equal(t, "CL_UNKNOWN_ERROR (-9999)", Status(-9999).Error())
	assert.Equal(t, "CL_BUILD_PROGRAM_FAILURE", BuildProgramFailure.String())
}

func TestStatusErrorWrapsCall(t *testing.T) {
	require.NoError(t, statusError("clFinish", 0))

	err := statusError("clGetDeviceInfo", int32(InvalidDevice))
	require.Error(t, err)
	assert.Equal(t, "clGetDeviceInfo: CL_INVALID_DEVICE (-33)", err.Error())
	assert.ErrorIs(t, err, InvalidDevice)

	var s Status
	require.True(t, errors.As(err, &s))
	assert.Equal(t, InvalidDevice, s)
}

func TestEveryNamedStatusRoundTrips(t *testing.T) {
	for code, name := range statusNames {
		assert.Equal(t, name, code.Name())
	}
	assert.Len(t, statusNames, 60)
}

func TestStringers(t *testing.T) {
	assert.Equal(t, "GPU", DeviceTypeGPU.String())
	assert.Equal(t, "unknown", (DeviceTypeGPU | DeviceTypeDefault).String())
	assert.Equal(t, "Denorm, INF/NaN, R/nearest, R/zero, R/INF, FMA",
		(FPDenorm | FPInfNaN | FPRoundToNearest | FPRoundToZero | FPRoundToInf | FPFMA).String())
	assert.Equal(t, "INF/NaN, FMA", (FPInfNaN | FPFMA).String())
	assert.Equal(t, "", FPConfig(0).String())
	assert.Equal(t, "kernel, native kernel", (ExecKernel | ExecNativeKernel).String())
	assert.Equal(t, "native kernel", ExecNativeKernel.String())
	assert.Equal(t, "none", ExecCapabilities(0).String())
	assert.Equal(t, "read-write", CacheReadWrite.String())
	assert.Equal(t, "unknown", MemCacheType(7).String())
	assert.Equal(t, "SRAM", LocalMemLocal.String())
	assert.Equal(t, "DRAM", LocalMemGlobal.String())
	assert.Equal(t, "out-of-order execution, profiling", (QueueOutOfOrderExec | QueueProfiling).String())
	assert.Equal(t, "build error", BuildError.String())
	assert.Equal(t, "unknown", BuildStatus(5).String())
}

func TestHasExtension(t *testing.T) {
	list := "cl_khr_icd cl_khr_fp64  cl_nv_device_attribute_query"
	assert.True(t, HasExtension(list, "cl_khr_fp64"))
	assert.False(t, HasExtension(list, "cl_khr_fp16"))
	assert.False(t, HasExtension(list, "cl_khr"))
}

func TestDecodeHelpers(t *testing.T) {
	assert.Equal(t, "abc", cString([]byte{'a', 'b', 'c', 0, 'x'}))
	assert.Equal(t, "abc", cString([]byte("abc")))
	assert.Equal(t, uint64(0), decodeUint([]byte{1, 2, 3}))
	assert.Equal(t, uint64(7), decodeUint([]byte{7}))
}
