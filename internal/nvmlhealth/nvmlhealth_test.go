//go:build linux && cgo

package nvmlhealth

import (
	"bytes"
	"testing"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nvmlmock "github.com/NVIDIA/go-nvml/pkg/nvml/mock"
)

func healthyDevice(name, uuid string) *nvmlmock.Device {
	return &nvmlmock.Device{
		GetNameFunc: func() (string, nvml.Return) { return name, nvml.SUCCESS },
		GetUUIDFunc: func() (string, nvml.Return) { return uuid, nvml.SUCCESS },
		GetMemoryInfoFunc: func() (nvml.Memory, nvml.Return) {
			return nvml.Memory{Total: 16 << 30, Used: 1 << 30, Free: 15 << 30}, nvml.SUCCESS
		},
		GetTemperatureFunc: func(nvml.TemperatureSensors) (uint32, nvml.Return) { return 41, nvml.SUCCESS },
		GetUtilizationRatesFunc: func() (nvml.Utilization, nvml.Return) {
			return nvml.Utilization{Gpu: 87, Memory: 12}, nvml.SUCCESS
		},
	}
}

func newMock(devices ...nvml.Device) (*nvmlmock.Interface, *int) {
	shutdowns := 0
	return &nvmlmock.Interface{
		InitFunc: func() nvml.Return { return nvml.SUCCESS },
		ShutdownFunc: func() nvml.Return {
			shutdowns++
			return nvml.SUCCESS
		},
		SystemGetDriverVersionFunc: func() (string, nvml.Return) {
			return "535.54.03", nvml.SUCCESS
		},
		DeviceGetCountFunc: func() (int, nvml.Return) { return len(devices), nvml.SUCCESS },
		DeviceGetHandleByIndexFunc: func(i int) (nvml.Device, nvml.Return) {
			if i < 0 || i >= len(devices) {
				return nil, nvml.ERROR_INVALID_ARGUMENT
			}
			return devices[i], nvml.SUCCESS
		},
	}, &shutdowns
}

func TestCollect(t *testing.T) {
	lib, shutdowns := newMock(healthyDevice("Fake A100", "GPU-1111"), healthyDevice("Fake H100", "GPU-2222"))

	snap, err := Collect(lib)
	require.NoError(t, err)
	assert.Equal(t, 1, *shutdowns)
	assert.Equal(t, "535.54.03", snap.DriverVersion)
	require.Len(t, snap.Devices, 2)

	d := snap.Devices[1]
	assert.Equal(t, 1, d.Index)
	assert.Equal(t, "Fake H100", d.Name)
	assert.Equal(t, "GPU-2222", d.UUID)
	require.NotNil(t, d.Memory)
	assert.Equal(t, uint64(16<<30), d.Memory.Total)
	require.NotNil(t, d.Temperature)
	assert.Equal(t, uint32(41), *d.Temperature)
	require.NotNil(t, d.Utilization)
	assert.Equal(t, uint32(87), d.Utilization.Gpu)
}

func TestCollectUnsupportedFields(t *testing.T) {
	dev := healthyDevice("Fake T4", "GPU-3333")
	dev.GetTemperatureFunc = func(nvml.TemperatureSensors) (uint32, nvml.Return) { return 0, nvml.ERROR_NOT_SUPPORTED }
	dev.GetUtilizationRatesFunc = func() (nvml.Utilization, nvml.Return) {
		return nvml.Utilization{}, nvml.ERROR_NOT_SUPPORTED
	}
	dev.GetUUIDFunc = func() (string, nvml.Return) { return "", nvml.ERROR_NOT_SUPPORTED }
	lib, _ := newMock(dev)

	snap, err := Collect(lib)
	require.NoError(t, err)
	d := snap.Devices[0]
	assert.Nil(t, d.Temperature)
	assert.Nil(t, d.Utilization)
	assert.Equal(t, NotAvailable, d.UUID)

	var buf bytes.Buffer
	snap.Render(&buf)
	out := buf.String()
	assert.Contains(t, out, "driver version: 535.54.03\n")
	assert.Contains(t, out, "Fake T4")
	assert.Contains(t, out, "1.0 GiB / 16 GiB")
	assert.Contains(t, out, NotAvailable)
}

func TestCollectFieldError(t *testing.T) {
	dev := healthyDevice("Fake", "GPU-4444")
	dev.GetMemoryInfoFunc = func() (nvml.Memory, nvml.Return) { return nvml.Memory{}, nvml.ERROR_GPU_IS_LOST }
	lib, shutdowns := newMock(dev)

	_, err := Collect(lib)
	require.ErrorIs(t, err, nvml.ERROR_GPU_IS_LOST)
	assert.Contains(t, err.Error(), "could not get memory info of device 0")
	assert.Equal(t, 1, *shutdowns)
}

func TestCollectInitFailure(t *testing.T) {
	lib := &nvmlmock.Interface{
		InitFunc: func() nvml.Return { return nvml.ERROR_LIBRARY_NOT_FOUND },
	}
	_, err := Collect(lib)
	require.ErrorIs(t, err, nvml.ERROR_LIBRARY_NOT_FOUND)
	assert.Contains(t, err.Error(), "could not initialize NVML")
}

func TestRender(t *testing.T) {
	lib, _ := newMock(healthyDevice("Fake A100", "GPU-1111"))
	snap, err := Collect(lib)
	require.NoError(t, err)

	var buf bytes.Buffer
	snap.Render(&buf)
	out := buf.String()
	for _, want := range []string{"INDEX", "UUID", "GPU-1111", "41C", "87% gpu, 12% mem", "1.0 GiB / 16 GiB"} {
		assert.Contains(t, out, want)
	}
}
