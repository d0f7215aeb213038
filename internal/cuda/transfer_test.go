package cuda_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/gpudiag/internal/cuda"
	"github.com/cwbudde/gpudiag/internal/cuda/cudatest"
)

func TestSelect(t *testing.T) {
	fake := cudatest.New(cudatest.NewDevice("gpu0"), cudatest.NewDevice("gpu1"))

	dev, name, err := cuda.Select(fake, 1)
	require.NoError(t, err)
	assert.Equal(t, cuda.Device(1), dev)
	assert.Equal(t, "gpu1", name)

	_, _, err = cuda.Select(fake, 2)
	require.ErrorIs(t, err, cuda.ErrNoDevice)
	assert.Contains(t, err.Error(), "cuda device index 2 did not exist")

	_, _, err = cuda.Select(fake, -1)
	require.ErrorIs(t, err, cuda.ErrNoDevice)
}

func TestTransferSync(t *testing.T) {
	fake := cudatest.New(cudatest.NewDevice("gpu"))

	tr, err := cuda.NewTransfer(fake, 0, 4096, false)
	require.NoError(t, err)
	assert.Equal(t, "gpu", tr.DeviceName())
	assert.Equal(t, map[string]int{"context": 1, "device": 1}, fake.Live())

	require.NoError(t, tr.HostToDevice(0, 2048))
	require.NoError(t, tr.HostToDevice(2048, 2048))
	require.NoError(t, tr.DeviceToHost(4096))
	require.NoError(t, tr.Synchronize())

	copies := fake.Copies()
	require.Len(t, copies, 3)
	assert.Equal(t, "cuMemcpyHtoD", copies[0].Call)
	assert.Equal(t, copies[0].Device+2048, copies[1].Device)
	assert.Equal(t, "cuMemcpyDtoH", copies[2].Call)
	assert.Equal(t, 4096, copies[2].Size)
	for _, c := range copies {
		assert.Zero(t, c.Stream)
	}

	require.NoError(t, tr.Close())
	assert.Empty(t, fake.Live())
}

func TestTransferAsyncUsesPinnedMemoryAndStream(t *testing.T) {
	fake := cudatest.New(cudatest.NewDevice("gpu"))

	tr, err := cuda.NewTransfer(fake, 0, 1024, true)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"context": 1, "stream": 1, "device": 1, "pinned": 1}, fake.Live())

	require.NoError(t, tr.HostToDevice(0, 1024))
	require.NoError(t, tr.DeviceToHost(1024))
	require.NoError(t, tr.Synchronize())

	copies := fake.Copies()
	require.Len(t, copies, 2)
	assert.Equal(t, "cuMemcpyHtoDAsync", copies[0].Call)
	assert.Equal(t, "cuMemcpyDtoHAsync", copies[1].Call)
	assert.NotZero(t, copies[0].Stream)
	assert.Equal(t, copies[0].Stream, copies[1].Stream)

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
	assert.Empty(t, fake.Live())
}

func TestTransferSetupFailureReleases(t *testing.T) {
	fake := cudatest.New(cudatest.NewDevice("gpu"))
	fake.FailOn("cuMemAlloc", cuda.ErrorOutOfMemory)

	_, err := cuda.NewTransfer(fake, 0, 1024, true)
	require.ErrorIs(t, err, cuda.ErrorOutOfMemory)
	assert.Equal(t, "failed on cuMemAlloc (CUDA_ERROR_OUT_OF_MEMORY:out of memory)", err.Error())
	assert.Empty(t, fake.Live())
}

func TestTransferCopyOutOfRange(t *testing.T) {
	fake := cudatest.New(cudatest.NewDevice("gpu"))
	tr, err := cuda.NewTransfer(fake, 0, 1024, false)
	require.NoError(t, err)
	defer tr.Close()

	require.ErrorIs(t, tr.HostToDevice(512, 1024), cuda.ErrorInvalidValue)
}

func TestTransferRequiresContextOnCallingThread(t *testing.T) {
	fake := cudatest.New(cudatest.NewDevice("gpu"))
	tr, err := cuda.NewTransfer(fake, 0, 1024, true)
	require.NoError(t, err)
	assert.NotZero(t, fake.Current())

	require.NoError(t, tr.HostToDevice(0, 1024))

	fake.SwitchThread()
	assert.Zero(t, fake.Current())
	require.ErrorIs(t, tr.HostToDevice(0, 1024), cuda.ErrorInvalidContext)
	require.ErrorIs(t, tr.Synchronize(), cuda.ErrorInvalidContext)
	assert.Len(t, fake.Copies(), 1)

	require.NoError(t, tr.Close())
	assert.Empty(t, fake.Live())
}

func TestTransferCloseWaitsForCopies(t *testing.T) {
	fake := cudatest.New(cudatest.NewDevice("gpu"))
	tr, err := cuda.NewTransfer(fake, 0, 1024, true)
	require.NoError(t, err)
	require.NoError(t, tr.HostToDevice(0, 1024))

	before := len(fake.Calls())
	require.NoError(t, tr.Close())
	closing := fake.Calls()[before:]
	require.GreaterOrEqual(t, len(closing), 2)
	assert.Equal(t, []string{"cuCtxSetCurrent", "cuCtxSynchronize"}, closing[:2])
	assert.Empty(t, fake.Live())
}
