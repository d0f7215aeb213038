package opencl_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/gpudiag/internal/dma"
	"github.com/cwbudde/gpudiag/internal/opencl"
	"github.com/cwbudde/gpudiag/internal/opencl/opencltest"
)

func TestTransferSynchronous(t *testing.T) {
	fake := opencltest.New(opencltest.NewPlatform("P", opencltest.NewDevice("Fake GPU")))
	sel, err := opencl.Select(fake, 1, 1)
	require.NoError(t, err)

	tr, err := opencl.NewTransfer(fake, sel, 1024, false)
	require.NoError(t, err)
	assert.Equal(t, "Fake GPU", tr.DeviceName())
	assert.Equal(t, 1, fake.Live()["mem"])

	require.NoError(t, tr.HostToDevice(0, 512))
	require.NoError(t, tr.HostToDevice(512, 512))
	require.NoError(t, tr.DeviceToHost(1024))
	require.NoError(t, tr.Synchronize())

	transfers := fake.Transfers()
	require.Len(t, transfers, 3)
	assert.True(t, transfers[0].Write)
	assert.True(t, transfers[0].Blocking)
	assert.Empty(t, transfers[0].Wait)
	assert.Equal(t, 512, transfers[1].Offset)
	assert.Equal(t, []opencl.Event{transfers[0].Event}, transfers[1].Wait)
	assert.False(t, transfers[2].Write)
	assert.Equal(t, 1024, transfers[2].Size)
	assert.Equal(t, []opencl.Event{transfers[1].Event}, transfers[2].Wait)

	require.NoError(t, tr.Close())
	assert.Empty(t, fake.Live())
}

func TestTransferAsyncPinsHostMemory(t *testing.T) {
	fake := opencltest.New(opencltest.NewPlatform("P", opencltest.NewDevice("Fake GPU")))
	sel, err := opencl.Select(fake, 1, 1)
	require.NoError(t, err)

	tr, err := opencl.NewTransfer(fake, sel, 4096, true)
	require.NoError(t, err)
	assert.Equal(t, 2, fake.Live()["mem"])

	require.NoError(t, tr.HostToDevice(0, 4096))
	require.NoError(t, tr.DeviceToHost(4096))
	for _, tx := range fake.Transfers() {
		assert.False(t, tx.Blocking)
	}

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
	assert.Empty(t, fake.Live())
}

func TestTransferSetupFailureReleases(t *testing.T) {
	fake := opencltest.New(opencltest.NewPlatform("P", opencltest.NewDevice("Fake GPU")))
	sel, err := opencl.Select(fake, 1, 1)
	require.NoError(t, err)
	fake.FailOn("clCreateBuffer", opencl.MemObjectAllocationFailure)

	_, err = opencl.NewTransfer(fake, sel, 1024, false)
	require.ErrorIs(t, err, opencl.MemObjectAllocationFailure)
	assert.Empty(t, fake.Live())
}

func TestTransferOutOfRange(t *testing.T) {
	fake := opencltest.New(opencltest.NewPlatform("P", opencltest.NewDevice("Fake GPU")))
	sel, err := opencl.Select(fake, 1, 1)
	require.NoError(t, err)

	tr, err := opencl.NewTransfer(fake, sel, 1024, false)
	require.NoError(t, err)
	defer tr.Close()

	require.ErrorIs(t, tr.DeviceToHost(2048), opencl.InvalidValue)
}

func TestTransferCloseDrainsQueue(t *testing.T) {
	fake := opencltest.New(opencltest.NewPlatform("P", opencltest.NewDevice("Fake GPU")))
	sel, err := opencl.Select(fake, 1, 1)
	require.NoError(t, err)
	tr, err := opencl.NewTransfer(fake, sel, 4096, true)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	mover := &cancelAfterFirstTrial{Transfer: tr, cancel: cancel}
	_, err = dma.Run(ctx, dma.Config{BufferSize: 4096, ChunkSize: 2048, Trials: 3, Async: true}, mover)
	require.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, fake.Calls(), "clFinish")

	before := len(fake.Calls())
	require.NoError(t, tr.Close())
	closing := fake.Calls()[before:]
	require.NotEmpty(t, closing)
	assert.Equal(t, "clFinish", closing[0])
	assert.Equal(t, 1, strings.Count(strings.Join(closing, " "), "clFinish"))
	assert.Empty(t, fake.Live())
}

// cancelAfterFirstTrial cancels the run once the first readback is queued.
type cancelAfterFirstTrial struct {
	*opencl.Transfer
	cancel context.CancelFunc
}

func (m *cancelAfterFirstTrial) DeviceToHost(size int) error {
	err := m.Transfer.DeviceToHost(size)
	m.cancel()
	return err
}
