package opencl_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/gpudiag/internal/opencl"
	"github.com/cwbudde/gpudiag/internal/opencl/opencltest"
)

func newProbe(t *testing.T, fake *opencltest.Fake) *opencl.Probe {
	t.Helper()
	sel, err := opencl.Select(fake, 1, 1)
	require.NoError(t, err)
	p, err := opencl.NewProbe(fake, sel)
	require.NoError(t, err)
	return p
}

func TestProbeLaunch(t *testing.T) {
	fake := opencltest.New(opencltest.NewPlatform("P", opencltest.NewDevice("gpu")))
	p := newProbe(t, fake)

	res, err := p.Launch(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Values, opencl.ProbeWorkItems)
	assert.Equal(t, uint32(2048), res.Values[0])
	assert.Equal(t, uint32(1), res.Values[2047])
	for i, v := range res.Values {
		if v != uint32(opencl.ProbeWorkItems-i) {
			t.Fatalf("value %d = %d", i, v)
		}
	}
	assert.Equal(t, time.Duration(opencltest.DefaultKernelNanos), res.KernelTime)

	assert.Equal(t, map[string]int{"context": 1, "queue": 1, "program": 1}, fake.Live())
	require.NoError(t, p.Close())
	assert.Empty(t, fake.Live())
}

func TestProbeLaunchRepeats(t *testing.T) {
	fake := opencltest.New(opencltest.NewPlatform("P", opencltest.NewDevice("gpu")))
	fake.KernelNanos = 500
	p := newProbe(t, fake)
	defer p.Close()

	for i := 0; i < 3; i++ {
		res, err := p.Launch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 500*time.Nanosecond, res.KernelTime)
	}
	assert.NotContains(t, fake.Live(), "event")
}

func TestProbeCallbackStatus(t *testing.T) {
	fake := opencltest.New(opencltest.NewPlatform("P", opencltest.NewDevice("gpu")))
	fake.CallbackStatus = opencl.OutOfResources
	p := newProbe(t, fake)
	defer p.Close()

	_, err := p.Launch(context.Background())
	require.ErrorIs(t, err, opencl.OutOfResources)
	assert.Contains(t, err.Error(), "kernel_test completion")
	assert.NotContains(t, fake.Live(), "mem")
}

func TestProbeLaunchCancelled(t *testing.T) {
	fake := opencltest.New(opencltest.NewPlatform("P", opencltest.NewDevice("gpu")))
	fake.HoldCallbacks = true
	p := newProbe(t, fake)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.Launch(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, fake.Calls(), "clWaitForEvents")
	assert.NotContains(t, fake.Live(), "event")
}

func TestNewProbeBuildFailure(t *testing.T) {
	fake := opencltest.New(opencltest.NewPlatform("P", opencltest.NewDevice("gpu")))
	fake.Build = func(string, string) (opencl.BuildStatus, string, opencl.Status) {
		return opencl.BuildError, "no compiler today", opencl.BuildProgramFailure
	}
	sel, err := opencl.Select(fake, 1, 1)
	require.NoError(t, err)

	_, err = opencl.NewProbe(fake, sel)
	require.ErrorIs(t, err, opencl.BuildProgramFailure)
	assert.Contains(t, err.Error(), "no compiler today")
	assert.Empty(t, fake.Live())
}

func TestWriteValues(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, opencl.WriteValues(&buf, []uint32{3, 2, 1}))
	assert.Equal(t, " 3 2 1\n", buf.String())
}
