package opencl_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/gpudiag/internal/opencl"
	"github.com/cwbudde/gpudiag/internal/opencl/opencltest"
)

func newContext(t *testing.T, fake *opencltest.Fake) (opencl.Context, *opencl.Selection) {
	t.Helper()
	sel, err := opencl.Select(fake, 1, 1)
	require.NoError(t, err)
	ctx, err := fake.CreateContext([]opencl.DeviceID{sel.Device})
	require.NoError(t, err)
	t.Cleanup(func() { _ = fake.ReleaseContext(ctx) })
	return ctx, sel
}

// failOnMarker fails every source containing "#error".
func failOnMarker(source, options string) (opencl.BuildStatus, string, opencl.Status) {
	if strings.Contains(source, "#error") {
		return opencl.BuildError, "<source>:1:2: error: broken\n", opencl.BuildProgramFailure
	}
	return opencl.BuildSuccess, "", opencl.Success
}

func TestCompileSuccess(t *testing.T) {
	fake := opencltest.New(opencltest.NewPlatform("P", opencltest.NewDevice("gpu")))
	var gotOptions string
	fake.Build = func(source, options string) (opencl.BuildStatus, string, opencl.Status) {
		gotOptions = options
		return opencl.BuildSuccess, "", opencl.Success
	}
	ctx, sel := newContext(t, fake)

	report, err := opencl.Compile(fake, ctx, sel.Device, opencl.ProbeKernelSource, opencl.DefaultBuildOptions)
	require.NoError(t, err)
	assert.Equal(t, opencl.BuildSuccess, report.Status)
	assert.Empty(t, report.Log)
	assert.Equal(t, "-Werror", gotOptions)
	assert.NotContains(t, fake.Live(), "program")
}

func TestCompileFailureIsReported(t *testing.T) {
	fake := opencltest.New(opencltest.NewPlatform("P", opencltest.NewDevice("gpu")))
	fake.Build = failOnMarker
	ctx, sel := newContext(t, fake)

	report, err := opencl.Compile(fake, ctx, sel.Device, "#error\n", "")
	require.NoError(t, err)
	assert.Equal(t, opencl.BuildError, report.Status)
	assert.Equal(t, "<source>:1:2: error: broken\n", report.Log)
	assert.NotContains(t, fake.Live(), "program")
}

func TestCompileInvalidOptions(t *testing.T) {
	fake := opencltest.New(opencltest.NewPlatform("P", opencltest.NewDevice("gpu")))
	ctx, sel := newContext(t, fake)
	fake.FailOn("clBuildProgram", opencl.InvalidBuildOptions)

	_, err := opencl.Compile(fake, ctx, sel.Device, opencl.ProbeKernelSource, "-bogus")
	require.ErrorIs(t, err, opencl.InvalidBuildOptions)
	assert.Contains(t, err.Error(), "failed on clBuildProgram with build options: -bogus")
	assert.NotContains(t, fake.Live(), "program")
}

func TestCompileFiles(t *testing.T) {
	fake := opencltest.New(opencltest.NewPlatform("P", opencltest.NewDevice("gpu")))
	fake.Build = failOnMarker
	ctx, sel := newContext(t, fake)

	dir := t.TempDir()
	good := filepath.Join(dir, "good.cl")
	bad := filepath.Join(dir, "bad.cl")
	missing := filepath.Join(dir, "missing.cl")
	require.NoError(t, os.WriteFile(good, []byte(opencl.ProbeKernelSource), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("#error\n"), 0o644))

	var buf bytes.Buffer
	err := opencl.CompileFiles(&buf, fake, ctx, sel.Device, "", []string{good, missing, bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.cl")
	assert.Contains(t, err.Error(), "bad.cl: build error")
	assert.NotContains(t, err.Error(), "good.cl")

	want := "source: " + good + " ... build success\n\n" +
		"source: " + missing + " ... error\n" +
		"source: " + bad + " ... build error\n<source>:1:2: error: broken\n\n"
	assert.Equal(t, want, buf.String())
}

func TestCompileFilesAllGood(t *testing.T) {
	fake := opencltest.New(opencltest.NewPlatform("P", opencltest.NewDevice("gpu")))
	ctx, sel := newContext(t, fake)
	path := filepath.Join(t.TempDir(), "k.cl")
	require.NoError(t, os.WriteFile(path, []byte(opencl.ProbeKernelSource), 0o644))

	var buf bytes.Buffer
	require.NoError(t, opencl.CompileFiles(&buf, fake, ctx, sel.Device, opencl.DefaultBuildOptions, []string{path}))
}

func TestCompileFilesNeedsSources(t *testing.T) {
	fake := opencltest.New(opencltest.NewPlatform("P", opencltest.NewDevice("gpu")))
	ctx, sel := newContext(t, fake)
	err := opencl.CompileFiles(&bytes.Buffer{}, fake, ctx, sel.Device, "", nil)
	require.EqualError(t, err, "no source files were given")
}
