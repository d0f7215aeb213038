//go:build linux && cgo

package opencl_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/gpudiag/internal/opencl"
)

func openDriver(t *testing.T) *opencl.Library {
	t.Helper()
	lib, err := opencl.Open(opencl.DefaultLibrary)
	if err != nil {
		t.Skipf("OpenCL loader not available: %v", err)
	}
	t.Cleanup(func() { _ = lib.Close() })
	return lib
}

func TestLibraryDump(t *testing.T) {
	lib := openDriver(t)
	if _, err := opencl.Platforms(lib); err != nil {
		t.Skipf("no OpenCL platform: %v", err)
	}

	var buf bytes.Buffer
	require.NoError(t, opencl.Dump(&buf, lib, opencl.DumpOptions{List: true}))
	require.Contains(t, buf.String(), "Platform-01: ")
}

func TestLibraryOpenMissing(t *testing.T) {
	_, err := opencl.Open("libdoes-not-exist-opencl.so")
	require.Error(t, err)
	require.Contains(t, err.Error(), "could not open OpenCL library libdoes-not-exist-opencl.so")
}
