//go:build linux && cgo

package cuda_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/gpudiag/internal/cuda"
)

func TestLibraryDump(t *testing.T) {
	lib, err := cuda.Open(cuda.DefaultLibrary)
	if err != nil {
		t.Skipf("CUDA driver not available: %v", err)
	}
	defer lib.Close()
	if err := lib.Init(); err != nil {
		t.Skipf("no CUDA device: %v", err)
	}

	var buf bytes.Buffer
	require.NoError(t, cuda.Dump(&buf, lib))
	require.Contains(t, buf.String(), "device name: ")
}

func TestLibraryOpenMissing(t *testing.T) {
	_, err := cuda.Open("libdoes-not-exist-cuda.so")
	require.Error(t, err)
	require.Contains(t, err.Error(), "could not open CUDA library libdoes-not-exist-cuda.so")
}
