package cuda

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type describer struct {
	name, detail string
	err          error
}

func (d describer) GetErrorName(Result) (string, error)   { return d.name, d.err }
func (d describer) GetErrorString(Result) (string, error) { return d.detail, d.err }

func TestResultStrings(t *testing.T) {
	assert.Equal(t, "CUDA_ERROR_NO_DEVICE", ErrorNoDevice.Name())
	assert.Equal(t, "CUDA_ERROR_NO_DEVICE (100)", ErrorNoDevice.Error())
	assert.Equal(t, "invalid argument", ErrorInvalidValue.Description())
	assert.Equal(t, "CUDA_ERROR_UNKNOWN", Result(12345).Name())
	assert.Equal(t, "cuda error = 12345", Result(12345).Description())
	assert.Equal(t, "CUDA_SUCCESS", Success.String())
}

func TestNewCallError(t *testing.T) {
	require.NoError(t, NewCallError(nil, "cuInit", Success))

	err := NewCallError(describer{name: "CUDA_ERROR_INVALID_VALUE", detail: "invalid argument"},
		"cuDeviceGetAttribute", ErrorInvalidValue)
	require.Error(t, err)
	assert.Equal(t, "failed on cuDeviceGetAttribute (CUDA_ERROR_INVALID_VALUE:invalid argument)", err.Error())
	assert.ErrorIs(t, err, ErrorInvalidValue)

	var callErr *CallError
	require.True(t, errors.As(err, &callErr))
	assert.Equal(t, "cuDeviceGetAttribute", callErr.Call)
	assert.Equal(t, ErrorInvalidValue, callErr.Result)
}

func TestNewCallErrorFallsBackToTable(t *testing.T) {
	err := NewCallError(describer{err: errors.New("symbol missing")}, "cuMemAlloc", ErrorOutOfMemory)
	assert.Equal(t, "failed on cuMemAlloc (CUDA_ERROR_OUT_OF_MEMORY:out of memory)", err.Error())

	err = NewCallError(nil, "cuInit", ErrorNoDevice)
	assert.Equal(t, "failed on cuInit (CUDA_ERROR_NO_DEVICE:no CUDA-capable device is detected)", err.Error())
}

func TestResultTableNamesAreUnique(t *testing.T) {
	seen := map[string]Result{}
	for r, text := range resultTexts {
		prev, dup := seen[text.name]
		assert.False(t, dup, "%s used by %d and %d", text.name, prev, r)
		seen[text.name] = r
		assert.NotEmpty(t, text.description)
	}
}

func TestAttrKindFormat(t *testing.T) {
	tests := []struct {
		kind AttrKind
		v    int32
		want string
	}{
		{KindInt, 1024, "1024"},
		{KindBytes, 49152, "49152"},
		{KindKB, 48, "48kB"},
		{KindMB, 16, "16MB"},
		{KindKHz, 1410000, "1410000kHZ"},
		{KindBool, 1, "true"},
		{KindBool, 0, "false"},
		{KindComputeMode, 0, "default"},
		{KindComputeMode, 1, "exclusive"},
		{KindComputeMode, 2, "prohibited"},
		{KindComputeMode, 3, "exclusive process"},
		{KindComputeMode, 9, "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.Format(tt.v))
	}
}

func TestCatalogAttributesAreUnique(t *testing.T) {
	seen := map[DeviceAttribute]bool{}
	for _, e := range Catalog {
		assert.False(t, seen[e.Attr], e.Label)
		seen[e.Attr] = true
	}
	assert.Len(t, Catalog, 42)
}
