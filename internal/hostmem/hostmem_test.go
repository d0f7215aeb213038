package hostmem

import (
	"errors"
	"syscall"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"4096", 4096},
		{"1k", 1 << 10},
		{"128m", 128 << 20},
		{"1g", 1 << 30},
		{"2G", 2 << 30},
		{"1t", 1 << 40},
		{"1GiB", 1 << 30},
		{"1MB", 1000 * 1000},
		{" 64m ", 64 << 20},
	}
	for _, tc := range cases {
		got, err := ParseSize(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseSizeRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "abc", "0", "0m", "12q"} {
		_, err := ParseSize(in)
		assert.ErrorIs(t, err, ErrInvalidSize, in)
	}
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "1.0 GiB", FormatSize(1<<30))
}

func TestAllocRejectsInvalidSize(t *testing.T) {
	_, err := Alloc(0)
	require.ErrorIs(t, err, ErrInvalidSize)
}

func TestAllocPtrAndFree(t *testing.T) {
	const size = 3 * 4096
	buf, err := Alloc(size)
	require.NoError(t, err)

	assert.Equal(t, size, buf.Len())
	buf.Touch()
	buf.Bytes()[size-1] = 0x5a

	base := buf.Ptr(0)
	require.NotNil(t, base)
	assert.Equal(t, uintptr(base)+size-1, uintptr(buf.Ptr(size-1)))
	assert.Equal(t, byte(0x5a), *(*byte)(buf.Ptr(size - 1)))
	assert.Nil(t, buf.Ptr(size+1))
	assert.Nil(t, buf.Ptr(-1))

	require.NoError(t, buf.Free())
	require.NoError(t, buf.Free())
	assert.Nil(t, buf.Ptr(0))
}

func TestLockUnlock(t *testing.T) {
	buf, err := Alloc(4096)
	require.NoError(t, err)
	defer buf.Free()

	if err := buf.Lock(); err != nil {
		if errors.Is(err, syscall.EPERM) || errors.Is(err, syscall.ENOMEM) || errors.Is(err, ErrUnsupported) {
			t.Skipf("mlock unavailable: %v", err)
		}
		require.NoError(t, err)
	}
	require.NoError(t, buf.Unlock())
	require.NoError(t, buf.Unlock())
}

func TestWrapCallsReleaseOnce(t *testing.T) {
	backing := make([]byte, 64)
	calls := 0
	buf := Wrap(unsafe.Pointer(&backing[0]), len(backing), func() error {
		calls++
		return nil
	})

	buf.Bytes()[10] = 7
	assert.Equal(t, byte(7), backing[10])

	require.NoError(t, buf.Free())
	require.NoError(t, buf.Free())
	assert.Equal(t, 1, calls)
}
