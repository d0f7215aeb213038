// Package hostmem provides host buffers that live outside the Go heap so a
// driver may keep using them across asynchronous calls.
package hostmem

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unsafe"

	"github.com/dustin/go-humanize"
)

var (
	// ErrInvalidSize is returned for zero or negative allocation sizes.
	ErrInvalidSize = errors.New("invalid host buffer size")
	// ErrFreed is returned when a released buffer is used.
	ErrFreed = errors.New("host buffer already freed")
	// ErrUnsupported is returned by pinning calls on platforms without mlock.
	ErrUnsupported = errors.New("memory pinning is not supported on this platform")
)

// Buffer is a contiguous region of host memory.
type Buffer struct {
	data    []byte
	release func() error
	locked  bool
}

// Wrap adopts memory that was allocated elsewhere (for example by
// cuMemAllocHost). release is called once by Free.
func Wrap(ptr unsafe.Pointer, size int, release func() error) *Buffer {
	return &Buffer{
		data:    unsafe.Slice((*byte)(ptr), size),
		release: release,
	}
}

// Bytes returns the buffer contents.
func (b *Buffer) Bytes() []byte { return b.data }

// Len returns the buffer size in bytes.
func (b *Buffer) Len() int { return len(b.data) }

// Ptr returns the address of the byte at offset.
func (b *Buffer) Ptr(offset int) unsafe.Pointer {
	if b.data == nil || offset < 0 || offset > len(b.data) {
		return nil
	}
	return unsafe.Add(unsafe.Pointer(unsafe.SliceData(b.data)), offset)
}

// Touch writes one byte per page so every page is backed by physical memory.
func (b *Buffer) Touch() {
	step := pageSize()
	for i := 0; i < len(b.data); i += step {
		b.data[i] = 0
	}
}

// ParseSize parses a byte count with an optional unit suffix. Single-letter
// suffixes k, m, g and t are binary multiples, as are the "KiB" forms; "KB"
// forms are decimal.
func ParseSize(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty size", ErrInvalidSize)
	}
	runes := []rune(s)
	last := unicode.ToLower(runes[len(runes)-1])
	if strings.ContainsRune("kmgt", last) {
		s += "iB"
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	return n, nil
}

// FormatSize renders n with binary units, e.g. "1.0 GiB".
func FormatSize(n uint64) string {
	return humanize.IBytes(n)
}
