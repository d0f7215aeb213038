//go:build !unix

package hostmem

import (
	"fmt"
	"os"
)

// Alloc falls back to a heap slice.
func Alloc(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	return &Buffer{data: make([]byte, size)}, nil
}

func (b *Buffer) Lock() error   { return ErrUnsupported }
func (b *Buffer) Unlock() error { return nil }

func (b *Buffer) Free() error {
	if b == nil || b.data == nil {
		return nil
	}
	var err error
	if b.release != nil {
		err = b.release()
	}
	b.data = nil
	b.release = nil
	return err
}

func LockAll() error { return ErrUnsupported }

func pageSize() int { return os.Getpagesize() }
