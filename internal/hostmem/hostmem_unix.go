//go:build unix

package hostmem

import (
	"fmt"

	"go.uber.org/multierr"
	"golang.org/x/sys/unix"
)

// Alloc maps size bytes of anonymous, page-aligned memory.
func Alloc(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmap %d bytes: %w", size, err)
	}
	return &Buffer{
		data:    data,
		release: func() error { return unix.Munmap(data) },
	}, nil
}

// Lock pins the buffer pages in RAM.
func (b *Buffer) Lock() error {
	if b.data == nil {
		return ErrFreed
	}
	if err := unix.Mlock(b.data); err != nil {
		return fmt.Errorf("mlock: %w", err)
	}
	b.locked = true
	return nil
}

// Unlock releases a previous Lock.
func (b *Buffer) Unlock() error {
	if b.data == nil {
		return ErrFreed
	}
	if !b.locked {
		return nil
	}
	b.locked = false
	if err := unix.Munlock(b.data); err != nil {
		return fmt.Errorf("munlock: %w", err)
	}
	return nil
}

// Free unlocks and releases the buffer. Calling Free twice is a no-op.
func (b *Buffer) Free() error {
	if b == nil || b.data == nil {
		return nil
	}
	var err error
	if b.locked {
		err = multierr.Append(err, b.Unlock())
	}
	if b.release != nil {
		err = multierr.Append(err, b.release())
	}
	b.data = nil
	b.release = nil
	return err
}

// LockAll pins every current and future page of the process.
func LockAll() error {
	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
		return fmt.Errorf("mlockall: %w", err)
	}
	return nil
}

func pageSize() int {
	return unix.Getpagesize()
}
