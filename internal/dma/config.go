// Package dma measures host/device transfer throughput. The harness is
// driver independent: CUDA and OpenCL provide a Mover.
package dma

import (
	"errors"
	"fmt"
)

const (
	DefaultTrials     = 100
	DefaultBufferSize = 128 << 20
)

var (
	// ErrChunkAlignment is returned when the buffer does not split into
	// whole chunks.
	ErrChunkAlignment = errors.New("chunk_size (-c) must be aligned to buffer_size")
	// ErrInvalidMode is returned for a mode other than sync or async.
	ErrInvalidMode = errors.New("mode must be sync or async")
)

// Config describes one DMA test run. Sizes are in bytes.
type Config struct {
	BufferSize int
	// ChunkSize splits each host to device pass. Zero sends the whole
	// buffer at once.
	ChunkSize int
	Trials    int
	Async     bool
}

// Validate checks the sizes and fills in a zero ChunkSize.
func (c *Config) Validate() error {
	if c.BufferSize <= 0 {
		return fmt.Errorf("buffer size must be positive, got %d", c.BufferSize)
	}
	if c.Trials <= 0 {
		return fmt.Errorf("number of trials must be positive, got %d", c.Trials)
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = c.BufferSize
	}
	if c.ChunkSize < 0 || c.BufferSize < c.ChunkSize || c.BufferSize%c.ChunkSize != 0 {
		return ErrChunkAlignment
	}
	return nil
}

// Chunks returns the number of host to device copies per trial.
func (c Config) Chunks() int {
	if c.ChunkSize == 0 {
		return 1
	}
	return c.BufferSize / c.ChunkSize
}

// ParseMode converts the -m flag value.
func ParseMode(s string) (async bool, err error) {
	switch s {
	case "sync":
		return false, nil
	case "async":
		return true, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

func modeName(async bool) string {
	if async {
		return "async"
	}
	return "sync"
}
