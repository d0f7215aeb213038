//go:build linux && cgo

package dynlib

import (
	"fmt"
	"sync"

	"github.com/NVIDIA/go-nvml/pkg/dl"
)

const (
	// DefaultFlags binds every symbol at load time and makes them visible to
	// the cgo call sites linked with unresolved references.
	DefaultFlags = dl.RTLD_NOW | dl.RTLD_GLOBAL
	// LocalFlags keeps the symbols private to this handle.
	LocalFlags = dl.RTLD_NOW | dl.RTLD_LOCAL
)

// Library is a dlopen'd shared object with a per-symbol resolution cache.
type Library struct {
	name string
	lib  *dl.DynamicLibrary

	mu      sync.Mutex
	lookup  func(string) error
	symbols map[string]error
}

// Open loads name with the given dlopen flags.
func Open(name string, flags int) (*Library, error) {
	lib := dl.New(name, flags)
	if err := lib.Open(); err != nil {
		return nil, err
	}
	return &Library{
		name:    name,
		lib:     lib,
		lookup:  lib.Lookup,
		symbols: make(map[string]error),
	}, nil
}

// Name returns the library file name as passed to Open.
func (l *Library) Name() string { return l.name }

// Require resolves each symbol once and returns the first failure.
func (l *Library) Require(symbols ...string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.lib == nil {
		return fmt.Errorf("%w: %s", ErrLibraryNotLoaded, l.name)
	}
	for _, sym := range symbols {
		err, seen := l.symbols[sym]
		if !seen {
			if lerr := l.lookup(sym); lerr != nil {
				err = fmt.Errorf("could not find symbol %q: %w", sym, ErrSymbolNotFound)
			}
			l.symbols[sym] = err
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Close unloads the library. Later Require calls fail.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.lib == nil {
		return nil
	}
	err := l.lib.Close()
	l.lib = nil
	l.symbols = make(map[string]error)
	return err
}
