// Package dynlib loads a shared library at run time and resolves its entry
// points on first use.
package dynlib

import "errors"

var (
	// ErrSymbolNotFound is returned when the library does not export a symbol.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrLibraryNotLoaded is returned for calls on a closed library.
	ErrLibraryNotLoaded = errors.New("library not loaded")
)
