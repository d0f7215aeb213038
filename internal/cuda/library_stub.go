//go:build !linux || !cgo

package cuda

// Library is a placeholder when CUDA support is not compiled.
type Library struct {
	API
}

// Open returns ErrNotBuilt when CUDA support is not compiled in.
func Open(name string) (*Library, error) {
	return nil, ErrNotBuilt
}
