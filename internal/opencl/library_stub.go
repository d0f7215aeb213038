//go:build !linux || !cgo

package opencl

// Library is a placeholder when OpenCL support is not compiled.
type Library struct {
	API
}

// Open returns ErrNotBuilt when OpenCL support is not compiled in.
func Open(name string) (*Library, error) {
	return nil, ErrNotBuilt
}
