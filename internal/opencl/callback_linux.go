//go:build linux && cgo

package opencl

/*
#include <stdint.h>
*/
import "C"

import "runtime/cgo"

// gpudiagEventComplete runs on a driver thread once per registered
// callback. The handle is released after the callback returns.
//
//export gpudiagEventComplete
func gpudiagEventComplete(event C.uintptr_t, status C.int32_t, handle C.uintptr_t) {
	h := cgo.Handle(handle)
	fn := h.Value().(func(Status))
	h.Delete()
	fn(Status(status))
}
