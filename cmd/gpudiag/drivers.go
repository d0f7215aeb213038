package main

import (
	"github.com/cwbudde/gpudiag/internal/cuda"
	"github.com/cwbudde/gpudiag/internal/hostmem"
	"github.com/cwbudde/gpudiag/internal/opencl"
)

// Driver factories, replaced by fakes in tests.
var (
	openOpenCL = func(name string) (opencl.API, error) {
		lib, err := opencl.Open(name)
		if err != nil {
			return nil, err
		}
		return lib, nil
	}
	openCUDA = func(name string) (cuda.API, error) {
		lib, err := cuda.Open(name)
		if err != nil {
			return nil, err
		}
		return lib, nil
	}
	lockAll = hostmem.LockAll
)

func loadOpenCL() (opencl.API, error) { return openOpenCL(openclLibrary) }

func loadCUDA() (cuda.API, error) { return openCUDA(cudaLibrary) }
