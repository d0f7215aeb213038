package main

import (
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/cwbudde/gpudiag/internal/cuda"
)

var (
	cudadmaDevice int
	cudadmaFlags  dmaFlags

	lockOSThread   = runtime.LockOSThread
	unlockOSThread = runtime.UnlockOSThread
)

var cudadmaCmd = &cobra.Command{
	Use:   "cudadma",
	Short: "Measure CUDA host/device transfer throughput",
	Args:  cobra.NoArgs,
	RunE:  runCUDADMA,
}

func init() {
	cudadmaCmd.Flags().IntVarP(&cudadmaDevice, "device", "d", 0, "Device ordinal (0-based)")
	cudadmaFlags.register(cudadmaCmd.Flags())
	rootCmd.AddCommand(cudadmaCmd)
}

func runCUDADMA(cmd *cobra.Command, args []string) (err error) {
	cfg, err := cudadmaFlags.config()
	if err != nil {
		return err
	}
	// the context stays current on this thread for the whole run
	lockOSThread()
	defer unlockOSThread()

	api, err := loadCUDA()
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, api.Close()) }()

	t, err := cuda.NewTransfer(api, cudadmaDevice, cfg.BufferSize, cfg.Async)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, t.Close()) }()

	return cudadmaFlags.run(cmd, cfg, t)
}
