package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/cwbudde/gpudiag/internal/opencl"
)

var (
	gpudmaPlatform int
	gpudmaDevice   int
	gpudmaFlags    dmaFlags
)

var gpudmaCmd = &cobra.Command{
	Use:   "gpudma",
	Short: "Measure OpenCL host/device transfer throughput",
	Args:  cobra.NoArgs,
	RunE:  runGPUDMA,
}

func init() {
	gpudmaCmd.Flags().IntVarP(&gpudmaPlatform, "platform", "p", 1, "Platform index (1-based)")
	gpudmaCmd.Flags().IntVarP(&gpudmaDevice, "device", "d", 1, "Device index (1-based)")
	gpudmaFlags.register(gpudmaCmd.Flags())
	rootCmd.AddCommand(gpudmaCmd)
}

func runGPUDMA(cmd *cobra.Command, args []string) (err error) {
	cfg, err := gpudmaFlags.config()
	if err != nil {
		return err
	}
	api, err := loadOpenCL()
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, api.Close()) }()

	sel, err := opencl.Select(api, gpudmaPlatform, gpudmaDevice)
	if err != nil {
		return err
	}
	t, err := opencl.NewTransfer(api, sel, cfg.BufferSize, cfg.Async)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, t.Close()) }()

	return gpudmaFlags.run(cmd, cfg, t)
}
