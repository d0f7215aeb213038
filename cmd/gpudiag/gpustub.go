package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/cwbudde/gpudiag/internal/opencl"
)

var (
	gpustubPlatform   int
	gpustubDevice     int
	gpustubInterval   time.Duration
	gpustubIterations int
)

var gpustubCmd = &cobra.Command{
	Use:   "gpustub",
	Short: "Run a test kernel and print its output from the completion callback",
	Long: `Builds kernel_test, which writes global_size - global_id into each of 2048
uints, and runs it every interval until the iteration count is reached or
the process is interrupted.`,
	Args: cobra.NoArgs,
	RunE: runGPUStub,
}

func init() {
	gpustubCmd.Flags().IntVarP(&gpustubPlatform, "platform", "p", 1, "Platform index (1-based)")
	gpustubCmd.Flags().IntVarP(&gpustubDevice, "device", "d", 1, "Device index (1-based)")
	gpustubCmd.Flags().DurationVar(&gpustubInterval, "interval", 15*time.Second, "Delay between kernel runs")
	gpustubCmd.Flags().IntVar(&gpustubIterations, "iterations", 0, "Number of kernel runs (0 = until interrupted)")
	rootCmd.AddCommand(gpustubCmd)
}

func runGPUStub(cmd *cobra.Command, args []string) (err error) {
	if gpustubInterval <= 0 {
		return fmt.Errorf("--interval must be positive, got %s", gpustubInterval)
	}
	api, err := loadOpenCL()
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, api.Close()) }()

	sel, err := opencl.Select(api, gpustubPlatform, gpustubDevice)
	if err != nil {
		return err
	}
	probe, err := opencl.NewProbe(api, sel)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, probe.Close()) }()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	ticker := time.NewTicker(gpustubInterval)
	defer ticker.Stop()

	for i := 1; gpustubIterations == 0 || i <= gpustubIterations; i++ {
		if i > 1 {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
		res, err := probe.Launch(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := opencl.WriteValues(out, res.Values); err != nil {
			return err
		}
		fmt.Fprintf(out, "kernel time: %s\n", res.KernelTime)
		log.Debug().Int("iteration", i).Str("device", sel.DeviceName).Msg("kernel_test completed")
	}
	return nil
}
