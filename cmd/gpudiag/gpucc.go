package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/cwbudde/gpudiag/internal/opencl"
)

var (
	gpuccPlatform int
	gpuccDevice   int
	gpuccOptions  string
)

var gpuccCmd = &cobra.Command{
	Use:   "gpucc [flags] <source>...",
	Short: "Build OpenCL sources and print the build log",
	RunE:  runGPUCC,
}

func init() {
	gpuccCmd.Flags().IntVarP(&gpuccPlatform, "platform", "p", 1, "Platform index (1-based)")
	gpuccCmd.Flags().IntVarP(&gpuccDevice, "device", "d", 1, "Device index (1-based)")
	gpuccCmd.Flags().StringVarP(&gpuccOptions, "options", "o", opencl.DefaultBuildOptions, "Build options")
	rootCmd.AddCommand(gpuccCmd)
}

func runGPUCC(cmd *cobra.Command, args []string) (err error) {
	api, err := loadOpenCL()
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, api.Close()) }()

	sel, err := opencl.Select(api, gpuccPlatform, gpuccDevice)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "platform: %s\n", sel.Platform.Name)
	fmt.Fprintf(out, "device: %s\n", sel.DeviceName)

	ctx, err := api.CreateContext([]opencl.DeviceID{sel.Device})
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, api.ReleaseContext(ctx)) }()

	return opencl.CompileFiles(out, api, ctx, sel.Device, gpuccOptions, args)
}
