package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/cwbudde/gpudiag/internal/opencl"
)

var gpuinfoOpts opencl.DumpOptions

var gpuinfoCmd = &cobra.Command{
	Use:   "gpuinfo",
	Short: "Dump OpenCL platforms and devices",
	Long: `Prints the attributes of every OpenCL platform and device. -p and -d
restrict the dump to one platform or device (1-based).`,
	Args: cobra.NoArgs,
	RunE: runGPUInfo,
}

func init() {
	gpuinfoCmd.Flags().BoolVarP(&gpuinfoOpts.List, "list", "l", false, "One line per platform and device")
	gpuinfoCmd.Flags().IntVarP(&gpuinfoOpts.Platform, "platform", "p", 0, "Platform index (1-based, 0 = all)")
	gpuinfoCmd.Flags().IntVarP(&gpuinfoOpts.Device, "device", "d", 0, "Device index (1-based, 0 = all)")
	rootCmd.AddCommand(gpuinfoCmd)
}

func runGPUInfo(cmd *cobra.Command, args []string) (err error) {
	api, err := loadOpenCL()
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, api.Close()) }()

	return opencl.Dump(cmd.OutOrStdout(), api, gpuinfoOpts)
}
