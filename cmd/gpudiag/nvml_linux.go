//go:build linux && cgo

package main

import (
	"github.com/spf13/cobra"

	"github.com/cwbudde/gpudiag/internal/nvmlhealth"
)

var (
	nvmlLibrary string

	newNVML = nvmlhealth.New
)

var nvmlCmd = &cobra.Command{
	Use:   "nvml",
	Short: "Show NVIDIA device health through NVML",
	Args:  cobra.NoArgs,
	RunE:  runNVML,
}

func init() {
	nvmlCmd.Flags().StringVar(&nvmlLibrary, "nvml-library", "", "NVML library path (default: system search path)")
	rootCmd.AddCommand(nvmlCmd)
}

func runNVML(cmd *cobra.Command, args []string) error {
	snap, err := nvmlhealth.Collect(newNVML(nvmlLibrary))
	if err != nil {
		return err
	}
	snap.Render(cmd.OutOrStdout())
	return nil
}
