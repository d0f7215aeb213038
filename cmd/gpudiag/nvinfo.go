package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/cwbudde/gpudiag/internal/cuda"
)

var nvinfoCmd = &cobra.Command{
	Use:   "nvinfo",
	Short: "Dump CUDA devices and their attributes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		api, err := loadCUDA()
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, api.Close()) }()

		return cuda.Dump(cmd.OutOrStdout(), api)
	},
}

func init() {
	rootCmd.AddCommand(nvinfoCmd)
}
