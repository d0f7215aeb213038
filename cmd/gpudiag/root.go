package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cwbudde/gpudiag/internal/cuda"
	"github.com/cwbudde/gpudiag/internal/opencl"
	"github.com/cwbudde/gpudiag/internal/telemetry"
)

var (
	logLevel      string
	openclLibrary string
	cudaLibrary   string
	traceEnabled  bool

	// stopTracing flushes the tracer provider installed by --trace.
	stopTracing = func(context.Context) error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "gpudiag",
	Short: "Diagnostic and benchmark tools for CUDA and OpenCL devices",
	Long: `gpudiag bundles small GPU diagnostic tools: device dumps (gpuinfo, nvinfo),
host/device DMA benchmarks (gpudma, cudadma), an OpenCL build check (gpucc),
a kernel execution demo (gpustub) and a memory pinning stress tool (memeat).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := zerolog.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid --log-level %q", logLevel)
		}
		zerolog.SetGlobalLevel(level)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

		if traceEnabled {
			shutdown, err := telemetry.Setup(os.Stderr, version)
			if err != nil {
				return fmt.Errorf("could not set up tracing: %w", err)
			}
			stopTracing = shutdown
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&openclLibrary, "opencl-library", opencl.DefaultLibrary, "OpenCL ICD loader to load")
	rootCmd.PersistentFlags().StringVar(&cudaLibrary, "cuda-library", cuda.DefaultLibrary, "CUDA driver library to load")
	rootCmd.PersistentFlags().BoolVar(&traceEnabled, "trace", false, "Print OpenTelemetry spans to stderr")
}
