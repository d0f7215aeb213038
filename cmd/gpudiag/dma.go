package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cwbudde/gpudiag/internal/dma"
)

// dmaFlags are shared by gpudma and cudadma.
type dmaFlags struct {
	mode        string
	trials      int
	sizeMB      int
	chunkKB     int
	stats       bool
	metricsFile string
}

func (f *dmaFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.mode, "mode", "m", "sync", "Transfer mode: sync or async")
	fs.IntVarP(&f.trials, "trials", "n", dma.DefaultTrials, "Number of trials")
	fs.IntVarP(&f.sizeMB, "size", "s", dma.DefaultBufferSize>>20, "Buffer size in MB")
	fs.IntVarP(&f.chunkKB, "chunk", "c", 0, "Chunk size in KB (0 = whole buffer)")
	fs.BoolVar(&f.stats, "stats", false, "Print per-trial statistics")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "Write the result as a Prometheus text file")
}

// config validates the flags before any driver is opened.
func (f *dmaFlags) config() (dma.Config, error) {
	async, err := dma.ParseMode(f.mode)
	if err != nil {
		return dma.Config{}, err
	}
	cfg := dma.Config{
		BufferSize: f.sizeMB << 20,
		ChunkSize:  f.chunkKB << 10,
		Trials:     f.trials,
		Async:      async,
	}
	if err := cfg.Validate(); err != nil {
		return dma.Config{}, err
	}
	return cfg, nil
}

func (f *dmaFlags) run(cmd *cobra.Command, cfg dma.Config, m dma.Mover) error {
	res, err := dma.Run(cmd.Context(), cfg, m)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := dma.WriteReport(out, res); err != nil {
		return err
	}
	if f.stats {
		if err := dma.WriteStats(out, res); err != nil {
			return err
		}
	}
	if f.metricsFile != "" {
		if err := dma.WriteMetrics(f.metricsFile, res); err != nil {
			return fmt.Errorf("could not write metrics: %w", err)
		}
	}
	return nil
}
