package main

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/cwbudde/gpudiag/internal/hostmem"
)

var (
	memeatSize string
	memeatHold time.Duration
)

var memeatCmd = &cobra.Command{
	Use:   "memeat",
	Short: "Allocate and pin host memory, then sleep",
	Long: `Allocates the given amount of memory, touches every page, pins all
process memory with mlockall and sleeps until interrupted. Sizes take
k, m, g or t suffixes.`,
	Args: cobra.NoArgs,
	RunE: runMemeat,
}

func init() {
	memeatCmd.Flags().StringVarP(&memeatSize, "size", "s", "1g", "Amount of memory to pin")
	memeatCmd.Flags().DurationVar(&memeatHold, "hold", 0, "How long to keep the memory pinned (0 = until interrupted)")
	rootCmd.AddCommand(memeatCmd)
}

func runMemeat(cmd *cobra.Command, args []string) (err error) {
	size, err := hostmem.ParseSize(memeatSize)
	if err != nil {
		return err
	}
	if size > math.MaxInt {
		return fmt.Errorf("%w: %s", hostmem.ErrInvalidSize, memeatSize)
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		log.Info().
			Str("total", hostmem.FormatSize(vm.Total)).
			Str("available", hostmem.FormatSize(vm.Available)).
			Str("request", hostmem.FormatSize(size)).
			Msg("system memory")
		if size > vm.Available {
			log.Warn().Msg("request exceeds available memory")
		}
	} else {
		log.Debug().Err(err).Msg("could not read system memory")
	}

	buf, err := hostmem.Alloc(int(size))
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, buf.Free()) }()
	buf.Touch()

	if err := lockAll(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "OK, %s allocated and pinned %d bytes\n", cmd.CommandPath(), size)

	var expired <-chan time.Time
	if memeatHold > 0 {
		timer := time.NewTimer(memeatHold)
		defer timer.Stop()
		expired = timer.C
	}
	select {
	case <-cmd.Context().Done():
	case <-expired:
	}
	return nil
}
