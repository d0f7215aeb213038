package dma

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WriteReport prints the result block. The chunks line appears only when a
// trial sends the buffer in more than one piece.
func WriteReport(w io.Writer, r *Result) error {
	var err error
	line := func(label, format string, args ...any) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, "%-16s"+format+"\n", append([]any{label + ":"}, args...)...)
	}

	if _, err = fmt.Fprintln(w, "DMA send/recv test result"); err != nil {
		return err
	}
	line("device", "%s", r.Device)
	line("size", "%dMB", r.BufferSize>>20)
	if r.Chunks > 1 {
		size, unit := r.ChunkSize>>10, "KB"
		if r.ChunkSize > 1<<20 {
			size, unit = r.ChunkSize>>20, "MB"
		}
		line("chunks", "%d%s x %d", size, unit, r.Chunks)
	}
	line("ntrials", "%d", r.Trials)
	line("total_size", "%dMB", r.TotalMB())
	line("time", "%.2fs", r.Elapsed.Seconds())
	line("speed", "%.2fMB/s", r.Speed())
	line("mode", "%s", r.Mode())
	return err
}

// TrialStats summarizes the per-trial times in milliseconds.
type TrialStats struct {
	Min, Mean, StdDev float64
}

// Stats computes TrialStats. StdDev is zero for a single trial.
func (r *Result) Stats() TrialStats {
	if len(r.TrialTimes) == 0 {
		return TrialStats{}
	}
	ms := make([]float64, len(r.TrialTimes))
	for i, d := range r.TrialTimes {
		ms[i] = float64(d.Microseconds()) / 1000
	}
	mean, std := stat.MeanStdDev(ms, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return TrialStats{Min: floats.Min(ms), Mean: mean, StdDev: std}
}

// WriteStats prints the per-trial statistics.
func WriteStats(w io.Writer, r *Result) error {
	s := r.Stats()
	_, err := fmt.Fprintf(w, "%-16s%.2fms\n%-16s%.2fms\n%-16s%.2fms\n",
		"trial_min:", s.Min, "trial_mean:", s.Mean, "trial_stddev:", s.StdDev)
	return err
}
