package dma

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMover struct {
	calls   []string
	failOn  string
	onTrial func()
}

func (m *recordingMover) DeviceName() string { return "Fake GPU" }

func (m *recordingMover) record(call string) error {
	m.calls = append(m.calls, call)
	if call == m.failOn {
		return errors.New(call + ": device lost")
	}
	return nil
}

func (m *recordingMover) HostToDevice(offset, size int) error {
	return m.record(fmt.Sprintf("h2d %d+%d", offset, size))
}

func (m *recordingMover) DeviceToHost(size int) error {
	if m.onTrial != nil {
		m.onTrial()
	}
	return m.record(fmt.Sprintf("d2h %d", size))
}

func (m *recordingMover) Synchronize() error { return m.record("sync") }
func (m *recordingMover) Close() error       { return m.record("close") }

// fakeClock advances by step on every reading.
func fakeClock(t *testing.T, step time.Duration) {
	t.Helper()
	cur := time.Unix(1700000000, 0)
	now = func() time.Time {
		cur = cur.Add(step)
		return cur
	}
	t.Cleanup(func() { now = time.Now })
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		chunk   int
		wantErr error
	}{
		{"chunk defaults to buffer", Config{BufferSize: 4 << 20, Trials: 1}, 4 << 20, nil},
		{"aligned chunk", Config{BufferSize: 4 << 20, ChunkSize: 1 << 20, Trials: 1}, 1 << 20, nil},
		{"misaligned chunk", Config{BufferSize: 4 << 20, ChunkSize: 3 << 10, Trials: 1}, 0, ErrChunkAlignment},
		{"chunk larger than buffer", Config{BufferSize: 1 << 20, ChunkSize: 2 << 20, Trials: 1}, 0, ErrChunkAlignment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := cfg.Validate()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.EqualError(t, err, "chunk_size (-c) must be aligned to buffer_size")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.chunk, cfg.ChunkSize)
		})
	}

	require.Error(t, (&Config{BufferSize: 0, Trials: 1}).Validate())
	require.Error(t, (&Config{BufferSize: 1 << 20, Trials: 0}).Validate())
}

func TestParseMode(t *testing.T) {
	async, err := ParseMode("async")
	require.NoError(t, err)
	assert.True(t, async)

	async, err = ParseMode("sync")
	require.NoError(t, err)
	assert.False(t, async)

	_, err = ParseMode("fast")
	require.ErrorIs(t, err, ErrInvalidMode)
}

func TestRunCallOrder(t *testing.T) {
	fakeClock(t, time.Millisecond)
	m := &recordingMover{}

	res, err := Run(context.Background(), Config{BufferSize: 3 << 20, ChunkSize: 1 << 20, Trials: 2}, m)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"h2d 0+1048576", "h2d 1048576+1048576", "h2d 2097152+1048576", "d2h 3145728",
		"h2d 0+1048576", "h2d 1048576+1048576", "h2d 2097152+1048576", "d2h 3145728",
		"sync",
	}, m.calls)
	assert.Equal(t, "Fake GPU", res.Device)
	assert.Equal(t, 3, res.Chunks)
	assert.Equal(t, 6, res.TotalMB())
	// start, 2 x (trial start, trial end), end
	assert.Equal(t, 5*time.Millisecond, res.Elapsed)
	assert.Equal(t, []time.Duration{time.Millisecond, time.Millisecond}, res.TrialTimes)
}

func TestRunStopsOnError(t *testing.T) {
	m := &recordingMover{failOn: "d2h 1048576"}
	_, err := Run(context.Background(), Config{BufferSize: 1 << 20, Trials: 5}, m)
	require.EqualError(t, err, "d2h 1048576: device lost")
	assert.Equal(t, []string{"h2d 0+1048576", "d2h 1048576"}, m.calls)
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	trials := 0
	m := &recordingMover{onTrial: func() {
		trials++
		if trials == 2 {
			cancel()
		}
	}}
	_, err := Run(ctx, Config{BufferSize: 1 << 20, Trials: 10}, m)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, trials)
	assert.NotContains(t, m.calls, "sync")
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	m := &recordingMover{}
	_, err := Run(context.Background(), Config{BufferSize: 1 << 20, ChunkSize: 3, Trials: 1}, m)
	require.ErrorIs(t, err, ErrChunkAlignment)
	assert.Empty(t, m.calls)
}

func TestWriteReport(t *testing.T) {
	res := &Result{
		Device:     "Fake GPU",
		BufferSize: 128 << 20,
		ChunkSize:  128 << 20,
		Chunks:     1,
		Trials:     100,
		Elapsed:    2 * time.Second,
	}
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, res))
	assert.Equal(t, "DMA send/recv test result\n"+
		"device:         Fake GPU\n"+
		"size:           128MB\n"+
		"ntrials:        100\n"+
		"total_size:     12800MB\n"+
		"time:           2.00s\n"+
		"speed:          6400.00MB/s\n"+
		"mode:           sync\n", buf.String())
}

func TestWriteReportChunks(t *testing.T) {
	res := &Result{Device: "d", BufferSize: 8 << 20, ChunkSize: 256 << 10, Chunks: 32, Trials: 1, Async: true, Elapsed: time.Second}
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, res))
	assert.Contains(t, buf.String(), "chunks:         256KB x 32\n")
	assert.Contains(t, buf.String(), "mode:           async\n")

	res.ChunkSize, res.Chunks = 4<<20, 2
	buf.Reset()
	require.NoError(t, WriteReport(&buf, res))
	assert.Contains(t, buf.String(), "chunks:         4MB x 2\n")
}

func TestSpeedWithoutElapsedTime(t *testing.T) {
	assert.Zero(t, (&Result{BufferSize: 1 << 20, Trials: 1}).Speed())
}

func TestStats(t *testing.T) {
	res := &Result{TrialTimes: []time.Duration{2 * time.Millisecond, 4 * time.Millisecond, 6 * time.Millisecond}}
	s := res.Stats()
	assert.InDelta(t, 2.0, s.Min, 1e-9)
	assert.InDelta(t, 4.0, s.Mean, 1e-9)
	assert.InDelta(t, 2.0, s.StdDev, 1e-9)

	var buf bytes.Buffer
	require.NoError(t, WriteStats(&buf, res))
	assert.Equal(t, "trial_min:      2.00ms\ntrial_mean:     4.00ms\ntrial_stddev:   2.00ms\n", buf.String())

	single := (&Result{TrialTimes: []time.Duration{time.Millisecond}}).Stats()
	assert.Zero(t, single.StdDev)
	assert.Equal(t, TrialStats{}, (&Result{}).Stats())
}

func TestWriteMetrics(t *testing.T) {
	res := &Result{
		Device:     "Fake GPU",
		BufferSize: 1 << 20,
		Trials:     2,
		Elapsed:    time.Second,
		TrialTimes: []time.Duration{time.Millisecond, 3 * time.Millisecond},
	}
	path := filepath.Join(t.TempDir(), "dma.prom")
	require.NoError(t, WriteMetrics(path, res))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(raw)
	assert.Contains(t, out, `gpudiag_dma_throughput_megabytes_per_second{device="Fake GPU",mode="sync"} 2`)
	assert.Contains(t, out, `gpudiag_dma_elapsed_seconds{device="Fake GPU",mode="sync"} 1`)
	assert.Contains(t, out, `gpudiag_dma_buffer_bytes{device="Fake GPU",mode="sync"} 1.048576e+06`)
	assert.Contains(t, out, `gpudiag_dma_trial_duration_seconds_count{device="Fake GPU",mode="sync"} 2`)
}
