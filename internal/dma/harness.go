package dma

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/cwbudde/gpudiag/internal/dma")

// now is replaced in tests.
var now = time.Now

// Mover is a driver specific transfer path between one host buffer and
// one device buffer of the same size.
type Mover interface {
	DeviceName() string
	// HostToDevice copies size bytes starting at offset.
	HostToDevice(offset, size int) error
	// DeviceToHost copies the first size bytes back.
	DeviceToHost(size int) error
	// Synchronize waits for every queued copy.
	Synchronize() error
	Close() error
}

// Result is the outcome of Run.
type Result struct {
	Device     string
	BufferSize int
	ChunkSize  int
	Chunks     int
	Trials     int
	Async      bool
	Elapsed    time.Duration
	// TrialTimes holds the time spent issuing each trial. In async mode
	// this is enqueue time, not completion time.
	TrialTimes []time.Duration
}

// Mode returns "sync" or "async".
func (r *Result) Mode() string { return modeName(r.Async) }

// TotalMB is the number of megabytes sent to the device over all trials.
func (r *Result) TotalMB() int {
	return (r.BufferSize >> 20) * r.Trials
}

// Speed returns TotalMB per second of wall time.
func (r *Result) Speed() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.TotalMB()) / r.Elapsed.Seconds()
}

// Run sends the buffer to the device chunk by chunk and reads it back, once
// per trial, then waits for the device. ctx is checked between trials.
func Run(ctx context.Context, cfg Config, m Mover) (_ *Result, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	_, span := tracer.Start(ctx, "dma.Run")
	span.SetAttributes(
		attribute.String("device", m.DeviceName()),
		attribute.Int("buffer_size", cfg.BufferSize),
		attribute.Int("chunk_size", cfg.ChunkSize),
		attribute.Int("trials", cfg.Trials),
		attribute.String("mode", modeName(cfg.Async)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	res := &Result{
		Device:     m.DeviceName(),
		BufferSize: cfg.BufferSize,
		ChunkSize:  cfg.ChunkSize,
		Chunks:     cfg.Chunks(),
		Trials:     cfg.Trials,
		Async:      cfg.Async,
		TrialTimes: make([]time.Duration, 0, cfg.Trials),
	}
	log.Debug().Str("device", res.Device).Int("chunks", res.Chunks).Int("trials", res.Trials).Msg("dma test started")

	start := now()
	for i := 0; i < cfg.Trials; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		trialStart := now()
		for j := 0; j < res.Chunks; j++ {
			if err := m.HostToDevice(j*cfg.ChunkSize, cfg.ChunkSize); err != nil {
				return nil, err
			}
		}
		if err := m.DeviceToHost(cfg.BufferSize); err != nil {
			return nil, err
		}
		res.TrialTimes = append(res.TrialTimes, now().Sub(trialStart))
	}
	if err := m.Synchronize(); err != nil {
		return nil, err
	}
	res.Elapsed = now().Sub(start)
	span.AddEvent("synchronized", trace.WithAttributes(attribute.Int64("elapsed_us", res.Elapsed.Microseconds())))
	return res, nil
}
