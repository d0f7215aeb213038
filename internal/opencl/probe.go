package opencl

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/multierr"

	"github.com/cwbudde/gpudiag/internal/hostmem"
)

var tracer = otel.Tracer("github.com/cwbudde/gpudiag/internal/opencl")

// ProbeKernelSource stores global_size - global_id into every element.
const ProbeKernelSource = `__kernel void
kernel_test(__global uint *arg)
{
  arg[get_global_id(0)] = (get_global_size(0) -
                           get_global_id(0));
}
`

const (
	ProbeKernelName = "kernel_test"
	ProbeWorkItems  = 2048
	ProbeLocalSize  = ProbeWorkItems / 4
	probeBytes      = ProbeWorkItems * 4
)

// Probe runs the fixed test kernel on one device.
type Probe struct {
	api     API
	device  DeviceID
	ctx     Context
	queue   CommandQueue
	program Program
}

// ProbeResult is the buffer read back after one kernel run.
type ProbeResult struct {
	Values     []uint32
	KernelTime time.Duration
}

// NewProbe creates a context over every device of the selected platform, a
// profiling out-of-order queue on the selected device, and builds the
// test kernel.
func NewProbe(api API, sel *Selection) (_ *Probe, err error) {
	p := &Probe{api: api, device: sel.Device}
	defer func() {
		if err != nil {
			err = multierr.Append(err, p.Close())
		}
	}()

	if p.ctx, err = api.CreateContext(sel.Platform.Devices); err != nil {
		return nil, err
	}
	if p.queue, err = api.CreateCommandQueue(p.ctx, sel.Device, QueueOutOfOrderExec|QueueProfiling); err != nil {
		return nil, err
	}
	if p.program, err = api.CreateProgramWithSource(p.ctx, ProbeKernelSource); err != nil {
		return nil, err
	}
	if err = api.BuildProgram(p.program, []DeviceID{sel.Device}, ""); err != nil {
		if errors.Is(err, BuildProgramFailure) {
			if raw, lerr := api.GetProgramBuildInfo(p.program, sel.Device, ProgramBuildLog); lerr == nil {
				err = fmt.Errorf("%w\n%s", err, cString(raw))
			}
		}
		return nil, err
	}
	return p, nil
}

// Launch writes the buffer, runs the kernel and reads the buffer back, each
// step waiting on the previous event. It returns once the completion
// callback of the read fires or ctx is done.
func (p *Probe) Launch(ctx context.Context) (_ *ProbeResult, err error) {
	ctx, span := tracer.Start(ctx, "opencl.Probe.Launch")
	span.SetAttributes(attribute.Int("work_items", ProbeWorkItems), attribute.Int("local_size", ProbeLocalSize))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var (
		kernel Kernel
		mem    Mem
		events []Event
	)
	host, err := hostmem.Alloc(probeBytes)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, ev := range events {
			err = multierr.Append(err, p.api.ReleaseEvent(ev))
		}
		if mem != 0 {
			err = multierr.Append(err, p.api.ReleaseMemObject(mem))
		}
		if kernel != 0 {
			err = multierr.Append(err, p.api.ReleaseKernel(kernel))
		}
		err = multierr.Append(err, host.Free())
	}()

	if kernel, err = p.api.CreateKernel(p.program, ProbeKernelName); err != nil {
		return nil, err
	}
	if mem, err = p.api.CreateBuffer(p.ctx, MemReadWrite, probeBytes, nil); err != nil {
		return nil, err
	}
	if err = p.api.SetKernelArg(kernel, 0, mem); err != nil {
		return nil, err
	}

	write, err := p.api.EnqueueWriteBuffer(p.queue, mem, false, 0, probeBytes, host.Ptr(0), nil)
	if err != nil {
		return nil, err
	}
	events = append(events, write)
	run, err := p.api.EnqueueNDRangeKernel(p.queue, kernel, []int{ProbeWorkItems}, []int{ProbeLocalSize}, []Event{write})
	if err != nil {
		return nil, err
	}
	events = append(events, run)
	read, err := p.api.EnqueueReadBuffer(p.queue, mem, false, 0, probeBytes, host.Ptr(0), []Event{run})
	if err != nil {
		return nil, err
	}
	events = append(events, read)

	done := make(chan Status, 1)
	if err = p.api.SetEventCallback(read, func(s Status) { done <- s }); err != nil {
		return nil, err
	}
	log.Debug().Msg("kernel_test enqueued")

	select {
	case s := <-done:
		if s != Complete {
			return nil, fmt.Errorf("%s completion: %w", ProbeKernelName, s)
		}
	case <-ctx.Done():
		// the driver may still be writing into host memory
		err = multierr.Append(ctx.Err(), p.api.WaitForEvents([]Event{read}))
		return nil, err
	}

	result := &ProbeResult{Values: make([]uint32, ProbeWorkItems)}
	buf := host.Bytes()
	for i := range result.Values {
		result.Values[i] = binary.NativeEndian.Uint32(buf[i*4:])
	}
	result.KernelTime, err = p.kernelTime(run)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Probe) kernelTime(ev Event) (time.Duration, error) {
	start, err := p.api.GetEventProfilingInfo(ev, ProfilingStart)
	if errors.Is(err, ProfilingInfoNotAvailable) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	end, err := p.api.GetEventProfilingInfo(ev, ProfilingEnd)
	if err != nil {
		return 0, err
	}
	if end < start {
		return 0, nil
	}
	return time.Duration(end - start), nil
}

// Close releases the program, queue and context.
func (p *Probe) Close() error {
	var err error
	if p.program != 0 {
		err = multierr.Append(err, p.api.ReleaseProgram(p.program))
		p.program = 0
	}
	if p.queue != 0 {
		err = multierr.Append(err, p.api.ReleaseCommandQueue(p.queue))
		p.queue = 0
	}
	if p.ctx != 0 {
		err = multierr.Append(err, p.api.ReleaseContext(p.ctx))
		p.ctx = 0
	}
	return err
}

// WriteValues prints the values space separated on one line.
func WriteValues(w io.Writer, values []uint32) error {
	buf := make([]byte, 0, len(values)*6+1)
	for _, v := range values {
		buf = fmt.Appendf(buf, " %d", v)
	}
	buf = append(buf, '\n')
	_, err := w.Write(buf)
	return err
}
