package opencl

import (
	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"

	"github.com/cwbudde/gpudiag/internal/hostmem"
)

// Transfer moves data between host memory and a single device buffer on an
// out-of-order queue. Every enqueue waits on the previous one, so transfers
// complete in submission order.
type Transfer struct {
	api      API
	name     string
	ctx      Context
	queue    CommandQueue
	dmem     Mem
	pinned   Mem
	host     *hostmem.Buffer
	blocking bool
	events   []Event
}

// NewTransfer sets up a context, queue, host memory and device buffer of
// size bytes on the selected device. In async mode the host memory is also
// registered as a CL_MEM_USE_HOST_PTR buffer and transfers do not block.
func NewTransfer(api API, sel *Selection, size int, async bool) (_ *Transfer, err error) {
	t := &Transfer{api: api, name: sel.DeviceName, blocking: !async}
	defer func() {
		if err != nil {
			err = multierr.Append(err, t.Close())
		}
	}()

	if t.ctx, err = api.CreateContext([]DeviceID{sel.Device}); err != nil {
		return nil, err
	}
	if t.queue, err = api.CreateCommandQueue(t.ctx, sel.Device, QueueOutOfOrderExec); err != nil {
		return nil, err
	}
	if t.host, err = hostmem.Alloc(size); err != nil {
		return nil, err
	}
	if t.dmem, err = api.CreateBuffer(t.ctx, MemReadWrite, size, nil); err != nil {
		return nil, err
	}
	if async {
		t.pinned, err = api.CreateBuffer(t.ctx, MemReadWrite|MemUseHostPtr, size, t.host.Ptr(0))
		if err != nil {
			return nil, err
		}
	}
	log.Debug().Str("device", t.name).Int("size", size).Bool("async", async).Msg("opencl transfer ready")
	return t, nil
}

// DeviceName returns the name of the device under test.
func (t *Transfer) DeviceName() string { return t.name }

// HostToDevice copies size bytes at offset from host memory to the same
// offset of the device buffer.
func (t *Transfer) HostToDevice(offset, size int) error {
	ev, err := t.api.EnqueueWriteBuffer(t.queue, t.dmem, t.blocking, offset, size, t.host.Ptr(offset), t.waitList())
	if err != nil {
		return err
	}
	t.events = append(t.events, ev)
	return nil
}

// DeviceToHost copies the first size bytes of the device buffer back.
func (t *Transfer) DeviceToHost(size int) error {
	ev, err := t.api.EnqueueReadBuffer(t.queue, t.dmem, t.blocking, 0, size, t.host.Ptr(0), t.waitList())
	if err != nil {
		return err
	}
	t.events = append(t.events, ev)
	return nil
}

// Synchronize blocks until the queue drains.
func (t *Transfer) Synchronize() error {
	return t.api.Finish(t.queue)
}

// Close drains the queue, then releases events, buffers, queue, context
// and host memory. Non-blocking transfers may still reference the host
// memory until the queue is drained.
func (t *Transfer) Close() error {
	var err error
	if t.queue != 0 {
		err = multierr.Append(err, t.api.Finish(t.queue))
	}
	for _, ev := range t.events {
		err = multierr.Append(err, t.api.ReleaseEvent(ev))
	}
	t.events = nil
	if t.pinned != 0 {
		err = multierr.Append(err, t.api.ReleaseMemObject(t.pinned))
		t.pinned = 0
	}
	if t.dmem != 0 {
		err = multierr.Append(err, t.api.ReleaseMemObject(t.dmem))
		t.dmem = 0
	}
	if t.queue != 0 {
		err = multierr.Append(err, t.api.ReleaseCommandQueue(t.queue))
		t.queue = 0
	}
	if t.ctx != 0 {
		err = multierr.Append(err, t.api.ReleaseContext(t.ctx))
		t.ctx = 0
	}
	if t.host != nil {
		err = multierr.Append(err, t.host.Free())
		t.host = nil
	}
	return err
}

func (t *Transfer) waitList() []Event {
	if len(t.events) == 0 {
		return nil
	}
	return t.events[len(t.events)-1:]
}
