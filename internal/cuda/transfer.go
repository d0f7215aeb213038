package cuda

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"

	"github.com/cwbudde/gpudiag/internal/hostmem"
)

// Select initializes the driver and returns the device with the given
// 0-based ordinal and its name.
func Select(api API, ordinal int) (Device, string, error) {
	if err := api.Init(); err != nil {
		return 0, "", err
	}
	count, err := api.DeviceGetCount()
	if err != nil {
		return 0, "", err
	}
	if ordinal < 0 || ordinal >= count {
		return 0, "", fmt.Errorf("%w: cuda device index %d did not exist", ErrNoDevice, ordinal)
	}
	dev, err := api.DeviceGet(ordinal)
	if err != nil {
		return 0, "", err
	}
	name, err := api.DeviceGetName(dev)
	if err != nil {
		return 0, "", err
	}
	return dev, name, nil
}

// Transfer moves data between host memory and one device allocation in the
// current context. Sync mode copies from pageable memory with cuMemcpy*;
// async mode copies from cuMemAllocHost memory with cuMemcpy*Async on a
// dedicated stream.
//
// The context is current only on the OS thread that created it. Callers
// must create, use and close a Transfer from one goroutine locked with
// runtime.LockOSThread.
type Transfer struct {
	api    API
	name   string
	ctx    Context
	stream Stream
	dmem   DevicePtr
	host   *hostmem.Buffer
	async  bool
}

// NewTransfer creates a context on the device with the given ordinal and
// allocates size bytes of host and device memory.
func NewTransfer(api API, ordinal, size int, async bool) (_ *Transfer, err error) {
	dev, name, err := Select(api, ordinal)
	if err != nil {
		return nil, err
	}
	t := &Transfer{api: api, name: name, async: async}
	defer func() {
		if err != nil {
			err = multierr.Append(err, t.Close())
		}
	}()

	if t.ctx, err = api.CtxCreate(CtxSchedAuto, dev); err != nil {
		return nil, err
	}
	if err = api.CtxSetCurrent(t.ctx); err != nil {
		return nil, err
	}
	if async {
		if t.stream, err = api.StreamCreate(StreamDefault); err != nil {
			return nil, err
		}
		ptr, err := api.MemAllocHost(size)
		if err != nil {
			return nil, err
		}
		t.host = hostmem.Wrap(ptr, size, func() error { return api.MemFreeHost(ptr) })
	} else if t.host, err = hostmem.Alloc(size); err != nil {
		return nil, err
	}
	if t.dmem, err = api.MemAlloc(size); err != nil {
		return nil, err
	}
	log.Debug().Str("device", name).Int("size", size).Bool("async", async).Msg("cuda transfer ready")
	return t, nil
}

// DeviceName returns the name of the device under test.
func (t *Transfer) DeviceName() string { return t.name }

// HostToDevice copies size bytes at offset from host memory to the same
// offset of the device allocation.
func (t *Transfer) HostToDevice(offset, size int) error {
	dst := t.dmem + DevicePtr(offset)
	if t.async {
		return t.api.MemcpyHtoDAsync(dst, t.host.Ptr(offset), size, t.stream)
	}
	return t.api.MemcpyHtoD(dst, t.host.Ptr(offset), size)
}

// DeviceToHost copies the first size bytes of the device allocation back.
func (t *Transfer) DeviceToHost(size int) error {
	if t.async {
		return t.api.MemcpyDtoHAsync(t.host.Ptr(0), t.dmem, size, t.stream)
	}
	return t.api.MemcpyDtoH(t.host.Ptr(0), t.dmem, size)
}

// Synchronize blocks until every copy in the context has completed.
func (t *Transfer) Synchronize() error {
	return t.api.CtxSynchronize()
}

// Close waits for outstanding copies, then frees device and host memory,
// the stream and the context.
func (t *Transfer) Close() error {
	var err error
	if t.ctx != 0 {
		err = multierr.Append(err, t.api.CtxSetCurrent(t.ctx))
		err = multierr.Append(err, t.api.CtxSynchronize())
	}
	if t.dmem != 0 {
		err = multierr.Append(err, t.api.MemFree(t.dmem))
		t.dmem = 0
	}
	if t.host != nil {
		err = multierr.Append(err, t.host.Free())
		t.host = nil
	}
	if t.stream != 0 {
		err = multierr.Append(err, t.api.StreamDestroy(t.stream))
		t.stream = 0
	}
	if t.ctx != 0 {
		err = multierr.Append(err, t.api.CtxDestroy(t.ctx))
		t.ctx = 0
	}
	return err
}
