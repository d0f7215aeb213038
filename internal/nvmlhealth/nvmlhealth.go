//go:build linux && cgo

// Package nvmlhealth reports device health through NVML.
package nvmlhealth

import (
	"fmt"
	"io"
	"strconv"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"
)

// NotAvailable is printed for fields the device does not support.
const NotAvailable = "N/A"

// Snapshot is the driver version plus one entry per device.
type Snapshot struct {
	DriverVersion string
	Devices       []Device
}

// Device holds the health fields of one device. Nil pointers mark fields
// the device does not support.
type Device struct {
	Index       int
	Name        string
	UUID        string
	Memory      *nvml.Memory
	Temperature *uint32
	Utilization *nvml.Utilization
}

// New opens NVML from path, or from the default search path when path is
// empty. The library is loaded by Init, not here.
func New(path string) nvml.Interface {
	if path == "" {
		return nvml.New()
	}
	return nvml.New(nvml.WithLibraryPath(path))
}

// Collect initializes NVML, reads every device and shuts NVML down.
func Collect(lib nvml.Interface) (_ *Snapshot, err error) {
	if ret := lib.Init(); ret != nvml.SUCCESS {
		return nil, fmt.Errorf("could not initialize NVML: %w", ret)
	}
	defer func() {
		if ret := lib.Shutdown(); ret != nvml.SUCCESS {
			err = multierr.Append(err, fmt.Errorf("could not shut down NVML: %w", ret))
		}
	}()

	snap := &Snapshot{}
	var ret nvml.Return
	if snap.DriverVersion, ret = lib.SystemGetDriverVersion(); ret != nvml.SUCCESS {
		return nil, fmt.Errorf("could not get driver version: %w", ret)
	}
	count, ret := lib.DeviceGetCount()
	if ret != nvml.SUCCESS {
		return nil, fmt.Errorf("could not get device count: %w", ret)
	}
	log.Debug().Str("driver", snap.DriverVersion).Int("devices", count).Msg("nvml initialized")

	for i := 0; i < count; i++ {
		dev, err := collectDevice(lib, i)
		if err != nil {
			return nil, err
		}
		snap.Devices = append(snap.Devices, *dev)
	}
	return snap, nil
}

func collectDevice(lib nvml.Interface, idx int) (*Device, error) {
	handle, ret := lib.DeviceGetHandleByIndex(idx)
	if ret != nvml.SUCCESS {
		return nil, fmt.Errorf("could not get device %d: %w", idx, ret)
	}
	d := &Device{Index: idx}

	name, ret := handle.GetName()
	if err := check(idx, "name", ret); err != nil {
		return nil, err
	}
	d.Name = orNA(name, ret)

	uuid, ret := handle.GetUUID()
	if err := check(idx, "uuid", ret); err != nil {
		return nil, err
	}
	d.UUID = orNA(uuid, ret)

	mem, ret := handle.GetMemoryInfo()
	if err := check(idx, "memory info", ret); err != nil {
		return nil, err
	}
	if ret == nvml.SUCCESS {
		d.Memory = &mem
	}

	temp, ret := handle.GetTemperature(nvml.TEMPERATURE_GPU)
	if err := check(idx, "temperature", ret); err != nil {
		return nil, err
	}
	if ret == nvml.SUCCESS {
		d.Temperature = &temp
	}

	util, ret := handle.GetUtilizationRates()
	if err := check(idx, "utilization", ret); err != nil {
		return nil, err
	}
	if ret == nvml.SUCCESS {
		d.Utilization = &util
	}
	return d, nil
}

// check returns nil for success and for fields the device does not support.
func check(idx int, field string, ret nvml.Return) error {
	switch {
	case ret == nvml.SUCCESS:
		return nil
	case isNotSupported(ret):
		log.Debug().Int("device", idx).Str("field", field).Msg("not supported")
		return nil
	default:
		return fmt.Errorf("could not get %s of device %d: %w", field, idx, ret)
	}
}

func isNotSupported(ret nvml.Return) bool {
	return ret == nvml.ERROR_NOT_SUPPORTED || ret == nvml.ERROR_FUNCTION_NOT_FOUND
}

func orNA(s string, ret nvml.Return) string {
	if ret != nvml.SUCCESS {
		return NotAvailable
	}
	return s
}

// Render prints the driver version and a device table.
func (s *Snapshot) Render(w io.Writer) {
	fmt.Fprintf(w, "driver version: %s\n", s.DriverVersion)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Index", "Name", "UUID", "Memory", "Temperature", "Utilization"})
	table.SetAutoWrapText(false)
	for _, d := range s.Devices {
		table.Append([]string{
			strconv.Itoa(d.Index),
			d.Name,
			d.UUID,
			d.memoryCell(),
			d.temperatureCell(),
			d.utilizationCell(),
		})
	}
	table.Render()
}

func (d *Device) memoryCell() string {
	if d.Memory == nil {
		return NotAvailable
	}
	return humanize.IBytes(d.Memory.Used) + " / " + humanize.IBytes(d.Memory.Total)
}

func (d *Device) temperatureCell() string {
	if d.Temperature == nil {
		return NotAvailable
	}
	return fmt.Sprintf("%dC", *d.Temperature)
}

func (d *Device) utilizationCell() string {
	if d.Utilization == nil {
		return NotAvailable
	}
	return fmt.Sprintf("%d%% gpu, %d%% mem", d.Utilization.Gpu, d.Utilization.Memory)
}
