package cuda

import (
	"fmt"
	"io"
)

// Attribute is a catalog entry with the value the driver reported.
type Attribute struct {
	CatalogEntry
	Value int32
}

func (a Attribute) String() string { return a.Kind.Format(a.Value) }

// DeviceInfo is everything nvinfo prints for one device.
type DeviceInfo struct {
	Ordinal    int
	Name       string
	TotalMem   uint64
	Attributes []Attribute
}

// DriverVersion returns the driver API version as "major.minor".
func DriverVersion(api API) (string, error) {
	v, err := api.DriverGetVersion()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d.%d", v/1000, (v%1000)/10), nil
}

// QueryDevice reads the name, memory size and every catalog attribute of the
// device with the given ordinal. Init must have been called.
func QueryDevice(api API, ordinal int) (*DeviceInfo, error) {
	dev, err := api.DeviceGet(ordinal)
	if err != nil {
		return nil, err
	}
	info := &DeviceInfo{Ordinal: ordinal, Attributes: make([]Attribute, 0, len(Catalog))}
	if info.Name, err = api.DeviceGetName(dev); err != nil {
		return nil, err
	}
	if info.TotalMem, err = api.DeviceTotalMem(dev); err != nil {
		return nil, err
	}
	for _, entry := range Catalog {
		v, err := api.DeviceGetAttribute(entry.Attr, dev)
		if err != nil {
			return nil, err
		}
		info.Attributes = append(info.Attributes, Attribute{CatalogEntry: entry, Value: v})
	}
	return info, nil
}

// Dump initializes the driver and prints the driver version followed by
// every device.
func Dump(w io.Writer, api API) error {
	if err := api.Init(); err != nil {
		return err
	}
	version, err := DriverVersion(api)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "driver version: %s\n", version)

	count, err := api.DeviceGetCount()
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		info, err := QueryDevice(api, i)
		if err != nil {
			return err
		}
		WriteDevice(w, info)
	}
	return nil
}

// WriteDevice prints one device block.
func WriteDevice(w io.Writer, d *DeviceInfo) {
	fmt.Fprintf(w, "device name: %s\n", d.Name)
	fmt.Fprintf(w, "global memory size: %dMB\n", d.TotalMem>>20)
	for _, a := range d.Attributes {
		fmt.Fprintf(w, "%s:  %s\n", a.Label, a)
	}
}
