package discovery

import (
	"context"

	"github.com/metawear-go/metawear/pkg/connector/ble"
)

const unknownName = "(unknown)"

// DiscoverNative scans through the go-ble adapter. It reports the same devices as Discover, with
// unnamed peripherals labelled "(unknown)" the way hcitool does.
func DiscoverNative(ctx context.Context, opts Options) ([]Device, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if err := ble.InitAdapterWithID(opts.Interface); err != nil {
		return nil, err
	}
	beacons, err := ble.Scan(ctx, opts.Timeout)
	if err != nil {
		return nil, err
	}
	devices := beaconsToDevices(beacons)
	if !opts.AllDevices {
		devices = FilterByName(devices, MetaWearName)
	}
	return devices, nil
}

func beaconsToDevices(beacons []ble.Beacon) []Device {
	devices := make([]Device, 0, len(beacons))
	for _, b := range beacons {
		name := b.LocalName
		if name == "" {
			name = unknownName
		}
		devices = append(devices, Device{Address: b.Address, Name: name})
	}
	return devices
}
