package ble

import (
	"fmt"
	"sync"

	"github.com/go-ble/ble"

	"github.com/metawear-go/metawear/internal/log"
	"github.com/metawear-go/metawear/pkg/protocol"
)

var ErrAdapterInvalidID = protocol.NewError("the bluetooth adapter ID is invalid", false)

var (
	device ble.Device
	mu     sync.Mutex
)

// InitAdapterWithID opens the Bluetooth adapter identified by id ("hci1" or "1" on Linux). An
// empty id selects the first available adapter.
//
// The adapter is shared by every Transport and scan in the process. Calling InitAdapterWithID
// while an adapter is open reuses it.
func InitAdapterWithID(id string) error {
	mu.Lock()
	defer mu.Unlock()
	return initAdapterLocked(id)
}

func initAdapterLocked(id string) error {
	// Multiple calls to linux.NewDevice() fail, so the device is reused even if id changed.
	if device != nil {
		log.Debug("Reusing existing BLE device")
		return nil
	}
	log.Debug("Creating new BLE adapter")
	d, err := newDevice(id)
	if err != nil {
		return fmt.Errorf("ble: failed to enable device: %w", err)
	}
	device = d
	return nil
}

// CloseAdapter unsets the BLE adapter so that a new one can be created on the next call to
// InitAdapterWithID. This does not disconnect any existing connections or stop any ongoing scans;
// close those first.
func CloseAdapter() error {
	mu.Lock()
	defer mu.Unlock()
	if device != nil {
		if err := device.Stop(); err != nil {
			return fmt.Errorf("ble: failed to stop device: %w", err)
		}
		device = nil
		log.Debug("Closed BLE adapter")
	}
	return nil
}

// currentDevice returns the shared adapter, opening the default one if needed.
func currentDevice() (ble.Device, error) {
	mu.Lock()
	defer mu.Unlock()
	if err := initAdapterLocked(""); err != nil {
		return nil, err
	}
	return device, nil
}
