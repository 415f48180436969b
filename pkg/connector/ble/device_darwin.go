package ble

import (
	"github.com/go-ble/ble"
	"github.com/go-ble/ble/darwin"

	"github.com/metawear-go/metawear/internal/log"
)

func newDevice(id string) (ble.Device, error) {
	if id != "" {
		log.Warning("Darwin does not support specifying a Bluetooth adapter ID")
		return nil, ErrAdapterInvalidID
	}
	return darwin.NewDevice()
}

func IsAdapterError(_ error) bool {
	// TODO: Map CoreBluetooth "powered off" and "unauthorized" states once go-ble exposes them.
	return false
}

func AdapterErrorHelpMessage(err error) string {
	return err.Error()
}
