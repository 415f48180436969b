package ble

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"github.com/go-ble/ble/linux/hci/cmd"
)

const bleTimeout = 20 * time.Second

// MetaWear boards advertise every 417.5 ms by default, so the scan window must stay open for a
// large fraction of the interval.
var scanParams = cmd.LESetScanParameters{
	LEScanType:           1,    // Active scanning, needed for the scan response carrying the name
	LEScanInterval:       0x40, // 40ms
	LEScanWindow:         0x30, // 30ms
	OwnAddressType:       0,    // Public
	ScanningFilterPolicy: 0,    // Accept all
}

func newDevice(id string) (ble.Device, error) {
	opts := []ble.Option{
		ble.OptListenerTimeout(bleTimeout),
		ble.OptDialerTimeout(bleTimeout),
		ble.OptScanParams(scanParams),
	}
	if id != "" {
		index, err := strconv.Atoi(strings.TrimPrefix(id, "hci"))
		if err != nil || index < 0 {
			return nil, ErrAdapterInvalidID
		}
		opts = append(opts, ble.OptDeviceID(index))
	}
	return linux.NewDevice(opts...)
}

func IsAdapterError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "operation not permitted") || strings.Contains(msg, "can't init hci")
}

func AdapterErrorHelpMessage(err error) string {
	if strings.Contains(err.Error(), "operation not permitted") {
		// The underlying BLE package calls HCIDEVDOWN on the device before taking it over.
		return fmt.Sprintf("Try again after granting this application CAP_NET_ADMIN:\n\n\tsudo setcap 'cap_net_raw,cap_net_admin=eip' \"$(which %s)\"", os.Args[0])
	}
	return err.Error()
}
