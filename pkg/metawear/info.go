package metawear

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/metawear-go/metawear/pkg/protocol"
)

// DeviceInfo holds the strings published by the standard Device Information service.
type DeviceInfo struct {
	Manufacturer     string `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
	ModelNumber      string `json:"model_number,omitempty" yaml:"model_number,omitempty"`
	SerialNumber     string `json:"serial_number,omitempty" yaml:"serial_number,omitempty"`
	FirmwareRevision string `json:"firmware_revision,omitempty" yaml:"firmware_revision,omitempty"`
	HardwareRevision string `json:"hardware_revision,omitempty" yaml:"hardware_revision,omitempty"`
}

func (d DeviceInfo) String() string {
	return fmt.Sprintf("%s %s (serial %s, firmware %s, hardware %s)",
		d.Manufacturer, d.ModelNumber, d.SerialNumber, d.FirmwareRevision, d.HardwareRevision)
}

// DeviceInfo reads the Device Information service directly from the transport. Characteristics
// the board does not expose are left empty.
func (c *Client) DeviceInfo(ctx context.Context) (*DeviceInfo, error) {
	t, err := c.requester(ctx)
	if err != nil {
		return nil, err
	}

	info := &DeviceInfo{}
	fields := []struct {
		u    uuid.UUID
		dest *string
	}{
		{protocol.ManufacturerCharUUID, &info.Manufacturer},
		{protocol.ModelNumberCharUUID, &info.ModelNumber},
		{protocol.SerialNumberCharUUID, &info.SerialNumber},
		{protocol.FirmwareRevCharUUID, &info.FirmwareRevision},
		{protocol.HardwareRevCharUUID, &info.HardwareRevision},
	}
	for _, f := range fields {
		value, err := t.ReadByUUID(ctx, f.u)
		if errors.Is(err, protocol.ErrCharacteristicNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.u, err)
		}
		*f.dest = strings.TrimRight(string(value), "\x00")
	}
	return info, nil
}

// BatteryLevel reads the standard Battery Level characteristic, in percent.
func (c *Client) BatteryLevel(ctx context.Context) (uint8, error) {
	t, err := c.requester(ctx)
	if err != nil {
		return 0, err
	}
	value, err := t.ReadByUUID(ctx, protocol.BatteryLevelCharUUID)
	if err != nil {
		return 0, err
	}
	if len(value) < 1 {
		return 0, fmt.Errorf("empty battery level")
	}
	return value[0], nil
}
