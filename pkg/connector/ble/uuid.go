package ble

import (
	"bytes"
	"encoding/binary"

	"github.com/go-ble/ble"
	"github.com/google/uuid"
)

// baseUUID is the Bluetooth Base UUID, 00000000-0000-1000-8000-00805f9b34fb.
var baseUUID = uuid.MustParse("00000000-0000-1000-8000-00805f9b34fb")

// toBLE converts u to go-ble's little-endian form, using the 16-bit short form for assigned
// numbers so that comparisons with discovered attributes succeed.
func toBLE(u uuid.UUID) ble.UUID {
	if bytes.Equal(u[4:], baseUUID[4:]) && u[0] == 0 && u[1] == 0 {
		return ble.UUID16(binary.BigEndian.Uint16(u[2:4]))
	}
	return ble.UUID(ble.Reverse(u[:]))
}

// fromBLE expands a go-ble UUID of any length into a 128-bit UUID.
func fromBLE(b ble.UUID) uuid.UUID {
	u := baseUUID
	switch len(b) {
	case 2:
		u[2], u[3] = b[1], b[0]
	case 4:
		u[0], u[1], u[2], u[3] = b[3], b[2], b[1], b[0]
	case 16:
		copy(u[:], ble.Reverse(b))
	}
	return u
}
