package protocol

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// GATT identifiers exposed by MetaWear boards.
var (
	MetaWearServiceUUID = uuid.MustParse("326a9000-85cb-9195-d9dd-464cfbbae75a")
	CommandCharUUID     = uuid.MustParse("326a9001-85cb-9195-d9dd-464cfbbae75a")
	NotifyCharUUID      = uuid.MustParse("326a9006-85cb-9195-d9dd-464cfbbae75a")

	DeviceInfoServiceUUID = uuid.MustParse("0000180a-0000-1000-8000-00805f9b34fb")
	ManufacturerCharUUID  = uuid.MustParse("00002a29-0000-1000-8000-00805f9b34fb")
	ModelNumberCharUUID   = uuid.MustParse("00002a24-0000-1000-8000-00805f9b34fb")
	SerialNumberCharUUID  = uuid.MustParse("00002a25-0000-1000-8000-00805f9b34fb")
	FirmwareRevCharUUID   = uuid.MustParse("00002a26-0000-1000-8000-00805f9b34fb")
	HardwareRevCharUUID   = uuid.MustParse("00002a27-0000-1000-8000-00805f9b34fb")

	BatteryServiceUUID   = uuid.MustParse("0000180f-0000-1000-8000-00805f9b34fb")
	BatteryLevelCharUUID = uuid.MustParse("00002a19-0000-1000-8000-00805f9b34fb")
)

var (
	CommandChar  = Characteristic{ServiceUUID: MetaWearServiceUUID, UUID: CommandCharUUID}
	NotifyChar   = Characteristic{ServiceUUID: MetaWearServiceUUID, UUID: NotifyCharUUID}
	FirmwareChar = Characteristic{ServiceUUID: DeviceInfoServiceUUID, UUID: FirmwareRevCharUUID}
)

// Characteristic identifies a GATT characteristic by its service and characteristic UUIDs. This is
// the form in which the board library names the endpoints it wants to read or write.
type Characteristic struct {
	ServiceUUID uuid.UUID
	UUID        uuid.UUID
}

// CharacteristicFromWords builds a Characteristic from the board library's representation, where
// each 128-bit UUID is split into a high and a low 64-bit word.
func CharacteristicFromWords(serviceHigh, serviceLow, charHigh, charLow uint64) Characteristic {
	return Characteristic{
		ServiceUUID: uuidFromWords(serviceHigh, serviceLow),
		UUID:        uuidFromWords(charHigh, charLow),
	}
}

// Words returns c in the board library's representation. It is the inverse of
// CharacteristicFromWords.
func (c Characteristic) Words() (serviceHigh, serviceLow, charHigh, charLow uint64) {
	serviceHigh, serviceLow = uuidToWords(c.ServiceUUID)
	charHigh, charLow = uuidToWords(c.UUID)
	return
}

func (c Characteristic) String() string {
	return c.ServiceUUID.String() + "/" + c.UUID.String()
}

func uuidFromWords(high, low uint64) uuid.UUID {
	var u uuid.UUID
	binary.BigEndian.PutUint64(u[:8], high)
	binary.BigEndian.PutUint64(u[8:], low)
	return u
}

func uuidToWords(u uuid.UUID) (high, low uint64) {
	return binary.BigEndian.Uint64(u[:8]), binary.BigEndian.Uint64(u[8:])
}
