package native

import (
	"unsafe"

	"github.com/metawear-go/metawear/internal/log"
	"github.com/metawear-go/metawear/pkg/data"
	"github.com/metawear-go/metawear/pkg/protocol"
)

// gattChar matches MblMwGattChar.
type gattChar struct {
	serviceUUIDHigh uint64
	serviceUUIDLow  uint64
	uuidHigh        uint64
	uuidLow         uint64
}

func newGattChar(c protocol.Characteristic) gattChar {
	var g gattChar
	g.serviceUUIDHigh, g.serviceUUIDLow, g.uuidHigh, g.uuidLow = c.Words()
	return g
}

func (g *gattChar) characteristic() protocol.Characteristic {
	return protocol.CharacteristicFromWords(g.serviceUUIDHigh, g.serviceUUIDLow, g.uuidHigh, g.uuidLow)
}

// btleConnection matches MblMwBtleConnection. Both fields hold C function pointers.
type btleConnection struct {
	writeGattChar uintptr
	readGattChar  uintptr
}

// mblMwData matches MblMwData.
type mblMwData struct {
	value  unsafe.Pointer
	typeID int32
	length uint8
}

// copyBytes copies n bytes starting at p into Go memory.
func copyBytes(p unsafe.Pointer, n int) []byte {
	if p == nil || n <= 0 {
		return []byte{}
	}
	out := make([]byte, n)
	copy(out, unsafe.Slice((*byte)(p), n))
	return out
}

// decodeSample copies a sample out of the library's buffer and decodes it.
func decodeSample(d *mblMwData) (data.Data, error) {
	t := data.TypeID(d.typeID)
	n, err := data.Size(t, int(d.length))
	if err != nil {
		return data.Data{}, err
	}
	return data.Decode(t, copyBytes(d.value, n))
}

// maxBufferLength is the largest buffer the library's uint8 length arguments can describe.
const maxBufferLength = 0xff

// bufferArgs returns a pointer/length pair suitable for passing value to the library. Longer
// values are cut to maxBufferLength.
func bufferArgs(value []byte) (*byte, uint8) {
	if len(value) == 0 {
		return nil, 0
	}
	if len(value) > maxBufferLength {
		log.Warning("native: truncating %d byte value to %d bytes", len(value), maxBufferLength)
		value = value[:maxBufferLength]
	}
	return &value[0], uint8(len(value))
}
