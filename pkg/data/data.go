// Package data decodes sensor samples reported by the MetaWear board library.
//
// The board library hands samples to subscribers as a type tag plus a pointer into a buffer it
// reuses for the next sample. Callers copy the bytes out (see [Size]) and decode them with
// [Decode]; values returned by this package never alias the input.
package data

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// TypeID is the board library's tag describing the layout of a sample.
type TypeID int32

const (
	TypeUint32         TypeID = 0
	TypeFloat          TypeID = 1
	TypeCartesianFloat TypeID = 2
	TypeInt32          TypeID = 3
	TypeByteArray      TypeID = 4
	TypeBatteryState   TypeID = 5
	TypeTcs34725Adc    TypeID = 6
)

var typeNames = map[TypeID]string{
	TypeUint32:         "UINT32",
	TypeFloat:          "FLOAT",
	TypeCartesianFloat: "CARTESIAN_FLOAT",
	TypeInt32:          "INT32",
	TypeByteArray:      "BYTE_ARRAY",
	TypeBatteryState:   "BATTERY_STATE",
	TypeTcs34725Adc:    "TCS34725_ADC",
}

func (t TypeID) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TypeID(%d)", int32(t))
}

// Native sizes, including trailing struct padding.
const (
	sizeUint32         = 4
	sizeFloat          = 4
	sizeCartesianFloat = 12
	sizeBatteryState   = 4
	sizeTcs34725Adc    = 8
)

var ErrShortBuffer = errors.New("data: buffer shorter than native layout")

// UnrecognizedTypeError is returned for tags this package cannot decode.
type UnrecognizedTypeError struct {
	Type TypeID
}

func (e *UnrecognizedTypeError) Error() string {
	return fmt.Sprintf("unrecognized data type id: %d", int32(e.Type))
}

// CartesianFloat is a three-axis sample, e.g. acceleration in g.
type CartesianFloat struct {
	X, Y, Z float32
}

func (c CartesianFloat) String() string {
	return fmt.Sprintf("{x: %.3f, y: %.3f, z: %.3f}", c.X, c.Y, c.Z)
}

// BatteryState reports the supply voltage in millivolts and the charge in percent.
type BatteryState struct {
	Voltage uint16
	Charge  uint8
}

func (b BatteryState) String() string {
	return fmt.Sprintf("{voltage: %d mV, charge: %d%%}", b.Voltage, b.Charge)
}

// Tcs34725ColorAdc holds the raw ADC readings of the TCS34725 color sensor.
type Tcs34725ColorAdc struct {
	Clear, Red, Green, Blue uint16
}

func (c Tcs34725ColorAdc) String() string {
	return fmt.Sprintf("{clear: %d, red: %d, green: %d, blue: %d}", c.Clear, c.Red, c.Green, c.Blue)
}

// Data is a decoded sample. Value holds one of uint32, float32, CartesianFloat, BatteryState,
// Tcs34725ColorAdc or []byte depending on Type.
type Data struct {
	Type  TypeID
	Value interface{}
}

func (d Data) String() string {
	if b, ok := d.Value.([]byte); ok {
		return fmt.Sprintf("%s %02x", d.Type, b)
	}
	return fmt.Sprintf("%s %v", d.Type, d.Value)
}

// Size returns the number of bytes to copy out of the native buffer for a sample tagged t. The
// length reported by the library is only meaningful for byte arrays. Size returns an
// UnrecognizedTypeError for tags Decode does not support.
func Size(t TypeID, length int) (int, error) {
	switch t {
	case TypeUint32:
		return sizeUint32, nil
	case TypeFloat:
		return sizeFloat, nil
	case TypeCartesianFloat:
		return sizeCartesianFloat, nil
	case TypeBatteryState:
		return sizeBatteryState, nil
	case TypeTcs34725Adc:
		return sizeTcs34725Adc, nil
	case TypeByteArray:
		if length < 0 {
			return 0, ErrShortBuffer
		}
		return length, nil
	}
	return 0, &UnrecognizedTypeError{Type: t}
}

// Decode interprets raw, which must hold the native little-endian layout selected by t.
func Decode(t TypeID, raw []byte) (Data, error) {
	size, err := Size(t, len(raw))
	if err != nil {
		return Data{}, err
	}
	if len(raw) < size {
		return Data{}, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrShortBuffer, t, size, len(raw))
	}

	le := binary.LittleEndian
	d := Data{Type: t}
	switch t {
	case TypeUint32:
		d.Value = le.Uint32(raw)
	case TypeFloat:
		d.Value = math.Float32frombits(le.Uint32(raw))
	case TypeCartesianFloat:
		d.Value = CartesianFloat{
			X: math.Float32frombits(le.Uint32(raw[0:])),
			Y: math.Float32frombits(le.Uint32(raw[4:])),
			Z: math.Float32frombits(le.Uint32(raw[8:])),
		}
	case TypeBatteryState:
		d.Value = BatteryState{Voltage: le.Uint16(raw[0:]), Charge: raw[2]}
	case TypeTcs34725Adc:
		d.Value = Tcs34725ColorAdc{
			Clear: le.Uint16(raw[0:]),
			Red:   le.Uint16(raw[2:]),
			Green: le.Uint16(raw[4:]),
			Blue:  le.Uint16(raw[6:]),
		}
	case TypeByteArray:
		d.Value = append([]byte{}, raw[:size]...)
	}
	return d, nil
}
