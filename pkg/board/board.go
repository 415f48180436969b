// Package board describes the surface of the native MetaWear board library that the client
// drives, independently of how the library is loaded.
package board

import (
	"fmt"

	"github.com/metawear-go/metawear/pkg/data"
	"github.com/metawear-go/metawear/pkg/protocol"
)

// Bridge is implemented by the owner of a GATT transport. The board library calls it whenever it
// needs to exchange bytes with the physical board.
//
// Bridge methods run on the goroutine that called into the library and must not call back into
// Board methods that are guarded by the caller's lock.
type Bridge interface {
	// ReadGattChar reads char and must hand the value back through Board.CharRead.
	ReadGattChar(char protocol.Characteristic) error
	// WriteGattChar writes value to char.
	WriteGattChar(char protocol.Characteristic, value []byte) error
}

//go:generate mockgen -destination=../../mocks/library.go -package=mocks -mock_names=Library=Library . Library

// Library creates board handles.
type Library interface {
	Create(bridge Bridge) (Board, error)
}

// Signal is an opaque handle to a data signal owned by the board library.
type Signal uintptr

// SignalID selects one of the data signals this package knows how to obtain.
type SignalID int

const (
	SignalBatteryState SignalID = iota
	SignalSwitch
	SignalAcceleration
)

var signalNames = map[SignalID]string{
	SignalBatteryState: "battery",
	SignalSwitch:       "switch",
	SignalAcceleration: "acceleration",
}

func (s SignalID) String() string {
	if name, ok := signalNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SignalID(%d)", int(s))
}

//go:generate mockgen -destination=../../mocks/board.go -package=mocks -mock_names=Board=Board . Board

// Board is a handle created by the board library.
type Board interface {
	// Initialize starts the board's discovery handshake. done is called once the library has
	// read everything it needs, possibly before Initialize returns.
	Initialize(done func())
	// CharRead delivers the value of a characteristic previously requested through
	// Bridge.ReadGattChar.
	CharRead(char protocol.Characteristic, value []byte)
	// NotifyCharChanged delivers a notification received on the notify characteristic.
	NotifyCharChanged(value []byte)

	LoadPresetPattern(preset LedPreset) LedPattern
	WritePattern(pattern LedPattern, color LedColor)
	PlayLED()
	StopLED(clear bool)

	ReadBatteryState()
	StartAccelerometer()
	StopAccelerometer()

	// Signal returns the data signal identified by id.
	Signal(id SignalID) (Signal, error)
	// Subscribe registers handler for samples produced by signal. There is at most one handler
	// per signal; subscribing again replaces it.
	Subscribe(signal Signal, handler func(data.Data))
	Unsubscribe(signal Signal)

	// Free releases the native handle. The Board must not be used afterwards.
	Free()
}
