package protocol

import (
	"errors"
	"fmt"
)

// Error exposes methods useful for categorizing errors.
type Error interface {
	error

	// Temporary returns true if the Error might be the result of a transient condition. For
	// example, a board that is still advertising a previous connection may not accept a new one
	// until the link supervision timeout expires.
	Temporary() bool
}

var (
	// ErrConnectionTimeout indicates the transport did not report a connection before the
	// connect timeout expired.
	ErrConnectionTimeout = NewError("could not establish a connection", true)
	// ErrMissingCapabilities indicates the scan tool is not allowed to configure the Bluetooth
	// adapter. Grant it CAP_NET_RAW and CAP_NET_ADMIN with setcap.
	ErrMissingCapabilities = NewError("missing capabilities for hcitool", false)
	// ErrScanFailed indicates the scan tool could not talk to the Bluetooth adapter.
	ErrScanFailed = NewError("could not perform scan", true)
	// ErrAmbiguousCharacteristic indicates more than one characteristic matches a UUID.
	ErrAmbiguousCharacteristic = NewError("more than one characteristic matches", false)
	// ErrCharacteristicNotFound indicates the board does not expose a characteristic.
	ErrCharacteristicNotFound = NewError("no characteristic matches", false)
	// ErrNotInitialized indicates the board library has not finished initializing.
	ErrNotInitialized = NewError("board not initialized", true)
	// ErrLibraryUnavailable indicates the native board library could not be loaded.
	ErrLibraryUnavailable = errors.New("board library unavailable")
	// ErrNoDevices indicates discovery completed without finding a MetaWear board.
	ErrNoDevices = errors.New("no MetaWear boards could be detected")
	// ErrClosed indicates the client was used after Close.
	ErrClosed = errors.New("client closed")
)

type ClientError struct {
	Err               error
	PossibleTemporary bool
}

func NewError(message string, temporary bool) error {
	return &ClientError{Err: errors.New(message), PossibleTemporary: temporary}
}

func (e *ClientError) Error() string {
	return e.Err.Error()
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

func (e *ClientError) Temporary() bool {
	return e.PossibleTemporary
}

// Temporary returns true if err wraps an Error that indicates the operation failed due to possibly
// transient conditions that do not require user action to resolve.
func Temporary(err error) bool {
	var e Error
	if errors.As(err, &e) {
		return e.Temporary()
	}
	return false
}

// CharacteristicError ties a GATT failure to the characteristic that triggered it.
type CharacteristicError struct {
	Characteristic Characteristic
	Err            error
}

func (e *CharacteristicError) Error() string {
	return fmt.Sprintf("characteristic %s: %s", e.Characteristic.UUID, e.Err)
}

func (e *CharacteristicError) Unwrap() error {
	return e.Err
}

func (e *CharacteristicError) Temporary() bool {
	return Temporary(e.Err)
}
