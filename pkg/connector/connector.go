package connector

import (
	"context"

	"github.com/google/uuid"
)

// Service is a primary GATT service discovered on a board.
type Service struct {
	UUID      uuid.UUID
	Handle    uint16
	EndHandle uint16
}

// Characteristic is a GATT characteristic discovered on a board.
type Characteristic struct {
	ServiceUUID uuid.UUID
	UUID        uuid.UUID
	Handle      uint16
	ValueHandle uint16
	Properties  uint8
}

//go:generate mockgen -destination=../../mocks/transport.go -package=mocks -mock_names=Transport=Transport . Transport

// Transport exchanges GATT requests with a single BLE peripheral.
type Transport interface {
	// Address returns the Bluetooth address of the peripheral.
	Address() string

	// Connect starts establishing a connection and returns without waiting for it to complete.
	// Callers poll Connected to learn the outcome. Calling Connect while a connection is
	// established or pending is a no-op.
	Connect(ctx context.Context) error

	// Connected reports whether the connection is established.
	Connected() bool

	// DiscoverPrimary lists the primary services of the peripheral.
	DiscoverPrimary(ctx context.Context) ([]Service, error)

	// DiscoverCharacteristics lists every characteristic whose UUID equals u.
	DiscoverCharacteristics(ctx context.Context, u uuid.UUID) ([]Characteristic, error)

	// ReadByUUID reads the value of the first characteristic whose UUID equals u.
	ReadByUUID(ctx context.Context, u uuid.UUID) ([]byte, error)

	// WriteByHandle writes value to the characteristic with the given value handle. Transports
	// that surface the peripheral's reply to a write return it; others return a nil response.
	WriteByHandle(ctx context.Context, handle uint16, value []byte) (response []byte, err error)

	// Subscribe enables notifications on the first characteristic whose UUID equals u. handler
	// may be invoked on a goroutine owned by the transport.
	Subscribe(ctx context.Context, u uuid.UUID, handler func(value []byte)) error

	// Close terminates the connection. Repeated calls to Close must be idempotent.
	Close() error
}
