package ble

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-ble/ble"
	"github.com/google/uuid"

	"github.com/metawear-go/metawear/internal/log"
	"github.com/metawear-go/metawear/pkg/connector"
	"github.com/metawear-go/metawear/pkg/protocol"
)

// requestedMTU caps the ATT MTU offered to the peripheral. Notifications then stay under the
// 255 byte limit of the board library's buffer arguments.
const requestedMTU = 247

type dialer interface {
	scanner
	Dial(ctx context.Context, a ble.Addr) (ble.Client, error)
}

// Transport is a connector.Transport backed by go-ble.
type Transport struct {
	address string

	lock    sync.Mutex
	client  ble.Client
	profile *ble.Profile
	dialing bool
	lastErr error
	// generation is bumped by Close so that a dial started earlier discards its connection.
	generation uint64
}

var _ connector.Transport = (*Transport)(nil)

// NewTransport returns a Transport for the peripheral at address. No radio activity happens until
// Connect is called.
func NewTransport(address string) *Transport {
	return &Transport{address: address}
}

func (t *Transport) Address() string {
	return t.address
}

func (t *Transport) String() string {
	return "ble:" + t.address
}

func (t *Transport) Connect(ctx context.Context) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.client != nil || t.dialing {
		return nil
	}
	dev, err := currentDevice()
	if err != nil {
		return err
	}
	t.dialing = true
	t.lastErr = nil
	go t.dial(ctx, dev, t.generation)
	return nil
}

func (t *Transport) Connected() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.client != nil
}

// Err returns the reason the most recent connection attempt failed, if any. Callers polling
// Connected use it to stop waiting early.
func (t *Transport) Err() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.lastErr
}

func (t *Transport) dial(ctx context.Context, d dialer, generation uint64) {
	client, profile, err := establish(ctx, d, t.address)

	t.lock.Lock()
	defer t.lock.Unlock()
	if generation != t.generation {
		if err == nil {
			log.Debug("Dropping connection to %s opened after Close", t.address)
			_ = client.CancelConnection()
		}
		return
	}
	t.dialing = false
	if err != nil {
		log.Warning("BLE connection attempt to %s failed: %s", t.address, err)
		t.lastErr = err
		return
	}
	t.client = client
	t.profile = profile
	go t.watch(client)
	log.Info("Connected to %s", t.address)
}

func establish(ctx context.Context, d dialer, address string) (ble.Client, *ble.Profile, error) {
	log.Debug("Scanning for %s...", address)
	adv, err := scanForAddress(ctx, d, address)
	if err != nil {
		return nil, nil, err
	}

	// Dialing the advertised address keeps its public/random type.
	log.Debug("Dialing to %s (%s)...", adv.Addr(), adv.LocalName())
	client, err := d.Dial(ctx, adv.Addr())
	if err != nil {
		return nil, nil, fmt.Errorf("ble: failed to dial %s: %w", address, err)
	}

	if txMTU, err := client.ExchangeMTU(requestedMTU); err != nil {
		log.Warning("ble: failed to exchange MTU: %s", err)
	} else {
		log.Debug("MTU size: %d", txMTU)
	}

	log.Debug("Discovering profile of %s...", address)
	profile, err := client.DiscoverProfile(true)
	if err != nil {
		_ = client.CancelConnection()
		return nil, nil, fmt.Errorf("ble: failed to discover profile: %w", err)
	}
	return client, profile, nil
}

func (t *Transport) watch(client ble.Client) {
	<-client.Disconnected()
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.client == client {
		log.Info("Disconnected from %s", t.address)
		t.client = nil
		t.profile = nil
	}
}

func (t *Transport) connection(ctx context.Context) (ble.Client, *ble.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.client == nil {
		return nil, nil, fmt.Errorf("ble: not connected to %s", t.address)
	}
	return t.client, t.profile, nil
}

func (t *Transport) DiscoverPrimary(ctx context.Context) ([]connector.Service, error) {
	_, profile, err := t.connection(ctx)
	if err != nil {
		return nil, err
	}
	services := make([]connector.Service, 0, len(profile.Services))
	for _, s := range profile.Services {
		services = append(services, connector.Service{
			UUID:      fromBLE(s.UUID),
			Handle:    s.Handle,
			EndHandle: s.EndHandle,
		})
	}
	return services, nil
}

// characteristics returns every characteristic in profile matching match, paired with the UUID of
// the service that contains it.
func characteristics(profile *ble.Profile, match func(*ble.Characteristic) bool) ([]*ble.Characteristic, []uuid.UUID) {
	var chars []*ble.Characteristic
	var services []uuid.UUID
	for _, s := range profile.Services {
		for _, c := range s.Characteristics {
			if match(c) {
				chars = append(chars, c)
				services = append(services, fromBLE(s.UUID))
			}
		}
	}
	return chars, services
}

func byUUID(u uuid.UUID) func(*ble.Characteristic) bool {
	target := toBLE(u)
	return func(c *ble.Characteristic) bool {
		return c.UUID.Equal(target)
	}
}

func (t *Transport) DiscoverCharacteristics(ctx context.Context, u uuid.UUID) ([]connector.Characteristic, error) {
	_, profile, err := t.connection(ctx)
	if err != nil {
		return nil, err
	}
	chars, services := characteristics(profile, byUUID(u))
	out := make([]connector.Characteristic, 0, len(chars))
	for i, c := range chars {
		out = append(out, connector.Characteristic{
			ServiceUUID: services[i],
			UUID:        fromBLE(c.UUID),
			Handle:      c.Handle,
			ValueHandle: c.ValueHandle,
			Properties:  uint8(c.Property),
		})
	}
	return out, nil
}

func (t *Transport) ReadByUUID(ctx context.Context, u uuid.UUID) ([]byte, error) {
	client, profile, err := t.connection(ctx)
	if err != nil {
		return nil, err
	}
	chars, _ := characteristics(profile, byUUID(u))
	if len(chars) == 0 {
		return nil, fmt.Errorf("%w: %s", protocol.ErrCharacteristicNotFound, u)
	}
	value, err := client.ReadCharacteristic(chars[0])
	if err != nil {
		return nil, fmt.Errorf("ble: failed to read %s: %w", u, err)
	}
	log.Debug("RX %s: %02x", u, value)
	return value, nil
}

func (t *Transport) WriteByHandle(ctx context.Context, handle uint16, value []byte) ([]byte, error) {
	client, profile, err := t.connection(ctx)
	if err != nil {
		return nil, err
	}
	chars, _ := characteristics(profile, func(c *ble.Characteristic) bool {
		return c.ValueHandle == handle
	})
	if len(chars) == 0 {
		return nil, fmt.Errorf("%w: handle 0x%04x", protocol.ErrCharacteristicNotFound, handle)
	}
	log.Debug("TX 0x%04x: %02x", handle, value)
	if err := client.WriteCharacteristic(chars[0], value, false); err != nil {
		return nil, fmt.Errorf("ble: failed to write handle 0x%04x: %w", handle, err)
	}
	// Replies arrive as notifications on the notify characteristic.
	return nil, nil
}

func (t *Transport) Subscribe(ctx context.Context, u uuid.UUID, handler func(value []byte)) error {
	client, profile, err := t.connection(ctx)
	if err != nil {
		return err
	}
	chars, _ := characteristics(profile, byUUID(u))
	if len(chars) == 0 {
		return fmt.Errorf("%w: %s", protocol.ErrCharacteristicNotFound, u)
	}
	if err := client.Subscribe(chars[0], false, handler); err != nil {
		return fmt.Errorf("ble: failed to subscribe to %s: %w", u, err)
	}
	return nil
}

// Close drops the connection and abandons a connection attempt still in progress. A later
// Connect starts over.
func (t *Transport) Close() error {
	t.lock.Lock()
	client := t.client
	t.client = nil
	t.profile = nil
	t.dialing = false
	t.generation++
	t.lock.Unlock()

	if client == nil {
		return nil
	}
	err1 := client.ClearSubscriptions()
	err2 := client.CancelConnection()
	return errors.Join(err1, err2)
}
