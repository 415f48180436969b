package ble

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-ble/ble"

	"github.com/metawear-go/metawear/pkg/protocol"
)

const testAddress = "C8:5D:72:2C:AA:B4"

type fakeAdvertisement struct {
	ble.Advertisement
	addr ble.Addr
	name string
}

func (a fakeAdvertisement) Addr() ble.Addr    { return a.addr }
func (a fakeAdvertisement) LocalName() string { return a.name }

// fakeDialer advertises advs once per scan and hands out client when dialed.
type fakeDialer struct {
	advs    []ble.Advertisement
	client  *fakeClient
	dialErr error
	// onDial runs before Dial returns.
	onDial func()

	dialed []ble.Addr
}

func (d *fakeDialer) Scan(ctx context.Context, _ bool, h ble.AdvHandler) error {
	for _, a := range d.advs {
		h(a)
	}
	<-ctx.Done()
	return ctx.Err()
}

func (d *fakeDialer) Dial(_ context.Context, a ble.Addr) (ble.Client, error) {
	d.dialed = append(d.dialed, a)
	if d.onDial != nil {
		d.onDial()
	}
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	return d.client, nil
}

type write struct {
	char  *ble.Characteristic
	value []byte
	noRsp bool
}

type fakeClient struct {
	ble.Client
	profile      *ble.Profile
	profileErr   error
	values       map[*ble.Characteristic][]byte
	disconnected chan struct{}

	lock          sync.Mutex
	mtu           int
	writes        []write
	subscribed    map[*ble.Characteristic]ble.NotificationHandler
	cleared       bool
	cancellations int
}

func newFakeClient(profile *ble.Profile) *fakeClient {
	return &fakeClient{
		profile:      profile,
		values:       make(map[*ble.Characteristic][]byte),
		disconnected: make(chan struct{}),
		subscribed:   make(map[*ble.Characteristic]ble.NotificationHandler),
	}
}

func (c *fakeClient) ExchangeMTU(rxMTU int) (int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.mtu = rxMTU
	return rxMTU, nil
}

func (c *fakeClient) DiscoverProfile(bool) (*ble.Profile, error) {
	if c.profileErr != nil {
		return nil, c.profileErr
	}
	return c.profile, nil
}

func (c *fakeClient) ReadCharacteristic(char *ble.Characteristic) ([]byte, error) {
	return c.values[char], nil
}

func (c *fakeClient) WriteCharacteristic(char *ble.Characteristic, value []byte, noRsp bool) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.writes = append(c.writes, write{char: char, value: value, noRsp: noRsp})
	return nil
}

func (c *fakeClient) Subscribe(char *ble.Characteristic, _ bool, h ble.NotificationHandler) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.subscribed[char] = h
	return nil
}

func (c *fakeClient) ClearSubscriptions() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.cleared = true
	return nil
}

func (c *fakeClient) CancelConnection() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.cancellations++
	return nil
}

func (c *fakeClient) Disconnected() <-chan struct{} {
	return c.disconnected
}

func (c *fakeClient) cancelled() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.cancellations
}

var (
	commandChar  = &ble.Characteristic{UUID: toBLE(protocol.CommandCharUUID), Property: ble.CharWrite, Handle: 0x0d, ValueHandle: 0x0e}
	notifyChar   = &ble.Characteristic{UUID: toBLE(protocol.NotifyCharUUID), Property: ble.CharNotify, Handle: 0x10, ValueHandle: 0x11}
	firmwareChar = &ble.Characteristic{UUID: toBLE(protocol.FirmwareRevCharUUID), Property: ble.CharRead, Handle: 0x20, ValueHandle: 0x21}
)

func metaWearProfile() *ble.Profile {
	return &ble.Profile{Services: []*ble.Service{
		{
			UUID:            toBLE(protocol.MetaWearServiceUUID),
			Handle:          0x0c,
			EndHandle:       0x1e,
			Characteristics: []*ble.Characteristic{commandChar, notifyChar},
		},
		{
			UUID:            toBLE(protocol.DeviceInfoServiceUUID),
			Handle:          0x1f,
			EndHandle:       0x2f,
			Characteristics: []*ble.Characteristic{firmwareChar},
		},
	}}
}

func advertising(names ...string) []ble.Advertisement {
	var advs []ble.Advertisement
	for i := 0; i+1 < len(names); i += 2 {
		advs = append(advs, fakeAdvertisement{addr: ble.NewAddr(names[i]), name: names[i+1]})
	}
	return advs
}

// connectedTransport dials a fake peripheral advertising the MetaWear profile.
func connectedTransport(t *testing.T) (*Transport, *fakeClient) {
	t.Helper()
	client := newFakeClient(metaWearProfile())
	d := &fakeDialer{advs: advertising(testAddress, "MetaWear"), client: client}
	transport := NewTransport(testAddress)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	transport.dial(ctx, d, 0)
	if !transport.Connected() {
		t.Fatalf("expected a connection, got %v", transport.Err())
	}
	t.Cleanup(func() { transport.Close() })
	return transport, client
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestDialUsesAdvertisedAddress(t *testing.T) {
	client := newFakeClient(metaWearProfile())
	d := &fakeDialer{
		advs:   advertising("11:22:33:44:55:66", "Thermometer", testAddress, "MetaWear"),
		client: client,
	}
	transport := NewTransport(testAddress)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	transport.dial(ctx, d, 0)
	if !transport.Connected() {
		t.Fatalf("expected a connection, got %v", transport.Err())
	}
	defer transport.Close()
	if len(d.dialed) != 1 || d.dialed[0].String() != "c8:5d:72:2c:aa:b4" {
		t.Errorf("unexpected dialed addresses %v", d.dialed)
	}
	if client.mtu != requestedMTU {
		t.Errorf("expected MTU %d, got %d", requestedMTU, client.mtu)
	}
	if transport.Err() != nil {
		t.Errorf("unexpected error %v", transport.Err())
	}
}

func TestDialFailureIsReported(t *testing.T) {
	dialErr := errors.New("connection refused")
	d := &fakeDialer{advs: advertising(testAddress, "MetaWear"), dialErr: dialErr}
	transport := NewTransport(testAddress)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	transport.dial(ctx, d, 0)
	if transport.Connected() {
		t.Fatal("expected no connection")
	}
	if err := transport.Err(); !errors.Is(err, dialErr) {
		t.Errorf("expected dial error, got %v", err)
	}
}

func TestProfileFailureCancelsConnection(t *testing.T) {
	client := newFakeClient(nil)
	client.profileErr = errors.New("ATT timeout")
	d := &fakeDialer{advs: advertising(testAddress, "MetaWear"), client: client}
	transport := NewTransport(testAddress)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	transport.dial(ctx, d, 0)
	if transport.Connected() {
		t.Fatal("expected no connection")
	}
	if !errors.Is(transport.Err(), client.profileErr) {
		t.Errorf("expected profile error, got %v", transport.Err())
	}
	if client.cancelled() != 1 {
		t.Errorf("expected the connection to be cancelled once, got %d", client.cancelled())
	}
}

func TestScanWithoutTargetTimesOut(t *testing.T) {
	d := &fakeDialer{advs: advertising("11:22:33:44:55:66", "Thermometer")}
	transport := NewTransport(testAddress)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	transport.dial(ctx, d, 0)
	if !errors.Is(transport.Err(), context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", transport.Err())
	}
	if len(d.dialed) != 0 {
		t.Errorf("unexpected dial to %v", d.dialed)
	}
}

func TestDisconnectResetsConnection(t *testing.T) {
	transport, client := connectedTransport(t)
	close(client.disconnected)
	waitFor(t, func() bool { return !transport.Connected() })
	if _, err := transport.DiscoverPrimary(context.Background()); err == nil {
		t.Error("expected an error once disconnected")
	}
}

func TestCloseDuringDialDropsConnection(t *testing.T) {
	client := newFakeClient(metaWearProfile())
	transport := NewTransport(testAddress)
	d := &fakeDialer{
		advs:   advertising(testAddress, "MetaWear"),
		client: client,
		onDial: func() { transport.Close() },
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	transport.lock.Lock()
	transport.dialing = true
	generation := transport.generation
	transport.lock.Unlock()

	transport.dial(ctx, d, generation)
	if transport.Connected() {
		t.Error("expected the connection opened after Close to be dropped")
	}
	if client.cancelled() != 1 {
		t.Errorf("expected the connection to be cancelled once, got %d", client.cancelled())
	}
}

func TestDiscoverPrimary(t *testing.T) {
	transport, _ := connectedTransport(t)
	services, err := transport.DiscoverPrimary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(services) != 2 {
		t.Fatalf("expected 2 services, got %v", services)
	}
	if services[0].UUID != protocol.MetaWearServiceUUID || services[0].Handle != 0x0c || services[0].EndHandle != 0x1e {
		t.Errorf("unexpected MetaWear service %+v", services[0])
	}
	if services[1].UUID != protocol.DeviceInfoServiceUUID {
		t.Errorf("unexpected device information service %+v", services[1])
	}
}

func TestDiscoverCharacteristicsPairsServices(t *testing.T) {
	transport, _ := connectedTransport(t)
	chars, err := transport.DiscoverCharacteristics(context.Background(), protocol.NotifyCharUUID)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(chars) != 1 {
		t.Fatalf("expected one characteristic, got %v", chars)
	}
	c := chars[0]
	if c.ServiceUUID != protocol.MetaWearServiceUUID || c.UUID != protocol.NotifyCharUUID {
		t.Errorf("unexpected UUIDs %+v", c)
	}
	if c.Handle != 0x10 || c.ValueHandle != 0x11 || c.Properties != uint8(ble.CharNotify) {
		t.Errorf("unexpected handles %+v", c)
	}

	chars, err = transport.DiscoverCharacteristics(context.Background(), protocol.SerialNumberCharUUID)
	if err != nil || len(chars) != 0 {
		t.Errorf("expected no characteristics, got %v (%v)", chars, err)
	}
}

func TestReadByUUID(t *testing.T) {
	transport, client := connectedTransport(t)
	client.values[firmwareChar] = []byte("1.5.0")

	value, err := transport.ReadByUUID(context.Background(), protocol.FirmwareRevCharUUID)
	if err != nil || string(value) != "1.5.0" {
		t.Errorf("unexpected read %q (%v)", value, err)
	}
	if _, err := transport.ReadByUUID(context.Background(), protocol.SerialNumberCharUUID); !errors.Is(err, protocol.ErrCharacteristicNotFound) {
		t.Errorf("expected ErrCharacteristicNotFound, got %v", err)
	}
}

func TestWriteByHandle(t *testing.T) {
	transport, client := connectedTransport(t)

	response, err := transport.WriteByHandle(context.Background(), 0x0e, []byte{0x02, 0x01})
	if err != nil || response != nil {
		t.Fatalf("unexpected write result %v (%v)", response, err)
	}
	if len(client.writes) != 1 {
		t.Fatalf("expected one write, got %d", len(client.writes))
	}
	w := client.writes[0]
	if w.char != commandChar || !bytes.Equal(w.value, []byte{0x02, 0x01}) || w.noRsp {
		t.Errorf("unexpected write %+v", w)
	}

	// Declaration handles are not value handles.
	if _, err := transport.WriteByHandle(context.Background(), 0x0d, []byte{0x01}); !errors.Is(err, protocol.ErrCharacteristicNotFound) {
		t.Errorf("expected ErrCharacteristicNotFound, got %v", err)
	}
	if len(client.writes) != 1 {
		t.Errorf("unexpected writes %v", client.writes)
	}
}

func TestSubscribe(t *testing.T) {
	transport, client := connectedTransport(t)

	var received []byte
	if err := transport.Subscribe(context.Background(), protocol.NotifyCharUUID, func(v []byte) { received = v }); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	handler, ok := client.subscribed[notifyChar]
	if !ok {
		t.Fatal("expected a subscription to the notify characteristic")
	}
	handler([]byte{0x11, 0x01, 0x01})
	if !bytes.Equal(received, []byte{0x11, 0x01, 0x01}) {
		t.Errorf("unexpected notification %v", received)
	}

	if err := transport.Subscribe(context.Background(), protocol.BatteryLevelCharUUID, func([]byte) {}); !errors.Is(err, protocol.ErrCharacteristicNotFound) {
		t.Errorf("expected ErrCharacteristicNotFound, got %v", err)
	}
}

func TestCloseReleasesConnection(t *testing.T) {
	transport, client := connectedTransport(t)
	if err := transport.Close(); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if transport.Connected() {
		t.Error("expected no connection after Close")
	}
	if !client.cleared || client.cancelled() != 1 {
		t.Errorf("expected subscriptions cleared and connection cancelled")
	}
	if err := transport.Close(); err != nil {
		t.Errorf("unexpected error on second Close: %s", err)
	}
	if _, err := transport.ReadByUUID(context.Background(), protocol.FirmwareRevCharUUID); err == nil {
		t.Error("expected an error after Close")
	}
}
