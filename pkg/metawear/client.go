/*
Package metawear connects the MetaWear board library to a BLE GATT transport.

The board library owns the MetaWear protocol. It asks a [board.Bridge] to read or write GATT
characteristics and expects notifications from the board to be handed back to it. A [Client] is
that bridge: it resolves characteristics on the transport, forwards the bytes, and relays
notifications into the library.

	transport := ble.NewTransport("C8:5D:72:2C:AA:B4")
	lib, err := native.Open(native.LibraryPath())
	if err != nil {
		panic(err)
	}
	client, err := metawear.NewClient(ctx, transport, lib, nil)
	if err != nil {
		panic(err)
	}
	defer client.Close()

	if err := client.WaitInitialized(ctx); err != nil {
		panic(err)
	}
	if err := client.BlinkLED(board.LedGreen, 10); err != nil {
		panic(err)
	}
*/
package metawear

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/metawear-go/metawear/internal/log"
	"github.com/metawear-go/metawear/pkg/board"
	"github.com/metawear-go/metawear/pkg/connector"
	"github.com/metawear-go/metawear/pkg/protocol"
)

const (
	DefaultConnectTimeout = 5 * time.Second
	DefaultPollInterval   = 100 * time.Millisecond
	DefaultRequestTimeout = 15 * time.Second

	// notificationBuffer is the number of notifications that can be queued while the board
	// library is busy.
	notificationBuffer = 64
)

// Options tune a Client. Zero fields select the defaults.
type Options struct {
	// ConnectTimeout bounds how long the client polls the transport for a connection.
	ConnectTimeout time.Duration
	// PollInterval is the delay between two connection checks.
	PollInterval time.Duration
	// RequestTimeout bounds GATT requests issued on behalf of the board library, including the
	// connection they may trigger.
	RequestTimeout time.Duration
}

func (o *Options) withDefaults() Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.ConnectTimeout <= 0 {
		out.ConnectTimeout = DefaultConnectTimeout
	}
	if out.PollInterval <= 0 {
		out.PollInterval = DefaultPollInterval
	}
	if out.RequestTimeout <= 0 {
		out.RequestTimeout = DefaultRequestTimeout
	}
	return out
}

// A Client represents a MetaWear board reached through a GATT transport.
type Client struct {
	address   string
	transport connector.Transport
	opts      Options

	// boardLock serializes calls into the board library. The library calls the Bridge methods
	// synchronously while the lock is held, so they use c.board directly.
	boardLock sync.Mutex
	board     board.Board
	freed     bool

	connLock   sync.Mutex
	subscribed bool
	closed     bool
	handles    map[uuid.UUID]uint16

	services []connector.Service

	initialized     chan struct{}
	initializedOnce sync.Once

	notifications chan []byte
	done          chan struct{}
	loopDone      chan struct{}
	closeOnce     sync.Once
}

var _ board.Bridge = (*Client)(nil)

// NewClient creates a board handle in library that talks through transport, starts the board
// initialization and discovers the primary services of the peripheral. The connection is opened
// lazily by the first GATT request. opts may be nil.
func NewClient(ctx context.Context, transport connector.Transport, library board.Library, opts *Options) (*Client, error) {
	c := &Client{
		address:       transport.Address(),
		transport:     transport,
		opts:          opts.withDefaults(),
		handles:       make(map[uuid.UUID]uint16),
		initialized:   make(chan struct{}),
		notifications: make(chan []byte, notificationBuffer),
		done:          make(chan struct{}),
		loopDone:      make(chan struct{}),
	}

	b, err := library.Create(c)
	if err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}
	c.board = b
	go c.relayNotifications()

	c.boardLock.Lock()
	c.board.Initialize(c.initializedFcn)
	c.boardLock.Unlock()

	if err := c.discoverPrimary(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) String() string {
	return fmt.Sprintf("MetaWearClient, %s", c.address)
}

// Address returns the Bluetooth address of the board.
func (c *Client) Address() string {
	return c.address
}

// Services returns the primary services discovered when the client was created.
func (c *Client) Services() []connector.Service {
	return append([]connector.Service{}, c.services...)
}

// Initialized reports whether the board library finished initializing.
func (c *Client) Initialized() bool {
	select {
	case <-c.initialized:
		return true
	default:
		return false
	}
}

// WaitInitialized blocks until the board library finished initializing or ctx expires.
func (c *Client) WaitInitialized(ctx context.Context) error {
	select {
	case <-c.initialized:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %s", protocol.ErrNotInitialized, ctx.Err())
	}
}

func (c *Client) initializedFcn() {
	c.initializedOnce.Do(func() {
		log.Info("%s initialized.", c)
		close(c.initialized)
	})
}

func (c *Client) discoverPrimary(ctx context.Context) error {
	t, err := c.requester(ctx)
	if err != nil {
		return err
	}
	services, err := t.DiscoverPrimary(ctx)
	if err != nil {
		return fmt.Errorf("failed to discover primary services: %w", err)
	}
	c.services = services
	return nil
}

// requester returns the transport once it is connected, connecting first if needed.
func (c *Client) requester(ctx context.Context) (connector.Transport, error) {
	c.connLock.Lock()
	defer c.connLock.Unlock()
	if c.closed {
		return nil, protocol.ErrClosed
	}

	if !c.transport.Connected() {
		if err := c.connect(ctx); err != nil {
			return nil, err
		}
		c.subscribed = false
		c.handles = make(map[uuid.UUID]uint16)
	}

	if !c.subscribed {
		if err := c.transport.Subscribe(ctx, protocol.NotifyCharUUID, c.enqueueNotification); err != nil {
			log.Warning("Failed to subscribe to notifications from %s: %s", c.address, err)
		} else {
			c.subscribed = true
		}
	}
	return c.transport, nil
}

// connect polls the transport until it reports a connection. Transports do not signal progress
// any other way.
func (c *Client) connect(ctx context.Context) error {
	log.Debug("Connecting to %s...", c.address)
	dialCtx, cancel := context.WithTimeout(ctx, c.opts.ConnectTimeout)
	defer cancel()
	if err := c.transport.Connect(dialCtx); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.address, err)
	}

	var waited time.Duration
	for !c.transport.Connected() && waited < c.opts.ConnectTimeout {
		if cause := c.dialErr(); cause != nil {
			return fmt.Errorf("%w to %s: %w", protocol.ErrConnectionTimeout, c.address, cause)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.opts.PollInterval):
		}
		waited += c.opts.PollInterval
	}
	if !c.transport.Connected() {
		if cause := c.dialErr(); cause != nil {
			return fmt.Errorf("%w to %s: %w", protocol.ErrConnectionTimeout, c.address, cause)
		}
		return fmt.Errorf("%w to %s", protocol.ErrConnectionTimeout, c.address)
	}
	return nil
}

// dialErr returns why the transport's last connection attempt failed, for transports that keep
// track of it.
func (c *Client) dialErr() error {
	if t, ok := c.transport.(interface{ Err() error }); ok {
		return t.Err()
	}
	return nil
}

// ReadGattChar implements board.Bridge.
func (c *Client) ReadGattChar(char protocol.Characteristic) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.RequestTimeout)
	defer cancel()

	t, err := c.requester(ctx)
	if err != nil {
		return &protocol.CharacteristicError{Characteristic: char, Err: err}
	}
	value, err := t.ReadByUUID(ctx, char.UUID)
	if err != nil {
		return &protocol.CharacteristicError{Characteristic: char, Err: err}
	}
	log.Debug("data received: %q", value)
	log.Debug("bytes received: % x", value)
	c.board.CharRead(char, value)
	return nil
}

// WriteGattChar implements board.Bridge.
func (c *Client) WriteGattChar(char protocol.Characteristic, value []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.RequestTimeout)
	defer cancel()

	t, err := c.requester(ctx)
	if err != nil {
		return &protocol.CharacteristicError{Characteristic: char, Err: err}
	}
	handle, err := c.resolveHandle(ctx, t, char.UUID)
	if err != nil {
		return &protocol.CharacteristicError{Characteristic: char, Err: err}
	}
	response, err := t.WriteByHandle(ctx, handle, value)
	if err != nil {
		return &protocol.CharacteristicError{Characteristic: char, Err: err}
	}
	if char == protocol.NotifyChar && len(response) > 0 {
		c.board.NotifyCharChanged(response)
	}
	return nil
}

// resolveHandle finds the value handle of the characteristic identified by u. Results are cached
// until the next reconnection.
func (c *Client) resolveHandle(ctx context.Context, t connector.Transport, u uuid.UUID) (uint16, error) {
	c.connLock.Lock()
	handle, ok := c.handles[u]
	c.connLock.Unlock()
	if ok {
		return handle, nil
	}

	chars, err := t.DiscoverCharacteristics(ctx, u)
	if err != nil {
		return 0, err
	}
	switch len(chars) {
	case 0:
		return 0, protocol.ErrCharacteristicNotFound
	case 1:
	default:
		return 0, protocol.ErrAmbiguousCharacteristic
	}

	c.connLock.Lock()
	c.handles[u] = chars[0].ValueHandle
	c.connLock.Unlock()
	return chars[0].ValueHandle, nil
}

// enqueueNotification runs on the transport's goroutine and must not block it: a transport may
// deliver write responses on the same goroutine.
func (c *Client) enqueueNotification(value []byte) {
	buf := append([]byte{}, value...)
	select {
	case c.notifications <- buf:
	default:
		log.Warning("Dropping notification from %s: queue full", c.address)
	}
}

func (c *Client) relayNotifications() {
	defer close(c.loopDone)
	for {
		select {
		case value := <-c.notifications:
			log.Debug("notification: % x", value)
			c.boardLock.Lock()
			c.board.NotifyCharChanged(value)
			c.boardLock.Unlock()
		case <-c.done:
			return
		}
	}
}

// Close releases the board handle and disconnects the transport. Repeated calls are no-ops.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		<-c.loopDone

		c.connLock.Lock()
		c.closed = true
		c.connLock.Unlock()

		c.boardLock.Lock()
		c.board.Free()
		c.freed = true
		c.boardLock.Unlock()

		if closeErr := c.transport.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close transport: %w", closeErr))
		}
	})
	return err
}
