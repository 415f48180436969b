package metawear_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/metawear-go/metawear/mocks"
	"github.com/metawear-go/metawear/pkg/board"
	"github.com/metawear-go/metawear/pkg/connector"
	"github.com/metawear-go/metawear/pkg/data"
	"github.com/metawear-go/metawear/pkg/metawear"
	"github.com/metawear-go/metawear/pkg/protocol"
)

const address = "C8:5D:72:2C:AA:B4"

var fastOptions = &metawear.Options{
	ConnectTimeout: 50 * time.Millisecond,
	PollInterval:   5 * time.Millisecond,
	RequestTimeout: time.Second,
}

// dialReportingTransport is a transport that remembers why its last connection attempt failed.
type dialReportingTransport struct {
	*mocks.Transport
	err error
}

func (t dialReportingTransport) Err() error {
	return t.err
}

var _ = Describe("Client", func() {
	var (
		ctrl      *gomock.Controller
		transport *mocks.Transport
		library   *mocks.Library
		brd       *mocks.Board
		bridge    board.Bridge
		notify    func([]byte)
		ctx       context.Context
		services  = []connector.Service{{UUID: protocol.MetaWearServiceUUID, Handle: 0x0c, EndHandle: 0x1e}}
	)

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		transport = mocks.NewTransport(ctrl)
		library = mocks.NewLibrary(ctrl)
		brd = mocks.NewBoard(ctrl)
		bridge = nil
		notify = nil
		ctx = context.Background()

		transport.EXPECT().Address().Return(address).AnyTimes()
		library.EXPECT().Create(gomock.Any()).DoAndReturn(func(b board.Bridge) (board.Board, error) {
			bridge = b
			return brd, nil
		}).AnyTimes()
		brd.EXPECT().Free().MaxTimes(1)
		transport.EXPECT().Close().Return(nil).MaxTimes(1)
	})

	expectSubscribe := func() {
		transport.EXPECT().Subscribe(gomock.Any(), protocol.NotifyCharUUID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, handler func([]byte)) error {
				notify = handler
				return nil
			})
	}

	newConnectedClient := func() *metawear.Client {
		transport.EXPECT().Connected().Return(true).AnyTimes()
		expectSubscribe()
		transport.EXPECT().DiscoverPrimary(gomock.Any()).Return(services, nil)
		brd.EXPECT().Initialize(gomock.Any()).Do(func(done func()) { done() })

		client, err := metawear.NewClient(ctx, transport, library, fastOptions)
		Expect(err).ToNot(HaveOccurred())
		DeferCleanup(client.Close)
		return client
	}

	Context("connecting", func() {
		It("polls the transport until it reports a connection", func() {
			gomock.InOrder(
				transport.EXPECT().Connected().Return(false).Times(3),
				transport.EXPECT().Connected().Return(true).AnyTimes(),
			)
			transport.EXPECT().Connect(gomock.Any()).Return(nil)
			expectSubscribe()
			transport.EXPECT().DiscoverPrimary(gomock.Any()).Return(services, nil)
			brd.EXPECT().Initialize(gomock.Any())

			client, err := metawear.NewClient(ctx, transport, library, fastOptions)
			Expect(err).ToNot(HaveOccurred())
			defer client.Close()
			Expect(client.Services()).To(Equal(services))
			Expect(notify).ToNot(BeNil())
		})

		It("fails with a connection timeout when the transport never connects", func() {
			transport.EXPECT().Connected().Return(false).AnyTimes()
			transport.EXPECT().Connect(gomock.Any()).Return(nil)
			brd.EXPECT().Initialize(gomock.Any())

			_, err := metawear.NewClient(ctx, transport, library, fastOptions)
			Expect(errors.Is(err, protocol.ErrConnectionTimeout)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring(address))
			Expect(protocol.Temporary(err)).To(BeTrue())
		})

		It("includes the transport's dial error in the timeout", func() {
			cause := errors.New("can't init hci: no devices available")
			transport.EXPECT().Connected().Return(false).AnyTimes()
			transport.EXPECT().Connect(gomock.Any()).Return(nil)
			brd.EXPECT().Initialize(gomock.Any())

			start := time.Now()
			_, err := metawear.NewClient(ctx, dialReportingTransport{Transport: transport, err: cause}, library, fastOptions)
			Expect(errors.Is(err, protocol.ErrConnectionTimeout)).To(BeTrue())
			Expect(errors.Is(err, cause)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("can't init hci"))
			Expect(time.Since(start)).To(BeNumerically("<", fastOptions.ConnectTimeout))
		})

		It("reports bridge failures during initialization without panicking", func() {
			transport.EXPECT().Connected().Return(false).AnyTimes()
			transport.EXPECT().Connect(gomock.Any()).Return(nil).Times(2)
			brd.EXPECT().Initialize(gomock.Any()).Do(func(func()) {
				err := bridge.ReadGattChar(protocol.FirmwareChar)
				Expect(errors.Is(err, protocol.ErrConnectionTimeout)).To(BeTrue())
			})

			_, err := metawear.NewClient(ctx, transport, library, fastOptions)
			Expect(err).To(HaveOccurred())
		})

		It("propagates board creation errors", func() {
			failing := mocks.NewLibrary(ctrl)
			failing.EXPECT().Create(gomock.Any()).Return(nil, protocol.ErrLibraryUnavailable)
			_, err := metawear.NewClient(ctx, transport, failing, fastOptions)
			Expect(errors.Is(err, protocol.ErrLibraryUnavailable)).To(BeTrue())
		})

		It("keeps working when the notify subscription fails", func() {
			transport.EXPECT().Connected().Return(true).AnyTimes()
			transport.EXPECT().Subscribe(gomock.Any(), protocol.NotifyCharUUID, gomock.Any()).
				Return(protocol.ErrCharacteristicNotFound).AnyTimes()
			transport.EXPECT().DiscoverPrimary(gomock.Any()).Return(services, nil)
			brd.EXPECT().Initialize(gomock.Any())

			client, err := metawear.NewClient(ctx, transport, library, fastOptions)
			Expect(err).ToNot(HaveOccurred())
			client.Close()
		})
	})

	Context("bridging the board library", func() {
		var client *metawear.Client

		BeforeEach(func() {
			client = newConnectedClient()
		})

		It("describes itself by address", func() {
			Expect(client.String()).To(Equal("MetaWearClient, " + address))
			Expect(fmt.Sprint(client)).To(Equal("MetaWearClient, " + address))
		})

		It("reports initialization", func() {
			Expect(client.Initialized()).To(BeTrue())
			Expect(client.WaitInitialized(ctx)).To(Succeed())
		})

		It("forwards reads to the board", func() {
			transport.EXPECT().ReadByUUID(gomock.Any(), protocol.FirmwareChar.UUID).Return([]byte("1.5.0"), nil)
			brd.EXPECT().CharRead(protocol.FirmwareChar, []byte("1.5.0"))
			Expect(bridge.ReadGattChar(protocol.FirmwareChar)).To(Succeed())
		})

		It("does not call the board when a read fails", func() {
			readErr := errors.New("link lost")
			transport.EXPECT().ReadByUUID(gomock.Any(), protocol.FirmwareChar.UUID).Return(nil, readErr)
			err := bridge.ReadGattChar(protocol.FirmwareChar)
			Expect(errors.Is(err, readErr)).To(BeTrue())
			var charErr *protocol.CharacteristicError
			Expect(errors.As(err, &charErr)).To(BeTrue())
			Expect(charErr.Characteristic).To(Equal(protocol.FirmwareChar))
		})

		It("writes by handle and caches the handle", func() {
			transport.EXPECT().DiscoverCharacteristics(gomock.Any(), protocol.CommandCharUUID).
				Return([]connector.Characteristic{{UUID: protocol.CommandCharUUID, Handle: 0x0d, ValueHandle: 0x0e}}, nil).
				Times(1)
			transport.EXPECT().WriteByHandle(gomock.Any(), uint16(0x0e), []byte{0x02, 0x01}).Return(nil, nil)
			transport.EXPECT().WriteByHandle(gomock.Any(), uint16(0x0e), []byte{0x02, 0x02}).Return([]byte{0xff}, nil)

			Expect(bridge.WriteGattChar(protocol.CommandChar, []byte{0x02, 0x01})).To(Succeed())
			// Responses on characteristics other than notify are not relayed.
			Expect(bridge.WriteGattChar(protocol.CommandChar, []byte{0x02, 0x02})).To(Succeed())
		})

		It("rejects ambiguous characteristics", func() {
			transport.EXPECT().DiscoverCharacteristics(gomock.Any(), protocol.CommandCharUUID).
				Return([]connector.Characteristic{{ValueHandle: 0x0e}, {ValueHandle: 0x2e}}, nil)
			err := bridge.WriteGattChar(protocol.CommandChar, []byte{0x01})
			Expect(errors.Is(err, protocol.ErrAmbiguousCharacteristic)).To(BeTrue())
		})

		It("rejects missing characteristics", func() {
			transport.EXPECT().DiscoverCharacteristics(gomock.Any(), protocol.CommandCharUUID).Return(nil, nil)
			err := bridge.WriteGattChar(protocol.CommandChar, []byte{0x01})
			Expect(errors.Is(err, protocol.ErrCharacteristicNotFound)).To(BeTrue())
		})

		It("relays write responses on the notify characteristic", func() {
			transport.EXPECT().DiscoverCharacteristics(gomock.Any(), protocol.NotifyCharUUID).
				Return([]connector.Characteristic{{UUID: protocol.NotifyCharUUID, ValueHandle: 0x11}}, nil)
			transport.EXPECT().WriteByHandle(gomock.Any(), uint16(0x11), []byte{0x01, 0x00}).
				Return([]byte{0x11, 0x80, 0x01}, nil)
			brd.EXPECT().NotifyCharChanged([]byte{0x11, 0x80, 0x01})

			Expect(bridge.WriteGattChar(protocol.NotifyChar, []byte{0x01, 0x00})).To(Succeed())
		})

		It("does not relay empty write responses", func() {
			transport.EXPECT().DiscoverCharacteristics(gomock.Any(), protocol.NotifyCharUUID).
				Return([]connector.Characteristic{{UUID: protocol.NotifyCharUUID, ValueHandle: 0x11}}, nil)
			transport.EXPECT().WriteByHandle(gomock.Any(), uint16(0x11), gomock.Any()).Return(nil, nil)

			Expect(bridge.WriteGattChar(protocol.NotifyChar, []byte{0x01, 0x00})).To(Succeed())
		})

		It("relays notifications from the transport", func() {
			received := make(chan struct{})
			brd.EXPECT().NotifyCharChanged([]byte{0x11, 0x01, 0x01}).Do(func([]byte) { close(received) })

			Expect(notify).ToNot(BeNil())
			notify([]byte{0x11, 0x01, 0x01})
			Eventually(received).Should(BeClosed())
		})

		It("fails bridge calls after Close", func() {
			Expect(client.Close()).To(Succeed())
			Expect(client.Close()).To(Succeed())
			err := bridge.ReadGattChar(protocol.FirmwareChar)
			Expect(errors.Is(err, protocol.ErrClosed)).To(BeTrue())
		})
	})

	Context("uninitialized boards", func() {
		It("times out waiting for initialization", func() {
			transport.EXPECT().Connected().Return(true).AnyTimes()
			expectSubscribe()
			transport.EXPECT().DiscoverPrimary(gomock.Any()).Return(services, nil)
			brd.EXPECT().Initialize(gomock.Any())

			client, err := metawear.NewClient(ctx, transport, library, fastOptions)
			Expect(err).ToNot(HaveOccurred())
			defer client.Close()

			waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
			defer cancel()
			err = client.WaitInitialized(waitCtx)
			Expect(errors.Is(err, protocol.ErrNotInitialized)).To(BeTrue())
			Expect(client.Initialized()).To(BeFalse())
		})
	})

	Context("board actions", func() {
		var client *metawear.Client

		BeforeEach(func() {
			client = newConnectedClient()
		})

		It("blinks the LED", func() {
			preset := board.LedPattern{HighIntensity: 31, RiseTimeMs: 0, HighTimeMs: 50, PulseDurationMs: 500, RepeatCount: 1}
			expected := preset
			expected.RepeatCount = 10
			gomock.InOrder(
				brd.EXPECT().LoadPresetPattern(board.LedPresetBlink).Return(preset),
				brd.EXPECT().WritePattern(expected, board.LedGreen),
				brd.EXPECT().PlayLED(),
			)
			Expect(client.BlinkLED(board.LedGreen, 10)).To(Succeed())
		})

		It("stops the LED", func() {
			brd.EXPECT().StopLED(true)
			Expect(client.StopLED(true)).To(Succeed())
		})

		It("rejects board actions after Close", func() {
			Expect(client.Close()).To(Succeed())

			// The mock board fails the test on any call made after Free.
			Expect(client.BlinkLED(board.LedGreen, 3)).To(MatchError(protocol.ErrClosed))
			Expect(client.PlayLEDPattern(board.LedPattern{HighIntensity: 31}, board.LedRed)).To(MatchError(protocol.ErrClosed))
			Expect(client.StopLED(true)).To(MatchError(protocol.ErrClosed))
			_, err := client.ReadBatteryState(ctx)
			Expect(err).To(MatchError(protocol.ErrClosed))
			Expect(client.StreamAcceleration(ctx, func(data.CartesianFloat) {})).To(MatchError(protocol.ErrClosed))
		})

		It("ignores unsubscribing after Close", func() {
			signal := board.Signal(0x21)
			brd.EXPECT().Signal(board.SignalSwitch).Return(signal, nil)
			brd.EXPECT().Subscribe(signal, gomock.Any())

			unsubscribe, err := client.Subscribe(board.SignalSwitch, func(data.Data) {})
			Expect(err).ToNot(HaveOccurred())
			Expect(client.Close()).To(Succeed())
			unsubscribe()
		})

		It("reads the battery state", func() {
			signal := board.Signal(0x7f)
			var handler func(data.Data)
			brd.EXPECT().Signal(board.SignalBatteryState).Return(signal, nil)
			brd.EXPECT().Subscribe(signal, gomock.Any()).Do(func(_ board.Signal, h func(data.Data)) { handler = h })
			brd.EXPECT().ReadBatteryState().Do(func() {
				handler(data.Data{Type: data.TypeBatteryState, Value: data.BatteryState{Voltage: 4124, Charge: 99}})
			})
			brd.EXPECT().Unsubscribe(signal)

			state, err := client.ReadBatteryState(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(state).To(Equal(data.BatteryState{Voltage: 4124, Charge: 99}))
		})

		It("gives up on the battery state when the context expires", func() {
			signal := board.Signal(0x7f)
			brd.EXPECT().Signal(board.SignalBatteryState).Return(signal, nil)
			brd.EXPECT().Subscribe(signal, gomock.Any())
			brd.EXPECT().ReadBatteryState()
			brd.EXPECT().Unsubscribe(signal)

			readCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
			defer cancel()
			_, err := client.ReadBatteryState(readCtx)
			Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
		})

		It("reports missing signals", func() {
			brd.EXPECT().Signal(board.SignalSwitch).Return(board.Signal(0), errors.New("no switch"))
			err := client.WatchSwitch(ctx, func(bool) {})
			Expect(err).To(MatchError(ContainSubstring("switch")))
		})

		It("streams acceleration until cancelled", func() {
			signal := board.Signal(0x42)
			var handler func(data.Data)
			brd.EXPECT().Signal(board.SignalAcceleration).Return(signal, nil)
			brd.EXPECT().Subscribe(signal, gomock.Any()).Do(func(_ board.Signal, h func(data.Data)) { handler = h })
			streamCtx, cancel := context.WithCancel(ctx)
			brd.EXPECT().StartAccelerometer().Do(func() {
				handler(data.Data{Type: data.TypeCartesianFloat, Value: data.CartesianFloat{X: 0.01, Y: -0.02, Z: 1}})
				cancel()
			})
			brd.EXPECT().StopAccelerometer()
			brd.EXPECT().Unsubscribe(signal)

			var samples []data.CartesianFloat
			Expect(client.StreamAcceleration(streamCtx, func(c data.CartesianFloat) {
				samples = append(samples, c)
			})).To(Succeed())
			Expect(samples).To(HaveLen(1))
			Expect(samples[0].Z).To(BeNumerically("==", 1))
		})

		It("reads device information", func() {
			values := map[uuid.UUID]string{
				protocol.ManufacturerCharUUID: "MbientLab Inc",
				protocol.ModelNumberCharUUID:  "5",
				protocol.FirmwareRevCharUUID:  "1.5.0",
				protocol.HardwareRevCharUUID:  "0.4",
			}
			transport.EXPECT().ReadByUUID(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, u uuid.UUID) ([]byte, error) {
					if v, ok := values[u]; ok {
						return []byte(v), nil
					}
					return nil, fmt.Errorf("%w: %s", protocol.ErrCharacteristicNotFound, u)
				}).Times(5)

			info, err := client.DeviceInfo(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(info.Manufacturer).To(Equal("MbientLab Inc"))
			Expect(info.FirmwareRevision).To(Equal("1.5.0"))
			Expect(info.SerialNumber).To(BeEmpty())
		})
	})
})
