//go:build linux || darwin

package native

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/metawear-go/metawear/internal/log"
	"github.com/metawear-go/metawear/pkg/board"
	"github.com/metawear-go/metawear/pkg/data"
	"github.com/metawear-go/metawear/pkg/protocol"
)

// functions holds the library entry points used by this package.
type functions struct {
	boardCreate       func(conn *btleConnection) uintptr
	boardInitialize   func(board uintptr, initialized uintptr)
	boardFree         func(board uintptr)
	charRead          func(board uintptr, char *gattChar, value *byte, length uint8)
	notifyCharChanged func(board uintptr, value *byte, length uint8)

	ledLoadPresetPattern func(pattern *board.LedPattern, preset int32)
	ledWritePattern      func(board uintptr, pattern *board.LedPattern, color int32)
	ledPlay              func(board uintptr)
	ledStop              func(board uintptr)
	ledStopAndClear      func(board uintptr)

	readBatteryState        func(board uintptr)
	batteryStateDataSignal  func(board uintptr) uintptr
	switchStateDataSignal   func(board uintptr) uintptr
	accelerationDataSignal  func(board uintptr) uintptr
	accEnableSampling       func(board uintptr)
	accDisableSampling      func(board uintptr)
	accStart                func(board uintptr)
	accStop                 func(board uintptr)
	dataSignalSubscribe     func(signal uintptr, handler uintptr)
	dataSignalUnsubscribe   func(signal uintptr)
}

// Library is a loaded copy of libmetawear.
type Library struct {
	path   string
	handle uintptr
	fn     functions
}

// Open loads the library at path and resolves every symbol this package needs.
func Open(path string) (*Library, error) {
	log.Debug("Loading board library from %s", path)
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", protocol.ErrLibraryUnavailable, err)
	}

	l := &Library{path: path, handle: handle}
	symbols := []struct {
		fptr interface{}
		name string
	}{
		{&l.fn.boardCreate, "mbl_mw_metawearboard_create"},
		{&l.fn.boardInitialize, "mbl_mw_metawearboard_initialize"},
		{&l.fn.boardFree, "mbl_mw_metawearboard_free"},
		{&l.fn.charRead, "mbl_mw_connection_char_read"},
		{&l.fn.notifyCharChanged, "mbl_mw_connection_notify_char_changed"},
		{&l.fn.ledLoadPresetPattern, "mbl_mw_led_load_preset_pattern"},
		{&l.fn.ledWritePattern, "mbl_mw_led_write_pattern"},
		{&l.fn.ledPlay, "mbl_mw_led_play"},
		{&l.fn.ledStop, "mbl_mw_led_stop"},
		{&l.fn.ledStopAndClear, "mbl_mw_led_stop_and_clear"},
		{&l.fn.readBatteryState, "mbl_mw_settings_read_battery_state"},
		{&l.fn.batteryStateDataSignal, "mbl_mw_settings_get_battery_state_data_signal"},
		{&l.fn.switchStateDataSignal, "mbl_mw_switch_get_state_data_signal"},
		{&l.fn.accelerationDataSignal, "mbl_mw_acc_get_acceleration_data_signal"},
		{&l.fn.accEnableSampling, "mbl_mw_acc_enable_acceleration_sampling"},
		{&l.fn.accDisableSampling, "mbl_mw_acc_disable_acceleration_sampling"},
		{&l.fn.accStart, "mbl_mw_acc_start"},
		{&l.fn.accStop, "mbl_mw_acc_stop"},
		{&l.fn.dataSignalSubscribe, "mbl_mw_datasignal_subscribe"},
		{&l.fn.dataSignalUnsubscribe, "mbl_mw_datasignal_unsubscribe"},
	}
	for _, s := range symbols {
		sym, err := purego.Dlsym(handle, s.name)
		if err != nil {
			_ = purego.Dlclose(handle)
			return nil, fmt.Errorf("%w: %s is missing %s", protocol.ErrLibraryUnavailable, path, s.name)
		}
		purego.RegisterFunc(s.fptr, sym)
	}
	return l, nil
}

func (l *Library) String() string {
	return l.path
}

// Create allocates a board handle whose GATT traffic is routed through bridge.
func (l *Library) Create(bridge board.Bridge) (board.Board, error) {
	b := &nativeBoard{
		fn:            &l.fn,
		bridge:        bridge,
		handlers:      make(map[board.Signal]func(data.Data)),
		dataCallbacks: make(map[board.Signal]uintptr),
	}
	b.conn = btleConnection{
		writeGattChar: purego.NewCallback(b.writeGattChar),
		readGattChar:  purego.NewCallback(b.readGattChar),
	}
	b.initCallback = purego.NewCallback(b.initialized)

	b.handle = l.fn.boardCreate(&b.conn)
	runtime.KeepAlive(b)
	if b.handle == 0 {
		return nil, fmt.Errorf("native: mbl_mw_metawearboard_create returned NULL")
	}
	return b, nil
}

type nativeBoard struct {
	fn     *functions
	handle uintptr
	bridge board.Bridge

	conn         btleConnection
	initCallback uintptr

	lock          sync.Mutex
	onInitialized func()
	handlers      map[board.Signal]func(data.Data)
	// Callbacks cannot be released, so one is kept per signal and reused across subscriptions.
	dataCallbacks map[board.Signal]uintptr
}

func (b *nativeBoard) writeGattChar(char *gattChar, value *byte, length uintptr) {
	c := char.characteristic()
	buf := copyBytes(unsafe.Pointer(value), int(uint8(length)))
	log.Debug("native: write %s: %02x", c, buf)
	if err := b.bridge.WriteGattChar(c, buf); err != nil {
		log.Error("native: failed to write %s: %s", c, err)
	}
}

func (b *nativeBoard) readGattChar(char *gattChar) {
	c := char.characteristic()
	log.Debug("native: read %s", c)
	if err := b.bridge.ReadGattChar(c); err != nil {
		log.Error("native: failed to read %s: %s", c, err)
	}
}

func (b *nativeBoard) initialized() {
	b.lock.Lock()
	done := b.onInitialized
	b.lock.Unlock()
	if done != nil {
		done()
	}
}

func (b *nativeBoard) sample(signal board.Signal, d *mblMwData) {
	value, err := decodeSample(d)
	if err != nil {
		log.Error("native: dropping sample from signal %#x: %s", uintptr(signal), err)
		return
	}
	b.lock.Lock()
	handler := b.handlers[signal]
	b.lock.Unlock()
	if handler != nil {
		handler(value)
	}
}

// Board methods do nothing once Free has released the handle; libmetawear does not accept a
// null board.
func (b *nativeBoard) Initialize(done func()) {
	if b.handle == 0 {
		return
	}
	b.lock.Lock()
	b.onInitialized = done
	b.lock.Unlock()
	b.fn.boardInitialize(b.handle, b.initCallback)
}

func (b *nativeBoard) CharRead(char protocol.Characteristic, value []byte) {
	if b.handle == 0 {
		return
	}
	g := newGattChar(char)
	ptr, n := bufferArgs(value)
	b.fn.charRead(b.handle, &g, ptr, n)
	runtime.KeepAlive(value)
}

func (b *nativeBoard) NotifyCharChanged(value []byte) {
	if b.handle == 0 {
		return
	}
	ptr, n := bufferArgs(value)
	b.fn.notifyCharChanged(b.handle, ptr, n)
	runtime.KeepAlive(value)
}

func (b *nativeBoard) LoadPresetPattern(preset board.LedPreset) board.LedPattern {
	var pattern board.LedPattern
	b.fn.ledLoadPresetPattern(&pattern, int32(preset))
	return pattern
}

func (b *nativeBoard) WritePattern(pattern board.LedPattern, color board.LedColor) {
	if b.handle == 0 {
		return
	}
	b.fn.ledWritePattern(b.handle, &pattern, int32(color))
}

func (b *nativeBoard) PlayLED() {
	if b.handle == 0 {
		return
	}
	b.fn.ledPlay(b.handle)
}

func (b *nativeBoard) StopLED(clear bool) {
	if b.handle == 0 {
		return
	}
	if clear {
		b.fn.ledStopAndClear(b.handle)
	} else {
		b.fn.ledStop(b.handle)
	}
}

func (b *nativeBoard) ReadBatteryState() {
	if b.handle == 0 {
		return
	}
	b.fn.readBatteryState(b.handle)
}

func (b *nativeBoard) StartAccelerometer() {
	if b.handle == 0 {
		return
	}
	b.fn.accEnableSampling(b.handle)
	b.fn.accStart(b.handle)
}

func (b *nativeBoard) StopAccelerometer() {
	if b.handle == 0 {
		return
	}
	b.fn.accStop(b.handle)
	b.fn.accDisableSampling(b.handle)
}

func (b *nativeBoard) Signal(id board.SignalID) (board.Signal, error) {
	if b.handle == 0 {
		return 0, protocol.ErrClosed
	}
	var signal uintptr
	switch id {
	case board.SignalBatteryState:
		signal = b.fn.batteryStateDataSignal(b.handle)
	case board.SignalSwitch:
		signal = b.fn.switchStateDataSignal(b.handle)
	case board.SignalAcceleration:
		signal = b.fn.accelerationDataSignal(b.handle)
	default:
		return 0, fmt.Errorf("native: unknown signal %d", id)
	}
	if signal == 0 {
		return 0, fmt.Errorf("native: board does not provide a %s signal", id)
	}
	return board.Signal(signal), nil
}

func (b *nativeBoard) Subscribe(signal board.Signal, handler func(data.Data)) {
	if b.handle == 0 {
		return
	}
	b.lock.Lock()
	b.handlers[signal] = handler
	callback, ok := b.dataCallbacks[signal]
	if !ok {
		callback = purego.NewCallback(func(d *mblMwData) {
			b.sample(signal, d)
		})
		b.dataCallbacks[signal] = callback
	}
	b.lock.Unlock()
	b.fn.dataSignalSubscribe(uintptr(signal), callback)
}

func (b *nativeBoard) Unsubscribe(signal board.Signal) {
	if b.handle == 0 {
		return
	}
	b.fn.dataSignalUnsubscribe(uintptr(signal))
	b.lock.Lock()
	delete(b.handlers, signal)
	b.lock.Unlock()
}

func (b *nativeBoard) Free() {
	if b.handle == 0 {
		return
	}
	b.fn.boardFree(b.handle)
	b.handle = 0
}
