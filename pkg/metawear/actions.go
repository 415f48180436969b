// File implements commands that drive the board's LED and sensors.

package metawear

import (
	"context"
	"fmt"

	"github.com/metawear-go/metawear/pkg/board"
	"github.com/metawear-go/metawear/pkg/data"
	"github.com/metawear-go/metawear/pkg/protocol"
)

// withBoard runs fn while holding the board lock. It returns protocol.ErrClosed without calling
// fn once the board handle has been freed by Close.
func (c *Client) withBoard(fn func(b board.Board)) error {
	c.boardLock.Lock()
	defer c.boardLock.Unlock()
	if c.freed {
		return protocol.ErrClosed
	}
	fn(c.board)
	return nil
}

// BlinkLED loads the blink preset, sets its repeat count and plays it on color.
func (c *Client) BlinkLED(color board.LedColor, repeat uint8) error {
	return c.withBoard(func(b board.Board) {
		pattern := b.LoadPresetPattern(board.LedPresetBlink)
		pattern.RepeatCount = repeat
		b.WritePattern(pattern, color)
		b.PlayLED()
	})
}

// PlayLEDPattern writes pattern to color and starts playing it.
func (c *Client) PlayLEDPattern(pattern board.LedPattern, color board.LedColor) error {
	return c.withBoard(func(b board.Board) {
		b.WritePattern(pattern, color)
		b.PlayLED()
	})
}

// StopLED stops the LED. If clear is true, the stored patterns are erased as well.
func (c *Client) StopLED(clear bool) error {
	return c.withBoard(func(b board.Board) {
		b.StopLED(clear)
	})
}

// Subscribe registers handler for samples of the signal identified by id. The returned function
// removes the subscription and does nothing once the client is closed. handler runs on the
// client's notification goroutine and must not call back into the Client.
func (c *Client) Subscribe(id board.SignalID, handler func(data.Data)) (unsubscribe func(), err error) {
	var signal board.Signal
	if lockErr := c.withBoard(func(b board.Board) {
		if signal, err = b.Signal(id); err == nil {
			b.Subscribe(signal, handler)
		}
	}); lockErr != nil {
		return nil, lockErr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain %s signal: %w", id, err)
	}
	return func() {
		_ = c.withBoard(func(b board.Board) {
			b.Unsubscribe(signal)
		})
	}, nil
}

// ReadBatteryState requests a battery reading and waits for the board to report it.
func (c *Client) ReadBatteryState(ctx context.Context) (data.BatteryState, error) {
	samples := make(chan data.Data, 1)
	unsubscribe, err := c.Subscribe(board.SignalBatteryState, func(d data.Data) {
		select {
		case samples <- d:
		default:
		}
	})
	if err != nil {
		return data.BatteryState{}, err
	}
	defer unsubscribe()

	if err := c.withBoard(func(b board.Board) {
		b.ReadBatteryState()
	}); err != nil {
		return data.BatteryState{}, err
	}

	select {
	case d := <-samples:
		state, ok := d.Value.(data.BatteryState)
		if !ok {
			return data.BatteryState{}, fmt.Errorf("unexpected battery sample %s", d)
		}
		return state, nil
	case <-ctx.Done():
		return data.BatteryState{}, ctx.Err()
	}
}

// WatchSwitch calls handler each time the push button changes state, until ctx is done.
func (c *Client) WatchSwitch(ctx context.Context, handler func(pressed bool)) error {
	unsubscribe, err := c.Subscribe(board.SignalSwitch, func(d data.Data) {
		if v, ok := d.Value.(uint32); ok {
			handler(v != 0)
		}
	})
	if err != nil {
		return err
	}
	defer unsubscribe()
	<-ctx.Done()
	return nil
}

// StreamAcceleration enables the accelerometer and calls handler for every sample until ctx is
// done. The accelerometer is stopped before returning unless the client was closed meanwhile.
func (c *Client) StreamAcceleration(ctx context.Context, handler func(data.CartesianFloat)) error {
	unsubscribe, err := c.Subscribe(board.SignalAcceleration, func(d data.Data) {
		if v, ok := d.Value.(data.CartesianFloat); ok {
			handler(v)
		}
	})
	if err != nil {
		return err
	}
	defer unsubscribe()

	if err := c.withBoard(func(b board.Board) {
		b.StartAccelerometer()
	}); err != nil {
		return err
	}
	<-ctx.Done()
	return c.withBoard(func(b board.Board) {
		b.StopAccelerometer()
	})
}
