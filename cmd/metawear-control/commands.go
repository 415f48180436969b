package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/metawear-go/metawear/pkg/board"
	"github.com/metawear-go/metawear/pkg/cache"
	"github.com/metawear-go/metawear/pkg/cli"
	"github.com/metawear-go/metawear/pkg/data"
	"github.com/metawear-go/metawear/pkg/metawear"
)

var (
	ErrCommandLineArgs = errors.New("invalid command line arguments")
	ErrUnknownCommand  = errors.New("unrecognized command")
	ErrRequiresBoard   = errors.New("command requires a connected board")
)

const (
	defaultBlinkCount     = 10
	defaultStreamDuration = 10 * time.Second
)

type Argument struct {
	name string
	help string
}

type Handler func(ctx context.Context, config *cli.Config, client *metawear.Client, args map[string]string) error

type Command struct {
	help          string
	requiresBoard bool // True if the command talks to a connected board
	longRunning   bool // True if the command bounds its own duration instead of using -command-timeout
	args          []Argument
	optional      []Argument
	handler       Handler
}

// ParseRepeatCount parses the number of times an LED pattern plays.
func ParseRepeatCount(s string) (uint8, error) {
	count, err := strconv.ParseUint(s, 10, 8)
	if err != nil || count == 0 {
		return 0, fmt.Errorf("%w: repeat count must be between 1 and 255", ErrCommandLineArgs)
	}
	return uint8(count), nil
}

// ParseDuration accepts Go durations ("30s") or a bare number of seconds.
func ParseDuration(s string) (time.Duration, error) {
	if seconds, err := strconv.ParseFloat(s, 64); err == nil {
		if seconds <= 0 {
			return 0, fmt.Errorf("%w: duration must be positive", ErrCommandLineArgs)
		}
		return time.Duration(seconds * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: invalid duration '%s'", ErrCommandLineArgs, s)
	}
	return d, nil
}

func durationArg(args map[string]string, fallback time.Duration) (time.Duration, error) {
	if s, ok := args["DURATION"]; ok {
		return ParseDuration(s)
	}
	return fallback, nil
}

func execute(ctx context.Context, config *cli.Config, client *metawear.Client, args []string) error {
	if len(args) == 0 {
		return errors.New("missing COMMAND")
	}

	info, ok := commands[args[0]]
	if !ok {
		return ErrUnknownCommand
	}
	if info.requiresBoard && client == nil {
		return ErrRequiresBoard
	}

	var err error
	if len(args)-1 < len(info.args) || len(args)-1 > len(info.args)+len(info.optional) {
		writeErr("Invalid number of command line arguments: %d (%d required, %d optional).", len(args)-1, len(info.args), len(info.optional))
		err = ErrCommandLineArgs
	} else {
		keywords := make(map[string]string)
		for i, argInfo := range info.args {
			keywords[argInfo.name] = args[i+1]
		}
		index := len(info.args) + 1
		for _, argInfo := range info.optional {
			if index >= len(args) {
				break
			}
			keywords[argInfo.name] = args[index]
			index++
		}
		err = info.handler(ctx, config, client, keywords)
	}

	// Print command-specific help
	if errors.Is(err, ErrCommandLineArgs) {
		info.Usage(args[0])
	}
	return err
}

func (c *Command) Usage(name string) {
	fmt.Printf("Usage: %s", name)
	maxLength := 0
	for _, arg := range c.args {
		fmt.Printf(" %s", arg.name)
		if len(arg.name) > maxLength {
			maxLength = len(arg.name)
		}
	}
	if len(c.optional) > 0 {
		fmt.Printf(" [")
	}
	for _, arg := range c.optional {
		fmt.Printf(" %s", arg.name)
		if len(arg.name) > maxLength {
			maxLength = len(arg.name)
		}
	}
	if len(c.optional) > 0 {
		fmt.Printf(" ]")
	}
	fmt.Printf("\n%s\n", c.help)
	maxLength++
	for _, arg := range c.args {
		fmt.Printf("    %s:%s%s\n", arg.name, strings.Repeat(" ", maxLength-len(arg.name)), arg.help)
	}
	for _, arg := range c.optional {
		fmt.Printf("    %s:%s%s\n", arg.name, strings.Repeat(" ", maxLength-len(arg.name)), arg.help)
	}
}

var commands = map[string]*Command{
	"scan": &Command{
		help:        "List nearby MetaWear boards",
		longRunning: true,
		optional: []Argument{
			Argument{name: "DURATION", help: "How long to scan, e.g. 10s. Defaults to -scan-timeout."},
		},
		handler: func(ctx context.Context, config *cli.Config, client *metawear.Client, args map[string]string) error {
			duration, err := durationArg(args, scanTimeout(config))
			if err != nil {
				return err
			}
			config.ScanTimeout = duration
			devices, err := config.Discover(ctx)
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				fmt.Println("No MetaWear boards found.")
			}
			for _, d := range devices {
				fmt.Printf("%s\t%s\n", d.Address, d.Name)
			}
			return nil
		},
	},
	"blink": &Command{
		help:          "Blink the LED",
		requiresBoard: true,
		optional: []Argument{
			Argument{name: "COLOR", help: "green, red or blue. Defaults to green."},
			Argument{name: "COUNT", help: fmt.Sprintf("Number of blinks (1-255). Defaults to %d.", defaultBlinkCount)},
		},
		handler: func(ctx context.Context, config *cli.Config, client *metawear.Client, args map[string]string) error {
			color := board.LedGreen
			if name, ok := args["COLOR"]; ok {
				var err error
				if color, err = board.ParseLedColor(name); err != nil {
					return fmt.Errorf("%w: %s", ErrCommandLineArgs, err)
				}
			}
			count := uint8(defaultBlinkCount)
			if s, ok := args["COUNT"]; ok {
				var err error
				if count, err = ParseRepeatCount(s); err != nil {
					return err
				}
			}
			return client.BlinkLED(color, count)
		},
	},
	"led-stop": &Command{
		help:          "Turn the LED off and clear its patterns",
		requiresBoard: true,
		handler: func(ctx context.Context, config *cli.Config, client *metawear.Client, args map[string]string) error {
			return client.StopLED(true)
		},
	},
	"battery": &Command{
		help:          "Read the battery voltage and charge",
		requiresBoard: true,
		handler: func(ctx context.Context, config *cli.Config, client *metawear.Client, args map[string]string) error {
			state, err := client.ReadBatteryState(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Voltage: %d mV\nCharge: %d%%\n", state.Voltage, state.Charge)
			return nil
		},
	},
	"battery-level": &Command{
		help:          "Read the standard Battery Level characteristic",
		requiresBoard: true,
		handler: func(ctx context.Context, config *cli.Config, client *metawear.Client, args map[string]string) error {
			level, err := client.BatteryLevel(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%d%%\n", level)
			return nil
		},
	},
	"info": &Command{
		help:          "Print device information",
		requiresBoard: true,
		handler: func(ctx context.Context, config *cli.Config, client *metawear.Client, args map[string]string) error {
			info, err := client.DeviceInfo(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Address:      %s\n", client.Address())
			fmt.Printf("Manufacturer: %s\n", info.Manufacturer)
			fmt.Printf("Model:        %s\n", info.ModelNumber)
			fmt.Printf("Serial:       %s\n", info.SerialNumber)
			fmt.Printf("Firmware:     %s\n", info.FirmwareRevision)
			fmt.Printf("Hardware:     %s\n", info.HardwareRevision)
			config.UpdateCachedDevice(client.Address(), cache.Entry{Model: info.ModelNumber, Firmware: info.FirmwareRevision})
			return nil
		},
	},
	"services": &Command{
		help:          "List the primary GATT services of the board",
		requiresBoard: true,
		handler: func(ctx context.Context, config *cli.Config, client *metawear.Client, args map[string]string) error {
			for _, s := range client.Services() {
				fmt.Printf("0x%04x-0x%04x\t%s\n", s.Handle, s.EndHandle, s.UUID)
			}
			return nil
		},
	},
	"switch": &Command{
		help:          "Print push button events",
		requiresBoard: true,
		longRunning:   true,
		optional: []Argument{
			Argument{name: "DURATION", help: "How long to listen, e.g. 30s. Defaults to 10s."},
		},
		handler: func(ctx context.Context, config *cli.Config, client *metawear.Client, args map[string]string) error {
			duration, err := durationArg(args, defaultStreamDuration)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(ctx, duration)
			defer cancel()
			return client.WatchSwitch(ctx, func(pressed bool) {
				if pressed {
					fmt.Println("pressed")
				} else {
					fmt.Println("released")
				}
			})
		},
	},
	"accel": &Command{
		help:          "Stream accelerometer samples",
		requiresBoard: true,
		longRunning:   true,
		optional: []Argument{
			Argument{name: "DURATION", help: "How long to stream, e.g. 5s. Defaults to 10s."},
		},
		handler: func(ctx context.Context, config *cli.Config, client *metawear.Client, args map[string]string) error {
			duration, err := durationArg(args, defaultStreamDuration)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(ctx, duration)
			defer cancel()
			return client.StreamAcceleration(ctx, func(sample data.CartesianFloat) {
				fmt.Println(sample)
			})
		},
	},
}
