/*
Package discovery finds nearby MetaWear boards.

[Discover] runs the BlueZ hcitool utility instead of opening the adapter directly, because hcitool
can be allowed to scan without running the whole program as root:

	sudo apt-get install libcap2-bin
	sudo setcap 'cap_net_raw,cap_net_admin+eip' "$(which hcitool)"

[DiscoverNative] scans through the go-ble adapter instead and needs the same capabilities on the
calling program.
*/
package discovery

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/metawear-go/metawear/internal/log"
	"github.com/metawear-go/metawear/pkg/protocol"
)

const (
	DefaultTimeout = 5 * time.Second
	// MetaWearName is matched case-insensitively against advertised names.
	MetaWearName = "metawear"
)

// Exact stderr lines printed by hcitool when it cannot configure the adapter.
const (
	stderrNotPermitted = "Set scan parameters failed: Operation not permitted\n"
	stderrIOError      = "Set scan parameters failed: Input/output error\n"
)

// Device is a peripheral seen during a scan.
type Device struct {
	Address string
	Name    string
}

func (d Device) String() string {
	return d.Address + " " + d.Name
}

// Options control a scan.
type Options struct {
	// Timeout is how long to scan. Zero selects DefaultTimeout.
	Timeout time.Duration
	// Interface selects the HCI device, e.g. "hci1". Empty selects the default.
	Interface string
	// AllDevices reports every advertising device. By default only devices whose name contains
	// "metawear" are kept.
	AllDevices bool
}

// Runner runs the scan command for duration and returns its output once it has exited.
type Runner interface {
	Run(ctx context.Context, duration time.Duration, name string, args ...string) (stdout, stderr []byte, err error)
}

// Discover scans with hcitool using the command runner.
func Discover(ctx context.Context, opts Options) ([]Device, error) {
	return DiscoverWith(ctx, CommandRunner{}, opts)
}

// DiscoverWith scans with hcitool using runner.
func DiscoverWith(ctx context.Context, runner Runner, opts Options) ([]Device, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	args := []string{"lescan"}
	if opts.Interface != "" {
		args = append([]string{"-i", opts.Interface}, args...)
	}

	log.Debug("Running hcitool %s for %s", strings.Join(args, " "), opts.Timeout)
	stdout, stderr, err := runner.Run(ctx, opts.Timeout, "hcitool", args...)
	if err != nil {
		return nil, err
	}
	if err := checkStderr(stdout, stderr); err != nil {
		return nil, err
	}

	devices := ParseLEScan(stdout)
	if !opts.AllDevices {
		devices = FilterByName(devices, MetaWearName)
	}
	return devices, nil
}

// checkStderr maps the diagnostics hcitool prints when it fails before scanning. Other stderr
// output is ignored.
func checkStderr(stdout, stderr []byte) error {
	if len(stdout) != 0 || len(stderr) == 0 {
		return nil
	}
	switch string(stderr) {
	case stderrNotPermitted:
		return protocol.ErrMissingCapabilities
	case stderrIOError:
		return protocol.ErrScanFailed
	}
	log.Debug("Ignoring hcitool stderr: %q", stderr)
	return nil
}

// ParseLEScan parses the output of "hcitool lescan". The first line is a banner. Every other
// non-empty line holds an address, a space and a name. Repeated lines are reported once.
func ParseLEScan(out []byte) []Device {
	devices := []Device{}
	seen := make(map[Device]bool)
	lines := bytes.Split(out, []byte("\n"))
	if len(lines) > 0 {
		lines = lines[1:]
	}
	for _, line := range lines {
		text := strings.TrimRight(string(line), "\r")
		if text == "" {
			continue
		}
		address, name, _ := strings.Cut(text, " ")
		d := Device{Address: address, Name: name}
		if seen[d] {
			continue
		}
		seen[d] = true
		devices = append(devices, d)
	}
	return devices
}

// FilterByName keeps devices whose name contains substr, ignoring case.
func FilterByName(devices []Device, substr string) []Device {
	substr = strings.ToLower(substr)
	out := []Device{}
	for _, d := range devices {
		if strings.Contains(strings.ToLower(d.Name), substr) {
			out = append(out, d)
		}
	}
	return out
}
