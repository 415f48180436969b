/*
Package cli facilitates building command-line applications that talk to MetaWear boards. It
defines a [Config] type that can be used to register common command-line flags (using the Golang
flag package), environment variable equivalents and an optional YAML configuration file.

# Examples

	import flag

	config, err := NewConfig(FlagAll)
	if err != nil {
		panic(err)
	}
	config.RegisterCommandLineFlags() // Adds command-line flags for the board address, adapter, etc.
	flag.Parse()
	config.ReadFromEnvironment() // Fills in missing fields using environment variables
	if err := config.ReadConfigFile(); err != nil { // Fills in what is still missing from -config
		panic(err)
	}

	// Scans for a board if no address is configured, then connects to it.
	client, err := config.Connect(ctx)
	if err != nil {
		panic(err)
	}
	defer client.Close()

Precedence is always command line, then environment, then configuration file.
*/
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/metawear-go/metawear/internal/log"
	"github.com/metawear-go/metawear/pkg/board"
	"github.com/metawear-go/metawear/pkg/cache"
	"github.com/metawear-go/metawear/pkg/connector/ble"
	"github.com/metawear-go/metawear/pkg/discovery"
	"github.com/metawear-go/metawear/pkg/metawear"
	"github.com/metawear-go/metawear/pkg/native"
	"github.com/metawear-go/metawear/pkg/protocol"
)

// Environment variable names used are used by [Config.ReadFromEnvironment] to set common parameters.
const (
	EnvMetaWearLibrary   = native.EnvLibraryPath
	EnvMetaWearAddress   = "METAWEAR_ADDRESS"
	EnvMetaWearAdapter   = "METAWEAR_BT_ADAPTER"
	EnvMetaWearCacheFile = "METAWEAR_CACHE_FILE"
	EnvMetaWearVerbose   = "METAWEAR_VERBOSE"
)

// Flag controls what options should be scanned from the command line and/or environment variables.
type Flag int

func (f Flag) isSet(other Flag) bool {
	return (f & other) == other
}

const (
	FlagAddress Flag = 1 // Enable board address option.
	FlagBLE     Flag = 2 // Enable adapter, scan and connection options.
	FlagLibrary Flag = 4 // Enable board library option. Required for Connect.
	FlagCache   Flag = 8 // Enable device cache option.
	FlagAll     Flag = FlagAddress | FlagBLE | FlagLibrary | FlagCache
)

// DefaultCacheSize is the number of boards remembered in the device cache.
const DefaultCacheSize = 16

var ErrNoAddress = errors.New("no board address configured and no board found")

// Config fields determine how a client finds and connects to a board.
type Config struct {
	Flags          Flag          `yaml:"-"` // Controls which set of environment variables/CLI flags to use.
	Address        string        `yaml:"address"`
	BtAdapterID    string        `yaml:"bt_adapter"`
	ScanTimeout    time.Duration `yaml:"scan_timeout"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	LibraryPath    string        `yaml:"library"`
	CacheFilename  string        `yaml:"device_cache"`
	ConfigFilename string        `yaml:"-"`
	NativeScan     bool          `yaml:"native_scan"`
	Verbose        bool          `yaml:"verbose"`

	devices *cache.DeviceCache

	// Replaced in tests.
	discover    func(ctx context.Context, opts discovery.Options) ([]discovery.Device, error)
	openLibrary func(path string) (board.Library, error)
}

func NewConfig(flags Flag) (*Config, error) {
	return &Config{Flags: flags}, nil
}

// RegisterCommandLineFlags registers c's options with the default flag set.
func (c *Config) RegisterCommandLineFlags() {
	c.RegisterFlags(flag.CommandLine)
}

// RegisterFlags registers c's options with fs.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.ConfigFilename, "config", "", "Read defaults from YAML `file`.")
	if c.Flags.isSet(FlagAddress) {
		fs.StringVar(&c.Address, "address", "", "Bluetooth `address` of the board. Defaults to $METAWEAR_ADDRESS, then the last board used, then a scan.")
	}
	if c.Flags.isSet(FlagBLE) {
		fs.DurationVar(&c.ScanTimeout, "scan-timeout", 0, "How long to scan for boards. Defaults to 5s.")
		fs.DurationVar(&c.ConnectTimeout, "connect-timeout", 0, "How long to wait for a connection. Defaults to 5s.")
		fs.BoolVar(&c.NativeScan, "native-scan", false, "Scan through the Bluetooth adapter instead of hcitool.")
		c.registerFlagsOsSpecific(fs)
	}
	if c.Flags.isSet(FlagLibrary) {
		fs.StringVar(&c.LibraryPath, "lib", "", "Path to libmetawear `file`. Defaults to $METAWEAR_LIB_SO_NAME.")
	}
	if c.Flags.isSet(FlagCache) {
		fs.StringVar(&c.CacheFilename, "device-cache", "", "Remember boards in `file`. Defaults to $METAWEAR_CACHE_FILE.")
	}
}

// ReadFromEnvironment populates c using environment variables. Values that are already populated
// are not overwritten.
//
// Calling ReadFromEnvironment after flag.Parse() (or other initialization method) will prevent the
// environment from overriding explicit command-line parameters and avoid potentially misleading
// debug log messages.
func (c *Config) ReadFromEnvironment() {
	if c.Flags.isSet(FlagAddress) && c.Address == "" {
		c.Address = os.Getenv(EnvMetaWearAddress)
		log.Debug("Set address to '%s'", c.Address)
	}
	if c.Flags.isSet(FlagBLE) && c.BtAdapterID == "" {
		c.BtAdapterID = os.Getenv(EnvMetaWearAdapter)
		log.Debug("Set Bluetooth adapter to '%s'", c.BtAdapterID)
	}
	if c.Flags.isSet(FlagLibrary) && c.LibraryPath == "" {
		c.LibraryPath = os.Getenv(EnvMetaWearLibrary)
		log.Debug("Set board library to '%s'", c.LibraryPath)
	}
	if c.Flags.isSet(FlagCache) && c.CacheFilename == "" {
		c.CacheFilename = os.Getenv(EnvMetaWearCacheFile)
		log.Debug("Set device cache file to '%s'", c.CacheFilename)
	}
	if !c.Verbose {
		if value, ok := os.LookupEnv(EnvMetaWearVerbose); ok {
			verbose, err := strconv.ParseBool(value)
			c.Verbose = err != nil || verbose
		}
	}
}

// ReadConfigFile fills in fields that are still empty from the YAML file named by
// c.ConfigFilename. It does nothing if no file is configured.
func (c *Config) ReadConfigFile() error {
	if c.ConfigFilename == "" {
		return nil
	}
	log.Debug("Loading configuration from %s...", c.ConfigFilename)
	raw, err := os.ReadFile(c.ConfigFilename)
	if err != nil {
		return fmt.Errorf("failed to read configuration: %w", err)
	}
	var file Config
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("failed to parse configuration %s: %w", c.ConfigFilename, err)
	}
	c.merge(&file)
	return nil
}

// merge copies fields from other that are empty in c.
func (c *Config) merge(other *Config) {
	if c.Address == "" {
		c.Address = other.Address
	}
	if c.BtAdapterID == "" {
		c.BtAdapterID = other.BtAdapterID
	}
	if c.ScanTimeout == 0 {
		c.ScanTimeout = other.ScanTimeout
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = other.ConnectTimeout
	}
	if c.LibraryPath == "" {
		c.LibraryPath = other.LibraryPath
	}
	if c.CacheFilename == "" {
		c.CacheFilename = other.CacheFilename
	}
	c.NativeScan = c.NativeScan || other.NativeScan
	c.Verbose = c.Verbose || other.Verbose
}

func (c *Config) loadCache() error {
	if c.devices != nil || c.CacheFilename == "" {
		return nil
	}
	log.Debug("Loading device cache from %s...", c.CacheFilename)
	var err error
	c.devices, err = cache.ImportFromFile(c.CacheFilename)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load device cache: %s", err)
		}
		// Create a new cache if one couldn't be loaded from the file
		c.devices = cache.New(DefaultCacheSize)
	}
	return nil
}

// UpdateCachedDevice records entry for address and writes the device cache to
// c.CacheFilename.
//
// If c.CacheFilename is not set, then this method does nothing.
func (c *Config) UpdateCachedDevice(address string, entry cache.Entry) {
	if c.CacheFilename == "" {
		return
	}
	if err := c.loadCache(); err != nil {
		log.Error("Error loading cache: %s", err)
		return
	}
	c.devices.Update(address, entry)
	if err := c.devices.ExportToFile(c.CacheFilename); err != nil {
		log.Error("Error updating cache: %s", err)
	}
}

// Discover scans for MetaWear boards using hcitool, or the Bluetooth adapter if c.NativeScan is
// set. Boards found are added to the device cache.
func (c *Config) Discover(ctx context.Context) ([]discovery.Device, error) {
	opts := discovery.Options{
		Timeout:   c.ScanTimeout,
		Interface: c.BtAdapterID,
	}
	discover := c.discover
	if discover == nil {
		discover = discovery.Discover
		if c.NativeScan {
			discover = discovery.DiscoverNative
		}
	}
	devices, err := discover(ctx, opts)
	if err != nil {
		return nil, err
	}
	for _, d := range devices {
		c.UpdateCachedDevice(d.Address, cache.Entry{Name: d.Name})
	}
	return devices, nil
}

// resolveAddress returns the configured address, the most recently used board from the device
// cache, or the first board found by a scan, in that order.
func (c *Config) resolveAddress(ctx context.Context) (string, error) {
	if c.Address != "" {
		return c.Address, nil
	}
	if err := c.loadCache(); err != nil {
		return "", err
	}
	if c.devices != nil {
		if address, ok := c.devices.Latest(); ok {
			log.Info("Using %s from device cache", address)
			return address, nil
		}
	}

	log.Info("Scanning for boards...")
	devices, err := c.Discover(ctx)
	if err != nil {
		return "", err
	}
	if len(devices) == 0 {
		return "", fmt.Errorf("%w: %w", ErrNoAddress, protocol.ErrNoDevices)
	}
	log.Info("Found %s", devices[0])
	return devices[0].Address, nil
}

func (c *Config) library() (board.Library, error) {
	path := c.LibraryPath
	if path == "" {
		path = native.LibraryPath()
	}
	if c.openLibrary != nil {
		return c.openLibrary(path)
	}
	log.Debug("Loading board library from %s", path)
	lib, err := native.Open(path)
	if err != nil {
		return nil, err
	}
	return lib, nil
}

// Connect finds the board to use, opens the board library and connects to the board.
func (c *Config) Connect(ctx context.Context) (*metawear.Client, error) {
	address, err := c.resolveAddress(ctx)
	if err != nil {
		return nil, err
	}
	lib, err := c.library()
	if err != nil {
		return nil, err
	}
	if err := ble.InitAdapterWithID(c.BtAdapterID); err != nil {
		return nil, err
	}

	log.Info("Connecting to %s...", address)
	transport := ble.NewTransport(address)
	client, err := metawear.NewClient(ctx, transport, lib, &metawear.Options{ConnectTimeout: c.ConnectTimeout})
	if err != nil {
		return nil, err
	}
	c.UpdateCachedDevice(address, cache.Entry{})
	return client, nil
}
