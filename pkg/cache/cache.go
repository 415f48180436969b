package cache

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Entry describes a board seen during a scan or connection.
type Entry struct {
	Name     string    `json:"name"`
	Model    string    `json:"model,omitempty"`
	Firmware string    `json:"firmware,omitempty"`
	LastSeen time.Time `json:"last_seen"`
}

type DeviceCache struct {
	MaxEntries int
	Devices    map[string]Entry `json:"devices"`
	lock       sync.Mutex
}

// New returns a DeviceCache that holds up to maxEntries boards. When full, the board that was
// seen least recently is evicted.
//
// Set maxEntries to zero for an unbounded cache.
func New(maxEntries int) *DeviceCache {
	return &DeviceCache{
		MaxEntries: maxEntries,
		Devices:    make(map[string]Entry),
	}
}

// Import a DeviceCache using data in r.
// The data should previously have been generated using [DeviceCache.Export].
func Import(r io.Reader) (*DeviceCache, error) {
	var cache DeviceCache
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&cache); err != nil {
		return nil, err
	}
	if cache.Devices == nil {
		cache.Devices = make(map[string]Entry)
	}
	return &cache, nil
}

// ImportFromFile reads a DeviceCache from disk.
func ImportFromFile(filename string) (*DeviceCache, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Import(file)
}

// Export writes a serialized DeviceCache to w.
func (c *DeviceCache) Export(w io.Writer) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	return json.NewEncoder(w).Encode(c)
}

// ExportToFile writes a DeviceCache to disk, replacing any previous contents.
func (c *DeviceCache) ExportToFile(filename string) error {
	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	return c.Export(file)
}

func normalize(address string) string {
	return strings.ToUpper(strings.TrimSpace(address))
}

// Update records entry for address. Addresses are compared case-insensitively. Empty fields of
// entry keep their previous value, and a zero LastSeen is replaced by the current time.
func (c *DeviceCache) Update(address string, entry Entry) {
	c.lock.Lock()
	defer c.lock.Unlock()

	address = normalize(address)
	if previous, ok := c.Devices[address]; ok {
		if entry.Name == "" {
			entry.Name = previous.Name
		}
		if entry.Model == "" {
			entry.Model = previous.Model
		}
		if entry.Firmware == "" {
			entry.Firmware = previous.Firmware
		}
	}
	if entry.LastSeen.IsZero() {
		entry.LastSeen = time.Now()
	}
	c.Devices[address] = entry

	if c.MaxEntries > 0 && len(c.Devices) > c.MaxEntries {
		oldest := address
		oldestSeen := entry.LastSeen
		for a, e := range c.Devices {
			if e.LastSeen.Before(oldestSeen) {
				oldest = a
				oldestSeen = e.LastSeen
			}
		}
		delete(c.Devices, oldest)
	}
}

// Get returns the entry recorded for address.
func (c *DeviceCache) Get(address string) (Entry, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	entry, ok := c.Devices[normalize(address)]
	return entry, ok
}

// Latest returns the address of the board seen most recently.
func (c *DeviceCache) Latest() (string, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	var latest string
	var latestSeen time.Time
	for a, e := range c.Devices {
		if latest == "" || e.LastSeen.After(latestSeen) {
			latest = a
			latestSeen = e.LastSeen
		}
	}
	return latest, latest != ""
}
