package ble

// Beacon is an advertisement received while scanning.
type Beacon struct {
	Address     string
	LocalName   string
	RSSI        int16
	Connectable bool
}
