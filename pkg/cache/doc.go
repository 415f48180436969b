// Package cache remembers MetaWear boards found by earlier scans.
//
// Scanning takes several seconds and requires elevated privileges on Linux. A [DeviceCache] lets
// a client reconnect to the board it used last without scanning again. If the cached board is no
// longer in range, the connection attempt times out and the client can fall back to a scan.
//
// The same DeviceCache may safely be shared by concurrent goroutines.
package cache
