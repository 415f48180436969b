package ble

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-ble/ble"

	"github.com/metawear-go/metawear/internal/log"
)

type scanner interface {
	Scan(ctx context.Context, allowDup bool, h ble.AdvHandler) error
}

func advertisementToBeacon(a ble.Advertisement) Beacon {
	return Beacon{
		Address:     a.Addr().String(),
		LocalName:   a.LocalName(),
		RSSI:        int16(a.RSSI()),
		Connectable: a.Connectable(),
	}
}

// beaconCollector keeps one Beacon per address in the order addresses were first seen. A later
// advertisement replaces the stored one, except that an empty name never overwrites a known name.
type beaconCollector struct {
	lock    sync.Mutex
	order   []string
	beacons map[string]Beacon
}

func newBeaconCollector() *beaconCollector {
	return &beaconCollector{beacons: make(map[string]Beacon)}
}

func (c *beaconCollector) add(b Beacon) {
	c.lock.Lock()
	defer c.lock.Unlock()
	key := strings.ToUpper(b.Address)
	previous, ok := c.beacons[key]
	if !ok {
		c.order = append(c.order, key)
	} else if b.LocalName == "" {
		b.LocalName = previous.LocalName
	}
	c.beacons[key] = b
}

func (c *beaconCollector) list() []Beacon {
	c.lock.Lock()
	defer c.lock.Unlock()
	out := make([]Beacon, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.beacons[key])
	}
	return out
}

// isScanDone reports whether err only signals the end of a bounded scan. go-ble's Scan always
// returns the context's error, and on macOS never returns before the context is done.
func isScanDone(err error) bool {
	return err == nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// Scan collects advertisements for duration using the shared adapter.
func Scan(ctx context.Context, duration time.Duration) ([]Beacon, error) {
	dev, err := currentDevice()
	if err != nil {
		return nil, err
	}
	return scanFor(ctx, dev, duration)
}

func scanFor(ctx context.Context, s scanner, duration time.Duration) ([]Beacon, error) {
	scanCtx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	collector := newBeaconCollector()
	log.Debug("Scanning for %s", duration)
	err := s.Scan(scanCtx, true, func(a ble.Advertisement) {
		collector.add(advertisementToBeacon(a))
	})
	if !isScanDone(err) {
		return nil, fmt.Errorf("ble: scan failed: %w", err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return collector.list(), nil
}

// scanForAddress blocks until an advertisement from address is received.
func scanForAddress(ctx context.Context, s scanner, address string) (ble.Advertisement, error) {
	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan ble.Advertisement, 1)
	fn := func(a ble.Advertisement) {
		if !strings.EqualFold(a.Addr().String(), address) {
			return
		}
		select {
		case ch <- a:
			cancel() // Notify s.Scan() that we found a match
		case <-scanCtx.Done():
			// Another advertisement already matched. Return so that the macOS implementation
			// of Scan unblocks.
		}
	}

	if err := s.Scan(scanCtx, false, fn); !isScanDone(err) {
		return nil, err
	}

	select {
	case a := <-ch:
		return a, nil
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("ble: scan ended without seeing %s", address)
}
