package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/metawear-go/metawear/internal/log"
	"github.com/metawear-go/metawear/pkg/connector/ble"
)

var (
	btAdapter = flag.String("btAdapter", "", "Optional ID of Bluetooth adapter to use (Linux only)")
	testScan  = flag.Bool("testScan", false, "Also test BLE scan")
)

func main() {
	flag.Parse()
	log.SetLevel(log.LevelDebug)

	var err error
	if *btAdapter != "" {
		log.Info("Trying to use BLE adapter: %s", *btAdapter)
		err = ble.InitAdapterWithID(*btAdapter)
	} else {
		log.Info("Using first available BLE device")
		err = ble.InitAdapterWithID("")
	}

	if err != nil {
		if strings.Contains(err.Error(), "failed to find a BLE device") {
			log.Error("No BLE device found")
		} else {
			log.Error("Failed to initialize BLE device: %v", err)
		}
		if ble.IsAdapterError(err) {
			log.Error("%s", ble.AdapterErrorHelpMessage(err))
		}
		return
	}
	defer ble.CloseAdapter()

	log.Info("BLE adapter initialized")

	if !*testScan {
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	log.Info("Scanning for BLE devices until interrupted")
	for ctx.Err() == nil {
		beacons, err := ble.Scan(ctx, 5*time.Second)
		if err != nil && ctx.Err() == nil {
			log.Error("Scan failed: %v", err)
			return
		}
		for _, b := range beacons {
			log.Info("%s %q rssi=%d connectable=%v", b.Address, b.LocalName, b.RSSI, b.Connectable)
		}
	}
	log.Info("Stopping scan")
}
