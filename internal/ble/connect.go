// Package ble is the tinygo bluetooth adapter for the ring protocol engine:
// device discovery by advertised name, connection setup, and the
// characteristic plumbing behind ring.Transport.
package ble

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"tinygo.org/x/bluetooth"

	"github.com/ryan-huang1/r02ctl/internal/ring"
)

// Device is a connected ring with both protocol channels resolved.
type Device struct {
	Name    string
	Address string

	// Command carries the fixed 16-byte packet protocol.
	Command ring.Transport
	// BigData carries the streaming log sub-protocol.
	BigData ring.Transport

	dev bluetooth.Device
	log *zap.Logger
}

// Disconnect drops the BLE connection.
func (d *Device) Disconnect() error {
	return d.dev.Disconnect()
}

// ScanResult is one advertisement seen during discovery.
type ScanResult struct {
	Name    string
	Address string
	RSSI    int
}

// Scan reports every named device seen within the scan window, compatible or
// not, so users can spot a ring advertising under an unlisted brand name.
func Scan(window time.Duration, log *zap.Logger) ([]ScanResult, error) {
	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("ble: enable adapter: %w", err)
	}

	seen := make(map[string]ScanResult)
	stop := time.AfterFunc(window, func() { adapter.StopScan() })
	defer stop.Stop()

	err := adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
		name := result.LocalName()
		if name == "" {
			return
		}
		addr := result.Address.String()
		seen[addr] = ScanResult{Name: name, Address: addr, RSSI: int(result.RSSI)}
	})
	if err != nil {
		return nil, fmt.Errorf("ble: scan: %w", err)
	}

	results := make([]ScanResult, 0, len(seen))
	for _, r := range seen {
		results = append(results, r)
	}
	log.Debug("scan finished", zap.Int("devices", len(results)))
	return results, nil
}

// matchesPrefix reports whether an advertised name identifies a compatible
// ring.
func matchesPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// Connect scans for the first device whose advertised name matches one of
// prefixes, connects, and resolves the command and big-data channels. A
// non-empty address pins the connection to that device and skips name
// matching entirely.
func Connect(prefixes []string, address string, window time.Duration, log *zap.Logger) (*Device, error) {
	if len(prefixes) == 0 {
		prefixes = DefaultNamePrefixes
	}

	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("ble: enable adapter: %w", err)
	}

	var (
		found  bool
		target bluetooth.ScanResult
	)
	stop := time.AfterFunc(window, func() { adapter.StopScan() })
	defer stop.Stop()

	err := adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
		name := result.LocalName()
		log.Debug("advertisement", zap.String("name", name), zap.String("address", result.Address.String()))
		matched := false
		if address != "" {
			matched = strings.EqualFold(result.Address.String(), address)
		} else {
			matched = name != "" && matchesPrefix(name, prefixes)
		}
		if matched {
			target = result
			found = true
			adapter.StopScan()
		}
	})
	if err != nil {
		return nil, fmt.Errorf("ble: scan: %w", err)
	}
	if !found {
		if address != "" {
			return nil, fmt.Errorf("ble: device %s not found within %s", address, window)
		}
		return nil, fmt.Errorf("ble: no compatible ring found within %s", window)
	}

	log.Info("connecting", zap.String("name", target.LocalName()), zap.String("address", target.Address.String()))
	dev, err := adapter.Connect(target.Address, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, fmt.Errorf("ble: connect to %s: %w", target.Address.String(), err)
	}

	device := &Device{
		Name:    target.LocalName(),
		Address: target.Address.String(),
		dev:     dev,
		log:     log,
	}
	if err := device.resolveChannels(); err != nil {
		dev.Disconnect()
		return nil, err
	}
	return device, nil
}

// resolveChannels discovers the two protocol services and wires a transport
// over each write/notify pair.
func (d *Device) resolveChannels() error {
	services, err := d.dev.DiscoverServices(nil)
	if err != nil {
		return fmt.Errorf("ble: discover services: %w", err)
	}

	for i := range services {
		uuid := services[i].UUID().String()
		switch {
		case strings.EqualFold(uuid, CommandServiceUUID):
			write, notify, err := findPair(&services[i], CommandWriteUUID, CommandNotifyUUID)
			if err != nil {
				return fmt.Errorf("ble: command service: %w", err)
			}
			d.Command = newCharacteristicTransport(write, notify, d.log.Named("cmd"))
		case strings.EqualFold(uuid, BigDataServiceUUID):
			write, notify, err := findPair(&services[i], BigDataWriteUUID, BigDataNotifyUUID)
			if err != nil {
				return fmt.Errorf("ble: big data service: %w", err)
			}
			d.BigData = newCharacteristicTransport(write, notify, d.log.Named("bigdata"))
		}
	}

	if d.Command == nil {
		return fmt.Errorf("ble: command service %s not found", CommandServiceUUID)
	}
	if d.BigData == nil {
		return fmt.Errorf("ble: big data service %s not found", BigDataServiceUUID)
	}
	return nil
}

// findPair locates the write and notify characteristics of a service.
func findPair(svc *bluetooth.DeviceService, writeUUID, notifyUUID string) (write, notify *bluetooth.DeviceCharacteristic, err error) {
	chars, err := svc.DiscoverCharacteristics(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("discover characteristics: %w", err)
	}
	for i := range chars {
		uuid := chars[i].UUID().String()
		if strings.EqualFold(uuid, writeUUID) {
			write = &chars[i]
		}
		if strings.EqualFold(uuid, notifyUUID) {
			notify = &chars[i]
		}
	}
	if write == nil {
		return nil, nil, fmt.Errorf("write characteristic %s not found", writeUUID)
	}
	if notify == nil {
		return nil, nil, fmt.Errorf("notify characteristic %s not found", notifyUUID)
	}
	return write, notify, nil
}
