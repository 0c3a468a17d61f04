package ble

import (
	"fmt"
	"strings"
)

// DeviceInfo holds the pass-through strings from the standard Device
// Information service.
type DeviceInfo struct {
	Manufacturer     string
	Model            string
	HardwareRevision string
	FirmwareRevision string
	SerialNumber     string
	BuildDate        string // parsed out of RY02_* firmware strings when present
}

// ReadDeviceInfo reads the Device Information service characteristics.
// Individual characteristics the firmware does not expose are left empty
// rather than failing the whole read.
func (d *Device) ReadDeviceInfo() (*DeviceInfo, error) {
	services, err := d.dev.DiscoverServices(nil)
	if err != nil {
		return nil, fmt.Errorf("ble: discover services: %w", err)
	}

	var chars map[string]string
	for i := range services {
		if !strings.EqualFold(services[i].UUID().String(), DeviceInfoServiceUUID) {
			continue
		}
		discovered, err := services[i].DiscoverCharacteristics(nil)
		if err != nil {
			return nil, fmt.Errorf("ble: discover device info characteristics: %w", err)
		}
		chars = make(map[string]string, len(discovered))
		buf := make([]byte, 64)
		for j := range discovered {
			n, err := discovered[j].Read(buf)
			if err != nil || n == 0 {
				continue
			}
			chars[strings.ToLower(discovered[j].UUID().String())] = strings.TrimSpace(string(buf[:n]))
		}
		break
	}
	if chars == nil {
		return nil, fmt.Errorf("ble: device information service %s not found", DeviceInfoServiceUUID)
	}

	info := &DeviceInfo{
		Manufacturer:     chars[strings.ToLower(ManufacturerUUID)],
		Model:            chars[strings.ToLower(ModelNumberUUID)],
		HardwareRevision: chars[strings.ToLower(HardwareRevisionUUID)],
		FirmwareRevision: chars[strings.ToLower(FirmwareRevisionUUID)],
		SerialNumber:     chars[strings.ToLower(SerialNumberUUID)],
	}
	info.BuildDate = parseBuildDate(info.FirmwareRevision)
	return info, nil
}

// parseBuildDate extracts a build date from firmware strings of the form
// RY02_3.00.17_241019, where the trailing field is YYMMDD.
func parseBuildDate(firmware string) string {
	parts := strings.Split(firmware, "_")
	if len(parts) < 3 {
		return ""
	}
	date := parts[len(parts)-1]
	if len(date) != 6 {
		return ""
	}
	for _, r := range date {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return fmt.Sprintf("20%s-%s-%s", date[0:2], date[2:4], date[4:6])
}
