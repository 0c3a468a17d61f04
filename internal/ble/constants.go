package ble

// UART-style command service: 16-byte packets in via RX, notifications out
// via TX.
const (
	CommandServiceUUID = "6E40FFF0-B5A3-F393-E0A9-E50E24DCCA9E"

	// CommandWriteUUID is the RX characteristic commands are written to.
	CommandWriteUUID = "6E400002-B5A3-F393-E0A9-E50E24DCCA9E"

	// CommandNotifyUUID is the TX characteristic responses arrive on.
	CommandNotifyUUID = "6E400003-B5A3-F393-E0A9-E50E24DCCA9E"
)

// Big data service: the streaming sub-protocol for historical logs, on its
// own write/notify pair.
const (
	BigDataServiceUUID = "DE5BF728-D711-4E47-AF26-65E3012A5DC7"
	BigDataWriteUUID   = "DE5BF72A-D711-4E47-AF26-65E3012A5DC7"
	BigDataNotifyUUID  = "DE5BF729-D711-4E47-AF26-65E3012A5DC7"
)

// Standard Device Information service for firmware/hardware strings.
const (
	DeviceInfoServiceUUID = "0000180A-0000-1000-8000-00805F9B34FB"

	ManufacturerUUID     = "00002A29-0000-1000-8000-00805F9B34FB"
	ModelNumberUUID      = "00002A24-0000-1000-8000-00805F9B34FB"
	HardwareRevisionUUID = "00002A27-0000-1000-8000-00805F9B34FB"
	FirmwareRevisionUUID = "00002A26-0000-1000-8000-00805F9B34FB"
	SerialNumberUUID     = "00002A25-0000-1000-8000-00805F9B34FB"
)

// DefaultNamePrefixes are the advertised-name prefixes of known compatible
// rings. R02 clones ship under many brands with the same firmware.
var DefaultNamePrefixes = []string{
	"R01", "R02", "R03", "R04", "R05", "R06", "R07", "R10",
	"VK-5098", "MERLIN", "Hello Ring", "RING1", "boAtring", "TR-R02",
	"SE", "EVOLVEO", "GL-SR2", "Blaupunkt", "KSIX RING",
}
