// Package ring implements the binary protocol spoken by R02-family smart
// rings over BLE: fixed 16-byte command packets on the UART-style service,
// and the streaming "big data" sub-protocol used for historical logs.
//
// The package is transport-agnostic. It talks to the device through the
// Transport interface; the tinygo bluetooth adapter lives in internal/ble.
package ring

// Command IDs for the fixed 16-byte packet protocol.
const (
	CmdSetTime        = 1   // 0x01
	CmdBattery        = 3   // 0x03
	CmdHeartRateLog   = 22  // 0x16
	CmdRealtimeKeep   = 30  // 0x1E
	CmdBloodOxygen    = 44  // 0x2C
	CmdPressure       = 54  // 0x36
	CmdHRV            = 56  // 0x38
	CmdRealtimeStart  = 105 // 0x69
	CmdRealtimeStop   = 106 // 0x6A
)

// PacketSize is the fixed length of every command and response packet.
const PacketSize = 16

// MaxPayload is the number of payload bytes a packet can carry between the
// command byte and the checksum byte.
const MaxPayload = PacketSize - 2

// Checksum returns the packet checksum: the sum of b modulo 256.
func Checksum(b []byte) byte {
	var sum int
	for _, v := range b {
		sum += int(v)
	}
	return byte(sum & 0xFF)
}

// BuildPacket assembles a 16-byte command packet: command at offset 0,
// payload at offsets 1..len(payload), zero fill, and the checksum over the
// first 15 bytes in the final byte. The checksum is always recomputed here;
// callers never supply one.
func BuildPacket(cmd byte, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, ErrPayloadTooLarge
	}
	packet := make([]byte, PacketSize)
	packet[0] = cmd
	copy(packet[1:], payload)
	packet[PacketSize-1] = Checksum(packet[:PacketSize-1])
	return packet, nil
}

// ParsePacket splits a 16-byte response into command and payload. Observed
// firmware responses are trusted verbatim, so the checksum is not re-verified
// here; callers that want integrity can recompute with Checksum and compare
// against frame[15].
func ParsePacket(frame []byte) (cmd byte, payload []byte, err error) {
	if len(frame) != PacketSize {
		return 0, nil, ErrInvalidLength
	}
	return frame[0], frame[1 : PacketSize-1], nil
}
