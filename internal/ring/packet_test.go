package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPacketBattery(t *testing.T) {
	// CMD=3 with no payload: padding zeros and checksum byte 3.
	packet, err := BuildPacket(CmdBattery, nil)
	require.NoError(t, err)
	require.Len(t, packet, PacketSize)
	assert.Equal(t, byte(3), packet[0])
	for i := 1; i < 15; i++ {
		assert.Zero(t, packet[i], "byte %d", i)
	}
	assert.Equal(t, byte(3), packet[15])
}

func TestBuildParseRoundTrip(t *testing.T) {
	for size := 0; size <= MaxPayload; size++ {
		payload := make([]byte, size)
		for i := range payload {
			payload[i] = byte(i + 1)
		}
		packet, err := BuildPacket(0x42, payload)
		require.NoError(t, err, "payload size %d", size)

		cmd, got, err := ParsePacket(packet)
		require.NoError(t, err)
		assert.Equal(t, byte(0x42), cmd)
		assert.Equal(t, payload, got[:size], "payload size %d", size)
	}
}

func TestBuildPacketChecksum(t *testing.T) {
	packet, err := BuildPacket(0x10, []byte{0xFF, 0xFF, 0x02})
	require.NoError(t, err)

	var sum int
	for _, b := range packet[:15] {
		sum += int(b)
	}
	assert.Equal(t, byte(sum&0xFF), packet[15])
	assert.Equal(t, Checksum(packet[:15]), packet[15])
}

func TestBuildPacketPayloadTooLarge(t *testing.T) {
	_, err := BuildPacket(0x01, make([]byte, MaxPayload+1))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestParsePacketInvalidLength(t *testing.T) {
	for _, size := range []int{0, 1, 15, 17, 20} {
		_, _, err := ParsePacket(make([]byte, size))
		assert.ErrorIs(t, err, ErrInvalidLength, "size %d", size)
	}
}

func TestChecksumWraps(t *testing.T) {
	assert.Equal(t, byte(0xFE), Checksum([]byte{0xFF, 0xFF}))
	assert.Equal(t, byte(0x00), Checksum([]byte{0x80, 0x80}))
}
