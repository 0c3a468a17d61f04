package ring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryBattery(t *testing.T) {
	transport := &fakeTransport{}
	transport.onWrite = func(data []byte) {
		assert.Equal(t, byte(CmdBattery), data[0])
		transport.notify(respond(CmdBattery, 85, 1))
	}
	ch := NewCommandChannel(transport, nil)

	info, err := QueryBattery(context.Background(), ch, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 85, info.Level)
	assert.True(t, info.Charging)
}

func TestQueryBatteryNotCharging(t *testing.T) {
	transport := &fakeTransport{}
	transport.onWrite = func([]byte) {
		transport.notify(respond(CmdBattery, 12, 0))
	}
	ch := NewCommandChannel(transport, nil)

	info, err := QueryBattery(context.Background(), ch, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 12, info.Level)
	assert.False(t, info.Charging)
}

func TestSetTimePacket(t *testing.T) {
	transport := &fakeTransport{}
	ch := NewCommandChannel(transport, nil)

	ts := time.Date(2024, time.December, 31, 23, 59, 58, 0, time.UTC)
	require.NoError(t, SetTime(ch, ts))

	packet := transport.lastWrite()
	require.Len(t, packet, PacketSize)
	assert.Equal(t, byte(CmdSetTime), packet[0])
	assert.Equal(t, []byte{0x24, 0x12, 0x31, 0x23, 0x59, 0x58, 0x01}, packet[1:8])
	assert.Equal(t, Checksum(packet[:15]), packet[15])
}
