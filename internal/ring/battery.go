package ring

import (
	"context"
	"fmt"
	"time"
)

// BatteryInfo is the ring's charge state.
type BatteryInfo struct {
	Level    int // percent
	Charging bool
}

// QueryBattery reads the battery level and charging flag.
func QueryBattery(ctx context.Context, ch *CommandChannel, timeout time.Duration) (BatteryInfo, error) {
	frame, err := ch.Exchange(ctx, CmdBattery, nil, timeout)
	if err != nil {
		return BatteryInfo{}, fmt.Errorf("query battery: %w", err)
	}
	_, payload, err := ParsePacket(frame)
	if err != nil {
		return BatteryInfo{}, fmt.Errorf("query battery: %w", err)
	}
	return BatteryInfo{
		Level:    int(payload[0]),
		Charging: payload[1] != 0,
	}, nil
}

// SetTime pushes t to the ring's clock in the packed BCD format. The
// firmware sends no acknowledgement for set-time.
func SetTime(ch *CommandChannel, t time.Time) error {
	payload := EncodeBCDTime(t)
	if err := ch.Write(CmdSetTime, payload[:]); err != nil {
		return fmt.Errorf("set time: %w", err)
	}
	return nil
}
