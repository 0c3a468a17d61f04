package ring

import (
	"context"
	"fmt"
	"time"
)

// Sensor identifies one of the ring's periodic logging sensors.
type Sensor byte

const (
	SensorHeartRateLog Sensor = CmdHeartRateLog
	SensorBloodOxygen  Sensor = CmdBloodOxygen
	SensorPressure     Sensor = CmdPressure
	SensorHRV          Sensor = CmdHRV
)

func (s Sensor) String() string {
	switch s {
	case SensorHeartRateLog:
		return "heart rate log"
	case SensorBloodOxygen:
		return "blood oxygen"
	case SensorPressure:
		return "pressure"
	case SensorHRV:
		return "hrv"
	default:
		return fmt.Sprintf("sensor(0x%02x)", byte(s))
	}
}

// Sensors lists every settings-bearing sensor in query order.
var Sensors = []Sensor{SensorHeartRateLog, SensorBloodOxygen, SensorPressure, SensorHRV}

// SensorSetting is the logging configuration of one sensor. Interval is only
// meaningful for the heart rate log and stays 0 elsewhere.
type SensorSetting struct {
	Enabled  bool
	Interval int // minutes
}

// Settings subcommand bytes carried in payload[0].
const (
	settingsQuery = 0x01
	settingsSet   = 0x02
)

// Enable/disable flag values the firmware expects in a set payload.
const (
	settingEnable  = 0x01
	settingDisable = 0x02
)

// QuerySensorSetting asks the ring for one sensor's current configuration.
// Enabled is payload byte 1 of the response (offset 2 of the raw frame);
// the heart rate log additionally reports its interval in the next byte.
func QuerySensorSetting(ctx context.Context, ch *CommandChannel, sensor Sensor, timeout time.Duration) (SensorSetting, error) {
	frame, err := ch.Exchange(ctx, byte(sensor), []byte{settingsQuery}, timeout)
	if err != nil {
		return SensorSetting{}, fmt.Errorf("query %s: %w", sensor, err)
	}
	_, payload, err := ParsePacket(frame)
	if err != nil {
		return SensorSetting{}, fmt.Errorf("query %s: %w", sensor, err)
	}

	setting := SensorSetting{Enabled: payload[1] == settingEnable}
	if sensor == SensorHeartRateLog {
		setting.Interval = int(payload[2])
	}
	return setting, nil
}

// SetSensorSetting writes a sensor's configuration. The heart rate log takes
// an interval in minutes; other sensors ignore it. The protocol has no ack:
// the write is confirmed only by the re-query this function performs, and
// the returned setting is whatever the device reports afterwards.
func SetSensorSetting(ctx context.Context, ch *CommandChannel, sensor Sensor, want SensorSetting, timeout time.Duration) (SensorSetting, error) {
	flag := byte(settingDisable)
	if want.Enabled {
		flag = settingEnable
	}
	payload := []byte{settingsSet, flag}
	if sensor == SensorHeartRateLog {
		payload = append(payload, byte(want.Interval))
	}

	if err := ch.Write(byte(sensor), payload); err != nil {
		return SensorSetting{}, fmt.Errorf("set %s: %w", sensor, err)
	}

	return QuerySensorSetting(ctx, ch, sensor, timeout)
}

// QueryAllSettings queries every sensor in turn over a single channel.
func QueryAllSettings(ctx context.Context, ch *CommandChannel, timeout time.Duration) (map[Sensor]SensorSetting, error) {
	settings := make(map[Sensor]SensorSetting, len(Sensors))
	for _, sensor := range Sensors {
		setting, err := QuerySensorSetting(ctx, ch, sensor, timeout)
		if err != nil {
			return nil, err
		}
		settings[sensor] = setting
	}
	return settings, nil
}
