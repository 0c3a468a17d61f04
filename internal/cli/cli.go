// Package cli defines the r02ctl command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ryan-huang1/r02ctl/internal/ble"
	"github.com/ryan-huang1/r02ctl/internal/config"
	"github.com/ryan-huang1/r02ctl/internal/report"
	"github.com/ryan-huang1/r02ctl/internal/ring"
	"github.com/ryan-huang1/r02ctl/internal/tui"
)

// CLI is the root command structure for r02ctl.
type CLI struct {
	Verbose bool          `short:"v" help:"Enable verbose debug output"`
	Config  string        `short:"c" type:"path" help:"Config file path"`
	Prefix  []string      `help:"Advertised name prefix to match (repeatable, overrides config)"`
	Address string        `help:"Connect to this device address, skipping name matching"`
	Window  time.Duration `help:"Scan window override"`

	Scan     ScanCmd     `cmd:"" help:"List nearby BLE devices and flag compatible rings"`
	Info     InfoCmd     `cmd:"" help:"Show device information (firmware, hardware, serial)"`
	Battery  BatteryCmd  `cmd:"" help:"Show battery level and charging state"`
	SetTime  SetTimeCmd  `cmd:"" name:"set-time" help:"Set the ring's clock"`
	Sleep    SleepCmd    `cmd:"" help:"Fetch and decode last night's sleep log"`
	Settings SettingsCmd `cmd:"" help:"Sensor logging settings"`
	Hr       HrCmd       `cmd:"" help:"Live heart rate monitor"`
	Spo2     Spo2Cmd     `cmd:"" help:"Live blood oxygen monitor"`
	Explore  ExploreCmd  `cmd:"" help:"List all BLE services and characteristics"`
}

// setup loads configuration, applies flag overrides and builds the logger.
func (g *CLI) setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, nil, err
	}
	if len(g.Prefix) > 0 {
		cfg.Device.Prefixes = g.Prefix
	}
	if g.Address != "" {
		cfg.Device.Address = g.Address
	}
	if g.Window > 0 {
		cfg.Device.ScanWindow = g.Window
	}
	return cfg, config.NewLogger(cfg.Logging, g.Verbose), nil
}

// connect resolves config and establishes the ring connection. Callers own
// the returned device and must Disconnect.
func (g *CLI) connect() (*ble.Device, *config.Config, *zap.Logger, error) {
	cfg, log, err := g.setup()
	if err != nil {
		return nil, nil, nil, err
	}
	device, err := ble.Connect(cfg.Device.Prefixes, cfg.Device.Address, cfg.Device.ScanWindow, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return device, cfg, log, nil
}

// --- Scan ---

type ScanCmd struct{}

func (c *ScanCmd) Run(globals *CLI) error {
	cfg, log, err := globals.setup()
	if err != nil {
		return err
	}
	fmt.Printf("Scanning for %s...\n", cfg.Device.ScanWindow)
	results, err := ble.Scan(cfg.Device.ScanWindow, log)
	if err != nil {
		return err
	}
	fmt.Print(report.NewRenderer().ScanResults(results))
	return nil
}

// --- Info ---

type InfoCmd struct{}

func (c *InfoCmd) Run(globals *CLI) error {
	device, _, _, err := globals.connect()
	if err != nil {
		return err
	}
	defer device.Disconnect()

	info, err := device.ReadDeviceInfo()
	if err != nil {
		return err
	}
	fmt.Print(report.NewRenderer().DeviceInfo(device.Name, device.Address, info))
	return nil
}

// --- Battery ---

type BatteryCmd struct{}

func (c *BatteryCmd) Run(globals *CLI) error {
	device, cfg, log, err := globals.connect()
	if err != nil {
		return err
	}
	defer device.Disconnect()

	ch := ring.NewCommandChannel(device.Command, log)
	info, err := ring.QueryBattery(context.Background(), ch, cfg.Timeouts.Exchange)
	if err != nil {
		return err
	}
	fmt.Print(report.NewRenderer().Battery(&info))
	return nil
}

// --- Set time ---

type SetTimeCmd struct {
	Time string `help:"Time to set in RFC 3339 format (default: now)"`
}

func (c *SetTimeCmd) Run(globals *CLI) error {
	t := time.Now()
	if c.Time != "" {
		var err error
		t, err = time.Parse(time.RFC3339, c.Time)
		if err != nil {
			return fmt.Errorf("parse --time: %w", err)
		}
	}

	device, _, log, err := globals.connect()
	if err != nil {
		return err
	}
	defer device.Disconnect()

	ch := ring.NewCommandChannel(device.Command, log)
	if err := ring.SetTime(ch, t); err != nil {
		return err
	}
	fmt.Printf("Clock set to %s\n", t.Format(time.RFC3339))
	return nil
}

// --- Sleep ---

type SleepCmd struct {
	AssumeStart string `help:"Fallback session start (RFC 3339) when the log carries no timestamp"`
	Partial     bool   `help:"Report whatever arrived if the transfer times out"`
}

func (c *SleepCmd) Run(globals *CLI) error {
	var fallback time.Time
	if c.AssumeStart != "" {
		var err error
		fallback, err = time.Parse(time.RFC3339, c.AssumeStart)
		if err != nil {
			return fmt.Errorf("parse --assume-start: %w", err)
		}
	}

	device, cfg, log, err := globals.connect()
	if err != nil {
		return err
	}
	defer device.Disconnect()

	var opts []ring.BigDataOption
	if c.Partial {
		opts = append(opts, ring.WithPartialResults())
	}

	day, err := ring.FetchSleepDay(context.Background(), device.BigData, log, cfg.Timeouts.Bulk, fallback, opts...)
	if errors.Is(err, ring.ErrMissingTimestampMarker) {
		return fmt.Errorf("%w (rerun with --assume-start)", err)
	}
	if err != nil {
		return err
	}
	fmt.Print(report.NewRenderer().Sleep(day))
	return nil
}

// --- Settings ---

type SettingsCmd struct {
	Show SettingsShowCmd `cmd:"" default:"withargs" help:"Show every sensor's logging configuration"`
	Set  SettingsSetCmd  `cmd:"" help:"Change one sensor's logging configuration"`
}

type SettingsShowCmd struct{}

func (c *SettingsShowCmd) Run(globals *CLI) error {
	device, cfg, log, err := globals.connect()
	if err != nil {
		return err
	}
	defer device.Disconnect()

	ch := ring.NewCommandChannel(device.Command, log)
	settings, err := ring.QueryAllSettings(context.Background(), ch, cfg.Timeouts.Exchange)
	if err != nil {
		return err
	}
	fmt.Print(report.NewRenderer().Settings(settings))
	return nil
}

type SettingsSetCmd struct {
	Sensor   string `arg:"" help:"Sensor to configure: hr, spo2, pressure, hrv"`
	Enable   bool   `xor:"state" help:"Enable periodic logging"`
	Disable  bool   `xor:"state" help:"Disable periodic logging"`
	Interval int    `help:"Logging interval in minutes (heart rate only)"`
}

func (c *SettingsSetCmd) Run(globals *CLI) error {
	sensor, err := parseSensor(c.Sensor)
	if err != nil {
		return err
	}
	if !c.Enable && !c.Disable {
		return errors.New("one of --enable or --disable is required")
	}
	if c.Interval != 0 && sensor != ring.SensorHeartRateLog {
		return fmt.Errorf("--interval only applies to the heart rate log")
	}

	device, cfg, log, err := globals.connect()
	if err != nil {
		return err
	}
	defer device.Disconnect()

	ch := ring.NewCommandChannel(device.Command, log)
	got, err := ring.SetSensorSetting(context.Background(), ch, sensor,
		ring.SensorSetting{Enabled: c.Enable, Interval: c.Interval}, cfg.Timeouts.Exchange)
	if err != nil {
		return err
	}
	fmt.Print(report.NewRenderer().Settings(map[ring.Sensor]ring.SensorSetting{sensor: got}))
	return nil
}

func parseSensor(name string) (ring.Sensor, error) {
	switch strings.ToLower(name) {
	case "hr", "heart-rate", "heartrate":
		return ring.SensorHeartRateLog, nil
	case "spo2", "oxygen":
		return ring.SensorBloodOxygen, nil
	case "pressure", "stress":
		return ring.SensorPressure, nil
	case "hrv":
		return ring.SensorHRV, nil
	default:
		return 0, fmt.Errorf("unknown sensor %q (expected hr, spo2, pressure or hrv)", name)
	}
}

// --- Live monitors ---

type HrCmd struct{}

func (c *HrCmd) Run(globals *CLI) error {
	return runMonitor(globals, ring.RealtimeHeartRate)
}

type Spo2Cmd struct{}

func (c *Spo2Cmd) Run(globals *CLI) error {
	return runMonitor(globals, ring.RealtimeSpO2)
}

func runMonitor(globals *CLI, kind ring.RealtimeKind) error {
	device, _, log, err := globals.connect()
	if err != nil {
		return err
	}
	defer device.Disconnect()

	stream, err := ring.StartRealtime(device.Command, kind, log)
	if err != nil {
		return err
	}
	defer stream.Stop()

	return tui.Run(kind, stream.Readings())
}

// --- Explore ---

type ExploreCmd struct{}

func (c *ExploreCmd) Run(globals *CLI) error {
	device, _, _, err := globals.connect()
	if err != nil {
		return err
	}
	defer device.Disconnect()

	out, err := device.Explore()
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
