package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ryan-huang1/r02ctl/internal/ble"
	"github.com/ryan-huang1/r02ctl/internal/ring"
)

// Renderer formats command results with a shared style set.
type Renderer struct {
	styles Styles
}

func NewRenderer() *Renderer {
	return &Renderer{styles: DefaultStyles()}
}

func (r *Renderer) field(label, value string) string {
	return r.styles.Label.Render(label) + " " + r.styles.Value.Render(value) + "\n"
}

// Battery renders a one-line battery report.
func (r *Renderer) Battery(info *ring.BatteryInfo) string {
	icon := "🔋"
	if info.Level <= 20 {
		icon = "🪫"
	}
	line := fmt.Sprintf("%s %d%%", icon, info.Level)
	if info.Charging {
		line += "  " + r.styles.Success.Render("charging")
	}
	return line + "\n"
}

// ScanResults renders the devices seen during a scan, strongest signal first.
func (r *Renderer) ScanResults(results []ble.ScanResult) string {
	if len(results) == 0 {
		return r.styles.Muted.Render("No named devices found.") + "\n"
	}

	sorted := make([]ble.ScanResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RSSI > sorted[j].RSSI })

	var b strings.Builder
	b.WriteString(r.styles.Title.Render("Devices"))
	b.WriteString("\n\n")
	for _, res := range sorted {
		name := res.Name
		if matchesKnownRing(name) {
			name = r.styles.Highlight.Render(name) + " " + r.styles.Success.Render("(ring)")
		}
		fmt.Fprintf(&b, "%-20s  %s  %s\n",
			res.Address,
			r.styles.Muted.Render(fmt.Sprintf("%4d dBm", res.RSSI)),
			name)
	}
	return b.String()
}

func matchesKnownRing(name string) bool {
	for _, p := range ble.DefaultNamePrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// Sleep renders one night's decoded sleep session: the stage timeline plus
// per-stage totals.
func (r *Renderer) Sleep(day *ring.SleepDay) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render("Sleep " + day.Date.Format("2006-01-02")))
	b.WriteString("\n\n")

	b.WriteString(r.field("Asleep", day.SleepStart.Format("15:04")))
	b.WriteString(r.field("Awake", day.SleepEnd.Format("15:04")))
	b.WriteString(r.field("Total", formatMinutes(day.TotalSleepMinutes())))
	b.WriteString("\n")

	b.WriteString(r.styles.Highlight.Render("Stages"))
	b.WriteString("\n")
	b.WriteString(r.field("Deep", formatMinutes(day.DeepSleepMinutes())))
	b.WriteString(r.field("Light", formatMinutes(day.LightSleepMinutes())))
	b.WriteString(r.field("REM", formatMinutes(day.REMSleepMinutes())))
	b.WriteString(r.field("Awake", formatMinutes(day.AwakeMinutes())))
	if unknown := day.UnknownMinutes(); unknown > 0 {
		b.WriteString(r.field("Unknown", formatMinutes(unknown)))
	}
	b.WriteString("\n")

	b.WriteString(r.styles.Highlight.Render("Timeline"))
	b.WriteString("\n")
	for _, p := range day.Periods {
		fmt.Fprintf(&b, "  %s  %-12s %s\n",
			r.styles.Muted.Render(p.Start.Format("15:04")),
			p.Stage,
			formatMinutes(p.Minutes))
	}
	return b.String()
}

// Settings renders the periodic-logging configuration of every sensor.
func (r *Renderer) Settings(settings map[ring.Sensor]ring.SensorSetting) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render("Sensor Settings"))
	b.WriteString("\n\n")
	for _, sensor := range ring.Sensors {
		setting, ok := settings[sensor]
		if !ok {
			continue
		}
		state := r.styles.Muted.Render("disabled")
		if setting.Enabled {
			state = r.styles.Success.Render("enabled")
			if setting.Interval > 0 {
				state += r.styles.Muted.Render(fmt.Sprintf(" every %dm", setting.Interval))
			}
		}
		b.WriteString(r.field(sensor.String(), state))
	}
	return b.String()
}

// DeviceInfo renders the Device Information service strings.
func (r *Renderer) DeviceInfo(name, address string, info *ble.DeviceInfo) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render("Device"))
	b.WriteString("\n\n")
	b.WriteString(r.field("Name", name))
	b.WriteString(r.field("Address", address))
	if info.Manufacturer != "" {
		b.WriteString(r.field("Manufacturer", info.Manufacturer))
	}
	if info.Model != "" {
		b.WriteString(r.field("Model", info.Model))
	}
	if info.HardwareRevision != "" {
		b.WriteString(r.field("Hardware", info.HardwareRevision))
	}
	if info.FirmwareRevision != "" {
		b.WriteString(r.field("Firmware", info.FirmwareRevision))
	}
	if info.BuildDate != "" {
		b.WriteString(r.field("Built", info.BuildDate))
	}
	if info.SerialNumber != "" {
		b.WriteString(r.field("Serial", info.SerialNumber))
	}
	return b.String()
}

// formatMinutes renders a minute count as "7h 32m".
func formatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
