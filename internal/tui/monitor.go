// Package tui is the live measurement monitor: a full-screen view of a
// realtime heart-rate or SpO2 stream with running statistics.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ryan-huang1/r02ctl/internal/ring"
)

// historySize is how many recent readings the sparkline keeps.
const historySize = 40

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// readingMsg delivers one live measurement from the stream.
type readingMsg ring.Reading

// streamClosedMsg signals the readings channel was closed underneath us.
type streamClosedMsg struct{}

// Monitor is the bubbletea model for a live measurement session.
type Monitor struct {
	kind     ring.RealtimeKind
	readings <-chan ring.Reading

	latest  int
	min     int
	max     int
	sum     int
	count   int
	history []int

	closed bool
	width  int

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	styles  Styles
}

// NewMonitor builds the monitor for an already-started stream. The caller
// owns the stream and stops it after the program exits.
func NewMonitor(kind ring.RealtimeKind, readings <-chan ring.Reading) Monitor {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	return Monitor{
		kind:     kind,
		readings: readings,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		spinner:  s,
		styles:   DefaultStyles(),
	}
}

// waitForReading blocks on the stream and turns the next value into a message.
func (m Monitor) waitForReading() tea.Cmd {
	return func() tea.Msg {
		reading, ok := <-m.readings
		if !ok {
			return streamClosedMsg{}
		}
		return readingMsg(reading)
	}
}

// Init starts the spinner and the reading pump.
func (m Monitor) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForReading())
}

// Update handles messages and updates the model.
func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Reset):
			m.latest, m.min, m.max, m.sum, m.count = 0, 0, 0, 0, 0
			m.history = nil
			return m, nil
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case readingMsg:
		m.latest = msg.Value
		if m.count == 0 || msg.Value < m.min {
			m.min = msg.Value
		}
		if msg.Value > m.max {
			m.max = msg.Value
		}
		m.sum += msg.Value
		m.count++
		m.history = append(m.history, msg.Value)
		if len(m.history) > historySize {
			m.history = m.history[len(m.history)-historySize:]
		}
		return m, m.waitForReading()

	case streamClosedMsg:
		m.closed = true
		return m, tea.Quit
	}
	return m, nil
}

// View renders the model.
func (m Monitor) View() string {
	if m.closed {
		return ""
	}

	var b strings.Builder

	title := "Heart Rate"
	unit := "bpm"
	if m.kind == ring.RealtimeSpO2 {
		title = "SpO2"
		unit = "%"
	}
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n\n")

	if m.count == 0 {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(m.styles.Muted.Render("Waiting for the sensor to settle..."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.styles.Reading.Render(fmt.Sprintf("%d %s", m.latest, unit)))
		b.WriteString("\n\n")
		b.WriteString(m.renderField("Min", fmt.Sprintf("%d", m.min)))
		b.WriteString(m.renderField("Max", fmt.Sprintf("%d", m.max)))
		b.WriteString(m.renderField("Avg", fmt.Sprintf("%.1f", float64(m.sum)/float64(m.count))))
		b.WriteString(m.renderField("Samples", fmt.Sprintf("%d", m.count)))
		b.WriteString("\n")
		b.WriteString(m.styles.Value.Render(sparkline(m.history)))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render(m.help.View(m.keys)))
	return m.styles.App.Render(b.String())
}

func (m Monitor) renderField(label, value string) string {
	return m.styles.Label.Render(label) + " " + m.styles.Value.Render(value) + "\n"
}

// sparkline renders values as a row of block characters scaled to the
// min/max of the window.
func sparkline(values []int) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	var b strings.Builder
	for _, v := range values {
		idx := 0
		if hi > lo {
			idx = (v - lo) * (len(sparkRunes) - 1) / (hi - lo)
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

// Run starts the stream monitor and blocks until the user quits.
func Run(kind ring.RealtimeKind, readings <-chan ring.Reading) error {
	_, err := tea.NewProgram(NewMonitor(kind, readings), tea.WithAltScreen()).Run()
	return err
}
