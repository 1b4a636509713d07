// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/tofscope/pkg/telemetry"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Event log entry
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// commandSender writes a terminated command to the board
type commandSender interface {
	send(cmd []byte) error
}

// TUI model
type monitorModel struct {
	sender   commandSender
	connInfo string
	session  *telemetry.Session

	eventLog      []eventLogEntry
	maxLogEntries int

	input     textinput.Model
	inputMode bool

	width          int
	height         int
	quitting       bool
	connectionLost bool
}

// Messages
type monitorTickMsg time.Time

type monitorDataMsg struct {
	data []byte
}

type connectionLostMsg struct{}

type reconnectedMsg struct {
	connInfo string
}

// hue span of the distance heat map, red (near) through violet (far)
const heatMapHueSpan = 0.875

func initialMonitorModel(sender commandSender, connInfo string, session *telemetry.Session) monitorModel {
	ti := textinput.New()
	ti.Placeholder = "console command"
	ti.Prompt = "uart> "
	ti.CharLimit = 120
	ti.Width = 40

	return monitorModel{
		sender:        sender,
		connInfo:      connInfo,
		session:       session,
		eventLog:      make([]eventLogEntry, 0),
		maxLogEntries: 50,
		input:         ti,
		width:         100,
		height:        40,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return monitorTickCmd()
}

func monitorTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return monitorTickMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case monitorTickMsg:
		m.session.Stats().CalculateRates()
		return m, monitorTickCmd()

	case monitorDataMsg:
		for _, ev := range m.session.Feed(msg.data) {
			if ev.Kind == telemetry.EventDropped {
				m.addLogEntry(dropMessage(ev), true)
			}
		}

	case connectionLostMsg:
		m.connectionLost = true
		m.addLogEntry("Connection lost - reconnecting...", true)

	case reconnectedMsg:
		m.connectionLost = false
		m.connInfo = msg.connInfo
		m.session.Reset()
		m.addLogEntry("Reconnected", false)
	}

	return m, nil
}

func (m monitorModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.inputMode {
		switch msg.String() {
		case "esc":
			m.inputMode = false
			m.input.Blur()
			m.input.Reset()
			return m, nil
		case "enter":
			text := m.input.Value()
			m.inputMode = false
			m.input.Blur()
			m.input.Reset()
			cmd, err := telemetry.Command(text)
			if err != nil {
				m.addLogEntry(fmt.Sprintf("Invalid command: %v", err), true)
				return m, nil
			}
			m.sendCommand(cmd)
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "s":
		m.sendCommand(telemetry.SetSerializeCommand(true))
	case "t":
		m.sendCommand(telemetry.StartToFCommand())
	case "c":
		m.session.Console().Clear()
	case "/", ":":
		m.inputMode = true
		return m, m.input.Focus()
	}
	return m, nil
}

func (m *monitorModel) sendCommand(cmd []byte) {
	text := strings.TrimSuffix(string(cmd), "\n")
	if m.connectionLost {
		m.addLogEntry("Cannot send command: connection lost", true)
		return
	}
	if err := m.sender.send(cmd); err != nil {
		m.addLogEntry(fmt.Sprintf("Send %q failed: %v", text, err), true)
		return
	}
	m.addLogEntry(fmt.Sprintf("Sent: %s", text), false)
}

func (m *monitorModel) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})

	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

// dropMessage describes a dropped line or frame for the event log
func dropMessage(ev telemetry.Event) string {
	if ev.Frame.Size() > 0 {
		return fmt.Sprintf("Dropped %s frame: %v", telemetry.FormatFrameType(ev.Frame.Type()), ev.Err)
	}
	return fmt.Sprintf("Dropped line: %v", ev.Err)
}

// distanceColor maps a normalized distance to the heat map color
func distanceColor(normalized float64) colorful.Color {
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}
	return colorful.Hsv(normalized*heatMapHueSpan*360, 0.85, 0.9)
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	snap := m.session.Snapshot()
	stats := m.session.Stats()

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("TOFSCOPE - SENSOR MONITOR"))
	s.WriteString("\n")
	status := valueStyle.Render("connected")
	if m.connectionLost {
		status = errorStyle.Render("reconnecting")
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | ", m.connInfo)))
	s.WriteString(status)
	s.WriteString(headerStyle.Render(" | s: serialize  t: start ToF  /: command  c: clear  q: quit"))
	s.WriteString("\n\n")

	// ToF grid
	var grid strings.Builder
	grid.WriteString(labelStyle.Render("ToF distance (mm) / confidence"))
	grid.WriteString("\n")
	for row := 0; row < telemetry.ToFGridSide; row++ {
		for col := 0; col < telemetry.ToFGridSide; col++ {
			cellStyle := lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color(distanceColor(snap.NormalizedDistance(row, col)).Hex()))
			grid.WriteString(cellStyle.Render(fmt.Sprintf("%5d", snap.Distance(row, col))))
			grid.WriteString(headerStyle.Render(fmt.Sprintf("/%-3d", snap.Confidence(row, col))))
		}
		grid.WriteString("\n")
	}
	grid.WriteString(fmt.Sprintf("%s %s", labelStyle.Render("Max:"), valueStyle.Render(fmt.Sprintf("%d mm", snap.ToFMaxDistance))))
	if !snap.LastToF.IsZero() {
		grid.WriteString(headerStyle.Render(fmt.Sprintf("  (%s ago)", time.Since(snap.LastToF).Truncate(time.Millisecond))))
	}

	// IMU panel
	var imu strings.Builder
	imu.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Timestamp:"), valueStyle.Render(fmt.Sprintf("%d", snap.IMUTimestamp))))
	imu.WriteString(labelStyle.Render("Accel (g)"))
	imu.WriteString("\n")
	imu.WriteString(valueStyle.Render(fmt.Sprintf("  X %9.3f\n  Y %9.3f\n  Z %9.3f", snap.Accel.X(), snap.Accel.Y(), snap.Accel.Z())))
	imu.WriteString("\n")
	imu.WriteString(labelStyle.Render("Gyro (dps)"))
	imu.WriteString("\n")
	imu.WriteString(valueStyle.Render(fmt.Sprintf("  X %9.1f\n  Y %9.1f\n  Z %9.1f", snap.Gyro.X(), snap.Gyro.Y(), snap.Gyro.Z())))

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxStyle.Render(grid.String()), boxStyle.Render(imu.String())))
	s.WriteString("\n")

	// Statistics
	errorRate := valueStyle.Render(fmt.Sprintf("%.1f err/s", stats.ErrorRate))
	if stats.ErrorRate > 0 {
		errorRate = errorStyle.Render(fmt.Sprintf("%.1f err/s", stats.ErrorRate))
	}
	statsLine := fmt.Sprintf("%s %s   %s %s   %s %s   %s %s   %s %s",
		labelStyle.Render("Lines:"), valueStyle.Render(fmt.Sprintf("%d", stats.Lines)),
		labelStyle.Render("Frames:"), valueStyle.Render(fmt.Sprintf("%d", stats.DecodedFrames)),
		labelStyle.Render("Dropped:"), warningStyle.Render(fmt.Sprintf("%d", stats.Errors())),
		labelStyle.Render("Rate:"), valueStyle.Render(fmt.Sprintf("%.1f frames/s", stats.FrameRate)),
		labelStyle.Render("Errors:"), errorRate,
	)
	s.WriteString(boxStyle.Render(statsLine))
	s.WriteString("\n")

	// Console log
	logHeight := m.height - 28
	if logHeight < 5 {
		logHeight = 5
	}
	var console strings.Builder
	console.WriteString(labelStyle.Render("Console"))
	console.WriteString("\n")
	lines := m.session.Console().Last(logHeight)
	if len(lines) == 0 {
		console.WriteString(headerStyle.Render("(no output yet)"))
	} else {
		console.WriteString(strings.Join(lines, "\n"))
	}
	if m.inputMode {
		console.WriteString("\n")
		console.WriteString(m.input.View())
	}
	s.WriteString(boxStyle.Width(max(m.width-4, 20)).Render(console.String()))
	s.WriteString("\n")

	// Event log
	var events strings.Builder
	start := len(m.eventLog) - 5
	if start < 0 {
		start = 0
	}
	if len(m.eventLog) == 0 {
		events.WriteString(headerStyle.Render("(no events yet)"))
	}
	for i, entry := range m.eventLog[start:] {
		if i > 0 {
			events.WriteString("\n")
		}
		timestamp := headerStyle.Render(entry.timestamp.Format("15:04:05.000"))
		if entry.isError {
			events.WriteString(fmt.Sprintf("%s %s", timestamp, errorStyle.Render("✗ "+entry.message)))
		} else {
			events.WriteString(fmt.Sprintf("%s %s", timestamp, warningStyle.Render("ℹ "+entry.message)))
		}
	}
	s.WriteString(boxStyle.Width(max(m.width-4, 20)).Render(events.String()))

	return s.String()
}
