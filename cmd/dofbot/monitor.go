package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/dofbot/pkg/capture"
	"github.com/gwillem/dofbot/pkg/dofbot"
	"github.com/gwillem/dofbot/pkg/logging"
)

type MonitorCommand struct {
	Hz          int  `long:"hz" default:"30" description:"Sampling frequency"`
	Kinesthetic bool `long:"kinesthetic" description:"Release torque so the arm can be moved by hand"`
}

const (
	headerHeight = 2 // title + blank line
	legendHeight = 2 // legend row + blank
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
)

// Joint colors - distinct colors for each joint
var jointColors = map[dofbot.Joint]string{
	dofbot.Base:       "196", // red
	dofbot.Shoulder:   "208", // orange
	dofbot.Elbow:      "226", // yellow
	dofbot.WristPitch: "46",  // green
	dofbot.WristRoll:  "51",  // cyan
	dofbot.Gripper:    "201", // magenta
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type monitorModel struct {
	ctrl          *capture.Controller
	chart         *streamlinechart.Model
	width         int      // terminal width
	height        int      // terminal height
	logs          []string // last N log messages
	quitting      bool
	lastPositions map[string]float64 // track previous positions to detect movement
}

func (m *monitorModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// hasMovement checks if any joint position has changed from the last sample
func (m *monitorModel) hasMovement(positions map[string]float64) bool {
	if m.lastPositions == nil {
		return true // first reading, consider it movement
	}
	for key, pos := range positions {
		if lastPos, ok := m.lastPositions[key]; !ok || pos != lastPos {
			return true
		}
	}
	return false
}

// Messages from the controller
type sampleMsg capture.Sample
type logMsg string

func waitForSample(ctrl *capture.Controller) tea.Cmd {
	return func() tea.Msg {
		return sampleMsg(<-ctrl.Samples())
	}
}

func waitForLog(ctrl *capture.Controller) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-ctrl.Logs())
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *monitorModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 20 // default size before we know terminal size
	}
	width = m.width - borderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - headerHeight - legendHeight - footerHeight - borderSize
	if height < 10 {
		height = 10
	}
	return width, height
}

func (m *monitorModel) resizeChart() {
	w, h := m.chartSize()
	m.chart.Resize(w, h)
}

func initialMonitorModel(ctrl *capture.Controller) monitorModel {
	// The wrist roll joint spans 270 degrees, the rest 180.
	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(0, 270),
	)

	// Set up data set styles for each joint
	for _, j := range dofbot.AllJoints() {
		color := jointColors[j]
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
		chart.SetDataSetStyles(j.Key(), runes.ThinLineStyle, style)
	}

	return monitorModel{
		ctrl:  ctrl,
		chart: &chart,
	}
}

func (m monitorModel) Init() tea.Cmd {
	// Start listening for sample and log updates
	return tea.Batch(
		waitForSample(m.ctrl),
		waitForLog(m.ctrl),
	)
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeChart()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case sampleMsg:
		sample := capture.Sample(msg)
		if sample.Positions != nil {
			// Only update chart if there's movement (freeze when idle)
			if m.hasMovement(sample.Positions) {
				for key, pos := range sample.Positions {
					m.chart.PushDataSet(key, pos)
				}
				m.chart.DrawAll()
				m.lastPositions = sample.Positions
			}
		}
		return m, waitForSample(m.ctrl)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.ctrl)
	}

	return m, nil
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Monitoring stopped.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("Dofbot Monitor"))
	sb.WriteString(fmt.Sprintf(" - %d Hz", m.ctrl.Hz()))
	if m.width > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n\n")

	// Chart
	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	// Legend
	sb.WriteString(renderLegend())
	sb.WriteString("\n")

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(m.width - 4).
		Foreground(lipgloss.Color("9")) // bright red

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render("Press 'q' to quit")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func renderLegend() string {
	var items []string
	for _, j := range dofbot.AllJoints() {
		color := jointColors[j]
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
		item := colorStyle.Render("━━") + " " + j.String()
		items = append(items, item)
	}
	return strings.Join(items, "  ")
}

func (c *MonitorCommand) Execute(args []string) error {
	cfg, err := dofbot.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "No configuration found. Run 'dofbot setup' first.")
		os.Exit(1)
	}

	fmt.Printf("Loaded configuration from %s\n", dofbot.DefaultConfigFile)

	arm := dofbot.NewArm(*cfg, logging.Quiet())
	if err := arm.Connect(true); err != nil && arm.State() != dofbot.Ready {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer arm.Disconnect()

	ctrl := capture.NewController(arm, capture.Config{
		Hz:          c.Hz,
		Kinesthetic: c.Kinesthetic,
	})

	// Start controller in background
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := ctrl.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Controller error: %v", err)
		}
	}()

	// Run TUI
	p := tea.NewProgram(initialMonitorModel(ctrl), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}

	return nil
}
