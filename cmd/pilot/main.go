// Package main implements a terminal pilot console for the flight daemon.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jessevdk/go-flags"

	"github.com/Moha1423/WIFI-drone/internal/pilot"
)

type Options struct {
	URL     string        `long:"url" default:"http://192.168.4.1" description:"Flight daemon base URL"`
	Token   string        `long:"token" env:"WIFIDRONE_TOKEN" description:"Bearer token when auth is enabled"`
	Timeout time.Duration `long:"timeout" default:"300ms" description:"Per-request timeout"`
}

const (
	headerHeight = 4 // title + sticks + motors + blank
	legendHeight = 2
	footerHeight = 7
	maxLogs      = 5
	borderSize   = 2

	throttleStep = 5
	axisStep     = 10
)

var axisColors = map[string]string{
	"pitch": "196",
	"roll":  "46",
	"yaw":   "51",
}

var axisOrder = []string{"pitch", "roll", "yaw"}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	armedStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	disarmedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
)

type pilotModel struct {
	ctrl     *pilot.Controller
	chart    *streamlinechart.Model
	url      string
	width    int
	height   int
	logs     []string
	state    pilot.State
	quitting bool
}

type stateMsg pilot.State
type logMsg string

func waitForState(ctrl *pilot.Controller) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-ctrl.States())
	}
}

func waitForLog(ctrl *pilot.Controller) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-ctrl.Logs())
	}
}

func sendNow(ctrl *pilot.Controller) tea.Cmd {
	return func() tea.Msg {
		ctrl.SendNow(context.Background())
		return nil
	}
}

func initialModel(ctrl *pilot.Controller, url string) pilotModel {
	chart := streamlinechart.New(80, 15, streamlinechart.WithYRange(-180, 180))
	for _, name := range axisOrder {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(axisColors[name]))
		chart.SetDataSetStyles(name, runes.ThinLineStyle, style)
	}
	return pilotModel{ctrl: ctrl, chart: &chart, url: url}
}

func (m *pilotModel) addLog(msg string) {
	m.logs = append(m.logs, time.Now().Format("15:04:05 ")+msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

func (m *pilotModel) resizeChart() {
	w := m.width - borderSize - 2
	if w < 40 {
		w = 40
	}
	h := m.height - headerHeight - legendHeight - footerHeight - borderSize
	if h < 8 {
		h = 8
	}
	m.chart.Resize(w, h)
}

func (m pilotModel) Init() tea.Cmd {
	return tea.Batch(waitForState(m.ctrl), waitForLog(m.ctrl))
}

func (m pilotModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
		case " ":
			if m.ctrl.ToggleArm() {
				m.addLog("arm requested")
			} else {
				m.addLog("disarm requested")
			}
			return m, sendNow(m.ctrl)
		case "w":
			m.ctrl.AdjustThrottle(throttleStep)
		case "s":
			m.ctrl.AdjustThrottle(-throttleStep)
		case "up":
			m.ctrl.Nudge(-axisStep, 0, 0)
		case "down":
			m.ctrl.Nudge(axisStep, 0, 0)
		case "left":
			m.ctrl.Nudge(0, -axisStep, 0)
		case "right":
			m.ctrl.Nudge(0, axisStep, 0)
		case "a":
			m.ctrl.Nudge(0, 0, -axisStep)
		case "d":
			m.ctrl.Nudge(0, 0, axisStep)
		case "c":
			m.ctrl.Center()
		}
		return m, nil

	case stateMsg:
		prev := m.state.Attitude
		m.state = pilot.State(msg)
		if a := m.state.Attitude; a != prev {
			m.chart.PushDataSet("pitch", a.Pitch)
			m.chart.PushDataSet("roll", a.Roll)
			m.chart.PushDataSet("yaw", wrapYaw(a.Yaw))
			m.chart.DrawAll()
		}
		return m, waitForState(m.ctrl)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.ctrl)
	}

	return m, nil
}

func (m pilotModel) View() string {
	if m.quitting {
		return "Disarming and leaving.\n"
	}

	var sb strings.Builder
	st := m.state.Status
	sticks := m.ctrl.Sticks()

	sb.WriteString(titleStyle.Render("WIFI-drone pilot"))
	sb.WriteString(statusStyle.Render("  " + m.url))
	sb.WriteString("  ")
	if st.Armed {
		sb.WriteString(armedStyle.Render("ARMED"))
	} else {
		sb.WriteString(disarmedStyle.Render("DISARMED"))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("throttle %3d%%  pitch %+3d  roll %+3d  yaw %+3d\n",
		sticks.Throttle, sticks.Pitch, sticks.Roll, sticks.Yaw))
	sb.WriteString(fmt.Sprintf("motors FL %3d%%  FR %3d%%  BL %3d%%  BR %3d%%\n\n",
		percent(st.MotorFL), percent(st.MotorFR), percent(st.MotorBL), percent(st.MotorBR)))

	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")
	sb.WriteString(renderLegend(m.state.Attitude))
	sb.WriteString("\n")

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(max(m.width-4, 20))

	logLines := statusStyle.Render("space arm/disarm  w/s throttle  arrows pitch/roll  a/d yaw  c center  q quit")
	if len(m.logs) > 0 {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func renderLegend(a pilot.Attitude) string {
	values := map[string]float64{"pitch": a.Pitch, "roll": a.Roll, "yaw": a.Yaw}
	var items []string
	for _, name := range axisOrder {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(axisColors[name])).Bold(true)
		items = append(items, fmt.Sprintf("%s %s %6.1f°", style.Render("━━"), name, values[name]))
	}
	return strings.Join(items, "  ")
}

// percent matches the web UI bar: drive / 2.55, rounded.
func percent(drive int) int {
	return (drive*100 + 127) / 255
}

// wrapYaw folds the integrated yaw into (-180, 180].
func wrapYaw(yaw float64) float64 {
	for yaw > 180 {
		yaw -= 360
	}
	for yaw <= -180 {
		yaw += 360
	}
	return yaw
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	parser.LongDescription = "Keyboard pilot console. Sends the stick state every 100 ms and polls /sensor every 200 ms."
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	client := pilot.NewClient(opts.URL, opts.Token, opts.Timeout)
	ctrl := pilot.NewController(client, pilot.Config{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := ctrl.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Controller error: %v", err)
		}
	}()

	p := tea.NewProgram(initialModel(ctrl, opts.URL), tea.WithAltScreen())
	_, err := p.Run()

	cancel()
	<-done

	if err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
