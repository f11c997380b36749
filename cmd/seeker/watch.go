package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/seeker/pkg/behavior"
	"github.com/gwillem/seeker/pkg/control"
)

type WatchCommand struct {
	Sim bool `long:"sim" description:"Drive the simulator instead of the ev3dev hardware"`
}

const (
	headerHeight = 4 // title, status, color rows + blank line
	legendHeight = 2 // legend row + blank
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
)

// Series plotted on the chart
const (
	seriesDistance = "distance"
	seriesTurn     = "turn"
)

var seriesColors = map[string]string{
	seriesDistance: "51",  // cyan
	seriesTurn:     "208", // orange
}

var stateColors = map[behavior.Kind]string{
	behavior.Start:           "241",
	behavior.Searching:       "12",
	behavior.AvoidingBack:    "196",
	behavior.AvoidingTurn:    "208",
	behavior.AvoidingAdvance: "226",
	behavior.Found:           "10",
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

// logHook forwards logrus entries to the dashboard's log box.
type logHook struct {
	ch chan string
}

func newLogHook() *logHook {
	return &logHook{ch: make(chan string, 10)}
}

func (h *logHook) Levels() []log.Level {
	return []log.Level{log.PanicLevel, log.FatalLevel, log.ErrorLevel, log.WarnLevel, log.InfoLevel}
}

func (h *logHook) Fire(e *log.Entry) error {
	msg := fmt.Sprintf("[%s] %s", e.Time.Format("15:04:05"), e.Message)
	if to, ok := e.Data["to"]; ok {
		msg += fmt.Sprintf(" -> %v", to)
	}
	if err, ok := e.Data[log.ErrorKey]; ok {
		msg += fmt.Sprintf(": %v", err)
	}
	select {
	case h.ch <- msg:
	default:
		// Drop if channel full
	}
	return nil
}

type watchModel struct {
	ctrl     *control.Controller
	hook     *logHook
	done     <-chan error
	cancel   context.CancelFunc
	chart    *streamlinechart.Model
	width    int      // terminal width
	height   int      // terminal height
	logs     []string // last N log messages
	status   control.Status
	seen     bool // at least one status received
	finished bool
	result   error
	quitting bool
}

func (m *watchModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// Messages from the controller
type statusMsg control.Status
type logMsg string
type doneMsg struct{ err error }

func waitForStatus(ctrl *control.Controller) tea.Cmd {
	return func() tea.Msg {
		return statusMsg(<-ctrl.Statuses())
	}
}

func waitForLog(hook *logHook) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-hook.ch)
	}
}

func waitForDone(done <-chan error) tea.Cmd {
	return func() tea.Msg {
		return doneMsg{err: <-done}
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *watchModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 16 // default size before we know terminal size
	}
	width = m.width - borderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - headerHeight - legendHeight - footerHeight - borderSize
	if height < 8 {
		height = 8
	}
	return width, height
}

func initialWatchModel(ctrl *control.Controller, hook *logHook, done <-chan error, cancel context.CancelFunc) watchModel {
	chart := streamlinechart.New(80, 16,
		streamlinechart.WithYRange(-20, 100),
	)

	for name, color := range seriesColors {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
		chart.SetDataSetStyles(name, runes.ThinLineStyle, style)
	}

	return watchModel{
		ctrl:   ctrl,
		hook:   hook,
		done:   done,
		cancel: cancel,
		chart:  &chart,
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(
		waitForStatus(m.ctrl),
		waitForLog(m.hook),
		waitForDone(m.done),
	)
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.chartSize()
		m.chart.Resize(w, h)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}

	case statusMsg:
		s := control.Status(msg)
		if s.Err == nil {
			m.status = s
			m.seen = true
			m.chart.PushDataSet(seriesDistance, float64(s.World.Distance))
			m.chart.PushDataSet(seriesTurn, float64(s.World.Turn+s.Device.TurnDelta))
			m.chart.DrawAll()
		}
		return m, waitForStatus(m.ctrl)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.hook)

	case doneMsg:
		m.finished = true
		m.result = msg.err
		return m, nil
	}

	return m, nil
}

func (m watchModel) View() string {
	if m.quitting {
		return "Seeker stopped.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("Seeker"))
	sb.WriteString(fmt.Sprintf(" - tick %v", m.ctrl.Tick()))
	sb.WriteString("  ")
	sb.WriteString(m.renderOutcome())
	sb.WriteString("\n")
	sb.WriteString(m.renderStatus())
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
		BorderForeground(lipgloss.Color("240"))
	if m.width > 4 {
		logStyle = logStyle.Width(m.width - 4)
	}

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

func (m watchModel) renderOutcome() string {
	switch {
	case !m.finished:
		return statusStyle.Render("running")
	case m.result == nil:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")).Render("target found")
	default:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")).Render("halted: " + m.result.Error())
	}
}

func (m watchModel) renderStatus() string {
	if !m.seen {
		return statusStyle.Render("waiting for first reading...")
	}

	s := m.status
	stateStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(stateColors[s.State.Kind]))
	touched := "no"
	if s.World.Touched {
		touched = "yes"
	}
	target := "no"
	if behavior.IsTargetColor(s.World.Color) {
		target = "yes"
	}

	line := strings.Join([]string{
		labelStyle.Render("state ") + stateStyle.Render(s.State.String()),
		labelStyle.Render("tick ") + fmt.Sprint(s.World.Tick),
		labelStyle.Render("distance ") + fmt.Sprint(s.World.Distance),
		labelStyle.Render("touch ") + touched,
		labelStyle.Render("wheels ") + fmt.Sprintf("%d/%d", s.Device.LeftSpeed, s.Device.RightSpeed),
	}, "  ")

	color := labelStyle.Render("color ") + swatch(s.World.Color) + " " +
		s.World.Color.String() + "  " + labelStyle.Render("target ") + target

	return line + "\n" + color
}

func renderLegend() string {
	var items []string
	for _, name := range []string{seriesDistance, seriesTurn} {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(seriesColors[name])).Bold(true)
		items = append(items, colorStyle.Render("━━")+" "+name)
	}
	return strings.Join(items, "  ")
}

// swatch renders the sampled color as a block.
func swatch(c behavior.Color) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(colorHex(c))).Render("    ")
}

// colorHex scales a raw sensor triple to a terminal hex color.
func colorHex(c behavior.Color) string {
	scale := func(v int) int {
		v = v * 255 / behavior.MaxColor
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return v
	}
	return fmt.Sprintf("#%02x%02x%02x", scale(c.R), scale(c.G), scale(c.B))
}

func (c *WatchCommand) Execute(args []string) error {
	// Keep log output off the alternate screen
	hook := newLogHook()
	log.SetOutput(io.Discard)
	log.AddHook(hook)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl, rio, err := newController(ctx, c.Sim, log.WithField("system", "seeker"))
	if err != nil {
		return err
	}
	defer rio.Close()

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Run(ctx)
	}()

	p := tea.NewProgram(initialWatchModel(ctrl, hook, done, cancel), tea.WithAltScreen())
	final, err := p.Run()
	cancel()
	if err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}

	// Wait for the loop to stop the motors
	runErr := final.(watchModel).result
	if !final.(watchModel).finished {
		runErr = <-done
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("run control loop: %w", runErr)
	}
	return nil
}
