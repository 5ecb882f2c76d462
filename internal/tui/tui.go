// Package tui renders a terminal status view of the capture loop.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ayusman/handmouse/internal/app"
	"github.com/ayusman/handmouse/internal/cursor"
	"github.com/ayusman/handmouse/internal/gesture"
)

const (
	maxLogs    = 8  // emitted actions kept in the log box
	feedBuffer = 64 // frames queued between the loop and the view

	refreshEvery = 250 * time.Millisecond
	chartHeight  = 6
	chartMaxFPS  = 60
)

// Runtime is the part of the capture loop the view controls.
type Runtime interface {
	Status() app.Status
	SetEnabled(enabled bool)
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	onStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	offStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var chartLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))

var logStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Padding(0, 1)

// gestureColors gives each label its own colour in the view.
var gestureColors = map[gesture.Label]string{
	gesture.Neutral:                "51",  // cyan
	gesture.Pointing:               "226", // yellow
	gesture.Fist:                   "208", // orange
	gesture.IndexAndMiddleExtended: "201", // magenta
}

// Feed is an app.Observer that hands frames to the view without blocking
// the capture loop.
type Feed struct {
	frames chan app.FrameResult
}

// NewFeed creates a Feed.
func NewFeed() *Feed {
	return &Feed{frames: make(chan app.FrameResult, feedBuffer)}
}

// OnFrame queues r, dropping it when the view is behind.
func (f *Feed) OnFrame(r app.FrameResult) {
	select {
	case f.frames <- r:
	default:
	}
}

type frameMsg app.FrameResult

type refreshMsg time.Time

func refresh() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

func waitForFrame(f *Feed) tea.Cmd {
	return func() tea.Msg {
		return frameMsg(<-f.frames)
	}
}

type model struct {
	runtime  Runtime
	feed     *Feed
	status   app.Status
	logs     []string
	fps      *streamlinechart.Model
	width    int
	quitting bool
}

func newModel(rt Runtime, feed *Feed) model {
	chart := streamlinechart.New(40, chartHeight, streamlinechart.WithYRange(0, chartMaxFPS))
	chart.SetStyles(runes.ThinLineStyle, chartLineStyle)

	return model{
		runtime: rt,
		feed:    feed,
		status:  rt.Status(),
		fps:     &chart,
	}
}

func (m *model) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForFrame(m.feed), refresh())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > 8 {
			m.fps.Resize(msg.Width-4, chartHeight)
		}
		return m, nil

	case refreshMsg:
		m.status = m.runtime.Status()
		fps := 0
		if m.status.Enabled && m.status.Running {
			fps = m.status.FPS
		}
		m.fps.Push(float64(fps))
		m.fps.Draw()
		return m, refresh()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case " ", "space":
			m.runtime.SetEnabled(!m.runtime.Status().Enabled)
			m.status = m.runtime.Status()
			if m.status.Enabled {
				m.addLog("resumed")
			} else {
				m.addLog("paused")
			}
		}
		return m, nil

	case frameMsg:
		r := app.FrameResult(msg)
		m.status = m.runtime.Status()
		for _, a := range r.Actions {
			if a.Kind == cursor.Move {
				continue
			}
			m.addLog(fmt.Sprintf("#%d %s %s", r.Seq, r.Label, a))
		}
		return m, waitForFrame(m.feed)
	}

	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return "handmouse stopped.\n"
	}

	var sb strings.Builder

	sb.WriteString(titleStyle.Render("handmouse"))
	sb.WriteString(statusStyle.Render(fmt.Sprintf("  %d frames @ %d fps", m.status.Frames, m.status.FPS)))
	sb.WriteString("\n\n")

	sb.WriteString(row("processing", onOff(m.status.Enabled, "enabled", "paused")))
	sb.WriteString(row("cursor", onOff(m.status.Cursor.TrackingEnabled, "tracking", "frozen")))
	pos := m.status.Cursor.LastPosition
	sb.WriteString(row("position", fmt.Sprintf("(%d, %d)", pos.X, pos.Y)))
	sb.WriteString(row("gesture", renderGesture(m.status)))
	sb.WriteString("\n")

	sb.WriteString(labelStyle.Render("frame rate"))
	sb.WriteString("\n")
	sb.WriteString(m.fps.View())
	sb.WriteString("\n\n")

	var lines string
	if len(m.logs) == 0 {
		lines = statusStyle.Render("no clicks yet")
	} else {
		lines = strings.Join(m.logs, "\n")
	}
	box := logStyle
	if m.width > 4 {
		box = box.Width(m.width - 4)
	}
	sb.WriteString(box.Render(lines))
	sb.WriteString("\n")
	sb.WriteString(statusStyle.Render("space: pause/resume  q: quit"))
	sb.WriteString("\n")

	return sb.String()
}

func row(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-11s", label)) + value + "\n"
}

func onOff(on bool, yes, no string) string {
	if on {
		return onStyle.Render(yes)
	}
	return offStyle.Render(no)
}

func renderGesture(s app.Status) string {
	if !s.HandSeen {
		return statusStyle.Render("no hand yet")
	}
	style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(gestureColors[s.LastLabel]))
	return style.Render(s.LastLabel.String())
}

// Run shows the view until the user quits or ctx is cancelled.
func Run(ctx context.Context, rt Runtime, feed *Feed) error {
	p := tea.NewProgram(newModel(rt, feed), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
