// Package tui provides the terminal progress display for warm-up runs.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/preheat/internal/preload"
)

// WarmState represents the current state of the warm-up TUI.
type WarmState int

const (
	// WarmStateRunning indicates the batch is still in progress.
	WarmStateRunning WarmState = iota
	// WarmStateDone indicates the batch finished and the summary is shown.
	WarmStateDone
	// WarmStateQuitting indicates the user dismissed the display early.
	WarmStateQuitting
)

// Default dimensions for the warm model.
const (
	warmDefaultWidth = 60
	warmMaxBarWidth  = 60
)

// ProgressMsg reports batch progress from the runner goroutine.
type ProgressMsg struct {
	Done  int
	Total int
}

// DoneMsg signals that the batch finished.
type DoneMsg struct {
	Report *preload.Report
	Err    error
}

// Shared render styles.
//
//nolint:gochecknoglobals // Styles are stateless and reused across renders
var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// WarmModel is the Bubble Tea model for the warm-up progress display.
type WarmModel struct {
	bar    progress.Model
	state  WarmState
	done   int
	total  int
	report *preload.Report
	err    error
	width  int
}

// NewWarmModel creates a model for a batch over total assets.
func NewWarmModel(total int) WarmModel {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = warmDefaultWidth
	return WarmModel{
		bar:   bar,
		state: WarmStateRunning,
		total: total,
	}
}

// Init implements tea.Model.
func (m WarmModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m WarmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		barWidth := msg.Width - 4
		if barWidth > warmMaxBarWidth {
			barWidth = warmMaxBarWidth
		}
		if barWidth > 0 {
			m.bar.Width = barWidth
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			// Dismisses the display only; the batch keeps running to
			// completion in the background.
			m.state = WarmStateQuitting
			return m, tea.Quit
		}
		return m, nil

	case ProgressMsg:
		m.done = msg.Done
		m.total = msg.Total
		if m.total == 0 {
			return m, nil
		}
		return m, m.bar.SetPercent(float64(m.done) / float64(m.total))

	case DoneMsg:
		m.state = WarmStateDone
		m.report = msg.Report
		m.err = msg.Err
		return m, tea.Quit

	case progress.FrameMsg:
		barModel, cmd := m.bar.Update(msg)
		m.bar = barModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m WarmModel) View() string {
	switch m.state {
	case WarmStateDone:
		if m.report == nil {
			return ""
		}
		status := okStyle.Render("done")
		if m.report.Failed > 0 {
			status = failStyle.Render(fmt.Sprintf("done, %d failed", m.report.Failed))
		}
		return fmt.Sprintf("%s %s\n", titleStyle.Render("warm:"), status)

	case WarmStateQuitting:
		return ""

	default:
		counts := dimStyle.Render(fmt.Sprintf("%d/%d", m.done, m.total))
		return fmt.Sprintf("%s warming assets\n\n  %s %s\n\n%s\n",
			titleStyle.Render("preheat"),
			m.bar.View(),
			counts,
			dimStyle.Render("press q to dismiss (run continues)"),
		)
	}
}

// Report returns the batch report delivered by DoneMsg, if any.
func (m WarmModel) Report() *preload.Report {
	return m.report
}

// Err returns the run error delivered by DoneMsg, if any.
func (m WarmModel) Err() error {
	return m.err
}

// State returns the current display state.
func (m WarmModel) State() WarmState {
	return m.state
}
