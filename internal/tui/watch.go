// Package tui provides the terminal user interface for guardrail's watch
// mode: a live list of validation runs as response files are written.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/okikut/guardrail/internal/report"
)

// RunStartedMsg is sent when a response file starts validating.
type RunStartedMsg struct {
	RunID string
	Path  string
}

// RunFinishedMsg is sent when a validation run completes.
type RunFinishedMsg struct {
	RunID  string
	Report *report.Report
	Err    error
}

// runEntry tracks one validation run for display.
type runEntry struct {
	runID      string
	path       string
	done       bool
	passed     bool
	violations int
	err        error
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#45B7D1"))
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#777777"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#777777")).MarginTop(1)
)

// Model is the bubbletea model for watch mode.
type Model struct {
	dir      string
	spinner  spinner.Model
	runs     []runEntry
	width    int
	quitting bool
}

// New creates a watch-mode model for the given directory.
func New(dir string) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC857"))
	return &Model{dir: dir, spinner: sp}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case RunStartedMsg:
		m.runs = append(m.runs, runEntry{runID: msg.RunID, path: msg.Path})

	case RunFinishedMsg:
		for i := range m.runs {
			if m.runs[i].runID == msg.RunID {
				m.runs[i].done = true
				m.runs[i].err = msg.Err
				if msg.Report != nil {
					m.runs[i].passed = msg.Report.Passed
					m.runs[i].violations = len(msg.Report.Violations)
				}
				break
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("guardrail watch"))
	sb.WriteString(mutedStyle.Render("  " + m.dir))
	sb.WriteString("\n\n")

	if len(m.runs) == 0 {
		sb.WriteString(mutedStyle.Render("waiting for response files..."))
		sb.WriteString("\n")
	}

	for _, run := range m.runs {
		name := filepath.Base(run.path)
		switch {
		case !run.done:
			sb.WriteString(fmt.Sprintf("%s %s validating\n", m.spinner.View(), name))
		case run.err != nil:
			sb.WriteString(fmt.Sprintf("%s %s %s\n", failStyle.Render("!"), name, mutedStyle.Render(run.err.Error())))
		case run.passed:
			sb.WriteString(fmt.Sprintf("%s %s %s\n", passStyle.Render("✓"), name, mutedStyle.Render("passed")))
		default:
			sb.WriteString(fmt.Sprintf("%s %s %s\n", failStyle.Render("✗"), name,
				mutedStyle.Render(fmt.Sprintf("failed, %d violations", run.violations))))
		}
	}

	sb.WriteString(footerStyle.Render("q to quit"))
	return sb.String()
}
