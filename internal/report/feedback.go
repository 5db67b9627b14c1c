package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	passBanner = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#04B575")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)

	failBanner = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5F5F")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)

	layerHeading  = lipgloss.NewStyle().Bold(true)
	passMark      = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Render("✓")
	failMark      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Render("✗")
	skipMark      = lipgloss.NewStyle().Foreground(lipgloss.Color("#777777")).Render("−")
	severityStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC857"))
	fixStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#45B7D1"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#777777"))
)

// Render formats a report for the terminal: an overall PASS/FAIL banner,
// violations grouped by layer with their suggested fixes, and a summary.
// It is a pure formatting function: identical reports render identically,
// and nothing is written anywhere.
func Render(r *Report) string {
	var sb strings.Builder

	if r.Passed {
		sb.WriteString(passBanner.Render("VALIDATION PASSED"))
	} else {
		sb.WriteString(failBanner.Render("VALIDATION FAILED"))
	}
	sb.WriteString("\n\n")

	for _, layer := range r.Layers {
		sb.WriteString(renderLayer(layer))
	}

	blocking, advisory := r.CountBySeverity()
	sb.WriteString(layerHeading.Render("Summary"))
	sb.WriteString(fmt.Sprintf("\n  blocking violations: %d\n  advisory violations: %d\n", blocking, advisory))

	return sb.String()
}

func renderLayer(layer LayerResult) string {
	var sb strings.Builder

	mark := passMark
	status := "pass"
	switch {
	case layer.Skipped:
		mark = skipMark
		status = "skipped"
	case !layer.Passed:
		mark = failMark
		status = "fail"
	}

	sb.WriteString(fmt.Sprintf("%s %s %s\n", mark, layerHeading.Render(layer.Layer), dimStyle.Render("("+status+")")))

	for _, v := range layer.Violations {
		sb.WriteString(fmt.Sprintf("    %s %s\n", severityStyle.Render("["+string(v.Severity)+"]"), v.Message))
		if v.SuggestedFix != "" {
			for i, line := range strings.Split(v.SuggestedFix, "\n") {
				prefix := "fix: "
				if i > 0 {
					prefix = "     "
				}
				sb.WriteString("        " + fixStyle.Render(prefix+line) + "\n")
			}
		}
	}

	// Sorted evidence keys keep rendering deterministic.
	for _, k := range sortedKeys(layer.Evidence) {
		sb.WriteString("    " + dimStyle.Render(fmt.Sprintf("%s: %s", k, layer.Evidence[k])) + "\n")
	}

	sb.WriteString("\n")
	return sb.String()
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
