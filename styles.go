package main

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/term"
)

var (
	keywordStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"})
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#27ae60", Dark: "#2ecc71"})
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#e67e22", Dark: "#f39c12"})
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#c0392b", Dark: "#e74c3c"})
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// isTerminal reports whether stdout is a terminal. Styled output is skipped
// when piped.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// keyword colorizes a span of help text.
func keyword(s string) string {
	return keywordStyle.Render(s)
}

// paragraph word-wraps help text to a comfortable width.
func paragraph(s string) string {
	return strings.TrimSpace(wordwrap.String(s, 78)) + "\n"
}

// statusIcon renders the per-check marker for QA report lines.
func statusIcon(s string) string {
	if !isTerminal() {
		switch s {
		case "pass":
			return "[ok]"
		case "warn":
			return "[warn]"
		default:
			return "[FAIL]"
		}
	}
	switch s {
	case "pass":
		return passStyle.Render("✓")
	case "warn":
		return warnStyle.Render("!")
	default:
		return failStyle.Render("✗")
	}
}
