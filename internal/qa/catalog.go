package qa

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/lessonforge/lessonforge/internal/script"
)

// KnownColors documents the brand palette for script authors.
var KnownColors = []string{
	"#0b7dba (blue)", "#e67e22 (orange)", "#27ae60 (green)",
	"#8e44ad (purple)", "#e74c3c (red)", "#f39c12 (gold)",
}

var (
	catalogBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2).
			Width(62)

	catalogTitle = lipgloss.NewStyle().Bold(true)
	catalogDim   = lipgloss.NewStyle().Faint(true)
)

// Catalog renders the component catalog printed as remediation guidance when
// validation fails: valid layouts, visual types, icons, and colors.
func Catalog() string {
	var b strings.Builder

	b.WriteString(catalogTitle.Render("COMPONENT CATALOG"))
	b.WriteString("\n\n")

	b.WriteString(catalogTitle.Render("Layouts") + " (set on content scene):\n")
	layoutHints := map[string]string{
		"flow-chain":       "horizontal process diagram",
		"icon-grid":        "2×2 grid of concept cards",
		"definition-cards": "stacked term + definition cards",
		"summary-row":      "horizontal compact cards",
	}
	for _, l := range script.KnownLayouts {
		fmt.Fprintf(&b, "  %-18s %s\n", l, catalogDim.Render(layoutHints[l]))
	}

	b.WriteString("\n" + catalogTitle.Render("Visual types") + " (inside the visuals array):\n")
	b.WriteString(wordwrap.String("  "+strings.Join(script.RichVisualTypes, ", "), 58))
	b.WriteString("\n")

	b.WriteString("\n" + catalogTitle.Render("Emphasis") + " (min 1 per content scene):\n")
	b.WriteString("  " + strings.Join(script.EmphasisTypes, " | ") + "\n")

	b.WriteString("\n" + catalogTitle.Render("Icons") + ":\n")
	b.WriteString(wordwrap.String("  "+strings.Join(script.KnownIcons, ", "), 58))
	b.WriteString("\n")

	b.WriteString("\n" + catalogTitle.Render("Colors") + ":\n")
	b.WriteString(wordwrap.String("  "+strings.Join(KnownColors, ", "), 58))
	b.WriteString("\n\n")

	b.WriteString(catalogDim.Render("Every visual needs a trigger word from the narration.\nEvery scene needs a sectionLabel."))

	return catalogBox.Render(b.String())
}
