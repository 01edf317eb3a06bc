package cmd

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderRenderHelp renders the help text for the render command with lipgloss styling
func renderRenderHelp() string {
	// Define styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginTop(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("10"))

	commandStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("14"))

	commentStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Italic(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Examples"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Default panel, 150 mm wide with frame, stabilizers and hangers"))
	b.WriteString("\n")
	b.WriteString("  " + commandStyle.Render("golitho render photo.jpg"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Plain slab as 3MF, standing upright on the plate"))
	b.WriteString("\n")
	b.WriteString("  " + commandStyle.Render("golitho render photo.jpg --no-frame --no-stabilizers --no-hangers -f 3mf --upright"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Thicker panel with a wider frame"))
	b.WriteString("\n")
	b.WriteString("  " + commandStyle.Render("golitho render photo.png -o panel.stl \\"))
	b.WriteString("\n")
	b.WriteString("    " + commandStyle.Render("--total-thickness 5 --frame-border 6 --panel-width 200"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Settings file keys:"))
	b.WriteString("\n")

	keys := []struct {
		key  string
		desc string
	}{
		{"~/.config/golitho/config.yaml", "User settings, read first"},
		{"./golitho.yaml", "Project settings, override user settings"},
		{"--config FILE", "Explicit settings file"},
		{"golitho config show", "Print the effective settings"},
	}

	// Calculate max key width for alignment
	maxWidth := 0
	for _, k := range keys {
		if len(k.key) > maxWidth {
			maxWidth = len(k.key)
		}
	}

	for _, k := range keys {
		padding := strings.Repeat(" ", maxWidth-len(k.key)+2)
		b.WriteString("  " + keyStyle.Render(k.key) + padding + commentStyle.Render(k.desc))
		b.WriteString("\n")
	}

	return b.String()
}
