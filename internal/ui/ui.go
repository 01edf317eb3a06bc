package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	// Color palette
	primaryColor   = lipgloss.Color("#7D56F4") // Purple
	secondaryColor = lipgloss.Color("#00D9FF") // Cyan
	successColor   = lipgloss.Color("#04B575") // Green
	errorColor     = lipgloss.Color("#FF5F87") // Pink/Red
	warningColor   = lipgloss.Color("#FFAF00") // Orange
	mutedColor     = lipgloss.Color("#626262") // Gray

	// Title styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginTop(1).
			MarginBottom(1).
			PaddingLeft(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(secondaryColor).
			MarginTop(1).
			PaddingLeft(1)

	// Status styles
	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	infoStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	// Icon styles
	checkmark = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true).
			SetString("✓")

	cross = lipgloss.NewStyle().
		Foreground(errorColor).
		Bold(true).
		SetString("✗")

	arrow = lipgloss.NewStyle().
		Foreground(secondaryColor).
		SetString("→")

	dot = lipgloss.NewStyle().
		Foreground(mutedColor).
		SetString("•")

	// Item styles
	stepStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	itemStyle = lipgloss.NewStyle().
			PaddingLeft(4).
			Foreground(lipgloss.Color("#FAFAFA"))
)

// PrintTitle prints a major title (for app name or major sections)
func PrintTitle(title string) {
	fmt.Println(titleStyle.Render("╭─ " + title + " ─╮"))
}

// PrintHeader prints a section header
func PrintHeader(title string) {
	fmt.Println(headerStyle.Render("\n▸ " + title))
}

// PrintStep prints a step with indentation
func PrintStep(step string) {
	fmt.Println(stepStyle.Render(arrow.String() + " " + step))
}

// PrintItem prints an item in a list
func PrintItem(item string) {
	fmt.Println(itemStyle.Render(dot.String() + " " + item))
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Println(stepStyle.Render(checkmark.String() + " " + successStyle.Render(message)))
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Println(stepStyle.Render(cross.String() + " " + errorStyle.Render(message)))
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println(stepStyle.Render("⚠ " + warningStyle.Render(message)))
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Println(stepStyle.Render(infoStyle.Render(message)))
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	separator := lipgloss.NewStyle().
		Foreground(mutedColor).
		Render("─────────────────────────────────────────────")
	fmt.Println(separator)
}

// PrintKeyValue prints a key-value pair with nice formatting
func PrintKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().
		Foreground(secondaryColor).
		Bold(true)
	fmt.Println(stepStyle.Render(keyStyle.Render(key+":") + " " + value))
}

// tableWidths holds the column widths set by the last PrintTableHeader
var tableWidths = []int{24, 12, 12, 30}

// PrintTableHeader prints a table header. Widths, if given, apply to the
// following rows as well.
func PrintTableHeader(headers []string, widths ...int) {
	if len(widths) > 0 {
		tableWidths = widths
	}
	colStyle := lipgloss.NewStyle().
		Foreground(secondaryColor).
		Bold(true)

	fmt.Println(stepStyle.Render(colStyle.Render(formatRow(headers))))

	parts := make([]string, 0, len(headers))
	for i := range headers {
		if i >= len(tableWidths) {
			break
		}
		parts = append(parts, strings.Repeat("─", tableWidths[i]))
	}
	fmt.Println(stepStyle.Render(infoStyle.Render(strings.Join(parts, "─┼─"))))
}

// PrintTableRow prints a formatted table row with columns
func PrintTableRow(columns ...string) {
	if len(columns) == 0 {
		return
	}
	fmt.Println(stepStyle.Render(formatRow(columns)))
}

func formatRow(columns []string) string {
	cells := make([]string, 0, len(columns))
	for i, col := range columns {
		if i >= len(tableWidths) {
			break
		}
		width := tableWidths[i]
		runes := []rune(col)
		if len(runes) > width {
			col = string(runes[:width-1]) + "…"
		} else {
			col += strings.Repeat(" ", width-len(runes))
		}
		cells = append(cells, col)
	}
	return strings.Join(cells, " │ ")
}

// plainProgress is set by --progress=plain
var plainProgress bool

// SetPlainProgress switches the live progress bar off in favor of plain output
func SetPlainProgress(plain bool) {
	plainProgress = plain
}

// PlainProgress reports whether plain output was requested
func PlainProgress() bool {
	return plainProgress
}

// IsVerbose checks if plain output is wanted instead of a live progress bar:
// on CI, with --progress=plain, or when stdout is not a terminal
func IsVerbose() bool {
	if plainProgress || os.Getenv("CI") != "" {
		return true
	}
	return !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// PrintProgress prints a progress indicator
func PrintProgress(current, total int, message string) {
	if IsVerbose() {
		return // Don't print progress in verbose mode
	}
	
	if total <= 0 {
		return
	}

	barWidth := 30
	filled := (current * barWidth) / total
	if filled > barWidth {
		filled = barWidth
	}
	
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	pct := (current * 100) / total
	
	// Use carriage return to overwrite the line
	fmt.Printf("\r  [%s] %d%% %s", bar, pct, message)
	
	// Print newline on completion
	if current >= total {
		fmt.Println()
	}
}
