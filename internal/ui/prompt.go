package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// CanPrompt reports whether stdin is an interactive terminal
func CanPrompt() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// Confirm asks a yes/no question. Without a terminal the answer is no.
func Confirm(title, description string) bool {
	if !CanPrompt() {
		return false
	}

	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false
	}
	return ok
}

// ConfirmDownscale asks whether an oversized image should be scaled down
func ConfirmDownscale(width, height, limit int) bool {
	return Confirm(
		"Downscale image?",
		fmt.Sprintf("The image is %d×%d px, larger than %d px. Rendering at full size can be very slow.", width, height, limit),
	)
}

// ConfirmOverwrite asks whether an existing file may be replaced
func ConfirmOverwrite(path string) bool {
	return Confirm("Overwrite file?", path+" already exists.")
}
