package inspect

import (
	"fmt"

	"github.com/philipparndt/golitho/internal/ui"
)

// Printer renders a Summary to the terminal
type Printer struct{}

// NewPrinter creates a new summary printer
func NewPrinter() *Printer {
	return &Printer{}
}

// Print displays the summary
func (p *Printer) Print(s *Summary) {
	ui.PrintHeader(fmt.Sprintf("Inspecting: %s", s.Path))

	ui.PrintKeyValue("Format", s.Format)
	if s.Name != "" {
		ui.PrintKeyValue("Name", s.Name)
	}
	ui.PrintKeyValue("File size", ui.Size(s.FileSize))
	if s.Objects > 1 {
		ui.PrintKeyValue("Objects", ui.Count(s.Objects))
	}
	ui.PrintKeyValue("Triangles", ui.Count(s.Triangles))
	ui.PrintKeyValue("Vertices", ui.Count(s.Vertices))

	if len(s.Metadata) > 0 {
		ui.PrintStep("Metadata:")
		for _, meta := range s.Metadata {
			ui.PrintItem(fmt.Sprintf("%s: %s", meta.Name, meta.Value))
		}
	}

	if s.Bounds != nil {
		ui.PrintHeader("Geometry:")
		size := s.Bounds.Size()
		ui.PrintKeyValue("Size", fmt.Sprintf("%.2f × %.2f × %.2f mm", size.X, size.Y, size.Z))
		ui.PrintKeyValue("Min", fmt.Sprintf("(%.2f, %.2f, %.2f)", s.Bounds.Min.X, s.Bounds.Min.Y, s.Bounds.Min.Z))
		ui.PrintKeyValue("Max", fmt.Sprintf("(%.2f, %.2f, %.2f)", s.Bounds.Max.X, s.Bounds.Max.Y, s.Bounds.Max.Z))
		ui.PrintKeyValue("Volume", fmt.Sprintf("%.1f mm³", s.Volume))
		if s.Volume < 0 {
			ui.PrintWarning("Negative volume: triangles face inwards")
		}
	}

	if s.NonFinite > 0 {
		ui.PrintWarning(fmt.Sprintf("%s triangles have non-finite coordinates", ui.Count(s.NonFinite)))
	}
}
