package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// maxStabilizerFinWidth caps the fin width on panels with a wide border
	maxStabilizerFinWidth = 4.0
	// stabilizerClearance separates removable fins from the panel faces
	stabilizerClearance = 0.25
)

// StabilizerOptions shape the stabilizer fins
type StabilizerOptions struct {
	Threshold   float64 // minimum panel height in mm
	HeightRatio float64 // fin height relative to the panel height
	Permanent   bool    // attach without clearance
}

// Stabilizers adds a front and a back fin at both side edges of panels taller
// than the threshold. Each fin is a right triangle standing on the print bed
// with a cube at its top that bridges it to the panel.
func Stabilizers(panel Panel, opts StabilizerOptions) *Stream {
	fin := math.Min(panel.Border, maxStabilizerFinWidth)
	if fin <= 0 || panel.Height <= opts.Threshold {
		return NewStream(0)
	}

	gap := stabilizerClearance
	if opts.Permanent {
		gap = 0
	}

	h := opts.HeightRatio * panel.Height
	front := panel.TotalThickness + gap
	back := -panel.MinThickness - gap

	s := NewStream(80)
	for _, x0 := range []float64{0, panel.Width - panel.Border} {
		// outlines in (y, z), extruded along x
		s.prism(planeYZ, []point2{{0, front}, {h, front}, {0, front + h}}, x0, x0+fin)
		s.prism(planeYZ, []point2{{0, back}, {0, back - h}, {h, back}}, x0, x0+fin)

		s.box(r3.Vec{X: x0, Y: h - fin, Z: front - fin}, r3.Vec{X: fin, Y: fin, Z: fin})
		s.box(r3.Vec{X: x0, Y: h - fin, Z: back}, r3.Vec{X: fin, Y: fin, Z: fin})
	}
	return s
}
