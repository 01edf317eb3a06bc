package mesh

const (
	hangerWidth = 9.0
	hangerDepth = 2.0
)

// hanger outlines relative to the tab origin
var (
	hangerOutline = []point2{{0, 0}, {9, 0}, {9, 5}, {4.5, 9}, {0, 5}}
	hangerHole    = []point2{{2.5, 1.5}, {6.5, 1.5}, {6.5, 4.5}, {4.5, 6.5}, {2.5, 4.5}}
)

// Hangers spreads count arrow shaped tabs with a nail hole along the top edge
// of the panel. The tabs are flush with the back of the body.
func Hangers(panel Panel, count int) *Stream {
	if count <= 0 {
		return NewStream(0)
	}

	s := NewStream(count * 40)
	spacing := panel.Width / float64(count)
	z0 := -panel.MinThickness

	for i := 0; i < count; i++ {
		x := spacing*float64(i) + spacing/2 - hangerWidth/2
		s.ring(planeXY,
			offset(hangerOutline, x, panel.Height),
			offset(hangerHole, x, panel.Height),
			z0, z0+hangerDepth)
	}
	return s
}

func offset(outline []point2, du, dv float64) []point2 {
	moved := make([]point2, len(outline))
	for i, p := range outline {
		moved[i] = point2{p.u + du, p.v + dv}
	}
	return moved
}
