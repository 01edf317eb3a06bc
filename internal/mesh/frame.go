package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Frame sweeps the frame cross section around the panel outline. The cross
// section, given as (inset from the outer edge, z), runs along the back, up
// the inner lip, over the bevel, across the front and down the outer wall.
// A panel without a border gets no frame. A bevel over the full border
// (slope 2 and above) drops the front face.
func Frame(panel Panel, slope float64) *Stream {
	b := panel.Border
	if b <= 0 {
		return NewStream(0)
	}

	bevel := slope * b / 2
	if bevel < 0 {
		bevel = 0
	}
	if bevel > b {
		bevel = b
	}

	m, t := panel.MinThickness, panel.TotalThickness
	profile := []point2{
		{0, -m},
		{b, -m},
		{b, 0},
	}
	// a bevel over the full border leaves no front face
	if bevel < b {
		profile = append(profile, point2{b - bevel, t})
	}
	profile = append(profile, point2{0, t})

	corner := func(i int, inset, z float64) r3.Vec {
		switch i % 4 {
		case 0:
			return r3.Vec{X: inset, Y: inset, Z: z}
		case 1:
			return r3.Vec{X: panel.Width - inset, Y: inset, Z: z}
		case 2:
			return r3.Vec{X: panel.Width - inset, Y: panel.Height - inset, Z: z}
		default:
			return r3.Vec{X: inset, Y: panel.Height - inset, Z: z}
		}
	}

	s := NewStream(len(profile) * 4 * 2)
	for k := range profile {
		p, q := profile[k], profile[(k+1)%len(profile)]
		for i := 0; i < 4; i++ {
			s.Quad(
				corner(i, p.u, p.v),
				corner(i, q.u, q.v),
				corner(i+1, q.u, q.v),
				corner(i+1, p.u, p.v),
			)
		}
	}
	return s
}
