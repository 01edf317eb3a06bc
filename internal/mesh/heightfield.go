package mesh

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/philipparndt/golitho/internal/config"
	"github.com/philipparndt/golitho/internal/imageprep"
)

// Factors convert pixel coordinates and intensities to millimeters. They are
// computed once per render and stay constant for the whole pass.
type Factors struct {
	Depth          float64 // mm per intensity step
	Width          float64 // mm per pixel
	Border         float64
	MinThickness   float64
	TotalThickness float64
}

// NewFactors derives the scale factors for an image gridWidth pixels wide
func NewFactors(params config.Params, gridWidth int) Factors {
	return Factors{
		Depth:          (params.TotalThickness - params.MinThickness) / 255,
		Width:          (params.PanelWidth - 2*params.FrameBorder) / float64(gridWidth),
		Border:         params.FrameBorder,
		MinThickness:   params.MinThickness,
		TotalThickness: params.TotalThickness,
	}
}

// Panel is the computed outline of the body including the frame band
type Panel struct {
	Width, Height  float64
	Border         float64
	MinThickness   float64
	TotalThickness float64
}

// Panel returns the extents of a body built from a width x height grid
func (f Factors) Panel(width, height int) Panel {
	return Panel{
		Width:          float64(width-1)*f.Width + 2*f.Border,
		Height:         float64(height-1)*f.Width + 2*f.Border,
		Border:         f.Border,
		MinThickness:   f.MinThickness,
		TotalThickness: f.TotalThickness,
	}
}

// BodyTriangles returns the number of triangles BuildHeightfield emits for a
// width x height grid
func BodyTriangles(width, height int) int {
	return (width-1)*(height-1)*2 + (height-1)*4 + (width-1)*4 + 2
}

// Progress receives the number of finished rows after each row
type Progress func(done, total int)

// BuildHeightfield emits the closed body: the relief surface, the four side
// walls and the flat backplate. The context is checked between rows; a
// cancelled build returns no stream.
func BuildHeightfield(ctx context.Context, grid *imageprep.Grid, f Factors, progress Progress) (*Stream, error) {
	if grid == nil || grid.Width < 2 || grid.Height < 2 {
		return nil, fmt.Errorf("%w: heightfield needs at least 2x2 pixels", imageprep.ErrImageDecode)
	}

	w, h := grid.Width, grid.Height
	floor := -f.MinThickness

	vertex := func(x, y int, z float64) r3.Vec {
		return r3.Vec{
			X: f.Border + float64(x)*f.Width,
			Y: f.Border + float64(y)*f.Width,
			Z: z,
		}
	}
	surface := func(x, y int) r3.Vec {
		return vertex(x, y, float64(grid.At(x, y))*f.Depth)
	}

	s := NewStream(BodyTriangles(w, h))
	rows := h - 1

	for y := 0; y < rows; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for x := 0; x < w-1; x++ {
			s.Triangle(surface(x, y), surface(x+1, y+1), surface(x, y+1))
			s.Triangle(surface(x, y), surface(x+1, y), surface(x+1, y+1))
		}

		// left wall, facing -x
		s.Triangle(vertex(0, y, floor), surface(0, y), surface(0, y+1))
		s.Triangle(surface(0, y+1), vertex(0, y+1, floor), vertex(0, y, floor))

		// right wall, facing +x
		r := w - 1
		s.Triangle(surface(r, y+1), surface(r, y), vertex(r, y, floor))
		s.Triangle(vertex(r, y, floor), vertex(r, y+1, floor), surface(r, y+1))

		if progress != nil {
			progress(y+1, rows)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	top := h - 1
	for x := 0; x < w-1; x++ {
		// front edge (row 0), facing -y
		s.Triangle(surface(x+1, 0), surface(x, 0), vertex(x, 0, floor))
		s.Triangle(vertex(x, 0, floor), vertex(x+1, 0, floor), surface(x+1, 0))

		// back edge (last row), facing +y
		s.Triangle(vertex(x, top, floor), surface(x, top), surface(x+1, top))
		s.Triangle(surface(x+1, top), vertex(x+1, top, floor), vertex(x, top, floor))
	}

	// backplate, facing -z
	s.Triangle(vertex(0, 0, floor), vertex(0, top, floor), vertex(w-1, top, floor))
	s.Triangle(vertex(0, 0, floor), vertex(w-1, top, floor), vertex(w-1, 0, floor))

	return s, nil
}
