package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// BoundingBox represents a 3D bounding box
type BoundingBox struct {
	Min, Max r3.Vec
}

// Width returns the width (X dimension) of the bounding box
func (b *BoundingBox) Width() float64 {
	return b.Max.X - b.Min.X
}

// Height returns the height (Y dimension) of the bounding box
func (b *BoundingBox) Height() float64 {
	return b.Max.Y - b.Min.Y
}

// Depth returns the depth (Z dimension) of the bounding box
func (b *BoundingBox) Depth() float64 {
	return b.Max.Z - b.Min.Z
}

// Size returns the extent along every axis
func (b *BoundingBox) Size() r3.Vec {
	return r3.Sub(b.Max, b.Min)
}

// Extend grows the box to include p
func (b *BoundingBox) Extend(p r3.Vec) {
	b.Min = r3.Vec{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y), Z: math.Min(b.Min.Z, p.Z)}
	b.Max = r3.Vec{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y), Z: math.Max(b.Max.Z, p.Z)}
}

// CalculateBoundingBox returns the bounds of a set of points
func CalculateBoundingBox(points []r3.Vec) (*BoundingBox, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("no vertices")
	}

	bbox := &BoundingBox{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		bbox.Extend(p)
	}
	return bbox, nil
}

// SignedVolume sums the signed volumes of the tetrahedra spanned by the
// origin and each triangle. Closed meshes wound counter-clockwise from the
// outside have a positive volume.
func SignedVolume(vertices []r3.Vec) float64 {
	var sum float64
	for i := 0; i+2 < len(vertices); i += 3 {
		sum += r3.Dot(vertices[i], r3.Cross(vertices[i+1], vertices[i+2]))
	}
	return sum / 6
}
