// Package mesh builds the triangle stream of a lithophane: the heightfield
// body and the frame, stabilizer and hanger accessories.
package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Stream is an ordered list of vertices, three per triangle, wound
// counter-clockwise when seen from outside the solid
type Stream struct {
	vertices []r3.Vec
}

// NewStream creates an empty stream with room for the given number of triangles
func NewStream(triangles int) *Stream {
	return &Stream{vertices: make([]r3.Vec, 0, triangles*3)}
}

// Triangle appends one triangle
func (s *Stream) Triangle(a, b, c r3.Vec) {
	s.vertices = append(s.vertices, a, b, c)
}

// Quad appends the planar quad a-b-c-d as the triangles (a,b,c) and (a,c,d)
func (s *Stream) Quad(a, b, c, d r3.Vec) {
	s.Triangle(a, b, c)
	s.Triangle(a, c, d)
}

// Append copies all triangles of other to the end of s
func (s *Stream) Append(other *Stream) {
	if other == nil {
		return
	}
	s.vertices = append(s.vertices, other.vertices...)
}

// Len returns the number of vertices
func (s *Stream) Len() int {
	return len(s.vertices)
}

// Triangles returns the number of complete triangles
func (s *Stream) Triangles() int {
	return len(s.vertices) / 3
}

// Vertices exposes the underlying vertex list. Callers must not modify it.
func (s *Stream) Vertices() []r3.Vec {
	return s.vertices
}

// plane maps (u, v, w) prism coordinates onto x, y and z. Only cyclic
// permutations are used so that counter-clockwise outlines stay
// counter-clockwise and outward normals stay outward.
type plane int

const (
	planeXY plane = iota // u=x v=y w=z
	planeYZ              // u=y v=z w=x
	planeZX              // u=z v=x w=y
)

func (p plane) point(u, v, w float64) r3.Vec {
	switch p {
	case planeYZ:
		return r3.Vec{X: w, Y: u, Z: v}
	case planeZX:
		return r3.Vec{X: v, Y: w, Z: u}
	default:
		return r3.Vec{X: u, Y: v, Z: w}
	}
}

// point2 is a vertex of a planar outline
type point2 struct{ u, v float64 }

// prism extrudes a convex counter-clockwise outline from w0 to w1 (w0 < w1)
func (s *Stream) prism(p plane, outline []point2, w0, w1 float64) {
	n := len(outline)
	at := func(i int, w float64) r3.Vec {
		q := outline[i%n]
		return p.point(q.u, q.v, w)
	}

	for i := 1; i < n-1; i++ {
		s.Triangle(at(0, w1), at(i, w1), at(i+1, w1))
		s.Triangle(at(0, w0), at(i+1, w0), at(i, w0))
	}
	for i := 0; i < n; i++ {
		s.Quad(at(i, w0), at(i+1, w0), at(i+1, w1), at(i, w1))
	}
}

// box appends an axis aligned cuboid
func (s *Stream) box(min, size r3.Vec) {
	s.prism(planeXY, []point2{
		{min.X, min.Y},
		{min.X + size.X, min.Y},
		{min.X + size.X, min.Y + size.Y},
		{min.X, min.Y + size.Y},
	}, min.Z, min.Z+size.Z)
}

// ring extrudes the region between two counter-clockwise outlines with the
// same number of vertices, inner lying inside outer
func (s *Stream) ring(p plane, outer, inner []point2, w0, w1 float64) {
	n := len(outer)
	o := func(i int, w float64) r3.Vec {
		q := outer[i%n]
		return p.point(q.u, q.v, w)
	}
	in := func(i int, w float64) r3.Vec {
		q := inner[i%n]
		return p.point(q.u, q.v, w)
	}

	for i := 0; i < n; i++ {
		s.Quad(o(i, w1), o(i+1, w1), in(i+1, w1), in(i, w1))
		s.Quad(o(i, w0), in(i, w0), in(i+1, w0), o(i+1, w0))
		s.Quad(o(i, w0), o(i+1, w0), o(i+1, w1), o(i, w1))
		s.Quad(in(i, w0), in(i, w1), in(i+1, w1), in(i+1, w0))
	}
}
