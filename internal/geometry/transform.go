package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Matrix is a 3MF affine transform: m11 m12 m13 m21 m22 m23 m31 m32 m33 tx ty tz.
// Points are row vectors, so x' = x*m11 + y*m21 + z*m31 + tx.
type Matrix [12]float64

// Identity is the transform that leaves points unchanged
var Identity = Matrix{1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0}

// Apply transforms a single point
func (m Matrix) Apply(p r3.Vec) r3.Vec {
	return r3.Vec{
		X: p.X*m[0] + p.Y*m[3] + p.Z*m[6] + m[9],
		Y: p.X*m[1] + p.Y*m[4] + p.Z*m[7] + m[10],
		Z: p.X*m[2] + p.Y*m[5] + p.Z*m[8] + m[11],
	}
}

// ParseTransform reads a 3MF transform attribute. An empty string is the identity.
func ParseTransform(transform string) (Matrix, error) {
	if transform == "" {
		return Identity, nil
	}

	var m Matrix
	_, err := fmt.Sscanf(transform, "%g %g %g %g %g %g %g %g %g %g %g %g",
		&m[0], &m[1], &m[2],
		&m[3], &m[4], &m[5],
		&m[6], &m[7], &m[8],
		&m[9], &m[10], &m[11])
	if err != nil {
		return Identity, fmt.Errorf("invalid transform %q: %w", transform, err)
	}
	return m, nil
}

// BuildRotationTransform creates a 3MF transformation matrix string with rotation and translation.
// Rotations are applied in the order: Z, Y, X (intrinsic rotations)
func BuildRotationTransform(rotX, rotY, rotZ, tx, ty, tz float64) string {
	rx := rotX * math.Pi / 180.0
	ry := rotY * math.Pi / 180.0
	rz := rotZ * math.Pi / 180.0

	cosX, sinX := math.Cos(rx), math.Sin(rx)
	cosY, sinY := math.Cos(ry), math.Sin(ry)
	cosZ, sinZ := math.Cos(rz), math.Sin(rz)

	m := Matrix{
		cosY * cosZ,
		cosY * sinZ,
		-sinY,

		sinX*sinY*cosZ - cosX*sinZ,
		sinX*sinY*sinZ + cosX*cosZ,
		sinX * cosY,

		cosX*sinY*cosZ + sinX*sinZ,
		cosX*sinY*sinZ - sinX*cosZ,
		cosX * cosY,

		tx, ty, tz,
	}
	return m.String()
}

// BuildTranslationTransform creates a simple translation transformation matrix (no rotation)
func BuildTranslationTransform(tx, ty, tz float64) string {
	return fmt.Sprintf("1 0 0 0 1 0 0 0 1 %.2f %.2f %.2f", tx, ty, tz)
}

// String formats the matrix as a 3MF transform attribute. Tiny rotation
// terms are snapped to zero so right angles stay exact.
func (m Matrix) String() string {
	r := m
	for i := 0; i < 9; i++ {
		if math.Abs(r[i]) < 1e-12 {
			r[i] = 0
		}
	}
	return fmt.Sprintf("%.8f %.8f %.8f %.8f %.8f %.8f %.8f %.8f %.8f %.2f %.2f %.2f",
		r[0], r[1], r[2],
		r[3], r[4], r[5],
		r[6], r[7], r[8],
		r[9], r[10], r[11])
}
