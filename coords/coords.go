// Package coords provides the affine geometry used throughout the
// conversion pipeline: 2D matrices, points, rectangles, and the
// quadrilaterals that carry recognized text geometry between image,
// pixel, and page coordinate spaces.
package coords

import (
	"errors"
	"math"
)

// Matrix is a 2D affine transform in the order [a b c d e f], applied as
// x' = a*x + c*y + e, y' = b*x + d*y + f.
type Matrix [6]float64

// Identity returns the identity transform.
func Identity() Matrix { return Matrix{1, 0, 0, 1, 0, 0} }

// Multiply returns m followed by o.
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		m[0]*o[0] + m[1]*o[2],
		m[0]*o[1] + m[1]*o[3],
		m[2]*o[0] + m[3]*o[2],
		m[2]*o[1] + m[3]*o[3],
		m[4]*o[0] + m[5]*o[2] + o[4],
		m[4]*o[1] + m[5]*o[3] + o[5],
	}
}

// Point is a position in an arbitrary 2D coordinate space.
type Point struct {
	X, Y float64
}

// Transform applies the matrix to a point.
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Inverse returns the inverse transform, or an error for a singular matrix.
func (m Matrix) Inverse() (Matrix, error) {
	det := m[0]*m[3] - m[1]*m[2]
	if math.Abs(det) < 1e-10 {
		return Matrix{}, errors.New("matrix singular")
	}
	return Matrix{
		m[3] / det,
		-m[1] / det,
		-m[2] / det,
		m[0] / det,
		(m[2]*m[5] - m[3]*m[4]) / det,
		(m[1]*m[4] - m[0]*m[5]) / det,
	}, nil
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix { return Matrix{1, 0, 0, 1, tx, ty} }

// Scale returns a scaling matrix.
func Scale(sx, sy float64) Matrix { return Matrix{sx, 0, 0, sy, 0, 0} }

// Rotate returns a counter-clockwise rotation matrix; angle is in radians.
func Rotate(angle float64) Matrix {
	c := math.Cos(angle)
	s := math.Sin(angle)
	return Matrix{c, s, -s, c, 0, 0}
}
