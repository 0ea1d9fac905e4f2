package math

import "math"

// Mat4 is a 4x4 matrix in column-major order, the layout std140 uniform
// blocks and OpenGL expect. Element (row, col) is m[col*4+row].
type Mat4 [16]float32

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// At returns element (row, col).
func (m Mat4) At(row, col int) float32 { return m[col*4+row] }

// Perspective returns a right-handed projection onto GL clip space.
// fovY is in radians, aspect is width/height.
func Perspective(fovY, aspect, near, far float32) Mat4 {
	f := float32(1 / math.Tan(float64(fovY)/2))
	nf := 1 / (near - far)

	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, -1,
		0, 0, 2 * far * near * nf, 0,
	}
}

// LookAt returns a view matrix for a camera at eye facing center.
func LookAt(eye, center, up Vec3) Mat4 {
	fwd := center.Sub(eye).Normalize()
	side := fwd.Cross(up).Normalize()
	camUp := side.Cross(fwd)

	return Mat4{
		side.X, camUp.X, -fwd.X, 0,
		side.Y, camUp.Y, -fwd.Y, 0,
		side.Z, camUp.Z, -fwd.Z, 0,
		-side.Dot(eye), -camUp.Dot(eye), fwd.Dot(eye), 1,
	}
}

// Translate returns a translation matrix.
func Translate(x, y, z float32) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = x, y, z
	return m
}

// Scale returns a scale matrix.
func Scale(x, y, z float32) Mat4 {
	m := Identity()
	m[0], m[5], m[10] = x, y, z
	return m
}

// Mul returns m * o, so o is applied first.
func (m Mat4) Mul(o Mat4) Mat4 {
	var r Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			r[col*4+row] = m[row]*o[col*4] + m[4+row]*o[col*4+1] +
				m[8+row]*o[col*4+2] + m[12+row]*o[col*4+3]
		}
	}
	return r
}

// TransformPoint transforms a position (w = 1).
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	return m.TransformDir(p).Add(Vec3{m[12], m[13], m[14]})
}

// TransformDir transforms a direction (w = 0).
func (m Mat4) TransformDir(d Vec3) Vec3 {
	return Vec3{
		m[0]*d.X + m[4]*d.Y + m[8]*d.Z,
		m[1]*d.X + m[5]*d.Y + m[9]*d.Z,
		m[2]*d.X + m[6]*d.Y + m[10]*d.Z,
	}
}

// NormalMatrix returns the inverse transpose of m's upper 3x3 embedded in
// a 4x4 with no translation, so normals stay perpendicular to surfaces
// under non-uniform scale. A singular m yields the identity.
func (m Mat4) NormalMatrix() Mat4 {
	a, b, c := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	d, e, f := m.At(1, 0), m.At(1, 1), m.At(1, 2)
	g, h, i := m.At(2, 0), m.At(2, 1), m.At(2, 2)

	// Cofactors of the 3x3; the inverse transpose is cof / det.
	c00, c01, c02 := e*i-f*h, f*g-d*i, d*h-e*g
	c10, c11, c12 := c*h-b*i, a*i-c*g, b*g-a*h
	c20, c21, c22 := b*f-c*e, c*d-a*f, a*e-b*d

	det := a*c00 + b*c01 + c*c02
	if det == 0 {
		return Identity()
	}
	inv := 1 / det

	var n Mat4
	set := func(row, col int, v float32) { n[col*4+row] = v * inv }
	set(0, 0, c00)
	set(0, 1, c01)
	set(0, 2, c02)
	set(1, 0, c10)
	set(1, 1, c11)
	set(1, 2, c12)
	set(2, 0, c20)
	set(2, 1, c21)
	set(2, 2, c22)
	n[15] = 1
	return n
}
