package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())
	if result != m {
		t.Errorf("M * I should equal M, got %v", result)
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(10, 20, 30).Mul(Scale(2, 2, 2))
	got := m.TransformPoint(Vec3{1, 2, 3})
	want := Vec3{12, 24, 36}
	if got != want {
		t.Errorf("TransformPoint: got %v, want %v", got, want)
	}
}

func TestAtIsColumnMajor(t *testing.T) {
	m := Translate(5, 6, 7)
	if m.At(0, 3) != 5 || m.At(1, 3) != 6 || m.At(2, 3) != 7 {
		t.Errorf("translation column = %v %v %v", m.At(0, 3), m.At(1, 3), m.At(2, 3))
	}
	if m.At(3, 0) != 0 {
		t.Errorf("bottom row = %v", m.At(3, 0))
	}
}

func TestMulOrder(t *testing.T) {
	// Scale first, then translate.
	m := Translate(1, 0, 0).Mul(Scale(3, 3, 3))
	if got := m.TransformPoint(Vec3{1, 1, 1}); got != (Vec3{4, 3, 3}) {
		t.Errorf("got %v, want {4 3 3}", got)
	}
	if got := m.TransformDir(Vec3{1, 0, 0}); got != (Vec3{3, 0, 0}) {
		t.Errorf("TransformDir ignored scale or picked up translation: %v", got)
	}
}

func TestNormalMatrix(t *testing.T) {
	// Pure translation must not affect normals.
	n := Translate(100, 200, 300).NormalMatrix()
	if n != Identity() {
		t.Errorf("NormalMatrix of translation = %v, want identity", n)
	}

	// Non-uniform scale: normal of the plane x = y scaled by (2,1,1)
	// must stay perpendicular to the scaled plane.
	m := Scale(2, 1, 1)
	normal := m.NormalMatrix().TransformDir(Vec3{1, -1, 0})
	tangent := m.TransformDir(Vec3{1, 1, 0})
	if d := normal.Dot(tangent); abs(d) > 1e-5 {
		t.Errorf("normal not perpendicular after scale, dot = %f", d)
	}

	// Rotation by 90 degrees about Z is its own inverse transpose.
	rot := Mat4{
		0, 1, 0, 0,
		-1, 0, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	if got := rot.NormalMatrix(); got != rot {
		t.Errorf("NormalMatrix of rotation = %v, want %v", got, rot)
	}

	if got := Scale(0, 1, 1).NormalMatrix(); got != Identity() {
		t.Errorf("singular matrix should yield identity, got %v", got)
	}
}

func TestPerspective(t *testing.T) {
	m := Perspective(float32(math.Pi/4), 1.0, 0.1, 100.0)
	if m[0] == 0 || m[5] == 0 {
		t.Error("Perspective should have non-zero elements")
	}
	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}
}

func TestLookAt(t *testing.T) {
	eye := Vec3{0, 0, 5}
	m := LookAt(eye, Vec3{}, Vec3{0, 1, 0})
	got := m.TransformPoint(eye)
	if got.Length() > 1e-5 {
		t.Errorf("eye should map to the origin, got %v", got)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
