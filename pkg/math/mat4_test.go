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

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestRadians(t *testing.T) {
	if got := Radians(180); abs(got-float32(math.Pi)) > 1e-6 {
		t.Errorf("Radians(180) = %f, want pi", got)
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(10, 20, 30)
	result := m.TransformPoint([3]float32{1, 2, 3})

	expected := [3]float32{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestRotateX90(t *testing.T) {
	m := RotateX(float32(math.Pi / 2))
	result := m.TransformPoint([3]float32{0, 1, 0})

	// (0,1,0) rotates onto +Z
	if abs(result[0]) > 0.001 || abs(result[1]) > 0.001 || abs(result[2]-1) > 0.001 {
		t.Errorf("RotateX 90: got %v, want (0, 0, 1)", result)
	}
}

func TestRotateY90(t *testing.T) {
	m := RotateY(float32(math.Pi / 2))
	result := m.TransformPoint([3]float32{1, 0, 0})

	if abs(result[0]) > 0.001 || abs(result[1]) > 0.001 || abs(result[2]+1) > 0.001 {
		t.Errorf("RotateY 90: got %v, want (0, 0, -1)", result)
	}
}

func TestChainOrder(t *testing.T) {
	// Translate then scale: the offset is scaled too.
	m := Chain(Translate(1, 0, 0), Scale(2, 2, 2))
	got := m.TransformPoint([3]float32{1, 0, 0})
	if got != [3]float32{4, 0, 0} {
		t.Errorf("Chain(translate, scale): got %v, want (4, 0, 0)", got)
	}

	// Scale then translate: the offset is not scaled.
	m = Chain(Scale(2, 2, 2), Translate(1, 0, 0))
	got = m.TransformPoint([3]float32{1, 0, 0})
	if got != [3]float32{3, 0, 0} {
		t.Errorf("Chain(scale, translate): got %v, want (3, 0, 0)", got)
	}
}

func TestChainEmpty(t *testing.T) {
	if Chain() != Identity() {
		t.Error("empty Chain should be identity")
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
	m := LookAt(Vec3{0, 0, 5}, Vec3{}, Vec3{0, 1, 0})

	// The eye maps to the view-space origin.
	got := m.TransformVec3(Vec3{0, 0, 5})
	if got.Length() > 1e-5 {
		t.Errorf("LookAt should map eye to origin, got %v", got)
	}
	// The target sits in front of the camera on -Z.
	got = m.TransformVec3(Vec3{})
	if abs(got.Z+5) > 1e-5 {
		t.Errorf("LookAt target z: got %f, want -5", got.Z)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
