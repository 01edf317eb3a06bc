package geometry

import (
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestBuildTranslationTransform(t *testing.T) {
	result := BuildTranslationTransform(10.5, 20.75, 5.25)
	expected := "1 0 0 0 1 0 0 0 1 10.50 20.75 5.25"

	if result != expected {
		t.Errorf("BuildTranslationTransform() = %v, want %v", result, expected)
	}
}

func TestBuildRotationTransform_NoRotation(t *testing.T) {
	result := BuildRotationTransform(0, 0, 0, 10, 20, 30)
	expected := "1.00000000 0.00000000 0.00000000 0.00000000 1.00000000 0.00000000 0.00000000 0.00000000 1.00000000 10.00 20.00 30.00"

	if result != expected {
		t.Errorf("BuildRotationTransform() = %v, want %v", result, expected)
	}
}

func TestBuildRotationTransform_45DegreeZ(t *testing.T) {
	m, err := ParseTransform(BuildRotationTransform(0, 0, 45, 0, 0, 0))
	if err != nil {
		t.Fatal(err)
	}

	c := math.Cos(45 * math.Pi / 180)
	s := math.Sin(45 * math.Pi / 180)
	want := map[int]float64{0: c, 1: s, 3: -s, 4: c, 8: 1}
	for i, v := range want {
		if math.Abs(m[i]-v) > 1e-6 {
			t.Errorf("m[%d] = %v, want ≈%v", i, m[i], v)
		}
	}
}

func TestBuildRotationTransform_Combined(t *testing.T) {
	parts := strings.Fields(BuildRotationTransform(30, 45, 60, 10, 20, 30))
	if len(parts) != 12 {
		t.Fatalf("Expected 12 values, got %d", len(parts))
	}

	for i, want := range []string{"10.00", "20.00", "30.00"} {
		if parts[9+i] != want {
			t.Errorf("translation[%d] = %v, want %v", i, parts[9+i], want)
		}
	}
}

// TestUprightRotation checks that a 90° X rotation stands a panel on its bottom edge
func TestUprightRotation(t *testing.T) {
	m, err := ParseTransform(BuildRotationTransform(90, 0, 0, 0, 0, 0))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		in, want r3.Vec
	}{
		{r3.Vec{X: 1, Y: 0, Z: 0}, r3.Vec{X: 1, Y: 0, Z: 0}},
		{r3.Vec{X: 0, Y: 1, Z: 0}, r3.Vec{X: 0, Y: 0, Z: 1}},
		{r3.Vec{X: 0, Y: 0, Z: 1}, r3.Vec{X: 0, Y: -1, Z: 0}},
	}

	for _, tt := range tests {
		got := m.Apply(tt.in)
		if r3.Norm(r3.Sub(got, tt.want)) > 1e-9 {
			t.Errorf("Apply(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseTransform(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		point   r3.Vec
		want    r3.Vec
	}{
		{"empty is identity", "", false, r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: 1, Y: 2, Z: 3}},
		{"translation", "1 0 0 0 1 0 0 0 1 5 -1 2.5", false, r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: 6, Y: 1, Z: 5.5}},
		{"too short", "1 0 0", true, r3.Vec{}, r3.Vec{}},
		{"garbage", "a b c d e f g h i j k l", true, r3.Vec{}, r3.Vec{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseTransform(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTransform() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := m.Apply(tt.point); got != tt.want {
				t.Errorf("Apply(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}
