package convert

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/philipparndt/golitho/internal/config"
	"github.com/philipparndt/golitho/internal/preconditions"
	"github.com/philipparndt/golitho/internal/stl"
	"github.com/philipparndt/golitho/internal/threemf"
)

// tetrahedron returns a closed, outward facing tetrahedron
func tetrahedron() []r3.Vec {
	o := r3.Vec{}
	x := r3.Vec{X: 10}
	y := r3.Vec{Y: 10}
	z := r3.Vec{Z: 10}
	return []r3.Vec{
		o, y, x,
		o, x, z,
		o, z, y,
		x, y, z,
	}
}

func writeSTL(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "part.stl")
	if err := stl.WriteFile(path, tetrahedron(), stl.Binary); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConvertSTLTo3MFAndBack(t *testing.T) {
	dir := t.TempDir()
	source := writeSTL(t, dir)

	result, err := NewConverter().Convert(source, "", Options{Format: config.Format3MF})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if result.Output != filepath.Join(dir, "part.3mf") || result.Triangles != 4 {
		t.Errorf("result = %+v", result)
	}

	model, err := threemf.NewReader().Read(result.Output)
	if err != nil {
		t.Fatal(err)
	}
	if model.Resources.Objects[0].Name != "part" {
		t.Errorf("object name = %q, want part", model.Resources.Objects[0].Name)
	}

	back, err := NewConverter().Convert(result.Output, filepath.Join(dir, "back.stl"), Options{Format: config.FormatASCII})
	if err != nil {
		t.Fatalf("Convert() back error = %v", err)
	}
	mesh, err := stl.NewParser().Parse(back.Output)
	if err != nil {
		t.Fatal(err)
	}
	if mesh.Binary || len(mesh.Triangles) != 4 {
		t.Errorf("converted back to binary=%v with %d triangles", mesh.Binary, len(mesh.Triangles))
	}
}

func TestConvertRejects(t *testing.T) {
	dir := t.TempDir()
	source := writeSTL(t, dir)
	existing := filepath.Join(dir, "existing.stl")
	if err := os.WriteFile(existing, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		input  string
		output string
		opts   Options
		is     error
	}{
		{"same file", source, source, Options{Format: config.FormatASCII}, nil},
		{"missing input", filepath.Join(dir, "missing.stl"), "", Options{}, nil},
		{"existing output", source, existing, Options{}, preconditions.ErrOutputExists},
		{"declined overwrite", source, existing, Options{Overwrite: func(string) bool { return false }}, preconditions.ErrOutputExists},
		{"unknown format", source, filepath.Join(dir, "x.obj"), Options{Format: "obj"}, config.ErrInvalidParameters},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConverter().Convert(tt.input, tt.output, tt.opts)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("error = %v, want %v", err, tt.is)
			}
		})
	}

	data, _ := os.ReadFile(existing)
	if string(data) != "keep" {
		t.Error("existing output was replaced")
	}
}

func TestConvertOverwriteConfirmed(t *testing.T) {
	dir := t.TempDir()
	source := writeSTL(t, dir)
	target := filepath.Join(dir, "target.stl")
	if err := os.WriteFile(target, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := NewConverter().Convert(source, target, Options{Overwrite: func(string) bool { return true }})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if result.Written != stl.Size(4) {
		t.Errorf("Written = %d, want %d", result.Written, stl.Size(4))
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input  string
		format string
		want   string
	}{
		{"a/panel.stl", config.Format3MF, "a/panel.3mf"},
		{"a/panel.3mf", config.FormatBinary, "a/panel.stl"},
		{"a/panel.3mf", config.FormatASCII, "a/panel.stl"},
		{"a/panel.stl", config.FormatASCII, "a/panel-ascii.stl"},
		{"a/panel.STL", config.FormatBinary, "a/panel-binary.stl"},
	}

	for _, tt := range tests {
		if got := OutputPath(tt.input, tt.format); got != tt.want {
			t.Errorf("OutputPath(%q, %q) = %q, want %q", tt.input, tt.format, got, tt.want)
		}
	}
}
