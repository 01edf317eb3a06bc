package inspect

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/philipparndt/golitho/internal/geometry"
	"github.com/philipparndt/golitho/internal/models"
	"github.com/philipparndt/golitho/internal/stl"
	"github.com/philipparndt/golitho/internal/threemf"
)

// Summary describes a mesh file
type Summary struct {
	Path      string
	Format    string
	Name      string
	FileSize  int64
	Objects   int
	Triangles int
	Vertices  int // unique vertex positions
	NonFinite int
	Bounds    *geometry.BoundingBox
	Volume    float64 // mm³, positive for outward facing triangles
	Metadata  []models.Metadata
}

// Inspector provides functionality to inspect STL and 3MF files
type Inspector struct{}

// NewInspector creates a new Inspector
func NewInspector() *Inspector {
	return &Inspector{}
}

// Inspect reads a mesh file and prints its summary
func (i *Inspector) Inspect(filename string) error {
	summary, err := i.Summarize(filename)
	if err != nil {
		return err
	}
	NewPrinter().Print(summary)
	return nil
}

// Summarize reads an STL or 3MF file and collects its key figures
func (i *Inspector) Summarize(filename string) (*Summary, error) {
	info, err := os.Stat(filename)
	if err != nil {
		return nil, fmt.Errorf("file not found: %s", filename)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", filename)
	}

	var summary *Summary
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".3mf":
		summary, err = i.summarize3MF(filename)
	default:
		summary, err = i.summarizeSTL(filename)
	}
	if err != nil {
		return nil, err
	}

	summary.Path = filename
	summary.FileSize = info.Size()
	return summary, nil
}

func (i *Inspector) summarizeSTL(filename string) (*Summary, error) {
	mesh, err := stl.NewParser().Parse(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading STL file: %w", err)
	}

	format := "ASCII STL"
	if mesh.Binary {
		format = "binary STL"
	}

	summary := &Summary{
		Format:    format,
		Name:      mesh.Name,
		Objects:   1,
		Triangles: len(mesh.Triangles),
		NonFinite: mesh.NonFinite(),
	}
	fill(summary, mesh.Vertices())
	return summary, nil
}

func (i *Inspector) summarize3MF(filename string) (*Summary, error) {
	model, err := threemf.NewReader().Read(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading 3MF file: %w", err)
	}

	placed, err := threemf.PlacedVertices(model)
	if err != nil {
		return nil, fmt.Errorf("error reading 3MF file: %w", err)
	}

	objects, _, triangles := threemf.Counts(model)
	summary := &Summary{
		Format:    "3MF",
		Objects:   objects,
		Triangles: triangles,
		Metadata:  model.Metadata,
	}
	if objects > 0 {
		summary.Name = model.Resources.Objects[0].Name
	}
	fill(summary, placed)
	return summary, nil
}

// fill derives the geometric figures from a flat triangle list
func fill(summary *Summary, vertices []r3.Vec) {
	unique := make(map[r3.Vec]struct{}, len(vertices)/2)
	for _, v := range vertices {
		unique[v] = struct{}{}
	}
	summary.Vertices = len(unique)

	if bbox, err := geometry.CalculateBoundingBox(vertices); err == nil {
		summary.Bounds = bbox
	}
	summary.Volume = geometry.SignedVolume(vertices)
}
