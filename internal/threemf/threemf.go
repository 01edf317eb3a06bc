package threemf

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/philipparndt/golitho/internal/geometry"
	"github.com/philipparndt/golitho/internal/models"
	"github.com/philipparndt/golitho/internal/stl"
)

const modelPath = "3D/3dmodel.model"

// Options controls how a stream is packaged
type Options struct {
	// Name is stored as the object name and the model title
	Name string
	// Upright rotates the panel 90° about X so it stands on its bottom edge
	Upright bool
}

// Reader reads 3MF files
type Reader struct{}

// NewReader creates a new 3MF reader
func NewReader() *Reader {
	return &Reader{}
}

// Read reads and parses a 3MF file
func (r *Reader) Read(filename string) (*models.Model, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("error opening ZIP: %w", err)
	}
	defer zr.Close()

	var modelFile *zip.File
	for _, f := range zr.File {
		if f.Name == modelPath {
			modelFile = f
			break
		}
	}

	if modelFile == nil {
		return nil, fmt.Errorf("%s not found in archive", modelPath)
	}

	rc, err := modelFile.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening model file: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("error reading model file: %w", err)
	}

	var model models.Model
	if err := xml.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("error parsing XML: %w", err)
	}

	return &model, nil
}

// PlacedVertices returns every triangle corner of the model's build items
// with the item transform applied, three vertices per triangle
func PlacedVertices(model *models.Model) ([]r3.Vec, error) {
	objects := make(map[string]*models.Object, len(model.Resources.Objects))
	for i := range model.Resources.Objects {
		obj := &model.Resources.Objects[i]
		objects[obj.ID] = obj
	}

	var placed []r3.Vec
	for _, item := range model.Build.Items {
		obj, ok := objects[item.ObjectID]
		if !ok || obj.Mesh == nil {
			return nil, fmt.Errorf("build item references unknown object %s", item.ObjectID)
		}
		transform, err := geometry.ParseTransform(item.Transform)
		if err != nil {
			return nil, err
		}

		vertices := obj.Mesh.Vertices.Vertex
		for _, tri := range obj.Mesh.Triangles.Triangle {
			for _, idx := range [3]int{tri.V1, tri.V2, tri.V3} {
				if idx < 0 || idx >= len(vertices) {
					return nil, fmt.Errorf("object %s: vertex index %d out of range", obj.ID, idx)
				}
				v := vertices[idx]
				placed = append(placed, transform.Apply(r3.Vec{X: v.X, Y: v.Y, Z: v.Z}))
			}
		}
	}
	return placed, nil
}

// Writer writes 3MF files
type Writer struct{}

// NewWriter creates a new 3MF writer
func NewWriter() *Writer {
	return &Writer{}
}

// BuildModel indexes the triangle stream into a single object model. The
// build item moves the part onto the plate, standing upright if requested.
func (w *Writer) BuildModel(vertices []r3.Vec, opts Options) (*models.Model, error) {
	if len(vertices) == 0 || len(vertices)%3 != 0 {
		return nil, stl.ErrEmptyStream
	}

	mesh := &models.Mesh{}
	index := make(map[r3.Vec]int)
	vertexIndex := func(v r3.Vec) int {
		if idx, exists := index[v]; exists {
			return idx
		}
		index[v] = len(mesh.Vertices.Vertex)
		mesh.Vertices.Vertex = append(mesh.Vertices.Vertex, models.Vertex{X: v.X, Y: v.Y, Z: v.Z})
		return index[v]
	}

	mesh.Triangles.Triangle = make([]models.Triangle, 0, len(vertices)/3)
	for i := 0; i < len(vertices); i += 3 {
		mesh.Triangles.Triangle = append(mesh.Triangles.Triangle, models.Triangle{
			V1: vertexIndex(vertices[i]),
			V2: vertexIndex(vertices[i+1]),
			V3: vertexIndex(vertices[i+2]),
		})
	}

	bbox, err := geometry.CalculateBoundingBox(vertices)
	if err != nil {
		return nil, err
	}
	transform := geometry.BuildTranslationTransform(-bbox.Min.X, -bbox.Min.Y, -bbox.Min.Z)
	if opts.Upright {
		// x' = x, y' = -z, z' = y
		transform = geometry.BuildRotationTransform(90, 0, 0, -bbox.Min.X, bbox.Max.Z, -bbox.Min.Y)
	}

	name := opts.Name
	if name == "" {
		name = "lithophane"
	}

	return &models.Model{
		Xmlns: models.CoreNamespace,
		Unit:  "millimeter",
		Lang:  "en-US",
		Metadata: []models.Metadata{
			{Name: "Application", Value: "golitho"},
			{Name: "Title", Value: name},
		},
		Resources: models.Resources{
			Objects: []models.Object{{ID: "1", Name: name, Type: "model", Mesh: mesh}},
		},
		Build: models.Build{
			Items: []models.Item{{ObjectID: "1", Transform: transform}},
		},
	}, nil
}

// Write packages the triangle stream as a 3MF file. Like the STL encoder it
// goes through stl.WriteAtomic.
func (w *Writer) Write(outputFile string, vertices []r3.Vec, opts Options) error {
	model, err := w.BuildModel(vertices, opts)
	if err != nil {
		return err
	}

	return stl.WriteAtomic(outputFile, func(out io.Writer) error {
		if err := w.writePackage(out, model); err != nil {
			return fmt.Errorf("%w: %s: %v", stl.ErrWrite, outputFile, err)
		}
		return nil
	})
}

func (w *Writer) writePackage(out io.Writer, model *models.Model) error {
	zipWriter := zip.NewWriter(out)

	contentTypes := models.ContentTypes{
		Xmlns: models.ContentTypesNamespace,
		Defaults: []models.ContentType{
			{Extension: "rels", ContentType: models.RelsContentType},
			{Extension: "model", ContentType: models.ModelContentType},
		},
	}
	rels := models.Relationships{
		Xmlns: models.RelsNamespace,
		Relationships: []models.Relationship{
			{ID: "rel0", Target: "/" + modelPath, Type: models.ModelRelType},
		},
	}

	parts := []struct {
		name  string
		value interface{}
	}{
		{"[Content_Types].xml", contentTypes},
		{"_rels/.rels", rels},
		{modelPath, model},
	}

	for _, part := range parts {
		if err := writeXML(zipWriter, part.name, part.value); err != nil {
			return err
		}
	}

	return zipWriter.Close()
}

func writeXML(zipWriter *zip.Writer, name string, value interface{}) error {
	data, err := xml.MarshalIndent(value, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling %s: %w", name, err)
	}

	writer, err := zipWriter.Create(name)
	if err != nil {
		return fmt.Errorf("error creating %s entry: %w", name, err)
	}
	if _, err := writer.Write([]byte(xml.Header)); err != nil {
		return fmt.Errorf("error writing XML header: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("error writing %s: %w", name, err)
	}
	return nil
}

// Counts summarizes a parsed model
func Counts(model *models.Model) (objects, vertices, triangles int) {
	for _, obj := range model.Resources.Objects {
		objects++
		if obj.Mesh == nil {
			continue
		}
		vertices += len(obj.Mesh.Vertices.Vertex)
		triangles += len(obj.Mesh.Triangles.Triangle)
	}
	return objects, vertices, triangles
}
