// Package convert rewrites finished models between the STL and 3MF formats.
package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/philipparndt/golitho/internal/config"
	"github.com/philipparndt/golitho/internal/preconditions"
	"github.com/philipparndt/golitho/internal/stl"
	"github.com/philipparndt/golitho/internal/threemf"
)

// Options controls a conversion
type Options struct {
	Format          string
	Upright         bool
	AlwaysOverwrite bool
	// Overwrite is asked before an existing output is replaced
	Overwrite func(path string) bool
}

// Result describes a finished conversion
type Result struct {
	Output    string
	Triangles int
	Written   int64
}

// Converter converts mesh files
type Converter struct{}

// NewConverter creates a new Converter
func NewConverter() *Converter {
	return &Converter{}
}

// Convert reads the triangles of an STL or 3MF file and writes them to output
// in opts.Format. An empty output is derived from the input name.
func (c *Converter) Convert(input, output string, opts Options) (*Result, error) {
	format := opts.Format
	if format == "" {
		format = config.FormatBinary
	}
	if output == "" {
		output = OutputPath(input, format)
	}

	same, err := samePath(input, output)
	if err != nil {
		return nil, err
	}
	if same {
		return nil, fmt.Errorf("output %s would replace the input", output)
	}

	vertices, err := c.readTriangles(input)
	if err != nil {
		return nil, err
	}

	if err := preconditions.ValidateOutputPath(output); err != nil {
		return nil, err
	}
	if err := preconditions.CheckOverwrite(output, opts.AlwaysOverwrite, opts.Overwrite); err != nil {
		return nil, err
	}

	switch format {
	case config.FormatBinary:
		err = stl.WriteFile(output, vertices, stl.Binary)
	case config.FormatASCII:
		err = stl.WriteFile(output, vertices, stl.ASCII)
	case config.Format3MF:
		err = threemf.NewWriter().Write(output, vertices, threemf.Options{
			Name:    strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)),
			Upright: opts.Upright,
		})
	default:
		return nil, fmt.Errorf("%w: unknown format %q", config.ErrInvalidParameters, format)
	}
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(output)
	if err != nil {
		return nil, err
	}
	return &Result{
		Output:    output,
		Triangles: len(vertices) / 3,
		Written:   info.Size(),
	}, nil
}

// readTriangles returns the placed triangles of a model file
func (c *Converter) readTriangles(input string) ([]r3.Vec, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("file not found: %s", input)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", input)
	}

	if strings.EqualFold(filepath.Ext(input), ".3mf") {
		model, err := threemf.NewReader().Read(input)
		if err != nil {
			return nil, fmt.Errorf("error reading 3MF file: %w", err)
		}
		return threemf.PlacedVertices(model)
	}

	mesh, err := stl.NewParser().Parse(input)
	if err != nil {
		return nil, fmt.Errorf("error reading STL file: %w", err)
	}
	if n := mesh.NonFinite(); n > 0 {
		return nil, fmt.Errorf("%s has %d triangles with non-finite coordinates", input, n)
	}
	return mesh.Vertices(), nil
}

// OutputPath derives the output file for input in the given format. STL to
// STL conversions get a suffix naming the target encoding.
func OutputPath(input, format string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	switch format {
	case config.Format3MF:
		return base + ".3mf"
	case config.FormatASCII:
		if strings.EqualFold(filepath.Ext(input), ".stl") {
			return base + "-ascii.stl"
		}
	default:
		if strings.EqualFold(filepath.Ext(input), ".stl") {
			return base + "-binary.stl"
		}
	}
	return base + ".stl"
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}
