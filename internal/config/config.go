package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// ErrInvalidParameters is returned when render parameters are inconsistent
var ErrInvalidParameters = errors.New("invalid parameters")

// Output formats
const (
	FormatBinary = "binary"
	FormatASCII  = "ascii"
	Format3MF    = "3mf"
)

// Downscale policies for oversized images
const (
	DownscaleAsk    = "ask"
	DownscaleAlways = "always"
	DownscaleNever  = "never"
)

// MaxHangerCount limits the number of hangers along the top edge
const MaxHangerCount = 20

// Params holds every value that shapes a render. The kong tags make the
// struct embeddable as a flag group; the yaml tags match the flag names so
// that a settings file and the command line share one vocabulary.
type Params struct {
	MinThickness   float64 `yaml:"min-thickness" help:"Thickness at the thinnest point (mm)" default:"0.8" group:"Geometry"`
	TotalThickness float64 `yaml:"total-thickness" help:"Thickness at the thickest point (mm)" default:"4.0" group:"Geometry"`
	FrameBorder    float64 `yaml:"frame-border" help:"Width of the frame band (mm)" default:"3.0" group:"Geometry"`
	PanelWidth     float64 `yaml:"panel-width" help:"Total output width including the frame (mm)" default:"150.0" group:"Geometry"`

	Frame      bool    `yaml:"frame" help:"Add a beveled frame around the panel" default:"true" negatable:"" group:"Frame"`
	FrameSlope float64 `yaml:"frame-slope" help:"Bevel run of the frame opening in half border widths (0: square, 2: full border)" default:"1.0" group:"Frame"`

	Stabilizers          bool    `yaml:"stabilizers" help:"Add stabilizer feet on tall panels" default:"true" negatable:"" group:"Stabilizers"`
	StabilizerThreshold  float64 `yaml:"stabilizer-threshold" help:"Minimum panel height that gets stabilizers (mm)" default:"60" group:"Stabilizers"`
	StabilizerHeight     float64 `yaml:"stabilizer-height" help:"Stabilizer height as a fraction of the panel height" default:"0.1" group:"Stabilizers"`
	PermanentStabilizers bool    `yaml:"permanent-stabilizers" help:"Attach stabilizers without a snap-off gap" group:"Stabilizers"`

	Hangers     bool `yaml:"hangers" help:"Add wall-mount hangers on the top edge" default:"true" negatable:"" group:"Hangers"`
	HangerCount int  `yaml:"hanger-count" help:"Number of hangers" default:"2" group:"Hangers"`

	Format          string `yaml:"format" help:"Output format (binary, ascii, 3mf)" enum:"binary,ascii,3mf" default:"binary" short:"f" group:"Output"`
	AlwaysOverwrite bool   `yaml:"always-overwrite" help:"Overwrite existing output files without asking" group:"Output"`
	Upright         bool   `yaml:"upright" help:"Stand the panel on its bottom edge in 3MF output" group:"Output"`

	MaxDimension int    `yaml:"max-dimension" help:"Largest accepted image side before downscaling (px)" default:"2000" group:"Image"`
	Downscale    string `yaml:"downscale" help:"Downscale oversized images (ask, always, never)" enum:"ask,always,never" default:"ask" group:"Image"`
}

// Default returns the parameters used when nothing else is configured
func Default() Params {
	return Params{
		MinThickness:        0.8,
		TotalThickness:      4.0,
		FrameBorder:         3.0,
		PanelWidth:          150.0,
		Frame:               true,
		FrameSlope:          1.0,
		Stabilizers:         true,
		StabilizerThreshold: 60,
		StabilizerHeight:    0.1,
		Hangers:             true,
		HangerCount:         2,
		Format:              FormatBinary,
		MaxDimension:        2000,
		Downscale:           DownscaleAsk,
	}
}

// Check validates the parameters. It is named Check rather than Validate so
// kong does not run it implicitly during parsing.
func (p Params) Check() error {
	floats := []struct {
		name  string
		value float64
	}{
		{"min thickness", p.MinThickness},
		{"total thickness", p.TotalThickness},
		{"frame border", p.FrameBorder},
		{"panel width", p.PanelWidth},
		{"frame slope", p.FrameSlope},
		{"stabilizer threshold", p.StabilizerThreshold},
		{"stabilizer height", p.StabilizerHeight},
	}
	for _, f := range floats {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be a finite number (got %g)", ErrInvalidParameters, f.name, f.value)
		}
	}

	if p.MinThickness <= 0 {
		return fmt.Errorf("%w: min thickness must be positive (got %g)", ErrInvalidParameters, p.MinThickness)
	}
	if p.TotalThickness <= p.MinThickness {
		return fmt.Errorf("%w: total thickness %g must exceed min thickness %g", ErrInvalidParameters, p.TotalThickness, p.MinThickness)
	}
	if p.PanelWidth <= 0 {
		return fmt.Errorf("%w: panel width must be positive (got %g)", ErrInvalidParameters, p.PanelWidth)
	}
	if p.FrameBorder < 0 {
		return fmt.Errorf("%w: frame border must not be negative (got %g)", ErrInvalidParameters, p.FrameBorder)
	}
	if 2*p.FrameBorder >= p.PanelWidth {
		return fmt.Errorf("%w: frame border %g leaves no room in a %g mm panel", ErrInvalidParameters, p.FrameBorder, p.PanelWidth)
	}
	if p.FrameSlope < 0 {
		return fmt.Errorf("%w: frame slope must not be negative (got %g)", ErrInvalidParameters, p.FrameSlope)
	}
	if p.Stabilizers && (p.StabilizerHeight <= 0 || p.StabilizerHeight > 1) {
		return fmt.Errorf("%w: stabilizer height must be in (0, 1] (got %g)", ErrInvalidParameters, p.StabilizerHeight)
	}
	if p.Hangers && (p.HangerCount < 1 || p.HangerCount > MaxHangerCount) {
		return fmt.Errorf("%w: hanger count must be 1-%d (got %d)", ErrInvalidParameters, MaxHangerCount, p.HangerCount)
	}
	if p.MaxDimension < 2 {
		return fmt.Errorf("%w: max dimension must be at least 2 (got %d)", ErrInvalidParameters, p.MaxDimension)
	}
	switch p.Format {
	case FormatBinary, FormatASCII, Format3MF:
	default:
		return fmt.Errorf("%w: unknown format %q", ErrInvalidParameters, p.Format)
	}
	switch p.Downscale {
	case DownscaleAsk, DownscaleAlways, DownscaleNever:
	default:
		return fmt.Errorf("%w: unknown downscale policy %q", ErrInvalidParameters, p.Downscale)
	}
	return nil
}

// Extension returns the file extension matching the output format
func (p Params) Extension() string {
	if p.Format == Format3MF {
		return ".3mf"
	}
	return ".stl"
}

// Loader handles loading and saving YAML settings files
type Loader struct{}

// NewLoader creates a new settings loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads a YAML settings file on top of the defaults and validates it
func (l *Loader) Load(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	params := Default()
	if err := yaml.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := params.Check(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}

	return &params, nil
}

// Marshal renders the parameters as a YAML document
func (l *Loader) Marshal(params Params) ([]byte, error) {
	data, err := yaml.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	return data, nil
}

// Save writes the parameters to a YAML file, creating parent directories
func (l *Loader) Save(path string, params Params) error {
	data, err := l.Marshal(params)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// DefaultPaths lists the settings files consulted when no --config is given,
// lowest precedence first
func DefaultPaths() []string {
	return []string{
		"~/.config/golitho/config.yaml",
		"golitho.yaml",
	}
}

// YAMLResolver is a kong.ConfigurationLoader reading flat YAML settings.
// Keys are flag names; underscores are accepted in place of dashes.
func YAMLResolver(r io.Reader) (kong.Resolver, error) {
	values := map[string]interface{}{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML settings: %w", err)
	}

	normalized := make(map[string]string, len(values))
	for key, value := range values {
		switch value.(type) {
		case map[string]interface{}, []interface{}, nil:
			// Only scalar settings map onto flags
			continue
		}
		normalized[normalizeKey(key)] = fmt.Sprint(value)
	}

	var f kong.ResolverFunc = func(context *kong.Context, parent *kong.Path, flag *kong.Flag) (interface{}, error) {
		if value, ok := normalized[normalizeKey(flag.Name)]; ok {
			return value, nil
		}
		return nil, nil
	}
	return f, nil
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.ReplaceAll(key, "_", "-"))
}
