// Package lithophane runs the render pipeline: image preparation, the
// heightfield body and the accessories, and keeps the last good result for
// export.
package lithophane

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/philipparndt/golitho/internal/config"
	"github.com/philipparndt/golitho/internal/imageprep"
	"github.com/philipparndt/golitho/internal/mesh"
	"github.com/philipparndt/golitho/internal/stl"
	"github.com/philipparndt/golitho/internal/threemf"
)

// Errors reported by a session
var (
	ErrImageNotFound     = imageprep.ErrImageNotFound
	ErrImageDecode       = imageprep.ErrImageDecode
	ErrInvalidParameters = config.ErrInvalidParameters
	ErrEmptyStream       = stl.ErrEmptyStream
	ErrWrite             = stl.ErrWrite
)

// Options carries the callbacks of one render
type Options struct {
	// Confirm is asked before downscaling an oversized image when the
	// downscale policy is "ask"
	Confirm func(width, height, limit int) bool
	// Progress receives the body rows built so far
	Progress mesh.Progress
}

// Parts counts the triangles of each part of the model
type Parts struct {
	Body        int
	Frame       int
	Stabilizers int
	Hangers     int
}

// Total returns the number of triangles of all parts
func (p Parts) Total() int {
	return p.Body + p.Frame + p.Stabilizers + p.Hangers
}

// Result is a finished render
type Result struct {
	Stream *mesh.Stream
	Params config.Params
	Source string

	GridWidth, GridHeight     int
	SourceWidth, SourceHeight int
	Downscaled                bool

	Factors mesh.Factors
	Panel   mesh.Panel
	Parts   Parts
}

// Triangles returns the number of triangles in the stream
func (r *Result) Triangles() int {
	return r.Stream.Triangles()
}

// Session renders one image at a time and retains the last successful result
type Session struct {
	mu   sync.Mutex
	last *Result
}

// NewSession creates a session without a result
func NewSession() *Session {
	return &Session{}
}

// Render validates params, prepares the image at path and builds the complete
// triangle stream. The retained result is only replaced when every stage
// succeeds. Concurrent calls are serialized.
func (s *Session) Render(ctx context.Context, path string, params config.Params, opts Options) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := params.Check(); err != nil {
		return nil, err
	}

	prepared, err := imageprep.Load(path, imageprep.Options{
		MaxDimension: params.MaxDimension,
		Confirm:      downscalePolicy(params.Downscale, opts.Confirm),
	})
	if err != nil {
		return nil, err
	}

	result, err := Build(ctx, prepared.Grid, params, opts.Progress)
	if err != nil {
		return nil, err
	}
	result.Source = path
	result.SourceWidth = prepared.SourceWidth
	result.SourceHeight = prepared.SourceHeight
	result.Downscaled = prepared.Downscaled

	s.last = result
	return result, nil
}

// Last returns the retained result, or nil if no render has succeeded
func (s *Session) Last() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Export writes the retained stream to path in the given format
func (s *Session) Export(path, format string) error {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	if last == nil {
		return fmt.Errorf("%w: nothing has been rendered", ErrEmptyStream)
	}
	return Export(path, last, format)
}

// Export writes a result to path. The format is one of config.FormatBinary,
// config.FormatASCII or config.Format3MF.
func Export(path string, result *Result, format string) error {
	if result == nil || result.Stream == nil {
		return ErrEmptyStream
	}

	vertices := result.Stream.Vertices()
	switch format {
	case config.FormatBinary, "":
		return stl.WriteFile(path, vertices, stl.Binary)
	case config.FormatASCII:
		return stl.WriteFile(path, vertices, stl.ASCII)
	case config.Format3MF:
		return threemf.NewWriter().Write(path, vertices, threemf.Options{
			Name:    name(result.Source),
			Upright: result.Params.Upright,
		})
	default:
		return fmt.Errorf("%w: unknown format %q", ErrInvalidParameters, format)
	}
}

// Build turns a prepared grid into the complete triangle stream
func Build(ctx context.Context, grid *imageprep.Grid, params config.Params, progress mesh.Progress) (*Result, error) {
	if err := params.Check(); err != nil {
		return nil, err
	}

	factors := mesh.NewFactors(params, grid.Width)
	panel := factors.Panel(grid.Width, grid.Height)

	body, err := mesh.BuildHeightfield(ctx, grid, factors, progress)
	if err != nil {
		return nil, err
	}

	stream := mesh.NewStream(body.Triangles())
	stream.Append(body)
	parts := Parts{Body: body.Triangles()}

	if params.Frame {
		frame := mesh.Frame(panel, params.FrameSlope)
		stream.Append(frame)
		parts.Frame = frame.Triangles()
	}
	if params.Stabilizers {
		stabilizers := mesh.Stabilizers(panel, mesh.StabilizerOptions{
			Threshold:   params.StabilizerThreshold,
			HeightRatio: params.StabilizerHeight,
			Permanent:   params.PermanentStabilizers,
		})
		stream.Append(stabilizers)
		parts.Stabilizers = stabilizers.Triangles()
	}
	if params.Hangers {
		hangers := mesh.Hangers(panel, params.HangerCount)
		stream.Append(hangers)
		parts.Hangers = hangers.Triangles()
	}

	return &Result{
		Stream:     stream,
		Params:     params,
		GridWidth:  grid.Width,
		GridHeight: grid.Height,
		Factors:    factors,
		Panel:      panel,
		Parts:      parts,
	}, nil
}

// OutputPath derives the default output file for an input image
func OutputPath(input string, params config.Params) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + params.Extension()
}

func downscalePolicy(policy string, confirm func(int, int, int) bool) func(int, int, int) bool {
	switch policy {
	case config.DownscaleAlways:
		return func(int, int, int) bool { return true }
	case config.DownscaleNever:
		return nil
	default:
		return confirm
	}
}

func name(source string) string {
	if source == "" {
		return ""
	}
	return strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
}
