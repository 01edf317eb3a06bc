package buildplan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/philipparndt/golitho/internal/config"
	"github.com/philipparndt/golitho/internal/lithophane"
	"github.com/philipparndt/golitho/internal/preconditions"
	"github.com/philipparndt/golitho/internal/ui"
)

// BuildStep represents a single step in the build plan
type BuildStep interface {
	Name() string
	Execute(ctx context.Context, state *State) error
}

// Prompts answers the questions a render may ask. A nil function declines.
type Prompts struct {
	Downscale func(width, height, limit int) bool
	Overwrite func(path string) bool
}

// State holds the data shared between the steps of one plan
type State struct {
	Input   string
	Output  string
	Params  config.Params
	Prompts Prompts
	// Quiet suppresses per-step output, used when several plans run at once
	Quiet bool

	Session *lithophane.Session
	Result  *lithophane.Result
	Written int64
}

// BuildPlan contains all steps needed to turn one image into a model file
type BuildPlan struct {
	Steps []BuildStep
	State *State
}

// Planner creates build plans
type Planner struct{}

// NewPlanner creates a new build planner
func NewPlanner() *Planner {
	return &Planner{}
}

// CreatePlan creates the plan rendering input to output. An empty output is
// derived from the input name and the output format.
func (p *Planner) CreatePlan(input, output string, params config.Params, prompts Prompts) (*BuildPlan, error) {
	if input == "" {
		return nil, fmt.Errorf("no input image given")
	}
	if output == "" {
		output = lithophane.OutputPath(input, params)
	}

	state := &State{
		Input:   input,
		Output:  output,
		Params:  params,
		Prompts: prompts,
		Session: lithophane.NewSession(),
	}

	return &BuildPlan{
		State: state,
		Steps: []BuildStep{
			&ValidateParametersStep{},
			&CheckPreconditionsStep{},
			&CheckOverwriteStep{},
			&RenderStep{},
			&ExportStep{},
		},
	}, nil
}

// Execute runs all steps in the plan
func (p *BuildPlan) Execute(ctx context.Context) error {
	verbose := ui.IsVerbose() && !p.State.Quiet
	if verbose {
		ui.PrintTitle("Build Plan Execution")
		ui.PrintInfo(fmt.Sprintf("Total steps: %d", len(p.Steps)))
		ui.PrintSeparator()
	}

	for i, step := range p.Steps {
		if verbose {
			ui.PrintHeader(fmt.Sprintf("Step %d/%d: %s", i+1, len(p.Steps), step.Name()))
		}
		if err := step.Execute(ctx, p.State); err != nil {
			return err
		}
	}

	if !p.State.Quiet {
		printSummary(p.State)
	}
	return nil
}

func printSummary(state *State) {
	result := state.Result

	ui.PrintSeparator()
	ui.PrintSuccess("Lithophane created successfully!")

	relPath, err := filepath.Rel(".", state.Output)
	if err != nil {
		relPath = state.Output
	}
	ui.PrintKeyValue("Output file", relPath)
	ui.PrintKeyValue("File size", ui.Size(state.Written))
	ui.PrintKeyValue("Panel", ui.Dimensions(result.Panel.Width, result.Panel.Height))
	ui.PrintKeyValue("Triangles", ui.Count(result.Triangles()))

	if ui.IsVerbose() {
		parts := []struct {
			name  string
			count int
		}{
			{"Body", result.Parts.Body},
			{"Frame", result.Parts.Frame},
			{"Stabilizers", result.Parts.Stabilizers},
			{"Hangers", result.Parts.Hangers},
		}
		for _, part := range parts {
			if part.count > 0 {
				ui.PrintItem(fmt.Sprintf("%s: %s", part.name, ui.Count(part.count)))
			}
		}
	}
}

// ValidateParametersStep rejects inconsistent parameters before any file is touched
type ValidateParametersStep struct{}

func (s *ValidateParametersStep) Name() string {
	return "Validate parameters"
}

func (s *ValidateParametersStep) Execute(ctx context.Context, state *State) error {
	return state.Params.Check()
}

// CheckPreconditionsStep verifies the input image and the output directory
type CheckPreconditionsStep struct{}

func (s *CheckPreconditionsStep) Name() string {
	return "Check preconditions"
}

func (s *CheckPreconditionsStep) Execute(ctx context.Context, state *State) error {
	if err := preconditions.Check(state.Input, state.Output); err != nil {
		return err
	}
	if !state.Quiet && ui.IsVerbose() {
		ui.PrintSuccess("Input and output paths are usable")
	}
	return nil
}

// CheckOverwriteStep applies the overwrite policy to an existing output file
type CheckOverwriteStep struct{}

func (s *CheckOverwriteStep) Name() string {
	return "Check output file"
}

func (s *CheckOverwriteStep) Execute(ctx context.Context, state *State) error {
	return preconditions.CheckOverwrite(state.Output, state.Params.AlwaysOverwrite, state.Prompts.Overwrite)
}

// RenderStep builds the triangle stream
type RenderStep struct{}

func (s *RenderStep) Name() string {
	return "Render lithophane"
}

func (s *RenderStep) Execute(ctx context.Context, state *State) error {
	var progress func(done, total int)
	if !state.Quiet {
		progress = func(done, total int) {
			ui.PrintProgress(done, total, "Building surface")
		}
	}

	result, err := state.Session.Render(ctx, state.Input, state.Params, lithophane.Options{
		Confirm:  state.Prompts.Downscale,
		Progress: progress,
	})
	if err != nil {
		return fmt.Errorf("render %s: %w", filepath.Base(state.Input), err)
	}
	state.Result = result

	if !state.Quiet {
		if result.Downscaled {
			ui.PrintWarning(fmt.Sprintf("Downscaled from %d×%d to %d×%d px",
				result.SourceWidth, result.SourceHeight, result.GridWidth, result.GridHeight))
		} else if result.GridWidth > state.Params.MaxDimension || result.GridHeight > state.Params.MaxDimension {
			ui.PrintWarning(fmt.Sprintf("Rendering %d×%d px at full resolution", result.GridWidth, result.GridHeight))
		}
		if ui.IsVerbose() {
			ui.PrintSuccess(fmt.Sprintf("Built %s triangles from %d×%d px", ui.Count(result.Triangles()), result.GridWidth, result.GridHeight))
		}
	}
	return nil
}

// ExportStep writes the rendered stream
type ExportStep struct{}

func (s *ExportStep) Name() string {
	return "Export model"
}

func (s *ExportStep) Execute(ctx context.Context, state *State) error {
	if err := state.Session.Export(state.Output, state.Params.Format); err != nil {
		return fmt.Errorf("export %s: %w", filepath.Base(state.Output), err)
	}

	info, err := os.Stat(state.Output)
	if err != nil {
		return fmt.Errorf("export %s: %w", filepath.Base(state.Output), err)
	}
	state.Written = info.Size()
	return nil
}
