package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/philipparndt/golitho/internal/buildplan"
	"github.com/philipparndt/golitho/internal/config"
	"github.com/philipparndt/golitho/internal/convert"
	"github.com/philipparndt/golitho/internal/inspect"
	"github.com/philipparndt/golitho/internal/lithophane"
	"github.com/philipparndt/golitho/internal/ui"
	"github.com/philipparndt/golitho/version"
)

type CLI struct {
	Config   kong.ConfigFlag `help:"Load settings from a YAML file" placeholder:"FILE"`
	Progress string          `help:"Progress output (auto, plain)" enum:"auto,plain" default:"auto"`

	Render     RenderCmd     `cmd:"" help:"Convert an image into a lithophane model"`
	Batch      BatchCmd      `cmd:"" help:"Convert several images at once"`
	Inspect    InspectCmd    `cmd:"" help:"Inspect an STL or 3MF file and show its key figures"`
	Convert    ConvertCmd    `cmd:"" help:"Convert a model between binary STL, ASCII STL and 3MF"`
	Settings   SettingsCmd   `cmd:"" name:"config" help:"Show or create settings files"`
	Version    VersionCmd    `cmd:"" help:"Show version information"`
	Completion CompletionCmd `cmd:"" help:"Generate shell completion script"`
}

// AfterApply hands the parsed global flags to the ui package
func (cli *CLI) AfterApply() error {
	ui.SetPlainProgress(cli.Progress == "plain")
	return nil
}

type RenderCmd struct {
	Input  string        `arg:"" help:"Image to convert (png, jpeg, gif, bmp, tiff, webp)"`
	Output string        `help:"Output file path (default: image name with .stl or .3mf)" short:"o"`
	Params config.Params `embed:""`
}

// Help adds additional help text with examples
func (c *RenderCmd) Help() string {
	return renderRenderHelp()
}

func (c *RenderCmd) Run() error {
	plan, err := buildplan.NewPlanner().CreatePlan(c.Input, c.Output, c.Params, interactivePrompts())
	if err != nil {
		return fmt.Errorf("failed to create build plan: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return plan.Execute(ctx)
}

func interactivePrompts() buildplan.Prompts {
	return buildplan.Prompts{
		Downscale: ui.ConfirmDownscale,
		Overwrite: ui.ConfirmOverwrite,
	}
}

type BatchCmd struct {
	Inputs []string      `arg:"" help:"Images to convert"`
	OutDir string        `help:"Directory for the output files (default: next to each image)" short:"d" name:"out-dir" placeholder:"DIR"`
	Jobs   int           `help:"Number of images rendered at once (0: one per CPU)" short:"j" default:"0"`
	Params config.Params `embed:""`
}

// batchJob is one finished image of a batch
type batchJob struct {
	state *buildplan.State
	err   error
}

// Run renders all inputs concurrently. Batches never prompt: oversized images
// keep their resolution unless --downscale=always, and existing files are
// only replaced with --always-overwrite.
func (c *BatchCmd) Run() error {
	if c.OutDir != "" {
		if err := os.MkdirAll(c.OutDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	jobs := c.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ui.PrintTitle(fmt.Sprintf("Rendering %d images", len(c.Inputs)))

	results := make([]batchJob, len(c.Inputs))
	var mu sync.Mutex
	done := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, input := range c.Inputs {
		i, input := i, input
		g.Go(func() error {
			state, err := c.renderOne(ctx, input)
			results[i] = batchJob{state: state, err: err}

			mu.Lock()
			done++
			if err == nil {
				ui.PrintProgress(done, len(c.Inputs), filepath.Base(input))
			}
			mu.Unlock()

			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			return nil
		})
	}
	err := g.Wait()

	printBatchSummary(results, c.Inputs)
	return err
}

func (c *BatchCmd) renderOne(ctx context.Context, input string) (*buildplan.State, error) {
	output := ""
	if c.OutDir != "" {
		output = filepath.Join(c.OutDir, filepath.Base(lithophane.OutputPath(input, c.Params)))
	}

	plan, err := buildplan.NewPlanner().CreatePlan(input, output, c.Params, buildplan.Prompts{})
	if err != nil {
		return nil, err
	}
	plan.State.Quiet = true

	if err := plan.Execute(ctx); err != nil {
		return nil, err
	}
	return plan.State, nil
}

func printBatchSummary(results []batchJob, inputs []string) {
	ui.PrintSeparator()
	ui.PrintTableHeader([]string{"Image", "Triangles", "Size", "Output"}, 24, 12, 10, 30)

	failed := 0
	for i, job := range results {
		name := filepath.Base(inputs[i])
		switch {
		case job.state != nil:
			ui.PrintTableRow(name, ui.Count(job.state.Result.Triangles()), ui.Size(job.state.Written), job.state.Output)
		case job.err != nil && !errors.Is(job.err, context.Canceled):
			failed++
			ui.PrintTableRow(name, "-", "-", "failed: "+job.err.Error())
		default:
			ui.PrintTableRow(name, "-", "-", "skipped")
		}
	}

	if failed == 0 {
		ui.PrintSuccess("Batch completed")
	}
}

type InspectCmd struct {
	File string `arg:"" help:"STL or 3MF file to inspect"`
}

func (c *InspectCmd) Run() error {
	inspector := inspect.NewInspector()
	return inspector.Inspect(c.File)
}

type ConvertCmd struct {
	Input           string `arg:"" help:"STL or 3MF file to convert"`
	Output          string `help:"Output file path (default: input name with the new extension)" short:"o"`
	Format          string `help:"Output format (binary, ascii, 3mf)" enum:"binary,ascii,3mf" default:"3mf" short:"f"`
	Upright         bool   `help:"Stand the part on its bottom edge in 3MF output"`
	AlwaysOverwrite bool   `help:"Overwrite existing output files without asking"`
}

func (c *ConvertCmd) Run() error {
	result, err := convert.NewConverter().Convert(c.Input, c.Output, convert.Options{
		Format:          c.Format,
		Upright:         c.Upright,
		AlwaysOverwrite: c.AlwaysOverwrite,
		Overwrite:       ui.ConfirmOverwrite,
	})
	if err != nil {
		return err
	}

	ui.PrintSuccess("Model converted")
	ui.PrintKeyValue("Output file", result.Output)
	ui.PrintKeyValue("File size", ui.Size(result.Written))
	ui.PrintKeyValue("Triangles", ui.Count(result.Triangles))
	return nil
}

type SettingsCmd struct {
	Show ConfigShowCmd `cmd:"" help:"Print the effective settings as YAML"`
	Init ConfigInitCmd `cmd:"" help:"Write a settings file with the default values"`
}

type ConfigShowCmd struct {
	Params config.Params `embed:""`
}

func (c *ConfigShowCmd) Run() error {
	data, err := config.NewLoader().Marshal(c.Params)
	if err != nil {
		return err
	}

	if !isatty.IsTerminal(os.Stdout.Fd()) {
		_, err := os.Stdout.Write(data)
		return err
	}
	return quick.Highlight(os.Stdout, string(data), "yaml", "terminal256", "monokai")
}

type ConfigInitCmd struct {
	Path  string `arg:"" optional:"" help:"Settings file to create (default: ~/.config/golitho/config.yaml)"`
	Force bool   `help:"Replace an existing file"`
}

func (c *ConfigInitCmd) Run() error {
	path := c.Path
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot locate home directory: %w", err)
		}
		path = filepath.Join(home, ".config", "golitho", "config.yaml")
	}

	if _, err := os.Stat(path); err == nil && !c.Force {
		return fmt.Errorf("%s already exists (use --force to replace it)", path)
	}

	if err := config.NewLoader().Save(path, config.Default()); err != nil {
		return err
	}
	ui.PrintSuccess("Settings written")
	ui.PrintKeyValue("File", path)
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	info := version.Get()
	fmt.Println(info.String())
	return nil
}

// Parse parses command line arguments and executes the appropriate command
func Parse() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("golitho"),
		kong.Description("Turn images into printable lithophanes"),
		kong.UsageOnError(),
		kong.Configuration(config.YAMLResolver, config.DefaultPaths()...),
	)
	err := ctx.Run()
	if err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}
