package cmd

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/philipparndt/golitho/internal/config"
	"github.com/philipparndt/golitho/internal/ui"
)

func newParser(t *testing.T, cli *CLI) *kong.Kong {
	t.Helper()
	parser, err := kong.New(cli,
		kong.Name("golitho"),
		kong.Configuration(config.YAMLResolver),
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
	)
	if err != nil {
		t.Fatalf("kong.New() error = %v", err)
	}
	return parser
}

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 8, 6))); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseRenderFlags(t *testing.T) {
	cli := &CLI{}
	ctx, err := newParser(t, cli).Parse([]string{
		"render", "photo.png",
		"--no-frame", "--total-thickness", "5", "-f", "3mf", "--upright",
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if ctx.Command() != "render <input>" {
		t.Errorf("Command() = %q", ctx.Command())
	}

	params := cli.Render.Params
	if params.Frame {
		t.Error("--no-frame did not clear Frame")
	}
	if params.TotalThickness != 5 || params.Format != config.Format3MF || !params.Upright {
		t.Errorf("params = %+v", params)
	}
	if params.MinThickness != 0.8 || params.HangerCount != 2 || !params.Hangers {
		t.Errorf("defaults not applied: %+v", params)
	}
}

func TestProgressFlag(t *testing.T) {
	t.Cleanup(func() { ui.SetPlainProgress(false) })

	tests := []struct {
		name  string
		args  []string
		plain bool
	}{
		{"default", []string{"version"}, false},
		{"separate value", []string{"--progress", "plain", "version"}, true},
		{"joined value", []string{"--progress=plain", "version"}, true},
		{"auto", []string{"--progress=auto", "version"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ui.SetPlainProgress(!tt.plain)
			cli := &CLI{}
			if _, err := newParser(t, cli).Parse(tt.args); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if ui.PlainProgress() != tt.plain {
				t.Errorf("PlainProgress() = %v, want %v", ui.PlainProgress(), tt.plain)
			}
		})
	}
}

func TestParseRejectsUnknownFormat(t *testing.T) {
	cli := &CLI{}
	if _, err := newParser(t, cli).Parse([]string{"render", "photo.png", "-f", "obj"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestConfigFlagLoadsSettings(t *testing.T) {
	settings := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(settings, []byte("total-thickness: 6\nhangers: false\nframe_border: 4.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		args  []string
		total float64
	}{
		{"settings file", []string{"--config", settings, "render", "photo.png"}, 6},
		{"flag wins", []string{"--config", settings, "render", "photo.png", "--total-thickness", "7"}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli := &CLI{}
			if _, err := newParser(t, cli).Parse(tt.args); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			params := cli.Render.Params
			if params.TotalThickness != tt.total {
				t.Errorf("TotalThickness = %g, want %g", params.TotalThickness, tt.total)
			}
			if params.Hangers {
				t.Error("hangers: false was not applied")
			}
			if params.FrameBorder != 4.5 {
				t.Errorf("FrameBorder = %g, want 4.5", params.FrameBorder)
			}
		})
	}
}

func TestCompletionScripts(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish"} {
		t.Run(shell, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "completion")
			if err := generateCompletionToFile(shell, path); err != nil {
				t.Fatalf("generate %s: %v", shell, err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			for _, want := range []string{"golitho", "render", "--total-thickness"} {
				if !strings.Contains(string(data), want) {
					t.Errorf("%s script is missing %q", shell, want)
				}
			}
		})
	}

	if err := (&CompletionCmd{Shell: "powershell"}).Run(); err == nil {
		t.Error("expected error for unsupported shell")
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "golitho.yaml")

	if err := (&ConfigInitCmd{Path: path}).Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	params, err := config.NewLoader().Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *params != config.Default() {
		t.Errorf("written settings = %+v, want defaults", *params)
	}

	if err := (&ConfigInitCmd{Path: path}).Run(); err == nil {
		t.Error("expected error for an existing file without --force")
	}
	if err := (&ConfigInitCmd{Path: path, Force: true}).Run(); err != nil {
		t.Errorf("Run() with force error = %v", err)
	}
}

func TestBatchRendersEveryImage(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "models")
	inputs := []string{writePNG(t, src, "a.png"), writePNG(t, src, "b.png"), writePNG(t, src, "c.png")}

	params := config.Default()
	params.Downscale = config.DownscaleNever

	batch := &BatchCmd{Inputs: inputs, OutDir: out, Jobs: 2, Params: params}
	if err := batch.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, name := range []string{"a.stl", "b.stl", "c.stl"} {
		info, err := os.Stat(filepath.Join(out, name))
		if err != nil {
			t.Errorf("missing %s: %v", name, err)
			continue
		}
		if info.Size() <= 84 {
			t.Errorf("%s is only %d bytes", name, info.Size())
		}
	}
}

func TestBatchReportsFailedImage(t *testing.T) {
	src := t.TempDir()
	inputs := []string{writePNG(t, src, "good.png"), filepath.Join(src, "missing.png")}

	params := config.Default()
	params.Downscale = config.DownscaleNever

	err := (&BatchCmd{Inputs: inputs, OutDir: t.TempDir(), Jobs: 1, Params: params}).Run()
	if err == nil {
		t.Fatal("expected error for missing image")
	}
	if !strings.Contains(err.Error(), "missing.png") {
		t.Errorf("error %q does not name the failed image", err)
	}
}
