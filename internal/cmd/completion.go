package cmd

import (
	"fmt"
	"os"
)

type CompletionCmd struct {
	Shell string `arg:"" help:"Shell type: bash, zsh, or fish"`
}

func (c *CompletionCmd) Run() error {
	switch c.Shell {
	case "bash":
		return c.generateBash()
	case "zsh":
		return c.generateZsh()
	case "fish":
		return c.generateFish()
	default:
		return fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish)", c.Shell)
	}
}

func (c *CompletionCmd) generateBash() error {
	script := `# bash completion for golitho

_golitho_completions() {
    local cur prev opts params
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    params="--min-thickness --total-thickness --frame-border --panel-width \
--frame --no-frame --frame-slope \
--stabilizers --no-stabilizers --stabilizer-threshold --stabilizer-height --permanent-stabilizers \
--hangers --no-hangers --hanger-count \
-f --format --always-overwrite --upright --max-dimension --downscale"

    # Main commands
    if [[ ${COMP_CWORD} -eq 1 ]]; then
        opts="render batch inspect convert config version completion --config --progress"
        COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
        return 0
    fi

    case "${prev}" in
        -f|--format)
            COMPREPLY=( $(compgen -W "binary ascii 3mf" -- ${cur}) )
            return 0
            ;;
        --downscale)
            COMPREPLY=( $(compgen -W "ask always never" -- ${cur}) )
            return 0
            ;;
        --progress)
            COMPREPLY=( $(compgen -W "auto plain" -- ${cur}) )
            return 0
            ;;
        --config)
            COMPREPLY=( $(compgen -f -X '!*.@(yaml|yml)' -- ${cur}) )
            return 0
            ;;
        -o|--output)
            COMPREPLY=( $(compgen -f -X '!*.@(stl|3mf)' -- ${cur}) )
            return 0
            ;;
        -d|--out-dir)
            COMPREPLY=( $(compgen -d -- ${cur}) )
            return 0
            ;;
    esac

    case "${COMP_WORDS[1]}" in
        render|batch)
            if [[ ${cur} == -* ]]; then
                opts="-o --output -d --out-dir -j --jobs ${params} -h --help"
                COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
            else
                COMPREPLY=( $(compgen -f -X '!*.@(png|jpg|jpeg|gif|bmp|tif|tiff|webp)' -- ${cur}) )
            fi
            return 0
            ;;
        convert)
            if [[ ${cur} == -* ]]; then
                COMPREPLY=( $(compgen -W "-o --output -f --format --upright --always-overwrite -h --help" -- ${cur}) )
            else
                COMPREPLY=( $(compgen -f -X '!*.@(stl|3mf)' -- ${cur}) )
            fi
            return 0
            ;;
        inspect)
            if [[ ${cur} == -* ]]; then
                COMPREPLY=( $(compgen -W "-h --help" -- ${cur}) )
            else
                COMPREPLY=( $(compgen -f -X '!*.@(stl|3mf)' -- ${cur}) )
            fi
            return 0
            ;;
        config)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "show init" -- ${cur}) )
            elif [[ ${cur} == -* ]]; then
                COMPREPLY=( $(compgen -W "--force ${params} -h --help" -- ${cur}) )
            else
                COMPREPLY=( $(compgen -f -X '!*.@(yaml|yml)' -- ${cur}) )
            fi
            return 0
            ;;
        completion)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "bash zsh fish" -- ${cur}) )
            fi
            return 0
            ;;
    esac
}

complete -F _golitho_completions golitho
`
	fmt.Print(script)
	return nil
}

func (c *CompletionCmd) generateZsh() error {
	script := `#compdef golitho

_golitho() {
    local -a commands
    commands=(
        'render:Convert an image into a lithophane model'
        'batch:Convert several images at once'
        'inspect:Inspect an STL or 3MF file and show its key figures'
        'convert:Convert a model between binary STL, ASCII STL and 3MF'
        'config:Show or create settings files'
        'version:Show version information'
        'completion:Generate shell completion script'
    )

    local -a param_opts
    param_opts=(
        '--min-thickness[Thickness at the thinnest point (mm)]:mm:'
        '--total-thickness[Thickness at the thickest point (mm)]:mm:'
        '--frame-border[Width of the frame band (mm)]:mm:'
        '--panel-width[Total output width including the frame (mm)]:mm:'
        '(--frame --no-frame)'{--frame,--no-frame}'[Add a beveled frame around the panel]'
        '--frame-slope[Bevel run of the frame opening]:slope:'
        '(--stabilizers --no-stabilizers)'{--stabilizers,--no-stabilizers}'[Add stabilizer feet on tall panels]'
        '--stabilizer-threshold[Minimum panel height that gets stabilizers (mm)]:mm:'
        '--stabilizer-height[Stabilizer height as a fraction of the panel height]:ratio:'
        '--permanent-stabilizers[Attach stabilizers without a snap-off gap]'
        '(--hangers --no-hangers)'{--hangers,--no-hangers}'[Add wall-mount hangers on the top edge]'
        '--hanger-count[Number of hangers]:count:'
        '(-f --format)'{-f,--format}'[Output format]:format:(binary ascii 3mf)'
        '--always-overwrite[Overwrite existing output files without asking]'
        '--upright[Stand the panel on its bottom edge in 3MF output]'
        '--max-dimension[Largest accepted image side before downscaling (px)]:px:'
        '--downscale[Downscale oversized images]:policy:(ask always never)'
        '(-h --help)'{-h,--help}'[Show help]'
    )

    local -a render_opts
    render_opts=(
        '(-o --output)'{-o,--output}'[Output file path]:output file:_files -g "*.{stl,3mf}"'
        $param_opts
        '1:image:_files -g "*.{png,jpg,jpeg,gif,bmp,tif,tiff,webp}"'
    )

    local -a batch_opts
    batch_opts=(
        '(-d --out-dir)'{-d,--out-dir}'[Directory for the output files]:directory:_files -/'
        '(-j --jobs)'{-j,--jobs}'[Number of images rendered at once]:jobs:'
        $param_opts
        '*:images:_files -g "*.{png,jpg,jpeg,gif,bmp,tif,tiff,webp}"'
    )

    local -a inspect_opts
    inspect_opts=(
        '(-h --help)'{-h,--help}'[Show help]'
        '*:model file:_files -g "*.{stl,3mf}"'
    )

    local -a convert_opts
    convert_opts=(
        '(-o --output)'{-o,--output}'[Output file path]:output file:_files -g "*.{stl,3mf}"'
        '(-f --format)'{-f,--format}'[Output format]:format:(binary ascii 3mf)'
        '--upright[Stand the part on its bottom edge in 3MF output]'
        '--always-overwrite[Overwrite existing output files without asking]'
        '(-h --help)'{-h,--help}'[Show help]'
        '1:model file:_files -g "*.{stl,3mf}"'
    )

    local -a config_commands
    config_commands=(
        'show:Print the effective settings as YAML'
        'init:Write a settings file with the default values'
    )

    local -a completion_shells
    completion_shells=(
        'bash:Generate bash completion'
        'zsh:Generate zsh completion'
        'fish:Generate fish completion'
    )

    _arguments -C \
        '--config[Load settings from a YAML file]:settings file:_files -g "*.{yaml,yml}"' \
        '--progress[Progress output]:mode:(auto plain)' \
        '1: :->command' \
        '*:: :->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                render)
                    _arguments $render_opts
                    ;;
                batch)
                    _arguments $batch_opts
                    ;;
                inspect)
                    _arguments $inspect_opts
                    ;;
                convert)
                    _arguments $convert_opts
                    ;;
                config)
                    if (( CURRENT == 2 )); then
                        _describe 'config command' config_commands
                    else
                        _arguments '--force[Replace an existing file]' $param_opts '1:settings file:_files -g "*.{yaml,yml}"'
                    fi
                    ;;
                completion)
                    _describe 'shell' completion_shells
                    ;;
                version)
                    _arguments '(-h --help)'{-h,--help}'[Show help]'
                    ;;
            esac
            ;;
    esac
}

_golitho
`
	fmt.Print(script)
	return nil
}

func (c *CompletionCmd) generateFish() error {
	script := `# fish completion for golitho

# Main commands
complete -c golitho -f -n "__fish_use_subcommand" -a "render" -d "Convert an image into a lithophane model"
complete -c golitho -f -n "__fish_use_subcommand" -a "batch" -d "Convert several images at once"
complete -c golitho -f -n "__fish_use_subcommand" -a "inspect" -d "Inspect an STL or 3MF file and show its key figures"
complete -c golitho -f -n "__fish_use_subcommand" -a "convert" -d "Convert a model between binary STL, ASCII STL and 3MF"
complete -c golitho -f -n "__fish_use_subcommand" -a "config" -d "Show or create settings files"
complete -c golitho -f -n "__fish_use_subcommand" -a "version" -d "Show version information"
complete -c golitho -f -n "__fish_use_subcommand" -a "completion" -d "Generate shell completion script"

# Global options
complete -c golitho -l config -d "Load settings from a YAML file" -r -a "(__fish_complete_suffix .yaml)"
complete -c golitho -f -l progress -d "Progress output" -r -a "auto plain"

# render and batch options
complete -c golitho -n "__fish_seen_subcommand_from render" -s o -l output -d "Output file path" -r
complete -c golitho -n "__fish_seen_subcommand_from batch" -s d -l out-dir -d "Directory for the output files" -r -a "(__fish_complete_directories)"
complete -c golitho -f -n "__fish_seen_subcommand_from batch" -s j -l jobs -d "Number of images rendered at once" -r
complete -c golitho -f -n "__fish_seen_subcommand_from render batch config" -l min-thickness -d "Thickness at the thinnest point (mm)" -r
complete -c golitho -f -n "__fish_seen_subcommand_from render batch config" -l total-thickness -d "Thickness at the thickest point (mm)" -r
complete -c golitho -f -n "__fish_seen_subcommand_from render batch config" -l frame-border -d "Width of the frame band (mm)" -r
complete -c golitho -f -n "__fish_seen_subcommand_from render batch config" -l panel-width -d "Total output width including the frame (mm)" -r
complete -c golitho -f -n "__fish_seen_subcommand_from render batch config" -l frame -l no-frame -d "Add a beveled frame around the panel"
complete -c golitho -f -n "__fish_seen_subcommand_from render batch config" -l frame-slope -d "Bevel run of the frame opening" -r
complete -c golitho -f -n "__fish_seen_subcommand_from render batch config" -l stabilizers -l no-stabilizers -d "Add stabilizer feet on tall panels"
complete -c golitho -f -n "__fish_seen_subcommand_from render batch config" -l stabilizer-threshold -d "Minimum panel height that gets stabilizers (mm)" -r
complete -c golitho -f -n "__fish_seen_subcommand_from render batch config" -l stabilizer-height -d "Stabilizer height as a fraction of the panel height" -r
complete -c golitho -f -n "__fish_seen_subcommand_from render batch config" -l permanent-stabilizers -d "Attach stabilizers without a snap-off gap"
complete -c golitho -f -n "__fish_seen_subcommand_from render batch config" -l hangers -l no-hangers -d "Add wall-mount hangers on the top edge"
complete -c golitho -f -n "__fish_seen_subcommand_from render batch config" -l hanger-count -d "Number of hangers" -r
complete -c golitho -f -n "__fish_seen_subcommand_from render batch config convert" -s f -l format -d "Output format" -r -a "binary ascii 3mf"
complete -c golitho -f -n "__fish_seen_subcommand_from render batch config convert" -l always-overwrite -d "Overwrite existing output files without asking"
complete -c golitho -f -n "__fish_seen_subcommand_from render batch config" -l upright -d "Stand the panel on its bottom edge in 3MF output"
complete -c golitho -f -n "__fish_seen_subcommand_from render batch config" -l max-dimension -d "Largest accepted image side before downscaling (px)" -r
complete -c golitho -f -n "__fish_seen_subcommand_from render batch config" -l downscale -d "Downscale oversized images" -r -a "ask always never"
complete -c golitho -n "__fish_seen_subcommand_from render batch" -a "(__fish_complete_suffix .png)" -d "PNG image"
complete -c golitho -n "__fish_seen_subcommand_from render batch" -a "(__fish_complete_suffix .jpg)" -d "JPEG image"
complete -c golitho -n "__fish_seen_subcommand_from render batch" -a "(__fish_complete_suffix .jpeg)" -d "JPEG image"

# inspect command options
complete -c golitho -f -n "__fish_seen_subcommand_from inspect" -s h -l help -d "Show help"
complete -c golitho -n "__fish_seen_subcommand_from inspect" -a "(__fish_complete_suffix .stl)" -d "STL file"
complete -c golitho -n "__fish_seen_subcommand_from inspect" -a "(__fish_complete_suffix .3mf)" -d "3MF file"

# convert command options
complete -c golitho -n "__fish_seen_subcommand_from convert" -s o -l output -d "Output file path" -r
complete -c golitho -f -n "__fish_seen_subcommand_from convert" -l upright -d "Stand the part on its bottom edge in 3MF output"
complete -c golitho -n "__fish_seen_subcommand_from convert" -a "(__fish_complete_suffix .stl)" -d "STL file"
complete -c golitho -n "__fish_seen_subcommand_from convert" -a "(__fish_complete_suffix .3mf)" -d "3MF file"

# config command options
complete -c golitho -f -n "__fish_seen_subcommand_from config; and not __fish_seen_subcommand_from show init" -a "show" -d "Print the effective settings as YAML"
complete -c golitho -f -n "__fish_seen_subcommand_from config; and not __fish_seen_subcommand_from show init" -a "init" -d "Write a settings file with the default values"
complete -c golitho -f -n "__fish_seen_subcommand_from init" -l force -d "Replace an existing file"

# completion command options
complete -c golitho -f -n "__fish_seen_subcommand_from completion" -a "bash" -d "Generate bash completion"
complete -c golitho -f -n "__fish_seen_subcommand_from completion" -a "zsh" -d "Generate zsh completion"
complete -c golitho -f -n "__fish_seen_subcommand_from completion" -a "fish" -d "Generate fish completion"

# version command options
complete -c golitho -f -n "__fish_seen_subcommand_from version" -s h -l help -d "Show help"
`
	fmt.Print(script)
	return nil
}

func (c *CompletionCmd) Help() string {
	return `
Generate shell completion scripts for golitho.

Examples:
  # Bash
  golitho completion bash > /etc/bash_completion.d/golitho
  # or
  golitho completion bash > ~/.local/share/bash-completion/completions/golitho

  # Zsh
  golitho completion zsh > ~/.zsh/completion/_golitho
  # or add to .zshrc:
  autoload -U compinit && compinit

  # Fish
  golitho completion fish > ~/.config/fish/completions/golitho.fish
`
}

// For testing purposes
func generateCompletionToFile(shell, filepath string) error {
	oldStdout := os.Stdout

	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer file.Close()

	os.Stdout = file

	cmd := &CompletionCmd{Shell: shell}
	err = cmd.Run()

	os.Stdout = oldStdout

	return err
}
