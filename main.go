package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/mcncl/jsoncodable/internal/config"
	"github.com/mcncl/jsoncodable/internal/errors"
	"github.com/mcncl/jsoncodable/internal/logging"
	"github.com/mcncl/jsoncodable/internal/pipeline"
	"github.com/mcncl/jsoncodable/internal/watcher"
)

// CLI defines the command-line interface
var CLI struct {
	Input       []string `help:"Path to an input JSON file. Repeat to unify several samples. If not specified, reads from stdin." short:"i" type:"path"`
	Output      string   `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	RootName    string   `help:"Name for the root struct (default NewType)." short:"r"`
	Query       string   `help:"jq expression selecting the part of each document to type." short:"q"`
	Config      string   `help:"Path to config file. Defaults to the nearest .jsoncodable.yml." short:"c" type:"path"`
	Format      string   `help:"Output format: swift or jsonschema."`
	FromSchema  bool     `help:"Treat inputs as JSON Schema documents instead of samples." name:"from-schema"`
	Strict      bool     `help:"Reject documents that mix Int and Double instead of widening to Double."`
	Watch       bool     `help:"Regenerate whenever an input file changes." short:"w"`
	LogLevel    string   `help:"Log level: debug, info, warn or error." name:"log-level"`
	LogFile     string   `help:"Write logs to a rotated file instead of stderr." name:"log-file" type:"path"`
	Debug       bool     `help:"Enable debug logging." short:"d"`
	Version     bool     `help:"Show version information." short:"v"`
	Interactive bool     `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`
}

// Context holds the runtime context
type Context struct {
	Debug bool
	// Config replaces file, environment and flag loading when set.
	Config *config.Config
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	parser := kong.Must(&CLI,
		kong.Name("jsoncodable"),
		kong.Description("Infer Swift Codable structs from sample JSON"),
		kong.UsageOnError(),
	)

	// No arguments on a terminal means the user wants to paste JSON
	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	if _, err := parser.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	if CLI.Version {
		fmt.Printf("jsoncodable version %s\n", Version)
		return
	}

	if err := run(&Context{Debug: CLI.Debug}); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsoncodable --help\n")
		os.Exit(1)
	}
}

// run executes the main program logic
func run(ctx *Context) error {
	cfg := ctx.Config
	if cfg == nil {
		var err error
		cfg, err = loadConfig(ctx)
		if err != nil {
			return err
		}
	}

	cleanup, err := logging.Setup(cfg.Logging)
	if err != nil {
		return errors.NewConfigError("failed to set up logging", err)
	}
	defer func() { _ = cleanup() }()

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	if CLI.Watch {
		return watch(p, cfg)
	}

	sources, err := collectSources()
	if err != nil {
		return err
	}
	return generate(context.Background(), p, cfg, sources)
}

// loadConfig merges defaults, the config file, the environment and flags.
func loadConfig(ctx *Context) (*config.Config, error) {
	overrides := config.CLIOverrides{
		RootName: CLI.RootName,
		Query:    CLI.Query,
		LogLevel: CLI.LogLevel,
		LogFile:  CLI.LogFile,
		Format:   CLI.Format,
	}
	if CLI.Strict {
		overrides.StrictNumbers = &CLI.Strict
	}
	if CLI.FromSchema {
		overrides.FromSchema = &CLI.FromSchema
	}
	if ctx.Debug {
		overrides.LogLevel = "debug"
	}

	cfg, err := config.LoadConfigWithCLI(CLI.Config, overrides)
	if err != nil {
		return nil, errors.NewConfigError(err.Error(), err)
	}
	return cfg, nil
}

// generate runs the pipeline once and writes the declaration.
func generate(ctx context.Context, p *pipeline.Pipeline, cfg *config.Config, sources []pipeline.Source) error {
	result, err := p.Run(ctx, sources...)
	if err != nil {
		return err
	}

	if err := writeOutput(result.Output); err != nil {
		return err
	}

	if result.RootDepth > 0 && cfg.Output.Format == config.FormatSwift {
		fmt.Fprintf(os.Stderr, "Note: the input root is an array; decode it as %s%s%s\n",
			strings.Repeat("[", result.RootDepth), cfg.RootName, strings.Repeat("]", result.RootDepth))
	}
	return nil
}

// watch regenerates on every change to the input files until interrupted.
func watch(p *pipeline.Pipeline, cfg *config.Config) error {
	if len(CLI.Input) == 0 {
		return errors.NewInputError("watch mode needs at least one input file", errors.ErrNoInput)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sources := fileSources()
	if err := generate(ctx, p, cfg, sources); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
	}

	fmt.Fprintf(os.Stderr, "Watching %d file(s), press Ctrl+C to stop\n", len(sources))
	return watcher.Watch(ctx, CLI.Input, watcher.DefaultDebounce, func(changed []string) {
		fmt.Fprintf(os.Stderr, "Changed: %s\n", strings.Join(changed, ", "))
		if err := generate(ctx, p, cfg, sources); err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		}
	})
}

func fileSources() []pipeline.Source {
	sources := make([]pipeline.Source, len(CLI.Input))
	for i, path := range CLI.Input {
		sources[i] = pipeline.FileSource(path)
	}
	return sources
}

// collectSources returns the input files, or stdin when none were given
func collectSources() ([]pipeline.Source, error) {
	if len(CLI.Input) > 0 {
		return fileSources(), nil
	}

	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return nil, errors.NewInputError("failed to access stdin", err)
	}

	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		if CLI.Interactive {
			data, err := readInteractiveInput()
			if err != nil {
				return nil, err
			}
			return []pipeline.Source{pipeline.BytesSource(pipeline.StdinName, data)}, nil
		}
		return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, errors.NewInputError("failed to read from stdin", err)
	}
	if len(data) == 0 {
		return nil, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	return []pipeline.Source{pipeline.BytesSource(pipeline.StdinName, data)}, nil
}

// writeOutput writes the declaration to file or stdout
func writeOutput(code string) error {
	if CLI.Output != "" {
		err := os.WriteFile(CLI.Output, []byte(code), 0644)
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		fmt.Fprintf(os.Stderr, "Generated code written to %s\n", CLI.Output)
		return nil
	}

	_, err := fmt.Print(code)
	if err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// readInteractiveInput lets users paste JSON and signal completion with
// Ctrl+D (EOF)
func readInteractiveInput() ([]byte, error) {
	fmt.Fprintln(os.Stderr, "jsoncodable interactive mode")
	fmt.Fprintln(os.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(os.Stdin)
	var jsonBuilder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		jsonBuilder.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewInputError("error reading input", err)
		}
	}

	if strings.TrimSpace(jsonBuilder.String()) == "" {
		return nil, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(os.Stderr, "\nProcessing JSON...")
	return []byte(jsonBuilder.String()), nil
}
