// Package pipeline runs input documents through parsing, sub-document
// selection, inference, unification and rendering.
package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mcncl/jsoncodable/internal/analyzer"
	"github.com/mcncl/jsoncodable/internal/config"
	"github.com/mcncl/jsoncodable/internal/errors"
	"github.com/mcncl/jsoncodable/internal/generator"
	"github.com/mcncl/jsoncodable/internal/models"
	"github.com/mcncl/jsoncodable/internal/parser"
	"github.com/mcncl/jsoncodable/internal/query"
	"github.com/mcncl/jsoncodable/internal/schema"
)

// StdinName names the standard input source in logs and errors.
const StdinName = "stdin"

// Source is one input document. Data, when non-nil, is used instead of
// reading the file at Name.
type Source struct {
	Name string
	Data []byte
}

// FileSource reads the document at path when the pipeline runs.
func FileSource(path string) Source {
	return Source{Name: path}
}

// BytesSource wraps a document already held in memory.
func BytesSource(name string, data []byte) Source {
	if data == nil {
		data = []byte{}
	}
	return Source{Name: name, Data: data}
}

// Renderer turns the unified root Type into output text.
type Renderer interface {
	Render(root analyzer.Type) (string, error)
}

// Result is the outcome of one run.
type Result struct {
	// Type is the root type unified across all sources.
	Type analyzer.Type
	// Output is the rendered text.
	Output string
	// RootDepth counts the array layers around the root declaration.
	RootDepth int
}

// Pipeline is configured once and can be run repeatedly.
type Pipeline struct {
	analyzer   *analyzer.Analyzer
	renderer   Renderer
	query      *query.Query
	workers    int
	fromSchema bool
}

// New builds a Pipeline from the configuration, choosing the renderer by
// output.format and compiling the query, if any.
func New(cfg *config.Config) (*Pipeline, error) {
	p := &Pipeline{
		analyzer:   analyzer.NewAnalyzerWithConfig(cfg),
		workers:    cfg.Inputs.Workers,
		fromSchema: cfg.Inputs.FromSchema,
	}

	switch cfg.Output.Format {
	case config.FormatJSONSchema:
		p.renderer = schema.NewExporter(cfg.RootName)
	default:
		p.renderer = generator.NewGeneratorWithConfig(cfg)
	}

	if cfg.Query != "" {
		if p.fromSchema {
			return nil, errors.NewConfigError("a query cannot be applied to JSON Schema input", nil)
		}
		q, err := query.Compile(cfg.Query)
		if err != nil {
			return nil, errors.NewQueryError(err.Error(), err)
		}
		p.query = q
	}

	return p, nil
}

// Run processes every source concurrently, unifies their root types in
// input order and renders the result once.
func (p *Pipeline) Run(ctx context.Context, sources ...Source) (*Result, error) {
	if len(sources) == 0 {
		return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	start := time.Now()
	types := make([]analyzer.Type, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := p.inferSource(src)
			if err != nil {
				return err
			}
			types[i] = t
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	root := analyzer.UnknownType
	for i, t := range types {
		var err error
		root, err = p.analyzer.Unify(root, t)
		if err != nil {
			return nil, errors.NewAnalysisError(
				fmt.Sprintf("'%s' does not match the shape of the inputs before it", sources[i].Name),
				err,
			)
		}
	}
	slog.Debug("unified inputs", slog.Int("sources", len(sources)), slog.String("type", root.String()))

	output, err := p.renderer.Render(root)
	if err != nil {
		return nil, errors.NewRenderError("failed to render declaration", err)
	}

	slog.Debug("rendered declaration",
		slog.Int("bytes", len(output)),
		slog.Duration("elapsed", time.Since(start)),
	)

	return &Result{
		Type:      root,
		Output:    output,
		RootDepth: generator.RootDepth(root),
	}, nil
}

// inferSource produces the root type of one source.
func (p *Pipeline) inferSource(src Source) (analyzer.Type, error) {
	if p.fromSchema {
		return p.convertSchema(src)
	}

	ir, err := p.parse(src)
	if err != nil {
		return analyzer.Type{}, withSource(src.Name, err)
	}
	slog.Debug("parsed input", slog.String("source", src.Name), slog.Bool("root_is_array", ir.RootIsArray))

	value := ir.Root
	if p.query != nil {
		value, err = p.query.Select(value)
		if err != nil {
			return analyzer.Type{}, errors.NewQueryError(
				fmt.Sprintf("query '%s' failed on %s", p.query, src.Name),
				err,
			)
		}
		slog.Debug("selected sub-document", slog.String("source", src.Name), slog.String("query", p.query.String()))
	}

	t, err := p.analyzer.Infer(value)
	if err != nil {
		return analyzer.Type{}, errors.NewAnalysisError(fmt.Sprintf("failed to infer types for %s", src.Name), err)
	}
	slog.Debug("inferred type", slog.String("source", src.Name), slog.String("kind", t.Kind.String()))
	return t, nil
}

func (p *Pipeline) parse(src Source) (models.IntermediateRepresentation, error) {
	if src.Data == nil {
		return parser.ParseFile(src.Name)
	}
	ir, err := parser.ParseBytes(src.Data)
	ir.Source = src.Name
	return ir, err
}

func (p *Pipeline) convertSchema(src Source) (analyzer.Type, error) {
	data := src.Data
	if data == nil {
		var err error
		data, err = os.ReadFile(src.Name)
		if err != nil {
			if os.IsNotExist(err) {
				return analyzer.Type{}, errors.NewInputError(fmt.Sprintf("file '%s' not found", src.Name), errors.ErrFileNotFound)
			}
			return analyzer.Type{}, errors.NewInputError(fmt.Sprintf("failed to read file '%s'", src.Name), err)
		}
	}

	s, err := schema.ParseBytes(data)
	if err != nil {
		return analyzer.Type{}, errors.NewParsingError(fmt.Sprintf("%s is not a valid JSON Schema", src.Name), err)
	}

	t, err := schema.NewConverter(s, p.analyzer).Convert()
	if err != nil {
		return analyzer.Type{}, errors.NewAnalysisError(fmt.Sprintf("failed to convert schema %s", src.Name), err)
	}
	slog.Debug("converted schema", slog.String("source", src.Name), slog.String("kind", t.Kind.String()))
	return t, nil
}

// withSource prefixes a parsing error with the file it came from.
func withSource(name string, err error) error {
	var appErr *errors.AppError
	if name == StdinName || !stderrors.As(err, &appErr) || appErr.Type != errors.ErrorTypeParsing {
		return err
	}
	return &errors.AppError{
		Type:    appErr.Type,
		Message: fmt.Sprintf("%s: %s", name, appErr.Message),
		Err:     appErr.Err,
	}
}
