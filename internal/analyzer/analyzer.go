package analyzer

import (
	"encoding/json"
	"fmt"
	"math/big"
	"regexp"
	"strconv"

	"github.com/mcncl/jsoncodable/internal/config"
	"github.com/mcncl/jsoncodable/internal/errors"
	"github.com/mcncl/jsoncodable/internal/models"
	"github.com/mcncl/jsoncodable/internal/parser"
)

// DefaultMaxDepth bounds how deeply nested a document may be.
const DefaultMaxDepth = 512

// RootPath is the path of the document root in error messages.
const RootPath = "$"

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Options controls inference and unification.
type Options struct {
	// StrictNumbers disables numeric widening, so Bool, Int and Float never unify.
	StrictNumbers bool
	// MaxDepth is the deepest nesting accepted. Zero means DefaultMaxDepth.
	MaxDepth int
}

// Analyzer converts decoded JSON values into Types and unifies them.
// It holds no state between calls and is safe for concurrent use.
type Analyzer struct {
	opts Options
}

// NewAnalyzer creates a new Analyzer with lenient numeric widening.
func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithOptions(Options{})
}

// NewAnalyzerWithOptions creates a new Analyzer with explicit options.
func NewAnalyzerWithOptions(opts Options) *Analyzer {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &Analyzer{opts: opts}
}

// NewAnalyzerWithConfig creates a new Analyzer from the types section of the configuration.
func NewAnalyzerWithConfig(cfg *config.Config) *Analyzer {
	return NewAnalyzerWithOptions(Options{
		StrictNumbers: cfg.Types.StrictNumbers,
		MaxDepth:      cfg.Types.MaxDepth,
	})
}

// Analyze infers the Type of a parsed document.
func (a *Analyzer) Analyze(ir models.IntermediateRepresentation) (Type, error) {
	return a.infer(ir.Root, RootPath, 0)
}

// Infer converts a decoded JSON value into a Type.
func (a *Analyzer) Infer(value models.JSONValue) (Type, error) {
	return a.infer(value, RootPath, 0)
}

func (a *Analyzer) infer(value models.JSONValue, path string, depth int) (Type, error) {
	if depth > a.opts.MaxDepth {
		return Type{}, fmt.Errorf("%w: deeper than %d levels at %s", errors.ErrMaxDepthExceeded, a.opts.MaxDepth, path)
	}

	switch v := value.(type) {
	case nil:
		return OptionalOf(UnknownType), nil
	case bool:
		return BoolType, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, *big.Int:
		return IntType, nil
	case float32, float64:
		return FloatType, nil
	case json.Number:
		if parser.IsIntegerLiteral(string(v)) {
			return IntType, nil
		}
		return FloatType, nil
	case string:
		return StringType, nil
	case models.JSONObject:
		return a.inferObject(v, path, depth)
	case models.JSONArray:
		return a.inferArray(v, path, depth)
	default:
		return Type{}, fmt.Errorf("%w: %T at %s", errors.ErrUnrecognizedValue, v, path)
	}
}

func (a *Analyzer) inferObject(obj models.JSONObject, path string, depth int) (Type, error) {
	fields := make(map[string]Type, len(obj))
	for key, val := range obj {
		fieldType, err := a.infer(val, fieldPath(path, key), depth+1)
		if err != nil {
			return Type{}, err
		}
		fields[key] = fieldType
	}
	return Type{Kind: Dict, Fields: fields}, nil
}

func (a *Analyzer) inferArray(arr models.JSONArray, path string, depth int) (Type, error) {
	acc := UnknownType
	for i, element := range arr {
		elemPath := indexPath(path, i)
		elemType, err := a.infer(element, elemPath, depth+1)
		if err != nil {
			return Type{}, err
		}
		acc, err = a.unify(acc, elemType, elemPath)
		if err != nil {
			return Type{}, err
		}
	}
	return ArrayOf(acc), nil
}

func fieldPath(parent, key string) string {
	if identifierRegex.MatchString(key) {
		return parent + "." + key
	}
	return parent + "[" + strconv.Quote(key) + "]"
}

func indexPath(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}
