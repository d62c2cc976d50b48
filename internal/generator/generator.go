package generator

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mcncl/jsoncodable/internal/analyzer"
	"github.com/mcncl/jsoncodable/internal/config"
	"github.com/mcncl/jsoncodable/internal/errors"
)

// Generator renders a unified Type as a nested record declaration.
type Generator struct {
	rootName     string
	floatName    string
	conformance  string
	fieldKeyword string
	header       string
	indentUnit   string
	naming       NameOptions
}

// NewGenerator creates a new Generator with the default configuration.
func NewGenerator() *Generator {
	return NewGeneratorWithConfig(config.NewConfig())
}

// NewGeneratorWithConfig creates a new Generator from the naming and output configuration.
func NewGeneratorWithConfig(cfg *config.Config) *Generator {
	return &Generator{
		rootName:     cfg.RootName,
		floatName:    cfg.Types.FloatName,
		conformance:  cfg.Output.Conformance,
		fieldKeyword: cfg.Output.FieldKeyword,
		header:       cfg.Output.Header,
		indentUnit:   strings.Repeat(" ", cfg.Output.IndentWidth),
		naming: NameOptions{
			Overrides:   cfg.Naming.TypeNames,
			PascalCase:  cfg.Naming.PascalCaseTypes,
			Singularize: cfg.Naming.SingularizeArrayElements,
		},
	}
}

// rendered is one rendered type: the expression used at the field site
// (e.g. "[Item?]") and the declarations it needs, if any.
type rendered struct {
	expr string
	def  string
}

// Render produces the declaration text for root.
//
// Only a Dict, or Arrays that bottom out at a Dict, can be rendered. Array
// layers are unwrapped and the Dict becomes the root declaration; callers
// decoding such a document wrap the root type in as many arrays themselves.
func (g *Generator) Render(root analyzer.Type) (string, error) {
	for root.Kind == analyzer.Array {
		root = root.Element()
	}
	if root.Kind != analyzer.Dict {
		return "", fmt.Errorf("%w: found %s", errors.ErrInvalidRootType, root)
	}

	var buf bytes.Buffer
	if g.header != "" {
		buf.WriteString(strings.TrimRight(g.header, "\n"))
		buf.WriteString("\n\n")
	}

	def, err := g.renderDict(root, g.rootName, 0, analyzer.RootPath)
	if err != nil {
		return "", err
	}
	buf.WriteString(def)
	return buf.String(), nil
}

// RootDepth reports how many array layers wrap the root declaration.
func RootDepth(root analyzer.Type) int {
	depth := 0
	for root.Kind == analyzer.Array {
		root = root.Element()
		depth++
	}
	return depth
}

// renderType renders t at a field site. name is the type name already
// chosen for the dictionary that t leads to through Array and Optional
// layers, if any.
func (g *Generator) renderType(t analyzer.Type, level int, name string, path string) (rendered, error) {
	switch t.Kind {
	case analyzer.Bool:
		return rendered{expr: "Bool"}, nil
	case analyzer.Int:
		return rendered{expr: "Int"}, nil
	case analyzer.Float:
		return rendered{expr: g.floatName}, nil
	case analyzer.String:
		return rendered{expr: "String"}, nil
	case analyzer.Array:
		r, err := g.renderType(t.Element(), level, name, path+"[]")
		if err != nil {
			return rendered{}, err
		}
		r.expr = "[" + r.expr + "]"
		return r, nil
	case analyzer.Optional:
		r, err := g.renderType(t.Element(), level, name, path)
		if err != nil {
			return rendered{}, err
		}
		r.expr += "?"
		return r, nil
	case analyzer.Dict:
		def, err := g.renderDict(t, name, level, path)
		if err != nil {
			return rendered{}, err
		}
		return rendered{expr: name, def: def}, nil
	case analyzer.Unknown:
		return rendered{}, fmt.Errorf("%w: no concrete type was observed for %s (only nulls or empty arrays)", errors.ErrInternalInconsistency, path)
	default:
		return rendered{}, fmt.Errorf("%w: unexpected type kind %d at %s", errors.ErrInternalInconsistency, t.Kind, path)
	}
}

func (g *Generator) renderDict(t analyzer.Type, name string, level int, path string) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(g.indent(level))
	if g.conformance != "" {
		fmt.Fprintf(&buf, "struct %s: %s {\n", name, g.conformance)
	} else {
		fmt.Fprintf(&buf, "struct %s {\n", name)
	}

	// Sibling declarations share a scope, so their names must not collide.
	used := make(map[string]bool)

	for _, key := range t.SortedKeys() {
		field := t.Fields[key]
		nested := ""
		if inArray, ok := leadsToDict(field); ok {
			nested = uniqueName(TypeName(key, inArray, g.naming), used)
		}

		r, err := g.renderType(field, level+1, nested, path+"."+key)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&buf, "%s%s %s: %s\n", g.indent(level+1), g.fieldKeyword, key, r.expr)
		buf.WriteString(r.def)
	}

	buf.WriteString(g.indent(level))
	buf.WriteString("}\n")
	return buf.String(), nil
}

// leadsToDict follows Array and Optional layers and reports whether they end
// at a Dict, and whether an Array was crossed on the way.
func leadsToDict(t analyzer.Type) (inArray bool, ok bool) {
	for {
		switch t.Kind {
		case analyzer.Array:
			inArray = true
			t = t.Element()
		case analyzer.Optional:
			t = t.Element()
		case analyzer.Dict:
			return inArray, true
		default:
			return false, false
		}
	}
}

// uniqueName appends a counter to name until it is unused in the scope.
func uniqueName(name string, used map[string]bool) string {
	candidate := name
	for i := 2; used[candidate]; i++ {
		candidate = fmt.Sprintf("%s%d", name, i)
	}
	used[candidate] = true
	return candidate
}

func (g *Generator) indent(level int) string {
	return strings.Repeat(g.indentUnit, level)
}
