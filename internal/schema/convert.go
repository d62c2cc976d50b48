package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mcncl/jsoncodable/internal/analyzer"
	"github.com/mcncl/jsoncodable/internal/errors"
)

// Converter converts a JSON Schema into the Type that sample documents
// matching it would infer to.
type Converter struct {
	schema      *Schema
	analyzer    *analyzer.Analyzer
	definitions map[string]*Schema
	resolved    map[string]analyzer.Type // Cache for already resolved $refs
	resolving   map[string]bool          // $refs currently being expanded
}

// NewConverter creates a new schema converter. Branches of anyOf, oneOf and
// multi-valued type keywords are unified with a.
func NewConverter(schema *Schema, a *analyzer.Analyzer) *Converter {
	// Merge definitions and $defs
	definitions := make(map[string]*Schema)
	for k, v := range schema.Definitions {
		definitions[k] = v
	}
	for k, v := range schema.Defs {
		definitions[k] = v
	}

	return &Converter{
		schema:      schema,
		analyzer:    a,
		definitions: definitions,
		resolved:    make(map[string]analyzer.Type),
		resolving:   make(map[string]bool),
	}
}

// Convert processes the whole schema.
func (c *Converter) Convert() (analyzer.Type, error) {
	return c.convertSchema(c.schema, "#")
}

func (c *Converter) convertSchema(schema *Schema, pointer string) (analyzer.Type, error) {
	if schema == nil {
		return analyzer.UnknownType, nil
	}

	t, err := c.convertShape(schema, pointer)
	if err != nil {
		return analyzer.Type{}, err
	}
	if schema.Nullable || schema.Type.IsNullable() {
		return analyzer.OptionalOf(t), nil
	}
	return t, nil
}

func (c *Converter) convertShape(schema *Schema, pointer string) (analyzer.Type, error) {
	if schema.Ref != "" {
		return c.resolveRef(schema.Ref, pointer)
	}

	if len(schema.AllOf) > 0 {
		merged, err := c.mergeAllOf(schema.AllOf, pointer)
		if err != nil {
			return analyzer.Type{}, err
		}
		return c.convertSchema(merged, pointer)
	}

	if len(schema.AnyOf) > 0 || len(schema.OneOf) > 0 {
		anyOf, err := c.convertBranches(schema.AnyOf, pointer+"/anyOf")
		if err != nil {
			return analyzer.Type{}, err
		}
		oneOf, err := c.convertBranches(schema.OneOf, pointer+"/oneOf")
		if err != nil {
			return analyzer.Type{}, err
		}
		return c.unify(anyOf, oneOf, pointer)
	}

	return c.convertTyped(schema, pointer)
}

// convertTyped handles the type keyword, falling back to the shape implied by
// properties, items, enum or const when it is absent.
func (c *Converter) convertTyped(schema *Schema, pointer string) (analyzer.Type, error) {
	types := schema.Type.NonNull()
	if len(schema.Type.Types) > 0 && len(types) == 0 {
		// "type": "null"
		return analyzer.OptionalOf(analyzer.UnknownType), nil
	}

	if len(types) == 0 {
		switch {
		case len(schema.Properties) > 0:
			types = []string{"object"}
		case schema.Items != nil:
			types = []string{"array"}
		case len(schema.Enum) > 0:
			return c.inferValues(schema.Enum, pointer+"/enum")
		case schema.Const != nil:
			return c.inferValues([]any{schema.Const}, pointer+"/const")
		default:
			return analyzer.UnknownType, nil
		}
	}

	result := analyzer.UnknownType
	for _, name := range types {
		t, err := c.convertNamed(name, schema, pointer)
		if err != nil {
			return analyzer.Type{}, err
		}
		result, err = c.unify(result, t, pointer+"/type")
		if err != nil {
			return analyzer.Type{}, err
		}
	}
	return result, nil
}

func (c *Converter) convertNamed(name string, schema *Schema, pointer string) (analyzer.Type, error) {
	switch name {
	case "object":
		return c.convertObject(schema, pointer)
	case "array":
		elem, err := c.convertSchema(schema.Items, pointer+"/items")
		if err != nil {
			return analyzer.Type{}, err
		}
		return analyzer.ArrayOf(elem), nil
	case "string":
		return analyzer.StringType, nil
	case "integer":
		return analyzer.IntType, nil
	case "number":
		return analyzer.FloatType, nil
	case "boolean":
		return analyzer.BoolType, nil
	default:
		return analyzer.Type{}, fmt.Errorf("%w: type '%s' at %s", errors.ErrUnsupportedSchema, name, pointer)
	}
}

func (c *Converter) convertObject(schema *Schema, pointer string) (analyzer.Type, error) {
	requiredSet := make(map[string]bool)
	for _, r := range schema.Required {
		requiredSet[r] = true
	}

	// Sort property names for deterministic error reporting
	propNames := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		propNames = append(propNames, name)
	}
	sort.Strings(propNames)

	fields := make(map[string]analyzer.Type, len(propNames))
	for _, propName := range propNames {
		t, err := c.convertSchema(schema.Properties[propName], pointer+"/properties/"+escapePointer(propName))
		if err != nil {
			return analyzer.Type{}, err
		}
		// A property that may be absent decodes like one that may be null.
		if !requiredSet[propName] {
			t = analyzer.OptionalOf(t)
		}
		fields[propName] = t
	}

	return analyzer.DictOf(fields), nil
}

func (c *Converter) convertBranches(branches []*Schema, pointer string) (analyzer.Type, error) {
	result := analyzer.UnknownType
	for i, branch := range branches {
		t, err := c.convertSchema(branch, fmt.Sprintf("%s/%d", pointer, i))
		if err != nil {
			return analyzer.Type{}, err
		}
		result, err = c.unify(result, t, pointer)
		if err != nil {
			return analyzer.Type{}, err
		}
	}
	return result, nil
}

// inferValues types literal enum or const values the same way sample data is typed.
func (c *Converter) inferValues(values []any, pointer string) (analyzer.Type, error) {
	result := analyzer.UnknownType
	for _, v := range values {
		t, err := c.analyzer.Infer(v)
		if err != nil {
			return analyzer.Type{}, fmt.Errorf("at %s: %w", pointer, err)
		}
		result, err = c.unify(result, t, pointer)
		if err != nil {
			return analyzer.Type{}, err
		}
	}
	return result, nil
}

func (c *Converter) unify(x, y analyzer.Type, pointer string) (analyzer.Type, error) {
	t, err := c.analyzer.Unify(x, y)
	if err != nil {
		return analyzer.Type{}, fmt.Errorf("at %s: %w", pointer, err)
	}
	return t, nil
}

// resolveRef resolves a local $ref. Recursive references have no finite Type
// and are rejected.
func (c *Converter) resolveRef(ref string, pointer string) (analyzer.Type, error) {
	if cached, ok := c.resolved[ref]; ok {
		return cached, nil
	}
	if c.resolving[ref] {
		return analyzer.Type{}, fmt.Errorf("%w: recursive $ref %s at %s", errors.ErrUnsupportedSchema, ref, pointer)
	}

	target, err := c.lookup(ref)
	if err != nil {
		return analyzer.Type{}, fmt.Errorf("%w at %s", err, pointer)
	}

	c.resolving[ref] = true
	t, err := c.convertSchema(target, ref)
	delete(c.resolving, ref)
	if err != nil {
		return analyzer.Type{}, err
	}

	c.resolved[ref] = t
	return t, nil
}

func (c *Converter) lookup(ref string) (*Schema, error) {
	if ref == "#" {
		return c.schema, nil
	}
	for _, prefix := range []string{"#/definitions/", "#/$defs/"} {
		if strings.HasPrefix(ref, prefix) {
			name := unescapePointer(strings.TrimPrefix(ref, prefix))
			if def, ok := c.definitions[name]; ok {
				return def, nil
			}
			return nil, fmt.Errorf("%w: unresolved $ref %s", errors.ErrInvalidSchema, ref)
		}
	}
	// External refs not supported
	return nil, fmt.Errorf("%w: external $ref %s", errors.ErrUnsupportedSchema, ref)
}

// mergeAllOf merges the object members of allOf into a single object schema.
func (c *Converter) mergeAllOf(schemas []*Schema, pointer string) (*Schema, error) {
	merged := &Schema{
		Type:       SchemaType{Types: []string{"object"}},
		Properties: make(map[string]*Schema),
	}

	for i, s := range schemas {
		resolved := s
		if s.Ref != "" {
			target, err := c.lookup(s.Ref)
			if err != nil {
				return nil, fmt.Errorf("%w at %s/allOf/%d", err, pointer, i)
			}
			resolved = target
		}

		if len(resolved.Properties) == 0 && resolved.Type.NonNull() != nil && resolved.Type.NonNull()[0] != "object" {
			return nil, fmt.Errorf("%w: allOf member %d is not an object at %s", errors.ErrUnsupportedSchema, i, pointer)
		}

		for k, v := range resolved.Properties {
			merged.Properties[k] = v
		}
		merged.Required = append(merged.Required, resolved.Required...)
		if merged.Title == "" {
			merged.Title = resolved.Title
		}
	}

	return merged, nil
}

func escapePointer(s string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(s)
}

func unescapePointer(s string) string {
	return strings.NewReplacer("~1", "/", "~0", "~").Replace(s)
}
