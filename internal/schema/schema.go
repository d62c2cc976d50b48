// Package schema reads JSON Schema documents as an alternative input to sample
// data and writes inferred types back out as JSON Schema.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/mcncl/jsoncodable/internal/errors"
)

// SchemaType handles JSON Schema type field which can be string or array of strings
type SchemaType struct {
	Types []string
}

// UnmarshalJSON handles both string and array forms of type
func (st *SchemaType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		st.Types = []string{s}
		return nil
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		st.Types = arr
		return nil
	}

	return fmt.Errorf("type must be string or array of strings")
}

// IsNullable returns true if "null" is one of the allowed types
func (st SchemaType) IsNullable() bool {
	for _, t := range st.Types {
		if t == "null" {
			return true
		}
	}
	return false
}

// NonNull returns the listed types other than "null".
func (st SchemaType) NonNull() []string {
	var out []string
	for _, t := range st.Types {
		if t != "null" {
			out = append(out, t)
		}
	}
	return out
}

// Schema is the subset of a JSON Schema document that shapes a type.
// Constraint keywords (lengths, ranges, patterns) are ignored.
type Schema struct {
	Ref   string     `json:"$ref,omitempty"`
	Title string     `json:"title,omitempty"`
	Type  SchemaType `json:"type,omitempty"`

	Properties map[string]*Schema `json:"properties,omitempty"`
	Required   []string           `json:"required,omitempty"`
	Items      *Schema            `json:"items,omitempty"`

	// Enum and Const keep numbers as json.Number.
	Enum  []any `json:"enum,omitempty"`
	Const any   `json:"const,omitempty"`

	// Nullable is the OpenAPI 3.0 spelling of a "null" type member.
	Nullable bool `json:"nullable,omitempty"`

	AllOf []*Schema `json:"allOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty"`

	Definitions map[string]*Schema `json:"definitions,omitempty"`
	Defs        map[string]*Schema `json:"$defs,omitempty"`
}

// ParseFile reads and parses a JSON Schema from a file
func ParseFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	return ParseBytes(data)
}

// ParseBytes checks that data is a well-formed JSON Schema and decodes it.
func ParseBytes(data []byte) (*Schema, error) {
	if err := Check(data); err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var schema Schema
	if err := decoder.Decode(&schema); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidSchema, err)
	}

	return &schema, nil
}

// ParseString parses JSON Schema from a string
func ParseString(s string) (*Schema, error) {
	return ParseBytes([]byte(s))
}

// Check compiles data against its metaschema and reports any violation or
// unresolvable reference.
func Check(data []byte) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidSchema, err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", doc); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidSchema, err)
	}
	if _, err := compiler.Compile("schema.json"); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidSchema, err)
	}
	return nil
}
