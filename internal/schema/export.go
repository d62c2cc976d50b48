package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/mcncl/jsoncodable/internal/analyzer"
	"github.com/mcncl/jsoncodable/internal/errors"
)

// Draft is the JSON Schema dialect written by Exporter.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Exporter writes an inferred Type as a JSON Schema document.
type Exporter struct {
	Title string
}

// NewExporter creates an Exporter titling the root schema with rootName.
func NewExporter(rootName string) *Exporter {
	return &Exporter{Title: rootName}
}

// Render returns the indented schema document for root. Unlike the record
// renderer it accepts any root shape; Unknown becomes the empty schema.
func (e *Exporter) Render(root analyzer.Type) (string, error) {
	s := FromType(root)
	s.Version = Draft
	s.Title = e.Title

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInternalInconsistency, err)
	}
	return string(data) + "\n", nil
}

// FromType converts t to the schema that accepts exactly the documents t describes.
func FromType(t analyzer.Type) *jsonschema.Schema {
	switch t.Kind {
	case analyzer.Bool:
		return &jsonschema.Schema{Type: "boolean"}
	case analyzer.Int:
		return &jsonschema.Schema{Type: "integer"}
	case analyzer.Float:
		return &jsonschema.Schema{Type: "number"}
	case analyzer.String:
		return &jsonschema.Schema{Type: "string"}
	case analyzer.Array:
		return &jsonschema.Schema{Type: "array", Items: FromType(t.Element())}
	case analyzer.Optional:
		if t.Element().Kind == analyzer.Unknown {
			return &jsonschema.Schema{Type: "null"}
		}
		return &jsonschema.Schema{AnyOf: []*jsonschema.Schema{
			FromType(t.Element()),
			{Type: "null"},
		}}
	case analyzer.Dict:
		s := &jsonschema.Schema{
			Type:       "object",
			Properties: jsonschema.NewProperties(),
		}
		for _, key := range t.SortedKeys() {
			field := t.Fields[key]
			s.Properties.Set(key, FromType(field))
			if !field.IsOptional() {
				s.Required = append(s.Required, key)
			}
		}
		return s
	default:
		return &jsonschema.Schema{}
	}
}
