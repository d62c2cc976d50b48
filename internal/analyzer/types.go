package analyzer

import (
	"sort"
	"strings"
)

// Kind identifies a Type variant.
type Kind int

const (
	// Unknown carries no information yet. It must be unified away before rendering.
	Unknown Kind = iota
	Bool
	Int
	Float
	String
	Array
	Dict
	Optional
)

var kindNames = map[Kind]string{
	Unknown:  "unknown",
	Bool:     "bool",
	Int:      "int",
	Float:    "double",
	String:   "string",
	Array:    "array",
	Dict:     "dict",
	Optional: "optional",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// Type is the inferred structural shape of one or more JSON values.
//
// Elem is set for Array and Optional, Fields for Dict. Types are never
// mutated once built; the constructors copy what they are given.
type Type struct {
	Kind   Kind
	Elem   *Type
	Fields map[string]Type
}

// Scalar and placeholder types.
var (
	UnknownType = Type{Kind: Unknown}
	BoolType    = Type{Kind: Bool}
	IntType     = Type{Kind: Int}
	FloatType   = Type{Kind: Float}
	StringType  = Type{Kind: String}
)

// ArrayOf returns Array(elem).
func ArrayOf(elem Type) Type {
	return Type{Kind: Array, Elem: &elem}
}

// OptionalOf returns Optional(elem). An already optional elem is returned
// unchanged so that Optional(Optional(T)) cannot be built.
func OptionalOf(elem Type) Type {
	if elem.Kind == Optional {
		return elem
	}
	return Type{Kind: Optional, Elem: &elem}
}

// DictOf returns Dict(fields) over a copy of fields.
func DictOf(fields map[string]Type) Type {
	copied := make(map[string]Type, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return Type{Kind: Dict, Fields: copied}
}

// Element returns the wrapped type of an Array or Optional, or Unknown when unset.
func (t Type) Element() Type {
	if t.Elem == nil {
		return UnknownType
	}
	return *t.Elem
}

// IsOptional reports whether t is wrapped in Optional.
func (t Type) IsOptional() bool {
	return t.Kind == Optional
}

// SortedKeys returns the dictionary keys in lexicographic order.
func (t Type) SortedKeys() []string {
	keys := make([]string, 0, len(t.Fields))
	for k := range t.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports structural equality.
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case Array, Optional:
		if t.Elem == nil || other.Elem == nil {
			return t.Elem == other.Elem
		}
		return t.Elem.Equal(*other.Elem)
	case Dict:
		if len(t.Fields) != len(other.Fields) {
			return false
		}
		for key, ft := range t.Fields {
			ot, ok := other.Fields[key]
			if !ok || !ft.Equal(ot) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String returns a debug description such as "array(optional(int))".
func (t Type) String() string {
	switch t.Kind {
	case Array, Optional:
		inner := "unknown"
		if t.Elem != nil {
			inner = t.Elem.String()
		}
		return t.Kind.String() + "(" + inner + ")"
	case Dict:
		parts := make([]string, 0, len(t.Fields))
		for _, key := range t.SortedKeys() {
			parts = append(parts, key+": "+t.Fields[key].String())
		}
		return "dict(" + strings.Join(parts, ", ") + ")"
	default:
		return t.Kind.String()
	}
}
