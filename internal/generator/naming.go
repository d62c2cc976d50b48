package generator

import (
	"strings"
	"unicode/utf8"

	"github.com/iancoleman/strcase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CapitalizeFirst upper-cases the first letter and leaves the rest untouched.
func CapitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return cases.Upper(language.Und).String(string(r)) + s[size:]
}

// Singularize drops a single trailing "s". A bare "s" is kept.
func Singularize(s string) string {
	if s == "s" {
		return s
	}
	return strings.TrimSuffix(s, "s")
}

// NameOptions controls TypeName.
type NameOptions struct {
	// Overrides maps a field key to the exact type name to use.
	Overrides map[string]string
	// PascalCase converts snake/kebab keys such as "line_items" to "LineItems".
	PascalCase bool
	// Singularize strips a trailing "s" for dictionaries reached through an array.
	Singularize bool
}

// TypeName derives the name of the record type nested under the field key.
func TypeName(key string, inArray bool, opts NameOptions) string {
	if name, ok := opts.Overrides[key]; ok {
		return name
	}

	name := key
	if inArray && opts.Singularize {
		name = Singularize(name)
	}
	if opts.PascalCase {
		if camel := strcase.ToCamel(name); camel != "" {
			return camel
		}
	}
	return CapitalizeFirst(name)
}
