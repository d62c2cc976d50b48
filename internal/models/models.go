package models

// JSONValue is a generic type to represent any decoded JSON value.
// After normalization it holds one of: nil, bool, int, *big.Int, float64,
// string, JSONArray or JSONObject.
type JSONValue = any

// JSONObject represents a JSON object, which is a map of strings to JSONValues.
// It is an alias so that values can be handed to gojq unchanged.
type JSONObject = map[string]any

// JSONArray represents a JSON array, which is a slice of JSONValues.
type JSONArray = []any

// IntermediateRepresentation holds one parsed JSON document.
type IntermediateRepresentation struct {
	Root        JSONValue
	RootIsArray bool // True if the root of the JSON is an array vs an object
	// Source names where the document came from (a file path or "stdin").
	Source string
}
