package analyzer

import (
	"encoding/json"
	stderrors "errors"
	"math/big"
	"strings"
	"testing"

	"github.com/mcncl/jsoncodable/internal/config"
	"github.com/mcncl/jsoncodable/internal/errors"
	"github.com/mcncl/jsoncodable/internal/models"
	"github.com/mcncl/jsoncodable/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, jsonInput string) Type {
	t.Helper()
	ir, err := parser.ParseString(jsonInput)
	require.NoError(t, err)

	typ, err := NewAnalyzer().Analyze(ir)
	require.NoError(t, err)
	return typ
}

func TestAnalyze_Scalars(t *testing.T) {
	typ := analyze(t, `{"bool": true, "int": 123, "float": 3.1415, "string": "Go is fun", "nothing": null}`)

	expected := DictOf(map[string]Type{
		"bool":    BoolType,
		"int":     IntType,
		"float":   FloatType,
		"string":  StringType,
		"nothing": OptionalOf(UnknownType),
	})
	assert.True(t, expected.Equal(typ), "got %s", typ)
}

func TestAnalyze_SimpleObjectFieldOrder(t *testing.T) {
	typ := analyze(t, `{"b": 1, "a": true}`)

	require.Equal(t, Dict, typ.Kind)
	assert.Equal(t, []string{"a", "b"}, typ.SortedKeys())
	assert.Equal(t, BoolType, typ.Fields["a"])
	assert.Equal(t, IntType, typ.Fields["b"])
}

func TestAnalyze_NestedObject(t *testing.T) {
	typ := analyze(t, `{"nestedDict": {"key": "value", "deeper": {"n": 1.5}}}`)

	expected := DictOf(map[string]Type{
		"nestedDict": DictOf(map[string]Type{
			"key":    StringType,
			"deeper": DictOf(map[string]Type{"n": FloatType}),
		}),
	})
	assert.True(t, expected.Equal(typ), "got %s", typ)
}

func TestAnalyze_Arrays(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Type
	}{
		{
			name:     "array of ints",
			input:    `[1, 123]`,
			expected: ArrayOf(IntType),
		},
		{
			name:     "int and float widen to float",
			input:    `[1, 123.5]`,
			expected: ArrayOf(FloatType),
		},
		{
			name:     "bool and int widen to int",
			input:    `[true, 123]`,
			expected: ArrayOf(IntType),
		},
		{
			name:     "bool and float widen to float",
			input:    `[false, 1.25]`,
			expected: ArrayOf(FloatType),
		},
		{
			name:     "null before value",
			input:    `[null, 123]`,
			expected: ArrayOf(OptionalOf(IntType)),
		},
		{
			name:     "null after value",
			input:    `[123, null]`,
			expected: ArrayOf(OptionalOf(IntType)),
		},
		{
			name:     "empty array",
			input:    `[]`,
			expected: ArrayOf(UnknownType),
		},
		{
			name:     "only nulls",
			input:    `[null, null]`,
			expected: ArrayOf(OptionalOf(UnknownType)),
		},
		{
			name:     "nested arrays",
			input:    `[[1], [], [2.5]]`,
			expected: ArrayOf(ArrayOf(FloatType)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ := analyze(t, tt.input)
			assert.True(t, tt.expected.Equal(typ), "expected %s, got %s", tt.expected, typ)
		})
	}
}

func TestAnalyze_DictionaryArrayNotMatchingKeys(t *testing.T) {
	typ := analyze(t, `[{"a": true, "common": true}, {"common": false, "b": 1}]`)

	expected := ArrayOf(DictOf(map[string]Type{
		"a":      OptionalOf(BoolType),
		"b":      OptionalOf(IntType),
		"common": BoolType,
	}))
	assert.True(t, expected.Equal(typ), "got %s", typ)
}

func TestAnalyze_DictionaryArrayWithNullValues(t *testing.T) {
	typ := analyze(t, `[{"k": null}, {"k": 5}]`)

	expected := ArrayOf(DictOf(map[string]Type{"k": OptionalOf(IntType)}))
	assert.True(t, expected.Equal(typ), "got %s", typ)
}

func TestAnalyze_NestedDictionariesMergeAcrossElements(t *testing.T) {
	typ := analyze(t, `{"users": [
		{"id": 1, "meta": {"login": "a"}},
		{"id": 2, "meta": {"login": "b", "count": 3}},
		{"id": 3}
	]}`)

	expected := DictOf(map[string]Type{
		"users": ArrayOf(DictOf(map[string]Type{
			"id": IntType,
			"meta": OptionalOf(DictOf(map[string]Type{
				"login": StringType,
				"count": OptionalOf(IntType),
			})),
		})),
	})
	assert.True(t, expected.Equal(typ), "got %s", typ)
}

func TestAnalyze_IncompatibleTypes(t *testing.T) {
	ir, err := parser.ParseString(`{"items": [{"name": "a"}, {"name": {"first": "b"}}]}`)
	require.NoError(t, err)

	_, err = NewAnalyzer().Analyze(ir)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrIncompatibleTypes))

	var conflict *errors.IncompatibleTypesError
	require.True(t, stderrors.As(err, &conflict))
	assert.Equal(t, "$.items[1].name", conflict.Path)
	assert.Equal(t, "string", conflict.Left)
	assert.Equal(t, "dict(first: string)", conflict.Right)
}

func TestAnalyze_IncompatibleScalarArray(t *testing.T) {
	ir, err := parser.ParseString(`["a", 1]`)
	require.NoError(t, err)

	_, err = NewAnalyzer().Analyze(ir)
	assert.True(t, stderrors.Is(err, errors.ErrIncompatibleTypes))
}

func TestInfer_ValueKinds(t *testing.T) {
	a := NewAnalyzer()
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)

	tests := []struct {
		name     string
		value    models.JSONValue
		expected Type
	}{
		{"bool", true, BoolType},
		{"int", 3, IntType},
		{"int64", int64(3), IntType},
		{"big int", huge, IntType},
		{"float64", 3.5, FloatType},
		{"integral number literal", json.Number("12"), IntType},
		{"fractional number literal", json.Number("1.2"), FloatType},
		{"string", "s", StringType},
		{"null", nil, OptionalOf(UnknownType)},
		{"empty object", models.JSONObject{}, DictOf(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, err := a.Infer(tt.value)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(typ), "expected %s, got %s", tt.expected, typ)
		})
	}
}

func TestInfer_UnrecognizedValue(t *testing.T) {
	_, err := NewAnalyzer().Infer(models.JSONObject{
		"ok":  1,
		"bad": struct{}{},
	})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrUnrecognizedValue))
	assert.Contains(t, err.Error(), "$.bad")
}

func TestInfer_MaxDepth(t *testing.T) {
	deep := strings.Repeat("[", 20) + strings.Repeat("]", 20)
	ir, err := parser.ParseString(deep)
	require.NoError(t, err)

	_, err = NewAnalyzerWithOptions(Options{MaxDepth: 10}).Analyze(ir)
	assert.True(t, stderrors.Is(err, errors.ErrMaxDepthExceeded))

	_, err = NewAnalyzerWithOptions(Options{MaxDepth: 30}).Analyze(ir)
	assert.NoError(t, err)
}

func TestInfer_PathQuoting(t *testing.T) {
	_, err := NewAnalyzer().Infer(models.JSONObject{
		"with space": models.JSONArray{struct{}{}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `$["with space"][0]`)
}

func TestNewAnalyzerWithConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Types.StrictNumbers = true

	a := NewAnalyzerWithConfig(cfg)
	_, err := a.Infer(models.JSONArray{1, 2.5})
	assert.True(t, stderrors.Is(err, errors.ErrIncompatibleTypes))

	typ, err := NewAnalyzer().Infer(models.JSONArray{1, 2.5})
	require.NoError(t, err)
	assert.True(t, ArrayOf(FloatType).Equal(typ))
}
