package query

import (
	stderrors "errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsoncodable/internal/errors"
	"github.com/mcncl/jsoncodable/internal/parser"
)

func mustParse(t *testing.T, input string) any {
	t.Helper()
	ir, err := parser.ParseString(input)
	require.NoError(t, err)
	return ir.Root
}

func TestSelect_SingleResult(t *testing.T) {
	doc := mustParse(t, `{"data": {"user": {"name": "John", "age": 30}}}`)

	result, err := Select(doc, ".data.user")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "John", "age": 30}, result)
}

func TestSelect_MultipleResultsBecomeArray(t *testing.T) {
	doc := mustParse(t, `{"items": [{"id": 1}, {"id": 2}, {"id": 3}]}`)

	result, err := Select(doc, ".items[]")
	require.NoError(t, err)
	assert.Equal(t, []any{
		map[string]any{"id": 1},
		map[string]any{"id": 2},
		map[string]any{"id": 3},
	}, result)
}

func TestSelect_Identity(t *testing.T) {
	doc := mustParse(t, `[1, 2.5]`)

	result, err := Select(doc, ".")
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2.5}, result)
}

func TestSelect_BigIntegers(t *testing.T) {
	doc := mustParse(t, `{"id": 123456789012345678901234567890}`)

	result, err := Select(doc, ".id")
	require.NoError(t, err)
	_, ok := result.(*big.Int)
	assert.True(t, ok, "got %T", result)
}

func TestSelect_NoResult(t *testing.T) {
	tests := []struct {
		name       string
		expression string
	}{
		{"missing key", ".missing"},
		{"empty", "empty"},
		{"only nulls", ".items[] | .gone"},
	}

	doc := mustParse(t, `{"items": [{"id": 1}]}`)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Select(doc, tt.expression)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, errors.ErrNoQueryResult))
		})
	}
}

func TestSelect_Errors(t *testing.T) {
	doc := mustParse(t, `{"items": 5}`)

	_, err := Select(doc, ".items[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid jq expression")

	_, err = Select(doc, ".items[]")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query .items[]")
}

func TestCompile_Reuse(t *testing.T) {
	q, err := Compile(".name")
	require.NoError(t, err)
	assert.Equal(t, ".name", q.String())

	for _, name := range []string{"a", "b"} {
		result, err := q.Select(map[string]any{"name": name})
		require.NoError(t, err)
		assert.Equal(t, name, result)
	}
}
