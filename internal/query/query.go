// Package query selects the sub-document to infer from with a jq expression.
package query

import (
	"errors"
	"fmt"

	"github.com/itchyny/gojq"

	apperrors "github.com/mcncl/jsoncodable/internal/errors"
	"github.com/mcncl/jsoncodable/internal/models"
)

// Query is a compiled jq expression. It is safe for concurrent use.
type Query struct {
	expression string
	code       *gojq.Code
}

// Compile parses and compiles a jq expression.
func Compile(expression string) (*Query, error) {
	parsed, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}

	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}

	return &Query{expression: expression, code: code}, nil
}

// String returns the source expression.
func (q *Query) String() string {
	return q.expression
}

// Select runs the query over value. A single result is returned as is;
// several results are collected into an array so they unify as siblings.
// Null results are dropped.
func (q *Query) Select(value models.JSONValue) (models.JSONValue, error) {
	var results models.JSONArray

	iter := q.code.Run(value)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}

		if err, isErr := v.(error); isErr {
			var haltErr *gojq.HaltError
			if errors.As(err, &haltErr) && haltErr.Value() == nil {
				break
			}
			return nil, fmt.Errorf("query %s: %w", q.expression, err)
		}

		// Skip nil values
		if v == nil {
			continue
		}
		results = append(results, v)
	}

	switch len(results) {
	case 0:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNoQueryResult, q.expression)
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

// Select compiles expression and runs it over value.
func Select(value models.JSONValue, expression string) (models.JSONValue, error) {
	q, err := Compile(expression)
	if err != nil {
		return nil, err
	}
	return q.Select(value)
}
