package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"strconv"
	"strings"

	stderrors "errors" // Standard errors package

	"github.com/mcncl/jsoncodable/internal/errors" // Custom errors package
	"github.com/mcncl/jsoncodable/internal/models"
)

// Parse converts JSON data from an io.Reader into an IntermediateRepresentation
func Parse(reader io.Reader) (models.IntermediateRepresentation, error) {
	decoder := json.NewDecoder(reader)
	decoder.UseNumber() // Keep integers and floats apart

	var rootValue models.JSONValue
	if err := decoder.Decode(&rootValue); err != nil {
		if stderrors.Is(err, io.EOF) {
			return models.IntermediateRepresentation{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		if stderrors.As(err, &syntaxError) {
			return models.IntermediateRepresentation{}, errors.NewParsingError(
				fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
				errors.ErrInvalidJSON,
			)
		}
		if stderrors.As(err, &unmarshalTypeError) {
			return models.IntermediateRepresentation{}, errors.NewParsingError(
				fmt.Sprintf("JSON type error at offset %d for type %s", unmarshalTypeError.Offset, unmarshalTypeError.Type),
				errors.ErrInvalidJSON,
			)
		}
		if stderrors.Is(err, io.ErrUnexpectedEOF) {
			return models.IntermediateRepresentation{}, errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)
		}
		return models.IntermediateRepresentation{}, errors.NewParsingError("failed to decode JSON", err)
	}

	// Anything but whitespace after the first value is rejected.
	var trailingValue any
	if err := decoder.Decode(&trailingValue); err == nil {
		return models.IntermediateRepresentation{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
	} else if !stderrors.Is(err, io.EOF) {
		return models.IntermediateRepresentation{}, errors.NewParsingError("invalid trailing data after first JSON value", errors.ErrInvalidJSON)
	}

	rootValue, err := normalizeJSONValue(rootValue)
	if err != nil {
		return models.IntermediateRepresentation{}, err
	}

	_, isArray := rootValue.(models.JSONArray)
	return models.IntermediateRepresentation{
		Root:        rootValue,
		RootIsArray: isArray,
	}, nil
}

// normalizeJSONValue replaces json.Number with int, *big.Int or float64.
func normalizeJSONValue(val models.JSONValue) (models.JSONValue, error) {
	switch v := val.(type) {
	case map[string]any:
		for key, value := range v {
			n, err := normalizeJSONValue(value)
			if err != nil {
				return nil, err
			}
			v[key] = n
		}
		return v, nil
	case []any:
		for i, value := range v {
			n, err := normalizeJSONValue(value)
			if err != nil {
				return nil, err
			}
			v[i] = n
		}
		return v, nil
	case json.Number:
		return normalizeNumber(v)
	default:
		return v, nil // string, bool and nil are returned as is
	}
}

func normalizeNumber(num json.Number) (models.JSONValue, error) {
	s := string(num)
	if !IsIntegerLiteral(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errors.NewParsingError(fmt.Sprintf("number %s is out of range", s), errors.ErrInvalidJSON)
		}
		return f, nil
	}
	if i, err := strconv.ParseInt(s, 10, 0); err == nil {
		return int(i), nil
	}
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.NewParsingError(fmt.Sprintf("invalid number %s", s), errors.ErrInvalidJSON)
	}
	return b, nil
}

// IsIntegerLiteral reports whether a JSON number literal has no fraction or exponent.
func IsIntegerLiteral(s string) bool {
	return s != "" && !strings.ContainsAny(s, ".eE")
}

// ParseBytes parses JSON held in memory
func ParseBytes(data []byte) (models.IntermediateRepresentation, error) {
	if strings.TrimSpace(string(data)) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("input is empty", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(string(data)))
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.IntermediateRepresentation, error) {
	return ParseBytes([]byte(jsonString))
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (models.IntermediateRepresentation, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.IntermediateRepresentation{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		_ = file.Close()
	}()

	stat, err := file.Stat()
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	ir, err := Parse(file)
	if err != nil {
		return ir, err
	}
	ir.Source = filePath
	return ir, nil
}
