package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput      = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON     = errors.New("invalid JSON format")
	ErrMultipleJSON    = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrFileNotFound    = errors.New("file not found")
	ErrFileEmpty       = errors.New("file is empty")
	ErrNoInput         = errors.New("no input provided: please specify a file with -i or pipe JSON data to stdin")
	ErrInvalidFilePath = errors.New("invalid file path")
	ErrNoQueryResult   = errors.New("query produced no values")
)

// Inference and rendering errors
var (
	ErrUnrecognizedValue     = errors.New("unrecognized JSON value")
	ErrIncompatibleTypes     = errors.New("incompatible types")
	ErrInvalidRootType       = errors.New("root value must be an object or an array of objects")
	ErrInternalInconsistency = errors.New("internal inconsistency")
	ErrMaxDepthExceeded      = errors.New("maximum nesting depth exceeded")
	ErrInvalidSchema         = errors.New("invalid JSON Schema")
	ErrUnsupportedSchema     = errors.New("unsupported JSON Schema construct")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput    ErrorType = "input"
	ErrorTypeParsing  ErrorType = "parsing"
	ErrorTypeQuery    ErrorType = "query"
	ErrorTypeAnalysis ErrorType = "analysis"
	ErrorTypeRender   ErrorType = "render"
	ErrorTypeOutput   ErrorType = "output"
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeUnknown  ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// IncompatibleTypesError reports two shapes that cannot be unified.
// Left and Right hold the debug descriptions of both types.
type IncompatibleTypesError struct {
	Path  string
	Left  string
	Right string
}

func (e *IncompatibleTypesError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("unable to merge type %s with %s", e.Left, e.Right)
	}
	return fmt.Sprintf("unable to merge type %s with %s at %s", e.Left, e.Right, e.Path)
}

// Unwrap lets errors.Is match ErrIncompatibleTypes.
func (e *IncompatibleTypesError) Unwrap() error {
	return ErrIncompatibleTypes
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInput,
		Message: message,
		Err:     err,
	}
}

// NewParsingError creates a new error related to JSON deserialization
func NewParsingError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParsing,
		Message: message,
		Err:     err,
	}
}

// NewQueryError creates a new error related to sub-document selection
func NewQueryError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeQuery,
		Message: message,
		Err:     err,
	}
}

// NewAnalysisError creates a new error related to type inference
func NewAnalysisError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeAnalysis,
		Message: message,
		Err:     err,
	}
}

// NewRenderError creates a new error related to rendering declarations
func NewRenderError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeRender,
		Message: message,
		Err:     err,
	}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeOutput,
		Message: message,
		Err:     err,
	}
}

// NewConfigError creates a new error related to configuration
func NewConfigError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var conflict *IncompatibleTypesError
	if errors.As(err, &conflict) {
		return fmt.Sprintf("Error: Incompatible types: %s", conflict.Error())
	}
	if errors.Is(err, ErrInvalidRootType) {
		return "Error: Invalid root type. The document must be an object or an array of objects."
	}
	if errors.Is(err, ErrUnrecognizedValue) {
		return fmt.Sprintf("Error: Unrecognized value: %v", err)
	}
	if errors.Is(err, ErrInternalInconsistency) {
		return fmt.Sprintf("Error: Internal inconsistency: %v", err)
	}
	if errors.Is(err, ErrInvalidSchema) || errors.Is(err, ErrUnsupportedSchema) {
		var appErr *AppError
		if errors.As(err, &appErr) && appErr.Err != nil {
			return fmt.Sprintf("Error: Schema error: %s: %v", appErr.Message, appErr.Err)
		}
		return fmt.Sprintf("Error: Schema error: %v", err)
	}
	if errors.Is(err, ErrMaxDepthExceeded) {
		return "Error: The document is nested too deeply. Raise types.max_depth in the config file to allow it."
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Error: Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			return fmt.Sprintf("Error: Deserialization error: %s", appErr.Message)
		case ErrorTypeQuery:
			return fmt.Sprintf("Error: Query error: %s", appErr.Message)
		case ErrorTypeAnalysis:
			return fmt.Sprintf("Error: Type analysis error: %s", appErr.Message)
		case ErrorTypeRender:
			return fmt.Sprintf("Error: Render error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Error: Output error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Error: Configuration error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	// Handle standard errors
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide valid JSON data."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if errors.Is(err, ErrMultipleJSON) {
		return "Error: Multiple JSON values found. Please provide a single JSON object or array."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty. Please provide a file with valid JSON content."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file with -i or pipe JSON data to stdin."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}

	return fmt.Sprintf("Error: %v", err)
}
