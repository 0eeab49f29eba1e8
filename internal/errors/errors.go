package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput       = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON      = errors.New("invalid JSON format")
	ErrMultipleJSON     = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrFileNotFound     = errors.New("file not found")
	ErrFileEmpty        = errors.New("file is empty")
	ErrNoInput          = errors.New("no input provided: please specify a file with -i or pipe JSON data to stdin")
	ErrInvalidFilePath  = errors.New("invalid file path")
	ErrUnsupportedValue = errors.New("unsupported value type")
	ErrEmptyIdentity    = errors.New("expected one non-empty string argument")
	ErrUnknownMethod    = errors.New("unknown bridge method")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrMethodDenied     = errors.New("bridge method disabled by configuration")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput      ErrorType = "input"
	ErrorTypeParsing    ErrorType = "parsing"
	ErrorTypeConversion ErrorType = "conversion"
	ErrorTypeSDK        ErrorType = "sdk"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeOutput     ErrorType = "output"
	ErrorTypeUnknown    ErrorType = "unknown"
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

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInput,
		Message: message,
		Err:     err,
	}
}

// NewParsingError creates a new error related to JSON parsing
func NewParsingError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParsing,
		Message: message,
		Err:     err,
	}
}

// NewConversionError creates a new error raised while converting a
// structured value between representations
func NewConversionError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConversion,
		Message: message,
		Err:     err,
	}
}

// NewSDKError creates a new error for a failed vendor SDK call. The method is
// the runtime-facing name of the bridge method that forwarded the call.
func NewSDKError(method string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeSDK,
		Message: fmt.Sprintf("%s failed", method),
		Err:     err,
	}
}

// NewConfigError creates a new error related to configuration loading
func NewConfigError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
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

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			return fmt.Sprintf("JSON parsing error: %s", appErr.Message)
		case ErrorTypeConversion:
			return fmt.Sprintf("Conversion error: %s", appErr.Message)
		case ErrorTypeSDK:
			return fmt.Sprintf("SDK error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
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
	if errors.Is(err, ErrUnsupportedValue) {
		return "Error: The payload contains a value that cannot cross the bridge."
	}
	if errors.Is(err, ErrMethodDenied) {
		return "Error: This bridge method is disabled in the configuration file."
	}
	if errors.Is(err, ErrUnknownMethod) {
		return "Error: Unknown bridge method. Run 'smtbridge methods' for the list."
	}

	// Generic error message for unknown errors
	return fmt.Sprintf("Error: %v", err)
}
