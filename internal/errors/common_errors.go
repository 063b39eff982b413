package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeMissingColumn  ErrorType = "MISSING_COLUMN"
	ErrTypeParsing        ErrorType = "PARSING"
	ErrTypeRenderContract ErrorType = "RENDER_CONTRACT"
	ErrTypeValidation     ErrorType = "VALIDATION"
	ErrTypeStorage        ErrorType = "STORAGE"
	ErrTypeConfig         ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// AsAppError extracts the first AppError in err's chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err wraps an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Type == errType
}

// NewMissingColumnError reports a required column absent from a source
func NewMissingColumnError(source, column string) *AppError {
	return NewAppError(ErrTypeMissingColumn,
		fmt.Sprintf("required column %q missing in %s", column, source), nil).
		WithContext("source", source).
		WithContext("column", column)
}

// NewMissingSheetError reports a source without the expected sheet
func NewMissingSheetError(source, sheet string) *AppError {
	return NewAppError(ErrTypeMissingColumn,
		fmt.Sprintf("sheet %q missing in %s", sheet, source), nil).
		WithContext("source", source).
		WithContext("sheet", sheet)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewAccuracyParseError reports an accuracy cell that is not a percentage
func NewAccuracyParseError(source string, row int, value string, cause error) *AppError {
	return NewAppError(ErrTypeParsing,
		fmt.Sprintf("invalid accuracy %q in %s row %d", value, source, row), cause).
		WithContext("source", source).
		WithContext("row", row).
		WithContext("value", value)
}

// NewRenderContractError reports a broken workbook layout invariant
func NewRenderContractError(message string, cause error) *AppError {
	return NewAppError(ErrTypeRenderContract, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
