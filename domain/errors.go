package domain

import (
	"errors"
	"fmt"
)

// DomainError represents errors in the domain layer
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

func (e DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e DomainError) Unwrap() error {
	return e.Cause
}

// Domain error codes
const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeFileNotFound      = "FILE_NOT_FOUND"
	ErrCodeFormatError       = "FORMAT_ERROR"
	ErrCodeAnalysisError     = "ANALYSIS_ERROR"
	ErrCodeConfigError       = "CONFIG_ERROR"
	ErrCodeOutputError       = "OUTPUT_ERROR"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
)

// Process exit codes
const (
	ExitCodeSuccess     = 0
	ExitCodeFailure     = 1
	ExitCodeFormatError = 2
	ExitCodeConfigError = 3
)

// RowError pinpoints the offending row of a malformed input file.
type RowError struct {
	File   string
	Row    int // 1-based, counting every physical record including the header
	Reason string
}

func (e *RowError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("%s: row %d: %s", e.File, e.Row, e.Reason)
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, cause error) error {
	return DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidInputError creates an invalid input error
func NewInvalidInputError(message string, cause error) error {
	return NewDomainError(ErrCodeInvalidInput, message, cause)
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string, cause error) error {
	return NewDomainError(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path), cause)
}

// NewFormatError creates a malformed-data error for a specific row
func NewFormatError(file string, row int, reason string) error {
	return NewDomainError(ErrCodeFormatError, "malformed input data", &RowError{File: file, Row: row, Reason: reason})
}

// NewAnalysisError creates an analysis error
func NewAnalysisError(message string, cause error) error {
	return NewDomainError(ErrCodeAnalysisError, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) error {
	return NewDomainError(ErrCodeConfigError, message, cause)
}

// NewConfigurationError creates a configuration error for an out-of-range hyperparameter
func NewConfigurationError(format string, args ...interface{}) error {
	return NewDomainError(ErrCodeConfigError, fmt.Sprintf(format, args...), nil)
}

// NewOutputError creates an output error
func NewOutputError(message string, cause error) error {
	return NewDomainError(ErrCodeOutputError, message, cause)
}

// NewUnsupportedFormatError creates an unsupported format error
func NewUnsupportedFormatError(format string) error {
	return NewDomainError(ErrCodeUnsupportedFormat, fmt.Sprintf("unsupported format: %s", format), nil)
}

// NewValidationError creates a validation error
func NewValidationError(message string) error {
	return NewDomainError(ErrCodeInvalidInput, message, nil)
}

// HasErrorCode reports whether err wraps a DomainError with the given code
func HasErrorCode(err error, code string) bool {
	var de DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsFormatError reports whether err is (or wraps) a FORMAT_ERROR
func IsFormatError(err error) bool {
	return HasErrorCode(err, ErrCodeFormatError)
}

// IsConfigurationError reports whether err is (or wraps) a CONFIG_ERROR
func IsConfigurationError(err error) bool {
	return HasErrorCode(err, ErrCodeConfigError)
}

// ExitCode maps an error to the process exit status
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitCodeSuccess
	case IsFormatError(err):
		return ExitCodeFormatError
	case IsConfigurationError(err):
		return ExitCodeConfigError
	default:
		return ExitCodeFailure
	}
}
