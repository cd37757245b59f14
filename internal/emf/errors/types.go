package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/a3tai/mcp-emf-reader/internal/emf/record"
)

// EMFError describes a failure while loading, slicing or decoding a metafile
type EMFError struct {
	Type        ErrorType  `json:"type"`
	Message     string     `json:"message"`
	Context     string     `json:"context,omitempty"`
	Offset      int64      `json:"offset,omitempty"`
	Tag         record.Tag `json:"tag,omitempty"`
	Recoverable bool       `json:"recoverable"`
	FilePath    string     `json:"file_path,omitempty"`
	Err         error      `json:"-"`
}

// ErrorType represents the categories of metafile errors
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeNotLoaded: traversal requested with no source bound
	ErrorTypeNotLoaded
	// ErrorTypeMalformedRecord: a text-bearing payload violates its layout
	ErrorTypeMalformedRecord
	// ErrorTypeOutOfRange: SPL offsets or sizes exceed the buffer
	ErrorTypeOutOfRange
	// ErrorTypeSourceLoadFailure: bytes cannot be opened as a metafile
	ErrorTypeSourceLoadFailure
)

// Sentinels for errors.Is comparisons. Matching is by ErrorType only.
var (
	ErrNotLoaded         = &EMFError{Type: ErrorTypeNotLoaded}
	ErrMalformedRecord   = &EMFError{Type: ErrorTypeMalformedRecord}
	ErrOutOfRange        = &EMFError{Type: ErrorTypeOutOfRange}
	ErrSourceLoadFailure = &EMFError{Type: ErrorTypeSourceLoadFailure}
)

// Error implements the error interface
func (e *EMFError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
	if e.Context != "" {
		msg += ": " + e.Context
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause
func (e *EMFError) Unwrap() error {
	return e.Err
}

// Is matches any EMFError of the same type
func (e *EMFError) Is(target error) bool {
	var t *EMFError
	if !stderrors.As(target, &t) {
		return false
	}
	return t.Type == e.Type
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeNotLoaded:
		return "NOT_LOADED"
	case ErrorTypeMalformedRecord:
		return "MALFORMED_RECORD"
	case ErrorTypeOutOfRange:
		return "OUT_OF_RANGE"
	case ErrorTypeSourceLoadFailure:
		return "SOURCE_LOAD_FAILURE"
	default:
		return "UNKNOWN"
	}
}

// IsRecoverable reports whether errors of this type are contained per record.
// Only malformed records are; everything else aborts the operation.
func (et ErrorType) IsRecoverable() bool {
	return et == ErrorTypeMalformedRecord
}

// New creates an EMFError of the given type
func New(errorType ErrorType, message string) *EMFError {
	return &EMFError{
		Type:        errorType,
		Message:     message,
		Recoverable: errorType.IsRecoverable(),
	}
}

// Newf creates an EMFError with a formatted message
func Newf(errorType ErrorType, format string, args ...interface{}) *EMFError {
	return New(errorType, fmt.Sprintf(format, args...))
}

// Wrap wraps err as an EMFError of the given type
func Wrap(errorType ErrorType, message string, err error) *EMFError {
	e := New(errorType, message)
	e.Err = err
	return e
}

// Malformed creates a MalformedRecord error for the given record kind
func Malformed(tag record.Tag, format string, args ...interface{}) *EMFError {
	e := Newf(ErrorTypeMalformedRecord, format, args...)
	e.Tag = tag
	return e
}

// WithContext adds context to an existing EMFError
func (e *EMFError) WithContext(context string) *EMFError {
	e.Context = context
	return e
}

// WithOffset records the byte offset the error refers to
func (e *EMFError) WithOffset(offset int64) *EMFError {
	e.Offset = offset
	return e
}

// WithFile adds file path information to an existing EMFError
func (e *EMFError) WithFile(filePath string) *EMFError {
	e.FilePath = filePath
	return e
}

// IsType reports whether err is, or wraps, an EMFError of type t
func IsType(err error, t ErrorType) bool {
	var e *EMFError
	if !stderrors.As(err, &e) {
		return false
	}
	return e.Type == t
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var e *EMFError
	if !stderrors.As(err, &e) {
		return ErrorTypeUnknown
	}
	return e.Type
}
