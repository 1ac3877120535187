package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the categories of document extraction failure
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeInvalidInput
	ErrorTypeUnreadable
	ErrorTypeNoDataset
	ErrorTypeMalformedDataset
	ErrorTypeNoText
	ErrorTypeUnrenderableForm
)

// PDFError is a classified extraction failure for a single document
type PDFError struct {
	Type     ErrorType `json:"type"`
	Message  string    `json:"message"`
	FilePath string    `json:"file_path,omitempty"`
	Err      error     `json:"-"`
}

// Error implements the error interface
func (e *PDFError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
	if e.FilePath != "" {
		msg += ": " + e.FilePath
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *PDFError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a PDFError of the same type, so the sentinels
// below can be matched with errors.Is.
func (e *PDFError) Is(target error) bool {
	t, ok := target.(*PDFError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeInvalidInput:
		return "INVALID_INPUT"
	case ErrorTypeUnreadable:
		return "UNREADABLE"
	case ErrorTypeNoDataset:
		return "NO_DATASET"
	case ErrorTypeMalformedDataset:
		return "MALFORMED_DATASET"
	case ErrorTypeNoText:
		return "NO_TEXT"
	case ErrorTypeUnrenderableForm:
		return "UNRENDERABLE_FORM"
	default:
		return "UNKNOWN"
	}
}

// IsRecoverable reports whether extraction continues past an error of this type.
// A missing or malformed dataset falls through to the text path; everything
// else ends processing of the document.
func (et ErrorType) IsRecoverable() bool {
	switch et {
	case ErrorTypeNoDataset, ErrorTypeMalformedDataset:
		return true
	default:
		return false
	}
}

// Sentinels for errors.Is matching
var (
	ErrInvalidInput     = &PDFError{Type: ErrorTypeInvalidInput}
	ErrUnreadable       = &PDFError{Type: ErrorTypeUnreadable}
	ErrNoDataset        = &PDFError{Type: ErrorTypeNoDataset}
	ErrMalformedDataset = &PDFError{Type: ErrorTypeMalformedDataset}
	ErrNoText           = &PDFError{Type: ErrorTypeNoText}
	ErrUnrenderableForm = &PDFError{Type: ErrorTypeUnrenderableForm}
)

// UnrenderableFormMessage is the actionable diagnostic for a document whose
// text layer is the proprietary-renderer placeholder.
const UnrenderableFormMessage = "detected an XFA-based form whose embedded dataset could not be decoded; " +
	"the text layer only contains the proprietary renderer placeholder"

// NewPDFError creates a new PDFError
func NewPDFError(errorType ErrorType, message string) *PDFError {
	return &PDFError{Type: errorType, Message: message}
}

// WrapError wraps a standard error as a PDFError
func WrapError(errorType ErrorType, message string, err error) *PDFError {
	return &PDFError{Type: errorType, Message: message, Err: err}
}

// WithFile adds file path information to an existing PDFError
func (e *PDFError) WithFile(filePath string) *PDFError {
	e.FilePath = filePath
	return e
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var pe *PDFError
	if stderrors.As(err, &pe) {
		return pe.Type
	}
	return ErrorTypeUnknown
}

// Reason returns a short human readable cause suitable for batch reports
func Reason(err error) string {
	var pe *PDFError
	if !stderrors.As(err, &pe) {
		return err.Error()
	}
	if pe.Err != nil {
		return pe.Message + ": " + pe.Err.Error()
	}
	return pe.Message
}
