package api

import (
	"bytes"
	"fmt"

	"github.com/cloudleakage/cloudleakage/analysis"
)

// An ErrorCode indicates the type of error that occurred.
type ErrorCode string

// Valid error codes:
const (
	ValidationError ErrorCode = "validation"
	NotFound        ErrorCode = "not-found"
	Unavailable     ErrorCode = "unavailable"
	TooLarge        ErrorCode = "too-large"
	Unprocessable   ErrorCode = "unprocessable"
)

// An Error is a known error returned from the API.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	var buf bytes.Buffer
	buf.WriteString(string(e.Code))
	if e.Message != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Message)
	}
	return buf.String()
}

// CodeOf returns the code of a known api error, or an empty code otherwise.
func CodeOf(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}

func errorf(code ErrorCode, format string, args ...interface{}) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// analysisError translates a terminal analysis failure into an api error.
func analysisError(err error) error {
	switch analysis.KindOf(err) {
	case analysis.MalformedInput:
		return &Error{Code: ValidationError, Message: err.Error()}
	case analysis.UnsupportedFormatVersion, analysis.DuplicateAddress:
		return &Error{Code: Unprocessable, Message: err.Error()}
	case analysis.InputTooComplex:
		return &Error{Code: TooLarge, Message: err.Error()}
	}
	return err
}
