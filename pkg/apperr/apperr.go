package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies application errors so handlers can map them to HTTP
// statuses without string matching.
type Code string

const (
	CodeValidation        Code = "VALIDATION_FAILED"
	CodeNotFound          Code = "NOT_FOUND"
	CodeConflict          Code = "CONFLICT"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeInvalidCredential Code = "INVALID_CREDENTIAL"
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeForbidden         Code = "FORBIDDEN"
	CodeDependency        Code = "DEPENDENCY_FAILURE"
	CodeInternal          Code = "INTERNAL_ERROR"
)

// Error standardizes application errors.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match two apperr values by code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// New constructs an Error with an explicit code.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func NewValidation(message string, details map[string]any) error {
	return &Error{Code: CodeValidation, Message: message, Details: details}
}

func NewNotFound(resource string) error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func NewConflict(message string) error {
	return &Error{Code: CodeConflict, Message: message}
}

func NewInvalidTransition(from, to string) error {
	return &Error{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("invalid transition %s -> %s", from, to),
		Details: map[string]any{"from": from, "to": to},
	}
}

func NewInvalidCredential(message string) error {
	return &Error{Code: CodeInvalidCredential, Message: message}
}

func NewUnauthorized(message string) error {
	return &Error{Code: CodeUnauthorized, Message: message}
}

func NewForbidden(message string) error {
	return &Error{Code: CodeForbidden, Message: message}
}

func NewDependency(message string, err error) error {
	return &Error{Code: CodeDependency, Message: message, Err: err}
}

func NewInternal(message string, err error) error {
	return &Error{Code: CodeInternal, Message: message, Err: err}
}

// CodeOf returns the code carried by err, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// HTTPStatus maps an error to the HTTP status a handler should respond with.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeValidation, CodeInvalidTransition:
		return http.StatusBadRequest
	case CodeInvalidCredential, CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeDependency:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Details returns structured details if err is an apperr, nil otherwise.
func Details(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}
