package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Error codes returned in the JSON body of failed requests.
const (
	CodeValidation = "VALIDATION_FAILED"
	CodeAuth       = "AUTH_FAILED"
	CodeForbidden  = "FORBIDDEN"
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONFLICT"
	CodeBackend    = "BACKEND_ERROR"
	CodeInternal   = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewValidationError marks input rejected before any backend call was attempted.
func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewAuthError covers bad credentials, a missing profile and invalid or expired tokens.
func NewAuthError(message string) error {
	return NewDomainError(CodeAuth, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

// NewBackendError wraps a failed storage, database or identity call. The cause is kept
// for server-side logging only.
func NewBackendError(op string, err error) error {
	return &DomainError{
		Code:       CodeBackend,
		Message:    "backend request failed",
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"operation": op},
		Err:        err,
	}
}

// NewDanglingDocumentError reports a two-step delete whose file was removed but whose
// document could not be. The document id is kept in the details for operators.
func NewDanglingDocumentError(op, documentID string, err error) error {
	return &DomainError{
		Code:       CodeBackend,
		Message:    "backend request failed",
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"operation": op, "danglingDocument": documentID},
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsCode reports whether err carries the given DomainError code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fromFiberError(fiberErr)
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func fromFiberError(err *fiber.Error) *DomainError {
	code := CodeInternal
	switch {
	case err.Code == http.StatusNotFound:
		code = CodeNotFound
	case err.Code == http.StatusUnauthorized:
		code = CodeAuth
	case err.Code == http.StatusForbidden:
		code = CodeForbidden
	case err.Code == http.StatusRequestEntityTooLarge, err.Code >= 400 && err.Code < 500:
		code = CodeValidation
	}
	message := err.Message
	if err.Code >= 500 {
		message = "internal server error"
	}
	return &DomainError{Code: code, Message: message, HTTPStatus: err.Code, Err: err}
}

func MapError(err error) error {
	return ToDomainError(err)
}
