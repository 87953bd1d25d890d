// Package utils provides shared helpers for errors, logging and validation.
package utils

import (
	"errors"
	"fmt"

	"github.com/puremark/puremark-go/internal/constants"
)

// Custom error types for the client
var (
	ErrNotFound   = errors.New("record not found")
	ErrValidation = errors.New("validation error")
	ErrTransport  = errors.New("transport error")
	ErrServer     = errors.New("server error")
	ErrStorage    = errors.New("storage error")
)

// AppError represents a client error with additional context.
// Validation errors are produced before any network attempt; transport and
// server errors are folded into normalized scan results and never escape the
// scan client as raw errors.
type AppError struct {
	Err     error  // The underlying sentinel error
	Kind    string // Machine-readable error kind (e.g. "EmptyImage")
	Message string // User-friendly error message
	DevInfo string // Additional information for developers
}

// Error implements the error interface
func (e *AppError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the given sentinel, kind and message
func New(err error, kind, message string) *AppError {
	return &AppError{
		Err:     err,
		Kind:    kind,
		Message: message,
	}
}

// NewEmptyImageError reports a missing or empty image payload.
func NewEmptyImageError() *AppError {
	return &AppError{
		Err:     ErrValidation,
		Kind:    "EmptyImage",
		Message: "No image data provided",
	}
}

// NewImageTooLargeError reports a payload whose estimated decoded size
// exceeds the configured maximum. The message names the limit in MiB.
func NewImageTooLargeError() *AppError {
	return &AppError{
		Err:     ErrValidation,
		Kind:    "ImageTooLarge",
		Message: fmt.Sprintf("Image too large. Maximum size is %dMB", constants.MaxImageMiB),
	}
}

// NewUnstrippedDataURLError reports a payload still carrying its data-URL prefix.
func NewUnstrippedDataURLError() *AppError {
	return &AppError{
		Err:     ErrValidation,
		Kind:    "UnstrippedDataUrl",
		Message: "Image data must be raw base64 without a data: URL prefix",
	}
}

// NewUnrecognizedFormatError reports a payload whose leading bytes match no
// recognized encoded-image signature (JPEG, PNG or WebP).
func NewUnrecognizedFormatError() *AppError {
	return &AppError{
		Err:     ErrValidation,
		Kind:    "UnrecognizedFormat",
		Message: "Unrecognized image format. Supported formats are JPEG, PNG and WebP",
	}
}

// NewValidationError creates a new validation error for a specific field
func NewValidationError(field, message string) *AppError {
	if field != "" {
		message = fmt.Sprintf("%s: %s", field, message)
	}
	return &AppError{
		Err:     ErrValidation,
		Kind:    "Validation",
		Message: message,
	}
}

// NewNotFoundError creates a new not found error for a stored record
func NewNotFoundError(resourceType string, identifier interface{}) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Kind:    "NotFound",
		Message: fmt.Sprintf("%s with identifier '%v' not found", resourceType, identifier),
	}
}

// NewTransportError wraps a network-level failure (unreachable host, DNS
// failure, connection reset) with a human-readable message.
func NewTransportError(err error) *AppError {
	devInfo := ""
	if err != nil {
		devInfo = err.Error()
	}
	return &AppError{
		Err:     ErrTransport,
		Kind:    "Transport",
		Message: fmt.Sprintf("Network error: %s", devInfo),
		DevInfo: devInfo,
	}
}

// NewServerError reports a non-2xx response. The message carries the status
// code and the response body text.
func NewServerError(statusCode int, body string) *AppError {
	return &AppError{
		Err:     ErrServer,
		Kind:    "Server",
		Message: fmt.Sprintf("Server error: %d - %s", statusCode, body),
	}
}

// NewStorageError wraps a device persistence failure. Read failures degrade
// to defaults at the call site; write failures propagate to the caller.
func NewStorageError(op string, err error) *AppError {
	devInfo := ""
	if err != nil {
		devInfo = err.Error()
	}
	return &AppError{
		Err:     ErrStorage,
		Kind:    "Storage",
		Message: fmt.Sprintf("Storage %s failed", op),
		DevInfo: devInfo,
	}
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsStorageError checks if an error is a storage error
func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorage)
}

// ErrorKind returns the machine-readable kind for an error, or "" when the
// error is not an AppError.
func ErrorKind(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}
