// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for Courtside.

It provides a rich error type that bridges the gap between upstream/domain
errors and the JSON envelope returned to the admin application.

Architecture:

  - AppError: A struct containing machine-readable Code and user-friendly messages.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.
  - Taxonomy: Reconciliation failures carry their own codes so the caller can
    tell "identity rejected", "identity orphaned" and "profile rejected" apart.

Every error that leaves the service layer should be an [AppError] so that
calling code never needs to inspect raw transport errors.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// # Error Codes

const (
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeConflict           = "CONFLICT"
	CodeValidation         = "VALIDATION_ERROR"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"

	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTransportFailure   = "TRANSPORT_FAILURE"
	CodeUpstream           = "UPSTREAM_ERROR"
	CodeIdentityValidation = "IDENTITY_VALIDATION"
	CodeDuplicateEmail     = "DUPLICATE_EMAIL"
	CodeDuplicateNationID  = "DUPLICATE_IDENTIFICATION"
	CodeIdentityResolution = "IDENTITY_RESOLUTION_FAILED"
	CodeProfileCreation    = "PROFILE_CREATION_FAILED"
)

// AppError is the canonical error type for the Courtside API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "CONFLICT").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause returns a copy of e carrying cause for server-side logging.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Athlete") // Returns "Athlete not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// InvalidToken creates a 401 [AppError] for a credential that cannot be decoded.
func InvalidToken(cause error) *AppError {
	return &AppError{
		Code:       CodeInvalidToken,
		Message:    "The received credential could not be decoded",
		HTTPStatus: http.StatusUnauthorized,
		Cause:      cause,
	}
}

// # Identity Reconciliation

// IdentityValidation creates a 422 [AppError] for a rejected identity record.
func IdentityValidation(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeIdentityValidation,
		Message:    msg,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

// DuplicateEmail creates a 409 [AppError] for an email already registered upstream.
func DuplicateEmail(email string) *AppError {
	return &AppError{
		Code:       CodeDuplicateEmail,
		Message:    fmt.Sprintf("The email %q is already registered. Please use another email.", email),
		HTTPStatus: http.StatusConflict,
	}
}

// DuplicateIdentification creates a 409 [AppError] for a national id already registered upstream.
func DuplicateIdentification(identification string) *AppError {
	return &AppError{
		Code:       CodeDuplicateNationID,
		Message:    fmt.Sprintf("The identification %q is already registered.", identification),
		HTTPStatus: http.StatusConflict,
	}
}

// IdentityResolution creates a 502 [AppError] for a person that was created but
// whose identifier could not be read back. It must not be retried blindly.
func IdentityResolution(cause error) *AppError {
	return &AppError{
		Code:       CodeIdentityResolution,
		Message:    "The person was created but its identifier could not be resolved. Contact an administrator.",
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// ProfileCreation creates a 502 [AppError] for a primary-service rejection after
// the linked person already exists.
func ProfileCreation(msg string, cause error) *AppError {
	if msg == "" {
		msg = "The profile could not be created"
	}
	return &AppError{
		Code:       CodeProfileCreation,
		Message:    msg,
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// Upstream creates a 502 [AppError] for an upstream service that answered with a failure.
func Upstream(msg string, cause error) *AppError {
	if msg == "" {
		msg = "The upstream service reported an error"
	}
	return &AppError{
		Code:       CodeUpstream,
		Message:    msg,
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// TransportFailure creates a 503 [AppError] for an upstream that never answered.
func TransportFailure(cause error) *AppError {
	return &AppError{
		Code:       CodeTransportFailure,
		Message:    "Could not reach server",
		HTTPStatus: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

// ServiceUnavailable creates a 503 [AppError].
func ServiceUnavailable(msg string) *AppError {
	return &AppError{
		Code:       CodeServiceUnavailable,
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
