// Package apperr defines the error type carried from the point of detection
// to the HTTP boundary. Business logic raises an *Error with the proper
// status; nothing in between (including the transaction coordinator) may
// translate or swallow it. The router's error handler turns it into the
// JSON envelope {"error": message}.
package apperr

import "net/http"

// Error is a status-carrying application error.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// New builds an error with an arbitrary HTTP status.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// BadRequest marks input that violates a schema constraint (400).
func BadRequest(message string) *Error { return New(http.StatusBadRequest, message) }

// Unauthenticated marks a missing or unverifiable token (401).
func Unauthenticated(message string) *Error { return New(http.StatusUnauthorized, message) }

// Forbidden marks a failed role or ownership check (403).
func Forbidden(message string) *Error { return New(http.StatusForbidden, message) }

// NotFound marks an absent entity (404).
func NotFound(message string) *Error { return New(http.StatusNotFound, message) }

// Internal marks an upstream or unexpected failure (500).
func Internal(message string) *Error { return New(http.StatusInternalServerError, message) }
