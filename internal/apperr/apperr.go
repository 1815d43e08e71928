// Package apperr holds the error taxonomy shared by the catalog and order
// services: malformed input, violated business rules, missing resources and
// concurrent-write conflicts. The HTTP layer maps each kind to a status code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError means the caller's input was malformed (blank reason, empty
// item list, non-positive quantity). Checked before any state or stock check.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func Validation(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// BusinessRuleError means a precondition for a state transition did not hold:
// wrong source status, insufficient stock, empty resulting item set.
type BusinessRuleError struct {
	Reason string
}

func (e *BusinessRuleError) Error() string { return e.Reason }

func BusinessRule(format string, args ...any) *BusinessRuleError {
	return &BusinessRuleError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError identifies a missing order or drink.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func NotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictError means the record changed between read and write (stale
// version). The caller should re-read and retry.
type ConflictError struct {
	Resource string
	ID       string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s modified concurrently: %s", e.Resource, e.ID)
}

func Conflict(resource, id string) *ConflictError {
	return &ConflictError{Resource: resource, ID: id}
}

// HTTPStatus maps an error to the status code the API should answer with.
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		be *BusinessRuleError
		ne *NotFoundError
		ce *ConflictError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &be):
		return http.StatusBadRequest
	case errors.As(err, &ne):
		return http.StatusNotFound
	case errors.As(err, &ce):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
