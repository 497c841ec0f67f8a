// Package apperr defines the error kinds shared by the store, the engines and
// the HTTP layer. Components return *Error values; only the HTTP layer turns
// them into status codes.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation   Kind = "VALIDATION_ERROR"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindPermission   Kind = "FORBIDDEN"
	KindNotFound     Kind = "NOT_FOUND"
	KindConflict     Kind = "CONFLICT"
	// KindInconsistent means a parent row is missing for an existing child.
	KindInconsistent Kind = "INTERNAL_INCONSISTENCY"
)

type Error struct {
	Kind    Kind
	Entity  string
	ID      int64
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Details returns the context a caller needs to correct and resubmit.
func (e *Error) Details() map[string]any {
	details := map[string]any{}
	if e.Entity != "" {
		details["entity"] = e.Entity
	}
	if e.ID != 0 {
		details["id"] = e.ID
	}
	if e.Field != "" {
		details["field"] = e.Field
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

func Validation(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Permission(entity string, id int64, reason string) *Error {
	return &Error{Kind: KindPermission, Entity: entity, ID: id, Message: reason}
}

func NotFound(entity string, id int64) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id, Message: entity + " not found"}
}

func Conflict(entity, field, message string) *Error {
	return &Error{Kind: KindConflict, Entity: entity, Field: field, Message: message}
}

func Inconsistent(entity string, id int64, message string) *Error {
	return &Error{Kind: KindInconsistent, Entity: entity, ID: id, Message: message}
}

// KindOf reports the kind of err, or "" when err carries none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
