package app

import (
	"errors"
	"fmt"
	"net/http"

	"taskboard/api/internal/apperr"
	"taskboard/api/internal/auth"
)

type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation:   http.StatusBadRequest,
	apperr.KindUnauthorized: http.StatusUnauthorized,
	apperr.KindPermission:   http.StatusForbidden,
	apperr.KindNotFound:     http.StatusNotFound,
	apperr.KindConflict:     http.StatusConflict,
	apperr.KindInconsistent: http.StatusInternalServerError,
}

// toDomainError translates component errors into the HTTP error shape.
// Anything unrecognised becomes a generic 500.
func toDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		status, ok := kindStatus[appErr.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		details := appErr.Details()
		if details == nil {
			return domainError(status, string(appErr.Kind), appErr.Message, nil)
		}
		return domainError(status, string(appErr.Kind), appErr.Message, details)
	}
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) {
		return domainError(http.StatusUnauthorized, string(apperr.KindUnauthorized), "Unauthorized", nil)
	}
	return domainError(http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil)
}
