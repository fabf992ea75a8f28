package sessionerrors

import (
	"net/http"

	"go-attendance/internal/shared/apperror"
)

var (
	ErrSessionNotFound   = apperror.New(apperror.CodeNotFound, "Session not found or no longer active", http.StatusNotFound)
	ErrInvalidSessionID  = apperror.New(apperror.CodeInvalidInput, "Invalid session id", http.StatusBadRequest)
	ErrInvalidWindow     = apperror.New(apperror.CodeInvalidInput, "Session end time must be after start time", http.StatusBadRequest)
	ErrInvalidCoordinate = apperror.New(apperror.CodeInvalidInput, "Session center coordinate is out of range", http.StatusBadRequest)
	ErrSessionInactive   = apperror.New(apperror.CodePolicyViolation, "Session has been deactivated", http.StatusUnprocessableEntity)
	ErrNotSessionOwner   = apperror.New(apperror.CodeForbidden, "Only the lecturer who opened this session can modify it", http.StatusForbidden)
)
