package attendanceerrors

import (
	"net/http"

	"go-attendance/internal/shared/apperror"
)

var (
	ErrAlreadyMarked = apperror.New(apperror.CodePolicyViolation, "Attendance already marked for this session", http.StatusConflict)

	ErrVerificationFailed = apperror.New(apperror.CodeVerificationFailed, "Attendance verification failed", http.StatusUnprocessableEntity)

	ErrInvalidCoordinate = apperror.New(apperror.CodeInvalidInput, "Claimed coordinate is out of valid range", http.StatusBadRequest)

	ErrNotEnrolled = apperror.New(apperror.CodePolicyViolation, "Student is not enrolled in this course", http.StatusUnprocessableEntity)
)
