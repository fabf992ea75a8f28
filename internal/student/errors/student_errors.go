package studenterrors

import (
	"net/http"

	"go-attendance/internal/shared/apperror"
)

var (
	ErrStudentNotFound = apperror.New(
		apperror.CodeNotFound,
		"Student not found",
		http.StatusNotFound,
	)

	ErrInvalidStudentID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid student ID",
		http.StatusBadRequest,
	)

	ErrMatricNoAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Student with the same matric number already exists",
		http.StatusConflict,
	)

	ErrFaceNotRegistered = apperror.New(
		apperror.CodePolicyViolation,
		"No face template registered for this student",
		http.StatusUnprocessableEntity,
	)

	ErrFaceAlreadyRegistered = apperror.New(
		apperror.CodeConflict,
		"A face template is already registered for this student",
		http.StatusConflict,
	)

	ErrFaceQualityTooLow = apperror.New(
		apperror.CodeVerificationFailed,
		"Face image quality is too low for registration",
		http.StatusUnprocessableEntity,
	)

	ErrFaceAlreadyEnrolledElsewhere = apperror.New(
		apperror.CodeConflict,
		"This face is already enrolled for another student",
		http.StatusConflict,
	)
)
