package courseerrors

import (
	"net/http"

	"go-attendance/internal/shared/apperror"
)

var (
	ErrCourseNotFound = apperror.New(
		apperror.CodeNotFound,
		"Course not found",
		http.StatusNotFound,
	)

	ErrInvalidCourseID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid course ID",
		http.StatusBadRequest,
	)

	ErrCourseCodeExists = apperror.New(
		apperror.CodeConflict,
		"Course with the same code already exists",
		http.StatusConflict,
	)

	ErrAlreadyEnrolled = apperror.New(
		apperror.CodeConflict,
		"Student is already enrolled in this course",
		http.StatusConflict,
	)

	ErrNotCourseLecturer = apperror.New(
		apperror.CodeForbidden,
		"Only the course lecturer can perform this action",
		http.StatusForbidden,
	)
)
