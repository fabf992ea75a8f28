package attendance

import (
	"errors"
	"strings"

	attendanceerrors "go-attendance/internal/attendance/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

func mapInsertError(err error) error {
	if err == nil {
		return nil
	}

	if isUniqueViolation(err, "uq_attendance_session_student") {
		return attendanceerrors.ErrAlreadyMarked
	}

	return err
}

// IsUniqueAuditViolation reports whether err is the duplicate-key failure
// raised when an audit row for the same attendance id already exists.
// Consumers treat it as a successfully replayed event.
func IsUniqueAuditViolation(err error) bool {
	return isUniqueViolation(err, "uq_audit_attendance")
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, constraint)
}
