package consumer

import (
	"context"
	"encoding/json"
	"errors"

	"go-attendance/internal/attendance"
	"go-attendance/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeAttendanceMarked projects attendance.marked events into the audit
// trail. Messages are committed only after the audit row is durable, so a
// crash replays the event; the unique attendance_id constraint makes the
// replay a no-op.
func ConsumeAttendanceMarked(
	ctx context.Context,
	reader *kafkago.Reader,
	auditService attendance.AuditService,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.attendance_audit")
	log.Info("attendance audit consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("attendance audit consumer stopped")
				return
			}
			log.Error("fetch attendance marked message failed", zap.Error(err))
			continue
		}

		var event events.AttendanceMarkedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode attendance_marked event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := auditService.RecordMarked(ctx, event); err != nil {
			if errors.Is(err, attendance.ErrMalformedAuditEvent) {
				log.Error("discarding malformed attendance_marked event",
					zap.String("attendance_id", event.AttendanceID),
					zap.Error(err),
				)
				_ = reader.CommitMessages(ctx, msg)
				continue
			}
			if attendance.IsUniqueAuditViolation(err) {
				log.Warn("audit row already exists for event, skipping",
					zap.String("attendance_id", event.AttendanceID),
					zap.String("session_id", event.SessionID),
				)
				_ = reader.CommitMessages(ctx, msg)
				continue
			}

			log.Error("record attendance audit failed",
				zap.String("attendance_id", event.AttendanceID),
				zap.String("session_id", event.SessionID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit attendance marked message failed", zap.Error(err))
			continue
		}

		log.Info("attendance audit recorded",
			zap.String("attendance_id", event.AttendanceID),
			zap.String("session_id", event.SessionID),
			zap.String("student_id", event.StudentID),
		)
	}
}
