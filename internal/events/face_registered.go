package events

import "time"

const FaceRegisteredTopic = "campus.face.registered.v1"

type FaceRegisteredEvent struct {
	EventType    string    `json:"event_type"`
	StudentID    string    `json:"student_id"`
	MatricNo     string    `json:"matric_no"`
	Method       string    `json:"method"`
	QualityScore float64   `json:"quality_score"`
	BackendCount int       `json:"backend_count"`
	OccurredAt   time.Time `json:"occurred_at"`
}
