package events

import "time"

const AttendanceMarkedTopic = "campus.attendance.marked.v1"

type AttendanceMarkedEvent struct {
	EventType        string    `json:"event_type"`
	AttendanceID     string    `json:"attendance_id"`
	SessionID        string    `json:"session_id"`
	StudentID        string    `json:"student_id"`
	MatricNo         string    `json:"matric_no"`
	FaceVerified     bool      `json:"face_verified"`
	LocationVerified bool      `json:"location_verified"`
	Confidence       float64   `json:"confidence"`
	DistanceMeters   float64   `json:"distance_meters"`
	Method           string    `json:"method"`
	LatencyMS        int64     `json:"latency_ms"`
	OccurredAt       time.Time `json:"occurred_at"`
}
