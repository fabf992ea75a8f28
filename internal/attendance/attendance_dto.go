package attendance

import "time"

type MarkRequest struct {
	SessionID string   `json:"session_id" binding:"required,uuid"`
	ImageData string   `json:"image_data" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"required,min=-180,max=180"`
}

type AttendanceResponse struct {
	ID                 string    `json:"id"`
	SessionID          string    `json:"session_id"`
	StudentID          string    `json:"student_id"`
	Confidence         float64   `json:"confidence"`
	DistanceMeters     float64   `json:"distance_meters"`
	FaceVerified       bool      `json:"face_verified"`
	LocationVerified   bool      `json:"location_verified"`
	Method             string    `json:"method"`
	VerificationStatus string    `json:"verification_status"`
	LatencyMS          int64     `json:"latency_ms"`
	MarkedAt           time.Time `json:"marked_at"`
}

type SessionAttendanceResponse struct {
	AttendanceResponse
	MatricNo string `json:"matric_no"`
	FullName string `json:"full_name"`
}

// FaceDetail reports the biometric half of a rejected attempt with the
// measured confidence so the client can show actionable guidance.
type FaceDetail struct {
	Verified   bool    `json:"verified"`
	Confidence float64 `json:"confidence"`
	Threshold  float64 `json:"threshold"`
	Method     string  `json:"method,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

// LocationDetail reports the geofence half of a rejected attempt.
type LocationDetail struct {
	Verified       bool    `json:"verified"`
	DistanceMeters float64 `json:"distance_meters"`
	AllowedRadius  float64 `json:"allowed_radius"`
	Status         string  `json:"status"`
}

// RejectionDetails is attached to verification failures. Both halves are
// always populated because both checks always run.
type RejectionDetails struct {
	Reasons  []string        `json:"reasons"`
	Face     *FaceDetail     `json:"face_detail,omitempty"`
	Location *LocationDetail `json:"location_detail,omitempty"`
}
