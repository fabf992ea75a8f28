package session

import "time"

type CreateSessionRequest struct {
	CourseID     string    `json:"course_id" binding:"required,uuid"`
	Topic        string    `json:"topic" binding:"omitempty,max=255"`
	StartsAt     time.Time `json:"starts_at" binding:"required"`
	EndsAt       time.Time `json:"ends_at" binding:"required"`
	CenterLat    float64   `json:"center_lat" binding:"required,min=-90,max=90"`
	CenterLng    float64   `json:"center_lng" binding:"required,min=-180,max=180"`
	RadiusMeters float64   `json:"radius_meters" binding:"omitempty,min=10,max=5000"`
}

type SessionResponse struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	CourseID     string    `json:"course_id"`
	Topic        string    `json:"topic,omitempty"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	CenterLat    float64   `json:"center_lat"`
	CenterLng    float64   `json:"center_lng"`
	RadiusMeters float64   `json:"radius_meters"`
	IsActive     bool      `json:"is_active"`
}
