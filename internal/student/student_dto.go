package student

type RegisterFaceRequest struct {
	ImageData string `json:"image_data" binding:"required"`
	Overwrite bool   `json:"overwrite"`
}

type FaceQualityRequest struct {
	ImageData string `json:"image_data" binding:"required"`
}

type StudentResponse struct {
	ID             string  `json:"id"`
	MatricNo       string  `json:"matric_no"`
	FullName       string  `json:"full_name"`
	Department     string  `json:"department,omitempty"`
	Level          string  `json:"level,omitempty"`
	FaceRegistered bool    `json:"face_registered"`
	FaceMethod     string  `json:"face_method,omitempty"`
	FaceQuality    float64 `json:"face_quality,omitempty"`
}

type FaceRegistrationResponse struct {
	StudentID    string   `json:"student_id"`
	Method       string   `json:"method"`
	QualityScore float64  `json:"quality_score"`
	Backends     []string `json:"backends"`
	Upgraded     bool     `json:"upgraded"`
}

type FaceQualityResponse struct {
	Suitable      bool    `json:"suitable"`
	QualityScore  float64 `json:"quality_score"`
	FacesDetected int     `json:"faces_detected"`
	BackendsUsed  int     `json:"backends_used"`
	Reason        string  `json:"reason,omitempty"`
}

type FaceStatusResponse struct {
	StudentID      string   `json:"student_id"`
	FaceRegistered bool     `json:"face_registered"`
	Method         string   `json:"method,omitempty"`
	QualityScore   float64  `json:"quality_score,omitempty"`
	Backends       []string `json:"backends,omitempty"`
	RegisteredAt   string   `json:"registered_at,omitempty"`
}
