package course

type CreateCourseRequest struct {
	Code     string `json:"code" binding:"required,min=3"`
	Title    string `json:"title" binding:"required"`
	Unit     int    `json:"unit" binding:"omitempty,min=1,max=6"`
	Semester string `json:"semester" binding:"required,oneof=FIRST SECOND"`
	Session  string `json:"session" binding:"required"`
}

type EnrollRequest struct {
	MatricNo string `json:"matric_no" binding:"omitempty,min=3"`
}

type CourseResponse struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Title      string `json:"title"`
	Unit       int    `json:"unit"`
	Semester   string `json:"semester"`
	Session    string `json:"session"`
	LecturerID string `json:"lecturer_id"`
}

type EnrollmentResponse struct {
	CourseID  string `json:"course_id"`
	StudentID string `json:"student_id"`
	MatricNo  string `json:"matric_no,omitempty"`
	FullName  string `json:"full_name,omitempty"`
}
