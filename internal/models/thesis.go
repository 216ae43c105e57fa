package models

import "time"

type RequestStatus string

// Status values match what the collection files have always stored.
const (
	ThesisPending  RequestStatus = "Pending Approval"
	ThesisApproved RequestStatus = "Approved"
	ThesisRejected RequestStatus = "Rejected"
)

// ThesisRequest is a student's bid to work with a professor on a catalog
// course. ProfessorName and CourseTitle are denormalized display copies;
// the id fields are canonical.
type ThesisRequest struct {
	RequestID     string        `json:"request_id"`
	StudentID     string        `json:"student_id"`
	StudentName   string        `json:"student_name"`
	CourseID      string        `json:"course_id"`
	CourseTitle   string        `json:"course_title"`
	ProfessorID   string        `json:"professor_id,omitempty"`
	ProfessorName string        `json:"professor"`
	Major         string        `json:"major,omitempty"`
	RequestedAt   time.Time     `json:"request_date"`
	Status        RequestStatus `json:"status"`
	ApprovedAt    *time.Time    `json:"approval_date,omitempty"`
	RejectedAt    *time.Time    `json:"rejection_date,omitempty"`
}

// Active reports whether this request blocks the student from submitting
// another one. Rejected requests do not.
func (r *ThesisRequest) Active() bool {
	return r.Status == ThesisPending || r.Status == ThesisApproved
}
