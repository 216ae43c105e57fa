package models

import (
	"fmt"
	"time"
)

type DefenseStatus string

const (
	DefenseUnderReview DefenseStatus = "Under Review"
	DefenseApproved    DefenseStatus = "Approved"
	DefenseRejected    DefenseStatus = "Rejected"
)

type ReviewerType string

const (
	ReviewerInternal ReviewerType = "internal"
	ReviewerGuest    ReviewerType = "guest"
)

type GradeLabel string

const (
	GradeA GradeLabel = "A"
	GradeB GradeLabel = "B"
	GradeC GradeLabel = "C"
	GradeF GradeLabel = "F"
)

func ParseGradeLabel(s string) (GradeLabel, error) {
	switch GradeLabel(s) {
	case GradeA, GradeB, GradeC, GradeF:
		return GradeLabel(s), nil
	}
	return "", fmt.Errorf("%w: grade label must be one of A, B, C, F", ErrValidation)
}

// ReviewerRef is the denormalized snapshot of an assigned internal reviewer.
type ReviewerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ExternalReviewerRef snapshots an assigned guest reviewer, including the
// contact details shown on the defense record.
type ExternalReviewerRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Affiliation string `json:"affiliation,omitempty"`
	Email       string `json:"email,omitempty"`
}

// GradeRecord is one reviewer's verdict on a defense. Keyed by reviewer
// account id on the DefenseRequest; re-grading overwrites.
type GradeRecord struct {
	Label        GradeLabel   `json:"label"`
	Comments     string       `json:"comments,omitempty"`
	GradedAt     time.Time    `json:"grading_date"`
	ReviewerType ReviewerType `json:"reviewer_type"`
	ReviewerName string       `json:"reviewer_name"`
}

// DefenseRequest is a student's bid to defend an approved thesis. Defense
// logistics (date, location, reviewers) are set after approval and may be
// absent on an Approved record if assignment could not complete; the
// operator retries later.
type DefenseRequest struct {
	DefenseID       string                 `json:"defense_id"`
	StudentID       string                 `json:"student_id"`
	StudentName     string                 `json:"student_name"`
	ThesisTitle     string                 `json:"thesis_title"`
	Abstract        string                 `json:"abstract"`
	Keywords        []string               `json:"keywords"`
	PDFPath         string                 `json:"pdf_path"`
	FirstPagePath   string                 `json:"first_page_path"`
	RequestedAt     time.Time              `json:"request_date"`
	Status          DefenseStatus          `json:"status"`
	ProfessorID     string                 `json:"professor_id"`
	ProfessorName   string                 `json:"professor"`
	CourseID        string                 `json:"course_id"`
	DefenseDate     string                 `json:"defense_date,omitempty"`
	DefenseLocation string                 `json:"defense_location,omitempty"`
	InternalRev     *ReviewerRef           `json:"internal_reviewer,omitempty"`
	ExternalRev     *ExternalReviewerRef   `json:"external_reviewer,omitempty"`
	ApprovedAt      *time.Time             `json:"approval_date,omitempty"`
	ApprovedBy      string                 `json:"approved_by,omitempty"`
	RejectedAt      *time.Time             `json:"rejection_date,omitempty"`
	RejectedBy      string                 `json:"rejected_by,omitempty"`
	RejectionReason string                 `json:"rejection_reason,omitempty"`
	SetupAt         *time.Time             `json:"defense_setup_date,omitempty"`
	Grades          map[string]GradeRecord `json:"grades,omitempty"`
}

func (d *DefenseRequest) Active() bool {
	return d.Status == DefenseUnderReview || d.Status == DefenseApproved
}

// ReviewerSlot reports which assignment slot, if any, the given account id
// occupies on this defense.
func (d *DefenseRequest) ReviewerSlot(accountID string) (ReviewerType, bool) {
	if d.InternalRev != nil && d.InternalRev.ID == accountID {
		return ReviewerInternal, true
	}
	if d.ExternalRev != nil && d.ExternalRev.ID == accountID {
		return ReviewerGuest, true
	}
	return "", false
}

// Scheduled reports whether defense logistics have been fully assigned.
func (d *DefenseRequest) Scheduled() bool {
	return d.DefenseDate != "" && d.InternalRev != nil && d.ExternalRev != nil
}
