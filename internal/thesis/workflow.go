// Package thesis implements the thesis request workflow: a student asks to
// work with a professor on a catalog course, the professor approves or
// rejects.
package thesis

import (
	"fmt"
	"strings"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shokrpour/thesisflow/internal/audit"
	"github.com/shokrpour/thesisflow/internal/catalog"
	"github.com/shokrpour/thesisflow/internal/metrics"
	"github.com/shokrpour/thesisflow/internal/models"
	"github.com/shokrpour/thesisflow/internal/policy"
	"github.com/shokrpour/thesisflow/internal/store"
)

type Decision string

const (
	Approve Decision = "approve"
	Reject  Decision = "reject"
)

type Workflow struct {
	stores  *store.Stores
	catalog *catalog.Service
	policy  *policy.Service
	audit   audit.Recorder

	now func() time.Time
}

func New(stores *store.Stores, cat *catalog.Service, pol *policy.Service, rec audit.Recorder) *Workflow {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Workflow{
		stores:  stores,
		catalog: cat,
		policy:  pol,
		audit:   rec,
		now:     time.Now,
	}
}

// Submit files a new thesis request for the student on the chosen course.
// Capacity is reserved here, at submission time; the guidance cap is a
// separate counter checked at approval.
func (w *Workflow) Submit(studentID, courseID string) (*models.ThesisRequest, error) {
	student, err := findAccount(w.stores.Students, studentID)
	if err != nil {
		return nil, err
	}

	requests, err := w.stores.ThesisRequests.Load()
	if err != nil {
		return nil, err
	}
	for _, r := range requests {
		if r.StudentID == studentID && r.Active() {
			return nil, fmt.Errorf("%w: student already has an active thesis request (%s)", models.ErrInvalidState, r.RequestID)
		}
	}

	course, err := w.catalog.Get(courseID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(course.Major, student.Major) {
		return nil, fmt.Errorf("%w: course %q is for major %q", models.ErrValidation, courseID, course.Major)
	}

	// Check-and-decrement is a single step on the courses collection.
	if err := w.catalog.DecrementCapacity(courseID); err != nil {
		return nil, err
	}

	now := w.now()
	request := models.ThesisRequest{
		RequestID:     models.NewRequestID(models.ThesisIDPrefix, now),
		StudentID:     student.ID,
		StudentName:   student.Name,
		CourseID:      course.CourseID,
		CourseTitle:   course.Title,
		ProfessorID:   course.ProfessorID,
		ProfessorName: course.ProfessorName,
		Major:         student.Major,
		RequestedAt:   now,
		Status:        models.ThesisPending,
	}

	requests = append(requests, request)
	if err := w.stores.ThesisRequests.ReplaceAll(requests); err != nil {
		// Capacity was already reserved; the slot is lost until an operator
		// fixes the courses file, matching the no-cancellation design.
		logger.Error.Printf("Thesis request %s not persisted after capacity reservation: %v", request.RequestID, err)
		return nil, err
	}

	metrics.ThesisRequestsTotal.WithLabelValues("submitted").Inc()
	w.record(student.ID, "thesis.submit", request.RequestID, course.CourseID)

	return &request, nil
}

// Decide lets the professor named on a pending request approve or reject
// it. Approval is refused while the professor is at the guidance cap; the
// request then stays Pending.
func (w *Workflow) Decide(requestID, professorID string, decision Decision) (*models.ThesisRequest, error) {
	professor, err := findAccount(w.stores.Professors, professorID)
	if err != nil {
		return nil, err
	}

	requests, err := w.stores.ThesisRequests.Load()
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, r := range requests {
		if r.RequestID == requestID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: thesis request %q", models.ErrNotFound, requestID)
	}
	request := requests[idx]

	if !decidesFor(&request, professor) {
		return nil, fmt.Errorf("%w: request %s is not assigned to professor %s", models.ErrUnauthorized, requestID, professorID)
	}

	var event string
	switch decision {
	case Approve:
		event = eventApprove
	case Reject:
		event = eventReject
	default:
		return nil, fmt.Errorf("%w: unknown decision %q", models.ErrValidation, decision)
	}

	next, err := advance(request.Status, event)
	if err != nil {
		return nil, err
	}

	now := w.now()
	if decision == Approve {
		ok, err := w.policy.HasGuidanceCapacity(professorID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: guidance cap of %d reached", models.ErrCapacityExceeded, w.policy.Caps().Guidance)
		}
		request.ApprovedAt = &now
		request.ProfessorID = professorID
		metrics.ThesisRequestsTotal.WithLabelValues("approved").Inc()
	} else {
		request.RejectedAt = &now
		metrics.ThesisRequestsTotal.WithLabelValues("rejected").Inc()
	}
	request.Status = next

	requests[idx] = request
	if err := w.stores.ThesisRequests.ReplaceAll(requests); err != nil {
		return nil, err
	}

	w.record(professorID, "thesis."+string(decision), requestID, request.StudentID)
	return &request, nil
}

// ListForStudent returns every request the student has filed, newest last.
func (w *Workflow) ListForStudent(studentID string) ([]models.ThesisRequest, error) {
	requests, err := w.stores.ThesisRequests.Load()
	if err != nil {
		return nil, err
	}
	var out []models.ThesisRequest
	for _, r := range requests {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

// ListForProfessor returns the requests addressed to the professor.
func (w *Workflow) ListForProfessor(professorID string) ([]models.ThesisRequest, error) {
	professor, err := findAccount(w.stores.Professors, professorID)
	if err != nil {
		return nil, err
	}
	requests, err := w.stores.ThesisRequests.Load()
	if err != nil {
		return nil, err
	}
	var out []models.ThesisRequest
	for _, r := range requests {
		if decidesFor(&r, professor) {
			out = append(out, r)
		}
	}
	return out, nil
}

// ApprovedForStudent returns the student's approved request, if any. The
// defense workflow keys off this.
func (w *Workflow) ApprovedForStudent(studentID string) (*models.ThesisRequest, error) {
	requests, err := w.stores.ThesisRequests.Load()
	if err != nil {
		return nil, err
	}
	for _, r := range requests {
		if r.StudentID == studentID && r.Status == models.ThesisApproved {
			return &r, nil
		}
	}
	return nil, fmt.Errorf("%w: no approved thesis request for student %q", models.ErrNotFound, studentID)
}

// decidesFor reports whether the professor is the one named on the request.
// Old catalog files may lack professor ids, in which case the denormalized
// name is the only handle we have.
func decidesFor(r *models.ThesisRequest, professor *models.Account) bool {
	if r.ProfessorID != "" {
		return r.ProfessorID == professor.ID
	}
	return r.ProfessorName == professor.Name
}

func findAccount(col store.Collection[models.Account], id string) (*models.Account, error) {
	accounts, err := col.Load()
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, fmt.Errorf("%w: account %q", models.ErrNotFound, id)
}

func (w *Workflow) record(actor, action, subject, detail string) {
	err := w.audit.Record(audit.Event{
		Timestamp: w.now().Unix(),
		Actor:     actor,
		Action:    action,
		Subject:   subject,
		Detail:    detail,
	})
	if err != nil {
		logger.Error.Printf("Audit record failed for %s %s: %v", action, subject, err)
	}
}
