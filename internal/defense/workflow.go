// Package defense implements the defense request workflow: a student with
// an approved thesis asks to defend, the supervising professor approves and
// schedules the defense with an internal and an external reviewer.
package defense

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shokrpour/thesisflow/internal/audit"
	"github.com/shokrpour/thesisflow/internal/metrics"
	"github.com/shokrpour/thesisflow/internal/models"
	"github.com/shokrpour/thesisflow/internal/policy"
	"github.com/shokrpour/thesisflow/internal/store"
	"github.com/shokrpour/thesisflow/internal/thesis"
)

// DefaultCoolingOff is how long a student waits after thesis approval
// before a defense may be requested.
const DefaultCoolingOff = 3 * time.Minute

const defenseDateLayout = "2006-01-02 15:04"

type Decision string

const (
	Approve Decision = "approve"
	Reject  Decision = "reject"
)

type Workflow struct {
	stores     *store.Stores
	thesis     *thesis.Workflow
	policy     *policy.Service
	audit      audit.Recorder
	coolingOff time.Duration

	now func() time.Time
}

func New(stores *store.Stores, tw *thesis.Workflow, pol *policy.Service, rec audit.Recorder, coolingOff time.Duration) *Workflow {
	if rec == nil {
		rec = audit.Nop{}
	}
	if coolingOff <= 0 {
		coolingOff = DefaultCoolingOff
	}
	return &Workflow{
		stores:     stores,
		thesis:     tw,
		policy:     pol,
		audit:      rec,
		coolingOff: coolingOff,
		now:        time.Now,
	}
}

// Submission carries the student's defense request. Both artifact paths
// must already point at stored uploads.
type Submission struct {
	StudentID     string `validate:"required"`
	ThesisTitle   string `validate:"required"`
	Abstract      string `validate:"required"`
	Keywords      []string
	PDFPath       string `validate:"required"`
	FirstPagePath string `validate:"required"`
}

// Submit files a defense request. Preconditions: an approved thesis
// request, the cooling-off period elapsed, and no active defense request.
func (w *Workflow) Submit(sub Submission) (*models.DefenseRequest, error) {
	if err := validator.New().Struct(sub); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	approved, err := w.thesis.ApprovedForStudent(sub.StudentID)
	if err != nil {
		return nil, fmt.Errorf("%w: an approved thesis course is required first", models.ErrInvalidState)
	}

	now := w.now()
	if approved.ApprovedAt != nil {
		ready := approved.ApprovedAt.Add(w.coolingOff)
		if now.Before(ready) {
			return nil, fmt.Errorf("%w: defense may be requested from %s", models.ErrInvalidState, ready.Format(time.RFC3339))
		}
	}

	defenses, err := w.stores.DefenseRequests.Load()
	if err != nil {
		return nil, err
	}
	for _, d := range defenses {
		if d.StudentID == sub.StudentID && d.Active() {
			return nil, fmt.Errorf("%w: student already has a defense request in process (%s)", models.ErrInvalidState, d.DefenseID)
		}
	}

	request := models.DefenseRequest{
		DefenseID:     models.NewRequestID(models.DefenseIDPrefix, now),
		StudentID:     approved.StudentID,
		StudentName:   approved.StudentName,
		ThesisTitle:   sub.ThesisTitle,
		Abstract:      sub.Abstract,
		Keywords:      sub.Keywords,
		PDFPath:       sub.PDFPath,
		FirstPagePath: sub.FirstPagePath,
		RequestedAt:   now,
		Status:        models.DefenseUnderReview,
		ProfessorID:   approved.ProfessorID,
		ProfessorName: approved.ProfessorName,
		CourseID:      approved.CourseID,
	}

	defenses = append(defenses, request)
	if err := w.stores.DefenseRequests.ReplaceAll(defenses); err != nil {
		return nil, err
	}

	metrics.DefenseRequestsTotal.WithLabelValues("submitted").Inc()
	w.record(sub.StudentID, "defense.submit", request.DefenseID, request.ThesisTitle)

	return &request, nil
}

// Decide lets the supervising professor approve or reject a defense under
// review. Rejection requires a reason. Approval only flips the status;
// logistics are assigned separately and may be retried if they cannot
// complete right away.
func (w *Workflow) Decide(defenseID, professorID string, decision Decision, reason string) (*models.DefenseRequest, error) {
	professor, err := w.findProfessor(professorID)
	if err != nil {
		return nil, err
	}

	defenses, err := w.stores.DefenseRequests.Load()
	if err != nil {
		return nil, err
	}
	idx, err := indexOf(defenses, defenseID)
	if err != nil {
		return nil, err
	}
	request := defenses[idx]

	if !supervises(&request, professor) {
		return nil, fmt.Errorf("%w: defense %s is not supervised by professor %s", models.ErrUnauthorized, defenseID, professorID)
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
		request.ApprovedAt = &now
		request.ApprovedBy = professorID
		metrics.DefenseRequestsTotal.WithLabelValues("approved").Inc()
	} else {
		if reason == "" {
			return nil, fmt.Errorf("%w: a rejection reason is required", models.ErrValidation)
		}
		request.RejectedAt = &now
		request.RejectedBy = professorID
		request.RejectionReason = reason
		metrics.DefenseRequestsTotal.WithLabelValues("rejected").Inc()
	}
	request.Status = next

	defenses[idx] = request
	if err := w.stores.DefenseRequests.ReplaceAll(defenses); err != nil {
		return nil, err
	}

	w.record(professorID, "defense."+string(decision), defenseID, request.StudentID)
	return &request, nil
}

// Assignment is the defense logistics set after approval.
type Assignment struct {
	Date               string `validate:"required"`
	Location           string `validate:"required"`
	InternalReviewerID string `validate:"required"`
	ExternalReviewerID string `validate:"required"`
}

// AssignDetails sets date, location and the two reviewers on an approved
// defense. The internal reviewer may be any professor, including the
// supervisor. The review cap is soft: exceeding it is logged, not blocked.
func (w *Workflow) AssignDetails(defenseID, professorID string, a Assignment) (*models.DefenseRequest, error) {
	if err := validator.New().Struct(a); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	if _, err := time.Parse(defenseDateLayout, a.Date); err != nil {
		return nil, fmt.Errorf("%w: defense date must look like 2025-06-01 10:00", models.ErrValidation)
	}

	professor, err := w.findProfessor(professorID)
	if err != nil {
		return nil, err
	}

	internal, err := findAccount(w.stores.Professors, a.InternalReviewerID)
	if err != nil {
		return nil, fmt.Errorf("%w: internal reviewer must be a professor account", models.ErrNotFound)
	}
	external, err := findAccount(w.stores.GuestReviewers, a.ExternalReviewerID)
	if err != nil {
		return nil, fmt.Errorf("%w: external reviewer must be a guest reviewer account", models.ErrNotFound)
	}

	defenses, err := w.stores.DefenseRequests.Load()
	if err != nil {
		return nil, err
	}
	idx, err := indexOf(defenses, defenseID)
	if err != nil {
		return nil, err
	}
	request := defenses[idx]

	if !supervises(&request, professor) {
		return nil, fmt.Errorf("%w: defense %s is not supervised by professor %s", models.ErrUnauthorized, defenseID, professorID)
	}
	if request.Status != models.DefenseApproved {
		return nil, fmt.Errorf("%w: logistics can only be assigned to an approved defense", models.ErrInvalidState)
	}

	if count, err := w.policy.ReviewCount(internal.ID); err == nil && count >= w.policy.Caps().Review {
		logger.Info.Printf("Professor %s is over the review cap (%d assigned)", internal.ID, count)
	}

	now := w.now()
	request.DefenseDate = a.Date
	request.DefenseLocation = a.Location
	request.InternalRev = &models.ReviewerRef{ID: internal.ID, Name: internal.Name}
	request.ExternalRev = &models.ExternalReviewerRef{
		ID:          external.ID,
		Name:        external.Name,
		Affiliation: external.Affiliation,
		Email:       external.Email,
	}
	request.SetupAt = &now

	defenses[idx] = request
	if err := w.stores.DefenseRequests.ReplaceAll(defenses); err != nil {
		return nil, err
	}

	metrics.DefenseRequestsTotal.WithLabelValues("scheduled").Inc()
	w.record(professorID, "defense.assign", defenseID, fmt.Sprintf("internal=%s external=%s", internal.ID, external.ID))

	return &request, nil
}

// Get is the read-only details view; it never mutates state.
func (w *Workflow) Get(defenseID string) (*models.DefenseRequest, error) {
	defenses, err := w.stores.DefenseRequests.Load()
	if err != nil {
		return nil, err
	}
	idx, err := indexOf(defenses, defenseID)
	if err != nil {
		return nil, err
	}
	return &defenses[idx], nil
}

// ListForStudent returns the student's defense requests.
func (w *Workflow) ListForStudent(studentID string) ([]models.DefenseRequest, error) {
	return w.filter(func(d *models.DefenseRequest) bool {
		return d.StudentID == studentID
	})
}

// ListForProfessor returns defenses supervised by the professor.
func (w *Workflow) ListForProfessor(professorID string) ([]models.DefenseRequest, error) {
	professor, err := w.findProfessor(professorID)
	if err != nil {
		return nil, err
	}
	return w.filter(func(d *models.DefenseRequest) bool {
		return supervises(d, professor)
	})
}

// ListForReviewer returns defenses where the account sits in either
// reviewer slot.
func (w *Workflow) ListForReviewer(reviewerID string) ([]models.DefenseRequest, error) {
	return w.filter(func(d *models.DefenseRequest) bool {
		_, ok := d.ReviewerSlot(reviewerID)
		return ok
	})
}

func (w *Workflow) filter(keep func(*models.DefenseRequest) bool) ([]models.DefenseRequest, error) {
	defenses, err := w.stores.DefenseRequests.Load()
	if err != nil {
		return nil, err
	}
	var out []models.DefenseRequest
	for _, d := range defenses {
		if keep(&d) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (w *Workflow) findProfessor(id string) (*models.Account, error) {
	return findAccount(w.stores.Professors, id)
}

func supervises(d *models.DefenseRequest, professor *models.Account) bool {
	if d.ProfessorID != "" {
		return d.ProfessorID == professor.ID
	}
	return d.ProfessorName == professor.Name
}

func indexOf(defenses []models.DefenseRequest, defenseID string) (int, error) {
	for i, d := range defenses {
		if d.DefenseID == defenseID {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: defense request %q", models.ErrNotFound, defenseID)
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
