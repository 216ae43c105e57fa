// Package grading collects independent grades from the two reviewers
// assigned to a defense.
package grading

import (
	"fmt"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shokrpour/thesisflow/internal/audit"
	"github.com/shokrpour/thesisflow/internal/metrics"
	"github.com/shokrpour/thesisflow/internal/models"
	"github.com/shokrpour/thesisflow/internal/store"
)

type Service struct {
	defenses store.Collection[models.DefenseRequest]
	audit    audit.Recorder

	now func() time.Time
}

func New(defenses store.Collection[models.DefenseRequest], rec audit.Recorder) *Service {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Service{defenses: defenses, audit: rec, now: time.Now}
}

// SubmitGrade records the reviewer's verdict on a defense. Only the two
// assigned reviewers may grade; each grades independently, any time after
// assignment. Re-grading overwrites the reviewer's previous record. The two
// labels are never aggregated into a final grade.
func (s *Service) SubmitGrade(defenseID, reviewerID string, label models.GradeLabel, comments string) (*models.GradeRecord, error) {
	if _, err := models.ParseGradeLabel(string(label)); err != nil {
		return nil, err
	}

	defenses, err := s.defenses.Load()
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, d := range defenses {
		if d.DefenseID == defenseID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: defense request %q", models.ErrNotFound, defenseID)
	}
	request := defenses[idx]

	slot, ok := request.ReviewerSlot(reviewerID)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an assigned reviewer on defense %s", models.ErrUnauthorized, reviewerID, defenseID)
	}

	name := ""
	switch slot {
	case models.ReviewerInternal:
		name = request.InternalRev.Name
	case models.ReviewerGuest:
		name = request.ExternalRev.Name
	}

	record := models.GradeRecord{
		Label:        label,
		Comments:     comments,
		GradedAt:     s.now(),
		ReviewerType: slot,
		ReviewerName: name,
	}

	if request.Grades == nil {
		request.Grades = make(map[string]models.GradeRecord, 2)
	}
	request.Grades[reviewerID] = record

	defenses[idx] = request
	if err := s.defenses.ReplaceAll(defenses); err != nil {
		return nil, err
	}

	metrics.GradesSubmittedTotal.WithLabelValues(string(slot)).Inc()
	s.record(reviewerID, defenseID, string(label))

	return &record, nil
}

// ViewGrades projects the grades map of a defense. Readable by the
// student, the supervising professor, and either reviewer.
func (s *Service) ViewGrades(defenseID string) (map[string]models.GradeRecord, error) {
	defenses, err := s.defenses.Load()
	if err != nil {
		return nil, err
	}
	for _, d := range defenses {
		if d.DefenseID == defenseID {
			if d.Grades == nil {
				return map[string]models.GradeRecord{}, nil
			}
			return d.Grades, nil
		}
	}
	return nil, fmt.Errorf("%w: defense request %q", models.ErrNotFound, defenseID)
}

func (s *Service) record(actor, subject, detail string) {
	err := s.audit.Record(audit.Event{
		Timestamp: s.now().Unix(),
		Actor:     actor,
		Action:    "grade.submit",
		Subject:   subject,
		Detail:    detail,
	})
	if err != nil {
		logger.Error.Printf("Audit record failed for grade on %s: %v", subject, err)
	}
}
