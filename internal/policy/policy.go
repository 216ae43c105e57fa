// Package policy holds the cross-cutting capacity rules: how many students
// a professor may guide and how many defenses they may review.
package policy

import (
	"github.com/shokrpour/thesisflow/internal/models"
	"github.com/shokrpour/thesisflow/internal/store"
)

const (
	DefaultGuidanceCap = 5
	DefaultReviewCap   = 10
)

type Caps struct {
	Guidance int
	Review   int
}

func DefaultCaps() Caps {
	return Caps{Guidance: DefaultGuidanceCap, Review: DefaultReviewCap}
}

// Report is a professor-facing capacity summary.
type Report struct {
	Current   int
	Remaining int
	Max       int
}

type Service struct {
	thesis  store.Collection[models.ThesisRequest]
	defense store.Collection[models.DefenseRequest]
	caps    Caps
}

func New(thesis store.Collection[models.ThesisRequest], defense store.Collection[models.DefenseRequest], caps Caps) *Service {
	if caps.Guidance <= 0 {
		caps.Guidance = DefaultGuidanceCap
	}
	if caps.Review <= 0 {
		caps.Review = DefaultReviewCap
	}
	return &Service{thesis: thesis, defense: defense, caps: caps}
}

func (s *Service) Caps() Caps {
	return s.caps
}

// GuidanceCount counts thesis requests approved under the professor.
func (s *Service) GuidanceCount(professorID string) (int, error) {
	requests, err := s.thesis.Load()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, r := range requests {
		if r.ProfessorID == professorID && r.Status == models.ThesisApproved {
			count++
		}
	}
	return count, nil
}

// HasGuidanceCapacity reports whether the professor may approve one more
// thesis request. This is the hard cap.
func (s *Service) HasGuidanceCapacity(professorID string) (bool, error) {
	count, err := s.GuidanceCount(professorID)
	if err != nil {
		return false, err
	}
	return count < s.caps.Guidance, nil
}

// ReviewCount counts defenses where the professor sits in either reviewer
// slot. The review cap is informational only and never blocks assignment.
func (s *Service) ReviewCount(professorID string) (int, error) {
	defenses, err := s.defense.Load()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, d := range defenses {
		if _, ok := d.ReviewerSlot(professorID); ok {
			count++
		}
	}
	return count, nil
}

func (s *Service) GuidanceReport(professorID string) (Report, error) {
	count, err := s.GuidanceCount(professorID)
	if err != nil {
		return Report{}, err
	}
	return Report{Current: count, Remaining: s.caps.Guidance - count, Max: s.caps.Guidance}, nil
}

func (s *Service) ReviewReport(professorID string) (Report, error) {
	count, err := s.ReviewCount(professorID)
	if err != nil {
		return Report{}, err
	}
	return Report{Current: count, Remaining: s.caps.Review - count, Max: s.caps.Review}, nil
}
