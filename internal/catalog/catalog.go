// Package catalog tracks thesis course slots and their remaining capacity.
package catalog

import (
	"fmt"
	"strings"

	"github.com/shokrpour/thesisflow/internal/models"
	"github.com/shokrpour/thesisflow/internal/store"
)

type Service struct {
	courses store.Collection[models.CourseSlot]
}

func New(courses store.Collection[models.CourseSlot]) *Service {
	return &Service{courses: courses}
}

// ListAvailable returns slots with open capacity for the given major.
// Major comparison is case-insensitive.
func (s *Service) ListAvailable(major string) ([]models.CourseSlot, error) {
	all, err := s.courses.Load()
	if err != nil {
		return nil, err
	}
	var out []models.CourseSlot
	for _, c := range all {
		if c.Capacity > 0 && strings.EqualFold(c.Major, major) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Service) Get(courseID string) (*models.CourseSlot, error) {
	all, err := s.courses.Load()
	if err != nil {
		return nil, err
	}
	for _, c := range all {
		if c.CourseID == courseID {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: course %q", models.ErrNotFound, courseID)
}

// DecrementCapacity reserves one request slot on the course. Check and
// decrement happen inside a single load-modify-write of the collection, so
// capacity never goes negative.
func (s *Service) DecrementCapacity(courseID string) error {
	all, err := s.courses.Load()
	if err != nil {
		return err
	}
	for i, c := range all {
		if c.CourseID != courseID {
			continue
		}
		if c.Capacity <= 0 {
			return fmt.Errorf("%w: course %q has no remaining capacity", models.ErrCapacityExceeded, courseID)
		}
		all[i].Capacity--
		return s.courses.ReplaceAll(all)
	}
	return fmt.Errorf("%w: course %q", models.ErrNotFound, courseID)
}

// Seed adds course slots that are not present yet, matching by course id.
// Existing slots are left untouched so capacity already consumed survives a
// reseed.
func (s *Service) Seed(slots []models.CourseSlot) error {
	all, err := s.courses.Load()
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(all))
	for _, c := range all {
		known[c.CourseID] = true
	}

	added := 0
	for _, slot := range slots {
		if err := slot.Validate(); err != nil {
			return fmt.Errorf("%w: course %q: %v", models.ErrValidation, slot.CourseID, err)
		}
		if known[slot.CourseID] {
			continue
		}
		all = append(all, slot)
		known[slot.CourseID] = true
		added++
	}
	if added == 0 {
		return nil
	}
	return s.courses.ReplaceAll(all)
}
