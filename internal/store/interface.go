package store

import (
	"fmt"

	"github.com/shokrpour/thesisflow/internal/models"
)

// Collection is one persisted record collection. The unit of atomicity is
// the whole collection: load the full list, mutate, persist the full list
// back. Implementations must not leave partial writes observable.
type Collection[T any] interface {
	Load() ([]T, error)
	ReplaceAll(records []T) error
}

// Stores bundles the six collections the workflows operate on. Services
// receive this by injection and never touch file paths themselves.
type Stores struct {
	Students        Collection[models.Account]
	Professors      Collection[models.Account]
	GuestReviewers  Collection[models.Account]
	Courses         Collection[models.CourseSlot]
	ThesisRequests  Collection[models.ThesisRequest]
	DefenseRequests Collection[models.DefenseRequest]
}

// ByRole resolves the account collection backing a given role. Internal
// reviewers are professor accounts, so there is no reviewer collection.
func (s *Stores) ByRole(role models.Role) (Collection[models.Account], error) {
	switch role {
	case models.RoleStudent:
		return s.Students, nil
	case models.RoleProfessor:
		return s.Professors, nil
	case models.RoleGuestReviewer:
		return s.GuestReviewers, nil
	default:
		return nil, fmt.Errorf("no account collection for role %q", role)
	}
}
