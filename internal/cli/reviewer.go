package cli

import (
	"github.com/shokrpour/thesisflow/internal/models"
)

func (r *Runner) reviewerMenu(reviewerID string) {
	for {
		r.printf("\n1. View Assigned Defense Sessions")
		r.printf("2. Grade a Defense Session")
		r.printf("3. Logout")

		switch r.prompt("Select option") {
		case "1":
			r.viewAssignedSessions(reviewerID)
		case "2":
			r.gradeSessions(reviewerID, "")
		case "3":
			return
		default:
			r.printf("Invalid selection")
		}
	}
}

func (r *Runner) viewAssignedSessions(reviewerID string) {
	sessions, err := r.service.Defense.ListForReviewer(reviewerID)
	if err != nil {
		r.fail("Failed to load sessions", err)
		return
	}
	if len(sessions) == 0 {
		r.printf("No assigned defense sessions")
		return
	}

	r.printf("\nAssigned defenses (%d):", len(sessions))
	for i, s := range sessions {
		status := "Pending"
		if _, graded := s.Grades[reviewerID]; graded {
			status = "Graded"
		}
		r.printf("\n%d. %s - %s", i+1, s.ThesisTitle, s.StudentName)
		r.printf("   Defense ID: %s", s.DefenseID)
		r.printf("   Date: %s - Location: %s", orDash(s.DefenseDate), orDash(s.DefenseLocation))
		r.printf("   Status: %s", status)
	}
}

// gradeSessions lists the reviewer's sessions and grades one. With a
// non-empty slot filter only sessions where the reviewer occupies that
// slot are offered (the professor menu filters to internal).
func (r *Runner) gradeSessions(reviewerID string, slotFilter models.ReviewerType) {
	all, err := r.service.Defense.ListForReviewer(reviewerID)
	if err != nil {
		r.fail("Failed to load sessions", err)
		return
	}

	var sessions []models.DefenseRequest
	for _, s := range all {
		if slotFilter != "" {
			if slot, ok := s.ReviewerSlot(reviewerID); !ok || slot != slotFilter {
				continue
			}
		}
		sessions = append(sessions, s)
	}
	if len(sessions) == 0 {
		r.printf("No assigned defense sessions")
		return
	}

	for i, s := range sessions {
		status := "Pending"
		if _, graded := s.Grades[reviewerID]; graded {
			status = "Graded"
		}
		r.printf("%d. %s - %s - %s", i+1, s.ThesisTitle, s.StudentName, status)
	}

	idx, err := r.promptIndex("Select session to grade (0 to cancel)", len(sessions))
	if err != nil {
		r.fail("Invalid selection", err)
		return
	}
	if idx < 0 {
		return
	}
	selected := sessions[idx]

	labels := []models.GradeLabel{models.GradeA, models.GradeB, models.GradeC, models.GradeF}
	r.printf("\nSelect grade label:")
	for i, l := range labels {
		r.printf("%d. %s", i+1, l)
	}
	labelIdx, err := r.promptIndex("Choose (1-4)", len(labels))
	if err != nil || labelIdx < 0 {
		r.printf("Invalid selection")
		return
	}

	comments := r.prompt("Comments (optional)")

	if _, err := r.service.Grading.SubmitGrade(selected.DefenseID, reviewerID, labels[labelIdx], comments); err != nil {
		r.fail("Grading failed", err)
		return
	}
	r.printf("Grade saved successfully!")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
