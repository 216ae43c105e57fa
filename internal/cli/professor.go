package cli

import (
	"github.com/shokrpour/thesisflow/internal/defense"
	"github.com/shokrpour/thesisflow/internal/models"
	"github.com/shokrpour/thesisflow/internal/thesis"
)

func (r *Runner) professorMenu(professorID string) {
	professor, err := r.service.Directory.Get(models.RoleProfessor, professorID)
	if err != nil {
		r.fail("Professor lookup failed", err)
		return
	}
	r.printf("\nWelcome Professor %s", professor.Name)

	for {
		r.printf("\n1. Manage Thesis Requests")
		r.printf("2. Manage Defense Requests")
		r.printf("3. Check Guidance Capacity")
		r.printf("4. Check Review Capacity")
		r.printf("5. Grade Defense Sessions")
		r.printf("6. Change Password")
		r.printf("7. Logout")

		switch r.prompt("Select option") {
		case "1":
			r.manageThesisRequests(professorID)
		case "2":
			r.manageDefenseRequests(professorID)
		case "3":
			r.printCapacity("Guidance", professorID, true)
		case "4":
			r.printCapacity("Review", professorID, false)
		case "5":
			r.gradeSessions(professorID, models.ReviewerInternal)
		case "6":
			r.changePassword(professorID)
		case "7":
			r.printf("Logging out...")
			return
		default:
			r.printf("Invalid selection")
		}
	}
}

func (r *Runner) manageThesisRequests(professorID string) {
	requests, err := r.service.Thesis.ListForProfessor(professorID)
	if err != nil {
		r.fail("Failed to load requests", err)
		return
	}

	var pending []models.ThesisRequest
	approved, rejected := 0, 0
	for _, req := range requests {
		switch req.Status {
		case models.ThesisPending:
			pending = append(pending, req)
		case models.ThesisApproved:
			approved++
		case models.ThesisRejected:
			rejected++
		}
	}
	r.printf("\nStatus: %d Pending | %d Approved | %d Rejected", len(pending), approved, rejected)

	if len(pending) == 0 {
		r.printf("No pending thesis requests")
		return
	}

	for i, req := range pending {
		r.printf("\n%d. Request ID: %s", i+1, req.RequestID)
		r.printf("   Student: %s (%s)", req.StudentName, req.StudentID)
		r.printf("   Course: %s", req.CourseTitle)
		r.printf("   Major: %s", req.Major)
	}

	idx, err := r.promptIndex("Select request to manage (0 to cancel)", len(pending))
	if err != nil {
		r.fail("Invalid selection", err)
		return
	}
	if idx < 0 {
		return
	}
	selected := pending[idx]

	r.printf("\n1. Approve Request")
	r.printf("2. Reject Request")
	r.printf("3. Cancel")

	var decision thesis.Decision
	switch r.prompt("Select action") {
	case "1":
		decision = thesis.Approve
	case "2":
		decision = thesis.Reject
	default:
		r.printf("Action cancelled")
		return
	}

	request, err := r.service.Thesis.Decide(selected.RequestID, professorID, decision)
	if err != nil {
		r.fail("Decision failed", err)
		return
	}
	r.printf("Thesis request is now: %s", request.Status)
}

func (r *Runner) manageDefenseRequests(professorID string) {
	requests, err := r.service.Defense.ListForProfessor(professorID)
	if err != nil {
		r.fail("Failed to load defense requests", err)
		return
	}

	var pending []models.DefenseRequest
	for _, req := range requests {
		if req.Status == models.DefenseUnderReview {
			pending = append(pending, req)
		}
	}
	if len(pending) == 0 {
		r.printf("No pending defense requests")
		r.retryUnscheduled(professorID, requests)
		return
	}

	for i, req := range pending {
		r.printf("\n%d. Defense ID: %s", i+1, req.DefenseID)
		r.printf("   Student: %s (%s)", req.StudentName, req.StudentID)
		r.printf("   Thesis: %s", req.ThesisTitle)
	}

	idx, err := r.promptIndex("Select defense request to manage (0 to cancel)", len(pending))
	if err != nil {
		r.fail("Invalid selection", err)
		return
	}
	if idx < 0 {
		return
	}
	selected := pending[idx]

	r.printf("\n1. Approve Defense Request")
	r.printf("2. Reject Defense Request")
	r.printf("3. View Full Details")
	r.printf("4. Cancel")

	switch r.prompt("Select action") {
	case "1":
		request, err := r.service.Defense.Decide(selected.DefenseID, professorID, defense.Approve, "")
		if err != nil {
			r.fail("Approval failed", err)
			return
		}
		r.printf("Defense request approved!")
		r.printf("Now set defense date and select reviewers")
		if !r.assignDefenseDetails(request.DefenseID, professorID) {
			r.printf("Defense stays approved without logistics; assign them later from this menu")
		}
	case "2":
		reason := r.prompt("Rejection reason")
		if _, err := r.service.Defense.Decide(selected.DefenseID, professorID, defense.Reject, reason); err != nil {
			r.fail("Rejection failed", err)
			return
		}
		r.printf("Defense request rejected!")
	case "3":
		r.showDefenseDetails(selected.DefenseID)
	default:
		r.printf("Action cancelled")
	}
}

// retryUnscheduled offers approved defenses that still lack logistics, so
// an interrupted assignment can be completed later.
func (r *Runner) retryUnscheduled(professorID string, requests []models.DefenseRequest) {
	var unscheduled []models.DefenseRequest
	for _, req := range requests {
		if req.Status == models.DefenseApproved && !req.Scheduled() {
			unscheduled = append(unscheduled, req)
		}
	}
	if len(unscheduled) == 0 {
		return
	}

	r.printf("\nApproved defenses still missing logistics:")
	for i, req := range unscheduled {
		r.printf("%d. %s - %s", i+1, req.DefenseID, req.StudentName)
	}
	idx, err := r.promptIndex("Select defense to schedule (0 to skip)", len(unscheduled))
	if err != nil || idx < 0 {
		return
	}
	r.assignDefenseDetails(unscheduled[idx].DefenseID, professorID)
}

func (r *Runner) assignDefenseDetails(defenseID, professorID string) bool {
	professors, err := r.service.Directory.List(models.RoleProfessor)
	if err != nil || len(professors) == 0 {
		r.printf("No professors found in the system!")
		return false
	}
	guests, err := r.service.Directory.List(models.RoleGuestReviewer)
	if err != nil || len(guests) == 0 {
		r.printf("No guest reviewers available!")
		return false
	}

	date := r.prompt("Defense date (YYYY-MM-DD HH:MM)")
	location := r.prompt("Defense location")

	r.printf("\nInternal reviewers:")
	for i, p := range professors {
		r.printf("%d. %s (%s)", i+1, p.Name, p.ID)
	}
	internalIdx, err := r.promptIndex("Select internal reviewer number", len(professors))
	if err != nil || internalIdx < 0 {
		r.printf("Invalid selection!")
		return false
	}

	r.printf("\nExternal reviewers:")
	for i, g := range guests {
		r.printf("%d. %s - %s (%s)", i+1, g.Name, g.Affiliation, g.ID)
	}
	externalIdx, err := r.promptIndex("Select external reviewer number", len(guests))
	if err != nil || externalIdx < 0 {
		r.printf("Invalid selection!")
		return false
	}

	_, err = r.service.Defense.AssignDetails(defenseID, professorID, defense.Assignment{
		Date:               date,
		Location:           location,
		InternalReviewerID: professors[internalIdx].ID,
		ExternalReviewerID: guests[externalIdx].ID,
	})
	if err != nil {
		r.fail("Failed to set defense details", err)
		return false
	}
	r.printf("Defense details set successfully!")
	return true
}

func (r *Runner) showDefenseDetails(defenseID string) {
	req, err := r.service.Defense.Get(defenseID)
	if err != nil {
		r.fail("Failed to load defense", err)
		return
	}

	r.printf("\nDefense Request Details:")
	r.printf("Defense ID: %s", req.DefenseID)
	r.printf("Student: %s (%s)", req.StudentName, req.StudentID)
	r.printf("Thesis Title: %s", req.ThesisTitle)
	r.printf("Abstract: %s", req.Abstract)
	r.printf("PDF File: %s", req.PDFPath)
	r.printf("First Page: %s", req.FirstPagePath)
	r.printf("Status: %s", req.Status)

	if req.DefenseDate != "" {
		r.printf("\nDefense Date: %s", req.DefenseDate)
		r.printf("Location: %s", req.DefenseLocation)
	}
	if req.InternalRev != nil {
		r.printf("Internal Reviewer: %s (%s)", req.InternalRev.Name, req.InternalRev.ID)
	}
	if req.ExternalRev != nil {
		r.printf("External Reviewer: %s (%s)", req.ExternalRev.Name, req.ExternalRev.ID)
		if req.ExternalRev.Affiliation != "" {
			r.printf("Affiliation: %s", req.ExternalRev.Affiliation)
		}
		if req.ExternalRev.Email != "" {
			r.printf("Email: %s", req.ExternalRev.Email)
		}
	}
}

func (r *Runner) printCapacity(kind, professorID string, guidance bool) {
	if guidance {
		rep, err := r.service.Policy.GuidanceReport(professorID)
		if err != nil {
			r.fail("Failed to compute capacity", err)
			return
		}
		r.printf("\n%s capacity: current %d, remaining %d, max %d", kind, rep.Current, rep.Remaining, rep.Max)
		if rep.Remaining <= 0 {
			r.printf("You have reached maximum guidance capacity!")
		}
		return
	}

	rep, err := r.service.Policy.ReviewReport(professorID)
	if err != nil {
		r.fail("Failed to compute capacity", err)
		return
	}
	r.printf("\n%s capacity: current %d, remaining %d, max %d", kind, rep.Current, rep.Remaining, rep.Max)
}
