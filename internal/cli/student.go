package cli

import (
	"strings"

	"github.com/shokrpour/thesisflow/internal/defense"
	"github.com/shokrpour/thesisflow/internal/models"
	"github.com/shokrpour/thesisflow/internal/upload"
)

func (r *Runner) studentMenu(studentID string) {
	student, err := r.service.Directory.Get(models.RoleStudent, studentID)
	if err != nil {
		r.fail("Student lookup failed", err)
		return
	}
	r.printf("\nWelcome %s", student.Name)

	for {
		r.printf("\n1. Request Thesis Course")
		r.printf("2. View Thesis Request Status")
		r.printf("3. Request Defense")
		r.printf("4. View Defense Request Status")
		r.printf("5. View My Defense Grades")
		r.printf("6. Change Password")
		r.printf("7. Logout")

		switch r.prompt("Select option") {
		case "1":
			r.requestThesisCourse(student)
		case "2":
			r.viewThesisStatus(studentID)
		case "3":
			r.requestDefense(studentID)
		case "4":
			r.viewDefenseStatus(studentID)
		case "5":
			r.viewMyGrades(studentID)
		case "6":
			r.changePassword(studentID)
		case "7":
			r.printf("Logging out...")
			return
		default:
			r.printf("Invalid selection")
		}
	}
}

func (r *Runner) requestThesisCourse(student *models.Account) {
	courses, err := r.service.Catalog.ListAvailable(student.Major)
	if err != nil {
		r.fail("Failed to list courses", err)
		return
	}
	if len(courses) == 0 {
		r.printf("No available courses for your major")
		return
	}

	r.printf("\nAvailable Thesis Courses:")
	for i, c := range courses {
		r.printf("%d. %s - Professor: %s - Capacity: %d", i+1, c.Title, c.ProfessorName, c.Capacity)
	}

	idx, err := r.promptIndex("Select course number (0 to cancel)", len(courses))
	if err != nil {
		r.fail("Invalid selection", err)
		return
	}
	if idx < 0 {
		return
	}

	request, err := r.service.Thesis.Submit(student.ID, courses[idx].CourseID)
	if err != nil {
		r.fail("Thesis request failed", err)
		return
	}
	r.printf("Thesis request %s submitted successfully!", request.RequestID)
}

func (r *Runner) viewThesisStatus(studentID string) {
	requests, err := r.service.Thesis.ListForStudent(studentID)
	if err != nil {
		r.fail("Failed to load requests", err)
		return
	}
	if len(requests) == 0 {
		r.printf("No thesis requests found")
		return
	}
	for _, req := range requests {
		r.printf("\nRequest ID: %s", req.RequestID)
		r.printf("Course: %s", req.CourseTitle)
		r.printf("Professor: %s", req.ProfessorName)
		r.printf("Status: %s", req.Status)
		r.printf("Request Date: %s", req.RequestedAt.Format("2006-01-02 15:04:05"))
	}
}

func (r *Runner) requestDefense(studentID string) {
	r.printf("\nThesis Defense Request")
	title := r.prompt("Thesis Title")
	abstract := r.prompt("Abstract")
	keywordsRaw := r.prompt("Keywords (comma-separated)")

	var keywords []string
	for _, k := range strings.Split(keywordsRaw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}

	pdfPath := r.uploadWithRetry(studentID, upload.ThesisPDF)
	if pdfPath == "" {
		r.printf("File upload failed")
		return
	}
	firstPagePath := r.uploadWithRetry(studentID, upload.FirstPageImage)
	if firstPagePath == "" {
		r.printf("File upload failed")
		return
	}

	request, err := r.service.Defense.Submit(defense.Submission{
		StudentID:     studentID,
		ThesisTitle:   title,
		Abstract:      abstract,
		Keywords:      keywords,
		PDFPath:       pdfPath,
		FirstPagePath: firstPagePath,
	})
	if err != nil {
		r.fail("Defense request failed", err)
		return
	}
	r.printf("Defense request %s submitted successfully!", request.DefenseID)
}

const maxUploadAttempts = 3

func (r *Runner) uploadWithRetry(studentID string, kind upload.Kind) string {
	for attempt := 1; attempt <= maxUploadAttempts; attempt++ {
		r.printf("\nUpload %s (attempt %d/%d)", kind, attempt, maxUploadAttempts)
		src := r.prompt("Enter path (or 'cancel' to skip)")
		if strings.EqualFold(src, "cancel") {
			return ""
		}
		src = strings.Trim(src, `"'& `)

		stored, err := r.service.Uploads.Store(studentID, src, kind)
		if err != nil {
			r.fail("Upload failed", err)
			continue
		}
		r.printf("Uploaded: %s", stored)
		return stored
	}
	return ""
}

func (r *Runner) viewDefenseStatus(studentID string) {
	requests, err := r.service.Defense.ListForStudent(studentID)
	if err != nil {
		r.fail("Failed to load defense requests", err)
		return
	}
	if len(requests) == 0 {
		r.printf("No defense requests found")
		return
	}
	for _, req := range requests {
		r.printf("\nDefense ID: %s", req.DefenseID)
		r.printf("Thesis Title: %s", req.ThesisTitle)
		r.printf("Status: %s", req.Status)
		r.printf("Request Date: %s", req.RequestedAt.Format("2006-01-02 15:04:05"))
		if req.DefenseDate != "" {
			r.printf("Defense Date: %s - Location: %s", req.DefenseDate, req.DefenseLocation)
		}
	}
}

func (r *Runner) viewMyGrades(studentID string) {
	requests, err := r.service.Defense.ListForStudent(studentID)
	if err != nil {
		r.fail("Failed to load defense requests", err)
		return
	}

	found := false
	for _, req := range requests {
		if req.Status != models.DefenseApproved {
			continue
		}
		found = true
		r.printf("\nDefense ID: %s", req.DefenseID)
		r.printf("Thesis: %s", req.ThesisTitle)

		grades, err := r.service.Grading.ViewGrades(req.DefenseID)
		if err != nil {
			r.fail("Failed to load grades", err)
			continue
		}
		if len(grades) == 0 {
			r.printf("No grades submitted yet")
			continue
		}
		for reviewerID, g := range grades {
			r.printf("\nReviewer: %s (%s)", g.ReviewerName, reviewerID)
			r.printf("Type: %s", g.ReviewerType)
			r.printf("Grade: %s", g.Label)
			if g.Comments != "" {
				r.printf("Comments: %s", g.Comments)
			}
			r.printf("Grading Date: %s", g.GradedAt.Format("2006-01-02 15:04:05"))
		}
	}
	if !found {
		r.printf("No approved defense found or not graded yet")
	}
}
