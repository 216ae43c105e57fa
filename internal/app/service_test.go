package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shokrpour/thesisflow/internal/defense"
	"github.com/shokrpour/thesisflow/internal/directory"
	"github.com/shokrpour/thesisflow/internal/models"
	"github.com/shokrpour/thesisflow/internal/thesis"
	"github.com/shokrpour/thesisflow/internal/upload"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dir := t.TempDir()
	content := fmt.Sprintf(`
[storage]
data_dir = %q
upload_dir = %q

[database]
audit_dsn = %q
`,
		filepath.Join(dir, "data"),
		filepath.Join(dir, "uploads"),
		filepath.Join(dir, "audit.db"),
	)
	configPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	service, err := NewService(configPath)
	require.NoError(t, err)
	t.Cleanup(func() { service.Close() })
	return service
}

// TestFullWorkflow walks one student through the whole pipeline: register,
// request a thesis course, get approved, request a defense, get it
// scheduled, and collect two grades.
func TestFullWorkflow(t *testing.T) {
	service := newTestService(t)

	for _, input := range []directory.RegisterInput{
		{ID: "s1", Name: "Sam Lee", Password: "pw", Role: models.RoleStudent, NationalID: "1", Major: "CS"},
		{ID: "p1", Name: "Dr. Vance", Password: "pw", Role: models.RoleProfessor, NationalID: "2"},
		{ID: "p2", Name: "Dr. Ito", Password: "pw", Role: models.RoleProfessor, NationalID: "3"},
		{ID: "g1", Name: "Dr. Osei", Password: "pw", Role: models.RoleGuestReviewer, NationalID: "4", Affiliation: "TU Delft"},
	} {
		require.NoError(t, service.Directory.Register(input))
	}

	require.NoError(t, service.Catalog.Seed([]models.CourseSlot{
		{CourseID: "CS-499", Title: "Distributed Systems", ProfessorID: "p1", ProfessorName: "Dr. Vance", Major: "CS", Capacity: 1},
	}))

	submitted, err := service.Thesis.Submit("s1", "CS-499")
	require.NoError(t, err)
	approved, err := service.Thesis.Decide(submitted.RequestID, "p1", thesis.Approve)
	require.NoError(t, err)
	require.Equal(t, models.ThesisApproved, approved.Status)

	// Backdate the approval so the cooling-off window has already passed.
	theses, err := service.Stores.ThesisRequests.Load()
	require.NoError(t, err)
	past := time.Now().Add(-time.Hour)
	theses[0].ApprovedAt = &past
	require.NoError(t, service.Stores.ThesisRequests.ReplaceAll(theses))

	src := filepath.Join(t.TempDir(), "thesis.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.7"), 0o644))
	pdfPath, err := service.Uploads.Store("s1", src, upload.ThesisPDF)
	require.NoError(t, err)

	defenseReq, err := service.Defense.Submit(defense.Submission{
		StudentID:     "s1",
		ThesisTitle:   "Consensus Under Churn",
		Abstract:      "A study of membership churn in consensus protocols.",
		Keywords:      []string{"consensus"},
		PDFPath:       pdfPath,
		FirstPagePath: pdfPath,
	})
	require.NoError(t, err)

	_, err = service.Defense.Decide(defenseReq.DefenseID, "p1", defense.Approve, "")
	require.NoError(t, err)
	_, err = service.Defense.AssignDetails(defenseReq.DefenseID, "p1", defense.Assignment{
		Date:               "2025-06-20 14:00",
		Location:           "Room 301",
		InternalReviewerID: "p2",
		ExternalReviewerID: "g1",
	})
	require.NoError(t, err)

	_, err = service.Grading.SubmitGrade(defenseReq.DefenseID, "p2", models.GradeB, "solid")
	require.NoError(t, err)
	_, err = service.Grading.SubmitGrade(defenseReq.DefenseID, "g1", models.GradeA, "")
	require.NoError(t, err)

	grades, err := service.Grading.ViewGrades(defenseReq.DefenseID)
	require.NoError(t, err)
	assert.Len(t, grades, 2)
	assert.Equal(t, models.ReviewerInternal, grades["p2"].ReviewerType)
	assert.Equal(t, models.ReviewerGuest, grades["g1"].ReviewerType)
}

func TestNewService_RejectsUnknownHasher(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf("[storage]\ndata_dir = %q\n\n[security]\nhasher = \"md5\"\n", filepath.Join(dir, "data"))
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	_, err := NewService(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hasher")
}

func TestSessionManager_LocalCache(t *testing.T) {
	var config Config
	config.Sessions.TTLMinutes = 1
	manager, err := NewSessionManager(&config)
	require.NoError(t, err)
	defer manager.Close()

	ctx := context.Background()
	token, err := manager.Create(ctx, models.RoleStudent, "s1")
	require.NoError(t, err)
	assert.Contains(t, token, sessionTokenPrefix)

	session, err := manager.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, session.Role)
	assert.Equal(t, "s1", session.AccountID)

	require.NoError(t, manager.Drop(ctx, token))
	_, err = manager.Resolve(ctx, token)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}
