package defense

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shokrpour/thesisflow/internal/catalog"
	"github.com/shokrpour/thesisflow/internal/models"
	"github.com/shokrpour/thesisflow/internal/policy"
	"github.com/shokrpour/thesisflow/internal/store"
	"github.com/shokrpour/thesisflow/internal/store/jsonfile"
	"github.com/shokrpour/thesisflow/internal/thesis"
)

var approvalTime = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestWorkflow(t *testing.T) (*Workflow, *store.Stores) {
	t.Helper()
	stores := jsonfile.OpenStores(t.TempDir())

	require.NoError(t, stores.Students.ReplaceAll([]models.Account{
		{ID: "s1", Name: "Sam Lee", Role: models.RoleStudent, Major: "CS"},
	}))
	require.NoError(t, stores.Professors.ReplaceAll([]models.Account{
		{ID: "p1", Name: "Dr. Vance", Role: models.RoleProfessor},
		{ID: "p2", Name: "Dr. Ito", Role: models.RoleProfessor},
	}))
	require.NoError(t, stores.GuestReviewers.ReplaceAll([]models.Account{
		{ID: "g1", Name: "Dr. Osei", Role: models.RoleGuestReviewer, Affiliation: "TU Delft", Email: "osei@tudelft.nl"},
	}))

	approvedAt := approvalTime
	require.NoError(t, stores.ThesisRequests.ReplaceAll([]models.ThesisRequest{
		{
			RequestID:     "TR_seed",
			StudentID:     "s1",
			StudentName:   "Sam Lee",
			CourseID:      "CS-499",
			CourseTitle:   "Distributed Systems",
			ProfessorID:   "p1",
			ProfessorName: "Dr. Vance",
			Status:        models.ThesisApproved,
			ApprovedAt:    &approvedAt,
		},
	}))

	cat := catalog.New(stores.Courses)
	pol := policy.New(stores.ThesisRequests, stores.DefenseRequests, policy.DefaultCaps())
	tw := thesis.New(stores, cat, pol, nil)

	w := New(stores, tw, pol, nil, DefaultCoolingOff)
	w.now = func() time.Time { return approvalTime.Add(10 * time.Minute) }
	return w, stores
}

func validSubmission() Submission {
	return Submission{
		StudentID:     "s1",
		ThesisTitle:   "Consensus Under Churn",
		Abstract:      "A study of membership churn in consensus protocols.",
		Keywords:      []string{"consensus", "raft"},
		PDFPath:       "uploads/theses/s1_thesis.pdf",
		FirstPagePath: "uploads/theses/s1_first.png",
	}
}

func TestSubmit(t *testing.T) {
	w, _ := newTestWorkflow(t)

	request, err := w.Submit(validSubmission())
	require.NoError(t, err)

	assert.Equal(t, models.DefenseUnderReview, request.Status)
	assert.Equal(t, "p1", request.ProfessorID, "supervisor is inherited from the approved thesis")
	assert.Equal(t, "Dr. Vance", request.ProfessorName)
	assert.Equal(t, "CS-499", request.CourseID)
	assert.False(t, request.Scheduled())
}

func TestSubmit_Validation(t *testing.T) {
	w, _ := newTestWorkflow(t)

	sub := validSubmission()
	sub.Abstract = ""
	_, err := w.Submit(sub)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestSubmit_RequiresApprovedThesis(t *testing.T) {
	w, stores := newTestWorkflow(t)
	require.NoError(t, stores.ThesisRequests.ReplaceAll(nil))

	_, err := w.Submit(validSubmission())
	assert.ErrorIs(t, err, models.ErrInvalidState)
}

func TestSubmit_CoolingOff(t *testing.T) {
	w, _ := newTestWorkflow(t)

	t.Run("one second early is refused", func(t *testing.T) {
		w.now = func() time.Time { return approvalTime.Add(DefaultCoolingOff - time.Second) }
		_, err := w.Submit(validSubmission())
		assert.ErrorIs(t, err, models.ErrInvalidState)
	})

	t.Run("exactly at the boundary is allowed", func(t *testing.T) {
		w.now = func() time.Time { return approvalTime.Add(DefaultCoolingOff) }
		_, err := w.Submit(validSubmission())
		assert.NoError(t, err)
	})
}

func TestSubmit_OneActiveDefensePerStudent(t *testing.T) {
	w, _ := newTestWorkflow(t)

	first, err := w.Submit(validSubmission())
	require.NoError(t, err)

	_, err = w.Submit(validSubmission())
	assert.ErrorIs(t, err, models.ErrInvalidState)

	// A rejected defense frees the student to try again.
	_, err = w.Decide(first.DefenseID, "p1", Reject, "needs a stronger evaluation chapter")
	require.NoError(t, err)
	_, err = w.Submit(validSubmission())
	assert.NoError(t, err)
}

func TestDecide(t *testing.T) {
	w, _ := newTestWorkflow(t)

	submitted, err := w.Submit(validSubmission())
	require.NoError(t, err)

	t.Run("only the supervisor may decide", func(t *testing.T) {
		_, err := w.Decide(submitted.DefenseID, "p2", Approve, "")
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})

	t.Run("rejection requires a reason", func(t *testing.T) {
		_, err := w.Decide(submitted.DefenseID, "p1", Reject, "")
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("approval flips the status only", func(t *testing.T) {
		request, err := w.Decide(submitted.DefenseID, "p1", Approve, "")
		require.NoError(t, err)
		assert.Equal(t, models.DefenseApproved, request.Status)
		assert.Equal(t, "p1", request.ApprovedBy)
		assert.Empty(t, request.DefenseDate)
		assert.Nil(t, request.InternalRev)
	})

	t.Run("decided defenses are terminal", func(t *testing.T) {
		_, err := w.Decide(submitted.DefenseID, "p1", Approve, "")
		assert.ErrorIs(t, err, models.ErrInvalidState)
	})
}

func validAssignment() Assignment {
	return Assignment{
		Date:               "2025-06-20 14:00",
		Location:           "Room 301",
		InternalReviewerID: "p2",
		ExternalReviewerID: "g1",
	}
}

func TestAssignDetails(t *testing.T) {
	w, _ := newTestWorkflow(t)

	submitted, err := w.Submit(validSubmission())
	require.NoError(t, err)

	t.Run("logistics need an approved defense", func(t *testing.T) {
		_, err := w.AssignDetails(submitted.DefenseID, "p1", validAssignment())
		assert.ErrorIs(t, err, models.ErrInvalidState)
	})

	_, err = w.Decide(submitted.DefenseID, "p1", Approve, "")
	require.NoError(t, err)

	t.Run("date must parse", func(t *testing.T) {
		a := validAssignment()
		a.Date = "next tuesday"
		_, err := w.AssignDetails(submitted.DefenseID, "p1", a)
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("internal reviewer must be a professor", func(t *testing.T) {
		a := validAssignment()
		a.InternalReviewerID = "g1"
		_, err := w.AssignDetails(submitted.DefenseID, "p1", a)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("external reviewer must be a guest", func(t *testing.T) {
		a := validAssignment()
		a.ExternalReviewerID = "p2"
		_, err := w.AssignDetails(submitted.DefenseID, "p1", a)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("only the supervisor assigns", func(t *testing.T) {
		_, err := w.AssignDetails(submitted.DefenseID, "p2", validAssignment())
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})

	t.Run("assignment snapshots the reviewers", func(t *testing.T) {
		request, err := w.AssignDetails(submitted.DefenseID, "p1", validAssignment())
		require.NoError(t, err)

		assert.True(t, request.Scheduled())
		assert.Equal(t, "Room 301", request.DefenseLocation)
		require.NotNil(t, request.InternalRev)
		assert.Equal(t, "Dr. Ito", request.InternalRev.Name)
		require.NotNil(t, request.ExternalRev)
		assert.Equal(t, "TU Delft", request.ExternalRev.Affiliation)
		assert.Equal(t, "osei@tudelft.nl", request.ExternalRev.Email)
		require.NotNil(t, request.SetupAt)
	})
}

func TestAssignDetails_SupervisorMayReviewOwnStudent(t *testing.T) {
	w, _ := newTestWorkflow(t)

	submitted, err := w.Submit(validSubmission())
	require.NoError(t, err)
	_, err = w.Decide(submitted.DefenseID, "p1", Approve, "")
	require.NoError(t, err)

	a := validAssignment()
	a.InternalReviewerID = "p1"
	request, err := w.AssignDetails(submitted.DefenseID, "p1", a)
	require.NoError(t, err)
	assert.Equal(t, "p1", request.InternalRev.ID)
}

func TestListForReviewer(t *testing.T) {
	w, _ := newTestWorkflow(t)

	submitted, err := w.Submit(validSubmission())
	require.NoError(t, err)
	_, err = w.Decide(submitted.DefenseID, "p1", Approve, "")
	require.NoError(t, err)
	_, err = w.AssignDetails(submitted.DefenseID, "p1", validAssignment())
	require.NoError(t, err)

	for _, id := range []string{"p2", "g1"} {
		got, err := w.ListForReviewer(id)
		require.NoError(t, err)
		assert.Len(t, got, 1, id)
	}

	got, err := w.ListForReviewer("p1")
	require.NoError(t, err)
	assert.Empty(t, got, "the supervisor is not a reviewer unless assigned")
}
