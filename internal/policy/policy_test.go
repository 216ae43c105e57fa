package policy

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shokrpour/thesisflow/internal/models"
	"github.com/shokrpour/thesisflow/internal/store/jsonfile"
)

func newTestPolicy(t *testing.T, caps Caps, theses []models.ThesisRequest, defenses []models.DefenseRequest) *Service {
	t.Helper()
	dir := t.TempDir()
	thesisCol := jsonfile.New[models.ThesisRequest](filepath.Join(dir, jsonfile.ThesisRequestsFile))
	defenseCol := jsonfile.New[models.DefenseRequest](filepath.Join(dir, jsonfile.DefenseRequestsFile))
	require.NoError(t, thesisCol.ReplaceAll(theses))
	require.NoError(t, defenseCol.ReplaceAll(defenses))
	return New(thesisCol, defenseCol, caps)
}

func approvedTheses(professorID string, n int) []models.ThesisRequest {
	out := make([]models.ThesisRequest, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.ThesisRequest{
			RequestID:   fmt.Sprintf("TR_%d", i),
			StudentID:   fmt.Sprintf("s%d", i),
			ProfessorID: professorID,
			Status:      models.ThesisApproved,
		})
	}
	return out
}

func TestGuidanceCapacity(t *testing.T) {
	theses := approvedTheses("p1", 4)
	theses = append(theses, models.ThesisRequest{
		RequestID: "TR_pending", StudentID: "s9", ProfessorID: "p1", Status: models.ThesisPending,
	})
	svc := newTestPolicy(t, Caps{Guidance: 5, Review: 10}, theses, nil)

	count, err := svc.GuidanceCount("p1")
	require.NoError(t, err)
	assert.Equal(t, 4, count, "pending requests do not consume guidance capacity")

	ok, err := svc.HasGuidanceCapacity("p1")
	require.NoError(t, err)
	assert.True(t, ok)

	svc = newTestPolicy(t, Caps{Guidance: 5, Review: 10}, approvedTheses("p1", 5), nil)
	ok, err = svc.HasGuidanceCapacity("p1")
	require.NoError(t, err)
	assert.False(t, ok)

	report, err := svc.GuidanceReport("p1")
	require.NoError(t, err)
	assert.Equal(t, Report{Current: 5, Remaining: 0, Max: 5}, report)
}

func TestReviewCount(t *testing.T) {
	defenses := []models.DefenseRequest{
		{DefenseID: "DR_1", InternalRev: &models.ReviewerRef{ID: "p1"}},
		{DefenseID: "DR_2", ExternalRev: &models.ExternalReviewerRef{ID: "p1"}},
		{DefenseID: "DR_3", InternalRev: &models.ReviewerRef{ID: "p2"}},
		{DefenseID: "DR_4"},
	}
	svc := newTestPolicy(t, DefaultCaps(), nil, defenses)

	count, err := svc.ReviewCount("p1")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "both reviewer slots count")

	report, err := svc.ReviewReport("p2")
	require.NoError(t, err)
	assert.Equal(t, Report{Current: 1, Remaining: 9, Max: 10}, report)
}

func TestDefaultCaps(t *testing.T) {
	svc := newTestPolicy(t, Caps{}, nil, nil)
	assert.Equal(t, DefaultGuidanceCap, svc.Caps().Guidance)
	assert.Equal(t, DefaultReviewCap, svc.Caps().Review)
}
