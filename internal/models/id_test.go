package models

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestID(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 5, 0, 0, time.UTC)

	id := NewRequestID(ThesisIDPrefix, now)
	assert.Regexp(t, regexp.MustCompile(`^TR_20250601_100500_[0-9a-f]{8}$`), id)

	other := NewRequestID(ThesisIDPrefix, now)
	assert.NotEqual(t, id, other, "same-second ids must not collide")
}

func TestParseGradeLabel(t *testing.T) {
	for _, s := range []string{"A", "B", "C", "F"} {
		label, err := ParseGradeLabel(s)
		require.NoError(t, err, s)
		assert.Equal(t, GradeLabel(s), label)
	}
	for _, s := range []string{"D", "a", "", "A+"} {
		_, err := ParseGradeLabel(s)
		assert.ErrorIs(t, err, ErrValidation, s)
	}
}

func TestDefenseRequest_ReviewerSlot(t *testing.T) {
	d := DefenseRequest{
		InternalRev: &ReviewerRef{ID: "p2"},
		ExternalRev: &ExternalReviewerRef{ID: "g1"},
	}

	slot, ok := d.ReviewerSlot("p2")
	assert.True(t, ok)
	assert.Equal(t, ReviewerInternal, slot)

	slot, ok = d.ReviewerSlot("g1")
	assert.True(t, ok)
	assert.Equal(t, ReviewerGuest, slot)

	_, ok = d.ReviewerSlot("p9")
	assert.False(t, ok)

	_, ok = (&DefenseRequest{}).ReviewerSlot("p2")
	assert.False(t, ok)
}
