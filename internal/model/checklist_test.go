package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChecklistStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to ChecklistStatus
		allowed  bool
	}{
		{StatusDraft, StatusPending, true},
		{StatusPending, StatusInProgress, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusDraft, StatusCancelled, true},
		{StatusPending, StatusCancelled, true},
		{StatusInProgress, StatusCancelled, true},

		{StatusDraft, StatusInProgress, false},
		{StatusDraft, StatusCompleted, false},
		{StatusPending, StatusCompleted, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusCompleted, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestChecklistStatusTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusDraft.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
}

func TestResponseSetMerge(t *testing.T) {
	base := ResponseSet{
		"a": {Value: true},
		"b": {Value: 1.0},
	}
	merged := base.Merge(ResponseSet{
		"b": {Value: 2.0},
		"c": {Value: "new"},
	})

	assert.Equal(t, Response{Value: true}, merged["a"])
	assert.Equal(t, Response{Value: 2.0}, merged["b"])
	assert.Equal(t, Response{Value: "new"}, merged["c"])
	// Merge never mutates the receiver.
	assert.Equal(t, Response{Value: 1.0}, base["b"])
}

func TestApplyResult(t *testing.T) {
	completedAt := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	res := &ScoreResult{
		TotalItems:     4,
		CompletedItems: 4,
		PassedItems:    3,
		FailedItems:    1,
		Score:          75.0,
		FinalStatus:    FinalAVerifier,
		NextCheckDate:  time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC),
	}

	c := &Checklist{Status: StatusInProgress}
	c.ApplyResult(res, completedAt)

	assert.Equal(t, StatusCompleted, c.Status)
	assert.Equal(t, &completedAt, c.CompletedAt)
	assert.Equal(t, 75.0, *c.Score)
	assert.Equal(t, FinalAVerifier, c.FinalStatus)
	assert.Equal(t, res.NextCheckDate, *c.NextCheckDate)
}
