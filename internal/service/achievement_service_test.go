package service

import (
	"context"
	"testing"

	"dashboard/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndListAchievements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	older, err := f.achievements.Add(ctx, dhruv, CreateAchievementRequest{
		Title: "ISO certification", Description: "Passed the audit", Date: "2023-11-20",
	})
	require.NoError(t, err)
	assert.Equal(t, "Dhruv Barad", older.AddedBy)

	newer, err := f.achievements.Add(ctx, kush, CreateAchievementRequest{
		Title: "100th customer", Description: "Milestone reached", Date: "2024-02-14",
	})
	require.NoError(t, err)

	list, err := f.achievements.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, "2024-02-14", list[0].Date)
	assert.Equal(t, older.ID, list[1].ID)
}

func TestAddAchievementValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []CreateAchievementRequest{
		{Title: " ", Description: "d", Date: "2024-01-01"},
		{Title: "t", Description: "", Date: "2024-01-01"},
		{Title: "t", Description: "d", Date: "01/01/2024"},
	}
	for _, req := range tests {
		_, err := f.achievements.Add(ctx, dhruv, req)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	}
}
