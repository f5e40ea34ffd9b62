package services

import (
	"fmt"
	"testing"

	"xp-progression-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func milestoneCount(t *testing.T, s *MilestoneService, userID, milestoneType string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.DB.Model(&models.Milestone{}).
		Where("user_id = ? AND milestone_type = ?", userID, milestoneType).
		Count(&n).Error)
	return n
}

func TestMaybeAwardIdempotent(t *testing.T) {
	s := NewMilestoneService(newTestDB(t))

	require.NoError(t, s.MaybeAward("u1", models.MilestoneFirstPost))
	require.NoError(t, s.MaybeAward("u1", models.MilestoneFirstPost))

	assert.Equal(t, int64(1), milestoneCount(t, s, "u1", models.MilestoneFirstPost))
}

func TestMaybeAwardPerUserPerType(t *testing.T) {
	s := NewMilestoneService(newTestDB(t))

	require.NoError(t, s.MaybeAward("u1", models.MilestoneFirstPost))
	require.NoError(t, s.MaybeAward("u1", models.MilestoneTenPosts))
	require.NoError(t, s.MaybeAward("u2", models.MilestoneFirstPost))

	ms, err := s.ListMilestones("u1")
	require.NoError(t, err)
	assert.Len(t, ms, 2)
}

func TestMilestoneDisplayName(t *testing.T) {
	assert.Equal(t, "First Post", MilestoneDisplayName(models.MilestoneFirstPost))
	assert.Equal(t, "Ten Reflections", MilestoneDisplayName(models.MilestoneTenReflections))
}

func TestPostMilestonesThroughEngine(t *testing.T) {
	e := NewEngineService(newTestDB(t))

	// first post on day 1
	_, err := e.RecordPost("u1", models.UserTypeFounder, "Build", "p1", "2026-08-01")
	require.NoError(t, err)
	assert.Equal(t, int64(1), milestoneCount(t, e.Milestones, "u1", models.MilestoneFirstPost))
	assert.Zero(t, milestoneCount(t, e.Milestones, "u1", models.MilestoneTenPosts))

	// posts 2..10 spread across days (one Build post per day stays under cap)
	for i := 2; i <= 10; i++ {
		day := fmt.Sprintf("2026-08-%02d", i)
		_, err := e.RecordPost("u1", models.UserTypeFounder, "Build", fmt.Sprintf("p%d", i), day)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), milestoneCount(t, e.Milestones, "u1", models.MilestoneTenPosts))
	assert.Equal(t, int64(1), milestoneCount(t, e.Milestones, "u1", models.MilestoneFirstPost))
}

func TestTenReflectionsMilestone(t *testing.T) {
	e := NewEngineService(newTestDB(t))

	// three reflections per day is the sub-cap; ten need four days
	n := 0
	for day := 1; n < 10; day++ {
		for i := 0; i < 3 && n < 10; i++ {
			n++
			date := fmt.Sprintf("2026-08-%02d", day)
			res, err := e.RecordPost("u1", models.UserTypeFounder, "Reflection", fmt.Sprintf("r%d", n), date)
			require.NoError(t, err)
			require.True(t, res.Admission.Allowed, "reflection %d", n)
		}
	}

	assert.Equal(t, int64(1), milestoneCount(t, e.Milestones, "u1", models.MilestoneTenReflections))
}
