package services

import (
	"fmt"
	"testing"

	"xp-progression-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPostEndToEnd(t *testing.T) {
	e := NewEngineService(newTestDB(t))

	// day 1: new user posts a Build update
	res, err := e.RecordPost("u1", models.UserTypeFounder, "Build", "p1", "2026-08-01")
	require.NoError(t, err)
	assert.True(t, res.Admission.Allowed)
	assert.Equal(t, int64(10), res.XPAwarded)
	assert.Equal(t, int64(10), res.TotalXP)
	assert.Equal(t, 1, res.Level)
	assert.False(t, res.LeveledUp)
	assert.Equal(t, 1, res.Streak)
	assert.Zero(t, res.StreakBonusXP)

	// day 2: streak continues
	res, err = e.RecordPost("u1", models.UserTypeFounder, "Build", "p2", "2026-08-02")
	require.NoError(t, err)
	assert.Equal(t, int64(20), res.TotalXP)
	assert.Equal(t, 2, res.Streak)

	// day 3: streak milestone — post XP plus the 2 XP bonus → 20 + 10 + 2 = 32
	res, err = e.RecordPost("u1", models.UserTypeFounder, "Build", "p3", "2026-08-03")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Streak)
	assert.Equal(t, int64(2), res.StreakBonusXP)
	assert.Equal(t, int64(32), res.TotalXP)

	prof := loadProfile(t, e.DB, "u1")
	assert.Equal(t, int64(32), prof.TotalXP)
	assert.Equal(t, 3, prof.CurrentStreak)
}

func TestStreakBonusCrossesLevelThreshold(t *testing.T) {
	e := NewEngineService(newTestDB(t))

	// seed to 68 XP so the day-3 post (+10) lands at 98 and the 2 XP streak
	// bonus is what crosses the 100-point boundary into level 2
	_, err := e.Ledger.Award("u1", 68, models.XPEventAdminGrant, nil, "seed", nil)
	require.NoError(t, err)

	_, err = e.RecordPost("u1", models.UserTypeFounder, "Build", "p1", "2026-08-01")
	require.NoError(t, err)
	_, err = e.RecordPost("u1", models.UserTypeFounder, "Build", "p2", "2026-08-02")
	require.NoError(t, err)

	res, err := e.RecordPost("u1", models.UserTypeFounder, "Build", "p3", "2026-08-03")
	require.NoError(t, err)
	require.Equal(t, int64(2), res.StreakBonusXP)
	assert.Equal(t, int64(100), res.TotalXP)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 2, res.NewLevel)
	assert.Equal(t, 2, res.Level)
	assert.Equal(t, "Builder", res.LevelLabel)

	prof := loadProfile(t, e.DB, "u1")
	assert.Equal(t, int64(100), prof.TotalXP)
	assert.Equal(t, 2, prof.CurrentLevel)
}

func TestRecordPostRejectionLeavesNoTrace(t *testing.T) {
	e := NewEngineService(newTestDB(t))

	// a setback today consumes the one-per-day budget
	_, err := e.RecordPost("u1", models.UserTypeFounder, "Setback", "p1", "2026-08-01")
	require.NoError(t, err)

	res, err := e.RecordPost("u1", models.UserTypeFounder, "Setback", "p2", "2026-08-01")
	require.NoError(t, err)
	assert.False(t, res.Admission.Allowed)
	assert.Equal(t, "Maximum 1 setback post per day", res.Admission.Reason)

	// the rejected post credited nothing anywhere
	assert.Equal(t, int64(1), countEvents(t, e.DB, "u1"))
	var row models.DailyXP
	require.NoError(t, e.DB.Where("user_id = ? AND date = ?", "u1", "2026-08-01").First(&row).Error)
	assert.Equal(t, int64(5), row.TotalXP)
	assert.Equal(t, 1, row.SetbackCount)
}

func TestRecordPostFourthReflectionRejected(t *testing.T) {
	e := NewEngineService(newTestDB(t))

	for i := 1; i <= 3; i++ {
		res, err := e.RecordPost("u1", models.UserTypeFounder, "Reflection", fmt.Sprintf("p%d", i), "2026-08-01")
		require.NoError(t, err)
		assert.True(t, res.Admission.Allowed, "reflection %d", i)
	}

	res, err := e.RecordPost("u1", models.UserTypeFounder, "Reflection", "p4", "2026-08-01")
	require.NoError(t, err)
	assert.False(t, res.Admission.Allowed)
	assert.Equal(t, "Maximum 3 reflection posts per day", res.Admission.Reason)
}

func TestRecordPostFounderDailyCap(t *testing.T) {
	e := NewEngineService(newTestDB(t))

	// 20+20+20 = 60: the third Traction post starts under 50, so it is
	// admitted and the total may overshoot the cap
	for i := 1; i <= 3; i++ {
		res, err := e.RecordPost("u1", models.UserTypeFounder, "Traction", fmt.Sprintf("p%d", i), "2026-08-01")
		require.NoError(t, err)
		assert.True(t, res.Admission.Allowed, "post %d", i)
	}

	// now at 60 ≥ 50: rejected regardless of category
	res, err := e.RecordPost("u1", models.UserTypeFounder, "Build", "p4", "2026-08-01")
	require.NoError(t, err)
	assert.False(t, res.Admission.Allowed)
	assert.Equal(t, "Daily XP cap reached (50 XP)", res.Admission.Reason)
}

func TestRecordPostDuplicateSubmission(t *testing.T) {
	e := NewEngineService(newTestDB(t))

	first, err := e.RecordPost("u1", models.UserTypeFounder, "Build", "p1", "2026-08-01")
	require.NoError(t, err)
	require.False(t, first.Duplicate)

	// a double-submit of the same post on the same day credits nothing more
	second, err := e.RecordPost("u1", models.UserTypeFounder, "Build", "p1", "2026-08-01")
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, first.TotalXP, second.TotalXP)

	assert.Equal(t, int64(1), countEvents(t, e.DB, "u1"))
	var row models.DailyXP
	require.NoError(t, e.DB.Where("user_id = ? AND date = ?", "u1", "2026-08-01").First(&row).Error)
	assert.Equal(t, int64(10), row.TotalXP)
}

func TestRecordPostUnknownCategoryEarnsZero(t *testing.T) {
	e := NewEngineService(newTestDB(t))

	res, err := e.RecordPost("u1", models.UserTypeFounder, "Fundraising", "p1", "2026-08-01")
	require.NoError(t, err)
	assert.True(t, res.Admission.Allowed)
	assert.Zero(t, res.XPAwarded)
	// zero-XP actions still hit the ledger and the streak
	assert.Equal(t, int64(1), countEvents(t, e.DB, "u1"))
	assert.Equal(t, 1, res.Streak)
}

func TestRecordComment(t *testing.T) {
	e := NewEngineService(newTestDB(t))

	res, err := e.RecordComment("u1", models.UserTypeFounder, "c1", "2026-08-01")
	require.NoError(t, err)
	assert.True(t, res.Admission.Allowed)
	assert.Equal(t, int64(5), res.XPAwarded)

	// comments never touch the streak
	prof := loadProfile(t, e.DB, "u1")
	assert.Zero(t, prof.CurrentStreak)
	assert.Nil(t, prof.LastPostDate)

	// but they do count against the daily budget
	var row models.DailyXP
	require.NoError(t, e.DB.Where("user_id = ? AND date = ?", "u1", "2026-08-01").First(&row).Error)
	assert.Equal(t, int64(5), row.TotalXP)

	// and retries dedupe
	res, err = e.RecordComment("u1", models.UserTypeFounder, "c1", "2026-08-01")
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Equal(t, int64(1), countEvents(t, e.DB, "u1"))
}

func TestRecordInvestorAction(t *testing.T) {
	e := NewEngineService(newTestDB(t))

	res, err := e.RecordInvestorAction("inv1", "invest_commit", "deal1", "2026-08-01")
	require.NoError(t, err)
	assert.True(t, res.Admission.Allowed)
	assert.Equal(t, int64(1000), res.XPAwarded)
	// 1000 XP lands straight in the [700, 2000) band
	assert.Equal(t, 4, res.Level)
	assert.True(t, res.LeveledUp)

	prof := loadProfile(t, e.DB, "inv1")
	assert.Equal(t, int64(1000), prof.TotalXP)
}

func TestRecordInvestorActionDailyCap(t *testing.T) {
	e := NewEngineService(newTestDB(t))

	// 1000 + 1000 would blow the 1500 budget, but the second starts under it
	_, err := e.RecordInvestorAction("inv1", "invest_commit", "deal1", "2026-08-01")
	require.NoError(t, err)
	res, err := e.RecordInvestorAction("inv1", "invest_commit", "deal2", "2026-08-01")
	require.NoError(t, err)
	assert.True(t, res.Admission.Allowed)

	// now at 2000 ≥ 1500: rejected
	res, err = e.RecordInvestorAction("inv1", "upvote_post", "p1", "2026-08-01")
	require.NoError(t, err)
	assert.False(t, res.Admission.Allowed)
	assert.Equal(t, "Daily XP cap reached (1500 XP)", res.Admission.Reason)
}
