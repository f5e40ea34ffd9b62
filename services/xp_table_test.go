package services

import (
	"testing"

	"xp-progression-system/models"

	"github.com/stretchr/testify/assert"
)

func TestXPForCategory(t *testing.T) {
	tests := []struct {
		category string
		want     int64
	}{
		{"Build", 10},
		{"Traction", 20},
		{"Team", 10},
		{"Reflection", 5},
		{"Setback", 5},
		{"", 0},
		{"build", 0}, // category names are case-sensitive
		{"Fundraising", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, XPForCategory(tt.category), "category=%q", tt.category)
	}
}

func TestXPForInvestorAction(t *testing.T) {
	assert.Equal(t, int64(2), XPForInvestorAction("first_time_post_view"))
	assert.Equal(t, int64(200), XPForInvestorAction("accept_meeting"))
	assert.Equal(t, int64(1000), XPForInvestorAction("invest_commit"))
	assert.Equal(t, int64(0), XPForInvestorAction("unknown_action"))
}

func TestStreakBonusSchedule(t *testing.T) {
	assert.Equal(t, int64(2), StreakBonusFor(3))
	assert.Equal(t, int64(5), StreakBonusFor(7))
	assert.Equal(t, int64(10), StreakBonusFor(14))

	for _, n := range []int{1, 2, 4, 6, 8, 13, 15, 21, 30} {
		assert.Zero(t, StreakBonusFor(n), "day %d should carry no bonus", n)
	}
}

func TestDailyCapFor(t *testing.T) {
	assert.Equal(t, int64(50), DailyCapFor(models.UserTypeFounder))
	assert.Equal(t, int64(1500), DailyCapFor(models.UserTypeInvestor))
	// unknown kinds get the tighter founder budget
	assert.Equal(t, int64(50), DailyCapFor(models.UserType("")))
}
