package services

import "xp-progression-system/models"

// FounderXPValues define per-action point values for founders (tunable via config/env later)
type FounderXPValues struct {
	ProductUpdate     int64 `default:"10"`
	FeatureRelease    int64 `default:"12"`
	CustomerMilestone int64 `default:"20"`
	RevenueMilestone  int64 `default:"25"`
	TeamUpdate        int64 `default:"10"`
	WeeklySummary     int64 `default:"15"`
	DailyReflection   int64 `default:"5"`
	PersonalInsight   int64 `default:"5"`
	SetbackReflection int64 `default:"5"`
	LightMoment       int64 `default:"2"`
	InsightfulComment int64 `default:"2"`
}

var DefaultFounderXP = FounderXPValues{
	ProductUpdate:     10,
	FeatureRelease:    12,
	CustomerMilestone: 20,
	RevenueMilestone:  25,
	TeamUpdate:        10,
	WeeklySummary:     15,
	DailyReflection:   5,
	PersonalInsight:   5,
	SetbackReflection: 5,
	LightMoment:       2,
	InsightfulComment: 2,
}

// InvestorXPValues: look-up-only constants for investor actions. Investors
// earn in a completely different band (2–1000), which is why their daily cap
// is 30× the founder cap.
var InvestorXPValues = map[string]int64{
	"first_time_post_view": 2,
	"upvote_post":          8,
	"create_comment":       30,
	"reply_comment":        20,
	"upvote_comment":       6,
	"mark_high_signal":     40,
	"endorse_skill":        60,
	"mentor_message":       80,
	"accept_meeting":       200,
	"add_resource":         100,
	"complete_profile":     120,
	"daily_presence":       5,
	"create_collection":    150,
	"invest_commit":        1000,
	"pin_comment":          50,
}

// CommentXP is awarded for any comment or reply, regardless of post category.
const CommentXP = 5

// StreakBonuses: extra XP granted the first time a streak reaches the given
// day count. No bonus beyond day 14 in the current schedule.
var StreakBonuses = map[int]int64{
	3:  2,
	7:  5,
	14: 10,
}

// Daily caps and per-category sub-caps
const (
	FounderDailyXPCap  int64 = 50
	InvestorDailyXPCap int64 = 1500

	MaxReflectionPerDay = 3
	MaxSetbackPerDay    = 1
)

// XPForCategory maps a post category to its point value. Unrecognized
// categories earn 0 rather than failing — never negative.
func XPForCategory(category string) int64 {
	switch category {
	case "Build":
		return DefaultFounderXP.ProductUpdate
	case "Traction":
		return DefaultFounderXP.CustomerMilestone
	case "Team":
		return DefaultFounderXP.TeamUpdate
	case "Reflection":
		return DefaultFounderXP.DailyReflection
	case "Setback":
		return DefaultFounderXP.SetbackReflection
	default:
		return 0
	}
}

// XPForInvestorAction looks up an investor action's value; unknown actions earn 0.
func XPForInvestorAction(action string) int64 {
	return InvestorXPValues[action]
}

// StreakBonusFor returns the bonus owed when a streak first reaches length n
// (0 for non-milestone lengths).
func StreakBonusFor(n int) int64 {
	return StreakBonuses[n]
}

// DailyCapFor returns the daily XP budget for a user kind.
func DailyCapFor(kind models.UserType) int64 {
	if kind == models.UserTypeInvestor {
		return InvestorDailyXPCap
	}
	return FounderDailyXPCap
}
