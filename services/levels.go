package services

import (
	"github.com/gosimple/slug"
)

// LevelThreshold is one band of the level table: min inclusive, max exclusive.
type LevelThreshold struct {
	Level int    `json:"level"`
	Min   int64  `json:"min"`
	Max   int64  `json:"max"`
	Label string `json:"label"`
}

// LevelThresholds must be contiguous and strictly increasing. The top band is
// open-ended: Max is advisory only and anything at or above its Min resolves
// to level 5 no matter how high the total grows.
var LevelThresholds = []LevelThreshold{
	{Level: 1, Min: 0, Max: 100, Label: "Active Learner"},
	{Level: 2, Min: 100, Max: 300, Label: "Builder"},
	{Level: 3, Min: 300, Max: 700, Label: "Experienced Operator"},
	{Level: 4, Min: 700, Max: 2000, Label: "High Credibility"},
	{Level: 5, Min: 2000, Max: 5000, Label: "Elite Executor"},
}

// LevelFor maps cumulative XP to (level, label). Defined for all totals >= 0;
// 0 maps to level 1.
func LevelFor(totalXP int64) (int, string) {
	for _, t := range LevelThresholds {
		if totalXP >= t.Min && totalXP < t.Max {
			return t.Level, t.Label
		}
	}
	top := LevelThresholds[len(LevelThresholds)-1]
	return top.Level, top.Label
}

// LevelLabel returns the label for a level number ("Builder" if unknown).
func LevelLabel(level int) string {
	for _, t := range LevelThresholds {
		if t.Level == level {
			return t.Label
		}
	}
	return "Builder"
}

// LevelSlug returns a URL-safe form of the level label for the UI
// (e.g., "Experienced Operator" → "experienced-operator").
func LevelSlug(level int) string {
	return slug.Make(LevelLabel(level))
}
